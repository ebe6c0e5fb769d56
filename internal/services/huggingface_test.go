package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/jingletube/internal/auth"
	"github.com/desertthunder/jingletube/internal/shared"
	"golang.org/x/oauth2"
)

func newTestHF(t *testing.T) *HuggingFaceService {
	t.Helper()
	svc, err := NewHuggingFaceService(shared.HuggingFaceConfig{
		ClientID:     "test_client",
		ClientSecret: "test_secret",
	}, log.New(io.Discard))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	return svc
}

func tokenResponse(w http.ResponseWriter, fields map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(fields)
}

func TestHuggingFaceService(t *testing.T) {
	t.Run("New", func(t *testing.T) {
		t.Run("Missing ClientID", func(t *testing.T) {
			_, err := NewHuggingFaceService(shared.HuggingFaceConfig{ClientSecret: "secret"}, nil)

			if !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
		})

		t.Run("Missing ClientSecret", func(t *testing.T) {
			_, err := NewHuggingFaceService(shared.HuggingFaceConfig{ClientID: "client"}, nil)

			if !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
		})

		t.Run("Defaults Applied", func(t *testing.T) {
			svc := newTestHF(t)

			if svc.config.RedirectURL != "http://localhost:7860/auth/callback" {
				t.Errorf("expected default redirect, got %s", svc.config.RedirectURL)
			}
			if len(svc.config.Scopes) != 3 {
				t.Errorf("expected 3 default scopes, got %v", svc.config.Scopes)
			}
			if svc.config.Endpoint.AuthURL != hfAuthURL {
				t.Errorf("expected auth URL %s, got %s", hfAuthURL, svc.config.Endpoint.AuthURL)
			}
			if svc.userInfoURL != hfUserInfoURL {
				t.Errorf("expected user info URL %s, got %s", hfUserInfoURL, svc.userInfoURL)
			}
			if svc.Name() != "Hugging Face" {
				t.Errorf("expected name 'Hugging Face', got %s", svc.Name())
			}
		})

		t.Run("Custom Redirect And Scopes", func(t *testing.T) {
			svc, err := NewHuggingFaceService(shared.HuggingFaceConfig{
				ClientID:     "client",
				ClientSecret: "secret",
				RedirectURI:  "http://localhost:9000/cb",
				Scopes:       "openid read-repos",
			}, log.New(io.Discard))

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if svc.config.RedirectURL != "http://localhost:9000/cb" {
				t.Errorf("expected custom redirect, got %s", svc.config.RedirectURL)
			}
			if len(svc.config.Scopes) != 2 || svc.config.Scopes[1] != "read-repos" {
				t.Errorf("expected custom scopes, got %v", svc.config.Scopes)
			}
		})
	})

	t.Run("FromEnv", func(t *testing.T) {
		t.Run("Missing Variables", func(t *testing.T) {
			t.Setenv("HF_CLIENT_ID", "")
			t.Setenv("HF_CLIENT_SECRET", "")
			t.Setenv("HF_REDIRECT_URI", "")

			_, err := NewHuggingFaceFromEnv(log.New(io.Discard))
			if !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
		})

		t.Run("Complete Environment", func(t *testing.T) {
			t.Setenv("HF_CLIENT_ID", "env_client")
			t.Setenv("HF_CLIENT_SECRET", "env_secret")
			t.Setenv("HF_REDIRECT_URI", "http://localhost:7860/auth/callback")
			t.Setenv("HF_SCOPE", "")

			svc, err := NewHuggingFaceFromEnv(log.New(io.Discard))
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if svc.config.ClientID != "env_client" {
				t.Errorf("expected client id from env, got %s", svc.config.ClientID)
			}
			if len(svc.config.Scopes) != 3 {
				t.Errorf("expected default scopes when HF_SCOPE unset, got %v", svc.config.Scopes)
			}
		})
	})

	t.Run("AuthURL", func(t *testing.T) {
		t.Run("Includes State And PKCE Challenge", func(t *testing.T) {
			svc := newTestHF(t)
			authURL := svc.AuthURL("state_123")

			parsed, err := url.Parse(authURL)
			if err != nil {
				t.Fatalf("expected valid URL, got %v", err)
			}

			query := parsed.Query()
			if query.Get("state") != "state_123" {
				t.Errorf("expected state 'state_123', got %s", query.Get("state"))
			}
			if query.Get("client_id") != "test_client" {
				t.Errorf("expected client_id 'test_client', got %s", query.Get("client_id"))
			}
			if query.Get("code_challenge") == "" {
				t.Error("expected code_challenge to be set")
			}
			if query.Get("code_challenge_method") != "S256" {
				t.Errorf("expected S256 challenge method, got %s", query.Get("code_challenge_method"))
			}
			if svc.verifier == "" {
				t.Error("expected verifier to be held for the exchange")
			}
		})

		t.Run("Fresh Verifier Per Call", func(t *testing.T) {
			svc := newTestHF(t)

			svc.AuthURL("a")
			first := svc.verifier
			svc.AuthURL("b")

			if first == svc.verifier {
				t.Error("expected a new verifier per authorization URL")
			}
		})
	})

	t.Run("Exchange", func(t *testing.T) {
		t.Run("Sends Code And Verifier", func(t *testing.T) {
			var gotGrant, gotCode, gotVerifier string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if err := r.ParseForm(); err != nil {
					t.Errorf("failed to parse form: %v", err)
				}
				gotGrant = r.FormValue("grant_type")
				gotCode = r.FormValue("code")
				gotVerifier = r.FormValue("code_verifier")

				tokenResponse(w, map[string]any{
					"access_token":  "hf_token",
					"token_type":    "bearer",
					"refresh_token": "hf_refresh",
					"expires_in":    3600,
				})
			}))
			defer server.Close()

			svc := newTestHF(t)
			svc.config.Endpoint.TokenURL = server.URL
			svc.AuthURL("state")

			token, err := svc.Exchange(context.Background(), "auth_code_1")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if gotGrant != "authorization_code" {
				t.Errorf("expected authorization_code grant, got %s", gotGrant)
			}
			if gotCode != "auth_code_1" {
				t.Errorf("expected code 'auth_code_1', got %s", gotCode)
			}
			if gotVerifier != svc.verifier {
				t.Errorf("expected verifier %s, got %s", svc.verifier, gotVerifier)
			}
			if token.AccessToken != "hf_token" {
				t.Errorf("expected access token 'hf_token', got %s", token.AccessToken)
			}
			if svc.Token() == nil || svc.Token().AccessToken != "hf_token" {
				t.Error("expected exchanged token to be installed")
			}
		})

		t.Run("Rejected Code", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				tokenResponse(w, map[string]any{"error": "invalid_grant"})
			}))
			defer server.Close()

			svc := newTestHF(t)
			svc.config.Endpoint.TokenURL = server.URL

			_, err := svc.Exchange(context.Background(), "bad_code")
			if err == nil {
				t.Fatal("expected error for rejected code")
			}
			if !strings.Contains(err.Error(), "failed to exchange auth code") {
				t.Errorf("expected exchange error, got %v", err)
			}
			if svc.Token() != nil {
				t.Error("expected no token after failed exchange")
			}
		})
	})

	t.Run("Authenticate", func(t *testing.T) {
		t.Run("With Access Token", func(t *testing.T) {
			svc := newTestHF(t)
			err := svc.Authenticate(context.Background(), map[string]string{
				"access_token":  "direct_token",
				"refresh_token": "direct_refresh",
			})

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if svc.Token().AccessToken != "direct_token" {
				t.Errorf("expected access token 'direct_token', got %s", svc.Token().AccessToken)
			}
			if svc.Token().RefreshToken != "direct_refresh" {
				t.Errorf("expected refresh token to carry over, got %s", svc.Token().RefreshToken)
			}
		})

		t.Run("With Auth Code", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				tokenResponse(w, map[string]any{"access_token": "exchanged", "token_type": "bearer"})
			}))
			defer server.Close()

			svc := newTestHF(t)
			svc.config.Endpoint.TokenURL = server.URL

			if err := svc.Authenticate(context.Background(), map[string]string{"auth_code": "code"}); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if svc.Token().AccessToken != "exchanged" {
				t.Errorf("expected exchanged token, got %s", svc.Token().AccessToken)
			}
		})

		t.Run("Without Credentials", func(t *testing.T) {
			svc := newTestHF(t)
			err := svc.Authenticate(context.Background(), map[string]string{})

			if !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
		})
	})

	t.Run("UserInfo", func(t *testing.T) {
		t.Run("Empty Token", func(t *testing.T) {
			svc := newTestHF(t)
			_, err := svc.UserInfo(context.Background(), "")

			if !errors.Is(err, shared.ErrNotAuthenticated) {
				t.Errorf("expected ErrNotAuthenticated, got %v", err)
			}
		})

		t.Run("Successful Lookup", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Header.Get("Authorization") != "Bearer hf_token" {
					t.Errorf("expected bearer token, got %s", r.Header.Get("Authorization"))
				}
				tokenResponse(w, map[string]any{
					"id":        "user_1",
					"name":      "singer",
					"fullname":  "Singer One",
					"email":     "singer@example.com",
					"avatarUrl": "https://example.com/avatar.png",
					"isPro":     true,
				})
			}))
			defer server.Close()

			svc := newTestHF(t)
			svc.userInfoURL = server.URL

			user, err := svc.UserInfo(context.Background(), "hf_token")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if user.Name != "singer" {
				t.Errorf("expected name 'singer', got %s", user.Name)
			}
			if user.AvatarURL != "https://example.com/avatar.png" {
				t.Errorf("expected avatar URL, got %s", user.AvatarURL)
			}
			if !user.IsPro {
				t.Error("expected isPro to be decoded")
			}
		})

		t.Run("Rejected Token", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
			}))
			defer server.Close()

			svc := newTestHF(t)
			svc.userInfoURL = server.URL

			_, err := svc.UserInfo(context.Background(), "expired")
			if !errors.Is(err, shared.ErrAPIRequest) {
				t.Errorf("expected ErrAPIRequest, got %v", err)
			}
		})
	})

	t.Run("Refresh", func(t *testing.T) {
		t.Run("Without Token", func(t *testing.T) {
			svc := newTestHF(t)
			_, err := svc.Refresh(context.Background())

			if !errors.Is(err, shared.ErrNotAuthenticated) {
				t.Errorf("expected ErrNotAuthenticated, got %v", err)
			}
		})

		t.Run("Without Refresh Token", func(t *testing.T) {
			svc := newTestHF(t)
			svc.SetToken(&oauth2.Token{AccessToken: "only_access"})

			_, err := svc.Refresh(context.Background())
			if !errors.Is(err, shared.ErrNoRefreshToken) {
				t.Errorf("expected ErrNoRefreshToken, got %v", err)
			}
		})

		t.Run("Successful Refresh Keeps Refresh Token", func(t *testing.T) {
			var gotGrant, gotRefresh string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if err := r.ParseForm(); err != nil {
					t.Errorf("failed to parse form: %v", err)
				}
				gotGrant = r.FormValue("grant_type")
				gotRefresh = r.FormValue("refresh_token")

				tokenResponse(w, map[string]any{
					"access_token": "renewed",
					"token_type":   "bearer",
					"expires_in":   3600,
				})
			}))
			defer server.Close()

			svc := newTestHF(t)
			svc.config.Endpoint.TokenURL = server.URL
			svc.SetToken(&oauth2.Token{AccessToken: "old", RefreshToken: "refresh_1"})

			token, err := svc.Refresh(context.Background())
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if gotGrant != "refresh_token" {
				t.Errorf("expected refresh_token grant, got %s", gotGrant)
			}
			if gotRefresh != "refresh_1" {
				t.Errorf("expected refresh token 'refresh_1', got %s", gotRefresh)
			}
			if token.AccessToken != "renewed" {
				t.Errorf("expected access token 'renewed', got %s", token.AccessToken)
			}
			if token.RefreshToken != "refresh_1" {
				t.Errorf("expected old refresh token to be kept, got %s", token.RefreshToken)
			}
			if svc.Token().AccessToken != "renewed" {
				t.Error("expected refreshed token to be installed")
			}
		})

		t.Run("Rejected Refresh", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				tokenResponse(w, map[string]any{"error": "invalid_grant"})
			}))
			defer server.Close()

			svc := newTestHF(t)
			svc.config.Endpoint.TokenURL = server.URL
			svc.SetToken(&oauth2.Token{AccessToken: "old", RefreshToken: "revoked"})

			_, err := svc.Refresh(context.Background())
			if !errors.Is(err, shared.ErrRefreshFailed) {
				t.Errorf("expected ErrRefreshFailed, got %v", err)
			}
		})
	})

	t.Run("Revoke", func(t *testing.T) {
		t.Run("Accepted", func(t *testing.T) {
			var gotPath, gotToken, gotClient string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if err := r.ParseForm(); err != nil {
					t.Errorf("failed to parse form: %v", err)
				}
				gotPath = r.URL.Path
				gotToken = r.FormValue("token")
				gotClient = r.FormValue("client_id")
				w.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			svc := newTestHF(t)
			svc.config.Endpoint.TokenURL = server.URL + "/oauth/token"

			if !svc.Revoke(context.Background(), "hf_token") {
				t.Error("expected revocation to succeed")
			}
			if gotPath != "/oauth/token/revoke" {
				t.Errorf("expected revoke path, got %s", gotPath)
			}
			if gotToken != "hf_token" {
				t.Errorf("expected token form value, got %s", gotToken)
			}
			if gotClient != "test_client" {
				t.Errorf("expected client_id form value, got %s", gotClient)
			}
		})

		t.Run("Rejected", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
			}))
			defer server.Close()

			svc := newTestHF(t)
			svc.config.Endpoint.TokenURL = server.URL

			if svc.Revoke(context.Background(), "hf_token") {
				t.Error("expected revocation to fail")
			}
		})

		t.Run("Unreachable Endpoint", func(t *testing.T) {
			svc := newTestHF(t)
			svc.config.Endpoint.TokenURL = "http://127.0.0.1:1"

			if svc.Revoke(context.Background(), "hf_token") {
				t.Error("expected revocation to fail on connection error")
			}
		})
	})

	t.Run("AsProvider", func(t *testing.T) {
		t.Run("Identity", func(t *testing.T) {
			svc := newTestHF(t)
			p := svc.AsProvider("huggingface")

			if p.ID() != "huggingface" {
				t.Errorf("expected id 'huggingface', got %s", p.ID())
			}
			if p.Type() != auth.TypeOAuth2 {
				t.Errorf("expected oauth2 type, got %s", p.Type())
			}
		})

		t.Run("Authenticate Installs Token", func(t *testing.T) {
			svc := newTestHF(t)
			p := svc.AsProvider("huggingface")

			creds := auth.NewCredentials(auth.TypeOAuth2)
			creds.AccessToken = "stored_token"
			creds.RefreshToken = "stored_refresh"

			if !p.Authenticate(creds) {
				t.Fatal("expected authentication to succeed")
			}
			if svc.Token() == nil || svc.Token().AccessToken != "stored_token" {
				t.Error("expected token to be installed on the service")
			}
		})

		t.Run("Authenticate Rejects Missing Token", func(t *testing.T) {
			svc := newTestHF(t)
			p := svc.AsProvider("huggingface")

			if p.Authenticate(nil) {
				t.Error("expected nil credentials to be rejected")
			}
			if p.Authenticate(auth.NewCredentials(auth.TypeOAuth2)) {
				t.Error("expected empty credentials to be rejected")
			}
		})

		t.Run("ValidateToken Checks Presence", func(t *testing.T) {
			svc := newTestHF(t)
			p := svc.AsProvider("huggingface")

			creds := auth.NewCredentials(auth.TypeOAuth2)
			if p.ValidateToken(creds) {
				t.Error("expected empty credentials to be invalid")
			}

			creds.AccessToken = "present"
			if !p.ValidateToken(creds) {
				t.Error("expected token presence to validate")
			}
		})

		t.Run("RefreshToken Updates Credentials", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				tokenResponse(w, map[string]any{
					"access_token": "renewed",
					"token_type":   "bearer",
					"expires_in":   3600,
				})
			}))
			defer server.Close()

			svc := newTestHF(t)
			svc.config.Endpoint.TokenURL = server.URL
			p := svc.AsProvider("huggingface")

			creds := auth.NewCredentials(auth.TypeOAuth2)
			creds.AccessToken = "old"
			creds.RefreshToken = "refresh_1"

			got := p.RefreshToken(creds)
			if got != creds {
				t.Error("expected credentials to be updated in place")
			}
			if got.AccessToken != "renewed" {
				t.Errorf("expected renewed access token, got %s", got.AccessToken)
			}
			if got.RefreshToken != "refresh_1" {
				t.Errorf("expected refresh token to be kept, got %s", got.RefreshToken)
			}
			if got.Metadata["refreshed_at"] == nil {
				t.Error("expected refreshed_at metadata")
			}
			if got.ExpiresIn <= 0 {
				t.Errorf("expected positive expires_in, got %d", got.ExpiresIn)
			}
		})

		t.Run("RefreshToken Without Refresh Token", func(t *testing.T) {
			svc := newTestHF(t)
			p := svc.AsProvider("huggingface")

			creds := auth.NewCredentials(auth.TypeOAuth2)
			creds.AccessToken = "only_access"

			got := p.RefreshToken(creds)
			if got != creds {
				t.Error("expected credentials back unchanged")
			}
			if got.AccessToken != "only_access" {
				t.Errorf("expected access token untouched, got %s", got.AccessToken)
			}
		})

		t.Run("RefreshToken Failure Leaves Credentials", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				tokenResponse(w, map[string]any{"error": "invalid_grant"})
			}))
			defer server.Close()

			svc := newTestHF(t)
			svc.config.Endpoint.TokenURL = server.URL
			p := svc.AsProvider("huggingface")

			creds := auth.NewCredentials(auth.TypeOAuth2)
			creds.AccessToken = "old"
			creds.RefreshToken = "revoked"

			got := p.RefreshToken(creds)
			if got.AccessToken != "old" {
				t.Errorf("expected access token untouched on failure, got %s", got.AccessToken)
			}
			if len(got.Metadata) != 0 {
				t.Errorf("expected no metadata stamp on failure, got %v", got.Metadata)
			}
		})

		t.Run("RevokeToken", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			svc := newTestHF(t)
			svc.config.Endpoint.TokenURL = server.URL
			p := svc.AsProvider("huggingface")

			if p.RevokeToken(nil) {
				t.Error("expected nil credentials to fail revocation")
			}

			creds := auth.NewCredentials(auth.TypeOAuth2)
			creds.AccessToken = "hf_token"
			if !p.RevokeToken(creds) {
				t.Error("expected revocation to succeed")
			}
		})
	})
}
