// Hugging Face OAuth implementation of [OAuthService]
//
// Endpoint and user payload shapes based on https://huggingface.co/docs/hub/oauth
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/jingletube/internal/auth"
	"github.com/desertthunder/jingletube/internal/shared"
	"golang.org/x/oauth2"
)

const (
	hfAuthURL     = "https://huggingface.co/oauth/authorize"
	hfTokenURL    = "https://huggingface.co/oauth/token"
	hfUserInfoURL = "https://huggingface.co/api/user"

	hfDefaultScope    = "openid profile email"
	hfDefaultRedirect = "http://localhost:7860/auth/callback"
	hfRequestTimeout  = 10 * time.Second
)

// HFUser represents a Hugging Face user profile.
type HFUser struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Fullname  string `json:"fullname"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatarUrl"`
	IsPro     bool   `json:"isPro"`
}

// HuggingFaceService implements [OAuthService] for Hugging Face. It uses
// [oauth2] for URL construction, the code exchange, and refresh; every
// request is bounded by a 10 second timeout and never retried.
type HuggingFaceService struct {
	config      *oauth2.Config
	token       *oauth2.Token
	verifier    string
	userInfoURL string
	httpClient  *http.Client
	logger      *log.Logger
}

// NewHuggingFaceService creates a Hugging Face OAuth client from the given
// credentials. The redirect URI and scopes fall back to the app defaults.
func NewHuggingFaceService(cfg shared.HuggingFaceConfig, logger *log.Logger) (*HuggingFaceService, error) {
	if cfg.ClientID == "" {
		return nil, fmt.Errorf("%w: client_id", shared.ErrMissingCredentials)
	}
	if cfg.ClientSecret == "" {
		return nil, fmt.Errorf("%w: client_secret", shared.ErrMissingCredentials)
	}
	if cfg.RedirectURI == "" {
		cfg.RedirectURI = hfDefaultRedirect
	}
	if cfg.Scopes == "" {
		cfg.Scopes = hfDefaultScope
	}
	if logger == nil {
		logger = log.Default()
	}

	config := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURI,
		Scopes:       strings.Fields(cfg.Scopes),
		Endpoint: oauth2.Endpoint{
			AuthURL:  hfAuthURL,
			TokenURL: hfTokenURL,
		},
	}

	return &HuggingFaceService{
		config:      config,
		userInfoURL: hfUserInfoURL,
		httpClient:  &http.Client{Timeout: hfRequestTimeout},
		logger:      logger,
	}, nil
}

// NewHuggingFaceFromEnv creates the client from HF_CLIENT_ID,
// HF_CLIENT_SECRET, HF_REDIRECT_URI, and the optional HF_SCOPE.
func NewHuggingFaceFromEnv(logger *log.Logger) (*HuggingFaceService, error) {
	cfg := shared.HuggingFaceConfig{
		ClientID:     os.Getenv("HF_CLIENT_ID"),
		ClientSecret: os.Getenv("HF_CLIENT_SECRET"),
		RedirectURI:  os.Getenv("HF_REDIRECT_URI"),
		Scopes:       os.Getenv("HF_SCOPE"),
	}

	if cfg.ClientID == "" || cfg.ClientSecret == "" || cfg.RedirectURI == "" {
		return nil, fmt.Errorf("%w: HF_CLIENT_ID, HF_CLIENT_SECRET, HF_REDIRECT_URI", shared.ErrMissingCredentials)
	}

	return NewHuggingFaceService(cfg, logger)
}

func (s *HuggingFaceService) Name() string {
	return "Hugging Face"
}

// AuthURL returns the authorization URL for the given state with a fresh
// PKCE S256 challenge. The matching verifier is held for the next Exchange.
func (s *HuggingFaceService) AuthURL(state string) string {
	s.verifier = oauth2.GenerateVerifier()
	return s.config.AuthCodeURL(state, oauth2.S256ChallengeOption(s.verifier))
}

// Exchange trades the authorization code for a token, sending the PKCE
// verifier from the last AuthURL call when one exists.
func (s *HuggingFaceService) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)

	var opts []oauth2.AuthCodeOption
	if s.verifier != "" {
		opts = append(opts, oauth2.VerifierOption(s.verifier))
	}

	token, err := s.config.Exchange(ctx, code, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange auth code: %w", err)
	}

	s.token = token
	return token, nil
}

// Authenticate adopts an existing access token or exchanges an auth code.
func (s *HuggingFaceService) Authenticate(ctx context.Context, credentials map[string]string) error {
	if accessToken := credentials["access_token"]; accessToken != "" {
		s.token = &oauth2.Token{
			AccessToken:  accessToken,
			RefreshToken: credentials["refresh_token"],
			TokenType:    "Bearer",
		}
		return nil
	}

	if authCode := credentials["auth_code"]; authCode != "" {
		_, err := s.Exchange(ctx, authCode)
		return err
	}

	return fmt.Errorf("%w: access_token or auth_code", shared.ErrMissingCredentials)
}

// SetToken installs a previously issued token, such as one reloaded from the
// config file.
func (s *HuggingFaceService) SetToken(token *oauth2.Token) {
	s.token = token
}

// Token returns the current token, or nil before authentication.
func (s *HuggingFaceService) Token() *oauth2.Token {
	return s.token
}

// UserInfo retrieves the profile of the user the access token belongs to.
func (s *HuggingFaceService) UserInfo(ctx context.Context, accessToken string) (*HFUser, error) {
	if accessToken == "" {
		return nil, shared.ErrNotAuthenticated
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.userInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: user info returned status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	var user HFUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("failed to decode user info: %w", err)
	}

	return &user, nil
}

// Refresh obtains a new token from the stored refresh token and installs it.
// A refresh response without a new refresh token keeps the previous one.
func (s *HuggingFaceService) Refresh(ctx context.Context) (*oauth2.Token, error) {
	if s.token == nil {
		return nil, shared.ErrNotAuthenticated
	}
	if s.token.RefreshToken == "" {
		return nil, shared.ErrNoRefreshToken
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)

	// An expired copy forces the token source to hit the refresh endpoint.
	stale := *s.token
	stale.Expiry = time.Now().Add(-time.Minute)

	token, err := s.config.TokenSource(ctx, &stale).Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrRefreshFailed, err)
	}

	if token.RefreshToken == "" {
		token.RefreshToken = s.token.RefreshToken
	}
	s.token = token
	return token, nil
}

// Revoke invalidates a token upstream. Hugging Face takes the client
// credentials and the token as form values on {token_url}/revoke.
func (s *HuggingFaceService) Revoke(ctx context.Context, token string) bool {
	form := url.Values{
		"client_id":     {s.config.ClientID},
		"client_secret": {s.config.ClientSecret},
		"token":         {token},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.Endpoint.TokenURL+"/revoke", strings.NewReader(form.Encode()))
	if err != nil {
		s.logger.Error("failed to create revoke request", "err", err)
		return false
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.logger.Error("failed to revoke token", "err", err)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		s.logger.Warn("token revocation rejected", "status", resp.StatusCode)
		return false
	}
	return true
}

// AsProvider adapts the client to the registry contract under the given id.
func (s *HuggingFaceService) AsProvider(id string) auth.Provider {
	return &hfProvider{id: id, svc: s}
}
