// Registry adapters bridging services to the [auth.Provider] contract
package services

import (
	"context"
	"time"

	"github.com/desertthunder/jingletube/internal/auth"
	"golang.org/x/oauth2"
)

// hfProvider exposes a [HuggingFaceService] through the provider contract.
// Network failures downgrade to boolean rejections so registry sweeps never
// error out.
type hfProvider struct {
	id  string
	svc *HuggingFaceService
}

func (p *hfProvider) ID() string {
	return p.id
}

func (p *hfProvider) Type() auth.ProviderType {
	return auth.TypeOAuth2
}

// Authenticate accepts credentials carrying an access token and installs it
// on the underlying service.
func (p *hfProvider) Authenticate(creds *auth.Credentials) bool {
	if creds == nil || creds.AccessToken == "" {
		return false
	}

	p.svc.SetToken(&oauth2.Token{
		AccessToken:  creds.AccessToken,
		RefreshToken: creds.RefreshToken,
		TokenType:    "Bearer",
	})
	return true
}

// ValidateToken checks token presence. Remote validation happens lazily on
// the next API call.
func (p *hfProvider) ValidateToken(creds *auth.Credentials) bool {
	return creds != nil && creds.AccessToken != ""
}

// RefreshToken exchanges the stored refresh token for a new access token.
// Credentials without a refresh token, and failed exchanges, come back
// unchanged.
func (p *hfProvider) RefreshToken(creds *auth.Credentials) *auth.Credentials {
	if creds == nil || creds.RefreshToken == "" {
		return creds
	}

	p.svc.SetToken(&oauth2.Token{
		AccessToken:  creds.AccessToken,
		RefreshToken: creds.RefreshToken,
		TokenType:    "Bearer",
	})

	ctx, cancel := context.WithTimeout(context.Background(), hfRequestTimeout)
	defer cancel()

	tok, err := p.svc.Refresh(ctx)
	if err != nil {
		return creds
	}

	creds.AccessToken = tok.AccessToken
	if tok.RefreshToken != "" {
		creds.RefreshToken = tok.RefreshToken
	}
	if !tok.Expiry.IsZero() {
		creds.ExpiresIn = int(time.Until(tok.Expiry).Seconds())
	}
	creds.SetMeta("refreshed_at", time.Now().UTC().Format(time.RFC3339))
	return creds
}

// RevokeToken revokes the access token upstream.
func (p *hfProvider) RevokeToken(creds *auth.Credentials) bool {
	if creds == nil || creds.AccessToken == "" {
		return false
	}

	ctx, cancel := context.WithTimeout(context.Background(), hfRequestTimeout)
	defer cancel()

	return p.svc.Revoke(ctx, creds.AccessToken)
}

// devProvider exposes a [DevAuthService] through the provider contract.
type devProvider struct {
	id  string
	svc *DevAuthService
}

func (p *devProvider) ID() string {
	return p.id
}

func (p *devProvider) Type() auth.ProviderType {
	return auth.TypeCustom
}

// Authenticate runs the development login and copies the issued token into
// the credentials.
func (p *devProvider) Authenticate(creds *auth.Credentials) bool {
	if creds == nil {
		return false
	}
	if !p.svc.Login() {
		return false
	}

	token, _ := p.svc.Token()
	creds.AccessToken = token
	creds.Username = p.svc.Username()
	return true
}

// ValidateToken defers to the service's expiry check.
func (p *devProvider) ValidateToken(creds *auth.Credentials) bool {
	return creds != nil && p.svc.Valid()
}

// RefreshToken restamps the session window.
func (p *devProvider) RefreshToken(creds *auth.Credentials) *auth.Credentials {
	if creds == nil {
		return nil
	}
	if p.svc.Refresh() {
		creds.SetMeta("refreshed_at", time.Now().UTC().Format(time.RFC3339))
	}
	return creds
}

// RevokeToken ends the development session.
func (p *devProvider) RevokeToken(creds *auth.Credentials) bool {
	if creds == nil {
		return false
	}
	return p.svc.Logout()
}
