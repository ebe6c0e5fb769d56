package services

import (
	"context"

	"golang.org/x/oauth2"
)

// OAuthService defines the surface an OAuth backend exposes to the web
// server's login and callback handlers and to the auth CLI commands.
type OAuthService interface {
	// AuthURL returns the authorization URL for the given state parameter.
	// Implementations may generate per-call material (such as a PKCE
	// verifier) as a side effect.
	AuthURL(state string) string

	// Exchange trades the authorization code from the callback for a token.
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)

	// Refresh obtains a fresh token from the current refresh token.
	Refresh(ctx context.Context) (*oauth2.Token, error)

	// Revoke invalidates a token upstream and reports whether the provider
	// accepted the revocation.
	Revoke(ctx context.Context, token string) bool

	// Name returns the provider's display name (e.g. "Hugging Face").
	Name() string
}
