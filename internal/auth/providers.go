package auth

import (
	"time"

	"github.com/charmbracelet/log"
)

// refreshedAtKey is the metadata key stamped by providers that support refresh.
const refreshedAtKey = "refreshed_at"

func stampRefresh(creds *Credentials) *Credentials {
	if creds != nil {
		creds.SetMeta(refreshedAtKey, time.Now().UTC().Format(time.RFC3339))
	}
	return creds
}

// OAuth2Provider treats an access token as proof of an established session.
// Refresh stamps the metadata and keeps the token; real token rotation
// belongs to the backend client sitting behind the registry.
type OAuth2Provider struct {
	providerBase
}

func NewOAuth2Provider(id string, config map[string]any, logger *log.Logger) *OAuth2Provider {
	return &OAuth2Provider{providerBase: newProviderBase(id, config, logger)}
}

func (p *OAuth2Provider) Type() ProviderType { return TypeOAuth2 }

func (p *OAuth2Provider) Authenticate(creds *Credentials) bool {
	return creds != nil && creds.AccessToken != ""
}

func (p *OAuth2Provider) ValidateToken(creds *Credentials) bool {
	return creds != nil && creds.AccessToken != ""
}

func (p *OAuth2Provider) RefreshToken(creds *Credentials) *Credentials {
	return stampRefresh(creds)
}

func (p *OAuth2Provider) RevokeToken(creds *Credentials) bool { return true }

// BasicProvider authenticates on a username and password pair. It has no
// token lifecycle: refresh returns the credential unchanged and revoke is a
// no-op success, both logged as warnings.
type BasicProvider struct {
	providerBase
}

func NewBasicProvider(id string, config map[string]any, logger *log.Logger) *BasicProvider {
	return &BasicProvider{providerBase: newProviderBase(id, config, logger)}
}

func (p *BasicProvider) Type() ProviderType { return TypeBasic }

func (p *BasicProvider) Authenticate(creds *Credentials) bool {
	return creds != nil && creds.Username != "" && creds.Password != ""
}

func (p *BasicProvider) ValidateToken(creds *Credentials) bool {
	return creds != nil && creds.Username != "" && creds.Password != ""
}

func (p *BasicProvider) RefreshToken(creds *Credentials) *Credentials {
	p.logger.Warn("basic auth does not support token refresh", "provider", p.id)
	return creds
}

func (p *BasicProvider) RevokeToken(creds *Credentials) bool {
	p.logger.Warn("basic auth does not support token revocation", "provider", p.id)
	return true
}

// APIKeyProvider authenticates on the presence of an API key. Keys are
// static so refresh returns the credential unchanged with a warning.
type APIKeyProvider struct {
	providerBase
}

func NewAPIKeyProvider(id string, config map[string]any, logger *log.Logger) *APIKeyProvider {
	return &APIKeyProvider{providerBase: newProviderBase(id, config, logger)}
}

func (p *APIKeyProvider) Type() ProviderType { return TypeAPIKey }

func (p *APIKeyProvider) Authenticate(creds *Credentials) bool {
	return creds != nil && creds.APIKey != ""
}

func (p *APIKeyProvider) ValidateToken(creds *Credentials) bool {
	return creds != nil && creds.APIKey != ""
}

func (p *APIKeyProvider) RefreshToken(creds *Credentials) *Credentials {
	p.logger.Warn("api keys do not support refresh", "provider", p.id)
	return creds
}

func (p *APIKeyProvider) RevokeToken(creds *Credentials) bool { return true }

// JWTProvider treats a bearer token as proof of identity. Validation is a
// presence check only; no signature verification happens here.
type JWTProvider struct {
	providerBase
}

func NewJWTProvider(id string, config map[string]any, logger *log.Logger) *JWTProvider {
	return &JWTProvider{providerBase: newProviderBase(id, config, logger)}
}

func (p *JWTProvider) Type() ProviderType { return TypeJWT }

func (p *JWTProvider) Authenticate(creds *Credentials) bool {
	return creds != nil && creds.AccessToken != ""
}

func (p *JWTProvider) ValidateToken(creds *Credentials) bool {
	return creds != nil && creds.AccessToken != ""
}

func (p *JWTProvider) RefreshToken(creds *Credentials) *Credentials {
	return stampRefresh(creds)
}

func (p *JWTProvider) RevokeToken(creds *Credentials) bool { return true }
