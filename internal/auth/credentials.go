package auth

// ProviderType identifies the authentication scheme a provider implements.
type ProviderType string

const (
	TypeOAuth2 ProviderType = "oauth2"
	TypeBasic  ProviderType = "basic"
	TypeAPIKey ProviderType = "api_key"
	TypeJWT    ProviderType = "jwt"
	TypeCustom ProviderType = "custom"
)

// Credentials carries the token and identity material for one provider.
// Which fields are populated depends on the scheme: OAuth2 and JWT flows
// fill the token fields, basic auth fills username and password, API key
// auth fills the key. Metadata is always a usable map, so callers annotate
// credentials without nil checks.
type Credentials struct {
	Type         ProviderType   `json:"auth_type"`
	AccessToken  string         `json:"access_token,omitempty"`
	RefreshToken string         `json:"refresh_token,omitempty"`
	Username     string         `json:"username,omitempty"`
	Password     string         `json:"password,omitempty"`
	APIKey       string         `json:"api_key,omitempty"`
	ExpiresIn    int            `json:"expires_in,omitempty"`
	Metadata     map[string]any `json:"metadata"`
}

// NewCredentials returns an empty credential of the given type with its
// metadata map allocated.
func NewCredentials(pt ProviderType) *Credentials {
	return &Credentials{Type: pt, Metadata: map[string]any{}}
}

// SetMeta records a metadata entry, allocating the map when the credential
// was constructed as a bare literal.
func (c *Credentials) SetMeta(key string, value any) {
	if c.Metadata == nil {
		c.Metadata = map[string]any{}
	}
	c.Metadata[key] = value
}
