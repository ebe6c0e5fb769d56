package auth

import "github.com/charmbracelet/log"

// Provider is the contract every authentication backend satisfies. All four
// operations are total: variants that cannot perform an operation return a
// no-op result instead of omitting the method. Nil credentials always
// evaluate to a negative result.
type Provider interface {
	// ID returns the identifier the provider registers under.
	ID() string
	// Type reports the authentication scheme.
	Type() ProviderType
	// Authenticate checks whether the credential carries the material the
	// scheme requires. It reports acceptance only and never stores state.
	Authenticate(creds *Credentials) bool
	// ValidateToken reports whether the credential is still usable. It is
	// pure: no network calls, no mutation.
	ValidateToken(creds *Credentials) bool
	// RefreshToken renews the credential and returns the renewed value,
	// which may be the same pointer updated in place. Schemes without a
	// refresh flow return the credential unchanged.
	RefreshToken(creds *Credentials) *Credentials
	// RevokeToken invalidates the credential upstream where the scheme
	// supports it and reports whether revocation took effect.
	RevokeToken(creds *Credentials) bool
}

// providerBase carries the state shared by the bundled provider variants.
type providerBase struct {
	id     string
	config map[string]any
	logger *log.Logger
}

func newProviderBase(id string, config map[string]any, logger *log.Logger) providerBase {
	if config == nil {
		config = map[string]any{}
	}
	if logger == nil {
		logger = log.Default()
	}
	return providerBase{id: id, config: config, logger: logger}
}

// ID returns the identifier the provider registers under.
func (p providerBase) ID() string { return p.id }

// Config exposes the provider's configuration map.
func (p providerBase) Config() map[string]any { return p.config }
