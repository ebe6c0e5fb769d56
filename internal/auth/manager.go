package auth

import (
	"fmt"
	"sort"
	"sync"

	"github.com/charmbracelet/log"
)

// Structural misuse of the registry raises one of these sentinels, wrapped
// with the offending provider id. Provider-level outcomes (rejected
// credentials, failed revocations) are boolean results instead.
var (
	ErrDuplicateProvider = fmt.Errorf("provider already registered")
	ErrProviderNotFound  = fmt.Errorf("provider not found")
	ErrNoCredentials     = fmt.Errorf("no credentials stored")
)

// Manager is the provider registry and credential store. It keeps two
// collections keyed by provider id: registered providers, and at most one
// current credential per id. All delegation happens through the [Provider]
// interface; the manager never inspects concrete provider types. A single
// RWMutex guards both collections so one instance can back the web server
// and the TUI at the same time.
type Manager struct {
	mu          sync.RWMutex
	providers   map[string]Provider
	credentials map[string]*Credentials
	logger      *log.Logger
}

// NewManager constructs an empty registry. A nil logger falls back to the
// package default.
func NewManager(logger *log.Logger) *Manager {
	if logger == nil {
		logger = log.Default()
	}
	return &Manager{
		providers:   map[string]Provider{},
		credentials: map[string]*Credentials{},
		logger:      logger,
	}
}

// RegisterProvider inserts a provider under its own id.
func (m *Manager) RegisterProvider(p Provider) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := p.ID()
	if _, exists := m.providers[id]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateProvider, id)
	}

	m.providers[id] = p
	m.logger.Info("registered authentication provider", "provider", id, "type", p.Type())
	return nil
}

// UnregisterProvider removes the provider entry and reports whether it
// existed. Any stored credential stays in place, so a provider
// re-registered under the same id picks its credential back up.
func (m *Manager) UnregisterProvider(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.providers[id]; !exists {
		return false
	}

	delete(m.providers, id)
	m.logger.Info("unregistered authentication provider", "provider", id)
	return true
}

// Provider returns the provider registered under id.
func (m *Manager) Provider(id string) (Provider, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.providers[id]
	return p, ok
}

// ListProviders returns the registered provider ids in sorted order.
func (m *Manager) ListProviders() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.providers))
	for id := range m.providers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Authenticate delegates to the provider registered under id and stores the
// credential when the provider accepts it. A rejected credential leaves any
// previously stored credential untouched.
func (m *Manager) Authenticate(id string, creds *Credentials) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.providers[id]
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrProviderNotFound, id)
	}

	if !p.Authenticate(creds) {
		m.logger.Warn("authentication failed", "provider", id)
		return false, nil
	}

	if creds != nil && creds.Metadata == nil {
		creds.Metadata = map[string]any{}
	}
	m.credentials[id] = creds
	m.logger.Info("authentication successful", "provider", id)
	return true, nil
}

// ValidateCredentials reports whether the stored credential for id is still
// usable. A missing provider or credential reports false rather than raising.
func (m *Manager) ValidateCredentials(id string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.validateLocked(id)
}

func (m *Manager) validateLocked(id string) bool {
	creds, ok := m.credentials[id]
	if !ok {
		return false
	}
	p, ok := m.providers[id]
	if !ok {
		return false
	}
	return p.ValidateToken(creds)
}

// RefreshCredentials renews the stored credential for id through its
// provider and stores the result. Refresh itself never fails: a provider
// without a refresh flow hands the credential back unchanged.
func (m *Manager) RefreshCredentials(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.providers[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrProviderNotFound, id)
	}
	creds, ok := m.credentials[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoCredentials, id)
	}

	m.credentials[id] = p.RefreshToken(creds)
	m.logger.Info("credentials refreshed", "provider", id)
	return nil
}

// RevokeCredentials invalidates and deletes the stored credential for id.
// It reports false when nothing is stored, no provider is registered, or
// the provider rejects the revocation; a rejected revocation leaves the
// credential in place.
func (m *Manager) RevokeCredentials(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	creds, ok := m.credentials[id]
	if !ok {
		return false
	}
	p, ok := m.providers[id]
	if !ok {
		return false
	}

	if !p.RevokeToken(creds) {
		m.logger.Warn("revocation rejected", "provider", id)
		return false
	}

	delete(m.credentials, id)
	m.logger.Info("credentials revoked", "provider", id)
	return true
}

// Credentials returns the stored credential for id.
func (m *Manager) Credentials(id string) (*Credentials, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	creds, ok := m.credentials[id]
	return creds, ok
}

// Status re-validates every registered provider and returns an id to
// validity mapping. It is a fresh sweep on every call, never a cached read.
func (m *Manager) Status() map[string]bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	status := make(map[string]bool, len(m.providers))
	for id := range m.providers {
		status[id] = m.validateLocked(id)
	}
	return status
}

// ClearCredentials drops every stored credential. Provider registrations
// survive, so each id returns to its pre-authentication state.
func (m *Manager) ClearCredentials() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.credentials = map[string]*Credentials{}
	m.logger.Info("all credentials cleared")
}
