// Package auth implements a pluggable authentication provider registry and credential lifecycle manager.
//
// # Provider Contract
//
// Every authentication backend satisfies the [Provider] interface: authenticate, validate,
// refresh, and revoke. Variants that do not support an operation still implement it as a
// documented no-op rather than omitting it, so the [Manager] never needs to inspect the
// concrete provider type.
//
// # Bundled Providers
//
// Four provider variants ship with the package:
//
//   - [OAuth2Provider] : authenticates on access token presence, refresh stamps metadata
//   - [BasicProvider] : authenticates on username + password, refresh and revoke are no-ops
//   - [APIKeyProvider] : authenticates on API key presence, refresh is a no-op
//   - [JWTProvider] : authenticates on access token presence, refresh stamps metadata
//
// Real backends (OAuth clients, development stubs) plug in by implementing [Provider]
// themselves; the services package adapts its Hugging Face and dev-auth clients this way.
//
// # Credential Lifecycle
//
// The [Manager] holds two collections keyed by provider id: registered providers and the
// current credential per provider. A provider transitions from registered with no
// credential, to authenticated once [Manager.Authenticate] succeeds, and back once
// [Manager.RevokeCredentials] succeeds or [Manager.ClearCredentials] runs. Refreshing
// keeps the credential authenticated while updating its token material in place.
//
// # Error Handling
//
// Structural misuse raises one of three sentinel errors matched with [errors.Is]:
//
//   - [ErrDuplicateProvider] : registering an id that already exists
//   - [ErrProviderNotFound] : operating on an unregistered id
//   - [ErrNoCredentials] : refreshing an id with nothing stored
//
// Provider-level outcomes (rejected credentials, invalid tokens) are boolean results,
// never errors. Providers themselves never raise for expected failure modes; missing
// fields evaluate to false.
//
// # Concurrency
//
// A single coarse RWMutex guards both collections, so one Manager instance is safe for
// concurrent callers such as the web server and TUI sharing a process.
package auth
