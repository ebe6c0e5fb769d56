// Package services implements the clients the karaoke app talks through: the
// Hugging Face OAuth flow, the development login stub, and the raw JingleTube
// API client used by the CLI.
//
// # OAuth Service
//
// The [OAuthService] interface is the surface the server's login and callback
// handlers consume.
//
// [HuggingFaceService] implements it with golang.org/x/oauth2: authorization
// URLs carry a state parameter and a PKCE S256 challenge, the callback code is
// exchanged for a token, and refresh goes through the config's TokenSource.
// Revocation posts the token to the provider's revoke endpoint. Every request
// runs on a client with a 10 second timeout and is never retried.
//
// # Dev Auth
//
// [DevAuthService] manufactures a local session without any network: login
// always succeeds and issues either the fixed development token or, when a
// signing secret is configured, a minted HS256 JWT carrying the username and
// expiry. Validity is a local presence and expiry check only; tokens are
// never cryptographically verified.
//
// # Registry Adapters
//
// Both clients adapt to the auth registry contract through AsProvider, so the
// manager can drive a real OAuth backend and the dev stub exactly like the
// bundled providers. Network failures inside an adapter downgrade to false
// results and never cross the registry boundary as errors.
//
// # Error Handling
//
// Services use typed errors from the shared package:
//   - [shared.ErrMissingCredentials] : required client configuration absent
//   - [shared.ErrNotAuthenticated] : operation needs a prior login
//   - [shared.ErrNoRefreshToken] : refresh requested without one
//   - [shared.ErrRefreshFailed] : the provider rejected the refresh
//   - [shared.ErrAPIRequest] : HTTP request failed
package services
