// Package server provides HTTP routing, middleware, and the handlers behind the karaoke web app.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
// [Logging] and [RateLimit] cover the two middlewares the service ships with.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method patterns.
//
// # Application Handler
//
// [App] is the main handler: it renders the scoreboard page from the embedded templates and serves
// the JSON API (songs, scores, rankings, video parsing, export) over a shared [library.Library]
// and [auth.Manager]. It implements the [Handler] interface and dispatches on its own internal mux,
// so a [Router] mounts it once at the root.
//
// The browser OAuth pair ([App] routes /auth/login and /auth/callback) redirects to the provider,
// exchanges the returned code, and installs the token in the credential registry.
//
// # OAuth Callback Handler
//
// [OAuthHandler] implements the OAuth2 authorization code callback flow for the CLI.
//
// The handler validates the state parameter (CSRF protection), exchanges the authorization code for tokens,
// and sends the result through a channel.
//
// It only processes one callback to prevent replay attacks.
//
// # Current Usage
//
// When the user runs `jingletube auth login --provider huggingface`, a temporary HTTP server starts
// on the configured address, handles the callback, and shuts down after receiving the OAuth token.
// `jingletube serve` runs the full [App] behind a [BasicRouter] with logging and rate limiting.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
