package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/desertthunder/jingletube/internal/auth"
	"github.com/desertthunder/jingletube/internal/server"
	"github.com/desertthunder/jingletube/internal/services"
	"github.com/desertthunder/jingletube/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

// AuthLogin authenticates against the selected provider. The dev provider
// issues a local session token; huggingface runs the full OAuth2 flow with a
// local callback server and persists the issued tokens.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	provider := cmd.String("provider")

	switch provider {
	case devProviderID:
		return r.devLogin()
	case hfProviderID:
		return r.huggingFaceLogin(ctx)
	default:
		return fmt.Errorf("%w: unknown provider '%s' (use 'dev' or 'huggingface')", shared.ErrInvalidArgument, provider)
	}
}

func (r *Runner) devLogin() error {
	creds := auth.NewCredentials(auth.TypeCustom)

	ok, err := r.manager.Authenticate(devProviderID, creds)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}
	if !ok {
		return fmt.Errorf("%w: development login rejected", shared.ErrAuthFailed)
	}

	r.writePlain("✓ Logged in as %s\n", r.dev.Username())
	if token, issued := r.dev.Token(); issued {
		r.writePlain("Session token: %s\n", token)
	}

	return nil
}

func (r *Runner) huggingFaceLogin(ctx context.Context) error {
	if r.hf == nil {
		return fmt.Errorf("%w: Hugging Face client_id and client_secret must be set in config.toml", shared.ErrMissingCredentials)
	}

	token, err := r.doOAuth(r.config, r.hf, "authorization")
	if err != nil {
		return err
	}

	creds := auth.NewCredentials(auth.TypeOAuth2)
	creds.AccessToken = token.AccessToken
	creds.RefreshToken = token.RefreshToken
	if !token.Expiry.IsZero() {
		creds.ExpiresIn = int(time.Until(token.Expiry).Seconds())
	}

	if ok, err := r.manager.Authenticate(hfProviderID, creds); err != nil || !ok {
		return fmt.Errorf("%w: provider rejected issued token", shared.ErrAuthFailed)
	}

	if err := r.saveTokens(token); err != nil {
		return err
	}

	r.writePlainln("✓ Authorization successful")
	if r.configPath != "" {
		r.writePlain("✓ Tokens saved to %s\n\n", r.configPath)
	}
	r.writePlain("You can now use: jingletube serve\n")

	return nil
}

// AuthStatus checks the authentication state of a running server by calling
// its /health endpoint, and falls back to the local registry when no server
// answers.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	r.logger.Info("checking auth status")

	resp, err := r.api.Get(ctx, "/health")
	if err != nil {
		r.writePlain("⚠ No running server (start one with 'jingletube serve')\n\n")
		return r.writeLocalAuthStatus()
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d", shared.ErrServiceUnavailable, resp.StatusCode)
	}

	if !resp.IsJSON {
		return r.writePlain("✓ Service is healthy\nStatus: %s\n", string(resp.Body))
	}

	healthData, ok := resp.JSONData.(map[string]any)
	if !ok {
		return r.writePlain("✓ Service is healthy\n")
	}

	status, ok := healthData["status"].(string)
	if !ok {
		status = "unknown"
	}
	authenticated := false
	if flag, ok := healthData["authenticated"].(bool); ok {
		authenticated = flag
	}

	r.writePlain("✓ Service is healthy\n")
	r.writePlain("Status: %s\n", status)
	if authenticated {
		r.writePlain("Authentication: ✓ Authenticated\n")
	} else {
		r.writePlain("Authentication: ✗ Not authenticated\n")
	}

	return nil
}

func (r *Runner) writeLocalAuthStatus() error {
	r.writePlain("Local provider status:\n")
	statuses := r.manager.Status()
	for _, id := range r.manager.ListProviders() {
		if statuses[id] {
			r.writePlain("  %s: ✓ valid session\n", id)
		} else {
			r.writePlain("  %s: ✗ no valid session\n", id)
		}
	}
	return nil
}

// AuthLogout revokes the session for a provider and clears persisted tokens.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	provider := cmd.String("provider")

	revoked := r.manager.RevokeCredentials(provider)

	if provider == hfProviderID {
		r.config.Credentials.HuggingFace.AccessToken = ""
		r.config.Credentials.HuggingFace.RefreshToken = ""
		r.config.Credentials.HuggingFace.Expiry = time.Time{}
		if r.configPath != "" {
			if err := shared.SaveConfig(r.config, r.configPath); err != nil {
				r.logger.Warn("failed to clear stored tokens", "error", err)
			}
		}
	}

	if revoked {
		r.writePlain("✓ Logged out of %s\n", provider)
	} else {
		r.writePlain("✗ No active session for %s\n", provider)
	}

	return nil
}

// AuthProviders lists the registered providers and their session state.
func (r *Runner) AuthProviders(ctx context.Context, cmd *cli.Command) error {
	r.writePlainHeader("Registered Providers")

	statuses := r.manager.Status()
	for _, id := range r.manager.ListProviders() {
		p, ok := r.manager.Provider(id)
		if !ok {
			continue
		}
		mark := "✗"
		if statuses[id] {
			mark = "✓"
		}
		r.writePlain("%s %s (%s)\n", mark, id, p.Type())
	}

	return nil
}

// doOAuth executes the OAuth2 authorization flow with a local HTTP server
func (r *Runner) doOAuth(config *shared.Config, oauthSrv services.OAuthService, prefix string) (*oauth2.Token, error) {
	state := shared.GenerateState()

	authURL := oauthSrv.AuthURL(state)
	oauthHandler := server.NewOAuthHandler(oauthSrv, state)
	router := server.NewBasicRouter()
	router.Handler(oauthHandler)

	serverAddr := config.Server.Addr()
	httpServer := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	serverErrors := make(chan error, 1)
	go func() {
		r.logger.Infof("starting OAuth server for %s at %v", prefix, serverAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	time.Sleep(100 * time.Millisecond)

	r.writePlain("→ Opening browser for %s %s...\n", oauthSrv.Name(), prefix)
	if err := shared.OpenBrowser(authURL); err != nil {
		r.logger.Warnf("failed to open browser automatically %v", err)
		r.writePlainln("⚠ Could not open browser automatically.")
		r.writePlain("Please open this URL in your browser:\n%s\n\n", authURL)
	}

	r.writePlain("→ Waiting for authorization (2 minute timeout)...\n")

	timeout := time.NewTimer(2 * time.Minute)
	defer timeout.Stop()

	var result server.OAuthResult

	select {
	case result = <-oauthHandler.Result():
		// Got result from callback
	case err := <-serverErrors:
		return nil, fmt.Errorf("server error: %w", err)
	case <-timeout.C:
		return nil, fmt.Errorf("%w: authorization timed out after 2 minutes", shared.ErrTimeout)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		r.logger.Warn("error shutting down server", "error", err)
	}

	if result.Error() != nil {
		return nil, fmt.Errorf("authorization failed: %w", result.Error())
	}

	if result.Token == nil {
		return nil, fmt.Errorf("no token received")
	}

	return result.Token, nil
}

// authCommand handles authentication operations
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage authentication providers and sessions",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Authenticate with a provider",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "provider",
						Aliases: []string{"p"},
						Usage:   "Provider to authenticate with (dev or huggingface)",
						Value:   devProviderID,
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:   "status",
				Usage:  "Check current authentication state (calls /health)",
				Action: r.AuthStatus,
			},
			{
				Name:  "logout",
				Usage: "Revoke the current session for a provider",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "provider",
						Aliases: []string{"p"},
						Usage:   "Provider to log out of (dev or huggingface)",
						Value:   devProviderID,
					},
				},
				Action: r.AuthLogout,
			},
			{
				Name:   "providers",
				Usage:  "List registered providers and their session state",
				Action: r.AuthProviders,
			},
		},
	}
}
