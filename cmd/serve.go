package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/desertthunder/jingletube/internal/server"
	"github.com/desertthunder/jingletube/internal/services"
	"github.com/urfave/cli/v3"
)

// Request limiter settings for the public surface.
const (
	serveRateLimit = 20.0
	serveRateBurst = 40
)

// Serve runs the karaoke web server until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	if host := cmd.String("host"); host != "" {
		r.config.Server.Host = host
	}
	if port := cmd.Int("port"); port > 0 {
		r.config.Server.Port = port
	}

	var oauthSrv services.OAuthService
	if r.hf != nil {
		oauthSrv = r.hf
	}

	app, err := server.NewApp(server.AppOpts{
		Library:    r.library,
		Manager:    r.manager,
		OAuth:      oauthSrv,
		ProviderID: hfProviderID,
		Logger:     r.logger,
	})
	if err != nil {
		return fmt.Errorf("failed to build web app: %w", err)
	}

	router := server.NewBasicRouter()
	router.Use(server.Logging(r.logger))
	router.Use(server.RateLimit(serveRateLimit, serveRateBurst))
	router.Handler(app)

	addr := r.config.Server.Addr()
	httpServer := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	serverErrors := make(chan error, 1)
	go func() {
		r.logger.Info("karaoke server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	r.writePlain("🎤 JingleTube serving on http://%s\n", addr)
	if oauthSrv != nil {
		r.writePlain("   Hugging Face sign-in enabled at /auth/login\n")
	} else {
		r.writePlain("   Running without OAuth (set [credentials.huggingface] to enable sign-in)\n")
	}
	r.writePlain("Press Ctrl+C to stop.\n")

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case <-sigCtx.Done():
	}

	r.logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down cleanly: %w", err)
	}

	return nil
}

// serveCommand runs the web server.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the karaoke web server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Interface to bind (overrides config)",
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to listen on (overrides config)",
			},
		},
		Action: r.Serve,
	}
}
