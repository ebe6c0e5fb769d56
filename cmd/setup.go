package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/jingletube/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupConfig writes a starter config file with commented defaults.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("%w: config file already exists at %s", shared.ErrInvalidArgument, configPath)
	}

	r.logger.Info("creating config file", "path", configPath)
	if err := shared.CreateConfigFile(configPath); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}

	r.writePlain("✓ Created %s\n\n", configPath)
	r.writePlainln("Next steps:")
	r.writePlain("1. Set credentials.huggingface client_id and client_secret for OAuth login\n")
	r.writePlain("2. Run 'jingletube serve' to start the karaoke server\n")
	r.writePlain("3. Open http://localhost:%d in your browser\n", shared.DefaultConfig().Server.Port)

	return nil
}

// setupCommand handles first-run configuration
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "First-run configuration",
		Commands: []*cli.Command{
			{
				Name:  "config",
				Usage: "Write a starter config.toml",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to write the config file to",
						Value:   "config.toml",
					},
				},
				Action: r.SetupConfig,
			},
		},
	}
}
