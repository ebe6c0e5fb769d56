package main

import (
	"context"
	"errors"
	"os"

	"github.com/desertthunder/jingletube/internal/services"
	"github.com/desertthunder/jingletube/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	configPath := "config.toml"
	config := shared.DefaultConfig()
	if _, err := os.Stat(configPath); err == nil {
		if loadedConfig, err := shared.LoadConfig(configPath); err == nil {
			config = loadedConfig
		} else {
			logger.Warn("failed to load config, using defaults", "error", err)
		}
	}

	var hfService *services.HuggingFaceService
	if config.Credentials.HuggingFace.ClientID != "" && config.Credentials.HuggingFace.ClientSecret != "" {
		if svc, err := services.NewHuggingFaceService(config.Credentials.HuggingFace, logger); err == nil {
			hfService = svc
		} else {
			logger.Warn("hugging face login unavailable", "error", err)
		}
	} else if svc, err := services.NewHuggingFaceFromEnv(logger); err == nil {
		hfService = svc
	}

	runner := NewRunner(RunnerOpts{
		Config:      config,
		ConfigPath:  configPath,
		HuggingFace: hfService,
		Logger:      logger,
	})

	app := &cli.Command{
		Name:     "jingletube",
		Usage:    "Karaoke night scoring with YouTube backing tracks",
		Version:  "0.1.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		err_ := errors.Unwrap(err)
		if errors.Is(err_, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		} else {
			logger.Fatalf("application error: %v", err)
		}
	}
}
