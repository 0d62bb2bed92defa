// Command runner executes one coordinator run: it submits the configured
// email content to the selected rendering service, polls until the
// convergence engine stops, and writes the preview and audit artifacts.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"mailproof/internal/config"
	"mailproof/internal/pkg/logger"
	"mailproof/internal/rendering"
	"mailproof/internal/runner"
	"mailproof/internal/storage"
)

func main() {
	// .env is optional; real environments set the variables directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		// No logger config is trustworthy before config loads.
		fmt.Fprintln(os.Stderr, "configuration error:", err)
		os.Exit(1)
	}

	level := "info"
	if cfg.Debug {
		level = "debug"
	}
	log := logger.New(logger.Config{
		Level:       config.Env("LOG_LEVEL", level),
		Format:      config.Env("LOG_FORMAT", "json"),
		ServiceName: "mailproof-runner",
	})

	provider, err := rendering.NewProvider(rendering.Options{
		Service:  cfg.Service,
		APIKey:   cfg.APIKey,
		Password: cfg.Password,
		BaseURL:  config.Env("MAILPROOF_SERVICE_URL", ""),
	})
	if err != nil {
		log.LogFatal("failed to initialize rendering provider", err)
	}

	sp, err := storage.NewProvider()
	if err != nil {
		log.LogFatal("failed to initialize storage provider", err)
	}
	log.Info("storage provider initialized", "provider", sp.Provider())

	result, err := runner.Run(context.Background(), runner.Deps{
		Provider: provider,
		Store:    sp,
		Cfg:      cfg,
		Log:      log,
	})
	if err != nil {
		log.LogFatal("run failed", err)
	}

	log.Info("previews ready",
		"key", result.Key,
		"preview_file", result.Artifacts.PreviewKey,
		"completed", result.Audit.Completed,
		"failed", result.Audit.Failed,
		"attempts", result.Attempts,
	)
}
