// Command api serves materialized previews and audit records over HTTP
// for inspection.
package main

import (
	"context"
	"net/http"
	"time"

	"github.com/joho/godotenv"

	"mailproof/internal/config"
	"mailproof/internal/httpapi"
	"mailproof/internal/pkg/logger"
	"mailproof/internal/pkg/shutdown"
	"mailproof/internal/storage"
)

func main() {
	_ = godotenv.Load()

	log := logger.New(logger.Config{
		Level:       config.Env("LOG_LEVEL", "info"),
		Format:      config.Env("LOG_FORMAT", "json"),
		ServiceName: "mailproof-api",
	})

	log.Info("starting mailproof API", "version", "0.1.0")

	httpPort := config.Env("HTTP_PORT", "8080")
	prefix := config.Env("MAILPROOF_RESULTS_PREFIX", "previews")

	shutdownMgr := shutdown.NewManager(log, 30*time.Second)

	log.Info("initializing storage provider")
	sp, err := storage.NewProvider()
	if err != nil {
		log.LogFatal("failed to initialize storage provider", err)
	}
	log.Info("storage provider initialized", "provider", sp.Provider())

	router := httpapi.NewRouter(httpapi.Deps{
		SP:     sp,
		Log:    log,
		Prefix: prefix,
	})

	server := &http.Server{
		Addr:         "0.0.0.0:" + httpPort,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	shutdownMgr.Register("http-server", func(ctx context.Context) error {
		log.Info("shutting down HTTP server")
		return server.Shutdown(ctx)
	})

	go func() {
		log.Info("HTTP server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.LogFatal("HTTP server failed", err)
		}
	}()

	shutdownMgr.Wait()
}
