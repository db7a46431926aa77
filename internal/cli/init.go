// Package cli provides common CLI initialization utilities shared by
// cmd/carteira and cmd/carteira-worker.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"carteira/internal/config"
	"carteira/internal/log"
)

// SetupLogger builds the process logger from LOG_LEVEL and LOG_FORMAT and
// installs it as the slog default.
func SetupLogger(cfg *config.Config) *log.Logger {
	lc := log.DefaultConfig()
	if cfg != nil {
		lc.Level = log.ParseLevel(cfg.LogLevel)
		lc.Format = cfg.LogFormat
	}
	logger := log.New(lc)
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads the web server configuration and builds the
// logger from it. It exits the process when validation fails.
func LoadAndValidateConfig() (*config.Config, *log.Logger) {
	cfg := config.Load()
	logger := SetupLogger(cfg)
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err.Error())
		os.Exit(1)
	}
	return cfg, logger
}

// LoadAndValidateWorkerConfig is LoadAndValidateConfig for the mirror worker.
func LoadAndValidateWorkerConfig() (*config.Config, *log.Logger) {
	cfg := config.Load()
	logger := SetupLogger(cfg)
	if err := cfg.ValidateWorker(); err != nil {
		logger.Error("Worker configuration validation failed", log.FieldError, err.Error())
		os.Exit(1)
	}
	return cfg, logger
}

// GracefulShutdown sets up signal handling for graceful shutdown.
// Returns a context that will be cancelled on shutdown signals,
// and a channel that is closed once cleanup has run or timed out.
func GracefulShutdown(logger *log.Logger, timeout time.Duration, cleanup func(ctx context.Context)) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()

		finished := make(chan struct{})
		go func() {
			if cleanup != nil {
				cleanup(shutdownCtx)
			}
			close(finished)
		}()

		select {
		case <-finished:
			logger.Info("Shutdown complete")
		case <-shutdownCtx.Done():
			logger.Warn("Shutdown timeout reached")
		}
		close(done)
	}()

	return ctx, done
}

// WaitForShutdown blocks until the context is cancelled and cleanup ended.
func WaitForShutdown(ctx context.Context, done <-chan struct{}) {
	<-ctx.Done()
	<-done
}
