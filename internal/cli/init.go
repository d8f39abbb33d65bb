// Package cli holds the start-up and shutdown plumbing shared by the
// expense-api, expense-web and expense-worker binaries.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"expensetracker/internal/config"
	"expensetracker/internal/log"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
)

// SetupLogger builds the process logger at the given LOG_LEVEL and makes it
// the slog default.
func SetupLogger(level string) *log.Logger {
	cfg := log.DefaultConfig()
	cfg.Level = log.ParseLevel(level)
	logger := log.New(cfg)
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile loads .env (or the given files) for local development. A
// missing file is not an error.
func LoadEnvFile(files ...string) error {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load env file: %w", err)
	}
	return nil
}

// LoadAndValidateConfig reads the environment and validates it.
func LoadAndValidateConfig(logger *log.Logger) (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed",
			log.FieldError, err.Error(),
			log.FieldErrorType, log.ErrorTypeConfiguration)
		return nil, err
	}
	return cfg, nil
}

// SignalContext is cancelled on SIGINT or SIGTERM.
func SignalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// Server is satisfied by http.Server and the servers in internal/http.
type Server interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

// Serve runs srv until ctx is done, then shuts it down within timeout. A
// listen failure is returned; a clean shutdown returns nil.
func Serve(ctx context.Context, logger *log.Logger, timeout time.Duration, name, addr string, srv Server) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting server", "server", name, "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("%s: %w", name, err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server", "server", name, log.FieldOperation, log.OpShutdown)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "server", name, log.FieldError, err.Error())
			return fmt.Errorf("%s shutdown: %w", name, err)
		}
		logger.Info("Server stopped gracefully", "server", name)
		return nil
	})

	return g.Wait()
}
