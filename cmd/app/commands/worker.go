package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/allisson/tokenstore/internal/app"
	"github.com/allisson/tokenstore/internal/config"
)

// RunWorker starts the background purge worker alongside the operational
// HTTP server, with graceful shutdown support. Loads configuration,
// initializes the DI container, and blocks until receiving SIGINT/SIGTERM
// or encountering a fatal error. On shutdown the ops server drains within
// DBConnMaxLifetime timeout.
func RunWorker(ctx context.Context, version string) error {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode based on log level
	gin.SetMode(cfg.GetGinMode())

	// Create DI container
	container := app.NewContainer(cfg)

	// Get logger from container
	logger := container.Logger()
	logger.Info("starting worker", slog.String("version", version))

	// Ensure cleanup on exit
	defer closeContainer(container, logger)

	// Get purge worker from container (this initializes all dependencies)
	purgeWorker, err := container.PurgeWorker()
	if err != nil {
		return fmt.Errorf("failed to initialize purge worker: %w", err)
	}

	// Get ops server from container
	opsServer, err := container.OpsServer()
	if err != nil {
		return fmt.Errorf("failed to initialize ops server: %w", err)
	}

	// Setup graceful shutdown
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Run the purger and the ops server until a signal or a failure cancels
	// the group context
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := purgeWorker.Start(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("purge worker error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		if err := opsServer.Start(gctx); err != nil {
			return fmt.Errorf("ops server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.DBConnMaxLifetime)
		defer shutdownCancel()

		if err := opsServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("ops server shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("worker stopped with error", slog.Any("error", err))
		return err
	}

	logger.Info("worker stopped")
	return nil
}
