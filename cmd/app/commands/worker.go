package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/allisson/eventpost/internal/app"
	"github.com/allisson/eventpost/internal/config"
)

// shutdownTimeout bounds how long in-flight queue entries may take to settle
// after a shutdown signal.
const shutdownTimeout = 30 * time.Second

// RunWorker starts the event-post ingestion worker with graceful shutdown
// support. Loads configuration, initializes the DI container and drains the
// post queue until receiving SIGINT/SIGTERM or encountering a fatal error.
// The Prometheus metrics server runs alongside the worker pool.
func RunWorker(ctx context.Context, version string) error {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode based on log level
	gin.SetMode(cfg.GetGinMode())

	// Create DI container
	container := app.NewContainer(cfg)

	// Get logger from container
	logger := container.Logger()
	logger.Info("starting ingest worker", slog.String("version", version))

	// Ensure cleanup on exit
	defer closeContainer(container, logger)

	// Setup graceful shutdown
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Get worker pool from container (this initializes all dependencies)
	worker, err := container.Worker(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize worker: %w", err)
	}

	// Get metrics server from container
	metricsServer, err := container.MetricsServer()
	if err != nil {
		return fmt.Errorf("failed to initialize metrics server: %w", err)
	}

	// Start worker pool and metrics server in goroutines
	workerDone := make(chan error, 1)
	go func() {
		workerDone <- worker.Run(ctx)
	}()

	serverErr := make(chan error, 1)
	go func() {
		if err := metricsServer.Start(ctx); err != nil {
			serverErr <- fmt.Errorf("metrics server error: %w", err)
		}
	}()

	// Wait for shutdown signal or a fatal error
	var workerErr, fatalErr error
	workerFinished := false

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case workerErr = <-workerDone:
		workerFinished = true
		if workerErr != nil {
			logger.Error("worker error, initiating shutdown", slog.Any("error", workerErr))
		}
		cancel()
	case fatalErr = <-serverErr:
		logger.Error("metrics server error, initiating shutdown", slog.Any("error", fatalErr))
		cancel()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	var shutdownErrors []error
	if fatalErr != nil {
		shutdownErrors = append(shutdownErrors, fatalErr)
	}

	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics server shutdown: %w", err))
	}

	// Wait for the worker pool to settle its in-flight entries
	if !workerFinished {
		select {
		case workerErr = <-workerDone:
		case <-shutdownCtx.Done():
			shutdownErrors = append(shutdownErrors, errors.New("worker pool did not stop in time"))
		}
	}
	if workerErr != nil {
		shutdownErrors = append(shutdownErrors, fmt.Errorf("worker error: %w", workerErr))
	}

	if len(shutdownErrors) > 0 {
		return errors.Join(shutdownErrors...)
	}

	return nil
}
