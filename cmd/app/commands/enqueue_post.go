package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"

	"github.com/allisson/eventpost/internal/app"
	"github.com/allisson/eventpost/internal/config"
	"github.com/allisson/eventpost/internal/ingest/domain"
)

// RunEnqueuePost stores a local payload file in blob storage and enqueues
// the post envelope for processing. Intended for operational replays and
// smoke tests against a running worker.
func RunEnqueuePost(
	ctx context.Context,
	payloadPath string,
	projectID string,
	apiVersion int,
	contentEncoding string,
	mediaType string,
	charSet string,
	shouldArchive bool,
) error {
	data, err := os.ReadFile(payloadPath)
	if err != nil {
		return fmt.Errorf("failed to read payload file: %w", err)
	}

	// Load configuration
	cfg := config.Load()

	// Create DI container
	container := app.NewContainer(cfg)

	// Get logger from container
	logger := container.Logger()

	// Ensure cleanup on exit
	defer closeContainer(container, logger)

	blobCoordinator, err := container.BlobCoordinator(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize blob coordinator: %w", err)
	}

	queue, err := container.Queue(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize queue: %w", err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("failed to generate post id: %w", err)
	}

	info := &domain.EventPostInfo{
		FilePath:        fmt.Sprintf("q/%s.json", id),
		ProjectID:       projectID,
		APIVersion:      apiVersion,
		ContentEncoding: contentEncoding,
		MediaType:       mediaType,
		CharSet:         charSet,
		ShouldArchive:   shouldArchive,
	}
	if err := info.Validate(); err != nil {
		return fmt.Errorf("invalid event post: %w", err)
	}

	if err := blobCoordinator.Store(ctx, info.FilePath, data); err != nil {
		return fmt.Errorf("failed to store payload: %w", err)
	}

	if err := queue.Enqueue(ctx, info); err != nil {
		return fmt.Errorf("failed to enqueue post: %w", err)
	}

	logger.Info("event post enqueued",
		slog.String("file_path", info.FilePath),
		slog.String("project_id", projectID),
		slog.Int("payload_bytes", len(data)),
	)

	return nil
}
