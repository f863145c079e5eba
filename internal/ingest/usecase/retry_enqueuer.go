package usecase

import (
	"context"
	"fmt"
	"log/slog"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	apperrors "github.com/allisson/eventpost/internal/errors"
	"github.com/allisson/eventpost/internal/ingest/domain"
	"github.com/allisson/eventpost/internal/ingest/service"
)

// RetryEnqueuer converts individual failed events of a multi-event post
// into fresh single-event posts: each event is serialized, stored as a new
// blob and enqueued with its own metadata envelope.
type RetryEnqueuer struct {
	queue                queueEnqueuer
	blobs                BlobCoordinator
	compressionThreshold int
	logger               *slog.Logger
}

type queueEnqueuer interface {
	Enqueue(ctx context.Context, info *domain.EventPostInfo) error
}

// NewRetryEnqueuer creates a retry enqueuer. Serialized events at or above
// compressionThreshold bytes are gzip-compressed before storage.
func NewRetryEnqueuer(
	queue queueEnqueuer,
	blobs BlobCoordinator,
	compressionThreshold int,
	logger *slog.Logger,
) *RetryEnqueuer {
	return &RetryEnqueuer{
		queue:                queue,
		blobs:                blobs,
		compressionThreshold: compressionThreshold,
		logger:               logger,
	}
}

// EnqueueEvents spawns one retry post per event, carrying over the source
// post's client metadata. It stops at the first failure and returns how many
// retry posts were enqueued; the caller decides what to do with the original
// entry based on the error.
func (r *RetryEnqueuer) EnqueueEvents(
	ctx context.Context,
	source *domain.EventPostInfo,
	events []*domain.ParsedEvent,
) (int, error) {
	enqueued := 0

	for _, event := range events {
		if err := r.enqueueEvent(ctx, source, event); err != nil {
			return enqueued, err
		}
		enqueued++
	}

	r.logger.Info("re-enqueued failed events as single-event posts",
		slog.String("project_id", source.ProjectID),
		slog.String("source_file_path", source.FilePath),
		slog.Int("count", enqueued),
	)

	return enqueued, nil
}

func (r *RetryEnqueuer) enqueueEvent(
	ctx context.Context,
	source *domain.EventPostInfo,
	event *domain.ParsedEvent,
) error {
	data, err := json.Marshal(event)
	if err != nil {
		return apperrors.Wrap(err, "failed to serialize event for retry")
	}

	contentEncoding := ""
	if len(data) >= r.compressionThreshold {
		compressed, err := service.Compress(data)
		if err != nil {
			return apperrors.Wrap(err, "failed to compress retry payload")
		}
		data = compressed
		contentEncoding = domain.ContentEncodingGzip
	}

	id, err := uuid.NewV7()
	if err != nil {
		return apperrors.Wrap(err, "failed to generate retry post id")
	}
	path := fmt.Sprintf("q/%s.json", id)

	if err := r.blobs.Store(ctx, path, data); err != nil {
		return err
	}

	info := &domain.EventPostInfo{
		FilePath:        path,
		ProjectID:       source.ProjectID,
		APIVersion:      source.APIVersion,
		UserAgent:       source.UserAgent,
		IPAddress:       source.IPAddress,
		CharSet:         source.CharSet,
		ContentEncoding: contentEncoding,
		MediaType:       source.MediaType,
		ShouldArchive:   source.ShouldArchive,
	}

	return r.queue.Enqueue(ctx, info)
}
