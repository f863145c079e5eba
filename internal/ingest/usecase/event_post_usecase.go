package usecase

import (
	"context"
	"log/slog"
	"time"

	apperrors "github.com/allisson/eventpost/internal/errors"
	"github.com/allisson/eventpost/internal/ingest/domain"
	"github.com/allisson/eventpost/internal/metrics"
)

// eventPostUseCase implements EventPostUseCase.
//
// Each queue entry moves through: envelope validation, blob load and
// activation, payload guarding, parsing, quota trimming, the event pipeline
// and finally settlement. Permanent failures complete the entry so it never
// returns; transient failures abandon it for redelivery. Failed events of a
// multi-event post are split into fresh single-event posts instead of
// replaying the whole batch.
type eventPostUseCase struct {
	queue    QueueTransport
	blobs    BlobCoordinator
	guard    PayloadGuard
	parser   EventParserAdapter
	quota    QuotaTrimmer
	pipeline Pipeline
	retries  RetryPoster
	metrics  metrics.IngestMetrics
	logger   *slog.Logger
}

// NewEventPostUseCase creates the event-post processing use case.
func NewEventPostUseCase(
	queue QueueTransport,
	blobs BlobCoordinator,
	guard PayloadGuard,
	parser EventParserAdapter,
	quota QuotaTrimmer,
	pipeline Pipeline,
	retries RetryPoster,
	ingestMetrics metrics.IngestMetrics,
	logger *slog.Logger,
) EventPostUseCase {
	return &eventPostUseCase{
		queue:    queue,
		blobs:    blobs,
		guard:    guard,
		parser:   parser,
		quota:    quota,
		pipeline: pipeline,
		retries:  retries,
		metrics:  ingestMetrics,
		logger:   logger,
	}
}

// Process runs one queue entry through the full ingestion job.
func (u *eventPostUseCase) Process(
	ctx context.Context,
	entry *domain.QueueEntry,
) (domain.JobDisposition, error) {
	info := entry.Value
	if info == nil {
		return u.completeInvalid(ctx, entry, apperrors.New("queue entry has no post envelope"))
	}
	if err := info.Validate(); err != nil {
		return u.completeInvalid(ctx, entry, err)
	}

	createdAt := entry.EnqueuedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	data, err := u.blobs.LoadAndActivate(ctx, info.FilePath)
	if err != nil {
		u.logger.Warn("failed to load event post payload",
			slog.String("file_path", info.FilePath),
			slog.String("project_id", info.ProjectID),
			slog.String("error", err.Error()),
		)
		return u.abandon(ctx, entry, info, domain.DispositionMissingPayload, err)
	}
	entry.Status = domain.StatusActive
	info.Data = data

	payload, err := u.guard.Unpack(info.Data, info.ContentEncoding)
	if err != nil {
		u.logger.Error("discarding event post with unusable payload",
			slog.String("file_path", info.FilePath),
			slog.String("project_id", info.ProjectID),
			slog.String("error", err.Error()),
		)
		return u.discard(ctx, entry, info, createdAt)
	}

	events := u.parser.ParseEvents(ctx, info, payload, createdAt)
	if len(events) == 0 {
		return u.complete(ctx, entry, info, createdAt, domain.DispositionEmpty)
	}

	events, err = u.quota.Trim(ctx, info, events)
	if err != nil {
		return u.settlePreRunError(ctx, entry, info, createdAt, err)
	}

	if ctx.Err() != nil {
		return u.abandon(ctx, entry, info, domain.DispositionCancelled, nil)
	}

	outcomes, err := u.pipeline.Run(ctx, info, events)
	if err != nil {
		return u.settleRunError(ctx, entry, info, createdAt, events, err)
	}

	return u.settleOutcomes(ctx, entry, info, createdAt, events, outcomes)
}

// settlePreRunError resolves failures raised before the pipeline ran:
// permanent lookup failures drop the post, everything else is retried.
func (u *eventPostUseCase) settlePreRunError(
	ctx context.Context,
	entry *domain.QueueEntry,
	info *domain.EventPostInfo,
	createdAt time.Time,
	err error,
) (domain.JobDisposition, error) {
	switch apperrors.Classify(err) {
	case apperrors.NotFound, apperrors.Validation:
		u.logger.Error("dropping event post that can never be processed",
			slog.String("file_path", info.FilePath),
			slog.String("project_id", info.ProjectID),
			slog.String("error", err.Error()),
		)
		return u.complete(ctx, entry, info, createdAt, domain.DispositionRejected)
	case apperrors.Cancelled:
		return u.abandon(ctx, entry, info, domain.DispositionCancelled, nil)
	default:
		return u.abandon(ctx, entry, info, domain.DispositionErrored, err)
	}
}

// settleRunError resolves a batch-level pipeline failure. Multi-event posts
// are split into per-event retry posts so one poisoned event cannot hold the
// whole batch hostage; single-event posts are abandoned for redelivery.
func (u *eventPostUseCase) settleRunError(
	ctx context.Context,
	entry *domain.QueueEntry,
	info *domain.EventPostInfo,
	createdAt time.Time,
	events []*domain.ParsedEvent,
	err error,
) (domain.JobDisposition, error) {
	switch apperrors.Classify(err) {
	case apperrors.NotFound, apperrors.Validation:
		u.logger.Warn("pipeline rejected event batch",
			slog.String("file_path", info.FilePath),
			slog.String("project_id", info.ProjectID),
			slog.String("error", err.Error()),
		)
		return u.complete(ctx, entry, info, createdAt, domain.DispositionRejected)
	case apperrors.Cancelled:
		return u.abandon(ctx, entry, info, domain.DispositionCancelled, nil)
	}

	u.logger.Error("pipeline failed for event batch",
		slog.String("file_path", info.FilePath),
		slog.String("project_id", info.ProjectID),
		slog.Int("event_count", len(events)),
		slog.String("error", err.Error()),
	)

	if len(events) == 1 {
		return u.abandon(ctx, entry, info, domain.DispositionErrored, err)
	}

	if _, retryErr := u.retries.EnqueueEvents(ctx, info, events); retryErr != nil {
		return u.abandon(ctx, entry, info, domain.DispositionErrored, retryErr)
	}

	return u.complete(ctx, entry, info, createdAt, domain.DispositionSplitRetry)
}

// settleOutcomes accounts per-event results, spawns retry posts for
// recoverable failures and settles the entry. Usage was already billed by the
// quota trim, so no accounting happens here.
func (u *eventPostUseCase) settleOutcomes(
	ctx context.Context,
	entry *domain.QueueEntry,
	info *domain.EventPostInfo,
	createdAt time.Time,
	events []*domain.ParsedEvent,
	outcomes []*domain.PipelineOutcome,
) (domain.JobDisposition, error) {
	var processed, errored int64
	var retryEvents []*domain.ParsedEvent
	cancelled := false

	for _, outcome := range outcomes {
		switch {
		case outcome.IsCancelled:
			cancelled = true
		case outcome.HasError():
			errored++
			if apperrors.Classify(outcome.Err) != apperrors.Validation {
				retryEvents = append(retryEvents, outcome.Event)
			}
		case outcome.IsProcessed:
			processed++
		}
	}

	u.metrics.RecordBatchOutcome(ctx, processed, errored)

	if cancelled {
		return u.abandon(ctx, entry, info, domain.DispositionCancelled, nil)
	}

	if len(events) > 1 && len(retryEvents) > 0 {
		if _, err := u.retries.EnqueueEvents(ctx, info, retryEvents); err != nil {
			return u.abandon(ctx, entry, info, domain.DispositionErrored, err)
		}
		return u.complete(ctx, entry, info, createdAt, domain.DispositionSplitRetry)
	}

	if len(events) == 1 && errored > 0 {
		if apperrors.Classify(outcomes[0].Err) == apperrors.Transient {
			return u.abandon(ctx, entry, info, domain.DispositionErrored, outcomes[0].Err)
		}
		// Permanent per-event failure: retrying cannot help, drop the post.
		return u.complete(ctx, entry, info, createdAt, domain.DispositionRejected)
	}

	return u.complete(ctx, entry, info, createdAt, domain.DispositionProcessed)
}

func (u *eventPostUseCase) completeInvalid(
	ctx context.Context,
	entry *domain.QueueEntry,
	cause error,
) (domain.JobDisposition, error) {
	u.logger.Error("completing queue entry with invalid envelope",
		slog.String("entry_id", entry.ID),
		slog.String("error", cause.Error()),
	)
	if err := u.queue.Complete(ctx, entry); err != nil {
		return domain.DispositionInvalid, err
	}
	entry.Status = domain.StatusCompleted
	return domain.DispositionInvalid, nil
}

// discard finalizes the blob without archiving and completes the entry.
func (u *eventPostUseCase) discard(
	ctx context.Context,
	entry *domain.QueueEntry,
	info *domain.EventPostInfo,
	createdAt time.Time,
) (domain.JobDisposition, error) {
	if err := u.blobs.Finalize(ctx, info.FilePath, info.ProjectID, createdAt, false); err != nil {
		u.logger.Error("failed to finalize discarded event post blob",
			slog.String("file_path", info.FilePath),
			slog.String("error", err.Error()),
		)
	}
	if err := u.queue.Complete(ctx, entry); err != nil {
		return domain.DispositionDiscarded, err
	}
	entry.Status = domain.StatusCompleted
	return domain.DispositionDiscarded, nil
}

// complete finalizes the blob (honoring the post's archive flag) and
// acknowledges the entry. A finalize failure is logged but does not block
// completion; redelivering a fully processed post would duplicate events.
func (u *eventPostUseCase) complete(
	ctx context.Context,
	entry *domain.QueueEntry,
	info *domain.EventPostInfo,
	createdAt time.Time,
	disposition domain.JobDisposition,
) (domain.JobDisposition, error) {
	if err := u.blobs.Finalize(ctx, info.FilePath, info.ProjectID, createdAt, info.ShouldArchive); err != nil {
		u.logger.Error("failed to finalize event post blob",
			slog.String("file_path", info.FilePath),
			slog.String("error", err.Error()),
		)
	}
	if err := u.queue.Complete(ctx, entry); err != nil {
		return disposition, err
	}
	entry.Status = domain.StatusCompleted
	return disposition, nil
}

// abandon releases the activation marker and returns the entry to the queue.
func (u *eventPostUseCase) abandon(
	ctx context.Context,
	entry *domain.QueueEntry,
	info *domain.EventPostInfo,
	disposition domain.JobDisposition,
	cause error,
) (domain.JobDisposition, error) {
	if err := u.blobs.Release(ctx, info.FilePath); err != nil {
		u.logger.Warn("failed to release activation marker",
			slog.String("file_path", info.FilePath),
			slog.String("error", err.Error()),
		)
	}
	if err := u.queue.Abandon(ctx, entry); err != nil {
		return disposition, err
	}
	entry.Status = domain.StatusAbandoned
	return disposition, cause
}
