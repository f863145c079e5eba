package usecase

import (
	"context"
	"time"

	"github.com/allisson/eventpost/internal/ingest/domain"
	"github.com/allisson/eventpost/internal/metrics"
)

// eventPostUseCaseWithMetrics decorates EventPostUseCase with job-level
// metrics instrumentation.
type eventPostUseCaseWithMetrics struct {
	next    EventPostUseCase
	metrics metrics.IngestMetrics
}

// NewEventPostUseCaseWithMetrics wraps an EventPostUseCase with metrics
// recording.
func NewEventPostUseCaseWithMetrics(
	useCase EventPostUseCase,
	m metrics.IngestMetrics,
) EventPostUseCase {
	return &eventPostUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// Process records the job disposition, status and duration.
func (e *eventPostUseCaseWithMetrics) Process(
	ctx context.Context,
	entry *domain.QueueEntry,
) (domain.JobDisposition, error) {
	start := time.Now()
	disposition, err := e.next.Process(ctx, entry)

	status := "success"
	if err != nil {
		status = "error"
	}

	e.metrics.RecordJob(ctx, string(disposition), status, time.Since(start))

	return disposition, err
}
