// Package usecase implements event-post ingestion: draining the post queue,
// guarding and parsing payloads, enforcing organization quotas, running the
// event pipeline and deciding each queue entry's fate.
package usecase

import (
	"context"
	"time"

	"github.com/allisson/eventpost/internal/ingest/domain"
)

// QueueTransport is the lease-based queue the ingest worker drains.
type QueueTransport interface {
	Dequeue(ctx context.Context) (*domain.QueueEntry, error)
	Complete(ctx context.Context, entry *domain.QueueEntry) error
	Abandon(ctx context.Context, entry *domain.QueueEntry) error
	Enqueue(ctx context.Context, info *domain.EventPostInfo) error
}

// BlobCoordinator manages post bodies and their activation markers in
// blob storage.
type BlobCoordinator interface {
	LoadAndActivate(ctx context.Context, path string) ([]byte, error)
	Release(ctx context.Context, path string) error
	Finalize(ctx context.Context, path, projectID string, createdAt time.Time, shouldArchive bool) error
	Store(ctx context.Context, path string, data []byte) error
}

// PayloadGuard validates and decompresses raw post bodies.
type PayloadGuard interface {
	Unpack(data []byte, contentEncoding string) ([]byte, error)
}

// EventParserAdapter turns a raw payload into normalized parsed events.
type EventParserAdapter interface {
	ParseEvents(
		ctx context.Context,
		info *domain.EventPostInfo,
		payload []byte,
		createdUtc time.Time,
	) []*domain.ParsedEvent
}

// Pipeline processes a batch of parsed events.
type Pipeline interface {
	Run(
		ctx context.Context,
		post *domain.EventPostInfo,
		events []*domain.ParsedEvent,
	) ([]*domain.PipelineOutcome, error)
}

// ProjectRepository resolves projects.
type ProjectRepository interface {
	GetByID(ctx context.Context, projectID string) (*domain.Project, error)
}

// OrganizationRepository resolves organizations and tracks their event usage.
type OrganizationRepository interface {
	Get(ctx context.Context, organizationID string) (*domain.Organization, error)
	IncrementUsage(ctx context.Context, organizationID string, count int, applyHourlyLimit bool) error
}

// QuotaTrimmer caps an event batch to the owning organization's remaining
// allowance and records usage for the events it keeps.
type QuotaTrimmer interface {
	Trim(
		ctx context.Context,
		info *domain.EventPostInfo,
		events []*domain.ParsedEvent,
	) ([]*domain.ParsedEvent, error)
}

// RetryPoster re-enqueues individual events of a failed multi-event post as
// fresh single-event posts.
type RetryPoster interface {
	EnqueueEvents(
		ctx context.Context,
		source *domain.EventPostInfo,
		events []*domain.ParsedEvent,
	) (int, error)
}

// EventPostUseCase processes queue entries holding event posts.
type EventPostUseCase interface {
	// Process runs one dequeued entry through the full ingestion job and
	// settles it (complete or abandon). The returned disposition describes
	// how the entry was resolved; the error reports infrastructure
	// failures encountered along the way.
	Process(ctx context.Context, entry *domain.QueueEntry) (domain.JobDisposition, error)
}
