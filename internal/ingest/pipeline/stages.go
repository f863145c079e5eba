package pipeline

import (
	"context"

	"github.com/google/uuid"

	"github.com/allisson/eventpost/internal/database"
	apperrors "github.com/allisson/eventpost/internal/errors"
	"github.com/allisson/eventpost/internal/ingest/domain"
)

// EventTypeLog is the default type assigned to events that arrive untyped.
const EventTypeLog = "log"

// IdentityStage assigns the platform event ID and defaults the event type.
type IdentityStage struct{}

// NewIdentityStage creates an identity stage.
func NewIdentityStage() *IdentityStage {
	return &IdentityStage{}
}

// Name returns the stage name.
func (i *IdentityStage) Name() string {
	return "identity"
}

// Apply assigns a time-ordered UUID as the event ID and defaults the
// event type to "log" when the client did not supply one.
func (i *IdentityStage) Apply(_ context.Context, event *domain.ParsedEvent) error {
	id, err := uuid.NewV7()
	if err != nil {
		return apperrors.Wrap(err, "failed to generate event id")
	}
	event.ID = id.String()

	if event.Type == "" {
		event.Type = EventTypeLog
	}

	return nil
}

// PersistenceStage stores the processed event inside a transaction.
type PersistenceStage struct {
	eventRepository EventRepository
	txManager       database.TxManager
}

// NewPersistenceStage creates a persistence stage.
func NewPersistenceStage(
	eventRepository EventRepository,
	txManager database.TxManager,
) *PersistenceStage {
	return &PersistenceStage{
		eventRepository: eventRepository,
		txManager:       txManager,
	}
}

// Name returns the stage name.
func (p *PersistenceStage) Name() string {
	return "persistence"
}

// Apply persists the event.
func (p *PersistenceStage) Apply(ctx context.Context, event *domain.ParsedEvent) error {
	return p.txManager.WithTx(ctx, func(ctx context.Context) error {
		return p.eventRepository.Create(ctx, event)
	})
}
