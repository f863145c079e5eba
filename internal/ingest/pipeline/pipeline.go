// Package pipeline runs parsed events through an ordered chain of
// processing stages and reports a per-event outcome for each one.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	apperrors "github.com/allisson/eventpost/internal/errors"
	"github.com/allisson/eventpost/internal/ingest/domain"
)

// ProjectRepository resolves the project a post belongs to.
type ProjectRepository interface {
	GetByID(ctx context.Context, projectID string) (*domain.Project, error)
}

// EventRepository persists processed events.
type EventRepository interface {
	Create(ctx context.Context, event *domain.ParsedEvent) error
}

// Stage is a single per-event processing step.
type Stage interface {
	Name() string
	Apply(ctx context.Context, event *domain.ParsedEvent) error
}

// Pipeline processes a batch of parsed events and returns one outcome
// per event, in input order.
type Pipeline interface {
	Run(
		ctx context.Context,
		post *domain.EventPostInfo,
		events []*domain.ParsedEvent,
	) ([]*domain.PipelineOutcome, error)
}

// DefaultPipeline resolves the post's project once per batch, then runs
// each event through the configured stages.
type DefaultPipeline struct {
	projectRepository ProjectRepository
	stages            []Stage
	logger            *slog.Logger
}

// NewDefaultPipeline creates a pipeline with the given stage chain.
func NewDefaultPipeline(
	projectRepository ProjectRepository,
	stages []Stage,
	logger *slog.Logger,
) *DefaultPipeline {
	return &DefaultPipeline{
		projectRepository: projectRepository,
		stages:            stages,
		logger:            logger,
	}
}

// Run processes the batch. A failure to resolve the post's project aborts
// the whole batch with an error; per-event stage failures are captured in
// the corresponding outcome instead. Once the context is cancelled the
// remaining events are marked cancelled without running their stages.
func (p *DefaultPipeline) Run(
	ctx context.Context,
	post *domain.EventPostInfo,
	events []*domain.ParsedEvent,
) ([]*domain.PipelineOutcome, error) {
	project, err := p.projectRepository.GetByID(ctx, post.ProjectID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to resolve project for event batch")
	}

	outcomes := make([]*domain.PipelineOutcome, 0, len(events))

	for _, event := range events {
		outcome := &domain.PipelineOutcome{Event: event}
		outcomes = append(outcomes, outcome)

		if ctx.Err() != nil {
			outcome.IsCancelled = true
			continue
		}

		event.OrganizationID = project.OrganizationID

		if err := p.runStages(ctx, event); err != nil {
			if apperrors.Classify(err) == apperrors.Cancelled {
				outcome.IsCancelled = true
				continue
			}
			outcome.Err = err
			outcome.ErrorMessage = err.Error()

			p.logger.Error("pipeline stage failed",
				slog.String("project_id", post.ProjectID),
				slog.String("event_reference_id", event.ReferenceID),
				slog.String("error", err.Error()),
			)
			continue
		}

		outcome.IsProcessed = true
	}

	return outcomes, nil
}

func (p *DefaultPipeline) runStages(ctx context.Context, event *domain.ParsedEvent) error {
	for _, stage := range p.stages {
		if err := stage.Apply(ctx, event); err != nil {
			return apperrors.Wrap(err, fmt.Sprintf("stage %q failed", stage.Name()))
		}
	}
	return nil
}
