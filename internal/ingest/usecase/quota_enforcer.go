package usecase

import (
	"context"
	"log/slog"

	apperrors "github.com/allisson/eventpost/internal/errors"
	"github.com/allisson/eventpost/internal/ingest/domain"
)

// ingestionCountedEvents is how many events a post was already billed for
// at submission time. Quota math is offset by this amount: a post that
// arrives here has one event's worth of usage pre-counted.
const ingestionCountedEvents = 1

// QuotaEnforcer trims event batches to the owning organization's remaining
// event allowance for the current period and bills the kept events.
type QuotaEnforcer struct {
	projectRepository      ProjectRepository
	organizationRepository OrganizationRepository
	logger                 *slog.Logger
}

// NewQuotaEnforcer creates a quota enforcer.
func NewQuotaEnforcer(
	projectRepository ProjectRepository,
	organizationRepository OrganizationRepository,
	logger *slog.Logger,
) *QuotaEnforcer {
	return &QuotaEnforcer{
		projectRepository:      projectRepository,
		organizationRepository: organizationRepository,
		logger:                 logger,
	}
}

// Trim resolves the post's organization and caps the batch at the remaining
// allowance plus the pre-counted submission event. Events over the cap are
// dropped silently; clients are not notified of quota truncation. Posts at
// or below the pre-counted size are never trimmed and never billed here.
//
// Usage for the kept events beyond the pre-counted one is recorded
// immediately after truncation, before the pipeline runs. Hourly accounting
// is skipped for this incremental charge; it was applied once at submission.
func (q *QuotaEnforcer) Trim(
	ctx context.Context,
	info *domain.EventPostInfo,
	events []*domain.ParsedEvent,
) ([]*domain.ParsedEvent, error) {
	project, err := q.projectRepository.GetByID(ctx, info.ProjectID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to resolve project for quota check")
	}

	organization, err := q.organizationRepository.Get(ctx, project.OrganizationID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to resolve organization for quota check")
	}

	if len(events) <= ingestionCountedEvents {
		return events, nil
	}

	trimmed := events
	remaining := organization.RemainingEventAllowance()
	if remaining != domain.UnlimitedEventAllowance {
		allowed := remaining + ingestionCountedEvents
		if len(events) > allowed {
			q.logger.Debug("dropping events over organization quota",
				slog.String("organization_id", organization.ID),
				slog.String("project_id", info.ProjectID),
				slog.Int("event_count", len(events)),
				slog.Int("allowed", allowed),
				slog.Int("dropped", len(events)-allowed),
			)
			trimmed = events[:allowed]
		}
	}

	q.recordUsage(ctx, organization, len(trimmed))

	return trimmed, nil
}

// recordUsage bills the organization for kept events beyond the one
// pre-counted at submission. Billing failures never fail the trim; the job
// proceeds and the shortfall is logged for the operator.
func (q *QuotaEnforcer) recordUsage(
	ctx context.Context,
	organization *domain.Organization,
	kept int,
) {
	extra := kept - ingestionCountedEvents
	if extra <= 0 {
		return
	}

	if err := q.organizationRepository.IncrementUsage(ctx, organization.ID, extra, false); err != nil {
		q.logger.Error("failed to record organization event usage",
			slog.String("organization_id", organization.ID),
			slog.Int("count", extra),
			slog.String("error", err.Error()),
		)
	}
}
