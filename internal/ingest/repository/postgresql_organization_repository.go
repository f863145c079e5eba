// Package repository implements data persistence for ingestion entities.
//
// Provides PostgreSQL and MySQL implementations with transaction support via
// database.GetTx(). Usage counters are mutated exclusively through atomic
// UPDATE increments; this package never reads-then-writes a counter.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/allisson/eventpost/internal/database"
	apperrors "github.com/allisson/eventpost/internal/errors"
	"github.com/allisson/eventpost/internal/ingest/domain"
)

// PostgreSQLOrganizationRepository implements Organization persistence for PostgreSQL.
type PostgreSQLOrganizationRepository struct {
	db *sql.DB
}

// NewPostgreSQLOrganizationRepository creates a PostgreSQL organization repository.
func NewPostgreSQLOrganizationRepository(db *sql.DB) *PostgreSQLOrganizationRepository {
	return &PostgreSQLOrganizationRepository{db: db}
}

// Get retrieves an Organization by ID.
func (p *PostgreSQLOrganizationRepository) Get(
	ctx context.Context,
	organizationID string,
) (*domain.Organization, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, name, max_events_per_period, usage_count, hourly_usage_count, created_at
			  FROM organizations WHERE id = $1`

	var organization domain.Organization

	err := querier.QueryRowContext(ctx, query, organizationID).Scan(
		&organization.ID,
		&organization.Name,
		&organization.MaxEventsPerPeriod,
		&organization.UsageCount,
		&organization.HourlyUsageCount,
		&organization.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.Wrap(apperrors.ErrNotFound, "organization")
		}
		return nil, apperrors.Wrap(err, "failed to get organization")
	}

	return &organization, nil
}

// GetRemainingEventLimit returns how many more events the organization may
// process this period. Unlimited plans report domain.UnlimitedEventAllowance.
func (p *PostgreSQLOrganizationRepository) GetRemainingEventLimit(
	ctx context.Context,
	organizationID string,
) (int, error) {
	organization, err := p.Get(ctx, organizationID)
	if err != nil {
		return 0, err
	}
	return organization.RemainingEventAllowance(), nil
}

// IncrementUsage atomically adds count to the organization's period usage.
// The hourly counter is bumped only when applyHourlyLimit is set; the
// incremental charge for events 2..N of a post bypasses it because hourly
// accounting was already applied once at ingestion.
func (p *PostgreSQLOrganizationRepository) IncrementUsage(
	ctx context.Context,
	organizationID string,
	count int,
	applyHourlyLimit bool,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE organizations
			  SET usage_count = usage_count + $1,
			      hourly_usage_count = hourly_usage_count + CASE WHEN $2 THEN $1 ELSE 0 END
			  WHERE id = $3`

	result, err := querier.ExecContext(ctx, query, count, applyHourlyLimit, organizationID)
	if err != nil {
		return apperrors.Wrap(err, "failed to increment organization usage")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to read increment result")
	}
	if rows == 0 {
		return apperrors.Wrap(apperrors.ErrNotFound, "organization")
	}

	return nil
}
