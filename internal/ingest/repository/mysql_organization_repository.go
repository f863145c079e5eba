package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/allisson/eventpost/internal/database"
	apperrors "github.com/allisson/eventpost/internal/errors"
	"github.com/allisson/eventpost/internal/ingest/domain"
)

// MySQLOrganizationRepository implements Organization persistence for MySQL.
type MySQLOrganizationRepository struct {
	db *sql.DB
}

// NewMySQLOrganizationRepository creates a MySQL organization repository.
func NewMySQLOrganizationRepository(db *sql.DB) *MySQLOrganizationRepository {
	return &MySQLOrganizationRepository{db: db}
}

// Get retrieves an Organization by ID.
func (m *MySQLOrganizationRepository) Get(
	ctx context.Context,
	organizationID string,
) (*domain.Organization, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, name, max_events_per_period, usage_count, hourly_usage_count, created_at
			  FROM organizations WHERE id = ?`

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
func (m *MySQLOrganizationRepository) GetRemainingEventLimit(
	ctx context.Context,
	organizationID string,
) (int, error) {
	organization, err := m.Get(ctx, organizationID)
	if err != nil {
		return 0, err
	}
	return organization.RemainingEventAllowance(), nil
}

// IncrementUsage atomically adds count to the organization's period usage.
// The hourly counter is bumped only when applyHourlyLimit is set.
func (m *MySQLOrganizationRepository) IncrementUsage(
	ctx context.Context,
	organizationID string,
	count int,
	applyHourlyLimit bool,
) error {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE organizations
			  SET usage_count = usage_count + ?,
			      hourly_usage_count = hourly_usage_count + IF(?, ?, 0)
			  WHERE id = ?`

	result, err := querier.ExecContext(ctx, query, count, applyHourlyLimit, count, organizationID)
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
