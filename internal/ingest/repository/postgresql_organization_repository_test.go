package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/eventpost/internal/errors"
	"github.com/allisson/eventpost/internal/ingest/domain"
)

func organizationRows(maxEvents, usage, hourlyUsage int) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "name", "max_events_per_period", "usage_count", "hourly_usage_count", "created_at",
	}).AddRow("org-1", "Acme", maxEvents, usage, hourlyUsage, time.Now().UTC())
}

func TestPostgreSQLOrganizationRepository_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery("SELECT id, name, max_events_per_period, usage_count, hourly_usage_count, created_at").
			WithArgs("org-1").
			WillReturnRows(organizationRows(5000, 1200, 40))

		repo := NewPostgreSQLOrganizationRepository(db)
		organization, err := repo.Get(ctx, "org-1")
		require.NoError(t, err)

		assert.Equal(t, "org-1", organization.ID)
		assert.Equal(t, 5000, organization.MaxEventsPerPeriod)
		assert.Equal(t, 1200, organization.UsageCount)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("NotFound", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery("SELECT id, name, max_events_per_period").
			WithArgs("org-missing").
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		repo := NewPostgreSQLOrganizationRepository(db)
		_, err = repo.Get(ctx, "org-missing")
		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
	})
}

func TestPostgreSQLOrganizationRepository_GetRemainingEventLimit(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		maxEvents int
		usage     int
		want      int
	}{
		{"remaining allowance", 5000, 1200, 3800},
		{"exhausted", 1000, 1000, 0},
		{"unlimited plan", -1, 999999, domain.UnlimitedEventAllowance},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			mock.ExpectQuery("SELECT id, name, max_events_per_period").
				WithArgs("org-1").
				WillReturnRows(organizationRows(tt.maxEvents, tt.usage, 0))

			repo := NewPostgreSQLOrganizationRepository(db)
			remaining, err := repo.GetRemainingEventLimit(ctx, "org-1")
			require.NoError(t, err)
			assert.Equal(t, tt.want, remaining)
		})
	}
}

func TestPostgreSQLOrganizationRepository_IncrementUsage(t *testing.T) {
	ctx := context.Background()

	t.Run("IncrementWithoutHourlyAccounting", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec("UPDATE organizations").
			WithArgs(4, false, "org-1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		repo := NewPostgreSQLOrganizationRepository(db)
		require.NoError(t, repo.IncrementUsage(ctx, "org-1", 4, false))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("IncrementWithHourlyAccounting", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec("UPDATE organizations").
			WithArgs(1, true, "org-1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		repo := NewPostgreSQLOrganizationRepository(db)
		require.NoError(t, repo.IncrementUsage(ctx, "org-1", 1, true))
	})

	t.Run("UnknownOrganization", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec("UPDATE organizations").
			WithArgs(2, false, "org-missing").
			WillReturnResult(sqlmock.NewResult(0, 0))

		repo := NewPostgreSQLOrganizationRepository(db)
		err = repo.IncrementUsage(ctx, "org-missing", 2, false)
		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
	})
}
