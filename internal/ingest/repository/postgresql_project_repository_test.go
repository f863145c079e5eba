package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/eventpost/internal/errors"
)

func TestPostgreSQLProjectRepository_GetByID(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		rows := sqlmock.NewRows([]string{"id", "organization_id", "name", "created_at"}).
			AddRow("project-1", "org-1", "Checkout Service", time.Now().UTC())

		mock.ExpectQuery("SELECT id, organization_id, name, created_at FROM projects").
			WithArgs("project-1").
			WillReturnRows(rows)

		repo := NewPostgreSQLProjectRepository(db)
		project, err := repo.GetByID(ctx, "project-1")
		require.NoError(t, err)

		assert.Equal(t, "project-1", project.ID)
		assert.Equal(t, "org-1", project.OrganizationID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("NotFound", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery("SELECT id, organization_id, name, created_at FROM projects").
			WithArgs("project-missing").
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		repo := NewPostgreSQLProjectRepository(db)
		_, err = repo.GetByID(ctx, "project-missing")
		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
		assert.Equal(t, apperrors.NotFound, apperrors.Classify(err))
	})
}
