package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/allisson/eventpost/internal/database"
	apperrors "github.com/allisson/eventpost/internal/errors"
	"github.com/allisson/eventpost/internal/ingest/domain"
)

// PostgreSQLProjectRepository implements Project persistence for PostgreSQL.
type PostgreSQLProjectRepository struct {
	db *sql.DB
}

// NewPostgreSQLProjectRepository creates a PostgreSQL project repository.
func NewPostgreSQLProjectRepository(db *sql.DB) *PostgreSQLProjectRepository {
	return &PostgreSQLProjectRepository{db: db}
}

// GetByID retrieves a Project by ID.
func (p *PostgreSQLProjectRepository) GetByID(ctx context.Context, projectID string) (*domain.Project, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, organization_id, name, created_at FROM projects WHERE id = $1`

	var project domain.Project

	err := querier.QueryRowContext(ctx, query, projectID).Scan(
		&project.ID,
		&project.OrganizationID,
		&project.Name,
		&project.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.Wrap(apperrors.ErrNotFound, "project")
		}
		return nil, apperrors.Wrap(err, "failed to get project")
	}

	return &project, nil
}
