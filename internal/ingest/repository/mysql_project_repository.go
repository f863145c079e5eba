package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/allisson/eventpost/internal/database"
	apperrors "github.com/allisson/eventpost/internal/errors"
	"github.com/allisson/eventpost/internal/ingest/domain"
)

// MySQLProjectRepository implements Project persistence for MySQL.
type MySQLProjectRepository struct {
	db *sql.DB
}

// NewMySQLProjectRepository creates a MySQL project repository.
func NewMySQLProjectRepository(db *sql.DB) *MySQLProjectRepository {
	return &MySQLProjectRepository{db: db}
}

// GetByID retrieves a Project by ID.
func (m *MySQLProjectRepository) GetByID(ctx context.Context, projectID string) (*domain.Project, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, organization_id, name, created_at FROM projects WHERE id = ?`

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
