package repository

import (
	"context"
	"database/sql"

	json "github.com/goccy/go-json"

	"github.com/allisson/eventpost/internal/database"
	apperrors "github.com/allisson/eventpost/internal/errors"
	"github.com/allisson/eventpost/internal/ingest/domain"
)

// PostgreSQLEventRepository implements processed-event persistence for PostgreSQL.
type PostgreSQLEventRepository struct {
	db *sql.DB
}

// NewPostgreSQLEventRepository creates a PostgreSQL event repository.
func NewPostgreSQLEventRepository(db *sql.DB) *PostgreSQLEventRepository {
	return &PostgreSQLEventRepository{db: db}
}

// Create inserts a processed event.
func (p *PostgreSQLEventRepository) Create(ctx context.Context, event *domain.ParsedEvent) error {
	querier := database.GetTx(ctx, p.db)

	data, err := json.Marshal(event.Data)
	if err != nil {
		return apperrors.Wrap(err, "failed to encode event data")
	}

	query := `INSERT INTO events
			  (id, reference_id, project_id, organization_id, stack_id, type, source, message, date, data)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err = querier.ExecContext(
		ctx,
		query,
		event.ID,
		event.ReferenceID,
		event.ProjectID,
		event.OrganizationID,
		event.StackID,
		event.Type,
		event.Source,
		event.Message,
		event.Date,
		data,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create event")
	}

	return nil
}
