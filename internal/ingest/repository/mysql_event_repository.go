package repository

import (
	"context"
	"database/sql"

	json "github.com/goccy/go-json"

	"github.com/allisson/eventpost/internal/database"
	apperrors "github.com/allisson/eventpost/internal/errors"
	"github.com/allisson/eventpost/internal/ingest/domain"
)

// MySQLEventRepository implements processed-event persistence for MySQL.
type MySQLEventRepository struct {
	db *sql.DB
}

// NewMySQLEventRepository creates a MySQL event repository.
func NewMySQLEventRepository(db *sql.DB) *MySQLEventRepository {
	return &MySQLEventRepository{db: db}
}

// Create inserts a processed event.
func (m *MySQLEventRepository) Create(ctx context.Context, event *domain.ParsedEvent) error {
	querier := database.GetTx(ctx, m.db)

	data, err := json.Marshal(event.Data)
	if err != nil {
		return apperrors.Wrap(err, "failed to encode event data")
	}

	query := `INSERT INTO events
			  (id, reference_id, project_id, organization_id, stack_id, type, source, message, date, data)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

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
