package database

import (
	"context"
	"database/sql"
	"errors"
)

// txKey carries the active transaction through a context.
type txKey struct{}

// Querier is the read/write surface repositories run their statements
// against. Both *sql.DB and *sql.Tx satisfy it, so a repository method works
// the same inside and outside a transaction.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// TxManager runs a function inside a single database transaction. The
// persistence stage uses it so each event insert commits or rolls back as a
// unit.
type TxManager interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type sqlTxManager struct {
	db *sql.DB
}

// NewTxManager returns a TxManager backed by the given database.
func NewTxManager(db *sql.DB) TxManager {
	return &sqlTxManager{db: db}
}

// WithTx begins a transaction, stashes it in the context for GetTx lookups,
// runs fn and commits. Any error from fn rolls the transaction back and is
// returned, joined with the rollback error if that fails too.
func (m *sqlTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return errors.Join(err, tx.Rollback())
	}

	return tx.Commit()
}

// GetTx returns the transaction stored in ctx by WithTx, falling back to the
// plain connection when no transaction is active.
func GetTx(ctx context.Context, db *sql.DB) Querier {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return tx
	}
	return db
}
