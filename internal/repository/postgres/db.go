package postgres

import (
	"context"
	"database/sql"

	"shuttle/internal/repository"
)

// Querier is an interface satisfied by both *sql.DB and *sql.Tx.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Ensure interfaces are satisfied.
var (
	_ Querier = (*sql.DB)(nil)
	_ Querier = (*sql.Tx)(nil)
)

// TxRunner runs repository operations inside SQL transactions.
type TxRunner struct {
	db *sql.DB
}

// NewTxRunner creates a TxRunner over the given database.
func NewTxRunner(db *sql.DB) *TxRunner {
	return &TxRunner{db: db}
}

// RunInTx runs fn inside a transaction with default isolation.
func (r *TxRunner) RunInTx(ctx context.Context, fn func(s repository.Stores) error) error {
	return r.run(ctx, nil, fn)
}

// RunSerializable runs fn inside a serializable transaction.
func (r *TxRunner) RunSerializable(ctx context.Context, fn func(s repository.Stores) error) error {
	return r.run(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable}, fn)
}

func (r *TxRunner) run(ctx context.Context, opts *sql.TxOptions, fn func(s repository.Stores) error) error {
	tx, err := r.db.BeginTx(ctx, opts)
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stores := repository.Stores{
		Shuttles:     NewShuttleRepositoryWithTx(tx),
		Locations:    NewLocationRepositoryWithTx(tx),
		Trips:        NewTripRepositoryWithTx(tx),
		Requests:     NewRouteRequestRepositoryWithTx(tx),
		ActiveRoutes: NewActiveRouteRepositoryWithTx(tx),
	}

	if err = fn(stores); err != nil {
		return err
	}

	err = tx.Commit()
	return err
}

// Ensure TxRunner implements repository.TxRunner.
var _ repository.TxRunner = (*TxRunner)(nil)
