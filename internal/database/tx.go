package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// TxRunner runs a function inside a database transaction.
type TxRunner interface {
	// WithTx runs fn in a read-write transaction, committing when fn returns nil.
	WithTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error
	// ReadOnly runs fn in a read-only REPEATABLE READ transaction so that
	// every query inside fn observes the same snapshot.
	ReadOnly(ctx context.Context, fn func(tx *sqlx.Tx) error) error
}

type txRunner struct {
	db *sqlx.DB
}

func NewTxRunner(db *sqlx.DB) TxRunner {
	return &txRunner{db: db}
}

func (r *txRunner) WithTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	return r.run(ctx, nil, fn)
}

func (r *txRunner) ReadOnly(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	return r.run(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}, fn)
}

func (r *txRunner) run(ctx context.Context, opts *sql.TxOptions, fn func(tx *sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, opts)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
