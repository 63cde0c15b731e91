package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hvu/bankcore/internal/usecase"
)

// TxManager implements usecase.TransactionManager over a pgx pool.
type TxManager struct {
	pool        *pgxpool.Pool
	lockTimeout string
}

// NewTxManager creates a new TxManager. lockTimeout is a Postgres
// duration string such as "3s" applied to every transaction so that
// lock waits fail fast instead of queueing indefinitely.
func NewTxManager(pool *pgxpool.Pool, lockTimeout string) *TxManager {
	if lockTimeout == "" {
		lockTimeout = "3s"
	}

	return &TxManager{pool: pool, lockTimeout: lockTimeout}
}

// Begin starts a new database transaction.
func (m *TxManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	pgxTx, err := m.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}

	// SET LOCAL scopes the timeout to this transaction only.
	if _, err := pgxTx.Exec(ctx, fmt.Sprintf("SET LOCAL lock_timeout = '%s'", m.lockTimeout)); err != nil {
		_ = pgxTx.Rollback(ctx)
		return nil, fmt.Errorf("set lock timeout: %w", err)
	}

	return &Tx{tx: pgxTx}, nil
}

// Tx wraps a pgx transaction.
type Tx struct {
	tx pgx.Tx
}

// Commit commits the transaction.
func (t *Tx) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

// Rollback rolls the transaction back. Rolling back after a commit is
// a no-op, so callers can always defer it.
func (t *Tx) Rollback(ctx context.Context) error {
	err := t.tx.Rollback(ctx)
	if err == pgx.ErrTxClosed {
		return nil
	}

	return err
}

// PgxTx exposes the underlying pgx transaction to repositories in this
// package.
func (t *Tx) PgxTx() pgx.Tx {
	return t.tx
}
