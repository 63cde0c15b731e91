package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"

	"github.com/hvu/bankcore/internal/domain"
)

// Postgres error codes that indicate a transient lock conflict worth
// retrying.
const (
	pgErrSerializationFailure = "40001"
	pgErrDeadlockDetected     = "40P01"
	pgErrLockNotAvailable     = "55P03"
)

// Retrier retries transient lock conflicts with exponential backoff.
// When retries are exhausted on a lock conflict, the caller receives
// domain.ErrBusy.
type Retrier struct {
	logger      zerolog.Logger
	maxRetries  uint64
	maxInterval time.Duration
}

// NewRetrier creates a new Retrier.
func NewRetrier(logger zerolog.Logger) *Retrier {
	return &Retrier{
		logger:      logger,
		maxRetries:  3,
		maxInterval: 500 * time.Millisecond,
	}
}

// Retry runs op, retrying on retryable Postgres errors until the
// retry budget or ctx is exhausted.
func (r *Retrier) Retry(ctx context.Context, op func() error) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 25 * time.Millisecond
	bo.MaxInterval = r.maxInterval

	policy := backoff.WithContext(backoff.WithMaxRetries(bo, r.maxRetries), ctx)

	attempt := 0
	err := backoff.Retry(func() error {
		attempt++

		err := op()
		if err == nil {
			return nil
		}

		if isRetryable(err) {
			r.logger.Warn().
				Err(err).
				Int("attempt", attempt).
				Msg("retrying after lock conflict")

			return err
		}

		return backoff.Permanent(err)
	}, policy)

	if isRetryable(err) {
		return domain.ErrBusy
	}

	return err
}

func isRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}

	switch pgErr.Code {
	case pgErrSerializationFailure, pgErrDeadlockDetected, pgErrLockNotAvailable:
		return true
	}

	return false
}
