package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hvu/bankcore/internal/domain"
)

// CustomerRepository defines data access for customers.
type CustomerRepository interface {
	Create(ctx context.Context, customer *domain.Customer) error
	GetByID(ctx context.Context, id string) (*domain.Customer, error)
	GetByName(ctx context.Context, name string) (*domain.Customer, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Customer, error)
	GetByIDsForUpdate(ctx context.Context, tx Transaction, ids []string) ([]*domain.Customer, error)
	UpdateBalance(ctx context.Context, tx Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error
	UpdatePassword(ctx context.Context, id, digest string, updatedAt time.Time) error
	List(ctx context.Context, limit, offset int) ([]*domain.Customer, error)
}

// TransactionLogRepository defines data access for the append-only
// transaction log. Append runs inside the same database transaction as
// the balance mutation it records.
type TransactionLogRepository interface {
	Append(ctx context.Context, tx Transaction, record *domain.Transaction) error
	ListByCustomer(ctx context.Context, customerID string, limit, offset int) ([]*domain.Transaction, error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier re-runs an atomic unit on transient storage conflicts
// (deadlock, lock timeout) a bounded number of times.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Notifier accepts a notification for asynchronous, best-effort
// delivery. Implementations must not block and must never return the
// outcome of delivery to the caller.
type Notifier interface {
	Notify(notification domain.Notification)
}

// IdempotencyStore handles idempotency key storage for replaying
// mutation responses.
type IdempotencyStore interface {
	// CheckAndSet claims key. It reports seen=true with the stored
	// response when a previous request completed under this key, and
	// seen=false when the caller owns the key and should proceed.
	CheckAndSet(ctx context.Context, key string, ttl time.Duration) (seen bool, response []byte, err error)
	// Update stores the final response under key for replay.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release drops an in-flight claim after a failure.
	Release(ctx context.Context, key string) error
}
