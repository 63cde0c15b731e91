package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hvu/bankcore/internal/domain"
	"github.com/hvu/bankcore/internal/usecase"
)

// TransactionLogRepository implements usecase.TransactionLogRepository.
// The transactions table is append only; there are no update or delete
// statements here.
type TransactionLogRepository struct {
	pool *pgxpool.Pool
}

// NewTransactionLogRepository creates a new TransactionLogRepository.
func NewTransactionLogRepository(pool *pgxpool.Pool) *TransactionLogRepository {
	return &TransactionLogRepository{pool: pool}
}

// Append writes a log record within the surrounding transaction and
// fills record.ID with the assigned sequence number.
func (r *TransactionLogRepository) Append(ctx context.Context, tx usecase.Transaction, record *domain.Transaction) error {
	pgxTx := tx.(*Tx).PgxTx()

	query := `
		INSERT INTO transactions (customer_id, amount, ts, successful, counterparty_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	return pgxTx.QueryRow(ctx, query,
		record.CustomerID,
		decimalToNumeric(record.Amount),
		record.Timestamp,
		record.Successful,
		record.CounterpartyID,
	).Scan(&record.ID)
}

// ListByCustomer returns the customer's log records newest first.
func (r *TransactionLogRepository) ListByCustomer(ctx context.Context, customerID string, limit, offset int) ([]*domain.Transaction, error) {
	query := `
		SELECT id, customer_id, amount, ts, successful, counterparty_id
		FROM transactions
		WHERE customer_id = $1
		ORDER BY ts DESC, id DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, customerID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*domain.Transaction
	for rows.Next() {
		record, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}

		records = append(records, record)
	}

	return records, rows.Err()
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var t domain.Transaction
	var amount pgtype.Numeric

	err := row.Scan(
		&t.ID,
		&t.CustomerID,
		&amount,
		&t.Timestamp,
		&t.Successful,
		&t.CounterpartyID,
	)
	if err != nil {
		return nil, err
	}

	t.Amount = numericToDecimal(amount)

	return &t, nil
}
