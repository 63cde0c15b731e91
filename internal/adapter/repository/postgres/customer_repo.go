package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/hvu/bankcore/internal/domain"
	"github.com/hvu/bankcore/internal/usecase"
)

const pgErrUniqueViolation = "23505"

const customerColumns = "id, name, password_digest, email, balance, version, created_at, updated_at"

// CustomerRepository implements usecase.CustomerRepository.
type CustomerRepository struct {
	pool *pgxpool.Pool
}

// NewCustomerRepository creates a new CustomerRepository.
func NewCustomerRepository(pool *pgxpool.Pool) *CustomerRepository {
	return &CustomerRepository{pool: pool}
}

// Create inserts a new customer. A duplicate name maps to
// domain.ErrNameTaken.
func (r *CustomerRepository) Create(ctx context.Context, customer *domain.Customer) error {
	query := `
		INSERT INTO customers (id, name, password_digest, email, balance, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.pool.Exec(ctx, query,
		customer.ID,
		customer.Name,
		customer.PasswordDigest,
		customer.Email,
		decimalToNumeric(customer.Balance),
		customer.Version,
		customer.CreatedAt,
		customer.UpdatedAt,
	)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgErrUniqueViolation {
		return domain.ErrNameTaken
	}

	return err
}

// GetByID retrieves a customer by ID.
func (r *CustomerRepository) GetByID(ctx context.Context, id string) (*domain.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE id = $1`

	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

// GetByName retrieves a customer by exact display name.
func (r *CustomerRepository) GetByName(ctx context.Context, name string) (*domain.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE name = $1`

	return r.scanOne(r.pool.QueryRow(ctx, query, name))
}

// GetByIDForUpdate retrieves a customer with a FOR UPDATE row lock.
func (r *CustomerRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Customer, error) {
	pgxTx := tx.(*Tx).PgxTx()

	query := `SELECT ` + customerColumns + ` FROM customers WHERE id = $1 FOR UPDATE`

	return r.scanOne(pgxTx.QueryRow(ctx, query, id))
}

// GetByIDsForUpdate retrieves multiple customers with FOR UPDATE row
// locks. Rows lock in the order given, so callers pass IDs sorted
// ascending to keep the lock order deterministic.
func (r *CustomerRepository) GetByIDsForUpdate(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.Customer, error) {
	pgxTx := tx.(*Tx).PgxTx()

	query := `
		SELECT ` + customerColumns + `
		FROM customers
		JOIN unnest($1::text[]) WITH ORDINALITY AS req(id, ord) USING (id)
		ORDER BY req.ord
		FOR UPDATE OF customers
	`

	rows, err := pgxTx.Query(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var customers []*domain.Customer
	for rows.Next() {
		customer, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}

		customers = append(customers, customer)
	}

	return customers, rows.Err()
}

// UpdateBalance updates the balance of a customer within the
// surrounding transaction.
func (r *CustomerRepository) UpdateBalance(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error {
	pgxTx := tx.(*Tx).PgxTx()

	query := `
		UPDATE customers
		SET balance = $2, version = version + 1, updated_at = $3
		WHERE id = $1
	`

	_, err := pgxTx.Exec(ctx, query, id, decimalToNumeric(balance), updatedAt)

	return err
}

// UpdatePassword replaces the stored credential digest.
func (r *CustomerRepository) UpdatePassword(ctx context.Context, id, digest string, updatedAt time.Time) error {
	query := `
		UPDATE customers
		SET password_digest = $2, updated_at = $3
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query, id, digest, updatedAt)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrCustomerNotFound
	}

	return nil
}

// List lists customers with pagination, ordered by creation time.
func (r *CustomerRepository) List(ctx context.Context, limit, offset int) ([]*domain.Customer, error) {
	query := `
		SELECT ` + customerColumns + `
		FROM customers
		ORDER BY created_at, id
		LIMIT $1 OFFSET $2
	`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var customers []*domain.Customer
	for rows.Next() {
		customer, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}

		customers = append(customers, customer)
	}

	return customers, rows.Err()
}

func (r *CustomerRepository) scanOne(row pgx.Row) (*domain.Customer, error) {
	customer, err := scanCustomer(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCustomerNotFound
		}

		return nil, err
	}

	return customer, nil
}

func scanCustomer(row pgx.Row) (*domain.Customer, error) {
	var c domain.Customer
	var balance pgtype.Numeric

	err := row.Scan(
		&c.ID,
		&c.Name,
		&c.PasswordDigest,
		&c.Email,
		&balance,
		&c.Version,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	c.Balance = numericToDecimal(balance)

	return &c, nil
}

// Type conversion helpers.
func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric

	_ = n.Scan(d.String())

	return n
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}

	d, _ := decimal.NewFromString(n.Int.String())
	if n.Exp != 0 {
		d = d.Shift(n.Exp)
	}

	return d
}
