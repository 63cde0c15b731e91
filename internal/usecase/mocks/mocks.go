// Package mocks provides in-memory test doubles for the usecase
// repository interfaces.
package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hvu/bankcore/internal/domain"
	"github.com/hvu/bankcore/internal/usecase"
)

// MockCustomerRepository is a mock implementation of CustomerRepository.
type MockCustomerRepository struct {
	mu        sync.RWMutex
	customers map[string]*domain.Customer

	CreateFunc            func(ctx context.Context, customer *domain.Customer) error
	GetByIDFunc           func(ctx context.Context, id string) (*domain.Customer, error)
	GetByNameFunc         func(ctx context.Context, name string) (*domain.Customer, error)
	GetByIDForUpdateFunc  func(ctx context.Context, tx usecase.Transaction, id string) (*domain.Customer, error)
	GetByIDsForUpdateFunc func(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.Customer, error)
	UpdateBalanceFunc     func(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error
	UpdatePasswordFunc    func(ctx context.Context, id, digest string, updatedAt time.Time) error
	ListFunc              func(ctx context.Context, limit, offset int) ([]*domain.Customer, error)
}

func NewMockCustomerRepository() *MockCustomerRepository {
	return &MockCustomerRepository{
		customers: make(map[string]*domain.Customer),
	}
}

// Seed stores a customer directly, bypassing any CreateFunc override.
func (m *MockCustomerRepository) Seed(customer *domain.Customer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *customer
	m.customers[customer.ID] = &clone
}

// Balance reads the stored balance directly.
func (m *MockCustomerRepository) Balance(id string) decimal.Decimal {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if c, ok := m.customers[id]; ok {
		return c.Balance
	}
	return decimal.Zero
}

func (m *MockCustomerRepository) Create(ctx context.Context, customer *domain.Customer) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, customer)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.customers {
		if c.Name == customer.Name {
			return domain.ErrNameTaken
		}
	}
	clone := *customer
	m.customers[customer.ID] = &clone
	return nil
}

func (m *MockCustomerRepository) GetByID(ctx context.Context, id string) (*domain.Customer, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if c, ok := m.customers[id]; ok {
		clone := *c
		return &clone, nil
	}
	return nil, domain.ErrCustomerNotFound
}

func (m *MockCustomerRepository) GetByName(ctx context.Context, name string) (*domain.Customer, error) {
	if m.GetByNameFunc != nil {
		return m.GetByNameFunc(ctx, name)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, c := range m.customers {
		if c.Name == name {
			clone := *c
			return &clone, nil
		}
	}
	return nil, domain.ErrCustomerNotFound
}

func (m *MockCustomerRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Customer, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *MockCustomerRepository) GetByIDsForUpdate(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.Customer, error) {
	if m.GetByIDsForUpdateFunc != nil {
		return m.GetByIDsForUpdateFunc(ctx, tx, ids)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var customers []*domain.Customer
	for _, id := range ids {
		if c, ok := m.customers[id]; ok {
			clone := *c
			customers = append(customers, &clone)
		}
	}
	return customers, nil
}

func (m *MockCustomerRepository) UpdateBalance(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error {
	if m.UpdateBalanceFunc != nil {
		return m.UpdateBalanceFunc(ctx, tx, id, balance, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.customers[id]; ok {
		c.Balance = balance
		c.Version++
		c.UpdatedAt = updatedAt
	}
	return nil
}

func (m *MockCustomerRepository) UpdatePassword(ctx context.Context, id, digest string, updatedAt time.Time) error {
	if m.UpdatePasswordFunc != nil {
		return m.UpdatePasswordFunc(ctx, id, digest, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.customers[id]; ok {
		c.PasswordDigest = digest
		c.UpdatedAt = updatedAt
	}
	return nil
}

func (m *MockCustomerRepository) List(ctx context.Context, limit, offset int) ([]*domain.Customer, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var customers []*domain.Customer
	for _, c := range m.customers {
		clone := *c
		customers = append(customers, &clone)
	}
	return customers, nil
}

// MockTransactionLogRepository is a mock implementation of
// TransactionLogRepository. Records are kept in append order.
type MockTransactionLogRepository struct {
	mu      sync.RWMutex
	records []*domain.Transaction
	nextID  int64

	AppendFunc         func(ctx context.Context, tx usecase.Transaction, record *domain.Transaction) error
	ListByCustomerFunc func(ctx context.Context, customerID string, limit, offset int) ([]*domain.Transaction, error)
}

func NewMockTransactionLogRepository() *MockTransactionLogRepository {
	return &MockTransactionLogRepository{}
}

func (m *MockTransactionLogRepository) Append(ctx context.Context, tx usecase.Transaction, record *domain.Transaction) error {
	if m.AppendFunc != nil {
		return m.AppendFunc(ctx, tx, record)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	record.ID = m.nextID
	clone := *record
	m.records = append(m.records, &clone)
	return nil
}

func (m *MockTransactionLogRepository) ListByCustomer(ctx context.Context, customerID string, limit, offset int) ([]*domain.Transaction, error) {
	if m.ListByCustomerFunc != nil {
		return m.ListByCustomerFunc(ctx, customerID, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var matched []*domain.Transaction
	// Newest first, matching the postgres repository ordering.
	for i := len(m.records) - 1; i >= 0; i-- {
		if m.records[i].CustomerID == customerID {
			clone := *m.records[i]
			matched = append(matched, &clone)
		}
	}
	if offset >= len(matched) {
		return nil, nil
	}
	matched = matched[offset:]
	if limit < len(matched) {
		matched = matched[:limit]
	}
	return matched, nil
}

// Count returns the number of stored records.
func (m *MockTransactionLogRepository) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}

// MockTransactionManager serializes atomic units with a mutex, the
// way row locks do in the real store: Begin blocks until the previous
// transaction commits or rolls back.
type MockTransactionManager struct {
	mu sync.Mutex

	BeginFunc func(ctx context.Context) (usecase.Transaction, error)
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	m.mu.Lock()
	return &MockTx{release: func() { m.mu.Unlock() }}, nil
}

// MockTx is a mock transaction.
type MockTx struct {
	once    sync.Once
	release func()

	Committed  bool
	RolledBack bool
}

func (t *MockTx) Commit(ctx context.Context) error {
	t.Committed = true
	if t.release != nil {
		t.once.Do(t.release)
	}
	return nil
}

func (t *MockTx) Rollback(ctx context.Context) error {
	if !t.Committed {
		t.RolledBack = true
	}
	if t.release != nil {
		t.once.Do(t.release)
	}
	return nil
}

// MockIDGenerator is a mock ID generator.
type MockIDGenerator struct {
	mu      sync.Mutex
	counter int

	GenerateFunc func() string
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return "id-" + time.Now().UTC().Format("20060102150405") + "-" + string(rune('a'+m.counter%26))
}

// MockNotifier records notifications without delivering anything.
type MockNotifier struct {
	mu            sync.Mutex
	Notifications []domain.Notification
}

func NewMockNotifier() *MockNotifier {
	return &MockNotifier{}
}

func (m *MockNotifier) Notify(n domain.Notification) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Notifications = append(m.Notifications, n)
}

// Sent returns a snapshot of recorded notifications.
func (m *MockNotifier) Sent() []domain.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Notification, len(m.Notifications))
	copy(out, m.Notifications)
	return out
}

// PassthroughRetrier runs the operation exactly once.
type PassthroughRetrier struct{}

func (PassthroughRetrier) Retry(ctx context.Context, operation func() error) error {
	return operation()
}
