package usecase_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/hvu/bankcore/internal/domain"
	"github.com/hvu/bankcore/internal/usecase"
	"github.com/hvu/bankcore/internal/usecase/mocks"
)

func newLedgerFixture() (*usecase.LedgerUseCase, *mocks.MockCustomerRepository, *mocks.MockTransactionLogRepository, *mocks.MockNotifier) {
	customerRepo := mocks.NewMockCustomerRepository()
	logRepo := mocks.NewMockTransactionLogRepository()
	notifier := mocks.NewMockNotifier()

	uc := usecase.NewLedgerUseCase(
		mocks.NewMockTransactionManager(),
		customerRepo,
		logRepo,
		mocks.PassthroughRetrier{},
		notifier,
	)

	return uc, customerRepo, logRepo, notifier
}

func seedCustomer(repo *mocks.MockCustomerRepository, id, name string, balance int64) {
	repo.Seed(&domain.Customer{
		ID:      id,
		Name:    name,
		Email:   name + "@example.com",
		Balance: decimal.NewFromInt(balance),
	})
}

func TestLedgerUseCase_Deposit(t *testing.T) {
	tests := []struct {
		name        string
		customerID  string
		amount      decimal.Decimal
		expectError error
		wantBalance int64
	}{
		{
			name:        "successful deposit",
			customerID:  "cust-1",
			amount:      decimal.NewFromInt(40),
			wantBalance: 140,
		},
		{
			name:        "zero amount rejected",
			customerID:  "cust-1",
			amount:      decimal.Zero,
			expectError: domain.ErrInvalidAmount,
		},
		{
			name:        "negative amount rejected",
			customerID:  "cust-1",
			amount:      decimal.NewFromInt(-5),
			expectError: domain.ErrInvalidAmount,
		},
		{
			name:        "unknown customer",
			customerID:  "nope",
			amount:      decimal.NewFromInt(40),
			expectError: domain.ErrCustomerNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, customerRepo, logRepo, notifier := newLedgerFixture()
			seedCustomer(customerRepo, "cust-1", "alice", 100)

			result, err := uc.Deposit(context.Background(), tt.customerID, tt.amount)

			if tt.expectError != nil {
				if !errors.Is(err, tt.expectError) {
					t.Fatalf("expected error %v, got %v", tt.expectError, err)
				}
				if logRepo.Count() != 0 {
					t.Error("expected no log records on failure")
				}
				if len(notifier.Sent()) != 0 {
					t.Error("expected no notifications on failure")
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			want := decimal.NewFromInt(tt.wantBalance)
			if !result.NewBalance.Equal(want) {
				t.Errorf("expected balance %s, got %s", want, result.NewBalance)
			}
			if !result.Record.Amount.Equal(tt.amount) {
				t.Errorf("expected record amount %s, got %s", tt.amount, result.Record.Amount)
			}
			if !result.Record.Successful {
				t.Error("expected record marked successful")
			}
			if !customerRepo.Balance("cust-1").Equal(want) {
				t.Errorf("stored balance mismatch: %s", customerRepo.Balance("cust-1"))
			}

			sent := notifier.Sent()
			if len(sent) != 1 || sent[0].Kind != domain.EventDeposit {
				t.Errorf("expected one deposit notification, got %+v", sent)
			}
		})
	}
}

func TestLedgerUseCase_Withdraw(t *testing.T) {
	tests := []struct {
		name        string
		amount      decimal.Decimal
		expectError error
		wantBalance int64
	}{
		{
			name:        "successful withdrawal",
			amount:      decimal.NewFromInt(30),
			wantBalance: 70,
		},
		{
			name:        "withdraw exact balance",
			amount:      decimal.NewFromInt(100),
			wantBalance: 0,
		},
		{
			name:        "insufficient funds",
			amount:      decimal.NewFromInt(1000),
			expectError: domain.ErrInsufficientFunds,
		},
		{
			name:        "zero amount rejected",
			amount:      decimal.Zero,
			expectError: domain.ErrInvalidAmount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, customerRepo, logRepo, _ := newLedgerFixture()
			seedCustomer(customerRepo, "cust-1", "alice", 100)

			result, err := uc.Withdraw(context.Background(), "cust-1", tt.amount)

			if tt.expectError != nil {
				if !errors.Is(err, tt.expectError) {
					t.Fatalf("expected error %v, got %v", tt.expectError, err)
				}
				// Failed operations must leave state untouched.
				if !customerRepo.Balance("cust-1").Equal(decimal.NewFromInt(100)) {
					t.Errorf("balance changed on failed withdrawal: %s", customerRepo.Balance("cust-1"))
				}
				if logRepo.Count() != 0 {
					t.Error("expected no log records on failure")
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			want := decimal.NewFromInt(tt.wantBalance)
			if !result.NewBalance.Equal(want) {
				t.Errorf("expected balance %s, got %s", want, result.NewBalance)
			}
			if !result.Record.Amount.Equal(tt.amount.Neg()) {
				t.Errorf("expected record amount %s, got %s", tt.amount.Neg(), result.Record.Amount)
			}
		})
	}
}

func TestLedgerUseCase_Transfer(t *testing.T) {
	tests := []struct {
		name         string
		senderID     string
		receiverID   string
		amount       decimal.Decimal
		expectError  error
		wantSender   int64
		wantReceiver int64
	}{
		{
			name:         "successful transfer",
			senderID:     "cust-1",
			receiverID:   "cust-2",
			amount:       decimal.NewFromInt(50),
			wantSender:   50,
			wantReceiver: 70,
		},
		{
			name:        "same account rejected",
			senderID:    "cust-1",
			receiverID:  "cust-1",
			amount:      decimal.NewFromInt(50),
			expectError: domain.ErrSameAccount,
		},
		{
			name:        "zero amount rejected",
			senderID:    "cust-1",
			receiverID:  "cust-2",
			amount:      decimal.Zero,
			expectError: domain.ErrInvalidAmount,
		},
		{
			name:        "insufficient sender funds",
			senderID:    "cust-1",
			receiverID:  "cust-2",
			amount:      decimal.NewFromInt(500),
			expectError: domain.ErrInsufficientFunds,
		},
		{
			name:        "unknown sender",
			senderID:    "nope",
			receiverID:  "cust-2",
			amount:      decimal.NewFromInt(10),
			expectError: domain.ErrCustomerNotFound,
		},
		{
			name:        "unknown receiver",
			senderID:    "cust-1",
			receiverID:  "nope",
			amount:      decimal.NewFromInt(10),
			expectError: domain.ErrCustomerNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, customerRepo, logRepo, notifier := newLedgerFixture()
			seedCustomer(customerRepo, "cust-1", "alice", 100)
			seedCustomer(customerRepo, "cust-2", "bob", 20)

			result, err := uc.Transfer(context.Background(), tt.senderID, tt.receiverID, tt.amount)

			if tt.expectError != nil {
				if !errors.Is(err, tt.expectError) {
					t.Fatalf("expected error %v, got %v", tt.expectError, err)
				}
				if !customerRepo.Balance("cust-1").Equal(decimal.NewFromInt(100)) ||
					!customerRepo.Balance("cust-2").Equal(decimal.NewFromInt(20)) {
					t.Error("balances changed on failed transfer")
				}
				if logRepo.Count() != 0 {
					t.Error("expected no log records on failure")
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if !result.SenderBalance.Equal(decimal.NewFromInt(tt.wantSender)) {
				t.Errorf("expected sender balance %d, got %s", tt.wantSender, result.SenderBalance)
			}
			if !result.ReceiverBalance.Equal(decimal.NewFromInt(tt.wantReceiver)) {
				t.Errorf("expected receiver balance %d, got %s", tt.wantReceiver, result.ReceiverBalance)
			}

			// Conservation: total across both accounts is unchanged.
			total := result.SenderBalance.Add(result.ReceiverBalance)
			if !total.Equal(decimal.NewFromInt(120)) {
				t.Errorf("conservation violated: total %s", total)
			}

			// Two linked legs, opposite signs, each naming the other party.
			if result.SenderRecord.CounterpartyID == nil || *result.SenderRecord.CounterpartyID != tt.receiverID {
				t.Error("sender record missing receiver counterparty")
			}
			if result.ReceiverRecord.CounterpartyID == nil || *result.ReceiverRecord.CounterpartyID != tt.senderID {
				t.Error("receiver record missing sender counterparty")
			}
			if !result.SenderRecord.Amount.Equal(result.ReceiverRecord.Amount.Neg()) {
				t.Error("transfer legs are not opposite amounts")
			}

			sent := notifier.Sent()
			if len(sent) != 2 {
				t.Fatalf("expected 2 notifications, got %d", len(sent))
			}
			if sent[0].Kind != domain.EventTransferSent || sent[1].Kind != domain.EventTransferReceived {
				t.Errorf("unexpected notification kinds: %s, %s", sent[0].Kind, sent[1].Kind)
			}
		})
	}
}

func TestLedgerUseCase_ConcurrentWithdrawals(t *testing.T) {
	// With balance 100 and 20 concurrent withdrawals of 10, exactly 10
	// succeed and 10 fail with ErrInsufficientFunds.
	uc, customerRepo, logRepo, _ := newLedgerFixture()
	seedCustomer(customerRepo, "cust-1", "alice", 100)

	const workers = 20
	amount := decimal.NewFromInt(10)

	var wg sync.WaitGroup
	errs := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := uc.Withdraw(context.Background(), "cust-1", amount)
			errs <- err
		}()
	}

	wg.Wait()
	close(errs)

	var succeeded, insufficient int
	for err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, domain.ErrInsufficientFunds):
			insufficient++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}

	if succeeded != 10 || insufficient != 10 {
		t.Errorf("expected 10 successes and 10 rejections, got %d/%d", succeeded, insufficient)
	}

	if !customerRepo.Balance("cust-1").Equal(decimal.Zero) {
		t.Errorf("expected final balance 0, got %s", customerRepo.Balance("cust-1"))
	}

	if logRepo.Count() != 10 {
		t.Errorf("expected 10 log records, got %d", logRepo.Count())
	}
}

func TestLedgerUseCase_GetHistory(t *testing.T) {
	uc, customerRepo, _, _ := newLedgerFixture()
	seedCustomer(customerRepo, "cust-1", "alice", 100)

	ctx := context.Background()

	if _, err := uc.Withdraw(ctx, "cust-1", decimal.NewFromInt(30)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := uc.Deposit(ctx, "cust-1", decimal.NewFromInt(5)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	first, err := uc.GetHistory(ctx, usecase.GetHistoryInput{CustomerID: "cust-1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(first) != 2 {
		t.Fatalf("expected 2 records, got %d", len(first))
	}

	// Newest first.
	if !first[0].Amount.Equal(decimal.NewFromInt(5)) {
		t.Errorf("expected most recent record first, got amount %s", first[0].Amount)
	}

	// Append-only: a later call never returns fewer records and earlier
	// records are unchanged.
	if _, err := uc.Deposit(ctx, "cust-1", decimal.NewFromInt(1)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	second, err := uc.GetHistory(ctx, usecase.GetHistoryInput{CustomerID: "cust-1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(second) < len(first) {
		t.Errorf("history shrank from %d to %d records", len(first), len(second))
	}

	for i, prev := range first {
		cur := second[i+1]
		if cur.ID != prev.ID || !cur.Amount.Equal(prev.Amount) || !cur.Timestamp.Equal(prev.Timestamp) {
			t.Errorf("previously returned record %d changed", prev.ID)
		}
	}
}

func TestLedgerUseCase_GetHistory_Empty(t *testing.T) {
	uc, customerRepo, _, _ := newLedgerFixture()
	seedCustomer(customerRepo, "cust-1", "alice", 0)

	records, err := uc.GetHistory(context.Background(), usecase.GetHistoryInput{CustomerID: "cust-1"})
	if err != nil {
		t.Fatalf("empty history should not be an error, got %v", err)
	}
	if len(records) != 0 {
		t.Errorf("expected empty history, got %d records", len(records))
	}

	_, err = uc.GetHistory(context.Background(), usecase.GetHistoryInput{CustomerID: "nope"})
	if !errors.Is(err, domain.ErrCustomerNotFound) {
		t.Errorf("expected ErrCustomerNotFound for unknown customer, got %v", err)
	}
}

func TestLedgerUseCase_GetBalance(t *testing.T) {
	uc, customerRepo, _, _ := newLedgerFixture()
	seedCustomer(customerRepo, "cust-1", "alice", 42)

	balance, err := uc.GetBalance(context.Background(), "cust-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !balance.Equal(decimal.NewFromInt(42)) {
		t.Errorf("expected balance 42, got %s", balance)
	}

	_, err = uc.GetBalance(context.Background(), "nope")
	if !errors.Is(err, domain.ErrCustomerNotFound) {
		t.Errorf("expected ErrCustomerNotFound, got %v", err)
	}
}

type deadlineRetrier struct{}

func (deadlineRetrier) Retry(ctx context.Context, operation func() error) error {
	return context.DeadlineExceeded
}

func TestLedgerUseCase_LockTimeoutSurfacesBusy(t *testing.T) {
	customerRepo := mocks.NewMockCustomerRepository()
	seedCustomer(customerRepo, "cust-1", "alice", 100)

	uc := usecase.NewLedgerUseCase(
		mocks.NewMockTransactionManager(),
		customerRepo,
		mocks.NewMockTransactionLogRepository(),
		deadlineRetrier{},
		mocks.NewMockNotifier(),
	)

	_, err := uc.Withdraw(context.Background(), "cust-1", decimal.NewFromInt(10))
	if !errors.Is(err, domain.ErrBusy) {
		t.Errorf("expected ErrBusy on exhausted lock wait, got %v", err)
	}
}

// Scenario from the ledger contract: withdraw, overdraw, transfer.
func TestLedgerUseCase_Scenario(t *testing.T) {
	uc, customerRepo, logRepo, _ := newLedgerFixture()
	seedCustomer(customerRepo, "A", "alice", 100)
	seedCustomer(customerRepo, "B", "bob", 0)

	ctx := context.Background()

	res, err := uc.Withdraw(ctx, "A", decimal.NewFromInt(30))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.NewBalance.Equal(decimal.NewFromInt(70)) {
		t.Fatalf("expected balance 70, got %s", res.NewBalance)
	}

	_, err = uc.Withdraw(ctx, "A", decimal.NewFromInt(1000))
	if !errors.Is(err, domain.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
	if !customerRepo.Balance("A").Equal(decimal.NewFromInt(70)) {
		t.Fatalf("balance changed after rejected withdrawal: %s", customerRepo.Balance("A"))
	}

	tres, err := uc.Transfer(ctx, "A", "B", decimal.NewFromInt(50))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !tres.SenderBalance.Equal(decimal.NewFromInt(20)) || !tres.ReceiverBalance.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("expected balances A=20 B=50, got A=%s B=%s", tres.SenderBalance, tres.ReceiverBalance)
	}

	// One record for the withdrawal, two legs for the transfer.
	if logRepo.Count() != 3 {
		t.Errorf("expected 3 log records, got %d", logRepo.Count())
	}
}
