package usecase

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hvu/bankcore/internal/domain"
)

// LedgerUseCase executes monetary operations. Every mutation runs as
// one atomic unit: the balance update and the transaction log append
// commit together or not at all.
type LedgerUseCase struct {
	txManager    TransactionManager
	customerRepo CustomerRepository
	logRepo      TransactionLogRepository
	retrier      Retrier
	notifier     Notifier
}

// NewLedgerUseCase creates a new LedgerUseCase.
func NewLedgerUseCase(
	txManager TransactionManager,
	customerRepo CustomerRepository,
	logRepo TransactionLogRepository,
	retrier Retrier,
	notifier Notifier,
) *LedgerUseCase {
	return &LedgerUseCase{
		txManager:    txManager,
		customerRepo: customerRepo,
		logRepo:      logRepo,
		retrier:      retrier,
		notifier:     notifier,
	}
}

// MutationResult represents the outcome of a deposit or withdrawal.
type MutationResult struct {
	NewBalance decimal.Decimal
	Record     *domain.Transaction
}

// TransferResult represents the outcome of a transfer.
type TransferResult struct {
	SenderBalance   decimal.Decimal
	ReceiverBalance decimal.Decimal
	SenderRecord    *domain.Transaction
	ReceiverRecord  *domain.Transaction
}

// Deposit credits amount to the customer's balance.
func (uc *LedgerUseCase) Deposit(ctx context.Context, customerID string, amount decimal.Decimal) (*MutationResult, error) {
	if err := domain.ValidateAmount(amount); err != nil {
		return nil, err
	}

	var result *MutationResult
	var notification domain.Notification

	err := uc.runAtomic(ctx, func(ctx context.Context, tx Transaction) error {
		customer, err := uc.customerRepo.GetByIDForUpdate(ctx, tx, customerID)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		newBalance := customer.ApplyCredit(amount)

		record, err := uc.writeLeg(ctx, tx, customer.ID, amount, newBalance, now, nil)
		if err != nil {
			return err
		}

		result = &MutationResult{NewBalance: newBalance, Record: record}
		notification = domain.Notification{
			CustomerID:   customer.ID,
			CustomerName: customer.Name,
			Email:        customer.Email,
			Kind:         domain.EventDeposit,
			Amount:       amount,
			NewBalance:   newBalance,
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.notifier.Notify(notification)

	return result, nil
}

// Withdraw debits amount from the customer's balance. The balance is
// never allowed to go negative: the whole operation fails with
// ErrInsufficientFunds and no state changes.
func (uc *LedgerUseCase) Withdraw(ctx context.Context, customerID string, amount decimal.Decimal) (*MutationResult, error) {
	if err := domain.ValidateAmount(amount); err != nil {
		return nil, err
	}

	var result *MutationResult
	var notification domain.Notification

	err := uc.runAtomic(ctx, func(ctx context.Context, tx Transaction) error {
		customer, err := uc.customerRepo.GetByIDForUpdate(ctx, tx, customerID)
		if err != nil {
			return err
		}

		if err := customer.ValidateDebit(amount); err != nil {
			return err
		}

		now := time.Now().UTC()
		newBalance := customer.ApplyDebit(amount)

		record, err := uc.writeLeg(ctx, tx, customer.ID, amount.Neg(), newBalance, now, nil)
		if err != nil {
			return err
		}

		result = &MutationResult{NewBalance: newBalance, Record: record}
		notification = domain.Notification{
			CustomerID:   customer.ID,
			CustomerName: customer.Name,
			Email:        customer.Email,
			Kind:         domain.EventWithdrawal,
			Amount:       amount,
			NewBalance:   newBalance,
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.notifier.Notify(notification)

	return result, nil
}

// Transfer moves amount from sender to receiver. Both balance
// mutations and both log records commit as one unit, so the total
// across the two accounts is unchanged by any outcome.
func (uc *LedgerUseCase) Transfer(ctx context.Context, senderID, receiverID string, amount decimal.Decimal) (*TransferResult, error) {
	if senderID == receiverID {
		return nil, domain.ErrSameAccount
	}

	if err := domain.ValidateAmount(amount); err != nil {
		return nil, err
	}

	// Lock in ascending ID order to prevent deadlock between two
	// concurrent opposite-direction transfers.
	ids := []string{senderID, receiverID}
	sort.Strings(ids)

	var result *TransferResult
	var notifications []domain.Notification

	err := uc.runAtomic(ctx, func(ctx context.Context, tx Transaction) error {
		customers, err := uc.customerRepo.GetByIDsForUpdate(ctx, tx, ids)
		if err != nil {
			return err
		}

		if len(customers) != len(ids) {
			return domain.ErrCustomerNotFound
		}

		var sender, receiver *domain.Customer
		for _, c := range customers {
			switch c.ID {
			case senderID:
				sender = c
			case receiverID:
				receiver = c
			}
		}

		if sender == nil || receiver == nil {
			return domain.ErrCustomerNotFound
		}

		if err := sender.ValidateDebit(amount); err != nil {
			return err
		}

		now := time.Now().UTC()
		senderBalance := sender.ApplyDebit(amount)
		receiverBalance := receiver.ApplyCredit(amount)

		senderRecord, err := uc.writeLeg(ctx, tx, sender.ID, amount.Neg(), senderBalance, now, &receiver.ID)
		if err != nil {
			return err
		}

		receiverRecord, err := uc.writeLeg(ctx, tx, receiver.ID, amount, receiverBalance, now, &sender.ID)
		if err != nil {
			return err
		}

		result = &TransferResult{
			SenderBalance:   senderBalance,
			ReceiverBalance: receiverBalance,
			SenderRecord:    senderRecord,
			ReceiverRecord:  receiverRecord,
		}
		notifications = []domain.Notification{
			{
				CustomerID:   sender.ID,
				CustomerName: sender.Name,
				Email:        sender.Email,
				Kind:         domain.EventTransferSent,
				Amount:       amount,
				NewBalance:   senderBalance,
				Counterparty: receiver.Name,
			},
			{
				CustomerID:   receiver.ID,
				CustomerName: receiver.Name,
				Email:        receiver.Email,
				Kind:         domain.EventTransferReceived,
				Amount:       amount,
				NewBalance:   receiverBalance,
				Counterparty: sender.Name,
			},
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, n := range notifications {
		uc.notifier.Notify(n)
	}

	return result, nil
}

// GetBalance returns the current balance for a customer.
func (uc *LedgerUseCase) GetBalance(ctx context.Context, customerID string) (decimal.Decimal, error) {
	customer, err := uc.customerRepo.GetByID(ctx, customerID)
	if err != nil {
		return decimal.Zero, err
	}

	return customer.Balance, nil
}

// GetHistoryInput represents input for listing transaction history.
type GetHistoryInput struct {
	CustomerID string
	Limit      int
	Offset     int
}

// GetHistory lists a customer's transaction records, newest first.
// An empty history is a valid result, not an error.
func (uc *LedgerUseCase) GetHistory(ctx context.Context, input GetHistoryInput) ([]*domain.Transaction, error) {
	if _, err := uc.customerRepo.GetByID(ctx, input.CustomerID); err != nil {
		return nil, err
	}

	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)

	return uc.logRepo.ListByCustomer(ctx, input.CustomerID, limit, offset)
}

// writeLeg updates one customer's balance and appends the matching
// log record inside the surrounding transaction.
func (uc *LedgerUseCase) writeLeg(
	ctx context.Context,
	tx Transaction,
	customerID string,
	signedAmount, newBalance decimal.Decimal,
	now time.Time,
	counterpartyID *string,
) (*domain.Transaction, error) {
	if err := uc.customerRepo.UpdateBalance(ctx, tx, customerID, newBalance, now); err != nil {
		return nil, err
	}

	record := &domain.Transaction{
		CustomerID:     customerID,
		Amount:         signedAmount,
		Timestamp:      now,
		Successful:     true,
		CounterpartyID: counterpartyID,
	}

	if err := uc.logRepo.Append(ctx, tx, record); err != nil {
		return nil, err
	}

	return record, nil
}

// runAtomic executes fn inside a bounded, retried database
// transaction. Lock waits exceeding the operation timeout surface as
// domain.ErrBusy rather than blocking indefinitely.
func (uc *LedgerUseCase) runAtomic(ctx context.Context, fn func(ctx context.Context, tx Transaction) error) error {
	ctx, cancel := context.WithTimeout(ctx, DefaultOperationTimeout)
	defer cancel()

	err := uc.retrier.Retry(ctx, func() error {
		tx, err := uc.txManager.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)

		if err := fn(ctx, tx); err != nil {
			return err
		}

		return tx.Commit(ctx)
	})
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.ErrBusy
	}

	return err
}
