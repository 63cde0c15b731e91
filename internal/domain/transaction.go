package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is a single immutable ledger record. Amount is signed:
// positive for credits, negative for debits. A transfer produces two
// records, one per leg, each naming the other party in CounterpartyID.
type Transaction struct {
	ID             int64
	CustomerID     string
	Amount         decimal.Decimal
	Timestamp      time.Time
	Successful     bool
	CounterpartyID *string
}

// IsDebit reports whether the record reduced the balance.
func (t *Transaction) IsDebit() bool {
	return t.Amount.IsNegative()
}

// IsTransferLeg reports whether the record belongs to a transfer.
func (t *Transaction) IsTransferLeg() bool {
	return t.CounterpartyID != nil
}
