package domain

import "github.com/shopspring/decimal"

// Notification event kinds
const (
	EventDeposit          = "ledger.deposit"
	EventWithdrawal       = "ledger.withdrawal"
	EventTransferSent     = "ledger.transfer.sent"
	EventTransferReceived = "ledger.transfer.received"
)

// Notification describes a completed monetary movement for the
// notification hook. It is dispatched after the atomic unit commits
// and carries everything a sender needs, so senders never touch the
// ledger stores.
type Notification struct {
	CustomerID   string
	CustomerName string
	Email        string
	Kind         string
	Amount       decimal.Decimal
	NewBalance   decimal.Decimal
	Counterparty string
}
