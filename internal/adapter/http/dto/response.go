package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/hvu/bankcore/internal/domain"
	"github.com/hvu/bankcore/internal/usecase"
)

// CustomerResponse represents a customer in API responses. The
// credential digest is never serialized.
type CustomerResponse struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Email     string          `json:"email,omitempty"`
	Balance   decimal.Decimal `json:"balance"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// CustomerFromDomain converts a domain customer to a response.
func CustomerFromDomain(c *domain.Customer) *CustomerResponse {
	return &CustomerResponse{
		ID:        c.ID,
		Name:      c.Name,
		Email:     c.Email,
		Balance:   c.Balance,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// CustomersFromDomain converts domain customers to responses.
func CustomersFromDomain(customers []*domain.Customer) []*CustomerResponse {
	result := make([]*CustomerResponse, len(customers))
	for i, c := range customers {
		result[i] = CustomerFromDomain(c)
	}
	return result
}

// LoginResponse carries the session token for an authenticated
// customer.
type LoginResponse struct {
	Token    string            `json:"token"`
	Customer *CustomerResponse `json:"customer"`
}

// BalanceResponse represents a customer's current balance.
type BalanceResponse struct {
	CustomerID string          `json:"customer_id"`
	Balance    decimal.Decimal `json:"balance"`
}

// TransactionResponse represents one transaction log record. Amount is
// signed: negative for debits, positive for credits.
type TransactionResponse struct {
	ID             int64           `json:"id"`
	CustomerID     string          `json:"customer_id"`
	Amount         decimal.Decimal `json:"amount"`
	Timestamp      time.Time       `json:"timestamp"`
	Successful     bool            `json:"successful"`
	CounterpartyID *string         `json:"counterparty_id,omitempty"`
}

// TransactionFromDomain converts a domain transaction to a response.
func TransactionFromDomain(t *domain.Transaction) *TransactionResponse {
	return &TransactionResponse{
		ID:             t.ID,
		CustomerID:     t.CustomerID,
		Amount:         t.Amount,
		Timestamp:      t.Timestamp,
		Successful:     t.Successful,
		CounterpartyID: t.CounterpartyID,
	}
}

// TransactionsFromDomain converts domain transactions to responses.
func TransactionsFromDomain(transactions []*domain.Transaction) []*TransactionResponse {
	result := make([]*TransactionResponse, len(transactions))
	for i, t := range transactions {
		result[i] = TransactionFromDomain(t)
	}
	return result
}

// MutationResponse represents the outcome of a deposit or withdrawal.
type MutationResponse struct {
	NewBalance decimal.Decimal      `json:"new_balance"`
	Record     *TransactionResponse `json:"record"`
}

// MutationFromResult converts a use case mutation result.
func MutationFromResult(r *usecase.MutationResult) *MutationResponse {
	return &MutationResponse{
		NewBalance: r.NewBalance,
		Record:     TransactionFromDomain(r.Record),
	}
}

// TransferResponse represents the outcome of a transfer.
type TransferResponse struct {
	SenderBalance   decimal.Decimal      `json:"sender_balance"`
	ReceiverBalance decimal.Decimal      `json:"receiver_balance"`
	SenderRecord    *TransactionResponse `json:"sender_record"`
	ReceiverRecord  *TransactionResponse `json:"receiver_record"`
}

// TransferFromResult converts a use case transfer result.
func TransferFromResult(r *usecase.TransferResult) *TransferResponse {
	return &TransferResponse{
		SenderBalance:   r.SenderBalance,
		ReceiverBalance: r.ReceiverBalance,
		SenderRecord:    TransactionFromDomain(r.SenderRecord),
		ReceiverRecord:  TransactionFromDomain(r.ReceiverRecord),
	}
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
