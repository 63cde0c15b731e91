package dto

import (
	"github.com/shopspring/decimal"

	"github.com/hvu/bankcore/internal/usecase"
)

// RegisterRequest represents a request to register a customer.
type RegisterRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
	Email    string `json:"email,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *RegisterRequest) ToUseCaseInput() usecase.RegisterInput {
	return usecase.RegisterInput{
		Name:     r.Name,
		Password: r.Password,
		Email:    r.Email,
	}
}

// LoginRequest represents a login attempt.
type LoginRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

// ChangePasswordRequest represents a credential rotation.
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// DepositRequest represents a deposit into a customer's account.
type DepositRequest struct {
	CustomerID string          `json:"customer_id"`
	Amount     decimal.Decimal `json:"amount"`
}

// WithdrawRequest represents a withdrawal from a customer's account.
type WithdrawRequest struct {
	CustomerID string          `json:"customer_id"`
	Amount     decimal.Decimal `json:"amount"`
}

// TransferRequest represents a transfer between two customers.
type TransferRequest struct {
	FromCustomerID string          `json:"from_customer_id"`
	ToCustomerID   string          `json:"to_customer_id"`
	Amount         decimal.Decimal `json:"amount"`
}
