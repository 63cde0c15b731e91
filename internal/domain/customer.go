package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Customer represents an account holder with a monetary balance.
type Customer struct {
	ID             string
	Name           string
	PasswordDigest string
	Email          string
	Balance        decimal.Decimal
	Version        int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ValidateDebit checks if the balance can be reduced by amount.
// Balances are never allowed to go negative.
func (c *Customer) ValidateDebit(amount decimal.Decimal) error {
	if c.Balance.Sub(amount).IsNegative() {
		return ErrInsufficientFunds
	}
	return nil
}

// ApplyDebit returns the balance after a debit.
func (c *Customer) ApplyDebit(amount decimal.Decimal) decimal.Decimal {
	return c.Balance.Sub(amount)
}

// ApplyCredit returns the balance after a credit.
func (c *Customer) ApplyCredit(amount decimal.Decimal) decimal.Decimal {
	return c.Balance.Add(amount)
}
