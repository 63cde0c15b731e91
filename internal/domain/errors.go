package domain

import "errors"

var (
	// Ledger errors
	ErrCustomerNotFound  = errors.New("customer not found")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrSameAccount       = errors.New("cannot transfer to same account")
	ErrInvalidAmount     = errors.New("amount must be positive")
	ErrBusy              = errors.New("account busy, retry later")

	// Credential errors
	ErrNameTaken          = errors.New("customer name already taken")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Token errors
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)
