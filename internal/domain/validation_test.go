package domain

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestValidateAmount(t *testing.T) {
	tests := []struct {
		name        string
		amount      decimal.Decimal
		expectError error
	}{
		{
			name:        "positive amount",
			amount:      decimal.NewFromInt(100),
			expectError: nil,
		},
		{
			name:        "zero amount",
			amount:      decimal.Zero,
			expectError: ErrInvalidAmount,
		},
		{
			name:        "negative amount",
			amount:      decimal.NewFromInt(-100),
			expectError: ErrInvalidAmount,
		},
		{
			name:        "amount over maximum",
			amount:      decimal.RequireFromString("1000000000001"),
			expectError: ErrAmountTooLarge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAmount(tt.amount)

			if tt.expectError == nil && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if tt.expectError != nil && !errors.Is(err, tt.expectError) {
				t.Errorf("expected error %v, got %v", tt.expectError, err)
			}
		})
	}
}

func TestValidateCustomerName(t *testing.T) {
	if err := ValidateCustomerName("alice"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	if err := ValidateCustomerName("   "); !errors.Is(err, ErrInvalidCustomerName) {
		t.Errorf("expected ErrInvalidCustomerName, got %v", err)
	}

	long := strings.Repeat("a", MaxCustomerNameLength+1)
	if err := ValidateCustomerName(long); !errors.Is(err, ErrInvalidCustomerName) {
		t.Errorf("expected ErrInvalidCustomerName, got %v", err)
	}
}

func TestValidateEmail(t *testing.T) {
	if err := ValidateEmail("alice@example.com"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	if err := ValidateEmail("not-an-email"); !errors.Is(err, ErrInvalidEmail) {
		t.Errorf("expected ErrInvalidEmail, got %v", err)
	}
}

func TestValidatePassword(t *testing.T) {
	if err := ValidatePassword("longenough"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	if err := ValidatePassword("short"); !errors.Is(err, ErrPasswordTooWeak) {
		t.Errorf("expected ErrPasswordTooWeak, got %v", err)
	}

	if err := ValidatePassword(strings.Repeat("x", MaxPasswordLength+1)); !errors.Is(err, ErrPasswordTooWeak) {
		t.Errorf("expected ErrPasswordTooWeak, got %v", err)
	}
}

func TestValidatePagination(t *testing.T) {
	limit, offset := ValidatePagination(0, -5)
	if limit != 50 || offset != 0 {
		t.Errorf("expected defaults (50, 0), got (%d, %d)", limit, offset)
	}

	limit, _ = ValidatePagination(5000, 0)
	if limit != 1000 {
		t.Errorf("expected limit capped at 1000, got %d", limit)
	}
}
