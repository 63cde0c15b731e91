package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hvu/bankcore/internal/domain"
	"github.com/hvu/bankcore/internal/password"
)

// AuthUseCase handles registration and credential operations.
// Plaintext passwords exist only as arguments here; only salted
// digests are ever stored or logged.
type AuthUseCase struct {
	customerRepo CustomerRepository
	idGen        IDGenerator
}

// NewAuthUseCase creates a new AuthUseCase.
func NewAuthUseCase(customerRepo CustomerRepository, idGen IDGenerator) *AuthUseCase {
	return &AuthUseCase{
		customerRepo: customerRepo,
		idGen:        idGen,
	}
}

// RegisterInput represents input for registering a customer.
type RegisterInput struct {
	Name     string
	Password string
	Email    string
}

// Register creates a customer with a zero balance and a hashed
// credential. The display name must be unique.
func (uc *AuthUseCase) Register(ctx context.Context, input RegisterInput) (*domain.Customer, error) {
	if err := domain.ValidateCustomerName(input.Name); err != nil {
		return nil, err
	}

	if err := domain.ValidatePassword(input.Password); err != nil {
		return nil, err
	}

	if input.Email != "" {
		if err := domain.ValidateEmail(input.Email); err != nil {
			return nil, err
		}
	}

	existing, err := uc.customerRepo.GetByName(ctx, input.Name)
	if err != nil && !errors.Is(err, domain.ErrCustomerNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrNameTaken
	}

	digest, err := password.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	customer := &domain.Customer{
		ID:             uc.idGen.Generate(),
		Name:           input.Name,
		PasswordDigest: digest,
		Email:          input.Email,
		Balance:        decimal.Zero,
		Version:        0,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	// The repository maps a concurrent duplicate insert to ErrNameTaken
	// as well, so the uniqueness check above is not load-bearing.
	if err := uc.customerRepo.Create(ctx, customer); err != nil {
		return nil, err
	}

	customer.PasswordDigest = ""

	return customer, nil
}

// Login verifies credentials by name. Unknown name and wrong password
// return the same generic error so callers cannot probe which part
// was wrong.
func (uc *AuthUseCase) Login(ctx context.Context, name, plaintext string) (*domain.Customer, error) {
	customer, err := uc.customerRepo.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, domain.ErrCustomerNotFound) {
			return nil, domain.ErrInvalidCredentials
		}

		return nil, err
	}

	if !password.Verify(customer.PasswordDigest, plaintext) {
		return nil, domain.ErrInvalidCredentials
	}

	customer.PasswordDigest = ""

	return customer, nil
}

// ChangePasswordInput represents input for changing a password.
type ChangePasswordInput struct {
	CustomerID  string
	OldPassword string
	NewPassword string
}

// ChangePassword replaces the stored digest after verifying the old
// password. The new digest carries a fresh salt.
func (uc *AuthUseCase) ChangePassword(ctx context.Context, input ChangePasswordInput) error {
	customer, err := uc.customerRepo.GetByID(ctx, input.CustomerID)
	if err != nil {
		return err
	}

	if !password.Verify(customer.PasswordDigest, input.OldPassword) {
		return domain.ErrInvalidCredentials
	}

	if err := domain.ValidatePassword(input.NewPassword); err != nil {
		return err
	}

	digest, err := password.Hash(input.NewPassword)
	if err != nil {
		return err
	}

	return uc.customerRepo.UpdatePassword(ctx, customer.ID, digest, time.Now().UTC())
}

// GetCustomer retrieves a customer by ID with the digest cleared.
func (uc *AuthUseCase) GetCustomer(ctx context.Context, id string) (*domain.Customer, error) {
	customer, err := uc.customerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	customer.PasswordDigest = ""

	return customer, nil
}

// ListCustomers lists customers with pagination, digests cleared.
func (uc *AuthUseCase) ListCustomers(ctx context.Context, limit, offset int) ([]*domain.Customer, error) {
	limit, offset = domain.ValidatePagination(limit, offset)

	customers, err := uc.customerRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}

	for _, c := range customers {
		c.PasswordDigest = ""
	}

	return customers, nil
}
