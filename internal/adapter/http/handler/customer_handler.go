package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/hvu/bankcore/internal/adapter/http/dto"
	"github.com/hvu/bankcore/internal/domain"
	"github.com/hvu/bankcore/internal/usecase"
)

// CustomerService defines the behavior needed by CustomerHandler.
type CustomerService interface {
	GetCustomer(ctx context.Context, id string) (*domain.Customer, error)
	ListCustomers(ctx context.Context, limit, offset int) ([]*domain.Customer, error)
}

// HistoryService exposes the read side of the ledger.
type HistoryService interface {
	GetBalance(ctx context.Context, customerID string) (decimal.Decimal, error)
	GetHistory(ctx context.Context, input usecase.GetHistoryInput) ([]*domain.Transaction, error)
}

// CustomerHandler handles customer read requests.
type CustomerHandler struct {
	customerUC CustomerService
	ledgerUC   HistoryService
	cache      BalanceCache
}

// NewCustomerHandler creates a new CustomerHandler. cache may be nil.
func NewCustomerHandler(customerUC CustomerService, ledgerUC HistoryService, cache BalanceCache) *CustomerHandler {
	return &CustomerHandler{
		customerUC: customerUC,
		ledgerUC:   ledgerUC,
		cache:      cache,
	}
}

// Get retrieves a customer by ID.
func (h *CustomerHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing customer ID", "")
		return
	}

	customer, err := h.customerUC.GetCustomer(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get customer", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.CustomerFromDomain(customer))
}

// List lists customers.
func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := parseIntQuery(r, "limit", 50)
	offset := parseIntQuery(r, "offset", 0)

	customers, err := h.customerUC.ListCustomers(r.Context(), limit, offset)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list customers", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.CustomersFromDomain(customers))
}

// GetBalance returns a customer's current balance.
func (h *CustomerHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing customer ID", "")
		return
	}

	if h.cache != nil {
		if balance, ok, err := h.cache.Get(r.Context(), id); err == nil && ok {
			writeJSON(w, http.StatusOK, dto.BalanceResponse{CustomerID: id, Balance: balance})
			return
		}
	}

	balance, err := h.ledgerUC.GetBalance(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get balance", err.Error())
		return
	}

	if h.cache != nil {
		_ = h.cache.Set(r.Context(), id, balance)
	}

	writeJSON(w, http.StatusOK, dto.BalanceResponse{CustomerID: id, Balance: balance})
}

// GetHistory lists a customer's transaction records, newest first.
func (h *CustomerHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing customer ID", "")
		return
	}

	records, err := h.ledgerUC.GetHistory(r.Context(), usecase.GetHistoryInput{
		CustomerID: id,
		Limit:      parseIntQuery(r, "limit", 50),
		Offset:     parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get history", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionsFromDomain(records))
}
