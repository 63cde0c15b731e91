package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hvu/bankcore/internal/adapter/http/dto"
	"github.com/hvu/bankcore/internal/adapter/http/middleware"
	"github.com/hvu/bankcore/internal/infrastructure/metrics"
	"github.com/hvu/bankcore/internal/usecase"
)

// LedgerService defines the behavior needed by LedgerHandler.
type LedgerService interface {
	Deposit(ctx context.Context, customerID string, amount decimal.Decimal) (*usecase.MutationResult, error)
	Withdraw(ctx context.Context, customerID string, amount decimal.Decimal) (*usecase.MutationResult, error)
	Transfer(ctx context.Context, senderID, receiverID string, amount decimal.Decimal) (*usecase.TransferResult, error)
}

// BalanceCache keeps read-side balance snapshots. Mutation handlers
// invalidate it so stale entries never outlive a write by more than
// the cache TTL.
type BalanceCache interface {
	Get(ctx context.Context, customerID string) (decimal.Decimal, bool, error)
	Set(ctx context.Context, customerID string, balance decimal.Decimal) error
	Invalidate(ctx context.Context, customerIDs ...string) error
}

// LedgerHandler handles monetary operation requests.
type LedgerHandler struct {
	ledgerUC LedgerService
	cache    BalanceCache
	metrics  *metrics.Metrics
}

// NewLedgerHandler creates a new LedgerHandler. cache may be nil.
func NewLedgerHandler(ledgerUC LedgerService, cache BalanceCache, m *metrics.Metrics) *LedgerHandler {
	return &LedgerHandler{
		ledgerUC: ledgerUC,
		cache:    cache,
		metrics:  m,
	}
}

// Deposit credits an amount to a customer's account.
func (h *LedgerHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	var req dto.DepositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	start := time.Now()
	result, err := h.ledgerUC.Deposit(r.Context(), req.CustomerID, req.Amount)
	h.observe("deposit", start, req.Amount, err)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to deposit", err.Error())
		return
	}

	h.invalidate(r.Context(), req.CustomerID)

	writeJSON(w, http.StatusOK, dto.MutationFromResult(result))
}

// Withdraw debits an amount from the authenticated customer's account.
func (h *LedgerHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	var req dto.WithdrawRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if !callerOwns(r, req.CustomerID) {
		writeError(w, http.StatusForbidden, "cannot withdraw from another customer's account", "")
		return
	}

	start := time.Now()
	result, err := h.ledgerUC.Withdraw(r.Context(), req.CustomerID, req.Amount)
	h.observe("withdraw", start, req.Amount, err)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to withdraw", err.Error())
		return
	}

	h.invalidate(r.Context(), req.CustomerID)

	writeJSON(w, http.StatusOK, dto.MutationFromResult(result))
}

// Transfer moves an amount from the authenticated customer to another.
func (h *LedgerHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	var req dto.TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if !callerOwns(r, req.FromCustomerID) {
		writeError(w, http.StatusForbidden, "cannot transfer from another customer's account", "")
		return
	}

	start := time.Now()
	result, err := h.ledgerUC.Transfer(r.Context(), req.FromCustomerID, req.ToCustomerID, req.Amount)
	h.observe("transfer", start, req.Amount, err)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to transfer", err.Error())
		return
	}

	h.invalidate(r.Context(), req.FromCustomerID, req.ToCustomerID)

	writeJSON(w, http.StatusOK, dto.TransferFromResult(result))
}

func (h *LedgerHandler) observe(operation string, start time.Time, amount decimal.Decimal, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}

	h.metrics.OperationsTotal.WithLabelValues(operation, outcome).Inc()
	h.metrics.OperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())

	if err == nil {
		amt, _ := amount.Float64()
		h.metrics.OperationAmount.WithLabelValues(operation).Observe(amt)
	}
}

func (h *LedgerHandler) invalidate(ctx context.Context, customerIDs ...string) {
	if h.cache == nil {
		return
	}

	// Best effort; the cache TTL bounds staleness anyway.
	_ = h.cache.Invalidate(ctx, customerIDs...)
}

func callerOwns(r *http.Request, customerID string) bool {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		return false
	}

	return identity.CustomerID == customerID
}
