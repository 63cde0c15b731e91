package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hvu/bankcore/internal/adapter/http/handler"
	"github.com/hvu/bankcore/internal/adapter/http/middleware"
	"github.com/hvu/bankcore/internal/domain"
	"github.com/hvu/bankcore/internal/infrastructure/auth"
	"github.com/hvu/bankcore/internal/usecase"
)

type fakeLedgerService struct {
	depositFunc  func(ctx context.Context, customerID string, amount decimal.Decimal) (*usecase.MutationResult, error)
	withdrawFunc func(ctx context.Context, customerID string, amount decimal.Decimal) (*usecase.MutationResult, error)
	transferFunc func(ctx context.Context, senderID, receiverID string, amount decimal.Decimal) (*usecase.TransferResult, error)
}

func (f *fakeLedgerService) Deposit(ctx context.Context, customerID string, amount decimal.Decimal) (*usecase.MutationResult, error) {
	return f.depositFunc(ctx, customerID, amount)
}

func (f *fakeLedgerService) Withdraw(ctx context.Context, customerID string, amount decimal.Decimal) (*usecase.MutationResult, error) {
	return f.withdrawFunc(ctx, customerID, amount)
}

func (f *fakeLedgerService) Transfer(ctx context.Context, senderID, receiverID string, amount decimal.Decimal) (*usecase.TransferResult, error) {
	return f.transferFunc(ctx, senderID, receiverID, amount)
}

type fakeBalanceCache struct {
	mu          sync.Mutex
	invalidated []string
}

func (f *fakeBalanceCache) Get(ctx context.Context, customerID string) (decimal.Decimal, bool, error) {
	return decimal.Zero, false, nil
}

func (f *fakeBalanceCache) Set(ctx context.Context, customerID string, balance decimal.Decimal) error {
	return nil
}

func (f *fakeBalanceCache) Invalidate(ctx context.Context, customerIDs ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invalidated = append(f.invalidated, customerIDs...)
	return nil
}

const callerID = "01J00000000000000000000001"

func authedRequest(t *testing.T, jwtManager *auth.JWTManager, method, target, body string) *http.Request {
	t.Helper()

	token, err := jwtManager.Generate(&domain.Customer{ID: callerID, Name: "alice"})
	require.NoError(t, err)

	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	req.Header.Set("Authorization", "Bearer "+token)

	return req
}

func TestLedgerHandler_Deposit(t *testing.T) {
	jwtManager := auth.NewJWTManager("secret", time.Hour)
	cache := &fakeBalanceCache{}
	svc := &fakeLedgerService{
		depositFunc: func(ctx context.Context, customerID string, amount decimal.Decimal) (*usecase.MutationResult, error) {
			require.Equal(t, callerID, customerID)
			require.True(t, amount.Equal(decimal.NewFromInt(100)))
			return &usecase.MutationResult{
				NewBalance: decimal.NewFromInt(100),
				Record: &domain.Transaction{
					ID:         1,
					CustomerID: customerID,
					Amount:     amount,
					Timestamp:  time.Now().UTC(),
					Successful: true,
				},
			}, nil
		},
	}
	h := handler.NewLedgerHandler(svc, cache, newTestMetrics())

	protected := middleware.Auth(jwtManager)(http.HandlerFunc(h.Deposit))
	req := authedRequest(t, jwtManager, http.MethodPost, "/api/v1/ledger/deposit",
		`{"customer_id":"`+callerID+`","amount":"100"}`)
	rec := httptest.NewRecorder()

	protected.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		NewBalance decimal.Decimal `json:"new_balance"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.NewBalance.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, []string{callerID}, cache.invalidated)
}

func TestLedgerHandler_Withdraw_InsufficientFunds(t *testing.T) {
	jwtManager := auth.NewJWTManager("secret", time.Hour)
	svc := &fakeLedgerService{
		withdrawFunc: func(ctx context.Context, customerID string, amount decimal.Decimal) (*usecase.MutationResult, error) {
			return nil, domain.ErrInsufficientFunds
		},
	}
	h := handler.NewLedgerHandler(svc, nil, newTestMetrics())

	protected := middleware.Auth(jwtManager)(http.HandlerFunc(h.Withdraw))
	req := authedRequest(t, jwtManager, http.MethodPost, "/api/v1/ledger/withdraw",
		`{"customer_id":"`+callerID+`","amount":"1000"}`)
	rec := httptest.NewRecorder()

	protected.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLedgerHandler_Withdraw_OtherAccountForbidden(t *testing.T) {
	jwtManager := auth.NewJWTManager("secret", time.Hour)
	svc := &fakeLedgerService{
		withdrawFunc: func(ctx context.Context, customerID string, amount decimal.Decimal) (*usecase.MutationResult, error) {
			t.Fatal("use case must not be reached")
			return nil, nil
		},
	}
	h := handler.NewLedgerHandler(svc, nil, newTestMetrics())

	protected := middleware.Auth(jwtManager)(http.HandlerFunc(h.Withdraw))
	req := authedRequest(t, jwtManager, http.MethodPost, "/api/v1/ledger/withdraw",
		`{"customer_id":"someone-else","amount":"10"}`)
	rec := httptest.NewRecorder()

	protected.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestLedgerHandler_Transfer(t *testing.T) {
	jwtManager := auth.NewJWTManager("secret", time.Hour)
	cache := &fakeBalanceCache{}
	receiverID := "01J00000000000000000000002"
	svc := &fakeLedgerService{
		transferFunc: func(ctx context.Context, senderID, rcvID string, amount decimal.Decimal) (*usecase.TransferResult, error) {
			require.Equal(t, callerID, senderID)
			require.Equal(t, receiverID, rcvID)
			return &usecase.TransferResult{
				SenderBalance:   decimal.NewFromInt(20),
				ReceiverBalance: decimal.NewFromInt(50),
				SenderRecord: &domain.Transaction{
					ID: 1, CustomerID: senderID, Amount: amount.Neg(),
					Successful: true, CounterpartyID: &rcvID,
				},
				ReceiverRecord: &domain.Transaction{
					ID: 2, CustomerID: rcvID, Amount: amount,
					Successful: true, CounterpartyID: &senderID,
				},
			}, nil
		},
	}
	h := handler.NewLedgerHandler(svc, cache, newTestMetrics())

	protected := middleware.Auth(jwtManager)(http.HandlerFunc(h.Transfer))
	req := authedRequest(t, jwtManager, http.MethodPost, "/api/v1/ledger/transfer",
		`{"from_customer_id":"`+callerID+`","to_customer_id":"`+receiverID+`","amount":"50"}`)
	rec := httptest.NewRecorder()

	protected.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		SenderBalance   decimal.Decimal `json:"sender_balance"`
		ReceiverBalance decimal.Decimal `json:"receiver_balance"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.SenderBalance.Equal(decimal.NewFromInt(20)))
	assert.True(t, resp.ReceiverBalance.Equal(decimal.NewFromInt(50)))
	assert.ElementsMatch(t, []string{callerID, receiverID}, cache.invalidated)
}

func TestLedgerHandler_Transfer_SameAccount(t *testing.T) {
	jwtManager := auth.NewJWTManager("secret", time.Hour)
	svc := &fakeLedgerService{
		transferFunc: func(ctx context.Context, senderID, receiverID string, amount decimal.Decimal) (*usecase.TransferResult, error) {
			return nil, domain.ErrSameAccount
		},
	}
	h := handler.NewLedgerHandler(svc, nil, newTestMetrics())

	protected := middleware.Auth(jwtManager)(http.HandlerFunc(h.Transfer))
	req := authedRequest(t, jwtManager, http.MethodPost, "/api/v1/ledger/transfer",
		`{"from_customer_id":"`+callerID+`","to_customer_id":"`+callerID+`","amount":"50"}`)
	rec := httptest.NewRecorder()

	protected.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLedgerHandler_Busy(t *testing.T) {
	jwtManager := auth.NewJWTManager("secret", time.Hour)
	svc := &fakeLedgerService{
		depositFunc: func(ctx context.Context, customerID string, amount decimal.Decimal) (*usecase.MutationResult, error) {
			return nil, domain.ErrBusy
		},
	}
	h := handler.NewLedgerHandler(svc, nil, newTestMetrics())

	protected := middleware.Auth(jwtManager)(http.HandlerFunc(h.Deposit))
	req := authedRequest(t, jwtManager, http.MethodPost, "/api/v1/ledger/deposit",
		`{"customer_id":"`+callerID+`","amount":"10"}`)
	rec := httptest.NewRecorder()

	protected.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
