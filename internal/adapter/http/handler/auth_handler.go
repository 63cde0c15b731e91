package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/hvu/bankcore/internal/adapter/http/dto"
	"github.com/hvu/bankcore/internal/adapter/http/middleware"
	"github.com/hvu/bankcore/internal/domain"
	"github.com/hvu/bankcore/internal/infrastructure/auth"
	"github.com/hvu/bankcore/internal/infrastructure/metrics"
	"github.com/hvu/bankcore/internal/usecase"
)

// AuthService defines the behavior needed by AuthHandler.
type AuthService interface {
	Register(ctx context.Context, input usecase.RegisterInput) (*domain.Customer, error)
	Login(ctx context.Context, name, plaintext string) (*domain.Customer, error)
	ChangePassword(ctx context.Context, input usecase.ChangePasswordInput) error
}

// AuthHandler handles registration and credential requests.
type AuthHandler struct {
	authUC     AuthService
	jwtManager *auth.JWTManager
	metrics    *metrics.Metrics
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authUC AuthService, jwtManager *auth.JWTManager, m *metrics.Metrics) *AuthHandler {
	return &AuthHandler{
		authUC:     authUC,
		jwtManager: jwtManager,
		metrics:    m,
	}
}

// Register creates a new customer account.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	customer, err := h.authUC.Register(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to register", err.Error())
		return
	}

	h.metrics.CustomersRegistered.Inc()

	writeJSON(w, http.StatusCreated, dto.CustomerFromDomain(customer))
}

// Login verifies credentials and issues a session token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	customer, err := h.authUC.Login(r.Context(), req.Name, req.Password)
	if err != nil {
		h.metrics.LoginAttempts.WithLabelValues("failure").Inc()
		writeError(w, mapDomainError(err), "login failed", err.Error())
		return
	}

	token, err := h.jwtManager.Generate(customer)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to issue token", err.Error())
		return
	}

	h.metrics.LoginAttempts.WithLabelValues("success").Inc()

	writeJSON(w, http.StatusOK, dto.LoginResponse{
		Token:    token,
		Customer: dto.CustomerFromDomain(customer),
	})
}

// ChangePassword rotates the authenticated customer's credential.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	var req dto.ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	err := h.authUC.ChangePassword(r.Context(), usecase.ChangePasswordInput{
		CustomerID:  identity.CustomerID,
		OldPassword: req.OldPassword,
		NewPassword: req.NewPassword,
	})
	if err != nil {
		writeError(w, mapDomainError(err), "failed to change password", err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
