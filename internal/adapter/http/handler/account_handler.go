package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fintech-kernel/acctd/internal/adapter/http/dto"
	"github.com/fintech-kernel/acctd/internal/adapter/http/middleware"
	"github.com/fintech-kernel/acctd/internal/domain"
	"github.com/fintech-kernel/acctd/internal/usecase"
)

// AccountService defines the behavior needed by AccountHandler.
type AccountService interface {
	CreateAccount(ctx context.Context, input usecase.CreateAccountInput) (*domain.Account, error)
	GetAccount(ctx context.Context, tenantID, id string) (*domain.Account, error)
	GetAccountByCode(ctx context.Context, tenantID, code string) (*domain.Account, error)
	ListAccounts(ctx context.Context, tenantID string, filter usecase.AccountFilter) ([]*domain.Account, error)
	GetAccountTree(ctx context.Context, tenantID string) ([]*usecase.AccountNode, error)
	DeactivateAccount(ctx context.Context, tenantID, id, actor string) (*domain.Account, error)
	ReactivateAccount(ctx context.Context, tenantID, id, actor string) (*domain.Account, error)
}

// AccountHandler handles chart-of-accounts HTTP requests.
type AccountHandler struct {
	accountUC AccountService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accountUC AccountService) *AccountHandler {
	return &AccountHandler{accountUC: accountUC}
}

// Create adds an account to the tenant's chart.
func (h *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.TenantFromContext(r.Context())

	var req dto.CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	account, err := h.accountUC.CreateAccount(r.Context(), req.ToUseCaseInput(tenantID, requestActor(r)))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to create account", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.AccountFromDomain(account))
}

// Get retrieves an account by ID.
func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.TenantFromContext(r.Context())
	id := chi.URLParam(r, "id")

	account, err := h.accountUC.GetAccount(r.Context(), tenantID, id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get account", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountFromDomain(account))
}

// GetByCode retrieves an account by its code.
func (h *AccountHandler) GetByCode(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.TenantFromContext(r.Context())
	code := chi.URLParam(r, "code")

	account, err := h.accountUC.GetAccountByCode(r.Context(), tenantID, code)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get account", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountFromDomain(account))
}

// List lists accounts, optionally filtered by type and active state.
func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.TenantFromContext(r.Context())

	filter := usecase.AccountFilter{
		ActiveOnly: r.URL.Query().Get("active") == "true",
		Limit:      parseIntQuery(r, "limit", 100),
		Offset:     parseIntQuery(r, "offset", 0),
	}
	if t := r.URL.Query().Get("type"); t != "" {
		accountType := domain.AccountType(t)
		filter.Type = &accountType
	}

	accounts, err := h.accountUC.ListAccounts(r.Context(), tenantID, filter)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list accounts", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListAccountsResponse{
		Accounts: dto.AccountsFromDomain(accounts),
		Total:    int64(len(accounts)),
	})
}

// Tree returns the chart of accounts as nested parent-child nodes.
func (h *AccountHandler) Tree(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.TenantFromContext(r.Context())

	tree, err := h.accountUC.GetAccountTree(r.Context(), tenantID)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to build account tree", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountTreeFromDomain(tree))
}

// Deactivate retires an account from new postings.
func (h *AccountHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.TenantFromContext(r.Context())
	id := chi.URLParam(r, "id")

	account, err := h.accountUC.DeactivateAccount(r.Context(), tenantID, id, requestActor(r))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to deactivate account", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountFromDomain(account))
}

// Reactivate makes a deactivated account postable again.
func (h *AccountHandler) Reactivate(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.TenantFromContext(r.Context())
	id := chi.URLParam(r, "id")

	account, err := h.accountUC.ReactivateAccount(r.Context(), tenantID, id, requestActor(r))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to reactivate account", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountFromDomain(account))
}
