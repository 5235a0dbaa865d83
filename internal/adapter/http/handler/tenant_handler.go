package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fintech-kernel/acctd/internal/adapter/http/dto"
	"github.com/fintech-kernel/acctd/internal/domain"
	"github.com/fintech-kernel/acctd/internal/usecase"
)

// TenantService defines the behavior needed by TenantHandler.
type TenantService interface {
	CreateTenant(ctx context.Context, input usecase.CreateTenantInput) (*domain.Tenant, error)
	GetTenant(ctx context.Context, id string) (*domain.Tenant, error)
	ListTenants(ctx context.Context, limit, offset int) ([]*domain.Tenant, error)
	UpdatePostingConfig(ctx context.Context, tenantID string, cfg domain.PostingConfig, actor string) (*domain.Tenant, error)
}

// TenantHandler handles tenant administration requests. These routes sit
// outside the tenant-scoped tree: the tenant is addressed by path, not header.
type TenantHandler struct {
	tenantUC TenantService
}

// NewTenantHandler creates a new TenantHandler.
func NewTenantHandler(tenantUC TenantService) *TenantHandler {
	return &TenantHandler{tenantUC: tenantUC}
}

// Create onboards a tenant and seeds its chart of accounts.
func (h *TenantHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateTenantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	tenant, err := h.tenantUC.CreateTenant(r.Context(), req.ToUseCaseInput(requestActor(r)))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to create tenant", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.TenantFromDomain(tenant))
}

// Get retrieves a tenant by ID.
func (h *TenantHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	tenant, err := h.tenantUC.GetTenant(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get tenant", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.TenantFromDomain(tenant))
}

// List lists tenants.
func (h *TenantHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := parseIntQuery(r, "limit", 50)
	offset := parseIntQuery(r, "offset", 0)

	tenants, err := h.tenantUC.ListTenants(r.Context(), limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list tenants", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListTenantsResponse{
		Tenants: dto.TenantsFromDomain(tenants),
		Total:   int64(len(tenants)),
	})
}

// UpdateConfig replaces a tenant's posting configuration.
func (h *TenantHandler) UpdateConfig(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var cfg domain.PostingConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	tenant, err := h.tenantUC.UpdatePostingConfig(r.Context(), id, cfg, requestActor(r))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to update posting config", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.TenantFromDomain(tenant))
}
