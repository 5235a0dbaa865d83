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

// PeriodService defines the behavior needed by PeriodHandler.
type PeriodService interface {
	CreatePeriod(ctx context.Context, input usecase.CreatePeriodInput) (*domain.FiscalPeriod, error)
	GetPeriod(ctx context.Context, tenantID, id string) (*domain.FiscalPeriod, error)
	ListPeriods(ctx context.Context, tenantID string) ([]*domain.FiscalPeriod, error)
	ClosePeriod(ctx context.Context, tenantID, periodID, actor string) (*domain.FiscalPeriod, error)
	ReopenPeriod(ctx context.Context, tenantID, periodID, reason, actor string) (*domain.FiscalPeriod, error)
	LockPeriod(ctx context.Context, tenantID, periodID, actor string) (*domain.FiscalPeriod, error)
	UnlockPeriod(ctx context.Context, tenantID, periodID, reason, actor string) (*domain.FiscalPeriod, error)
}

// PeriodHandler handles fiscal period HTTP requests.
type PeriodHandler struct {
	periodUC PeriodService
}

// NewPeriodHandler creates a new PeriodHandler.
func NewPeriodHandler(periodUC PeriodService) *PeriodHandler {
	return &PeriodHandler{periodUC: periodUC}
}

// Create opens a fiscal period.
func (h *PeriodHandler) Create(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.TenantFromContext(r.Context())

	var req dto.CreatePeriodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	period, err := h.periodUC.CreatePeriod(r.Context(), req.ToUseCaseInput(tenantID, requestActor(r)))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to create period", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.PeriodFromDomain(period))
}

// Get retrieves a period by ID.
func (h *PeriodHandler) Get(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.TenantFromContext(r.Context())
	id := chi.URLParam(r, "id")

	period, err := h.periodUC.GetPeriod(r.Context(), tenantID, id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get period", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.PeriodFromDomain(period))
}

// List lists the tenant's periods in date order.
func (h *PeriodHandler) List(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.TenantFromContext(r.Context())

	periods, err := h.periodUC.ListPeriods(r.Context(), tenantID)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list periods", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListPeriodsResponse{
		Periods: dto.PeriodsFromDomain(periods),
		Total:   int64(len(periods)),
	})
}

// Close closes a period, snapshotting its trial balance.
func (h *PeriodHandler) Close(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.TenantFromContext(r.Context())
	id := chi.URLParam(r, "id")

	period, err := h.periodUC.ClosePeriod(r.Context(), tenantID, id, requestActor(r))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to close period", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.PeriodFromDomain(period))
}

// Reopen reverts a closed period to open. The reason is mandatory and lands
// in the audit trail.
func (h *PeriodHandler) Reopen(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.TenantFromContext(r.Context())
	id := chi.URLParam(r, "id")

	var req dto.ReasonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	period, err := h.periodUC.ReopenPeriod(r.Context(), tenantID, id, req.Reason, requestActor(r))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to reopen period", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.PeriodFromDomain(period))
}

// Lock makes a closed period immutable.
func (h *PeriodHandler) Lock(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.TenantFromContext(r.Context())
	id := chi.URLParam(r, "id")

	period, err := h.periodUC.LockPeriod(r.Context(), tenantID, id, requestActor(r))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to lock period", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.PeriodFromDomain(period))
}

// Unlock reverts a locked period to closed. The reason is mandatory.
func (h *PeriodHandler) Unlock(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.TenantFromContext(r.Context())
	id := chi.URLParam(r, "id")

	var req dto.ReasonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	period, err := h.periodUC.UnlockPeriod(r.Context(), tenantID, id, req.Reason, requestActor(r))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to unlock period", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.PeriodFromDomain(period))
}
