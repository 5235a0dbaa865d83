package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fintech-kernel/acctd/internal/adapter/http/dto"
	"github.com/fintech-kernel/acctd/internal/adapter/http/middleware"
	"github.com/fintech-kernel/acctd/internal/domain"
)

// AuditService defines the behavior needed by AuditHandler. The audit
// repository satisfies it directly; reads need no business rules on top.
type AuditService interface {
	List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error)
	GetByResource(ctx context.Context, tenantID, resourceType, resourceID string) ([]*domain.AuditLog, error)
}

// AuditHandler handles audit trail queries.
type AuditHandler struct {
	audit AuditService
}

// NewAuditHandler creates a new AuditHandler.
func NewAuditHandler(audit AuditService) *AuditHandler {
	return &AuditHandler{audit: audit}
}

// List lists audit entries, newest first, with optional filters.
func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.TenantFromContext(r.Context())

	filter := domain.AuditFilter{
		TenantID:     tenantID,
		Actor:        r.URL.Query().Get("actor"),
		Action:       r.URL.Query().Get("action"),
		ResourceType: r.URL.Query().Get("resource_type"),
		ResourceID:   r.URL.Query().Get("resource_id"),
		Limit:        parseIntQuery(r, "limit", 50),
		Offset:       parseIntQuery(r, "offset", 0),
	}

	logs, err := h.audit.List(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list audit entries", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListAuditLogsResponse{
		Logs:  dto.AuditLogsFromDomain(logs),
		Total: int64(len(logs)),
	})
}

// ListByResource lists the audit history of a single resource.
func (h *AuditHandler) ListByResource(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.TenantFromContext(r.Context())
	resourceType := chi.URLParam(r, "type")
	resourceID := chi.URLParam(r, "id")

	logs, err := h.audit.GetByResource(r.Context(), tenantID, resourceType, resourceID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list audit entries", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListAuditLogsResponse{
		Logs:  dto.AuditLogsFromDomain(logs),
		Total: int64(len(logs)),
	})
}
