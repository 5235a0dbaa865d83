package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fintech-kernel/acctd/internal/adapter/http/dto"
	"github.com/fintech-kernel/acctd/internal/adapter/http/middleware"
	"github.com/fintech-kernel/acctd/internal/domain"
	"github.com/fintech-kernel/acctd/internal/usecase"
)

// JournalService defines the behavior needed by JournalHandler.
type JournalService interface {
	CreateJournal(ctx context.Context, input usecase.CreateJournalInput) (*usecase.CreateJournalResult, error)
	GetJournal(ctx context.Context, tenantID, id string) (*domain.JournalEntry, error)
	ListJournals(ctx context.Context, tenantID string, filter usecase.JournalFilter) ([]*domain.JournalEntry, error)
	PostJournal(ctx context.Context, tenantID, id, actor string) (*domain.JournalEntry, error)
	VoidJournal(ctx context.Context, tenantID, id, reason, actor string) (*domain.JournalEntry, error)
	ReverseJournal(ctx context.Context, tenantID, id, reason, actor string) (*domain.JournalEntry, error)
}

// JournalHandler handles journal entry HTTP requests.
type JournalHandler struct {
	journalUC JournalService
}

// NewJournalHandler creates a new JournalHandler.
func NewJournalHandler(journalUC JournalService) *JournalHandler {
	return &JournalHandler{journalUC: journalUC}
}

// Create records a journal entry. A replayed idempotency key returns the
// original entry with 200 instead of 201.
func (h *JournalHandler) Create(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.TenantFromContext(r.Context())

	var req dto.CreateJournalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	result, err := h.journalUC.CreateJournal(r.Context(), req.ToUseCaseInput(tenantID, requestActor(r)))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to create journal entry", err.Error())
		return
	}

	status := http.StatusCreated
	if result.IsDuplicate {
		status = http.StatusOK
	}
	writeJSON(w, status, dto.JournalFromDomain(result.Entry))
}

// Get retrieves a journal entry with its lines.
func (h *JournalHandler) Get(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.TenantFromContext(r.Context())
	id := chi.URLParam(r, "id")

	entry, err := h.journalUC.GetJournal(r.Context(), tenantID, id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get journal entry", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.JournalFromDomain(entry))
}

// List lists journal entry headers, newest first.
func (h *JournalHandler) List(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.TenantFromContext(r.Context())

	filter := usecase.JournalFilter{
		AccountID:  r.URL.Query().Get("account_id"),
		SourceType: domain.SourceType(r.URL.Query().Get("source_type")),
		SourceID:   r.URL.Query().Get("source_id"),
		Status:     domain.JournalStatus(r.URL.Query().Get("status")),
		Limit:      parseIntQuery(r, "limit", 50),
		Offset:     parseIntQuery(r, "offset", 0),
	}

	from, err := parseDateQuery(r, "from", time.Time{})
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date filter", err.Error())
		return
	}
	if !from.IsZero() {
		filter.From = &from
	}

	to, err := parseDateQuery(r, "to", time.Time{})
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date filter", err.Error())
		return
	}
	if !to.IsZero() {
		filter.To = &to
	}

	entries, err := h.journalUC.ListJournals(r.Context(), tenantID, filter)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list journal entries", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListJournalsResponse{
		Journals: dto.JournalsFromDomain(entries),
		Total:    int64(len(entries)),
	})
}

// Post promotes a draft entry to POSTED.
func (h *JournalHandler) Post(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.TenantFromContext(r.Context())
	id := chi.URLParam(r, "id")

	entry, err := h.journalUC.PostJournal(r.Context(), tenantID, id, requestActor(r))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to post journal entry", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.JournalFromDomain(entry))
}

// Void cancels a draft entry. Posted entries must be reversed instead.
func (h *JournalHandler) Void(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.TenantFromContext(r.Context())
	id := chi.URLParam(r, "id")

	var req dto.ReasonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	entry, err := h.journalUC.VoidJournal(r.Context(), tenantID, id, req.Reason, requestActor(r))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to void journal entry", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.JournalFromDomain(entry))
}

// Reverse books a mirror-image correcting entry for a posted one and returns
// the reversal.
func (h *JournalHandler) Reverse(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.TenantFromContext(r.Context())
	id := chi.URLParam(r, "id")

	var req dto.ReasonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	reversal, err := h.journalUC.ReverseJournal(r.Context(), tenantID, id, req.Reason, requestActor(r))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to reverse journal entry", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.JournalFromDomain(reversal))
}
