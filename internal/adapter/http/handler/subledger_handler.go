package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fintech-kernel/acctd/internal/adapter/http/dto"
	"github.com/fintech-kernel/acctd/internal/adapter/http/middleware"
	"github.com/fintech-kernel/acctd/internal/domain"
	"github.com/fintech-kernel/acctd/internal/usecase"
)

// SubledgerService defines the behavior needed by SubledgerHandler.
type SubledgerService interface {
	CreateReceivable(ctx context.Context, input usecase.CreateSubledgerInput) (*domain.SubledgerRecord, error)
	CreatePayable(ctx context.Context, input usecase.CreateSubledgerInput) (*domain.SubledgerRecord, error)
	GetRecord(ctx context.Context, tenantID, id string) (*domain.SubledgerRecord, error)
	ListRecords(ctx context.Context, tenantID string, side domain.SubledgerSide, statuses []domain.SubledgerStatus, counterpartyID string, limit, offset int) ([]*domain.SubledgerRecord, error)
	GetOpenRecords(ctx context.Context, tenantID string, side domain.SubledgerSide, limit, offset int) ([]*domain.SubledgerRecord, error)
	ApplyPayment(ctx context.Context, input usecase.ApplyPaymentInput) (*domain.SubledgerRecord, error)
	ListApplications(ctx context.Context, tenantID, recordID string) ([]*domain.PaymentApplication, error)
	GetAgingReport(ctx context.Context, tenantID string, side domain.SubledgerSide, asOf time.Time) (*domain.AgingReport, error)
}

// SubledgerHandler handles receivable and payable HTTP requests. The same
// handler serves both sides; the route decides which.
type SubledgerHandler struct {
	subledgerUC SubledgerService
}

// NewSubledgerHandler creates a new SubledgerHandler.
func NewSubledgerHandler(subledgerUC SubledgerService) *SubledgerHandler {
	return &SubledgerHandler{subledgerUC: subledgerUC}
}

// CreateReceivable opens an AR record.
func (h *SubledgerHandler) CreateReceivable(w http.ResponseWriter, r *http.Request) {
	h.create(w, r, domain.SubledgerSideAR)
}

// CreatePayable opens an AP record.
func (h *SubledgerHandler) CreatePayable(w http.ResponseWriter, r *http.Request) {
	h.create(w, r, domain.SubledgerSideAP)
}

func (h *SubledgerHandler) create(w http.ResponseWriter, r *http.Request, side domain.SubledgerSide) {
	tenantID := middleware.TenantFromContext(r.Context())

	var req dto.CreateSubledgerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	input := req.ToUseCaseInput(tenantID, side, requestActor(r))

	var (
		record *domain.SubledgerRecord
		err    error
	)
	if side == domain.SubledgerSideAR {
		record, err = h.subledgerUC.CreateReceivable(r.Context(), input)
	} else {
		record, err = h.subledgerUC.CreatePayable(r.Context(), input)
	}
	if err != nil {
		writeError(w, mapDomainError(err), "failed to create record", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.SubledgerFromDomain(record))
}

// Get retrieves a record by ID.
func (h *SubledgerHandler) Get(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.TenantFromContext(r.Context())
	id := chi.URLParam(r, "id")

	record, err := h.subledgerUC.GetRecord(r.Context(), tenantID, id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get record", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.SubledgerFromDomain(record))
}

// ListReceivables lists AR records.
func (h *SubledgerHandler) ListReceivables(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, domain.SubledgerSideAR)
}

// ListPayables lists AP records.
func (h *SubledgerHandler) ListPayables(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, domain.SubledgerSideAP)
}

func (h *SubledgerHandler) list(w http.ResponseWriter, r *http.Request, side domain.SubledgerSide) {
	tenantID := middleware.TenantFromContext(r.Context())
	limit := parseIntQuery(r, "limit", 50)
	offset := parseIntQuery(r, "offset", 0)

	var (
		records []*domain.SubledgerRecord
		err     error
	)
	if r.URL.Query().Get("open") == "true" {
		records, err = h.subledgerUC.GetOpenRecords(r.Context(), tenantID, side, limit, offset)
	} else {
		var statuses []domain.SubledgerStatus
		if raw := r.URL.Query().Get("status"); raw != "" {
			for _, s := range strings.Split(raw, ",") {
				statuses = append(statuses, domain.SubledgerStatus(strings.TrimSpace(s)))
			}
		}
		counterpartyID := r.URL.Query().Get("counterparty_id")
		records, err = h.subledgerUC.ListRecords(r.Context(), tenantID, side, statuses, counterpartyID, limit, offset)
	}
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list records", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListSubledgersResponse{
		Records: dto.SubledgersFromDomain(records),
		Total:   int64(len(records)),
	})
}

// ApplyPayment settles part or all of a record.
func (h *SubledgerHandler) ApplyPayment(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.TenantFromContext(r.Context())
	id := chi.URLParam(r, "id")

	var req dto.ApplyPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	record, err := h.subledgerUC.ApplyPayment(r.Context(), req.ToUseCaseInput(tenantID, id, requestActor(r)))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to apply payment", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.SubledgerFromDomain(record))
}

// ListApplications lists the payments applied against a record.
func (h *SubledgerHandler) ListApplications(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.TenantFromContext(r.Context())
	id := chi.URLParam(r, "id")

	apps, err := h.subledgerUC.ListApplications(r.Context(), tenantID, id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list applications", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListApplicationsResponse{
		Applications: dto.ApplicationsFromDomain(apps),
		Total:        int64(len(apps)),
	})
}

// ReceivablesAging buckets open AR by days overdue.
func (h *SubledgerHandler) ReceivablesAging(w http.ResponseWriter, r *http.Request) {
	h.aging(w, r, domain.SubledgerSideAR)
}

// PayablesAging buckets open AP by days overdue.
func (h *SubledgerHandler) PayablesAging(w http.ResponseWriter, r *http.Request) {
	h.aging(w, r, domain.SubledgerSideAP)
}

func (h *SubledgerHandler) aging(w http.ResponseWriter, r *http.Request, side domain.SubledgerSide) {
	tenantID := middleware.TenantFromContext(r.Context())

	asOf, err := parseDateQuery(r, "as_of", time.Now().UTC())
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid as_of", err.Error())
		return
	}

	report, err := h.subledgerUC.GetAgingReport(r.Context(), tenantID, side, asOf)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to build aging report", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.AgingReportFromDomain(report))
}
