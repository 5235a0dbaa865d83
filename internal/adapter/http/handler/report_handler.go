package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/fintech-kernel/acctd/internal/adapter/http/middleware"
	"github.com/fintech-kernel/acctd/internal/usecase"
)

// ReportService defines the behavior needed by ReportHandler.
type ReportService interface {
	GetIncomeStatement(ctx context.Context, tenantID string, from, to time.Time) (*usecase.IncomeStatement, error)
	GetBalanceSheet(ctx context.Context, tenantID string, asOf time.Time) (*usecase.BalanceSheet, error)
	GetCashFlow(ctx context.Context, tenantID string, from, to time.Time) (*usecase.CashFlowStatement, error)
}

// ReportHandler handles financial statement requests.
type ReportHandler struct {
	reportUC ReportService
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reportUC ReportService) *ReportHandler {
	return &ReportHandler{reportUC: reportUC}
}

// IncomeStatement reports income and expenses over a date range.
func (h *ReportHandler) IncomeStatement(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.TenantFromContext(r.Context())

	from, to, ok := dateRange(w, r)
	if !ok {
		return
	}

	stmt, err := h.reportUC.GetIncomeStatement(r.Context(), tenantID, from, to)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to build income statement", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, stmt)
}

// BalanceSheet reports the financial position as of a date (default now).
func (h *ReportHandler) BalanceSheet(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.TenantFromContext(r.Context())

	asOf, err := parseDateQuery(r, "as_of", time.Now().UTC())
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid as_of", err.Error())
		return
	}

	sheet, err := h.reportUC.GetBalanceSheet(r.Context(), tenantID, asOf)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to build balance sheet", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, sheet)
}

// CashFlow reports movements on the money accounts over a date range.
func (h *ReportHandler) CashFlow(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.TenantFromContext(r.Context())

	from, to, ok := dateRange(w, r)
	if !ok {
		return
	}

	stmt, err := h.reportUC.GetCashFlow(r.Context(), tenantID, from, to)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to build cash flow statement", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, stmt)
}
