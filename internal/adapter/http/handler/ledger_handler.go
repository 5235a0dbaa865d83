package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fintech-kernel/acctd/internal/adapter/http/middleware"
	"github.com/fintech-kernel/acctd/internal/usecase"
)

// LedgerService defines the behavior needed by LedgerHandler.
type LedgerService interface {
	GetAccountBalance(ctx context.Context, tenantID, accountID string, asOf time.Time) (*usecase.AccountBalance, error)
	GetTrialBalance(ctx context.Context, tenantID string, asOf time.Time) (*usecase.TrialBalance, error)
	GetAccountLedger(ctx context.Context, tenantID, accountID string, from, to time.Time) (*usecase.AccountLedger, error)
	CheckConsistency(ctx context.Context, tenantID string, asOf time.Time) (*usecase.ConsistencyResult, error)
}

// LedgerHandler handles balance and trial balance queries.
type LedgerHandler struct {
	ledgerUC LedgerService
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(ledgerUC LedgerService) *LedgerHandler {
	return &LedgerHandler{ledgerUC: ledgerUC}
}

// Balance returns one account's balance as of a date (default now).
func (h *LedgerHandler) Balance(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.TenantFromContext(r.Context())
	accountID := chi.URLParam(r, "id")

	asOf, err := parseDateQuery(r, "as_of", time.Now().UTC())
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid as_of", err.Error())
		return
	}

	balance, err := h.ledgerUC.GetAccountBalance(r.Context(), tenantID, accountID, asOf)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get account balance", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, balance)
}

// Ledger returns the statement view of one account over a date range.
func (h *LedgerHandler) Ledger(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.TenantFromContext(r.Context())
	accountID := chi.URLParam(r, "id")

	from, to, ok := dateRange(w, r)
	if !ok {
		return
	}

	ledger, err := h.ledgerUC.GetAccountLedger(r.Context(), tenantID, accountID, from, to)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get account ledger", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, ledger)
}

// TrialBalance returns every account's balance as of a date and whether the
// books balance.
func (h *LedgerHandler) TrialBalance(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.TenantFromContext(r.Context())

	asOf, err := parseDateQuery(r, "as_of", time.Now().UTC())
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid as_of", err.Error())
		return
	}

	tb, err := h.ledgerUC.GetTrialBalance(r.Context(), tenantID, asOf)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get trial balance", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, tb)
}

// Consistency verifies that posted debits equal posted credits. A divergence
// is reported as 409 with the totals.
func (h *LedgerHandler) Consistency(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.TenantFromContext(r.Context())

	asOf, err := parseDateQuery(r, "as_of", time.Now().UTC())
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid as_of", err.Error())
		return
	}

	result, err := h.ledgerUC.CheckConsistency(r.Context(), tenantID, asOf)
	if err != nil {
		if errors.Is(err, usecase.ErrInconsistentLedger) && result != nil {
			writeJSON(w, http.StatusConflict, result)
			return
		}
		writeError(w, mapDomainError(err), "failed to check consistency", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// dateRange reads the from/to query parameters shared by range reports.
// Defaults cover everything up to now. Writes the error response itself.
func dateRange(w http.ResponseWriter, r *http.Request) (from, to time.Time, ok bool) {
	from, err := parseDateQuery(r, "from", time.Time{})
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid from", err.Error())
		return time.Time{}, time.Time{}, false
	}

	to, err = parseDateQuery(r, "to", time.Now().UTC())
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid to", err.Error())
		return time.Time{}, time.Time{}, false
	}

	return from, to, true
}
