package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/fintech-kernel/acctd/internal/adapter/http/dto"
	"github.com/fintech-kernel/acctd/internal/adapter/http/middleware"
	"github.com/fintech-kernel/acctd/internal/domain"
	"github.com/fintech-kernel/acctd/internal/usecase"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(dto.ErrorResponse{
		Error:   message,
		Message: details,
	})
}

// mapDomainError maps domain errors to HTTP status codes. Missing resources
// are 404, state conflicts 409, accounting rule violations 422, bad input
// 400, everything else 500.
func mapDomainError(err error) int {
	if status, ok := typedErrorStatus(err); ok {
		return status
	}

	switch {
	case errors.Is(err, domain.ErrAccountNotFound),
		errors.Is(err, domain.ErrJournalNotFound),
		errors.Is(err, domain.ErrPeriodNotFound),
		errors.Is(err, domain.ErrSubledgerRecordNotFound),
		errors.Is(err, domain.ErrTenantNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrAccountCodeTaken),
		errors.Is(err, domain.ErrAccountInactive),
		errors.Is(err, domain.ErrSystemAccount),
		errors.Is(err, domain.ErrJournalNotDraft),
		errors.Is(err, domain.ErrJournalNotPosted),
		errors.Is(err, domain.ErrPeriodNotOpen),
		errors.Is(err, domain.ErrPeriodNotClosed),
		errors.Is(err, domain.ErrPeriodNotLocked),
		errors.Is(err, domain.ErrRecordNotPayable),
		errors.Is(err, domain.ErrTenantInactive):
		return http.StatusConflict
	case errors.Is(err, usecase.ErrInconsistentLedger):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrAmountTooLarge),
		errors.Is(err, domain.ErrAmountPrecision),
		errors.Is(err, domain.ErrReasonRequired),
		errors.Is(err, domain.ErrIdempotencyKeyRequired),
		errors.Is(err, domain.ErrInvalidAccountCode),
		errors.Is(err, domain.ErrInvalidAccountName),
		errors.Is(err, domain.ErrInvalidCurrency),
		errors.Is(err, domain.ErrInvalidDateRange),
		errors.Is(err, domain.ErrInvalidIDFormat):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// typedErrorStatus matches the structured domain error types. Unbalanced or
// malformed entries and over-applied payments are well-formed requests the
// books reject, hence 422; lifecycle violations are 409.
func typedErrorStatus(err error) (int, bool) {
	var (
		unbalanced  *domain.UnbalancedEntryError
		invalidLine *domain.InvalidLineError
		overApplied *domain.OverApplicationError

		cannotVoid  *domain.CannotVoidPostedError
		reversed    *domain.AlreadyReversedError
		closed      *domain.PeriodClosedError
		locked      *domain.PeriodLockedError
		overlap     *domain.PeriodOverlapError
		priorOpen   *domain.PriorPeriodOpenError
		laterClosed *domain.LaterPeriodClosedError
		drafts      *domain.DraftJournalsExistError
	)

	switch {
	case errors.As(err, &unbalanced), errors.As(err, &invalidLine), errors.As(err, &overApplied):
		return http.StatusUnprocessableEntity, true
	case errors.As(err, &cannotVoid), errors.As(err, &reversed),
		errors.As(err, &closed), errors.As(err, &locked), errors.As(err, &overlap),
		errors.As(err, &priorOpen), errors.As(err, &laterClosed), errors.As(err, &drafts):
		return http.StatusConflict, true
	}

	return 0, false
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultValue int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return i
}

// parseDateQuery parses a date query parameter, accepting date-only
// (2025-01-31) and RFC 3339 values. A missing parameter returns fallback.
func parseDateQuery(r *http.Request, key string, fallback time.Time) (time.Time, error) {
	val := r.URL.Query().Get(key)
	if val == "" {
		return fallback, nil
	}
	if t, err := time.Parse(time.DateOnly, val); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s %q: expected YYYY-MM-DD or RFC 3339", key, val)
	}
	return t, nil
}

// requestActor resolves the audit actor for a request. The header wins so
// routes outside the tenant-scoped tree still attribute correctly.
func requestActor(r *http.Request) string {
	if actor := r.Header.Get(middleware.HeaderActor); actor != "" {
		return actor
	}
	return middleware.ActorFromContext(r.Context())
}
