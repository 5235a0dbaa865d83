package dto

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fintech-kernel/acctd/internal/domain"
	"github.com/fintech-kernel/acctd/internal/usecase"
)

// Date accepts both date-only (2025-01-31) and RFC 3339 timestamps in
// request bodies. Journal and period dates carry day precision.
type Date struct {
	time.Time
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		return nil
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		d.Time = t
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return fmt.Errorf("invalid date %q: expected YYYY-MM-DD or RFC 3339", s)
	}
	d.Time = t
	return nil
}

// CreateTenantRequest represents a request to onboard a tenant.
type CreateTenantRequest struct {
	Name     string `json:"name"`
	Currency string `json:"currency"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateTenantRequest) ToUseCaseInput(actor string) usecase.CreateTenantInput {
	return usecase.CreateTenantInput{
		Name:     r.Name,
		Currency: r.Currency,
		Actor:    actor,
	}
}

// CreateAccountRequest represents a request to add an account to the chart.
type CreateAccountRequest struct {
	Code     string  `json:"code"`
	Name     string  `json:"name"`
	Type     string  `json:"type"`
	ParentID *string `json:"parent_id,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateAccountRequest) ToUseCaseInput(tenantID, actor string) usecase.CreateAccountInput {
	return usecase.CreateAccountInput{
		TenantID: tenantID,
		Code:     r.Code,
		Name:     r.Name,
		Type:     domain.AccountType(r.Type),
		ParentID: r.ParentID,
		Actor:    actor,
	}
}

// JournalLineRequest represents a single line in a journal entry request.
type JournalLineRequest struct {
	AccountCode string          `json:"account_code"`
	Description string          `json:"description,omitempty"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Department  string          `json:"department,omitempty"`
	Project     string          `json:"project,omitempty"`
}

// CreateJournalRequest represents a request to record a journal entry.
type CreateJournalRequest struct {
	EntryDate      Date                 `json:"entry_date"`
	Description    string               `json:"description"`
	SourceType     string               `json:"source_type"`
	SourceID       string               `json:"source_id,omitempty"`
	IdempotencyKey string               `json:"idempotency_key"`
	Lines          []JournalLineRequest `json:"lines"`
	AsDraft        bool                 `json:"as_draft,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateJournalRequest) ToUseCaseInput(tenantID, actor string) usecase.CreateJournalInput {
	lines := make([]usecase.JournalLineInput, len(r.Lines))
	for i, l := range r.Lines {
		lines[i] = usecase.JournalLineInput{
			AccountCode: l.AccountCode,
			Description: l.Description,
			Debit:       l.Debit,
			Credit:      l.Credit,
			Department:  l.Department,
			Project:     l.Project,
		}
	}
	return usecase.CreateJournalInput{
		TenantID:       tenantID,
		EntryDate:      r.EntryDate.Time,
		Description:    r.Description,
		SourceType:     domain.SourceType(r.SourceType),
		SourceID:       r.SourceID,
		IdempotencyKey: r.IdempotencyKey,
		Lines:          lines,
		AsDraft:        r.AsDraft,
		Actor:          actor,
	}
}

// ReasonRequest carries the mandatory reason for voids, reversals, reopens
// and unlocks.
type ReasonRequest struct {
	Reason string `json:"reason"`
}

// CreatePeriodRequest represents a request to open a fiscal period.
type CreatePeriodRequest struct {
	Name      string `json:"name"`
	StartDate Date   `json:"start_date"`
	EndDate   Date   `json:"end_date"`
}

// ToUseCaseInput converts to use case input.
func (r *CreatePeriodRequest) ToUseCaseInput(tenantID, actor string) usecase.CreatePeriodInput {
	return usecase.CreatePeriodInput{
		TenantID:  tenantID,
		Name:      r.Name,
		StartDate: r.StartDate.Time,
		EndDate:   r.EndDate.Time,
		Actor:     actor,
	}
}

// CreateSubledgerRequest represents a request to open a receivable or payable.
type CreateSubledgerRequest struct {
	CounterpartyID string          `json:"counterparty_id"`
	SourceType     string          `json:"source_type"`
	SourceID       string          `json:"source_id"`
	Amount         decimal.Decimal `json:"amount"`
	IssueDate      Date            `json:"issue_date"`
	DueDate        Date            `json:"due_date"`
	JournalEntryID string          `json:"journal_entry_id,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateSubledgerRequest) ToUseCaseInput(tenantID string, side domain.SubledgerSide, actor string) usecase.CreateSubledgerInput {
	return usecase.CreateSubledgerInput{
		TenantID:       tenantID,
		Side:           side,
		CounterpartyID: r.CounterpartyID,
		SourceType:     domain.SourceType(r.SourceType),
		SourceID:       r.SourceID,
		Amount:         r.Amount,
		IssueDate:      r.IssueDate.Time,
		DueDate:        r.DueDate.Time,
		JournalEntryID: r.JournalEntryID,
		Actor:          actor,
	}
}

// ApplyPaymentRequest represents a request to apply a payment to a record.
type ApplyPaymentRequest struct {
	Amount         decimal.Decimal `json:"amount"`
	PaymentRef     string          `json:"payment_ref,omitempty"`
	JournalEntryID string          `json:"journal_entry_id,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *ApplyPaymentRequest) ToUseCaseInput(tenantID, recordID, actor string) usecase.ApplyPaymentInput {
	return usecase.ApplyPaymentInput{
		TenantID:       tenantID,
		RecordID:       recordID,
		Amount:         r.Amount,
		PaymentRef:     r.PaymentRef,
		JournalEntryID: r.JournalEntryID,
		Actor:          actor,
	}
}
