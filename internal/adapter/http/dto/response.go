package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/fintech-kernel/acctd/internal/domain"
	"github.com/fintech-kernel/acctd/internal/usecase"
)

// TenantResponse represents a tenant in API responses.
type TenantResponse struct {
	ID        string               `json:"id"`
	Name      string               `json:"name"`
	Currency  string               `json:"currency"`
	IsActive  bool                 `json:"is_active"`
	Config    domain.PostingConfig `json:"config"`
	CreatedAt time.Time            `json:"created_at"`
	UpdatedAt time.Time            `json:"updated_at"`
}

// TenantFromDomain converts a domain tenant to a response.
func TenantFromDomain(t *domain.Tenant) *TenantResponse {
	return &TenantResponse{
		ID:        t.ID,
		Name:      t.Name,
		Currency:  t.Currency,
		IsActive:  t.IsActive,
		Config:    t.Config,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

// TenantsFromDomain converts domain tenants to responses.
func TenantsFromDomain(tenants []*domain.Tenant) []*TenantResponse {
	result := make([]*TenantResponse, len(tenants))
	for i, t := range tenants {
		result[i] = TenantFromDomain(t)
	}
	return result
}

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	ID            string    `json:"id"`
	Code          string    `json:"code"`
	Name          string    `json:"name"`
	Type          string    `json:"type"`
	NormalBalance string    `json:"normal_balance"`
	ParentID      *string   `json:"parent_id,omitempty"`
	IsActive      bool      `json:"is_active"`
	IsSystem      bool      `json:"is_system"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// AccountFromDomain converts a domain account to a response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	return &AccountResponse{
		ID:            a.ID,
		Code:          a.Code,
		Name:          a.Name,
		Type:          string(a.Type),
		NormalBalance: string(a.NormalBalance),
		ParentID:      a.ParentID,
		IsActive:      a.IsActive,
		IsSystem:      a.IsSystem,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
}

// AccountsFromDomain converts domain accounts to responses.
func AccountsFromDomain(accounts []*domain.Account) []*AccountResponse {
	result := make([]*AccountResponse, len(accounts))
	for i, a := range accounts {
		result[i] = AccountFromDomain(a)
	}
	return result
}

// AccountTreeNodeResponse is an account with its children nested beneath it.
type AccountTreeNodeResponse struct {
	AccountResponse
	Children []*AccountTreeNodeResponse `json:"children"`
}

// AccountTreeFromDomain converts an account forest to responses.
func AccountTreeFromDomain(nodes []*usecase.AccountNode) []*AccountTreeNodeResponse {
	result := make([]*AccountTreeNodeResponse, len(nodes))
	for i, node := range nodes {
		result[i] = &AccountTreeNodeResponse{
			AccountResponse: *AccountFromDomain(node.Account),
			Children:        AccountTreeFromDomain(node.Children),
		}
	}
	return result
}

// JournalLineResponse represents one journal line in API responses.
type JournalLineResponse struct {
	ID          string          `json:"id"`
	AccountID   string          `json:"account_id"`
	AccountCode string          `json:"account_code"`
	LineNumber  int             `json:"line_number"`
	Description string          `json:"description,omitempty"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Department  string          `json:"department,omitempty"`
	Project     string          `json:"project,omitempty"`
}

// JournalResponse represents a journal entry in API responses.
type JournalResponse struct {
	ID              string                `json:"id"`
	Number          string                `json:"number"`
	EntryDate       time.Time             `json:"entry_date"`
	Description     string                `json:"description"`
	SourceType      string                `json:"source_type"`
	SourceID        *string               `json:"source_id,omitempty"`
	IdempotencyKey  string                `json:"idempotency_key"`
	Status          string                `json:"status"`
	PeriodID        *string               `json:"period_id,omitempty"`
	ReversalOf      *string               `json:"reversal_of,omitempty"`
	ReversedBy      *string               `json:"reversed_by,omitempty"`
	ReversalReason  string                `json:"reversal_reason,omitempty"`
	SystemGenerated bool                  `json:"system_generated"`
	Lines           []JournalLineResponse `json:"lines"`
	TotalDebit      decimal.Decimal       `json:"total_debit"`
	TotalCredit     decimal.Decimal       `json:"total_credit"`
	CreatedBy       string                `json:"created_by"`
	CreatedAt       time.Time             `json:"created_at"`
	PostedAt        *time.Time            `json:"posted_at,omitempty"`
}

// JournalFromDomain converts a domain journal entry to a response.
func JournalFromDomain(e *domain.JournalEntry) *JournalResponse {
	lines := make([]JournalLineResponse, len(e.Lines))
	for i, l := range e.Lines {
		lines[i] = JournalLineResponse{
			ID:          l.ID,
			AccountID:   l.AccountID,
			AccountCode: l.AccountCode,
			LineNumber:  l.LineNumber,
			Description: l.Description,
			Debit:       l.Debit,
			Credit:      l.Credit,
			Department:  l.Department,
			Project:     l.Project,
		}
	}
	totalDebit, totalCredit := domain.EntryTotals(e.Lines)

	return &JournalResponse{
		ID:              e.ID,
		Number:          e.Number,
		EntryDate:       e.EntryDate,
		Description:     e.Description,
		SourceType:      string(e.SourceType),
		SourceID:        e.SourceID,
		IdempotencyKey:  e.IdempotencyKey,
		Status:          string(e.Status),
		PeriodID:        e.PeriodID,
		ReversalOf:      e.ReversalOf,
		ReversedBy:      e.ReversedBy,
		ReversalReason:  e.ReversalReason,
		SystemGenerated: e.SystemGenerated,
		Lines:           lines,
		TotalDebit:      totalDebit,
		TotalCredit:     totalCredit,
		CreatedBy:       e.CreatedBy,
		CreatedAt:       e.CreatedAt,
		PostedAt:        e.PostedAt,
	}
}

// JournalsFromDomain converts domain journal entries to responses.
func JournalsFromDomain(entries []*domain.JournalEntry) []*JournalResponse {
	result := make([]*JournalResponse, len(entries))
	for i, e := range entries {
		result[i] = JournalFromDomain(e)
	}
	return result
}

// PeriodResponse represents a fiscal period in API responses.
type PeriodResponse struct {
	ID             string                 `json:"id"`
	Name           string                 `json:"name"`
	StartDate      time.Time              `json:"start_date"`
	EndDate        time.Time              `json:"end_date"`
	Status         string                 `json:"status"`
	ClosedAt       *time.Time             `json:"closed_at,omitempty"`
	ClosedBy       string                 `json:"closed_by,omitempty"`
	LockedAt       *time.Time             `json:"locked_at,omitempty"`
	LockedBy       string                 `json:"locked_by,omitempty"`
	Snapshot       *domain.PeriodSnapshot `json:"snapshot,omitempty"`
	ClosingEntryID *string                `json:"closing_entry_id,omitempty"`
	CreatedAt      time.Time              `json:"created_at"`
	UpdatedAt      time.Time              `json:"updated_at"`
}

// PeriodFromDomain converts a domain fiscal period to a response.
func PeriodFromDomain(p *domain.FiscalPeriod) *PeriodResponse {
	return &PeriodResponse{
		ID:             p.ID,
		Name:           p.Name,
		StartDate:      p.StartDate,
		EndDate:        p.EndDate,
		Status:         string(p.Status),
		ClosedAt:       p.ClosedAt,
		ClosedBy:       p.ClosedBy,
		LockedAt:       p.LockedAt,
		LockedBy:       p.LockedBy,
		Snapshot:       p.Snapshot,
		ClosingEntryID: p.ClosingEntryID,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

// PeriodsFromDomain converts domain fiscal periods to responses.
func PeriodsFromDomain(periods []*domain.FiscalPeriod) []*PeriodResponse {
	result := make([]*PeriodResponse, len(periods))
	for i, p := range periods {
		result[i] = PeriodFromDomain(p)
	}
	return result
}

// SubledgerResponse represents a receivable or payable in API responses.
type SubledgerResponse struct {
	ID              string          `json:"id"`
	Side            string          `json:"side"`
	CounterpartyID  string          `json:"counterparty_id"`
	SourceType      string          `json:"source_type"`
	SourceID        string          `json:"source_id"`
	OriginalAmount  decimal.Decimal `json:"original_amount"`
	RemainingAmount decimal.Decimal `json:"remaining_amount"`
	IssueDate       time.Time       `json:"issue_date"`
	DueDate         time.Time       `json:"due_date"`
	Status          string          `json:"status"`
	JournalEntryID  string          `json:"journal_entry_id,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// SubledgerFromDomain converts a domain subledger record to a response.
func SubledgerFromDomain(r *domain.SubledgerRecord) *SubledgerResponse {
	return &SubledgerResponse{
		ID:              r.ID,
		Side:            string(r.Side),
		CounterpartyID:  r.CounterpartyID,
		SourceType:      string(r.SourceType),
		SourceID:        r.SourceID,
		OriginalAmount:  r.OriginalAmount,
		RemainingAmount: r.RemainingAmount,
		IssueDate:       r.IssueDate,
		DueDate:         r.DueDate,
		Status:          string(r.Status),
		JournalEntryID:  r.JournalEntryID,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

// SubledgersFromDomain converts domain subledger records to responses.
func SubledgersFromDomain(records []*domain.SubledgerRecord) []*SubledgerResponse {
	result := make([]*SubledgerResponse, len(records))
	for i, r := range records {
		result[i] = SubledgerFromDomain(r)
	}
	return result
}

// PaymentApplicationResponse represents an applied payment in API responses.
type PaymentApplicationResponse struct {
	ID             string          `json:"id"`
	RecordID       string          `json:"record_id"`
	Side           string          `json:"side"`
	Amount         decimal.Decimal `json:"amount"`
	PaymentRef     string          `json:"payment_ref,omitempty"`
	JournalEntryID string          `json:"journal_entry_id,omitempty"`
	AppliedAt      time.Time       `json:"applied_at"`
}

// ApplicationFromDomain converts a domain payment application to a response.
func ApplicationFromDomain(a *domain.PaymentApplication) *PaymentApplicationResponse {
	return &PaymentApplicationResponse{
		ID:             a.ID,
		RecordID:       a.RecordID,
		Side:           string(a.Side),
		Amount:         a.Amount,
		PaymentRef:     a.PaymentRef,
		JournalEntryID: a.JournalEntryID,
		AppliedAt:      a.AppliedAt,
	}
}

// ApplicationsFromDomain converts domain payment applications to responses.
func ApplicationsFromDomain(apps []*domain.PaymentApplication) []*PaymentApplicationResponse {
	result := make([]*PaymentApplicationResponse, len(apps))
	for i, a := range apps {
		result[i] = ApplicationFromDomain(a)
	}
	return result
}

// AgingRowResponse represents one counterparty's aging buckets.
type AgingRowResponse struct {
	CounterpartyID string          `json:"counterparty_id"`
	Current        decimal.Decimal `json:"current"`
	Days1To30      decimal.Decimal `json:"days_1_30"`
	Days31To60     decimal.Decimal `json:"days_31_60"`
	Days61To90     decimal.Decimal `json:"days_61_90"`
	Over90         decimal.Decimal `json:"over_90"`
	Total          decimal.Decimal `json:"total"`
}

// AgingReportResponse represents an AR/AP aging report in API responses.
type AgingReportResponse struct {
	Side   string             `json:"side"`
	AsOf   time.Time          `json:"as_of"`
	Rows   []AgingRowResponse `json:"rows"`
	Totals AgingRowResponse   `json:"totals"`
}

// AgingReportFromDomain converts a domain aging report to a response.
func AgingReportFromDomain(r *domain.AgingReport) *AgingReportResponse {
	rows := make([]AgingRowResponse, len(r.Rows))
	for i, row := range r.Rows {
		rows[i] = agingRowFromDomain(row)
	}
	return &AgingReportResponse{
		Side:   string(r.Side),
		AsOf:   r.AsOf,
		Rows:   rows,
		Totals: agingRowFromDomain(r.Totals),
	}
}

func agingRowFromDomain(row domain.AgingRow) AgingRowResponse {
	return AgingRowResponse{
		CounterpartyID: row.CounterpartyID,
		Current:        row.Current,
		Days1To30:      row.Days1To30,
		Days31To60:     row.Days31To60,
		Days61To90:     row.Days61To90,
		Over90:         row.Over90,
		Total:          row.Total,
	}
}

// AuditLogResponse represents an audit trail entry in API responses.
type AuditLogResponse struct {
	ID           string      `json:"id"`
	Actor        string      `json:"actor"`
	Action       string      `json:"action"`
	ResourceType string      `json:"resource_type"`
	ResourceID   string      `json:"resource_id"`
	Reason       string      `json:"reason,omitempty"`
	RequestID    string      `json:"request_id,omitempty"`
	BeforeState  domain.JSON `json:"before_state,omitempty"`
	AfterState   domain.JSON `json:"after_state,omitempty"`
	Status       string      `json:"status"`
	ErrorMessage string      `json:"error_message,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
}

// AuditLogFromDomain converts a domain audit log to a response.
func AuditLogFromDomain(l *domain.AuditLog) *AuditLogResponse {
	return &AuditLogResponse{
		ID:           l.ID,
		Actor:        l.Actor,
		Action:       string(l.Action),
		ResourceType: l.ResourceType,
		ResourceID:   l.ResourceID,
		Reason:       l.Reason,
		RequestID:    l.RequestID,
		BeforeState:  l.BeforeState,
		AfterState:   l.AfterState,
		Status:       string(l.Status),
		ErrorMessage: l.ErrorMessage,
		CreatedAt:    l.CreatedAt,
	}
}

// AuditLogsFromDomain converts domain audit logs to responses.
func AuditLogsFromDomain(logs []*domain.AuditLog) []*AuditLogResponse {
	result := make([]*AuditLogResponse, len(logs))
	for i, l := range logs {
		result[i] = AuditLogFromDomain(l)
	}
	return result
}

// ListTenantsResponse wraps a page of tenants.
type ListTenantsResponse struct {
	Tenants []*TenantResponse `json:"tenants"`
	Total   int64             `json:"total"`
}

// ListAccountsResponse wraps a page of accounts.
type ListAccountsResponse struct {
	Accounts []*AccountResponse `json:"accounts"`
	Total    int64              `json:"total"`
}

// ListJournalsResponse wraps a page of journal entries.
type ListJournalsResponse struct {
	Journals []*JournalResponse `json:"journals"`
	Total    int64              `json:"total"`
}

// ListPeriodsResponse wraps a tenant's fiscal periods.
type ListPeriodsResponse struct {
	Periods []*PeriodResponse `json:"periods"`
	Total   int64             `json:"total"`
}

// ListSubledgersResponse wraps a page of receivables or payables.
type ListSubledgersResponse struct {
	Records []*SubledgerResponse `json:"records"`
	Total   int64                `json:"total"`
}

// ListApplicationsResponse wraps the payments applied against a record.
type ListApplicationsResponse struct {
	Applications []*PaymentApplicationResponse `json:"applications"`
	Total        int64                         `json:"total"`
}

// ListAuditLogsResponse wraps a page of audit entries.
type ListAuditLogsResponse struct {
	Logs  []*AuditLogResponse `json:"logs"`
	Total int64               `json:"total"`
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
