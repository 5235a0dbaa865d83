package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Inbound business event types consumed by the auto-posting subsystem.
const (
	EventTypeSaleCompleted     = "sale.completed"
	EventTypePurchaseCompleted = "purchase.completed"
	EventTypeInvoiceCreated    = "invoice.created"
	EventTypeInvoicePaid       = "invoice.paid"
	EventTypeBillCreated       = "bill.created"
	EventTypeBillPaid          = "bill.paid"
	EventTypePaymentReceived   = "payment.received"
	EventTypePaymentMade       = "payment.made"
	EventTypeExpenseRecorded   = "expense.recorded"
)

// Outbound event types published through the outbox.
const (
	EventTypeJournalPosted   = "journal.posted"
	EventTypeJournalReversed = "journal.reversed"
	EventTypePeriodClosed    = "period.closed"
	EventTypePeriodLocked    = "period.locked"
	EventTypeARCreated       = "ar.created"
	EventTypeARPaid          = "ar.paid"
	EventTypeAPCreated       = "ap.created"
	EventTypeAPPaid          = "ap.paid"
)

// Aggregate types
const (
	AggregateTypeJournal    = "journal"
	AggregateTypePeriod     = "period"
	AggregateTypeReceivable = "receivable"
	AggregateTypePayable    = "payable"
	AggregateTypeAccount    = "account"
)

// OutboxEvent is an event row written in the same transaction as the change
// it describes, published asynchronously at least once.
type OutboxEvent struct {
	ID            string
	TenantID      string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// BusinessEvent is the inbound envelope delivered by other business modules
// over at-least-once messaging. SourceID is the stable identity the
// idempotency key is derived from.
type BusinessEvent struct {
	ID             string              `json:"id"`
	TenantID       string              `json:"tenant_id"`
	Type           string              `json:"type"`
	SourceID       string              `json:"source_id"`
	Amount         decimal.Decimal     `json:"amount"`
	Currency       string              `json:"currency"`
	OccurredAt     time.Time           `json:"occurred_at"`
	PaymentMethod  string              `json:"payment_method,omitempty"`
	CounterpartyID string              `json:"counterparty_id,omitempty"`
	DueDate        *time.Time          `json:"due_date,omitempty"`
	TargetID       string              `json:"target_id,omitempty"`
	Description    string              `json:"description,omitempty"`
	Lines          []BusinessEventLine `json:"lines,omitempty"`
}

// BusinessEventLine carries item-level context for account resolution.
type BusinessEventLine struct {
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Amount      decimal.Decimal `json:"amount"`
}

// JournalPostedEvent payload
type JournalPostedEvent struct {
	JournalID   string `json:"journal_id"`
	TenantID    string `json:"tenant_id"`
	Number      string `json:"number"`
	EntryDate   string `json:"entry_date"`
	SourceType  string `json:"source_type"`
	SourceID    string `json:"source_id,omitempty"`
	TotalDebit  string `json:"total_debit"`
	TotalCredit string `json:"total_credit"`
}

// JournalReversedEvent payload
type JournalReversedEvent struct {
	OriginalJournalID string `json:"original_journal_id"`
	ReversalJournalID string `json:"reversal_journal_id"`
	TenantID          string `json:"tenant_id"`
	Reason            string `json:"reason"`
}

// PeriodClosedEvent payload
type PeriodClosedEvent struct {
	PeriodID         string `json:"period_id"`
	TenantID         string `json:"tenant_id"`
	Name             string `json:"name"`
	ClosingJournalID string `json:"closing_journal_id,omitempty"`
}

// PeriodLockedEvent payload
type PeriodLockedEvent struct {
	PeriodID string `json:"period_id"`
	TenantID string `json:"tenant_id"`
	Name     string `json:"name"`
}

// SubledgerOpenedEvent payload for ar.created / ap.created
type SubledgerOpenedEvent struct {
	RecordID       string `json:"record_id"`
	TenantID       string `json:"tenant_id"`
	CounterpartyID string `json:"counterparty_id"`
	Amount         string `json:"amount"`
	DueDate        string `json:"due_date"`
	JournalID      string `json:"journal_id"`
}

// SubledgerSettledEvent payload for ar.paid / ap.paid
type SubledgerSettledEvent struct {
	RecordID   string `json:"record_id"`
	TenantID   string `json:"tenant_id"`
	PaymentRef string `json:"payment_ref"`
	Amount     string `json:"amount"`
}

// EventPayload converts a typed payload into the generic outbox map.
func EventPayload(v any) map[string]any {
	return MarshalState(v)
}
