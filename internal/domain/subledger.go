package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SubledgerSide distinguishes receivables from payables.
type SubledgerSide string

const (
	SubledgerSideAR SubledgerSide = "AR"
	SubledgerSideAP SubledgerSide = "AP"
)

// SubledgerStatus is the settlement state of a receivable or payable.
type SubledgerStatus string

const (
	SubledgerStatusOpen    SubledgerStatus = "OPEN"
	SubledgerStatusPartial SubledgerStatus = "PARTIAL"
	SubledgerStatusPaid    SubledgerStatus = "PAID"
	SubledgerStatusVoid    SubledgerStatus = "VOID"
)

// SubledgerRecord is one open receivable or payable, linked 1:1 to the
// journal entry that created it. Invariant: RemainingAmount equals
// OriginalAmount minus the sum of payment applications, never negative.
type SubledgerRecord struct {
	ID              string
	TenantID        string
	Side            SubledgerSide
	CounterpartyID  string
	SourceType      SourceType
	SourceID        string
	OriginalAmount  decimal.Decimal
	RemainingAmount decimal.Decimal
	IssueDate       time.Time
	DueDate         time.Time
	Status          SubledgerStatus
	JournalEntryID  string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ApplyPayment reduces the remaining balance and advances the status.
// Applying more than the remaining balance fails with OverApplicationError.
func (r *SubledgerRecord) ApplyPayment(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}
	if r.Status == SubledgerStatusVoid {
		return ErrRecordNotPayable
	}
	if amount.GreaterThan(r.RemainingAmount) {
		return &OverApplicationError{RecordID: r.ID, Remaining: r.RemainingAmount, Applied: amount}
	}

	r.RemainingAmount = r.RemainingAmount.Sub(amount)
	if r.RemainingAmount.IsZero() {
		r.Status = SubledgerStatusPaid
	} else {
		r.Status = SubledgerStatusPartial
	}

	return nil
}

// PaymentApplication records a single payment applied against a record.
type PaymentApplication struct {
	ID             string
	TenantID       string
	RecordID       string
	Side           SubledgerSide
	Amount         decimal.Decimal
	PaymentRef     string
	JournalEntryID string
	AppliedAt      time.Time
}

// AgingBucket labels how overdue an open record is at a reporting date.
type AgingBucket string

const (
	AgingCurrent AgingBucket = "current"
	Aging1To30   AgingBucket = "1-30"
	Aging31To60  AgingBucket = "31-60"
	Aging61To90  AgingBucket = "61-90"
	AgingOver90  AgingBucket = "90+"
)

// AgingBucketFor buckets a due date by whole days overdue as of asOf.
// Records not yet due fall into the current bucket.
func AgingBucketFor(asOf, dueDate time.Time) AgingBucket {
	days := int(DateOnly(asOf).Sub(DateOnly(dueDate)).Hours() / 24)
	switch {
	case days <= 0:
		return AgingCurrent
	case days <= 30:
		return Aging1To30
	case days <= 60:
		return Aging31To60
	case days <= 90:
		return Aging61To90
	default:
		return AgingOver90
	}
}

// AgingRow aggregates one counterparty's open balances across buckets.
type AgingRow struct {
	CounterpartyID string
	Current        decimal.Decimal
	Days1To30      decimal.Decimal
	Days31To60     decimal.Decimal
	Days61To90     decimal.Decimal
	Over90         decimal.Decimal
	Total          decimal.Decimal
}

// Add accumulates an open amount into the bucket.
func (r *AgingRow) Add(bucket AgingBucket, amount decimal.Decimal) {
	switch bucket {
	case AgingCurrent:
		r.Current = r.Current.Add(amount)
	case Aging1To30:
		r.Days1To30 = r.Days1To30.Add(amount)
	case Aging31To60:
		r.Days31To60 = r.Days31To60.Add(amount)
	case Aging61To90:
		r.Days61To90 = r.Days61To90.Add(amount)
	case AgingOver90:
		r.Over90 = r.Over90.Add(amount)
	}
	r.Total = r.Total.Add(amount)
}

// AgingReport buckets open and partially paid records by days overdue.
type AgingReport struct {
	Side   SubledgerSide
	AsOf   time.Time
	Rows   []AgingRow
	Totals AgingRow
}
