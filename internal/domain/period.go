package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// PeriodStatus is the lifecycle state of a fiscal period.
// Transitions: OPEN -> CLOSED -> LOCKED, with explicit audited exceptions
// CLOSED -> OPEN (reopen) and LOCKED -> CLOSED (unlock).
type PeriodStatus string

const (
	PeriodStatusOpen   PeriodStatus = "OPEN"
	PeriodStatusClosed PeriodStatus = "CLOSED"
	PeriodStatusLocked PeriodStatus = "LOCKED"
)

// FiscalPeriod is a bounded date range with its own posting-permission
// lifecycle. Periods of a tenant never overlap.
type FiscalPeriod struct {
	ID             string
	TenantID       string
	Name           string
	StartDate      time.Time
	EndDate        time.Time
	Status         PeriodStatus
	ClosedAt       *time.Time
	ClosedBy       string
	LockedAt       *time.Time
	LockedBy       string
	Snapshot       *PeriodSnapshot
	ClosingEntryID *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// PeriodSnapshot is the point-in-time trial balance captured when a period
// closes, kept on the period row for audit.
type PeriodSnapshot struct {
	AsOf        time.Time       `json:"as_of"`
	Rows        []SnapshotRow   `json:"rows"`
	TotalDebit  decimal.Decimal `json:"total_debit"`
	TotalCredit decimal.Decimal `json:"total_credit"`
}

// SnapshotRow is one account's balance inside a period snapshot.
type SnapshotRow struct {
	AccountCode string          `json:"account_code"`
	AccountName string          `json:"account_name"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Balance     decimal.Decimal `json:"balance"`
}

// Contains reports whether date falls inside the period (inclusive bounds,
// date precision).
func (p *FiscalPeriod) Contains(date time.Time) bool {
	d := DateOnly(date)
	return !d.Before(DateOnly(p.StartDate)) && !d.After(DateOnly(p.EndDate))
}

// Overlaps reports whether two date ranges intersect.
func (p *FiscalPeriod) Overlaps(start, end time.Time) bool {
	return !DateOnly(end).Before(DateOnly(p.StartDate)) && !DateOnly(start).After(DateOnly(p.EndDate))
}

// CanPostToDate decides whether a posting dated inside period is permitted.
// A nil period means no period is configured for the date, which allows
// posting. CLOSED periods accept system-generated postings only; LOCKED
// periods accept none.
func CanPostToDate(period *FiscalPeriod, systemGenerated bool) (bool, string) {
	if period == nil {
		return true, "no fiscal period configured for date"
	}

	switch period.Status {
	case PeriodStatusOpen:
		return true, fmt.Sprintf("period %s is open", period.Name)
	case PeriodStatusClosed:
		if systemGenerated {
			return true, fmt.Sprintf("period %s is closed, system posting permitted", period.Name)
		}
		return false, fmt.Sprintf("period %s is closed", period.Name)
	case PeriodStatusLocked:
		return false, fmt.Sprintf("period %s is locked", period.Name)
	default:
		return false, fmt.Sprintf("period %s has unknown status %s", period.Name, period.Status)
	}
}

// DateOnly truncates a timestamp to its UTC calendar date.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// PeriodClosedError rejects postings dated in a closed period.
type PeriodClosedError struct {
	PeriodID   string
	PeriodName string
	Date       time.Time
}

func (e *PeriodClosedError) Error() string {
	return fmt.Sprintf("period %s is closed: cannot post to %s", e.PeriodName, e.Date.Format(time.DateOnly))
}

// PeriodLockedError rejects postings and reversals touching a locked period.
type PeriodLockedError struct {
	PeriodID   string
	PeriodName string
}

func (e *PeriodLockedError) Error() string {
	return fmt.Sprintf("period %s is locked", e.PeriodName)
}

// PeriodOverlapError rejects a period whose range intersects an existing one.
type PeriodOverlapError struct {
	Name          string
	ConflictsWith string
}

func (e *PeriodOverlapError) Error() string {
	return fmt.Sprintf("period %s overlaps existing period %s", e.Name, e.ConflictsWith)
}

// PriorPeriodOpenError enforces strictly sequential closing.
type PriorPeriodOpenError struct {
	PeriodName string
	PriorName  string
}

func (e *PriorPeriodOpenError) Error() string {
	return fmt.Sprintf("cannot close period %s: preceding period %s is still open", e.PeriodName, e.PriorName)
}

// LaterPeriodClosedError rejects reopening a period behind a closed one.
type LaterPeriodClosedError struct {
	PeriodName string
	LaterName  string
}

func (e *LaterPeriodClosedError) Error() string {
	return fmt.Sprintf("cannot reopen period %s: later period %s is already closed", e.PeriodName, e.LaterName)
}

// DraftJournalsExistError blocks closing while unposted drafts remain in the
// period and the tenant policy is BLOCK.
type DraftJournalsExistError struct {
	PeriodID   string
	PeriodName string
	Count      int
}

func (e *DraftJournalsExistError) Error() string {
	return fmt.Sprintf("period %s has %d draft journal entries", e.PeriodName, e.Count)
}
