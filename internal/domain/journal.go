package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// JournalStatus is the lifecycle state of a journal entry.
type JournalStatus string

const (
	JournalStatusDraft  JournalStatus = "DRAFT"
	JournalStatusPosted JournalStatus = "POSTED"
	JournalStatusVoid   JournalStatus = "VOID"
)

// SourceType tags the business document a journal entry originates from.
type SourceType string

const (
	SourceTypeSale       SourceType = "SALE"
	SourceTypePurchase   SourceType = "PURCHASE"
	SourceTypeBill       SourceType = "BILL"
	SourceTypePayment    SourceType = "PAYMENT"
	SourceTypeExpense    SourceType = "EXPENSE"
	SourceTypeManual     SourceType = "MANUAL"
	SourceTypeClosing    SourceType = "CLOSING"
	SourceTypeAdjustment SourceType = "ADJUSTMENT"
)

// ValidSourceType reports whether t is a recognized source type.
func ValidSourceType(t SourceType) bool {
	switch t {
	case SourceTypeSale, SourceTypePurchase, SourceTypeBill, SourceTypePayment,
		SourceTypeExpense, SourceTypeManual, SourceTypeClosing, SourceTypeAdjustment:
		return true
	}
	return false
}

// JournalEntry is the header of a double-entry transaction. Once POSTED the
// header and its lines are immutable; corrections are new reversal entries.
type JournalEntry struct {
	ID              string
	TenantID        string
	Number          string
	EntryDate       time.Time
	Description     string
	SourceType      SourceType
	SourceID        *string
	IdempotencyKey  string
	Status          JournalStatus
	PeriodID        *string
	ReversalOf      *string
	ReversedBy      *string
	ReversalReason  string
	SystemGenerated bool
	SourcePayload   JSON
	Lines           []JournalLine
	CreatedBy       string
	CreatedAt       time.Time
	PostedAt        *time.Time
}

// JournalLine is a single debit or credit against one account.
// Exactly one of Debit/Credit is strictly positive, the other zero.
type JournalLine struct {
	ID          string
	EntryID     string
	AccountID   string
	AccountCode string
	LineNumber  int
	Description string
	Debit       decimal.Decimal
	Credit      decimal.Decimal
	Department  string
	Project     string
}

// FormatJournalNumber renders the human-readable sequential journal number,
// scoped per tenant per year.
func FormatJournalNumber(year int, seq int64) string {
	return fmt.Sprintf("JE-%d-%06d", year, seq)
}

// EntryTotals returns the debit and credit sums over lines.
func EntryTotals(lines []JournalLine) (debit, credit decimal.Decimal) {
	debit, credit = decimal.Zero, decimal.Zero
	for _, line := range lines {
		debit = debit.Add(line.Debit)
		credit = credit.Add(line.Credit)
	}
	return debit, credit
}

// ValidateEntryLines is the double-entry validator: it checks line shape and
// balance for a candidate set of lines. Accounts are passed in keyed by ID so
// the validation stays a pure function with no I/O.
func ValidateEntryLines(lines []JournalLine, accounts map[string]*Account) error {
	if len(lines) < 2 {
		return &InvalidLineError{LineNumber: 0, Reason: "a journal entry requires at least two lines"}
	}

	for _, line := range lines {
		if line.Debit.IsNegative() || line.Credit.IsNegative() {
			return &InvalidLineError{LineNumber: line.LineNumber, Reason: "debit and credit must be non-negative"}
		}
		if line.Debit.IsZero() && line.Credit.IsZero() {
			return &InvalidLineError{LineNumber: line.LineNumber, Reason: "either debit or credit must be positive"}
		}
		if line.Debit.IsPositive() && line.Credit.IsPositive() {
			return &InvalidLineError{LineNumber: line.LineNumber, Reason: "a line cannot carry both debit and credit"}
		}

		account, ok := accounts[line.AccountID]
		if !ok {
			return &InvalidLineError{LineNumber: line.LineNumber, Reason: fmt.Sprintf("unknown account %s", line.AccountCode)}
		}
		if !account.CanPost() {
			return &InvalidLineError{LineNumber: line.LineNumber, Reason: fmt.Sprintf("account %s is inactive", account.Code)}
		}
	}

	totalDebit, totalCredit := EntryTotals(lines)
	if !totalDebit.Equal(totalCredit) {
		return &UnbalancedEntryError{TotalDebit: totalDebit, TotalCredit: totalCredit}
	}

	return nil
}

// ReversalLines builds the line set that cancels entry: debits and credits
// swapped, line numbers and dimensions preserved.
func ReversalLines(entry *JournalEntry) []JournalLine {
	lines := make([]JournalLine, 0, len(entry.Lines))
	for _, line := range entry.Lines {
		lines = append(lines, JournalLine{
			AccountID:   line.AccountID,
			AccountCode: line.AccountCode,
			LineNumber:  line.LineNumber,
			Description: fmt.Sprintf("Reversal of %s", entry.Number),
			Debit:       line.Credit,
			Credit:      line.Debit,
			Department:  line.Department,
			Project:     line.Project,
		})
	}
	return lines
}

// IsReversed reports whether a reversal entry already references this entry.
func (e *JournalEntry) IsReversed() bool {
	return e.ReversedBy != nil && *e.ReversedBy != ""
}

// IsReversal reports whether this entry reverses another one.
func (e *JournalEntry) IsReversal() bool {
	return e.ReversalOf != nil && *e.ReversalOf != ""
}
