package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// Account errors
	ErrAccountNotFound  = errors.New("account not found")
	ErrAccountCodeTaken = errors.New("account code already in use")
	ErrAccountInactive  = errors.New("account is inactive")
	ErrSystemAccount    = errors.New("system account cannot be modified")

	// Journal errors
	ErrJournalNotFound        = errors.New("journal entry not found")
	ErrJournalNotDraft        = errors.New("journal entry is not a draft")
	ErrJournalNotPosted       = errors.New("journal entry is not posted")
	ErrReasonRequired         = errors.New("reason is required")
	ErrIdempotencyKeyRequired = errors.New("idempotency key is required")

	// Period errors
	ErrPeriodNotFound  = errors.New("fiscal period not found")
	ErrPeriodNotOpen   = errors.New("fiscal period is not open")
	ErrPeriodNotClosed = errors.New("fiscal period is not closed")
	ErrPeriodNotLocked = errors.New("fiscal period is not locked")

	// Subledger errors
	ErrSubledgerRecordNotFound = errors.New("subledger record not found")
	ErrRecordNotPayable        = errors.New("subledger record does not accept payments")

	// Tenant errors
	ErrTenantNotFound = errors.New("tenant not found")
	ErrTenantInactive = errors.New("tenant is inactive")

	ErrInvalidAmount = errors.New("amount must be positive")
)

// UnbalancedEntryError reports journal lines whose debit and credit totals differ.
type UnbalancedEntryError struct {
	TotalDebit  decimal.Decimal
	TotalCredit decimal.Decimal
}

func (e *UnbalancedEntryError) Error() string {
	return fmt.Sprintf("journal entry is unbalanced: debits %s, credits %s, difference %s",
		e.TotalDebit, e.TotalCredit, e.TotalDebit.Sub(e.TotalCredit))
}

// InvalidLineError reports a journal line that violates the line shape rules.
type InvalidLineError struct {
	LineNumber int
	Reason     string
}

func (e *InvalidLineError) Error() string {
	return fmt.Sprintf("invalid journal line %d: %s", e.LineNumber, e.Reason)
}

// CannotVoidPostedError is returned when voiding anything but a draft.
type CannotVoidPostedError struct {
	EntryID string
	Status  JournalStatus
}

func (e *CannotVoidPostedError) Error() string {
	return fmt.Sprintf("journal entry %s has status %s and cannot be voided: use a reversal", e.EntryID, e.Status)
}

// AlreadyReversedError is returned when an entry already has a reversal.
type AlreadyReversedError struct {
	EntryID    string
	ReversedBy string
}

func (e *AlreadyReversedError) Error() string {
	return fmt.Sprintf("journal entry %s is already reversed by %s", e.EntryID, e.ReversedBy)
}

// OverApplicationError is returned when a payment exceeds the remaining balance.
type OverApplicationError struct {
	RecordID  string
	Remaining decimal.Decimal
	Applied   decimal.Decimal
}

func (e *OverApplicationError) Error() string {
	return fmt.Sprintf("payment of %s exceeds remaining balance %s on record %s", e.Applied, e.Remaining, e.RecordID)
}
