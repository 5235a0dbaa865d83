package domain

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
)

func testAccounts() map[string]*Account {
	return map[string]*Account{
		"acc-cash": {
			ID: "acc-cash", Code: "1000", Type: AccountTypeAsset,
			NormalBalance: NormalBalanceDebit, IsActive: true,
		},
		"acc-sales": {
			ID: "acc-sales", Code: "4000", Type: AccountTypeIncome,
			NormalBalance: NormalBalanceCredit, IsActive: true,
		},
		"acc-closed": {
			ID: "acc-closed", Code: "9999", Type: AccountTypeExpense,
			NormalBalance: NormalBalanceDebit, IsActive: false,
		},
	}
}

func TestValidateEntryLines(t *testing.T) {
	tests := []struct {
		name        string
		lines       []JournalLine
		expectError bool
		errorCheck  func(error) bool
	}{
		{
			name: "balanced two-line entry",
			lines: []JournalLine{
				{AccountID: "acc-cash", AccountCode: "1000", LineNumber: 1, Debit: decimal.NewFromInt(100000)},
				{AccountID: "acc-sales", AccountCode: "4000", LineNumber: 2, Credit: decimal.NewFromInt(100000)},
			},
			expectError: false,
		},
		{
			name: "balanced multi-line entry with fractions",
			lines: []JournalLine{
				{AccountID: "acc-cash", AccountCode: "1000", LineNumber: 1, Debit: decimal.RequireFromString("0.333333")},
				{AccountID: "acc-sales", AccountCode: "4000", LineNumber: 2, Credit: decimal.RequireFromString("0.111111")},
				{AccountID: "acc-sales", AccountCode: "4000", LineNumber: 3, Credit: decimal.RequireFromString("0.222222")},
			},
			expectError: false,
		},
		{
			name: "unbalanced entry",
			lines: []JournalLine{
				{AccountID: "acc-cash", AccountCode: "1000", LineNumber: 1, Debit: decimal.NewFromInt(100)},
				{AccountID: "acc-sales", AccountCode: "4000", LineNumber: 2, Credit: decimal.NewFromInt(99)},
			},
			expectError: true,
			errorCheck: func(err error) bool {
				var target *UnbalancedEntryError
				return errors.As(err, &target) &&
					target.TotalDebit.Equal(decimal.NewFromInt(100)) &&
					target.TotalCredit.Equal(decimal.NewFromInt(99))
			},
		},
		{
			name: "single line rejected",
			lines: []JournalLine{
				{AccountID: "acc-cash", AccountCode: "1000", LineNumber: 1, Debit: decimal.NewFromInt(100)},
			},
			expectError: true,
			errorCheck: func(err error) bool {
				var target *InvalidLineError
				return errors.As(err, &target)
			},
		},
		{
			name: "line with both sides set",
			lines: []JournalLine{
				{AccountID: "acc-cash", AccountCode: "1000", LineNumber: 1, Debit: decimal.NewFromInt(50), Credit: decimal.NewFromInt(50)},
				{AccountID: "acc-sales", AccountCode: "4000", LineNumber: 2, Credit: decimal.Zero},
			},
			expectError: true,
			errorCheck: func(err error) bool {
				var target *InvalidLineError
				return errors.As(err, &target) && target.LineNumber == 1
			},
		},
		{
			name: "line with both sides zero",
			lines: []JournalLine{
				{AccountID: "acc-cash", AccountCode: "1000", LineNumber: 1, Debit: decimal.NewFromInt(10)},
				{AccountID: "acc-sales", AccountCode: "4000", LineNumber: 2},
			},
			expectError: true,
			errorCheck: func(err error) bool {
				var target *InvalidLineError
				return errors.As(err, &target) && target.LineNumber == 2
			},
		},
		{
			name: "negative amount rejected",
			lines: []JournalLine{
				{AccountID: "acc-cash", AccountCode: "1000", LineNumber: 1, Debit: decimal.NewFromInt(-10)},
				{AccountID: "acc-sales", AccountCode: "4000", LineNumber: 2, Credit: decimal.NewFromInt(-10)},
			},
			expectError: true,
			errorCheck: func(err error) bool {
				var target *InvalidLineError
				return errors.As(err, &target) && target.LineNumber == 1
			},
		},
		{
			name: "unknown account",
			lines: []JournalLine{
				{AccountID: "acc-missing", AccountCode: "7777", LineNumber: 1, Debit: decimal.NewFromInt(10)},
				{AccountID: "acc-sales", AccountCode: "4000", LineNumber: 2, Credit: decimal.NewFromInt(10)},
			},
			expectError: true,
			errorCheck: func(err error) bool {
				var target *InvalidLineError
				return errors.As(err, &target) && target.LineNumber == 1
			},
		},
		{
			name: "inactive account",
			lines: []JournalLine{
				{AccountID: "acc-closed", AccountCode: "9999", LineNumber: 1, Debit: decimal.NewFromInt(10)},
				{AccountID: "acc-sales", AccountCode: "4000", LineNumber: 2, Credit: decimal.NewFromInt(10)},
			},
			expectError: true,
			errorCheck: func(err error) bool {
				var target *InvalidLineError
				return errors.As(err, &target) && target.LineNumber == 1
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEntryLines(tt.lines, testAccounts())

			if tt.expectError && err == nil {
				t.Fatal("expected error, got nil")
			}

			if !tt.expectError && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if tt.errorCheck != nil && !tt.errorCheck(err) {
				t.Errorf("error %v failed check", err)
			}
		})
	}
}

// Random balanced line sets must always validate, and the same set knocked
// off by a single micro-unit must always be rejected as unbalanced. Amounts
// are built from integer micro-units so the splits are exact at 6 decimals.
func TestValidateEntryLines_RandomBalancedSets(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	accounts := testAccounts()

	micro := func(units int64) decimal.Decimal { return decimal.New(units, -6) }

	for i := 0; i < 200; i++ {
		debitCount := rng.Intn(4) + 1
		creditCount := rng.Intn(4) + 1

		lines := make([]JournalLine, 0, debitCount+creditCount)
		var totalUnits int64
		for d := 0; d < debitCount; d++ {
			units := rng.Int63n(1_000_000_000) + 1000
			totalUnits += units
			lines = append(lines, JournalLine{
				AccountID:   "acc-cash",
				AccountCode: "1000",
				LineNumber:  len(lines) + 1,
				Debit:       micro(units),
			})
		}

		remaining := totalUnits
		for c := creditCount; c > 0; c-- {
			units := remaining
			if c > 1 {
				// leave at least one unit for each credit line still to come
				units = rng.Int63n(remaining-int64(c)+1) + 1
			}
			remaining -= units
			lines = append(lines, JournalLine{
				AccountID:   "acc-sales",
				AccountCode: "4000",
				LineNumber:  len(lines) + 1,
				Credit:      micro(units),
			})
		}

		if err := ValidateEntryLines(lines, accounts); err != nil {
			t.Fatalf("iteration %d: balanced set of %d lines rejected: %v", i, len(lines), err)
		}

		skewed := make([]JournalLine, len(lines))
		copy(skewed, lines)
		skewed[0].Debit = skewed[0].Debit.Add(micro(1))

		var unbalanced *UnbalancedEntryError
		if err := ValidateEntryLines(skewed, accounts); !errors.As(err, &unbalanced) {
			t.Fatalf("iteration %d: skewed set passed validation: %v", i, err)
		}
	}
}

func TestReversalLines(t *testing.T) {
	entry := &JournalEntry{
		Number: "JE-2025-000042",
		Lines: []JournalLine{
			{AccountID: "acc-cash", AccountCode: "1000", LineNumber: 1, Debit: decimal.NewFromInt(100000), Department: "sales"},
			{AccountID: "acc-sales", AccountCode: "4000", LineNumber: 2, Credit: decimal.NewFromInt(100000)},
		},
	}

	reversed := ReversalLines(entry)

	if len(reversed) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(reversed))
	}

	if !reversed[0].Credit.Equal(decimal.NewFromInt(100000)) || !reversed[0].Debit.IsZero() {
		t.Errorf("line 1 not swapped: debit=%s credit=%s", reversed[0].Debit, reversed[0].Credit)
	}

	if !reversed[1].Debit.Equal(decimal.NewFromInt(100000)) || !reversed[1].Credit.IsZero() {
		t.Errorf("line 2 not swapped: debit=%s credit=%s", reversed[1].Debit, reversed[1].Credit)
	}

	if reversed[0].Department != "sales" {
		t.Errorf("dimensions not preserved: %q", reversed[0].Department)
	}

	// Reversal of a balanced entry stays balanced.
	debit, credit := EntryTotals(reversed)
	if !debit.Equal(credit) {
		t.Errorf("reversal unbalanced: debit=%s credit=%s", debit, credit)
	}
}

func TestFormatJournalNumber(t *testing.T) {
	if got := FormatJournalNumber(2025, 7); got != "JE-2025-000007" {
		t.Errorf("FormatJournalNumber(2025, 7) = %s", got)
	}

	if got := FormatJournalNumber(2026, 123456); got != "JE-2026-123456" {
		t.Errorf("FormatJournalNumber(2026, 123456) = %s", got)
	}
}
