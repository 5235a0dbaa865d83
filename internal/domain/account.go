package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountType classifies an account on the financial statements.
type AccountType string

const (
	AccountTypeAsset     AccountType = "ASSET"
	AccountTypeLiability AccountType = "LIABILITY"
	AccountTypeEquity    AccountType = "EQUITY"
	AccountTypeIncome    AccountType = "INCOME"
	AccountTypeExpense   AccountType = "EXPENSE"
)

// NormalBalance is the side on which an account's balance increases.
type NormalBalance string

const (
	NormalBalanceDebit  NormalBalance = "DEBIT"
	NormalBalanceCredit NormalBalance = "CREDIT"
)

// Account is a node in a tenant's chart of accounts.
type Account struct {
	ID            string
	TenantID      string
	Code          string
	Name          string
	Type          AccountType
	NormalBalance NormalBalance
	ParentID      *string
	IsActive      bool
	IsSystem      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ValidAccountType reports whether t is a recognized account type.
func ValidAccountType(t AccountType) bool {
	switch t {
	case AccountTypeAsset, AccountTypeLiability, AccountTypeEquity, AccountTypeIncome, AccountTypeExpense:
		return true
	}
	return false
}

// NormalBalanceFor derives the normal balance from the account type.
// The normal balance is fixed at creation and never mutated afterwards.
func NormalBalanceFor(t AccountType) NormalBalance {
	switch t {
	case AccountTypeAsset, AccountTypeExpense:
		return NormalBalanceDebit
	default:
		return NormalBalanceCredit
	}
}

// SignedBalance orients raw debit/credit totals to the account's normal side:
// debit-normal accounts report debit-credit, credit-normal accounts credit-debit.
func (a *Account) SignedBalance(debit, credit decimal.Decimal) decimal.Decimal {
	if a.NormalBalance == NormalBalanceDebit {
		return debit.Sub(credit)
	}
	return credit.Sub(debit)
}

// CanPost reports whether new journal lines may reference this account.
func (a *Account) CanPost() bool {
	return a.IsActive
}
