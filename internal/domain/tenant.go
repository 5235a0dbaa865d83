package domain

import (
	"strings"
	"time"
)

// DraftPolicy controls whether a period may close while draft journal
// entries remain inside it.
type DraftPolicy string

const (
	DraftPolicyBlock DraftPolicy = "BLOCK"
	DraftPolicyAllow DraftPolicy = "ALLOW"
)

// Tenant is one isolated set of books. Every kernel operation takes the
// tenant explicitly; nothing is resolved from ambient state.
type Tenant struct {
	ID        string
	Name      string
	Currency  string
	IsActive  bool
	Config    PostingConfig
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PostingConfig drives auto-posting account resolution and period policy.
// Account references are codes in the tenant's chart of accounts.
type PostingConfig struct {
	CashAccountCode       string            `json:"cash_account_code"`
	BankAccountCode       string            `json:"bank_account_code"`
	ReceivableAccountCode string            `json:"receivable_account_code"`
	PayableAccountCode    string            `json:"payable_account_code"`
	SalesAccountCode      string            `json:"sales_account_code"`
	PurchasesAccountCode  string            `json:"purchases_account_code"`
	ExpenseAccountCode    string            `json:"expense_account_code"`
	RetainedEarningsCode  string            `json:"retained_earnings_code"`
	PaymentMethodAccounts map[string]string `json:"payment_method_accounts,omitempty"`
	CategoryAccounts      map[string]string `json:"category_accounts,omitempty"`
	CloseWithDrafts       DraftPolicy       `json:"close_with_drafts"`
}

// DefaultPostingConfig returns the configuration matching the seeded chart
// of accounts. Draft journals block period close unless a tenant opts out.
func DefaultPostingConfig() PostingConfig {
	return PostingConfig{
		CashAccountCode:       "1000",
		BankAccountCode:       "1010",
		ReceivableAccountCode: "1100",
		PayableAccountCode:    "2000",
		SalesAccountCode:      "4000",
		PurchasesAccountCode:  "5000",
		ExpenseAccountCode:    "6000",
		RetainedEarningsCode:  "3900",
		CloseWithDrafts:       DraftPolicyBlock,
	}
}

// ResolvePaymentAccount maps a payment method to the account code holding
// the money side of the posting.
func (c PostingConfig) ResolvePaymentAccount(method string) string {
	if code, ok := c.PaymentMethodAccounts[strings.ToLower(method)]; ok {
		return code
	}
	if strings.EqualFold(method, "cash") {
		return c.CashAccountCode
	}
	return c.BankAccountCode
}

// ResolveCategoryAccount maps an item or expense category to its account
// code, falling back to the general expense account.
func (c PostingConfig) ResolveCategoryAccount(category string) string {
	if code, ok := c.CategoryAccounts[strings.ToLower(category)]; ok {
		return code
	}
	return c.ExpenseAccountCode
}
