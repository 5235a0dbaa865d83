package usecase_test

import (
	"context"
	"fmt"
	"time"

	"github.com/fintech-kernel/acctd/internal/domain"
	"github.com/fintech-kernel/acctd/internal/usecase/mocks"
)

const testTenantID = "tenant-1"

func testTenant() *domain.Tenant {
	return &domain.Tenant{
		ID:       testTenantID,
		Name:     "Acme Tools",
		Currency: "USD",
		IsActive: true,
		Config:   domain.DefaultPostingConfig(),
	}
}

// seedChart loads the default chart of accounts for testTenantID.
func seedChart(repo *mocks.MockAccountRepository) {
	chart := []struct {
		code string
		name string
		typ  domain.AccountType
	}{
		{"1000", "Cash", domain.AccountTypeAsset},
		{"1010", "Bank", domain.AccountTypeAsset},
		{"1100", "Accounts Receivable", domain.AccountTypeAsset},
		{"2000", "Accounts Payable", domain.AccountTypeLiability},
		{"3900", "Retained Earnings", domain.AccountTypeEquity},
		{"4000", "Sales Revenue", domain.AccountTypeIncome},
		{"5000", "Purchases", domain.AccountTypeExpense},
		{"6000", "General Expense", domain.AccountTypeExpense},
	}
	for i, c := range chart {
		repo.Create(context.Background(), &domain.Account{
			ID:            fmt.Sprintf("acc-%d", i+1),
			TenantID:      testTenantID,
			Code:          c.code,
			Name:          c.name,
			Type:          c.typ,
			NormalBalance: domain.NormalBalanceFor(c.typ),
			IsActive:      true,
		})
	}
}

func mustDate(s string) time.Time {
	d, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return d
}

func openPeriod(id, name, start, end string) *domain.FiscalPeriod {
	return &domain.FiscalPeriod{
		ID:        id,
		TenantID:  testTenantID,
		Name:      name,
		StartDate: mustDate(start),
		EndDate:   mustDate(end),
		Status:    domain.PeriodStatusOpen,
	}
}
