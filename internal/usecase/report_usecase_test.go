package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/mock/gomock"

	"github.com/fintech-kernel/acctd/internal/domain"
	"github.com/fintech-kernel/acctd/internal/usecase"
	"github.com/fintech-kernel/acctd/internal/usecase/mocks"
)

func newReportUseCase(ledger usecase.LedgerRepository) *usecase.ReportUseCase {
	tenants := mocks.NewMockTenantRepository()
	_ = tenants.Create(context.Background(), testTenant())
	return usecase.NewReportUseCase(ledger, tenants, nil, time.Minute, nil)
}

func TestReportUseCase_GetIncomeStatement(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ledger := mocks.NewMockLedgerRepository(ctrl)
	ledger.EXPECT().ActivityByType(gomock.Any(), testTenantID,
		[]domain.AccountType{domain.AccountTypeIncome, domain.AccountTypeExpense},
		gomock.Any(), gomock.Any()).Return([]usecase.AccountActivity{
		{
			AccountCode: "4000", AccountName: "Sales Revenue", AccountType: domain.AccountTypeIncome,
			Debit: decimal.NewFromInt(20), Credit: decimal.NewFromInt(720),
		},
		{
			AccountCode: "6000", AccountName: "General Expense", AccountType: domain.AccountTypeExpense,
			Debit: decimal.NewFromInt(300), Credit: decimal.NewFromInt(50),
		},
		// Zero net activity stays off the statement.
		{
			AccountCode: "4100", AccountName: "Service Revenue", AccountType: domain.AccountTypeIncome,
			Debit: decimal.NewFromInt(10), Credit: decimal.NewFromInt(10),
		},
	}, nil)

	uc := newReportUseCase(ledger)

	report, err := uc.GetIncomeStatement(context.Background(), testTenantID, mustDate("2025-06-01"), mustDate("2025-06-30"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(report.Income) != 1 || len(report.Expenses) != 1 {
		t.Fatalf("expected 1 income and 1 expense line, got %d/%d", len(report.Income), len(report.Expenses))
	}
	if !report.TotalIncome.Equal(decimal.NewFromInt(700)) {
		t.Errorf("expected total income 700, got %s", report.TotalIncome)
	}
	if !report.TotalExpenses.Equal(decimal.NewFromInt(250)) {
		t.Errorf("expected total expenses 250, got %s", report.TotalExpenses)
	}
	if !report.NetIncome.Equal(decimal.NewFromInt(450)) {
		t.Errorf("expected net income 450, got %s", report.NetIncome)
	}
}

func TestReportUseCase_GetIncomeStatement_InvalidRange(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	uc := newReportUseCase(mocks.NewMockLedgerRepository(ctrl))

	_, err := uc.GetIncomeStatement(context.Background(), testTenantID, mustDate("2025-06-30"), mustDate("2025-06-01"))
	if err == nil {
		t.Error("expected error for an inverted date range")
	}
}

func TestReportUseCase_GetBalanceSheet(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ledger := mocks.NewMockLedgerRepository(ctrl)
	ledger.EXPECT().ActivityByType(gomock.Any(), testTenantID,
		[]domain.AccountType{domain.AccountTypeAsset, domain.AccountTypeLiability, domain.AccountTypeEquity},
		gomock.Any(), gomock.Any()).Return([]usecase.AccountActivity{
		{
			AccountCode: "1000", AccountName: "Cash", AccountType: domain.AccountTypeAsset,
			Debit: decimal.NewFromInt(1200), Credit: decimal.NewFromInt(200),
		},
		{
			AccountCode: "1100", AccountName: "Accounts Receivable", AccountType: domain.AccountTypeAsset,
			Debit: decimal.NewFromInt(500), Credit: decimal.NewFromInt(0),
		},
		{
			AccountCode: "2000", AccountName: "Accounts Payable", AccountType: domain.AccountTypeLiability,
			Debit: decimal.NewFromInt(0), Credit: decimal.NewFromInt(300),
		},
		{
			AccountCode: "3900", AccountName: "Retained Earnings", AccountType: domain.AccountTypeEquity,
			Debit: decimal.NewFromInt(0), Credit: decimal.NewFromInt(750),
		},
	}, nil)
	ledger.EXPECT().ActivityByType(gomock.Any(), testTenantID,
		[]domain.AccountType{domain.AccountTypeIncome, domain.AccountTypeExpense},
		gomock.Any(), gomock.Any()).Return([]usecase.AccountActivity{
		{
			AccountCode: "4000", AccountName: "Sales Revenue", AccountType: domain.AccountTypeIncome,
			Debit: decimal.NewFromInt(0), Credit: decimal.NewFromInt(700),
		},
		{
			AccountCode: "6000", AccountName: "General Expense", AccountType: domain.AccountTypeExpense,
			Debit: decimal.NewFromInt(250), Credit: decimal.NewFromInt(0),
		},
	}, nil)

	uc := newReportUseCase(ledger)

	report, err := uc.GetBalanceSheet(context.Background(), testTenantID, mustDate("2025-06-30"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !report.TotalAssets.Equal(decimal.NewFromInt(1500)) {
		t.Errorf("expected total assets 1500, got %s", report.TotalAssets)
	}
	if !report.TotalLiabilities.Equal(decimal.NewFromInt(300)) {
		t.Errorf("expected total liabilities 300, got %s", report.TotalLiabilities)
	}
	if !report.TotalEquity.Equal(decimal.NewFromInt(750)) {
		t.Errorf("expected total equity 750, got %s", report.TotalEquity)
	}
	if !report.CurrentEarnings.Equal(decimal.NewFromInt(450)) {
		t.Errorf("expected current earnings 450, got %s", report.CurrentEarnings)
	}
	if !report.Balanced {
		t.Error("expected assets to equal liabilities plus equity plus current earnings")
	}
}

func TestReportUseCase_GetBalanceSheet_ReportsImbalance(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ledger := mocks.NewMockLedgerRepository(ctrl)
	ledger.EXPECT().ActivityByType(gomock.Any(), testTenantID,
		[]domain.AccountType{domain.AccountTypeAsset, domain.AccountTypeLiability, domain.AccountTypeEquity},
		gomock.Any(), gomock.Any()).Return([]usecase.AccountActivity{
		{
			AccountCode: "1000", AccountName: "Cash", AccountType: domain.AccountTypeAsset,
			Debit: decimal.NewFromInt(1500), Credit: decimal.NewFromInt(0),
		},
	}, nil)
	ledger.EXPECT().ActivityByType(gomock.Any(), testTenantID,
		[]domain.AccountType{domain.AccountTypeIncome, domain.AccountTypeExpense},
		gomock.Any(), gomock.Any()).Return(nil, nil)

	uc := newReportUseCase(ledger)

	report, err := uc.GetBalanceSheet(context.Background(), testTenantID, mustDate("2025-06-30"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Balanced {
		t.Error("expected the imbalance to be reported")
	}
}

func TestReportUseCase_GetCashFlow(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ledger := mocks.NewMockLedgerRepository(ctrl)
	// Opening across everything before the range, then the range itself.
	ledger.EXPECT().ActivityByCodes(gomock.Any(), testTenantID, []string{"1000", "1010"},
		gomock.Any(), gomock.Any()).Return([]usecase.AccountActivity{
		{AccountCode: "1000", Debit: decimal.NewFromInt(500), Credit: decimal.NewFromInt(200)},
	}, nil)
	ledger.EXPECT().ActivityByCodes(gomock.Any(), testTenantID, []string{"1000", "1010"},
		gomock.Any(), gomock.Any()).Return([]usecase.AccountActivity{
		{AccountCode: "1000", Debit: decimal.NewFromInt(300), Credit: decimal.NewFromInt(100)},
		{AccountCode: "1010", Debit: decimal.NewFromInt(100), Credit: decimal.NewFromInt(50)},
	}, nil)

	uc := newReportUseCase(ledger)

	report, err := uc.GetCashFlow(context.Background(), testTenantID, mustDate("2025-06-01"), mustDate("2025-06-30"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !report.Opening.Equal(decimal.NewFromInt(300)) {
		t.Errorf("expected opening 300, got %s", report.Opening)
	}
	if !report.Inflows.Equal(decimal.NewFromInt(400)) || !report.Outflows.Equal(decimal.NewFromInt(150)) {
		t.Errorf("expected flows 400/150, got %s/%s", report.Inflows, report.Outflows)
	}
	if !report.NetChange.Equal(decimal.NewFromInt(250)) {
		t.Errorf("expected net change 250, got %s", report.NetChange)
	}
	if !report.Closing.Equal(decimal.NewFromInt(550)) {
		t.Errorf("expected closing 550, got %s", report.Closing)
	}
}
