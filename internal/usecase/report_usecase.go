package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fintech-kernel/acctd/internal/domain"
	"github.com/fintech-kernel/acctd/internal/infrastructure/metrics"
)

// ReportLine is one account's contribution to a statement section.
type ReportLine struct {
	AccountCode string          `json:"account_code"`
	AccountName string          `json:"account_name"`
	Amount      decimal.Decimal `json:"amount"`
}

// IncomeStatement is the profit and loss report over a date range.
type IncomeStatement struct {
	From          time.Time       `json:"from"`
	To            time.Time       `json:"to"`
	Income        []ReportLine    `json:"income"`
	TotalIncome   decimal.Decimal `json:"total_income"`
	Expenses      []ReportLine    `json:"expenses"`
	TotalExpenses decimal.Decimal `json:"total_expenses"`
	NetIncome     decimal.Decimal `json:"net_income"`
}

// BalanceSheet is the financial position as of a date. CurrentEarnings folds
// income and expense activity not yet closed to retained earnings into the
// equity side so the statement balances mid-period.
type BalanceSheet struct {
	AsOf             time.Time       `json:"as_of"`
	Assets           []ReportLine    `json:"assets"`
	TotalAssets      decimal.Decimal `json:"total_assets"`
	Liabilities      []ReportLine    `json:"liabilities"`
	TotalLiabilities decimal.Decimal `json:"total_liabilities"`
	Equity           []ReportLine    `json:"equity"`
	TotalEquity      decimal.Decimal `json:"total_equity"`
	CurrentEarnings  decimal.Decimal `json:"current_earnings"`
	Balanced         bool            `json:"balanced"`
}

// CashFlowStatement summarizes movements on the money accounts over a range.
type CashFlowStatement struct {
	From      time.Time       `json:"from"`
	To        time.Time       `json:"to"`
	Opening   decimal.Decimal `json:"opening"`
	Inflows   decimal.Decimal `json:"inflows"`
	Outflows  decimal.Decimal `json:"outflows"`
	NetChange decimal.Decimal `json:"net_change"`
	Closing   decimal.Decimal `json:"closing"`
}

// ReportUseCase assembles financial statements from posted activity.
type ReportUseCase struct {
	ledgerRepo LedgerRepository
	tenantRepo TenantRepository
	cache      Cache
	cacheTTL   time.Duration
	metrics    *metrics.Metrics
}

// NewReportUseCase creates a new ReportUseCase.
func NewReportUseCase(
	ledgerRepo LedgerRepository,
	tenantRepo TenantRepository,
	cache Cache,
	cacheTTL time.Duration,
	m *metrics.Metrics,
) *ReportUseCase {
	return &ReportUseCase{
		ledgerRepo: ledgerRepo,
		tenantRepo: tenantRepo,
		cache:      cache,
		cacheTTL:   cacheTTL,
		metrics:    m,
	}
}

// GetIncomeStatement reports income and expenses over a date range.
func (uc *ReportUseCase) GetIncomeStatement(ctx context.Context, tenantID string, from, to time.Time) (*IncomeStatement, error) {
	if err := domain.ValidateDateRange(from, to); err != nil {
		return nil, err
	}
	from = domain.DateOnly(from)
	to = domain.DateOnly(to)

	key := fmt.Sprintf("pnl:%s:%s:%s", tenantID, from.Format(time.DateOnly), to.Format(time.DateOnly))
	var cached IncomeStatement
	if cacheGetJSON(ctx, uc.cache, uc.metrics, key, &cached) {
		return &cached, nil
	}

	activity, err := uc.ledgerRepo.ActivityByType(ctx, tenantID,
		[]domain.AccountType{domain.AccountTypeIncome, domain.AccountTypeExpense}, from, to)
	if err != nil {
		return nil, err
	}

	report := &IncomeStatement{
		From:          from,
		To:            to,
		Income:        []ReportLine{},
		Expenses:      []ReportLine{},
		TotalIncome:   decimal.Zero,
		TotalExpenses: decimal.Zero,
	}

	for _, row := range activity {
		switch row.AccountType {
		case domain.AccountTypeIncome:
			net := row.Credit.Sub(row.Debit)
			if net.IsZero() {
				continue
			}
			report.Income = append(report.Income, ReportLine{
				AccountCode: row.AccountCode,
				AccountName: row.AccountName,
				Amount:      net,
			})
			report.TotalIncome = report.TotalIncome.Add(net)
		case domain.AccountTypeExpense:
			net := row.Debit.Sub(row.Credit)
			if net.IsZero() {
				continue
			}
			report.Expenses = append(report.Expenses, ReportLine{
				AccountCode: row.AccountCode,
				AccountName: row.AccountName,
				Amount:      net,
			})
			report.TotalExpenses = report.TotalExpenses.Add(net)
		}
	}

	report.NetIncome = report.TotalIncome.Sub(report.TotalExpenses)

	cacheSetJSON(ctx, uc.cache, uc.cacheTTL, key, report)

	return report, nil
}

// GetBalanceSheet reports assets, liabilities, and equity as of a date.
func (uc *ReportUseCase) GetBalanceSheet(ctx context.Context, tenantID string, asOf time.Time) (*BalanceSheet, error) {
	if asOf.IsZero() {
		asOf = time.Now().UTC()
	}
	asOf = domain.DateOnly(asOf)

	key := fmt.Sprintf("balancesheet:%s:%s", tenantID, asOf.Format(time.DateOnly))
	var cached BalanceSheet
	if cacheGetJSON(ctx, uc.cache, uc.metrics, key, &cached) {
		return &cached, nil
	}

	activity, err := uc.ledgerRepo.ActivityByType(ctx, tenantID,
		[]domain.AccountType{domain.AccountTypeAsset, domain.AccountTypeLiability, domain.AccountTypeEquity},
		time.Time{}, asOf)
	if err != nil {
		return nil, err
	}

	report := &BalanceSheet{
		AsOf:             asOf,
		Assets:           []ReportLine{},
		Liabilities:      []ReportLine{},
		Equity:           []ReportLine{},
		TotalAssets:      decimal.Zero,
		TotalLiabilities: decimal.Zero,
		TotalEquity:      decimal.Zero,
	}

	for _, row := range activity {
		switch row.AccountType {
		case domain.AccountTypeAsset:
			net := row.Debit.Sub(row.Credit)
			if net.IsZero() {
				continue
			}
			report.Assets = append(report.Assets, ReportLine{
				AccountCode: row.AccountCode,
				AccountName: row.AccountName,
				Amount:      net,
			})
			report.TotalAssets = report.TotalAssets.Add(net)
		case domain.AccountTypeLiability:
			net := row.Credit.Sub(row.Debit)
			if net.IsZero() {
				continue
			}
			report.Liabilities = append(report.Liabilities, ReportLine{
				AccountCode: row.AccountCode,
				AccountName: row.AccountName,
				Amount:      net,
			})
			report.TotalLiabilities = report.TotalLiabilities.Add(net)
		case domain.AccountTypeEquity:
			net := row.Credit.Sub(row.Debit)
			if net.IsZero() {
				continue
			}
			report.Equity = append(report.Equity, ReportLine{
				AccountCode: row.AccountCode,
				AccountName: row.AccountName,
				Amount:      net,
			})
			report.TotalEquity = report.TotalEquity.Add(net)
		}
	}

	// Income and expense balances not yet swept by a closing entry belong to
	// equity as earnings of the current period.
	pnl, err := uc.ledgerRepo.ActivityByType(ctx, tenantID,
		[]domain.AccountType{domain.AccountTypeIncome, domain.AccountTypeExpense},
		time.Time{}, asOf)
	if err != nil {
		return nil, err
	}
	earnings := decimal.Zero
	for _, row := range pnl {
		if row.AccountType == domain.AccountTypeIncome {
			earnings = earnings.Add(row.Credit.Sub(row.Debit))
		} else {
			earnings = earnings.Sub(row.Debit.Sub(row.Credit))
		}
	}
	report.CurrentEarnings = earnings

	report.Balanced = report.TotalAssets.Equal(
		report.TotalLiabilities.Add(report.TotalEquity).Add(report.CurrentEarnings))

	cacheSetJSON(ctx, uc.cache, uc.cacheTTL, key, report)

	return report, nil
}

// GetCashFlow reports money moving through the tenant's cash and bank
// accounts over a date range.
func (uc *ReportUseCase) GetCashFlow(ctx context.Context, tenantID string, from, to time.Time) (*CashFlowStatement, error) {
	if err := domain.ValidateDateRange(from, to); err != nil {
		return nil, err
	}
	from = domain.DateOnly(from)
	to = domain.DateOnly(to)

	key := fmt.Sprintf("cashflow:%s:%s:%s", tenantID, from.Format(time.DateOnly), to.Format(time.DateOnly))
	var cached CashFlowStatement
	if cacheGetJSON(ctx, uc.cache, uc.metrics, key, &cached) {
		return &cached, nil
	}

	tenant, err := uc.tenantRepo.GetByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	codes := moneyAccountCodes(tenant.Config)

	opening := decimal.Zero
	before, err := uc.ledgerRepo.ActivityByCodes(ctx, tenantID, codes, time.Time{}, from.AddDate(0, 0, -1))
	if err != nil {
		return nil, err
	}
	for _, row := range before {
		opening = opening.Add(row.Debit.Sub(row.Credit))
	}

	inRange, err := uc.ledgerRepo.ActivityByCodes(ctx, tenantID, codes, from, to)
	if err != nil {
		return nil, err
	}

	report := &CashFlowStatement{
		From:     from,
		To:       to,
		Opening:  opening,
		Inflows:  decimal.Zero,
		Outflows: decimal.Zero,
	}
	for _, row := range inRange {
		report.Inflows = report.Inflows.Add(row.Debit)
		report.Outflows = report.Outflows.Add(row.Credit)
	}
	report.NetChange = report.Inflows.Sub(report.Outflows)
	report.Closing = opening.Add(report.NetChange)

	cacheSetJSON(ctx, uc.cache, uc.cacheTTL, key, report)

	return report, nil
}

// moneyAccountCodes collects every account the tenant treats as cash or its
// equivalent.
func moneyAccountCodes(cfg domain.PostingConfig) []string {
	seen := map[string]bool{}
	codes := []string{}
	add := func(code string) {
		if code != "" && !seen[code] {
			seen[code] = true
			codes = append(codes, code)
		}
	}

	add(cfg.CashAccountCode)
	add(cfg.BankAccountCode)
	for _, code := range cfg.PaymentMethodAccounts {
		add(code)
	}

	return codes
}
