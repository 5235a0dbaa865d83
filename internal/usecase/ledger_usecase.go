package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fintech-kernel/acctd/internal/domain"
	"github.com/fintech-kernel/acctd/internal/infrastructure/metrics"
)

var (
	// ErrInconsistentLedger is returned when posted debits and credits diverge.
	ErrInconsistentLedger = errors.New("ledger is inconsistent: debits do not equal credits")
)

// AccountBalance is a point-in-time balance for one account.
type AccountBalance struct {
	AccountID     string               `json:"account_id"`
	AccountCode   string               `json:"account_code"`
	AccountName   string               `json:"account_name"`
	AccountType   domain.AccountType   `json:"account_type"`
	NormalBalance domain.NormalBalance `json:"normal_balance"`
	TotalDebit    decimal.Decimal      `json:"total_debit"`
	TotalCredit   decimal.Decimal      `json:"total_credit"`
	Balance       decimal.Decimal      `json:"balance"`
	AsOf          time.Time            `json:"as_of"`
}

// TrialBalanceRow is one account's line on the trial balance.
type TrialBalanceRow struct {
	AccountID   string             `json:"account_id"`
	AccountCode string             `json:"account_code"`
	AccountName string             `json:"account_name"`
	AccountType domain.AccountType `json:"account_type"`
	Debit       decimal.Decimal    `json:"debit"`
	Credit      decimal.Decimal    `json:"credit"`
	Balance     decimal.Decimal    `json:"balance"`
}

// TrialBalance lists every account with posted activity and proves the books
// balance.
type TrialBalance struct {
	AsOf        time.Time         `json:"as_of"`
	Rows        []TrialBalanceRow `json:"rows"`
	TotalDebit  decimal.Decimal   `json:"total_debit"`
	TotalCredit decimal.Decimal   `json:"total_credit"`
	IsBalanced  bool              `json:"is_balanced"`
}

// LedgerEntry is one movement on an account ledger with the running balance
// after it.
type LedgerEntry struct {
	EntryID     string          `json:"entry_id"`
	Number      string          `json:"number"`
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Running     decimal.Decimal `json:"running_balance"`
}

// AccountLedger is the statement view of one account over a date range.
type AccountLedger struct {
	AccountID      string          `json:"account_id"`
	AccountCode    string          `json:"account_code"`
	AccountName    string          `json:"account_name"`
	From           time.Time       `json:"from"`
	To             time.Time       `json:"to"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	Entries        []LedgerEntry   `json:"entries"`
	ClosingBalance decimal.Decimal `json:"closing_balance"`
}

// ConsistencyResult reports whether posted debits equal posted credits.
type ConsistencyResult struct {
	AsOf        time.Time       `json:"as_of"`
	TotalDebit  decimal.Decimal `json:"total_debit"`
	TotalCredit decimal.Decimal `json:"total_credit"`
	Difference  decimal.Decimal `json:"difference"`
	Consistent  bool            `json:"consistent"`
}

// LedgerUseCase answers balance queries from posted journal lines.
type LedgerUseCase struct {
	ledgerRepo  LedgerRepository
	accountRepo AccountRepository
	cache       Cache
	cacheTTL    time.Duration
	metrics     *metrics.Metrics
}

// NewLedgerUseCase creates a new LedgerUseCase.
func NewLedgerUseCase(
	ledgerRepo LedgerRepository,
	accountRepo AccountRepository,
	cache Cache,
	cacheTTL time.Duration,
	m *metrics.Metrics,
) *LedgerUseCase {
	return &LedgerUseCase{
		ledgerRepo:  ledgerRepo,
		accountRepo: accountRepo,
		cache:       cache,
		cacheTTL:    cacheTTL,
		metrics:     m,
	}
}

// GetAccountBalance computes one account's balance as of a date. Balances are
// cached briefly; the ledger stays the source of truth.
func (uc *LedgerUseCase) GetAccountBalance(ctx context.Context, tenantID, accountID string, asOf time.Time) (*AccountBalance, error) {
	if asOf.IsZero() {
		asOf = time.Now().UTC()
	}
	asOf = domain.DateOnly(asOf)

	key := fmt.Sprintf("balance:%s:%s:%s", tenantID, accountID, asOf.Format(time.DateOnly))
	var cached AccountBalance
	if cacheGetJSON(ctx, uc.cache, uc.metrics, key, &cached) {
		return &cached, nil
	}

	account, err := uc.accountRepo.GetByID(ctx, tenantID, accountID)
	if err != nil {
		return nil, err
	}

	debit, credit, err := uc.ledgerRepo.AccountActivity(ctx, tenantID, accountID, asOf)
	if err != nil {
		return nil, err
	}

	balance := &AccountBalance{
		AccountID:     account.ID,
		AccountCode:   account.Code,
		AccountName:   account.Name,
		AccountType:   account.Type,
		NormalBalance: account.NormalBalance,
		TotalDebit:    debit,
		TotalCredit:   credit,
		Balance:       account.SignedBalance(debit, credit),
		AsOf:          asOf,
	}

	cacheSetJSON(ctx, uc.cache, uc.cacheTTL, key, balance)

	return balance, nil
}

// GetTrialBalance lists per-account activity as of a date and checks that
// grand debits equal grand credits.
func (uc *LedgerUseCase) GetTrialBalance(ctx context.Context, tenantID string, asOf time.Time) (*TrialBalance, error) {
	if asOf.IsZero() {
		asOf = time.Now().UTC()
	}
	asOf = domain.DateOnly(asOf)

	key := fmt.Sprintf("trialbalance:%s:%s", tenantID, asOf.Format(time.DateOnly))
	var cached TrialBalance
	if cacheGetJSON(ctx, uc.cache, uc.metrics, key, &cached) {
		return &cached, nil
	}

	activity, err := uc.ledgerRepo.ActivityByAccount(ctx, tenantID, asOf)
	if err != nil {
		return nil, err
	}

	tb := &TrialBalance{
		AsOf:        asOf,
		Rows:        make([]TrialBalanceRow, 0, len(activity)),
		TotalDebit:  decimal.Zero,
		TotalCredit: decimal.Zero,
	}

	for _, row := range activity {
		acc := domain.Account{NormalBalance: row.NormalBalance}
		tb.Rows = append(tb.Rows, TrialBalanceRow{
			AccountID:   row.AccountID,
			AccountCode: row.AccountCode,
			AccountName: row.AccountName,
			AccountType: row.AccountType,
			Debit:       row.Debit,
			Credit:      row.Credit,
			Balance:     acc.SignedBalance(row.Debit, row.Credit),
		})
		tb.TotalDebit = tb.TotalDebit.Add(row.Debit)
		tb.TotalCredit = tb.TotalCredit.Add(row.Credit)
	}

	tb.IsBalanced = tb.TotalDebit.Equal(tb.TotalCredit)

	cacheSetJSON(ctx, uc.cache, uc.cacheTTL, key, tb)

	return tb, nil
}

// GetAccountLedger returns the movements on one account across a date range
// with opening, running, and closing balances.
func (uc *LedgerUseCase) GetAccountLedger(ctx context.Context, tenantID, accountID string, from, to time.Time) (*AccountLedger, error) {
	if err := domain.ValidateDateRange(from, to); err != nil {
		return nil, err
	}
	from = domain.DateOnly(from)
	to = domain.DateOnly(to)

	account, err := uc.accountRepo.GetByID(ctx, tenantID, accountID)
	if err != nil {
		return nil, err
	}

	openDebit, openCredit, err := uc.ledgerRepo.AccountActivity(ctx, tenantID, accountID, from.AddDate(0, 0, -1))
	if err != nil {
		return nil, err
	}
	opening := account.SignedBalance(openDebit, openCredit)

	lines, err := uc.ledgerRepo.Lines(ctx, tenantID, accountID, from, to)
	if err != nil {
		return nil, err
	}

	ledger := &AccountLedger{
		AccountID:      account.ID,
		AccountCode:    account.Code,
		AccountName:    account.Name,
		From:           from,
		To:             to,
		OpeningBalance: opening,
		Entries:        make([]LedgerEntry, 0, len(lines)),
	}

	running := opening
	for _, line := range lines {
		running = running.Add(account.SignedBalance(line.Debit, line.Credit))
		ledger.Entries = append(ledger.Entries, LedgerEntry{
			EntryID:     line.EntryID,
			Number:      line.EntryNumber,
			Date:        line.EntryDate,
			Description: line.Description,
			Debit:       line.Debit,
			Credit:      line.Credit,
			Running:     running,
		})
	}
	ledger.ClosingBalance = running

	return ledger, nil
}

// CheckConsistency verifies that the books balance: every posting wrote equal
// debits and credits, so the grand totals must match.
func (uc *LedgerUseCase) CheckConsistency(ctx context.Context, tenantID string, asOf time.Time) (*ConsistencyResult, error) {
	if asOf.IsZero() {
		asOf = time.Now().UTC()
	}
	asOf = domain.DateOnly(asOf)

	debit, credit, err := uc.ledgerRepo.CheckConsistency(ctx, tenantID, asOf)
	if err != nil {
		return nil, err
	}

	result := &ConsistencyResult{
		AsOf:        asOf,
		TotalDebit:  debit,
		TotalCredit: credit,
		Difference:  debit.Sub(credit),
		Consistent:  debit.Equal(credit),
	}

	if !result.Consistent {
		return result, ErrInconsistentLedger
	}

	return result, nil
}

// cacheGetJSON loads a cached payload. Any cache failure reads as a miss.
func cacheGetJSON(ctx context.Context, cache Cache, m *metrics.Metrics, key string, out any) bool {
	if cache == nil {
		return false
	}

	raw, err := cache.Get(ctx, key)
	if err != nil || raw == "" {
		if m != nil {
			m.ReportCacheMisses.Inc()
		}
		return false
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return false
	}

	if m != nil {
		m.ReportCacheHits.Inc()
	}
	return true
}

// cacheSetJSON stores a payload best effort.
func cacheSetJSON(ctx context.Context, cache Cache, ttl time.Duration, key string, v any) {
	if cache == nil {
		return
	}

	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	_ = cache.Set(ctx, key, string(raw), ttl)
}
