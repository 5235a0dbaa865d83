package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/fintech-kernel/acctd/internal/domain"
	"github.com/fintech-kernel/acctd/internal/usecase"
)

// LedgerRepository implements usecase.LedgerRepository. Every query reads
// posted journal lines only; drafts and voids never reach a balance.
type LedgerRepository struct {
	pool *pgxpool.Pool
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(pool *pgxpool.Pool) *LedgerRepository {
	return &LedgerRepository{pool: pool}
}

// AccountActivity returns the summed debits and credits for one account up
// to and including asOf.
func (r *LedgerRepository) AccountActivity(ctx context.Context, tenantID, accountID string, asOf time.Time) (decimal.Decimal, decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(jl.debit), 0), COALESCE(SUM(jl.credit), 0)
		FROM journal_lines jl
		JOIN journal_entries je ON je.id = jl.entry_id
		WHERE je.tenant_id = $1 AND jl.account_id = $2 AND je.status = $3 AND je.entry_date <= $4
	`

	var debit, credit pgtype.Numeric
	err := r.pool.QueryRow(ctx, query, tenantID, accountID, domain.JournalStatusPosted, asOf).Scan(&debit, &credit)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	return numericToDecimal(debit), numericToDecimal(credit), nil
}

// ActivityByAccount returns per-account activity up to asOf for every
// account with at least one posted line.
func (r *LedgerRepository) ActivityByAccount(ctx context.Context, tenantID string, asOf time.Time) ([]usecase.AccountActivity, error) {
	query := activityQuery + `
		WHERE je.tenant_id = $1 AND je.status = $2 AND je.entry_date <= $3
	` + activityGroupBy

	rows, err := r.pool.Query(ctx, query, tenantID, domain.JournalStatusPosted, asOf)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectActivity(rows)
}

// ActivityByType returns per-account activity over [from, to] for accounts
// of the given types.
func (r *LedgerRepository) ActivityByType(ctx context.Context, tenantID string, types []domain.AccountType, from, to time.Time) ([]usecase.AccountActivity, error) {
	query := activityQuery + `
		WHERE je.tenant_id = $1 AND je.status = $2 AND a.type = ANY($3)
		  AND je.entry_date >= $4 AND je.entry_date <= $5
	` + activityGroupBy

	rows, err := r.pool.Query(ctx, query, tenantID, domain.JournalStatusPosted, types, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectActivity(rows)
}

// ActivityByCodes returns per-account activity over [from, to] for accounts
// with the given chart codes.
func (r *LedgerRepository) ActivityByCodes(ctx context.Context, tenantID string, codes []string, from, to time.Time) ([]usecase.AccountActivity, error) {
	query := activityQuery + `
		WHERE je.tenant_id = $1 AND je.status = $2 AND a.code = ANY($3)
		  AND je.entry_date >= $4 AND je.entry_date <= $5
	` + activityGroupBy

	rows, err := r.pool.Query(ctx, query, tenantID, domain.JournalStatusPosted, codes, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectActivity(rows)
}

// Lines returns the posted lines touching an account over [from, to] in
// posting order, for account ledger statements.
func (r *LedgerRepository) Lines(ctx context.Context, tenantID, accountID string, from, to time.Time) ([]usecase.LedgerLine, error) {
	query := `
		SELECT je.id, je.number, je.entry_date,
		       CASE WHEN jl.description <> '' THEN jl.description ELSE je.description END,
		       jl.debit, jl.credit
		FROM journal_lines jl
		JOIN journal_entries je ON je.id = jl.entry_id
		WHERE je.tenant_id = $1 AND jl.account_id = $2 AND je.status = $3
		  AND je.entry_date >= $4 AND je.entry_date <= $5
		ORDER BY je.entry_date, je.number, jl.line_number
	`

	rows, err := r.pool.Query(ctx, query, tenantID, accountID, domain.JournalStatusPosted, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []usecase.LedgerLine
	for rows.Next() {
		var line usecase.LedgerLine
		var debit, credit pgtype.Numeric

		err := rows.Scan(&line.EntryID, &line.EntryNumber, &line.EntryDate, &line.Description, &debit, &credit)
		if err != nil {
			return nil, err
		}

		line.Debit = numericToDecimal(debit)
		line.Credit = numericToDecimal(credit)
		lines = append(lines, line)
	}

	return lines, rows.Err()
}

// CheckConsistency returns the grand debit and credit totals across all
// posted lines up to asOf. The two must be equal in a healthy ledger.
func (r *LedgerRepository) CheckConsistency(ctx context.Context, tenantID string, asOf time.Time) (decimal.Decimal, decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(jl.debit), 0), COALESCE(SUM(jl.credit), 0)
		FROM journal_lines jl
		JOIN journal_entries je ON je.id = jl.entry_id
		WHERE je.tenant_id = $1 AND je.status = $2 AND je.entry_date <= $3
	`

	var debit, credit pgtype.Numeric
	err := r.pool.QueryRow(ctx, query, tenantID, domain.JournalStatusPosted, asOf).Scan(&debit, &credit)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	return numericToDecimal(debit), numericToDecimal(credit), nil
}

const activityQuery = `
	SELECT a.id, a.code, a.name, a.type, a.normal_balance,
	       COALESCE(SUM(jl.debit), 0), COALESCE(SUM(jl.credit), 0)
	FROM journal_lines jl
	JOIN journal_entries je ON je.id = jl.entry_id
	JOIN accounts a ON a.id = jl.account_id
`

const activityGroupBy = `
	GROUP BY a.id, a.code, a.name, a.type, a.normal_balance
	ORDER BY a.code
`

func collectActivity(rows pgx.Rows) ([]usecase.AccountActivity, error) {
	var activity []usecase.AccountActivity
	for rows.Next() {
		var row usecase.AccountActivity
		var debit, credit pgtype.Numeric

		err := rows.Scan(&row.AccountID, &row.AccountCode, &row.AccountName, &row.AccountType, &row.NormalBalance, &debit, &credit)
		if err != nil {
			return nil, err
		}

		row.Debit = numericToDecimal(debit)
		row.Credit = numericToDecimal(credit)
		activity = append(activity, row)
	}

	return activity, rows.Err()
}
