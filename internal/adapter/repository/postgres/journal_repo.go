package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fintech-kernel/acctd/internal/domain"
	"github.com/fintech-kernel/acctd/internal/usecase"
)

// JournalRepository implements usecase.JournalRepository.
type JournalRepository struct {
	pool querier
}

// NewJournalRepository creates a new JournalRepository.
func NewJournalRepository(pool *pgxpool.Pool) *JournalRepository {
	return newJournalRepositoryWithPool(pool)
}

func newJournalRepositoryWithPool(pool querier) *JournalRepository {
	return &JournalRepository{pool: pool}
}

const journalColumns = `id, tenant_id, number, entry_date, description, source_type, source_id,
	idempotency_key, status, period_id, reversal_of, reversed_by, reversal_reason,
	system_generated, source_payload, created_by, created_at, posted_at`

// Create persists the entry header and its lines inside tx. The unique
// constraint on (tenant_id, idempotency_key) makes replays a silent no-op:
// the return value reports whether this call actually inserted.
func (r *JournalRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.JournalEntry) (bool, error) {
	pgxTx := tx.(*Tx).PgxTx()

	payload, err := json.Marshal(entry.SourcePayload)
	if err != nil {
		return false, err
	}

	query := `
		INSERT INTO journal_entries (id, tenant_id, number, entry_date, description, source_type, source_id,
			idempotency_key, status, period_id, reversal_of, reversed_by, reversal_reason,
			system_generated, source_payload, created_by, created_at, posted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		ON CONFLICT (tenant_id, idempotency_key) DO NOTHING
	`

	tag, err := pgxTx.Exec(ctx, query,
		entry.ID,
		entry.TenantID,
		entry.Number,
		entry.EntryDate,
		entry.Description,
		entry.SourceType,
		entry.SourceID,
		entry.IdempotencyKey,
		entry.Status,
		entry.PeriodID,
		entry.ReversalOf,
		entry.ReversedBy,
		entry.ReversalReason,
		entry.SystemGenerated,
		payload,
		entry.CreatedBy,
		entry.CreatedAt,
		entry.PostedAt,
	)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}

	lineQuery := `
		INSERT INTO journal_lines (id, entry_id, account_id, line_number, description, debit, credit, department, project)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	for _, line := range entry.Lines {
		_, err := pgxTx.Exec(ctx, lineQuery,
			line.ID,
			line.EntryID,
			line.AccountID,
			line.LineNumber,
			line.Description,
			decimalToNumeric(line.Debit),
			decimalToNumeric(line.Credit),
			line.Department,
			line.Project,
		)
		if err != nil {
			return false, err
		}
	}

	return true, nil
}

// GetByID retrieves a journal entry with its lines.
func (r *JournalRepository) GetByID(ctx context.Context, tenantID, id string) (*domain.JournalEntry, error) {
	query := `SELECT ` + journalColumns + ` FROM journal_entries WHERE tenant_id = $1 AND id = $2`

	return r.getEntry(ctx, r.pool, query, tenantID, id)
}

// GetByIDForUpdate retrieves a journal entry with its lines, holding a
// FOR UPDATE lock on the header row.
func (r *JournalRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, tenantID, id string) (*domain.JournalEntry, error) {
	query := `SELECT ` + journalColumns + ` FROM journal_entries WHERE tenant_id = $1 AND id = $2 FOR UPDATE`

	return r.getEntry(ctx, tx.(*Tx).PgxTx(), query, tenantID, id)
}

// GetByIdempotencyKey retrieves the entry previously created under key.
func (r *JournalRepository) GetByIdempotencyKey(ctx context.Context, tenantID, key string) (*domain.JournalEntry, error) {
	query := `SELECT ` + journalColumns + ` FROM journal_entries WHERE tenant_id = $1 AND idempotency_key = $2`

	return r.getEntry(ctx, r.pool, query, tenantID, key)
}

func (r *JournalRepository) getEntry(ctx context.Context, q querier, query string, args ...any) (*domain.JournalEntry, error) {
	entry, err := scanJournalEntry(q.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrJournalNotFound
	}
	if err != nil {
		return nil, err
	}

	entry.Lines, err = loadLines(ctx, q, entry.ID)
	if err != nil {
		return nil, err
	}

	return entry, nil
}

// List retrieves entry headers matching the filter, newest first. Lines are
// not loaded.
func (r *JournalRepository) List(ctx context.Context, tenantID string, filter usecase.JournalFilter) ([]*domain.JournalEntry, error) {
	query := `SELECT ` + journalColumns + ` FROM journal_entries WHERE tenant_id = $1`
	args := []any{tenantID}

	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(` AND status = $%d`, len(args))
	}
	if filter.SourceType != "" {
		args = append(args, filter.SourceType)
		query += fmt.Sprintf(` AND source_type = $%d`, len(args))
	}
	if filter.SourceID != "" {
		args = append(args, filter.SourceID)
		query += fmt.Sprintf(` AND source_id = $%d`, len(args))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		query += fmt.Sprintf(` AND entry_date >= $%d`, len(args))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		query += fmt.Sprintf(` AND entry_date <= $%d`, len(args))
	}
	if filter.AccountID != "" {
		args = append(args, filter.AccountID)
		query += fmt.Sprintf(` AND EXISTS (SELECT 1 FROM journal_lines jl WHERE jl.entry_id = journal_entries.id AND jl.account_id = $%d)`, len(args))
	}

	query += ` ORDER BY entry_date DESC, created_at DESC`

	args = append(args, filter.Limit)
	query += fmt.Sprintf(` LIMIT $%d`, len(args))
	args = append(args, filter.Offset)
	query += fmt.Sprintf(` OFFSET $%d`, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*domain.JournalEntry
	for rows.Next() {
		entry, err := scanJournalEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

// UpdateStatus transitions the entry's lifecycle state.
func (r *JournalRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, tenantID, id string, status domain.JournalStatus, postedAt *time.Time) error {
	query := `UPDATE journal_entries SET status = $3, posted_at = $4 WHERE tenant_id = $1 AND id = $2`

	tag, err := tx.(*Tx).PgxTx().Exec(ctx, query, tenantID, id, status, postedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrJournalNotFound
	}

	return nil
}

// MarkReversed links the original entry to its reversal.
func (r *JournalRepository) MarkReversed(ctx context.Context, tx usecase.Transaction, tenantID, originalID, reversalID string) error {
	query := `UPDATE journal_entries SET reversed_by = $3 WHERE tenant_id = $1 AND id = $2`

	tag, err := tx.(*Tx).PgxTx().Exec(ctx, query, tenantID, originalID, reversalID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrJournalNotFound
	}

	return nil
}

// CountDrafts counts draft entries dated within the range, bounds inclusive.
func (r *JournalRepository) CountDrafts(ctx context.Context, tenantID string, from, to time.Time) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM journal_entries
		WHERE tenant_id = $1 AND status = $2 AND entry_date BETWEEN $3 AND $4
	`

	var count int
	err := r.pool.QueryRow(ctx, query, tenantID, domain.JournalStatusDraft, from, to).Scan(&count)

	return count, err
}

func scanJournalEntry(row pgx.Row) (*domain.JournalEntry, error) {
	var entry domain.JournalEntry
	var payload []byte

	err := row.Scan(
		&entry.ID,
		&entry.TenantID,
		&entry.Number,
		&entry.EntryDate,
		&entry.Description,
		&entry.SourceType,
		&entry.SourceID,
		&entry.IdempotencyKey,
		&entry.Status,
		&entry.PeriodID,
		&entry.ReversalOf,
		&entry.ReversedBy,
		&entry.ReversalReason,
		&entry.SystemGenerated,
		&payload,
		&entry.CreatedBy,
		&entry.CreatedAt,
		&entry.PostedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &entry.SourcePayload); err != nil {
			return nil, err
		}
	}

	return &entry, nil
}

// loadLines fetches an entry's lines joined with the account codes they
// reference, in line number order.
func loadLines(ctx context.Context, q querier, entryID string) ([]domain.JournalLine, error) {
	query := `
		SELECT jl.id, jl.entry_id, jl.account_id, a.code, jl.line_number, jl.description,
		       jl.debit, jl.credit, jl.department, jl.project
		FROM journal_lines jl
		JOIN accounts a ON a.id = jl.account_id
		WHERE jl.entry_id = $1
		ORDER BY jl.line_number
	`

	rows, err := q.Query(ctx, query, entryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []domain.JournalLine
	for rows.Next() {
		line, err := scanJournalLine(rows)
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}

	return lines, rows.Err()
}

func scanJournalLine(row pgx.Row) (domain.JournalLine, error) {
	var line domain.JournalLine
	var debit, credit pgtype.Numeric

	err := row.Scan(
		&line.ID,
		&line.EntryID,
		&line.AccountID,
		&line.AccountCode,
		&line.LineNumber,
		&line.Description,
		&debit,
		&credit,
		&line.Department,
		&line.Project,
	)
	if err != nil {
		return line, err
	}

	line.Debit = numericToDecimal(debit)
	line.Credit = numericToDecimal(credit)

	return line, nil
}
