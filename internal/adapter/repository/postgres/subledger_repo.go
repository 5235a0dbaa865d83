package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fintech-kernel/acctd/internal/domain"
	"github.com/fintech-kernel/acctd/internal/usecase"
)

// SubledgerRepository implements usecase.SubledgerRepository.
type SubledgerRepository struct {
	pool *pgxpool.Pool
}

// NewSubledgerRepository creates a new SubledgerRepository.
func NewSubledgerRepository(pool *pgxpool.Pool) *SubledgerRepository {
	return &SubledgerRepository{pool: pool}
}

const subledgerColumns = `id, tenant_id, side, counterparty_id, source_type, source_id,
	original_amount, remaining_amount, issue_date, due_date, status, journal_entry_id,
	created_at, updated_at`

// Create inserts a new receivable or payable within a transaction.
func (r *SubledgerRepository) Create(ctx context.Context, tx usecase.Transaction, record *domain.SubledgerRecord) error {
	query := `
		INSERT INTO subledger_records (id, tenant_id, side, counterparty_id, source_type, source_id,
			original_amount, remaining_amount, issue_date, due_date, status, journal_entry_id,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err := tx.(*Tx).PgxTx().Exec(ctx, query,
		record.ID,
		record.TenantID,
		record.Side,
		record.CounterpartyID,
		record.SourceType,
		record.SourceID,
		decimalToNumeric(record.OriginalAmount),
		decimalToNumeric(record.RemainingAmount),
		record.IssueDate,
		record.DueDate,
		record.Status,
		record.JournalEntryID,
		record.CreatedAt,
		record.UpdatedAt,
	)

	return err
}

// GetByID retrieves a record by ID.
func (r *SubledgerRepository) GetByID(ctx context.Context, tenantID, id string) (*domain.SubledgerRecord, error) {
	query := `SELECT ` + subledgerColumns + ` FROM subledger_records WHERE tenant_id = $1 AND id = $2`

	record, err := scanSubledgerRecord(r.pool.QueryRow(ctx, query, tenantID, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrSubledgerRecordNotFound
	}

	return record, err
}

// GetByIDForUpdate retrieves a record by ID with a FOR UPDATE lock, so
// concurrent payment applications serialize on the row.
func (r *SubledgerRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, tenantID, id string) (*domain.SubledgerRecord, error) {
	query := `SELECT ` + subledgerColumns + ` FROM subledger_records WHERE tenant_id = $1 AND id = $2 FOR UPDATE`

	record, err := scanSubledgerRecord(tx.(*Tx).PgxTx().QueryRow(ctx, query, tenantID, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrSubledgerRecordNotFound
	}

	return record, err
}

// GetBySource retrieves the record opened for a source document.
func (r *SubledgerRepository) GetBySource(ctx context.Context, tenantID string, side domain.SubledgerSide, sourceID string) (*domain.SubledgerRecord, error) {
	query := `SELECT ` + subledgerColumns + ` FROM subledger_records WHERE tenant_id = $1 AND side = $2 AND source_id = $3`

	record, err := scanSubledgerRecord(r.pool.QueryRow(ctx, query, tenantID, side, sourceID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrSubledgerRecordNotFound
	}

	return record, err
}

// Update persists the record's remaining amount and settlement status.
func (r *SubledgerRepository) Update(ctx context.Context, tx usecase.Transaction, record *domain.SubledgerRecord) error {
	query := `
		UPDATE subledger_records
		SET remaining_amount = $3, status = $4, updated_at = $5
		WHERE tenant_id = $1 AND id = $2
	`

	tag, err := tx.(*Tx).PgxTx().Exec(ctx, query,
		record.TenantID,
		record.ID,
		decimalToNumeric(record.RemainingAmount),
		record.Status,
		record.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSubledgerRecordNotFound
	}

	return nil
}

// List retrieves records matching the filter, soonest due first.
func (r *SubledgerRepository) List(ctx context.Context, tenantID string, side domain.SubledgerSide, statuses []domain.SubledgerStatus, counterpartyID string, limit, offset int) ([]*domain.SubledgerRecord, error) {
	query := `SELECT ` + subledgerColumns + ` FROM subledger_records WHERE tenant_id = $1 AND side = $2`
	args := []any{tenantID, side}

	if len(statuses) > 0 {
		args = append(args, statuses)
		query += fmt.Sprintf(` AND status = ANY($%d)`, len(args))
	}
	if counterpartyID != "" {
		args = append(args, counterpartyID)
		query += fmt.Sprintf(` AND counterparty_id = $%d`, len(args))
	}

	query += ` ORDER BY due_date, id`

	args = append(args, limit)
	query += fmt.Sprintf(` LIMIT $%d`, len(args))
	args = append(args, offset)
	query += fmt.Sprintf(` OFFSET $%d`, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectSubledgerRecords(rows)
}

// ListOutstanding retrieves unsettled records issued on or before asOf, for
// aging reports.
func (r *SubledgerRepository) ListOutstanding(ctx context.Context, tenantID string, side domain.SubledgerSide, asOf time.Time) ([]*domain.SubledgerRecord, error) {
	query := `
		SELECT ` + subledgerColumns + `
		FROM subledger_records
		WHERE tenant_id = $1 AND side = $2 AND status = ANY($3) AND issue_date <= $4
		ORDER BY counterparty_id, due_date
	`

	open := []domain.SubledgerStatus{domain.SubledgerStatusOpen, domain.SubledgerStatusPartial}

	rows, err := r.pool.Query(ctx, query, tenantID, side, open, asOf)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectSubledgerRecords(rows)
}

// CreateApplication records a payment applied against a record.
func (r *SubledgerRepository) CreateApplication(ctx context.Context, tx usecase.Transaction, app *domain.PaymentApplication) error {
	query := `
		INSERT INTO payment_applications (id, tenant_id, record_id, side, amount, payment_ref, journal_entry_id, applied_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := tx.(*Tx).PgxTx().Exec(ctx, query,
		app.ID,
		app.TenantID,
		app.RecordID,
		app.Side,
		decimalToNumeric(app.Amount),
		app.PaymentRef,
		app.JournalEntryID,
		app.AppliedAt,
	)

	return err
}

// ListApplications retrieves a record's payment applications in order.
func (r *SubledgerRepository) ListApplications(ctx context.Context, tenantID, recordID string) ([]*domain.PaymentApplication, error) {
	query := `
		SELECT id, tenant_id, record_id, side, amount, payment_ref, journal_entry_id, applied_at
		FROM payment_applications
		WHERE tenant_id = $1 AND record_id = $2
		ORDER BY applied_at
	`

	rows, err := r.pool.Query(ctx, query, tenantID, recordID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var apps []*domain.PaymentApplication
	for rows.Next() {
		var app domain.PaymentApplication
		var amount pgtype.Numeric

		err := rows.Scan(
			&app.ID,
			&app.TenantID,
			&app.RecordID,
			&app.Side,
			&amount,
			&app.PaymentRef,
			&app.JournalEntryID,
			&app.AppliedAt,
		)
		if err != nil {
			return nil, err
		}

		app.Amount = numericToDecimal(amount)
		apps = append(apps, &app)
	}

	return apps, rows.Err()
}

func scanSubledgerRecord(row pgx.Row) (*domain.SubledgerRecord, error) {
	var record domain.SubledgerRecord
	var original, remaining pgtype.Numeric

	err := row.Scan(
		&record.ID,
		&record.TenantID,
		&record.Side,
		&record.CounterpartyID,
		&record.SourceType,
		&record.SourceID,
		&original,
		&remaining,
		&record.IssueDate,
		&record.DueDate,
		&record.Status,
		&record.JournalEntryID,
		&record.CreatedAt,
		&record.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	record.OriginalAmount = numericToDecimal(original)
	record.RemainingAmount = numericToDecimal(remaining)

	return &record, nil
}

func collectSubledgerRecords(rows pgx.Rows) ([]*domain.SubledgerRecord, error) {
	var records []*domain.SubledgerRecord
	for rows.Next() {
		record, err := scanSubledgerRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	return records, rows.Err()
}
