package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fintech-kernel/acctd/internal/domain"
	"github.com/fintech-kernel/acctd/internal/usecase"
)

// PeriodRepository implements usecase.PeriodRepository.
type PeriodRepository struct {
	pool *pgxpool.Pool
}

// NewPeriodRepository creates a new PeriodRepository.
func NewPeriodRepository(pool *pgxpool.Pool) *PeriodRepository {
	return &PeriodRepository{pool: pool}
}

const periodColumns = `id, tenant_id, name, start_date, end_date, status, closed_at, closed_by,
	locked_at, locked_by, snapshot, closing_entry_id, created_at, updated_at`

// Create inserts a new fiscal period.
func (r *PeriodRepository) Create(ctx context.Context, period *domain.FiscalPeriod) error {
	query := `
		INSERT INTO fiscal_periods (id, tenant_id, name, start_date, end_date, status, closed_by, locked_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.pool.Exec(ctx, query,
		period.ID,
		period.TenantID,
		period.Name,
		period.StartDate,
		period.EndDate,
		period.Status,
		period.ClosedBy,
		period.LockedBy,
		period.CreatedAt,
		period.UpdatedAt,
	)

	return err
}

// GetByID retrieves a period by ID.
func (r *PeriodRepository) GetByID(ctx context.Context, tenantID, id string) (*domain.FiscalPeriod, error) {
	query := `SELECT ` + periodColumns + ` FROM fiscal_periods WHERE tenant_id = $1 AND id = $2`

	period, err := scanPeriod(r.pool.QueryRow(ctx, query, tenantID, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrPeriodNotFound
	}

	return period, err
}

// GetByIDForUpdate retrieves a period by ID with a FOR UPDATE lock.
func (r *PeriodRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, tenantID, id string) (*domain.FiscalPeriod, error) {
	query := `SELECT ` + periodColumns + ` FROM fiscal_periods WHERE tenant_id = $1 AND id = $2 FOR UPDATE`

	period, err := scanPeriod(tx.(*Tx).PgxTx().QueryRow(ctx, query, tenantID, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrPeriodNotFound
	}

	return period, err
}

// FindByDate returns the period containing date, or (nil, nil).
func (r *PeriodRepository) FindByDate(ctx context.Context, tenantID string, date time.Time) (*domain.FiscalPeriod, error) {
	query := `SELECT ` + periodColumns + ` FROM fiscal_periods WHERE tenant_id = $1 AND $2::date BETWEEN start_date AND end_date`

	return r.findOne(ctx, r.pool, query, tenantID, date)
}

// FindByDateLocked is FindByDate with a shared lock on the period row, so a
// concurrent close cannot commit before this transaction does.
func (r *PeriodRepository) FindByDateLocked(ctx context.Context, tx usecase.Transaction, tenantID string, date time.Time) (*domain.FiscalPeriod, error) {
	query := `SELECT ` + periodColumns + ` FROM fiscal_periods WHERE tenant_id = $1 AND $2::date BETWEEN start_date AND end_date FOR SHARE`

	return r.findOne(ctx, tx.(*Tx).PgxTx(), query, tenantID, date)
}

// FindOverlapping returns any period intersecting [start, end], or (nil, nil).
func (r *PeriodRepository) FindOverlapping(ctx context.Context, tenantID string, start, end time.Time) (*domain.FiscalPeriod, error) {
	query := `
		SELECT ` + periodColumns + `
		FROM fiscal_periods
		WHERE tenant_id = $1 AND start_date <= $3 AND end_date >= $2
		ORDER BY start_date
		LIMIT 1
	`

	return r.findOne(ctx, r.pool, query, tenantID, start, end)
}

// FindPreceding returns the period with the latest end date strictly before
// start, or (nil, nil).
func (r *PeriodRepository) FindPreceding(ctx context.Context, tenantID string, start time.Time) (*domain.FiscalPeriod, error) {
	query := `
		SELECT ` + periodColumns + `
		FROM fiscal_periods
		WHERE tenant_id = $1 AND end_date < $2
		ORDER BY end_date DESC
		LIMIT 1
	`

	return r.findOne(ctx, r.pool, query, tenantID, start)
}

// FindLaterNonOpen returns any CLOSED or LOCKED period starting after end,
// or (nil, nil).
func (r *PeriodRepository) FindLaterNonOpen(ctx context.Context, tenantID string, end time.Time) (*domain.FiscalPeriod, error) {
	query := `
		SELECT ` + periodColumns + `
		FROM fiscal_periods
		WHERE tenant_id = $1 AND start_date > $2 AND status <> $3
		ORDER BY start_date
		LIMIT 1
	`

	return r.findOne(ctx, r.pool, query, tenantID, end, domain.PeriodStatusOpen)
}

func (r *PeriodRepository) findOne(ctx context.Context, q querier, query string, args ...any) (*domain.FiscalPeriod, error) {
	period, err := scanPeriod(q.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}

	return period, err
}

// List retrieves all periods of a tenant in chronological order.
func (r *PeriodRepository) List(ctx context.Context, tenantID string) ([]*domain.FiscalPeriod, error) {
	query := `SELECT ` + periodColumns + ` FROM fiscal_periods WHERE tenant_id = $1 ORDER BY start_date`

	rows, err := r.pool.Query(ctx, query, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var periods []*domain.FiscalPeriod
	for rows.Next() {
		period, err := scanPeriod(rows)
		if err != nil {
			return nil, err
		}
		periods = append(periods, period)
	}

	return periods, rows.Err()
}

// Close marks the period CLOSED and stores the snapshot and closing entry
// reference captured by the caller.
func (r *PeriodRepository) Close(ctx context.Context, tx usecase.Transaction, period *domain.FiscalPeriod) error {
	snapshot, err := marshalSnapshot(period.Snapshot)
	if err != nil {
		return err
	}

	query := `
		UPDATE fiscal_periods
		SET status = $3, closed_at = $4, closed_by = $5, snapshot = $6, closing_entry_id = $7, updated_at = $8
		WHERE tenant_id = $1 AND id = $2
	`

	tag, err := tx.(*Tx).PgxTx().Exec(ctx, query,
		period.TenantID,
		period.ID,
		domain.PeriodStatusClosed,
		period.ClosedAt,
		period.ClosedBy,
		snapshot,
		period.ClosingEntryID,
		period.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPeriodNotFound
	}

	return nil
}

// Reopen reverts the period to OPEN and clears the close metadata. The
// snapshot and closing entry reference are discarded; the next close
// recomputes both.
func (r *PeriodRepository) Reopen(ctx context.Context, tx usecase.Transaction, tenantID, id string) error {
	query := `
		UPDATE fiscal_periods
		SET status = $3, closed_at = NULL, closed_by = '', snapshot = NULL, closing_entry_id = NULL, updated_at = now()
		WHERE tenant_id = $1 AND id = $2
	`

	tag, err := tx.(*Tx).PgxTx().Exec(ctx, query, tenantID, id, domain.PeriodStatusOpen)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPeriodNotFound
	}

	return nil
}

// Lock marks the period LOCKED.
func (r *PeriodRepository) Lock(ctx context.Context, tx usecase.Transaction, tenantID, id, actor string, at time.Time) error {
	query := `
		UPDATE fiscal_periods
		SET status = $3, locked_at = $4, locked_by = $5, updated_at = $4
		WHERE tenant_id = $1 AND id = $2
	`

	tag, err := tx.(*Tx).PgxTx().Exec(ctx, query, tenantID, id, domain.PeriodStatusLocked, at, actor)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPeriodNotFound
	}

	return nil
}

// Unlock reverts a LOCKED period to CLOSED and clears the lock metadata.
func (r *PeriodRepository) Unlock(ctx context.Context, tx usecase.Transaction, tenantID, id string) error {
	query := `
		UPDATE fiscal_periods
		SET status = $3, locked_at = NULL, locked_by = '', updated_at = now()
		WHERE tenant_id = $1 AND id = $2
	`

	tag, err := tx.(*Tx).PgxTx().Exec(ctx, query, tenantID, id, domain.PeriodStatusClosed)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPeriodNotFound
	}

	return nil
}

func marshalSnapshot(snapshot *domain.PeriodSnapshot) ([]byte, error) {
	if snapshot == nil {
		return nil, nil
	}
	return json.Marshal(snapshot)
}

func scanPeriod(row pgx.Row) (*domain.FiscalPeriod, error) {
	var period domain.FiscalPeriod
	var snapshot []byte

	err := row.Scan(
		&period.ID,
		&period.TenantID,
		&period.Name,
		&period.StartDate,
		&period.EndDate,
		&period.Status,
		&period.ClosedAt,
		&period.ClosedBy,
		&period.LockedAt,
		&period.LockedBy,
		&snapshot,
		&period.ClosingEntryID,
		&period.CreatedAt,
		&period.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(snapshot) > 0 {
		period.Snapshot = &domain.PeriodSnapshot{}
		if err := json.Unmarshal(snapshot, period.Snapshot); err != nil {
			return nil, err
		}
	}

	return &period, nil
}
