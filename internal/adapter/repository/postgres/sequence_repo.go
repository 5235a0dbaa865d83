package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fintech-kernel/acctd/internal/usecase"
)

// SequenceRepository implements usecase.SequenceRepository on a plain counter
// table. The row lock taken by the upsert is held until the caller's
// transaction commits, which serializes allocations and keeps the numbering
// gapless: a rolled back entry rolls its number back with it.
type SequenceRepository struct {
	pool *pgxpool.Pool
}

// NewSequenceRepository creates a new SequenceRepository.
func NewSequenceRepository(pool *pgxpool.Pool) *SequenceRepository {
	return &SequenceRepository{pool: pool}
}

// Next allocates the next journal number for the tenant and year.
func (r *SequenceRepository) Next(ctx context.Context, tx usecase.Transaction, tenantID string, year int) (int64, error) {
	query := `
		INSERT INTO journal_sequences (tenant_id, year, last_value)
		VALUES ($1, $2, 1)
		ON CONFLICT (tenant_id, year)
		DO UPDATE SET last_value = journal_sequences.last_value + 1
		RETURNING last_value
	`

	var value int64
	err := tx.(*Tx).PgxTx().QueryRow(ctx, query, tenantID, year).Scan(&value)

	return value, err
}
