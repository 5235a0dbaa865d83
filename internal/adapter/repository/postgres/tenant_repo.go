package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fintech-kernel/acctd/internal/domain"
)

// TenantRepository implements usecase.TenantRepository.
type TenantRepository struct {
	pool *pgxpool.Pool
}

// NewTenantRepository creates a new TenantRepository.
func NewTenantRepository(pool *pgxpool.Pool) *TenantRepository {
	return &TenantRepository{pool: pool}
}

const tenantColumns = `id, name, currency, is_active, config, created_at, updated_at`

// Create inserts a new tenant.
func (r *TenantRepository) Create(ctx context.Context, tenant *domain.Tenant) error {
	config, err := json.Marshal(tenant.Config)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO tenants (id, name, currency, is_active, config, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err = r.pool.Exec(ctx, query,
		tenant.ID,
		tenant.Name,
		tenant.Currency,
		tenant.IsActive,
		config,
		tenant.CreatedAt,
		tenant.UpdatedAt,
	)

	return err
}

// GetByID retrieves a tenant by ID.
func (r *TenantRepository) GetByID(ctx context.Context, id string) (*domain.Tenant, error) {
	query := `SELECT ` + tenantColumns + ` FROM tenants WHERE id = $1`

	tenant, err := scanTenant(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrTenantNotFound
	}

	return tenant, err
}

// List retrieves tenants with pagination, newest first.
func (r *TenantRepository) List(ctx context.Context, limit, offset int) ([]*domain.Tenant, error) {
	query := `
		SELECT ` + tenantColumns + `
		FROM tenants
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tenants []*domain.Tenant
	for rows.Next() {
		tenant, err := scanTenant(rows)
		if err != nil {
			return nil, err
		}
		tenants = append(tenants, tenant)
	}

	return tenants, rows.Err()
}

// UpdateConfig replaces the tenant's posting configuration.
func (r *TenantRepository) UpdateConfig(ctx context.Context, id string, config domain.PostingConfig, updatedAt time.Time) error {
	payload, err := json.Marshal(config)
	if err != nil {
		return err
	}

	query := `UPDATE tenants SET config = $2, updated_at = $3 WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id, payload, updatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTenantNotFound
	}

	return nil
}

func scanTenant(row pgx.Row) (*domain.Tenant, error) {
	var tenant domain.Tenant
	var config []byte

	err := row.Scan(
		&tenant.ID,
		&tenant.Name,
		&tenant.Currency,
		&tenant.IsActive,
		&config,
		&tenant.CreatedAt,
		&tenant.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(config) > 0 {
		if err := json.Unmarshal(config, &tenant.Config); err != nil {
			return nil, err
		}
	}

	return &tenant, nil
}
