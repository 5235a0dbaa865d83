package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fintech-kernel/acctd/internal/domain"
	"github.com/fintech-kernel/acctd/internal/usecase"
)

// AccountRepository implements usecase.AccountRepository.
type AccountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

const accountColumns = `id, tenant_id, code, name, type, normal_balance, parent_id, is_active, is_system, created_at, updated_at`

const insertAccountQuery = `
	INSERT INTO accounts (id, tenant_id, code, name, type, normal_balance, parent_id, is_active, is_system, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
`

// Create inserts a new account.
func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) error {
	return r.create(ctx, r.pool, account)
}

// CreateTx inserts a new account within a transaction.
func (r *AccountRepository) CreateTx(ctx context.Context, tx usecase.Transaction, account *domain.Account) error {
	return r.create(ctx, tx.(*Tx).PgxTx(), account)
}

func (r *AccountRepository) create(ctx context.Context, q querier, account *domain.Account) error {
	_, err := q.Exec(ctx, insertAccountQuery,
		account.ID,
		account.TenantID,
		account.Code,
		account.Name,
		account.Type,
		account.NormalBalance,
		account.ParentID,
		account.IsActive,
		account.IsSystem,
		account.CreatedAt,
		account.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %s", domain.ErrAccountCodeTaken, account.Code)
	}

	return err
}

// GetByID retrieves an account by ID.
func (r *AccountRepository) GetByID(ctx context.Context, tenantID, id string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE tenant_id = $1 AND id = $2`

	account, err := scanAccount(r.pool.QueryRow(ctx, query, tenantID, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrAccountNotFound
	}

	return account, err
}

// GetByCode retrieves an account by its chart code.
func (r *AccountRepository) GetByCode(ctx context.Context, tenantID, code string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE tenant_id = $1 AND code = $2`

	account, err := scanAccount(r.pool.QueryRow(ctx, query, tenantID, code))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrAccountNotFound
	}

	return account, err
}

// GetByCodes retrieves the accounts matching the given codes. Missing codes
// are absent from the result, not an error.
func (r *AccountRepository) GetByCodes(ctx context.Context, tenantID string, codes []string) ([]*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE tenant_id = $1 AND code = ANY($2) ORDER BY code`

	rows, err := r.pool.Query(ctx, query, tenantID, codes)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectAccounts(rows)
}

// List retrieves accounts matching the filter, ordered by code.
func (r *AccountRepository) List(ctx context.Context, tenantID string, filter usecase.AccountFilter) ([]*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE tenant_id = $1`
	args := []any{tenantID}

	if filter.Type != nil {
		args = append(args, *filter.Type)
		query += fmt.Sprintf(` AND type = $%d`, len(args))
	}
	if filter.ActiveOnly {
		query += ` AND is_active`
	}

	query += ` ORDER BY code`

	args = append(args, filter.Limit)
	query += fmt.Sprintf(` LIMIT $%d`, len(args))
	args = append(args, filter.Offset)
	query += fmt.Sprintf(` OFFSET $%d`, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectAccounts(rows)
}

// SetActive flips the account's active flag.
func (r *AccountRepository) SetActive(ctx context.Context, tenantID, id string, active bool, updatedAt time.Time) error {
	query := `UPDATE accounts SET is_active = $3, updated_at = $4 WHERE tenant_id = $1 AND id = $2`

	tag, err := r.pool.Exec(ctx, query, tenantID, id, active, updatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAccountNotFound
	}

	return nil
}

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var account domain.Account

	err := row.Scan(
		&account.ID,
		&account.TenantID,
		&account.Code,
		&account.Name,
		&account.Type,
		&account.NormalBalance,
		&account.ParentID,
		&account.IsActive,
		&account.IsSystem,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &account, nil
}

func collectAccounts(rows pgx.Rows) ([]*domain.Account, error) {
	var accounts []*domain.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}

	return accounts, rows.Err()
}
