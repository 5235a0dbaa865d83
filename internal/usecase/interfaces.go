package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fintech-kernel/acctd/internal/domain"
)

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager manages database transactions.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// IDGenerator generates unique identifiers.
type IDGenerator interface {
	Generate() string
}

// TenantRepository defines the interface for tenant persistence.
type TenantRepository interface {
	Create(ctx context.Context, tenant *domain.Tenant) error
	GetByID(ctx context.Context, id string) (*domain.Tenant, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Tenant, error)
	UpdateConfig(ctx context.Context, id string, config domain.PostingConfig, updatedAt time.Time) error
}

// AccountFilter narrows account listings.
type AccountFilter struct {
	Type       *domain.AccountType
	ActiveOnly bool
	Limit      int
	Offset     int
}

// AccountRepository defines the interface for chart-of-accounts persistence.
// All lookups are tenant scoped.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	CreateTx(ctx context.Context, tx Transaction, account *domain.Account) error
	GetByID(ctx context.Context, tenantID, id string) (*domain.Account, error)
	GetByCode(ctx context.Context, tenantID, code string) (*domain.Account, error)
	// GetByCodes returns the accounts matching the given codes. Codes with no
	// matching account are simply absent from the result.
	GetByCodes(ctx context.Context, tenantID string, codes []string) ([]*domain.Account, error)
	List(ctx context.Context, tenantID string, filter AccountFilter) ([]*domain.Account, error)
	SetActive(ctx context.Context, tenantID, id string, active bool, updatedAt time.Time) error
}

// JournalFilter narrows journal entry listings.
type JournalFilter struct {
	AccountID  string
	SourceType domain.SourceType
	SourceID   string
	Status     domain.JournalStatus
	From       *time.Time
	To         *time.Time
	Limit      int
	Offset     int
}

// JournalRepository defines the interface for journal entry persistence.
type JournalRepository interface {
	// Create persists the entry header and its lines inside tx. It returns
	// false when the (tenant, idempotency key) unique constraint suppressed
	// the insert, in which case nothing was written.
	Create(ctx context.Context, tx Transaction, entry *domain.JournalEntry) (bool, error)
	GetByID(ctx context.Context, tenantID, id string) (*domain.JournalEntry, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, tenantID, id string) (*domain.JournalEntry, error)
	GetByIdempotencyKey(ctx context.Context, tenantID, key string) (*domain.JournalEntry, error)
	// List returns entry headers without lines, newest first.
	List(ctx context.Context, tenantID string, filter JournalFilter) ([]*domain.JournalEntry, error)
	UpdateStatus(ctx context.Context, tx Transaction, tenantID, id string, status domain.JournalStatus, postedAt *time.Time) error
	// MarkReversed links the original entry to its reversal.
	MarkReversed(ctx context.Context, tx Transaction, tenantID, originalID, reversalID string) error
	CountDrafts(ctx context.Context, tenantID string, from, to time.Time) (int, error)
}

// SequenceRepository allocates per-tenant journal numbers.
type SequenceRepository interface {
	// Next allocates the next journal number for the tenant and year. The
	// caller's transaction holds the sequence row lock until commit, so
	// rolled back allocations leave no gaps.
	Next(ctx context.Context, tx Transaction, tenantID string, year int) (int64, error)
}

// PeriodRepository defines the interface for fiscal period persistence.
// Find methods return (nil, nil) when no period matches.
type PeriodRepository interface {
	Create(ctx context.Context, period *domain.FiscalPeriod) error
	GetByID(ctx context.Context, tenantID, id string) (*domain.FiscalPeriod, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, tenantID, id string) (*domain.FiscalPeriod, error)
	FindByDate(ctx context.Context, tenantID string, date time.Time) (*domain.FiscalPeriod, error)
	// FindByDateLocked takes a shared lock on the period row so a concurrent
	// close cannot commit before this transaction does.
	FindByDateLocked(ctx context.Context, tx Transaction, tenantID string, date time.Time) (*domain.FiscalPeriod, error)
	FindOverlapping(ctx context.Context, tenantID string, start, end time.Time) (*domain.FiscalPeriod, error)
	// FindPreceding returns the period with the latest end date strictly
	// before start.
	FindPreceding(ctx context.Context, tenantID string, start time.Time) (*domain.FiscalPeriod, error)
	// FindLaterNonOpen returns any CLOSED or LOCKED period starting after end.
	FindLaterNonOpen(ctx context.Context, tenantID string, end time.Time) (*domain.FiscalPeriod, error)
	List(ctx context.Context, tenantID string) ([]*domain.FiscalPeriod, error)
	Close(ctx context.Context, tx Transaction, period *domain.FiscalPeriod) error
	Reopen(ctx context.Context, tx Transaction, tenantID, id string) error
	Lock(ctx context.Context, tx Transaction, tenantID, id, actor string, at time.Time) error
	Unlock(ctx context.Context, tx Transaction, tenantID, id string) error
}

// SubledgerRepository defines the interface for receivable and payable
// persistence.
type SubledgerRepository interface {
	Create(ctx context.Context, tx Transaction, record *domain.SubledgerRecord) error
	GetByID(ctx context.Context, tenantID, id string) (*domain.SubledgerRecord, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, tenantID, id string) (*domain.SubledgerRecord, error)
	GetBySource(ctx context.Context, tenantID string, side domain.SubledgerSide, sourceID string) (*domain.SubledgerRecord, error)
	Update(ctx context.Context, tx Transaction, record *domain.SubledgerRecord) error
	List(ctx context.Context, tenantID string, side domain.SubledgerSide, statuses []domain.SubledgerStatus, counterpartyID string, limit, offset int) ([]*domain.SubledgerRecord, error)
	// ListOutstanding returns unsettled records created on or before asOf.
	ListOutstanding(ctx context.Context, tenantID string, side domain.SubledgerSide, asOf time.Time) ([]*domain.SubledgerRecord, error)
	CreateApplication(ctx context.Context, tx Transaction, app *domain.PaymentApplication) error
	ListApplications(ctx context.Context, tenantID, recordID string) ([]*domain.PaymentApplication, error)
}

// AccountActivity is one account's aggregated posted activity.
type AccountActivity struct {
	AccountID     string
	AccountCode   string
	AccountName   string
	AccountType   domain.AccountType
	NormalBalance domain.NormalBalance
	Debit         decimal.Decimal
	Credit        decimal.Decimal
}

// LedgerLine is one posted journal line touching an account, used to build
// account ledgers.
type LedgerLine struct {
	EntryID     string
	EntryNumber string
	EntryDate   time.Time
	Description string
	Debit       decimal.Decimal
	Credit      decimal.Decimal
}

// LedgerRepository defines aggregate queries over posted journal lines.
// Only POSTED entries contribute to any of these.
type LedgerRepository interface {
	// AccountActivity returns the summed debits and credits for one account
	// up to and including asOf.
	AccountActivity(ctx context.Context, tenantID, accountID string, asOf time.Time) (debit, credit decimal.Decimal, err error)
	// ActivityByAccount returns per-account activity up to asOf for every
	// account with at least one posted line.
	ActivityByAccount(ctx context.Context, tenantID string, asOf time.Time) ([]AccountActivity, error)
	ActivityByType(ctx context.Context, tenantID string, types []domain.AccountType, from, to time.Time) ([]AccountActivity, error)
	ActivityByCodes(ctx context.Context, tenantID string, codes []string, from, to time.Time) ([]AccountActivity, error)
	Lines(ctx context.Context, tenantID, accountID string, from, to time.Time) ([]LedgerLine, error)
	// CheckConsistency returns the grand debit and credit totals across all
	// posted lines up to asOf.
	CheckConsistency(ctx context.Context, tenantID string, asOf time.Time) (totalDebit, totalCredit decimal.Decimal, err error)
}

// OutboxRepository defines the interface for transactional event persistence.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string) error
}

// AuditRepository defines the interface for audit log persistence.
type AuditRepository interface {
	Create(ctx context.Context, log *domain.AuditLog) error
	CreateTx(ctx context.Context, tx Transaction, log *domain.AuditLog) error
	List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error)
	GetByResource(ctx context.Context, tenantID, resourceType, resourceID string) ([]*domain.AuditLog, error)
}

// Cache defines the interface for caching report and balance payloads.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// DedupStore is a fast-path guard against reprocessing consumed events. The
// journal idempotency key constraint remains the correctness mechanism; this
// only spares the database a round trip.
type DedupStore interface {
	// CheckAndSet returns true when the key was absent and is now claimed.
	CheckAndSet(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// Delete releases a claimed key so a failed event can be redelivered.
	Delete(ctx context.Context, key string) error
}
