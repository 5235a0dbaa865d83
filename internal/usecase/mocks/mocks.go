package mocks

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/fintech-kernel/acctd/internal/domain"
	"github.com/fintech-kernel/acctd/internal/usecase"
)

// MockTenantRepository is a mock implementation of TenantRepository.
type MockTenantRepository struct {
	mu      sync.RWMutex
	tenants map[string]*domain.Tenant

	CreateFunc       func(ctx context.Context, tenant *domain.Tenant) error
	GetByIDFunc      func(ctx context.Context, id string) (*domain.Tenant, error)
	ListFunc         func(ctx context.Context, limit, offset int) ([]*domain.Tenant, error)
	UpdateConfigFunc func(ctx context.Context, id string, config domain.PostingConfig, updatedAt time.Time) error
}

func NewMockTenantRepository() *MockTenantRepository {
	return &MockTenantRepository{
		tenants: make(map[string]*domain.Tenant),
	}
}

func (m *MockTenantRepository) Create(ctx context.Context, tenant *domain.Tenant) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tenant)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tenants[tenant.ID] = tenant
	return nil
}

func (m *MockTenantRepository) GetByID(ctx context.Context, id string) (*domain.Tenant, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if tenant, ok := m.tenants[id]; ok {
		return tenant, nil
	}
	return nil, domain.ErrTenantNotFound
}

func (m *MockTenantRepository) List(ctx context.Context, limit, offset int) ([]*domain.Tenant, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var tenants []*domain.Tenant
	for _, tenant := range m.tenants {
		tenants = append(tenants, tenant)
	}
	return tenants, nil
}

func (m *MockTenantRepository) UpdateConfig(ctx context.Context, id string, config domain.PostingConfig, updatedAt time.Time) error {
	if m.UpdateConfigFunc != nil {
		return m.UpdateConfigFunc(ctx, id, config, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if tenant, ok := m.tenants[id]; ok {
		tenant.Config = config
		tenant.UpdatedAt = updatedAt
	}
	return nil
}

// MockAccountRepository is a mock implementation of AccountRepository.
type MockAccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]*domain.Account

	CreateFunc     func(ctx context.Context, account *domain.Account) error
	CreateTxFunc   func(ctx context.Context, tx usecase.Transaction, account *domain.Account) error
	GetByIDFunc    func(ctx context.Context, tenantID, id string) (*domain.Account, error)
	GetByCodeFunc  func(ctx context.Context, tenantID, code string) (*domain.Account, error)
	GetByCodesFunc func(ctx context.Context, tenantID string, codes []string) ([]*domain.Account, error)
	ListFunc       func(ctx context.Context, tenantID string, filter usecase.AccountFilter) ([]*domain.Account, error)
	SetActiveFunc  func(ctx context.Context, tenantID, id string, active bool, updatedAt time.Time) error
}

func NewMockAccountRepository() *MockAccountRepository {
	return &MockAccountRepository{
		accounts: make(map[string]*domain.Account),
	}
}

func (m *MockAccountRepository) Create(ctx context.Context, account *domain.Account) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, account)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, acc := range m.accounts {
		if acc.TenantID == account.TenantID && acc.Code == account.Code {
			return domain.ErrAccountCodeTaken
		}
	}
	m.accounts[account.ID] = account
	return nil
}

func (m *MockAccountRepository) CreateTx(ctx context.Context, tx usecase.Transaction, account *domain.Account) error {
	if m.CreateTxFunc != nil {
		return m.CreateTxFunc(ctx, tx, account)
	}
	return m.Create(ctx, account)
}

func (m *MockAccountRepository) GetByID(ctx context.Context, tenantID, id string) (*domain.Account, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, tenantID, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if acc, ok := m.accounts[id]; ok && acc.TenantID == tenantID {
		return acc, nil
	}
	return nil, domain.ErrAccountNotFound
}

func (m *MockAccountRepository) GetByCode(ctx context.Context, tenantID, code string) (*domain.Account, error) {
	if m.GetByCodeFunc != nil {
		return m.GetByCodeFunc(ctx, tenantID, code)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, acc := range m.accounts {
		if acc.TenantID == tenantID && acc.Code == code {
			return acc, nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (m *MockAccountRepository) GetByCodes(ctx context.Context, tenantID string, codes []string) ([]*domain.Account, error) {
	if m.GetByCodesFunc != nil {
		return m.GetByCodesFunc(ctx, tenantID, codes)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var accounts []*domain.Account
	for _, code := range codes {
		for _, acc := range m.accounts {
			if acc.TenantID == tenantID && acc.Code == code {
				accounts = append(accounts, acc)
				break
			}
		}
	}
	return accounts, nil
}

func (m *MockAccountRepository) List(ctx context.Context, tenantID string, filter usecase.AccountFilter) ([]*domain.Account, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, tenantID, filter)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var accounts []*domain.Account
	for _, acc := range m.accounts {
		if acc.TenantID != tenantID {
			continue
		}
		if filter.Type != nil && acc.Type != *filter.Type {
			continue
		}
		if filter.ActiveOnly && !acc.IsActive {
			continue
		}
		accounts = append(accounts, acc)
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].Code < accounts[j].Code })
	return accounts, nil
}

func (m *MockAccountRepository) SetActive(ctx context.Context, tenantID, id string, active bool, updatedAt time.Time) error {
	if m.SetActiveFunc != nil {
		return m.SetActiveFunc(ctx, tenantID, id, active, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if acc, ok := m.accounts[id]; ok && acc.TenantID == tenantID {
		acc.IsActive = active
		acc.UpdatedAt = updatedAt
	}
	return nil
}

// MockJournalRepository is a mock implementation of JournalRepository. The
// default Create honors the (tenant, idempotency key) unique constraint the
// way the database does: a second insert with the same key returns false.
type MockJournalRepository struct {
	mu      sync.RWMutex
	entries map[string]*domain.JournalEntry
	byKey   map[string]string

	CreateFunc              func(ctx context.Context, tx usecase.Transaction, entry *domain.JournalEntry) (bool, error)
	GetByIDFunc             func(ctx context.Context, tenantID, id string) (*domain.JournalEntry, error)
	GetByIDForUpdateFunc    func(ctx context.Context, tx usecase.Transaction, tenantID, id string) (*domain.JournalEntry, error)
	GetByIdempotencyKeyFunc func(ctx context.Context, tenantID, key string) (*domain.JournalEntry, error)
	ListFunc                func(ctx context.Context, tenantID string, filter usecase.JournalFilter) ([]*domain.JournalEntry, error)
	UpdateStatusFunc        func(ctx context.Context, tx usecase.Transaction, tenantID, id string, status domain.JournalStatus, postedAt *time.Time) error
	MarkReversedFunc        func(ctx context.Context, tx usecase.Transaction, tenantID, originalID, reversalID string) error
	CountDraftsFunc         func(ctx context.Context, tenantID string, from, to time.Time) (int, error)
}

func NewMockJournalRepository() *MockJournalRepository {
	return &MockJournalRepository{
		entries: make(map[string]*domain.JournalEntry),
		byKey:   make(map[string]string),
	}
}

func keyIndex(tenantID, key string) string {
	return tenantID + "|" + key
}

func (m *MockJournalRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.JournalEntry) (bool, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, entry)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	idx := keyIndex(entry.TenantID, entry.IdempotencyKey)
	if _, ok := m.byKey[idx]; ok {
		return false, nil
	}
	m.entries[entry.ID] = entry
	m.byKey[idx] = entry.ID
	return true, nil
}

func (m *MockJournalRepository) GetByID(ctx context.Context, tenantID, id string) (*domain.JournalEntry, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, tenantID, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if entry, ok := m.entries[id]; ok && entry.TenantID == tenantID {
		return entry, nil
	}
	return nil, domain.ErrJournalNotFound
}

func (m *MockJournalRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, tenantID, id string) (*domain.JournalEntry, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, tenantID, id)
	}
	return m.GetByID(ctx, tenantID, id)
}

func (m *MockJournalRepository) GetByIdempotencyKey(ctx context.Context, tenantID, key string) (*domain.JournalEntry, error) {
	if m.GetByIdempotencyKeyFunc != nil {
		return m.GetByIdempotencyKeyFunc(ctx, tenantID, key)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if id, ok := m.byKey[keyIndex(tenantID, key)]; ok {
		return m.entries[id], nil
	}
	return nil, domain.ErrJournalNotFound
}

func (m *MockJournalRepository) List(ctx context.Context, tenantID string, filter usecase.JournalFilter) ([]*domain.JournalEntry, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, tenantID, filter)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var entries []*domain.JournalEntry
	for _, entry := range m.entries {
		if entry.TenantID != tenantID {
			continue
		}
		if filter.Status != "" && entry.Status != filter.Status {
			continue
		}
		if filter.SourceType != "" && entry.SourceType != filter.SourceType {
			continue
		}
		if filter.SourceID != "" && (entry.SourceID == nil || *entry.SourceID != filter.SourceID) {
			continue
		}
		if filter.From != nil && entry.EntryDate.Before(*filter.From) {
			continue
		}
		if filter.To != nil && entry.EntryDate.After(*filter.To) {
			continue
		}
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].CreatedAt.After(entries[j].CreatedAt) })
	return entries, nil
}

func (m *MockJournalRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, tenantID, id string, status domain.JournalStatus, postedAt *time.Time) error {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, tx, tenantID, id, status, postedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if entry, ok := m.entries[id]; ok && entry.TenantID == tenantID {
		entry.Status = status
		entry.PostedAt = postedAt
	}
	return nil
}

func (m *MockJournalRepository) MarkReversed(ctx context.Context, tx usecase.Transaction, tenantID, originalID, reversalID string) error {
	if m.MarkReversedFunc != nil {
		return m.MarkReversedFunc(ctx, tx, tenantID, originalID, reversalID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if entry, ok := m.entries[originalID]; ok && entry.TenantID == tenantID {
		entry.ReversedBy = &reversalID
	}
	return nil
}

func (m *MockJournalRepository) CountDrafts(ctx context.Context, tenantID string, from, to time.Time) (int, error) {
	if m.CountDraftsFunc != nil {
		return m.CountDraftsFunc(ctx, tenantID, from, to)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, entry := range m.entries {
		if entry.TenantID != tenantID || entry.Status != domain.JournalStatusDraft {
			continue
		}
		if entry.EntryDate.Before(from) || entry.EntryDate.After(to) {
			continue
		}
		count++
	}
	return count, nil
}

// MockSequenceRepository is a mock implementation of SequenceRepository.
type MockSequenceRepository struct {
	mu   sync.Mutex
	last map[string]int64

	NextFunc func(ctx context.Context, tx usecase.Transaction, tenantID string, year int) (int64, error)
}

func NewMockSequenceRepository() *MockSequenceRepository {
	return &MockSequenceRepository{
		last: make(map[string]int64),
	}
}

func (m *MockSequenceRepository) Next(ctx context.Context, tx usecase.Transaction, tenantID string, year int) (int64, error) {
	if m.NextFunc != nil {
		return m.NextFunc(ctx, tx, tenantID, year)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := fmt.Sprintf("%s-%d", tenantID, year)
	m.last[key]++
	return m.last[key], nil
}

// MockPeriodRepository is a mock implementation of PeriodRepository.
type MockPeriodRepository struct {
	mu      sync.RWMutex
	periods map[string]*domain.FiscalPeriod

	CreateFunc           func(ctx context.Context, period *domain.FiscalPeriod) error
	GetByIDFunc          func(ctx context.Context, tenantID, id string) (*domain.FiscalPeriod, error)
	GetByIDForUpdateFunc func(ctx context.Context, tx usecase.Transaction, tenantID, id string) (*domain.FiscalPeriod, error)
	FindByDateFunc       func(ctx context.Context, tenantID string, date time.Time) (*domain.FiscalPeriod, error)
	FindByDateLockedFunc func(ctx context.Context, tx usecase.Transaction, tenantID string, date time.Time) (*domain.FiscalPeriod, error)
	FindOverlappingFunc  func(ctx context.Context, tenantID string, start, end time.Time) (*domain.FiscalPeriod, error)
	FindPrecedingFunc    func(ctx context.Context, tenantID string, start time.Time) (*domain.FiscalPeriod, error)
	FindLaterNonOpenFunc func(ctx context.Context, tenantID string, end time.Time) (*domain.FiscalPeriod, error)
	ListFunc             func(ctx context.Context, tenantID string) ([]*domain.FiscalPeriod, error)
	CloseFunc            func(ctx context.Context, tx usecase.Transaction, period *domain.FiscalPeriod) error
	ReopenFunc           func(ctx context.Context, tx usecase.Transaction, tenantID, id string) error
	LockFunc             func(ctx context.Context, tx usecase.Transaction, tenantID, id, actor string, at time.Time) error
	UnlockFunc           func(ctx context.Context, tx usecase.Transaction, tenantID, id string) error
}

func NewMockPeriodRepository() *MockPeriodRepository {
	return &MockPeriodRepository{
		periods: make(map[string]*domain.FiscalPeriod),
	}
}

func (m *MockPeriodRepository) Create(ctx context.Context, period *domain.FiscalPeriod) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, period)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.periods[period.ID] = period
	return nil
}

func (m *MockPeriodRepository) GetByID(ctx context.Context, tenantID, id string) (*domain.FiscalPeriod, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, tenantID, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if period, ok := m.periods[id]; ok && period.TenantID == tenantID {
		return period, nil
	}
	return nil, domain.ErrPeriodNotFound
}

func (m *MockPeriodRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, tenantID, id string) (*domain.FiscalPeriod, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, tenantID, id)
	}
	return m.GetByID(ctx, tenantID, id)
}

func (m *MockPeriodRepository) FindByDate(ctx context.Context, tenantID string, date time.Time) (*domain.FiscalPeriod, error) {
	if m.FindByDateFunc != nil {
		return m.FindByDateFunc(ctx, tenantID, date)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, period := range m.periods {
		if period.TenantID == tenantID && !date.Before(period.StartDate) && !date.After(period.EndDate) {
			return period, nil
		}
	}
	return nil, nil
}

func (m *MockPeriodRepository) FindByDateLocked(ctx context.Context, tx usecase.Transaction, tenantID string, date time.Time) (*domain.FiscalPeriod, error) {
	if m.FindByDateLockedFunc != nil {
		return m.FindByDateLockedFunc(ctx, tx, tenantID, date)
	}
	return m.FindByDate(ctx, tenantID, date)
}

func (m *MockPeriodRepository) FindOverlapping(ctx context.Context, tenantID string, start, end time.Time) (*domain.FiscalPeriod, error) {
	if m.FindOverlappingFunc != nil {
		return m.FindOverlappingFunc(ctx, tenantID, start, end)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, period := range m.periods {
		if period.TenantID == tenantID && !start.After(period.EndDate) && !end.Before(period.StartDate) {
			return period, nil
		}
	}
	return nil, nil
}

func (m *MockPeriodRepository) FindPreceding(ctx context.Context, tenantID string, start time.Time) (*domain.FiscalPeriod, error) {
	if m.FindPrecedingFunc != nil {
		return m.FindPrecedingFunc(ctx, tenantID, start)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var preceding *domain.FiscalPeriod
	for _, period := range m.periods {
		if period.TenantID != tenantID || !period.EndDate.Before(start) {
			continue
		}
		if preceding == nil || period.EndDate.After(preceding.EndDate) {
			preceding = period
		}
	}
	return preceding, nil
}

func (m *MockPeriodRepository) FindLaterNonOpen(ctx context.Context, tenantID string, end time.Time) (*domain.FiscalPeriod, error) {
	if m.FindLaterNonOpenFunc != nil {
		return m.FindLaterNonOpenFunc(ctx, tenantID, end)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, period := range m.periods {
		if period.TenantID == tenantID && period.StartDate.After(end) && period.Status != domain.PeriodStatusOpen {
			return period, nil
		}
	}
	return nil, nil
}

func (m *MockPeriodRepository) List(ctx context.Context, tenantID string) ([]*domain.FiscalPeriod, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, tenantID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var periods []*domain.FiscalPeriod
	for _, period := range m.periods {
		if period.TenantID == tenantID {
			periods = append(periods, period)
		}
	}
	sort.Slice(periods, func(i, j int) bool { return periods[i].StartDate.Before(periods[j].StartDate) })
	return periods, nil
}

func (m *MockPeriodRepository) Close(ctx context.Context, tx usecase.Transaction, period *domain.FiscalPeriod) error {
	if m.CloseFunc != nil {
		return m.CloseFunc(ctx, tx, period)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.periods[period.ID] = period
	return nil
}

func (m *MockPeriodRepository) Reopen(ctx context.Context, tx usecase.Transaction, tenantID, id string) error {
	if m.ReopenFunc != nil {
		return m.ReopenFunc(ctx, tx, tenantID, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if period, ok := m.periods[id]; ok && period.TenantID == tenantID {
		period.Status = domain.PeriodStatusOpen
		period.ClosedAt = nil
		period.ClosedBy = ""
	}
	return nil
}

func (m *MockPeriodRepository) Lock(ctx context.Context, tx usecase.Transaction, tenantID, id, actor string, at time.Time) error {
	if m.LockFunc != nil {
		return m.LockFunc(ctx, tx, tenantID, id, actor, at)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if period, ok := m.periods[id]; ok && period.TenantID == tenantID {
		period.Status = domain.PeriodStatusLocked
		period.LockedAt = &at
		period.LockedBy = actor
	}
	return nil
}

func (m *MockPeriodRepository) Unlock(ctx context.Context, tx usecase.Transaction, tenantID, id string) error {
	if m.UnlockFunc != nil {
		return m.UnlockFunc(ctx, tx, tenantID, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if period, ok := m.periods[id]; ok && period.TenantID == tenantID {
		period.Status = domain.PeriodStatusClosed
		period.LockedAt = nil
		period.LockedBy = ""
	}
	return nil
}

// MockSubledgerRepository is a mock implementation of SubledgerRepository.
type MockSubledgerRepository struct {
	mu      sync.RWMutex
	records map[string]*domain.SubledgerRecord
	apps    []*domain.PaymentApplication

	CreateFunc            func(ctx context.Context, tx usecase.Transaction, record *domain.SubledgerRecord) error
	GetByIDFunc           func(ctx context.Context, tenantID, id string) (*domain.SubledgerRecord, error)
	GetByIDForUpdateFunc  func(ctx context.Context, tx usecase.Transaction, tenantID, id string) (*domain.SubledgerRecord, error)
	GetBySourceFunc       func(ctx context.Context, tenantID string, side domain.SubledgerSide, sourceID string) (*domain.SubledgerRecord, error)
	UpdateFunc            func(ctx context.Context, tx usecase.Transaction, record *domain.SubledgerRecord) error
	ListFunc              func(ctx context.Context, tenantID string, side domain.SubledgerSide, statuses []domain.SubledgerStatus, counterpartyID string, limit, offset int) ([]*domain.SubledgerRecord, error)
	ListOutstandingFunc   func(ctx context.Context, tenantID string, side domain.SubledgerSide, asOf time.Time) ([]*domain.SubledgerRecord, error)
	CreateApplicationFunc func(ctx context.Context, tx usecase.Transaction, app *domain.PaymentApplication) error
	ListApplicationsFunc  func(ctx context.Context, tenantID, recordID string) ([]*domain.PaymentApplication, error)
}

func NewMockSubledgerRepository() *MockSubledgerRepository {
	return &MockSubledgerRepository{
		records: make(map[string]*domain.SubledgerRecord),
	}
}

func (m *MockSubledgerRepository) Create(ctx context.Context, tx usecase.Transaction, record *domain.SubledgerRecord) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, record)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[record.ID] = record
	return nil
}

func (m *MockSubledgerRepository) GetByID(ctx context.Context, tenantID, id string) (*domain.SubledgerRecord, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, tenantID, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if record, ok := m.records[id]; ok && record.TenantID == tenantID {
		return record, nil
	}
	return nil, domain.ErrSubledgerRecordNotFound
}

func (m *MockSubledgerRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, tenantID, id string) (*domain.SubledgerRecord, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, tenantID, id)
	}
	return m.GetByID(ctx, tenantID, id)
}

func (m *MockSubledgerRepository) GetBySource(ctx context.Context, tenantID string, side domain.SubledgerSide, sourceID string) (*domain.SubledgerRecord, error) {
	if m.GetBySourceFunc != nil {
		return m.GetBySourceFunc(ctx, tenantID, side, sourceID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, record := range m.records {
		if record.TenantID == tenantID && record.Side == side && record.SourceID == sourceID {
			return record, nil
		}
	}
	return nil, domain.ErrSubledgerRecordNotFound
}

func (m *MockSubledgerRepository) Update(ctx context.Context, tx usecase.Transaction, record *domain.SubledgerRecord) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, tx, record)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[record.ID] = record
	return nil
}

func (m *MockSubledgerRepository) List(ctx context.Context, tenantID string, side domain.SubledgerSide, statuses []domain.SubledgerStatus, counterpartyID string, limit, offset int) ([]*domain.SubledgerRecord, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, tenantID, side, statuses, counterpartyID, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var records []*domain.SubledgerRecord
	for _, record := range m.records {
		if record.TenantID != tenantID || record.Side != side {
			continue
		}
		if counterpartyID != "" && record.CounterpartyID != counterpartyID {
			continue
		}
		if len(statuses) > 0 {
			matched := false
			for _, status := range statuses {
				if record.Status == status {
					matched = true
					break
				}
			}
			if !matched {
				continue
			}
		}
		records = append(records, record)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].IssueDate.Before(records[j].IssueDate) })
	return records, nil
}

func (m *MockSubledgerRepository) ListOutstanding(ctx context.Context, tenantID string, side domain.SubledgerSide, asOf time.Time) ([]*domain.SubledgerRecord, error) {
	if m.ListOutstandingFunc != nil {
		return m.ListOutstandingFunc(ctx, tenantID, side, asOf)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var records []*domain.SubledgerRecord
	for _, record := range m.records {
		if record.TenantID != tenantID || record.Side != side {
			continue
		}
		if record.Status != domain.SubledgerStatusOpen && record.Status != domain.SubledgerStatusPartial {
			continue
		}
		if record.IssueDate.After(asOf) {
			continue
		}
		records = append(records, record)
	}
	return records, nil
}

func (m *MockSubledgerRepository) CreateApplication(ctx context.Context, tx usecase.Transaction, app *domain.PaymentApplication) error {
	if m.CreateApplicationFunc != nil {
		return m.CreateApplicationFunc(ctx, tx, app)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.apps = append(m.apps, app)
	return nil
}

func (m *MockSubledgerRepository) ListApplications(ctx context.Context, tenantID, recordID string) ([]*domain.PaymentApplication, error) {
	if m.ListApplicationsFunc != nil {
		return m.ListApplicationsFunc(ctx, tenantID, recordID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var apps []*domain.PaymentApplication
	for _, app := range m.apps {
		if app.TenantID == tenantID && app.RecordID == recordID {
			apps = append(apps, app)
		}
	}
	return apps, nil
}

// MockOutboxRepository is a mock implementation of OutboxRepository.
type MockOutboxRepository struct {
	mu     sync.RWMutex
	events []*domain.OutboxEvent

	CreateFunc         func(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error
	GetUnpublishedFunc func(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublishedFunc  func(ctx context.Context, id string) error
}

func NewMockOutboxRepository() *MockOutboxRepository {
	return &MockOutboxRepository{}
}

func (m *MockOutboxRepository) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, event)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

func (m *MockOutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	if m.GetUnpublishedFunc != nil {
		return m.GetUnpublishedFunc(ctx, limit)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var events []*domain.OutboxEvent
	for _, event := range m.events {
		if event.Published {
			continue
		}
		events = append(events, event)
		if len(events) == limit {
			break
		}
	}
	return events, nil
}

func (m *MockOutboxRepository) MarkPublished(ctx context.Context, id string) error {
	if m.MarkPublishedFunc != nil {
		return m.MarkPublishedFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, event := range m.events {
		if event.ID == id {
			now := time.Now()
			event.Published = true
			event.PublishedAt = &now
		}
	}
	return nil
}

// Events returns every event created so far, published or not.
func (m *MockOutboxRepository) Events() []*domain.OutboxEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.OutboxEvent, len(m.events))
	copy(out, m.events)
	return out
}

// MockAuditRepository is a mock implementation of AuditRepository.
type MockAuditRepository struct {
	mu   sync.RWMutex
	logs []*domain.AuditLog

	CreateFunc        func(ctx context.Context, log *domain.AuditLog) error
	CreateTxFunc      func(ctx context.Context, tx usecase.Transaction, log *domain.AuditLog) error
	ListFunc          func(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error)
	GetByResourceFunc func(ctx context.Context, tenantID, resourceType, resourceID string) ([]*domain.AuditLog, error)
}

func NewMockAuditRepository() *MockAuditRepository {
	return &MockAuditRepository{}
}

func (m *MockAuditRepository) Create(ctx context.Context, log *domain.AuditLog) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, log)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs = append(m.logs, log)
	return nil
}

func (m *MockAuditRepository) CreateTx(ctx context.Context, tx usecase.Transaction, log *domain.AuditLog) error {
	if m.CreateTxFunc != nil {
		return m.CreateTxFunc(ctx, tx, log)
	}
	return m.Create(ctx, log)
}

func (m *MockAuditRepository) List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var logs []*domain.AuditLog
	for _, log := range m.logs {
		if filter.TenantID != "" && log.TenantID != filter.TenantID {
			continue
		}
		if filter.Action != "" && string(log.Action) != filter.Action {
			continue
		}
		if filter.Actor != "" && log.Actor != filter.Actor {
			continue
		}
		logs = append(logs, log)
	}
	return logs, nil
}

func (m *MockAuditRepository) GetByResource(ctx context.Context, tenantID, resourceType, resourceID string) ([]*domain.AuditLog, error) {
	if m.GetByResourceFunc != nil {
		return m.GetByResourceFunc(ctx, tenantID, resourceType, resourceID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var logs []*domain.AuditLog
	for _, log := range m.logs {
		if log.TenantID == tenantID && log.ResourceType == resourceType && log.ResourceID == resourceID {
			logs = append(logs, log)
		}
	}
	return logs, nil
}

// Logs returns every audit log recorded so far.
func (m *MockAuditRepository) Logs() []*domain.AuditLog {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.AuditLog, len(m.logs))
	copy(out, m.logs)
	return out
}

// MockTransactionManager is a mock implementation of TransactionManager.
type MockTransactionManager struct {
	BeginFunc func(ctx context.Context) (usecase.Transaction, error)
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	return &MockTransaction{}, nil
}

// MockTransaction is a mock implementation of Transaction.
type MockTransaction struct {
	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error
}

func (m *MockTransaction) Commit(ctx context.Context) error {
	if m.CommitFunc != nil {
		return m.CommitFunc(ctx)
	}
	return nil
}

func (m *MockTransaction) Rollback(ctx context.Context) error {
	if m.RollbackFunc != nil {
		return m.RollbackFunc(ctx)
	}
	return nil
}

// MockIDGenerator is a mock implementation of IDGenerator.
type MockIDGenerator struct {
	GenerateFunc func() string
	counter      int
	mu           sync.Mutex
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return fmt.Sprintf("mock-id-%d", m.counter)
}

// MockDedupStore is a mock implementation of DedupStore.
type MockDedupStore struct {
	mu   sync.Mutex
	keys map[string]bool

	CheckAndSetFunc func(ctx context.Context, key string, ttl time.Duration) (bool, error)
	DeleteFunc      func(ctx context.Context, key string) error
}

func NewMockDedupStore() *MockDedupStore {
	return &MockDedupStore{
		keys: make(map[string]bool),
	}
}

func (m *MockDedupStore) CheckAndSet(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if m.CheckAndSetFunc != nil {
		return m.CheckAndSetFunc(ctx, key, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.keys[key] {
		return false, nil
	}
	m.keys[key] = true
	return true, nil
}

func (m *MockDedupStore) Delete(ctx context.Context, key string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.keys, key)
	return nil
}
