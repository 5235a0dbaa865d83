package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fintech-kernel/acctd/internal/domain"
	"github.com/fintech-kernel/acctd/internal/infrastructure/metrics"
)

// PeriodUseCase manages the fiscal period lifecycle: create, close with
// closing entries, reopen, lock, unlock.
type PeriodUseCase struct {
	txManager   TransactionManager
	periodRepo  PeriodRepository
	journalRepo JournalRepository
	ledgerRepo  LedgerRepository
	tenantRepo  TenantRepository
	outboxRepo  OutboxRepository
	auditRepo   AuditRepository
	journal     *JournalUseCase
	idGen       IDGenerator
	metrics     *metrics.Metrics
}

// NewPeriodUseCase creates a new PeriodUseCase. The journal use case books
// the closing entry inside the close transaction.
func NewPeriodUseCase(
	txManager TransactionManager,
	periodRepo PeriodRepository,
	journalRepo JournalRepository,
	ledgerRepo LedgerRepository,
	tenantRepo TenantRepository,
	outboxRepo OutboxRepository,
	auditRepo AuditRepository,
	journal *JournalUseCase,
	idGen IDGenerator,
	m *metrics.Metrics,
) *PeriodUseCase {
	return &PeriodUseCase{
		txManager:   txManager,
		periodRepo:  periodRepo,
		journalRepo: journalRepo,
		ledgerRepo:  ledgerRepo,
		tenantRepo:  tenantRepo,
		outboxRepo:  outboxRepo,
		auditRepo:   auditRepo,
		journal:     journal,
		idGen:       idGen,
		metrics:     m,
	}
}

// CreatePeriodInput represents input for creating a fiscal period.
type CreatePeriodInput struct {
	TenantID  string
	Name      string
	StartDate time.Time
	EndDate   time.Time
	Actor     string
}

// CreatePeriod opens a new fiscal period. Periods of one tenant must not
// overlap.
func (uc *PeriodUseCase) CreatePeriod(ctx context.Context, input CreatePeriodInput) (*domain.FiscalPeriod, error) {
	if input.Name == "" {
		return nil, fmt.Errorf("period name is required")
	}

	start := domain.DateOnly(input.StartDate)
	end := domain.DateOnly(input.EndDate)
	if end.Before(start) {
		return nil, fmt.Errorf("period end %s precedes start %s", end.Format(time.DateOnly), start.Format(time.DateOnly))
	}

	conflict, err := uc.periodRepo.FindOverlapping(ctx, input.TenantID, start, end)
	if err != nil {
		return nil, err
	}
	if conflict != nil {
		return nil, &domain.PeriodOverlapError{Name: input.Name, ConflictsWith: conflict.Name}
	}

	now := time.Now().UTC()
	period := &domain.FiscalPeriod{
		ID:        uc.idGen.Generate(),
		TenantID:  input.TenantID,
		Name:      input.Name,
		StartDate: start,
		EndDate:   end,
		Status:    domain.PeriodStatusOpen,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := uc.periodRepo.Create(ctx, period); err != nil {
		return nil, err
	}

	uc.audit(ctx, input.TenantID, input.Actor, domain.AuditActionPeriodCreate, period.ID, "", nil, period)

	return period, nil
}

// ClosePeriod closes an open period: it captures the trial balance snapshot,
// books the closing entry that folds income and expense into retained
// earnings, and flips the status. Everything commits atomically.
func (uc *PeriodUseCase) ClosePeriod(ctx context.Context, tenantID, periodID, actor string) (*domain.FiscalPeriod, error) {
	tenant, err := uc.tenantRepo.GetByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	// The exclusive lock makes in-flight postings commit or abort before the
	// close proceeds, and blocks new ones until it commits.
	period, err := uc.periodRepo.GetByIDForUpdate(txCtx, tx, tenantID, periodID)
	if err != nil {
		return nil, err
	}
	if period.Status != domain.PeriodStatusOpen {
		return nil, domain.ErrPeriodNotOpen
	}

	preceding, err := uc.periodRepo.FindPreceding(txCtx, tenantID, period.StartDate)
	if err != nil {
		return nil, err
	}
	if preceding != nil && preceding.Status == domain.PeriodStatusOpen {
		return nil, &domain.PriorPeriodOpenError{PeriodName: period.Name, PriorName: preceding.Name}
	}

	drafts, err := uc.journalRepo.CountDrafts(txCtx, tenantID, period.StartDate, period.EndDate)
	if err != nil {
		return nil, err
	}
	if drafts > 0 && tenant.Config.CloseWithDrafts != domain.DraftPolicyAllow {
		return nil, &domain.DraftJournalsExistError{PeriodID: period.ID, PeriodName: period.Name, Count: drafts}
	}

	snapshot, err := uc.buildSnapshot(txCtx, tenantID, period.EndDate)
	if err != nil {
		return nil, err
	}

	closingID, err := uc.bookClosingEntry(txCtx, tx, tenant, period, actor)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	period.Status = domain.PeriodStatusClosed
	period.ClosedAt = &now
	period.ClosedBy = actor
	period.Snapshot = snapshot
	period.ClosingEntryID = closingID
	period.UpdatedAt = now

	if err := uc.periodRepo.Close(txCtx, tx, period); err != nil {
		return nil, err
	}

	closingJournalID := ""
	if closingID != nil {
		closingJournalID = *closingID
	}
	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		TenantID:      tenantID,
		AggregateID:   period.ID,
		AggregateType: domain.AggregateTypePeriod,
		EventType:     domain.EventTypePeriodClosed,
		Payload: domain.EventPayload(domain.PeriodClosedEvent{
			PeriodID:         period.ID,
			TenantID:         tenantID,
			Name:             period.Name,
			ClosingJournalID: closingJournalID,
		}),
		CreatedAt: now,
		Published: false,
	}
	if err := uc.outboxRepo.Create(txCtx, tx, event); err != nil {
		return nil, err
	}

	if uc.auditRepo != nil {
		auditLog := &domain.AuditLog{
			ID:           uc.idGen.Generate(),
			TenantID:     tenantID,
			Actor:        actor,
			Action:       domain.AuditActionPeriodClose,
			ResourceType: "period",
			ResourceID:   period.ID,
			AfterState:   domain.MarshalState(period),
			Status:       domain.AuditStatusSuccess,
			CreatedAt:    time.Now(),
		}
		if err := uc.auditRepo.CreateTx(txCtx, tx, auditLog); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.PeriodsClosed.Inc()
	}

	return period, nil
}

// ReopenPeriod flips a closed period back to open. It needs a reason and is
// refused while any later period is already closed or locked.
func (uc *PeriodUseCase) ReopenPeriod(ctx context.Context, tenantID, periodID, reason, actor string) (*domain.FiscalPeriod, error) {
	if reason == "" {
		return nil, domain.ErrReasonRequired
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	period, err := uc.periodRepo.GetByIDForUpdate(txCtx, tx, tenantID, periodID)
	if err != nil {
		return nil, err
	}
	switch period.Status {
	case domain.PeriodStatusLocked:
		return nil, &domain.PeriodLockedError{PeriodID: period.ID, PeriodName: period.Name}
	case domain.PeriodStatusOpen:
		return nil, domain.ErrPeriodNotClosed
	}

	later, err := uc.periodRepo.FindLaterNonOpen(txCtx, tenantID, period.EndDate)
	if err != nil {
		return nil, err
	}
	if later != nil {
		return nil, &domain.LaterPeriodClosedError{PeriodName: period.Name, LaterName: later.Name}
	}

	before := domain.MarshalState(period)

	if err := uc.periodRepo.Reopen(txCtx, tx, tenantID, periodID); err != nil {
		return nil, err
	}
	period.Status = domain.PeriodStatusOpen
	period.ClosedAt = nil
	period.ClosedBy = ""
	period.UpdatedAt = time.Now().UTC()

	if uc.auditRepo != nil {
		auditLog := &domain.AuditLog{
			ID:           uc.idGen.Generate(),
			TenantID:     tenantID,
			Actor:        actor,
			Action:       domain.AuditActionPeriodReopen,
			ResourceType: "period",
			ResourceID:   period.ID,
			Reason:       reason,
			BeforeState:  before,
			AfterState:   domain.MarshalState(period),
			Status:       domain.AuditStatusSuccess,
			CreatedAt:    time.Now(),
		}
		if err := uc.auditRepo.CreateTx(txCtx, tx, auditLog); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.PeriodsReopened.Inc()
	}

	return period, nil
}

// LockPeriod makes a closed period permanent for regular flows. Locking an
// already locked period is a no-op.
func (uc *PeriodUseCase) LockPeriod(ctx context.Context, tenantID, periodID, actor string) (*domain.FiscalPeriod, error) {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	period, err := uc.periodRepo.GetByIDForUpdate(txCtx, tx, tenantID, periodID)
	if err != nil {
		return nil, err
	}
	if period.Status == domain.PeriodStatusLocked {
		return period, nil
	}
	if period.Status != domain.PeriodStatusClosed {
		return nil, domain.ErrPeriodNotClosed
	}

	now := time.Now().UTC()
	if err := uc.periodRepo.Lock(txCtx, tx, tenantID, periodID, actor, now); err != nil {
		return nil, err
	}
	period.Status = domain.PeriodStatusLocked
	period.LockedAt = &now
	period.LockedBy = actor
	period.UpdatedAt = now

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		TenantID:      tenantID,
		AggregateID:   period.ID,
		AggregateType: domain.AggregateTypePeriod,
		EventType:     domain.EventTypePeriodLocked,
		Payload: domain.EventPayload(domain.PeriodLockedEvent{
			PeriodID: period.ID,
			TenantID: tenantID,
			Name:     period.Name,
		}),
		CreatedAt: now,
		Published: false,
	}
	if err := uc.outboxRepo.Create(txCtx, tx, event); err != nil {
		return nil, err
	}

	if uc.auditRepo != nil {
		auditLog := &domain.AuditLog{
			ID:           uc.idGen.Generate(),
			TenantID:     tenantID,
			Actor:        actor,
			Action:       domain.AuditActionPeriodLock,
			ResourceType: "period",
			ResourceID:   period.ID,
			AfterState:   domain.MarshalState(period),
			Status:       domain.AuditStatusSuccess,
			CreatedAt:    time.Now(),
		}
		if err := uc.auditRepo.CreateTx(txCtx, tx, auditLog); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.PeriodsLocked.Inc()
	}

	return period, nil
}

// UnlockPeriod drops a locked period back to closed. The mandatory reason
// lands in the audit trail; this is the exceptional escape hatch, not part of
// any regular flow.
func (uc *PeriodUseCase) UnlockPeriod(ctx context.Context, tenantID, periodID, reason, actor string) (*domain.FiscalPeriod, error) {
	if reason == "" {
		return nil, domain.ErrReasonRequired
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	period, err := uc.periodRepo.GetByIDForUpdate(txCtx, tx, tenantID, periodID)
	if err != nil {
		return nil, err
	}
	if period.Status != domain.PeriodStatusLocked {
		return nil, domain.ErrPeriodNotLocked
	}

	before := domain.MarshalState(period)

	if err := uc.periodRepo.Unlock(txCtx, tx, tenantID, periodID); err != nil {
		return nil, err
	}
	period.Status = domain.PeriodStatusClosed
	period.LockedAt = nil
	period.LockedBy = ""
	period.UpdatedAt = time.Now().UTC()

	if uc.auditRepo != nil {
		auditLog := &domain.AuditLog{
			ID:           uc.idGen.Generate(),
			TenantID:     tenantID,
			Actor:        actor,
			Action:       domain.AuditActionPeriodUnlock,
			ResourceType: "period",
			ResourceID:   period.ID,
			Reason:       reason,
			BeforeState:  before,
			AfterState:   domain.MarshalState(period),
			Status:       domain.AuditStatusSuccess,
			CreatedAt:    time.Now(),
		}
		if err := uc.auditRepo.CreateTx(txCtx, tx, auditLog); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	return period, nil
}

// GetPeriod retrieves a fiscal period.
func (uc *PeriodUseCase) GetPeriod(ctx context.Context, tenantID, id string) (*domain.FiscalPeriod, error) {
	return uc.periodRepo.GetByID(ctx, tenantID, id)
}

// ListPeriods retrieves the tenant's periods ordered by start date.
func (uc *PeriodUseCase) ListPeriods(ctx context.Context, tenantID string) ([]*domain.FiscalPeriod, error) {
	return uc.periodRepo.List(ctx, tenantID)
}

// CanPostToDate answers whether a regular posting dated date would be
// accepted right now.
func (uc *PeriodUseCase) CanPostToDate(ctx context.Context, tenantID string, date time.Time, systemGenerated bool) (bool, string, error) {
	period, err := uc.periodRepo.FindByDate(ctx, tenantID, domain.DateOnly(date))
	if err != nil {
		return false, "", err
	}
	allowed, reason := domain.CanPostToDate(period, systemGenerated)
	return allowed, reason, nil
}

// buildSnapshot captures the cumulative trial balance through asOf, before
// the closing entry books.
func (uc *PeriodUseCase) buildSnapshot(ctx context.Context, tenantID string, asOf time.Time) (*domain.PeriodSnapshot, error) {
	activity, err := uc.ledgerRepo.ActivityByAccount(ctx, tenantID, asOf)
	if err != nil {
		return nil, err
	}

	snapshot := &domain.PeriodSnapshot{
		AsOf:        asOf,
		Rows:        make([]domain.SnapshotRow, 0, len(activity)),
		TotalDebit:  decimal.Zero,
		TotalCredit: decimal.Zero,
	}

	for _, row := range activity {
		acc := domain.Account{NormalBalance: row.NormalBalance}
		snapshot.Rows = append(snapshot.Rows, domain.SnapshotRow{
			AccountCode: row.AccountCode,
			AccountName: row.AccountName,
			Debit:       row.Debit,
			Credit:      row.Credit,
			Balance:     acc.SignedBalance(row.Debit, row.Credit),
		})
		snapshot.TotalDebit = snapshot.TotalDebit.Add(row.Debit)
		snapshot.TotalCredit = snapshot.TotalCredit.Add(row.Credit)
	}

	return snapshot, nil
}

// bookClosingEntry zeroes the period's income and expense activity against
// retained earnings. A period with no such activity produces no entry.
func (uc *PeriodUseCase) bookClosingEntry(txCtx context.Context, tx Transaction, tenant *domain.Tenant, period *domain.FiscalPeriod, actor string) (*string, error) {
	activity, err := uc.ledgerRepo.ActivityByType(txCtx, tenant.ID,
		[]domain.AccountType{domain.AccountTypeIncome, domain.AccountTypeExpense},
		period.StartDate, period.EndDate)
	if err != nil {
		return nil, err
	}

	lines := make([]JournalLineInput, 0, len(activity)+1)
	netIncome := decimal.Zero

	for _, row := range activity {
		switch row.AccountType {
		case domain.AccountTypeIncome:
			net := row.Credit.Sub(row.Debit)
			if net.IsZero() {
				continue
			}
			line := JournalLineInput{
				AccountCode: row.AccountCode,
				Description: "Close " + row.AccountName,
			}
			if net.IsPositive() {
				line.Debit = net
			} else {
				line.Credit = net.Neg()
			}
			lines = append(lines, line)
			netIncome = netIncome.Add(net)
		case domain.AccountTypeExpense:
			net := row.Debit.Sub(row.Credit)
			if net.IsZero() {
				continue
			}
			line := JournalLineInput{
				AccountCode: row.AccountCode,
				Description: "Close " + row.AccountName,
			}
			if net.IsPositive() {
				line.Credit = net
			} else {
				line.Debit = net.Neg()
			}
			lines = append(lines, line)
			netIncome = netIncome.Sub(net)
		}
	}

	if len(lines) == 0 {
		return nil, nil
	}

	if !netIncome.IsZero() {
		line := JournalLineInput{
			AccountCode: tenant.Config.RetainedEarningsCode,
			Description: "Net income for " + period.Name,
		}
		if netIncome.IsPositive() {
			line.Credit = netIncome
		} else {
			line.Debit = netIncome.Neg()
		}
		lines = append(lines, line)
	}

	input := CreateJournalInput{
		TenantID:        tenant.ID,
		EntryDate:       period.EndDate,
		Description:     "Closing entry for " + period.Name,
		SourceType:      domain.SourceTypeClosing,
		SourceID:        period.ID,
		IdempotencyKey:  fmt.Sprintf("closing-%s-%s", period.ID, uc.idGen.Generate()),
		Lines:           lines,
		SystemGenerated: true,
		Actor:           actor,
	}

	entry, inserted, err := uc.journal.createEntryInTx(txCtx, tx, input)
	if err != nil {
		return nil, err
	}
	if !inserted {
		return nil, fmt.Errorf("closing entry for period %s already exists", period.ID)
	}

	return &entry.ID, nil
}

func (uc *PeriodUseCase) audit(ctx context.Context, tenantID, actor string, action domain.AuditAction, resourceID, reason string, before, after any) {
	if uc.auditRepo == nil {
		return
	}

	_ = uc.auditRepo.Create(ctx, &domain.AuditLog{
		ID:           uc.idGen.Generate(),
		TenantID:     tenantID,
		Actor:        actor,
		Action:       action,
		ResourceType: "period",
		ResourceID:   resourceID,
		Reason:       reason,
		BeforeState:  domain.MarshalState(before),
		AfterState:   domain.MarshalState(after),
		Status:       domain.AuditStatusSuccess,
		CreatedAt:    time.Now().UTC(),
	})
}
