package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fintech-kernel/acctd/internal/domain"
	"github.com/fintech-kernel/acctd/internal/infrastructure/metrics"
)

// JournalUseCase handles journal entry business logic.
type JournalUseCase struct {
	txManager    TransactionManager
	journalRepo  JournalRepository
	accountRepo  AccountRepository
	periodRepo   PeriodRepository
	sequenceRepo SequenceRepository
	outboxRepo   OutboxRepository
	auditRepo    AuditRepository
	idGen        IDGenerator
	metrics      *metrics.Metrics
}

// NewJournalUseCase creates a new JournalUseCase.
func NewJournalUseCase(
	txManager TransactionManager,
	journalRepo JournalRepository,
	accountRepo AccountRepository,
	periodRepo PeriodRepository,
	sequenceRepo SequenceRepository,
	outboxRepo OutboxRepository,
	auditRepo AuditRepository,
	idGen IDGenerator,
	m *metrics.Metrics,
) *JournalUseCase {
	return &JournalUseCase{
		txManager:    txManager,
		journalRepo:  journalRepo,
		accountRepo:  accountRepo,
		periodRepo:   periodRepo,
		sequenceRepo: sequenceRepo,
		outboxRepo:   outboxRepo,
		auditRepo:    auditRepo,
		idGen:        idGen,
		metrics:      m,
	}
}

// JournalLineInput is one line of a journal entry to create. Accounts are
// referenced by chart code.
type JournalLineInput struct {
	AccountCode string
	Description string
	Debit       decimal.Decimal
	Credit      decimal.Decimal
	Department  string
	Project     string
}

// CreateJournalInput represents input for creating a journal entry.
type CreateJournalInput struct {
	TenantID        string
	EntryDate       time.Time
	Description     string
	SourceType      domain.SourceType
	SourceID        string
	IdempotencyKey  string
	Lines           []JournalLineInput
	AsDraft         bool
	SystemGenerated bool
	SourcePayload   domain.JSON
	Actor           string
}

// CreateJournalResult carries the entry plus a flag telling retried callers
// they got an earlier creation back.
type CreateJournalResult struct {
	Entry       *domain.JournalEntry
	IsDuplicate bool
}

// CreateJournal records a balanced journal entry. A request that reuses an
// idempotency key returns the original entry with IsDuplicate set instead of
// writing anything.
func (uc *JournalUseCase) CreateJournal(ctx context.Context, input CreateJournalInput) (*CreateJournalResult, error) {
	start := time.Now()

	if err := validateCreateInput(&input); err != nil {
		return nil, err
	}

	// Fast path: the key has been seen before.
	existing, err := uc.journalRepo.GetByIdempotencyKey(ctx, input.TenantID, input.IdempotencyKey)
	if err == nil {
		if uc.metrics != nil {
			uc.metrics.DuplicateJournals.Inc()
		}
		return &CreateJournalResult{Entry: existing, IsDuplicate: true}, nil
	}
	if !errors.Is(err, domain.ErrJournalNotFound) {
		return nil, err
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	entry, inserted, err := uc.createEntryInTx(txCtx, tx, input)
	if err != nil {
		return nil, err
	}

	if !inserted {
		// A concurrent request with the same key won the insert race. Drop
		// this transaction and return the winner's entry.
		_ = tx.Rollback(txCtx)
		existing, err := uc.journalRepo.GetByIdempotencyKey(ctx, input.TenantID, input.IdempotencyKey)
		if err != nil {
			return nil, err
		}
		if uc.metrics != nil {
			uc.metrics.DuplicateJournals.Inc()
		}
		return &CreateJournalResult{Entry: existing, IsDuplicate: true}, nil
	}

	if uc.auditRepo != nil {
		auditLog := &domain.AuditLog{
			ID:           uc.idGen.Generate(),
			TenantID:     input.TenantID,
			Actor:        input.Actor,
			Action:       domain.AuditActionJournalCreate,
			ResourceType: "journal",
			ResourceID:   entry.ID,
			AfterState:   domain.MarshalState(entry),
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
		uc.metrics.JournalsCreated.Inc()
		if entry.Status == domain.JournalStatusPosted {
			uc.metrics.JournalsPosted.Inc()
		}
		uc.metrics.JournalDuration.Observe(time.Since(start).Seconds())
	}

	return &CreateJournalResult{Entry: entry}, nil
}

// createEntryInTx numbers and inserts a journal entry inside an open
// transaction. Callers own commit and rollback. The bool result is false
// when the idempotency key lost an insert race, in which case the
// transaction must be discarded.
func (uc *JournalUseCase) createEntryInTx(txCtx context.Context, tx Transaction, input CreateJournalInput) (*domain.JournalEntry, bool, error) {
	lines, err := uc.resolveLines(txCtx, input.TenantID, input.Lines)
	if err != nil {
		return nil, false, err
	}

	entryDate := domain.DateOnly(input.EntryDate)

	status := domain.JournalStatusPosted
	if input.AsDraft {
		status = domain.JournalStatusDraft
	}

	// The shared lock on the period row holds off a concurrent close until
	// this transaction commits.
	period, err := uc.periodRepo.FindByDateLocked(txCtx, tx, input.TenantID, entryDate)
	if err != nil {
		return nil, false, err
	}
	var periodID *string
	if period != nil {
		periodID = &period.ID
	}
	if status == domain.JournalStatusPosted {
		if err := postingAllowed(period, input.SystemGenerated, entryDate); err != nil {
			return nil, false, err
		}
	}

	seq, err := uc.sequenceRepo.Next(txCtx, tx, input.TenantID, entryDate.Year())
	if err != nil {
		return nil, false, err
	}

	now := time.Now().UTC()
	entry := &domain.JournalEntry{
		ID:              uc.idGen.Generate(),
		TenantID:        input.TenantID,
		Number:          domain.FormatJournalNumber(entryDate.Year(), seq),
		EntryDate:       entryDate,
		Description:     input.Description,
		SourceType:      input.SourceType,
		IdempotencyKey:  input.IdempotencyKey,
		Status:          status,
		PeriodID:        periodID,
		SystemGenerated: input.SystemGenerated,
		SourcePayload:   input.SourcePayload,
		Lines:           lines,
		CreatedBy:       input.Actor,
		CreatedAt:       now,
	}
	if input.SourceID != "" {
		entry.SourceID = &input.SourceID
	}
	if status == domain.JournalStatusPosted {
		entry.PostedAt = &now
	}
	for i := range entry.Lines {
		entry.Lines[i].ID = uc.idGen.Generate()
		entry.Lines[i].EntryID = entry.ID
	}

	inserted, err := uc.journalRepo.Create(txCtx, tx, entry)
	if err != nil || !inserted {
		return entry, inserted, err
	}

	if status == domain.JournalStatusPosted {
		if err := uc.emitPosted(txCtx, tx, entry); err != nil {
			return nil, false, err
		}
	}

	return entry, true, nil
}

// PostJournal promotes a draft to POSTED, making it immutable and visible to
// balances and reports.
func (uc *JournalUseCase) PostJournal(ctx context.Context, tenantID, id, actor string) (*domain.JournalEntry, error) {
	start := time.Now()

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	entry, err := uc.journalRepo.GetByIDForUpdate(txCtx, tx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if entry.Status != domain.JournalStatusDraft {
		return nil, domain.ErrJournalNotDraft
	}

	// Accounts may have been deactivated since the draft was written.
	if err := uc.revalidateLines(txCtx, tenantID, entry.Lines); err != nil {
		return nil, err
	}

	period, err := uc.periodRepo.FindByDateLocked(txCtx, tx, tenantID, entry.EntryDate)
	if err != nil {
		return nil, err
	}
	if err := postingAllowed(period, entry.SystemGenerated, entry.EntryDate); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := uc.journalRepo.UpdateStatus(txCtx, tx, tenantID, id, domain.JournalStatusPosted, &now); err != nil {
		return nil, err
	}
	entry.Status = domain.JournalStatusPosted
	entry.PostedAt = &now

	if err := uc.emitPosted(txCtx, tx, entry); err != nil {
		return nil, err
	}

	if uc.auditRepo != nil {
		auditLog := &domain.AuditLog{
			ID:           uc.idGen.Generate(),
			TenantID:     tenantID,
			Actor:        actor,
			Action:       domain.AuditActionJournalPost,
			ResourceType: "journal",
			ResourceID:   entry.ID,
			AfterState:   domain.MarshalState(entry),
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
		uc.metrics.JournalsPosted.Inc()
		uc.metrics.JournalDuration.Observe(time.Since(start).Seconds())
	}

	return entry, nil
}

// VoidJournal cancels a draft before it ever reaches the ledger. Posted
// entries can only be corrected by reversal.
func (uc *JournalUseCase) VoidJournal(ctx context.Context, tenantID, id, reason, actor string) (*domain.JournalEntry, error) {
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

	entry, err := uc.journalRepo.GetByIDForUpdate(txCtx, tx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if entry.Status != domain.JournalStatusDraft {
		return nil, &domain.CannotVoidPostedError{EntryID: id, Status: entry.Status}
	}

	before := domain.MarshalState(entry)

	if err := uc.journalRepo.UpdateStatus(txCtx, tx, tenantID, id, domain.JournalStatusVoid, nil); err != nil {
		return nil, err
	}
	entry.Status = domain.JournalStatusVoid

	if uc.auditRepo != nil {
		auditLog := &domain.AuditLog{
			ID:           uc.idGen.Generate(),
			TenantID:     tenantID,
			Actor:        actor,
			Action:       domain.AuditActionJournalVoid,
			ResourceType: "journal",
			ResourceID:   entry.ID,
			Reason:       reason,
			BeforeState:  before,
			AfterState:   domain.MarshalState(entry),
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
		uc.metrics.JournalsVoided.Inc()
	}

	return entry, nil
}

// ReverseJournal posts a mirror-image correcting entry dated today and links
// the pair. The original stays on the books untouched.
func (uc *JournalUseCase) ReverseJournal(ctx context.Context, tenantID, id, reason, actor string) (*domain.JournalEntry, error) {
	if reason == "" {
		return nil, domain.ErrReasonRequired
	}
	start := time.Now()

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	original, err := uc.journalRepo.GetByIDForUpdate(txCtx, tx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if original.Status != domain.JournalStatusPosted {
		return nil, domain.ErrJournalNotPosted
	}
	if original.IsReversed() {
		return nil, &domain.AlreadyReversedError{EntryID: id, ReversedBy: *original.ReversedBy}
	}

	// The reversal lands in the current open period, not the original's.
	entryDate := domain.DateOnly(time.Now().UTC())
	period, err := uc.periodRepo.FindByDateLocked(txCtx, tx, tenantID, entryDate)
	if err != nil {
		return nil, err
	}
	if err := postingAllowed(period, original.SystemGenerated, entryDate); err != nil {
		return nil, err
	}
	var periodID *string
	if period != nil {
		periodID = &period.ID
	}

	seq, err := uc.sequenceRepo.Next(txCtx, tx, tenantID, entryDate.Year())
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	reversal := &domain.JournalEntry{
		ID:              uc.idGen.Generate(),
		TenantID:        tenantID,
		Number:          domain.FormatJournalNumber(entryDate.Year(), seq),
		EntryDate:       entryDate,
		Description:     fmt.Sprintf("Reversal of %s: %s", original.Number, reason),
		SourceType:      original.SourceType,
		SourceID:        original.SourceID,
		IdempotencyKey:  "reversal-" + original.ID,
		Status:          domain.JournalStatusPosted,
		PeriodID:        periodID,
		ReversalOf:      &original.ID,
		ReversalReason:  reason,
		SystemGenerated: original.SystemGenerated,
		Lines:           domain.ReversalLines(original),
		CreatedBy:       actor,
		CreatedAt:       now,
		PostedAt:        &now,
	}
	for i := range reversal.Lines {
		reversal.Lines[i].ID = uc.idGen.Generate()
		reversal.Lines[i].EntryID = reversal.ID
	}

	inserted, err := uc.journalRepo.Create(txCtx, tx, reversal)
	if err != nil {
		return nil, err
	}
	if !inserted {
		// A concurrent reversal of the same entry committed first. Return it.
		_ = tx.Rollback(txCtx)
		return uc.journalRepo.GetByIdempotencyKey(ctx, tenantID, reversal.IdempotencyKey)
	}

	if err := uc.journalRepo.MarkReversed(txCtx, tx, tenantID, original.ID, reversal.ID); err != nil {
		return nil, err
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		TenantID:      tenantID,
		AggregateID:   original.ID,
		AggregateType: domain.AggregateTypeJournal,
		EventType:     domain.EventTypeJournalReversed,
		Payload: domain.EventPayload(domain.JournalReversedEvent{
			OriginalJournalID: original.ID,
			ReversalJournalID: reversal.ID,
			TenantID:          tenantID,
			Reason:            reason,
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
			Action:       domain.AuditActionJournalReverse,
			ResourceType: "journal",
			ResourceID:   original.ID,
			Reason:       reason,
			BeforeState:  domain.MarshalState(original),
			AfterState:   domain.MarshalState(reversal),
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
		uc.metrics.JournalsReversed.Inc()
		uc.metrics.JournalDuration.Observe(time.Since(start).Seconds())
	}

	return reversal, nil
}

// GetJournal retrieves a journal entry with its lines.
func (uc *JournalUseCase) GetJournal(ctx context.Context, tenantID, id string) (*domain.JournalEntry, error) {
	return uc.journalRepo.GetByID(ctx, tenantID, id)
}

// ListJournals retrieves entry headers matching the filter, newest first.
func (uc *JournalUseCase) ListJournals(ctx context.Context, tenantID string, filter JournalFilter) ([]*domain.JournalEntry, error) {
	if filter.Limit <= 0 {
		filter.Limit = DefaultListLimit
	}
	if filter.From != nil && filter.To != nil {
		if err := domain.ValidateDateRange(*filter.From, *filter.To); err != nil {
			return nil, err
		}
	}
	return uc.journalRepo.List(ctx, tenantID, filter)
}

func validateCreateInput(input *CreateJournalInput) error {
	if input.IdempotencyKey == "" {
		return domain.ErrIdempotencyKeyRequired
	}
	if !domain.ValidSourceType(input.SourceType) {
		return fmt.Errorf("invalid source type: %s", input.SourceType)
	}
	if input.EntryDate.IsZero() {
		input.EntryDate = time.Now().UTC()
	}
	return nil
}

// resolveLines maps account codes to accounts and validates line shape,
// amounts, and balance.
func (uc *JournalUseCase) resolveLines(ctx context.Context, tenantID string, inputs []JournalLineInput) ([]domain.JournalLine, error) {
	if len(inputs) < 2 {
		return nil, &domain.InvalidLineError{LineNumber: 0, Reason: "a journal entry requires at least two lines"}
	}

	codes := make([]string, 0, len(inputs))
	seen := make(map[string]bool, len(inputs))
	for _, in := range inputs {
		if !seen[in.AccountCode] {
			seen[in.AccountCode] = true
			codes = append(codes, in.AccountCode)
		}
	}

	accounts, err := uc.accountRepo.GetByCodes(ctx, tenantID, codes)
	if err != nil {
		return nil, err
	}
	byCode := make(map[string]*domain.Account, len(accounts))
	byID := make(map[string]*domain.Account, len(accounts))
	for _, acc := range accounts {
		byCode[acc.Code] = acc
		byID[acc.ID] = acc
	}

	lines := make([]domain.JournalLine, len(inputs))
	for i, in := range inputs {
		lines[i] = domain.JournalLine{
			AccountCode: in.AccountCode,
			LineNumber:  i + 1,
			Description: in.Description,
			Debit:       in.Debit,
			Credit:      in.Credit,
			Department:  in.Department,
			Project:     in.Project,
		}
		if acc, ok := byCode[in.AccountCode]; ok {
			lines[i].AccountID = acc.ID
		}
	}

	if err := domain.ValidateEntryLines(lines, byID); err != nil {
		return nil, err
	}

	for _, line := range lines {
		amount := line.Debit
		if amount.IsZero() {
			amount = line.Credit
		}
		if err := domain.ValidateAmount(amount); err != nil {
			return nil, &domain.InvalidLineError{LineNumber: line.LineNumber, Reason: err.Error()}
		}
	}

	return lines, nil
}

// revalidateLines re-checks persisted lines against the current chart.
func (uc *JournalUseCase) revalidateLines(ctx context.Context, tenantID string, lines []domain.JournalLine) error {
	codes := make([]string, 0, len(lines))
	seen := make(map[string]bool, len(lines))
	for _, ln := range lines {
		if !seen[ln.AccountCode] {
			seen[ln.AccountCode] = true
			codes = append(codes, ln.AccountCode)
		}
	}

	accounts, err := uc.accountRepo.GetByCodes(ctx, tenantID, codes)
	if err != nil {
		return err
	}
	byID := make(map[string]*domain.Account, len(accounts))
	for _, acc := range accounts {
		byID[acc.ID] = acc
	}

	return domain.ValidateEntryLines(lines, byID)
}

// emitPosted queues the journal.posted event in the same transaction as the
// posting itself.
func (uc *JournalUseCase) emitPosted(txCtx context.Context, tx Transaction, entry *domain.JournalEntry) error {
	debit, credit := domain.EntryTotals(entry.Lines)

	sourceID := ""
	if entry.SourceID != nil {
		sourceID = *entry.SourceID
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		TenantID:      entry.TenantID,
		AggregateID:   entry.ID,
		AggregateType: domain.AggregateTypeJournal,
		EventType:     domain.EventTypeJournalPosted,
		Payload: domain.EventPayload(domain.JournalPostedEvent{
			JournalID:   entry.ID,
			TenantID:    entry.TenantID,
			Number:      entry.Number,
			EntryDate:   entry.EntryDate.Format(time.DateOnly),
			SourceType:  string(entry.SourceType),
			SourceID:    sourceID,
			TotalDebit:  debit.String(),
			TotalCredit: credit.String(),
		}),
		CreatedAt: time.Now().UTC(),
		Published: false,
	}

	return uc.outboxRepo.Create(txCtx, tx, event)
}

// postingAllowed converts the period posting matrix into typed errors.
func postingAllowed(period *domain.FiscalPeriod, systemGenerated bool, date time.Time) error {
	ok, _ := domain.CanPostToDate(period, systemGenerated)
	if ok {
		return nil
	}
	if period.Status == domain.PeriodStatusLocked {
		return &domain.PeriodLockedError{PeriodID: period.ID, PeriodName: period.Name}
	}
	return &domain.PeriodClosedError{PeriodID: period.ID, PeriodName: period.Name, Date: date}
}
