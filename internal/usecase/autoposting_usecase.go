package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fintech-kernel/acctd/internal/domain"
	"github.com/fintech-kernel/acctd/internal/infrastructure/metrics"
)

// AutoPostingUseCase turns inbound business events into posted journals and
// subledger movements, atomically and exactly once per source document.
type AutoPostingUseCase struct {
	txManager  TransactionManager
	tenantRepo TenantRepository
	journal    *JournalUseCase
	subledger  *SubledgerUseCase
	dedup      DedupStore
	metrics    *metrics.Metrics
}

// NewAutoPostingUseCase creates a new AutoPostingUseCase.
func NewAutoPostingUseCase(
	txManager TransactionManager,
	tenantRepo TenantRepository,
	journal *JournalUseCase,
	subledger *SubledgerUseCase,
	dedup DedupStore,
	m *metrics.Metrics,
) *AutoPostingUseCase {
	return &AutoPostingUseCase{
		txManager:  txManager,
		tenantRepo: tenantRepo,
		journal:    journal,
		subledger:  subledger,
		dedup:      dedup,
		metrics:    m,
	}
}

// AutoPostingResult reports what an event produced.
type AutoPostingResult struct {
	Entry       *domain.JournalEntry
	Record      *domain.SubledgerRecord
	IsDuplicate bool
}

// HandleEvent books the journal entry and subledger movement a business
// event calls for. Redelivered events return the original journal instead of
// double posting: the idempotency key derived from the source document is
// checked in Redis first and enforced by the database regardless.
func (uc *AutoPostingUseCase) HandleEvent(ctx context.Context, evt *domain.BusinessEvent) (*AutoPostingResult, error) {
	if evt.TenantID == "" {
		return nil, fmt.Errorf("event %s has no tenant", evt.ID)
	}
	if evt.SourceID == "" {
		return nil, fmt.Errorf("event %s has no source document", evt.ID)
	}

	tenant, err := uc.tenantRepo.GetByID(ctx, evt.TenantID)
	if err != nil {
		return nil, err
	}
	if !tenant.IsActive {
		return nil, domain.ErrTenantInactive
	}

	instruction, err := ResolvePostingRule(evt, tenant.Config)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("%s-%s", instruction.SourceType, evt.SourceID)

	// Fast-path dedup. A missing or broken Redis never blocks posting; a
	// stale claim without a journal row means an earlier attempt died before
	// commit, so the event runs again.
	claimed := false
	if uc.dedup != nil {
		fresh, err := uc.dedup.CheckAndSet(ctx, key, EventDedupTTL)
		if err == nil {
			claimed = fresh
			if !fresh {
				existing, err := uc.journal.journalRepo.GetByIdempotencyKey(ctx, evt.TenantID, key)
				if err == nil {
					return &AutoPostingResult{Entry: existing, IsDuplicate: true}, nil
				}
				if !errors.Is(err, domain.ErrJournalNotFound) {
					return nil, err
				}
			}
		}
	}

	result, err := uc.postEvent(ctx, evt, tenant, instruction, key)
	if err != nil && claimed {
		// Release the claim so a redelivery can try again.
		_ = uc.dedup.Delete(ctx, key)
	}
	return result, err
}

func (uc *AutoPostingUseCase) postEvent(ctx context.Context, evt *domain.BusinessEvent, tenant *domain.Tenant, instruction *PostingInstruction, key string) (*AutoPostingResult, error) {
	entryDate := evt.OccurredAt
	if entryDate.IsZero() {
		entryDate = time.Now().UTC()
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	entry, inserted, err := uc.journal.createEntryInTx(txCtx, tx, CreateJournalInput{
		TenantID:        evt.TenantID,
		EntryDate:       entryDate,
		Description:     eventDescription(evt),
		SourceType:      instruction.SourceType,
		SourceID:        evt.SourceID,
		IdempotencyKey:  key,
		Lines:           instruction.Lines,
		SystemGenerated: true,
		SourcePayload:   domain.MarshalState(evt),
		Actor:           "auto-poster",
	})
	if err != nil {
		return nil, err
	}
	if !inserted {
		_ = tx.Rollback(txCtx)
		existing, err := uc.journal.journalRepo.GetByIdempotencyKey(ctx, evt.TenantID, key)
		if err != nil {
			return nil, err
		}
		return &AutoPostingResult{Entry: existing, IsDuplicate: true}, nil
	}

	record, err := uc.applySubledgerAction(txCtx, tx, evt, instruction, entry.ID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.JournalsCreated.Inc()
		uc.metrics.JournalsPosted.Inc()
		switch instruction.Action {
		case SubledgerActionOpenAR, SubledgerActionOpenAP:
			uc.metrics.SubledgerOpened.Inc()
		case SubledgerActionPayAR, SubledgerActionPayAP:
			uc.metrics.PaymentsApplied.Inc()
		}
	}

	return &AutoPostingResult{Entry: entry, Record: record}, nil
}

func (uc *AutoPostingUseCase) applySubledgerAction(txCtx context.Context, tx Transaction, evt *domain.BusinessEvent, instruction *PostingInstruction, journalID string) (*domain.SubledgerRecord, error) {
	switch instruction.Action {
	case SubledgerActionOpenAR, SubledgerActionOpenAP:
		if evt.CounterpartyID == "" {
			return nil, fmt.Errorf("event %s opens a subledger record but names no counterparty", evt.ID)
		}

		side := domain.SubledgerSideAR
		if instruction.Action == SubledgerActionOpenAP {
			side = domain.SubledgerSideAP
		}

		issue := evt.OccurredAt
		if issue.IsZero() {
			issue = time.Now().UTC()
		}
		due := issue
		if evt.DueDate != nil {
			due = *evt.DueDate
		}

		return uc.subledger.createRecordInTx(txCtx, tx, CreateSubledgerInput{
			TenantID:       evt.TenantID,
			Side:           side,
			CounterpartyID: evt.CounterpartyID,
			SourceType:     instruction.SourceType,
			SourceID:       evt.SourceID,
			Amount:         evt.Amount,
			IssueDate:      issue,
			DueDate:        due,
			JournalEntryID: journalID,
			Actor:          "auto-poster",
		})

	case SubledgerActionPayAR, SubledgerActionPayAP:
		side := domain.SubledgerSideAR
		if instruction.Action == SubledgerActionPayAP {
			side = domain.SubledgerSideAP
		}

		target, err := uc.subledger.GetBySource(txCtx, evt.TenantID, side, instruction.TargetSourceID)
		if err != nil {
			return nil, fmt.Errorf("payment %s targets %s: %w", evt.SourceID, instruction.TargetSourceID, err)
		}

		record, _, err := uc.subledger.applyPaymentInTx(txCtx, tx, ApplyPaymentInput{
			TenantID:       evt.TenantID,
			RecordID:       target.ID,
			Amount:         evt.Amount,
			PaymentRef:     evt.SourceID,
			JournalEntryID: journalID,
			Actor:          "auto-poster",
		})
		return record, err

	default:
		return nil, nil
	}
}

// eventDescription is the journal description for an auto-posted event.
func eventDescription(evt *domain.BusinessEvent) string {
	if evt.Description != "" {
		return evt.Description
	}
	return fmt.Sprintf("%s %s", evt.Type, evt.SourceID)
}
