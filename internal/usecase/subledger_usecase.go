package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fintech-kernel/acctd/internal/domain"
	"github.com/fintech-kernel/acctd/internal/infrastructure/metrics"
)

// SubledgerUseCase manages receivables, payables, and payment application.
type SubledgerUseCase struct {
	txManager     TransactionManager
	subledgerRepo SubledgerRepository
	outboxRepo    OutboxRepository
	auditRepo     AuditRepository
	idGen         IDGenerator
	metrics       *metrics.Metrics
}

// NewSubledgerUseCase creates a new SubledgerUseCase.
func NewSubledgerUseCase(
	txManager TransactionManager,
	subledgerRepo SubledgerRepository,
	outboxRepo OutboxRepository,
	auditRepo AuditRepository,
	idGen IDGenerator,
	m *metrics.Metrics,
) *SubledgerUseCase {
	return &SubledgerUseCase{
		txManager:     txManager,
		subledgerRepo: subledgerRepo,
		outboxRepo:    outboxRepo,
		auditRepo:     auditRepo,
		idGen:         idGen,
		metrics:       m,
	}
}

// CreateSubledgerInput represents input for opening a receivable or payable.
type CreateSubledgerInput struct {
	TenantID       string
	Side           domain.SubledgerSide
	CounterpartyID string
	SourceType     domain.SourceType
	SourceID       string
	Amount         decimal.Decimal
	IssueDate      time.Time
	DueDate        time.Time
	JournalEntryID string
	Actor          string
}

// ApplyPaymentInput represents input for applying a payment to a record.
type ApplyPaymentInput struct {
	TenantID       string
	RecordID       string
	Amount         decimal.Decimal
	PaymentRef     string
	JournalEntryID string
	Actor          string
}

// CreateReceivable opens an AR record. Repeats on the same source document
// return the existing record.
func (uc *SubledgerUseCase) CreateReceivable(ctx context.Context, input CreateSubledgerInput) (*domain.SubledgerRecord, error) {
	input.Side = domain.SubledgerSideAR
	return uc.createRecord(ctx, input)
}

// CreatePayable opens an AP record. Repeats on the same source document
// return the existing record.
func (uc *SubledgerUseCase) CreatePayable(ctx context.Context, input CreateSubledgerInput) (*domain.SubledgerRecord, error) {
	input.Side = domain.SubledgerSideAP
	return uc.createRecord(ctx, input)
}

func (uc *SubledgerUseCase) createRecord(ctx context.Context, input CreateSubledgerInput) (*domain.SubledgerRecord, error) {
	if err := validateSubledgerInput(&input); err != nil {
		return nil, err
	}

	existing, err := uc.subledgerRepo.GetBySource(ctx, input.TenantID, input.Side, input.SourceID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, domain.ErrSubledgerRecordNotFound) {
		return nil, err
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	record, err := uc.createRecordInTx(txCtx, tx, input)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.SubledgerOpened.Inc()
	}

	return record, nil
}

// createRecordInTx opens a record inside a caller-owned transaction and
// queues the ar.created or ap.created event with it.
func (uc *SubledgerUseCase) createRecordInTx(txCtx context.Context, tx Transaction, input CreateSubledgerInput) (*domain.SubledgerRecord, error) {
	now := time.Now().UTC()

	record := &domain.SubledgerRecord{
		ID:              uc.idGen.Generate(),
		TenantID:        input.TenantID,
		Side:            input.Side,
		CounterpartyID:  input.CounterpartyID,
		SourceType:      input.SourceType,
		SourceID:        input.SourceID,
		OriginalAmount:  input.Amount,
		RemainingAmount: input.Amount,
		IssueDate:       domain.DateOnly(input.IssueDate),
		DueDate:         domain.DateOnly(input.DueDate),
		Status:          domain.SubledgerStatusOpen,
		JournalEntryID:  input.JournalEntryID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := uc.subledgerRepo.Create(txCtx, tx, record); err != nil {
		return nil, err
	}

	eventType := domain.EventTypeARCreated
	aggregateType := domain.AggregateTypeReceivable
	if record.Side == domain.SubledgerSideAP {
		eventType = domain.EventTypeAPCreated
		aggregateType = domain.AggregateTypePayable
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		TenantID:      record.TenantID,
		AggregateID:   record.ID,
		AggregateType: aggregateType,
		EventType:     eventType,
		Payload: domain.EventPayload(domain.SubledgerOpenedEvent{
			RecordID:       record.ID,
			TenantID:       record.TenantID,
			CounterpartyID: record.CounterpartyID,
			Amount:         record.OriginalAmount.String(),
			DueDate:        record.DueDate.Format(time.DateOnly),
			JournalID:      record.JournalEntryID,
		}),
		CreatedAt: now,
		Published: false,
	}
	if err := uc.outboxRepo.Create(txCtx, tx, event); err != nil {
		return nil, err
	}

	return record, nil
}

// ApplyPayment settles part or all of a record. Over-application is refused,
// never clamped.
func (uc *SubledgerUseCase) ApplyPayment(ctx context.Context, input ApplyPaymentInput) (*domain.SubledgerRecord, error) {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	record, _, err := uc.applyPaymentInTx(txCtx, tx, input)
	if err != nil {
		return nil, err
	}

	if uc.auditRepo != nil {
		auditLog := &domain.AuditLog{
			ID:           uc.idGen.Generate(),
			TenantID:     input.TenantID,
			Actor:        input.Actor,
			Action:       domain.AuditActionPaymentApply,
			ResourceType: "subledger",
			ResourceID:   record.ID,
			AfterState:   domain.MarshalState(record),
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
		uc.metrics.PaymentsApplied.Inc()
	}

	return record, nil
}

// applyPaymentInTx locks the record, applies the amount, and queues the
// ar.paid or ap.paid event once the record settles in full.
func (uc *SubledgerUseCase) applyPaymentInTx(txCtx context.Context, tx Transaction, input ApplyPaymentInput) (*domain.SubledgerRecord, *domain.PaymentApplication, error) {
	record, err := uc.subledgerRepo.GetByIDForUpdate(txCtx, tx, input.TenantID, input.RecordID)
	if err != nil {
		return nil, nil, err
	}

	if err := record.ApplyPayment(input.Amount); err != nil {
		return nil, nil, err
	}
	record.UpdatedAt = time.Now().UTC()

	if err := uc.subledgerRepo.Update(txCtx, tx, record); err != nil {
		return nil, nil, err
	}

	app := &domain.PaymentApplication{
		ID:             uc.idGen.Generate(),
		TenantID:       input.TenantID,
		RecordID:       record.ID,
		Side:           record.Side,
		Amount:         input.Amount,
		PaymentRef:     input.PaymentRef,
		JournalEntryID: input.JournalEntryID,
		AppliedAt:      record.UpdatedAt,
	}
	if err := uc.subledgerRepo.CreateApplication(txCtx, tx, app); err != nil {
		return nil, nil, err
	}

	if record.Status == domain.SubledgerStatusPaid {
		eventType := domain.EventTypeARPaid
		aggregateType := domain.AggregateTypeReceivable
		if record.Side == domain.SubledgerSideAP {
			eventType = domain.EventTypeAPPaid
			aggregateType = domain.AggregateTypePayable
		}

		event := &domain.OutboxEvent{
			ID:            uc.idGen.Generate(),
			TenantID:      record.TenantID,
			AggregateID:   record.ID,
			AggregateType: aggregateType,
			EventType:     eventType,
			Payload: domain.EventPayload(domain.SubledgerSettledEvent{
				RecordID:   record.ID,
				TenantID:   record.TenantID,
				PaymentRef: input.PaymentRef,
				Amount:     input.Amount.String(),
			}),
			CreatedAt: record.UpdatedAt,
			Published: false,
		}
		if err := uc.outboxRepo.Create(txCtx, tx, event); err != nil {
			return nil, nil, err
		}
	}

	return record, app, nil
}

// GetBySource resolves the record opened for a source document.
func (uc *SubledgerUseCase) GetBySource(ctx context.Context, tenantID string, side domain.SubledgerSide, sourceID string) (*domain.SubledgerRecord, error) {
	return uc.subledgerRepo.GetBySource(ctx, tenantID, side, sourceID)
}

// GetRecord retrieves a receivable or payable.
func (uc *SubledgerUseCase) GetRecord(ctx context.Context, tenantID, id string) (*domain.SubledgerRecord, error) {
	return uc.subledgerRepo.GetByID(ctx, tenantID, id)
}

// ListRecords retrieves records on one side, optionally narrowed by status
// and counterparty.
func (uc *SubledgerUseCase) ListRecords(ctx context.Context, tenantID string, side domain.SubledgerSide, statuses []domain.SubledgerStatus, counterpartyID string, limit, offset int) ([]*domain.SubledgerRecord, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	return uc.subledgerRepo.List(ctx, tenantID, side, statuses, counterpartyID, limit, offset)
}

// GetOpenRecords retrieves records still carrying a balance.
func (uc *SubledgerUseCase) GetOpenRecords(ctx context.Context, tenantID string, side domain.SubledgerSide, limit, offset int) ([]*domain.SubledgerRecord, error) {
	open := []domain.SubledgerStatus{domain.SubledgerStatusOpen, domain.SubledgerStatusPartial}
	return uc.ListRecords(ctx, tenantID, side, open, "", limit, offset)
}

// ListApplications retrieves the payment history of one record.
func (uc *SubledgerUseCase) ListApplications(ctx context.Context, tenantID, recordID string) ([]*domain.PaymentApplication, error) {
	if _, err := uc.subledgerRepo.GetByID(ctx, tenantID, recordID); err != nil {
		return nil, err
	}
	return uc.subledgerRepo.ListApplications(ctx, tenantID, recordID)
}

// GetAgingReport buckets open balances by days overdue, one row per
// counterparty.
func (uc *SubledgerUseCase) GetAgingReport(ctx context.Context, tenantID string, side domain.SubledgerSide, asOf time.Time) (*domain.AgingReport, error) {
	if asOf.IsZero() {
		asOf = time.Now().UTC()
	}
	asOf = domain.DateOnly(asOf)

	records, err := uc.subledgerRepo.ListOutstanding(ctx, tenantID, side, asOf)
	if err != nil {
		return nil, err
	}

	report := &domain.AgingReport{
		Side: side,
		AsOf: asOf,
	}

	byCounterparty := make(map[string]*domain.AgingRow)
	for _, record := range records {
		bucket := domain.AgingBucketFor(asOf, record.DueDate)

		row, ok := byCounterparty[record.CounterpartyID]
		if !ok {
			row = &domain.AgingRow{CounterpartyID: record.CounterpartyID}
			byCounterparty[record.CounterpartyID] = row
		}
		row.Add(bucket, record.RemainingAmount)
		report.Totals.Add(bucket, record.RemainingAmount)
	}

	report.Rows = make([]domain.AgingRow, 0, len(byCounterparty))
	for _, row := range byCounterparty {
		report.Rows = append(report.Rows, *row)
	}
	sort.Slice(report.Rows, func(i, j int) bool {
		return report.Rows[i].CounterpartyID < report.Rows[j].CounterpartyID
	})

	return report, nil
}

func validateSubledgerInput(input *CreateSubledgerInput) error {
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return err
	}
	if input.CounterpartyID == "" {
		return fmt.Errorf("counterparty is required")
	}
	if input.SourceID == "" {
		return fmt.Errorf("source document is required")
	}
	if input.IssueDate.IsZero() {
		input.IssueDate = time.Now().UTC()
	}
	if input.DueDate.IsZero() {
		input.DueDate = input.IssueDate
	}
	return nil
}
