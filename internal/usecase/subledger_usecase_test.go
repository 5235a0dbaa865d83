package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/fintech-kernel/acctd/internal/domain"
	"github.com/fintech-kernel/acctd/internal/usecase"
	"github.com/fintech-kernel/acctd/internal/usecase/mocks"
)

type subledgerDeps struct {
	records *mocks.MockSubledgerRepository
	outbox  *mocks.MockOutboxRepository
	audit   *mocks.MockAuditRepository
}

func newSubledgerUseCase() (*usecase.SubledgerUseCase, subledgerDeps) {
	deps := subledgerDeps{
		records: mocks.NewMockSubledgerRepository(),
		outbox:  mocks.NewMockOutboxRepository(),
		audit:   mocks.NewMockAuditRepository(),
	}
	uc := usecase.NewSubledgerUseCase(
		mocks.NewMockTransactionManager(), deps.records, deps.outbox, deps.audit,
		mocks.NewMockIDGenerator(), nil)
	return uc, deps
}

func receivableInput(sourceID string) usecase.CreateSubledgerInput {
	return usecase.CreateSubledgerInput{
		TenantID:       testTenantID,
		CounterpartyID: "cust-1",
		SourceType:     domain.SourceTypeSale,
		SourceID:       sourceID,
		Amount:         decimal.NewFromInt(1000),
		IssueDate:      mustDate("2025-06-10"),
		DueDate:        mustDate("2025-07-10"),
		JournalEntryID: "jrn-1",
		Actor:          "tester",
	}
}

func TestSubledgerUseCase_CreateReceivable(t *testing.T) {
	uc, deps := newSubledgerUseCase()

	record, err := uc.CreateReceivable(context.Background(), receivableInput("inv-100"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if record.Side != domain.SubledgerSideAR {
		t.Errorf("expected side AR, got %s", record.Side)
	}
	if record.Status != domain.SubledgerStatusOpen {
		t.Errorf("expected status OPEN, got %s", record.Status)
	}
	if !record.RemainingAmount.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("expected remaining 1000, got %s", record.RemainingAmount)
	}

	events := deps.outbox.Events()
	if len(events) != 1 || events[0].EventType != domain.EventTypeARCreated {
		t.Errorf("expected one ar.created event, got %+v", events)
	}
}

func TestSubledgerUseCase_CreatePayable(t *testing.T) {
	uc, deps := newSubledgerUseCase()

	input := receivableInput("bill-7")
	input.SourceType = domain.SourceTypeBill
	input.CounterpartyID = "vendor-9"

	record, err := uc.CreatePayable(context.Background(), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if record.Side != domain.SubledgerSideAP {
		t.Errorf("expected side AP, got %s", record.Side)
	}

	events := deps.outbox.Events()
	if len(events) != 1 || events[0].EventType != domain.EventTypeAPCreated {
		t.Errorf("expected one ap.created event, got %+v", events)
	}
}

func TestSubledgerUseCase_CreateReceivable_SameSourceReturnsExisting(t *testing.T) {
	uc, deps := newSubledgerUseCase()

	first, err := uc.CreateReceivable(context.Background(), receivableInput("inv-100"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// A redelivered document must not open a second record, whatever its
	// payload says.
	replay := receivableInput("inv-100")
	replay.Amount = decimal.NewFromInt(500)
	second, err := uc.CreateReceivable(context.Background(), replay)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if second.ID != first.ID {
		t.Errorf("expected existing record %s, got %s", first.ID, second.ID)
	}
	if !second.OriginalAmount.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("expected original amount 1000, got %s", second.OriginalAmount)
	}
	if len(deps.outbox.Events()) != 1 {
		t.Errorf("expected a single ar.created event, got %d", len(deps.outbox.Events()))
	}
}

func TestSubledgerUseCase_CreateRecord_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(input *usecase.CreateSubledgerInput)
	}{
		{
			name:   "zero amount",
			mutate: func(input *usecase.CreateSubledgerInput) { input.Amount = decimal.Zero },
		},
		{
			name:   "negative amount",
			mutate: func(input *usecase.CreateSubledgerInput) { input.Amount = decimal.NewFromInt(-5) },
		},
		{
			name:   "missing counterparty",
			mutate: func(input *usecase.CreateSubledgerInput) { input.CounterpartyID = "" },
		},
		{
			name:   "missing source document",
			mutate: func(input *usecase.CreateSubledgerInput) { input.SourceID = "" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, _ := newSubledgerUseCase()
			input := receivableInput("inv-100")
			tt.mutate(&input)

			if _, err := uc.CreateReceivable(context.Background(), input); err == nil {
				t.Error("expected error but got none")
			}
		})
	}
}

func TestSubledgerUseCase_ApplyPayment_Partial(t *testing.T) {
	uc, deps := newSubledgerUseCase()
	record, err := uc.CreateReceivable(context.Background(), receivableInput("inv-100"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	updated, err := uc.ApplyPayment(context.Background(), usecase.ApplyPaymentInput{
		TenantID:   testTenantID,
		RecordID:   record.ID,
		Amount:     decimal.NewFromInt(400),
		PaymentRef: "pay-1",
		Actor:      "tester",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if updated.Status != domain.SubledgerStatusPartial {
		t.Errorf("expected status PARTIAL, got %s", updated.Status)
	}
	if !updated.RemainingAmount.Equal(decimal.NewFromInt(600)) {
		t.Errorf("expected remaining 600, got %s", updated.RemainingAmount)
	}

	// No settlement event until the balance reaches zero.
	for _, event := range deps.outbox.Events() {
		if event.EventType == domain.EventTypeARPaid {
			t.Error("unexpected ar.paid event for a partial payment")
		}
	}

	apps, err := uc.ListApplications(context.Background(), testTenantID, record.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(apps) != 1 || !apps[0].Amount.Equal(decimal.NewFromInt(400)) || apps[0].PaymentRef != "pay-1" {
		t.Errorf("expected one application of 400, got %+v", apps)
	}
}

func TestSubledgerUseCase_ApplyPayment_FullSettlement(t *testing.T) {
	uc, deps := newSubledgerUseCase()
	record, err := uc.CreateReceivable(context.Background(), receivableInput("inv-100"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, amount := range []int64{400, 600} {
		if _, err := uc.ApplyPayment(context.Background(), usecase.ApplyPaymentInput{
			TenantID:   testTenantID,
			RecordID:   record.ID,
			Amount:     decimal.NewFromInt(amount),
			PaymentRef: "pay-1",
			Actor:      "tester",
		}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	settled, err := uc.GetRecord(context.Background(), testTenantID, record.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if settled.Status != domain.SubledgerStatusPaid {
		t.Errorf("expected status PAID, got %s", settled.Status)
	}
	if !settled.RemainingAmount.IsZero() {
		t.Errorf("expected remaining 0, got %s", settled.RemainingAmount)
	}

	var paidEvents int
	for _, event := range deps.outbox.Events() {
		if event.EventType == domain.EventTypeARPaid {
			paidEvents++
		}
	}
	if paidEvents != 1 {
		t.Errorf("expected exactly one ar.paid event, got %d", paidEvents)
	}

	if logs := deps.audit.Logs(); len(logs) != 2 {
		t.Errorf("expected 2 payment.apply audit logs, got %d", len(logs))
	}

	apps, err := uc.ListApplications(context.Background(), testTenantID, record.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(apps) != 2 {
		t.Errorf("expected 2 applications, got %d", len(apps))
	}
}

func TestSubledgerUseCase_ApplyPayment_OverApplication(t *testing.T) {
	uc, _ := newSubledgerUseCase()
	record, err := uc.CreateReceivable(context.Background(), receivableInput("inv-100"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = uc.ApplyPayment(context.Background(), usecase.ApplyPaymentInput{
		TenantID: testTenantID,
		RecordID: record.ID,
		Amount:   decimal.NewFromInt(1200),
		Actor:    "tester",
	})

	var overErr *domain.OverApplicationError
	if !errors.As(err, &overErr) {
		t.Fatalf("expected OverApplicationError, got %v", err)
	}
	if !overErr.Remaining.Equal(decimal.NewFromInt(1000)) || !overErr.Applied.Equal(decimal.NewFromInt(1200)) {
		t.Errorf("expected remaining 1000 applied 1200, got %s / %s", overErr.Remaining, overErr.Applied)
	}

	// The refused payment must leave the record untouched.
	unchanged, err := uc.GetRecord(context.Background(), testTenantID, record.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if unchanged.Status != domain.SubledgerStatusOpen || !unchanged.RemainingAmount.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("expected untouched OPEN record, got %s remaining %s", unchanged.Status, unchanged.RemainingAmount)
	}
}

func TestSubledgerUseCase_ApplyPayment_InvalidAmount(t *testing.T) {
	uc, _ := newSubledgerUseCase()
	record, err := uc.CreateReceivable(context.Background(), receivableInput("inv-100"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = uc.ApplyPayment(context.Background(), usecase.ApplyPaymentInput{
		TenantID: testTenantID,
		RecordID: record.ID,
		Amount:   decimal.Zero,
		Actor:    "tester",
	})
	if !errors.Is(err, domain.ErrInvalidAmount) {
		t.Errorf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestSubledgerUseCase_ApplyPayment_RecordNotFound(t *testing.T) {
	uc, _ := newSubledgerUseCase()

	_, err := uc.ApplyPayment(context.Background(), usecase.ApplyPaymentInput{
		TenantID: testTenantID,
		RecordID: "nope",
		Amount:   decimal.NewFromInt(10),
		Actor:    "tester",
	})
	if !errors.Is(err, domain.ErrSubledgerRecordNotFound) {
		t.Errorf("expected ErrSubledgerRecordNotFound, got %v", err)
	}
}

func TestSubledgerUseCase_GetOpenRecords(t *testing.T) {
	uc, _ := newSubledgerUseCase()

	paid, err := uc.CreateReceivable(context.Background(), receivableInput("inv-1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := uc.ApplyPayment(context.Background(), usecase.ApplyPaymentInput{
		TenantID: testTenantID,
		RecordID: paid.ID,
		Amount:   decimal.NewFromInt(1000),
		Actor:    "tester",
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := uc.CreateReceivable(context.Background(), receivableInput("inv-2")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	open, err := uc.GetOpenRecords(context.Background(), testTenantID, domain.SubledgerSideAR, 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(open) != 1 || open[0].SourceID != "inv-2" {
		t.Errorf("expected only inv-2 open, got %+v", open)
	}
}

func TestSubledgerUseCase_GetAgingReport(t *testing.T) {
	uc, deps := newSubledgerUseCase()
	asOf := mustDate("2025-06-25")

	seed := []*domain.SubledgerRecord{
		{
			ID: "rec-1", TenantID: testTenantID, Side: domain.SubledgerSideAR,
			CounterpartyID: "cp-1", SourceID: "inv-1",
			RemainingAmount: decimal.NewFromInt(100),
			IssueDate:       mustDate("2025-05-10"), DueDate: mustDate("2025-06-10"),
			Status: domain.SubledgerStatusOpen,
		},
		{
			ID: "rec-2", TenantID: testTenantID, Side: domain.SubledgerSideAR,
			CounterpartyID: "cp-1", SourceID: "inv-2",
			RemainingAmount: decimal.NewFromInt(50),
			IssueDate:       mustDate("2025-02-01"), DueDate: mustDate("2025-03-01"),
			Status: domain.SubledgerStatusPartial,
		},
		{
			ID: "rec-3", TenantID: testTenantID, Side: domain.SubledgerSideAR,
			CounterpartyID: "cp-2", SourceID: "inv-3",
			RemainingAmount: decimal.NewFromInt(200),
			IssueDate:       mustDate("2025-06-20"), DueDate: mustDate("2025-07-01"),
			Status: domain.SubledgerStatusOpen,
		},
		// Settled, wrong side, and not yet issued records stay out.
		{
			ID: "rec-4", TenantID: testTenantID, Side: domain.SubledgerSideAR,
			CounterpartyID: "cp-2", SourceID: "inv-4",
			RemainingAmount: decimal.Zero,
			IssueDate:       mustDate("2025-05-01"), DueDate: mustDate("2025-06-01"),
			Status: domain.SubledgerStatusPaid,
		},
		{
			ID: "rec-5", TenantID: testTenantID, Side: domain.SubledgerSideAP,
			CounterpartyID: "vendor-1", SourceID: "bill-1",
			RemainingAmount: decimal.NewFromInt(75),
			IssueDate:       mustDate("2025-05-01"), DueDate: mustDate("2025-06-01"),
			Status: domain.SubledgerStatusOpen,
		},
		{
			ID: "rec-6", TenantID: testTenantID, Side: domain.SubledgerSideAR,
			CounterpartyID: "cp-1", SourceID: "inv-5",
			RemainingAmount: decimal.NewFromInt(900),
			IssueDate:       mustDate("2025-07-01"), DueDate: mustDate("2025-08-01"),
			Status: domain.SubledgerStatusOpen,
		},
	}
	for _, record := range seed {
		_ = deps.records.Create(context.Background(), nil, record)
	}

	report, err := uc.GetAgingReport(context.Background(), testTenantID, domain.SubledgerSideAR, asOf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(report.Rows) != 2 {
		t.Fatalf("expected 2 counterparty rows, got %d", len(report.Rows))
	}

	cp1 := report.Rows[0]
	if cp1.CounterpartyID != "cp-1" {
		t.Fatalf("expected cp-1 first, got %s", cp1.CounterpartyID)
	}
	if !cp1.Days1To30.Equal(decimal.NewFromInt(100)) {
		t.Errorf("expected cp-1 1-30 bucket 100, got %s", cp1.Days1To30)
	}
	if !cp1.Over90.Equal(decimal.NewFromInt(50)) {
		t.Errorf("expected cp-1 90+ bucket 50, got %s", cp1.Over90)
	}
	if !cp1.Total.Equal(decimal.NewFromInt(150)) {
		t.Errorf("expected cp-1 total 150, got %s", cp1.Total)
	}

	cp2 := report.Rows[1]
	if !cp2.Current.Equal(decimal.NewFromInt(200)) {
		t.Errorf("expected cp-2 current 200, got %s", cp2.Current)
	}

	if !report.Totals.Total.Equal(decimal.NewFromInt(350)) {
		t.Errorf("expected grand total 350, got %s", report.Totals.Total)
	}
}
