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

type journalDeps struct {
	journals  *mocks.MockJournalRepository
	accounts  *mocks.MockAccountRepository
	periods   *mocks.MockPeriodRepository
	sequences *mocks.MockSequenceRepository
	outbox    *mocks.MockOutboxRepository
	audit     *mocks.MockAuditRepository
}

// newJournalUseCase wires a journal usecase against in-memory mocks with the
// default chart seeded and June 2025 open.
func newJournalUseCase() (*usecase.JournalUseCase, *journalDeps) {
	d := &journalDeps{
		journals:  mocks.NewMockJournalRepository(),
		accounts:  mocks.NewMockAccountRepository(),
		periods:   mocks.NewMockPeriodRepository(),
		sequences: mocks.NewMockSequenceRepository(),
		outbox:    mocks.NewMockOutboxRepository(),
		audit:     mocks.NewMockAuditRepository(),
	}
	seedChart(d.accounts)
	d.periods.Create(context.Background(), openPeriod("per-jun", "2025-06", "2025-06-01", "2025-06-30"))

	uc := usecase.NewJournalUseCase(
		mocks.NewMockTransactionManager(),
		d.journals,
		d.accounts,
		d.periods,
		d.sequences,
		d.outbox,
		d.audit,
		mocks.NewMockIDGenerator(),
		nil,
	)
	return uc, d
}

func saleLines(amount int64) []usecase.JournalLineInput {
	return []usecase.JournalLineInput{
		{AccountCode: "1000", Debit: decimal.NewFromInt(amount)},
		{AccountCode: "4000", Credit: decimal.NewFromInt(amount)},
	}
}

func saleInput(key string) usecase.CreateJournalInput {
	return usecase.CreateJournalInput{
		TenantID:       testTenantID,
		EntryDate:      mustDate("2025-06-15"),
		Description:    "cash sale",
		SourceType:     domain.SourceTypeSale,
		SourceID:       "sale-1",
		IdempotencyKey: key,
		Lines:          saleLines(100),
		Actor:          "tester",
	}
}

func TestJournalUseCase_CreateJournal(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*usecase.CreateJournalInput)
		expectError bool
		errorType   error
	}{
		{
			name:   "balanced entry posts",
			mutate: func(in *usecase.CreateJournalInput) {},
		},
		{
			name: "draft entry stays draft",
			mutate: func(in *usecase.CreateJournalInput) {
				in.AsDraft = true
			},
		},
		{
			name: "missing idempotency key",
			mutate: func(in *usecase.CreateJournalInput) {
				in.IdempotencyKey = ""
			},
			expectError: true,
			errorType:   domain.ErrIdempotencyKeyRequired,
		},
		{
			name: "invalid source type",
			mutate: func(in *usecase.CreateJournalInput) {
				in.SourceType = "NONSENSE"
			},
			expectError: true,
		},
		{
			name: "single line rejected",
			mutate: func(in *usecase.CreateJournalInput) {
				in.Lines = in.Lines[:1]
			},
			expectError: true,
		},
		{
			name: "unknown account code rejected",
			mutate: func(in *usecase.CreateJournalInput) {
				in.Lines[0].AccountCode = "9999"
			},
			expectError: true,
		},
		{
			name: "zero amount line rejected",
			mutate: func(in *usecase.CreateJournalInput) {
				in.Lines[0].Debit = decimal.Zero
				in.Lines[1].Credit = decimal.Zero
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, _ := newJournalUseCase()

			input := saleInput("key-" + tt.name)
			tt.mutate(&input)

			result, err := uc.CreateJournal(context.Background(), input)

			if tt.expectError {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if tt.errorType != nil && !errors.Is(err, tt.errorType) {
					t.Errorf("expected error %v, got %v", tt.errorType, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result.IsDuplicate {
				t.Error("expected IsDuplicate false on first create")
			}

			entry := result.Entry
			if input.AsDraft {
				if entry.Status != domain.JournalStatusDraft {
					t.Errorf("expected DRAFT, got %s", entry.Status)
				}
				if entry.PostedAt != nil {
					t.Error("draft must not carry a posted timestamp")
				}
			} else {
				if entry.Status != domain.JournalStatusPosted {
					t.Errorf("expected POSTED, got %s", entry.Status)
				}
				if entry.PostedAt == nil {
					t.Error("posted entry must carry a posted timestamp")
				}
			}
			if entry.Number != "JE-2025-000001" {
				t.Errorf("expected number JE-2025-000001, got %s", entry.Number)
			}
			if entry.PeriodID == nil || *entry.PeriodID != "per-jun" {
				t.Errorf("expected period per-jun, got %v", entry.PeriodID)
			}
		})
	}
}

func TestJournalUseCase_CreateJournal_Unbalanced(t *testing.T) {
	uc, _ := newJournalUseCase()

	input := saleInput("key-unbalanced")
	input.Lines[1].Credit = decimal.NewFromInt(90)

	_, err := uc.CreateJournal(context.Background(), input)

	var unbalanced *domain.UnbalancedEntryError
	if !errors.As(err, &unbalanced) {
		t.Fatalf("expected UnbalancedEntryError, got %v", err)
	}
	if !unbalanced.TotalDebit.Equal(decimal.NewFromInt(100)) || !unbalanced.TotalCredit.Equal(decimal.NewFromInt(90)) {
		t.Errorf("expected totals 100/90, got %s/%s", unbalanced.TotalDebit, unbalanced.TotalCredit)
	}
}

func TestJournalUseCase_CreateJournal_InactiveAccount(t *testing.T) {
	uc, d := newJournalUseCase()

	d.accounts.Create(context.Background(), &domain.Account{
		ID:            "acc-dormant",
		TenantID:      testTenantID,
		Code:          "4900",
		Name:          "Dormant Revenue",
		Type:          domain.AccountTypeIncome,
		NormalBalance: domain.NormalBalanceCredit,
		IsActive:      false,
	})

	input := saleInput("key-inactive")
	input.Lines[1].AccountCode = "4900"

	_, err := uc.CreateJournal(context.Background(), input)

	var invalid *domain.InvalidLineError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidLineError, got %v", err)
	}
}

func TestJournalUseCase_CreateJournal_Duplicate(t *testing.T) {
	uc, d := newJournalUseCase()
	ctx := context.Background()

	first, err := uc.CreateJournal(ctx, saleInput("key-dup"))
	if err != nil {
		t.Fatalf("first create: %v", err)
	}

	// Same key, different payload: the original entry wins unchanged.
	replay := saleInput("key-dup")
	replay.Description = "redelivered"
	second, err := uc.CreateJournal(ctx, replay)
	if err != nil {
		t.Fatalf("second create: %v", err)
	}

	if !second.IsDuplicate {
		t.Error("expected IsDuplicate true on replay")
	}
	if second.Entry.ID != first.Entry.ID {
		t.Errorf("expected original entry %s, got %s", first.Entry.ID, second.Entry.ID)
	}
	if second.Entry.Description != "cash sale" {
		t.Errorf("replay must not change the stored entry, got description %q", second.Entry.Description)
	}

	entries, err := d.journals.List(ctx, testTenantID, usecase.JournalFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("expected 1 stored entry, got %d", len(entries))
	}
	if events := d.outbox.Events(); len(events) != 1 {
		t.Errorf("expected 1 outbox event, got %d", len(events))
	}
}

func TestJournalUseCase_CreateJournal_PeriodStates(t *testing.T) {
	tests := []struct {
		name            string
		periodStatus    domain.PeriodStatus
		systemGenerated bool
		expectError     bool
	}{
		{"open period accepts manual entry", domain.PeriodStatusOpen, false, false},
		{"closed period rejects manual entry", domain.PeriodStatusClosed, false, true},
		{"closed period accepts system entry", domain.PeriodStatusClosed, true, false},
		{"locked period rejects manual entry", domain.PeriodStatusLocked, false, true},
		{"locked period rejects system entry", domain.PeriodStatusLocked, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, d := newJournalUseCase()

			period, _ := d.periods.GetByID(context.Background(), testTenantID, "per-jun")
			period.Status = tt.periodStatus

			input := saleInput("key-period")
			input.SystemGenerated = tt.systemGenerated

			_, err := uc.CreateJournal(context.Background(), input)

			if tt.expectError && err == nil {
				t.Fatal("expected error, got nil")
			}
			if !tt.expectError && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if tt.expectError {
				var closed *domain.PeriodClosedError
				var locked *domain.PeriodLockedError
				if !errors.As(err, &closed) && !errors.As(err, &locked) {
					t.Errorf("expected a period state error, got %v", err)
				}
			}
		})
	}
}

func TestJournalUseCase_CreateJournal_NoPeriodConfigured(t *testing.T) {
	uc, _ := newJournalUseCase()

	// No period covers January; the entry posts in grace mode.
	input := saleInput("key-noperiod")
	input.EntryDate = mustDate("2025-01-10")

	result, err := uc.CreateJournal(context.Background(), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Entry.Status != domain.JournalStatusPosted {
		t.Errorf("expected POSTED, got %s", result.Entry.Status)
	}
	if result.Entry.PeriodID != nil {
		t.Errorf("expected no period, got %v", *result.Entry.PeriodID)
	}
}

func TestJournalUseCase_PostJournal(t *testing.T) {
	uc, d := newJournalUseCase()
	ctx := context.Background()

	input := saleInput("key-draft")
	input.AsDraft = true
	draft, err := uc.CreateJournal(ctx, input)
	if err != nil {
		t.Fatalf("create draft: %v", err)
	}

	posted, err := uc.PostJournal(ctx, testTenantID, draft.Entry.ID, "tester")
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	if posted.Status != domain.JournalStatusPosted {
		t.Errorf("expected POSTED, got %s", posted.Status)
	}
	if posted.PostedAt == nil {
		t.Error("expected posted timestamp")
	}

	// journal.posted goes out when the draft posts, not when it is created.
	if events := d.outbox.Events(); len(events) != 1 || events[0].EventType != domain.EventTypeJournalPosted {
		t.Errorf("expected one journal.posted event, got %v", events)
	}

	if _, err := uc.PostJournal(ctx, testTenantID, draft.Entry.ID, "tester"); !errors.Is(err, domain.ErrJournalNotDraft) {
		t.Errorf("expected ErrJournalNotDraft, got %v", err)
	}

	if _, err := uc.PostJournal(ctx, testTenantID, "nope", "tester"); !errors.Is(err, domain.ErrJournalNotFound) {
		t.Errorf("expected ErrJournalNotFound, got %v", err)
	}
}

func TestJournalUseCase_PostJournal_ClosedPeriod(t *testing.T) {
	uc, d := newJournalUseCase()
	ctx := context.Background()

	input := saleInput("key-draft-closed")
	input.AsDraft = true
	draft, err := uc.CreateJournal(ctx, input)
	if err != nil {
		t.Fatalf("create draft: %v", err)
	}

	period, _ := d.periods.GetByID(ctx, testTenantID, "per-jun")
	period.Status = domain.PeriodStatusClosed

	_, err = uc.PostJournal(ctx, testTenantID, draft.Entry.ID, "tester")

	var closed *domain.PeriodClosedError
	if !errors.As(err, &closed) {
		t.Fatalf("expected PeriodClosedError, got %v", err)
	}
}

func TestJournalUseCase_VoidJournal(t *testing.T) {
	uc, _ := newJournalUseCase()
	ctx := context.Background()

	input := saleInput("key-void")
	input.AsDraft = true
	draft, err := uc.CreateJournal(ctx, input)
	if err != nil {
		t.Fatalf("create draft: %v", err)
	}

	if _, err := uc.VoidJournal(ctx, testTenantID, draft.Entry.ID, "", "tester"); !errors.Is(err, domain.ErrReasonRequired) {
		t.Errorf("expected ErrReasonRequired, got %v", err)
	}

	voided, err := uc.VoidJournal(ctx, testTenantID, draft.Entry.ID, "fat fingered", "tester")
	if err != nil {
		t.Fatalf("void: %v", err)
	}
	if voided.Status != domain.JournalStatusVoid {
		t.Errorf("expected VOID, got %s", voided.Status)
	}

	posted, err := uc.CreateJournal(ctx, saleInput("key-void-posted"))
	if err != nil {
		t.Fatalf("create posted: %v", err)
	}

	_, err = uc.VoidJournal(ctx, testTenantID, posted.Entry.ID, "mistake", "tester")
	var cannotVoid *domain.CannotVoidPostedError
	if !errors.As(err, &cannotVoid) {
		t.Fatalf("expected CannotVoidPostedError, got %v", err)
	}
}

func TestJournalUseCase_ReverseJournal(t *testing.T) {
	uc, d := newJournalUseCase()
	ctx := context.Background()

	original, err := uc.CreateJournal(ctx, saleInput("key-reverse"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := uc.ReverseJournal(ctx, testTenantID, original.Entry.ID, "", "tester"); !errors.Is(err, domain.ErrReasonRequired) {
		t.Errorf("expected ErrReasonRequired, got %v", err)
	}

	reversal, err := uc.ReverseJournal(ctx, testTenantID, original.Entry.ID, "customer refund", "tester")
	if err != nil {
		t.Fatalf("reverse: %v", err)
	}

	if reversal.Status != domain.JournalStatusPosted {
		t.Errorf("expected reversal POSTED, got %s", reversal.Status)
	}
	if reversal.ReversalOf == nil || *reversal.ReversalOf != original.Entry.ID {
		t.Errorf("expected ReversalOf %s, got %v", original.Entry.ID, reversal.ReversalOf)
	}

	// Debits and credits swap, amounts stay.
	if len(reversal.Lines) != 2 {
		t.Fatalf("expected 2 reversal lines, got %d", len(reversal.Lines))
	}
	if !reversal.Lines[0].Credit.Equal(decimal.NewFromInt(100)) {
		t.Errorf("expected line 1 credit 100, got %s", reversal.Lines[0].Credit)
	}
	if !reversal.Lines[1].Debit.Equal(decimal.NewFromInt(100)) {
		t.Errorf("expected line 2 debit 100, got %s", reversal.Lines[1].Debit)
	}

	stored, _ := d.journals.GetByID(ctx, testTenantID, original.Entry.ID)
	if stored.ReversedBy == nil || *stored.ReversedBy != reversal.ID {
		t.Errorf("expected original marked reversed by %s, got %v", reversal.ID, stored.ReversedBy)
	}

	_, err = uc.ReverseJournal(ctx, testTenantID, original.Entry.ID, "again", "tester")
	var already *domain.AlreadyReversedError
	if !errors.As(err, &already) {
		t.Fatalf("expected AlreadyReversedError, got %v", err)
	}
	if already.ReversedBy != reversal.ID {
		t.Errorf("expected ReversedBy %s, got %s", reversal.ID, already.ReversedBy)
	}
}

func TestJournalUseCase_ReverseJournal_DraftRejected(t *testing.T) {
	uc, _ := newJournalUseCase()
	ctx := context.Background()

	input := saleInput("key-reverse-draft")
	input.AsDraft = true
	draft, err := uc.CreateJournal(ctx, input)
	if err != nil {
		t.Fatalf("create draft: %v", err)
	}

	if _, err := uc.ReverseJournal(ctx, testTenantID, draft.Entry.ID, "reason", "tester"); !errors.Is(err, domain.ErrJournalNotPosted) {
		t.Errorf("expected ErrJournalNotPosted, got %v", err)
	}
}

func TestJournalUseCase_ListJournals(t *testing.T) {
	uc, _ := newJournalUseCase()
	ctx := context.Background()

	if _, err := uc.CreateJournal(ctx, saleInput("key-list-1")); err != nil {
		t.Fatalf("create: %v", err)
	}
	draft := saleInput("key-list-2")
	draft.AsDraft = true
	if _, err := uc.CreateJournal(ctx, draft); err != nil {
		t.Fatalf("create: %v", err)
	}

	posted, err := uc.ListJournals(ctx, testTenantID, usecase.JournalFilter{Status: domain.JournalStatusPosted})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(posted) != 1 {
		t.Errorf("expected 1 posted entry, got %d", len(posted))
	}

	all, err := uc.ListJournals(ctx, testTenantID, usecase.JournalFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("expected 2 entries, got %d", len(all))
	}
}
