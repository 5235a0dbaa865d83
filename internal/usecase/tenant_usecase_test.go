package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/fintech-kernel/acctd/internal/domain"
	"github.com/fintech-kernel/acctd/internal/usecase"
	"github.com/fintech-kernel/acctd/internal/usecase/mocks"
)

type tenantDeps struct {
	tenants  *mocks.MockTenantRepository
	accounts *mocks.MockAccountRepository
	audit    *mocks.MockAuditRepository
}

func newTenantUseCase() (*usecase.TenantUseCase, tenantDeps) {
	deps := tenantDeps{
		tenants:  mocks.NewMockTenantRepository(),
		accounts: mocks.NewMockAccountRepository(),
		audit:    mocks.NewMockAuditRepository(),
	}
	idGen := mocks.NewMockIDGenerator()
	accountUC := usecase.NewAccountUseCase(mocks.NewMockTransactionManager(), deps.accounts, deps.audit, idGen)
	uc := usecase.NewTenantUseCase(deps.tenants, accountUC, deps.audit, idGen)
	return uc, deps
}

func TestTenantUseCase_CreateTenant(t *testing.T) {
	uc, deps := newTenantUseCase()
	ctx := context.Background()

	tenant, err := uc.CreateTenant(ctx, usecase.CreateTenantInput{
		Name:     "Acme Tools",
		Currency: "usd",
		Actor:    "onboarding",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !tenant.IsActive {
		t.Error("expected a new tenant to be active")
	}
	if tenant.Currency != "USD" {
		t.Errorf("expected the currency to be normalized to USD, got %s", tenant.Currency)
	}
	if tenant.Config.CashAccountCode != "1000" || tenant.Config.RetainedEarningsCode != "3900" {
		t.Errorf("expected the default posting config, got %+v", tenant.Config)
	}
	if tenant.Config.CloseWithDrafts != domain.DraftPolicyBlock {
		t.Errorf("expected the block draft policy by default, got %s", tenant.Config.CloseWithDrafts)
	}

	stored, err := deps.tenants.GetByID(ctx, tenant.ID)
	if err != nil {
		t.Fatalf("tenant was not persisted: %v", err)
	}
	if stored.Name != "Acme Tools" {
		t.Errorf("expected stored name Acme Tools, got %s", stored.Name)
	}

	chart, err := deps.accounts.List(ctx, tenant.ID, usecase.AccountFilter{Limit: 50})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chart) != 9 {
		t.Fatalf("expected 9 seeded accounts, got %d", len(chart))
	}

	byCode := make(map[string]*domain.Account, len(chart))
	for _, acc := range chart {
		byCode[acc.Code] = acc
	}
	if acc := byCode["1000"]; acc == nil || !acc.IsSystem || acc.NormalBalance != domain.NormalBalanceDebit {
		t.Errorf("expected 1000 to be a system debit-normal account, got %+v", acc)
	}
	if acc := byCode["4000"]; acc == nil || acc.NormalBalance != domain.NormalBalanceCredit {
		t.Errorf("expected 4000 to be credit-normal, got %+v", acc)
	}
	if acc := byCode["3000"]; acc == nil || acc.IsSystem {
		t.Errorf("expected 3000 Owner Capital to be a regular account, got %+v", acc)
	}

	var tenantCreates, accountCreates int
	for _, log := range deps.audit.Logs() {
		switch log.Action {
		case domain.AuditActionTenantCreate:
			tenantCreates++
		case domain.AuditActionAccountCreate:
			accountCreates++
		}
	}
	if tenantCreates != 1 {
		t.Errorf("expected one tenant.create audit entry, got %d", tenantCreates)
	}
	if accountCreates != 9 {
		t.Errorf("expected nine account.create audit entries, got %d", accountCreates)
	}
}

func TestTenantUseCase_CreateTenant_Validation(t *testing.T) {
	uc, _ := newTenantUseCase()
	ctx := context.Background()

	cases := []struct {
		name  string
		input usecase.CreateTenantInput
		check func(*testing.T, error)
	}{
		{
			name:  "missing name",
			input: usecase.CreateTenantInput{Currency: "USD"},
			check: func(t *testing.T, err error) {
				if err == nil {
					t.Error("expected an error")
				}
			},
		},
		{
			name:  "unknown currency",
			input: usecase.CreateTenantInput{Name: "Acme", Currency: "DOUBLOONS"},
			check: func(t *testing.T, err error) {
				if !errors.Is(err, domain.ErrInvalidCurrency) {
					t.Errorf("expected ErrInvalidCurrency, got %v", err)
				}
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := uc.CreateTenant(ctx, tc.input)
			tc.check(t, err)
		})
	}
}

func TestTenantUseCase_UpdatePostingConfig(t *testing.T) {
	uc, deps := newTenantUseCase()
	ctx := context.Background()

	tenant, err := uc.CreateTenant(ctx, usecase.CreateTenantInput{Name: "Acme", Currency: "EUR", Actor: "onboarding"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cfg := domain.DefaultPostingConfig()
	cfg.BankAccountCode = "1020"
	cfg.PaymentMethodAccounts = map[string]string{"wallet": "1030"}
	cfg.CloseWithDrafts = domain.DraftPolicyAllow

	updated, err := uc.UpdatePostingConfig(ctx, tenant.ID, cfg, "ops")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Config.BankAccountCode != "1020" {
		t.Errorf("expected bank code 1020, got %s", updated.Config.BankAccountCode)
	}

	stored, err := deps.tenants.GetByID(ctx, tenant.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored.Config.PaymentMethodAccounts["wallet"] != "1030" {
		t.Errorf("expected the wallet mapping to persist, got %+v", stored.Config.PaymentMethodAccounts)
	}
	if stored.Config.CloseWithDrafts != domain.DraftPolicyAllow {
		t.Errorf("expected the allow policy to persist, got %s", stored.Config.CloseWithDrafts)
	}

	var found bool
	for _, log := range deps.audit.Logs() {
		if log.Action != domain.AuditActionTenantConfigUpdate {
			continue
		}
		found = true
		if len(log.BeforeState) == 0 || len(log.AfterState) == 0 {
			t.Error("expected the audit entry to carry before and after state")
		}
	}
	if !found {
		t.Error("expected a tenant.config_update audit entry")
	}
}

func TestTenantUseCase_UpdatePostingConfig_Defaults(t *testing.T) {
	uc, _ := newTenantUseCase()
	ctx := context.Background()

	tenant, err := uc.CreateTenant(ctx, usecase.CreateTenantInput{Name: "Acme", Currency: "USD"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Bank falls back to cash, purchases to expense, empty policy to block.
	cfg := domain.PostingConfig{
		CashAccountCode:       "1000",
		ReceivableAccountCode: "1100",
		PayableAccountCode:    "2000",
		SalesAccountCode:      "4000",
		ExpenseAccountCode:    "6000",
		RetainedEarningsCode:  "3900",
	}

	updated, err := uc.UpdatePostingConfig(ctx, tenant.ID, cfg, "ops")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Config.BankAccountCode != "1000" {
		t.Errorf("expected the bank code to default to cash, got %s", updated.Config.BankAccountCode)
	}
	if updated.Config.PurchasesAccountCode != "6000" {
		t.Errorf("expected the purchases code to default to expense, got %s", updated.Config.PurchasesAccountCode)
	}
	if updated.Config.CloseWithDrafts != domain.DraftPolicyBlock {
		t.Errorf("expected the block policy by default, got %s", updated.Config.CloseWithDrafts)
	}
}

func TestTenantUseCase_UpdatePostingConfig_Validation(t *testing.T) {
	uc, deps := newTenantUseCase()
	ctx := context.Background()

	tenant, err := uc.CreateTenant(ctx, usecase.CreateTenantInput{Name: "Acme", Currency: "USD"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	missing := domain.DefaultPostingConfig()
	missing.RetainedEarningsCode = ""
	if _, err := uc.UpdatePostingConfig(ctx, tenant.ID, missing, "ops"); err == nil {
		t.Error("expected an error for a missing retained earnings code")
	}

	badPolicy := domain.DefaultPostingConfig()
	badPolicy.CloseWithDrafts = "defer"
	if _, err := uc.UpdatePostingConfig(ctx, tenant.ID, badPolicy, "ops"); err == nil {
		t.Error("expected an error for an unknown draft policy")
	}

	stored, err := deps.tenants.GetByID(ctx, tenant.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored.Config.RetainedEarningsCode != "3900" {
		t.Error("expected the stored config to be untouched after rejected updates")
	}
}

func TestTenantUseCase_ListTenants(t *testing.T) {
	uc, _ := newTenantUseCase()
	ctx := context.Background()

	for _, name := range []string{"Acme", "Globex"} {
		if _, err := uc.CreateTenant(ctx, usecase.CreateTenantInput{Name: name, Currency: "USD"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	tenants, err := uc.ListTenants(ctx, 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tenants) != 2 {
		t.Errorf("expected 2 tenants, got %d", len(tenants))
	}
}
