package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fintech-kernel/acctd/internal/domain"
)

// TenantUseCase manages tenants and their posting configuration.
type TenantUseCase struct {
	tenantRepo TenantRepository
	accounts   *AccountUseCase
	auditRepo  AuditRepository
	idGen      IDGenerator
}

// NewTenantUseCase creates a new TenantUseCase. The account use case seeds
// the default chart for new tenants.
func NewTenantUseCase(
	tenantRepo TenantRepository,
	accounts *AccountUseCase,
	auditRepo AuditRepository,
	idGen IDGenerator,
) *TenantUseCase {
	return &TenantUseCase{
		tenantRepo: tenantRepo,
		accounts:   accounts,
		auditRepo:  auditRepo,
		idGen:      idGen,
	}
}

// CreateTenantInput represents input for onboarding a tenant.
type CreateTenantInput struct {
	Name     string
	Currency string
	Actor    string
}

// CreateTenant onboards a tenant with the default posting configuration and
// seeds its chart of accounts.
func (uc *TenantUseCase) CreateTenant(ctx context.Context, input CreateTenantInput) (*domain.Tenant, error) {
	if input.Name == "" {
		return nil, fmt.Errorf("tenant name is required")
	}
	currency := strings.ToUpper(strings.TrimSpace(input.Currency))
	if err := domain.ValidateCurrency(currency); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	tenant := &domain.Tenant{
		ID:        uc.idGen.Generate(),
		Name:      input.Name,
		Currency:  currency,
		IsActive:  true,
		Config:    domain.DefaultPostingConfig(),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := uc.tenantRepo.Create(ctx, tenant); err != nil {
		return nil, err
	}

	// Seeding is idempotent: a retry after a partial failure fills the gaps.
	if _, err := uc.accounts.SeedDefaultAccounts(ctx, tenant.ID, input.Actor); err != nil {
		return nil, fmt.Errorf("seed chart of accounts: %w", err)
	}

	if uc.auditRepo != nil {
		_ = uc.auditRepo.Create(ctx, &domain.AuditLog{
			ID:           uc.idGen.Generate(),
			TenantID:     tenant.ID,
			Actor:        input.Actor,
			Action:       domain.AuditActionTenantCreate,
			ResourceType: "tenant",
			ResourceID:   tenant.ID,
			AfterState:   domain.MarshalState(tenant),
			Status:       domain.AuditStatusSuccess,
			CreatedAt:    time.Now(),
		})
	}

	return tenant, nil
}

// GetTenant retrieves a tenant.
func (uc *TenantUseCase) GetTenant(ctx context.Context, id string) (*domain.Tenant, error) {
	return uc.tenantRepo.GetByID(ctx, id)
}

// ListTenants retrieves tenants.
func (uc *TenantUseCase) ListTenants(ctx context.Context, limit, offset int) ([]*domain.Tenant, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	return uc.tenantRepo.List(ctx, limit, offset)
}

// UpdatePostingConfig replaces the tenant's auto-posting account mapping and
// period policy.
func (uc *TenantUseCase) UpdatePostingConfig(ctx context.Context, tenantID string, cfg domain.PostingConfig, actor string) (*domain.Tenant, error) {
	if err := validatePostingConfig(&cfg); err != nil {
		return nil, err
	}

	tenant, err := uc.tenantRepo.GetByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	before := domain.MarshalState(tenant.Config)
	now := time.Now().UTC()

	if err := uc.tenantRepo.UpdateConfig(ctx, tenantID, cfg, now); err != nil {
		return nil, err
	}
	tenant.Config = cfg
	tenant.UpdatedAt = now

	if uc.auditRepo != nil {
		_ = uc.auditRepo.Create(ctx, &domain.AuditLog{
			ID:           uc.idGen.Generate(),
			TenantID:     tenantID,
			Actor:        actor,
			Action:       domain.AuditActionTenantConfigUpdate,
			ResourceType: "tenant",
			ResourceID:   tenantID,
			BeforeState:  before,
			AfterState:   domain.MarshalState(cfg),
			Status:       domain.AuditStatusSuccess,
			CreatedAt:    time.Now(),
		})
	}

	return tenant, nil
}

func validatePostingConfig(cfg *domain.PostingConfig) error {
	required := map[string]string{
		"cash account":              cfg.CashAccountCode,
		"receivable account":        cfg.ReceivableAccountCode,
		"payable account":           cfg.PayableAccountCode,
		"sales account":             cfg.SalesAccountCode,
		"expense account":           cfg.ExpenseAccountCode,
		"retained earnings account": cfg.RetainedEarningsCode,
	}
	for name, code := range required {
		if code == "" {
			return fmt.Errorf("posting config is missing the %s code", name)
		}
	}

	if cfg.BankAccountCode == "" {
		cfg.BankAccountCode = cfg.CashAccountCode
	}
	if cfg.PurchasesAccountCode == "" {
		cfg.PurchasesAccountCode = cfg.ExpenseAccountCode
	}

	switch cfg.CloseWithDrafts {
	case "":
		cfg.CloseWithDrafts = domain.DraftPolicyBlock
	case domain.DraftPolicyBlock, domain.DraftPolicyAllow:
	default:
		return fmt.Errorf("unknown draft policy %q", cfg.CloseWithDrafts)
	}

	return nil
}
