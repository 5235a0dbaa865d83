package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fintech-kernel/acctd/internal/domain"
)

// AccountUseCase handles chart-of-accounts business logic.
type AccountUseCase struct {
	txManager   TransactionManager
	accountRepo AccountRepository
	auditRepo   AuditRepository
	idGen       IDGenerator
}

// NewAccountUseCase creates a new AccountUseCase.
func NewAccountUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	auditRepo AuditRepository,
	idGen IDGenerator,
) *AccountUseCase {
	return &AccountUseCase{
		txManager:   txManager,
		accountRepo: accountRepo,
		auditRepo:   auditRepo,
		idGen:       idGen,
	}
}

// CreateAccountInput represents input for creating an account.
type CreateAccountInput struct {
	TenantID string
	Code     string
	Name     string
	Type     domain.AccountType
	ParentID *string
	Actor    string
}

// CreateAccount adds an account to the tenant's chart. The normal balance is
// derived from the account type, never supplied by the caller.
func (uc *AccountUseCase) CreateAccount(ctx context.Context, input CreateAccountInput) (*domain.Account, error) {
	if err := domain.ValidateAccountCode(input.Code); err != nil {
		return nil, err
	}
	if err := domain.ValidateAccountName(input.Name); err != nil {
		return nil, err
	}
	if !domain.ValidAccountType(input.Type) {
		return nil, fmt.Errorf("invalid account type: %s", input.Type)
	}

	if input.ParentID != nil {
		if _, err := uc.accountRepo.GetByID(ctx, input.TenantID, *input.ParentID); err != nil {
			return nil, fmt.Errorf("resolve parent account: %w", err)
		}
	}

	now := time.Now().UTC()

	account := &domain.Account{
		ID:            uc.idGen.Generate(),
		TenantID:      input.TenantID,
		Code:          input.Code,
		Name:          input.Name,
		Type:          input.Type,
		NormalBalance: domain.NormalBalanceFor(input.Type),
		ParentID:      input.ParentID,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := uc.accountRepo.Create(ctx, account); err != nil {
		return nil, err
	}

	uc.audit(ctx, input.TenantID, input.Actor, domain.AuditActionAccountCreate, account.ID, "", nil, account)

	return account, nil
}

// GetAccount retrieves an account by ID.
func (uc *AccountUseCase) GetAccount(ctx context.Context, tenantID, id string) (*domain.Account, error) {
	return uc.accountRepo.GetByID(ctx, tenantID, id)
}

// GetAccountByCode retrieves an account by its chart code.
func (uc *AccountUseCase) GetAccountByCode(ctx context.Context, tenantID, code string) (*domain.Account, error) {
	return uc.accountRepo.GetByCode(ctx, tenantID, code)
}

// ListAccounts retrieves accounts matching the filter.
func (uc *AccountUseCase) ListAccounts(ctx context.Context, tenantID string, filter AccountFilter) ([]*domain.Account, error) {
	if filter.Limit <= 0 {
		filter.Limit = DefaultListLimit
	}
	return uc.accountRepo.List(ctx, tenantID, filter)
}

// AccountNode is one chart entry with its children nested beneath it.
type AccountNode struct {
	Account  *domain.Account
	Children []*AccountNode
}

// GetAccountTree returns the chart as a forest ordered by code. An account
// whose parent is missing is hoisted to the root level rather than dropped.
func (uc *AccountUseCase) GetAccountTree(ctx context.Context, tenantID string) ([]*AccountNode, error) {
	accounts, err := uc.accountRepo.List(ctx, tenantID, AccountFilter{Limit: ChartListLimit})
	if err != nil {
		return nil, err
	}

	nodes := make(map[string]*AccountNode, len(accounts))
	for _, account := range accounts {
		nodes[account.ID] = &AccountNode{Account: account}
	}

	roots := make([]*AccountNode, 0, len(accounts))
	for _, account := range accounts {
		node := nodes[account.ID]
		if account.ParentID != nil {
			if parent, ok := nodes[*account.ParentID]; ok {
				parent.Children = append(parent.Children, node)
				continue
			}
		}
		roots = append(roots, node)
	}

	return roots, nil
}

// DeactivateAccount stops an account from receiving new postings. Historical
// lines keep referencing it. System accounts cannot be deactivated.
func (uc *AccountUseCase) DeactivateAccount(ctx context.Context, tenantID, id, actor string) (*domain.Account, error) {
	return uc.setActive(ctx, tenantID, id, actor, false)
}

// ReactivateAccount makes a deactivated account postable again.
func (uc *AccountUseCase) ReactivateAccount(ctx context.Context, tenantID, id, actor string) (*domain.Account, error) {
	return uc.setActive(ctx, tenantID, id, actor, true)
}

func (uc *AccountUseCase) setActive(ctx context.Context, tenantID, id, actor string, active bool) (*domain.Account, error) {
	account, err := uc.accountRepo.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if !active && account.IsSystem {
		return nil, domain.ErrSystemAccount
	}
	if account.IsActive == active {
		return account, nil
	}

	before := *account
	now := time.Now().UTC()

	if err := uc.accountRepo.SetActive(ctx, tenantID, id, active, now); err != nil {
		return nil, err
	}

	account.IsActive = active
	account.UpdatedAt = now

	if !active {
		uc.audit(ctx, tenantID, actor, domain.AuditActionAccountDeactivate, id, "", &before, account)
	}

	return account, nil
}

// SeedDefaultAccounts creates the standard chart referenced by the default
// posting configuration. Codes that already exist are left untouched, so the
// call is safe to repeat.
func (uc *AccountUseCase) SeedDefaultAccounts(ctx context.Context, tenantID, actor string) ([]*domain.Account, error) {
	codes := make([]string, 0, len(defaultChart))
	for _, tpl := range defaultChart {
		codes = append(codes, tpl.Code)
	}

	existing, err := uc.accountRepo.GetByCodes(ctx, tenantID, codes)
	if err != nil {
		return nil, err
	}
	taken := make(map[string]bool, len(existing))
	for _, acc := range existing {
		taken[acc.Code] = true
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	now := time.Now().UTC()
	created := make([]*domain.Account, 0, len(defaultChart))

	for _, tpl := range defaultChart {
		if taken[tpl.Code] {
			continue
		}

		account := &domain.Account{
			ID:            uc.idGen.Generate(),
			TenantID:      tenantID,
			Code:          tpl.Code,
			Name:          tpl.Name,
			Type:          tpl.Type,
			NormalBalance: domain.NormalBalanceFor(tpl.Type),
			IsActive:      true,
			IsSystem:      tpl.System,
			CreatedAt:     now,
			UpdatedAt:     now,
		}

		if err := uc.accountRepo.CreateTx(txCtx, tx, account); err != nil {
			// Lost a race with a concurrent seed. The existing row wins.
			if errors.Is(err, domain.ErrAccountCodeTaken) {
				continue
			}
			return nil, err
		}

		created = append(created, account)
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	for _, account := range created {
		uc.audit(ctx, tenantID, actor, domain.AuditActionAccountCreate, account.ID, "seed", nil, account)
	}

	return created, nil
}

func (uc *AccountUseCase) audit(ctx context.Context, tenantID, actor string, action domain.AuditAction, resourceID, reason string, before, after any) {
	if uc.auditRepo == nil {
		return
	}

	_ = uc.auditRepo.Create(ctx, &domain.AuditLog{
		ID:           uc.idGen.Generate(),
		TenantID:     tenantID,
		Actor:        actor,
		Action:       action,
		ResourceType: "account",
		ResourceID:   resourceID,
		Reason:       reason,
		BeforeState:  domain.MarshalState(before),
		AfterState:   domain.MarshalState(after),
		Status:       domain.AuditStatusSuccess,
		CreatedAt:    time.Now().UTC(),
	})
}

// defaultChart is the seed chart of accounts. Codes line up with
// domain.DefaultPostingConfig.
var defaultChart = []struct {
	Code   string
	Name   string
	Type   domain.AccountType
	System bool
}{
	{"1000", "Cash", domain.AccountTypeAsset, true},
	{"1010", "Bank", domain.AccountTypeAsset, true},
	{"1100", "Accounts Receivable", domain.AccountTypeAsset, true},
	{"2000", "Accounts Payable", domain.AccountTypeLiability, true},
	{"3000", "Owner Capital", domain.AccountTypeEquity, false},
	{"3900", "Retained Earnings", domain.AccountTypeEquity, true},
	{"4000", "Sales Revenue", domain.AccountTypeIncome, true},
	{"5000", "Purchases", domain.AccountTypeExpense, true},
	{"6000", "General Expense", domain.AccountTypeExpense, true},
}
