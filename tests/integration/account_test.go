package integration

import (
	"context"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/fintech-kernel/acctd/internal/adapter/http/dto"
	"github.com/fintech-kernel/acctd/internal/usecase"
	"github.com/fintech-kernel/acctd/tests/testutil"
)

func TestChartOfAccounts(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()

	testDB := testutil.NewTestDB(t)
	defer testDB.Cleanup()

	testDB.TruncateAll(ctx)
	s := newStack(t, testDB)

	t.Run("onboarding seeds the default chart", func(t *testing.T) {
		testDB.TruncateAll(ctx)
		tenantID := s.createTenant(t, "Acme")

		w := s.do(t, http.MethodGet, "/api/v1/accounts/", tenantID, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
		}

		var list dto.ListAccountsResponse
		decodeJSON(t, w, &list)
		if list.Total != 9 {
			t.Errorf("expected 9 seeded accounts, got %d", list.Total)
		}

		w = s.do(t, http.MethodGet, "/api/v1/accounts/code/1000", tenantID, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
		}

		var cash dto.AccountResponse
		decodeJSON(t, w, &cash)
		if cash.Name != "Cash" || cash.NormalBalance != "DEBIT" || !cash.IsSystem {
			t.Errorf("unexpected cash account: %+v", cash)
		}
	})

	t.Run("custom accounts join the chart once", func(t *testing.T) {
		testDB.TruncateAll(ctx)
		tenantID := s.createTenant(t, "Acme")

		req := dto.CreateAccountRequest{Code: "1200", Name: "Inventory", Type: "ASSET"}
		w := s.do(t, http.MethodPost, "/api/v1/accounts/", tenantID, req)
		if w.Code != http.StatusCreated {
			t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, w.Code, w.Body.String())
		}

		var created dto.AccountResponse
		decodeJSON(t, w, &created)
		if created.IsSystem {
			t.Error("expected custom account to not be a system account")
		}
		if created.NormalBalance != "DEBIT" {
			t.Errorf("expected asset account to carry DEBIT normal balance, got %s", created.NormalBalance)
		}

		w = s.do(t, http.MethodPost, "/api/v1/accounts/", tenantID, req)
		if w.Code != http.StatusConflict {
			t.Fatalf("expected status %d for duplicate code, got %d: %s", http.StatusConflict, w.Code, w.Body.String())
		}
	})

	t.Run("system accounts cannot be deactivated", func(t *testing.T) {
		testDB.TruncateAll(ctx)
		tenantID := s.createTenant(t, "Acme")

		cash, err := s.accounts.GetByCode(ctx, tenantID, "1000")
		if err != nil {
			t.Fatalf("failed to load cash account: %v", err)
		}

		w := s.do(t, http.MethodPost, "/api/v1/accounts/"+cash.ID+"/deactivate", tenantID, nil)
		if w.Code != http.StatusConflict {
			t.Fatalf("expected status %d, got %d: %s", http.StatusConflict, w.Code, w.Body.String())
		}
	})

	t.Run("deactivated accounts refuse postings until reactivated", func(t *testing.T) {
		testDB.TruncateAll(ctx)
		tenantID := s.createTenant(t, "Acme")
		s.openPeriod(t, tenantID, "2025-06", "2025-06-01", "2025-06-30")

		w := s.do(t, http.MethodPost, "/api/v1/accounts/", tenantID, dto.CreateAccountRequest{
			Code: "1200", Name: "Inventory", Type: "ASSET",
		})
		if w.Code != http.StatusCreated {
			t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, w.Code, w.Body.String())
		}
		var inventory dto.AccountResponse
		decodeJSON(t, w, &inventory)

		w = s.do(t, http.MethodPost, "/api/v1/accounts/"+inventory.ID+"/deactivate", tenantID, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("expected status %d deactivating, got %d: %s", http.StatusOK, w.Code, w.Body.String())
		}

		payload := saleJournal("inactive-line", 30)
		payload["lines"] = []map[string]any{
			{"account_code": "1200", "debit": 30},
			{"account_code": "4000", "credit": 30},
		}
		w = s.do(t, http.MethodPost, "/api/v1/journals/", tenantID, payload)
		if w.Code != http.StatusConflict {
			t.Fatalf("expected status %d posting to inactive account, got %d: %s", http.StatusConflict, w.Code, w.Body.String())
		}

		w = s.do(t, http.MethodPost, "/api/v1/accounts/"+inventory.ID+"/reactivate", tenantID, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("expected status %d reactivating, got %d: %s", http.StatusOK, w.Code, w.Body.String())
		}

		w = s.do(t, http.MethodPost, "/api/v1/journals/", tenantID, payload)
		if w.Code != http.StatusCreated {
			t.Fatalf("expected status %d after reactivation, got %d: %s", http.StatusCreated, w.Code, w.Body.String())
		}
	})

	t.Run("balance and statement track posted activity", func(t *testing.T) {
		testDB.TruncateAll(ctx)
		tenantID := s.createTenant(t, "Acme")
		s.openPeriod(t, tenantID, "2025-06", "2025-06-01", "2025-06-30")

		s.postJournal(t, tenantID, saleJournal("bal-1", 100))
		s.postJournal(t, tenantID, saleJournal("bal-2", 40))

		cash, err := s.accounts.GetByCode(ctx, tenantID, "1000")
		if err != nil {
			t.Fatalf("failed to load cash account: %v", err)
		}

		w := s.do(t, http.MethodGet, "/api/v1/accounts/"+cash.ID+"/balance?as_of=2025-06-30", tenantID, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
		}

		var balance usecase.AccountBalance
		decodeJSON(t, w, &balance)
		if !balance.Balance.Equal(decimal.NewFromInt(140)) {
			t.Errorf("expected cash balance 140, got %s", balance.Balance)
		}

		w = s.do(t, http.MethodGet, "/api/v1/accounts/"+cash.ID+"/ledger?from=2025-06-01&to=2025-06-30", tenantID, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
		}

		var ledger usecase.AccountLedger
		decodeJSON(t, w, &ledger)
		if len(ledger.Entries) != 2 {
			t.Fatalf("expected 2 ledger entries, got %d", len(ledger.Entries))
		}
		if !ledger.Entries[1].Running.Equal(decimal.NewFromInt(140)) {
			t.Errorf("expected running balance 140 after second entry, got %s", ledger.Entries[1].Running)
		}
		if !ledger.ClosingBalance.Equal(decimal.NewFromInt(140)) {
			t.Errorf("expected closing balance 140, got %s", ledger.ClosingBalance)
		}
	})
}
