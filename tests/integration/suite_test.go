package integration

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	redislib "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	adaptershttp "github.com/fintech-kernel/acctd/internal/adapter/http"
	"github.com/fintech-kernel/acctd/internal/adapter/http/dto"
	"github.com/fintech-kernel/acctd/internal/adapter/http/handler"
	"github.com/fintech-kernel/acctd/internal/adapter/http/middleware"
	postgresrepo "github.com/fintech-kernel/acctd/internal/adapter/repository/postgres"
	redisrepo "github.com/fintech-kernel/acctd/internal/adapter/repository/redis"
	"github.com/fintech-kernel/acctd/internal/usecase"
	"github.com/fintech-kernel/acctd/tests/testutil"
)

// stack wires the full service against the test database and an in-process
// Redis, exposing both the HTTP surface and the repositories behind it so
// tests can verify persisted state directly.
type stack struct {
	router    http.Handler
	redis     *redislib.Client
	journals  *postgresrepo.JournalRepository
	accounts  *postgresrepo.AccountRepository
	subledger *postgresrepo.SubledgerRepository
	outbox    *postgresrepo.OutboxRepository
	autoPost  *usecase.AutoPostingUseCase
}

func newStack(t *testing.T, testDB *testutil.TestDB) *stack {
	t.Helper()

	pool := testDB.Pool

	mr := miniredis.RunT(t)
	redisClient := redislib.NewClient(&redislib.Options{Addr: mr.Addr()})
	t.Cleanup(func() { redisClient.Close() })

	txManager := postgresrepo.NewTxManager(pool)
	tenantRepo := postgresrepo.NewTenantRepository(pool)
	accountRepo := postgresrepo.NewAccountRepository(pool)
	journalRepo := postgresrepo.NewJournalRepository(pool)
	ledgerRepo := postgresrepo.NewLedgerRepository(pool)
	periodRepo := postgresrepo.NewPeriodRepository(pool)
	subledgerRepo := postgresrepo.NewSubledgerRepository(pool)
	sequenceRepo := postgresrepo.NewSequenceRepository(pool)
	outboxRepo := postgresrepo.NewOutboxRepository(pool)
	auditRepo := postgresrepo.NewAuditRepository(pool)
	idGen := postgresrepo.NewULIDGenerator()
	cache := redisrepo.NewCache(redisClient)
	dedup := redisrepo.NewDedupStore(redisClient)

	accountUC := usecase.NewAccountUseCase(txManager, accountRepo, auditRepo, idGen)
	tenantUC := usecase.NewTenantUseCase(tenantRepo, accountUC, auditRepo, idGen)
	journalUC := usecase.NewJournalUseCase(txManager, journalRepo, accountRepo, periodRepo, sequenceRepo, outboxRepo, auditRepo, idGen, nil)
	ledgerUC := usecase.NewLedgerUseCase(ledgerRepo, accountRepo, cache, time.Minute, nil)
	reportUC := usecase.NewReportUseCase(ledgerRepo, tenantRepo, cache, time.Minute, nil)
	periodUC := usecase.NewPeriodUseCase(txManager, periodRepo, journalRepo, ledgerRepo, tenantRepo, outboxRepo, auditRepo, journalUC, idGen, nil)
	subledgerUC := usecase.NewSubledgerUseCase(txManager, subledgerRepo, outboxRepo, auditRepo, idGen, nil)
	autoPostingUC := usecase.NewAutoPostingUseCase(txManager, tenantRepo, journalUC, subledgerUC, dedup, nil)

	router := adaptershttp.NewRouter(adaptershttp.RouterConfig{
		TenantHandler:    handler.NewTenantHandler(tenantUC),
		AccountHandler:   handler.NewAccountHandler(accountUC),
		JournalHandler:   handler.NewJournalHandler(journalUC),
		LedgerHandler:    handler.NewLedgerHandler(ledgerUC),
		ReportHandler:    handler.NewReportHandler(reportUC),
		PeriodHandler:    handler.NewPeriodHandler(periodUC),
		SubledgerHandler: handler.NewSubledgerHandler(subledgerUC),
		AuditHandler:     handler.NewAuditHandler(auditRepo),
		HealthHandler:    handler.NewHealthHandler(pool, redisClient),
		Logger:           zerolog.Nop(),
	})

	return &stack{
		router:    router,
		redis:     redisClient,
		journals:  journalRepo,
		accounts:  accountRepo,
		subledger: subledgerRepo,
		outbox:    outboxRepo,
		autoPost:  autoPostingUC,
	}
}

// do sends a request through the router. An empty tenantID skips the
// X-Tenant-ID header; a nil payload sends no body.
func (s *stack) do(t *testing.T, method, path, tenantID string, payload any) *httptest.ResponseRecorder {
	t.Helper()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("failed to marshal request: %v", err)
		}
		body = bytes.NewReader(raw)
	}

	r := httptest.NewRequest(method, path, body)
	if payload != nil {
		r.Header.Set("Content-Type", "application/json")
	}
	if tenantID != "" {
		r.Header.Set(middleware.HeaderTenantID, tenantID)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, r)
	return w
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()

	if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
		t.Fatalf("failed to parse response %q: %v", w.Body.String(), err)
	}
}

// createTenant onboards a tenant through the API, which also seeds the
// default chart of accounts, and returns the tenant ID.
func (s *stack) createTenant(t *testing.T, name string) string {
	t.Helper()

	w := s.do(t, http.MethodPost, "/api/v1/tenants/", "", dto.CreateTenantRequest{
		Name:     name,
		Currency: "USD",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected status %d creating tenant, got %d: %s", http.StatusCreated, w.Code, w.Body.String())
	}

	var resp dto.TenantResponse
	decodeJSON(t, w, &resp)
	return resp.ID
}

// openPeriod opens a fiscal period for the tenant. Dates are day precision.
func (s *stack) openPeriod(t *testing.T, tenantID, name, start, end string) *dto.PeriodResponse {
	t.Helper()

	w := s.do(t, http.MethodPost, "/api/v1/periods/", tenantID, map[string]string{
		"name":       name,
		"start_date": start,
		"end_date":   end,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected status %d opening period, got %d: %s", http.StatusCreated, w.Code, w.Body.String())
	}

	var resp dto.PeriodResponse
	decodeJSON(t, w, &resp)
	return &resp
}

func mustDate(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

// saleJournal builds a balanced cash sale request against the seeded chart.
func saleJournal(key string, amount int64) map[string]any {
	return map[string]any{
		"entry_date":      "2025-06-15",
		"description":     "cash sale",
		"source_type":     "SALE",
		"source_id":       "sale-" + key,
		"idempotency_key": key,
		"lines": []map[string]any{
			{"account_code": "1000", "debit": amount},
			{"account_code": "4000", "credit": amount},
		},
	}
}

// postJournal records a posted journal entry and returns the response.
func (s *stack) postJournal(t *testing.T, tenantID string, payload map[string]any) *dto.JournalResponse {
	t.Helper()

	w := s.do(t, http.MethodPost, "/api/v1/journals/", tenantID, payload)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected status %d creating journal, got %d: %s", http.StatusCreated, w.Code, w.Body.String())
	}

	var resp dto.JournalResponse
	decodeJSON(t, w, &resp)
	return &resp
}
