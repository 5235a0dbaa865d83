package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/fintech-kernel/acctd/internal/adapter/http/handler"
	"github.com/fintech-kernel/acctd/internal/adapter/http/middleware"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	TenantHandler    *handler.TenantHandler
	AccountHandler   *handler.AccountHandler
	JournalHandler   *handler.JournalHandler
	LedgerHandler    *handler.LedgerHandler
	ReportHandler    *handler.ReportHandler
	PeriodHandler    *handler.PeriodHandler
	SubledgerHandler *handler.SubledgerHandler
	AuditHandler     *handler.AuditHandler
	HealthHandler    *handler.HealthHandler
	Logger           zerolog.Logger
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery)
	r.Use(middleware.Metrics)

	// Health and metrics endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Tenant administration is addressed by path, not by the
		// X-Tenant-ID header, so it sits outside the scoped group.
		r.Route("/tenants", func(r chi.Router) {
			r.Post("/", cfg.TenantHandler.Create)
			r.Get("/", cfg.TenantHandler.List)
			r.Get("/{id}", cfg.TenantHandler.Get)
			r.Put("/{id}/config", cfg.TenantHandler.UpdateConfig)
		})

		// Everything below requires the X-Tenant-ID header.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Tenant)

			r.Route("/accounts", func(r chi.Router) {
				r.Post("/", cfg.AccountHandler.Create)
				r.Get("/", cfg.AccountHandler.List)
				r.Get("/tree", cfg.AccountHandler.Tree)
				r.Get("/code/{code}", cfg.AccountHandler.GetByCode)
				r.Get("/{id}", cfg.AccountHandler.Get)
				r.Post("/{id}/deactivate", cfg.AccountHandler.Deactivate)
				r.Post("/{id}/reactivate", cfg.AccountHandler.Reactivate)
				r.Get("/{id}/balance", cfg.LedgerHandler.Balance)
				r.Get("/{id}/ledger", cfg.LedgerHandler.Ledger)
			})

			r.Route("/journals", func(r chi.Router) {
				r.Post("/", cfg.JournalHandler.Create)
				r.Get("/", cfg.JournalHandler.List)
				r.Get("/{id}", cfg.JournalHandler.Get)
				r.Post("/{id}/post", cfg.JournalHandler.Post)
				r.Post("/{id}/void", cfg.JournalHandler.Void)
				r.Post("/{id}/reverse", cfg.JournalHandler.Reverse)
			})

			r.Route("/ledger", func(r chi.Router) {
				r.Get("/trial-balance", cfg.LedgerHandler.TrialBalance)
				r.Get("/consistency", cfg.LedgerHandler.Consistency)
			})

			r.Route("/reports", func(r chi.Router) {
				r.Get("/income-statement", cfg.ReportHandler.IncomeStatement)
				r.Get("/balance-sheet", cfg.ReportHandler.BalanceSheet)
				r.Get("/cash-flow", cfg.ReportHandler.CashFlow)
			})

			r.Route("/periods", func(r chi.Router) {
				r.Post("/", cfg.PeriodHandler.Create)
				r.Get("/", cfg.PeriodHandler.List)
				r.Get("/{id}", cfg.PeriodHandler.Get)
				r.Post("/{id}/close", cfg.PeriodHandler.Close)
				r.Post("/{id}/reopen", cfg.PeriodHandler.Reopen)
				r.Post("/{id}/lock", cfg.PeriodHandler.Lock)
				r.Post("/{id}/unlock", cfg.PeriodHandler.Unlock)
			})

			r.Route("/receivables", func(r chi.Router) {
				r.Post("/", cfg.SubledgerHandler.CreateReceivable)
				r.Get("/", cfg.SubledgerHandler.ListReceivables)
				r.Get("/aging", cfg.SubledgerHandler.ReceivablesAging)
				r.Get("/{id}", cfg.SubledgerHandler.Get)
				r.Post("/{id}/payments", cfg.SubledgerHandler.ApplyPayment)
				r.Get("/{id}/payments", cfg.SubledgerHandler.ListApplications)
			})

			r.Route("/payables", func(r chi.Router) {
				r.Post("/", cfg.SubledgerHandler.CreatePayable)
				r.Get("/", cfg.SubledgerHandler.ListPayables)
				r.Get("/aging", cfg.SubledgerHandler.PayablesAging)
				r.Get("/{id}", cfg.SubledgerHandler.Get)
				r.Post("/{id}/payments", cfg.SubledgerHandler.ApplyPayment)
				r.Get("/{id}/payments", cfg.SubledgerHandler.ListApplications)
			})

			r.Route("/audit", func(r chi.Router) {
				r.Get("/", cfg.AuditHandler.List)
				r.Get("/{type}/{id}", cfg.AuditHandler.ListByResource)
			})
		})
	})

	return r
}
