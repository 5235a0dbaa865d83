package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/fintech-kernel/acctd/internal/adapter/consumer"
	httpAdapter "github.com/fintech-kernel/acctd/internal/adapter/http"
	"github.com/fintech-kernel/acctd/internal/adapter/http/handler"
	postgresRepo "github.com/fintech-kernel/acctd/internal/adapter/repository/postgres"
	redisRepo "github.com/fintech-kernel/acctd/internal/adapter/repository/redis"
	"github.com/fintech-kernel/acctd/internal/infrastructure/config"
	"github.com/fintech-kernel/acctd/internal/infrastructure/eventpublisher"
	"github.com/fintech-kernel/acctd/internal/infrastructure/logger"
	"github.com/fintech-kernel/acctd/internal/infrastructure/metrics"
	"github.com/fintech-kernel/acctd/internal/infrastructure/postgres"
	redisInfra "github.com/fintech-kernel/acctd/internal/infrastructure/redis"
	"github.com/fintech-kernel/acctd/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx := context.Background()

	// Apply database migrations
	if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, log); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	// Connect to PostgreSQL
	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
		DatabaseURL: cfg.DatabaseURL,
		MaxConns:    cfg.DatabaseMaxConns,
		MinConns:    cfg.DatabaseMinConns,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	// Connect to Redis
	redisClient, err := redisInfra.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	m := metrics.New()

	// Initialize repositories
	txManager := postgresRepo.NewTxManager(pool)
	tenantRepo := postgresRepo.NewTenantRepository(pool)
	accountRepo := postgresRepo.NewAccountRepository(pool)
	journalRepo := postgresRepo.NewJournalRepository(pool)
	ledgerRepo := postgresRepo.NewLedgerRepository(pool)
	periodRepo := postgresRepo.NewPeriodRepository(pool)
	subledgerRepo := postgresRepo.NewSubledgerRepository(pool)
	sequenceRepo := postgresRepo.NewSequenceRepository(pool)
	auditRepo := postgresRepo.NewAuditRepository(pool)
	idGen := postgresRepo.NewULIDGenerator()
	retrier := postgresRepo.NewRetrier(log)
	cache := redisRepo.NewCache(redisClient)
	dedup := redisRepo.NewDedupStore(redisClient)

	// Journals write events through the outbox only when publishing is on;
	// otherwise the null implementation drops them.
	outboxRepo := usecase.OutboxRepository(postgresRepo.NewNullOutboxRepository())
	var outboxStore eventpublisher.Store
	if cfg.OutboxEnabled {
		outbox := postgresRepo.NewOutboxRepository(pool)
		outboxRepo = outbox
		outboxStore = outbox
	}

	// Initialize use cases
	accountUC := usecase.NewAccountUseCase(txManager, accountRepo, auditRepo, idGen)
	tenantUC := usecase.NewTenantUseCase(tenantRepo, accountUC, auditRepo, idGen)
	journalUC := usecase.NewJournalUseCase(txManager, journalRepo, accountRepo, periodRepo, sequenceRepo, outboxRepo, auditRepo, idGen, m)
	ledgerUC := usecase.NewLedgerUseCase(ledgerRepo, accountRepo, cache, cfg.CacheTTL, m)
	reportUC := usecase.NewReportUseCase(ledgerRepo, tenantRepo, cache, cfg.CacheTTL, m)
	periodUC := usecase.NewPeriodUseCase(txManager, periodRepo, journalRepo, ledgerRepo, tenantRepo, outboxRepo, auditRepo, journalUC, idGen, m)
	subledgerUC := usecase.NewSubledgerUseCase(txManager, subledgerRepo, outboxRepo, auditRepo, idGen, m)
	autoPostingUC := usecase.NewAutoPostingUseCase(txManager, tenantRepo, journalUC, subledgerUC, dedup, m)

	// Create router
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		TenantHandler:    handler.NewTenantHandler(tenantUC),
		AccountHandler:   handler.NewAccountHandler(accountUC),
		JournalHandler:   handler.NewJournalHandler(journalUC),
		LedgerHandler:    handler.NewLedgerHandler(ledgerUC),
		ReportHandler:    handler.NewReportHandler(reportUC),
		PeriodHandler:    handler.NewPeriodHandler(periodUC),
		SubledgerHandler: handler.NewSubledgerHandler(subledgerUC),
		AuditHandler:     handler.NewAuditHandler(auditRepo),
		HealthHandler:    handler.NewHealthHandler(pool, redisClient),
		Logger:           log,
	})

	// Background workers stop before the HTTP server drains.
	workerCtx, stopWorkers := context.WithCancel(ctx)
	defer stopWorkers()

	if outboxStore != nil {
		publisher := eventpublisher.NewEventPublisher(eventpublisher.Config{
			Store:     outboxStore,
			Publisher: publisherSink(cfg.OutboxStream, redisClient, log),
			Logger:    log,
			Metrics:   m,
			BatchSize: cfg.OutboxBatchSize,
			Interval:  cfg.OutboxPollInterval,
			Retention: cfg.OutboxRetention,
		})
		go func() {
			if err := publisher.Start(workerCtx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Msg("event publisher stopped")
			}
		}()
	}

	if cfg.ConsumerEnabled {
		eventConsumer := consumer.New(consumer.Config{
			Client:  redisClient,
			Poster:  autoPostingUC,
			Retrier: retrier,
			Logger:  log,
			Metrics: m,
			Stream:  cfg.ConsumerStream,
			Group:   cfg.ConsumerGroup,
			Name:    cfg.ConsumerName,
		})
		go func() {
			if err := eventConsumer.Start(workerCtx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Msg("event consumer stopped")
			}
		}()
	}

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")
	stopWorkers()

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

// publisherSink picks where drained outbox events go. An empty stream name
// falls back to logging, which keeps development setups broker-free.
func publisherSink(stream string, client *redis.Client, log zerolog.Logger) eventpublisher.Publisher {
	if stream == "" {
		return eventpublisher.NewLogPublisher(log)
	}
	return eventpublisher.NewRedisStreamPublisher(client, stream)
}
