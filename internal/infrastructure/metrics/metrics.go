package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Journal metrics
	JournalsCreated   prometheus.Counter
	JournalsPosted    prometheus.Counter
	JournalsReversed  prometheus.Counter
	JournalsVoided    prometheus.Counter
	DuplicateJournals prometheus.Counter
	JournalDuration   prometheus.Histogram
	JournalErrors     *prometheus.CounterVec

	// Account metrics
	AccountsCreated prometheus.Counter

	// Period metrics
	PeriodsClosed   prometheus.Counter
	PeriodsReopened prometheus.Counter
	PeriodsLocked   prometheus.Counter

	// Subledger metrics
	SubledgerOpened prometheus.Counter
	PaymentsApplied prometheus.Counter

	// Event pipeline metrics
	EventsConsumed  *prometheus.CounterVec
	EventsPublished prometheus.Counter
	PublishErrors   prometheus.Counter

	// Report metrics
	ReportCacheHits   prometheus.Counter
	ReportCacheMisses prometheus.Counter

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Database metrics
	DBQueries     *prometheus.CounterVec
	DBDuration    *prometheus.HistogramVec
	DBConnections prometheus.Gauge
	DBErrors      *prometheus.CounterVec

	// Redis metrics
	RedisOperations *prometheus.CounterVec
	RedisErrors     *prometheus.CounterVec

	// Audit metrics
	AuditLogsCreated *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		// Journal metrics
		JournalsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "acctd_journals_created_total",
			Help: "Total number of journal entries created",
		}),
		JournalsPosted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "acctd_journals_posted_total",
			Help: "Total number of journal entries posted",
		}),
		JournalsReversed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "acctd_journals_reversed_total",
			Help: "Total number of journal entries reversed",
		}),
		JournalsVoided: promauto.NewCounter(prometheus.CounterOpts{
			Name: "acctd_journals_voided_total",
			Help: "Total number of draft journal entries voided",
		}),
		DuplicateJournals: promauto.NewCounter(prometheus.CounterOpts{
			Name: "acctd_journals_duplicate_total",
			Help: "Total number of journal creations suppressed by idempotency key",
		}),
		JournalDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "acctd_journal_duration_seconds",
			Help:    "Duration of journal operations",
			Buckets: prometheus.DefBuckets,
		}),
		JournalErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "acctd_journal_errors_total",
				Help: "Total number of journal errors by type",
			},
			[]string{"error_type"},
		),

		// Account metrics
		AccountsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "acctd_accounts_created_total",
			Help: "Total number of accounts created",
		}),

		// Period metrics
		PeriodsClosed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "acctd_periods_closed_total",
			Help: "Total number of fiscal periods closed",
		}),
		PeriodsReopened: promauto.NewCounter(prometheus.CounterOpts{
			Name: "acctd_periods_reopened_total",
			Help: "Total number of fiscal periods reopened",
		}),
		PeriodsLocked: promauto.NewCounter(prometheus.CounterOpts{
			Name: "acctd_periods_locked_total",
			Help: "Total number of fiscal periods locked",
		}),

		// Subledger metrics
		SubledgerOpened: promauto.NewCounter(prometheus.CounterOpts{
			Name: "acctd_subledger_opened_total",
			Help: "Total number of receivables and payables opened",
		}),
		PaymentsApplied: promauto.NewCounter(prometheus.CounterOpts{
			Name: "acctd_payments_applied_total",
			Help: "Total number of payment applications",
		}),

		// Event pipeline metrics
		EventsConsumed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "acctd_events_consumed_total",
				Help: "Total business events consumed by type and outcome",
			},
			[]string{"type", "outcome"},
		),
		EventsPublished: promauto.NewCounter(prometheus.CounterOpts{
			Name: "acctd_events_published_total",
			Help: "Total outbox events published",
		}),
		PublishErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "acctd_publish_errors_total",
			Help: "Total outbox publish failures",
		}),

		// Report metrics
		ReportCacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "acctd_report_cache_hits_total",
			Help: "Total report cache hits",
		}),
		ReportCacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "acctd_report_cache_misses_total",
			Help: "Total report cache misses",
		}),

		// API metrics
		HTTPRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "acctd_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "acctd_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		// Database metrics
		DBQueries: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "acctd_db_queries_total",
				Help: "Total database queries",
			},
			[]string{"operation", "table"},
		),
		DBDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "acctd_db_query_duration_seconds",
				Help:    "Database query duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation", "table"},
		),
		DBConnections: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "acctd_db_connections",
			Help: "Current number of database connections",
		}),
		DBErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "acctd_db_errors_total",
				Help: "Total database errors",
			},
			[]string{"operation"},
		),

		// Redis metrics
		RedisOperations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "acctd_redis_operations_total",
				Help: "Total Redis operations",
			},
			[]string{"operation"},
		),
		RedisErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "acctd_redis_errors_total",
				Help: "Total Redis errors",
			},
			[]string{"operation"},
		),

		// Audit metrics
		AuditLogsCreated: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "acctd_audit_logs_total",
				Help: "Total audit logs created",
			},
			[]string{"action", "status"},
		),
	}
}
