package eventpublisher

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"github.com/fintech-kernel/acctd/internal/domain"
	"github.com/fintech-kernel/acctd/internal/infrastructure/metrics"
)

// Store is the slice of outbox persistence the publisher drains.
type Store interface {
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string) error
	DeletePublished(ctx context.Context, before time.Time) error
}

// Publisher defines the interface for publishing events to external systems.
type Publisher interface {
	Publish(ctx context.Context, event *domain.OutboxEvent) error
}

// EventPublisher drains the outbox table and hands events to a Publisher.
// Events are delivered at least once: a crash between Publish and
// MarkPublished re-delivers on the next poll.
type EventPublisher struct {
	store     Store
	publisher Publisher
	logger    zerolog.Logger
	metrics   *metrics.Metrics
	batchSize int
	interval  time.Duration
	retention time.Duration
}

// Config for EventPublisher.
type Config struct {
	Store     Store
	Publisher Publisher
	Logger    zerolog.Logger
	Metrics   *metrics.Metrics
	BatchSize int           // Number of events to fetch per batch
	Interval  time.Duration // Polling interval
	Retention time.Duration // Published rows older than this are pruned; 0 keeps them forever
}

// NewEventPublisher creates a new EventPublisher.
func NewEventPublisher(cfg Config) *EventPublisher {
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 100
	}
	if cfg.Interval == 0 {
		cfg.Interval = 5 * time.Second
	}

	return &EventPublisher{
		store:     cfg.Store,
		publisher: cfg.Publisher,
		logger:    cfg.Logger,
		metrics:   cfg.Metrics,
		batchSize: cfg.BatchSize,
		interval:  cfg.Interval,
		retention: cfg.Retention,
	}
}

// Start begins the event publishing worker.
// It runs continuously until the context is cancelled.
func (ep *EventPublisher) Start(ctx context.Context) error {
	ep.logger.Info().
		Int("batch_size", ep.batchSize).
		Dur("interval", ep.interval).
		Msg("event publisher started")

	ticker := time.NewTicker(ep.interval)
	defer ticker.Stop()

	sweeper := time.NewTicker(time.Hour)
	defer sweeper.Stop()

	// Process immediately on start
	if err := ep.processEvents(ctx); err != nil {
		ep.logger.Error().Err(err).Msg("error processing events on start")
	}

	for {
		select {
		case <-ctx.Done():
			ep.logger.Info().Msg("event publisher shutting down")
			return ctx.Err()
		case <-ticker.C:
			if err := ep.processEvents(ctx); err != nil {
				ep.logger.Error().Err(err).Msg("error processing events")
			}
		case <-sweeper.C:
			ep.sweep(ctx)
		}
	}
}

// processEvents fetches and publishes a batch of unpublished events.
func (ep *EventPublisher) processEvents(ctx context.Context) error {
	events, err := ep.store.GetUnpublished(ctx, ep.batchSize)
	if err != nil {
		return err
	}

	if len(events) == 0 {
		return nil
	}

	ep.logger.Debug().Int("count", len(events)).Msg("processing outbox events")

	for _, event := range events {
		if err := ep.publisher.Publish(ctx, event); err != nil {
			ep.logger.Error().
				Err(err).
				Str("event_id", event.ID).
				Str("event_type", event.EventType).
				Msg("failed to publish event")
			if ep.metrics != nil {
				ep.metrics.PublishErrors.Inc()
			}
			// Continue processing other events even if one fails
			continue
		}

		if ep.metrics != nil {
			ep.metrics.EventsPublished.Inc()
		}

		if err := ep.store.MarkPublished(ctx, event.ID); err != nil {
			ep.logger.Error().
				Err(err).
				Str("event_id", event.ID).
				Msg("failed to mark event as published")
			// The event will be re-delivered; consumers must dedupe on event_id.
		}
	}

	return nil
}

// sweep prunes published rows older than the retention window.
func (ep *EventPublisher) sweep(ctx context.Context) {
	if ep.retention <= 0 {
		return
	}

	cutoff := time.Now().Add(-ep.retention)
	if err := ep.store.DeletePublished(ctx, cutoff); err != nil {
		ep.logger.Error().Err(err).Time("cutoff", cutoff).Msg("failed to prune published events")
	}
}

// LogPublisher is a publisher that only logs events. It is the fallback when
// no broker is configured, useful in development.
type LogPublisher struct {
	logger zerolog.Logger
}

// NewLogPublisher creates a new LogPublisher.
func NewLogPublisher(logger zerolog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

// Publish logs the event.
func (p *LogPublisher) Publish(ctx context.Context, event *domain.OutboxEvent) error {
	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return err
	}

	p.logger.Info().
		Str("event_id", event.ID).
		Str("event_type", event.EventType).
		Str("aggregate_type", event.AggregateType).
		Str("aggregate_id", event.AggregateID).
		RawJSON("payload", payload).
		Msg("event published")

	return nil
}
