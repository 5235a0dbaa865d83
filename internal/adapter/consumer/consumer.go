package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/fintech-kernel/acctd/internal/domain"
	"github.com/fintech-kernel/acctd/internal/infrastructure/metrics"
	"github.com/fintech-kernel/acctd/internal/usecase"
)

// Poster books a business event into the ledger.
type Poster interface {
	HandleEvent(ctx context.Context, evt *domain.BusinessEvent) (*usecase.AutoPostingResult, error)
}

// Retrier re-runs an operation on transient database failures.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// Config for Consumer.
type Config struct {
	Client  *redis.Client
	Poster  Poster
	Retrier Retrier
	Logger  zerolog.Logger
	Metrics *metrics.Metrics
	Stream  string
	Group   string
	Name    string
	Block   time.Duration // XREADGROUP block timeout
	Batch   int64         // messages per read
}

// Consumer reads business events from a Redis stream consumer group and posts
// them to the ledger. Messages are acknowledged only after a successful or
// duplicate posting, so delivery is at least once and posting must stay
// idempotent. Failed messages are left pending and reprocessed on restart.
type Consumer struct {
	client  *redis.Client
	poster  Poster
	retrier Retrier
	logger  zerolog.Logger
	metrics *metrics.Metrics
	stream  string
	group   string
	name    string
	block   time.Duration
	batch   int64
}

// New creates a new Consumer.
func New(cfg Config) *Consumer {
	if cfg.Batch == 0 {
		cfg.Batch = 32
	}
	if cfg.Block == 0 {
		cfg.Block = 5 * time.Second
	}

	return &Consumer{
		client:  cfg.Client,
		poster:  cfg.Poster,
		retrier: cfg.Retrier,
		logger:  cfg.Logger,
		metrics: cfg.Metrics,
		stream:  cfg.Stream,
		group:   cfg.Group,
		name:    cfg.Name,
		block:   cfg.Block,
		batch:   cfg.Batch,
	}
}

// Start consumes the stream until the context is cancelled.
func (c *Consumer) Start(ctx context.Context) error {
	if err := c.ensureGroup(ctx); err != nil {
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	c.logger.Info().
		Str("stream", c.stream).
		Str("group", c.group).
		Str("consumer", c.name).
		Msg("event consumer started")

	// Reprocess entries left unacknowledged by a previous run.
	if err := c.drainPending(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		c.logger.Error().Err(err).Msg("error draining pending events")
	}

	for {
		select {
		case <-ctx.Done():
			c.logger.Info().Msg("event consumer shutting down")
			return ctx.Err()
		default:
		}

		if err := c.consumeBatch(ctx, ">"); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				c.logger.Info().Msg("event consumer shutting down")
				return ctx.Err()
			}

			c.logger.Error().Err(err).Msg("error reading stream")

			// Pause so a broken connection does not spin.
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Second):
			}
		}
	}
}

// ensureGroup creates the consumer group, tolerating an existing one.
func (c *Consumer) ensureGroup(ctx context.Context) error {
	err := c.client.XGroupCreateMkStream(ctx, c.stream, c.group, "0").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		return err
	}
	return nil
}

// drainPending reprocesses this consumer's unacknowledged messages. It stops
// once a full round acknowledges nothing, leaving persistent failures pending
// rather than looping on them.
func (c *Consumer) drainPending(ctx context.Context) error {
	for {
		streams, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    c.group,
			Consumer: c.name,
			Streams:  []string{c.stream, "0"},
			Count:    c.batch,
		}).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return nil
			}
			return err
		}

		total, acked := 0, 0
		for _, stream := range streams {
			for _, msg := range stream.Messages {
				total++
				if c.handleMessage(ctx, msg) {
					acked++
				}
			}
		}

		if total == 0 || acked == 0 {
			return nil
		}
	}
}

// consumeBatch reads one batch at the cursor and processes it.
func (c *Consumer) consumeBatch(ctx context.Context, cursor string) error {
	streams, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    c.group,
		Consumer: c.name,
		Streams:  []string{c.stream, cursor},
		Count:    c.batch,
		Block:    c.block,
	}).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return err
	}

	for _, stream := range streams {
		for _, msg := range stream.Messages {
			c.handleMessage(ctx, msg)
		}
	}

	return nil
}

// handleMessage posts one message and reports whether it was acknowledged.
func (c *Consumer) handleMessage(ctx context.Context, msg redis.XMessage) bool {
	evt, err := decodeEvent(msg)
	if err != nil {
		// A malformed message would wedge the group if left pending.
		c.logger.Error().Err(err).Str("message_id", msg.ID).Msg("discarding malformed event")
		c.countOutcome("unknown", "invalid")
		c.ack(ctx, msg.ID)
		return true
	}

	var result *usecase.AutoPostingResult
	handle := func() error {
		var err error
		result, err = c.poster.HandleEvent(ctx, evt)
		return err
	}

	if c.retrier != nil {
		err = c.retrier.Retry(ctx, handle)
	} else {
		err = handle()
	}

	if err != nil {
		c.logger.Error().
			Err(err).
			Str("event_id", evt.ID).
			Str("event_type", evt.Type).
			Msg("failed to post event")
		c.countOutcome(evt.Type, "failed")
		return false
	}

	outcome := "posted"
	if result != nil && result.IsDuplicate {
		outcome = "duplicate"
	}
	c.countOutcome(evt.Type, outcome)

	c.logger.Debug().
		Str("event_id", evt.ID).
		Str("event_type", evt.Type).
		Str("outcome", outcome).
		Msg("event processed")

	c.ack(ctx, msg.ID)
	return true
}

func (c *Consumer) ack(ctx context.Context, messageID string) {
	if err := c.client.XAck(ctx, c.stream, c.group, messageID).Err(); err != nil {
		c.logger.Error().Err(err).Str("message_id", messageID).Msg("failed to ack message")
	}
}

func (c *Consumer) countOutcome(eventType, outcome string) {
	if c.metrics != nil {
		c.metrics.EventsConsumed.WithLabelValues(eventType, outcome).Inc()
	}
}

// decodeEvent unpacks the business event carried in the message's payload
// field. The message ID stands in when the event carries no ID of its own.
func decodeEvent(msg redis.XMessage) (*domain.BusinessEvent, error) {
	raw, ok := msg.Values["payload"].(string)
	if !ok || raw == "" {
		return nil, fmt.Errorf("message %s has no payload", msg.ID)
	}

	var evt domain.BusinessEvent
	if err := json.Unmarshal([]byte(raw), &evt); err != nil {
		return nil, fmt.Errorf("message %s payload is not valid JSON: %w", msg.ID, err)
	}

	if evt.ID == "" {
		evt.ID = msg.ID
	}

	return &evt, nil
}
