package eventpublisher

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/fintech-kernel/acctd/internal/domain"
)

// RedisStreamPublisher publishes outbox events to a Redis stream via XADD.
// The outbox event ID travels with the message so downstream consumers can
// dedupe re-deliveries.
type RedisStreamPublisher struct {
	client *redis.Client
	stream string
}

// NewRedisStreamPublisher creates a new RedisStreamPublisher.
func NewRedisStreamPublisher(client *redis.Client, stream string) *RedisStreamPublisher {
	return &RedisStreamPublisher{
		client: client,
		stream: stream,
	}
}

// Publish appends the event to the stream.
func (p *RedisStreamPublisher) Publish(ctx context.Context, event *domain.OutboxEvent) error {
	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}

	err = p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]any{
			"event_id":       event.ID,
			"tenant_id":      event.TenantID,
			"event_type":     event.EventType,
			"aggregate_type": event.AggregateType,
			"aggregate_id":   event.AggregateID,
			"payload":        string(payload),
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to append event to stream %s: %w", p.stream, err)
	}

	return nil
}
