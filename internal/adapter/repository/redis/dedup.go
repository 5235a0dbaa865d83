package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// DedupStore implements usecase.DedupStore using Redis SETNX. A claimed key
// marks an event as in flight or already processed; the journal table's
// idempotency constraint stays authoritative when the key expires.
type DedupStore struct {
	client *redis.Client
	prefix string
}

// NewDedupStore creates a new DedupStore.
func NewDedupStore(client *redis.Client) *DedupStore {
	return &DedupStore{
		client: client,
		prefix: "dedup:",
	}
}

// CheckAndSet claims the key if nobody holds it. It returns true when the
// caller won the claim.
func (s *DedupStore) CheckAndSet(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return s.client.SetNX(ctx, s.prefix+key, "1", ttl).Result()
}

// Delete releases a claimed key so the event can be retried.
func (s *DedupStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.prefix+key).Err()
}
