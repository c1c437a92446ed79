package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "checkout:idem:"

// IdempotencyStore implements repository.IdempotencyStore using Redis.
type IdempotencyStore struct {
	client *redis.Client
}

// NewIdempotencyStore creates a new Redis-backed idempotency store.
func NewIdempotencyStore(client *redis.Client) *IdempotencyStore {
	return &IdempotencyStore{client: client}
}

// Reserve claims the key for the window using SET NX. It returns false
// when another checkout already holds the key.
func (s *IdempotencyStore) Reserve(ctx context.Context, key string, window time.Duration) (bool, error) {
	ok, err := s.client.SetNX(ctx, keyPrefix+key, 1, window).Result()
	if err != nil {
		return false, fmt.Errorf("redis reserve idempotency key: %w", err)
	}

	return ok, nil
}

// Release frees a reserved key so a failed checkout can be retried
// without waiting for the window to expire.
func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("redis release idempotency key: %w", err)
	}

	return nil
}
