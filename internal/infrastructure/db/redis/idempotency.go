package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const idempotencyTTL = 24 * time.Hour

// IdempotencyStore remembers which user an Idempotency-Key created.
// Key format: idem:create-user:<key>
type IdempotencyStore struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewIdempotencyStore creates an IdempotencyStore wrapping the given Redis client.
func NewIdempotencyStore(client redis.Cmdable) *IdempotencyStore {
	return &IdempotencyStore{client: client, ttl: idempotencyTTL}
}

// Reserve claims key for id. When another request already holds the key it
// returns false together with the id that request stored.
func (s *IdempotencyStore) Reserve(ctx context.Context, key, id string) (bool, string, error) {
	for attempt := 0; ; attempt++ {
		ok, err := s.client.SetNX(ctx, s.key(key), id, s.ttl).Result()
		if err != nil {
			return false, "", fmt.Errorf("idempotency reserve: %w", err)
		}
		if ok {
			return true, id, nil
		}

		existing, err := s.client.Get(ctx, s.key(key)).Result()
		if errors.Is(err, redis.Nil) && attempt == 0 {
			// Expired between SETNX and GET; try once more.
			continue
		}
		if err != nil {
			return false, "", fmt.Errorf("idempotency lookup: %w", err)
		}
		return false, existing, nil
	}
}

// Release forgets key so a failed create can be retried with it.
func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.key(key)).Err()
}

func (s *IdempotencyStore) key(key string) string {
	return "idem:create-user:" + key
}
