package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// pendingMarker is stored while the first request for a key is in flight.
const pendingMarker = "processing"

// IdempotencyStore implements usecase.IdempotencyStore using Redis.
type IdempotencyStore struct {
	client redis.UniversalClient
	prefix string
}

// NewIdempotencyStore creates a new IdempotencyStore.
func NewIdempotencyStore(client redis.UniversalClient) *IdempotencyStore {
	return &IdempotencyStore{
		client: client,
		prefix: "idempotency:",
	}
}

// CheckAndSet claims key for the caller. It reports true with the stored
// value when the key was already claimed; the value is nil while the first
// request is still in flight.
func (s *IdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	fullKey := s.prefix + key

	value := any(pendingMarker)
	if response != nil {
		value = response
	}

	set, err := s.client.SetNX(ctx, fullKey, value, ttl).Result()
	if err != nil {
		return false, nil, err
	}
	if set {
		return false, nil, nil
	}

	existing, err := s.client.Get(ctx, fullKey).Bytes()
	if errors.Is(err, redis.Nil) {
		// Released between SETNX and GET; treat as in flight.
		return true, nil, nil
	}
	if err != nil {
		return false, nil, err
	}
	if string(existing) == pendingMarker {
		return true, nil, nil
	}

	return true, existing, nil
}

// Update stores the final response for key.
func (s *IdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	return s.client.Set(ctx, s.prefix+key, response, ttl).Err()
}

// Release drops key so the request can be retried.
func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.prefix+key).Err()
}
