package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const idempotencyPrefix = "bankcore:idemp:"

// placeholder stored while the first request is still in flight.
const inFlightMarker = "__in_flight__"

// IdempotencyStore implements usecase.IdempotencyStore on Redis.
type IdempotencyStore struct {
	client *redis.Client
}

// NewIdempotencyStore creates a new IdempotencyStore.
func NewIdempotencyStore(client *redis.Client) *IdempotencyStore {
	return &IdempotencyStore{client: client}
}

// CheckAndSet claims key for the caller. It returns (true, response)
// when a previous request already completed under this key, and
// (false, nil) when the caller now owns the key and should proceed.
// A concurrent in-flight request under the same key also reports
// seen=true with a nil response.
func (s *IdempotencyStore) CheckAndSet(ctx context.Context, key string, ttl time.Duration) (bool, []byte, error) {
	fullKey := idempotencyPrefix + key

	claimed, err := s.client.SetNX(ctx, fullKey, inFlightMarker, ttl).Result()
	if err != nil {
		return false, nil, err
	}
	if claimed {
		return false, nil, nil
	}

	existing, err := s.client.Get(ctx, fullKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			// The earlier claim expired between SetNX and Get.
			return false, nil, nil
		}

		return false, nil, err
	}

	if string(existing) == inFlightMarker {
		return true, nil, nil
	}

	return true, existing, nil
}

// Update stores the final response under key for replay.
func (s *IdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	return s.client.Set(ctx, idempotencyPrefix+key, response, ttl).Err()
}

// Release drops an in-flight claim so the client may retry after a
// failure that must not be replayed.
func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	return s.client.Del(ctx, idempotencyPrefix+key).Err()
}
