package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

const balancePrefix = "bankcore:balance:"

// BalanceCache keeps recently read balances in Redis so that repeated
// balance polls do not hit Postgres. Entries are short lived and
// invalidated after every mutation, so a stale read window is bounded
// by the TTL.
type BalanceCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewBalanceCache creates a new BalanceCache.
func NewBalanceCache(client *redis.Client, ttl time.Duration) *BalanceCache {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}

	return &BalanceCache{client: client, ttl: ttl}
}

// Get returns the cached balance for a customer. ok is false on a
// miss or when the cached value cannot be parsed.
func (c *BalanceCache) Get(ctx context.Context, customerID string) (decimal.Decimal, bool, error) {
	raw, err := c.client.Get(ctx, balancePrefix+customerID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return decimal.Zero, false, nil
		}

		return decimal.Zero, false, err
	}

	balance, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, false, nil
	}

	return balance, true, nil
}

// Set stores the balance for a customer.
func (c *BalanceCache) Set(ctx context.Context, customerID string, balance decimal.Decimal) error {
	return c.client.Set(ctx, balancePrefix+customerID, balance.String(), c.ttl).Err()
}

// Invalidate drops the cached balances for the given customers.
func (c *BalanceCache) Invalidate(ctx context.Context, customerIDs ...string) error {
	keys := make([]string, len(customerIDs))
	for i, id := range customerIDs {
		keys[i] = balancePrefix + id
	}

	return c.client.Del(ctx, keys...).Err()
}
