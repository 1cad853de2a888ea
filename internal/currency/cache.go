package currency

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

const rateKeyPrefix = "rates:"

// RateCache keeps current rates to the reference currency in redis so that
// summaries of large trips do not hit postgres once per expense.
type RateCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewRateCache(client redis.Cmdable, ttl time.Duration) *RateCache {
	return &RateCache{client: client, ttl: ttl}
}

func rateKey(code string) string {
	return rateKeyPrefix + code
}

// Get returns the cached rate of code. ok is false on a cache miss.
func (c *RateCache) Get(ctx context.Context, code string) (rate decimal.Decimal, ok bool, err error) {
	val, err := c.client.Get(ctx, rateKey(code)).Result()
	if errors.Is(err, redis.Nil) {
		return decimal.Zero, false, nil
	}
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("failed to read cached rate of %s: %w", code, err)
	}
	rate, err = decimal.NewFromString(val)
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("corrupt cached rate of %s: %w", code, err)
	}
	return rate, true, nil
}

func (c *RateCache) Set(ctx context.Context, code string, rate decimal.Decimal) error {
	if err := c.client.Set(ctx, rateKey(code), rate.String(), c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache rate of %s: %w", code, err)
	}
	return nil
}

// Invalidate drops the cached rates of codes.
func (c *RateCache) Invalidate(ctx context.Context, codes ...string) error {
	if len(codes) == 0 {
		return nil
	}
	keys := make([]string, len(codes))
	for i, code := range codes {
		keys[i] = rateKey(code)
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to invalidate cached rates: %w", err)
	}
	return nil
}
