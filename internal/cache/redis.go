// Package cache is a small retrying wrapper over a Redis client.
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/wb-go/wbf/retry"
)

// Redis stores string values with a TTL.
type Redis struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// New creates a cache over client. Values expire after ttl; zero keeps them.
func New(client redis.UniversalClient, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl}
}

// SetWithRetry stores value under key, retrying per strategy.
func (c *Redis) SetWithRetry(ctx context.Context, strategy retry.Strategy, key string, value interface{}) error {
	return retry.Do(func() error {
		return c.client.Set(ctx, key, value, c.ttl).Err()
	}, strategy)
}

// GetWithRetry loads key, retrying per strategy. A missing key is returned
// as redis.Nil without retrying.
func (c *Redis) GetWithRetry(ctx context.Context, strategy retry.Strategy, key string) (string, error) {
	var (
		value string
		miss  bool
	)

	err := retry.Do(func() error {
		v, err := c.client.Get(ctx, key).Result()
		if errors.Is(err, redis.Nil) {
			miss = true
			return nil
		}
		if err != nil {
			return err
		}

		value = v
		return nil
	}, strategy)
	if err != nil {
		return "", err
	}
	if miss {
		return "", redis.Nil
	}

	return value, nil
}
