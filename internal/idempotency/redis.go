// Package idempotency records which (intent, connection) pairs were already
// delivered, so redelivered intents are not pushed twice.
package idempotency

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Store tracks delivered (intent, connection) pairs.
type Store interface {
	Seen(ctx context.Context, intentID uuid.UUID, connectionID string) (bool, error)
	Mark(ctx context.Context, intentID uuid.UUID, connectionID string) error
}

var (
	_ Store = (*RedisStore)(nil)
	_ Store = (*MemoryStore)(nil)
)

const keyPrefix = "delivered"

// Key returns the marker key for an intent and connection.
func Key(intentID uuid.UUID, connectionID string) string {
	return fmt.Sprintf("%s:%s:%s", keyPrefix, intentID, connectionID)
}

// RedisStore keeps delivery markers in Redis with a TTL.
type RedisStore struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewRedisStore creates a marker store. Markers expire after ttl.
func NewRedisStore(client redis.UniversalClient, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

// Seen reports whether the intent was already delivered to the connection.
func (s *RedisStore) Seen(ctx context.Context, intentID uuid.UUID, connectionID string) (bool, error) {
	n, err := s.client.Exists(ctx, Key(intentID, connectionID)).Result()
	if err != nil {
		return false, fmt.Errorf("check delivery marker: %w", err)
	}

	return n > 0, nil
}

// Mark records a delivery of the intent to the connection.
func (s *RedisStore) Mark(ctx context.Context, intentID uuid.UUID, connectionID string) error {
	if err := s.client.Set(ctx, Key(intentID, connectionID), time.Now().Unix(), s.ttl).Err(); err != nil {
		return fmt.Errorf("set delivery marker: %w", err)
	}

	return nil
}
