package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisCommander is the subset of *redis.Client used by the store.
type redisCommander interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// RedisStore keeps each collection as a Redis string without expiry.
type RedisStore struct {
	client redisCommander
	prefix string
}

// NewRedisStore constructs a Redis-backed store. Keys are namespaced with prefix.
func NewRedisStore(client redisCommander, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

// Load implements CollectionStore.
func (s *RedisStore) Load(ctx context.Context, key string) ([]byte, error) {
	raw, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, missing(key)
		}
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return raw, nil
}

// Save implements CollectionStore.
func (s *RedisStore) Save(ctx context.Context, key string, payload []byte) error {
	if err := s.client.Set(ctx, s.prefix+key, payload, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}
