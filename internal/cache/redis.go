package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/couchcryptid/sdg2-indicator-service/internal/domain"
	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"
)

// RedisStore is a Store shared between service instances. Entries carry
// their creation time and TTL; Redis expiry removes them server-side and the
// read path re-checks against the clock.
type RedisStore struct {
	client    *redis.Client
	keyPrefix string
	clock     clockwork.Clock
}

// NewRedisStore wraps an existing client. Keys are stored as prefix + ":" + key.
func NewRedisStore(client *redis.Client, keyPrefix string, clock clockwork.Clock) *RedisStore {
	return &RedisStore{client: client, keyPrefix: keyPrefix + ":", clock: clock}
}

// NewRedisClient parses a redis:// URL into a client.
func NewRedisClient(redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	return redis.NewClient(opts), nil
}

// Get implements Store.
func (s *RedisStore) Get(ctx context.Context, key string) (domain.ResultTable, bool, error) {
	data, err := s.client.Get(ctx, s.keyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis get: %w", err)
	}

	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, false, fmt.Errorf("decode cache entry: %w", err)
	}
	if e.Expired(s.clock.Now()) {
		_ = s.client.Del(ctx, s.keyPrefix+key).Err()
		return nil, false, nil
	}
	return e.Table, true, nil
}

// Put implements Store.
func (s *RedisStore) Put(ctx context.Context, key string, table domain.ResultTable, ttl time.Duration) error {
	data, err := json.Marshal(Entry{Table: table, CreatedAt: s.clock.Now(), TTL: ttl})
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}
	if err := s.client.Set(ctx, s.keyPrefix+key, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// CheckReadiness pings Redis.
func (s *RedisStore) CheckReadiness(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis not ready: %w", err)
	}
	return nil
}

// Close releases the underlying client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
