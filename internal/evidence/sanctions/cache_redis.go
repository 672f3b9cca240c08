package sanctions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache persists screenings in Redis with TTL-based eviction.
type RedisCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewRedisCache constructs a Redis-backed screening cache.
func NewRedisCache(client redis.Cmdable, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

// Get loads cached matches.
//
// Errors: returns ErrCacheMiss on a miss; wraps Redis or JSON decode errors.
func (c *RedisCache) Get(ctx context.Context, key string) ([]Match, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("find sanctions cache: %w", err)
	}

	var matches []Match
	if err := json.Unmarshal(data, &matches); err != nil {
		return nil, fmt.Errorf("decode sanctions cache: %w", err)
	}
	if matches == nil {
		matches = []Match{}
	}
	return matches, nil
}

// Set writes matches with TTL eviction, overwriting any existing entry.
func (c *RedisCache) Set(ctx context.Context, key string, matches []Match) error {
	payload, err := json.Marshal(matches)
	if err != nil {
		return fmt.Errorf("encode sanctions cache: %w", err)
	}
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("save sanctions cache: %w", err)
	}
	return nil
}
