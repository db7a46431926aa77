package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient connects to rawURL, which may be a full redis:// URL or a
// bare host:port, and pings it.
func NewRedisClient(ctx context.Context, rawURL string) (*redis.Client, error) {
	if !strings.Contains(rawURL, "://") {
		rawURL = "redis://" + rawURL
	}
	opt, err := redis.ParseURL(rawURL)
	if err != nil {
		opt = &redis.Options{Addr: strings.TrimPrefix(rawURL, "redis://")}
	}
	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

// RedisCache stores JSON-encoded values under a key prefix so several
// front-end replicas share cached aggregates.
type RedisCache[T any] struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

func NewRedisCache[T any](client redis.UniversalClient, prefix string, ttl time.Duration) *RedisCache[T] {
	return &RedisCache[T]{client: client, prefix: prefix, ttl: ttl}
}

func (c *RedisCache[T]) key(k string) string {
	return c.prefix + k
}

func (c *RedisCache[T]) Get(ctx context.Context, key string) (T, bool) {
	var zero T
	raw, err := c.client.Get(ctx, c.key(key)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.WarnContext(ctx, "Redis cache read failed", "component", "cache", "key", c.key(key), "error", err)
		}
		return zero, false
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		slog.WarnContext(ctx, "Redis cache entry undecodable", "component", "cache", "key", c.key(key), "error", err)
		return zero, false
	}
	return out, true
}

func (c *RedisCache[T]) Set(ctx context.Context, key string, data T) {
	raw, err := json.Marshal(data)
	if err != nil {
		slog.WarnContext(ctx, "Redis cache encode failed", "component", "cache", "key", c.key(key), "error", err)
		return
	}
	if err := c.client.Set(ctx, c.key(key), raw, c.ttl).Err(); err != nil {
		slog.WarnContext(ctx, "Redis cache write failed", "component", "cache", "key", c.key(key), "error", err)
	}
}

func (c *RedisCache[T]) Delete(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = c.key(k)
	}
	if err := c.client.Del(ctx, full...).Err(); err != nil {
		slog.WarnContext(ctx, "Redis cache delete failed", "component", "cache", "keys", full, "error", err)
	}
}
