package geocoding

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"

	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

// Cache stores geocoding answers by normalized query.
type Cache interface {
	Get(ctx context.Context, key string) (types.Coordinates, bool)
	Set(ctx context.Context, key string, c types.Coordinates)
}

type MemoryCache struct {
	c *cache.Cache
}

func NewMemoryCache(ttl, cleanupInterval time.Duration) *MemoryCache {
	return &MemoryCache{c: cache.New(ttl, cleanupInterval)}
}

func (m *MemoryCache) Get(_ context.Context, key string) (types.Coordinates, bool) {
	v, found := m.c.Get(key)
	if !found {
		return types.Coordinates{}, false
	}
	c, ok := v.(types.Coordinates)
	return c, ok
}

func (m *MemoryCache) Set(_ context.Context, key string, c types.Coordinates) {
	m.c.Set(key, c, cache.DefaultExpiration)
}

// RedisCache shares answers across instances. Redis errors degrade to
// cache misses.
type RedisCache struct {
	client redis.Cmdable
	ttl    time.Duration
	logger *slog.Logger
}

func NewRedisCache(client redis.Cmdable, ttl time.Duration, logger *slog.Logger) *RedisCache {
	return &RedisCache{client: client, ttl: ttl, logger: logger}
}

func (r *RedisCache) Get(ctx context.Context, key string) (types.Coordinates, bool) {
	raw, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.logger.WarnContext(ctx, "Redis geocode cache read failed", slog.String("key", key), slog.Any("error", err))
		}
		return types.Coordinates{}, false
	}
	var c types.Coordinates
	if err := json.Unmarshal(raw, &c); err != nil {
		return types.Coordinates{}, false
	}
	return c, true
}

func (r *RedisCache) Set(ctx context.Context, key string, c types.Coordinates) {
	raw, err := json.Marshal(c)
	if err != nil {
		return
	}
	if err := r.client.Set(ctx, key, raw, r.ttl).Err(); err != nil {
		r.logger.WarnContext(ctx, "Redis geocode cache write failed", slog.String("key", key), slog.Any("error", err))
	}
}
