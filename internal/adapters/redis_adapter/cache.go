// internal/adapters/redis_adapter/cache.go
package redis_a

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/ammerola/backoffice-be/internal/core/ports"
)

// scanBatch is the COUNT hint for SCAN and the UNLINK batch size
const scanBatch = 200

// Cache is the Redis backed ports.CacheRepository
type Cache struct {
	client     redis.UniversalClient
	defaultTTL time.Duration
	logger     *slog.Logger
}

var _ ports.CacheRepository = (*Cache)(nil)

func NewCache(client redis.UniversalClient, defaultTTL time.Duration, logger *slog.Logger) *Cache {
	return &Cache{
		client:     client,
		defaultTTL: defaultTTL,
		logger:     logger.With(slog.String("component", "cache")),
	}
}

func (c *Cache) ttl(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return c.defaultTTL
	}
	return ttl
}

// Get decodes key into dest. Absent keys and values that no longer decode
// both report ports.ErrCacheMiss; the undecodable value is dropped.
func (c *Cache) Get(ctx context.Context, key string, dest any) error {
	data, err := c.client.Get(ctx, key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return ports.ErrCacheMiss
	case err != nil:
		return fmt.Errorf("redis get %s: %w", key, err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		c.logger.WarnContext(ctx, "discarding undecodable cache value",
			slog.String("key", key),
			slog.String("error", err.Error()))
		c.client.Unlink(ctx, key)
		return ports.ErrCacheMiss
	}
	return nil
}

func (c *Cache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode cache value %s: %w", key, err)
	}
	if err := c.client.Set(ctx, key, data, c.ttl(ttl)).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Unlink(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis unlink: %w", err)
	}
	return nil
}

// DeletePattern walks the keyspace with SCAN and unlinks matches page by
// page, so a large keyspace never builds one huge command
func (c *Cache) DeletePattern(ctx context.Context, pattern string) (int, error) {
	var (
		cursor  uint64
		deleted int
	)
	for {
		keys, next, err := c.client.Scan(ctx, cursor, pattern, scanBatch).Result()
		if err != nil {
			return deleted, fmt.Errorf("redis scan %q: %w", pattern, err)
		}
		if len(keys) > 0 {
			n, err := c.client.Unlink(ctx, keys...).Result()
			if err != nil {
				return deleted, fmt.Errorf("redis unlink %q: %w", pattern, err)
			}
			deleted += int(n)
		}
		if next == 0 {
			break
		}
		cursor = next
	}

	c.logger.DebugContext(ctx, "cache pattern cleared",
		slog.String("pattern", pattern),
		slog.Int("deleted", deleted))
	return deleted, nil
}

// GetOrSet is read-through: on a miss it calls fetch, stores the result and
// decodes that same encoding into dest so hits and misses look identical.
// Redis errors on the read degrade to calling fetch.
func (c *Cache) GetOrSet(ctx context.Context, key string, dest any, fetch func() (any, error), ttl time.Duration) error {
	err := c.Get(ctx, key, dest)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ports.ErrCacheMiss) {
		c.logger.WarnContext(ctx, "cache read failed, fetching",
			slog.String("key", key),
			slog.String("error", err.Error()))
	}

	value, err := fetch()
	if err != nil {
		return fmt.Errorf("fetch %s: %w", key, err)
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode cache value %s: %w", key, err)
	}
	if err := c.client.Set(ctx, key, data, c.ttl(ttl)).Err(); err != nil {
		c.logger.WarnContext(ctx, "failed to store fetched value",
			slog.String("key", key),
			slog.String("error", err.Error()))
	}
	return json.Unmarshal(data, dest)
}

func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Invalidator drops cache entries made stale by writes
type Invalidator struct {
	cache  ports.CacheRepository
	logger *slog.Logger
}

var _ ports.CacheInvalidator = (*Invalidator)(nil)

func NewInvalidator(cache ports.CacheRepository, logger *slog.Logger) *Invalidator {
	return &Invalidator{
		cache:  cache,
		logger: logger.With(slog.String("component", "cache_invalidator")),
	}
}

// InvalidatePurchaseCache drops the purchase, every cached purchase listing
// and the dashboard. Failures are logged; the entries expire on their own.
func (i *Invalidator) InvalidatePurchaseCache(ctx context.Context, purchaseID uuid.UUID) {
	if purchaseID != uuid.Nil {
		i.keys(ctx, ports.PurchaseCacheKey(purchaseID))
	}
	i.pattern(ctx, ports.PurchaseListCachePattern)
	i.keys(ctx, ports.DashboardCacheKey)
}

// InvalidateCatalogueCache drops everything that embeds product data
func (i *Invalidator) InvalidateCatalogueCache(ctx context.Context) {
	i.pattern(ctx, ports.PurchaseCachePattern)
	i.pattern(ctx, ports.PurchaseListCachePattern)
	i.keys(ctx, ports.DashboardCacheKey)
}

func (i *Invalidator) InvalidateDashboard(ctx context.Context) {
	i.keys(ctx, ports.DashboardCacheKey)
}

func (i *Invalidator) keys(ctx context.Context, keys ...string) {
	if err := i.cache.Delete(ctx, keys...); err != nil {
		i.warn(ctx, fmt.Sprint(keys), err)
	}
}

func (i *Invalidator) pattern(ctx context.Context, pattern string) {
	if _, err := i.cache.DeletePattern(ctx, pattern); err != nil {
		i.warn(ctx, pattern, err)
	}
}

func (i *Invalidator) warn(ctx context.Context, entries string, err error) {
	i.logger.WarnContext(ctx, "failed to invalidate cache",
		slog.String("entries", entries),
		slog.String("error", err.Error()))
}
