// internal/core/services/cache.go
package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/ammerola/backoffice-be/internal/core/ports"
)

// cached reads key through cache, falling back to fetch on a miss. A cache
// outage degrades to uncached reads; errors from fetch are returned as is.
//
// Writers invalidate after commit, so a fetch that read before the commit and
// stores after the invalidation can leave a stale entry. That window is bounded
// by ttl.
func cached[T any](ctx context.Context, cache ports.CacheRepository, logger *slog.Logger,
	key string, ttl time.Duration, fetch func() (T, error)) (T, error) {
	if cache == nil || ttl <= 0 {
		return fetch()
	}

	var (
		dest     T
		fetchErr error
	)
	err := cache.GetOrSet(ctx, key, &dest, func() (interface{}, error) {
		v, err := fetch()
		fetchErr = err
		return v, err
	}, ttl)
	if fetchErr != nil {
		var zero T
		return zero, fetchErr
	}
	if err != nil {
		logger.WarnContext(ctx, "cache unavailable, reading through",
			slog.String("key", key),
			slog.String("error", err.Error()))
		return fetch()
	}
	return dest, nil
}
