// internal/core/ports/cache.go
package ports

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrCacheMiss is returned by CacheRepository.Get when the key is absent
var ErrCacheMiss = errors.New("cache miss")

// Cache keys shared by services and the invalidator
const (
	DashboardCacheKey        = "dashboard:main"
	PurchaseCachePattern     = "purchase:*"
	PurchaseListCachePattern = "purchases:list:*"
)

// PurchaseCacheKey is the findOne key for a purchase
func PurchaseCacheKey(id uuid.UUID) string {
	return "purchase:" + id.String()
}

// PurchaseListCacheKey hashes a list query into its cache key
func PurchaseListCacheKey(query any) string {
	data, _ := json.Marshal(query)
	sum := sha1.Sum(data)
	return "purchases:list:" + hex.EncodeToString(sum[:])
}

// EmployeeCacheKey is the resolution key for an acting user
func EmployeeCacheKey(userID string) string {
	return "employee:" + userID
}

// CacheRepository stores JSON encoded values under string keys. A ttl of
// zero means the repository default.
type CacheRepository interface {
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	// DeletePattern removes every key matching a glob and reports how many
	DeletePattern(ctx context.Context, pattern string) (int, error)
	// GetOrSet fills dest from the cache, or from fetch on a miss. A fetch
	// error is returned and nothing is stored.
	GetOrSet(ctx context.Context, key string, dest any, fetch func() (any, error), ttl time.Duration) error
	Ping(ctx context.Context) error
}

// CacheInvalidator drops entries made stale by writes. It never fails the
// write that triggered it.
type CacheInvalidator interface {
	InvalidatePurchaseCache(ctx context.Context, purchaseID uuid.UUID)
	InvalidateCatalogueCache(ctx context.Context)
	InvalidateDashboard(ctx context.Context)
}
