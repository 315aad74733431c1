// internal/core/services/employees.go
package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ammerola/backoffice-be/internal/core/ports"
)

// CachedEmployeeResolver memoizes user to employee resolution. Misses are
// not cached, so a newly created employee is visible on the next request.
type CachedEmployeeResolver struct {
	next   ports.EmployeeResolver
	cache  ports.CacheRepository
	ttl    time.Duration
	logger *slog.Logger
}

var _ ports.EmployeeResolver = (*CachedEmployeeResolver)(nil)

// NewCachedEmployeeResolver wraps next with cache
func NewCachedEmployeeResolver(next ports.EmployeeResolver, cache ports.CacheRepository, ttl time.Duration, logger *slog.Logger) *CachedEmployeeResolver {
	return &CachedEmployeeResolver{
		next:   next,
		cache:  cache,
		ttl:    ttl,
		logger: logger.With(slog.String("service", "employee_resolver")),
	}
}

// ResolveEmployee returns the employee id for userID
func (r *CachedEmployeeResolver) ResolveEmployee(ctx context.Context, userID string) (uuid.UUID, error) {
	return cached(ctx, r.cache, r.logger, ports.EmployeeCacheKey(userID), r.ttl,
		func() (uuid.UUID, error) { return r.next.ResolveEmployee(ctx, userID) })
}
