// internal/core/ports/database.go
package ports

import "context"

// HealthChecker is what the health probes ask of the database
type HealthChecker interface {
	Ping(ctx context.Context) error
	// Health returns pool statistics; it sets "status" to "unhealthy" and
	// "error" when the database cannot be reached.
	Health(ctx context.Context) map[string]interface{}
}
