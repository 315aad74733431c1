// internal/core/ports/jobs.go
package ports

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/ammerola/backoffice-be/internal/core/domain"
)

// JobRepository tracks async jobs started from the API
type JobRepository interface {
	Create(ctx context.Context, jobType string, payload any) (*domain.AsyncJob, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.AsyncJob, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.JobStatus, progress int, result json.RawMessage, errMsg string) error
	DeleteFinishedBefore(ctx context.Context, before time.Time) (int64, error)
}

// JobDispatcher records a job and queues the background task that runs it
type JobDispatcher interface {
	ImportReceipt(ctx context.Context, fileKey, actingUserID string) (*domain.AsyncJob, error)
	ImportProducts(ctx context.Context, fileKey string) (*domain.AsyncJob, error)
	ExportSales(ctx context.Context, startDate, endDate string) (*domain.AsyncJob, error)
}
