// internal/workers/dispatcher.go
package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/ammerola/backoffice-be/internal/core/domain"
	"github.com/ammerola/backoffice-be/internal/core/ports"
)

// Enqueuer is the part of *asynq.Client the dispatcher needs
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Dispatcher records async jobs and queues the tasks that run them
type Dispatcher struct {
	client   Enqueuer
	jobs     ports.JobRepository
	maxRetry int
	logger   *slog.Logger
}

var _ ports.JobDispatcher = (*Dispatcher)(nil)

// NewDispatcher creates a dispatcher over an asynq client
func NewDispatcher(client Enqueuer, jobs ports.JobRepository, maxRetry int, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		client:   client,
		jobs:     jobs,
		maxRetry: maxRetry,
		logger:   logger.With(slog.String("component", "dispatcher")),
	}
}

// ImportReceipt queues the recording of a purchase from a stored receipt
func (d *Dispatcher) ImportReceipt(ctx context.Context, fileKey, actingUserID string) (*domain.AsyncJob, error) {
	return d.dispatch(ctx, TypePurchaseReceipt, "critical", func(jobID string) any {
		return ReceiptJobPayload{JobID: jobID, FileKey: fileKey, UserID: actingUserID}
	})
}

// ImportProducts queues a product sheet import
func (d *Dispatcher) ImportProducts(ctx context.Context, fileKey string) (*domain.AsyncJob, error) {
	return d.dispatch(ctx, TypeProductImport, "default", func(jobID string) any {
		return ProductImportPayload{JobID: jobID, FileKey: fileKey}
	})
}

// ExportSales queues a sales workbook export. The range is checked here so
// a bad request fails before a job exists.
func (d *Dispatcher) ExportSales(ctx context.Context, startDate, endDate string) (*domain.AsyncJob, error) {
	if _, err := domain.NewDateRange(startDate, endDate); err != nil {
		return nil, err
	}
	return d.dispatch(ctx, TypeSalesExport, "low", func(jobID string) any {
		return SalesExportPayload{JobID: jobID, StartDate: startDate, EndDate: endDate}
	})
}

func (d *Dispatcher) dispatch(ctx context.Context, taskType, queue string, payload func(jobID string) any) (*domain.AsyncJob, error) {
	job, err := d.jobs.Create(ctx, taskType, payload(""))
	if err != nil {
		return nil, fmt.Errorf("failed to create job record: %w", err)
	}

	b, err := json.Marshal(payload(job.ID.String()))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal task payload: %w", err)
	}

	info, err := d.client.EnqueueContext(ctx, asynq.NewTask(taskType, b),
		asynq.Queue(queue),
		asynq.MaxRetry(d.maxRetry),
		asynq.Retention(24*time.Hour))
	if err != nil {
		if uerr := d.jobs.UpdateStatus(ctx, job.ID, domain.JobFailed, 0, nil, "failed to queue task"); uerr != nil {
			d.logger.WarnContext(ctx, "failed to mark job failed", slog.String("error", uerr.Error()))
		}
		return nil, fmt.Errorf("failed to enqueue task: %w", err)
	}

	d.logger.InfoContext(ctx, "job queued",
		slog.String("job_id", job.ID.String()),
		slog.String("task_id", info.ID),
		slog.String("type", taskType))

	return job, nil
}
