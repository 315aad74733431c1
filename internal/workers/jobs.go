// internal/workers/jobs.go
package workers

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"

	"github.com/ammerola/backoffice-be/internal/core/domain"
	"github.com/ammerola/backoffice-be/internal/core/ports"
)

// jobTracker mirrors task progress onto the async_jobs row. Tracking
// failures are logged and never fail the task.
type jobTracker struct {
	jobs   ports.JobRepository
	logger *slog.Logger
}

func (t jobTracker) parse(ctx context.Context, jobID string) (uuid.UUID, bool) {
	if jobID == "" {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(jobID)
	if err != nil {
		t.logger.WarnContext(ctx, "task carries an invalid job id", slog.String("job_id", jobID))
		return uuid.Nil, false
	}
	return id, true
}

func (t jobTracker) update(ctx context.Context, jobID string, status domain.JobStatus, progress int, result json.RawMessage, errMsg string) {
	id, ok := t.parse(ctx, jobID)
	if !ok {
		return
	}
	if err := t.jobs.UpdateStatus(ctx, id, status, progress, result, errMsg); err != nil {
		t.logger.WarnContext(ctx, "failed to update job status",
			slog.String("job_id", jobID),
			slog.String("status", string(status)),
			slog.String("error", err.Error()))
	}
}

func (t jobTracker) start(ctx context.Context, jobID string) {
	t.update(ctx, jobID, domain.JobProcessing, 10, nil, "")
}

func (t jobTracker) progress(ctx context.Context, jobID string, pct int) {
	t.update(ctx, jobID, domain.JobProcessing, pct, nil, "")
}

func (t jobTracker) complete(ctx context.Context, jobID string, result any) {
	data, err := json.Marshal(result)
	if err != nil {
		t.logger.ErrorContext(ctx, "failed to marshal job result", slog.String("error", err.Error()))
		data = nil
	}
	t.update(ctx, jobID, domain.JobCompleted, 100, data, "")
}

// finish records err on the job unless asynq is going to retry the task, in
// which case the job stays in processing. It returns err with the retry
// policy applied.
func (t jobTracker) finish(ctx context.Context, jobID string, err error) error {
	err = retryPolicy(err)
	if !domain.IsRetryable(err) || lastAttempt(ctx) {
		t.update(ctx, jobID, domain.JobFailed, 100, nil, err.Error())
	}
	return err
}
