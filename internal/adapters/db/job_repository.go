// internal/adapters/db/job_repository.go
package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ammerola/backoffice-be/internal/core/domain"
	"github.com/ammerola/backoffice-be/internal/core/ports"
)

const jobColumns = `id, type, status, progress, payload, result, error, created_at, updated_at, completed_at`

type jobRepository struct {
	db     *Database
	logger *slog.Logger
}

// NewJobRepository creates the async job store
func NewJobRepository(db *Database, logger *slog.Logger) ports.JobRepository {
	return &jobRepository{
		db:     db,
		logger: logger.With(slog.String("repository", "job")),
	}
}

// Create stores a pending job
func (r *jobRepository) Create(ctx context.Context, jobType string, payload any) (*domain.AsyncJob, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal job payload: %w", err)
	}

	query := `INSERT INTO async_jobs (type, status, payload) VALUES ($1, $2, $3) RETURNING ` + jobColumns
	job, err := scanJob(r.db.QueryRow(ctx, query, jobType, string(domain.JobPending), raw))
	if err != nil {
		return nil, fmt.Errorf("failed to create job: %w", mapPgError(err))
	}

	r.logger.InfoContext(ctx, "job created",
		slog.String("job_id", job.ID.String()),
		slog.String("type", jobType))
	return job, nil
}

// Get returns a job by id
func (r *jobRepository) Get(ctx context.Context, id uuid.UUID) (*domain.AsyncJob, error) {
	job, err := scanJob(r.db.QueryRow(ctx, `SELECT `+jobColumns+` FROM async_jobs WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrJobNotFound, id)
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return job, nil
}

// UpdateStatus records progress. Terminal statuses also stamp completed_at.
func (r *jobRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.JobStatus, progress int, result json.RawMessage, errMsg string) error {
	const query = `
		UPDATE async_jobs SET
			status = $2,
			progress = $3,
			result = COALESCE($4, result),
			error = $5,
			updated_at = now(),
			completed_at = CASE WHEN $2 IN ('completed', 'failed') THEN now() ELSE completed_at END
		WHERE id = $1`

	var res any
	if len(result) > 0 {
		res = []byte(result)
	}

	tag, err := r.db.Exec(ctx, query, id, string(status), progress, res, errMsg)
	if err != nil {
		return fmt.Errorf("failed to update job status: %w", mapPgError(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", domain.ErrJobNotFound, id)
	}
	return nil
}

// DeleteFinishedBefore removes completed and failed jobs last touched before the cutoff
func (r *jobRepository) DeleteFinishedBefore(ctx context.Context, before time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM async_jobs WHERE status IN ('completed', 'failed') AND updated_at < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("failed to delete finished jobs: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanJob(row pgx.Row) (*domain.AsyncJob, error) {
	job := &domain.AsyncJob{}
	var status string
	var payload, result []byte
	err := row.Scan(&job.ID, &job.Type, &status, &job.Progress, &payload, &result,
		&job.Error, &job.CreatedAt, &job.UpdatedAt, &job.CompletedAt)
	if err != nil {
		return nil, err
	}
	job.Status = domain.JobStatus(status)
	job.Payload = payload
	job.Result = result
	return job, nil
}
