// internal/workers/analytics_processor.go
package workers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/ammerola/backoffice-be/internal/core/domain"
	"github.com/ammerola/backoffice-be/internal/core/ports"
)

// AnalyticsProcessor runs the stock audit and refreshes the dashboard
type AnalyticsProcessor struct {
	reports ports.ReportService
	jobs    ports.JobRepository
	tracker jobTracker
	logger  *slog.Logger
}

// NewAnalyticsProcessor creates a new analytics processor
func NewAnalyticsProcessor(reports ports.ReportService, jobs ports.JobRepository, logger *slog.Logger) *AnalyticsProcessor {
	logger = logger.With(slog.String("processor", "analytics"))
	return &AnalyticsProcessor{
		reports: reports,
		jobs:    jobs,
		tracker: jobTracker{jobs: jobs, logger: logger},
		logger:  logger,
	}
}

// AuditStock compares every product's stock with its purchase and sales
// history. Scheduled runs have no job yet, so one is created to hold the
// result.
func (p *AnalyticsProcessor) AuditStock(ctx context.Context, t *asynq.Task) error {
	job, err := p.jobs.Create(ctx, TypeStockAudit, nil)
	if err != nil {
		return fmt.Errorf("failed to create job record: %w", err)
	}
	jobID := job.ID.String()
	p.tracker.start(ctx, jobID)

	found, err := p.reports.AuditStock(ctx)
	if err != nil {
		return p.tracker.finish(ctx, jobID, err)
	}
	if found == nil {
		found = []domain.StockDiscrepancy{}
	}

	p.tracker.complete(ctx, jobID, StockAuditResult{Discrepancies: found})

	level := slog.LevelInfo
	if len(found) > 0 {
		level = slog.LevelWarn
	}
	p.logger.Log(ctx, level, "stock audit finished",
		slog.String("job_id", jobID),
		slog.Int("discrepancies", len(found)))

	return nil
}

// RefreshDashboard rebuilds the stock summary view
func (p *AnalyticsProcessor) RefreshDashboard(ctx context.Context, t *asynq.Task) error {
	p.logger.InfoContext(ctx, "refreshing dashboard")

	if err := p.reports.RefreshDashboard(ctx); err != nil {
		return fmt.Errorf("failed to refresh materialized view: %w", err)
	}

	p.logger.InfoContext(ctx, "dashboard refreshed successfully")
	return nil
}
