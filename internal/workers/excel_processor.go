// internal/workers/excel_processor.go
package workers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/ammerola/backoffice-be/internal/adapters/documents"
	"github.com/ammerola/backoffice-be/internal/core/ports"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExcelProcessor imports product sheets and exports sales workbooks
type ExcelProcessor struct {
	products   ports.ProductService
	reports    ports.ReportService
	files      ports.FileStorage
	presignTTL time.Duration
	tracker    jobTracker
	logger     *slog.Logger
}

// NewExcelProcessor creates a new Excel processor
func NewExcelProcessor(products ports.ProductService, reports ports.ReportService, files ports.FileStorage,
	jobs ports.JobRepository, presignTTL time.Duration, logger *slog.Logger) *ExcelProcessor {
	logger = logger.With(slog.String("processor", "excel"))
	return &ExcelProcessor{
		products:   products,
		reports:    reports,
		files:      files,
		presignTTL: presignTTL,
		tracker:    jobTracker{jobs: jobs, logger: logger},
		logger:     logger,
	}
}

// ProcessProductImport creates or updates the catalogue from a sheet. Rows
// that fail to parse are reported in the job result; the rest are imported.
func (p *ExcelProcessor) ProcessProductImport(ctx context.Context, t *asynq.Task) error {
	start := time.Now()

	var payload ProductImportPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w: %w", err, asynq.SkipRetry)
	}

	p.logger.InfoContext(ctx, "processing product sheet",
		slog.String("job_id", payload.JobID),
		slog.String("file_key", payload.FileKey))

	p.tracker.start(ctx, payload.JobID)

	data, err := p.files.Download(ctx, payload.FileKey)
	if err != nil {
		return p.tracker.finish(ctx, payload.JobID, err)
	}

	products, rejected, err := documents.ReadProducts(data)
	if err != nil {
		return p.tracker.finish(ctx, payload.JobID, err)
	}
	p.tracker.progress(ctx, payload.JobID, 50)

	created, updated, err := p.products.ImportProducts(ctx, products)
	if err != nil {
		return p.tracker.finish(ctx, payload.JobID, err)
	}

	p.tracker.complete(ctx, payload.JobID, ProductImportResult{
		Created:        created,
		Updated:        updated,
		Rejected:       rejected,
		ProcessingTime: time.Since(start).String(),
	})

	p.logger.InfoContext(ctx, "product sheet imported",
		slog.String("job_id", payload.JobID),
		slog.Int("created", created),
		slog.Int("updated", updated),
		slog.Int("rejected", len(rejected)))

	return nil
}

// ProcessSalesExport builds the sales workbook and stores it
func (p *ExcelProcessor) ProcessSalesExport(ctx context.Context, t *asynq.Task) error {
	var payload SalesExportPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w: %w", err, asynq.SkipRetry)
	}

	p.tracker.start(ctx, payload.JobID)

	report, err := p.reports.SalesByDateRange(ctx, payload.StartDate, payload.EndDate)
	if err != nil {
		return p.tracker.finish(ctx, payload.JobID, err)
	}

	data, err := documents.WriteSalesReport(report)
	if err != nil {
		return p.tracker.finish(ctx, payload.JobID, err)
	}
	p.tracker.progress(ctx, payload.JobID, 60)

	name := fmt.Sprintf("exports/sales/sales_%s_%s_%s.xlsx", payload.StartDate, payload.EndDate, time.Now().Format("20060102_150405"))
	key, err := p.files.Upload(ctx, name, bytes.NewReader(data), xlsxContentType)
	if err != nil {
		return p.tracker.finish(ctx, payload.JobID, err)
	}

	url, err := p.files.GetPresignedURL(ctx, key, p.presignTTL)
	if err != nil {
		return p.tracker.finish(ctx, payload.JobID, err)
	}

	p.tracker.complete(ctx, payload.JobID, SalesExportResult{FileKey: key, URL: url, Sales: report.Count})

	p.logger.InfoContext(ctx, "sales export stored",
		slog.String("job_id", payload.JobID),
		slog.String("file_key", key),
		slog.Int("sales", report.Count))

	return nil
}
