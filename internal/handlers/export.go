// internal/handlers/export.go
package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/ammerola/backoffice-be/internal/adapters/documents"
	"github.com/ammerola/backoffice-be/internal/core/ports"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler exports the sales report as a workbook
type ExportHandler struct {
	responder
	reports    ports.ReportService
	dispatcher ports.JobDispatcher
}

// NewExportHandler creates a new export handler. dispatcher may be nil, in
// which case only direct downloads are offered.
func NewExportHandler(reports ports.ReportService, dispatcher ports.JobDispatcher, l *slog.Logger) *ExportHandler {
	return &ExportHandler{
		responder:  responder{logger: l.With(slog.String("handler", "export"))},
		reports:    reports,
		dispatcher: dispatcher,
	}
}

// ExportSales handles GET /api/v1/reports/sales/export. By default the
// workbook is built in the request and downloaded; with async=true it is
// built by a worker, stored, and the job result carries a presigned URL.
func (h *ExportHandler) ExportSales(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start, end := r.URL.Query().Get("startDate"), r.URL.Query().Get("endDate")

	if async, _ := strconv.ParseBool(r.URL.Query().Get("async")); async && h.dispatcher != nil {
		job, err := h.dispatcher.ExportSales(ctx, start, end)
		if err != nil {
			h.respondServiceError(w, r, err, "Failed to queue export job")
			return
		}
		h.respondJSON(w, http.StatusAccepted, JobAccepted{
			JobID:   job.ID.String(),
			Status:  string(job.Status),
			Message: "Export queued",
		})
		return
	}

	report, err := h.reports.SalesByDateRange(ctx, start, end)
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to build sales report")
		return
	}

	data, err := documents.WriteSalesReport(report)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to generate Excel file", slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "Failed to generate Excel file")
		return
	}

	filename := fmt.Sprintf("sales_%s_%s_%s.xlsx", start, end, time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")

	if _, err := w.Write(data); err != nil {
		h.logger.ErrorContext(ctx, "failed to write Excel response", slog.String("error", err.Error()))
		return
	}

	h.logger.InfoContext(ctx, "sales export downloaded",
		slog.Int("sales", report.Count),
		slog.String("filename", filename))
}
