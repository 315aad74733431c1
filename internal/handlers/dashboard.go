// internal/handlers/dashboard.go
package handlers

import (
	"log/slog"
	"net/http"

	"github.com/ammerola/backoffice-be/internal/core/ports"
)

// ReportHandler serves the sales report and the stock dashboard
type ReportHandler struct {
	responder
	reports ports.ReportService
}

// NewReportHandler creates a new report handler
func NewReportHandler(reports ports.ReportService, l *slog.Logger) *ReportHandler {
	return &ReportHandler{
		responder: responder{logger: l.With(slog.String("handler", "report"))},
		reports:   reports,
	}
}

// SalesReport handles GET /api/v1/reports/sales?startDate=&endDate=
func (h *ReportHandler) SalesReport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	start, end := q.Get("startDate"), q.Get("endDate")
	if start == "" || end == "" {
		h.respondError(w, http.StatusBadRequest, "startDate and endDate are required")
		return
	}

	report, err := h.reports.SalesByDateRange(r.Context(), start, end)
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to build sales report")
		return
	}

	h.respondJSON(w, http.StatusOK, report)
}

// GetDashboard handles GET /api/v1/dashboard
func (h *ReportHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	summary, err := h.reports.Dashboard(r.Context())
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to load dashboard")
		return
	}

	h.respondJSON(w, http.StatusOK, summary)
}
