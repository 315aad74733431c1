// internal/workers/tasks.go
package workers

import (
	"context"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/ammerola/backoffice-be/internal/adapters/documents"
	"github.com/ammerola/backoffice-be/internal/core/domain"
)

const (
	TypePurchaseReceipt  = "purchase:receipt"
	TypeProductImport    = "product:import"
	TypeStockAudit       = "stock:audit"
	TypeStockAlerts      = "alerts:stock"
	TypeSalesExport      = "report:export"
	TypeDashboardRefresh = "dashboard:refresh"
	TypeJobsCleanup      = "jobs:cleanup"
)

// ReceiptJobPayload asks for a purchase to be recorded from an uploaded PDF
type ReceiptJobPayload struct {
	JobID   string `json:"job_id,omitempty"`
	FileKey string `json:"file_key"`
	UserID  string `json:"user_id"`
}

// ReceiptJobResult is stored on the job once the purchase is recorded
type ReceiptJobResult struct {
	PurchaseID     string `json:"purchase_id"`
	Number         string `json:"number"`
	Items          int    `json:"items"`
	ProcessingTime string `json:"processing_time"`
}

// ProductImportPayload asks for a product sheet to be imported
type ProductImportPayload struct {
	JobID   string `json:"job_id,omitempty"`
	FileKey string `json:"file_key"`
}

// ProductImportResult counts what the import did
type ProductImportResult struct {
	Created        int                  `json:"created"`
	Updated        int                  `json:"updated"`
	Rejected       []documents.RowError `json:"rejected,omitempty"`
	ProcessingTime string               `json:"processing_time"`
}

// SalesExportPayload asks for the sales report of a date range as XLSX
type SalesExportPayload struct {
	JobID     string `json:"job_id,omitempty"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// SalesExportResult points at the generated workbook
type SalesExportResult struct {
	FileKey string `json:"file_key"`
	URL     string `json:"url"`
	Sales   int    `json:"sales"`
}

// StockAuditResult lists products whose stock drifted from their history
type StockAuditResult struct {
	Discrepancies []domain.StockDiscrepancy `json:"discrepancies"`
}

// retryPolicy lets asynq retry transient failures and stops it from retrying
// requests that can never succeed.
func retryPolicy(err error) error {
	if err == nil || domain.IsRetryable(err) {
		return err
	}
	if errors.Is(err, domain.ErrInvalidInput) || errors.Is(err, domain.ErrNotFound) ||
		errors.Is(err, domain.ErrInconsistent) || errors.Is(err, domain.ErrStockUnderflow) {
		return fmt.Errorf("%w: %w", asynq.SkipRetry, err)
	}
	return err
}

// lastAttempt reports whether asynq will not run the task again after a
// retryable failure
func lastAttempt(ctx context.Context) bool {
	retried, ok1 := asynq.GetRetryCount(ctx)
	max, ok2 := asynq.GetMaxRetry(ctx)
	if !ok1 || !ok2 {
		return true
	}
	return retried >= max
}
