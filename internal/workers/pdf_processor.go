// internal/workers/pdf_processor.go
package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/ammerola/backoffice-be/internal/adapters/documents"
	"github.com/ammerola/backoffice-be/internal/core/domain"
	"github.com/ammerola/backoffice-be/internal/core/ports"
)

// PDFProcessor records purchases from uploaded supplier receipts
type PDFProcessor struct {
	purchases ports.PurchaseService
	products  ports.ProductRepository
	suppliers ports.SupplierRepository
	files     ports.FileStorage
	tracker   jobTracker
	logger    *slog.Logger
}

// NewPDFProcessor creates a new PDF processor
func NewPDFProcessor(purchases ports.PurchaseService, products ports.ProductRepository, suppliers ports.SupplierRepository,
	files ports.FileStorage, jobs ports.JobRepository, logger *slog.Logger) *PDFProcessor {
	logger = logger.With(slog.String("processor", "pdf"))
	return &PDFProcessor{
		purchases: purchases,
		products:  products,
		suppliers: suppliers,
		files:     files,
		tracker:   jobTracker{jobs: jobs, logger: logger},
		logger:    logger,
	}
}

// ProcessReceipt parses the receipt and records it through the purchase
// coordinator, so stock moves exactly as for a purchase entered by hand.
func (p *PDFProcessor) ProcessReceipt(ctx context.Context, t *asynq.Task) error {
	start := time.Now()

	var payload ReceiptJobPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w: %w", err, asynq.SkipRetry)
	}

	p.logger.InfoContext(ctx, "processing receipt",
		slog.String("job_id", payload.JobID),
		slog.String("file_key", payload.FileKey))

	p.tracker.start(ctx, payload.JobID)

	purchase, err := p.record(ctx, payload)
	if err != nil {
		p.logger.WarnContext(ctx, "receipt import failed",
			slog.String("job_id", payload.JobID),
			slog.String("error", err.Error()))
		return p.tracker.finish(ctx, payload.JobID, err)
	}

	p.tracker.complete(ctx, payload.JobID, ReceiptJobResult{
		PurchaseID:     purchase.ID.String(),
		Number:         purchase.Number,
		Items:          len(purchase.Items),
		ProcessingTime: time.Since(start).String(),
	})

	p.logger.InfoContext(ctx, "receipt recorded",
		slog.String("job_id", payload.JobID),
		slog.String("purchase_id", purchase.ID.String()),
		slog.Int("items", len(purchase.Items)))

	return nil
}

func (p *PDFProcessor) record(ctx context.Context, payload ReceiptJobPayload) (*domain.Purchase, error) {
	data, err := p.files.Download(ctx, payload.FileKey)
	if err != nil {
		return nil, err
	}

	receipt, err := documents.ParseReceiptPDF(data)
	if err != nil {
		return nil, err
	}
	p.tracker.progress(ctx, payload.JobID, 40)

	input, err := p.toPurchaseInput(ctx, receipt)
	if err != nil {
		return nil, err
	}
	p.tracker.progress(ctx, payload.JobID, 70)

	return p.purchases.Create(ctx, input, payload.UserID)
}

// toPurchaseInput resolves the supplier RUC and every SKU on the receipt
func (p *PDFProcessor) toPurchaseInput(ctx context.Context, r *documents.Receipt) (domain.PurchaseInput, error) {
	supplier, err := p.suppliers.FindByRUC(ctx, r.SupplierRUC)
	if err != nil {
		return domain.PurchaseInput{}, err
	}

	in := domain.PurchaseInput{
		Number:     r.Number,
		SupplierID: supplier.ID,
		Total:      r.Total,
		Items:      make([]domain.PurchaseItem, 0, len(r.Lines)),
	}
	for _, line := range r.Lines {
		product, err := p.products.FindBySKU(ctx, line.SKU)
		if err != nil {
			return domain.PurchaseInput{}, err
		}
		if product == nil {
			return domain.PurchaseInput{}, fmt.Errorf("%w: sku %s", domain.ErrProductNotFound, line.SKU)
		}
		in.Items = append(in.Items, domain.PurchaseItem{
			ProductID: product.ID,
			Quantity:  line.Quantity,
			UnitCost:  line.UnitCost,
		})
	}
	return in, nil
}
