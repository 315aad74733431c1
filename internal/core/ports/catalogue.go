// internal/core/ports/catalogue.go
package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ammerola/backoffice-be/internal/core/domain"
)

// ProductRepository is the catalogue persistence port. It never writes stock
// after creation; that belongs to StockLedger.
type ProductRepository interface {
	Save(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, product *domain.Product) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	FindBySKU(ctx context.Context, sku string) (*domain.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
	IsReferenced(ctx context.Context, id uuid.UUID) (bool, error)
	List(ctx context.Context, query domain.ListQuery) ([]*domain.Product, int64, error)
	Search(ctx context.Context, term string, page *domain.Page) ([]*domain.Product, error)
	ExpiringBetween(ctx context.Context, from, to time.Time) ([]*domain.Product, error)
	BelowMinimum(ctx context.Context) ([]*domain.Product, error)
}

// ProductService is the catalogue application service
type ProductService interface {
	Find(ctx context.Context, query domain.ListQuery) (*domain.ProductList, error)
	Search(ctx context.Context, term string, page *domain.Page) ([]*domain.Product, error)
	FindExpiringSoon(ctx context.Context) ([]*domain.Product, error)
	FindBelowMinimum(ctx context.Context) ([]*domain.Product, error)
	FindOne(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	Create(ctx context.Context, product *domain.Product) (*domain.Product, error)
	Update(ctx context.Context, id uuid.UUID, changes domain.ProductChanges) (*domain.Product, error)
	Delete(ctx context.Context, id uuid.UUID) (*domain.DeleteResult, error)
	ImportProducts(ctx context.Context, products []*domain.Product) (created, updated int, err error)
}

// ReportRepository reads sales and stock aggregates
type ReportRepository interface {
	SalesBetween(ctx context.Context, r domain.DateRange) ([]domain.Sale, error)
	SalesTotalBetween(ctx context.Context, r domain.DateRange) (decimal.Decimal, error)
	StockSummary(ctx context.Context) (*domain.StockSummary, error)
	RefreshStockSummary(ctx context.Context) error
	StockDiscrepancies(ctx context.Context) ([]domain.StockDiscrepancy, error)
}

// ReportService produces sales reports and dashboard figures
type ReportService interface {
	SalesByDateRange(ctx context.Context, start, end string) (*domain.SalesReport, error)
	Dashboard(ctx context.Context) (*domain.StockSummary, error)
	AuditStock(ctx context.Context) ([]domain.StockDiscrepancy, error)
	RefreshDashboard(ctx context.Context) error
}

// SupplierRepository resolves suppliers named on imported receipts
type SupplierRepository interface {
	FindByRUC(ctx context.Context, ruc string) (*domain.Supplier, error)
}
