// internal/adapters/db/report_repository.go
package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/ammerola/backoffice-be/internal/core/domain"
	"github.com/ammerola/backoffice-be/internal/core/ports"
)

type reportRepository struct {
	db     *Database
	logger *slog.Logger
}

// NewReportRepository creates the report read model
func NewReportRepository(db *Database, logger *slog.Logger) ports.ReportRepository {
	return &reportRepository{
		db:     db,
		logger: logger.With(slog.String("repository", "report")),
	}
}

// SalesBetween returns the sales in the range with their lines, oldest first
func (r *reportRepository) SalesBetween(ctx context.Context, dr domain.DateRange) ([]domain.Sale, error) {
	const headers = `
		SELECT id, number, customer_name, customer_dni, total, created_at
		FROM sales
		WHERE created_at BETWEEN $1 AND $2
		ORDER BY created_at, id`

	rows, err := r.db.Query(ctx, headers, dr.Start, dr.End)
	if err != nil {
		return nil, fmt.Errorf("failed to query sales: %w", err)
	}

	sales, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Sale, error) {
		var s domain.Sale
		err := row.Scan(&s.ID, &s.Number, &s.CustomerName, &s.CustomerDNI, &s.Total, &s.CreatedAt)
		return s, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan sales: %w", err)
	}
	if len(sales) == 0 {
		return []domain.Sale{}, nil
	}

	ids := make([]uuid.UUID, len(sales))
	index := make(map[uuid.UUID]int, len(sales))
	for i, s := range sales {
		ids[i] = s.ID
		index[s.ID] = i
		sales[i].Items = []domain.SaleItem{}
	}

	const lines = `
		SELECT si.sale_id, si.product_id, p.name, p.sku, si.quantity, si.unit_price
		FROM sale_items si
		JOIN products p ON p.id = si.product_id
		WHERE si.sale_id = ANY($1)
		ORDER BY si.sale_id, p.name`

	itemRows, err := r.db.Query(ctx, lines, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to query sale items: %w", err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var saleID uuid.UUID
		var it domain.SaleItem
		if err := itemRows.Scan(&saleID, &it.ProductID, &it.Name, &it.SKU, &it.Quantity, &it.UnitPrice); err != nil {
			return nil, fmt.Errorf("failed to scan sale item: %w", err)
		}
		i := index[saleID]
		sales[i].Items = append(sales[i].Items, it)
	}
	if err := itemRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sale items: %w", err)
	}

	return sales, nil
}

// SalesTotalBetween sums sale totals in the range
func (r *reportRepository) SalesTotalBetween(ctx context.Context, dr domain.DateRange) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.QueryRow(ctx,
		`SELECT COALESCE(SUM(total), 0) FROM sales WHERE created_at BETWEEN $1 AND $2`,
		dr.Start, dr.End,
	).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum sales: %w", err)
	}
	return total, nil
}

// StockSummary reads the materialized catalogue figures plus today's activity,
// which is always live.
func (r *reportRepository) StockSummary(ctx context.Context) (*domain.StockSummary, error) {
	const query = `
		SELECT
			s.products, s.active_products, s.units_in_stock, s.stock_value,
			s.below_minimum, s.expiring_soon, s.refreshed_at,
			(SELECT COUNT(*) FROM purchases WHERE created_at >= CURRENT_DATE),
			(SELECT COALESCE(SUM(total), 0) FROM purchases WHERE created_at >= CURRENT_DATE),
			(SELECT COUNT(*) FROM sales WHERE created_at >= CURRENT_DATE),
			(SELECT COALESCE(SUM(total), 0) FROM sales WHERE created_at >= CURRENT_DATE)
		FROM product_stock_summary s
		WHERE s.id = 1`

	sum := &domain.StockSummary{}
	err := r.db.QueryRow(ctx, query).Scan(
		&sum.Products, &sum.ActiveProducts, &sum.UnitsInStock, &sum.StockValue,
		&sum.BelowMinimum, &sum.ExpiringSoon, &sum.RefreshedAt,
		&sum.PurchasesToday, &sum.PurchasedToday, &sum.SalesToday, &sum.SoldToday,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("stock summary has not been populated: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read stock summary: %w", err)
	}
	return sum, nil
}

// RefreshStockSummary rebuilds the materialized view without blocking readers
func (r *reportRepository) RefreshStockSummary(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, `REFRESH MATERIALIZED VIEW CONCURRENTLY product_stock_summary`); err != nil {
		return fmt.Errorf("failed to refresh stock summary: %w", err)
	}
	r.logger.DebugContext(ctx, "stock summary refreshed")
	return nil
}

// StockDiscrepancies lists products whose stock differs from
// initial_stock + purchased - sold.
func (r *reportRepository) StockDiscrepancies(ctx context.Context) ([]domain.StockDiscrepancy, error) {
	const query = `
		SELECT p.id, p.sku, p.stock, p.initial_stock,
		       COALESCE(pi.qty, 0) AS purchased,
		       COALESCE(si.qty, 0) AS sold
		FROM products p
		LEFT JOIN (
			SELECT product_id, SUM(quantity) AS qty FROM purchase_items GROUP BY product_id
		) pi ON pi.product_id = p.id
		LEFT JOIN (
			SELECT product_id, SUM(quantity) AS qty FROM sale_items GROUP BY product_id
		) si ON si.product_id = p.id
		WHERE p.stock <> p.initial_stock + COALESCE(pi.qty, 0) - COALESCE(si.qty, 0)
		ORDER BY p.sku`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query stock discrepancies: %w", err)
	}

	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.StockDiscrepancy, error) {
		var d domain.StockDiscrepancy
		err := row.Scan(&d.ProductID, &d.SKU, &d.Stock, &d.InitialStock, &d.Purchased, &d.Sold)
		return d, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan stock discrepancies: %w", err)
	}
	if out == nil {
		out = []domain.StockDiscrepancy{}
	}
	return out, nil
}
