// internal/adapters/db/product_repository.go
package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ammerola/backoffice-be/internal/core/domain"
	"github.com/ammerola/backoffice-be/internal/core/ports"
)

var productColumns = []string{
	"id", "sku", "name", "description", "stock", "initial_stock", "stock_min",
	"cost", "price", "has_expiration", "expiration_date", "status",
	"created_at", "updated_at",
}

var productSortColumns = map[string]string{
	"name":           "name",
	"sku":            "sku",
	"stock":          "stock",
	"stockMin":       "stock_min",
	"cost":           "cost",
	"price":          "price",
	"expirationDate": "expiration_date",
	"status":         "status",
	"createdAt":      "created_at",
}

// productRepository implements ports.ProductRepository
type productRepository struct {
	db     *Database
	logger *slog.Logger
}

// NewProductRepository creates a new product repository
func NewProductRepository(db *Database, logger *slog.Logger) ports.ProductRepository {
	return &productRepository{
		db:     db,
		logger: logger.With(slog.String("repository", "product")),
	}
}

func (r *productRepository) selectProducts() squirrel.SelectBuilder {
	return squirrel.Select(productColumns...).
		From("products").
		PlaceholderFormat(squirrel.Dollar)
}

// Save inserts a product. Stock given at creation becomes its initial stock.
func (r *productRepository) Save(ctx context.Context, p *domain.Product) error {
	const query = `
		INSERT INTO products (
			id, sku, name, description, stock, initial_stock, stock_min,
			cost, price, has_expiration, expiration_date, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := r.db.Exec(ctx, query,
		p.ID, p.SKU, p.Name, p.Description, p.Stock, p.StockMin,
		p.Cost, p.Price, p.HasExpiration, p.ExpirationDate, string(p.Status), p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save product: %w", mapPgError(err))
	}

	r.logger.DebugContext(ctx, "product saved",
		slog.String("product_id", p.ID.String()),
		slog.String("sku", p.SKU))
	return nil
}

// Update writes catalogue fields. stock and initial_stock are never touched.
func (r *productRepository) Update(ctx context.Context, p *domain.Product) error {
	const query = `
		UPDATE products SET
			sku = $2, name = $3, description = $4, stock_min = $5,
			cost = $6, price = $7, has_expiration = $8, expiration_date = $9,
			status = $10, updated_at = $11
		WHERE id = $1
		RETURNING stock, initial_stock`

	p.UpdatedAt = time.Now()
	err := r.db.QueryRow(ctx, query,
		p.ID, p.SKU, p.Name, p.Description, p.StockMin,
		p.Cost, p.Price, p.HasExpiration, p.ExpirationDate, string(p.Status), p.UpdatedAt,
	).Scan(&p.Stock, &p.InitialStock)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%w: %s", domain.ErrProductNotFound, p.ID)
		}
		return fmt.Errorf("failed to update product: %w", mapPgError(err))
	}
	return nil
}

// FindByID returns nil, nil when the product does not exist
func (r *productRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	return r.findOne(ctx, squirrel.Eq{"id": id})
}

// FindBySKU returns nil, nil when no product has the sku
func (r *productRepository) FindBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	return r.findOne(ctx, squirrel.Eq{"sku": sku})
}

func (r *productRepository) findOne(ctx context.Context, where squirrel.Sqlizer) (*domain.Product, error) {
	query, args, err := r.selectProducts().Where(where).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	p, err := ScanOne(r.db.QueryRow(ctx, query, args...), scanProduct)
	if err != nil {
		return nil, fmt.Errorf("failed to find product: %w", err)
	}
	return p, nil
}

// Delete removes a product
func (r *productRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", mapPgError(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", domain.ErrProductNotFound, id)
	}

	r.logger.InfoContext(ctx, "product deleted", slog.String("product_id", id.String()))
	return nil
}

// IsReferenced reports whether any purchase or sale line points at the product
func (r *productRepository) IsReferenced(ctx context.Context, id uuid.UUID) (bool, error) {
	const query = `
		SELECT EXISTS (SELECT 1 FROM purchase_items WHERE product_id = $1)
		    OR EXISTS (SELECT 1 FROM sale_items WHERE product_id = $1)`

	var referenced bool
	if err := r.db.QueryRow(ctx, query, id).Scan(&referenced); err != nil {
		return false, fmt.Errorf("failed to check product references: %w", err)
	}
	return referenced, nil
}

// List filters by name search and the optional filter, paging only when asked
func (r *productRepository) List(ctx context.Context, lq domain.ListQuery) ([]*domain.Product, int64, error) {
	where := squirrel.And{}
	if lq.Search != "" {
		where = append(where, squirrel.ILike{"name": "%" + escapeLike(lq.Search) + "%"})
	}
	if pred, ok := BuildFilter(ProductFilterFields, lq.Filter); ok {
		where = append(where, pred)
	}

	countQuery, countArgs, err := squirrel.Select("COUNT(*)").
		From("products").
		Where(where).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count query: %w", err)
	}

	var total int64
	if err := r.db.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	qb := r.selectProducts().
		Where(where).
		OrderBy(orderBy(productSortColumns, lq.SortColumn, lq.SortDirection, "created_at DESC"), "id")
	if lq.Page != nil {
		qb = qb.Limit(uint64(lq.Page.Limit)).Offset(uint64(lq.Page.Offset))
	}

	products, err := r.queryMany(ctx, qb)
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// Search matches name or sku, ordered by name descending
func (r *productRepository) Search(ctx context.Context, term string, page *domain.Page) ([]*domain.Product, error) {
	qb := r.selectProducts().OrderBy("name DESC")
	if term != "" {
		like := "%" + escapeLike(term) + "%"
		qb = qb.Where(squirrel.Or{
			squirrel.ILike{"name": like},
			squirrel.ILike{"sku": like},
		})
	}
	if page != nil {
		qb = qb.Limit(uint64(page.Limit)).Offset(uint64(page.Offset))
	}
	return r.queryMany(ctx, qb)
}

// ExpiringBetween returns perishable products expiring in [from, to]
func (r *productRepository) ExpiringBetween(ctx context.Context, from, to time.Time) ([]*domain.Product, error) {
	qb := r.selectProducts().
		Where(squirrel.Eq{"has_expiration": true}).
		Where(squirrel.GtOrEq{"expiration_date": from.Format(time.DateOnly)}).
		Where(squirrel.LtOrEq{"expiration_date": to.Format(time.DateOnly)}).
		OrderBy("expiration_date ASC")
	return r.queryMany(ctx, qb)
}

// BelowMinimum returns active products whose stock is under stock_min
func (r *productRepository) BelowMinimum(ctx context.Context) ([]*domain.Product, error) {
	qb := r.selectProducts().
		Where(squirrel.Eq{"status": string(domain.ProductActive)}).
		Where("stock < stock_min").
		OrderBy("stock - stock_min ASC")
	return r.queryMany(ctx, qb)
}

func (r *productRepository) queryMany(ctx context.Context, qb squirrel.SelectBuilder) ([]*domain.Product, error) {
	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}

	products, err := ScanMany(rows, func(row pgx.Rows) (*domain.Product, error) {
		return scanProduct(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan products: %w", err)
	}
	if products == nil {
		products = []*domain.Product{}
	}
	return products, nil
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	p := &domain.Product{}
	var status string
	err := row.Scan(
		&p.ID, &p.SKU, &p.Name, &p.Description, &p.Stock, &p.InitialStock, &p.StockMin,
		&p.Cost, &p.Price, &p.HasExpiration, &p.ExpirationDate, &status,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Status = domain.ProductStatus(status)
	return p, nil
}
