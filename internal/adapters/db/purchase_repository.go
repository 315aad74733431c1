// internal/adapters/db/purchase_repository.go
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

var purchaseSortColumns = map[string]string{
	"number":    "p.number",
	"total":     "p.total",
	"createdAt": "p.created_at",
	"updatedAt": "p.updated_at",
}

const purchaseColumns = `
	p.id, p.number, p.supplier_id, p.employee_id, p.total, p.created_at, p.updated_at,
	s.name, s.ruc, e.fullname, e.dni`

// purchaseRepository implements ports.PurchaseStore
type purchaseRepository struct {
	q      Querier
	inTx   bool
	logger *slog.Logger
}

// NewPurchaseRepository creates a store over the shared pool, for reads
func NewPurchaseRepository(db *Database, logger *slog.Logger) ports.PurchaseStore {
	return &purchaseRepository{
		q:      db,
		logger: logger.With(slog.String("repository", "purchase")),
	}
}

// newTxPurchaseRepository binds a store to an open transaction. Headers read
// through it are locked FOR UPDATE so concurrent update/delete of the same
// purchase cannot revert its items twice.
func newTxPurchaseRepository(tx pgx.Tx, logger *slog.Logger) *purchaseRepository {
	return &purchaseRepository{
		q:      tx,
		inTx:   true,
		logger: logger.With(slog.String("repository", "purchase")),
	}
}

// CreateHeader inserts a purchase header without items
func (r *purchaseRepository) CreateHeader(ctx context.Context, h *domain.PurchaseHeader) (*domain.PurchaseHeader, error) {
	const query = `
		INSERT INTO purchases (number, supplier_id, employee_id, total)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`

	out := *h
	err := r.q.QueryRow(ctx, query, h.Number, h.SupplierID, h.EmployeeID, h.Total).
		Scan(&out.ID, &out.CreatedAt, &out.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create purchase header: %w", mapPgError(err))
	}

	r.logger.DebugContext(ctx, "purchase header created",
		slog.String("purchase_id", out.ID.String()),
		slog.String("number", out.Number))

	return &out, nil
}

// GetByID loads the header with supplier, employee and items
func (r *purchaseRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Purchase, error) {
	query := `SELECT ` + purchaseColumns + `
		FROM purchases p
		JOIN suppliers s ON s.id = p.supplier_id
		JOIN employees e ON e.id = p.employee_id
		WHERE p.id = $1`
	if r.inTx {
		query += ` FOR UPDATE OF p`
	}

	p, err := scanPurchase(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrPurchaseNotFound, id)
		}
		return nil, fmt.Errorf("failed to load purchase %s: %w", id, mapPgError(err))
	}

	items, err := r.loadItems(ctx, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	p.Items = items[id]
	if p.Items == nil {
		p.Items = []domain.PurchaseItem{}
	}

	return p, nil
}

// AttachItem appends one line item after the purchase's existing ones
func (r *purchaseRepository) AttachItem(ctx context.Context, purchaseID uuid.UUID, item domain.PurchaseItem) error {
	const query = `
		INSERT INTO purchase_items (purchase_id, product_id, position, quantity, unit_cost)
		VALUES (
			$1, $2,
			(SELECT COALESCE(MAX(position), 0) + 1 FROM purchase_items WHERE purchase_id = $1),
			$3, $4
		)`

	if _, err := r.q.Exec(ctx, query, purchaseID, item.ProductID, item.Quantity, item.UnitCost); err != nil {
		return fmt.Errorf("failed to attach product %s to purchase %s: %w", item.ProductID, purchaseID, mapPgError(err))
	}
	return nil
}

// ReplaceItems deletes every line item of the purchase and inserts items
func (r *purchaseRepository) ReplaceItems(ctx context.Context, purchaseID uuid.UUID, items []domain.PurchaseItem) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM purchase_items WHERE purchase_id = $1`, purchaseID); err != nil {
		return fmt.Errorf("failed to clear items of purchase %s: %w", purchaseID, mapPgError(err))
	}
	for _, it := range items {
		if err := r.AttachItem(ctx, purchaseID, it); err != nil {
			return err
		}
	}
	return nil
}

// UpdateHeader applies the non-nil header changes
func (r *purchaseRepository) UpdateHeader(ctx context.Context, purchaseID uuid.UUID, c domain.HeaderChanges) (*domain.PurchaseHeader, error) {
	qb := squirrel.Update("purchases").
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"id": purchaseID}).
		Suffix("RETURNING id, number, supplier_id, employee_id, total, created_at, updated_at").
		PlaceholderFormat(squirrel.Dollar)

	if c.Number != nil {
		qb = qb.Set("number", *c.Number)
	}
	if c.SupplierID != nil {
		qb = qb.Set("supplier_id", *c.SupplierID)
	}
	if c.Total != nil {
		qb = qb.Set("total", *c.Total)
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build update query: %w", err)
	}

	h := &domain.PurchaseHeader{}
	err = r.q.QueryRow(ctx, query, args...).Scan(
		&h.ID, &h.Number, &h.SupplierID, &h.EmployeeID, &h.Total, &h.CreatedAt, &h.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrPurchaseNotFound, purchaseID)
		}
		return nil, fmt.Errorf("failed to update purchase %s: %w", purchaseID, mapPgError(err))
	}
	return h, nil
}

// DeleteHeader removes the header; items go with it via ON DELETE CASCADE
func (r *purchaseRepository) DeleteHeader(ctx context.Context, purchaseID uuid.UUID) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM purchases WHERE id = $1`, purchaseID)
	if err != nil {
		return fmt.Errorf("failed to delete purchase %s: %w", purchaseID, mapPgError(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", domain.ErrPurchaseNotFound, purchaseID)
	}
	return nil
}

// List returns one page of purchases and the unpaged total
func (r *purchaseRepository) List(ctx context.Context, lq domain.ListQuery) ([]*domain.Purchase, int64, error) {
	where := squirrel.And{}
	if lq.Search != "" {
		where = append(where, squirrel.ILike{"p.number": "%" + escapeLike(lq.Search) + "%"})
	}
	if pred, ok := BuildFilter(PurchaseFilterFields, lq.Filter); ok {
		where = append(where, pred)
	}

	countQuery, countArgs, err := squirrel.Select("COUNT(*)").
		From("purchases p").
		Where(where).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count query: %w", err)
	}

	var total int64
	if err := r.q.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count purchases: %w", mapPgError(err))
	}

	qb := squirrel.Select(purchaseColumns).
		From("purchases p").
		Join("suppliers s ON s.id = p.supplier_id").
		Join("employees e ON e.id = p.employee_id").
		Where(where).
		OrderBy(orderBy(purchaseSortColumns, lq.SortColumn, lq.SortDirection, "p.created_at DESC"), "p.id").
		PlaceholderFormat(squirrel.Dollar)

	if lq.Page != nil {
		qb = qb.Limit(uint64(lq.Page.Limit)).Offset(uint64(lq.Page.Offset))
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list query: %w", err)
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query purchases: %w", mapPgError(err))
	}

	purchases, err := ScanMany(rows, func(row pgx.Rows) (*domain.Purchase, error) {
		return scanPurchase(row)
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to scan purchases: %w", err)
	}

	ids := make([]uuid.UUID, len(purchases))
	for i, p := range purchases {
		ids[i] = p.ID
	}
	items, err := r.loadItems(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	for _, p := range purchases {
		p.Items = items[p.ID]
		if p.Items == nil {
			p.Items = []domain.PurchaseItem{}
		}
	}
	if purchases == nil {
		purchases = []*domain.Purchase{}
	}

	return purchases, total, nil
}

func (r *purchaseRepository) loadItems(ctx context.Context, purchaseIDs []uuid.UUID) (map[uuid.UUID][]domain.PurchaseItem, error) {
	out := make(map[uuid.UUID][]domain.PurchaseItem, len(purchaseIDs))
	if len(purchaseIDs) == 0 {
		return out, nil
	}

	const query = `
		SELECT pi.purchase_id, pi.product_id, pr.name, pi.quantity, pi.unit_cost
		FROM purchase_items pi
		JOIN products pr ON pr.id = pi.product_id
		WHERE pi.purchase_id = ANY($1)
		ORDER BY pi.purchase_id, pi.position`

	rows, err := r.q.Query(ctx, query, purchaseIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query purchase items: %w", mapPgError(err))
	}
	defer rows.Close()

	for rows.Next() {
		var purchaseID uuid.UUID
		var it domain.PurchaseItem
		if err := rows.Scan(&purchaseID, &it.ProductID, &it.ProductName, &it.Quantity, &it.UnitCost); err != nil {
			return nil, fmt.Errorf("failed to scan purchase item: %w", err)
		}
		out[purchaseID] = append(out[purchaseID], it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating purchase items: %w", err)
	}
	return out, nil
}

func scanPurchase(row pgx.Row) (*domain.Purchase, error) {
	p := &domain.Purchase{Supplier: &domain.SupplierRef{}, Employee: &domain.EmployeeRef{}}
	err := row.Scan(
		&p.ID, &p.Number, &p.SupplierID, &p.EmployeeID, &p.Total, &p.CreatedAt, &p.UpdatedAt,
		&p.Supplier.Name, &p.Supplier.RUC, &p.Employee.Fullname, &p.Employee.DNI,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}
