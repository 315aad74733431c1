// internal/adapters/db/stock_ledger.go
package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ammerola/backoffice-be/internal/core/domain"
	"github.com/ammerola/backoffice-be/internal/core/ports"
)

// stockLedger implements ports.StockLedger over a transaction
type stockLedger struct {
	q Querier
}

// NewStockLedger binds a ledger to q, which should be a pgx.Tx
func NewStockLedger(q Querier) ports.StockLedger {
	return &stockLedger{q: q}
}

// LockForUpdate takes the product row lock and returns current stock
func (l *stockLedger) LockForUpdate(ctx context.Context, productID uuid.UUID) (int, error) {
	const query = `SELECT stock FROM products WHERE id = $1 FOR UPDATE`

	var stock int
	if err := l.q.QueryRow(ctx, query, productID).Scan(&stock); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("%w: %s", domain.ErrProductNotFound, productID)
		}
		return 0, fmt.Errorf("failed to lock product %s: %w", productID, mapPgError(err))
	}
	return stock, nil
}

// Adjust applies a signed delta. The UPDATE takes the row lock itself if the
// caller has not already.
func (l *stockLedger) Adjust(ctx context.Context, productID uuid.UUID, delta int) (int, error) {
	const query = `
		UPDATE products
		SET stock = stock + $2, updated_at = now()
		WHERE id = $1
		RETURNING stock`

	var stock int
	if err := l.q.QueryRow(ctx, query, productID, delta).Scan(&stock); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("%w: %s", domain.ErrProductNotFound, productID)
		}
		return 0, fmt.Errorf("failed to adjust stock of %s: %w", productID, mapPgError(err))
	}
	return stock, nil
}
