// internal/adapters/db/unit_of_work.go
package db

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/ammerola/backoffice-be/internal/core/ports"
)

// unitOfWork implements ports.UnitOfWork on a READ COMMITTED transaction
// with a bounded lock wait.
type unitOfWork struct {
	db          *Database
	lockTimeout time.Duration
	logger      *slog.Logger
}

// NewUnitOfWork creates a unit of work. lockTimeout bounds every row lock
// wait inside it; zero leaves the server default.
func NewUnitOfWork(db *Database, lockTimeout time.Duration, logger *slog.Logger) ports.UnitOfWork {
	return &unitOfWork{
		db:          db,
		lockTimeout: lockTimeout,
		logger:      logger.With(slog.String("component", "unit_of_work")),
	}
}

type txScope struct {
	stock     ports.StockLedger
	purchases ports.PurchaseStore
}

func (s *txScope) Stock() ports.StockLedger { return s.stock }
func (s *txScope) Purchases() ports.PurchaseStore { return s.purchases }

// Within runs fn in one transaction
func (u *unitOfWork) Within(ctx context.Context, fn func(ctx context.Context, scope ports.TxScope) error) error {
	err := u.db.Transaction(ctx, func(tx pgx.Tx) error {
		if u.lockTimeout > 0 {
			// set_config with is_local=true is SET LOCAL, but takes a parameter
			if _, err := tx.Exec(ctx, `SELECT set_config('lock_timeout', $1, true)`,
				fmt.Sprintf("%dms", u.lockTimeout.Milliseconds())); err != nil {
				return fmt.Errorf("failed to set lock timeout: %w", err)
			}
		}

		scope := &txScope{
			stock:     NewStockLedger(tx),
			purchases: newTxPurchaseRepository(tx, u.logger),
		}
		return fn(ctx, scope)
	})
	if err != nil {
		return mapPgError(err)
	}
	return nil
}
