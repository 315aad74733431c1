// internal/adapters/db/supplier_repository.go
package db

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/ammerola/backoffice-be/internal/core/domain"
	"github.com/ammerola/backoffice-be/internal/core/ports"
)

type supplierRepository struct {
	db     *Database
	logger *slog.Logger
}

// NewSupplierRepository looks suppliers up for receipt imports
func NewSupplierRepository(db *Database, logger *slog.Logger) ports.SupplierRepository {
	return &supplierRepository{
		db:     db,
		logger: logger.With(slog.String("repository", "supplier")),
	}
}

// FindByRUC returns the supplier registered under ruc
func (r *supplierRepository) FindByRUC(ctx context.Context, ruc string) (*domain.Supplier, error) {
	ruc = strings.TrimSpace(ruc)
	row := r.db.QueryRow(ctx, `SELECT id, name, ruc FROM suppliers WHERE ruc = $1`, ruc)
	s, err := ScanOne(row, func(row pgx.Row) (*domain.Supplier, error) {
		var s domain.Supplier
		return &s, row.Scan(&s.ID, &s.Name, &s.RUC)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to find supplier: %w", mapPgError(err))
	}
	if s == nil {
		return nil, fmt.Errorf("%w: ruc %s", domain.ErrSupplierNotFound, ruc)
	}
	return s, nil
}
