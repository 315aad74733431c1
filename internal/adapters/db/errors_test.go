// internal/adapters/db/errors_test.go
package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/ammerola/backoffice-be/internal/core/domain"
)

func TestMapPgError(t *testing.T) {
	plain := errors.New("connection reset")

	tests := []struct {
		name   string
		err    error
		target error
	}{
		{name: "lock_timeout", err: &pgconn.PgError{Code: "55P03"}, target: domain.ErrContention},
		{name: "deadlock", err: &pgconn.PgError{Code: "40P01"}, target: domain.ErrContention},
		{name: "serialization", err: &pgconn.PgError{Code: "40001"}, target: domain.ErrContention},
		{name: "statement_timeout", err: &pgconn.PgError{Code: "57014"}, target: domain.ErrContention},
		{name: "foreign_key", err: &pgconn.PgError{Code: "23503", ConstraintName: "purchases_supplier_id_fkey"}, target: domain.ErrInvalidInput},
		{name: "unique", err: &pgconn.PgError{Code: "23505", ConstraintName: "purchases_number_key"}, target: domain.ErrInvalidInput},
		{name: "check", err: &pgconn.PgError{Code: "23514", TableName: "purchase_items"}, target: domain.ErrInvalidInput},
		{name: "numeric_out_of_range", err: &pgconn.PgError{Code: "22003", Message: "integer out of range"}, target: domain.ErrInvalidInput},
		{name: "wrapped_pg_error", err: fmt.Errorf("tx failed: %w", &pgconn.PgError{Code: "55P03"}), target: domain.ErrContention},
		{name: "domain_error_passes_through", err: domain.ErrProductNotFound, target: domain.ErrNotFound},
		{name: "plain_error_passes_through", err: plain, target: plain},
		{name: "unknown_code_passes_through", err: &pgconn.PgError{Code: "42P01"}, target: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapPgError(tt.err)
			if tt.target == nil {
				assert.Equal(t, tt.err, got)
				return
			}
			assert.ErrorIs(t, got, tt.target)
		})
	}

	assert.NoError(t, mapPgError(nil))
}

func TestMapPgError_NamesConstraint(t *testing.T) {
	err := mapPgError(&pgconn.PgError{Code: "23505", ConstraintName: "products_sku_key"})
	assert.Contains(t, err.Error(), "products_sku_key")

	err = mapPgError(&pgconn.PgError{Code: "23514", TableName: "purchases"})
	assert.Contains(t, err.Error(), "purchases")
}
