// internal/adapters/db/errors.go
package db

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ammerola/backoffice-be/internal/core/domain"
)

// PostgreSQL error codes the adapters translate
const (
	pgLockNotAvailable     = "55P03"
	pgDeadlockDetected     = "40P01"
	pgSerializationFailure = "40001"
	pgQueryCanceled        = "57014"
	pgForeignKeyViolation  = "23503"
	pgUniqueViolation      = "23505"
	pgCheckViolation       = "23514"
	pgNumericOutOfRange    = "22003"
)

// mapPgError converts driver errors into domain errors. Errors that are
// already domain errors, or that carry no PostgreSQL code, pass through.
func mapPgError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case pgLockNotAvailable, pgDeadlockDetected, pgSerializationFailure:
		return fmt.Errorf("%w: %s", domain.ErrContention, pgErr.Message)
	case pgQueryCanceled:
		// lock_timeout reports 55P03, statement_timeout reports 57014
		return fmt.Errorf("%w: %s", domain.ErrContention, pgErr.Message)
	case pgForeignKeyViolation:
		return fmt.Errorf("%w: %s references a missing row", domain.ErrInvalidInput, constraintOrTable(pgErr))
	case pgUniqueViolation:
		return fmt.Errorf("%w: duplicate value violates %s", domain.ErrInvalidInput, constraintOrTable(pgErr))
	case pgCheckViolation:
		return fmt.Errorf("%w: value violates %s", domain.ErrInvalidInput, constraintOrTable(pgErr))
	case pgNumericOutOfRange:
		// stock + delta past int4, or an amount too wide for its NUMERIC column
		return fmt.Errorf("%w: %s", domain.ErrInvalidInput, pgErr.Message)
	default:
		return err
	}
}

func constraintOrTable(pgErr *pgconn.PgError) string {
	if pgErr.ConstraintName != "" {
		return pgErr.ConstraintName
	}
	return pgErr.TableName
}
