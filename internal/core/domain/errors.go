// internal/core/domain/errors.go
package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is the base for every "entity absent" failure
	ErrNotFound = errors.New("not found")

	ErrPurchaseNotFound = fmt.Errorf("purchase %w", ErrNotFound)
	ErrProductNotFound  = fmt.Errorf("product %w", ErrNotFound)
	ErrEmployeeNotFound = fmt.Errorf("employee %w", ErrNotFound)
	ErrSupplierNotFound = fmt.Errorf("supplier %w", ErrNotFound)
	ErrJobNotFound      = fmt.Errorf("job %w", ErrNotFound)

	// ErrInvalidInput covers malformed quantities, costs, dates and references
	ErrInvalidInput = errors.New("invalid input")

	// ErrContention means a lock wait timed out or the transaction lost a
	// deadlock/serialization race. Callers may retry.
	ErrContention = errors.New("contention on stock rows, retry")

	// ErrInconsistent is raised by the pre-commit stock check. Reaching it
	// means the write algorithm has a bug; the transaction is rolled back.
	ErrInconsistent = errors.New("stock ledger inconsistent")

	// ErrStockUnderflow means a write would leave a product with negative
	// stock, typically because the purchased units were already sold
	ErrStockUnderflow = errors.New("stock would fall below zero")
)

// InvalidInputf builds an ErrInvalidInput with a field specific message
func InvalidInputf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// IsRetryable reports whether err is worth retrying as-is
func IsRetryable(err error) bool {
	return errors.Is(err, ErrContention)
}
