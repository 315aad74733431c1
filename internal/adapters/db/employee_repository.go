// internal/adapters/db/employee_repository.go
package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ammerola/backoffice-be/internal/core/domain"
	"github.com/ammerola/backoffice-be/internal/core/ports"
)

type employeeRepository struct {
	db     *Database
	logger *slog.Logger
}

// NewEmployeeRepository resolves acting users to employees
func NewEmployeeRepository(db *Database, logger *slog.Logger) ports.EmployeeResolver {
	return &employeeRepository{
		db:     db,
		logger: logger.With(slog.String("repository", "employee")),
	}
}

// ResolveEmployee returns the employee linked to userID
func (r *employeeRepository) ResolveEmployee(ctx context.Context, userID string) (uuid.UUID, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return uuid.Nil, domain.InvalidInputf("acting user is required")
	}

	var id uuid.UUID
	err := r.db.QueryRow(ctx, `SELECT id FROM employees WHERE user_id = $1`, userID).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.WarnContext(ctx, "no employee for user", slog.String("user_id", userID))
			return uuid.Nil, fmt.Errorf("%w: user %s", domain.ErrEmployeeNotFound, userID)
		}
		return uuid.Nil, fmt.Errorf("failed to resolve employee: %w", mapPgError(err))
	}
	return id, nil
}
