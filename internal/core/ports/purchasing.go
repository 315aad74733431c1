// internal/core/ports/purchasing.go
package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/ammerola/backoffice-be/internal/core/domain"
)

// StockLedger is the only writer of product stock. Implementations are bound
// to one transaction; nothing they do is visible before commit.
type StockLedger interface {
	// LockForUpdate takes an exclusive row lock on the product for the rest of
	// the transaction and returns its current stock.
	LockForUpdate(ctx context.Context, productID uuid.UUID) (int, error)
	// Adjust adds delta (positive or negative) to the product's stock and
	// returns the new value.
	Adjust(ctx context.Context, productID uuid.UUID, delta int) (int, error)
}

// PurchaseStore persists purchase headers and their line items
type PurchaseStore interface {
	CreateHeader(ctx context.Context, header *domain.PurchaseHeader) (*domain.PurchaseHeader, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Purchase, error)
	AttachItem(ctx context.Context, purchaseID uuid.UUID, item domain.PurchaseItem) error
	ReplaceItems(ctx context.Context, purchaseID uuid.UUID, items []domain.PurchaseItem) error
	UpdateHeader(ctx context.Context, purchaseID uuid.UUID, changes domain.HeaderChanges) (*domain.PurchaseHeader, error)
	DeleteHeader(ctx context.Context, purchaseID uuid.UUID) error
	// List is only meaningful outside a transaction
	List(ctx context.Context, query domain.ListQuery) ([]*domain.Purchase, int64, error)
}

// TxScope hands out the ledger and store bound to one open transaction
type TxScope interface {
	Stock() StockLedger
	Purchases() PurchaseStore
}

// UnitOfWork runs fn inside one transaction. A nil return commits, any error
// (or panic) rolls everything back. Lock waits inside fn are bounded by the
// implementation's lock timeout and surface as domain.ErrContention.
type UnitOfWork interface {
	Within(ctx context.Context, fn func(ctx context.Context, scope TxScope) error) error
}

// EmployeeResolver maps an acting user to the employee stamped on purchases
type EmployeeResolver interface {
	ResolveEmployee(ctx context.Context, userID string) (uuid.UUID, error)
}

// PurchaseService is the purchase transaction coordinator's surface
type PurchaseService interface {
	Create(ctx context.Context, input domain.PurchaseInput, actingUserID string) (*domain.Purchase, error)
	Update(ctx context.Context, id uuid.UUID, changes domain.PurchaseChanges) (*domain.Purchase, error)
	Delete(ctx context.Context, id uuid.UUID) (*domain.DeleteResult, error)
	FindOne(ctx context.Context, id uuid.UUID) (*domain.Purchase, error)
	Find(ctx context.Context, query domain.ListQuery) (*domain.PurchaseList, error)
}
