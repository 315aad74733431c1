// internal/core/services/purchases.go
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ammerola/backoffice-be/internal/core/domain"
	"github.com/ammerola/backoffice-be/internal/core/ports"
)

// PurchaseService records purchases and keeps product stock equal to
// initial stock plus the quantities of the purchases referencing it. Every
// write runs inside one unit of work and either commits whole or not at all.
type PurchaseService struct {
	uow         ports.UnitOfWork
	reads       ports.PurchaseStore
	employees   ports.EmployeeResolver
	cache       ports.CacheRepository
	invalidator ports.CacheInvalidator
	cacheTTL    time.Duration
	listTTL     time.Duration
	logger      *slog.Logger
}

// Statically assert that *PurchaseService implements the PurchaseService interface.
var _ ports.PurchaseService = (*PurchaseService)(nil)

// PurchaseServiceOption configures optional collaborators
type PurchaseServiceOption func(*PurchaseService)

// WithPurchaseCache caches findOne for ttl and find for listTTL
func WithPurchaseCache(cache ports.CacheRepository, invalidator ports.CacheInvalidator, ttl, listTTL time.Duration) PurchaseServiceOption {
	return func(s *PurchaseService) {
		s.cache = cache
		s.invalidator = invalidator
		s.cacheTTL = ttl
		s.listTTL = listTTL
	}
}

// NewPurchaseService creates the purchase coordinator. reads must not be
// bound to a transaction.
func NewPurchaseService(uow ports.UnitOfWork, reads ports.PurchaseStore, employees ports.EmployeeResolver,
	logger *slog.Logger, opts ...PurchaseServiceOption) *PurchaseService {
	s := &PurchaseService{
		uow:       uow,
		reads:     reads,
		employees: employees,
		logger:    logger.With(slog.String("service", "purchase")),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create records a purchase and adds each item's quantity to its product
func (s *PurchaseService) Create(ctx context.Context, input domain.PurchaseInput, actingUserID string) (*domain.Purchase, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	employeeID, err := s.employees.ResolveEmployee(ctx, actingUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve acting employee: %w", err)
	}

	var created *domain.Purchase
	err = s.uow.Within(ctx, func(ctx context.Context, tx ports.TxScope) error {
		ledger := newStockTracker(tx.Stock())
		store := tx.Purchases()

		header, err := store.CreateHeader(ctx, &domain.PurchaseHeader{
			Number:     input.Number,
			SupplierID: input.SupplierID,
			EmployeeID: employeeID,
			Total:      input.ResolvedTotal(),
		})
		if err != nil {
			return err
		}

		if err := s.applyItems(ctx, ledger, store, header.ID, input.Items); err != nil {
			return err
		}

		if err := ledger.verify(ctx); err != nil {
			return err
		}

		created, err = store.GetByID(ctx, header.ID)
		return err
	})
	if err != nil {
		s.logger.WarnContext(ctx, "purchase create rolled back",
			slog.String("number", input.Number),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to create purchase: %w", err)
	}

	s.invalidate(ctx, created.ID)

	s.logger.InfoContext(ctx, "purchase created",
		slog.String("purchase_id", created.ID.String()),
		slog.String("number", created.Number),
		slog.Int("items", len(created.Items)))

	return created, nil
}

// Update reverts the stored items, applies the header changes and then the
// new items. Items are a full replacement.
func (s *PurchaseService) Update(ctx context.Context, id uuid.UUID, changes domain.PurchaseChanges) (*domain.Purchase, error) {
	if err := changes.Validate(); err != nil {
		return nil, err
	}

	var updated *domain.Purchase
	err := s.uow.Within(ctx, func(ctx context.Context, tx ports.TxScope) error {
		ledger := newStockTracker(tx.Stock())
		store := tx.Purchases()

		existing, err := store.GetByID(ctx, id)
		if err != nil {
			return err
		}

		if err := s.revertItems(ctx, ledger, existing.Items); err != nil {
			return err
		}

		if err := store.ReplaceItems(ctx, id, nil); err != nil {
			return err
		}

		if _, err := store.UpdateHeader(ctx, id, changes.Header()); err != nil {
			return err
		}

		if err := s.applyItems(ctx, ledger, store, id, changes.Items); err != nil {
			return err
		}

		if err := ledger.verify(ctx); err != nil {
			return err
		}

		updated, err = store.GetByID(ctx, id)
		return err
	})
	if err != nil {
		s.logger.WarnContext(ctx, "purchase update rolled back",
			slog.String("purchase_id", id.String()),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to update purchase: %w", err)
	}

	s.invalidate(ctx, id)

	s.logger.InfoContext(ctx, "purchase updated",
		slog.String("purchase_id", id.String()),
		slog.Int("items", len(updated.Items)))

	return updated, nil
}

// Delete removes a purchase and subtracts its items from stock
func (s *PurchaseService) Delete(ctx context.Context, id uuid.UUID) (*domain.DeleteResult, error) {
	err := s.uow.Within(ctx, func(ctx context.Context, tx ports.TxScope) error {
		ledger := newStockTracker(tx.Stock())
		store := tx.Purchases()

		existing, err := store.GetByID(ctx, id)
		if err != nil {
			return err
		}

		if err := s.revertItems(ctx, ledger, existing.Items); err != nil {
			return err
		}

		if err := store.DeleteHeader(ctx, id); err != nil {
			return err
		}

		return ledger.verify(ctx)
	})
	if err != nil {
		s.logger.WarnContext(ctx, "purchase delete rolled back",
			slog.String("purchase_id", id.String()),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to delete purchase: %w", err)
	}

	s.invalidate(ctx, id)

	s.logger.InfoContext(ctx, "purchase deleted", slog.String("purchase_id", id.String()))
	return &domain.DeleteResult{ID: id}, nil
}

// FindOne returns a committed purchase with its items
func (s *PurchaseService) FindOne(ctx context.Context, id uuid.UUID) (*domain.Purchase, error) {
	return cached(ctx, s.cache, s.logger, ports.PurchaseCacheKey(id), s.cacheTTL,
		func() (*domain.Purchase, error) { return s.reads.GetByID(ctx, id) })
}

// Find lists committed purchases
func (s *PurchaseService) Find(ctx context.Context, query domain.ListQuery) (*domain.PurchaseList, error) {
	return cached(ctx, s.cache, s.logger, ports.PurchaseListCacheKey(query), s.listTTL,
		func() (*domain.PurchaseList, error) {
			purchases, total, err := s.reads.List(ctx, query)
			if err != nil {
				return nil, fmt.Errorf("failed to list purchases: %w", err)
			}
			return &domain.PurchaseList{Purchases: purchases, Total: total}, nil
		})
}

// applyItems locks, attaches and adds each item in submitted order. Two
// purchases naming the same products in opposite order can deadlock; the
// database aborts one of them and it surfaces as domain.ErrContention.
func (s *PurchaseService) applyItems(ctx context.Context, ledger *stockTracker, store ports.PurchaseStore,
	purchaseID uuid.UUID, items []domain.PurchaseItem) error {
	for _, it := range items {
		if err := ledger.lock(ctx, it.ProductID); err != nil {
			return err
		}
		if err := store.AttachItem(ctx, purchaseID, it); err != nil {
			return err
		}
		if err := ledger.adjust(ctx, it.ProductID, it.Quantity); err != nil {
			return err
		}
	}
	return nil
}

func (s *PurchaseService) revertItems(ctx context.Context, ledger *stockTracker, items []domain.PurchaseItem) error {
	for _, it := range items {
		if err := ledger.lock(ctx, it.ProductID); err != nil {
			return err
		}
		if err := ledger.adjust(ctx, it.ProductID, -it.Quantity); err != nil {
			return err
		}
	}
	return nil
}

func (s *PurchaseService) invalidate(ctx context.Context, id uuid.UUID) {
	if s.invalidator != nil {
		s.invalidator.InvalidatePurchaseCache(ctx, id)
	}
}

// stockTracker wraps a transaction's ledger and remembers, per product, the
// stock seen at first lock and the net delta applied since.
type stockTracker struct {
	ledger   ports.StockLedger
	baseline map[uuid.UUID]int
	net      map[uuid.UUID]int
	order    []uuid.UUID
}

func newStockTracker(ledger ports.StockLedger) *stockTracker {
	return &stockTracker{
		ledger:   ledger,
		baseline: make(map[uuid.UUID]int),
		net:      make(map[uuid.UUID]int),
	}
}

func (t *stockTracker) lock(ctx context.Context, productID uuid.UUID) error {
	if _, seen := t.baseline[productID]; seen {
		return nil
	}
	stock, err := t.ledger.LockForUpdate(ctx, productID)
	if err != nil {
		return err
	}
	t.baseline[productID] = stock
	t.order = append(t.order, productID)
	return nil
}

func (t *stockTracker) adjust(ctx context.Context, productID uuid.UUID, delta int) error {
	if _, err := t.ledger.Adjust(ctx, productID, delta); err != nil {
		return err
	}
	t.net[productID] += delta
	return nil
}

// verify re-reads every touched product under its lock before commit
func (t *stockTracker) verify(ctx context.Context) error {
	for _, id := range t.order {
		current, err := t.ledger.LockForUpdate(ctx, id)
		if err != nil {
			return err
		}
		expected := t.baseline[id] + t.net[id]
		if current != expected {
			return fmt.Errorf("%w: product %s has stock %d, expected %d",
				domain.ErrInconsistent, id, current, expected)
		}
		if current < 0 {
			return fmt.Errorf("%w: product %s would commit with stock %d",
				domain.ErrStockUnderflow, id, current)
		}
	}
	return nil
}
