// test/helpers/memstore.go
package helpers

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ammerola/backoffice-be/internal/core/domain"
	"github.com/ammerola/backoffice-be/internal/core/ports"
)

// MemoryStore is an in-memory stock ledger and purchase store behind a unit
// of work. A unit of work holds the store lock for its whole duration and
// works on a copy of the state that replaces the committed state only when
// fn returns nil, so it behaves like a serialized transaction.
type MemoryStore struct {
	mu    sync.Mutex
	state *memState

	// Tamper, when set, rewrites the delta the ledger actually applies.
	// Tests use it to simulate a misbehaving ledger.
	Tamper func(productID uuid.UUID, delta int) int

	// FailOn, when set, is consulted before each store operation and aborts
	// it with the returned error.
	FailOn func(op string, id uuid.UUID) error

	commits int
}

type memState struct {
	stock     map[uuid.UUID]int
	names     map[uuid.UUID]string
	purchases map[uuid.UUID]*domain.Purchase
	order     []uuid.UUID
}

var (
	_ ports.UnitOfWork    = (*MemoryStore)(nil)
	_ ports.PurchaseStore = (*memPurchases)(nil)
	_ ports.StockLedger   = (*memLedger)(nil)
)

// NewMemoryStore returns an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{state: &memState{
		stock:     make(map[uuid.UUID]int),
		names:     make(map[uuid.UUID]string),
		purchases: make(map[uuid.UUID]*domain.Purchase),
	}}
}

// AddProduct registers a product with its current stock
func (m *MemoryStore) AddProduct(name string, stock int) uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := uuid.New()
	m.state.stock[id] = stock
	m.state.names[id] = name
	return id
}

// Stock returns the committed stock of a product
func (m *MemoryStore) Stock(id uuid.UUID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.stock[id]
}

// SetStock overwrites committed stock, as a sale recorded elsewhere would
func (m *MemoryStore) SetStock(id uuid.UUID, stock int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.stock[id] = stock
}

// PurchaseCount returns the number of committed purchases
func (m *MemoryStore) PurchaseCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.state.purchases)
}

// Commits returns how many units of work committed
func (m *MemoryStore) Commits() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.commits
}

// Reads returns a store over committed state for find and findOne
func (m *MemoryStore) Reads() ports.PurchaseStore {
	return &memPurchases{store: m, committed: true}
}

// Within runs fn against a private copy of the state
func (m *MemoryStore) Within(ctx context.Context, fn func(ctx context.Context, scope ports.TxScope) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	work := m.state.clone()
	tx := &memTx{store: m, state: work}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	m.state = work
	m.commits++
	return nil
}

type memTx struct {
	store *MemoryStore
	state *memState
}

func (t *memTx) Stock() ports.StockLedger { return &memLedger{tx: t} }
func (t *memTx) Purchases() ports.PurchaseStore { return &memPurchases{store: t.store, tx: t} }

type memLedger struct {
	tx *memTx
}

func (l *memLedger) LockForUpdate(_ context.Context, productID uuid.UUID) (int, error) {
	if err := l.tx.store.fail("lock", productID); err != nil {
		return 0, err
	}
	stock, ok := l.tx.state.stock[productID]
	if !ok {
		return 0, fmt.Errorf("%w: %s", domain.ErrProductNotFound, productID)
	}
	return stock, nil
}

func (l *memLedger) Adjust(_ context.Context, productID uuid.UUID, delta int) (int, error) {
	if err := l.tx.store.fail("adjust", productID); err != nil {
		return 0, err
	}
	stock, ok := l.tx.state.stock[productID]
	if !ok {
		return 0, fmt.Errorf("%w: %s", domain.ErrProductNotFound, productID)
	}
	if l.tx.store.Tamper != nil {
		delta = l.tx.store.Tamper(productID, delta)
	}
	stock += delta
	l.tx.state.stock[productID] = stock
	return stock, nil
}

type memPurchases struct {
	store     *MemoryStore
	tx        *memTx
	committed bool
}

// withState runs fn on the transaction's state, or on committed state under
// the store lock for reads.
func (p *memPurchases) withState(fn func(s *memState) error) error {
	if p.committed {
		p.store.mu.Lock()
		defer p.store.mu.Unlock()
		return fn(p.store.state)
	}
	return fn(p.tx.state)
}

func (p *memPurchases) CreateHeader(_ context.Context, h *domain.PurchaseHeader) (*domain.PurchaseHeader, error) {
	out := *h
	err := p.withState(func(s *memState) error {
		if err := p.store.fail("create", uuid.Nil); err != nil {
			return err
		}
		for _, existing := range s.purchases {
			if existing.Number == h.Number {
				return fmt.Errorf("%w: duplicate value violates purchases_number_key", domain.ErrInvalidInput)
			}
		}
		now := time.Now()
		out.ID = uuid.New()
		out.CreatedAt = now
		out.UpdatedAt = now
		s.purchases[out.ID] = &domain.Purchase{
			ID:         out.ID,
			Number:     out.Number,
			SupplierID: out.SupplierID,
			EmployeeID: out.EmployeeID,
			Total:      out.Total,
			CreatedAt:  now,
			UpdatedAt:  now,
			Items:      []domain.PurchaseItem{},
		}
		s.order = append(s.order, out.ID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (p *memPurchases) GetByID(_ context.Context, id uuid.UUID) (*domain.Purchase, error) {
	var out *domain.Purchase
	err := p.withState(func(s *memState) error {
		if err := p.store.fail("get", id); err != nil {
			return err
		}
		existing, ok := s.purchases[id]
		if !ok {
			return fmt.Errorf("%w: %s", domain.ErrPurchaseNotFound, id)
		}
		out = copyPurchase(existing)
		for i := range out.Items {
			out.Items[i].ProductName = s.names[out.Items[i].ProductID]
		}
		return nil
	})
	return out, err
}

func (p *memPurchases) AttachItem(_ context.Context, purchaseID uuid.UUID, item domain.PurchaseItem) error {
	return p.withState(func(s *memState) error {
		if err := p.store.fail("attach", item.ProductID); err != nil {
			return err
		}
		purchase, ok := s.purchases[purchaseID]
		if !ok {
			return fmt.Errorf("%w: %s", domain.ErrPurchaseNotFound, purchaseID)
		}
		if _, ok := s.stock[item.ProductID]; !ok {
			return fmt.Errorf("%w: purchase_items_product_id_fkey references a missing row", domain.ErrInvalidInput)
		}
		for _, it := range purchase.Items {
			if it.ProductID == item.ProductID {
				return fmt.Errorf("%w: duplicate value violates purchase_items_pkey", domain.ErrInvalidInput)
			}
		}
		item.ProductName = ""
		purchase.Items = append(purchase.Items, item)
		return nil
	})
}

func (p *memPurchases) ReplaceItems(ctx context.Context, purchaseID uuid.UUID, items []domain.PurchaseItem) error {
	err := p.withState(func(s *memState) error {
		purchase, ok := s.purchases[purchaseID]
		if !ok {
			return fmt.Errorf("%w: %s", domain.ErrPurchaseNotFound, purchaseID)
		}
		purchase.Items = []domain.PurchaseItem{}
		return nil
	})
	if err != nil {
		return err
	}
	for _, it := range items {
		if err := p.AttachItem(ctx, purchaseID, it); err != nil {
			return err
		}
	}
	return nil
}

func (p *memPurchases) UpdateHeader(_ context.Context, purchaseID uuid.UUID, c domain.HeaderChanges) (*domain.PurchaseHeader, error) {
	var out *domain.PurchaseHeader
	err := p.withState(func(s *memState) error {
		if err := p.store.fail("update", purchaseID); err != nil {
			return err
		}
		purchase, ok := s.purchases[purchaseID]
		if !ok {
			return fmt.Errorf("%w: %s", domain.ErrPurchaseNotFound, purchaseID)
		}
		if c.Number != nil {
			purchase.Number = *c.Number
		}
		if c.SupplierID != nil {
			purchase.SupplierID = *c.SupplierID
		}
		if c.Total != nil {
			purchase.Total = *c.Total
		}
		purchase.UpdatedAt = time.Now()
		out = &domain.PurchaseHeader{
			ID: purchase.ID, Number: purchase.Number, SupplierID: purchase.SupplierID,
			EmployeeID: purchase.EmployeeID, Total: purchase.Total,
			CreatedAt: purchase.CreatedAt, UpdatedAt: purchase.UpdatedAt,
		}
		return nil
	})
	return out, err
}

func (p *memPurchases) DeleteHeader(_ context.Context, purchaseID uuid.UUID) error {
	return p.withState(func(s *memState) error {
		if err := p.store.fail("delete", purchaseID); err != nil {
			return err
		}
		if _, ok := s.purchases[purchaseID]; !ok {
			return fmt.Errorf("%w: %s", domain.ErrPurchaseNotFound, purchaseID)
		}
		delete(s.purchases, purchaseID)
		for i, id := range s.order {
			if id == purchaseID {
				s.order = append(s.order[:i:i], s.order[i+1:]...)
				break
			}
		}
		return nil
	})
}

// List ignores filters and sorting beyond newest first; the SQL builder is
// covered by the db package.
func (p *memPurchases) List(_ context.Context, q domain.ListQuery) ([]*domain.Purchase, int64, error) {
	var out []*domain.Purchase
	err := p.withState(func(s *memState) error {
		for _, id := range s.order {
			out = append(out, copyPurchase(s.purchases[id]))
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	total := int64(len(out))
	if q.Page != nil {
		lo := min(q.Page.Offset, len(out))
		hi := min(lo+q.Page.Limit, len(out))
		out = out[lo:hi]
	}
	if out == nil {
		out = []*domain.Purchase{}
	}
	return out, total, nil
}

func (m *MemoryStore) fail(op string, id uuid.UUID) error {
	if m.FailOn == nil {
		return nil
	}
	return m.FailOn(op, id)
}

func (s *memState) clone() *memState {
	c := &memState{
		stock:     make(map[uuid.UUID]int, len(s.stock)),
		names:     s.names,
		purchases: make(map[uuid.UUID]*domain.Purchase, len(s.purchases)),
		order:     append([]uuid.UUID(nil), s.order...),
	}
	for k, v := range s.stock {
		c.stock[k] = v
	}
	for k, v := range s.purchases {
		c.purchases[k] = copyPurchase(v)
	}
	return c
}

func copyPurchase(p *domain.Purchase) *domain.Purchase {
	c := *p
	c.Items = append([]domain.PurchaseItem{}, p.Items...)
	return &c
}

// StaticEmployees resolves users from a fixed map
type StaticEmployees map[string]uuid.UUID

// ResolveEmployee implements ports.EmployeeResolver
func (e StaticEmployees) ResolveEmployee(_ context.Context, userID string) (uuid.UUID, error) {
	id, ok := e[userID]
	if !ok {
		return uuid.Nil, fmt.Errorf("%w: user %s", domain.ErrEmployeeNotFound, userID)
	}
	return id, nil
}
