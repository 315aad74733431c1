// internal/core/services/purchases_test.go
package services_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	redis_a "github.com/ammerola/backoffice-be/internal/adapters/redis_adapter"
	"github.com/ammerola/backoffice-be/internal/core/domain"
	"github.com/ammerola/backoffice-be/internal/core/services"
	"github.com/ammerola/backoffice-be/test/helpers"
)

const actingUser = "auth0|clerk-7"

type purchaseFixture struct {
	store    *helpers.MemoryStore
	service  *services.PurchaseService
	supplier uuid.UUID
	employee uuid.UUID
}

func newPurchaseFixture(t *testing.T) *purchaseFixture {
	t.Helper()
	store := helpers.NewMemoryStore()
	employee := uuid.New()
	svc := services.NewPurchaseService(store, store.Reads(),
		helpers.StaticEmployees{actingUser: employee}, helpers.TestLogger())
	return &purchaseFixture{store: store, service: svc, supplier: uuid.New(), employee: employee}
}

func (f *purchaseFixture) input(number string, items ...domain.PurchaseItem) domain.PurchaseInput {
	return domain.PurchaseInput{Number: number, SupplierID: f.supplier, Items: items}
}

func item(productID uuid.UUID, qty int, cost string) domain.PurchaseItem {
	return domain.PurchaseItem{ProductID: productID, Quantity: qty, UnitCost: decimal.RequireFromString(cost)}
}

func TestPurchaseService_Create(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		setup     func(f *purchaseFixture) (domain.PurchaseInput, string, map[uuid.UUID]int)
		wantErr   error
		wantStock func(f *purchaseFixture) map[uuid.UUID]int
	}{
		{
			name: "adds_each_quantity_to_stock",
			setup: func(f *purchaseFixture) (domain.PurchaseInput, string, map[uuid.UUID]int) {
				a := f.store.AddProduct("Arroz 5kg", 10)
				b := f.store.AddProduct("Aceite 1L", 0)
				in := f.input("F001-1", item(a, 3, "2.00"), item(b, 12, "7.50"))
				return in, actingUser, map[uuid.UUID]int{a: 13, b: 12}
			},
		},
		{
			name: "missing_product_rolls_back_earlier_items",
			setup: func(f *purchaseFixture) (domain.PurchaseInput, string, map[uuid.UUID]int) {
				a := f.store.AddProduct("Arroz 5kg", 10)
				b := f.store.AddProduct("Azucar 1kg", 4)
				in := f.input("F001-2", item(a, 3, "2.00"), item(b, 1, "3.10"), item(uuid.New(), 1, "1.00"))
				return in, actingUser, map[uuid.UUID]int{a: 10, b: 4}
			},
			wantErr: domain.ErrProductNotFound,
		},
		{
			name: "unknown_acting_user",
			setup: func(f *purchaseFixture) (domain.PurchaseInput, string, map[uuid.UUID]int) {
				a := f.store.AddProduct("Arroz 5kg", 10)
				return f.input("F001-3", item(a, 3, "2.00")), "nobody", map[uuid.UUID]int{a: 10}
			},
			wantErr: domain.ErrEmployeeNotFound,
		},
		{
			name: "non_positive_quantity",
			setup: func(f *purchaseFixture) (domain.PurchaseInput, string, map[uuid.UUID]int) {
				a := f.store.AddProduct("Arroz 5kg", 10)
				return f.input("F001-4", item(a, 0, "2.00")), actingUser, map[uuid.UUID]int{a: 10}
			},
			wantErr: domain.ErrInvalidInput,
		},
		{
			name: "duplicate_product_in_items",
			setup: func(f *purchaseFixture) (domain.PurchaseInput, string, map[uuid.UUID]int) {
				a := f.store.AddProduct("Arroz 5kg", 10)
				return f.input("F001-5", item(a, 1, "2.00"), item(a, 2, "2.00")), actingUser, map[uuid.UUID]int{a: 10}
			},
			wantErr: domain.ErrInvalidInput,
		},
		{
			name: "missing_number",
			setup: func(f *purchaseFixture) (domain.PurchaseInput, string, map[uuid.UUID]int) {
				a := f.store.AddProduct("Arroz 5kg", 10)
				return f.input("  ", item(a, 1, "2.00")), actingUser, map[uuid.UUID]int{a: 10}
			},
			wantErr: domain.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newPurchaseFixture(t)
			in, user, wantStock := tt.setup(f)

			got, err := f.service.Create(ctx, in, user)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
				assert.Zero(t, f.store.PurchaseCount())
			} else {
				require.NoError(t, err)
				assert.Equal(t, in.Number, got.Number)
				assert.Equal(t, f.employee, got.EmployeeID)
				assert.Len(t, got.Items, len(in.Items))
				assert.Equal(t, 1, f.store.PurchaseCount())
			}
			for id, want := range wantStock {
				assert.Equal(t, want, f.store.Stock(id))
			}
		})
	}
}

func TestPurchaseService_Create_Total(t *testing.T) {
	ctx := context.Background()
	f := newPurchaseFixture(t)
	a := f.store.AddProduct("Arroz 5kg", 10)
	b := f.store.AddProduct("Aceite 1L", 10)

	got, err := f.service.Create(ctx, f.input("F002-1", item(a, 3, "2.50"), item(b, 2, "10.00")), actingUser)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("27.50").Equal(got.Total), "total %s", got.Total)

	explicit := decimal.RequireFromString("25.00")
	in := f.input("F002-2", item(a, 1, "2.50"))
	in.Total = &explicit
	got, err = f.service.Create(ctx, in, actingUser)
	require.NoError(t, err)
	assert.True(t, explicit.Equal(got.Total))
}

// Walks one purchase through create, update and delete and checks stock
// after each step.
func TestPurchaseService_Lifecycle(t *testing.T) {
	ctx := context.Background()
	f := newPurchaseFixture(t)
	a := f.store.AddProduct("A", 10)
	b := f.store.AddProduct("B", 4)

	created, err := f.service.Create(ctx, f.input("F003-1", item(a, 3, "2.00")), actingUser)
	require.NoError(t, err)
	assert.Equal(t, 13, f.store.Stock(a))
	assert.Len(t, created.Items, 1)

	updated, err := f.service.Update(ctx, created.ID, domain.PurchaseChanges{
		Items: []domain.PurchaseItem{
			{ProductID: a, Quantity: 5},
			{ProductID: b, Quantity: 2},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 15, f.store.Stock(a))
	assert.Equal(t, 6, f.store.Stock(b))
	assert.Len(t, updated.Items, 2)
	assert.Equal(t, "F003-1", updated.Number)

	deleted, err := f.service.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, deleted.ID)
	assert.Equal(t, 10, f.store.Stock(a))
	assert.Equal(t, 4, f.store.Stock(b))

	_, err = f.service.FindOne(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrPurchaseNotFound)
}

func TestPurchaseService_Update(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		changes   func(a, b uuid.UUID) domain.PurchaseChanges
		wantErr   error
		wantA     int
		wantB     int
		wantItems int
	}{
		{
			name: "same_items_leave_stock_unchanged",
			changes: func(a, b uuid.UUID) domain.PurchaseChanges {
				return domain.PurchaseChanges{Items: []domain.PurchaseItem{item(a, 3, "2.00"), item(b, 1, "1.00")}}
			},
			wantA: 13, wantB: 5, wantItems: 2,
		},
		{
			name: "omitted_items_empty_the_purchase",
			changes: func(a, b uuid.UUID) domain.PurchaseChanges {
				number := "F004-1-R"
				return domain.PurchaseChanges{Number: &number}
			},
			wantA: 10, wantB: 4, wantItems: 0,
		},
		{
			name: "missing_product_keeps_previous_state",
			changes: func(a, b uuid.UUID) domain.PurchaseChanges {
				return domain.PurchaseChanges{Items: []domain.PurchaseItem{item(a, 7, "2.00"), item(uuid.New(), 1, "1.00")}}
			},
			wantErr: domain.ErrProductNotFound,
			wantA:   13, wantB: 5, wantItems: 2,
		},
		{
			name: "negative_cost_rejected",
			changes: func(a, b uuid.UUID) domain.PurchaseChanges {
				return domain.PurchaseChanges{Items: []domain.PurchaseItem{item(a, 1, "-1")}}
			},
			wantErr: domain.ErrInvalidInput,
			wantA:   13, wantB: 5, wantItems: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newPurchaseFixture(t)
			a := f.store.AddProduct("A", 10)
			b := f.store.AddProduct("B", 4)
			created, err := f.service.Create(ctx, f.input("F004-1", item(a, 3, "2.00"), item(b, 1, "1.00")), actingUser)
			require.NoError(t, err)

			_, err = f.service.Update(ctx, created.ID, tt.changes(a, b))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}

			assert.Equal(t, tt.wantA, f.store.Stock(a))
			assert.Equal(t, tt.wantB, f.store.Stock(b))

			stored, err := f.service.FindOne(ctx, created.ID)
			require.NoError(t, err)
			assert.Len(t, stored.Items, tt.wantItems)
		})
	}
}

func TestPurchaseService_Update_RecomputesTotal(t *testing.T) {
	ctx := context.Background()
	f := newPurchaseFixture(t)
	a := f.store.AddProduct("A", 10)

	created, err := f.service.Create(ctx, f.input("F005-1", item(a, 3, "2.00")), actingUser)
	require.NoError(t, err)

	updated, err := f.service.Update(ctx, created.ID, domain.PurchaseChanges{
		Items: []domain.PurchaseItem{item(a, 4, "2.25")},
	})
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("9.00").Equal(updated.Total))
}

func TestPurchaseService_NotFound(t *testing.T) {
	ctx := context.Background()
	f := newPurchaseFixture(t)
	missing := uuid.New()

	_, err := f.service.Update(ctx, missing, domain.PurchaseChanges{})
	assert.ErrorIs(t, err, domain.ErrPurchaseNotFound)

	_, err = f.service.Delete(ctx, missing)
	assert.ErrorIs(t, err, domain.ErrPurchaseNotFound)

	_, err = f.service.FindOne(ctx, missing)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.Zero(t, f.store.Commits())
}

func TestPurchaseService_PreCommitCheck(t *testing.T) {
	ctx := context.Background()

	t.Run("ledger_drift_is_inconsistent", func(t *testing.T) {
		f := newPurchaseFixture(t)
		a := f.store.AddProduct("A", 10)
		f.store.Tamper = func(_ uuid.UUID, delta int) int { return delta * 2 }

		_, err := f.service.Create(ctx, f.input("F006-1", item(a, 3, "2.00")), actingUser)
		assert.ErrorIs(t, err, domain.ErrInconsistent)
		assert.Equal(t, 10, f.store.Stock(a))
		assert.Zero(t, f.store.PurchaseCount())
	})

	t.Run("delete_below_zero_is_underflow", func(t *testing.T) {
		f := newPurchaseFixture(t)
		a := f.store.AddProduct("A", 0)
		created, err := f.service.Create(ctx, f.input("F006-2", item(a, 3, "2.00")), actingUser)
		require.NoError(t, err)

		// two of the three units were sold since
		f.store.SetStock(a, 1)

		_, err = f.service.Delete(ctx, created.ID)
		assert.ErrorIs(t, err, domain.ErrStockUnderflow)
		assert.NotErrorIs(t, err, domain.ErrInconsistent)
		assert.Equal(t, 1, f.store.Stock(a))
		assert.Equal(t, 1, f.store.PurchaseCount())
	})
}

func TestPurchaseService_Contention(t *testing.T) {
	ctx := context.Background()
	f := newPurchaseFixture(t)
	a := f.store.AddProduct("A", 10)
	b := f.store.AddProduct("B", 10)

	f.store.FailOn = func(op string, id uuid.UUID) error {
		if op == "lock" && id == b {
			return fmt.Errorf("%w: canceling statement due to lock timeout", domain.ErrContention)
		}
		return nil
	}

	_, err := f.service.Create(ctx, f.input("F007-1", item(a, 1, "1.00"), item(b, 1, "1.00")), actingUser)
	require.Error(t, err)
	assert.True(t, domain.IsRetryable(err))
	assert.Equal(t, 10, f.store.Stock(a))

	f.store.FailOn = nil
	_, err = f.service.Create(ctx, f.input("F007-1", item(a, 1, "1.00"), item(b, 1, "1.00")), actingUser)
	require.NoError(t, err)
	assert.Equal(t, 11, f.store.Stock(a))
	assert.Equal(t, 11, f.store.Stock(b))
}

func TestPurchaseService_ConcurrentCreates(t *testing.T) {
	ctx := context.Background()
	f := newPurchaseFixture(t)
	a := f.store.AddProduct("A", 10)

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := f.service.Create(ctx, f.input(fmt.Sprintf("F008-%d", n), item(a, 5, "1.00")), actingUser)
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	assert.Equal(t, 20, f.store.Stock(a))
	assert.Equal(t, 2, f.store.PurchaseCount())
}

func TestPurchaseService_Find(t *testing.T) {
	ctx := context.Background()
	f := newPurchaseFixture(t)
	a := f.store.AddProduct("A", 10)

	for i := 0; i < 3; i++ {
		_, err := f.service.Create(ctx, f.input(fmt.Sprintf("F009-%d", i), item(a, 1, "1.00")), actingUser)
		require.NoError(t, err)
	}

	list, err := f.service.Find(ctx, domain.ListQuery{Page: &domain.Page{Limit: 2, Offset: 0}})
	require.NoError(t, err)
	assert.Equal(t, int64(3), list.Total)
	assert.Len(t, list.Purchases, 2)

	all, err := f.service.Find(ctx, domain.ListQuery{})
	require.NoError(t, err)
	assert.Len(t, all.Purchases, 3)
}

func TestPurchaseService_FindOne_Idempotent(t *testing.T) {
	ctx := context.Background()
	f := newPurchaseFixture(t)
	a := f.store.AddProduct("A", 10)
	created, err := f.service.Create(ctx, f.input("F010-1", item(a, 2, "1.00")), actingUser)
	require.NoError(t, err)

	first, err := f.service.FindOne(ctx, created.ID)
	require.NoError(t, err)
	second, err := f.service.FindOne(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, "A", first.Items[0].ProductName)
}

func TestPurchaseService_Cache(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := redis_a.NewCache(client, time.Minute, helpers.TestLogger())
	invalidator := redis_a.NewInvalidator(cache, helpers.TestLogger())

	store := helpers.NewMemoryStore()
	svc := services.NewPurchaseService(store, store.Reads(),
		helpers.StaticEmployees{actingUser: uuid.New()}, helpers.TestLogger(),
		services.WithPurchaseCache(cache, invalidator, time.Minute, time.Minute))

	a := store.AddProduct("A", 10)
	created, err := svc.Create(ctx, domain.PurchaseInput{
		Number: "F011-1", SupplierID: uuid.New(), Items: []domain.PurchaseItem{item(a, 2, "1.00")},
	}, actingUser)
	require.NoError(t, err)

	first, err := svc.FindOne(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, mr.Exists("purchase:"+created.ID.String()))

	_, err = svc.Find(ctx, domain.ListQuery{})
	require.NoError(t, err)
	assert.NotEmpty(t, mr.Keys())

	number := "F011-1-R"
	_, err = svc.Update(ctx, created.ID, domain.PurchaseChanges{
		Number: &number, Items: []domain.PurchaseItem{item(a, 2, "1.00")},
	})
	require.NoError(t, err)
	assert.False(t, mr.Exists("purchase:"+created.ID.String()))

	again, err := svc.FindOne(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "F011-1", first.Number)
	assert.Equal(t, "F011-1-R", again.Number)

	// redis going away degrades to uncached reads
	mr.Close()
	fallback, err := svc.FindOne(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "F011-1-R", fallback.Number)
}

func TestPurchaseService_ContextCanceled(t *testing.T) {
	f := newPurchaseFixture(t)
	a := f.store.AddProduct("A", 10)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.service.Create(ctx, f.input("F012-1", item(a, 1, "1.00")), actingUser)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, 10, f.store.Stock(a))
}
