// test/benchmarks/purchase_bench_test.go
package benchmarks

import (
	"context"
	"fmt"
	"testing"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ammerola/backoffice-be/internal/adapters/db"
	"github.com/ammerola/backoffice-be/internal/adapters/documents"
	"github.com/ammerola/backoffice-be/internal/core/domain"
	"github.com/ammerola/backoffice-be/internal/core/services"
	"github.com/ammerola/backoffice-be/test/helpers"
)

const benchUser = "auth0|bench"

func BenchmarkPurchaseOperations(b *testing.B) {
	testDB := helpers.SetupTestDB(b)
	defer testDB.Database.Close()

	logger := helpers.TestLogger()
	pool := testDB.PgxPool

	supplier := helpers.SeedSupplier(b, pool, "Distribuidora Lima", "20512345678")
	helpers.SeedEmployee(b, pool, benchUser, "Ana Torres", "45678912")
	products := helpers.CreateTestProducts(20)
	helpers.SeedProducts(b, pool, products)

	service := services.NewPurchaseService(
		db.NewUnitOfWork(testDB.Database, testDB.Config.LockTimeout, logger),
		db.NewPurchaseRepository(testDB.Database, logger),
		db.NewEmployeeRepository(testDB.Database, logger),
		logger,
	)
	ctx := context.Background()

	input := func(n int, lines int) domain.PurchaseInput {
		in := domain.PurchaseInput{Number: fmt.Sprintf("BENCH-%d", n), SupplierID: supplier}
		for j := 0; j < lines; j++ {
			p := products[(n+j)%len(products)]
			in.Items = append(in.Items, domain.PurchaseItem{ProductID: p.ID, Quantity: 1, UnitCost: p.Cost})
		}
		return in
	}

	b.Run("Create", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_, _ = service.Create(ctx, input(i, 3), benchUser)
		}
	})

	var ids []uuid.UUID
	for i := 0; i < 100; i++ {
		p, err := service.Create(ctx, input(100000+i, 5), benchUser)
		if err != nil {
			b.Fatal(err)
		}
		ids = append(ids, p.ID)
	}

	b.Run("FindOne", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_, _ = service.FindOne(ctx, ids[i%len(ids)])
		}
	})

	b.Run("Update", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			items := input(i, 1+i%4).Items
			_, _ = service.Update(ctx, ids[i%len(ids)], domain.PurchaseChanges{Items: items})
		}
	})

	b.Run("Find", func(b *testing.B) {
		query := domain.ListQuery{
			Search: "BENCH",
			Page:   &domain.Page{Limit: 50, Offset: 0},
		}
		for i := 0; i < b.N; i++ {
			_, _ = service.Find(ctx, query)
		}
	})

	b.Run("ConcurrentCreate", func(b *testing.B) {
		b.RunParallel(func(pb *testing.PB) {
			for pb.Next() {
				_, _ = service.Create(ctx, input(int(uuid.New().ID()), 2), benchUser)
			}
		})
	})
}

func BenchmarkPurchaseService_InMemory(b *testing.B) {
	store := helpers.NewMemoryStore()
	productIDs := make([]uuid.UUID, 10)
	for i := range productIDs {
		productIDs[i] = store.AddProduct(productNames[i%len(productNames)], 1000)
	}
	employee := uuid.New()
	service := services.NewPurchaseService(store, store.Reads(),
		helpers.StaticEmployees{benchUser: employee}, helpers.TestLogger())
	ctx := context.Background()

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		in := domain.PurchaseInput{Number: fmt.Sprintf("MEM-%d", i), SupplierID: uuid.New()}
		for j := 0; j < 3; j++ {
			in.Items = append(in.Items, domain.PurchaseItem{
				ProductID: productIDs[(i+j)%len(productIDs)],
				Quantity:  1,
				UnitCost:  decimal.New(185, -1),
			})
		}
		p, err := service.Create(ctx, in, benchUser)
		if err != nil {
			b.Fatal(err)
		}
		if _, err := service.Delete(ctx, p.ID); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkReceiptParsing(b *testing.B) {
	for _, n := range []int{10, 100, 500} {
		lines := receiptLines(n)
		b.Run(fmt.Sprintf("lines_%d", n), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if _, err := documents.ParseReceiptText(lines); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkSpreadsheets(b *testing.B) {
	b.Run("ReadProducts", func(b *testing.B) {
		data := productWorkbook(b, 1000)
		b.ReportAllocs()
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			if _, _, err := documents.ReadProducts(data); err != nil {
				b.Fatal(err)
			}
		}
	})

	b.Run("WriteSalesReport", func(b *testing.B) {
		report := salesReport(1000)
		b.ReportAllocs()
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			if _, err := documents.WriteSalesReport(report); err != nil {
				b.Fatal(err)
			}
		}
	})
}

func BenchmarkBuildFilter(b *testing.B) {
	fields := db.PurchaseFilterFields
	filters := []*domain.Filter{
		{Field: "number", Operator: domain.OpLike, Value: "F001"},
		{Field: "total", Operator: domain.OpGt, Value: "100.50"},
		{Field: "createdAt", Operator: domain.OpEq, Value: "2025-01-15"},
	}

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		pred, ok := db.BuildFilter(fields, filters[i%len(filters)])
		if !ok {
			b.Fatal("filter rejected")
		}
		_, _, _ = squirrel.Select("id").From("purchases p").Where(pred).
			PlaceholderFormat(squirrel.Dollar).ToSql()
	}
}
