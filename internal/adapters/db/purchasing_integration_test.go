//go:build integration
// +build integration

package db_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/ammerola/backoffice-be/internal/adapters/db"
	"github.com/ammerola/backoffice-be/internal/core/domain"
	"github.com/ammerola/backoffice-be/internal/core/ports"
	"github.com/ammerola/backoffice-be/internal/core/services"
	"github.com/ammerola/backoffice-be/test/helpers"
)

const actingUser = "auth0|integration"

type PurchasingSuite struct {
	suite.Suite
	testDB     *helpers.TestDB
	ctx        context.Context
	products   ports.ProductRepository
	reports    ports.ReportRepository
	jobs       ports.JobRepository
	purchases  *services.PurchaseService
	supplierID uuid.UUID
	a, b       *domain.Product
}

func TestPurchasingSuite(t *testing.T) {
	suite.Run(t, new(PurchasingSuite))
}

func (s *PurchasingSuite) SetupSuite() {
	s.testDB = helpers.SetupTestDB(s.T())
	s.ctx = context.Background()

	l := helpers.TestLogger()
	database := s.testDB.Database
	s.products = db.NewProductRepository(database, l)
	s.reports = db.NewReportRepository(database, l)
	s.jobs = db.NewJobRepository(database, l)
	s.purchases = services.NewPurchaseService(
		db.NewUnitOfWork(database, s.testDB.Config.LockTimeout, l),
		db.NewPurchaseRepository(database, l),
		db.NewEmployeeRepository(database, l),
		l,
	)
}

func (s *PurchasingSuite) SetupTest() {
	pool := s.testDB.PgxPool
	helpers.TruncateAllTables(s.T(), pool)

	s.supplierID = helpers.SeedSupplier(s.T(), pool, "Distribuidora Andina SAC", "20512345678")
	helpers.SeedEmployee(s.T(), pool, actingUser, "Rosa Huaman Torres", "41234567")

	s.a = helpers.CreateTestProduct(func(p *domain.Product) {
		p.SKU, p.Stock, p.InitialStock = "A-1", 10, 10
	})
	s.b = helpers.CreateTestProduct(func(p *domain.Product) {
		p.SKU, p.Stock, p.InitialStock = "B-1", 4, 4
	})
	helpers.SeedProducts(s.T(), pool, []*domain.Product{s.a, s.b})
}

func (s *PurchasingSuite) stock(id uuid.UUID) int {
	p, err := s.products.FindByID(s.ctx, id)
	s.Require().NoError(err)
	s.Require().NotNil(p)
	return p.Stock
}

func item(p *domain.Product, qty int, cost string) domain.PurchaseItem {
	return domain.PurchaseItem{ProductID: p.ID, Quantity: qty, UnitCost: decimal.RequireFromString(cost)}
}

func (s *PurchasingSuite) TestCreateUpdateDeleteScenario() {
	created, err := s.purchases.Create(s.ctx, domain.PurchaseInput{
		Number:     "F001-000001",
		SupplierID: s.supplierID,
		Items:      []domain.PurchaseItem{item(s.a, 3, "2.00")},
	}, actingUser)
	s.Require().NoError(err)
	s.Len(created.Items, 1)
	s.True(decimal.RequireFromString("6").Equal(created.Total))
	s.Equal(13, s.stock(s.a.ID))

	updated, err := s.purchases.Update(s.ctx, created.ID, domain.PurchaseChanges{
		Items: []domain.PurchaseItem{item(s.a, 5, "2.00"), item(s.b, 2, "1.50")},
	})
	s.Require().NoError(err)
	s.Len(updated.Items, 2)
	s.Equal(15, s.stock(s.a.ID))
	s.Equal(6, s.stock(s.b.ID))

	_, err = s.purchases.Delete(s.ctx, created.ID)
	s.Require().NoError(err)
	s.Equal(10, s.stock(s.a.ID))
	s.Equal(4, s.stock(s.b.ID))

	_, err = s.purchases.FindOne(s.ctx, created.ID)
	s.ErrorIs(err, domain.ErrPurchaseNotFound)
}

func (s *PurchasingSuite) TestUpdateWithSameItemsKeepsStock() {
	items := []domain.PurchaseItem{item(s.a, 3, "2.00"), item(s.b, 1, "1.00")}
	created, err := s.purchases.Create(s.ctx, domain.PurchaseInput{Number: "F001-000002", SupplierID: s.supplierID, Items: items}, actingUser)
	s.Require().NoError(err)

	_, err = s.purchases.Update(s.ctx, created.ID, domain.PurchaseChanges{Items: items})
	s.Require().NoError(err)

	s.Equal(13, s.stock(s.a.ID))
	s.Equal(5, s.stock(s.b.ID))
}

func (s *PurchasingSuite) TestCreateIsAtomicWhenAProductIsMissing() {
	missing := helpers.CreateTestProduct(func(p *domain.Product) { p.SKU = "GHOST" })

	_, err := s.purchases.Create(s.ctx, domain.PurchaseInput{
		Number:     "F001-000003",
		SupplierID: s.supplierID,
		Items:      []domain.PurchaseItem{item(s.a, 3, "2.00"), item(s.b, 1, "1.00"), item(missing, 1, "1.00")},
	}, actingUser)
	s.Require().Error(err)
	s.ErrorIs(err, domain.ErrProductNotFound)

	s.Equal(10, s.stock(s.a.ID))
	s.Equal(4, s.stock(s.b.ID))

	list, err := s.purchases.Find(s.ctx, domain.ListQuery{})
	s.Require().NoError(err)
	s.Zero(list.Total)
}

func (s *PurchasingSuite) TestUnknownEmployeeIsRejected() {
	_, err := s.purchases.Create(s.ctx, domain.PurchaseInput{
		Number:     "F001-000004",
		SupplierID: s.supplierID,
		Items:      []domain.PurchaseItem{item(s.a, 1, "2.00")},
	}, "auth0|nobody")
	s.ErrorIs(err, domain.ErrEmployeeNotFound)
	s.Equal(10, s.stock(s.a.ID))
}

func (s *PurchasingSuite) TestConcurrentCreatesSerialize() {
	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range 2 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.purchases.Create(s.ctx, domain.PurchaseInput{
				Number:     []string{"F001-100001", "F001-100002"}[i],
				SupplierID: s.supplierID,
				Items:      []domain.PurchaseItem{item(s.a, 5, "2.00")},
			}, actingUser)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		s.NoError(err)
	}
	s.Equal(20, s.stock(s.a.ID))
}

func (s *PurchasingSuite) TestDeleteThatWouldUnderflowIsRolledBack() {
	created, err := s.purchases.Create(s.ctx, domain.PurchaseInput{
		Number:     "F001-000005",
		SupplierID: s.supplierID,
		Items:      []domain.PurchaseItem{item(s.b, 6, "1.00")},
	}, actingUser)
	s.Require().NoError(err)
	s.Equal(10, s.stock(s.b.ID))

	// Sell most of the purchased units, then try to revert the purchase
	helpers.SeedSale(s.T(), s.testDB.PgxPool, "B001-000001", time.Now(), 8, s.b)
	_, err = s.testDB.PgxPool.Exec(s.ctx, `UPDATE products SET stock = stock - 8 WHERE id = $1`, s.b.ID)
	s.Require().NoError(err)

	_, err = s.purchases.Delete(s.ctx, created.ID)
	s.Require().Error(err)
	s.True(errors.Is(err, domain.ErrStockUnderflow) || errors.Is(err, domain.ErrInvalidInput))
	s.Equal(2, s.stock(s.b.ID))

	_, err = s.purchases.FindOne(s.ctx, created.ID)
	s.NoError(err)
}

func (s *PurchasingSuite) TestFindFiltersAndPages() {
	for i, n := range []string{"F001-000010", "F001-000011", "F002-000001"} {
		_, err := s.purchases.Create(s.ctx, domain.PurchaseInput{
			Number:     n,
			SupplierID: s.supplierID,
			Items:      []domain.PurchaseItem{item(s.a, i+1, "10.00")},
		}, actingUser)
		s.Require().NoError(err)
	}

	list, err := s.purchases.Find(s.ctx, domain.ListQuery{
		Search:        "F001",
		SortColumn:    "number",
		SortDirection: domain.SortAsc,
		Page:          &domain.Page{Limit: 1, Offset: 1},
	})
	s.Require().NoError(err)
	s.Equal(int64(2), list.Total)
	s.Require().Len(list.Purchases, 1)
	s.Equal("F001-000011", list.Purchases[0].Number)

	list, err = s.purchases.Find(s.ctx, domain.ListQuery{
		Filter: &domain.Filter{Field: "total", Operator: domain.FilterOperator("gte"), Value: "20"},
	})
	s.Require().NoError(err)
	s.Equal(int64(2), list.Total)
}

func (s *PurchasingSuite) TestStockDiscrepanciesAndSales() {
	_, err := s.purchases.Create(s.ctx, domain.PurchaseInput{
		Number:     "F001-000020",
		SupplierID: s.supplierID,
		Items:      []domain.PurchaseItem{item(s.a, 5, "2.00")},
	}, actingUser)
	s.Require().NoError(err)

	day := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	helpers.SeedSale(s.T(), s.testDB.PgxPool, "B001-000020", day, 2, s.a)
	_, err = s.testDB.PgxPool.Exec(s.ctx, `UPDATE products SET stock = stock - 2 WHERE id = $1`, s.a.ID)
	s.Require().NoError(err)

	found, err := s.reports.StockDiscrepancies(s.ctx)
	s.Require().NoError(err)
	s.Empty(found)

	// Drift B behind the ledger's back
	_, err = s.testDB.PgxPool.Exec(s.ctx, `UPDATE products SET stock = 99 WHERE id = $1`, s.b.ID)
	s.Require().NoError(err)

	found, err = s.reports.StockDiscrepancies(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(found, 1)
	s.Equal(s.b.ID, found[0].ProductID)
	s.Equal(4, found[0].Expected())

	dr, err := domain.NewDateRange("2024-01-01", "2024-01-31")
	s.Require().NoError(err)
	sales, err := s.reports.SalesBetween(s.ctx, dr)
	s.Require().NoError(err)
	s.Require().Len(sales, 1)
	s.Len(sales[0].Items, 1)

	total, err := s.reports.SalesTotalBetween(s.ctx, dr)
	s.Require().NoError(err)
	s.True(s.a.Price.Mul(decimal.NewFromInt(2)).Equal(total))

	s.Require().NoError(s.reports.RefreshStockSummary(s.ctx))
	summary, err := s.reports.StockSummary(s.ctx)
	s.Require().NoError(err)
	s.Equal(int64(2), summary.Products)
}

func (s *PurchasingSuite) TestJobLifecycle() {
	job, err := s.jobs.Create(s.ctx, "product:import", map[string]string{"file_key": "uploads/products/x.xlsx"})
	s.Require().NoError(err)
	s.Equal(domain.JobPending, job.Status)

	s.Require().NoError(s.jobs.UpdateStatus(s.ctx, job.ID, domain.JobCompleted, 100, json.RawMessage(`{"created":3}`), ""))

	got, err := s.jobs.Get(s.ctx, job.ID)
	s.Require().NoError(err)
	s.Equal(domain.JobCompleted, got.Status)
	s.NotNil(got.CompletedAt)
	s.JSONEq(`{"created":3}`, string(got.Result))

	deleted, err := s.jobs.DeleteFinishedBefore(s.ctx, time.Now().Add(time.Minute))
	s.Require().NoError(err)
	s.Equal(int64(1), deleted)

	_, err = s.jobs.Get(s.ctx, job.ID)
	s.ErrorIs(err, domain.ErrJobNotFound)
}
