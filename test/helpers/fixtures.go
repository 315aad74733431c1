// test/helpers/fixtures.go
package helpers

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ammerola/backoffice-be/internal/core/domain"
)

// CreateTestProduct returns an active 5kg rice bag; overrides run in order
func CreateTestProduct(overrides ...func(*domain.Product)) *domain.Product {
	now := time.Now()
	p := &domain.Product{
		ID:           uuid.New(),
		SKU:          "ARZ-5",
		Name:         "Arroz Extra 5kg",
		Description:  "Bolsa de arroz extra",
		Stock:        20,
		InitialStock: 20,
		StockMin:     5,
		Cost:         decimal.RequireFromString("18.50"),
		Price:        decimal.RequireFromString("24.90"),
		Status:       domain.ProductActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	for _, override := range overrides {
		override(p)
	}
	return p
}

// CreateTestProducts returns count products with SKUs SKU-001, SKU-002, ...
func CreateTestProducts(count int) []*domain.Product {
	products := make([]*domain.Product, 0, count)
	for i := 1; i <= count; i++ {
		products = append(products, CreateTestProduct(func(p *domain.Product) {
			p.SKU = fmt.Sprintf("SKU-%03d", i)
			p.Name = fmt.Sprintf("Test Product %d", i)
			p.Stock = 10 * i
			p.InitialStock = p.Stock
			p.Cost = decimal.NewFromInt(int64(4 + i))
		}))
	}
	return products
}

// CreateTestPurchase buys two units of each product at its cost
func CreateTestPurchase(supplierID uuid.UUID, products ...*domain.Product) *domain.Purchase {
	now := time.Now()
	purchase := &domain.Purchase{
		ID:         uuid.New(),
		Number:     "F001-" + uuid.NewString()[:8],
		SupplierID: supplierID,
		EmployeeID: uuid.New(),
		Items:      make([]domain.PurchaseItem, 0, len(products)),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	for _, p := range products {
		item := domain.PurchaseItem{ProductID: p.ID, ProductName: p.Name, Quantity: 2, UnitCost: p.Cost}
		purchase.Items = append(purchase.Items, item)
		purchase.Total = purchase.Total.Add(item.Subtotal())
	}
	return purchase
}
