// internal/core/domain/report.go
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Sale is a sales header as read by the report
type Sale struct {
	ID           uuid.UUID       `json:"id"`
	Number       string          `json:"number"`
	CustomerName string          `json:"customer_name"`
	CustomerDNI  string          `json:"customer_dni"`
	Total        decimal.Decimal `json:"total"`
	CreatedAt    time.Time       `json:"created_at"`
	Items        []SaleItem      `json:"items"`
}

// SaleItem is one sold product line
type SaleItem struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	SKU       string          `json:"sku"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// SalesReport aggregates sales within an inclusive date range
type SalesReport struct {
	Sales     []Sale          `json:"sales"`
	Total     decimal.Decimal `json:"total"`
	Count     int             `json:"count"`
	StartDate time.Time       `json:"start_date"`
	EndDate   time.Time       `json:"end_date"`
}

// DateRange is an inclusive reporting window
type DateRange struct {
	Start time.Time
	End   time.Time
}

// NewDateRange parses both bounds and stretches End to the last millisecond
// of its day. Both dates are required.
func NewDateRange(start, end string) (DateRange, error) {
	if start == "" || end == "" {
		return DateRange{}, InvalidInputf("startDate and endDate are required")
	}
	s, err := ParseDate(start)
	if err != nil {
		return DateRange{}, InvalidInputf("startDate: %v", err)
	}
	e, err := ParseDate(end)
	if err != nil {
		return DateRange{}, InvalidInputf("endDate: %v", err)
	}
	e = time.Date(e.Year(), e.Month(), e.Day(), 23, 59, 59, int(999*time.Millisecond), e.Location())
	if e.Before(s) {
		return DateRange{}, InvalidInputf("endDate is before startDate")
	}
	return DateRange{Start: s, End: e}, nil
}

// StockSummary backs the dashboard
type StockSummary struct {
	Products       int64           `json:"products"`
	ActiveProducts int64           `json:"active_products"`
	UnitsInStock   int64           `json:"units_in_stock"`
	StockValue     decimal.Decimal `json:"stock_value"`
	BelowMinimum   int64           `json:"below_minimum"`
	ExpiringSoon   int64           `json:"expiring_soon"`
	PurchasesToday int64           `json:"purchases_today"`
	PurchasedToday decimal.Decimal `json:"purchased_today"`
	SalesToday     int64           `json:"sales_today"`
	SoldToday      decimal.Decimal `json:"sold_today"`
	RefreshedAt    time.Time       `json:"refreshed_at"`
}

// StockDiscrepancy is a product whose stock does not match its history
type StockDiscrepancy struct {
	ProductID    uuid.UUID `json:"product_id"`
	SKU          string    `json:"sku"`
	Stock        int       `json:"stock"`
	InitialStock int       `json:"initial_stock"`
	Purchased    int       `json:"purchased"`
	Sold         int       `json:"sold"`
}

// Expected is the stock implied by the product's history
func (d StockDiscrepancy) Expected() int {
	return d.InitialStock + d.Purchased - d.Sold
}
