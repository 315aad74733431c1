// test/benchmarks/helpers.go
package benchmarks

import (
	"fmt"
	"strconv"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ammerola/backoffice-be/internal/adapters/documents"
	"github.com/ammerola/backoffice-be/internal/core/domain"
	"github.com/ammerola/backoffice-be/test/helpers"
)

var productNames = []string{
	"Arroz Extra 5kg",
	"Aceite Vegetal 1L",
	"Azucar Rubia 1kg",
	"Leche Evaporada 400g",
	"Fideos Spaghetti 500g",
	"Atun en Lata 170g",
	"Detergente 2kg",
	"Cafe Molido 250g",
}

// receiptLines builds the extracted text of a receipt with n item lines
func receiptLines(n int) []string {
	lines := make([]string, 0, n+4)
	lines = append(lines,
		"FACTURA ELECTRONICA",
		"Number: F001-"+fmt.Sprintf("%06d", n),
		"Supplier: 20512345678",
	)
	total := decimal.Zero
	for i := 0; i < n; i++ {
		cost := decimal.New(int64(150+i*7), -2)
		qty := 1 + i%12
		lines = append(lines, fmt.Sprintf("SKU-%04d %d %s", i+1, qty, cost.StringFixed(2)))
		total = total.Add(cost.Mul(decimal.NewFromInt(int64(qty))))
	}
	return append(lines, "Total: "+total.StringFixed(2))
}

// productWorkbook builds an import workbook with n product rows
func productWorkbook(tb testing.TB, n int) []byte {
	rows := make([][]string, 0, n+1)
	rows = append(rows, documents.ProductColumns)
	for i := 0; i < n; i++ {
		rows = append(rows, []string{
			fmt.Sprintf("SKU-%04d", i+1),
			productNames[i%len(productNames)],
			strconv.Itoa(10 + i%40),
			"5",
			"3.50",
			"5.90",
			"",
		})
	}
	return helpers.Workbook(tb, rows...)
}

// salesReport builds a report of n sales with three lines each
func salesReport(n int) *domain.SalesReport {
	report := &domain.SalesReport{Sales: make([]domain.Sale, 0, n)}
	for i := 0; i < n; i++ {
		sale := domain.Sale{
			ID:           uuid.New(),
			Number:       fmt.Sprintf("B001-%06d", i+1),
			CustomerName: "Cliente Varios",
			CustomerDNI:  "00000000",
		}
		for j := 0; j < 3; j++ {
			line := domain.SaleItem{
				ProductID: uuid.New(),
				Name:      productNames[(i+j)%len(productNames)],
				SKU:       fmt.Sprintf("SKU-%04d", j+1),
				Quantity:  1 + j,
				UnitPrice: decimal.New(590, -2),
			}
			sale.Items = append(sale.Items, line)
			sale.Total = sale.Total.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
		}
		report.Sales = append(report.Sales, sale)
		report.Total = report.Total.Add(sale.Total)
	}
	report.Count = n
	return report
}
