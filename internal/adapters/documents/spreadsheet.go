// internal/adapters/documents/spreadsheet.go
package documents

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tealeg/xlsx/v3"

	"github.com/ammerola/backoffice-be/internal/core/domain"
)

// ProductColumns is the expected header of a product import sheet
var ProductColumns = []string{"sku", "name", "stock", "stock_min", "cost", "price", "expiration_date"}

// RowError is a sheet row that could not be read
type RowError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// ReadProducts parses the first sheet of an import workbook. The first row
// is the header. Bad rows are reported and skipped; blank rows are ignored.
func ReadProducts(data []byte) ([]*domain.Product, []RowError, error) {
	file, err := xlsx.OpenBinary(data)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: failed to open workbook: %v", domain.ErrInvalidInput, err)
	}
	if len(file.Sheets) == 0 {
		return nil, nil, domain.InvalidInputf("workbook has no sheets")
	}

	var (
		products []*domain.Product
		rowErrs  []RowError
	)
	err = file.Sheets[0].ForEachRow(func(r *xlsx.Row) error {
		rowNum := r.GetCoordinate() + 1
		if rowNum == 1 {
			return checkHeader(r)
		}

		get := func(i int) string {
			c := r.GetCell(i)
			if c == nil {
				return ""
			}
			return strings.TrimSpace(c.String())
		}
		if get(0) == "" && get(1) == "" {
			return nil
		}

		p, err := productFromRow(r, get)
		if err != nil {
			rowErrs = append(rowErrs, RowError{Row: rowNum, Reason: err.Error()})
			return nil
		}
		products = append(products, p)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return products, rowErrs, nil
}

func checkHeader(r *xlsx.Row) error {
	for i, want := range ProductColumns {
		c := r.GetCell(i)
		if c == nil || !strings.EqualFold(strings.TrimSpace(c.String()), want) {
			return domain.InvalidInputf("column %d must be %q", i+1, want)
		}
	}
	return nil
}

func productFromRow(r *xlsx.Row, get func(int) string) (*domain.Product, error) {
	stock, err := atoi(get(2))
	if err != nil {
		return nil, fmt.Errorf("stock: %w", err)
	}
	stockMin, err := atoi(get(3))
	if err != nil {
		return nil, fmt.Errorf("stock_min: %w", err)
	}
	cost, err := money(get(4))
	if err != nil {
		return nil, fmt.Errorf("cost: %w", err)
	}
	price, err := money(get(5))
	if err != nil {
		return nil, fmt.Errorf("price: %w", err)
	}

	p := &domain.Product{
		SKU:      strings.ToUpper(get(0)),
		Name:     get(1),
		Stock:    stock,
		StockMin: stockMin,
		Cost:     cost,
		Price:    price,
		Status:   domain.ProductActive,
	}

	if exp, err := expiration(r.GetCell(6)); err != nil {
		return nil, fmt.Errorf("expiration_date: %w", err)
	} else if exp != nil {
		p.HasExpiration = true
		p.ExpirationDate = exp
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func atoi(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	// numeric cells may come back as "12.0"
	if f, err := strconv.ParseFloat(s, 64); err == nil && f == float64(int(f)) {
		return int(f), nil
	}
	return 0, fmt.Errorf("not an integer: %q", s)
}

func money(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(s, "S/"), "$"))
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", ""))
	if err != nil {
		return decimal.Zero, fmt.Errorf("not an amount: %q", s)
	}
	return d.Round(2), nil
}

func expiration(c *xlsx.Cell) (*time.Time, error) {
	if c == nil || strings.TrimSpace(c.Value) == "" {
		return nil, nil
	}
	if c.IsTime() {
		t, err := c.GetTime(false)
		if err != nil {
			return nil, err
		}
		d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		return &d, nil
	}
	t, err := domain.ParseDate(c.String())
	if err != nil {
		return nil, err
	}
	return &t, nil
}

var salesHeaders = []string{"Number", "Date", "Customer", "DNI", "SKU", "Product", "Quantity", "Unit Price", "Subtotal"}

// WriteSalesReport renders the report as a workbook with one row per sold
// item and a closing total row.
func WriteSalesReport(report *domain.SalesReport) ([]byte, error) {
	file := xlsx.NewFile()

	sheet, err := file.AddSheet("Sales")
	if err != nil {
		return nil, fmt.Errorf("failed to add worksheet: %w", err)
	}

	headerRow := sheet.AddRow()
	for _, h := range salesHeaders {
		cell := headerRow.AddCell()
		cell.Value = h
		cell.GetStyle().Font.Bold = true
		cell.GetStyle().Fill.PatternType = "solid"
		cell.GetStyle().Fill.FgColor = "CCCCCC"
	}

	for _, sale := range report.Sales {
		for _, it := range sale.Items {
			row := sheet.AddRow()
			row.AddCell().SetString(sale.Number)
			row.AddCell().SetString(sale.CreatedAt.Format("2006-01-02 15:04"))
			row.AddCell().SetString(sale.CustomerName)
			row.AddCell().SetString(sale.CustomerDNI)
			row.AddCell().SetString(it.SKU)
			row.AddCell().SetString(it.Name)
			row.AddCell().SetInt(it.Quantity)
			row.AddCell().SetFloatWithFormat(it.UnitPrice.InexactFloat64(), "0.00")
			sub := it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
			row.AddCell().SetFloatWithFormat(sub.InexactFloat64(), "0.00")
		}
	}

	totalRow := sheet.AddRow()
	for range len(salesHeaders) - 2 {
		totalRow.AddCell()
	}
	label := totalRow.AddCell()
	label.Value = fmt.Sprintf("Total (%d sales)", report.Count)
	label.GetStyle().Font.Bold = true
	total := totalRow.AddCell()
	total.SetFloatWithFormat(report.Total.InexactFloat64(), "0.00")
	total.GetStyle().Font.Bold = true

	for i := range salesHeaders {
		sheet.SetColWidth(i+1, i+1, 15)
	}

	var buffer bytes.Buffer
	if err := file.Write(&buffer); err != nil {
		return nil, fmt.Errorf("failed to write Excel file to buffer: %w", err)
	}
	return buffer.Bytes(), nil
}
