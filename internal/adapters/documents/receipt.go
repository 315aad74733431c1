// internal/adapters/documents/receipt.go
package documents

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/shopspring/decimal"

	"github.com/ammerola/backoffice-be/internal/core/domain"
)

// Receipt is a supplier receipt as read from a PDF, before SKUs and the
// supplier are resolved to ids.
type Receipt struct {
	Number      string
	SupplierRUC string
	Total       *decimal.Decimal
	Lines       []ReceiptLine
}

// ReceiptLine is one "SKU QTY UNIT_COST" line
type ReceiptLine struct {
	SKU      string
	Quantity int
	UnitCost decimal.Decimal
}

var (
	numberRe   = regexp.MustCompile(`(?i)^\s*(?:number|n[uú]mero|no\.?)\s*:\s*(\S+)`)
	supplierRe = regexp.MustCompile(`(?i)^\s*(?:supplier|proveedor|ruc)\s*:\s*(\d{8,13})`)
	totalRe    = regexp.MustCompile(`(?i)^\s*total\s*:?\s*(?:S/\.?|\$)?\s*([\d,]+\.\d{2})\s*$`)
	lineRe     = regexp.MustCompile(`^\s*([A-Za-z0-9][A-Za-z0-9._-]*)\s+(\d+)\s+(?:S/\.?|\$)?\s*([\d,]*\d(?:\.\d{1,4})?)\s*$`)
)

// ParseReceiptPDF extracts the plain text of every page and parses it
func ParseReceiptPDF(data []byte) (*Receipt, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open PDF: %v", domain.ErrInvalidInput, err)
	}

	var lines []string
	for n := 1; n <= r.NumPage(); n++ {
		page := r.Page(n)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			return nil, fmt.Errorf("%w: page %d: %v", domain.ErrInvalidInput, n, err)
		}
		for _, row := range rows {
			var b strings.Builder
			for i, word := range row.Content {
				if i > 0 {
					b.WriteByte(' ')
				}
				b.WriteString(word.S)
			}
			lines = append(lines, b.String())
		}
	}

	return ParseReceiptText(lines)
}

// ParseReceiptText reads the header fields and item lines. Lines that are
// neither are ignored; a receipt without a number, supplier or items is
// rejected.
func ParseReceiptText(lines []string) (*Receipt, error) {
	rec := &Receipt{}
	seen := make(map[string]int)

	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		if m := numberRe.FindStringSubmatch(line); m != nil && rec.Number == "" {
			rec.Number = m[1]
			continue
		}
		if m := supplierRe.FindStringSubmatch(line); m != nil && rec.SupplierRUC == "" {
			rec.SupplierRUC = m[1]
			continue
		}
		if m := totalRe.FindStringSubmatch(line); m != nil {
			t, err := parseAmount(m[1])
			if err != nil {
				return nil, domain.InvalidInputf("line %d: total %q", i+1, m[1])
			}
			rec.Total = &t
			continue
		}

		m := lineRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		qty, err := strconv.Atoi(m[2])
		if err != nil || qty <= 0 {
			return nil, domain.InvalidInputf("line %d: quantity %q", i+1, m[2])
		}
		cost, err := parseAmount(m[3])
		if err != nil {
			return nil, domain.InvalidInputf("line %d: unit cost %q", i+1, m[3])
		}

		sku := strings.ToUpper(m[1])
		// repeated SKUs on one receipt are merged into a single line
		if idx, ok := seen[sku]; ok {
			rec.Lines[idx].Quantity += qty
			continue
		}
		seen[sku] = len(rec.Lines)
		rec.Lines = append(rec.Lines, ReceiptLine{SKU: sku, Quantity: qty, UnitCost: cost})
	}

	switch {
	case rec.Number == "":
		return nil, domain.InvalidInputf("receipt has no number")
	case rec.SupplierRUC == "":
		return nil, domain.InvalidInputf("receipt has no supplier")
	case len(rec.Lines) == 0:
		return nil, domain.InvalidInputf("receipt has no items")
	}
	return rec, nil
}

func parseAmount(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(strings.ReplaceAll(s, ",", ""))
}
