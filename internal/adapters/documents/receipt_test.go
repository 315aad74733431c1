// internal/adapters/documents/receipt_test.go
package documents_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ammerola/backoffice-be/internal/adapters/documents"
	"github.com/ammerola/backoffice-be/internal/core/domain"
	"github.com/ammerola/backoffice-be/test/helpers"
)

func TestParseReceiptText(t *testing.T) {
	tests := []struct {
		name          string
		lines         []string
		expectedError error
		check         func(*testing.T, *documents.Receipt)
	}{
		{
			name: "header_items_and_total",
			lines: []string{
				"DISTRIBUIDORA NORTE SAC",
				"Number: F001-000123",
				"Supplier: 20512345678",
				"SKU QTY COST",
				"arz-5 10 S/ 18.50",
				"ACE-1L 4 7.20",
				"Total: S/ 213.80",
			},
			check: func(t *testing.T, r *documents.Receipt) {
				assert.Equal(t, "F001-000123", r.Number)
				assert.Equal(t, "20512345678", r.SupplierRUC)
				require.Len(t, r.Lines, 2)
				assert.Equal(t, "ARZ-5", r.Lines[0].SKU)
				assert.Equal(t, 10, r.Lines[0].Quantity)
				assert.True(t, r.Lines[0].UnitCost.Equal(decimal.RequireFromString("18.50")))
				require.NotNil(t, r.Total)
				assert.True(t, r.Total.Equal(decimal.RequireFromString("213.80")))
			},
		},
		{
			name: "repeated_sku_is_merged",
			lines: []string{
				"Número: B002-9",
				"Proveedor: 10456789012",
				"LEC-1 3 2.50",
				"LEC-1 2 2.50",
			},
			check: func(t *testing.T, r *documents.Receipt) {
				require.Len(t, r.Lines, 1)
				assert.Equal(t, 5, r.Lines[0].Quantity)
				assert.Nil(t, r.Total)
			},
		},
		{
			name:          "missing_number",
			lines:         []string{"Supplier: 20512345678", "ARZ-5 1 2.00"},
			expectedError: domain.ErrInvalidInput,
		},
		{
			name:          "missing_supplier",
			lines:         []string{"Number: F1", "ARZ-5 1 2.00"},
			expectedError: domain.ErrInvalidInput,
		},
		{
			name:          "no_items",
			lines:         []string{"Number: F1", "Supplier: 20512345678", "Gracias por su compra"},
			expectedError: domain.ErrInvalidInput,
		},
		{
			name:          "zero_quantity",
			lines:         []string{"Number: F1", "Supplier: 20512345678", "ARZ-5 0 2.00"},
			expectedError: domain.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := documents.ParseReceiptText(tt.lines)
			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				return
			}
			require.NoError(t, err)
			tt.check(t, got)
		})
	}
}

func TestParseReceiptPDF_Garbage(t *testing.T) {
	_, err := documents.ParseReceiptPDF([]byte("not a pdf"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestParseReceiptPDF(t *testing.T) {
	data := helpers.ReceiptPDF(
		"Number: F001-000555",
		"Supplier: 20512345678",
		"ARZ-5 10 18.50",
		"ACE-1L 2 7.20",
	)

	got, err := documents.ParseReceiptPDF(data)
	require.NoError(t, err)
	assert.Equal(t, "F001-000555", got.Number)
	assert.Equal(t, "20512345678", got.SupplierRUC)
	require.Len(t, got.Lines, 2)
	assert.Equal(t, "ACE-1L", got.Lines[1].SKU)
	assert.Equal(t, 2, got.Lines[1].Quantity)
}
