// internal/adapters/db/filter_builder_test.go
package db_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ammerola/backoffice-be/internal/adapters/db"
	"github.com/ammerola/backoffice-be/internal/core/domain"
)

func TestBuildFilter(t *testing.T) {
	tests := []struct {
		name     string
		fields   db.FilterFields
		filter   *domain.Filter
		wantOK   bool
		wantSQL  string
		wantArgs []interface{}
	}{
		{
			name:   "nil_filter",
			fields: db.ProductFilterFields,
			filter: nil,
			wantOK: false,
		},
		{
			name:   "empty_value",
			fields: db.ProductFilterFields,
			filter: &domain.Filter{Field: "cost", Operator: domain.OpEq, Value: ""},
			wantOK: false,
		},
		{
			name:   "unknown_field",
			fields: db.ProductFilterFields,
			filter: &domain.Filter{Field: "password", Operator: domain.OpEq, Value: "x"},
			wantOK: false,
		},
		{
			name:   "unknown_operator",
			fields: db.ProductFilterFields,
			filter: &domain.Filter{Field: "cost", Operator: "regex", Value: "1"},
			wantOK: false,
		},
		{
			name:     "numeric_gt",
			fields:   db.ProductFilterFields,
			filter:   &domain.Filter{Field: "cost", Operator: domain.OpGt, Value: "10.50"},
			wantOK:   true,
			wantSQL:  "cost > ?",
			wantArgs: []interface{}{decimal.RequireFromString("10.50")},
		},
		{
			name:   "numeric_rejects_garbage",
			fields: db.ProductFilterFields,
			filter: &domain.Filter{Field: "price", Operator: domain.OpEq, Value: "cheap"},
			wantOK: false,
		},
		{
			name:   "numeric_rejects_like",
			fields: db.ProductFilterFields,
			filter: &domain.Filter{Field: "price", Operator: domain.OpLike, Value: "1"},
			wantOK: false,
		},
		{
			name:     "integer_lte",
			fields:   db.ProductFilterFields,
			filter:   &domain.Filter{Field: "stockMin", Operator: domain.OpLte, Value: " 5 "},
			wantOK:   true,
			wantSQL:  "stock_min <= ?",
			wantArgs: []interface{}{5},
		},
		{
			name:     "integer_between",
			fields:   db.ProductFilterFields,
			filter:   &domain.Filter{Field: "stock", Operator: domain.OpBetween, Value: "1,10"},
			wantOK:   true,
			wantSQL:  "(stock >= ? AND stock <= ?)",
			wantArgs: []interface{}{1, 10},
		},
		{
			name:   "between_needs_two_bounds",
			fields: db.ProductFilterFields,
			filter: &domain.Filter{Field: "stock", Operator: domain.OpBetween, Value: "10"},
			wantOK: false,
		},
		{
			name:     "date_between",
			fields:   db.ProductFilterFields,
			filter:   &domain.Filter{Field: "expirationDate", Operator: domain.OpBetween, Value: "2024-01-01,2024-01-31"},
			wantOK:   true,
			wantSQL:  "(expiration_date >= ? AND expiration_date <= ?)",
			wantArgs: []interface{}{"2024-01-01", "2024-01-31"},
		},
		{
			name:   "date_rejects_like",
			fields: db.ProductFilterFields,
			filter: &domain.Filter{Field: "expirationDate", Operator: domain.OpLike, Value: "2024"},
			wantOK: false,
		},
		{
			name:     "status_like_spanish_label",
			fields:   db.ProductFilterFields,
			filter:   &domain.Filter{Field: "status", Operator: domain.OpLike, Value: "Activo"},
			wantOK:   true,
			wantSQL:  "status = ?",
			wantArgs: []interface{}{"active"},
		},
		{
			name:   "status_rejects_eq",
			fields: db.ProductFilterFields,
			filter: &domain.Filter{Field: "status", Operator: domain.OpEq, Value: "active"},
			wantOK: false,
		},
		{
			name:   "status_rejects_unknown_value",
			fields: db.ProductFilterFields,
			filter: &domain.Filter{Field: "status", Operator: domain.OpLike, Value: "archived"},
			wantOK: false,
		},
		{
			name:     "text_like_escapes_wildcards",
			fields:   db.PurchaseFilterFields,
			filter:   &domain.Filter{Field: "number", Operator: domain.OpLike, Value: "F001_%"},
			wantOK:   true,
			wantSQL:  "p.number ILIKE ?",
			wantArgs: []interface{}{`%F001\_\%%`},
		},
		{
			name:     "operator_is_case_insensitive",
			fields:   db.PurchaseFilterFields,
			filter:   &domain.Filter{Field: "total", Operator: "GTE", Value: "100"},
			wantOK:   true,
			wantSQL:  "p.total >= ?",
			wantArgs: []interface{}{decimal.RequireFromString("100")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pred, ok := db.BuildFilter(tt.fields, tt.filter)
			assert.Equal(t, tt.wantOK, ok)
			if !tt.wantOK {
				assert.Nil(t, pred)
				return
			}

			sql, args, err := pred.ToSql()
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, sql)
			require.Len(t, args, len(tt.wantArgs))
			for i, want := range tt.wantArgs {
				if d, isDec := want.(decimal.Decimal); isDec {
					got, _ := args[i].(decimal.Decimal)
					assert.True(t, d.Equal(got), "arg %d: want %s got %v", i, d, args[i])
					continue
				}
				assert.Equal(t, want, args[i])
			}
		})
	}
}
