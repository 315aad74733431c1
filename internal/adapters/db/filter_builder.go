// internal/adapters/db/filter_builder.go
package db

import (
	"strconv"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/shopspring/decimal"

	"github.com/ammerola/backoffice-be/internal/core/domain"
)

type fieldKind int

const (
	kindNumeric fieldKind = iota
	kindInteger
	kindDate
	kindStatus
	kindText
)

type filterField struct {
	column string
	kind   fieldKind
}

// FilterFields maps the public field names a listing accepts to columns
type FilterFields map[string]filterField

// ProductFilterFields are the filterable product columns
var ProductFilterFields = FilterFields{
	"cost":           {column: "cost", kind: kindNumeric},
	"price":          {column: "price", kind: kindNumeric},
	"stock":          {column: "stock", kind: kindInteger},
	"stockMin":       {column: "stock_min", kind: kindInteger},
	"expirationDate": {column: "expiration_date", kind: kindDate},
	"status":         {column: "status", kind: kindStatus},
}

// PurchaseFilterFields are the filterable purchase columns
var PurchaseFilterFields = FilterFields{
	"number":    {column: "p.number", kind: kindText},
	"total":     {column: "p.total", kind: kindNumeric},
	"createdAt": {column: "p.created_at", kind: kindDate},
}

// BuildFilter turns f into a predicate over fields. ok is false when the
// field, operator or value is not usable for that field; the caller then
// lists without a filter.
func BuildFilter(fields FilterFields, f *domain.Filter) (pred squirrel.Sqlizer, ok bool) {
	if f == nil || f.Value == "" {
		return nil, false
	}
	field, known := fields[f.Field]
	if !known {
		return nil, false
	}
	op, valid := domain.ParseFilterOperator(string(f.Operator))
	if !valid {
		return nil, false
	}

	switch field.kind {
	case kindNumeric:
		if op == domain.OpLike {
			return nil, false
		}
		return compare(field.column, op, f.Value, parseDecimal)
	case kindInteger:
		if op == domain.OpLike {
			return nil, false
		}
		return compare(field.column, op, f.Value, parseInt)
	case kindDate:
		if op == domain.OpLike {
			return nil, false
		}
		return compare(field.column, op, f.Value, parseDate)
	case kindStatus:
		if op != domain.OpLike {
			return nil, false
		}
		status, ok := domain.ParseProductStatus(f.Value)
		if !ok {
			return nil, false
		}
		return squirrel.Eq{field.column: string(status)}, true
	case kindText:
		switch op {
		case domain.OpLike:
			return squirrel.ILike{field.column: "%" + escapeLike(f.Value) + "%"}, true
		case domain.OpEq:
			return squirrel.Eq{field.column: f.Value}, true
		}
	}
	return nil, false
}

func compare(column string, op domain.FilterOperator, raw string, parse func(string) (any, bool)) (squirrel.Sqlizer, bool) {
	if op == domain.OpBetween {
		lo, hi, found := strings.Cut(raw, ",")
		if !found {
			return nil, false
		}
		from, ok := parse(lo)
		if !ok {
			return nil, false
		}
		to, ok := parse(hi)
		if !ok {
			return nil, false
		}
		return squirrel.And{
			squirrel.GtOrEq{column: from},
			squirrel.LtOrEq{column: to},
		}, true
	}

	v, ok := parse(raw)
	if !ok {
		return nil, false
	}

	switch op {
	case domain.OpEq:
		return squirrel.Eq{column: v}, true
	case domain.OpLt:
		return squirrel.Lt{column: v}, true
	case domain.OpGt:
		return squirrel.Gt{column: v}, true
	case domain.OpLte:
		return squirrel.LtOrEq{column: v}, true
	case domain.OpGte:
		return squirrel.GtOrEq{column: v}, true
	}
	return nil, false
}

func parseDecimal(s string) (any, bool) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return nil, false
	}
	return d, true
}

func parseInt(s string) (any, bool) {
	i, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return nil, false
	}
	return i, true
}

func parseDate(s string) (any, bool) {
	t, err := domain.ParseDate(s)
	if err != nil {
		return nil, false
	}
	return t.Format(time.DateOnly), true
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// orderBy resolves a public sort column against an allow-list, falling back
// to the default ordering for anything unknown.
func orderBy(columns map[string]string, sortColumn string, dir domain.SortDirection, fallback string) string {
	col, ok := columns[sortColumn]
	if !ok {
		return fallback
	}
	if dir != domain.SortAsc {
		dir = domain.SortDesc
	}
	return col + " " + string(dir)
}
