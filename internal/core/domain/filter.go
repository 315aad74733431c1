// internal/core/domain/filter.go
package domain

import "strings"

// FilterOperator is the closed set of comparisons a list filter may use
type FilterOperator string

const (
	OpEq      FilterOperator = "eq"
	OpLt      FilterOperator = "lt"
	OpGt      FilterOperator = "gt"
	OpLte     FilterOperator = "lte"
	OpGte     FilterOperator = "gte"
	OpBetween FilterOperator = "between"
	OpLike    FilterOperator = "like"
)

// ParseFilterOperator returns false for anything outside the closed set
func ParseFilterOperator(s string) (FilterOperator, bool) {
	op := FilterOperator(strings.ToLower(strings.TrimSpace(s)))
	switch op {
	case OpEq, OpLt, OpGt, OpLte, OpGte, OpBetween, OpLike:
		return op, true
	default:
		return "", false
	}
}

// Filter is one {field, operator, value} request from a listing endpoint.
// Between values are two comma separated bounds.
type Filter struct {
	Field    string         `json:"field"`
	Operator FilterOperator `json:"operator"`
	Value    string         `json:"value"`
}

// Page is an explicit limit/offset window
type Page struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// SortDirection is ASC or DESC
type SortDirection string

const (
	SortAsc  SortDirection = "ASC"
	SortDesc SortDirection = "DESC"
)

// ParseSortDirection defaults to DESC
func ParseSortDirection(s string) SortDirection {
	if strings.EqualFold(strings.TrimSpace(s), "asc") {
		return SortAsc
	}
	return SortDesc
}

// ListQuery is the generic find request shared by purchases and products.
// Page is nil when the caller did not give both limit and offset, in which
// case every matching row is returned.
type ListQuery struct {
	Search        string        `json:"search,omitempty"`
	SortColumn    string        `json:"sort_column,omitempty"`
	SortDirection SortDirection `json:"sort_direction,omitempty"`
	Filter        *Filter       `json:"filter,omitempty"`
	Page          *Page         `json:"page,omitempty"`
}

// PurchaseList is the find result for purchases
type PurchaseList struct {
	Purchases []*Purchase `json:"purchases"`
	Total     int64       `json:"total"`
}

// ProductList is the find result for products
type ProductList struct {
	Products []*Product `json:"products"`
	Total    int64      `json:"total"`
}
