// internal/core/domain/purchase.go
package domain

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SupplierRef is the read-side view of a purchase's supplier
type SupplierRef struct {
	Name string `json:"name"`
	RUC  string `json:"ruc"`
}

// EmployeeRef is the read-side view of the employee who recorded a purchase
type EmployeeRef struct {
	Fullname string `json:"fullname"`
	DNI      string `json:"dni"`
}

// Purchase is a purchase header plus its line items
type Purchase struct {
	ID         uuid.UUID       `json:"id"`
	Number     string          `json:"number"`
	SupplierID uuid.UUID       `json:"supplier_id"`
	EmployeeID uuid.UUID       `json:"employee_id"`
	Total      decimal.Decimal `json:"total"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
	Items      []PurchaseItem  `json:"items"`
	Supplier   *SupplierRef    `json:"supplier,omitempty"`
	Employee   *EmployeeRef    `json:"employee,omitempty"`
}

// PurchaseItem is one (product, quantity, unit cost) line of a purchase.
// UnitCost is what was paid at purchase time, not the product's current cost.
type PurchaseItem struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
}

// Subtotal returns quantity times unit cost
func (i PurchaseItem) Subtotal() decimal.Decimal {
	return i.UnitCost.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// PurchaseInput is the payload for recording a new purchase
type PurchaseInput struct {
	Number     string           `json:"number"`
	SupplierID uuid.UUID        `json:"supplier_id"`
	Total      *decimal.Decimal `json:"total,omitempty"`
	Items      []PurchaseItem   `json:"items"`
}

// PurchaseChanges is the payload for updating a purchase. Items fully
// replace the previous set; a nil or empty slice leaves the purchase empty.
type PurchaseChanges struct {
	Number     *string          `json:"number,omitempty"`
	SupplierID *uuid.UUID       `json:"supplier_id,omitempty"`
	Total      *decimal.Decimal `json:"total,omitempty"`
	Items      []PurchaseItem   `json:"items"`
}

// PurchaseHeader is the persisted header without items
type PurchaseHeader struct {
	ID         uuid.UUID
	Number     string
	SupplierID uuid.UUID
	EmployeeID uuid.UUID
	Total      decimal.Decimal
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// HeaderChanges are the header fields an update may set
type HeaderChanges struct {
	Number     *string
	SupplierID *uuid.UUID
	Total      *decimal.Decimal
}

// DeleteResult is returned by purchase and product deletion
type DeleteResult struct {
	ID uuid.UUID `json:"id"`
}

// ItemsTotal sums the subtotals of items
func ItemsTotal(items []PurchaseItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Subtotal())
	}
	return total
}

// MoneyPlaces is the scale of every NUMERIC money column
const MoneyPlaces = 2

// IsMoney reports whether d is representable in a money column without rounding
func IsMoney(d decimal.Decimal) bool {
	return d.Equal(d.Round(MoneyPlaces))
}

// ValidateItems checks every line item and rejects a product listed twice,
// since items are keyed by (purchase, product).
func ValidateItems(items []PurchaseItem) error {
	seen := make(map[uuid.UUID]struct{}, len(items))
	for i, it := range items {
		if it.ProductID == uuid.Nil {
			return InvalidInputf("items[%d].product_id is required", i)
		}
		if it.Quantity <= 0 {
			return InvalidInputf("items[%d].quantity must be positive", i)
		}
		if it.Quantity > math.MaxInt32 {
			return InvalidInputf("items[%d].quantity exceeds %d", i, math.MaxInt32)
		}
		if it.UnitCost.IsNegative() {
			return InvalidInputf("items[%d].unit_cost cannot be negative", i)
		}
		if !IsMoney(it.UnitCost) {
			return InvalidInputf("items[%d].unit_cost has more than %d decimal places", i, MoneyPlaces)
		}
		if _, dup := seen[it.ProductID]; dup {
			return InvalidInputf("items[%d].product_id %s listed more than once", i, it.ProductID)
		}
		seen[it.ProductID] = struct{}{}
	}
	return nil
}

// Validate checks a create payload
func (in *PurchaseInput) Validate() error {
	if strings.TrimSpace(in.Number) == "" {
		return InvalidInputf("number is required")
	}
	if in.SupplierID == uuid.Nil {
		return InvalidInputf("supplier_id is required")
	}
	if in.Total != nil && (in.Total.IsNegative() || !IsMoney(*in.Total)) {
		return InvalidInputf("total must be a non-negative amount with at most %d decimals", MoneyPlaces)
	}
	return ValidateItems(in.Items)
}

// ResolvedTotal is the explicit total if given, otherwise the items' sum
func (in *PurchaseInput) ResolvedTotal() decimal.Decimal {
	if in.Total != nil {
		return *in.Total
	}
	return ItemsTotal(in.Items)
}

// Validate checks an update payload
func (c *PurchaseChanges) Validate() error {
	if c.Number != nil && strings.TrimSpace(*c.Number) == "" {
		return InvalidInputf("number cannot be blank")
	}
	if c.SupplierID != nil && *c.SupplierID == uuid.Nil {
		return InvalidInputf("supplier_id cannot be empty")
	}
	if c.Total != nil && (c.Total.IsNegative() || !IsMoney(*c.Total)) {
		return InvalidInputf("total must be a non-negative amount with at most %d decimals", MoneyPlaces)
	}
	return ValidateItems(c.Items)
}

// Header builds the header changes, deriving the total from the new items
// when none is given.
func (c *PurchaseChanges) Header() HeaderChanges {
	total := c.Total
	if total == nil {
		t := ItemsTotal(c.Items)
		total = &t
	}
	return HeaderChanges{Number: c.Number, SupplierID: c.SupplierID, Total: total}
}

// Quantities returns the total quantity per product across items
func Quantities(items []PurchaseItem) map[uuid.UUID]int {
	out := make(map[uuid.UUID]int, len(items))
	for _, it := range items {
		out[it.ProductID] += it.Quantity
	}
	return out
}
