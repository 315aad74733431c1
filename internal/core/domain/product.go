// internal/core/domain/product.go
package domain

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductStatus is the catalogue status of a product
type ProductStatus string

const (
	ProductActive   ProductStatus = "active"
	ProductInactive ProductStatus = "inactive"
)

// ParseProductStatus accepts the English names plus the legacy Spanish labels
func ParseProductStatus(s string) (ProductStatus, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "active", "activo":
		return ProductActive, true
	case "inactive", "inactivo":
		return ProductInactive, true
	default:
		return "", false
	}
}

// Product is a catalogue entry. Stock is only mutated through the stock ledger.
type Product struct {
	ID             uuid.UUID       `json:"id"`
	SKU            string          `json:"sku"`
	Name           string          `json:"name"`
	Description    string          `json:"description,omitempty"`
	Stock          int             `json:"stock"`
	InitialStock   int             `json:"initial_stock"`
	StockMin       int             `json:"stock_min"`
	Cost           decimal.Decimal `json:"cost"`
	Price          decimal.Decimal `json:"price"`
	HasExpiration  bool            `json:"has_expiration"`
	ExpirationDate *time.Time      `json:"expiration_date,omitempty"`
	Status         ProductStatus   `json:"status"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// Validate performs domain validation on the product
func (p *Product) Validate() error {
	if strings.TrimSpace(p.SKU) == "" {
		return InvalidInputf("sku is required")
	}
	if strings.TrimSpace(p.Name) == "" {
		return InvalidInputf("name is required")
	}
	if p.Stock < 0 || p.Stock > math.MaxInt32 {
		return InvalidInputf("stock must be between 0 and %d", math.MaxInt32)
	}
	if p.StockMin < 0 || p.StockMin > math.MaxInt32 {
		return InvalidInputf("stock_min must be between 0 and %d", math.MaxInt32)
	}
	if p.Cost.IsNegative() || !IsMoney(p.Cost) {
		return InvalidInputf("cost must be a non-negative amount with at most %d decimals", MoneyPlaces)
	}
	if p.Price.IsNegative() || !IsMoney(p.Price) {
		return InvalidInputf("price must be a non-negative amount with at most %d decimals", MoneyPlaces)
	}
	if p.Status == "" {
		p.Status = ProductActive
	}
	if p.Status != ProductActive && p.Status != ProductInactive {
		return InvalidInputf("unknown status %q", p.Status)
	}
	return nil
}

// NormalizeExpiration keeps the expiration date only for perishable products
func (p *Product) NormalizeExpiration() {
	if !p.HasExpiration {
		p.ExpirationDate = nil
	}
}

// PrepareForStorage fills identity, timestamps and the initial stock baseline
func (p *Product) PrepareForStorage() {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.NormalizeExpiration()
	p.InitialStock = p.Stock

	now := time.Now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
}

// BelowMinimum reports whether stock has dropped under the reorder point
func (p *Product) BelowMinimum() bool {
	return p.Stock < p.StockMin
}

// ProductChanges carries the editable catalogue fields. Stock is not editable.
type ProductChanges struct {
	SKU            *string          `json:"sku,omitempty"`
	Name           *string          `json:"name,omitempty"`
	Description    *string          `json:"description,omitempty"`
	StockMin       *int             `json:"stock_min,omitempty"`
	Cost           *decimal.Decimal `json:"cost,omitempty"`
	Price          *decimal.Decimal `json:"price,omitempty"`
	HasExpiration  bool             `json:"has_expiration"`
	ExpirationDate string           `json:"expiration_date,omitempty"`
	Status         *ProductStatus   `json:"status,omitempty"`
}

// ApplyTo merges the changes into p. The expiration date is cleared unless
// HasExpiration is set with a parsable date.
func (c *ProductChanges) ApplyTo(p *Product) error {
	if c.SKU != nil {
		p.SKU = *c.SKU
	}
	if c.Name != nil {
		p.Name = *c.Name
	}
	if c.Description != nil {
		p.Description = *c.Description
	}
	if c.StockMin != nil {
		p.StockMin = *c.StockMin
	}
	if c.Cost != nil {
		p.Cost = *c.Cost
	}
	if c.Price != nil {
		p.Price = *c.Price
	}
	if c.Status != nil {
		p.Status = *c.Status
	}

	p.HasExpiration = c.HasExpiration
	p.ExpirationDate = nil
	if c.HasExpiration && c.ExpirationDate != "" {
		d, err := ParseDate(c.ExpirationDate)
		if err != nil {
			return InvalidInputf("expiration_date: %v", err)
		}
		p.ExpirationDate = &d
	}

	return p.Validate()
}

// ParseDate accepts a plain date or an RFC 3339 timestamp
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
