// internal/handlers/dto.go
package handlers

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ammerola/backoffice-be/internal/core/domain"
)

// CreateProductRequest represents the request body for creating a product
type CreateProductRequest struct {
	SKU            string          `json:"sku"`
	Name           string          `json:"name"`
	Description    string          `json:"description,omitempty"`
	Stock          int             `json:"stock"`
	StockMin       int             `json:"stock_min"`
	Cost           decimal.Decimal `json:"cost"`
	Price          decimal.Decimal `json:"price"`
	HasExpiration  bool            `json:"has_expiration"`
	ExpirationDate string          `json:"expiration_date,omitempty"`
	Status         string          `json:"status,omitempty"`
}

// ToDomain converts the request to a product. Field validation is left to
// the product itself.
func (r *CreateProductRequest) ToDomain() (*domain.Product, error) {
	p := &domain.Product{
		SKU:           strings.TrimSpace(r.SKU),
		Name:          strings.TrimSpace(r.Name),
		Description:   r.Description,
		Stock:         r.Stock,
		StockMin:      r.StockMin,
		Cost:          r.Cost,
		Price:         r.Price,
		HasExpiration: r.HasExpiration,
	}

	if r.Status != "" {
		status, ok := domain.ParseProductStatus(r.Status)
		if !ok {
			return nil, fmt.Errorf("unknown status %q", r.Status)
		}
		p.Status = status
	}

	if r.HasExpiration && r.ExpirationDate != "" {
		d, err := domain.ParseDate(r.ExpirationDate)
		if err != nil {
			return nil, fmt.Errorf("expiration_date must be YYYY-MM-DD")
		}
		p.ExpirationDate = &d
	}

	return p, nil
}

// JobAccepted is the 202 body for work handed to the background workers
type JobAccepted struct {
	JobID   string `json:"job_id"`
	Status  string `json:"status"`
	FileKey string `json:"file_key,omitempty"`
	Message string `json:"message"`
}
