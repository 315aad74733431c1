// internal/core/services/products.go
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ammerola/backoffice-be/internal/core/domain"
	"github.com/ammerola/backoffice-be/internal/core/ports"
)

// ProductService handles the product catalogue. It never changes stock of an
// existing product; purchases do that through the stock ledger.
type ProductService struct {
	repo           ports.ProductRepository
	invalidator    ports.CacheInvalidator
	expiringWindow time.Duration
	now            func() time.Time
	logger         *slog.Logger
}

// Statically assert that *ProductService implements the ProductService interface.
var _ ports.ProductService = (*ProductService)(nil)

// NewProductService creates a new product service. invalidator may be nil.
func NewProductService(repo ports.ProductRepository, invalidator ports.CacheInvalidator, expiringWindowDays int, logger *slog.Logger) *ProductService {
	if expiringWindowDays <= 0 {
		expiringWindowDays = 7
	}
	return &ProductService{
		repo:           repo,
		invalidator:    invalidator,
		expiringWindow: time.Duration(expiringWindowDays) * 24 * time.Hour,
		now:            time.Now,
		logger:         logger.With(slog.String("service", "product")),
	}
}

// Find lists products with optional search, filter, sort and page
func (s *ProductService) Find(ctx context.Context, query domain.ListQuery) (*domain.ProductList, error) {
	products, total, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return &domain.ProductList{Products: products, Total: total}, nil
}

// Search matches products by name or sku
func (s *ProductService) Search(ctx context.Context, term string, page *domain.Page) ([]*domain.Product, error) {
	products, err := s.repo.Search(ctx, term, page)
	if err != nil {
		return nil, fmt.Errorf("failed to search products: %w", err)
	}
	return products, nil
}

// FindExpiringSoon returns perishable products expiring between today and
// the end of the configured window
func (s *ProductService) FindExpiringSoon(ctx context.Context) ([]*domain.Product, error) {
	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	products, err := s.repo.ExpiringBetween(ctx, today, today.Add(s.expiringWindow))
	if err != nil {
		return nil, fmt.Errorf("failed to find expiring products: %w", err)
	}
	return products, nil
}

// FindBelowMinimum returns active products under their reorder point
func (s *ProductService) FindBelowMinimum(ctx context.Context) ([]*domain.Product, error) {
	products, err := s.repo.BelowMinimum(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to find products below minimum: %w", err)
	}
	return products, nil
}

// FindOne returns a product by id
func (s *ProductService) FindOne(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrProductNotFound, id)
	}
	return p, nil
}

// Create adds a product. The stock given here is its initial stock.
func (s *ProductService) Create(ctx context.Context, p *domain.Product) (*domain.Product, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	p.PrepareForStorage()

	if err := s.repo.Save(ctx, p); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "product created",
		slog.String("product_id", p.ID.String()),
		slog.String("sku", p.SKU),
		slog.Int("initial_stock", p.InitialStock))

	return p, nil
}

// Update changes catalogue fields
func (s *ProductService) Update(ctx context.Context, id uuid.UUID, changes domain.ProductChanges) (*domain.Product, error) {
	p, err := s.FindOne(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := changes.ApplyTo(p); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}

	s.invalidateCatalogue(ctx)

	s.logger.InfoContext(ctx, "product updated", slog.String("product_id", id.String()))
	return p, nil
}

// Delete removes a product nothing references
func (s *ProductService) Delete(ctx context.Context, id uuid.UUID) (*domain.DeleteResult, error) {
	if _, err := s.FindOne(ctx, id); err != nil {
		return nil, err
	}

	referenced, err := s.repo.IsReferenced(ctx, id)
	if err != nil {
		return nil, err
	}
	if referenced {
		return nil, domain.InvalidInputf("product %s is referenced by purchases or sales", id)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return nil, err
	}

	s.invalidateCatalogue(ctx)
	return &domain.DeleteResult{ID: id}, nil
}

// ImportProducts creates unknown SKUs and updates the catalogue fields of
// known ones. Stock of a known SKU is left alone.
func (s *ProductService) ImportProducts(ctx context.Context, products []*domain.Product) (created, updated int, err error) {
	for i, p := range products {
		if err := p.Validate(); err != nil {
			return created, updated, fmt.Errorf("row %d: %w", i+1, err)
		}

		existing, err := s.repo.FindBySKU(ctx, p.SKU)
		if err != nil {
			return created, updated, fmt.Errorf("row %d: %w", i+1, err)
		}

		if existing == nil {
			p.PrepareForStorage()
			if err := s.repo.Save(ctx, p); err != nil {
				return created, updated, fmt.Errorf("row %d: %w", i+1, err)
			}
			created++
			continue
		}

		p.ID = existing.ID
		p.CreatedAt = existing.CreatedAt
		p.NormalizeExpiration()
		if err := s.repo.Update(ctx, p); err != nil {
			return created, updated, fmt.Errorf("row %d: %w", i+1, err)
		}
		updated++
	}

	if updated > 0 {
		s.invalidateCatalogue(ctx)
	}

	s.logger.InfoContext(ctx, "products imported",
		slog.Int("created", created),
		slog.Int("updated", updated))

	return created, updated, nil
}

func (s *ProductService) invalidateCatalogue(ctx context.Context) {
	if s.invalidator != nil {
		s.invalidator.InvalidateCatalogueCache(ctx)
	}
}
