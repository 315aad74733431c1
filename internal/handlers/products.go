// internal/handlers/products.go
package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/ammerola/backoffice-be/internal/core/domain"
	"github.com/ammerola/backoffice-be/internal/core/ports"
)

// ProductHandler serves the product catalogue
type ProductHandler struct {
	responder
	service ports.ProductService
}

// NewProductHandler creates a new product handler
func NewProductHandler(service ports.ProductService, l *slog.Logger) *ProductHandler {
	return &ProductHandler{
		responder: responder{logger: l.With(slog.String("handler", "product"))},
		service:   service,
	}
}

// ListProducts handles GET /api/v1/products
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Find(r.Context(), parseListQuery(r))
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to list products")
		return
	}

	h.respondJSON(w, http.StatusOK, result)
}

// SearchProducts handles GET /api/v1/products/search?q=
func (h *ProductHandler) SearchProducts(w http.ResponseWriter, r *http.Request) {
	term := strings.TrimSpace(r.URL.Query().Get("q"))
	if term == "" {
		h.respondError(w, http.StatusBadRequest, "q is required")
		return
	}

	var page *domain.Page
	if limit, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && limit > 0 {
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		page = &domain.Page{Limit: min(limit, 100), Offset: max(offset, 0)}
	}

	products, err := h.service.Search(r.Context(), term, page)
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to search products")
		return
	}

	h.respondJSON(w, http.StatusOK, products)
}

// ExpiringProducts handles GET /api/v1/products/expiring
func (h *ProductHandler) ExpiringProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.FindExpiringSoon(r.Context())
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to find expiring products")
		return
	}

	h.respondJSON(w, http.StatusOK, products)
}

// GetProduct handles GET /api/v1/products/{id}
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "product")
	if !ok {
		return
	}

	product, err := h.service.FindOne(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to retrieve product")
		return
	}

	h.respondJSON(w, http.StatusOK, product)
}

// CreateProduct handles POST /api/v1/products
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	product, err := req.ToDomain()
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.service.Create(r.Context(), product)
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to create product")
		return
	}

	h.respondJSON(w, http.StatusCreated, created)
}

// UpdateProduct handles PUT /api/v1/products/{id}. Stock is not part of the
// accepted fields.
func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "product")
	if !ok {
		return
	}

	var changes domain.ProductChanges
	if !h.decodeJSON(w, r, &changes) {
		return
	}

	product, err := h.service.Update(r.Context(), id, changes)
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to update product")
		return
	}

	h.respondJSON(w, http.StatusOK, product)
}

// DeleteProduct handles DELETE /api/v1/products/{id}
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "product")
	if !ok {
		return
	}

	result, err := h.service.Delete(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to delete product")
		return
	}

	h.respondJSON(w, http.StatusOK, result)
}
