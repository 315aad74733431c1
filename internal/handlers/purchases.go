// internal/handlers/purchases.go
package handlers

import (
	"log/slog"
	"net/http"

	"github.com/ammerola/backoffice-be/internal/core/domain"
	"github.com/ammerola/backoffice-be/internal/core/ports"
	"github.com/ammerola/backoffice-be/internal/pkg/logger"
)

// PurchaseHandler handles purchase-related HTTP requests
type PurchaseHandler struct {
	responder
	service ports.PurchaseService
}

// NewPurchaseHandler creates a new purchase handler
func NewPurchaseHandler(service ports.PurchaseService, l *slog.Logger) *PurchaseHandler {
	return &PurchaseHandler{
		responder: responder{logger: l.With(slog.String("handler", "purchase"))},
		service:   service,
	}
}

// ListPurchases handles GET /api/v1/purchases
func (h *PurchaseHandler) ListPurchases(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Find(r.Context(), parseListQuery(r))
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to list purchases")
		return
	}

	h.respondJSON(w, http.StatusOK, result)
}

// GetPurchase handles GET /api/v1/purchases/{id}
func (h *PurchaseHandler) GetPurchase(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "purchase")
	if !ok {
		return
	}

	purchase, err := h.service.FindOne(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to retrieve purchase")
		return
	}

	h.respondJSON(w, http.StatusOK, purchase)
}

// CreatePurchase handles POST /api/v1/purchases. The employee is resolved
// from the acting user, never taken from the body.
func (h *PurchaseHandler) CreatePurchase(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID := logger.UserID(ctx)
	if userID == "" {
		h.respondError(w, http.StatusUnauthorized, "Acting user is required")
		return
	}

	var input domain.PurchaseInput
	if !h.decodeJSON(w, r, &input) {
		return
	}

	purchase, err := h.service.Create(ctx, input, userID)
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to create purchase")
		return
	}

	h.respondJSON(w, http.StatusCreated, purchase)
}

// UpdatePurchase handles PUT /api/v1/purchases/{id}
func (h *PurchaseHandler) UpdatePurchase(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "purchase")
	if !ok {
		return
	}

	var changes domain.PurchaseChanges
	if !h.decodeJSON(w, r, &changes) {
		return
	}

	purchase, err := h.service.Update(r.Context(), id, changes)
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to update purchase")
		return
	}

	h.respondJSON(w, http.StatusOK, purchase)
}

// DeletePurchase handles DELETE /api/v1/purchases/{id}
func (h *PurchaseHandler) DeletePurchase(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "purchase")
	if !ok {
		return
	}

	result, err := h.service.Delete(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to delete purchase")
		return
	}

	h.respondJSON(w, http.StatusOK, result)
}
