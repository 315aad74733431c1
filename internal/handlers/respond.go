// internal/handlers/respond.go
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/ammerola/backoffice-be/internal/core/domain"
)

const maxJSONBody = 1 << 20

// responder holds the JSON helpers every handler shares
type responder struct {
	logger *slog.Logger
}

func (h responder) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode JSON response",
			slog.String("error", err.Error()))
	}
}

func (h responder) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}

// respondServiceError maps domain errors onto status codes. Unexpected errors
// are logged and hidden behind fallback.
func (h responder) respondServiceError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		h.respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrInvalidInput):
		h.respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrContention), errors.Is(err, domain.ErrStockUnderflow):
		h.respondError(w, http.StatusConflict, err.Error())
	default:
		h.logger.ErrorContext(r.Context(), fallback, slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, fallback)
	}
}

func (h responder) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody))
	if err := dec.Decode(dst); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

func (h responder) pathID(w http.ResponseWriter, r *http.Request, what string) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid "+what+" ID format")
		return uuid.Nil, false
	}
	return id, true
}

// parseListQuery reads the generic find parameters. The page is only set
// when both limit and offset are valid; a filter needs all three of field,
// type and value.
func parseListQuery(r *http.Request) domain.ListQuery {
	q := r.URL.Query()

	query := domain.ListQuery{
		Search:        q.Get("search"),
		SortColumn:    q.Get("sortColumn"),
		SortDirection: domain.ParseSortDirection(q.Get("sortDirection")),
	}

	limit, errL := strconv.Atoi(q.Get("limit"))
	offset, errO := strconv.Atoi(q.Get("offset"))
	if errL == nil && errO == nil && limit > 0 && offset >= 0 {
		if limit > 100 {
			limit = 100
		}
		query.Page = &domain.Page{Limit: limit, Offset: offset}
	}

	field, op, value := q.Get("filterField"), q.Get("filterType"), q.Get("filterValue")
	if field != "" && op != "" && value != "" {
		query.Filter = &domain.Filter{Field: field, Operator: domain.FilterOperator(op), Value: value}
	}

	return query
}
