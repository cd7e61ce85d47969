package handlers

import (
	"net/http"
	"net/url"
	"strconv"

	"surfapp/internal/apiclient"
	"surfapp/internal/models"

	"github.com/go-chi/chi/v5"
)

// PhotographerHandler serves the photographer directory
type PhotographerHandler struct {
	clients *ClientFactory
}

// NewPhotographerHandler creates a new photographer handler
func NewPhotographerHandler(clients *ClientFactory) *PhotographerHandler {
	return &PhotographerHandler{clients: clients}
}

// List handles GET /api/photographers
func (h *PhotographerHandler) List(w http.ResponseWriter, r *http.Request) {
	filters, err := parseFilters(r.URL.Query())
	if err != nil {
		respondError(w, r, err)
		return
	}

	list, err := h.clients.Anonymous().ListPhotographers(r.Context(), filters)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, nonNil(list))
}

// Get handles GET /api/photographers/{id}
func (h *PhotographerHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.clients.Anonymous().GetPhotographer(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func parseFilters(q url.Values) (models.PhotographerFilters, error) {
	var f models.PhotographerFilters
	if v := q.Get("spot"); v != "" {
		f.Spot = &v
	}
	if v := q.Get("min_rating"); v != "" {
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return f, badQuery("min_rating", v)
		}
		f.MinRating = &n
	}
	if v := q.Get("max_price"); v != "" {
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return f, badQuery("max_price", v)
		}
		f.MaxPrice = &n
	}
	if v := q.Get("available_only"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return f, badQuery("available_only", v)
		}
		f.AvailableOnly = &b
	}
	return f, nil
}

func badQuery(name, value string) error {
	return &apiclient.Error{
		Code:    apiclient.CodeValidation,
		Message: "invalid " + name + ": " + value,
		Status:  http.StatusBadRequest,
		Details: map[string]any{"fields": map[string]string{name: "invalid value"}},
	}
}
