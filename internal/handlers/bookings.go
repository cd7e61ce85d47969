package handlers

import (
	"net/http"

	"surfapp/internal/models"

	"github.com/go-chi/chi/v5"
)

// BookingHandler handles booking requests
type BookingHandler struct {
	clients *ClientFactory
}

// NewBookingHandler creates a new booking handler
func NewBookingHandler(clients *ClientFactory) *BookingHandler {
	return &BookingHandler{clients: clients}
}

// Create handles POST /api/bookings
func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	client, _, err := h.clients.ForRequest(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	var req models.CreateBookingRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	booking, err := client.CreateBooking(r.Context(), req)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, booking)
}

// ListMine handles GET /api/bookings/me
func (h *BookingHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	client, _, err := h.clients.ForRequest(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	list, err := client.ListMyBookings(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, nonNil(list))
}

// Get handles GET /api/bookings/{id}
func (h *BookingHandler) Get(w http.ResponseWriter, r *http.Request) {
	client, _, err := h.clients.ForRequest(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	booking, err := client.GetBooking(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, booking)
}

type statusUpdate struct {
	Status models.BookingStatus `json:"status"`
}

// UpdateStatus handles PATCH /api/bookings/{id}
func (h *BookingHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	client, _, err := h.clients.ForRequest(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	var req statusUpdate
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	booking, err := client.UpdateBookingStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, booking)
}
