package handlers

import (
	"net/http"

	"surfapp/internal/models"

	"github.com/rs/zerolog/log"
)

// AuthHandler handles login, registration and the current user
type AuthHandler struct {
	clients *ClientFactory
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(clients *ClientFactory) *AuthHandler {
	return &AuthHandler{clients: clients}
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	resp, err := h.clients.Anonymous().Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondError(w, r, err)
		return
	}

	log.Info().Str("user_id", resp.User.ID).Msg("User logged in")
	respondJSON(w, http.StatusOK, resp)
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	resp, err := h.clients.Anonymous().Register(r.Context(), req)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, resp)
}

// Me handles GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	_, user, err := h.clients.ForRequest(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// Logout handles POST /api/auth/logout. Tokens are stateless, so there is
// nothing to revoke.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}
