package handlers

import (
	"net/http"

	"surfapp/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// SessionHandler serves surf sessions, their media and storage usage
type SessionHandler struct {
	clients *ClientFactory
	uploads *services.UploadService
}

// NewSessionHandler creates a new session handler. A nil upload service
// makes presign requests answer NOT_IMPLEMENTED.
func NewSessionHandler(clients *ClientFactory, uploads *services.UploadService) *SessionHandler {
	return &SessionHandler{clients: clients, uploads: uploads}
}

// ListMine handles GET /api/surfers/sessions
func (h *SessionHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	client, _, err := h.clients.ForRequest(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	list, err := client.ListMySessions(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, nonNil(list))
}

// Get handles GET /api/sessions/{id}
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	client, _, err := h.clients.ForRequest(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	session, err := client.GetSession(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, session)
}

// Media handles GET /api/sessions/{id}/media
func (h *SessionHandler) Media(w http.ResponseWriter, r *http.Request) {
	client, _, err := h.clients.ForRequest(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	media, err := client.GetSessionMedia(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, nonNil(media))
}

// Logs handles GET /api/sessions/{id}/logs
func (h *SessionHandler) Logs(w http.ResponseWriter, r *http.Request) {
	client, _, err := h.clients.ForRequest(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	logs, err := client.GetSessionLogs(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, nonNil(logs))
}

type presignRequest struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
}

// Presign handles POST /api/sessions/{id}/media/presign
func (h *SessionHandler) Presign(w http.ResponseWriter, r *http.Request) {
	_, user, err := h.clients.ForRequest(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	var req presignRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if req.ContentType == "" {
		req.ContentType = "image/jpeg"
	}

	sessionID := chi.URLParam(r, "id")
	upload, err := h.uploads.Presign(r.Context(), *user, sessionID, req.Filename, req.ContentType)
	if err != nil {
		respondError(w, r, err)
		return
	}

	log.Info().
		Str("user_id", user.ID).
		Str("session_id", sessionID).
		Str("media_id", upload.MediaID).
		Str("filename", req.Filename).
		Msg("Pre-signed URL generated")
	respondJSON(w, http.StatusOK, upload)
}

// StorageUsage handles GET /api/me/storage-usage
func (h *SessionHandler) StorageUsage(w http.ResponseWriter, r *http.Request) {
	client, _, err := h.clients.ForRequest(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	usage, err := client.GetStorageUsage(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, usage)
}
