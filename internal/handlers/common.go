package handlers

import (
	"context"
	"errors"
	"net/http"

	"surfapp/internal/apiclient"
	"surfapp/internal/backend"
	"surfapp/internal/directclient"
	"surfapp/internal/metrics"
	"surfapp/internal/middleware"
	"surfapp/internal/models"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// ErrorResponse represents an error response
type ErrorResponse struct {
	Message string         `json:"message"`
	Code    apiclient.Code `json:"code"`
	Details map[string]any `json:"details,omitempty"`
}

// ClientFactory builds the direct client that serves one request.
type ClientFactory struct {
	Backend    backend.Backend
	Issuer     directclient.TokenIssuer
	Metrics    *metrics.Metrics
	BcryptCost int
}

func (f *ClientFactory) options() []directclient.Option {
	opts := []directclient.Option{directclient.WithMetrics(f.Metrics)}
	if f.Issuer != nil {
		opts = append(opts, directclient.WithTokenIssuer(f.Issuer))
	}
	if f.BcryptCost > 0 {
		opts = append(opts, directclient.WithBcryptCost(f.BcryptCost))
	}
	return opts
}

// Anonymous returns a client with no session.
func (f *ClientFactory) Anonymous() *directclient.Client {
	return directclient.New(f.Backend, f.options()...)
}

// ForRequest returns a client signed in as the user the auth middleware
// resolved for r.
func (f *ClientFactory) ForRequest(r *http.Request) (*directclient.Client, *models.User, error) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return nil, nil, apiclient.Newf(apiclient.CodeNotAuthenticated, "not authenticated")
	}

	user, err := f.Backend.GetUser(ctx, userID)
	if errors.Is(err, backend.ErrNotFound) {
		return nil, nil, apiclient.Newf(apiclient.CodeNotAuthenticated, "user no longer exists")
	}
	if err != nil {
		return nil, nil, apiclient.Wrap(apiclient.CodeDatabase, "database error", err)
	}

	client := directclient.New(f.Backend, f.options()...)
	client.SetSession(middleware.GetToken(ctx), user)
	return client, user, nil
}

// respondJSON sends v with the given status
func respondJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

// respondError sends an error response
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	apiErr := classify(err)
	status := apiclient.HTTPStatus(apiErr.Code)
	if apiErr.Status != 0 {
		status = apiErr.Status
	}
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("Request failed")
	}
	respondJSON(w, status, ErrorResponse{
		Message: apiErr.Message,
		Code:    apiErr.Code,
		Details: apiErr.Details,
	})
}

func classify(err error) *apiclient.Error {
	var apiErr *apiclient.Error
	switch {
	case errors.As(err, &apiErr):
		return apiErr
	case errors.Is(err, backend.ErrNotFound):
		return apiclient.Newf(apiclient.CodeNotFound, "not found")
	case errors.Is(err, context.DeadlineExceeded):
		return apiclient.Newf(apiclient.CodeTimeout, "request timeout")
	default:
		return apiclient.Newf(apiclient.CodeUnknown, "internal server error")
	}
}

// decodeJSON reads a JSON body into v. A malformed body is a validation error.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return &apiclient.Error{
			Code:    apiclient.CodeValidation,
			Message: "invalid request body",
			Status:  http.StatusBadRequest,
			Err:     err,
		}
	}
	return nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
