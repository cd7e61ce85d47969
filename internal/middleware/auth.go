package middleware

import (
	"context"
	"net/http"
	"strings"

	"surfapp/internal/apiclient"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
)

type contextKey string

const (
	userIDKey contextKey = "user_id"
	tokenKey  contextKey = "token"
)

// TokenValidator resolves an access token to a user ID.
type TokenValidator interface {
	ValidateJWT(token string) (string, error)
}

// AuthMiddleware creates a middleware for JWT authentication
func AuthMiddleware(tokens TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				respondError(w, apiclient.Newf(apiclient.CodeNotAuthenticated, "authorization header required"))
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
				respondError(w, apiclient.Newf(apiclient.CodeNotAuthenticated, "invalid authorization header format"))
				return
			}

			token := parts[1]
			userID, err := tokens.ValidateJWT(token)
			if err != nil {
				respondError(w, apiclient.Newf(apiclient.CodeNotAuthenticated, "invalid token"))
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			ctx = context.WithValue(ctx, tokenKey, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserID extracts user ID from context
func GetUserID(ctx context.Context) string {
	userID, ok := ctx.Value(userIDKey).(string)
	if !ok {
		return ""
	}
	return userID
}

// GetToken returns the bearer token the request was authenticated with.
func GetToken(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey).(string)
	return token
}

// respondError sends an error response
func respondError(w http.ResponseWriter, apiErr *apiclient.Error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apiclient.HTTPStatus(apiErr.Code))
	if err := json.NewEncoder(w).Encode(map[string]any{
		"message": apiErr.Message,
		"code":    apiErr.Code,
	}); err != nil {
		log.Error().Err(err).Msg("Failed to encode error response")
	}
}
