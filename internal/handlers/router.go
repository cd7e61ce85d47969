package handlers

import (
	"net/http"
	"time"

	"surfapp/internal/backend"
	"surfapp/internal/metrics"
	"surfapp/internal/middleware"
	"surfapp/internal/services"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// RouterDeps holds everything the router wires together.
type RouterDeps struct {
	Backend    backend.Backend
	Tokens     *services.TokenService
	Uploads    *services.UploadService
	Metrics    *metrics.Metrics
	BcryptCost int

	CORSOrigins    []string
	AuthRateLimit  int
	AuthRateWindow time.Duration
}

// NewRouter builds the REST API served under /api.
func NewRouter(deps RouterDeps) http.Handler {
	clients := &ClientFactory{
		Backend:    deps.Backend,
		Issuer:     deps.Tokens.Issue,
		Metrics:    deps.Metrics,
		BcryptCost: deps.BcryptCost,
	}

	authHandler := NewAuthHandler(clients)
	photographerHandler := NewPhotographerHandler(clients)
	bookingHandler := NewBookingHandler(clients)
	sessionHandler := NewSessionHandler(clients, deps.Uploads)

	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(middleware.RequestLogger(deps.Metrics))
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.CORS(deps.CORSOrigins))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if deps.Metrics != nil {
		r.Handle("/metrics", deps.Metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		// Public routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimit(deps.AuthRateLimit, deps.AuthRateWindow))
			r.Post("/auth/login", authHandler.Login)
			r.Post("/auth/register", authHandler.Register)
		})
		r.Get("/photographers", photographerHandler.List)
		r.Get("/photographers/{id}", photographerHandler.Get)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(deps.Tokens))

			r.Get("/auth/me", authHandler.Me)
			r.Post("/auth/logout", authHandler.Logout)

			r.Post("/bookings", bookingHandler.Create)
			r.Get("/bookings/me", bookingHandler.ListMine)
			r.Get("/bookings/{id}", bookingHandler.Get)
			r.Patch("/bookings/{id}", bookingHandler.UpdateStatus)

			r.Get("/surfers/sessions", sessionHandler.ListMine)
			r.Get("/sessions/{id}", sessionHandler.Get)
			r.Get("/sessions/{id}/media", sessionHandler.Media)
			r.Get("/sessions/{id}/logs", sessionHandler.Logs)
			r.Post("/sessions/{id}/media/presign", sessionHandler.Presign)

			r.Get("/me/storage-usage", sessionHandler.StorageUsage)
		})
	})

	return r
}
