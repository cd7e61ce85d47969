package repository

import (
	"context"
	"fmt"

	"surfapp/internal/backend"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres bundles the repositories into a backend.Backend
type Postgres struct {
	*UserRepository
	*PhotographerRepository
	*BookingRepository
	*SessionRepository
	*MediaRepository
}

var _ backend.Backend = (*Postgres)(nil)

// NewPostgres creates all repositories over one pool
func NewPostgres(db *pgxpool.Pool) *Postgres {
	return &Postgres{
		UserRepository:         NewUserRepository(db),
		PhotographerRepository: NewPhotographerRepository(db),
		BookingRepository:      NewBookingRepository(db),
		SessionRepository:      NewSessionRepository(db),
		MediaRepository:        NewMediaRepository(db),
	}
}

// Open connects to url and pings the server. When the URL carries no
// password the public anon key is used as the role's password.
func Open(ctx context.Context, url, anonKey string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database url: %w", err)
	}
	if cfg.ConnConfig.Password == "" && anonKey != "" {
		cfg.ConnConfig.Password = anonKey
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return pool, nil
}
