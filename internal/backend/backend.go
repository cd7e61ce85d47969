// Package backend declares the row-level data access port the direct
// transport runs against. Adapters live in internal/repository (Postgres)
// and internal/memory.
package backend

import (
	"context"
	"errors"
	"time"

	"surfapp/internal/models"
)

var (
	// ErrNotFound is returned when a lookup by id or email matches no row.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when an insert violates a unique constraint.
	ErrDuplicate = errors.New("duplicate record")
	// ErrStale is returned by conditional updates whose precondition no
	// longer holds.
	ErrStale = errors.New("record changed concurrently")
)

// UserRecord is a user row including its password hash.
type UserRecord struct {
	models.User
	PasswordHash string
}

// PhotographerQuery holds the filters pushed down to the store. The spot
// filter is not part of it; callers match spots themselves.
type PhotographerQuery struct {
	MinRating     *float64
	MaxPrice      *float64
	AvailableOnly bool
}

// Participant selects rows where the user takes part in the given role.
type Participant struct {
	UserID string
	Role   models.Role
}

// Backend is the persistence contract. Implementations return ErrNotFound,
// ErrDuplicate and ErrStale for the conditions they describe and wrap every
// other failure.
type Backend interface {
	// FindUserByEmail matches emails case-insensitively.
	FindUserByEmail(ctx context.Context, email string) (*UserRecord, error)
	GetUser(ctx context.Context, id string) (*models.User, error)
	InsertUser(ctx context.Context, u *UserRecord) error

	// ListPhotographers returns profiles joined with their users, ordered by
	// rating descending.
	ListPhotographers(ctx context.Context, q PhotographerQuery) ([]models.Photographer, error)
	GetPhotographer(ctx context.Context, id string) (*models.Photographer, error)

	// InsertBooking stores b and returns it with the photographer's name and
	// avatar filled in.
	InsertBooking(ctx context.Context, b *models.Booking) (*models.Booking, error)
	// ListBookings returns the participant's bookings, newest date first.
	ListBookings(ctx context.Context, p Participant) ([]models.Booking, error)
	GetBooking(ctx context.Context, id string) (*models.Booking, error)
	// UpdateBookingStatus moves a booking from one status to another and
	// returns ErrStale if it is no longer in status from.
	UpdateBookingStatus(ctx context.Context, id string, from, to models.BookingStatus, at time.Time) (*models.Booking, error)

	InsertSession(ctx context.Context, s *models.Session) error
	// ListSessions returns the participant's sessions, newest date first,
	// each with its media count.
	ListSessions(ctx context.Context, p Participant) ([]models.Session, error)
	GetSession(ctx context.Context, id string) (*models.Session, error)

	InsertMedia(ctx context.Context, m *models.Media) error
	// ListMedia returns a session's media, most recent upload first.
	ListMedia(ctx context.Context, sessionID string) ([]models.Media, error)
	// ListLogs returns a session's log lines with the author's name, most
	// recent first.
	ListLogs(ctx context.Context, sessionID string) ([]models.LogEntry, error)
	// SumMediaBytes totals the size of all media in the participant's
	// sessions.
	SumMediaBytes(ctx context.Context, p Participant) (int64, error)
}
