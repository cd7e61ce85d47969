package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"surfapp/internal/backend"
	"surfapp/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// BookingRepository handles database operations for bookings
type BookingRepository struct {
	db *pgxpool.Pool
}

// NewBookingRepository creates a new booking repository
func NewBookingRepository(db *pgxpool.Pool) *BookingRepository {
	return &BookingRepository{db: db}
}

const bookingColumns = `
	b.id, b.surfer_id, b.photographer_id, u.name, u.avatar, b.spot,
	to_char(b.date, 'YYYY-MM-DD'), to_char(b.time, 'HH24:MI'), b.duration_hours,
	b.status, b.price, b.currency, b.notes, b.created_at, b.updated_at
`

func scanBooking(row pgx.Row) (*models.Booking, error) {
	var b models.Booking
	err := row.Scan(
		&b.ID, &b.SurferID, &b.PhotographerID, &b.PhotographerName, &b.PhotographerAvatar, &b.Spot,
		&b.Date, &b.Time, &b.DurationHours,
		&b.Status, &b.Price, &b.Currency, &b.Notes, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// InsertBooking creates a booking and returns it joined with the photographer
func (r *BookingRepository) InsertBooking(ctx context.Context, b *models.Booking) (*models.Booking, error) {
	query := `
		WITH b AS (
			INSERT INTO bookings (id, surfer_id, photographer_id, spot, date, time, duration_hours,
				status, price, currency, notes, created_at, updated_at)
			VALUES ($1, $2, $3, $4, to_date($5, 'YYYY-MM-DD'), $6::text::time, $7, $8, $9, $10, $11, $12, $13)
			RETURNING *
		)
		SELECT ` + bookingColumns + `
		FROM b
		JOIN users u ON u.id = b.photographer_id
	`
	out, err := scanBooking(r.db.QueryRow(ctx, query,
		b.ID, b.SurferID, b.PhotographerID, b.Spot, b.Date, b.Time, b.DurationHours,
		string(b.Status), b.Price, b.Currency, b.Notes, b.CreatedAt, b.UpdatedAt,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("failed to create booking: %w", backend.ErrDuplicate)
		}
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}
	return out, nil
}

// ListBookings retrieves the bookings a user takes part in, latest date first
func (r *BookingRepository) ListBookings(ctx context.Context, p backend.Participant) ([]models.Booking, error) {
	query := `SELECT ` + bookingColumns + `
		FROM bookings b
		JOIN users u ON u.id = b.photographer_id
		WHERE ` + participantColumn(p, "b") + ` = $1
		ORDER BY b.date DESC, b.created_at DESC
	`
	rows, err := r.db.Query(ctx, query, p.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer rows.Close()

	bookings := make([]models.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bookings: %w", err)
	}
	return bookings, nil
}

// GetBooking retrieves a booking by ID
func (r *BookingRepository) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + `
		FROM bookings b
		JOIN users u ON u.id = b.photographer_id
		WHERE b.id = $1
	`
	b, err := scanBooking(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("booking not found: %w", backend.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return b, nil
}

// UpdateBookingStatus moves a booking from one status to another
func (r *BookingRepository) UpdateBookingStatus(ctx context.Context, id string, from, to models.BookingStatus, at time.Time) (*models.Booking, error) {
	query := `
		WITH b AS (
			UPDATE bookings SET status = $3, updated_at = $4
			WHERE id = $1 AND status = $2
			RETURNING *
		)
		SELECT ` + bookingColumns + `
		FROM b
		JOIN users u ON u.id = b.photographer_id
	`
	b, err := scanBooking(r.db.QueryRow(ctx, query, id, string(from), string(to), at))
	if err == nil {
		return b, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to update booking status: %w", err)
	}

	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM bookings WHERE id = $1)`, id).Scan(&exists); err != nil {
		return nil, fmt.Errorf("failed to check booking existence: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("booking not found: %w", backend.ErrNotFound)
	}
	return nil, fmt.Errorf("booking %s is no longer %s: %w", id, from, backend.ErrStale)
}

// participantColumn returns the qualified column that holds the user id for
// the participant's role.
func participantColumn(p backend.Participant, alias string) string {
	if p.Role == models.RolePhotographer {
		return alias + ".photographer_id"
	}
	return alias + ".surfer_id"
}
