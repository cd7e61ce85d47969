package directclient

import (
	"context"
	"errors"
	"strings"
	"time"

	"surfapp/internal/apiclient"
	"surfapp/internal/backend"
	"surfapp/internal/models"

	"github.com/rs/zerolog/log"
)

// CreateBooking books the photographer profile named in req for the current
// surfer. Price and currency are copied from the profile as it is now.
func (c *Client) CreateBooking(ctx context.Context, req models.CreateBookingRequest) (booking *models.Booking, err error) {
	defer c.finish("create_booking", time.Now(), &err)

	u, err := c.currentUser()
	if err != nil {
		return nil, err
	}
	if u.Role != models.RoleSurfer {
		return nil, apiclient.Newf(apiclient.CodeForbidden, "only surfers can create bookings")
	}
	req.Spot = strings.TrimSpace(req.Spot)
	if err := apiclient.ValidateRequest(req); err != nil {
		return nil, err
	}

	p, err := c.backend.GetPhotographer(ctx, req.PhotographerID)
	if errors.Is(err, backend.ErrNotFound) {
		return nil, apiclient.Newf(apiclient.CodeNotFound, "photographer %s not found", req.PhotographerID)
	}
	if err != nil {
		return nil, err
	}

	now := c.now()
	b := &models.Booking{
		ID:             c.newID(),
		SurferID:       u.ID,
		PhotographerID: p.UserID,
		Spot:           req.Spot,
		Date:           req.Date,
		Time:           req.Time,
		DurationHours:  req.DurationHours,
		Status:         models.BookingPending,
		Price:          p.PricePerSession,
		Currency:       p.Currency,
		Notes:          req.Notes,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	created, err := c.backend.InsertBooking(ctx, b)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("booking_id", created.ID).
		Str("surfer_id", u.ID).
		Str("photographer_id", p.UserID).
		Msg("Booking created")
	return created, nil
}

func (c *Client) ListMyBookings(ctx context.Context) (list []models.Booking, err error) {
	defer c.finish("list_my_bookings", time.Now(), &err)

	u, err := c.currentUser()
	if err != nil {
		return nil, err
	}
	return c.backend.ListBookings(ctx, participant(u))
}

func (c *Client) GetBooking(ctx context.Context, id string) (booking *models.Booking, err error) {
	defer c.finish("get_booking", time.Now(), &err)

	u, err := c.currentUser()
	if err != nil {
		return nil, err
	}
	return c.ownBooking(ctx, u, id)
}

// ownBooking loads a booking the user takes part in. Bookings of other users
// are reported as not found.
func (c *Client) ownBooking(ctx context.Context, u *models.User, id string) (*models.Booking, error) {
	b, err := c.backend.GetBooking(ctx, id)
	if err != nil && !errors.Is(err, backend.ErrNotFound) {
		return nil, err
	}
	if err != nil || (b.SurferID != u.ID && b.PhotographerID != u.ID) {
		return nil, apiclient.Newf(apiclient.CodeNotFound, "booking %s not found", id)
	}
	return b, nil
}

// UpdateBookingStatus applies a lifecycle transition. Only the photographer
// confirms or completes; either side may cancel.
func (c *Client) UpdateBookingStatus(ctx context.Context, id string, status models.BookingStatus) (booking *models.Booking, err error) {
	defer c.finish("update_booking_status", time.Now(), &err)

	u, err := c.currentUser()
	if err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, &apiclient.Error{
			Code:    apiclient.CodeValidation,
			Message: "status: must be one of [pending confirmed completed cancelled]",
			Details: map[string]any{"fields": map[string]any{"status": "must be one of [pending confirmed completed cancelled]"}},
		}
	}

	current, err := c.ownBooking(ctx, u, id)
	if err != nil {
		return nil, err
	}
	if status != models.BookingCancelled && current.PhotographerID != u.ID {
		return nil, apiclient.Newf(apiclient.CodeForbidden, "only the photographer can mark a booking %s", status)
	}
	if !current.Status.CanTransitionTo(status) {
		return nil, apiclient.Newf(apiclient.CodeInvalidTransition, "cannot move booking from %s to %s", current.Status, status)
	}

	updated, err := c.backend.UpdateBookingStatus(ctx, id, current.Status, status, c.now())
	if errors.Is(err, backend.ErrStale) {
		return nil, apiclient.Newf(apiclient.CodeInvalidTransition, "booking %s changed while updating", id)
	}
	if err != nil {
		return nil, err
	}

	if status == models.BookingConfirmed {
		c.scheduleSession(ctx, updated)
	}

	log.Info().
		Str("booking_id", id).
		Str("from", string(current.Status)).
		Str("to", string(status)).
		Msg("Booking status updated")
	return updated, nil
}

func (c *Client) CancelBooking(ctx context.Context, id string) (*models.Booking, error) {
	return c.UpdateBookingStatus(ctx, id, models.BookingCancelled)
}

// scheduleSession opens the session of a confirmed booking. A failure leaves
// the booking confirmed and is only logged.
func (c *Client) scheduleSession(ctx context.Context, b *models.Booking) {
	now := c.now()
	s := &models.Session{
		ID:             c.newID(),
		BookingID:      b.ID,
		SurferID:       b.SurferID,
		PhotographerID: b.PhotographerID,
		Spot:           b.Spot,
		Date:           b.Date,
		Time:           b.Time,
		DurationHours:  b.DurationHours,
		Status:         models.SessionScheduled,
		Notes:          b.Notes,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := c.backend.InsertSession(ctx, s); err != nil {
		log.Error().Err(err).Str("booking_id", b.ID).Msg("Failed to schedule session for confirmed booking")
	}
}
