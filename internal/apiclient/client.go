// Package apiclient defines the transport-independent API client contract
// shared by the HTTP and direct-backend transports.
package apiclient

import (
	"context"
	"io"

	"surfapp/internal/models"
)

// Client is implemented by every transport. Inputs and outputs are identical
// regardless of the backend behind it.
type Client interface {
	Login(ctx context.Context, email, password string) (*models.AuthResponse, error)
	Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error)
	// GetCurrentUser returns the user established by Login, Register or
	// SetSession without a round trip when one is known.
	GetCurrentUser(ctx context.Context) (*models.User, error)
	// FetchCurrentUser always asks the backend.
	FetchCurrentUser(ctx context.Context) (*models.User, error)
	// Logout never fails: the remote part is best-effort, the local part
	// always happens.
	Logout(ctx context.Context) error

	// SetSession installs restored credentials. An empty token and nil user
	// clear them.
	SetSession(token string, user *models.User)
	Token() string

	ListPhotographers(ctx context.Context, filters models.PhotographerFilters) ([]models.Photographer, error)
	GetPhotographer(ctx context.Context, id string) (*models.Photographer, error)

	CreateBooking(ctx context.Context, req models.CreateBookingRequest) (*models.Booking, error)
	ListMyBookings(ctx context.Context) ([]models.Booking, error)
	GetBooking(ctx context.Context, id string) (*models.Booking, error)
	UpdateBookingStatus(ctx context.Context, id string, status models.BookingStatus) (*models.Booking, error)
	CancelBooking(ctx context.Context, id string) (*models.Booking, error)

	ListMySessions(ctx context.Context) ([]models.Session, error)
	GetSession(ctx context.Context, id string) (*models.Session, error)
	GetSessionMedia(ctx context.Context, sessionID string) ([]models.Media, error)
	// GetSessionLogs returns an empty list instead of an error when the
	// logs cannot be fetched.
	GetSessionLogs(ctx context.Context, sessionID string) ([]models.LogEntry, error)

	GetPresignedUploadURL(ctx context.Context, sessionID, filename, contentType string) (*models.PresignedUpload, error)
	UploadFile(ctx context.Context, uploadURL, contentType string, body io.Reader) error

	GetStorageUsage(ctx context.Context) (*models.StorageUsage, error)
}
