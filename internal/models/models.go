package models

import (
	"strings"
	"time"
)

// Role is the immutable role chosen at registration
type Role string

const (
	RoleSurfer       Role = "surfer"
	RolePhotographer Role = "photographer"
)

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	return r == RoleSurfer || r == RolePhotographer
}

// User represents a user in the system
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      Role      `json:"role"`
	Avatar    *string   `json:"avatar,omitempty"`
	Phone     *string   `json:"phone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Photographer is a photographer profile joined with its owning user
type Photographer struct {
	ID              string   `json:"id"`
	UserID          string   `json:"user_id"`
	Name            string   `json:"name"`
	Email           string   `json:"email"`
	Avatar          *string  `json:"avatar,omitempty"`
	Bio             *string  `json:"bio,omitempty"`
	Rating          float64  `json:"rating"`
	ReviewsCount    int      `json:"reviews_count"`
	Spots           []string `json:"spots"`
	PricePerSession float64  `json:"price_per_session"`
	Currency        string   `json:"currency"`
	PortfolioImages []string `json:"portfolio_images,omitempty"`
	Equipment       []string `json:"equipment,omitempty"`
	ExperienceYears *int     `json:"experience_years,omitempty"`
	Available       bool     `json:"available"`
}

// PhotographerFilters narrows a photographer listing. Nil fields are not applied.
type PhotographerFilters struct {
	Spot          *string
	MinRating     *float64
	MaxPrice      *float64
	AvailableOnly *bool
}

// MatchesSpot reports whether any of the photographer's spots contains the
// filter spot, ignoring case. An unset or empty filter matches everything.
func (f PhotographerFilters) MatchesSpot(p Photographer) bool {
	if f.Spot == nil || *f.Spot == "" {
		return true
	}
	needle := strings.ToLower(*f.Spot)
	for _, s := range p.Spots {
		if strings.Contains(strings.ToLower(s), needle) {
			return true
		}
	}
	return false
}

// BookingStatus is the wire-level booking lifecycle value
type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCompleted BookingStatus = "completed"
	BookingCancelled BookingStatus = "cancelled"
)

var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingPending:   {BookingConfirmed, BookingCancelled},
	BookingConfirmed: {BookingCompleted},
}

// Valid reports whether s is a known booking status
func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingCompleted, BookingCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transitions are allowed
func (s BookingStatus) Terminal() bool {
	return s == BookingCompleted || s == BookingCancelled
}

// CanTransitionTo reports whether a booking in status s may move to next
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	for _, allowed := range bookingTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Booking represents a request for a paid photo session
type Booking struct {
	ID                 string        `json:"id"`
	SurferID           string        `json:"surfer_id"`
	PhotographerID     string        `json:"photographer_id"`
	PhotographerName   string        `json:"photographer_name"`
	PhotographerAvatar *string       `json:"photographer_avatar,omitempty"`
	Spot               string        `json:"spot"`
	Date               string        `json:"date"`
	Time               string        `json:"time"`
	DurationHours      float64       `json:"duration_hours"`
	Status             BookingStatus `json:"status"`
	Price              float64       `json:"price"`
	Currency           string        `json:"currency"`
	Notes              *string       `json:"notes,omitempty"`
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at"`
}

// CreateBookingRequest is the input for a new booking. PhotographerID is the
// photographer profile id, not the user id.
type CreateBookingRequest struct {
	PhotographerID string  `json:"photographer_id" validate:"required"`
	Spot           string  `json:"spot" validate:"required"`
	Date           string  `json:"date" validate:"required,datetime=2006-01-02"`
	Time           string  `json:"time" validate:"required,datetime=15:04"`
	DurationHours  float64 `json:"duration_hours" validate:"gt=0"`
	Notes          *string `json:"notes,omitempty"`
}

// SessionStatus is the lifecycle of a surf session
type SessionStatus string

const (
	SessionScheduled  SessionStatus = "scheduled"
	SessionInProgress SessionStatus = "in_progress"
	SessionCompleted  SessionStatus = "completed"
)

// CanTransitionTo reports whether a session in status s may move to next
func (s SessionStatus) CanTransitionTo(next SessionStatus) bool {
	switch s {
	case SessionScheduled:
		return next == SessionInProgress
	case SessionInProgress:
		return next == SessionCompleted
	}
	return false
}

// WaveConditions are the recorded environmental conditions of a session
type WaveConditions struct {
	WaveHeight    *float64 `json:"wave_height,omitempty"`
	WavePeriod    *float64 `json:"wave_period,omitempty"`
	WindSpeed     *float64 `json:"wind_speed,omitempty"`
	WindDirection *string  `json:"wind_direction,omitempty"`
	Tide          *string  `json:"tide,omitempty"`
	WaterTemp     *float64 `json:"water_temp,omitempty"`
}

// Empty reports whether no condition has been recorded yet
func (w WaveConditions) Empty() bool {
	return w.WaveHeight == nil && w.WavePeriod == nil && w.WindSpeed == nil &&
		w.WindDirection == nil && w.Tide == nil && w.WaterTemp == nil
}

// Session is the realized outcome of a booking. MediaCount is derived from
// the related media rows.
type Session struct {
	ID                 string          `json:"id"`
	BookingID          string          `json:"booking_id"`
	SurferID           string          `json:"surfer_id"`
	PhotographerID     string          `json:"photographer_id"`
	PhotographerName   string          `json:"photographer_name"`
	PhotographerAvatar *string         `json:"photographer_avatar,omitempty"`
	Spot               string          `json:"spot"`
	Date               string          `json:"date"`
	Time               string          `json:"time"`
	DurationHours      float64         `json:"duration_hours"`
	Status             SessionStatus   `json:"status"`
	Conditions         *WaveConditions `json:"conditions,omitempty"`
	Notes              *string         `json:"notes,omitempty"`
	MediaCount         int             `json:"media_count"`
	VideoSummaryURL    *string         `json:"video_summary_url,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// MediaType distinguishes photos from videos
type MediaType string

const (
	MediaPhoto MediaType = "photo"
	MediaVideo MediaType = "video"
)

// Media is a photo or video attached to a session
type Media struct {
	ID              string    `json:"id"`
	SessionID       string    `json:"session_id"`
	Type            MediaType `json:"type"`
	URL             string    `json:"url"`
	ThumbnailURL    *string   `json:"thumbnail_url,omitempty"`
	Filename        string    `json:"filename"`
	SizeBytes       int64     `json:"size_bytes"`
	Width           *int      `json:"width,omitempty"`
	Height          *int      `json:"height,omitempty"`
	DurationSeconds *float64  `json:"duration_seconds,omitempty"`
	UploadedAt      time.Time `json:"uploaded_at"`
}

// LogEntry is a line of a session's activity log
type LogEntry struct {
	ID          string    `json:"id"`
	SessionID   string    `json:"session_id"`
	UserID      string    `json:"user_id"`
	UserName    string    `json:"user_name"`
	Action      string    `json:"action"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
}

const bytesPerGB = 1024 * 1024 * 1024

// StorageUsage reports media storage consumption for the current user
type StorageUsage struct {
	UsedBytes  int64  `json:"used_bytes"`
	TotalBytes int64  `json:"total_bytes"`
	Plan       string `json:"plan"`
}

// Percentage returns used/total*100, or 0 when no quota is known
func (u StorageUsage) Percentage() float64 {
	if u.TotalBytes <= 0 {
		return 0
	}
	return float64(u.UsedBytes) / float64(u.TotalBytes) * 100
}

func (u StorageUsage) UsedGB() float64  { return float64(u.UsedBytes) / bytesPerGB }
func (u StorageUsage) TotalGB() float64 { return float64(u.TotalBytes) / bytesPerGB }

// LoginRequest holds login credentials
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest holds the fields of a new account
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Name     string `json:"name" validate:"required"`
	Role     Role   `json:"role" validate:"required,oneof=surfer photographer"`
}

// AuthResponse is returned by login and register
type AuthResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	User        User   `json:"user"`
}

// PresignedUpload is a time-limited direct-to-storage upload grant
type PresignedUpload struct {
	UploadURL string    `json:"upload_url"`
	MediaID   string    `json:"media_id"`
	ExpiresAt time.Time `json:"expires_at"`
}
