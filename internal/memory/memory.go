// Package memory implements an in-memory backend for development and testing.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"surfapp/internal/backend"
	"surfapp/internal/models"
)

// profile is a photographer row without the joined user columns.
type profile struct {
	models.Photographer
}

// DB implements backend.Backend in memory.
type DB struct {
	mu            sync.Mutex
	users         map[string]*backend.UserRecord
	photographers []*profile
	bookings      map[string]*models.Booking
	sessions      map[string]*models.Session
	media         []models.Media
	logs          []models.LogEntry
}

// New creates an empty in-memory database.
func New() *DB {
	return &DB{
		users:    make(map[string]*backend.UserRecord),
		bookings: make(map[string]*models.Booking),
		sessions: make(map[string]*models.Session),
	}
}

// Ensure interface is met.
var _ backend.Backend = (*DB)(nil)

// --- users ---

func (db *DB) FindUserByEmail(ctx context.Context, email string) (*backend.UserRecord, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if strings.EqualFold(u.Email, email) {
			rec := *u
			return &rec, nil
		}
	}
	return nil, backend.ErrNotFound
}

func (db *DB) GetUser(ctx context.Context, id string) (*models.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	u, ok := db.users[id]
	if !ok {
		return nil, backend.ErrNotFound
	}
	user := u.User
	return &user, nil
}

func (db *DB) InsertUser(ctx context.Context, u *backend.UserRecord) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, ok := db.users[u.ID]; ok {
		return backend.ErrDuplicate
	}
	for _, existing := range db.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return backend.ErrDuplicate
		}
	}
	rec := *u
	db.users[u.ID] = &rec
	return nil
}

// --- photographers ---

// AddPhotographer stores a photographer profile for an existing user. Name,
// email and avatar are always taken from the user.
func (db *DB) AddPhotographer(p models.Photographer) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, ok := db.users[p.UserID]; !ok {
		return fmt.Errorf("photographer %s: user %s: %w", p.ID, p.UserID, backend.ErrNotFound)
	}
	db.photographers = append(db.photographers, &profile{Photographer: p})
	return nil
}

// SetPrice changes a photographer's session price.
func (db *DB) SetPrice(photographerID string, price float64) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, p := range db.photographers {
		if p.ID == photographerID {
			p.PricePerSession = price
			return nil
		}
	}
	return backend.ErrNotFound
}

// joined must be called with db.mu held.
func (db *DB) joined(p *profile) models.Photographer {
	out := p.Photographer
	out.Spots = append([]string(nil), p.Spots...)
	out.PortfolioImages = append([]string(nil), p.PortfolioImages...)
	out.Equipment = append([]string(nil), p.Equipment...)
	if u, ok := db.users[p.UserID]; ok {
		out.Name = u.Name
		out.Email = u.Email
		out.Avatar = u.Avatar
	}
	return out
}

func (db *DB) ListPhotographers(ctx context.Context, q backend.PhotographerQuery) ([]models.Photographer, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	out := make([]models.Photographer, 0, len(db.photographers))
	for _, p := range db.photographers {
		if q.AvailableOnly && !p.Available {
			continue
		}
		if q.MinRating != nil && p.Rating < *q.MinRating {
			continue
		}
		if q.MaxPrice != nil && p.PricePerSession > *q.MaxPrice {
			continue
		}
		out = append(out, db.joined(p))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Rating > out[j].Rating })
	return out, nil
}

func (db *DB) GetPhotographer(ctx context.Context, id string) (*models.Photographer, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, p := range db.photographers {
		if p.ID == id {
			out := db.joined(p)
			return &out, nil
		}
	}
	return nil, backend.ErrNotFound
}

// --- bookings ---

// withPhotographer must be called with db.mu held.
func (db *DB) withPhotographer(b models.Booking) models.Booking {
	if u, ok := db.users[b.PhotographerID]; ok {
		b.PhotographerName = u.Name
		b.PhotographerAvatar = u.Avatar
	}
	return b
}

func (db *DB) InsertBooking(ctx context.Context, b *models.Booking) (*models.Booking, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, ok := db.bookings[b.ID]; ok {
		return nil, backend.ErrDuplicate
	}
	if _, ok := db.users[b.PhotographerID]; !ok {
		return nil, fmt.Errorf("photographer user %s: %w", b.PhotographerID, backend.ErrNotFound)
	}
	stored := *b
	db.bookings[b.ID] = &stored
	out := db.withPhotographer(stored)
	return &out, nil
}

func (db *DB) ListBookings(ctx context.Context, p backend.Participant) ([]models.Booking, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	out := make([]models.Booking, 0)
	for _, b := range db.bookings {
		if participates(p, b.SurferID, b.PhotographerID) {
			out = append(out, db.withPhotographer(*b))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (db *DB) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	b, ok := db.bookings[id]
	if !ok {
		return nil, backend.ErrNotFound
	}
	out := db.withPhotographer(*b)
	return &out, nil
}

func (db *DB) UpdateBookingStatus(ctx context.Context, id string, from, to models.BookingStatus, at time.Time) (*models.Booking, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	b, ok := db.bookings[id]
	if !ok {
		return nil, backend.ErrNotFound
	}
	if b.Status != from {
		return nil, backend.ErrStale
	}
	b.Status = to
	b.UpdatedAt = at
	out := db.withPhotographer(*b)
	return &out, nil
}

// --- sessions ---

func (db *DB) InsertSession(ctx context.Context, s *models.Session) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, ok := db.sessions[s.ID]; ok {
		return backend.ErrDuplicate
	}
	stored := *s
	stored.MediaCount = 0
	db.sessions[s.ID] = &stored
	return nil
}

// sessionView must be called with db.mu held.
func (db *DB) sessionView(s models.Session) models.Session {
	if u, ok := db.users[s.PhotographerID]; ok {
		s.PhotographerName = u.Name
		s.PhotographerAvatar = u.Avatar
	}
	s.MediaCount = 0
	for _, m := range db.media {
		if m.SessionID == s.ID {
			s.MediaCount++
		}
	}
	if s.Conditions != nil {
		c := *s.Conditions
		s.Conditions = &c
	}
	return s
}

func (db *DB) ListSessions(ctx context.Context, p backend.Participant) ([]models.Session, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	out := make([]models.Session, 0)
	for _, s := range db.sessions {
		if participates(p, s.SurferID, s.PhotographerID) {
			out = append(out, db.sessionView(*s))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		return out[i].Time > out[j].Time
	})
	return out, nil
}

func (db *DB) GetSession(ctx context.Context, id string) (*models.Session, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	s, ok := db.sessions[id]
	if !ok {
		return nil, backend.ErrNotFound
	}
	out := db.sessionView(*s)
	return &out, nil
}

// SetConditions records wave conditions on a session.
func (db *DB) SetConditions(sessionID string, c models.WaveConditions) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	s, ok := db.sessions[sessionID]
	if !ok {
		return backend.ErrNotFound
	}
	s.Conditions = &c
	return nil
}

// --- media and logs ---

func (db *DB) InsertMedia(ctx context.Context, m *models.Media) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, ok := db.sessions[m.SessionID]; !ok {
		return fmt.Errorf("session %s: %w", m.SessionID, backend.ErrNotFound)
	}
	for _, existing := range db.media {
		if existing.ID == m.ID {
			return backend.ErrDuplicate
		}
	}
	db.media = append(db.media, *m)
	return nil
}

func (db *DB) ListMedia(ctx context.Context, sessionID string) ([]models.Media, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	out := make([]models.Media, 0)
	for _, m := range db.media {
		if m.SessionID == sessionID {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].UploadedAt.After(out[j].UploadedAt) })
	return out, nil
}

// AddLog appends a session log line. UserName is resolved on read.
func (db *DB) AddLog(e models.LogEntry) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.logs = append(db.logs, e)
}

func (db *DB) ListLogs(ctx context.Context, sessionID string) ([]models.LogEntry, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	out := make([]models.LogEntry, 0)
	for _, e := range db.logs {
		if e.SessionID != sessionID {
			continue
		}
		if u, ok := db.users[e.UserID]; ok {
			e.UserName = u.Name
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out, nil
}

func (db *DB) SumMediaBytes(ctx context.Context, p backend.Participant) (int64, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var total int64
	for _, m := range db.media {
		s, ok := db.sessions[m.SessionID]
		if ok && participates(p, s.SurferID, s.PhotographerID) {
			total += m.SizeBytes
		}
	}
	return total, nil
}

func participates(p backend.Participant, surferID, photographerID string) bool {
	if p.Role == models.RolePhotographer {
		return photographerID == p.UserID
	}
	return surferID == p.UserID
}
