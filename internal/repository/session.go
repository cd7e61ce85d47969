package repository

import (
	"context"
	"errors"
	"fmt"

	"surfapp/internal/backend"
	"surfapp/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SessionRepository handles database operations for surf sessions
type SessionRepository struct {
	db *pgxpool.Pool
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{db: db}
}

const sessionColumns = `
	s.id, s.booking_id, s.surfer_id, s.photographer_id, u.name, u.avatar, s.spot,
	to_char(s.date, 'YYYY-MM-DD'), to_char(s.time, 'HH24:MI'), s.duration_hours, s.status,
	s.wave_height, s.wave_period, s.wind_speed, s.wind_direction, s.tide, s.water_temp,
	s.notes, (SELECT COUNT(*) FROM media m WHERE m.session_id = s.id), s.video_summary_url,
	s.created_at, s.updated_at
`

func scanSession(row pgx.Row) (*models.Session, error) {
	var (
		s models.Session
		c models.WaveConditions
	)
	err := row.Scan(
		&s.ID, &s.BookingID, &s.SurferID, &s.PhotographerID, &s.PhotographerName, &s.PhotographerAvatar, &s.Spot,
		&s.Date, &s.Time, &s.DurationHours, &s.Status,
		&c.WaveHeight, &c.WavePeriod, &c.WindSpeed, &c.WindDirection, &c.Tide, &c.WaterTemp,
		&s.Notes, &s.MediaCount, &s.VideoSummaryURL,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if !c.Empty() {
		s.Conditions = &c
	}
	return &s, nil
}

// InsertSession creates a new session
func (r *SessionRepository) InsertSession(ctx context.Context, s *models.Session) error {
	var c models.WaveConditions
	if s.Conditions != nil {
		c = *s.Conditions
	}
	query := `
		INSERT INTO sessions (id, booking_id, surfer_id, photographer_id, spot, date, time,
			duration_hours, status, wave_height, wave_period, wind_speed, wind_direction, tide,
			water_temp, notes, video_summary_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, to_date($6, 'YYYY-MM-DD'), $7::text::time,
			$8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	`
	_, err := r.db.Exec(ctx, query,
		s.ID, s.BookingID, s.SurferID, s.PhotographerID, s.Spot, s.Date, s.Time,
		s.DurationHours, string(s.Status), c.WaveHeight, c.WavePeriod, c.WindSpeed, c.WindDirection, c.Tide,
		c.WaterTemp, s.Notes, s.VideoSummaryURL, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("failed to create session: %w", backend.ErrDuplicate)
		}
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// ListSessions retrieves the sessions a user takes part in, latest first
func (r *SessionRepository) ListSessions(ctx context.Context, p backend.Participant) ([]models.Session, error) {
	query := `SELECT ` + sessionColumns + `
		FROM sessions s
		JOIN users u ON u.id = s.photographer_id
		WHERE ` + participantColumn(p, "s") + ` = $1
		ORDER BY s.date DESC, s.time DESC
	`
	rows, err := r.db.Query(ctx, query, p.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	sessions := make([]models.Session, 0)
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sessions: %w", err)
	}
	return sessions, nil
}

// GetSession retrieves a session by ID
func (r *SessionRepository) GetSession(ctx context.Context, id string) (*models.Session, error) {
	query := `SELECT ` + sessionColumns + `
		FROM sessions s
		JOIN users u ON u.id = s.photographer_id
		WHERE s.id = $1
	`
	s, err := scanSession(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("session not found: %w", backend.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return s, nil
}
