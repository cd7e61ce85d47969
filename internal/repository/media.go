package repository

import (
	"context"
	"fmt"

	"surfapp/internal/backend"
	"surfapp/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// MediaRepository handles database operations for session media and logs
type MediaRepository struct {
	db *pgxpool.Pool
}

// NewMediaRepository creates a new media repository
func NewMediaRepository(db *pgxpool.Pool) *MediaRepository {
	return &MediaRepository{db: db}
}

// InsertMedia creates a new media record
func (r *MediaRepository) InsertMedia(ctx context.Context, m *models.Media) error {
	query := `
		INSERT INTO media (id, session_id, type, url, thumbnail_url, filename, size_bytes,
			width, height, duration_seconds, uploaded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.db.Exec(ctx, query,
		m.ID, m.SessionID, string(m.Type), m.URL, m.ThumbnailURL, m.Filename, m.SizeBytes,
		m.Width, m.Height, m.DurationSeconds, m.UploadedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("failed to create media: %w", backend.ErrDuplicate)
		}
		return fmt.Errorf("failed to create media: %w", err)
	}
	return nil
}

// ListMedia retrieves a session's media, latest upload first
func (r *MediaRepository) ListMedia(ctx context.Context, sessionID string) ([]models.Media, error) {
	query := `
		SELECT id, session_id, type, url, thumbnail_url, filename, size_bytes,
			width, height, duration_seconds, uploaded_at
		FROM media
		WHERE session_id = $1
		ORDER BY uploaded_at DESC
	`
	rows, err := r.db.Query(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list media: %w", err)
	}
	defer rows.Close()

	media := make([]models.Media, 0)
	for rows.Next() {
		var m models.Media
		err := rows.Scan(
			&m.ID, &m.SessionID, &m.Type, &m.URL, &m.ThumbnailURL, &m.Filename, &m.SizeBytes,
			&m.Width, &m.Height, &m.DurationSeconds, &m.UploadedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan media: %w", err)
		}
		media = append(media, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating media: %w", err)
	}
	return media, nil
}

// ListLogs retrieves a session's log lines with author names, latest first
func (r *MediaRepository) ListLogs(ctx context.Context, sessionID string) ([]models.LogEntry, error) {
	query := `
		SELECT l.id, l.session_id, l.user_id, u.name, l.action, l.description, l.timestamp
		FROM logs l
		JOIN users u ON u.id = l.user_id
		WHERE l.session_id = $1
		ORDER BY l.timestamp DESC
	`
	rows, err := r.db.Query(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list logs: %w", err)
	}
	defer rows.Close()

	entries := make([]models.LogEntry, 0)
	for rows.Next() {
		var e models.LogEntry
		if err := rows.Scan(&e.ID, &e.SessionID, &e.UserID, &e.UserName, &e.Action, &e.Description, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan log entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating logs: %w", err)
	}
	return entries, nil
}

// SumMediaBytes totals media sizes across a user's sessions
func (r *MediaRepository) SumMediaBytes(ctx context.Context, p backend.Participant) (int64, error) {
	query := `
		SELECT COALESCE(SUM(m.size_bytes), 0)::bigint
		FROM media m
		JOIN sessions s ON s.id = m.session_id
		WHERE ` + participantColumn(p, "s") + ` = $1
	`
	var total int64
	if err := r.db.QueryRow(ctx, query, p.UserID).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum media size: %w", err)
	}
	return total, nil
}
