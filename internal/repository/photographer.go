package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"surfapp/internal/backend"
	"surfapp/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PhotographerRepository handles database operations for photographer profiles
type PhotographerRepository struct {
	db *pgxpool.Pool
}

// NewPhotographerRepository creates a new photographer repository
func NewPhotographerRepository(db *pgxpool.Pool) *PhotographerRepository {
	return &PhotographerRepository{db: db}
}

const photographerColumns = `
	p.id, p.user_id, u.name, u.email, u.avatar, p.bio, p.rating, p.reviews_count,
	p.spots, p.price_per_session, p.currency, p.portfolio_images, p.equipment,
	p.experience_years, p.available
`

func scanPhotographer(row pgx.Row) (*models.Photographer, error) {
	var p models.Photographer
	err := row.Scan(
		&p.ID, &p.UserID, &p.Name, &p.Email, &p.Avatar, &p.Bio, &p.Rating, &p.ReviewsCount,
		&p.Spots, &p.PricePerSession, &p.Currency, &p.PortfolioImages, &p.Equipment,
		&p.ExperienceYears, &p.Available,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListPhotographers retrieves profiles joined with their users, best rated first
func (r *PhotographerRepository) ListPhotographers(ctx context.Context, q backend.PhotographerQuery) ([]models.Photographer, error) {
	var (
		where []string
		args  []any
	)
	if q.AvailableOnly {
		where = append(where, "p.available = true")
	}
	if q.MinRating != nil {
		args = append(args, *q.MinRating)
		where = append(where, fmt.Sprintf("p.rating >= $%d", len(args)))
	}
	if q.MaxPrice != nil {
		args = append(args, *q.MaxPrice)
		where = append(where, fmt.Sprintf("p.price_per_session <= $%d", len(args)))
	}

	query := `SELECT ` + photographerColumns + `
		FROM photographers p
		JOIN users u ON u.id = p.user_id`
	if len(where) > 0 {
		query += "\n\t\tWHERE " + strings.Join(where, " AND ")
	}
	query += "\n\t\tORDER BY p.rating DESC"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list photographers: %w", err)
	}
	defer rows.Close()

	photographers := make([]models.Photographer, 0)
	for rows.Next() {
		p, err := scanPhotographer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan photographer: %w", err)
		}
		photographers = append(photographers, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating photographers: %w", err)
	}
	return photographers, nil
}

// GetPhotographer retrieves a photographer profile by ID
func (r *PhotographerRepository) GetPhotographer(ctx context.Context, id string) (*models.Photographer, error) {
	query := `SELECT ` + photographerColumns + `
		FROM photographers p
		JOIN users u ON u.id = p.user_id
		WHERE p.id = $1
	`
	p, err := scanPhotographer(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("photographer not found: %w", backend.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get photographer: %w", err)
	}
	return p, nil
}
