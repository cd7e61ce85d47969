package repository

import (
	"context"
	"errors"
	"fmt"

	"surfapp/internal/backend"
	"surfapp/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

// UserRepository handles database operations for users
type UserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

// InsertUser creates a new user
func (r *UserRepository) InsertUser(ctx context.Context, u *backend.UserRecord) error {
	query := `
		INSERT INTO users (id, email, name, role, avatar, phone, password_hash, created_at)
		VALUES ($1, lower($2), $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.Exec(ctx, query,
		u.ID, u.Email, u.Name, string(u.Role), u.Avatar, u.Phone, u.PasswordHash, u.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("failed to create user: %w", backend.ErrDuplicate)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetUser retrieves a user by ID
func (r *UserRepository) GetUser(ctx context.Context, id string) (*models.User, error) {
	query := `
		SELECT id, email, name, role, avatar, phone, created_at
		FROM users
		WHERE id = $1
	`
	var user models.User
	err := r.db.QueryRow(ctx, query, id).Scan(
		&user.ID, &user.Email, &user.Name, &user.Role, &user.Avatar, &user.Phone, &user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user not found: %w", backend.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// FindUserByEmail retrieves a user and its password hash by email
func (r *UserRepository) FindUserByEmail(ctx context.Context, email string) (*backend.UserRecord, error) {
	query := `
		SELECT id, email, name, role, avatar, phone, created_at, password_hash
		FROM users
		WHERE email = lower($1)
	`
	var rec backend.UserRecord
	err := r.db.QueryRow(ctx, query, email).Scan(
		&rec.ID, &rec.Email, &rec.Name, &rec.Role, &rec.Avatar, &rec.Phone, &rec.CreatedAt,
		&rec.PasswordHash,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user not found: %w", backend.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return &rec, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
