// Package sessionstore persists the authenticated session (token and user)
// across process restarts. Both values are always written and cleared
// together.
package sessionstore

import (
	"context"
	"errors"
	"fmt"

	"surfapp/internal/models"

	"github.com/goccy/go-json"
)

// Fixed storage keys.
const (
	TokenKey = "@surfapp_token"
	UserKey  = "@surfapp_user"
)

var (
	// ErrNoSession is returned by Load when nothing is stored.
	ErrNoSession = errors.New("no stored session")
	// ErrIncomplete is returned by Load when only one of the two keys is
	// present or the stored user cannot be decoded.
	ErrIncomplete = errors.New("stored session is incomplete")
)

// KV is a key-value backend with atomic multi-key operations.
type KV interface {
	// GetMany returns the values of the keys that exist. Missing keys are
	// absent from the map.
	GetMany(ctx context.Context, keys ...string) (map[string][]byte, error)
	// SetMany writes all entries or none.
	SetMany(ctx context.Context, entries map[string][]byte) error
	// DeleteMany removes all keys or none. Missing keys are not an error.
	DeleteMany(ctx context.Context, keys ...string) error
	Close() error
}

// Record is a restored session.
type Record struct {
	Token string
	User  models.User
}

// Store reads and writes the session record on a KV.
type Store struct {
	kv KV
}

// New creates a store over kv.
func New(kv KV) *Store {
	return &Store{kv: kv}
}

// Save writes token and user in one atomic operation.
func (s *Store) Save(ctx context.Context, token string, user models.User) error {
	if token == "" {
		return fmt.Errorf("save session: empty token")
	}
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}
	if err := s.kv.SetMany(ctx, map[string][]byte{
		TokenKey: []byte(token),
		UserKey:  data,
	}); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Load returns the stored record, ErrNoSession when nothing is stored, or
// ErrIncomplete when the stored data cannot form a session.
func (s *Store) Load(ctx context.Context) (*Record, error) {
	values, err := s.kv.GetMany(ctx, TokenKey, UserKey)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	token, hasToken := values[TokenKey]
	userData, hasUser := values[UserKey]
	switch {
	case !hasToken && !hasUser:
		return nil, ErrNoSession
	case !hasToken || !hasUser || len(token) == 0:
		return nil, ErrIncomplete
	}

	var user models.User
	if err := json.Unmarshal(userData, &user); err != nil {
		return nil, fmt.Errorf("%w: decode user: %v", ErrIncomplete, err)
	}
	if user.ID == "" {
		return nil, fmt.Errorf("%w: user without id", ErrIncomplete)
	}
	return &Record{Token: string(token), User: user}, nil
}

// Clear removes both keys.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.kv.DeleteMany(ctx, TokenKey, UserKey); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Close releases the underlying KV.
func (s *Store) Close() error {
	return s.kv.Close()
}
