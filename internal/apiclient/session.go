package apiclient

import (
	"sync"

	"surfapp/internal/models"
)

// Session holds the credentials of one transport instance. The zero value is
// an empty session ready to use.
type Session struct {
	mu    sync.RWMutex
	token string
	user  *models.User
}

// Set replaces the token and user. The user is copied.
func (s *Session) Set(token string, user *models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	if user == nil {
		s.user = nil
		return
	}
	u := *user
	s.user = &u
}

// Refresh replaces the user only while token is still the current token,
// and reports whether it did.
func (s *Session) Refresh(token string, user *models.User) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if token == "" || s.token != token || user == nil {
		return false
	}
	u := *user
	s.user = &u
	return true
}

// Clear drops both token and user.
func (s *Session) Clear() {
	s.Set("", nil)
}

// Token returns the current token, or "" when none is set.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns a copy of the current user, or nil.
func (s *Session) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}
