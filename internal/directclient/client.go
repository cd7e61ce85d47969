// Package directclient implements apiclient.Client by querying the data store
// directly through a backend.Backend, with no REST server in between.
package directclient

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"surfapp/internal/apiclient"
	"surfapp/internal/backend"
	"surfapp/internal/metrics"
	"surfapp/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

const transportName = "direct"

// TokenIssuer mints the access token handed out at login and register.
type TokenIssuer func(user models.User) (string, error)

// Client is the direct-backend transport. Each Client owns its session.
type Client struct {
	backend    backend.Backend
	session    apiclient.Session
	metrics    *metrics.Metrics
	issueToken TokenIssuer
	bcryptCost int
	now        func() time.Time
	newID      func() string
}

// Option configures a Client.
type Option func(*Client)

// WithMetrics records every operation on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithTokenIssuer replaces the default opaque random tokens.
func WithTokenIssuer(issue TokenIssuer) Option {
	return func(c *Client) { c.issueToken = issue }
}

// WithBcryptCost sets the cost used to hash new passwords.
func WithBcryptCost(cost int) Option {
	return func(c *Client) { c.bcryptCost = cost }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// New creates a direct client over b.
func New(b backend.Backend, opts ...Option) *Client {
	c := &Client{
		backend:    b,
		issueToken: randomToken,
		bcryptCost: bcrypt.DefaultCost,
		now:        func() time.Time { return time.Now().UTC() },
		newID:      func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ apiclient.Client = (*Client)(nil)

// randomToken returns 32 random bytes, base64url encoded.
func randomToken(models.User) (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// finish normalizes *errp and records the operation.
func (c *Client) finish(op string, started time.Time, errp *error) {
	if *errp != nil {
		*errp = classify(*errp)
	}
	c.metrics.ObserveOperation(transportName, op, string(apiclient.CodeOf(*errp)), started)
}

// classify maps backend failures onto the shared error shape. Anything the
// store did not explain becomes DATABASE_ERROR.
func classify(err error) error {
	var apiErr *apiclient.Error
	switch {
	case errors.As(err, &apiErr):
		return apiErr
	case errors.Is(err, context.DeadlineExceeded):
		return apiclient.Wrap(apiclient.CodeTimeout, "request timeout", err)
	case errors.Is(err, context.Canceled):
		return apiclient.Wrap(apiclient.CodeCancelled, "request cancelled", err)
	case errors.Is(err, backend.ErrNotFound):
		return apiclient.Wrap(apiclient.CodeNotFound, "not found", err)
	default:
		return apiclient.Wrap(apiclient.CodeDatabase, "database error: "+err.Error(), err)
	}
}

func invalidCredentials() error {
	return apiclient.Newf(apiclient.CodeInvalidCredentials, "invalid email or password")
}

// currentUser returns the session user or NOT_AUTHENTICATED.
func (c *Client) currentUser() (*models.User, error) {
	u := c.session.User()
	if u == nil {
		return nil, apiclient.Newf(apiclient.CodeNotAuthenticated, "not authenticated")
	}
	return u, nil
}

func participant(u *models.User) backend.Participant {
	return backend.Participant{UserID: u.ID, Role: u.Role}
}

// --- auth ---

func (c *Client) Login(ctx context.Context, email, password string) (resp *models.AuthResponse, err error) {
	defer c.finish("login", time.Now(), &err)

	req := models.LoginRequest{Email: strings.TrimSpace(email), Password: password}
	if err := apiclient.ValidateRequest(req); err != nil {
		log.Debug().Err(err).Msg("Login rejected: malformed credentials")
		return nil, invalidCredentials()
	}

	rec, err := c.backend.FindUserByEmail(ctx, strings.ToLower(req.Email))
	if errors.Is(err, backend.ErrNotFound) {
		log.Debug().Str("email", req.Email).Msg("Login rejected: unknown email")
		return nil, invalidCredentials()
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(rec.PasswordHash), []byte(req.Password)); err != nil {
		log.Debug().Str("user_id", rec.ID).Msg("Login rejected: password mismatch")
		return nil, invalidCredentials()
	}

	return c.establish(rec.User)
}

func (c *Client) Register(ctx context.Context, req models.RegisterRequest) (resp *models.AuthResponse, err error) {
	defer c.finish("register", time.Now(), &err)

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Name = strings.TrimSpace(req.Name)
	if err := apiclient.ValidateRequest(req); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), c.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	rec := &backend.UserRecord{
		User: models.User{
			ID:        c.newID(),
			Email:     req.Email,
			Name:      req.Name,
			Role:      req.Role,
			CreatedAt: c.now(),
		},
		PasswordHash: string(hash),
	}
	if err := c.backend.InsertUser(ctx, rec); err != nil {
		if errors.Is(err, backend.ErrDuplicate) {
			return nil, apiclient.Newf(apiclient.CodeDuplicateEmail, "email %s is already registered", req.Email)
		}
		return nil, err
	}

	log.Info().Str("user_id", rec.ID).Str("role", string(rec.Role)).Msg("User registered")
	return c.establish(rec.User)
}

// establish issues a token for user and makes it the current session.
func (c *Client) establish(user models.User) (*models.AuthResponse, error) {
	token, err := c.issueToken(user)
	if err != nil {
		return nil, err
	}
	c.session.Set(token, &user)
	return &models.AuthResponse{AccessToken: token, TokenType: "bearer", User: user}, nil
}

func (c *Client) GetCurrentUser(ctx context.Context) (*models.User, error) {
	return c.currentUser()
}

// FetchCurrentUser re-reads the session user from the store.
func (c *Client) FetchCurrentUser(ctx context.Context) (user *models.User, err error) {
	defer c.finish("fetch_current_user", time.Now(), &err)

	token := c.session.Token()
	u, err := c.currentUser()
	if err != nil {
		return nil, err
	}
	fresh, err := c.backend.GetUser(ctx, u.ID)
	if errors.Is(err, backend.ErrNotFound) {
		return nil, apiclient.Newf(apiclient.CodeNotAuthenticated, "session user no longer exists")
	}
	if err != nil {
		return nil, err
	}
	c.session.Refresh(token, fresh)
	return fresh, nil
}

// Logout only drops local state; there is no server session to end.
func (c *Client) Logout(ctx context.Context) error {
	c.session.Clear()
	return nil
}

func (c *Client) SetSession(token string, user *models.User) {
	c.session.Set(token, user)
}

func (c *Client) Token() string {
	return c.session.Token()
}

// --- storage ---

const (
	freePlanQuota = 5 * 1024 * 1024 * 1024
	freePlanName  = "Free Plan"
)

func (c *Client) GetStorageUsage(ctx context.Context) (usage *models.StorageUsage, err error) {
	defer c.finish("get_storage_usage", time.Now(), &err)

	u, err := c.currentUser()
	if err != nil {
		return nil, err
	}
	used, err := c.backend.SumMediaBytes(ctx, participant(u))
	if err != nil {
		return nil, err
	}
	return &models.StorageUsage{UsedBytes: used, TotalBytes: freePlanQuota, Plan: freePlanName}, nil
}
