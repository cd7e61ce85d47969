// Package auth owns the authenticated-session lifecycle: restoring a stored
// session at startup, login, registration and logout. It keeps the API
// client's credentials and the durable session store in step.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"surfapp/internal/apiclient"
	"surfapp/internal/models"
	"surfapp/internal/sessionstore"

	"github.com/rs/zerolog/log"
)

// State is the controller's lifecycle state.
type State int

const (
	StateUnknown State = iota
	StateRestoring
	StateAuthenticated
	StateAnonymous
)

func (s State) String() string {
	switch s {
	case StateRestoring:
		return "restoring"
	case StateAuthenticated:
		return "authenticated"
	case StateAnonymous:
		return "anonymous"
	default:
		return "unknown"
	}
}

// SessionStore is the durable storage the controller persists to.
type SessionStore interface {
	Save(ctx context.Context, token string, user models.User) error
	Load(ctx context.Context) (*sessionstore.Record, error)
	Clear(ctx context.Context) error
}

// Snapshot is a consistent view of the controller.
type Snapshot struct {
	State   State
	User    *models.User
	Token   string
	Error   string
	Loading bool
}

// Authenticated reports whether a user is signed in.
func (s Snapshot) Authenticated() bool {
	return s.State == StateAuthenticated
}

// Controller drives the session state machine. It is safe for concurrent use.
type Controller struct {
	client     apiclient.Client
	store      SessionStore
	revalidate bool
	onChange   func(Snapshot)

	// persistMu serializes writes to the store and the client session. gen
	// counts those writes so a slow revalidation can tell it was overtaken.
	persistMu sync.Mutex
	gen       uint64

	mu      sync.Mutex
	state   State
	user    *models.User
	token   string
	errMsg  string
	loading bool

	wg sync.WaitGroup
}

// Option configures a Controller.
type Option func(*Controller)

// WithRevalidation makes Restore confirm the restored session with the
// backend in the background.
func WithRevalidation() Option {
	return func(c *Controller) { c.revalidate = true }
}

// WithOnChange registers an observer called after every state change.
func WithOnChange(fn func(Snapshot)) Option {
	return func(c *Controller) { c.onChange = fn }
}

// NewController creates a controller in StateUnknown.
func NewController(client apiclient.Client, store SessionStore, opts ...Option) *Controller {
	c := &Controller{client: client, store: store}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Snapshot returns the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	snap := Snapshot{State: c.state, Token: c.token, Error: c.errMsg, Loading: c.loading}
	if c.user != nil {
		u := *c.user
		snap.User = &u
	}
	return snap
}

// update applies fn under the lock and notifies the observer.
func (c *Controller) update(fn func()) {
	c.mu.Lock()
	fn()
	snap := c.snapshotLocked()
	c.mu.Unlock()

	if c.onChange != nil {
		c.onChange(snap)
	}
}

// becomeAnonymous must be called with c.mu held.
func (c *Controller) becomeAnonymous() {
	c.state = StateAnonymous
	c.user = nil
	c.token = ""
}

// Restore loads the stored session. A complete record is trusted without a
// network call; anything else leaves the controller anonymous.
func (c *Controller) Restore(ctx context.Context) error {
	c.update(func() {
		c.state = StateRestoring
		c.loading = true
	})

	c.persistMu.Lock()
	defer c.persistMu.Unlock()
	c.gen++

	rec, err := c.store.Load(ctx)
	switch {
	case errors.Is(err, sessionstore.ErrNoSession):
		c.update(func() {
			c.becomeAnonymous()
			c.loading = false
		})
		return nil

	case errors.Is(err, sessionstore.ErrIncomplete):
		log.Warn().Err(err).Msg("Discarding incomplete stored session")
		if clearErr := c.store.Clear(ctx); clearErr != nil {
			log.Warn().Err(clearErr).Msg("Failed to clear incomplete stored session")
		}
		c.update(func() {
			c.becomeAnonymous()
			c.loading = false
		})
		return nil

	case err != nil:
		c.update(func() {
			c.becomeAnonymous()
			c.loading = false
		})
		return fmt.Errorf("restore session: %w", err)
	}

	user := rec.User
	c.client.SetSession(rec.Token, &user)
	c.update(func() {
		c.state = StateAuthenticated
		c.user = &user
		c.token = rec.Token
		c.loading = false
	})
	log.Debug().Str("user_id", user.ID).Msg("Session restored")

	if c.revalidate {
		bg := context.WithoutCancel(ctx)
		gen := c.gen
		c.wg.Add(1)
		go func() {
			defer c.wg.Done()
			_ = c.revalidateAt(bg, gen)
		}()
	}
	return nil
}

// Wait blocks until background revalidation has finished.
func (c *Controller) Wait() {
	c.wg.Wait()
}

// Revalidate asks the backend for the current user. An authentication
// failure ends the session; a transport failure keeps it.
func (c *Controller) Revalidate(ctx context.Context) error {
	c.persistMu.Lock()
	gen := c.gen
	c.persistMu.Unlock()
	return c.revalidateAt(ctx, gen)
}

// revalidateAt checks the session that was current at generation gen. Its
// result is dropped when a login or logout happened while the backend call
// was in flight.
func (c *Controller) revalidateAt(ctx context.Context, gen uint64) error {
	c.mu.Lock()
	token, state := c.token, c.state
	c.mu.Unlock()
	if state != StateAuthenticated {
		return nil
	}

	user, err := c.client.FetchCurrentUser(ctx)

	c.persistMu.Lock()
	defer c.persistMu.Unlock()
	if c.gen != gen {
		log.Debug().Msg("Session changed during revalidation, ignoring result")
		return err
	}

	if err != nil {
		if !isAuthFailure(err) {
			log.Warn().Err(err).Msg("Could not revalidate session, keeping it")
			return err
		}

		log.Info().Err(err).Msg("Stored session rejected by backend")
		c.gen++
		if clearErr := c.store.Clear(ctx); clearErr != nil {
			log.Warn().Err(clearErr).Msg("Failed to clear rejected session")
		}
		c.client.SetSession("", nil)
		c.update(c.becomeAnonymous)
		return err
	}

	if saveErr := c.store.Save(ctx, token, *user); saveErr != nil {
		log.Warn().Err(saveErr).Msg("Failed to refresh stored user")
	}
	c.update(func() { c.user = user })
	return nil
}

func isAuthFailure(err error) bool {
	apiErr := apiclient.Normalize(err)
	switch apiErr.Code {
	case apiclient.CodeNotAuthenticated, apiclient.CodeInvalidCredentials:
		return true
	}
	return apiErr.Status == http.StatusUnauthorized
}

// Login authenticates and persists the session before exposing it.
func (c *Controller) Login(ctx context.Context, email, password string) error {
	return c.authenticate(ctx, func() (*models.AuthResponse, error) {
		return c.client.Login(ctx, email, password)
	})
}

// Register creates an account and signs it in.
func (c *Controller) Register(ctx context.Context, req models.RegisterRequest) error {
	return c.authenticate(ctx, func() (*models.AuthResponse, error) {
		return c.client.Register(ctx, req)
	})
}

func (c *Controller) authenticate(ctx context.Context, call func() (*models.AuthResponse, error)) error {
	c.update(func() {
		c.loading = true
		c.errMsg = ""
	})

	resp, err := call()
	if err != nil {
		msg := apiclient.Normalize(err).Message
		c.update(func() {
			c.loading = false
			c.errMsg = msg
		})
		return err
	}

	c.persistMu.Lock()
	defer c.persistMu.Unlock()
	c.gen++

	if err := c.store.Save(ctx, resp.AccessToken, resp.User); err != nil {
		log.Error().Err(err).Str("user_id", resp.User.ID).Msg("Failed to persist session")
		c.client.SetSession("", nil)
		c.update(func() {
			c.becomeAnonymous()
			c.loading = false
			c.errMsg = "could not save session"
		})
		return fmt.Errorf("persist session: %w", err)
	}

	user := resp.User
	c.update(func() {
		c.state = StateAuthenticated
		c.user = &user
		c.token = resp.AccessToken
		c.loading = false
	})
	log.Info().Str("user_id", user.ID).Msg("Signed in")
	return nil
}

// Logout ends the session. The backend call is best-effort; local state and
// the stored session are always cleared. The returned error only reports a
// failure to clear the store.
func (c *Controller) Logout(ctx context.Context) error {
	c.update(func() { c.loading = true })

	c.persistMu.Lock()
	defer c.persistMu.Unlock()
	c.gen++

	if err := c.client.Logout(ctx); err != nil {
		log.Warn().Err(err).Msg("Remote logout failed")
	}
	clearErr := c.store.Clear(ctx)
	if clearErr != nil {
		log.Error().Err(clearErr).Msg("Failed to clear stored session")
	}
	c.client.SetSession("", nil)

	c.update(func() {
		c.becomeAnonymous()
		c.errMsg = ""
		c.loading = false
	})
	if clearErr != nil {
		return fmt.Errorf("clear session: %w", clearErr)
	}
	return nil
}

// ClearError empties the error slot.
func (c *Controller) ClearError() {
	c.update(func() { c.errMsg = "" })
}
