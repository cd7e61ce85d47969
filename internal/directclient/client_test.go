package directclient

import (
	"context"
	"errors"
	"testing"

	"surfapp/internal/apiclient"
	"surfapp/internal/backend"
	"surfapp/internal/memory"
	"surfapp/internal/models"

	"golang.org/x/crypto/bcrypt"
)

// faultyBackend overrides selected backend calls.
type faultyBackend struct {
	backend.Backend
	listLogs      func(ctx context.Context, sessionID string) ([]models.LogEntry, error)
	findUserEmail func(ctx context.Context, email string) (*backend.UserRecord, error)
	getUser       func(ctx context.Context, id string) (*models.User, error)
}

func (f *faultyBackend) GetUser(ctx context.Context, id string) (*models.User, error) {
	if f.getUser != nil {
		return f.getUser(ctx, id)
	}
	return f.Backend.GetUser(ctx, id)
}

func (f *faultyBackend) ListLogs(ctx context.Context, sessionID string) ([]models.LogEntry, error) {
	if f.listLogs != nil {
		return f.listLogs(ctx, sessionID)
	}
	return f.Backend.ListLogs(ctx, sessionID)
}

func (f *faultyBackend) FindUserByEmail(ctx context.Context, email string) (*backend.UserRecord, error) {
	if f.findUserEmail != nil {
		return f.findUserEmail(ctx, email)
	}
	return f.Backend.FindUserByEmail(ctx, email)
}

func newSeeded(t *testing.T) (*Client, *memory.DB) {
	t.Helper()
	db := memory.New()
	if err := memory.Seed(context.Background(), db); err != nil {
		t.Fatalf("Seed() error = %v", err)
	}
	return New(db, WithBcryptCost(bcrypt.MinCost)), db
}

func login(t *testing.T, c *Client, email string) *models.AuthResponse {
	t.Helper()
	resp, err := c.Login(context.Background(), email, memory.DemoPassword)
	if err != nil {
		t.Fatalf("Login(%s) error = %v", email, err)
	}
	return resp
}

func TestLoginUnifiesCredentialFailures(t *testing.T) {
	c, _ := newSeeded(t)
	ctx := context.Background()

	_, unknown := c.Login(ctx, "nobody@surfapp.dev", "whatever")
	_, wrong := c.Login(ctx, "surfer@surfapp.dev", "wrong-password")

	for name, err := range map[string]error{"unknown email": unknown, "wrong password": wrong} {
		if !errors.Is(err, apiclient.ErrInvalidCredentials) {
			t.Errorf("%s: err = %v; want INVALID_CREDENTIALS", name, err)
		}
	}
	if unknown.Error() != wrong.Error() {
		t.Errorf("messages differ: %q vs %q", unknown.Error(), wrong.Error())
	}
	if c.Token() != "" {
		t.Error("failed login must not set a session")
	}
}

func TestLoginMalformedEmailIsInvalidCredentials(t *testing.T) {
	c, _ := newSeeded(t)
	for _, email := range []string{"nobody", "", "ana@", "   "} {
		_, err := c.Login(context.Background(), email, "whatever")
		if code := apiclient.CodeOf(err); code != apiclient.CodeInvalidCredentials {
			t.Errorf("Login(%q) code = %s; want %s", email, code, apiclient.CodeInvalidCredentials)
		}
	}
}

func TestFetchCurrentUserAfterConcurrentLogout(t *testing.T) {
	db := memory.New()
	if err := memory.Seed(context.Background(), db); err != nil {
		t.Fatal(err)
	}
	fb := &faultyBackend{Backend: db}
	c := New(fb, WithBcryptCost(bcrypt.MinCost))
	login(t, c, "surfer@surfapp.dev")

	fb.getUser = func(ctx context.Context, id string) (*models.User, error) {
		_ = c.Logout(ctx)
		return db.GetUser(ctx, id)
	}
	if _, err := c.FetchCurrentUser(context.Background()); err != nil {
		t.Fatalf("FetchCurrentUser() error = %v", err)
	}

	if _, err := c.GetCurrentUser(context.Background()); !errors.Is(err, apiclient.ErrNotAuthenticated) {
		t.Errorf("GetCurrentUser() after logout err = %v; want NOT_AUTHENTICATED", err)
	}
	if c.Token() != "" {
		t.Errorf("token = %q; want empty", c.Token())
	}
}

func TestLoginSetsCurrentUser(t *testing.T) {
	c, _ := newSeeded(t)
	ctx := context.Background()

	if _, err := c.GetCurrentUser(ctx); !errors.Is(err, apiclient.ErrNotAuthenticated) {
		t.Fatalf("before login err = %v; want NOT_AUTHENTICATED", err)
	}

	resp := login(t, c, "Surfer@SurfApp.dev")
	if resp.TokenType != "bearer" || resp.AccessToken == "" {
		t.Errorf("unexpected auth response %+v", resp)
	}
	if c.Token() != resp.AccessToken {
		t.Error("token not installed")
	}

	u, err := c.GetCurrentUser(ctx)
	if err != nil || u.ID != "u-surfer" {
		t.Fatalf("GetCurrentUser() = %v, %v", u, err)
	}

	other := login(t, New(c.backend), "surfer@surfapp.dev")
	if other.AccessToken == resp.AccessToken {
		t.Error("tokens should be random per login")
	}

	if err := c.Logout(ctx); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
	if _, err := c.GetCurrentUser(ctx); !errors.Is(err, apiclient.ErrNotAuthenticated) {
		t.Errorf("after logout err = %v", err)
	}
}

func TestLoginBackendFailureIsDatabaseError(t *testing.T) {
	_, db := newSeeded(t)
	c := New(&faultyBackend{
		Backend: db,
		findUserEmail: func(ctx context.Context, email string) (*backend.UserRecord, error) {
			return nil, errors.New("connection reset")
		},
	})

	_, err := c.Login(context.Background(), "surfer@surfapp.dev", memory.DemoPassword)
	if !errors.Is(err, apiclient.ErrDatabase) {
		t.Fatalf("err = %v; want DATABASE_ERROR", err)
	}
}

func TestRegister(t *testing.T) {
	c, _ := newSeeded(t)
	ctx := context.Background()

	resp, err := c.Register(ctx, models.RegisterRequest{
		Email: "  New.Surfer@Example.com ", Password: "secret1", Name: "Nina", Role: models.RoleSurfer,
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if resp.User.Email != "new.surfer@example.com" {
		t.Errorf("email = %q; want normalized", resp.User.Email)
	}
	if u, _ := c.GetCurrentUser(ctx); u == nil || u.ID != resp.User.ID {
		t.Error("register should set the current user")
	}

	fresh := New(c.backend, WithBcryptCost(bcrypt.MinCost))
	if _, err := fresh.Login(ctx, "new.surfer@example.com", "secret1"); err != nil {
		t.Errorf("login with new account failed: %v", err)
	}

	_, err = fresh.Register(ctx, models.RegisterRequest{
		Email: "NEW.SURFER@example.com", Password: "secret1", Name: "Nina", Role: models.RoleSurfer,
	})
	if !errors.Is(err, apiclient.ErrDuplicateEmail) {
		t.Errorf("err = %v; want DUPLICATE_EMAIL", err)
	}

	_, err = fresh.Register(ctx, models.RegisterRequest{Email: "x@example.com", Password: "1", Name: "X", Role: "admin"})
	if !errors.Is(err, apiclient.ErrValidation) {
		t.Errorf("err = %v; want VALIDATION_ERROR", err)
	}
}

func TestListPhotographersSpotFilter(t *testing.T) {
	c, _ := newSeeded(t)
	ctx := context.Background()

	spot := "lobos"
	got, err := c.ListPhotographers(ctx, models.PhotographerFilters{Spot: &spot})
	if err != nil {
		t.Fatalf("ListPhotographers() error = %v", err)
	}
	if len(got) != 1 || got[0].ID != "ph-cata" {
		t.Errorf("got %+v; want only ph-cata", got)
	}

	spot = "arica"
	none, err := c.ListPhotographers(ctx, models.PhotographerFilters{Spot: &spot})
	if err != nil || none == nil || len(none) != 0 {
		t.Errorf("unmatched filter should give an empty list, got %v, %v", none, err)
	}

	avail := true
	list, _ := c.ListPhotographers(ctx, models.PhotographerFilters{AvailableOnly: &avail})
	if len(list) != 2 {
		t.Errorf("available only = %d; want 2", len(list))
	}

	if _, err := c.GetPhotographer(ctx, "missing"); !errors.Is(err, apiclient.ErrNotFound) {
		t.Errorf("err = %v; want NOT_FOUND", err)
	}
}

func bookingRequest() models.CreateBookingRequest {
	return models.CreateBookingRequest{
		PhotographerID: "ph-tomas",
		Spot:           "Pichilemu",
		Date:           "2026-12-01",
		Time:           "08:00",
		DurationHours:  2,
	}
}

func TestCreateBooking(t *testing.T) {
	c, db := newSeeded(t)
	ctx := context.Background()

	if _, err := c.CreateBooking(ctx, bookingRequest()); !errors.Is(err, apiclient.ErrNotAuthenticated) {
		t.Fatalf("anonymous err = %v; want NOT_AUTHENTICATED", err)
	}

	login(t, c, "surfer@surfapp.dev")
	b, err := c.CreateBooking(ctx, bookingRequest())
	if err != nil {
		t.Fatalf("CreateBooking() error = %v", err)
	}
	if b.Status != models.BookingPending {
		t.Errorf("status = %s; want pending", b.Status)
	}
	if b.PhotographerID != "u-tomas" {
		t.Errorf("photographer id = %s; want the owning user id", b.PhotographerID)
	}
	if b.Price != 35000 || b.Currency != "CLP" || b.PhotographerName != "Tomás Vidal" {
		t.Errorf("unexpected booking %+v", b)
	}

	// Later price changes do not touch existing bookings.
	if err := db.SetPrice("ph-tomas", 99000); err != nil {
		t.Fatal(err)
	}
	again, err := c.GetBooking(ctx, b.ID)
	if err != nil || again.Price != 35000 {
		t.Errorf("booking price changed: %v, %v", again, err)
	}

	req := bookingRequest()
	req.PhotographerID = "missing"
	if _, err := c.CreateBooking(ctx, req); !errors.Is(err, apiclient.ErrNotFound) {
		t.Errorf("err = %v; want NOT_FOUND", err)
	}

	req = bookingRequest()
	req.Date = "01-12-2026"
	if _, err := c.CreateBooking(ctx, req); !errors.Is(err, apiclient.ErrValidation) {
		t.Errorf("err = %v; want VALIDATION_ERROR", err)
	}

	photographer, _ := newSeeded(t)
	login(t, photographer, "tomas@surfapp.dev")
	if _, err := photographer.CreateBooking(ctx, bookingRequest()); !errors.Is(err, apiclient.ErrForbidden) {
		t.Errorf("photographer err = %v; want FORBIDDEN", err)
	}
}

func TestBookingLifecycle(t *testing.T) {
	_, db := newSeeded(t)
	ctx := context.Background()

	surfer := New(db, WithBcryptCost(bcrypt.MinCost))
	login(t, surfer, "surfer@surfapp.dev")
	photographer := New(db, WithBcryptCost(bcrypt.MinCost))
	login(t, photographer, "tomas@surfapp.dev")

	b, err := surfer.CreateBooking(ctx, bookingRequest())
	if err != nil {
		t.Fatalf("CreateBooking() error = %v", err)
	}

	if _, err := surfer.UpdateBookingStatus(ctx, b.ID, models.BookingConfirmed); !errors.Is(err, apiclient.ErrForbidden) {
		t.Errorf("surfer confirm err = %v; want FORBIDDEN", err)
	}

	confirmed, err := photographer.UpdateBookingStatus(ctx, b.ID, models.BookingConfirmed)
	if err != nil || confirmed.Status != models.BookingConfirmed {
		t.Fatalf("confirm = %v, %v", confirmed, err)
	}

	sessions, _ := surfer.ListMySessions(ctx)
	var scheduled bool
	for _, s := range sessions {
		if s.BookingID == b.ID && s.Status == models.SessionScheduled {
			scheduled = true
		}
	}
	if !scheduled {
		t.Error("confirming a booking should schedule its session")
	}

	if _, err := surfer.CancelBooking(ctx, b.ID); !errors.Is(err, apiclient.ErrInvalidTransition) {
		t.Errorf("cancel confirmed err = %v; want INVALID_STATUS_TRANSITION", err)
	}

	if _, err := photographer.UpdateBookingStatus(ctx, b.ID, "archived"); !errors.Is(err, apiclient.ErrValidation) {
		t.Errorf("unknown status err = %v; want VALIDATION_ERROR", err)
	}

	stranger := New(db, WithBcryptCost(bcrypt.MinCost))
	login(t, stranger, "ana@surfapp.dev")
	if _, err := stranger.GetBooking(ctx, b.ID); !errors.Is(err, apiclient.ErrNotFound) {
		t.Errorf("stranger err = %v; want NOT_FOUND", err)
	}

	mine, _ := photographer.ListMyBookings(ctx)
	if len(mine) != 1 || mine[0].ID != b.ID {
		t.Errorf("photographer bookings = %+v", mine)
	}
}

func TestSessionsAndStorage(t *testing.T) {
	c, _ := newSeeded(t)
	ctx := context.Background()
	login(t, c, "surfer@surfapp.dev")

	sessions, err := c.ListMySessions(ctx)
	if err != nil || len(sessions) != 1 {
		t.Fatalf("ListMySessions() = %v, %v", sessions, err)
	}
	s := sessions[0]
	if s.MediaCount != 3 || s.Conditions == nil || *s.Conditions.WaveHeight != 2.1 {
		t.Errorf("unexpected session %+v", s)
	}

	media, err := c.GetSessionMedia(ctx, s.ID)
	if err != nil || len(media) != 3 {
		t.Errorf("GetSessionMedia() = %d items, %v", len(media), err)
	}

	logs, err := c.GetSessionLogs(ctx, s.ID)
	if err != nil || len(logs) != 2 {
		t.Errorf("GetSessionLogs() = %v, %v", logs, err)
	}

	usage, err := c.GetStorageUsage(ctx)
	if err != nil {
		t.Fatalf("GetStorageUsage() error = %v", err)
	}
	if usage.UsedBytes != 66_100_000 || usage.TotalBytes != 5*1024*1024*1024 || usage.Plan != "Free Plan" {
		t.Errorf("usage = %+v", usage)
	}

	if _, err := c.GetSession(ctx, "missing"); !errors.Is(err, apiclient.ErrNotFound) {
		t.Errorf("err = %v; want NOT_FOUND", err)
	}

	if _, err := c.GetPresignedUploadURL(ctx, s.ID, "a.jpg", "image/jpeg"); !errors.Is(err, apiclient.ErrNotImplemented) {
		t.Errorf("presign err = %v; want NOT_IMPLEMENTED", err)
	}
}

func TestSessionLogsFailureDegradesToEmpty(t *testing.T) {
	_, db := newSeeded(t)
	c := New(&faultyBackend{
		Backend: db,
		listLogs: func(ctx context.Context, sessionID string) ([]models.LogEntry, error) {
			return nil, errors.New("relation logs does not exist")
		},
	}, WithBcryptCost(bcrypt.MinCost))
	login(t, c, "surfer@surfapp.dev")

	logs, err := c.GetSessionLogs(context.Background(), "ss-demo")
	if err != nil {
		t.Fatalf("GetSessionLogs() error = %v; want nil", err)
	}
	if logs == nil || len(logs) != 0 {
		t.Errorf("logs = %v; want empty non-nil list", logs)
	}
}

func TestFetchCurrentUserDetectsDeletedUser(t *testing.T) {
	c, _ := newSeeded(t)
	c.SetSession("restored-token", &models.User{ID: "u-gone", Role: models.RoleSurfer})

	_, err := c.FetchCurrentUser(context.Background())
	if !errors.Is(err, apiclient.ErrNotAuthenticated) {
		t.Errorf("err = %v; want NOT_AUTHENTICATED", err)
	}
}
