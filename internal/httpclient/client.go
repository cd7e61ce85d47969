// Package httpclient implements apiclient.Client against the surfapp REST API.
package httpclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"surfapp/internal/apiclient"
	"surfapp/internal/metrics"
	"surfapp/internal/models"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	gobreaker "github.com/sony/gobreaker/v2"
)

const (
	transportName = "http"

	DefaultBaseURL = "http://localhost:8000/api"
	DefaultTimeout = 30 * time.Second
)

// Client is the REST transport. Each Client owns its session.
type Client struct {
	baseURL    string
	timeout    time.Duration
	http       *http.Client
	breaker    *gobreaker.CircuitBreaker[*response]
	breakerCfg *BreakerConfig
	metrics    *metrics.Metrics
	session    apiclient.Session
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithMetrics records every operation on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithBreaker guards every request with a circuit breaker.
func WithBreaker(cfg BreakerConfig) Option {
	return func(c *Client) { c.breakerCfg = &cfg }
}

// New creates a client for baseURL. A zero timeout means DefaultTimeout.
func New(baseURL string, timeout time.Duration, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		http:    &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.breakerCfg != nil {
		c.breaker = newBreaker(*c.breakerCfg, c.metrics)
	}
	return c
}

var _ apiclient.Client = (*Client)(nil)

// response is a fully read HTTP response.
type response struct {
	status int
	body   []byte
}

// serverError marks a 5xx response so the breaker counts it as a failure.
type serverError struct {
	resp *response
}

func (e *serverError) Error() string {
	return fmt.Sprintf("server error: status %d", e.resp.status)
}

// errorBody is the structured error a server may send with a non-2xx status.
type errorBody struct {
	Message string          `json:"message"`
	Detail  json.RawMessage `json:"detail"`
	Error   string          `json:"error"`
	Code    string          `json:"code"`
	Details map[string]any  `json:"details"`
}

// request sends one JSON request and decodes the JSON answer into out.
func (c *Client) request(ctx context.Context, op, method, path string, query url.Values, in, out any) (err error) {
	started := time.Now()
	defer func() {
		c.metrics.ObserveOperation(transportName, op, string(apiclient.CodeOf(err)), started)
	}()

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return apiclient.Wrap(apiclient.CodeUnknown, "failed to encode request", err)
		}
		body = bytes.NewReader(data)
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, method, c.baseURL+path, body)
	if err != nil {
		return apiclient.Wrap(apiclient.CodeNetwork, "invalid request: "+err.Error(), err)
	}
	if len(query) > 0 {
		req.URL.RawQuery = query.Encode()
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.session.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.send(req)
	if err != nil {
		return c.transportError(ctx, op, err)
	}

	if resp.status < 200 || resp.status >= 300 {
		return parseError(resp)
	}
	if out == nil || len(bytes.TrimSpace(resp.body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.body, out); err != nil {
		return &apiclient.Error{
			Code:    apiclient.CodeHTTP,
			Message: "invalid response body",
			Status:  resp.status,
			Err:     err,
		}
	}
	return nil
}

// send performs req, through the breaker when one is configured. 5xx
// responses are returned as regular responses.
func (c *Client) send(req *http.Request) (*response, error) {
	if c.breaker == nil {
		resp, err := c.roundTrip(req)
		var se *serverError
		if errors.As(err, &se) {
			return se.resp, nil
		}
		return resp, err
	}

	resp, err := c.breaker.Execute(func() (*response, error) {
		return c.roundTrip(req)
	})
	var se *serverError
	if errors.As(err, &se) {
		return se.resp, nil
	}
	return resp, err
}

func (c *Client) roundTrip(req *http.Request) (*response, error) {
	httpResp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	resp := &response{status: httpResp.StatusCode, body: data}
	if resp.status >= 500 {
		return nil, &serverError{resp: resp}
	}
	return resp, nil
}

// transportError classifies a failure that produced no HTTP response.
func (c *Client) transportError(parent context.Context, op string, err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		log.Warn().Err(err).Str("operation", op).Msg("Request rejected by circuit breaker")
		return apiclient.Wrap(apiclient.CodeBackendUnavailable, "backend unavailable, try again later", err)
	}
	if errors.Is(parent.Err(), context.Canceled) {
		return apiclient.Wrap(apiclient.CodeCancelled, "request cancelled", err)
	}
	var netErr interface{ Timeout() bool }
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return apiclient.Wrap(apiclient.CodeTimeout, "request timeout", err)
	}
	return apiclient.Wrap(apiclient.CodeNetwork, "network error: "+unwrapURLError(err).Error(), err)
}

func unwrapURLError(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil {
		return urlErr.Err
	}
	return err
}

// parseError builds the error for a non-2xx response. A body that cannot be
// parsed leaves the status-derived message in place.
func parseError(resp *response) error {
	apiErr := &apiclient.Error{
		Code:    apiclient.CodeHTTP,
		Message: fmt.Sprintf("HTTP Error: %d", resp.status),
		Status:  resp.status,
	}

	var eb errorBody
	if err := json.Unmarshal(resp.body, &eb); err != nil {
		return apiErr
	}
	switch {
	case eb.Message != "":
		apiErr.Message = eb.Message
	case detailString(eb.Detail) != "":
		apiErr.Message = detailString(eb.Detail)
	case eb.Error != "":
		apiErr.Message = eb.Error
	}
	if eb.Code != "" {
		apiErr.Code = apiclient.Code(eb.Code)
	}
	apiErr.Details = eb.Details
	if apiErr.Details == nil && len(eb.Detail) > 0 && detailString(eb.Detail) == "" {
		var detail any
		if json.Unmarshal(eb.Detail, &detail) == nil {
			apiErr.Details = map[string]any{"detail": detail}
		}
	}
	return apiErr
}

func detailString(raw json.RawMessage) string {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return s
}

func notAuthenticated() error {
	return apiclient.Newf(apiclient.CodeNotAuthenticated, "not authenticated")
}

// --- auth ---

func (c *Client) Login(ctx context.Context, email, password string) (*models.AuthResponse, error) {
	var resp models.AuthResponse
	err := c.request(ctx, "login", http.MethodPost, "/auth/login", nil,
		models.LoginRequest{Email: email, Password: password}, &resp)
	if err != nil {
		return nil, err
	}
	c.session.Set(resp.AccessToken, &resp.User)
	return &resp, nil
}

func (c *Client) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	var resp models.AuthResponse
	if err := c.request(ctx, "register", http.MethodPost, "/auth/register", nil, req, &resp); err != nil {
		return nil, err
	}
	c.session.Set(resp.AccessToken, &resp.User)
	return &resp, nil
}

// GetCurrentUser returns the cached user, asking /auth/me only when a token
// is set but no user is known.
func (c *Client) GetCurrentUser(ctx context.Context) (*models.User, error) {
	if u := c.session.User(); u != nil {
		return u, nil
	}
	if c.session.Token() == "" {
		return nil, notAuthenticated()
	}
	return c.FetchCurrentUser(ctx)
}

func (c *Client) FetchCurrentUser(ctx context.Context) (*models.User, error) {
	token := c.session.Token()
	if token == "" {
		return nil, notAuthenticated()
	}
	var user models.User
	if err := c.request(ctx, "fetch_current_user", http.MethodGet, "/auth/me", nil, nil, &user); err != nil {
		return nil, err
	}
	c.session.Refresh(token, &user)
	return &user, nil
}

// Logout tells the server when a token is set, then always drops the local
// session. Server failures are logged and otherwise ignored.
func (c *Client) Logout(ctx context.Context) error {
	if c.session.Token() != "" {
		if err := c.request(ctx, "logout", http.MethodPost, "/auth/logout", nil, nil, nil); err != nil {
			log.Warn().Err(err).Msg("Remote logout failed")
		}
	}
	c.session.Clear()
	return nil
}

func (c *Client) SetSession(token string, user *models.User) {
	c.session.Set(token, user)
}

func (c *Client) Token() string {
	return c.session.Token()
}

// --- photographers ---

// PhotographerQuery encodes filters as query parameters. Unset filters are
// left out.
func PhotographerQuery(f models.PhotographerFilters) url.Values {
	q := url.Values{}
	if f.Spot != nil {
		q.Set("spot", *f.Spot)
	}
	if f.MinRating != nil {
		q.Set("min_rating", strconv.FormatFloat(*f.MinRating, 'f', -1, 64))
	}
	if f.MaxPrice != nil {
		q.Set("max_price", strconv.FormatFloat(*f.MaxPrice, 'f', -1, 64))
	}
	if f.AvailableOnly != nil {
		q.Set("available_only", strconv.FormatBool(*f.AvailableOnly))
	}
	return q
}

func (c *Client) ListPhotographers(ctx context.Context, filters models.PhotographerFilters) ([]models.Photographer, error) {
	list := []models.Photographer{}
	if err := c.request(ctx, "list_photographers", http.MethodGet, "/photographers", PhotographerQuery(filters), nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *Client) GetPhotographer(ctx context.Context, id string) (*models.Photographer, error) {
	var p models.Photographer
	if err := c.request(ctx, "get_photographer", http.MethodGet, "/photographers/"+url.PathEscape(id), nil, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// --- bookings ---

func (c *Client) CreateBooking(ctx context.Context, req models.CreateBookingRequest) (*models.Booking, error) {
	var b models.Booking
	if err := c.request(ctx, "create_booking", http.MethodPost, "/bookings", nil, req, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (c *Client) ListMyBookings(ctx context.Context) ([]models.Booking, error) {
	list := []models.Booking{}
	if err := c.request(ctx, "list_my_bookings", http.MethodGet, "/bookings/me", nil, nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *Client) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	var b models.Booking
	if err := c.request(ctx, "get_booking", http.MethodGet, "/bookings/"+url.PathEscape(id), nil, nil, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// StatusUpdate is the body of PATCH /bookings/{id}.
type StatusUpdate struct {
	Status models.BookingStatus `json:"status"`
}

func (c *Client) UpdateBookingStatus(ctx context.Context, id string, status models.BookingStatus) (*models.Booking, error) {
	var b models.Booking
	err := c.request(ctx, "update_booking_status", http.MethodPatch, "/bookings/"+url.PathEscape(id), nil,
		StatusUpdate{Status: status}, &b)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (c *Client) CancelBooking(ctx context.Context, id string) (*models.Booking, error) {
	return c.UpdateBookingStatus(ctx, id, models.BookingCancelled)
}

// --- sessions ---

func (c *Client) ListMySessions(ctx context.Context) ([]models.Session, error) {
	list := []models.Session{}
	if err := c.request(ctx, "list_my_sessions", http.MethodGet, "/surfers/sessions", nil, nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *Client) GetSession(ctx context.Context, id string) (*models.Session, error) {
	var s models.Session
	if err := c.request(ctx, "get_session", http.MethodGet, "/sessions/"+url.PathEscape(id), nil, nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) GetSessionMedia(ctx context.Context, sessionID string) ([]models.Media, error) {
	list := []models.Media{}
	path := "/sessions/" + url.PathEscape(sessionID) + "/media"
	if err := c.request(ctx, "get_session_media", http.MethodGet, path, nil, nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// GetSessionLogs never fails: any error is logged and reported as no logs.
func (c *Client) GetSessionLogs(ctx context.Context, sessionID string) ([]models.LogEntry, error) {
	list := []models.LogEntry{}
	path := "/sessions/" + url.PathEscape(sessionID) + "/logs"
	if err := c.request(ctx, "get_session_logs", http.MethodGet, path, nil, nil, &list); err != nil {
		log.Warn().Err(err).Str("session_id", sessionID).Msg("Failed to fetch session logs")
		return []models.LogEntry{}, nil
	}
	return list, nil
}

// --- uploads and storage ---

// PresignRequest is the body of POST /sessions/{id}/media/presign.
type PresignRequest struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
}

func (c *Client) GetPresignedUploadURL(ctx context.Context, sessionID, filename, contentType string) (*models.PresignedUpload, error) {
	var p models.PresignedUpload
	path := "/sessions/" + url.PathEscape(sessionID) + "/media/presign"
	err := c.request(ctx, "presign_upload", http.MethodPost, path, nil,
		PresignRequest{Filename: filename, ContentType: contentType}, &p)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// UploadFile PUTs body to a presigned URL. No bearer token is sent; the URL
// carries its own authorization.
func (c *Client) UploadFile(ctx context.Context, uploadURL, contentType string, body io.Reader) (err error) {
	started := time.Now()
	defer func() {
		c.metrics.ObserveOperation(transportName, "upload_file", string(apiclient.CodeOf(err)), started)
	}()

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPut, uploadURL, body)
	if err != nil {
		return apiclient.Wrap(apiclient.CodeNetwork, "invalid upload url: "+err.Error(), err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return c.transportError(ctx, "upload_file", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &apiclient.Error{Code: apiclient.CodeHTTP, Message: "failed to upload file", Status: resp.StatusCode}
	}
	return nil
}

func (c *Client) GetStorageUsage(ctx context.Context) (*models.StorageUsage, error) {
	var u models.StorageUsage
	if err := c.request(ctx, "get_storage_usage", http.MethodGet, "/me/storage-usage", nil, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}
