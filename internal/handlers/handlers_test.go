package handlers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"surfapp/internal/apiclient"
	"surfapp/internal/memory"
	"surfapp/internal/metrics"
	"surfapp/internal/services"

	"github.com/goccy/go-json"
	"golang.org/x/crypto/bcrypt"
)

type testServer struct {
	*httptest.Server
	tokens *services.TokenService
	db     *memory.DB
}

func newTestServer(t *testing.T, mutate func(*RouterDeps)) *testServer {
	t.Helper()
	db := memory.New()
	if err := memory.Seed(context.Background(), db); err != nil {
		t.Fatal(err)
	}
	tokens := services.NewTokenService("handler-secret", time.Hour)
	deps := RouterDeps{
		Backend:    db,
		Tokens:     tokens,
		Metrics:    metrics.New(),
		BcryptCost: bcrypt.MinCost,
	}
	if mutate != nil {
		mutate(&deps)
	}
	srv := httptest.NewServer(NewRouter(deps))
	t.Cleanup(srv.Close)
	return &testServer{Server: srv, tokens: tokens, db: db}
}

func (s *testServer) do(t *testing.T, method, path, token, body string) (*http.Response, ErrorResponse) {
	t.Helper()
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, s.URL+path, rdr)
	if err != nil {
		t.Fatal(err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var er ErrorResponse
	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		_ = json.Unmarshal(data, &er)
	}
	return resp, er
}

func TestErrorStatusMapping(t *testing.T) {
	srv := newTestServer(t, nil)
	surferToken, _ := srv.tokens.GenerateJWT("u-surfer")
	ghostToken, _ := srv.tokens.GenerateJWT("u-deleted")

	tests := []struct {
		name       string
		method     string
		path       string
		token      string
		body       string
		wantStatus int
		wantCode   apiclient.Code
	}{
		{"no token", "GET", "/api/bookings/me", "", "", 401, apiclient.CodeNotAuthenticated},
		{"bad token", "GET", "/api/bookings/me", "garbage", "", 401, apiclient.CodeNotAuthenticated},
		{"token of a deleted user", "GET", "/api/auth/me", ghostToken, "", 401, apiclient.CodeNotAuthenticated},
		{"wrong password", "POST", "/api/auth/login", "", `{"email":"surfer@surfapp.dev","password":"nope"}`, 401, apiclient.CodeInvalidCredentials},
		{"malformed body", "POST", "/api/auth/login", "", `{"email":`, 400, apiclient.CodeValidation},
		{"invalid filter", "GET", "/api/photographers?min_rating=high", "", "", 400, apiclient.CodeValidation},
		{"missing photographer", "GET", "/api/photographers/ph-nope", "", "", 404, apiclient.CodeNotFound},
		{"duplicate email", "POST", "/api/auth/register", "", `{"email":"surfer@surfapp.dev","password":"secret1","name":"X","role":"surfer"}`, 409, apiclient.CodeDuplicateEmail},
		{"invalid booking", "POST", "/api/bookings", surferToken, `{"photographer_id":"ph-tomas","spot":"Pichilemu","date":"tomorrow","time":"08:00","duration_hours":2}`, 422, apiclient.CodeValidation},
		{"bad transition", "PATCH", "/api/bookings/bk-demo", surferToken, `{"status":"cancelled"}`, 409, apiclient.CodeInvalidTransition},
		{"presign without bucket", "POST", "/api/sessions/ss-demo/media/presign", surferToken, `{"filename":"a.jpg"}`, 501, apiclient.CodeNotImplemented},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp, er := srv.do(t, tc.method, tc.path, tc.token, tc.body)
			if resp.StatusCode != tc.wantStatus {
				t.Errorf("status = %d; want %d", resp.StatusCode, tc.wantStatus)
			}
			if er.Code != tc.wantCode || er.Message == "" {
				t.Errorf("body = %+v; want code %s", er, tc.wantCode)
			}
			if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q", ct)
			}
		})
	}
}

func TestValidationDetailsListFields(t *testing.T) {
	srv := newTestServer(t, nil)
	_, er := srv.do(t, "POST", "/api/auth/register", "", `{"email":"bad","password":"1","name":"","role":"admin"}`)

	fields, ok := er.Details["fields"].(map[string]any)
	if !ok {
		t.Fatalf("details = %#v", er.Details)
	}
	for _, f := range []string{"email", "password", "name", "role"} {
		if _, ok := fields[f]; !ok {
			t.Errorf("field %q missing from %v", f, fields)
		}
	}
}

func TestEmptyListsEncodeAsArrays(t *testing.T) {
	srv := newTestServer(t, nil)
	resp, err := http.Get(srv.URL + "/api/photographers?spot=Antarctica")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if strings.TrimSpace(string(body)) != "[]" {
		t.Errorf("body = %s; want []", body)
	}
}

func TestLogoutIsNoContent(t *testing.T) {
	srv := newTestServer(t, nil)
	token, _ := srv.tokens.GenerateJWT("u-surfer")
	resp, _ := srv.do(t, "POST", "/api/auth/logout", token, "")
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("status = %d; want 204", resp.StatusCode)
	}
}

func TestAuthRateLimit(t *testing.T) {
	srv := newTestServer(t, func(d *RouterDeps) {
		d.AuthRateLimit = 2
		d.AuthRateWindow = time.Minute
	})

	body := `{"email":"surfer@surfapp.dev","password":"nope"}`
	var last int
	for i := 0; i < 3; i++ {
		resp, _ := srv.do(t, "POST", "/api/auth/login", "", body)
		last = resp.StatusCode
	}
	if last != http.StatusTooManyRequests {
		t.Errorf("third login status = %d; want 429", last)
	}

	resp, _ := srv.do(t, "GET", "/api/photographers", "", "")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("directory should not be rate limited, got %d", resp.StatusCode)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t, nil)
	srv.do(t, "GET", "/api/photographers", "", "")

	resp, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	for _, want := range []string{"surfapp_http_requests_total", `route="/api/photographers"`} {
		if !strings.Contains(string(body), want) {
			t.Errorf("metrics output missing %s", want)
		}
	}
}
