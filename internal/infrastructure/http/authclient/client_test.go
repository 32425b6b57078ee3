package authclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/sensorwatch/console/internal/core/domain"
	"github.com/sensorwatch/console/internal/core/ports"
	"github.com/sensorwatch/console/internal/infrastructure/devauth"
)

// memCookieStore is an in-memory ports.CookieStore.
type memCookieStore struct {
	mu      sync.Mutex
	data    map[string][]ports.StoredCookie
	saves   int
	loadErr error
}

func newMemCookieStore() *memCookieStore {
	return &memCookieStore{data: make(map[string][]ports.StoredCookie)}
}

func (s *memCookieStore) Load(_ context.Context, origin string) ([]ports.StoredCookie, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	return s.data[origin], nil
}

func (s *memCookieStore) Save(_ context.Context, origin string, cookies []ports.StoredCookie) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	if len(cookies) == 0 {
		delete(s.data, origin)
		return nil
	}
	s.data[origin] = cookies
	return nil
}

func (s *memCookieStore) Clear(_ context.Context, origin string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, origin)
	return nil
}

func (s *memCookieStore) entries() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data)
}

func newDevAuthServer(t *testing.T) *httptest.Server {
	t.Helper()
	svc := devauth.NewService("test-secret", time.Hour)
	if _, err := svc.Register(context.Background(), "Alice", "alice@example.com", "password1", "", domain.RoleUser); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	srv := httptest.NewServer(devauth.NewServer(svc, zerolog.Nop()))
	t.Cleanup(srv.Close)
	return srv
}

func newClient(t *testing.T, baseURL string, store ports.CookieStore) *Client {
	t.Helper()
	c, err := New(context.Background(), Config{BaseURL: baseURL, Timeout: 5 * time.Second, Cookies: store}, zerolog.Nop())
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c
}

func TestNew_RejectsRelativeBase(t *testing.T) {
	if _, err := New(context.Background(), Config{BaseURL: "/api"}, zerolog.Nop()); err == nil {
		t.Fatalf("expected error for relative base url")
	}
}

func TestClient_ProfileReturnsAnyStatusAsData(t *testing.T) {
	srv := newDevAuthServer(t)
	c := newClient(t, srv.URL, nil)

	resp, err := c.Profile(context.Background())
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
	if string(resp.Body) == "" {
		t.Fatalf("expected the error body to be returned")
	}
}

func TestClient_LoginKeepsSessionCookie(t *testing.T) {
	srv := newDevAuthServer(t)
	c := newClient(t, srv.URL, nil)
	ctx := context.Background()

	if err := c.Login(ctx, ports.LoginRequest{Email: "alice@example.com", Password: "password1"}); err != nil {
		t.Fatalf("login: %v", err)
	}

	resp, err := c.Profile(ctx)
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 after login, got %d: %s", resp.StatusCode, resp.Body)
	}

	if err := c.Logout(ctx); err != nil {
		t.Fatalf("logout: %v", err)
	}
	resp, err = c.Profile(ctx)
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 after logout, got %d", resp.StatusCode)
	}
}

func TestClient_LoginFailureCarriesServerMessage(t *testing.T) {
	srv := newDevAuthServer(t)
	c := newClient(t, srv.URL, nil)

	err := c.Login(context.Background(), ports.LoginRequest{Email: "alice@example.com", Password: "wrong-password"})
	var reqErr *domain.RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("expected *domain.RequestError, got %T %v", err, err)
	}
	if reqErr.StatusCode != http.StatusUnauthorized || reqErr.Message != "Invalid credentials" {
		t.Fatalf("unexpected error: %+v", reqErr)
	}
	if reqErr.Path != "/auth/login" {
		t.Fatalf("unexpected path %q", reqErr.Path)
	}
}

func TestClient_SignupJoinsValidationMessages(t *testing.T) {
	srv := newDevAuthServer(t)
	c := newClient(t, srv.URL, nil)

	err := c.Signup(context.Background(), ports.SignupRequest{Name: "Bob", Email: "not-an-email", Password: "password1"})
	if got := domain.MessageOf(err); got != "email must be an email" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestClient_ErrorWithoutMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>bad gateway</html>"))
	}))
	t.Cleanup(srv.Close)
	c := newClient(t, srv.URL, nil)

	err := c.Logout(context.Background())
	var reqErr *domain.RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("expected *domain.RequestError, got %v", err)
	}
	if reqErr.StatusCode != http.StatusBadGateway || reqErr.Message != "" {
		t.Fatalf("unexpected error: %+v", reqErr)
	}
}

func TestClient_TransportFailureIsError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := newClient(t, url, nil)
	if _, err := c.Profile(context.Background()); err == nil {
		t.Fatalf("expected error when the API is unreachable")
	}
}

func TestClient_BaseURLPathIsKept(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)

	c := newClient(t, srv.URL+"/api/v1", nil)
	if err := c.Logout(context.Background()); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if gotPath != "/api/v1/auth/logout" {
		t.Fatalf("unexpected path %q", gotPath)
	}
}

func TestClient_SessionSurvivesRestart(t *testing.T) {
	srv := newDevAuthServer(t)
	store := newMemCookieStore()
	ctx := context.Background()

	first := newClient(t, srv.URL, store)
	if err := first.Login(ctx, ports.LoginRequest{Email: "alice@example.com", Password: "password1"}); err != nil {
		t.Fatalf("login: %v", err)
	}
	if store.entries() != 1 {
		t.Fatalf("expected cookies to be persisted")
	}

	second := newClient(t, srv.URL, store)
	resp, err := second.Profile(ctx)
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected restored session, got %d", resp.StatusCode)
	}

	if err := second.Logout(ctx); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if store.entries() != 0 {
		t.Fatalf("expected persisted cookies to be cleared on logout")
	}
}

func TestNew_ToleratesCookieLoadFailure(t *testing.T) {
	store := newMemCookieStore()
	store.loadErr = errors.New("redis down")

	if _, err := New(context.Background(), Config{BaseURL: "http://localhost:8000", Cookies: store}, zerolog.Nop()); err != nil {
		t.Fatalf("load failure must not prevent startup: %v", err)
	}
}

func TestMessageFrom(t *testing.T) {
	cases := map[string]string{
		`{"message":"Invalid credentials"}`:   "Invalid credentials",
		`{"message":["a is bad","b is bad"]}`: "a is bad, b is bad",
		`{"message":42}`:                      "",
		`{"error":"nope"}`:                    "",
		`not json`:                            "",
		``:                                    "",
	}
	for body, want := range cases {
		if got := messageFrom([]byte(body)); got != want {
			t.Errorf("messageFrom(%q) = %q, want %q", body, got, want)
		}
	}
}
