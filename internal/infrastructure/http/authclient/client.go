// Package authclient is the console's transport to the monitoring API's auth
// endpoints. Credentials travel as cookies held in the client's jar.
package authclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/sensorwatch/console/internal/api/metrics"
	"github.com/sensorwatch/console/internal/core/domain"
	"github.com/sensorwatch/console/internal/core/ports"
)

const maxBodyBytes = 1 << 20

// Config describes how to reach the API.
type Config struct {
	BaseURL string
	// Timeout bounds each request; zero means no timeout.
	Timeout time.Duration
	// Cookies, when set, mirrors the jar so sessions survive restarts.
	Cookies ports.CookieStore
}

// Client implements ports.AuthTransport over HTTP.
type Client struct {
	base *url.URL
	http *http.Client
	log  zerolog.Logger
}

var _ ports.AuthTransport = (*Client)(nil)

// New builds a client bound to cfg.BaseURL. When a cookie store is configured,
// previously saved cookies are loaded into the jar before New returns.
func New(ctx context.Context, cfg Config, log zerolog.Logger) (*Client, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("authclient: base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("authclient: base url %q is not absolute", cfg.BaseURL)
	}

	log = log.With().Str("component", "authclient").Logger()
	jar, err := newPersistentJar(base, cfg.Cookies, log)
	if err != nil {
		return nil, err
	}
	if err := jar.load(ctx); err != nil {
		log.Warn().Err(err).Msg("could not load persisted cookies")
	}

	return &Client{
		base: base,
		http: &http.Client{Jar: jar, Timeout: cfg.Timeout},
		log:  log,
	}, nil
}

// Profile calls GET /auth/profile. Every HTTP answer, whatever its status, is
// returned as data; only a failure to get an answer is an error.
func (c *Client) Profile(ctx context.Context) (*ports.ProfileResponse, error) {
	status, body, err := c.do(ctx, http.MethodGet, "auth/profile", "profile", nil)
	if err != nil {
		return nil, err
	}
	return &ports.ProfileResponse{StatusCode: status, Body: body}, nil
}

// Login calls POST /auth/login.
func (c *Client) Login(ctx context.Context, req ports.LoginRequest) error {
	return c.expectOK(ctx, http.MethodPost, "auth/login", "login", req)
}

// Signup calls POST /auth/signup.
func (c *Client) Signup(ctx context.Context, req ports.SignupRequest) error {
	return c.expectOK(ctx, http.MethodPost, "auth/signup", "signup", req)
}

// Logout calls POST /auth/logout.
func (c *Client) Logout(ctx context.Context) error {
	return c.expectOK(ctx, http.MethodPost, "auth/logout", "logout", nil)
}

func (c *Client) expectOK(ctx context.Context, method, path, endpoint string, payload any) error {
	status, body, err := c.do(ctx, method, path, endpoint, payload)
	if err != nil {
		return err
	}
	if status < 200 || status > 299 {
		return &domain.RequestError{
			Method:     method,
			Path:       "/" + path,
			StatusCode: status,
			Message:    messageFrom(body),
		}
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path, endpoint string, payload any) (int, []byte, error) {
	var reqBody io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, fmt.Errorf("%s /%s: encode: %w", method, path, err)
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base.JoinPath(path).String(), reqBody)
	if err != nil {
		return 0, nil, fmt.Errorf("%s /%s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.AuthRequestsTotal.WithLabelValues(endpoint, "error").Inc()
		return 0, nil, fmt.Errorf("%s /%s: %w", method, path, err)
	}
	defer resp.Body.Close()

	metrics.AuthRequestsTotal.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return 0, nil, fmt.Errorf("%s /%s: read body: %w", method, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Warn().
			Str("method", method).
			Str("path", "/"+path).
			Int("status", resp.StatusCode).
			Str("body", truncate(body, 256)).
			Msg("api request failed")
	}
	return resp.StatusCode, body, nil
}

// messageFrom reads the "message" field of an error body. Validation errors
// may carry a list of messages, which are joined.
func messageFrom(body []byte) string {
	var envelope struct {
		Message json.RawMessage `json:"message"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Message) == 0 {
		return ""
	}

	var single string
	if err := json.Unmarshal(envelope.Message, &single); err == nil {
		return single
	}
	var many []string
	if err := json.Unmarshal(envelope.Message, &many); err == nil {
		return strings.Join(many, ", ")
	}
	return ""
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "…"
}
