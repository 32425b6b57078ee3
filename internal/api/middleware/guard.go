package middleware

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sensorwatch/console/internal/api/metrics"
	"github.com/sensorwatch/console/internal/core/ports"
)

const (
	LoginPath     = "/login"
	DashboardPath = "/dashboard"
)

// Gate is the bootstrap readiness signal guards wait on.
type Gate interface {
	Wait(ctx context.Context) error
}

// Redirect is a guard's instruction to navigate elsewhere. Replace means the
// navigation must not leave a history entry for the rejected target.
type Redirect struct {
	Location string
	Replace  bool
}

// Guard decides whether navigation to target may proceed. A nil Redirect with
// a nil error means proceed. An error is only returned when ctx ends while
// waiting for the bootstrap gate.
type Guard func(ctx context.Context, target string) (*Redirect, error)

// RequireAuthenticated sends anonymous visitors to the login view, carrying
// the requested path so login can return there.
func RequireAuthenticated(gate Gate, session ports.SessionReader) Guard {
	return func(ctx context.Context, target string) (*Redirect, error) {
		if err := awaitGate(ctx, gate, "authenticated"); err != nil {
			return nil, err
		}

		if session.IsAuthenticated() {
			metrics.GuardDecisionsTotal.WithLabelValues("authenticated", "proceed").Inc()
			return nil, nil
		}

		returnTo := target
		if returnTo == "" || returnTo == "/" {
			returnTo = DashboardPath
		}
		metrics.GuardDecisionsTotal.WithLabelValues("authenticated", "redirect").Inc()
		return &Redirect{Location: LoginPath + "?redirect=" + encodeURIComponent(returnTo), Replace: true}, nil
	}
}

// RequireAnonymous keeps signed-in users away from guest-only views.
func RequireAnonymous(gate Gate, session ports.SessionReader) Guard {
	return func(ctx context.Context, target string) (*Redirect, error) {
		if err := awaitGate(ctx, gate, "anonymous"); err != nil {
			return nil, err
		}

		if !session.IsAuthenticated() {
			metrics.GuardDecisionsTotal.WithLabelValues("anonymous", "proceed").Inc()
			return nil, nil
		}

		metrics.GuardDecisionsTotal.WithLabelValues("anonymous", "redirect").Inc()
		return &Redirect{Location: DashboardPath, Replace: true}, nil
	}
}

// awaitGate waits on every evaluation; a settled gate returns at once.
func awaitGate(ctx context.Context, gate Gate, name string) error {
	started := time.Now()
	err := gate.Wait(ctx)
	metrics.GuardGateWaitDuration.WithLabelValues(name).Observe(time.Since(started).Seconds())
	if err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "session not ready").SetInternal(err)
	}
	return nil
}

// Middleware adapts the guard to echo. The target is the full request URI.
// Replacing redirects use 303 See Other; other redirects use 302 Found.
func (g Guard) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			redirect, err := g(c.Request().Context(), c.Request().URL.RequestURI())
			if err != nil {
				return err
			}
			if redirect == nil {
				return next(c)
			}

			code := http.StatusFound
			if redirect.Replace {
				code = http.StatusSeeOther
			}
			return c.Redirect(code, redirect.Location)
		}
	}
}

// encodeURIComponent escapes s the way browsers do for a query component:
// "/" becomes %2F and spaces become %20.
func encodeURIComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
