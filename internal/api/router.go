package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/sensorwatch/console/internal/api/handler"
	"github.com/sensorwatch/console/internal/api/middleware"
	"github.com/sensorwatch/console/internal/core/ports"
	"github.com/sensorwatch/console/internal/infrastructure/http/handlers"
)

// BootstrapGate is what the router needs from the session bootstrap.
type BootstrapGate interface {
	middleware.Gate
	handlers.Settler
}

// Dependencies are the collaborators the console routes are built from.
type Dependencies struct {
	Sessions ports.SessionService
	Session  ports.SessionReader
	Gate     BootstrapGate
	// Redis is optional; when set the readiness probe pings it.
	Redis *redis.Client
	// Registry defaults to the global Prometheus registry.
	Registry *prometheus.Registry
	Log      zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Log))
	e.Use(metricsMiddleware(deps.Registry))

	// --- Probes and metrics (never guarded) ---
	healthHandler := handlers.NewHealthHandler()
	readinessHandler := handlers.NewReadinessHandler(deps.Gate, deps.Redis)
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)
	e.GET("/metrics", metricsHandler(deps.Registry))

	// --- Guards ---
	guest := middleware.RequireAnonymous(deps.Gate, deps.Session).Middleware()
	signedIn := middleware.RequireAuthenticated(deps.Gate, deps.Session).Middleware()

	// --- Guest views ---
	sessionHandler := handler.NewSessionHandler(deps.Sessions, deps.Session)
	e.GET(middleware.LoginPath, sessionHandler.LoginView, guest)
	e.POST(middleware.LoginPath, sessionHandler.Login, guest)
	e.GET(handler.SignupPath, sessionHandler.SignupView, guest)
	e.POST(handler.SignupPath, sessionHandler.Signup, guest)

	// --- Signed-in views ---
	views := handler.NewViewHandler(deps.Session)
	e.GET("/", views.Render("dashboard"), signedIn)
	e.GET(middleware.DashboardPath, views.Render("dashboard"), signedIn)
	e.GET("/alerts", views.Render("alerts"), signedIn)
	e.GET("/alerts/:id", views.Alert, signedIn)
	e.GET("/profile", views.Render("profile"), signedIn)
	e.POST("/logout", sessionHandler.Logout, signedIn)

	// --- Administration ---
	admin := e.Group("/admin", signedIn, middleware.RequirePrivileged(deps.Session))
	admin.GET("/users", views.Render("admin.users"))

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	log = log.With().Str("component", "http").Logger()
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}

func metricsMiddleware(reg *prometheus.Registry) echo.MiddlewareFunc {
	cfg := echoprometheus.MiddlewareConfig{
		Namespace: "console",
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}
	if reg != nil {
		cfg.Registerer = reg
	}
	return echoprometheus.NewMiddlewareWithConfig(cfg)
}

func metricsHandler(reg *prometheus.Registry) echo.HandlerFunc {
	if reg == nil {
		return echoprometheus.NewHandler()
	}
	return echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: reg})
}
