package devauth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/sensorwatch/console/internal/core/domain"
)

// CookieName carries the session token between the console and this backend.
const CookieName = "access_token"

type signupRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Phone    string `json:"phone,omitempty"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// messageResponse mirrors the API's error envelope. Message is a string, or
// a list of strings for validation failures.
type messageResponse struct {
	Message any `json:"message"`
}

type handler struct {
	svc      *Service
	validate *validator.Validate
	log      zerolog.Logger
}

// NewServer returns an Echo instance serving the /auth endpoints.
func NewServer(svc *Service, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())

	h := &handler{svc: svc, validate: validator.New(), log: log.With().Str("component", "devauth").Logger()}

	g := e.Group("/auth")
	g.POST("/signup", h.signup)
	g.POST("/login", h.login)
	g.GET("/profile", h.profile)
	g.POST("/logout", h.logout)

	return e
}

func (h *handler) signup(c echo.Context) error {
	var req signupRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, messageResponse{Message: "invalid payload"})
	}
	if msgs := h.check(req); len(msgs) > 0 {
		return c.JSON(http.StatusBadRequest, messageResponse{Message: msgs})
	}

	user, err := h.svc.Register(c.Request().Context(), req.Name, req.Email, req.Password, req.Phone, domain.RoleUser)
	switch {
	case errors.Is(err, ErrUserExists):
		return c.JSON(http.StatusConflict, messageResponse{Message: "Email already registered"})
	case err != nil:
		h.log.Error().Err(err).Msg("signup failed")
		return c.JSON(http.StatusInternalServerError, messageResponse{Message: "Internal server error"})
	}

	h.log.Info().Str("user_id", user.ID).Msg("account created")
	return c.JSON(http.StatusCreated, user)
}

func (h *handler) login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, messageResponse{Message: "invalid payload"})
	}
	if msgs := h.check(req); len(msgs) > 0 {
		return c.JSON(http.StatusBadRequest, messageResponse{Message: msgs})
	}

	token, user, err := h.svc.Login(c.Request().Context(), req.Email, req.Password)
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return c.JSON(http.StatusUnauthorized, messageResponse{Message: "Invalid credentials"})
	case err != nil:
		h.log.Error().Err(err).Msg("login failed")
		return c.JSON(http.StatusInternalServerError, messageResponse{Message: "Internal server error"})
	}

	c.SetCookie(&http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(h.svc.TokenTTL()),
	})
	return c.JSON(http.StatusOK, user)
}

func (h *handler) profile(c echo.Context) error {
	cookie, err := c.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return c.JSON(http.StatusUnauthorized, messageResponse{Message: "Unauthorized"})
	}

	user, err := h.svc.Profile(c.Request().Context(), cookie.Value)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, messageResponse{Message: "Unauthorized"})
	}
	return c.JSON(http.StatusOK, user)
}

func (h *handler) logout(c echo.Context) error {
	c.SetCookie(&http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
	})
	return c.JSON(http.StatusOK, messageResponse{Message: "Logged out"})
}

// check runs struct validation and returns one message per failed field.
func (h *handler) check(req any) []string {
	err := h.validate.Struct(req)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return []string{err.Error()}
	}

	msgs := make([]string, 0, len(ve))
	for _, fe := range ve {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, field+" should not be empty")
		case "email":
			msgs = append(msgs, field+" must be an email")
		case "min":
			msgs = append(msgs, fmt.Sprintf("%s must be longer than or equal to %s characters", field, fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", field))
		}
	}
	return msgs
}
