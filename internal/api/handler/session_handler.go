package handler

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/sensorwatch/console/internal/api/middleware"
	"github.com/sensorwatch/console/internal/core/ports"
)

const SignupPath = "/signup"

// SessionHandler serves the guest views and the sign-out action.
type SessionHandler struct {
	sessions ports.SessionService
	reader   ports.SessionReader
}

func NewSessionHandler(sessions ports.SessionService, reader ports.SessionReader) *SessionHandler {
	return &SessionHandler{sessions: sessions, reader: reader}
}

type loginForm struct {
	Email    string `json:"email" form:"email" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
	Redirect string `json:"redirect" form:"redirect"`
}

type signupForm struct {
	Name     string `json:"name" form:"name" validate:"required,max=120"`
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required,min=8"`
	Phone    string `json:"phone" form:"phone" validate:"omitempty,max=32"`
}

type formErrorResponse struct {
	Success bool     `json:"success"`
	Error   string   `json:"error,omitempty"`
	Fields  []string `json:"fields,omitempty"`
}

// LoginView renders the login view. The redirect parameter is echoed back so
// the form can submit it.
func (h *SessionHandler) LoginView(c echo.Context) error {
	return c.JSON(http.StatusOK, viewResponse{
		View:   "login",
		Params: map[string]string{"redirect": SafeRedirect(c.QueryParam("redirect"))},
	})
}

// Login signs in and sends the user to the requested page.
func (h *SessionHandler) Login(c echo.Context) error {
	var form loginForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&form); err != nil {
		return formError(c, err)
	}

	result := h.sessions.SignIn(c.Request().Context(), strings.TrimSpace(form.Email), form.Password)
	if !result.Success {
		return c.JSON(http.StatusUnauthorized, formErrorResponse{Error: result.Error})
	}

	target := form.Redirect
	if target == "" {
		target = c.QueryParam("redirect")
	}
	return c.Redirect(http.StatusSeeOther, SafeRedirect(target))
}

// SignupView renders the sign-up view.
func (h *SessionHandler) SignupView(c echo.Context) error {
	return c.JSON(http.StatusOK, viewResponse{View: "signup"})
}

// Signup creates an account. The API may or may not start a session on
// sign-up; without one the user is sent to the login view.
func (h *SessionHandler) Signup(c echo.Context) error {
	var form signupForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&form); err != nil {
		return formError(c, err)
	}

	result := h.sessions.SignUp(c.Request().Context(), ports.SignupRequest{
		Name:     strings.TrimSpace(form.Name),
		Email:    strings.TrimSpace(form.Email),
		Password: form.Password,
		Phone:    strings.TrimSpace(form.Phone),
	})
	if !result.Success {
		return c.JSON(http.StatusUnprocessableEntity, formErrorResponse{Error: result.Error})
	}

	if !h.reader.IsAuthenticated() {
		return c.Redirect(http.StatusSeeOther, middleware.LoginPath)
	}
	return c.Redirect(http.StatusSeeOther, middleware.DashboardPath)
}

// Logout signs out and returns to the login view.
func (h *SessionHandler) Logout(c echo.Context) error {
	h.sessions.SignOut(c.Request().Context())
	return c.Redirect(http.StatusSeeOther, middleware.LoginPath)
}

func formError(c echo.Context, err error) error {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return c.JSON(http.StatusUnprocessableEntity, formErrorResponse{Error: "invalid form", Fields: ve.Messages})
	}
	return echo.NewHTTPError(http.StatusBadRequest, err.Error())
}

// SafeRedirect returns target when it is a local path outside the guest
// views, and the dashboard otherwise.
func SafeRedirect(target string) string {
	if target == "" || !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.Contains(target, `\`) {
		return middleware.DashboardPath
	}

	u, err := url.Parse(target)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return middleware.DashboardPath
	}
	switch u.Path {
	case "/", middleware.LoginPath, SignupPath:
		return middleware.DashboardPath
	}
	return target
}
