package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/sensorwatch/console/internal/core/domain"
	"github.com/sensorwatch/console/internal/core/ports"
)

// RequirePrivileged restricts a route to ADMIN users. Mount it behind
// RequireAuthenticated so anonymous visitors are redirected before reaching it.
func RequirePrivileged(session ports.SessionReader) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !session.IsPrivileged() {
				return domain.ErrForbidden
			}
			return next(c)
		}
	}
}
