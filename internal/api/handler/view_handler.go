package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sensorwatch/console/internal/core/domain"
	"github.com/sensorwatch/console/internal/core/ports"
)

// viewResponse describes the view the front end should render.
type viewResponse struct {
	View   string            `json:"view"`
	User   *domain.User      `json:"user,omitempty"`
	Params map[string]string `json:"params,omitempty"`
}

// ViewHandler renders the signed-in views.
type ViewHandler struct {
	session ports.SessionReader
}

func NewViewHandler(session ports.SessionReader) *ViewHandler {
	return &ViewHandler{session: session}
}

// Render returns a handler for a view without parameters.
func (h *ViewHandler) Render(view string) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, viewResponse{View: view, User: h.session.Current()})
	}
}

// Alert renders a single alert.
func (h *ViewHandler) Alert(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return echo.NewHTTPError(http.StatusNotFound, "alert not found")
	}
	return c.JSON(http.StatusOK, viewResponse{
		View:   "alert",
		User:   h.session.Current(),
		Params: map[string]string{"id": id},
	})
}
