package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/dmaldonado/nestdesk/pkg/api/errors"
	"github.com/dmaldonado/nestdesk/pkg/audit"
	"github.com/dmaldonado/nestdesk/pkg/middleware"
)

// ActivityLogHandler serves the caller's audit trail.
type ActivityLogHandler struct {
	auditLogger *audit.Service
}

// NewActivityLogHandler creates a new activity log handler
func NewActivityLogHandler(auditLogger *audit.Service) *ActivityLogHandler {
	return &ActivityLogHandler{auditLogger: auditLogger}
}

// List returns the caller's most recent recorded actions.
func (h *ActivityLogHandler) List(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	entries, err := h.auditLogger.List(c.Request().Context(), middleware.UserID(c), limit)
	if err != nil {
		return errors.Internal(c, err)
	}
	return c.JSON(http.StatusOK, entries)
}
