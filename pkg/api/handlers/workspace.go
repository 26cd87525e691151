// Package handlers holds the echo HTTP handlers. Each handler binds and
// validates the request, calls into the workspace or a service, and maps
// errors through pkg/api/errors.
package handlers

import (
	"github.com/labstack/echo/v4"

	"github.com/dmaldonado/nestdesk/pkg/crm"
	"github.com/dmaldonado/nestdesk/pkg/domain"
	"github.com/dmaldonado/nestdesk/pkg/middleware"
	"github.com/dmaldonado/nestdesk/pkg/repository"
	"github.com/dmaldonado/nestdesk/pkg/workspace"
)

// resolveWorkspace returns the caller's loaded workspace, opening one when
// the session registry lost it (server restart with a still-valid token).
func resolveWorkspace(c echo.Context, sessions *workspace.Manager, users *repository.UserRepository) (*workspace.Workspace, error) {
	userID := middleware.UserID(c)
	if userID == "" {
		return nil, domain.NewUnauthorizedError()
	}

	if ws, err := sessions.Get(userID); err == nil {
		return ws, nil
	}

	user, err := users.FindByID(c.Request().Context(), userID)
	if err != nil {
		return nil, err
	}
	return sessions.Open(c.Request().Context(), user)
}

func currentUser(c echo.Context, users *repository.UserRepository) (*crm.User, error) {
	userID := middleware.UserID(c)
	if userID == "" {
		return nil, domain.NewUnauthorizedError()
	}
	return users.FindByID(c.Request().Context(), userID)
}
