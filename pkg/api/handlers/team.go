package handlers

import (
	"context"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/dmaldonado/nestdesk/pkg/api/errors"
	"github.com/dmaldonado/nestdesk/pkg/audit"
	"github.com/dmaldonado/nestdesk/pkg/middleware"
	"github.com/dmaldonado/nestdesk/pkg/models"
	"github.com/dmaldonado/nestdesk/pkg/repository"
	"github.com/dmaldonado/nestdesk/pkg/team"
	"github.com/dmaldonado/nestdesk/pkg/workspace"
)

// TeamHandler handles team endpoints
type TeamHandler struct {
	teams       *team.Service
	users       *repository.UserRepository
	sessions    *workspace.Manager
	auditLogger *audit.Service
	validator   *validator.Validate
}

// NewTeamHandler creates a new team handler
func NewTeamHandler(teams *team.Service, users *repository.UserRepository, sessions *workspace.Manager, auditLogger *audit.Service) *TeamHandler {
	return &TeamHandler{
		teams:       teams,
		users:       users,
		sessions:    sessions,
		auditLogger: auditLogger,
		validator:   validator.New(),
	}
}

// Create godoc
// @Summary Create a team
// @Description Creates a team with the caller as owner and first member
// @Tags Team
// @Accept json
// @Produce json
// @Param request body models.CreateTeamRequest true "Team name"
// @Success 201 {object} team.Team
// @Failure 409 {object} models.ErrorResponse "Already on a team"
// @Router /team [post]
func (h *TeamHandler) Create(c echo.Context) error {
	var req models.CreateTeamRequest
	if err := c.Bind(&req); err != nil {
		return errors.BadRequest(c, err)
	}
	if err := h.validator.Struct(req); err != nil {
		return errors.Validation(c, err)
	}

	userID := middleware.UserID(c)
	created, err := h.teams.Create(c.Request().Context(), userID, req.Name)
	if err != nil {
		return errors.Respond(c, err)
	}

	go h.auditLogger.Record(context.Background(), userID, "team_create", "team", created.ID, req.Name)
	h.reloadWorkspace(c)

	return c.JSON(http.StatusCreated, created)
}

// Get returns the caller's team and its roster.
func (h *TeamHandler) Get(c echo.Context) error {
	t, err := h.teams.MembershipFor(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return errors.Respond(c, err)
	}
	members, err := h.teams.Members(c.Request().Context(), t.ID)
	if err != nil {
		return errors.Respond(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"team":    t,
		"members": members,
	})
}

// AddMember invites an existing account onto the caller's team.
func (h *TeamHandler) AddMember(c echo.Context) error {
	var req models.AddMemberRequest
	if err := c.Bind(&req); err != nil {
		return errors.BadRequest(c, err)
	}
	if err := h.validator.Struct(req); err != nil {
		return errors.Validation(c, err)
	}

	ctx := c.Request().Context()
	callerID := middleware.UserID(c)

	t, err := h.teams.MembershipFor(ctx, callerID)
	if err != nil {
		return errors.Respond(c, err)
	}
	invitee, err := h.users.FindByEmail(ctx, req.Email)
	if err != nil {
		return errors.Respond(c, err)
	}

	member, err := h.teams.AddMember(ctx, t.ID, callerID, invitee.ID)
	if err != nil {
		return errors.Respond(c, err)
	}

	go h.auditLogger.Record(context.Background(), callerID, "team_add_member", "team", t.ID, invitee.ID)
	return c.JSON(http.StatusCreated, member)
}

// RemoveMember takes a member off the team.
func (h *TeamHandler) RemoveMember(c echo.Context) error {
	ctx := c.Request().Context()
	callerID := middleware.UserID(c)

	t, err := h.teams.MembershipFor(ctx, callerID)
	if err != nil {
		return errors.Respond(c, err)
	}
	if err := h.teams.RemoveMember(ctx, t.ID, callerID, c.Param("userId")); err != nil {
		return errors.Respond(c, err)
	}

	go h.auditLogger.Record(context.Background(), callerID, "team_remove_member", "team", t.ID, c.Param("userId"))
	return c.JSON(http.StatusOK, models.SuccessResponse{Success: true})
}

// SetSharedPipeline toggles whether teammates see each other's deals.
func (h *TeamHandler) SetSharedPipeline(c echo.Context) error {
	var req models.SharedPipelineRequest
	if err := c.Bind(&req); err != nil {
		return errors.BadRequest(c, err)
	}

	ctx := c.Request().Context()
	callerID := middleware.UserID(c)

	t, err := h.teams.MembershipFor(ctx, callerID)
	if err != nil {
		return errors.Respond(c, err)
	}
	if err := h.teams.SetSharedPipeline(ctx, t.ID, callerID, req.Shared); err != nil {
		return errors.Respond(c, err)
	}

	// Visibility changed; rebuild the caller's workspace against it.
	h.reloadWorkspace(c)
	return c.JSON(http.StatusOK, models.SuccessResponse{Success: true})
}

func (h *TeamHandler) reloadWorkspace(c echo.Context) {
	user, err := currentUser(c, h.users)
	if err != nil {
		return
	}
	h.sessions.Reload(c.Request().Context(), user)
}
