package handlers

import (
	"context"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/dmaldonado/nestdesk/pkg/api/errors"
	"github.com/dmaldonado/nestdesk/pkg/audit"
	"github.com/dmaldonado/nestdesk/pkg/crm"
	"github.com/dmaldonado/nestdesk/pkg/domain"
	"github.com/dmaldonado/nestdesk/pkg/email"
	"github.com/dmaldonado/nestdesk/pkg/metrics"
	"github.com/dmaldonado/nestdesk/pkg/middleware"
	"github.com/dmaldonado/nestdesk/pkg/models"
	"github.com/dmaldonado/nestdesk/pkg/repository"
	"github.com/dmaldonado/nestdesk/pkg/workspace"
)

// TemplateHandler handles message template endpoints
type TemplateHandler struct {
	sessions    *workspace.Manager
	users       *repository.UserRepository
	email       *email.Service
	auditLogger *audit.Service
	metrics     *metrics.Metrics
	validator   *validator.Validate
}

// NewTemplateHandler creates a new template handler
func NewTemplateHandler(sessions *workspace.Manager, users *repository.UserRepository, emailService *email.Service, auditLogger *audit.Service, m *metrics.Metrics) *TemplateHandler {
	return &TemplateHandler{
		sessions:    sessions,
		users:       users,
		email:       emailService,
		auditLogger: auditLogger,
		metrics:     m,
		validator:   validator.New(),
	}
}

// List returns the agent's templates, stock and custom.
func (h *TemplateHandler) List(c echo.Context) error {
	ws, err := resolveWorkspace(c, h.sessions, h.users)
	if err != nil {
		return errors.Respond(c, err)
	}
	return c.JSON(http.StatusOK, ws.Snapshot().Templates)
}

// Create adds a custom template.
func (h *TemplateHandler) Create(c echo.Context) error {
	var req models.TemplateRequest
	if err := c.Bind(&req); err != nil {
		return errors.BadRequest(c, err)
	}
	if err := h.validator.Struct(req); err != nil {
		return errors.Validation(c, err)
	}

	ws, err := resolveWorkspace(c, h.sessions, h.users)
	if err != nil {
		return errors.Respond(c, err)
	}

	template, err := ws.AddTemplate(c.Request().Context(), crm.Template{
		Name:         req.Name,
		Category:     crm.TemplateCategory(req.Category),
		Content:      req.Content,
		IsTeamShared: req.IsTeamShared,
	})
	if err != nil {
		return errors.Respond(c, err)
	}
	h.metrics.RecordMutation("template.create")
	return c.JSON(http.StatusCreated, template)
}

// Update edits a template. Editing a stock template customizes it for
// this agent.
func (h *TemplateHandler) Update(c echo.Context) error {
	var req models.TemplateRequest
	if err := c.Bind(&req); err != nil {
		return errors.BadRequest(c, err)
	}
	if err := h.validator.Struct(req); err != nil {
		return errors.Validation(c, err)
	}

	ws, err := resolveWorkspace(c, h.sessions, h.users)
	if err != nil {
		return errors.Respond(c, err)
	}

	template, err := ws.UpdateTemplate(c.Request().Context(), crm.Template{
		ID:           c.Param("id"),
		Name:         req.Name,
		Category:     crm.TemplateCategory(req.Category),
		Content:      req.Content,
		IsTeamShared: req.IsTeamShared,
	})
	if err != nil {
		return errors.Respond(c, err)
	}
	h.metrics.RecordMutation("template.update")
	return c.JSON(http.StatusOK, template)
}

// Delete removes a template.
func (h *TemplateHandler) Delete(c echo.Context) error {
	ws, err := resolveWorkspace(c, h.sessions, h.users)
	if err != nil {
		return errors.Respond(c, err)
	}
	if err := ws.DeleteTemplate(c.Request().Context(), c.Param("id")); err != nil {
		return errors.Respond(c, err)
	}
	h.metrics.RecordMutation("template.delete")
	return c.JSON(http.StatusOK, models.SuccessResponse{Success: true})
}

// Fill previews a template with a contact's values substituted.
func (h *TemplateHandler) Fill(c echo.Context) error {
	var req models.FillTemplateRequest
	if err := c.Bind(&req); err != nil {
		return errors.BadRequest(c, err)
	}

	ws, err := resolveWorkspace(c, h.sessions, h.users)
	if err != nil {
		return errors.Respond(c, err)
	}
	filled, err := ws.FillTemplate(c.Param("id"), req.ContactID)
	if err != nil {
		return errors.Respond(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"content": filled})
}

// Send godoc
// @Summary Send a filled template to a contact
// @Description Fills the template with the contact's values and emails it
// @Tags Templates
// @Accept json
// @Produce json
// @Param id path string true "Template ID"
// @Param request body models.SendTemplateRequest true "Recipient and subject"
// @Success 200 {object} models.SuccessResponse
// @Failure 400 {object} models.ErrorResponse "Contact has no email"
// @Router /templates/{id}/send [post]
func (h *TemplateHandler) Send(c echo.Context) error {
	var req models.SendTemplateRequest
	if err := c.Bind(&req); err != nil {
		return errors.BadRequest(c, err)
	}
	if err := h.validator.Struct(req); err != nil {
		return errors.Validation(c, err)
	}

	ws, err := resolveWorkspace(c, h.sessions, h.users)
	if err != nil {
		return errors.Respond(c, err)
	}

	contact, _, err := ws.ContactDetail(req.ContactID)
	if err != nil {
		return errors.Respond(c, err)
	}
	if contact.Email == "" {
		return errors.BadRequest(c, domain.NewBadRequestError("contact has no email address"))
	}

	body, err := ws.FillTemplate(c.Param("id"), req.ContactID)
	if err != nil {
		return errors.Respond(c, err)
	}
	if err := h.email.Send(contact.Email, contact.FullName(), req.Subject, body); err != nil {
		return errors.Internal(c, err)
	}

	h.metrics.RecordTemplateSent()
	go h.auditLogger.Record(context.Background(), middleware.UserID(c), "send_template", "template", c.Param("id"), contact.ID)

	return c.JSON(http.StatusOK, models.SuccessResponse{
		Success: true,
		Message: "Template sent",
	})
}
