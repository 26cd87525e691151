package handlers

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/dmaldonado/nestdesk/pkg/api/errors"
	"github.com/dmaldonado/nestdesk/pkg/crm"
	"github.com/dmaldonado/nestdesk/pkg/metrics"
	"github.com/dmaldonado/nestdesk/pkg/models"
	"github.com/dmaldonado/nestdesk/pkg/repository"
	"github.com/dmaldonado/nestdesk/pkg/store"
	"github.com/dmaldonado/nestdesk/pkg/workspace"
)

// ReminderHandler handles reminder endpoints
type ReminderHandler struct {
	sessions  *workspace.Manager
	users     *repository.UserRepository
	metrics   *metrics.Metrics
	validator *validator.Validate
}

// NewReminderHandler creates a new reminder handler
func NewReminderHandler(sessions *workspace.Manager, users *repository.UserRepository, m *metrics.Metrics) *ReminderHandler {
	return &ReminderHandler{
		sessions:  sessions,
		users:     users,
		metrics:   m,
		validator: validator.New(),
	}
}

// List godoc
// @Summary List reminders bucketed by urgency
// @Description Pending reminders partitioned into overdue, today, tomorrow,
// @Description this week, and later, each sorted by due date
// @Tags Reminders
// @Produce json
// @Success 200 {object} store.ReminderBuckets
// @Router /reminders [get]
func (h *ReminderHandler) List(c echo.Context) error {
	ws, err := resolveWorkspace(c, h.sessions, h.users)
	if err != nil {
		return errors.Respond(c, err)
	}
	return c.JSON(http.StatusOK, store.BucketReminders(ws.Snapshot(), time.Now()))
}

// Create adds a reminder, optionally linked to a contact.
func (h *ReminderHandler) Create(c echo.Context) error {
	var req models.ReminderRequest
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

	reminder := crm.Reminder{
		ContactID:   req.ContactID,
		Title:       req.Title,
		Description: req.Description,
		Priority:    crm.Priority(req.Priority),
	}
	if req.DueDate != nil {
		reminder.DueDate = *req.DueDate
	}
	created, err := ws.AddReminder(c.Request().Context(), reminder)
	if err != nil {
		return errors.Respond(c, err)
	}
	h.metrics.RecordMutation("reminder.create")
	return c.JSON(http.StatusCreated, created)
}

// Update edits a reminder. Completed reminders cannot be reopened.
func (h *ReminderHandler) Update(c echo.Context) error {
	var req models.ReminderUpdateRequest
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

	reminder := crm.Reminder{
		ID:          c.Param("id"),
		ContactID:   req.ContactID,
		Title:       req.Title,
		Description: req.Description,
		Priority:    crm.Priority(req.Priority),
		Completed:   req.Completed,
	}
	if req.DueDate != nil {
		reminder.DueDate = *req.DueDate
	}
	updated, err := ws.UpdateReminder(c.Request().Context(), reminder)
	if err != nil {
		return errors.Respond(c, err)
	}
	h.metrics.RecordMutation("reminder.update")
	return c.JSON(http.StatusOK, updated)
}

// Complete marks a reminder done. Completing twice is a no-op.
func (h *ReminderHandler) Complete(c echo.Context) error {
	ws, err := resolveWorkspace(c, h.sessions, h.users)
	if err != nil {
		return errors.Respond(c, err)
	}
	reminder, err := ws.CompleteReminder(c.Request().Context(), c.Param("id"))
	if err != nil {
		return errors.Respond(c, err)
	}
	h.metrics.RecordMutation("reminder.complete")
	return c.JSON(http.StatusOK, reminder)
}

// Delete removes a reminder.
func (h *ReminderHandler) Delete(c echo.Context) error {
	ws, err := resolveWorkspace(c, h.sessions, h.users)
	if err != nil {
		return errors.Respond(c, err)
	}
	if err := ws.DeleteReminder(c.Request().Context(), c.Param("id")); err != nil {
		return errors.Respond(c, err)
	}
	h.metrics.RecordMutation("reminder.delete")
	return c.JSON(http.StatusOK, models.SuccessResponse{Success: true})
}
