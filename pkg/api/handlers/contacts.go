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

// ContactHandler handles contact endpoints
type ContactHandler struct {
	sessions  *workspace.Manager
	users     *repository.UserRepository
	metrics   *metrics.Metrics
	validator *validator.Validate
}

// NewContactHandler creates a new contact handler
func NewContactHandler(sessions *workspace.Manager, users *repository.UserRepository, m *metrics.Metrics) *ContactHandler {
	return &ContactHandler{
		sessions:  sessions,
		users:     users,
		metrics:   m,
		validator: validator.New(),
	}
}

// List godoc
// @Summary List contacts
// @Description Contacts visible to the agent, with the current search query
// @Description and temperature filter applied
// @Tags Contacts
// @Produce json
// @Success 200 {array} crm.Contact
// @Router /contacts [get]
func (h *ContactHandler) List(c echo.Context) error {
	ws, err := resolveWorkspace(c, h.sessions, h.users)
	if err != nil {
		return errors.Respond(c, err)
	}
	return c.JSON(http.StatusOK, store.FilteredContacts(ws.Snapshot()))
}

// Get returns one contact with its reminders.
func (h *ContactHandler) Get(c echo.Context) error {
	ws, err := resolveWorkspace(c, h.sessions, h.users)
	if err != nil {
		return errors.Respond(c, err)
	}
	contact, reminders, err := ws.ContactDetail(c.Param("id"))
	if err != nil {
		return errors.Respond(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"contact":   contact,
		"reminders": reminders,
	})
}

// Create godoc
// @Summary Create a contact
// @Tags Contacts
// @Accept json
// @Produce json
// @Param request body models.ContactRequest true "Contact data"
// @Success 201 {object} crm.Contact
// @Failure 400 {object} models.ErrorResponse "Invalid request"
// @Router /contacts [post]
func (h *ContactHandler) Create(c echo.Context) error {
	var req models.ContactRequest
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

	contact, err := ws.AddContact(c.Request().Context(), contactFromRequest(req))
	if err != nil {
		return errors.Respond(c, err)
	}
	h.metrics.RecordMutation("contact.create")
	return c.JSON(http.StatusCreated, contact)
}

// Update replaces a contact's editable fields.
func (h *ContactHandler) Update(c echo.Context) error {
	var req models.ContactRequest
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

	contact := contactFromRequest(req)
	contact.ID = c.Param("id")
	updated, err := ws.UpdateContact(c.Request().Context(), contact)
	if err != nil {
		return errors.Respond(c, err)
	}
	h.metrics.RecordMutation("contact.update")
	return c.JSON(http.StatusOK, updated)
}

// Delete removes a contact and its linked reminders.
func (h *ContactHandler) Delete(c echo.Context) error {
	ws, err := resolveWorkspace(c, h.sessions, h.users)
	if err != nil {
		return errors.Respond(c, err)
	}
	if err := ws.DeleteContact(c.Request().Context(), c.Param("id")); err != nil {
		return errors.Respond(c, err)
	}
	h.metrics.RecordMutation("contact.delete")
	return c.JSON(http.StatusOK, models.SuccessResponse{Success: true})
}

// SetStage moves a contact through the deal pipeline; a null stage takes
// it out of the pipeline.
func (h *ContactHandler) SetStage(c echo.Context) error {
	var req models.StageRequest
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

	var stage *crm.DealStage
	if req.DealStage != nil {
		s := crm.DealStage(*req.DealStage)
		stage = &s
	}
	contact, err := ws.SetDealStage(c.Request().Context(), c.Param("id"), stage)
	if err != nil {
		return errors.Respond(c, err)
	}
	h.metrics.RecordMutation("contact.stage")
	return c.JSON(http.StatusOK, contact)
}

// AddActivity logs a touch on a contact.
func (h *ContactHandler) AddActivity(c echo.Context) error {
	var req models.ActivityRequest
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

	var date time.Time
	if req.Date != nil {
		date = *req.Date
	}
	contact, err := ws.AddActivity(c.Request().Context(), c.Param("id"), crm.ActivityType(req.Type), req.Note, date)
	if err != nil {
		return errors.Respond(c, err)
	}
	h.metrics.RecordMutation("activity.create")
	return c.JSON(http.StatusCreated, contact)
}

// AddShowing records a showing and its synthesized activity.
func (h *ContactHandler) AddShowing(c echo.Context) error {
	var req models.ShowingRequest
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

	var date time.Time
	if req.Date != nil {
		date = *req.Date
	}
	contact, err := ws.AddShowing(c.Request().Context(), c.Param("id"), req.Address, crm.Reaction(req.Reaction), req.Notes, date)
	if err != nil {
		return errors.Respond(c, err)
	}
	h.metrics.RecordMutation("showing.create")
	return c.JSON(http.StatusCreated, contact)
}

// DeleteShowing removes a showing, keeping the activity it synthesized.
func (h *ContactHandler) DeleteShowing(c echo.Context) error {
	ws, err := resolveWorkspace(c, h.sessions, h.users)
	if err != nil {
		return errors.Respond(c, err)
	}
	contact, err := ws.DeleteShowing(c.Request().Context(), c.Param("id"), c.Param("showingId"))
	if err != nil {
		return errors.Respond(c, err)
	}
	h.metrics.RecordMutation("showing.delete")
	return c.JSON(http.StatusOK, contact)
}

// Handoff transfers a contact to a teammate.
func (h *ContactHandler) Handoff(c echo.Context) error {
	var req models.HandoffRequest
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
	if err := ws.Handoff(c.Request().Context(), c.Param("id"), req.ToUserID); err != nil {
		return errors.Respond(c, err)
	}
	h.metrics.RecordMutation("contact.handoff")
	return c.JSON(http.StatusOK, models.SuccessResponse{Success: true})
}

// SetSearch sets the contact search query for subsequent list reads.
func (h *ContactHandler) SetSearch(c echo.Context) error {
	var req models.SearchRequest
	if err := c.Bind(&req); err != nil {
		return errors.BadRequest(c, err)
	}

	ws, err := resolveWorkspace(c, h.sessions, h.users)
	if err != nil {
		return errors.Respond(c, err)
	}
	ws.SetSearch(req.Query)
	return c.JSON(http.StatusOK, store.FilteredContacts(ws.Snapshot()))
}

// SetFilter sets the temperature filter for subsequent list reads.
func (h *ContactHandler) SetFilter(c echo.Context) error {
	var req models.FilterRequest
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
	if err := ws.SetTemperatureFilter(req.Temperature); err != nil {
		return errors.Respond(c, err)
	}
	return c.JSON(http.StatusOK, store.FilteredContacts(ws.Snapshot()))
}

func contactFromRequest(req models.ContactRequest) crm.Contact {
	contact := crm.Contact{
		FirstName:         req.FirstName,
		LastName:          req.LastName,
		Email:             req.Email,
		Phone:             req.Phone,
		Company:           req.Company,
		Temperature:       crm.Temperature(req.Temperature),
		PropertyInterest:  req.PropertyInterest,
		Budget:            req.Budget,
		LeadSource:        req.LeadSource,
		Notes:             req.Notes,
		DealValue:         req.DealValue,
		ExpectedCloseDate: req.ExpectedCloseDate,
		Birthday:          req.Birthday,
		HomeAnniversary:   req.HomeAnniversary,
		CommissionNotes:   req.CommissionNotes,
	}
	if req.DealStage != nil {
		stage := crm.DealStage(*req.DealStage)
		contact.DealStage = &stage
	}
	if req.LastContact != nil {
		contact.LastContact = *req.LastContact
	}
	return contact
}
