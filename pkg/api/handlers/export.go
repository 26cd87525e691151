package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dmaldonado/nestdesk/pkg/api/errors"
	"github.com/dmaldonado/nestdesk/pkg/export"
	"github.com/dmaldonado/nestdesk/pkg/metrics"
	"github.com/dmaldonado/nestdesk/pkg/middleware"
	"github.com/dmaldonado/nestdesk/pkg/repository"
	"github.com/dmaldonado/nestdesk/pkg/workspace"
)

// ExportHandler handles contact export and import endpoints
type ExportHandler struct {
	export   *export.Service
	sessions *workspace.Manager
	users    *repository.UserRepository
	metrics  *metrics.Metrics
}

// NewExportHandler creates a new export handler
func NewExportHandler(exportService *export.Service, sessions *workspace.Manager, users *repository.UserRepository, m *metrics.Metrics) *ExportHandler {
	return &ExportHandler{
		export:   exportService,
		sessions: sessions,
		users:    users,
		metrics:  m,
	}
}

// ExportCSV godoc
// @Summary Export contacts as CSV
// @Tags Export
// @Produce text/csv
// @Success 200 {file} file "CSV download"
// @Router /export/contacts.csv [get]
func (h *ExportHandler) ExportCSV(c echo.Context) error {
	ws, err := resolveWorkspace(c, h.sessions, h.users)
	if err != nil {
		return errors.Respond(c, err)
	}

	path, err := h.export.ExportCSV(middleware.UserID(c), ws.Snapshot().Contacts)
	if err != nil {
		return errors.Internal(c, err)
	}
	h.metrics.RecordExportCreated()
	return c.Attachment(path, "contacts.csv")
}

// ExportXLSX downloads the agent's contacts as an Excel workbook.
func (h *ExportHandler) ExportXLSX(c echo.Context) error {
	ws, err := resolveWorkspace(c, h.sessions, h.users)
	if err != nil {
		return errors.Respond(c, err)
	}

	path, err := h.export.ExportXLSX(middleware.UserID(c), ws.Snapshot().Contacts)
	if err != nil {
		return errors.Internal(c, err)
	}
	h.metrics.RecordExportCreated()
	return c.Attachment(path, "contacts.xlsx")
}

// ImportCSV godoc
// @Summary Import contacts from an uploaded CSV
// @Description Each row is added through the normal contact mutation, so
// @Description imports follow the same persistence rules as manual entry
// @Tags Export
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "CSV file"
// @Success 200 {object} export.ImportResult
// @Router /import/contacts [post]
func (h *ExportHandler) ImportCSV(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return errors.BadRequest(c, err)
	}
	file, err := fileHeader.Open()
	if err != nil {
		return errors.BadRequest(c, err)
	}
	defer file.Close()

	ws, err := resolveWorkspace(c, h.sessions, h.users)
	if err != nil {
		return errors.Respond(c, err)
	}

	result, err := h.export.ImportCSV(c.Request().Context(), ws, file)
	if err != nil {
		return errors.BadRequest(c, err)
	}
	h.metrics.RecordMutation("contact.import")
	return c.JSON(http.StatusOK, result)
}
