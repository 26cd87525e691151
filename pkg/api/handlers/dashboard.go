package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/dmaldonado/nestdesk/pkg/api/errors"
	"github.com/dmaldonado/nestdesk/pkg/crm"
	"github.com/dmaldonado/nestdesk/pkg/repository"
	"github.com/dmaldonado/nestdesk/pkg/store"
	"github.com/dmaldonado/nestdesk/pkg/workspace"
)

// DashboardHandler serves the derived views in one payload.
type DashboardHandler struct {
	sessions *workspace.Manager
	users    *repository.UserRepository
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(sessions *workspace.Manager, users *repository.UserRepository) *DashboardHandler {
	return &DashboardHandler{sessions: sessions, users: users}
}

// DashboardResponse aggregates every derived view over one state snapshot,
// so the numbers are mutually consistent.
type DashboardResponse struct {
	ContactCount  int                               `json:"contactCount"`
	Temperatures  map[crm.Temperature][]crm.Contact `json:"temperatures"`
	DealsByStage  map[crm.DealStage][]crm.Contact   `json:"dealsByStage"`
	PipelineValue float64                           `json:"pipelineValue"`
	ClosedValue   float64                           `json:"closedValue"`
	LeadsBySource []store.SourceCount               `json:"leadsBySource"`
	Reminders     store.ReminderBuckets             `json:"reminders"`
	PendingWrites int64                             `json:"pendingWrites"`
}

// Get godoc
// @Summary Dashboard
// @Description Temperature buckets, pipeline by stage, pipeline and closed
// @Description values, lead source counts, reminder buckets, and the count
// @Description of mutations not yet persisted remotely
// @Tags Dashboard
// @Produce json
// @Success 200 {object} DashboardResponse
// @Router /dashboard [get]
func (h *DashboardHandler) Get(c echo.Context) error {
	ws, err := resolveWorkspace(c, h.sessions, h.users)
	if err != nil {
		return errors.Respond(c, err)
	}

	s := ws.Snapshot()
	return c.JSON(http.StatusOK, DashboardResponse{
		ContactCount:  len(s.Contacts),
		Temperatures:  store.TemperatureBuckets(s),
		DealsByStage:  store.DealsByStage(s),
		PipelineValue: store.PipelineValue(s),
		ClosedValue:   store.ClosedValue(s),
		LeadsBySource: store.LeadsBySource(s),
		Reminders:     store.BucketReminders(s, time.Now()),
		PendingWrites: ws.PendingWrites(),
	})
}

// Catalogs returns the fixed deal stage and lead source catalogs.
func (h *DashboardHandler) Catalogs(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"dealStages":  crm.DealStages,
		"leadSources": crm.LeadSources,
	})
}
