package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmaldonado/nestdesk/pkg/crm"
	"github.com/dmaldonado/nestdesk/pkg/email"
)

func (env *testEnv) templateHandler() *TemplateHandler {
	// no API key: sends are logged, not delivered
	return NewTemplateHandler(env.sessions, env.users, email.NewService("", "noreply@nestdesk.dev", "NestDesk"), env.auditLogger, testMetrics)
}

func TestTemplates(t *testing.T) {
	env := setupTestEnv(t)
	user := env.createTestUser(t, "dana@example.com", "secret-pass-1")
	handler := env.templateHandler()
	e := echo.New()

	rec := httptest.NewRecorder()
	c := authContext(e, httptest.NewRequest(http.MethodGet, "/api/v1/templates", nil), rec, user)
	require.NoError(t, handler.List(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var stock []crm.Template
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stock))
	require.NotEmpty(t, stock, "stock templates load with the workspace")

	t.Run("create custom template", func(t *testing.T) {
		rec := httptest.NewRecorder()
		c := authContext(e, jsonRequest(http.MethodPost, "/api/v1/templates",
			`{"name":"Open House Invite","category":"listing","content":"Hi {firstName}, join us Saturday!"}`), rec, user)

		require.NoError(t, handler.Create(c))
		assert.Equal(t, http.StatusCreated, rec.Code)

		var created crm.Template
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
		assert.NotEmpty(t, created.ID)
		assert.Equal(t, crm.CategoryListing, created.Category)
	})

	t.Run("bad category is rejected", func(t *testing.T) {
		rec := httptest.NewRecorder()
		c := authContext(e, jsonRequest(http.MethodPost, "/api/v1/templates",
			`{"name":"X","category":"spam","content":"y"}`), rec, user)

		require.NoError(t, handler.Create(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestFillAndSendTemplate(t *testing.T) {
	env := setupTestEnv(t)
	user := env.createTestUser(t, "dana@example.com", "secret-pass-1")
	templates := env.templateHandler()
	contacts := env.contactHandler()
	e := echo.New()

	rec := httptest.NewRecorder()
	c := authContext(e, jsonRequest(http.MethodPost, "/api/v1/templates",
		`{"name":"Check-in","category":"follow_up","content":"Hi {firstName}, this is {agentName}."}`), rec, user)
	require.NoError(t, templates.Create(c))
	var template crm.Template
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &template))

	rec = httptest.NewRecorder()
	c = authContext(e, jsonRequest(http.MethodPost, "/api/v1/contacts",
		`{"firstName":"Marcus","lastName":"Webb","email":"marcus@example.com"}`), rec, user)
	require.NoError(t, contacts.Create(c))
	var withEmail crm.Contact
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &withEmail))

	rec = httptest.NewRecorder()
	c = authContext(e, jsonRequest(http.MethodPost, "/api/v1/contacts",
		`{"firstName":"Nadia","lastName":"Osei"}`), rec, user)
	require.NoError(t, contacts.Create(c))
	var withoutEmail crm.Contact
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &withoutEmail))

	t.Run("fill substitutes contact and agent values", func(t *testing.T) {
		rec := httptest.NewRecorder()
		c := authContext(e, jsonRequest(http.MethodPost, "/", `{"contactId":"`+withEmail.ID+`"}`), rec, user)
		c.SetParamNames("id")
		c.SetParamValues(template.ID)

		require.NoError(t, templates.Fill(c))
		assert.Equal(t, http.StatusOK, rec.Code)

		var resp map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "Hi Marcus, this is Dana.", resp["content"])
	})

	t.Run("send to contact with email", func(t *testing.T) {
		rec := httptest.NewRecorder()
		c := authContext(e, jsonRequest(http.MethodPost, "/",
			`{"contactId":"`+withEmail.ID+`","subject":"Checking in"}`), rec, user)
		c.SetParamNames("id")
		c.SetParamValues(template.ID)

		require.NoError(t, templates.Send(c))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("send to contact without email is rejected", func(t *testing.T) {
		rec := httptest.NewRecorder()
		c := authContext(e, jsonRequest(http.MethodPost, "/",
			`{"contactId":"`+withoutEmail.ID+`","subject":"Checking in"}`), rec, user)
		c.SetParamNames("id")
		c.SetParamValues(template.ID)

		require.NoError(t, templates.Send(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("send with unknown template is 404", func(t *testing.T) {
		rec := httptest.NewRecorder()
		c := authContext(e, jsonRequest(http.MethodPost, "/",
			`{"contactId":"`+withEmail.ID+`","subject":"Checking in"}`), rec, user)
		c.SetParamNames("id")
		c.SetParamValues("no-such-template")

		require.NoError(t, templates.Send(c))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
