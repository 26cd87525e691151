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
)

func (env *testEnv) contactHandler() *ContactHandler {
	return NewContactHandler(env.sessions, env.users, testMetrics)
}

func listContacts(t *testing.T, handler *ContactHandler, e *echo.Echo, user *crm.User) []crm.Contact {
	t.Helper()
	rec := httptest.NewRecorder()
	c := authContext(e, httptest.NewRequest(http.MethodGet, "/api/v1/contacts", nil), rec, user)
	require.NoError(t, handler.List(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var contacts []crm.Contact
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &contacts))
	return contacts
}

func TestCreateContact(t *testing.T) {
	env := setupTestEnv(t)
	user := env.createTestUser(t, "dana@example.com", "secret-pass-1")
	handler := env.contactHandler()
	e := echo.New()

	before := len(listContacts(t, handler, e, user))

	body := `{"firstName":"Marcus","lastName":"Webb","email":"marcus@example.com","temperature":"hot","budget":"$600k-$700k"}`
	rec := httptest.NewRecorder()
	c := authContext(e, jsonRequest(http.MethodPost, "/api/v1/contacts", body), rec, user)

	require.NoError(t, handler.Create(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	var created crm.Contact
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Marcus", created.FirstName)
	assert.Equal(t, crm.TemperatureHot, created.Temperature)

	assert.Len(t, listContacts(t, handler, e, user), before+1)

	t.Run("invalid temperature is rejected", func(t *testing.T) {
		rec := httptest.NewRecorder()
		c := authContext(e, jsonRequest(http.MethodPost, "/api/v1/contacts",
			`{"firstName":"Bad","temperature":"scorching"}`), rec, user)

		require.NoError(t, handler.Create(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestContactLifecycle(t *testing.T) {
	env := setupTestEnv(t)
	user := env.createTestUser(t, "dana@example.com", "secret-pass-1")
	handler := env.contactHandler()
	e := echo.New()

	rec := httptest.NewRecorder()
	c := authContext(e, jsonRequest(http.MethodPost, "/api/v1/contacts",
		`{"firstName":"Ines","lastName":"Morales","temperature":"warm"}`), rec, user)
	require.NoError(t, handler.Create(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var contact crm.Contact
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &contact))

	t.Run("get returns contact with reminders", func(t *testing.T) {
		rec := httptest.NewRecorder()
		c := authContext(e, httptest.NewRequest(http.MethodGet, "/", nil), rec, user)
		c.SetParamNames("id")
		c.SetParamValues(contact.ID)

		require.NoError(t, handler.Get(c))
		assert.Equal(t, http.StatusOK, rec.Code)

		var detail struct {
			Contact   crm.Contact    `json:"contact"`
			Reminders []crm.Reminder `json:"reminders"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &detail))
		assert.Equal(t, "Ines", detail.Contact.FirstName)
		assert.Empty(t, detail.Reminders)
	})

	t.Run("set deal stage", func(t *testing.T) {
		rec := httptest.NewRecorder()
		c := authContext(e, jsonRequest(http.MethodPut, "/", `{"dealStage":"showing"}`), rec, user)
		c.SetParamNames("id")
		c.SetParamValues(contact.ID)

		require.NoError(t, handler.SetStage(c))
		assert.Equal(t, http.StatusOK, rec.Code)

		var updated crm.Contact
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
		require.NotNil(t, updated.DealStage)
		assert.Equal(t, crm.StageShowing, *updated.DealStage)
	})

	t.Run("add activity touches last contact", func(t *testing.T) {
		rec := httptest.NewRecorder()
		c := authContext(e, jsonRequest(http.MethodPost, "/", `{"type":"call","note":"Discussed financing"}`), rec, user)
		c.SetParamNames("id")
		c.SetParamValues(contact.ID)

		require.NoError(t, handler.AddActivity(c))
		assert.Equal(t, http.StatusCreated, rec.Code)

		var updated crm.Contact
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
		require.Len(t, updated.Activities, 1)
		assert.Equal(t, crm.ActivityCall, updated.Activities[0].Type)
		assert.False(t, updated.LastContact.IsZero())
	})

	t.Run("add and delete showing", func(t *testing.T) {
		rec := httptest.NewRecorder()
		c := authContext(e, jsonRequest(http.MethodPost, "/",
			`{"address":"12 Alder Ct","reaction":"loved","notes":"Wants a second visit"}`), rec, user)
		c.SetParamNames("id")
		c.SetParamValues(contact.ID)

		require.NoError(t, handler.AddShowing(c))
		require.Equal(t, http.StatusCreated, rec.Code)

		var updated crm.Contact
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
		require.Len(t, updated.Showings, 1)

		rec = httptest.NewRecorder()
		c = authContext(e, httptest.NewRequest(http.MethodDelete, "/", nil), rec, user)
		c.SetParamNames("id", "showingId")
		c.SetParamValues(contact.ID, updated.Showings[0].ID)

		require.NoError(t, handler.DeleteShowing(c))
		assert.Equal(t, http.StatusOK, rec.Code)

		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
		assert.Empty(t, updated.Showings)
		// the showing's synthesized activity survives the delete
		assert.NotEmpty(t, updated.Activities)
	})

	t.Run("delete contact", func(t *testing.T) {
		before := len(listContacts(t, handler, e, user))

		rec := httptest.NewRecorder()
		c := authContext(e, httptest.NewRequest(http.MethodDelete, "/", nil), rec, user)
		c.SetParamNames("id")
		c.SetParamValues(contact.ID)

		require.NoError(t, handler.Delete(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, listContacts(t, handler, e, user), before-1)
	})

	t.Run("get deleted contact is 404", func(t *testing.T) {
		rec := httptest.NewRecorder()
		c := authContext(e, httptest.NewRequest(http.MethodGet, "/", nil), rec, user)
		c.SetParamNames("id")
		c.SetParamValues(contact.ID)

		require.NoError(t, handler.Get(c))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestSearchAndFilter(t *testing.T) {
	env := setupTestEnv(t)
	user := env.createTestUser(t, "dana@example.com", "secret-pass-1")
	handler := env.contactHandler()
	e := echo.New()

	rec := httptest.NewRecorder()
	c := authContext(e, jsonRequest(http.MethodPost, "/api/v1/contacts",
		`{"firstName":"Zelda","lastName":"Quintero","temperature":"hot"}`), rec, user)
	require.NoError(t, handler.Create(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	t.Run("search narrows the list", func(t *testing.T) {
		rec := httptest.NewRecorder()
		c := authContext(e, jsonRequest(http.MethodPut, "/api/v1/search", `{"query":"quintero"}`), rec, user)

		require.NoError(t, handler.SetSearch(c))
		assert.Equal(t, http.StatusOK, rec.Code)

		var contacts []crm.Contact
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &contacts))
		require.Len(t, contacts, 1)
		assert.Equal(t, "Zelda", contacts[0].FirstName)
	})

	t.Run("search with no matches", func(t *testing.T) {
		rec := httptest.NewRecorder()
		c := authContext(e, jsonRequest(http.MethodPut, "/api/v1/search", `{"query":"zzz-no-such-contact"}`), rec, user)

		require.NoError(t, handler.SetSearch(c))

		var contacts []crm.Contact
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &contacts))
		assert.Empty(t, contacts)
	})

	t.Run("clearing the search restores the list", func(t *testing.T) {
		rec := httptest.NewRecorder()
		c := authContext(e, jsonRequest(http.MethodPut, "/api/v1/search", `{"query":""}`), rec, user)

		require.NoError(t, handler.SetSearch(c))

		var contacts []crm.Contact
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &contacts))
		assert.NotEmpty(t, contacts)
	})

	t.Run("temperature filter", func(t *testing.T) {
		rec := httptest.NewRecorder()
		c := authContext(e, jsonRequest(http.MethodPut, "/api/v1/filter", `{"temperature":"hot"}`), rec, user)

		require.NoError(t, handler.SetFilter(c))
		assert.Equal(t, http.StatusOK, rec.Code)

		var contacts []crm.Contact
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &contacts))
		require.NotEmpty(t, contacts)
		for _, contact := range contacts {
			assert.Equal(t, crm.TemperatureHot, contact.Temperature)
		}
	})

	t.Run("invalid filter is rejected", func(t *testing.T) {
		rec := httptest.NewRecorder()
		c := authContext(e, jsonRequest(http.MethodPut, "/api/v1/filter", `{"temperature":"tepid"}`), rec, user)

		require.NoError(t, handler.SetFilter(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
