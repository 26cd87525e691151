package workspace

import (
	"context"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/dmaldonado/nestdesk/pkg/crm"
	"github.com/dmaldonado/nestdesk/pkg/domain"
	"github.com/dmaldonado/nestdesk/pkg/localstore"
	"github.com/dmaldonado/nestdesk/pkg/logger"
	"github.com/dmaldonado/nestdesk/pkg/repository"
	"github.com/dmaldonado/nestdesk/pkg/store"
)

func testUser() *crm.User {
	return &crm.User{ID: "u1", Email: "dana@nestdesk.example", Name: "Dana Reyes"}
}

func testLocal(t *testing.T) *localstore.Store {
	t.Helper()
	local, err := localstore.Open(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	return local
}

// localWorkspace runs without a remote, the no-database deployment mode.
func localWorkspace(t *testing.T) *Workspace {
	t.Helper()
	w := New(testUser(), nil, nil, testLocal(t), logger.Nop())
	require.NoError(t, w.Load(context.Background()))
	return w
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "remote.db")), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&crm.User{}, &crm.Contact{}, &crm.Activity{}, &crm.Showing{},
		&crm.Reminder{}, &crm.Template{},
	))
	return db
}

// remoteWorkspace runs against an in-memory database standing in for
// Postgres.
func remoteWorkspace(t *testing.T) (*Workspace, *repository.Repositories) {
	t.Helper()
	repos := repository.NewRepositories(openTestDB(t))
	w := New(testUser(), repos, nil, testLocal(t), logger.Nop())
	require.NoError(t, w.Load(context.Background()))
	return w, repos
}

// brokenWorkspace has a remote whose tables were never created, so every
// remote write fails.
func brokenWorkspace(t *testing.T) *Workspace {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "broken.db")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	w := New(testUser(), repository.NewRepositories(db), nil, testLocal(t), logger.Nop())
	require.NoError(t, w.Load(context.Background()))
	return w
}

func TestLoadSeedsSampleData(t *testing.T) {
	w := localWorkspace(t)
	snap := w.Snapshot()

	require.True(t, snap.Loaded)
	require.Len(t, snap.Contacts, 2)
	assert.Equal(t, "Sarah", snap.Contacts[0].FirstName)
	assert.Equal(t, "James", snap.Contacts[1].FirstName)
	require.Len(t, snap.Reminders, 1)
	assert.Equal(t, crm.PriorityHigh, snap.Reminders[0].Priority)
	assert.Len(t, snap.Templates, len(crm.DefaultTemplates))
}

func TestLoadUsesCacheOverSample(t *testing.T) {
	local := testLocal(t)
	user := testUser()

	first := New(user, nil, nil, local, logger.Nop())
	require.NoError(t, first.Load(context.Background()))
	_, err := first.AddContact(context.Background(), crm.Contact{FirstName: "Noor", LastName: "Haddad"})
	require.NoError(t, err)

	second := New(user, nil, nil, local, logger.Nop())
	require.NoError(t, second.Load(context.Background()))
	snap := second.Snapshot()
	require.Len(t, snap.Contacts, 3)
	assert.Equal(t, "Noor", snap.Contacts[0].FirstName)
}

func TestLoadFallsBackWhenRemoteDown(t *testing.T) {
	// Remote with no tables: every query fails, load must still succeed.
	w := brokenWorkspace(t)
	snap := w.Snapshot()

	require.True(t, snap.Loaded)
	assert.Len(t, snap.Contacts, 2, "sample data after silent fallback")
}

func TestAddContact(t *testing.T) {
	t.Run("applies defaults and prepends", func(t *testing.T) {
		w := localWorkspace(t)
		got, err := w.AddContact(context.Background(), crm.Contact{FirstName: "Noor", LastName: "Haddad"})
		require.NoError(t, err)

		assert.NotEmpty(t, got.ID)
		assert.Equal(t, crm.TemperatureWarm, got.Temperature)
		assert.False(t, got.LastContact.Before(got.CreatedAt))

		snap := w.Snapshot()
		assert.Equal(t, got.ID, snap.Contacts[0].ID)
	})

	t.Run("normalizes the phone number", func(t *testing.T) {
		w := localWorkspace(t)
		got, err := w.AddContact(context.Background(), crm.Contact{FirstName: "Noor", Phone: "2125550123"})
		require.NoError(t, err)
		assert.Equal(t, "(212) 555-0123", got.Phone)
	})

	t.Run("rejects invalid temperature", func(t *testing.T) {
		w := localWorkspace(t)
		_, err := w.AddContact(context.Background(), crm.Contact{FirstName: "X", Temperature: "tepid"})
		require.Error(t, err)
		assert.True(t, domain.IsValidation(err))
	})

	t.Run("persists to the remote", func(t *testing.T) {
		w, repos := remoteWorkspace(t)
		got, err := w.AddContact(context.Background(), crm.Contact{FirstName: "Noor"})
		require.NoError(t, err)

		stored, err := repos.Contacts.Get(context.Background(), got.ID, []string{"u1"})
		require.NoError(t, err)
		assert.Equal(t, "Noor", stored.FirstName)
	})
}

type countingSyncMetrics struct {
	failures atomic.Int64
}

func (c *countingSyncMetrics) RecordRemoteWriteFailure() { c.failures.Add(1) }

func TestMutationSurvivesRemoteFailure(t *testing.T) {
	w := brokenWorkspace(t)
	recorder := &countingSyncMetrics{}
	w.SetMetrics(recorder)
	before := len(w.Snapshot().Contacts)

	got, err := w.AddContact(context.Background(), crm.Contact{FirstName: "Noor"})
	require.NoError(t, err, "remote failure must not surface")

	snap := w.Snapshot()
	assert.Len(t, snap.Contacts, before+1)
	assert.Equal(t, got.ID, snap.Contacts[0].ID)
	assert.Equal(t, int64(1), w.PendingWrites())
	assert.Equal(t, int64(1), recorder.failures.Load())

	_, err = w.CompleteReminder(context.Background(), snap.Reminders[0].ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), w.PendingWrites())
	assert.Equal(t, int64(2), recorder.failures.Load())
}

func TestUpdateContact(t *testing.T) {
	t.Run("lastContact never moves backward", func(t *testing.T) {
		w := localWorkspace(t)
		added, err := w.AddContact(context.Background(), crm.Contact{FirstName: "Noor"})
		require.NoError(t, err)

		stale := added
		stale.LastContact = added.LastContact.Add(-48 * time.Hour)
		got, err := w.UpdateContact(context.Background(), stale)
		require.NoError(t, err)
		assert.True(t, got.LastContact.Equal(added.LastContact))
	})

	t.Run("unknown contact is not found", func(t *testing.T) {
		w := localWorkspace(t)
		_, err := w.UpdateContact(context.Background(), crm.Contact{ID: "ghost"})
		assert.True(t, domain.IsNotFound(err))
	})
}

func TestSetDealStage(t *testing.T) {
	w := localWorkspace(t)
	added, err := w.AddContact(context.Background(), crm.Contact{FirstName: "Noor"})
	require.NoError(t, err)

	stage := crm.StageOffer
	got, err := w.SetDealStage(context.Background(), added.ID, &stage)
	require.NoError(t, err)
	require.NotNil(t, got.DealStage)
	assert.Equal(t, crm.StageOffer, *got.DealStage)

	got, err = w.SetDealStage(context.Background(), added.ID, nil)
	require.NoError(t, err)
	assert.Nil(t, got.DealStage)
}

func TestDeleteContactCascadesReminders(t *testing.T) {
	w := localWorkspace(t)
	added, err := w.AddContact(context.Background(), crm.Contact{FirstName: "Noor"})
	require.NoError(t, err)
	_, err = w.AddReminder(context.Background(), crm.Reminder{
		ContactID: &added.ID, Title: "Call", DueDate: time.Now().Add(time.Hour),
	})
	require.NoError(t, err)
	remindersBefore := len(w.Snapshot().Reminders)

	require.NoError(t, w.DeleteContact(context.Background(), added.ID))

	snap := w.Snapshot()
	assert.Len(t, snap.Reminders, remindersBefore-1)
	_, ok := w.state.ContactByID(added.ID)
	assert.False(t, ok)
}

func TestAddActivityAdvancesLastContact(t *testing.T) {
	w := localWorkspace(t)
	added, err := w.AddContact(context.Background(), crm.Contact{FirstName: "Noor"})
	require.NoError(t, err)

	future := time.Now().Add(2 * time.Hour)
	got, err := w.AddActivity(context.Background(), added.ID, crm.ActivityCall, "Checked in", future)
	require.NoError(t, err)
	require.Len(t, got.Activities, 1)
	assert.True(t, got.LastContact.Equal(future))

	// An older activity is recorded but does not roll lastContact back.
	past := time.Now().Add(-72 * time.Hour)
	got, err = w.AddActivity(context.Background(), added.ID, crm.ActivityNote, "Backfilled note", past)
	require.NoError(t, err)
	require.Len(t, got.Activities, 2)
	assert.True(t, got.LastContact.Equal(future))
}

func TestAddShowingSynthesizesActivity(t *testing.T) {
	w := localWorkspace(t)
	added, err := w.AddContact(context.Background(), crm.Contact{FirstName: "Noor"})
	require.NoError(t, err)

	got, err := w.AddShowing(context.Background(), added.ID, "12 Harbor Lane", crm.ReactionLoved, "loved the porch", time.Now())
	require.NoError(t, err)
	require.Len(t, got.Showings, 1)
	require.Len(t, got.Activities, 1)
	assert.Equal(t, crm.ActivityShowing, got.Activities[0].Type)
	assert.Equal(t, "Showed 12 Harbor Lane - loved the porch", got.Activities[0].Note)
}

func TestDeleteShowingKeepsActivity(t *testing.T) {
	w := localWorkspace(t)
	added, err := w.AddContact(context.Background(), crm.Contact{FirstName: "Noor"})
	require.NoError(t, err)
	withShowing, err := w.AddShowing(context.Background(), added.ID, "12 Harbor Lane", "", "", time.Now())
	require.NoError(t, err)

	got, err := w.DeleteShowing(context.Background(), added.ID, withShowing.Showings[0].ID)
	require.NoError(t, err)
	assert.Empty(t, got.Showings)
	assert.Len(t, got.Activities, 1)
}

func TestReminderLifecycle(t *testing.T) {
	w := localWorkspace(t)

	t.Run("add requires title and due date", func(t *testing.T) {
		_, err := w.AddReminder(context.Background(), crm.Reminder{DueDate: time.Now()})
		assert.True(t, domain.IsValidation(err))
		_, err = w.AddReminder(context.Background(), crm.Reminder{Title: "Call"})
		assert.True(t, domain.IsValidation(err))
	})

	t.Run("complete is one way", func(t *testing.T) {
		added, err := w.AddReminder(context.Background(), crm.Reminder{Title: "Call", DueDate: time.Now().Add(time.Hour)})
		require.NoError(t, err)

		done, err := w.CompleteReminder(context.Background(), added.ID)
		require.NoError(t, err)
		assert.True(t, done.Completed)

		again, err := w.CompleteReminder(context.Background(), added.ID)
		require.NoError(t, err)
		assert.True(t, again.Completed)

		reopened := done
		reopened.Completed = false
		_, err = w.UpdateReminder(context.Background(), reopened)
		assert.True(t, domain.IsValidation(err))
	})

	t.Run("link must point at a known contact", func(t *testing.T) {
		ghost := "ghost"
		_, err := w.AddReminder(context.Background(), crm.Reminder{
			ContactID: &ghost, Title: "Call", DueDate: time.Now(),
		})
		assert.True(t, domain.IsValidation(err))
	})
}

func TestTemplateLifecycle(t *testing.T) {
	w := localWorkspace(t)
	base := len(crm.DefaultTemplates)

	added, err := w.AddTemplate(context.Background(), crm.Template{
		Name: "Open House Invite", Category: crm.CategoryListing, Content: "Hi {firstName}!",
	})
	require.NoError(t, err)
	assert.Len(t, w.Snapshot().Templates, base+1)

	added.Content = "Hello {firstName}!"
	updated, err := w.UpdateTemplate(context.Background(), added)
	require.NoError(t, err)
	assert.Equal(t, "Hello {firstName}!", updated.Content)

	require.NoError(t, w.DeleteTemplate(context.Background(), added.ID))
	assert.Len(t, w.Snapshot().Templates, base)
}

func TestEditingStockTemplate(t *testing.T) {
	w, repos := remoteWorkspace(t)
	stock := w.Snapshot().Templates[0]
	stock.Content = "My own wording, {firstName}."

	got, err := w.UpdateTemplate(context.Background(), stock)
	require.NoError(t, err)
	assert.Equal(t, stock.ID, got.ID)

	// The customization gained a row even though the stock template never
	// had one.
	saved, err := repos.Templates.ListVisible(context.Background(), "u1", nil)
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, stock.ID, saved[0].ID)
}

func TestFillTemplate(t *testing.T) {
	w := localWorkspace(t)
	added, err := w.AddTemplate(context.Background(), crm.Template{
		Name:     "Greeting",
		Category: crm.CategoryFollowUp,
		Content:  "Hi {firstName}, {agentName} here about {propertyAddress}.",
	})
	require.NoError(t, err)
	contact, err := w.AddContact(context.Background(), crm.Contact{FirstName: "Noor", LastName: "Haddad"})
	require.NoError(t, err)

	t.Run("with contact", func(t *testing.T) {
		got, err := w.FillTemplate(added.ID, contact.ID)
		require.NoError(t, err)
		assert.Equal(t, "Hi Noor, Dana here about [Property Address].", got)
	})

	t.Run("without contact leaves contact tokens verbatim", func(t *testing.T) {
		got, err := w.FillTemplate(added.ID, "")
		require.NoError(t, err)
		assert.Equal(t, "Hi {firstName}, Dana here about [Property Address].", got)
	})
}

func TestSearchAndFilter(t *testing.T) {
	w := localWorkspace(t)

	w.SetSearch("sarah")
	filtered := store.FilteredContacts(w.Snapshot())
	require.Len(t, filtered, 1)
	assert.Equal(t, "Sarah", filtered[0].FirstName)

	w.SetSearch("")
	require.NoError(t, w.SetTemperatureFilter("hot"))
	assert.Len(t, store.FilteredContacts(w.Snapshot()), 2)

	err := w.SetTemperatureFilter("lava")
	assert.True(t, domain.IsValidation(err))
}

func TestRemoteRoundTrip(t *testing.T) {
	db := openTestDB(t)
	repos := repository.NewRepositories(db)
	local := testLocal(t)
	user := testUser()

	first := New(user, repos, nil, local, logger.Nop())
	require.NoError(t, first.Load(context.Background()))
	added, err := first.AddContact(context.Background(), crm.Contact{FirstName: "Noor"})
	require.NoError(t, err)
	_, err = first.AddShowing(context.Background(), added.ID, "12 Harbor Lane", crm.ReactionMaybe, "", time.Now())
	require.NoError(t, err)
	require.Zero(t, first.PendingWrites())

	second := New(user, repos, nil, local, logger.Nop())
	require.NoError(t, second.Load(context.Background()))
	snap := second.Snapshot()
	require.Len(t, snap.Contacts, 1)
	assert.Equal(t, "Noor", snap.Contacts[0].FirstName)
	assert.Len(t, snap.Contacts[0].Showings, 1)
	assert.Len(t, snap.Contacts[0].Activities, 1)
}
