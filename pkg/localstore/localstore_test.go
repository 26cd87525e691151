package localstore

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmaldonado/nestdesk/pkg/crm"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	return store
}

func TestLoadEmpty(t *testing.T) {
	store := openTestStore(t)

	snap, err := store.Load("u1")
	require.NoError(t, err)
	assert.Nil(t, snap.Contacts)
	assert.Nil(t, snap.Reminders)
	assert.Nil(t, snap.Templates)
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	store := openTestStore(t)
	now := time.Now().Truncate(time.Second).UTC()

	contacts := []crm.Contact{{
		ID:          "c1",
		FirstName:   "Sarah",
		LastName:    "Mitchell",
		Temperature: crm.TemperatureHot,
		LastContact: now,
		CreatedAt:   now,
	}}
	require.NoError(t, store.SaveContacts("u1", contacts))
	require.NoError(t, store.SaveReminders("u1", []crm.Reminder{{ID: "r1", Title: "Call back", DueDate: now}}))

	snap, err := store.Load("u1")
	require.NoError(t, err)
	require.Len(t, snap.Contacts, 1)
	assert.Equal(t, "Sarah", snap.Contacts[0].FirstName)
	assert.True(t, snap.Contacts[0].LastContact.Equal(now))
	require.Len(t, snap.Reminders, 1)
	assert.Equal(t, "Call back", snap.Reminders[0].Title)
}

func TestSaveOverwrites(t *testing.T) {
	store := openTestStore(t)
	now := time.Now()

	require.NoError(t, store.SaveContacts("u1", []crm.Contact{{ID: "c1", FirstName: "Old", LastContact: now, CreatedAt: now}}))
	require.NoError(t, store.SaveContacts("u1", []crm.Contact{{ID: "c2", FirstName: "New", LastContact: now, CreatedAt: now}}))

	snap, err := store.Load("u1")
	require.NoError(t, err)
	require.Len(t, snap.Contacts, 1)
	assert.Equal(t, "c2", snap.Contacts[0].ID)
}

func TestUsersAreIsolated(t *testing.T) {
	store := openTestStore(t)
	now := time.Now()

	require.NoError(t, store.SaveContacts("u1", []crm.Contact{{ID: "c1", LastContact: now, CreatedAt: now}}))

	snap, err := store.Load("u2")
	require.NoError(t, err)
	assert.Nil(t, snap.Contacts)
}

func TestClose(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.SaveContacts("u1", []crm.Contact{{ID: "c1"}}))
	require.NoError(t, store.Close())

	assert.Error(t, store.SaveContacts("u1", []crm.Contact{{ID: "c2"}}))
}
