// Package workspace ties the CRM core together for one signed-in agent:
// it owns the state container, loads it from the remote database with a
// silent fallback to the local cache, and applies mutations optimistically.
//
// The mutation protocol is uniform: validate, attempt the remote write,
// log and count a failed write, then apply the local transition
// unconditionally. Remote unavailability degrades sync, never the
// workspace.
package workspace

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmaldonado/nestdesk/pkg/crm"
	"github.com/dmaldonado/nestdesk/pkg/domain"
	"github.com/dmaldonado/nestdesk/pkg/localstore"
	"github.com/dmaldonado/nestdesk/pkg/logger"
	"github.com/dmaldonado/nestdesk/pkg/repository"
	"github.com/dmaldonado/nestdesk/pkg/store"
	"github.com/dmaldonado/nestdesk/pkg/team"
)

// SyncMetrics receives a signal for every remote write that fell back to
// local state.
type SyncMetrics interface {
	RecordRemoteWriteFailure()
}

// Workspace is the per-user CRM session. One goroutine-safe state store,
// shared remote repositories (nil when the service runs without a
// database), and the local cache.
type Workspace struct {
	user    *crm.User
	state   *store.Store
	remote  *repository.Repositories
	teams   *team.Service
	local   *localstore.Store
	log     logger.Logger
	metrics SyncMetrics

	pendingWrites atomic.Int64

	mu      sync.Mutex
	visible []string
	teamID  *string
}

// New builds an unloaded workspace. remote and teams may be nil when no
// database is configured; local must not be.
func New(user *crm.User, remote *repository.Repositories, teams *team.Service, local *localstore.Store, log logger.Logger) *Workspace {
	return &Workspace{
		user:    user,
		state:   store.New(),
		remote:  remote,
		teams:   teams,
		local:   local,
		log:     log,
		visible: []string{user.ID},
	}
}

// SetMetrics attaches a sync-failure recorder. Call before the workspace
// serves requests.
func (w *Workspace) SetMetrics(m SyncMetrics) { w.metrics = m }

// User returns the owning account.
func (w *Workspace) User() *crm.User { return w.user }

// TeamID returns the user's team, when they are on one, as resolved at
// load time.
func (w *Workspace) TeamID() *string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.teamID
}

// PendingWrites reports how many remote writes have failed since load,
// i.e. how far the remote is known to lag the local state.
func (w *Workspace) PendingWrites() int64 {
	return w.pendingWrites.Load()
}

// Snapshot returns the current state.
func (w *Workspace) Snapshot() store.State {
	return w.state.Snapshot()
}

// ContactDetail returns one contact together with its reminders.
func (w *Workspace) ContactDetail(contactID string) (crm.Contact, []crm.Reminder, error) {
	contact, ok := w.state.ContactByID(contactID)
	if !ok {
		return crm.Contact{}, nil, domain.NewNotFoundError("contact")
	}
	return contact, store.RemindersForContact(w.state.Snapshot(), contactID), nil
}

// Load populates the workspace. Remote first; any remote failure is
// logged and the local cache used instead; an empty cache seeds the
// sample dataset. The state is replaced in a single transition so readers
// never observe a half-loaded workspace.
func (w *Workspace) Load(ctx context.Context) error {
	if w.remote != nil {
		if err := w.loadRemote(ctx); err == nil {
			return nil
		} else {
			w.log.Warn("remote load failed, using local cache", "error", err, "user_id", w.user.ID)
		}
	}
	return w.loadLocal()
}

func (w *Workspace) loadRemote(ctx context.Context) error {
	visible := []string{w.user.ID}
	var teamID *string
	if w.teams != nil {
		ids, tid, err := w.teams.VisibleUserIDs(ctx, w.user.ID)
		if err != nil {
			return fmt.Errorf("resolve visibility: %w", err)
		}
		visible, teamID = ids, tid
	}

	contacts, err := w.remote.Contacts.ListVisible(ctx, visible)
	if err != nil {
		return fmt.Errorf("load contacts: %w", err)
	}
	for i := range contacts {
		contacts[i].IsTeamDeal = contacts[i].UserID != w.user.ID
	}

	reminders, err := w.remote.Reminders.ListVisible(ctx, []string{w.user.ID})
	if err != nil {
		return fmt.Errorf("load reminders: %w", err)
	}

	templates, err := w.remote.Templates.ListVisible(ctx, w.user.ID, teamID)
	if err != nil {
		return fmt.Errorf("load templates: %w", err)
	}

	w.mu.Lock()
	w.visible = visible
	w.teamID = teamID
	w.mu.Unlock()

	w.state.Dispatch(store.LoadCompleted{
		Contacts:  contacts,
		Reminders: reminders,
		Templates: templates,
	})
	w.saveLocal(saveContacts | saveReminders | saveTemplates)
	return nil
}

func (w *Workspace) loadLocal() error {
	snap, err := w.local.Load(w.user.ID)
	if err != nil {
		return fmt.Errorf("load local cache: %w", err)
	}

	contacts, reminders := snap.Contacts, snap.Reminders
	if contacts == nil {
		// First run with nothing cached: seed the sample dataset so the
		// workspace is not an empty screen.
		contacts, reminders = crm.SampleData(w.user.ID, time.Now())
	}

	w.state.Dispatch(store.LoadCompleted{
		Contacts:  contacts,
		Reminders: reminders,
		Templates: snap.Templates,
	})
	w.saveLocal(saveContacts | saveReminders)
	return nil
}

// Loaded reports whether Load has completed.
func (w *Workspace) Loaded() bool {
	return w.state.Snapshot().Loaded
}

type saveMask int

const (
	saveContacts saveMask = 1 << iota
	saveReminders
	saveTemplates
)

func (w *Workspace) saveLocal(mask saveMask) {
	snap := w.state.Snapshot()
	if mask&saveContacts != 0 {
		if err := w.local.SaveContacts(w.user.ID, snap.Contacts); err != nil {
			w.log.Warn("local contact save failed", "error", err, "user_id", w.user.ID)
		}
	}
	if mask&saveReminders != 0 {
		if err := w.local.SaveReminders(w.user.ID, snap.Reminders); err != nil {
			w.log.Warn("local reminder save failed", "error", err, "user_id", w.user.ID)
		}
	}
	if mask&saveTemplates != 0 {
		if err := w.local.SaveTemplates(w.user.ID, snap.Templates); err != nil {
			w.log.Warn("local template save failed", "error", err, "user_id", w.user.ID)
		}
	}
}

// remoteWrite runs a persistence call under the optimistic protocol.
// Without a remote there is nothing to sync; with one, a failure bumps
// the pending counter and the caller proceeds regardless.
func (w *Workspace) remoteWrite(op string, fn func() error) {
	if w.remote == nil {
		return
	}
	if err := fn(); err != nil {
		w.pendingWrites.Add(1)
		if w.metrics != nil {
			w.metrics.RecordRemoteWriteFailure()
		}
		w.log.Warn("remote write failed, continuing with local state",
			"op", op, "error", err, "user_id", w.user.ID, "pending", w.pendingWrites.Load())
	}
}
