package workspace

import (
	"context"
	"sync"

	"github.com/dmaldonado/nestdesk/pkg/crm"
	"github.com/dmaldonado/nestdesk/pkg/domain"
	"github.com/dmaldonado/nestdesk/pkg/localstore"
	"github.com/dmaldonado/nestdesk/pkg/logger"
	"github.com/dmaldonado/nestdesk/pkg/repository"
	"github.com/dmaldonado/nestdesk/pkg/team"
)

// Manager keeps the live workspaces, one per signed-in user. A workspace
// is created and loaded on first use and dropped at logout.
type Manager struct {
	remote  *repository.Repositories
	teams   *team.Service
	local   *localstore.Store
	log     logger.Logger
	metrics SyncMetrics

	mu         sync.Mutex
	workspaces map[string]*Workspace
}

func NewManager(remote *repository.Repositories, teams *team.Service, local *localstore.Store, log logger.Logger) *Manager {
	return &Manager{
		remote:     remote,
		teams:      teams,
		local:      local,
		log:        log,
		workspaces: make(map[string]*Workspace),
	}
}

// SetMetrics attaches a sync-failure recorder passed on to every
// workspace the manager opens.
func (m *Manager) SetMetrics(metrics SyncMetrics) {
	m.metrics = metrics
}

// Open returns the user's workspace, loading it first if this is their
// first touch since login.
func (m *Manager) Open(ctx context.Context, user *crm.User) (*Workspace, error) {
	m.mu.Lock()
	w, ok := m.workspaces[user.ID]
	if !ok {
		w = New(user, m.remote, m.teams, m.local, m.log)
		w.SetMetrics(m.metrics)
		m.workspaces[user.ID] = w
	}
	m.mu.Unlock()

	if !w.Loaded() {
		if err := w.Load(ctx); err != nil {
			m.mu.Lock()
			delete(m.workspaces, user.ID)
			m.mu.Unlock()
			return nil, err
		}
	}
	return w, nil
}

// Get returns an already-open workspace.
func (m *Manager) Get(userID string) (*Workspace, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.workspaces[userID]
	if !ok {
		return nil, domain.NewNotFoundError("workspace")
	}
	return w, nil
}

// Close drops a user's workspace, typically at logout. The next Open
// reloads from storage.
func (m *Manager) Close(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.workspaces, userID)
}

// Reload forces a fresh load, used after a handoff lands new contacts in
// a teammate's pipeline.
func (m *Manager) Reload(ctx context.Context, user *crm.User) (*Workspace, error) {
	m.Close(user.ID)
	return m.Open(ctx, user)
}
