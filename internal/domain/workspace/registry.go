package workspace

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/wwwqqqzzz/digital-workspace-os/internal/events"
	"github.com/wwwqqqzzz/digital-workspace-os/internal/shared/id"
	"github.com/wwwqqqzzz/digital-workspace-os/internal/shared/types"
	"github.com/wwwqqqzzz/digital-workspace-os/internal/store"
)

// ErrNotFound is returned when an operation requires an existing workspace.
var ErrNotFound = errors.New("workspace not found")

// ActiveWorkspaceKey is the settings key holding the active workspace id
// across restarts.
const ActiveWorkspaceKey = "active-workspace"

// Registry owns workspace CRUD and the active-workspace pointer.
type Registry struct {
	mu       sync.RWMutex
	activeID *string // Protected by mu

	store *store.Store
	bus   *events.Bus
}

// NewRegistry creates a workspace registry.
func NewRegistry(st *store.Store, bus *events.Bus) *Registry {
	return &Registry{
		store: st,
		bus:   bus,
	}
}

// Create generates id and partition, persists the workspace, and emits
// a created event.
func (r *Registry) Create(cfg types.WorkspaceConfig) (*types.Workspace, error) {
	now := time.Now()
	wsID := id.NewWorkspaceID().String()

	ws := &types.Workspace{
		ID:             wsID,
		Name:           cfg.Name,
		Icon:           cfg.Icon,
		Color:          cfg.Color,
		Partition:      types.PartitionFor(wsID),
		Settings:       cfg.Settings,
		CreatedAt:      now,
		LastAccessedAt: now,
	}

	if err := r.store.SaveWorkspace(ws); err != nil {
		return nil, fmt.Errorf("create workspace: %w", err)
	}

	r.bus.PublishWorkspace(types.WorkspaceCreated, ws)
	return ws, nil
}

// Get returns the workspace with the given id, or nil if absent.
// Read-through; never cached.
func (r *Registry) Get(wsID string) (*types.Workspace, error) {
	return r.store.LoadWorkspace(wsID)
}

// List returns every workspace in store order (lastAccessedAt descending).
func (r *Registry) List() ([]*types.Workspace, error) {
	return r.store.LoadAllWorkspaces()
}

// Update merges the given partial fields, bumps lastAccessedAt, persists,
// and emits an updated event. Returns ErrNotFound for an unknown id.
func (r *Registry) Update(wsID string, upd types.WorkspaceUpdate) (*types.Workspace, error) {
	ws, err := r.store.LoadWorkspace(wsID)
	if err != nil {
		return nil, err
	}
	if ws == nil {
		return nil, ErrNotFound
	}

	if upd.Name != nil {
		ws.Name = *upd.Name
	}
	if upd.Icon != nil {
		ws.Icon = upd.Icon
	}
	if upd.Color != nil {
		ws.Color = upd.Color
	}
	if upd.Settings != nil {
		ws.Settings = upd.Settings
	}
	ws.LastAccessedAt = time.Now()

	if err := r.store.SaveWorkspace(ws); err != nil {
		return nil, fmt.Errorf("update workspace %s: %w", wsID, err)
	}

	r.bus.PublishWorkspace(types.WorkspaceUpdated, ws)
	return ws, nil
}

// Delete removes the workspace (the store cascades to its tabs), clears the
// active pointer if it pointed here, and emits a deleted event.
func (r *Registry) Delete(wsID string) error {
	if err := r.store.DeleteWorkspace(wsID); err != nil {
		return err
	}

	r.mu.Lock()
	wasActive := r.activeID != nil && *r.activeID == wsID
	if wasActive {
		r.activeID = nil
	}
	r.mu.Unlock()

	if wasActive {
		if err := r.store.DeleteSetting(ActiveWorkspaceKey); err != nil {
			return err
		}
	}

	r.bus.PublishWorkspace(types.WorkspaceDeleted, wsID)
	return nil
}

// Activate sets the process-wide active pointer, bumps lastAccessedAt,
// persists both, and emits an activated event. Returns ErrNotFound for an
// unknown id; the active pointer is left unchanged in that case.
func (r *Registry) Activate(wsID string) (*types.Workspace, error) {
	ws, err := r.store.LoadWorkspace(wsID)
	if err != nil {
		return nil, err
	}
	if ws == nil {
		return nil, ErrNotFound
	}

	ws.LastAccessedAt = time.Now()
	if err := r.store.SaveWorkspace(ws); err != nil {
		return nil, fmt.Errorf("activate workspace %s: %w", wsID, err)
	}
	if err := r.store.SetSetting(ActiveWorkspaceKey, wsID); err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.activeID = &ws.ID
	r.mu.Unlock()

	r.bus.PublishWorkspace(types.WorkspaceActivated, ws)
	return ws, nil
}

// Deactivate clears the active pointer. No event is defined for this.
func (r *Registry) Deactivate() {
	r.mu.Lock()
	r.activeID = nil
	r.mu.Unlock()
}

// GetActive returns the active workspace, or nil when none is active.
func (r *Registry) GetActive() (*types.Workspace, error) {
	r.mu.RLock()
	active := r.activeID
	r.mu.RUnlock()

	if active == nil {
		return nil, nil
	}
	return r.store.LoadWorkspace(*active)
}

// RestoreActive re-activates the workspace persisted under
// ActiveWorkspaceKey, if it still exists. Called once at startup.
func (r *Registry) RestoreActive() error {
	var wsID string
	ok, err := r.store.GetSetting(ActiveWorkspaceKey, &wsID)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	_, err = r.Activate(wsID)
	if errors.Is(err, ErrNotFound) {
		// The persisted id is stale; drop it.
		return r.store.DeleteSetting(ActiveWorkspaceKey)
	}
	return err
}

// Stats returns registry statistics.
func (r *Registry) Stats() types.WorkspaceStats {
	r.mu.RLock()
	var active *string
	if r.activeID != nil {
		id := *r.activeID
		active = &id
	}
	r.mu.RUnlock()

	total := 0
	if all, err := r.store.LoadAllWorkspaces(); err == nil {
		total = len(all)
	}

	return types.WorkspaceStats{
		TotalWorkspaces:   total,
		ActiveWorkspaceID: active,
	}
}
