package tab

import (
	"fmt"
	"sync"
	"time"

	"github.com/wwwqqqzzz/digital-workspace-os/internal/events"
	"github.com/wwwqqqzzz/digital-workspace-os/internal/shared/id"
	"github.com/wwwqqqzzz/digital-workspace-os/internal/shared/types"
	"github.com/wwwqqqzzz/digital-workspace-os/internal/store"
)

// Cache holds each workspace's ordered tab list in memory.
type Cache struct {
	mu             sync.Mutex
	workspaceTabs  map[string][]*types.Tab // Protected by mu
	tabToWorkspace map[string]string       // Protected by mu
	wsLocks        map[string]*sync.Mutex  // Protected by mu; entries never removed

	store *store.Store
	bus   *events.Bus
}

// NewCache creates an empty tab cache over the given store.
func NewCache(st *store.Store, bus *events.Bus) *Cache {
	return &Cache{
		workspaceTabs:  make(map[string][]*types.Tab),
		tabToWorkspace: make(map[string]string),
		wsLocks:        make(map[string]*sync.Mutex),
		store:          st,
		bus:            bus,
	}
}

// lockFor returns the mutation lock for a workspace, creating it on first use.
func (c *Cache) lockFor(workspaceID string) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()

	l, ok := c.wsLocks[workspaceID]
	if !ok {
		l = &sync.Mutex{}
		c.wsLocks[workspaceID] = l
	}
	return l
}

// tabs returns the live cached list for a workspace, loading it from the
// store on first access. Caller must hold the workspace lock.
func (c *Cache) tabs(workspaceID string) ([]*types.Tab, error) {
	c.mu.Lock()
	cached, ok := c.workspaceTabs[workspaceID]
	c.mu.Unlock()
	if ok {
		return cached, nil
	}

	loaded, err := c.store.LoadTabs(workspaceID)
	if err != nil {
		return nil, err
	}
	if loaded == nil {
		loaded = []*types.Tab{}
	}

	c.mu.Lock()
	c.workspaceTabs[workspaceID] = loaded
	for _, t := range loaded {
		c.tabToWorkspace[t.ID] = workspaceID
	}
	c.mu.Unlock()

	return loaded, nil
}

// setTabs installs a new list for a workspace. Caller must hold the
// workspace lock.
func (c *Cache) setTabs(workspaceID string, tabs []*types.Tab) {
	c.mu.Lock()
	c.workspaceTabs[workspaceID] = tabs
	c.mu.Unlock()
}

// workspaceOf resolves a tab id to its owning workspace, or "" if unknown.
func (c *Cache) workspaceOf(tabID string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tabToWorkspace[tabID]
}

// TabsFor returns copies of a workspace's tabs in cache order.
func (c *Cache) TabsFor(workspaceID string) ([]*types.Tab, error) {
	l := c.lockFor(workspaceID)
	l.Lock()
	defer l.Unlock()

	tabs, err := c.tabs(workspaceID)
	if err != nil {
		return nil, err
	}
	return copyTabs(tabs), nil
}

// Create appends a new active tab to the workspace, deactivating every
// existing tab, persists the snapshot and emits a created event.
func (c *Cache) Create(ws *types.Workspace, url string) (*types.Tab, error) {
	l := c.lockFor(ws.ID)
	l.Lock()
	defer l.Unlock()

	tabs, err := c.tabs(ws.ID)
	if err != nil {
		return nil, err
	}

	for _, t := range tabs {
		t.Active = false
	}

	now := time.Now()
	tab := &types.Tab{
		ID:             id.NewTabID().String(),
		WorkspaceID:    ws.ID,
		URL:            url,
		Active:         true,
		Suspended:      false,
		CreatedAt:      now,
		LastAccessedAt: now,
	}
	next := append(tabs, tab)

	if err := c.store.SaveTabs(ws.ID, next); err != nil {
		return nil, fmt.Errorf("create tab: %w", err)
	}

	c.mu.Lock()
	c.workspaceTabs[ws.ID] = next
	c.tabToWorkspace[tab.ID] = ws.ID
	c.mu.Unlock()

	out := *tab
	c.bus.PublishTab(types.TabCreated, &out)
	return &out, nil
}

// Close removes a tab. If it was active and tabs remain, the first remaining
// tab becomes active. Unknown ids are silent no-ops; the removed record is
// returned when something was closed.
func (c *Cache) Close(tabID string) (*types.Tab, error) {
	wsID := c.workspaceOf(tabID)
	if wsID == "" {
		return nil, nil
	}

	l := c.lockFor(wsID)
	l.Lock()
	defer l.Unlock()

	tabs, err := c.tabs(wsID)
	if err != nil {
		return nil, err
	}

	idx := indexOf(tabs, tabID)
	if idx < 0 {
		return nil, nil
	}

	removed := tabs[idx]

	// Build the post-close list from copies so a persist failure leaves the
	// cached tabs untouched; the copies replace the cache only after commit.
	next := copyTabs(append(append([]*types.Tab{}, tabs[:idx]...), tabs[idx+1:]...))
	if removed.Active && len(next) > 0 {
		next[0].Active = true
	}

	if err := c.store.SaveTabs(wsID, next); err != nil {
		return nil, fmt.Errorf("close tab %s: %w", tabID, err)
	}

	c.mu.Lock()
	c.workspaceTabs[wsID] = next
	delete(c.tabToWorkspace, tabID)
	c.mu.Unlock()

	out := *removed
	c.bus.PublishTab(types.TabClosed, &out)
	return &out, nil
}

// Activate marks exactly the given tab active and its siblings inactive,
// bumps lastAccessedAt, persists and emits. Unknown ids are silent no-ops.
func (c *Cache) Activate(tabID string) (*types.Tab, error) {
	wsID := c.workspaceOf(tabID)
	if wsID == "" {
		return nil, nil
	}

	l := c.lockFor(wsID)
	l.Lock()
	defer l.Unlock()

	tabs, err := c.tabs(wsID)
	if err != nil {
		return nil, err
	}

	idx := indexOf(tabs, tabID)
	if idx < 0 {
		return nil, nil
	}

	for _, t := range tabs {
		t.Active = t.ID == tabID
	}
	tabs[idx].LastAccessedAt = time.Now()

	if err := c.store.SaveTabs(wsID, tabs); err != nil {
		return nil, fmt.Errorf("activate tab %s: %w", tabID, err)
	}

	out := *tabs[idx]
	c.bus.PublishTab(types.TabActivated, &out)
	return &out, nil
}

// Update merges partial fields into a tab, bumps lastAccessedAt, persists
// and emits. Unknown ids are silent no-ops.
func (c *Cache) Update(tabID string, upd types.TabUpdate) (*types.Tab, error) {
	wsID := c.workspaceOf(tabID)
	if wsID == "" {
		return nil, nil
	}

	l := c.lockFor(wsID)
	l.Lock()
	defer l.Unlock()

	tabs, err := c.tabs(wsID)
	if err != nil {
		return nil, err
	}

	idx := indexOf(tabs, tabID)
	if idx < 0 {
		return nil, nil
	}

	t := tabs[idx]
	if upd.URL != nil {
		t.URL = *upd.URL
	}
	if upd.Title != nil {
		t.Title = upd.Title
	}
	if upd.Favicon != nil {
		t.Favicon = upd.Favicon
	}
	t.LastAccessedAt = time.Now()

	if err := c.store.SaveTabs(wsID, tabs); err != nil {
		return nil, fmt.Errorf("update tab %s: %w", tabID, err)
	}

	out := *t
	c.bus.PublishTab(types.TabUpdated, &out)
	return &out, nil
}

// Reorder places known ids in the given order, then appends any cached tabs
// not named in the input in their prior relative order, persists and emits
// the full reordered list.
func (c *Cache) Reorder(workspaceID string, orderedIDs []string) ([]*types.Tab, error) {
	l := c.lockFor(workspaceID)
	l.Lock()
	defer l.Unlock()

	tabs, err := c.tabs(workspaceID)
	if err != nil {
		return nil, err
	}

	named := make(map[string]bool, len(orderedIDs))
	byID := make(map[string]*types.Tab, len(tabs))
	for _, t := range tabs {
		byID[t.ID] = t
	}

	next := make([]*types.Tab, 0, len(tabs))
	for _, tid := range orderedIDs {
		if t, ok := byID[tid]; ok && !named[tid] {
			next = append(next, t)
			named[tid] = true
		}
	}
	for _, t := range tabs {
		if !named[t.ID] {
			next = append(next, t)
		}
	}

	if err := c.store.SaveTabs(workspaceID, next); err != nil {
		return nil, fmt.Errorf("reorder tabs for %s: %w", workspaceID, err)
	}

	c.setTabs(workspaceID, next)

	out := copyTabs(next)
	c.bus.PublishTab(types.TabReordered, out)
	return out, nil
}

// Evict drops a workspace's cached list. Used after workspace deletion so a
// recreated workspace id reloads from the store.
func (c *Cache) Evict(workspaceID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, t := range c.workspaceTabs[workspaceID] {
		delete(c.tabToWorkspace, t.ID)
	}
	delete(c.workspaceTabs, workspaceID)
}

// Stats returns cache statistics.
func (c *Cache) Stats() types.TabStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return types.TabStats{
		CachedWorkspaces: len(c.workspaceTabs),
		CachedTabs:       len(c.tabToWorkspace),
	}
}

func indexOf(tabs []*types.Tab, tabID string) int {
	for i, t := range tabs {
		if t.ID == tabID {
			return i
		}
	}
	return -1
}

func copyTabs(tabs []*types.Tab) []*types.Tab {
	out := make([]*types.Tab, len(tabs))
	for i, t := range tabs {
		cp := *t
		out[i] = &cp
	}
	return out
}
