package view

import (
	"fmt"
	"sync"

	"github.com/wwwqqqzzz/digital-workspace-os/internal/events"
	"github.com/wwwqqqzzz/digital-workspace-os/internal/shared/id"
	"github.com/wwwqqqzzz/digital-workspace-os/internal/shared/types"
)

// Surface is the platform rendering resource behind a view.
type Surface interface {
	// Load begins navigating the surface to url. Completion is not awaited;
	// failures surface through the FaultSink.
	Load(url string) error
	// Detach releases the surface's attachment to the display.
	Detach()
	// OpenDevTools opens debugging tools for the surface, if supported.
	OpenDevTools()
}

// FaultSink receives asynchronous surface faults.
type FaultSink interface {
	Crashed(reason string)
	LoadFailed(reason string)
}

// SurfaceFactory creates surfaces. Partition scopes the surface's storage
// and network identity to its workspace.
type SurfaceFactory interface {
	Create(partition string, sink FaultSink) (Surface, error)
}

// View is a live rendering resource backing an open tab.
type View struct {
	ID        string `json:"id"`
	TabID     string `json:"tabId"`
	Partition string `json:"partition"`

	surface Surface
	mu      sync.Mutex
	url     string // Protected by mu; last URL loaded, used for crash reload
}

// URL returns the last URL loaded into the view.
func (v *View) URL() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.url
}

// Pool maps each open tab to at most one live view.
type Pool struct {
	mu      sync.RWMutex
	views   map[string]*View // Protected by mu; keyed by tab id
	factory SurfaceFactory
	bus     *events.Bus
}

// NewPool creates a view pool over the given surface factory.
func NewPool(factory SurfaceFactory, bus *events.Bus) *Pool {
	return &Pool{
		views:   make(map[string]*View),
		factory: factory,
		bus:     bus,
	}
}

// Create builds a new view scoped to the workspace's partition and begins
// loading the tab's URL. Any existing view for the tab id is destroyed
// first, so a view can never be silently leaked by recreation.
func (p *Pool) Create(tab *types.Tab, ws *types.Workspace) (*View, error) {
	p.Destroy(tab.ID)

	v := &View{
		ID:        id.NewViewID().String(),
		TabID:     tab.ID,
		Partition: ws.Partition,
		url:       tab.URL,
	}

	surface, err := p.factory.Create(ws.Partition, &faultSink{pool: p, view: v})
	if err != nil {
		return nil, fmt.Errorf("create view for tab %s: %w", tab.ID, err)
	}
	v.surface = surface

	p.mu.Lock()
	p.views[tab.ID] = v
	p.mu.Unlock()

	if err := surface.Load(tab.URL); err != nil {
		return nil, fmt.Errorf("load %s: %w", tab.URL, err)
	}
	return v, nil
}

// Destroy detaches the view's surface from the display and removes it from
// the pool. No-op if the tab has no view.
func (p *Pool) Destroy(tabID string) {
	p.mu.Lock()
	v, ok := p.views[tabID]
	if ok {
		delete(p.views, tabID)
	}
	p.mu.Unlock()

	if ok {
		v.surface.Detach()
	}
}

// Get returns the view backing a tab, if one is live.
func (p *Pool) Get(tabID string) (*View, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	v, ok := p.views[tabID]
	return v, ok
}

// Navigate loads url into the tab's existing view. Returns false if the tab
// has no view.
func (p *Pool) Navigate(tabID, url string) (bool, error) {
	v, ok := p.Get(tabID)
	if !ok {
		return false, nil
	}

	v.mu.Lock()
	v.url = url
	v.mu.Unlock()

	if err := v.surface.Load(url); err != nil {
		return true, fmt.Errorf("load %s: %w", url, err)
	}
	return true, nil
}

// OpenDevTools opens debugging tools for a tab's view. No-op if absent.
func (p *Pool) OpenDevTools(tabID string) {
	if v, ok := p.Get(tabID); ok {
		v.surface.OpenDevTools()
	}
}

// Stats returns pool statistics.
func (p *Pool) Stats() types.ViewStats {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return types.ViewStats{LiveViews: len(p.views)}
}

// faultSink forwards one view's surface faults to the tab event channel.
type faultSink struct {
	pool *Pool
	view *View
}

// Crashed reports the fault upward and reloads the same view once. No
// backoff: a crash loop notifies on every iteration.
func (s *faultSink) Crashed(reason string) {
	s.pool.bus.PublishTab(types.TabError, &types.TabFault{
		TabID:  s.view.TabID,
		Code:   types.FaultViewCrash,
		Reason: reason,
	})

	if _, ok := s.pool.Get(s.view.TabID); ok {
		_ = s.view.surface.Load(s.view.URL())
	}
}

// LoadFailed reports the fault upward. No recovery.
func (s *faultSink) LoadFailed(reason string) {
	s.pool.bus.PublishTab(types.TabError, &types.TabFault{
		TabID:  s.view.TabID,
		Code:   types.FaultViewLoadFail,
		Reason: reason,
	})
}
