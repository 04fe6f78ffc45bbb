package view

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wwwqqqzzz/digital-workspace-os/internal/events"
	"github.com/wwwqqqzzz/digital-workspace-os/internal/shared/types"
)

// fakeSurface records calls and exposes its sink so tests can inject faults.
type fakeSurface struct {
	mu       sync.Mutex
	loads    []string
	detached bool
	devTools int
	sink     FaultSink
}

func (s *fakeSurface) Load(url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loads = append(s.loads, url)
	return nil
}

func (s *fakeSurface) Detach() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.detached = true
}

func (s *fakeSurface) OpenDevTools() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.devTools++
}

func (s *fakeSurface) loadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.loads)
}

func (s *fakeSurface) isDetached() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.detached
}

type fakeFactory struct {
	mu       sync.Mutex
	surfaces []*fakeSurface
	err      error
}

func (f *fakeFactory) Create(partition string, sink FaultSink) (Surface, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	s := &fakeSurface{sink: sink}
	f.surfaces = append(f.surfaces, s)
	return s, nil
}

func (f *fakeFactory) last() *fakeSurface {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.surfaces[len(f.surfaces)-1]
}

func testTabAndWorkspace() (*types.Tab, *types.Workspace) {
	ws := &types.Workspace{ID: "ws_1", Name: "Test", Partition: types.PartitionFor("ws_1")}
	tab := &types.Tab{ID: "tab_1", WorkspaceID: ws.ID, URL: "https://a.example", Active: true}
	return tab, ws
}

// TestCreateView tests partition scoping and the initial load
func TestCreateView(t *testing.T) {
	factory := &fakeFactory{}
	pool := NewPool(factory, events.NewBus())
	tab, ws := testTabAndWorkspace()

	v, err := pool.Create(tab, ws)
	require.NoError(t, err)

	assert.Equal(t, tab.ID, v.TabID)
	assert.Equal(t, "persist:workspace-ws_1", v.Partition)
	assert.Equal(t, []string{"https://a.example"}, factory.last().loads)
	assert.Equal(t, 1, pool.Stats().LiveViews)
}

// TestCreateDestroysExistingView tests the recreate hardening
func TestCreateDestroysExistingView(t *testing.T) {
	factory := &fakeFactory{}
	pool := NewPool(factory, events.NewBus())
	tab, ws := testTabAndWorkspace()

	_, err := pool.Create(tab, ws)
	require.NoError(t, err)
	first := factory.last()

	_, err = pool.Create(tab, ws)
	require.NoError(t, err)

	assert.True(t, first.isDetached())
	assert.Equal(t, 1, pool.Stats().LiveViews)
}

// TestCreateFactoryError tests that a failed surface never enters the pool
func TestCreateFactoryError(t *testing.T) {
	factory := &fakeFactory{err: errors.New("renderer unavailable")}
	pool := NewPool(factory, events.NewBus())
	tab, ws := testTabAndWorkspace()

	_, err := pool.Create(tab, ws)
	require.Error(t, err)
	assert.Equal(t, 0, pool.Stats().LiveViews)
}

// TestDestroyView tests detach-then-remove and the no-op case
func TestDestroyView(t *testing.T) {
	factory := &fakeFactory{}
	pool := NewPool(factory, events.NewBus())
	tab, ws := testTabAndWorkspace()

	_, err := pool.Create(tab, ws)
	require.NoError(t, err)

	pool.Destroy(tab.ID)
	assert.True(t, factory.last().isDetached())
	assert.Equal(t, 0, pool.Stats().LiveViews)

	// Destroying again is a no-op.
	assert.NotPanics(t, func() { pool.Destroy(tab.ID) })
}

// TestNavigate tests loading into an existing view and the no-view case
func TestNavigate(t *testing.T) {
	factory := &fakeFactory{}
	pool := NewPool(factory, events.NewBus())
	tab, ws := testTabAndWorkspace()

	_, err := pool.Create(tab, ws)
	require.NoError(t, err)

	found, err := pool.Navigate(tab.ID, "https://b.example")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, factory.last().loads)

	v, ok := pool.Get(tab.ID)
	require.True(t, ok)
	assert.Equal(t, "https://b.example", v.URL())

	found, err = pool.Navigate("tab_ghost", "https://c.example")
	require.NoError(t, err)
	assert.False(t, found)
}

// TestCrashEmitsErrorAndReloads tests the single immediate reload
func TestCrashEmitsErrorAndReloads(t *testing.T) {
	factory := &fakeFactory{}
	bus := events.NewBus()
	pool := NewPool(factory, bus)
	tab, ws := testTabAndWorkspace()

	_, err := pool.Create(tab, ws)
	require.NoError(t, err)
	surface := factory.last()

	var faults []types.TabFault
	bus.SubscribeTab(func(evt types.TabEvent) {
		if evt.Type == types.TabError {
			faults = append(faults, *evt.Payload.(*types.TabFault))
		}
	})

	surface.sink.Crashed("renderer gone")

	require.Len(t, faults, 1)
	assert.Equal(t, tab.ID, faults[0].TabID)
	assert.Equal(t, types.FaultViewCrash, faults[0].Code)
	assert.Equal(t, "renderer gone", faults[0].Reason)

	// One reload of the same URL on top of the initial load.
	assert.Equal(t, 2, surface.loadCount())
}

// TestCrashAfterDestroyDoesNotReload tests that a destroyed view stays dead
func TestCrashAfterDestroyDoesNotReload(t *testing.T) {
	factory := &fakeFactory{}
	bus := events.NewBus()
	pool := NewPool(factory, bus)
	tab, ws := testTabAndWorkspace()

	_, err := pool.Create(tab, ws)
	require.NoError(t, err)
	surface := factory.last()

	pool.Destroy(tab.ID)

	var faults int
	bus.SubscribeTab(func(evt types.TabEvent) {
		if evt.Type == types.TabError {
			faults++
		}
	})

	surface.sink.Crashed("late crash")

	// Still reported, but no reload of a surface outside the pool.
	assert.Equal(t, 1, faults)
	assert.Equal(t, 1, surface.loadCount())
}

// TestLoadFailedEmitsErrorOnly tests that load failures trigger no recovery
func TestLoadFailedEmitsErrorOnly(t *testing.T) {
	factory := &fakeFactory{}
	bus := events.NewBus()
	pool := NewPool(factory, bus)
	tab, ws := testTabAndWorkspace()

	_, err := pool.Create(tab, ws)
	require.NoError(t, err)
	surface := factory.last()

	var faults []types.TabFault
	bus.SubscribeTab(func(evt types.TabEvent) {
		if evt.Type == types.TabError {
			faults = append(faults, *evt.Payload.(*types.TabFault))
		}
	})

	surface.sink.LoadFailed("dns failure")

	require.Len(t, faults, 1)
	assert.Equal(t, types.FaultViewLoadFail, faults[0].Code)
	assert.Equal(t, 1, surface.loadCount())
	assert.Equal(t, 1, pool.Stats().LiveViews)
}

// TestOpenDevTools tests forwarding to the surface
func TestOpenDevTools(t *testing.T) {
	factory := &fakeFactory{}
	pool := NewPool(factory, events.NewBus())
	tab, ws := testTabAndWorkspace()

	_, err := pool.Create(tab, ws)
	require.NoError(t, err)

	pool.OpenDevTools(tab.ID)
	pool.OpenDevTools("tab_ghost") // no-op

	assert.Equal(t, 1, factory.last().devTools)
}
