package tab

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wwwqqqzzz/digital-workspace-os/internal/events"
	"github.com/wwwqqqzzz/digital-workspace-os/internal/shared/types"
	"github.com/wwwqqqzzz/digital-workspace-os/internal/store"
)

func newTestCache(t *testing.T) (*Cache, *store.Store, *events.Bus, *types.Workspace) {
	t.Helper()
	st, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	ws := &types.Workspace{
		ID:        "ws_test",
		Name:      "Test",
		Partition: types.PartitionFor("ws_test"),
	}
	require.NoError(t, st.SaveWorkspace(ws))

	bus := events.NewBus()
	return NewCache(st, bus), st, bus, ws
}

func activeIDs(tabs []*types.Tab) []string {
	var out []string
	for _, t := range tabs {
		if t.Active {
			out = append(out, t.ID)
		}
	}
	return out
}

// TestCreateTabActivates tests that a new tab is the only active one
func TestCreateTabActivates(t *testing.T) {
	cache, st, _, ws := newTestCache(t)

	first, err := cache.Create(ws, "https://a.example")
	require.NoError(t, err)
	assert.True(t, first.Active)

	second, err := cache.Create(ws, "https://b.example")
	require.NoError(t, err)
	assert.True(t, second.Active)

	tabs, err := cache.TabsFor(ws.ID)
	require.NoError(t, err)
	require.Len(t, tabs, 2)
	assert.Equal(t, []string{second.ID}, activeIDs(tabs))

	// The full snapshot reached the store.
	persisted, err := st.LoadTabs(ws.ID)
	require.NoError(t, err)
	assert.Len(t, persisted, 2)
}

// TestCloseActiveTabFallsBack tests that the first remaining tab takes over
func TestCloseActiveTabFallsBack(t *testing.T) {
	cache, _, _, ws := newTestCache(t)

	first, err := cache.Create(ws, "https://a.example")
	require.NoError(t, err)
	second, err := cache.Create(ws, "https://b.example")
	require.NoError(t, err)

	removed, err := cache.Close(second.ID)
	require.NoError(t, err)
	require.NotNil(t, removed)
	assert.Equal(t, second.ID, removed.ID)

	tabs, err := cache.TabsFor(ws.ID)
	require.NoError(t, err)
	require.Len(t, tabs, 1)
	assert.Equal(t, first.ID, tabs[0].ID)
	assert.True(t, tabs[0].Active)
}

// TestCloseKeepsCacheOnPersistFailure tests that a failed snapshot write
// leaves the cached list exactly as it was, with no sibling promoted
func TestCloseKeepsCacheOnPersistFailure(t *testing.T) {
	cache, st, _, ws := newTestCache(t)

	first, err := cache.Create(ws, "https://a.example")
	require.NoError(t, err)
	second, err := cache.Create(ws, "https://b.example")
	require.NoError(t, err)

	require.NoError(t, st.Close())

	removed, err := cache.Close(second.ID)
	require.Error(t, err)
	assert.Nil(t, removed)

	tabs, err := cache.TabsFor(ws.ID)
	require.NoError(t, err)
	require.Len(t, tabs, 2)
	assert.Equal(t, []string{second.ID}, activeIDs(tabs))
	assert.Equal(t, first.ID, tabs[0].ID)
	assert.False(t, tabs[0].Active)
}

// TestCloseInactiveTabKeepsActive tests that closing a background tab
// leaves the active one alone
func TestCloseInactiveTabKeepsActive(t *testing.T) {
	cache, _, _, ws := newTestCache(t)

	first, err := cache.Create(ws, "https://a.example")
	require.NoError(t, err)
	second, err := cache.Create(ws, "https://b.example")
	require.NoError(t, err)

	_, err = cache.Close(first.ID)
	require.NoError(t, err)

	tabs, err := cache.TabsFor(ws.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{second.ID}, activeIDs(tabs))
}

// TestCloseUnknownTab tests the silent no-op contract
func TestCloseUnknownTab(t *testing.T) {
	cache, _, bus, _ := newTestCache(t)

	var published int
	bus.SubscribeTab(func(types.TabEvent) { published++ })

	removed, err := cache.Close("tab_ghost")
	require.NoError(t, err)
	assert.Nil(t, removed)
	assert.Equal(t, 0, published)
}

// TestActivateTab tests exclusive activation and event emission
func TestActivateTab(t *testing.T) {
	cache, _, bus, ws := newTestCache(t)

	first, err := cache.Create(ws, "https://a.example")
	require.NoError(t, err)
	_, err = cache.Create(ws, "https://b.example")
	require.NoError(t, err)

	var activations int
	bus.SubscribeTab(func(evt types.TabEvent) {
		if evt.Type == types.TabActivated {
			activations++
		}
	})

	activated, err := cache.Activate(first.ID)
	require.NoError(t, err)
	require.NotNil(t, activated)
	assert.True(t, activated.Active)
	assert.Equal(t, 1, activations)

	tabs, err := cache.TabsFor(ws.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{first.ID}, activeIDs(tabs))
}

// TestUpdateTabMergesPartialFields tests nil fields stay untouched
func TestUpdateTabMergesPartialFields(t *testing.T) {
	cache, _, _, ws := newTestCache(t)

	created, err := cache.Create(ws, "https://a.example")
	require.NoError(t, err)

	title := "Example"
	updated, err := cache.Update(created.ID, types.TabUpdate{Title: &title})
	require.NoError(t, err)
	require.NotNil(t, updated)

	assert.Equal(t, "https://a.example", updated.URL)
	require.NotNil(t, updated.Title)
	assert.Equal(t, "Example", *updated.Title)
}

// TestUpdateUnknownTab tests the silent no-op contract
func TestUpdateUnknownTab(t *testing.T) {
	cache, _, _, _ := newTestCache(t)

	title := "x"
	updated, err := cache.Update("tab_ghost", types.TabUpdate{Title: &title})
	require.NoError(t, err)
	assert.Nil(t, updated)
}

// TestReorder tests named-first ordering with unnamed tabs appended in
// their prior relative order
func TestReorder(t *testing.T) {
	cache, _, _, ws := newTestCache(t)

	a, err := cache.Create(ws, "https://a.example")
	require.NoError(t, err)
	b, err := cache.Create(ws, "https://b.example")
	require.NoError(t, err)
	c, err := cache.Create(ws, "https://c.example")
	require.NoError(t, err)
	d, err := cache.Create(ws, "https://d.example")
	require.NoError(t, err)

	// Name c and a; b and d keep their prior relative order at the end.
	reordered, err := cache.Reorder(ws.ID, []string{c.ID, a.ID})
	require.NoError(t, err)

	got := make([]string, len(reordered))
	for i, tb := range reordered {
		got[i] = tb.ID
	}
	assert.Equal(t, []string{c.ID, a.ID, b.ID, d.ID}, got)
}

// TestReorderIgnoresUnknownAndDuplicateIDs tests input hygiene
func TestReorderIgnoresUnknownAndDuplicateIDs(t *testing.T) {
	cache, _, _, ws := newTestCache(t)

	a, err := cache.Create(ws, "https://a.example")
	require.NoError(t, err)
	b, err := cache.Create(ws, "https://b.example")
	require.NoError(t, err)

	reordered, err := cache.Reorder(ws.ID, []string{b.ID, "tab_ghost", b.ID, a.ID})
	require.NoError(t, err)

	require.Len(t, reordered, 2)
	assert.Equal(t, b.ID, reordered[0].ID)
	assert.Equal(t, a.ID, reordered[1].ID)
}

// TestTabsForReturnsCopies tests that callers cannot mutate the cache
func TestTabsForReturnsCopies(t *testing.T) {
	cache, _, _, ws := newTestCache(t)

	created, err := cache.Create(ws, "https://a.example")
	require.NoError(t, err)

	tabs, err := cache.TabsFor(ws.ID)
	require.NoError(t, err)
	tabs[0].URL = "https://mutated.example"

	again, err := cache.TabsFor(ws.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://a.example", again[0].URL)
	assert.Equal(t, created.ID, again[0].ID)
}

// TestCacheReloadsFromStore tests read-through after eviction
func TestCacheReloadsFromStore(t *testing.T) {
	cache, st, _, ws := newTestCache(t)

	created, err := cache.Create(ws, "https://a.example")
	require.NoError(t, err)

	cache.Evict(ws.ID)
	assert.Equal(t, 0, cache.Stats().CachedTabs)

	tabs, err := cache.TabsFor(ws.ID)
	require.NoError(t, err)
	require.Len(t, tabs, 1)
	assert.Equal(t, created.ID, tabs[0].ID)

	// And the reloaded tab is addressable again.
	_, err = cache.Activate(created.ID)
	require.NoError(t, err)

	persisted, err := st.LoadTabs(ws.ID)
	require.NoError(t, err)
	assert.Len(t, persisted, 1)
}

// TestConcurrentCreatesNoLostWrites tests the per-workspace mutation lock
func TestConcurrentCreatesNoLostWrites(t *testing.T) {
	cache, st, _, ws := newTestCache(t)

	const n = 20
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			_, err := cache.Create(ws, fmt.Sprintf("https://site%d.example", i))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	tabs, err := cache.TabsFor(ws.ID)
	require.NoError(t, err)
	assert.Len(t, tabs, n)
	assert.Len(t, activeIDs(tabs), 1)

	persisted, err := st.LoadTabs(ws.ID)
	require.NoError(t, err)
	assert.Len(t, persisted, n)
}

// TestStatsCountsAcrossWorkspaces tests the aggregate counters
func TestStatsCountsAcrossWorkspaces(t *testing.T) {
	cache, st, _, ws := newTestCache(t)

	other := &types.Workspace{ID: "ws_other", Name: "Other", Partition: types.PartitionFor("ws_other")}
	require.NoError(t, st.SaveWorkspace(other))

	_, err := cache.Create(ws, "https://a.example")
	require.NoError(t, err)
	_, err = cache.Create(other, "https://b.example")
	require.NoError(t, err)
	_, err = cache.Create(other, "https://c.example")
	require.NoError(t, err)

	stats := cache.Stats()
	assert.Equal(t, 2, stats.CachedWorkspaces)
	assert.Equal(t, 3, stats.CachedTabs)
}
