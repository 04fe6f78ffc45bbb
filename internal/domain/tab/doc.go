// Package tab implements the per-workspace tab cache.
//
// A workspace's tab list is loaded from the store on first access and held
// in memory for the life of the process. Every mutation read-modify-writes
// the in-memory list, write-throughs the full snapshot to the store, and
// only then emits its event.
//
// Because persistence is a full-snapshot replace, two mutations built from
// the same stale snapshot would lose a write. Mutations are therefore
// serialized per workspace: one in flight at a time per workspace id,
// cross-workspace operations proceed independently.
//
// Operations addressing an unknown tab or workspace are silent no-ops; the
// boundary layer decides whether that warrants an external error.
package tab
