// Package store implements durable persistence for workspaces, tabs, and
// settings on embedded SQLite.
//
// Layout:
//   - workspaces: one row per workspace, ordered reads by last_accessed_at
//   - tabs: one row per tab, FK cascade-deleted with the owning workspace
//   - settings: flat string-keyed JSON values, also backing bookmark lists
//
// Tab persistence is a full-snapshot replace: SaveTabs upserts every given
// tab and deletes any persisted tab for the workspace not present in the
// given set, inside a single transaction. Callers pass the complete current
// list every time.
//
// The pool is capped at one connection so per-connection pragmas hold and
// writes serialize at the database level.
package store
