// Package workspace implements the workspace registry: workspace CRUD and
// the single process-wide active-workspace pointer.
//
// Reads (Get, List) go straight through to the store; workspace count is
// small and reads are infrequent relative to tab churn, so always reflecting
// the store is worth more than a cache here. The active pointer is
// registry-held state; only its id is persisted, as a setting, for restart
// recovery.
//
// Every mutation persists before its event is emitted.
package workspace
