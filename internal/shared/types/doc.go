// Package types provides shared data structures for the workspace backend.
//
// This package defines core types used across all backend components,
// ensuring type safety and consistent data structures.
//
// Core Types:
//   - Workspace: Named, isolated browsing context with its own partition
//   - Tab: Navigable unit within a workspace
//   - WorkspaceSettings: Per-workspace policy blob (stored, not acted on)
//
// Boundary Types:
//   - Request, Response, Error: envelope carried over the IPC channel
//   - ErrorCode: external error taxonomy
//   - Per-channel payload structs (CreateWorkspacePayload, ...)
//
// Event Types:
//   - WorkspaceEvent, TabEvent: tagged notifications pushed outward
//
// Example Usage:
//
//	ws := &types.Workspace{
//	    ID:        string(id.NewWorkspaceID()),
//	    Name:      "Work",
//	    Partition: types.PartitionFor(wsID),
//	}
package types
