/*
Package http provides the read-only REST surface.

The envelope websocket boundary carries all mutation; these endpoints expose
health, statistics, and workspace/tab inspection for tooling and debugging.

# Endpoints

  - GET /: service identification
  - GET /health: health plus registry, cache, and pool statistics
  - GET /workspaces: all persisted workspaces
  - GET /workspaces/:id: one workspace
  - GET /workspaces/:id/tabs: the workspace's tab snapshot
*/
package http
