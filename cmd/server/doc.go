// Package main is the entry point for the workspace session backend.
//
// This application owns browser-shell session state: workspaces, their tab
// snapshots, and the live view resources that render them. The shell frontend
// talks to it over a websocket envelope protocol and receives lifecycle
// events on the same connection.
//
// Architecture:
//
//	Shell frontend (renderer) → envelope websocket → session core
//	                                               → SQLite store
//
// The server provides:
//   - Envelope request routing for workspace, tab, and bookmark operations
//   - WebSocket event fan-out for session lifecycle notifications
//   - SQLite-backed persistence with full-snapshot tab saves
//   - Read-only REST endpoints for health and inspection
//   - Rate limiting and Prometheus metrics
//
// Configuration:
//   - Environment variables (12-factor)
//   - CLI flags (override env vars)
//   - Defaults for development
//
// Usage:
//
//	# Production mode
//	./server -port 8000 -db workspace.db
//
//	# Development mode (colored logs, debug level, ephemeral store)
//	./server -dev -db :memory:
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
