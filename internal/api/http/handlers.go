package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wwwqqqzzz/digital-workspace-os/internal/domain/tab"
	"github.com/wwwqqqzzz/digital-workspace-os/internal/domain/view"
	"github.com/wwwqqqzzz/digital-workspace-os/internal/domain/workspace"
)

// Handlers contains the read-only HTTP endpoints. All mutation goes through
// the envelope boundary; these exist for health checks and inspection.
type Handlers struct {
	registry *workspace.Registry
	cache    *tab.Cache
	pool     *view.Pool
	started  time.Time
}

// NewHandlers creates HTTP handlers over the session core.
func NewHandlers(registry *workspace.Registry, cache *tab.Cache, pool *view.Pool) *Handlers {
	return &Handlers{
		registry: registry,
		cache:    cache,
		pool:     pool,
		started:  time.Now(),
	}
}

// Root returns service identification.
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service": "workspace-os-backend",
		"version": "1.0.0",
		"status":  "running",
	})
}

// Health returns service health and session-state statistics.
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"uptime": time.Since(h.started).Seconds(),
		"stats": gin.H{
			"workspaces": h.registry.Stats(),
			"tabs":       h.cache.Stats(),
			"views":      h.pool.Stats(),
		},
	})
}

// ListWorkspaces returns every persisted workspace.
func (h *Handlers) ListWorkspaces(c *gin.Context) {
	workspaces, err := h.registry.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"workspaces": workspaces,
		"count":      len(workspaces),
	})
}

// GetWorkspace returns a single workspace by id.
func (h *Handlers) GetWorkspace(c *gin.Context) {
	ws, err := h.registry.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if ws == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "workspace not found"})
		return
	}
	c.JSON(http.StatusOK, ws)
}

// ListWorkspaceTabs returns the tab snapshot for a workspace.
func (h *Handlers) ListWorkspaceTabs(c *gin.Context) {
	tabs, err := h.cache.TabsFor(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"tabs":  tabs,
		"count": len(tabs),
	})
}
