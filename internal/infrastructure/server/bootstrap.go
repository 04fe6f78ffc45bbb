package server

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/wwwqqqzzz/digital-workspace-os/internal/domain/tab"
	"github.com/wwwqqqzzz/digital-workspace-os/internal/domain/view"
	"github.com/wwwqqqzzz/digital-workspace-os/internal/domain/workspace"
	"github.com/wwwqqqzzz/digital-workspace-os/internal/infrastructure/logging"
	"github.com/wwwqqqzzz/digital-workspace-os/internal/shared/types"
)

// defaultWorkspaces is the starter set created on first run.
var defaultWorkspaces = []types.WorkspaceConfig{
	{Name: "Work", Icon: strPtr("💼"), Color: strPtr("#3B82F6")},
	{Name: "Personal", Icon: strPtr("🏠"), Color: strPtr("#10B981")},
	{Name: "Web3", Icon: strPtr("🔗"), Color: strPtr("#8B5CF6")},
	{Name: "Study", Icon: strPtr("📚"), Color: strPtr("#F59E0B")},
}

// bootstrap brings the session core to a ready state. An empty store gets
// the default workspace set with the first one active. Otherwise the
// previous run's active workspace is re-activated, falling back to the most
// recently used one when the persisted pointer is missing or stale, and its
// tabs get views pre-created so the shell renders immediately on attach.
func bootstrap(registry *workspace.Registry, cache *tab.Cache, pool *view.Pool, logger *logging.Logger) error {
	existing, err := registry.List()
	if err != nil {
		return fmt.Errorf("list workspaces: %w", err)
	}

	if len(existing) == 0 {
		var first *types.Workspace
		for _, cfg := range defaultWorkspaces {
			ws, err := registry.Create(cfg)
			if err != nil {
				return fmt.Errorf("seed workspace %q: %w", cfg.Name, err)
			}
			if first == nil {
				first = ws
			}
		}
		if _, err := registry.Activate(first.ID); err != nil {
			return fmt.Errorf("activate seeded workspace: %w", err)
		}
		logger.Info("Seeded default workspaces", zap.Int("count", len(defaultWorkspaces)))
		return nil
	}

	if err := registry.RestoreActive(); err != nil {
		logger.Warn("Failed to restore active workspace", zap.Error(err))
	}

	active, err := registry.GetActive()
	if err != nil {
		return fmt.Errorf("load active workspace: %w", err)
	}
	if active == nil {
		// List is ordered by last access, so existing[0] is the best guess.
		active, err = registry.Activate(existing[0].ID)
		if err != nil {
			return fmt.Errorf("activate fallback workspace: %w", err)
		}
	}

	tabs, err := cache.TabsFor(active.ID)
	if err != nil {
		return fmt.Errorf("load tabs for %s: %w", active.ID, err)
	}
	for _, t := range tabs {
		if _, err := pool.Create(t, active); err != nil {
			logger.Warn("View warm-up failed",
				zap.String("tab_id", t.ID),
				zap.Error(err),
			)
		}
	}

	logger.Info("Restored session",
		zap.String("workspace_id", active.ID),
		zap.Int("tabs", len(tabs)),
	)
	return nil
}

func strPtr(s string) *string {
	return &s
}
