package types

import (
	"fmt"
	"time"
)

// WorkspaceSettings is a per-workspace policy blob. The suspend fields are
// stored and round-tripped for compatibility; nothing in the core reads them.
type WorkspaceSettings struct {
	AutoSuspendTabs     bool `json:"autoSuspendTabs"`
	SuspendAfterMinutes int  `json:"suspendAfterMinutes"`
}

// Workspace represents a named, isolated browsing context
type Workspace struct {
	ID             string             `json:"id"`
	Name           string             `json:"name"`
	Icon           *string            `json:"icon,omitempty"`
	Color          *string            `json:"color,omitempty"`
	Partition      string             `json:"partition"`
	Settings       *WorkspaceSettings `json:"settings,omitempty"`
	CreatedAt      time.Time          `json:"createdAt"`
	LastAccessedAt time.Time          `json:"lastAccessedAt"`
}

// WorkspaceConfig holds caller-supplied fields for workspace creation
type WorkspaceConfig struct {
	Name     string             `json:"name"`
	Icon     *string            `json:"icon,omitempty"`
	Color    *string            `json:"color,omitempty"`
	Settings *WorkspaceSettings `json:"settings,omitempty"`
}

// WorkspaceUpdate holds partial fields for a workspace update.
// Nil fields are left untouched.
type WorkspaceUpdate struct {
	Name     *string            `json:"name,omitempty"`
	Icon     *string            `json:"icon,omitempty"`
	Color    *string            `json:"color,omitempty"`
	Settings *WorkspaceSettings `json:"settings,omitempty"`
}

// PartitionFor derives the storage-isolation token for a workspace.
// Immutable once generated at creation.
func PartitionFor(workspaceID string) string {
	return fmt.Sprintf("persist:workspace-%s", workspaceID)
}
