package types

import "time"

// Tab represents a navigable unit within a workspace
type Tab struct {
	ID             string    `json:"id"`
	WorkspaceID    string    `json:"workspaceId"`
	URL            string    `json:"url"`
	Title          *string   `json:"title,omitempty"`
	Favicon        *string   `json:"favicon,omitempty"`
	Active         bool      `json:"active"`
	Suspended      bool      `json:"suspended"` // stored only, never transitioned by the core
	CreatedAt      time.Time `json:"createdAt"`
	LastAccessedAt time.Time `json:"lastAccessedAt"`
}

// TabUpdate holds partial fields for a tab update. Nil fields are left untouched.
type TabUpdate struct {
	URL     *string `json:"url,omitempty"`
	Title   *string `json:"title,omitempty"`
	Favicon *string `json:"favicon,omitempty"`
}

// TabStats contains tab cache statistics
type TabStats struct {
	CachedWorkspaces int `json:"cachedWorkspaces"`
	CachedTabs       int `json:"cachedTabs"`
}

// WorkspaceStats contains workspace registry statistics
type WorkspaceStats struct {
	TotalWorkspaces   int     `json:"totalWorkspaces"`
	ActiveWorkspaceID *string `json:"activeWorkspaceId,omitempty"`
}

// ViewStats contains view pool statistics
type ViewStats struct {
	LiveViews int `json:"liveViews"`
}
