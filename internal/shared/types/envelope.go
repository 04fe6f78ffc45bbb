package types

import "encoding/json"

// APIVersion is the envelope version understood by this server.
const APIVersion = "1"

// ErrorCode is the external error taxonomy. IPC_TIMEOUT and PERMISSION_DENIED
// are reserved for transport-level conditions and never produced by the core.
type ErrorCode string

const (
	CodeValidation       ErrorCode = "VALIDATION_ERROR"
	CodeNotFound         ErrorCode = "NOT_FOUND"
	CodePermissionDenied ErrorCode = "PERMISSION_DENIED"
	CodeIPCTimeout       ErrorCode = "IPC_TIMEOUT"
	CodeStateConflict    ErrorCode = "STATE_CONFLICT"
	CodeInternal         ErrorCode = "INTERNAL_ERROR"
)

// Channel names carried in the request envelope, one payload shape each.
const (
	ChannelWorkspaceCreate    = "workspace.create"
	ChannelWorkspaceList      = "workspace.list"
	ChannelWorkspaceUpdate    = "workspace.update"
	ChannelWorkspaceDelete    = "workspace.delete"
	ChannelWorkspaceActivate  = "workspace.activate"
	ChannelTabCreate          = "tab.create"
	ChannelTabClose           = "tab.close"
	ChannelTabActivate        = "tab.activate"
	ChannelTabNavigate        = "tab.navigate"
	ChannelTabReorder         = "tab.reorder"
	ChannelTabList            = "tab.list"
	ChannelBookmarkList       = "bookmark.list"
	ChannelBookmarkAdd        = "bookmark.add"
	ChannelBookmarkRemove     = "bookmark.remove"
	ChannelUISetTopbarHeight  = "ui.setTopbarHeight"
	ChannelUISetContentBounds = "ui.setContentBounds"
)

// Request is the inbound envelope. Payload stays raw until the channel's
// typed payload struct is known.
type Request struct {
	APIVersion    string          `json:"apiVersion"`
	Channel       string          `json:"channel"`
	CorrelationID string          `json:"correlationId"`
	Payload       json.RawMessage `json:"payload,omitempty"`
}

// Error is the structured failure half of a response.
type Error struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// Response is the outbound envelope. CorrelationID always echoes the request's.
type Response struct {
	OK            bool        `json:"ok"`
	Data          interface{} `json:"data,omitempty"`
	Error         *Error      `json:"error,omitempty"`
	CorrelationID string      `json:"correlationId"`
}

// Per-channel payloads.

// CreateWorkspacePayload carries workspace.create fields
type CreateWorkspacePayload struct {
	Name     string             `json:"name"`
	Icon     *string            `json:"icon,omitempty"`
	Color    *string            `json:"color,omitempty"`
	Settings *WorkspaceSettings `json:"settings,omitempty"`
}

// UpdateWorkspacePayload carries workspace.update fields
type UpdateWorkspacePayload struct {
	ID       string             `json:"id"`
	Name     *string            `json:"name,omitempty"`
	Icon     *string            `json:"icon,omitempty"`
	Color    *string            `json:"color,omitempty"`
	Settings *WorkspaceSettings `json:"settings,omitempty"`
}

// WorkspaceIDPayload addresses a single workspace (delete, activate)
type WorkspaceIDPayload struct {
	ID string `json:"id"`
}

// CreateTabPayload carries tab.create fields; the tab lands in the active workspace
type CreateTabPayload struct {
	URL string `json:"url"`
}

// TabIDPayload addresses a single tab (close, activate)
type TabIDPayload struct {
	TabID string `json:"tabId"`
}

// NavigateTabPayload carries tab.navigate fields
type NavigateTabPayload struct {
	TabID string `json:"tabId"`
	URL   string `json:"url"`
}

// ReorderTabsPayload carries tab.reorder fields
type ReorderTabsPayload struct {
	WorkspaceID string   `json:"workspaceId"`
	TabIDs      []string `json:"tabIds"`
}

// ListTabsPayload carries tab.list fields
type ListTabsPayload struct {
	WorkspaceID string `json:"workspaceId"`
}

// BookmarkPayload carries bookmark.add / bookmark.remove fields
type BookmarkPayload struct {
	WorkspaceID string `json:"workspaceId"`
	URL         string `json:"url"`
}

// BookmarkListPayload carries bookmark.list fields
type BookmarkListPayload struct {
	WorkspaceID string `json:"workspaceId"`
}

// TopbarHeightPayload carries ui.setTopbarHeight fields
type TopbarHeightPayload struct {
	Height int `json:"height"`
}

// ContentBoundsPayload carries ui.setContentBounds fields
type ContentBoundsPayload struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}
