package types

// Workspace lifecycle event types
const (
	WorkspaceCreated   = "created"
	WorkspaceUpdated   = "updated"
	WorkspaceDeleted   = "deleted"
	WorkspaceActivated = "activated"
)

// Tab lifecycle event types
const (
	TabCreated   = "created"
	TabClosed    = "closed"
	TabActivated = "activated"
	TabUpdated   = "updated"
	TabReordered = "reordered"
	TabError     = "error"
)

// View fault codes carried in TabError events
const (
	FaultViewCrash    = "VIEW_CRASH"
	FaultViewLoadFail = "VIEW_LOAD_FAIL"
)

// WorkspaceEvent is a tagged notification on the workspace channel
type WorkspaceEvent struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// TabEvent is a tagged notification on the tab channel
type TabEvent struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// TabFault is the payload of a TabError event
type TabFault struct {
	TabID  string `json:"tabId"`
	Code   string `json:"code"`
	Reason string `json:"reason"`
}
