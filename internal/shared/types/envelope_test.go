package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRequestWireKeys tests that an inbound frame using the shell's field
// names decodes into the envelope without remapping
func TestRequestWireKeys(t *testing.T) {
	frame := []byte(`{"apiVersion":"1","channel":"tab.navigate","correlationId":"req_01","payload":{"tabId":"tab_01","url":"https://example.com"}}`)

	var req Request
	require.NoError(t, json.Unmarshal(frame, &req))
	assert.Equal(t, APIVersion, req.APIVersion)
	assert.Equal(t, ChannelTabNavigate, req.Channel)
	assert.Equal(t, "req_01", req.CorrelationID)

	var p NavigateTabPayload
	require.NoError(t, json.Unmarshal(req.Payload, &p))
	assert.Equal(t, "tab_01", p.TabID)
	assert.Equal(t, "https://example.com", p.URL)
}

// TestResponseWireKeys tests that the outbound envelope uses camelCase keys
func TestResponseWireKeys(t *testing.T) {
	raw, err := json.Marshal(Response{OK: true, CorrelationID: "req_02"})
	require.NoError(t, err)

	var keys map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &keys))
	assert.Contains(t, keys, "ok")
	assert.Contains(t, keys, "correlationId")
	assert.NotContains(t, keys, "correlation_id")
}

// TestModelWireKeys tests that persisted models serialize with the shell's
// camelCase field names
func TestModelWireKeys(t *testing.T) {
	now := time.Now()
	raw, err := json.Marshal(Tab{ID: "tab_01", WorkspaceID: "ws_01", URL: "about:blank", CreatedAt: now, LastAccessedAt: now})
	require.NoError(t, err)

	var keys map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &keys))
	for _, k := range []string{"workspaceId", "createdAt", "lastAccessedAt"} {
		assert.Contains(t, keys, k)
	}
	assert.NotContains(t, keys, "workspace_id")
}
