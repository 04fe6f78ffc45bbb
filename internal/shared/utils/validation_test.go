package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestValidateString tests length and requiredness checks
func TestValidateString(t *testing.T) {
	assert.NoError(t, ValidateString("hello", "name", 1, 10, true))
	assert.NoError(t, ValidateString("", "icon", 1, 10, false))
	assert.Error(t, ValidateString("", "name", 1, 10, true))
	assert.Error(t, ValidateString(strings.Repeat("x", 11), "name", 1, 10, true))
	assert.Error(t, ValidateString("bad\x00byte", "name", 1, 10, true))
}

// TestValidateID tests the safe-character pattern
func TestValidateID(t *testing.T) {
	assert.NoError(t, ValidateID("ws_01ARZ3NDEKTSV4RRFFQ69G5FAV", "id", true))
	assert.NoError(t, ValidateID("tab-123", "id", true))
	assert.Error(t, ValidateID("", "id", true))
	assert.Error(t, ValidateID("has space", "id", true))
	assert.Error(t, ValidateID("semi;colon", "id", true))
	assert.Error(t, ValidateID(strings.Repeat("a", MaxIDLength+1), "id", true))
}

// TestValidateURL tests scheme and length requirements
func TestValidateURL(t *testing.T) {
	assert.NoError(t, ValidateURL("https://example.com/path?q=1", "url"))
	assert.NoError(t, ValidateURL("about:blank", "url"))
	assert.Error(t, ValidateURL("", "url"))
	assert.Error(t, ValidateURL("example.com", "url"))
	assert.Error(t, ValidateURL("https://example.com/"+strings.Repeat("a", MaxURLLength), "url"))
}

// TestValidateIDSlice tests the array shape checks
func TestValidateIDSlice(t *testing.T) {
	assert.NoError(t, ValidateIDSlice([]string{"tab_a", "tab_b"}, "tabIds"))
	assert.NoError(t, ValidateIDSlice([]string{}, "tabIds"))
	assert.Error(t, ValidateIDSlice(nil, "tabIds"))
	assert.Error(t, ValidateIDSlice([]string{"ok", "not ok"}, "tabIds"))

	tooMany := make([]string, MaxReorderIDs+1)
	for i := range tooMany {
		tooMany[i] = "tab_x"
	}
	assert.Error(t, ValidateIDSlice(tooMany, "tabIds"))
}

// TestClampInt tests boundary behavior
func TestClampInt(t *testing.T) {
	assert.Equal(t, 5, ClampInt(5, 0, 10))
	assert.Equal(t, 0, ClampInt(-1, 0, 10))
	assert.Equal(t, 10, ClampInt(11, 0, 10))
	assert.Equal(t, 0, ClampInt(0, 0, 10))
	assert.Equal(t, 10, ClampInt(10, 0, 10))
}
