package utils

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"
)

// String length limits
const (
	MaxIDLength    = 128
	MaxNameLength  = 256
	MaxURLLength   = 2048
	MaxTitleLength = 512
	MaxColorLength = 32
	MaxIconLength  = 256

	// MaxReorderIDs bounds the tab.reorder input shape
	MaxReorderIDs = 1024
)

// Layout hint clamps
const (
	MaxTopbarHeight = 512
	MaxContentEdge  = 16384
)

// SafeIDPattern allows alphanumeric, hyphens, underscores
var SafeIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// ValidateString validates a string field with length and content checks.
// The value is expected to be pre-trimmed by the caller.
func ValidateString(value, fieldName string, minLen, maxLen int, required bool) error {
	if required && value == "" {
		return fmt.Errorf("%s is required", fieldName)
	}

	if value == "" && !required {
		return nil
	}

	length := utf8.RuneCountInString(value)
	if length < minLen {
		return fmt.Errorf("%s must be at least %d characters", fieldName, minLen)
	}
	if length > maxLen {
		return fmt.Errorf("%s must not exceed %d characters", fieldName, maxLen)
	}

	if strings.Contains(value, "\x00") {
		return fmt.Errorf("%s contains invalid characters", fieldName)
	}

	return nil
}

// ValidateID validates an ID field
func ValidateID(id, fieldName string, required bool) error {
	if err := ValidateString(id, fieldName, 1, MaxIDLength, required); err != nil {
		return err
	}

	if id != "" && !SafeIDPattern.MatchString(id) {
		return fmt.Errorf("%s contains invalid characters (only alphanumeric, hyphens, and underscores allowed)", fieldName)
	}

	return nil
}

// ValidateURL validates a navigation target
func ValidateURL(raw, fieldName string) error {
	if err := ValidateString(raw, fieldName, 1, MaxURLLength, true); err != nil {
		return err
	}

	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s is not a valid URL", fieldName)
	}
	if u.Scheme == "" {
		return fmt.Errorf("%s must include a scheme", fieldName)
	}

	return nil
}

// ValidateIDSlice validates an array-of-string shape of IDs
func ValidateIDSlice(ids []string, fieldName string) error {
	if ids == nil {
		return fmt.Errorf("%s is required", fieldName)
	}
	if len(ids) > MaxReorderIDs {
		return fmt.Errorf("%s must not exceed %d entries", fieldName, MaxReorderIDs)
	}

	for i, id := range ids {
		if err := ValidateID(strings.TrimSpace(id), fmt.Sprintf("%s[%d]", fieldName, i), true); err != nil {
			return err
		}
	}

	return nil
}

// ClampInt clamps v into [min, max]
func ClampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
