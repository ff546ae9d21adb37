package domain

import (
	"fmt"
	"strings"
)

// SessionMode selects where a session draws its words from.
type SessionMode string

// Possible session modes
const (
	// ModeNormal draws unused words from the session tier.
	ModeNormal SessionMode = "normal"
	// ModeErrorCorrection replays words currently flagged as answered wrong.
	ModeErrorCorrection SessionMode = "error_correction"
)

// Valid reports whether m is a known mode.
func (m SessionMode) Valid() bool {
	switch m {
	case ModeNormal, ModeErrorCorrection:
		return true
	default:
		return false
	}
}

// ParseSessionMode maps a user-supplied mode name onto a SessionMode.
// An empty string selects ModeNormal.
func ParseSessionMode(s string) (SessionMode, error) {
	if strings.TrimSpace(s) == "" {
		return ModeNormal, nil
	}
	m := SessionMode(strings.ToLower(strings.TrimSpace(s)))
	if !m.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
	}
	return m, nil
}

// SessionState is the per-device drill state. CurrentWordKey is empty when a
// new word must be drawn before the next prompt. TotalCount is derived from
// the store and never persisted.
type SessionState struct {
	Tier           string      `json:"tier"`
	Mode           SessionMode `json:"mode"`
	CurrentWordKey string      `json:"current_word_key,omitempty"`
	CompletedCount int         `json:"completed_count"`
	TotalCount     int         `json:"total_count"`
}

// HasCurrentWord reports whether a prompt is pending.
func (s SessionState) HasCurrentWord() bool {
	return s.CurrentWordKey != ""
}

// Persisted session field names. Per-tier fields are suffixed with the tier.
const (
	fieldCurrentWordKey = "currentWordKey_"
	fieldCompletedCount = "completedCount_"

	// FieldFirstLaunchDone is the global flag set once first-run seeding completed.
	FieldFirstLaunchDone = "firstLaunchDone"

	// ErrorCorrectionScope namespaces the current word of error-correction
	// sessions, which are not tied to one tier.
	ErrorCorrectionScope = "*errors"
)

// CurrentWordKeyField returns the persisted field holding the pending word of scope.
func CurrentWordKeyField(scope string) string {
	return fieldCurrentWordKey + scope
}

// CompletedCountField returns the persisted field holding the completed counter of tier.
func CompletedCountField(tier string) string {
	return fieldCompletedCount + tier
}
