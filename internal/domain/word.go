package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Word-specific validation errors
var (
	// ErrWordTextEmpty is returned when a word's prompt text is blank.
	ErrWordTextEmpty = errors.New("word text cannot be empty")

	// ErrWordTranslationEmpty is returned when a word has no translation.
	ErrWordTranslationEmpty = errors.New("word translation cannot be empty")

	// ErrWordTierEmpty is returned when a word is not assigned to a tier.
	ErrWordTierEmpty = errors.New("word tier cannot be empty")
)

// WordEntry is one vocabulary item. Text is the prompt shown to the learner
// and the lookup key; it is unique across the whole store.
//
// Marker is the grammatical class marker the learner must pick (for example
// a noun's article). A blank marker means none is required.
//
// Used and HasError are independent flags: Used tracks the current
// exhaustion cycle of the tier, HasError whether the latest answer was wrong.
type WordEntry struct {
	Marker      string `json:"marker,omitempty"`
	Text        string `json:"text"`
	Translation string `json:"translation"`
	Tier        string `json:"tier"`
	Used        bool   `json:"used"`
	HasError    bool   `json:"has_error"`
}

// NewWordEntry creates an unused, error-free entry and validates it.
func NewWordEntry(marker, text, translation, tier string) (*WordEntry, error) {
	w := &WordEntry{
		Marker:      strings.TrimSpace(marker),
		Text:        text,
		Translation: translation,
		Tier:        tier,
	}

	if err := w.Validate(); err != nil {
		return nil, err
	}

	return w, nil
}

// Validate checks that the entry carries the fields required to drill it.
func (w *WordEntry) Validate() error {
	if strings.TrimSpace(w.Text) == "" {
		return fmt.Errorf("%w: %w", ErrValidation, ErrWordTextEmpty)
	}

	if strings.TrimSpace(w.Translation) == "" {
		return fmt.Errorf("%w: %w", ErrValidation, ErrWordTranslationEmpty)
	}

	if strings.TrimSpace(w.Tier) == "" {
		return fmt.Errorf("%w: %w", ErrValidation, ErrWordTierEmpty)
	}

	return nil
}

// MarkerRequired reports whether the learner has to supply a marker.
func (w *WordEntry) MarkerRequired() bool {
	return strings.TrimSpace(w.Marker) != ""
}
