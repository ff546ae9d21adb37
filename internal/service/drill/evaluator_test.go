package drill

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/phrazzld/vocab-drill/internal/domain"
)

func TestEvaluate(t *testing.T) {
	hund := &domain.WordEntry{Marker: "der", Text: "Hund", Translation: "dog", Tier: "A1"}
	gehen := &domain.WordEntry{Text: "gehen", Translation: "to go", Tier: "A1"}
	blank := &domain.WordEntry{Marker: "   ", Text: "schnell", Translation: "fast", Tier: "A1"}

	tests := []struct {
		name        string
		marker      string
		translation string
		entry       *domain.WordEntry
		want        bool
	}{
		{name: "marker and translation match", marker: "der", translation: "dog", entry: hund, want: true},
		{name: "wrong translation", marker: "der", translation: "to go", entry: hund, want: false},
		{name: "wrong marker", marker: "die", translation: "dog", entry: hund, want: false},
		{name: "missing marker", marker: "", translation: "dog", entry: hund, want: false},
		{name: "marker is case sensitive", marker: "Der", translation: "dog", entry: hund, want: false},
		{name: "translation is exact", marker: "der", translation: "Dog", entry: hund, want: false},
		{name: "no marker required, empty marker", marker: "", translation: "to go", entry: gehen, want: true},
		{name: "no marker required, any marker", marker: "das", translation: "to go", entry: gehen, want: true},
		{name: "blank marker counts as none", marker: "die", translation: "fast", entry: blank, want: true},
		{name: "no marker required, wrong translation", marker: "", translation: "dog", entry: gehen, want: false},
		{name: "nil entry", marker: "der", translation: "dog", entry: nil, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(tt.marker, tt.translation, tt.entry)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, Evaluate(tt.marker, tt.translation, tt.entry), "same inputs, same result")
		})
	}
}

func TestEvaluate_DoesNotMutateEntry(t *testing.T) {
	hund := &domain.WordEntry{Marker: "der", Text: "Hund", Translation: "dog", Tier: "A1"}
	before := *hund

	Evaluate("die", "cat", hund)

	assert.Equal(t, before, *hund)
}
