package drill

import "github.com/phrazzld/vocab-drill/internal/domain"

// Evaluate reports whether the submitted marker and translation answer entry.
// The marker check passes for any input when the entry has no marker; both
// checks otherwise require an exact match.
func Evaluate(marker, translation string, entry *domain.WordEntry) bool {
	if entry == nil {
		return false
	}
	markerOK := !entry.MarkerRequired() || marker == entry.Marker
	return markerOK && translation == entry.Translation
}
