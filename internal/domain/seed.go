package domain

// SeedRecord is one item of the bundled word list. The JSON names match the
// bundled file: an optional article, the word, its translation and the level.
type SeedRecord struct {
	Marker      *string `json:"Artikel"`
	Text        string  `json:"Word"`
	Translation string  `json:"Translation"`
	Tier        string  `json:"Level"`
}

// Entry converts the record into a fresh WordEntry.
func (r SeedRecord) Entry() (*WordEntry, error) {
	marker := ""
	if r.Marker != nil {
		marker = *r.Marker
	}
	return NewWordEntry(marker, r.Text, r.Translation, r.Tier)
}
