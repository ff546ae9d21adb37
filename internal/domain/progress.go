package domain

// Progress is a tier's readout for the tier-selection screen.
//
// Completed and Total come from different sources: Completed is the persisted
// counter of correct answers and Total a live count of the tier's entries.
// Completed may exceed Total if entries were removed after progress accrued.
type Progress struct {
	Tier      string `json:"tier"`
	Completed int    `json:"completed"`
	Total     int    `json:"total"`
}

// Ratio returns Completed/Total clamped to [0, 1]. A tier without entries
// reports 0.
func (p Progress) Ratio() float64 {
	if p.Total <= 0 {
		return 0
	}
	r := float64(p.Completed) / float64(p.Total)
	if r > 1 {
		return 1
	}
	return r
}
