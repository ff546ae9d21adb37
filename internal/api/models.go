package api

import (
	"github.com/phrazzld/vocab-drill/internal/domain"
	"github.com/phrazzld/vocab-drill/internal/service/drill"
)

// StartSessionRequest starts a drill session. Mode defaults to normal;
// tier is ignored in error-correction mode.
type StartSessionRequest struct {
	Tier string `json:"tier" validate:"max=64"`
	Mode string `json:"mode" validate:"omitempty,oneof=normal error_correction"`
}

// AnswerRequest answers the pending prompt. Marker may be empty for words
// without one.
type AnswerRequest struct {
	Marker      string `json:"marker" validate:"max=64"`
	Translation string `json:"translation" validate:"required,max=512"`
}

// SessionResponse describes the active session.
type SessionResponse struct {
	Tier           string `json:"tier,omitempty"`
	Mode           string `json:"mode"`
	CompletedCount int    `json:"completed_count"`
	TotalCount     int    `json:"total_count"`
	HasPendingWord bool   `json:"has_pending_word"`
}

// AnswerResponse reports the result of an answer. Marker and Translation
// are the correct ones.
type AnswerResponse struct {
	Correct        bool   `json:"correct"`
	Text           string `json:"text"`
	Marker         string `json:"marker,omitempty"`
	Translation    string `json:"translation"`
	CompletedCount int    `json:"completed_count"`
	ErrorCount     int    `json:"error_count"`
	Cleared        bool   `json:"cleared"`
}

// ProgressResponse is one tier's progress.
type ProgressResponse struct {
	Tier      string  `json:"tier"`
	Completed int     `json:"completed"`
	Total     int     `json:"total"`
	Ratio     float64 `json:"ratio"`
}

// ErrorsResponse lists the words currently answered wrong.
type ErrorsResponse struct {
	Count int                 `json:"count"`
	Words []*domain.WordEntry `json:"words"`
}

func sessionToResponse(s domain.SessionState) SessionResponse {
	return SessionResponse{
		Tier:           s.Tier,
		Mode:           string(s.Mode),
		CompletedCount: s.CompletedCount,
		TotalCount:     s.TotalCount,
		HasPendingWord: s.HasCurrentWord(),
	}
}

func outcomeToResponse(o *drill.Outcome) AnswerResponse {
	return AnswerResponse{
		Correct:        o.Correct,
		Text:           o.Entry.Text,
		Marker:         o.Entry.Marker,
		Translation:    o.Entry.Translation,
		CompletedCount: o.CompletedCount,
		ErrorCount:     o.ErrorCount,
		Cleared:        o.Cleared,
	}
}

func progressToResponse(p domain.Progress) ProgressResponse {
	return ProgressResponse{
		Tier:      p.Tier,
		Completed: p.Completed,
		Total:     p.Total,
		Ratio:     p.Ratio(),
	}
}
