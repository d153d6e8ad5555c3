package dto

import (
	"encoding/json"
	"time"

	"giftworks/internal/domain/survey"
)

// SubmitSurveyRequest carries assessment answers.
type SubmitSurveyRequest struct {
	Answers []survey.Answer `json:"answers" binding:"required,min=1"`
}

// SubmissionResponse is one assessment result.
type SubmissionResponse struct {
	ID        int64           `json:"id"`
	Scores    json.RawMessage `json:"scores"`
	TopGifts  []string        `json:"topGifts"`
	CreatedAt time.Time       `json:"createdAt"`
}

// FromSubmission maps a domain submission.
func FromSubmission(s *survey.Submission) SubmissionResponse {
	return SubmissionResponse{
		ID:        s.ID,
		Scores:    s.Scores,
		TopGifts:  s.TopGifts,
		CreatedAt: s.CreatedAt,
	}
}

// FromSubmissions maps a slice of domain submissions.
func FromSubmissions(subs []survey.Submission) []SubmissionResponse {
	out := make([]SubmissionResponse, len(subs))
	for i := range subs {
		out[i] = FromSubmission(&subs[i])
	}
	return out
}
