package hermes

import (
	"encoding/json"

	"github.com/MikeSquared-Agency/isbaseurl/internal/features"
	"github.com/MikeSquared-Agency/isbaseurl/internal/scoring"
)

// CandidateEvent asks for a candidate to be scored. URL is kept raw so that
// non-string payloads can be rejected instead of failing to decode.
type CandidateEvent struct {
	URL           json.RawMessage  `json:"url"`
	CheckURLValid *bool            `json:"check_url_valid,omitempty"`
	Weights       *scoring.Weights `json:"weights,omitempty"`
	Record        *bool            `json:"record,omitempty"`
	Source        string           `json:"source,omitempty"`
	ReplyTo       string           `json:"reply_to,omitempty"`
}

type ScoredEvent struct {
	EvaluationID string       `json:"evaluation_id"`
	CandidateURL string       `json:"candidate_url"`
	Score        float64      `json:"score"`
	Features     features.Set `json:"features"`
	Recorded     bool         `json:"recorded"`
	Source       string       `json:"source,omitempty"`
}

type RejectedEvent struct {
	Reason string          `json:"reason"`
	URL    json.RawMessage `json:"url,omitempty"`
	Source string          `json:"source,omitempty"`
}
