package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/isbaseurl/internal/features"
	"github.com/MikeSquared-Agency/isbaseurl/internal/scoring"
)

// Evaluation source values.
const (
	SourceAPI    = "api"
	SourceHermes = "hermes"
	SourceCLI    = "cli"
)

// Evaluation is a recorded scoring result together with the weights that
// produced it.
type Evaluation struct {
	ID           uuid.UUID       `json:"id"`
	CandidateURL string          `json:"candidateUrl"`
	Score        float64         `json:"score"`
	Features     features.Set    `json:"features"`
	Weights      scoring.Weights `json:"weights"`
	Source       string          `json:"source"`
	CreatedAt    time.Time       `json:"created_at"`
}

// NewEvaluation builds an unsaved Evaluation from a scoring result.
func NewEvaluation(res scoring.Result, w scoring.Weights, source string) *Evaluation {
	return &Evaluation{
		CandidateURL: res.CandidateURL,
		Score:        res.Score,
		Features:     res.Features,
		Weights:      w,
		Source:       source,
	}
}

type Store interface {
	// SaveEvaluation assigns ID (when unset) and CreatedAt.
	SaveEvaluation(ctx context.Context, e *Evaluation) error
	// GetEvaluation returns nil, nil when no evaluation has the given id.
	GetEvaluation(ctx context.Context, id uuid.UUID) (*Evaluation, error)
	// ListEvaluations returns the most recent evaluations first.
	ListEvaluations(ctx context.Context, limit int) ([]*Evaluation, error)
	Close() error
}

const DefaultListLimit = 50

func normalizeLimit(limit int) int {
	if limit <= 0 || limit > 500 {
		return DefaultListLimit
	}
	return limit
}
