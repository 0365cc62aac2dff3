package scoring

import (
	"context"
	"log/slog"

	"github.com/MikeSquared-Agency/isbaseurl/internal/features"
	"github.com/MikeSquared-Agency/isbaseurl/internal/metrics"
	"github.com/MikeSquared-Agency/isbaseurl/internal/urlcheck"
)

// Result is the outcome of scoring one candidate URL.
type Result struct {
	CandidateURL string       `json:"candidateUrl"`
	Score        float64      `json:"score"`
	Features     features.Set `json:"features"`
}

// SignalResult captures one feature's contribution to the total score.
type SignalResult struct {
	Name         features.Name     `json:"name"`
	Polarity     features.Polarity `json:"polarity"`
	Present      bool              `json:"present"`
	Weight       float64           `json:"weight"`
	Contribution float64           `json:"contribution"`
}

// Options control a single IsBaseURL call. The zero value validates the URL
// and uses default weights.
type Options struct {
	SkipURLCheck bool
	Weights      Weights
}

// Breakdown returns every feature's weighted contribution in catalogue
// order. A positive feature adds weight/P, a negative one subtracts weight/N,
// where P and N are the number of positive and negative features.
func Breakdown(set features.Set, w Weights) []SignalResult {
	p := float64(features.Count(features.Positive))
	n := float64(features.Count(features.Negative))

	catalogue := features.Catalogue()
	out := make([]SignalResult, 0, len(catalogue))
	for _, info := range catalogue {
		sr := SignalResult{
			Name:     info.Name,
			Polarity: info.Polarity,
			Present:  set.Get(info.Name),
			Weight:   w.For(info.Name),
		}
		if sr.Present {
			if info.Polarity == features.Positive {
				sr.Contribution = (1 / p) * sr.Weight
			} else {
				sr.Contribution = -(1 / n) * sr.Weight
			}
		}
		out = append(out, sr)
	}
	return out
}

// Score aggregates a feature set into a single number: the weighted positive
// share minus the weighted negative share. Under default weights the result
// lies in [-1, 1].
func Score(set features.Set, w Weights) float64 {
	var pos, neg float64
	for _, sr := range Breakdown(set, w) {
		if sr.Contribution > 0 {
			pos += sr.Contribution
		} else {
			neg -= sr.Contribution
		}
	}
	return pos - neg
}

// IsBaseURL scores candidate. ok is false when URL checking is enabled and
// candidate does not look like a URL.
func IsBaseURL(candidate string, opts Options) (Result, bool) {
	if !opts.SkipURLCheck && !urlcheck.IsValidURL(candidate) {
		return Result{}, false
	}
	set := features.Extract(candidate)
	return Result{
		CandidateURL: candidate,
		Score:        Score(set, opts.Weights),
		Features:     set,
	}, true
}

// Evaluate is IsBaseURL for dynamically typed input such as decoded JSON.
// Anything that is not a string is not applicable.
func Evaluate(candidate any, opts Options) (Result, bool) {
	s, isString := candidate.(string)
	if !isString {
		return Result{}, false
	}
	return IsBaseURL(s, opts)
}

// Overrides carries per-request adjustments on top of a Scorer's defaults.
type Overrides struct {
	CheckURLValid *bool   `json:"checkUrlValid,omitempty" yaml:"checkUrlValid"`
	Weights       Weights `json:"weights" yaml:"weights"`
}

// Scorer applies configured defaults to IsBaseURL and records metrics.
type Scorer struct {
	weights       Weights
	checkURLValid bool
	logger        *slog.Logger
}

// NewScorer creates a Scorer with the given default weights and URL checking.
func NewScorer(weights Weights, checkURLValid bool, logger *slog.Logger) *Scorer {
	metrics.Init()
	return &Scorer{
		weights:       weights,
		checkURLValid: checkURLValid,
		logger:        logger,
	}
}

// Weights returns the scorer's default weights.
func (s *Scorer) Weights() Weights {
	return s.weights
}

// Options resolves overrides against the scorer's defaults.
func (s *Scorer) Options(o Overrides) Options {
	check := s.checkURLValid
	if o.CheckURLValid != nil {
		check = *o.CheckURLValid
	}
	return Options{
		SkipURLCheck: !check,
		Weights:      s.weights.Merge(o.Weights),
	}
}

// Score evaluates one candidate. ok is false when the candidate is not
// applicable (not a string, or failed URL checking).
func (s *Scorer) Score(candidate any, o Overrides) (Result, bool) {
	res, ok := Evaluate(candidate, s.Options(o))
	if !ok {
		metrics.ObserveNotApplicable()
		s.logger.Debug("candidate not applicable", "candidate", candidate)
		return res, false
	}

	present := res.Features.Present()
	names := make([]string, len(present))
	for i, n := range present {
		names[i] = string(n)
	}
	metrics.ObserveScore(res.Score, names)
	s.logger.Debug("candidate scored", "candidate", res.CandidateURL, "score", res.Score, "features", names)
	return res, true
}

// ScoreAll scores candidates in order. Entries that are not applicable are
// nil. It stops early when ctx is cancelled.
func (s *Scorer) ScoreAll(ctx context.Context, candidates []any, o Overrides) ([]*Result, error) {
	out := make([]*Result, len(candidates))
	for i, c := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if res, ok := s.Score(c, o); ok {
			out[i] = &res
		}
	}
	return out, nil
}
