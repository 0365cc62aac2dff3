package scoring

import (
	"context"
	"io"
	"log/slog"
	"math"
	"testing"
	"testing/quick"

	"github.com/MikeSquared-Agency/isbaseurl/internal/features"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func boolPtr(v bool) *bool { return &v }

func TestEvaluate_NotAString(t *testing.T) {
	for _, in := range []any{[]int{1, 2, 3}, 42, nil, map[string]any{"url": "http://api.x.com"}} {
		if _, ok := Evaluate(in, Options{}); ok {
			t.Errorf("Evaluate(%v) should not be applicable", in)
		}
	}
}

func TestIsBaseURL_InvalidURL(t *testing.T) {
	if _, ok := IsBaseURL("some sting - no url", Options{}); ok {
		t.Error("expected invalid URL to be rejected")
	}

	res, ok := IsBaseURL("some sting - no url", Options{SkipURLCheck: true})
	if !ok {
		t.Fatal("expected result with URL checking disabled")
	}
	if res.CandidateURL != "some sting - no url" {
		t.Errorf("unexpected candidate %q", res.CandidateURL)
	}
}

func TestIsBaseURL_Scenarios(t *testing.T) {
	tests := []struct {
		name  string
		url   string
		check func(float64) bool
		want  string
	}{
		{"obvious base url", "http://api.twitter.com/v1", func(s float64) bool { return s == 1 }, "== 1"},
		{"ambiguous", "http://www.twitter.com/erikwittern", func(s float64) bool { return s == 0 }, "== 0"},
		{"static page", "http://www.twitter.com/users.html?order=desc", func(s float64) bool { return s < 0 }, "< 0"},
		{"api host", "http://api.rottentomatoes.com/", func(s float64) bool { return s > 0 }, "> 0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, ok := IsBaseURL(tt.url, Options{})
			if !ok {
				t.Fatalf("expected %q to be applicable", tt.url)
			}
			if !tt.check(res.Score) {
				t.Errorf("score for %q = %f, want %s", tt.url, res.Score, tt.want)
			}
		})
	}
}

func TestIsBaseURL_ApiInsideWord(t *testing.T) {
	res, ok := IsBaseURL("http://www.rottenapis.com", Options{})
	if !ok {
		t.Fatal("expected applicable")
	}
	if res.Features.Positive.ContainsAPISubstring {
		t.Error("containsApiSubstring must not fire inside 'rottenapis'")
	}
}

func TestIsBaseURL_MalformedEscapeStillScored(t *testing.T) {
	for _, u := range []string{
		"http://www.example.com/a/b/100%off?order=desc",
		"http://www.example.com/a/b/c?x=1#50%",
	} {
		res, ok := IsBaseURL(u, Options{})
		if !ok {
			t.Fatalf("expected %q to be applicable", u)
		}
		if !res.Features.Negative.HasQueryString || !res.Features.Negative.OverTwoPaths {
			t.Errorf("%q: expected query and over-two-paths, got %+v", u, res.Features.Negative)
		}
	}

	res, _ := IsBaseURL("http://www.example.com/a/b/100%off?order=desc", Options{})
	if want := -2.0 / 7; math.Abs(res.Score-want) > 1e-9 {
		t.Errorf("score = %f, want %f", res.Score, want)
	}
}

func TestScore_DefaultWeightsBounded(t *testing.T) {
	all := features.Set{
		Positive: features.PositiveSet{
			ContainsAPISubstring:     true,
			ContainsVersionSubstring: true,
			EndsWithVersionSubstring: true,
			EndsWithNumber:           true,
		},
		Negative: features.NegativeSet{
			HasQueryString:          true,
			HasFragment:             true,
			ContainsNonAPISubstring: true,
			OverTwoPaths:            true,
			EndsWithFileExtension:   true,
			ContainsBracket:         true,
			IsHomepage:              true,
		},
	}
	if got := Score(all, Weights{}); math.Abs(got) > 1e-9 {
		t.Errorf("all features set: got %f, want 0", got)
	}
	onlyNeg := features.Set{Negative: all.Negative}
	if got := Score(onlyNeg, Weights{}); math.Abs(got+1) > 1e-9 {
		t.Errorf("only negatives: got %f, want -1", got)
	}
	onlyPos := features.Set{Positive: all.Positive}
	if got := Score(onlyPos, Weights{}); got != 1 {
		t.Errorf("only positives: got %f, want 1", got)
	}
}

func TestScore_CustomWeights(t *testing.T) {
	set := features.Set{Positive: features.PositiveSet{ContainsAPISubstring: true}}
	w := Weights{Positive: PositiveWeights{ContainsAPISubstring: 8}}

	if got := Score(set, w); got != 2 {
		t.Errorf("expected 8/4 = 2, got %f", got)
	}
}

func TestScore_ZeroWeightMeansDefault(t *testing.T) {
	set := features.Set{Negative: features.NegativeSet{HasFragment: true}}
	zero := Score(set, Weights{Negative: NegativeWeights{HasFragment: 0}})
	def := Score(set, DefaultWeights())
	if zero != def {
		t.Errorf("zero weight should behave like default: %f vs %f", zero, def)
	}
}

func TestScore_NegativeWeightMonotonic(t *testing.T) {
	present := features.Set{Negative: features.NegativeSet{HasQueryString: true}}
	absent := features.Set{Positive: features.PositiveSet{EndsWithNumber: true}}

	low := Weights{Negative: NegativeWeights{HasQueryString: 1}}
	high := Weights{Negative: NegativeWeights{HasQueryString: 3}}

	if !(Score(present, high) < Score(present, low)) {
		t.Error("raising a present negative weight should lower the score")
	}
	if Score(absent, high) != Score(absent, low) {
		t.Error("raising an absent negative weight should not change the score")
	}
}

func TestBreakdown(t *testing.T) {
	res, _ := IsBaseURL("http://api.twitter.com/v1", Options{})
	signals := Breakdown(res.Features, Weights{})

	if len(signals) != 11 {
		t.Fatalf("expected 11 signals, got %d", len(signals))
	}
	var sum float64
	for _, sr := range signals {
		if sr.Weight != DefaultWeight {
			t.Errorf("%s: weight %f, want default", sr.Name, sr.Weight)
		}
		if sr.Polarity == features.Negative && sr.Present {
			t.Errorf("%s: unexpected negative signal", sr.Name)
		}
		sum += sr.Contribution
	}
	if sum != res.Score {
		t.Errorf("contributions sum to %f, score is %f", sum, res.Score)
	}
}

func TestIsBaseURL_Idempotent(t *testing.T) {
	opts := Options{Weights: Weights{Positive: PositiveWeights{EndsWithNumber: 2.5}}}
	a, okA := IsBaseURL("https://api.example.com/v2?x=1", opts)
	b, okB := IsBaseURL("https://api.example.com/v2?x=1", opts)
	if okA != okB || a != b {
		t.Errorf("results differ: %+v vs %+v", a, b)
	}
}

func TestScorer_Options(t *testing.T) {
	defaults := Weights{Positive: PositiveWeights{ContainsAPISubstring: 2}}
	s := NewScorer(defaults, true, discardLogger())

	opts := s.Options(Overrides{})
	if opts.SkipURLCheck {
		t.Error("expected URL checking from scorer default")
	}
	if opts.Weights.For(features.ContainsAPISubstring) != 2 {
		t.Errorf("expected configured weight 2, got %f", opts.Weights.For(features.ContainsAPISubstring))
	}

	opts = s.Options(Overrides{
		CheckURLValid: boolPtr(false),
		Weights:       Weights{Positive: PositiveWeights{ContainsAPISubstring: 5}},
	})
	if !opts.SkipURLCheck {
		t.Error("expected override to disable URL checking")
	}
	if opts.Weights.For(features.ContainsAPISubstring) != 5 {
		t.Errorf("expected override weight 5, got %f", opts.Weights.For(features.ContainsAPISubstring))
	}
}

func TestScorer_ScoreAll(t *testing.T) {
	s := NewScorer(DefaultWeights(), true, discardLogger())

	results, err := s.ScoreAll(context.Background(), []any{
		"http://api.twitter.com/v1",
		[]int{1, 2, 3},
		"not a url",
	}, Overrides{})
	if err != nil {
		t.Fatalf("ScoreAll: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[0] == nil || results[0].Score != 1 {
		t.Errorf("first result: %+v", results[0])
	}
	if results[1] != nil || results[2] != nil {
		t.Error("expected nil for non-applicable entries")
	}
}

func TestScorer_ScoreAllCancelled(t *testing.T) {
	s := NewScorer(DefaultWeights(), true, discardLogger())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.ScoreAll(ctx, []any{"http://api.twitter.com/v1"}, Overrides{}); err == nil {
		t.Error("expected context error")
	}
}

func TestIsBaseURL_DefaultScoreBoundedForArbitraryInput(t *testing.T) {
	f := func(s string) bool {
		res, ok := IsBaseURL(s, Options{SkipURLCheck: true})
		return ok && res.Score >= -1-1e-9 && res.Score <= 1+1e-9
	}
	if err := quick.Check(f, nil); err != nil {
		t.Error(err)
	}
}
