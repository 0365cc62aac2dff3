package scoring

import (
	"fmt"
	"math"

	"github.com/MikeSquared-Agency/isbaseurl/internal/features"
)

// DefaultWeight is used for every feature the caller does not weight.
const DefaultWeight = 1.0

// PositiveWeights scales the contribution of each positive feature.
// A zero value means "use DefaultWeight".
type PositiveWeights struct {
	ContainsAPISubstring     float64 `json:"containsApiSubstring,omitempty" yaml:"containsApiSubstring" validate:"gte=0"`
	ContainsVersionSubstring float64 `json:"containsVersionSubstring,omitempty" yaml:"containsVersionSubstring" validate:"gte=0"`
	EndsWithVersionSubstring float64 `json:"endsWithVersionSubstring,omitempty" yaml:"endsWithVersionSubstring" validate:"gte=0"`
	EndsWithNumber           float64 `json:"endsWithNumber,omitempty" yaml:"endsWithNumber" validate:"gte=0"`
}

// NegativeWeights scales the contribution of each negative feature.
// A zero value means "use DefaultWeight".
type NegativeWeights struct {
	HasQueryString          float64 `json:"hasQueryString,omitempty" yaml:"hasQueryString" validate:"gte=0"`
	HasFragment             float64 `json:"hasFragment,omitempty" yaml:"hasFragment" validate:"gte=0"`
	ContainsNonAPISubstring float64 `json:"containsNonApiSubstring,omitempty" yaml:"containsNonApiSubstring" validate:"gte=0"`
	OverTwoPaths            float64 `json:"overTwoPaths,omitempty" yaml:"overTwoPaths" validate:"gte=0"`
	EndsWithFileExtension   float64 `json:"endsWithFileExtension,omitempty" yaml:"endsWithFileExtension" validate:"gte=0"`
	ContainsBracket         float64 `json:"containsBracket,omitempty" yaml:"containsBracket" validate:"gte=0"`
	IsHomepage              float64 `json:"isHomepage,omitempty" yaml:"isHomepage" validate:"gte=0"`
}

// Weights mirrors features.Set with a weight per feature. Only the fields a
// caller sets take effect; everything else falls back to DefaultWeight.
type Weights struct {
	Positive PositiveWeights `json:"positive" yaml:"positive"`
	Negative NegativeWeights `json:"negative" yaml:"negative"`
}

// DefaultWeights returns every feature weighted at DefaultWeight.
func DefaultWeights() Weights {
	return Weights{
		Positive: PositiveWeights{
			ContainsAPISubstring:     DefaultWeight,
			ContainsVersionSubstring: DefaultWeight,
			EndsWithVersionSubstring: DefaultWeight,
			EndsWithNumber:           DefaultWeight,
		},
		Negative: NegativeWeights{
			HasQueryString:          DefaultWeight,
			HasFragment:             DefaultWeight,
			ContainsNonAPISubstring: DefaultWeight,
			OverTwoPaths:            DefaultWeight,
			EndsWithFileExtension:   DefaultWeight,
			ContainsBracket:         DefaultWeight,
			IsHomepage:              DefaultWeight,
		},
	}
}

// For returns the effective weight of the named feature. 0 and NaN count as
// unset and yield DefaultWeight.
func (w Weights) For(n features.Name) float64 {
	v := w.raw(n)
	if v == 0 || math.IsNaN(v) {
		return DefaultWeight
	}
	return v
}

// Merge returns w with every set field of override copied over it.
func (w Weights) Merge(override Weights) Weights {
	out := w
	for _, info := range features.Catalogue() {
		if v := override.raw(info.Name); v != 0 && !math.IsNaN(v) {
			*out.ptr(info.Name) = v
		}
	}
	return out
}

// Validate rejects negative and non-finite weights.
func (w Weights) Validate() error {
	for _, info := range features.Catalogue() {
		v := w.raw(info.Name)
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("invalid weight for %s: %v", info.Name, v)
		}
	}
	return nil
}

func (w Weights) raw(n features.Name) float64 {
	if p := w.ptr(n); p != nil {
		return *p
	}
	return 0
}

func (w *Weights) ptr(n features.Name) *float64 {
	switch n {
	case features.ContainsAPISubstring:
		return &w.Positive.ContainsAPISubstring
	case features.ContainsVersionSubstring:
		return &w.Positive.ContainsVersionSubstring
	case features.EndsWithVersionSubstring:
		return &w.Positive.EndsWithVersionSubstring
	case features.EndsWithNumber:
		return &w.Positive.EndsWithNumber
	case features.HasQueryString:
		return &w.Negative.HasQueryString
	case features.HasFragment:
		return &w.Negative.HasFragment
	case features.ContainsNonAPISubstring:
		return &w.Negative.ContainsNonAPISubstring
	case features.OverTwoPaths:
		return &w.Negative.OverTwoPaths
	case features.EndsWithFileExtension:
		return &w.Negative.EndsWithFileExtension
	case features.ContainsBracket:
		return &w.Negative.ContainsBracket
	case features.IsHomepage:
		return &w.Negative.IsHomepage
	default:
		return nil
	}
}
