// Package features computes the boolean signals that speak for or against a
// URL being the base endpoint of a web API.
package features

import (
	"net/url"
	"strings"
)

// Polarity tells whether a feature counts for (positive) or against
// (negative) a base URL.
type Polarity string

const (
	Positive Polarity = "positive"
	Negative Polarity = "negative"
)

// Name identifies one feature. The set of names is closed.
type Name string

const (
	ContainsAPISubstring     Name = "containsApiSubstring"
	ContainsVersionSubstring Name = "containsVersionSubstring"
	EndsWithVersionSubstring Name = "endsWithVersionSubstring"
	EndsWithNumber           Name = "endsWithNumber"

	HasQueryString          Name = "hasQueryString"
	HasFragment             Name = "hasFragment"
	ContainsNonAPISubstring Name = "containsNonApiSubstring"
	OverTwoPaths            Name = "overTwoPaths"
	EndsWithFileExtension   Name = "endsWithFileExtension"
	ContainsBracket         Name = "containsBracket"
	IsHomepage              Name = "isHomepage"
)

// PositiveSet holds the features that point towards a base URL.
type PositiveSet struct {
	ContainsAPISubstring     bool `json:"containsApiSubstring"`
	ContainsVersionSubstring bool `json:"containsVersionSubstring"`
	EndsWithVersionSubstring bool `json:"endsWithVersionSubstring"`
	EndsWithNumber           bool `json:"endsWithNumber"`
}

// NegativeSet holds the features that point away from a base URL.
type NegativeSet struct {
	HasQueryString          bool `json:"hasQueryString"`
	HasFragment             bool `json:"hasFragment"`
	ContainsNonAPISubstring bool `json:"containsNonApiSubstring"`
	OverTwoPaths            bool `json:"overTwoPaths"`
	EndsWithFileExtension   bool `json:"endsWithFileExtension"`
	ContainsBracket         bool `json:"containsBracket"`
	IsHomepage              bool `json:"isHomepage"`
}

// Set is the full feature breakdown for one candidate URL.
type Set struct {
	Positive PositiveSet `json:"positive"`
	Negative NegativeSet `json:"negative"`
}

// Get returns the value of the named feature. Unknown names report false.
func (s *Set) Get(n Name) bool {
	if e, ok := byName[n]; ok {
		return *e.field(s)
	}
	return false
}

// Present lists the names of all features that are set, in catalogue order.
func (s Set) Present() []Name {
	var out []Name
	for _, e := range catalogue {
		if *e.field(&s) {
			out = append(out, e.name)
		}
	}
	return out
}

// candidate is the input shared by all detectors.
type candidate struct {
	raw    string
	parsed *url.URL
}

type entry struct {
	name        Name
	polarity    Polarity
	description string
	field       func(*Set) *bool
	detect      func(candidate) bool
}

// catalogue fixes both the feature names and their order.
var catalogue = []entry{
	{ContainsAPISubstring, Positive, "URL contains the token 'api' between delimiters",
		func(s *Set) *bool { return &s.Positive.ContainsAPISubstring }, containsAPISubstring},
	{ContainsVersionSubstring, Positive, "URL contains a version marker such as v1 or 2.0",
		func(s *Set) *bool { return &s.Positive.ContainsVersionSubstring }, containsVersionSubstring},
	{EndsWithVersionSubstring, Positive, "URL ends with a version marker",
		func(s *Set) *bool { return &s.Positive.EndsWithVersionSubstring }, endsWithVersionSubstring},
	{EndsWithNumber, Positive, "URL ends with a digit, e.g. from a version or date",
		func(s *Set) *bool { return &s.Positive.EndsWithNumber }, endsWithNumber},

	{HasQueryString, Negative, "URL carries a query string",
		func(s *Set) *bool { return &s.Negative.HasQueryString }, hasQueryString},
	{HasFragment, Negative, "URL carries a fragment",
		func(s *Set) *bool { return &s.Negative.HasFragment }, hasFragment},
	{ContainsNonAPISubstring, Negative, "URL mentions 'schema' or 'w3.org'",
		func(s *Set) *bool { return &s.Negative.ContainsNonAPISubstring }, containsNonAPISubstring},
	{OverTwoPaths, Negative, "URL path has more than two segments",
		func(s *Set) *bool { return &s.Negative.OverTwoPaths }, overTwoPaths},
	{EndsWithFileExtension, Negative, "URL path ends in something shaped like a file extension",
		func(s *Set) *bool { return &s.Negative.EndsWithFileExtension }, endsWithFileExtension},
	{ContainsBracket, Negative, "URL contains a bracket, brace or parenthesis (templated URL)",
		func(s *Set) *bool { return &s.Negative.ContainsBracket }, containsBracket},
	{IsHomepage, Negative, "URL is a bare scheme and host homepage",
		func(s *Set) *bool { return &s.Negative.IsHomepage }, isHomepage},
}

var byName = func() map[Name]entry {
	m := make(map[Name]entry, len(catalogue))
	for _, e := range catalogue {
		m[e.name] = e
	}
	return m
}()

// Info describes one feature of the catalogue.
type Info struct {
	Name        Name     `json:"name"`
	Polarity    Polarity `json:"polarity"`
	Description string   `json:"description"`
}

// Catalogue returns every feature in its fixed order: positives first.
func Catalogue() []Info {
	out := make([]Info, len(catalogue))
	for i, e := range catalogue {
		out[i] = Info{Name: e.name, Polarity: e.polarity, Description: e.description}
	}
	return out
}

// Count returns how many features have the given polarity.
func Count(p Polarity) int {
	n := 0
	for _, e := range catalogue {
		if e.polarity == p {
			n++
		}
	}
	return n
}

// Describe returns a short human-readable explanation of a feature.
func Describe(n Name) string {
	if e, ok := byName[n]; ok {
		return e.description
	}
	return string(n)
}

// PolarityOf returns the polarity of a known feature.
func PolarityOf(n Name) (Polarity, bool) {
	e, ok := byName[n]
	return e.polarity, ok
}

// Extract runs every detector against rawURL. All detectors run; none of
// them depends on another.
func Extract(rawURL string) Set {
	c := candidate{raw: rawURL}
	if u, err := url.Parse(rawURL); err == nil {
		c.parsed = u
	} else {
		c.parsed = parseLenient(rawURL)
	}

	var s Set
	for _, e := range catalogue {
		*e.field(&s) = e.detect(c)
	}
	return s
}

// parseLenient splits rawURL into its parts without decoding anything, for
// input net/url rejects, such as a malformed percent escape in the path.
// The fragment is cut first, then the query; the path starts at the first
// "/" after "scheme://".
func parseLenient(rawURL string) *url.URL {
	rest, fragment, _ := strings.Cut(rawURL, "#")
	rest, query, hasQuery := strings.Cut(rest, "?")
	u := &url.URL{
		Fragment:   fragment,
		RawQuery:   query,
		ForceQuery: hasQuery && query == "",
	}
	if i := strings.Index(rest, "://"); i >= 0 {
		u.Scheme = rest[:i]
		host, path, found := strings.Cut(rest[i+3:], "/")
		u.Host = host
		if found {
			u.Path = "/" + path
		}
	} else {
		u.Path = rest
	}
	return u
}
