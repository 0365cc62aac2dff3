// Package urlcheck holds the URL shape checks used ahead of feature extraction:
// the syntax gate and the homepage/subdomain derivation.
package urlcheck

import (
	"log/slog"
	"time"

	"github.com/dlclark/regexp2"

	"github.com/MikeSquared-Agency/isbaseurl/internal/metrics"
)

// hostChars covers ASCII alphanumerics plus everything from U+00A1 upwards.
const hostChars = `a-z0-9¡-` + "\U0010FFFF"

// The IP exclusions need negative lookahead, which the standard library
// regexp package does not support.
var validURLPattern = regexp2.MustCompile(
	`^`+
		// scheme
		`(?:(?:https?|ftp)://)`+
		// user:pass@
		`(?:\S+(?::\S*)?@)?`+
		`(?:`+
		// private and local networks
		`(?!(?:10|127)(?:\.\d{1,3}){3})`+
		`(?!(?:169\.254|192\.168)(?:\.\d{1,3}){2})`+
		`(?!172\.(?:1[6-9]|2\d|3[0-1])(?:\.\d{1,3}){2})`+
		// dotted octets; drops 0.x.x.x, >= 224.x.x.x and .0/.255 endings
		`(?:[1-9]\d?|1\d\d|2[01]\d|22[0-3])`+
		`(?:\.(?:1?\d{1,2}|2[0-4]\d|25[0-5])){2}`+
		`(?:\.(?:[1-9]\d?|1\d\d|2[0-4]\d|25[0-4]))`+
		`|`+
		// host and domain labels
		`(?:(?:[`+hostChars+`]-*)*[`+hostChars+`]+)`+
		`(?:\.(?:[`+hostChars+`]-*)*[`+hostChars+`]+)*`+
		// TLD, optionally followed by the root dot
		`(?:\.(?:[a-z¡-`+"\U0010FFFF"+`]{2,}))`+
		`\.?`+
		`)`+
		`(?::\d{2,5})?`+
		`(?:[/?#]\S*)?`+
		`$`,
	regexp2.IgnoreCase|regexp2.ECMAScript,
)

func init() {
	validURLPattern.MatchTimeout = 250 * time.Millisecond
}

// IsValidURL reports whether candidate has the shape of an absolute http,
// https or ftp URL with a public IPv4 address or a dotted hostname.
// A match that times out counts as invalid.
func IsValidURL(candidate string) bool {
	return matchOrTimeout(validURLPattern, candidate)
}

// matchOrTimeout reports a match of p against s. A match that runs past
// p.MatchTimeout is counted, logged at debug level and treated as no match.
func matchOrTimeout(p *regexp2.Regexp, s string) bool {
	ok, err := p.MatchString(s)
	if err != nil {
		metrics.ObserveValidationTimeout()
		slog.Debug("url validation timed out", "length", len(s), "timeout", p.MatchTimeout, "error", err)
		return false
	}
	return ok
}
