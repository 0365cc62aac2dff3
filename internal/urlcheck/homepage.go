package urlcheck

import (
	"net/url"
	"strings"

	"github.com/dlclark/regexp2"
)

// subdomainPattern guesses the TLD boundary with a single lookahead: the
// lazily matched prefix ends at the first dot that is followed (before the
// next slash) by another dot and a 2-5 character tail.
var subdomainPattern = regexp2.MustCompile(
	`(?:http[s]*://)*(.*?)\.(?=[^/]*\..{2,5})`,
	regexp2.IgnoreCase|regexp2.ECMAScript,
)

// Subdomain returns the leading label sequence of rawURL that precedes a
// hostname-like tail, e.g. "api" for "http://api.example.com/users".
// ok is false when the pattern does not match at all.
func Subdomain(rawURL string) (sub string, ok bool) {
	m, err := subdomainPattern.FindStringMatch(rawURL)
	if err != nil || m == nil {
		return "", false
	}
	return m.GroupByNumber(1).String(), true
}

// Homepage reduces rawURL to scheme and host, replacing any subdomain with
// "www". "http://api.example.com/v1" becomes "http://www.example.com".
// The host is lower-cased and loses port and userinfo. Homepage returns ""
// when rawURL cannot be parsed or carries no scheme.
func Homepage(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" {
		return ""
	}

	host := strings.ToLower(u.Hostname())
	if sub, ok := Subdomain(rawURL); ok && sub != "" {
		cut := min(len(sub)+1, len(host))
		host = "www." + host[cut:]
	}

	var b strings.Builder
	b.WriteString(u.Scheme)
	b.WriteByte(':')
	if hasSlashes(rawURL) {
		b.WriteString("//")
	}
	b.WriteString(host)
	return b.String()
}

// IsHomepage reports whether rawURL is exactly its own homepage, which only
// holds for bare scheme+host URLs.
func IsHomepage(rawURL string) bool {
	home := Homepage(rawURL)
	return home != "" && home == rawURL
}

func hasSlashes(rawURL string) bool {
	i := strings.IndexByte(rawURL, ':')
	if i < 0 {
		return false
	}
	return strings.HasPrefix(rawURL[i+1:], "//")
}
