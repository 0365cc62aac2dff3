package features

import (
	"regexp"
	"strings"

	"github.com/MikeSquared-Agency/isbaseurl/internal/urlcheck"
)

var (
	apiTokenPattern      = regexp.MustCompile(`(?i)(?:^|[./?&])api(?:$|[./?&])`)
	versionPattern       = regexp.MustCompile(`(?i)v[0-9]|[0-9]\.[0-9]`)
	endVersionPattern    = regexp.MustCompile(`(?i)(?:v[0-9]|[0-9]\.[0-9])$`)
	endNumberPattern     = regexp.MustCompile(`[0-9]$`)
	nonAPIPattern        = regexp.MustCompile(`(?i)schema|w3\.org`)
	fileExtensionPattern = regexp.MustCompile(`\.[a-zA-Z0-9]{2,5}$`)
)

// --- positive ---

func containsAPISubstring(c candidate) bool {
	return apiTokenPattern.MatchString(c.raw)
}

func containsVersionSubstring(c candidate) bool {
	return versionPattern.MatchString(c.raw)
}

func endsWithVersionSubstring(c candidate) bool {
	return endVersionPattern.MatchString(c.raw)
}

func endsWithNumber(c candidate) bool {
	return endNumberPattern.MatchString(c.raw)
}

// --- negative ---

// hasQueryString treats a bare trailing "?" as a (empty) query.
func hasQueryString(c candidate) bool {
	if c.parsed == nil {
		return false
	}
	return c.parsed.RawQuery != "" || c.parsed.ForceQuery
}

func hasFragment(c candidate) bool {
	return strings.Contains(c.raw, "#")
}

func containsNonAPISubstring(c candidate) bool {
	return nonAPIPattern.MatchString(c.raw)
}

// overTwoPaths counts path segments as the number of slashes in the escaped
// path; "" and "/" count as zero.
func overTwoPaths(c candidate) bool {
	if c.parsed == nil {
		return false
	}
	p := c.parsed.EscapedPath()
	if p == "" || p == "/" {
		return false
	}
	return strings.Count(p, "/") > 2
}

// endsWithFileExtension only looks at URLs with more than two slashes once
// query and fragment are cut off, so "http://example.com" never counts.
func endsWithFileExtension(c candidate) bool {
	s, _, _ := strings.Cut(c.raw, "?")
	s, _, _ = strings.Cut(s, "#")
	if strings.Count(s, "/") <= 2 {
		return false
	}
	return fileExtensionPattern.MatchString(s)
}

func containsBracket(c candidate) bool {
	return strings.ContainsAny(c.raw, "{}<>[]()")
}

func isHomepage(c candidate) bool {
	return urlcheck.IsHomepage(c.raw)
}
