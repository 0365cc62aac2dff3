// Package discover pulls candidate base URLs out of a local HTML document,
// such as saved API documentation, and ranks them with the scorer.
package discover

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/MikeSquared-Agency/isbaseurl/internal/scoring"
)

// Where a link was found.
const (
	SourceAnchor = "a"
	SourceLink   = "link"
	SourceText   = "text"
)

// Link is one candidate URL found in a document.
type Link struct {
	URL    string `json:"url"`
	Source string `json:"source"`
	Text   string `json:"text,omitempty"`
}

// Ranked is a scored Link.
type Ranked struct {
	Link
	scoring.Result
}

// inlineURL matches absolute URLs written out in code samples.
var inlineURL = regexp.MustCompile("(?i)(?:https?|ftp)://[^\\s\"'<>`]+")

var allowedSchemes = map[string]bool{"http": true, "https": true, "ftp": true}

// Links returns every distinct absolute http, https or ftp URL referenced by
// the document, in document order. Relative references are resolved against
// base; when base is empty they are skipped.
func Links(r io.Reader, base string) ([]Link, error) {
	var baseURL *url.URL
	if base != "" {
		u, err := url.Parse(base)
		if err != nil {
			return nil, fmt.Errorf("parse base URL: %w", err)
		}
		if u.Scheme == "" || u.Host == "" {
			return nil, fmt.Errorf("invalid base URL %q: must have scheme and host", base)
		}
		baseURL = u
	}

	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse HTML: %w", err)
	}

	seen := make(map[string]bool)
	var links []Link
	add := func(raw, source, text string) {
		abs, ok := resolve(raw, baseURL)
		if !ok || seen[abs] {
			return
		}
		seen[abs] = true
		links = append(links, Link{URL: abs, Source: source, Text: text})
	}

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		add(href, SourceAnchor, strings.Join(strings.Fields(s.Text()), " "))
	})
	doc.Find("link[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		add(href, SourceLink, s.AttrOr("rel", ""))
	})
	doc.Find("code, pre").Each(func(_ int, s *goquery.Selection) {
		for _, m := range inlineURL.FindAllString(s.Text(), -1) {
			add(strings.TrimRight(m, ".,;:"), SourceText, "")
		}
	})

	return links, nil
}

func resolve(raw string, base *url.URL) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	if !u.IsAbs() {
		if base == nil {
			return "", false
		}
		u = base.ResolveReference(u)
	}
	if !allowedSchemes[strings.ToLower(u.Scheme)] || u.Host == "" {
		return "", false
	}
	return u.String(), true
}

// Rank scores links and returns those scoring at least minScore, best first.
// Links that are not applicable are dropped.
func Rank(ctx context.Context, sc *scoring.Scorer, links []Link, o scoring.Overrides, minScore float64) ([]Ranked, error) {
	candidates := make([]any, len(links))
	for i, l := range links {
		candidates[i] = l.URL
	}
	results, err := sc.ScoreAll(ctx, candidates, o)
	if err != nil {
		return nil, err
	}

	var out []Ranked
	for i, res := range results {
		if res == nil || res.Score < minScore {
			continue
		}
		out = append(out, Ranked{Link: links[i], Result: *res})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out, nil
}
