package helpers

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mohammad-safakhou/newsdesk/internal/attribution"
)

// Citation is one referenced source as printed under a report.
type Citation struct {
	Label    string
	Title    string
	URL      string
	Snippet  string
	Accessed time.Time
}

type citationConfig struct {
	maxSnippet int
}

// CitationOption configures citation formatting.
type CitationOption func(*citationConfig)

// WithMaxSnippetLength truncates snippets to n runes (default 180).
func WithMaxSnippetLength(n int) CitationOption {
	return func(cfg *citationConfig) {
		if n > 0 {
			cfg.maxSnippet = n
		}
	}
}

// CitationsFromSources builds citations for the sources a report used, in
// first-use order. Labels are the source indices the spans refer to.
func CitationsFromSources(sources []attribution.SourceRecord, used []int, accessed time.Time) []Citation {
	out := make([]Citation, 0, len(used))
	for _, idx := range used {
		if idx < 0 || idx >= len(sources) {
			continue
		}
		src := sources[idx]
		out = append(out, Citation{
			Label:    strconv.Itoa(idx),
			Title:    src.Title,
			URL:      src.Link,
			Snippet:  src.Snippet,
			Accessed: accessed,
		})
	}
	return out
}

// FormatCitation renders a single citation:
// [label] Title — "Snippet" (domain, retrieved YYYY-MM-DD) <URL>
func FormatCitation(c Citation, opts ...CitationOption) string {
	cfg := citationConfig{maxSnippet: 180}
	for _, opt := range opts {
		opt(&cfg)
	}

	label := strings.TrimSpace(c.Label)
	if label == "" {
		label = "source"
	}
	parts := []string{"[" + label + "]"}
	if title := strings.TrimSpace(c.Title); title != "" {
		parts = append(parts, title)
	}
	if snippet := quoteSnippet(c.Snippet, cfg.maxSnippet); snippet != "" {
		parts = append(parts, "— "+snippet)
	}
	if domain := extractDomain(c.URL); domain != "" {
		meta := domain
		if !c.Accessed.IsZero() {
			meta += ", retrieved " + c.Accessed.Format("2006-01-02")
		}
		parts = append(parts, "("+meta+")")
	}
	if link := strings.TrimSpace(c.URL); link != "" {
		parts = append(parts, "<"+link+">")
	}
	return strings.Join(parts, " ")
}

// FormatCitations renders a collection of citations.
func FormatCitations(citations []Citation, opts ...CitationOption) []string {
	if len(citations) == 0 {
		return nil
	}
	out := make([]string, 0, len(citations))
	for _, c := range citations {
		out = append(out, FormatCitation(c, opts...))
	}
	return out
}

func quoteSnippet(snippet string, limit int) string {
	snippet = strings.Join(strings.Fields(snippet), " ")
	if snippet == "" {
		return ""
	}
	return `"` + Truncate(snippet, limit) + `"`
}

func extractDomain(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}
