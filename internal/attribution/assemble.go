package attribution

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidSourceRecord is returned for records missing a link or snippet.
var ErrInvalidSourceRecord = errors.New("invalid source record")

// SourceRecord is one search hit. Link is its identity.
type SourceRecord struct {
	Link    string `json:"link"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// Result is the attribution of one finished output.
type Result struct {
	Mode  Mode   `json:"mode"`
	Spans []Span `json:"spans"`
	// SourcesUsed indexes into Sources, in order of first use.
	SourcesUsed []int          `json:"sources_used"`
	Sources     []SourceRecord `json:"sources"`
}

// Text joins the spans back together with the mode separator.
func (r Result) Text() string {
	parts := make([]string, len(r.Spans))
	for i, s := range r.Spans {
		parts[i] = s.Text
	}
	return strings.Join(parts, r.Mode.Separator())
}

// UsedSources returns the records referenced by SourcesUsed, in that order.
func (r Result) UsedSources() []SourceRecord {
	out := make([]SourceRecord, 0, len(r.SourcesUsed))
	for _, i := range r.SourcesUsed {
		out = append(out, r.Sources[i])
	}
	return out
}

// Coverage is the fraction of output tokens that ended up in attributed spans.
func (r Result) Coverage() float64 {
	var total, attributed int
	for _, s := range r.Spans {
		total += s.Tokens
		if s.Attributed() {
			attributed += s.Tokens
		}
	}
	if total == 0 {
		return 0
	}
	return float64(attributed) / float64(total)
}

// MergeSources validates records and merges those sharing a link. The first
// occurrence fixes the position and title; snippets are joined with a newline
// in encounter order.
func MergeSources(records []SourceRecord) ([]SourceRecord, error) {
	pos := make(map[string]int, len(records))
	merged := make([]SourceRecord, 0, len(records))
	for i, rec := range records {
		link := strings.TrimSpace(rec.Link)
		if link == "" {
			return nil, fmt.Errorf("%w: record %d has no link", ErrInvalidSourceRecord, i)
		}
		if strings.TrimSpace(rec.Snippet) == "" {
			return nil, fmt.Errorf("%w: record %d (%s) has no snippet", ErrInvalidSourceRecord, i, link)
		}
		if at, ok := pos[link]; ok {
			merged[at].Snippet += "\n" + rec.Snippet
			continue
		}
		pos[link] = len(merged)
		merged = append(merged, SourceRecord{Link: link, Title: rec.Title, Snippet: rec.Snippet})
	}
	return merged, nil
}

// Attribute aligns output against the snippets of records and returns the
// span segmentation. mode must be chosen by the caller.
func Attribute(output string, records []SourceRecord, mode Mode) (Result, error) {
	sources, err := MergeSources(records)
	if err != nil {
		return Result{}, err
	}
	tokenized := make([][]string, len(sources))
	for i, src := range sources {
		tokenized[i] = Tokenize(src.Snippet, mode)
	}
	idx := BuildIndex(tokenized, 1)
	spans, used := Match(Tokenize(output, mode), idx, mode)
	if spans == nil {
		spans = []Span{}
	}
	if used == nil {
		used = []int{}
	}
	return Result{Mode: mode, Spans: spans, SourcesUsed: used, Sources: sources}, nil
}
