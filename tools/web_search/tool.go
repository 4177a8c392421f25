package web_search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mohammad-safakhou/newsdesk/config"
	"github.com/mohammad-safakhou/newsdesk/internal/agent/core"
	"github.com/mohammad-safakhou/newsdesk/internal/attribution"
	"github.com/mohammad-safakhou/newsdesk/internal/helpers"
	"github.com/mohammad-safakhou/newsdesk/tools/web_search/models"
)

const ToolName = "search"

// Tool exposes a WebSearcher to the agent loop.
type Tool struct {
	searcher WebSearcher
	k        int
	policy   config.SourcePolicyConfig
}

func NewTool(searcher WebSearcher, k int, policy config.SourcePolicyConfig) *Tool {
	if k <= 0 {
		k = 3
	}
	return &Tool{searcher: searcher, k: k, policy: policy.Normalize()}
}

func (t *Tool) Name() string { return ToolName }

func (t *Tool) Description() string {
	return "Search the web for recent pages about a query. Input is the search query in English or Japanese."
}

type hit struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

// Invoke returns the hits as a compact JSON array and records each usable
// hit as a source.
func (t *Tool) Invoke(ctx context.Context, input string) (core.ToolResult, error) {
	q := strings.TrimSpace(input)
	if q == "" {
		return core.ToolResult{}, core.Permanent(errors.New("search: empty query"))
	}
	results, err := t.searcher.Discover(ctx, q, t.k, t.policy.Allow)
	if err != nil {
		var se *models.StatusError
		if errors.As(err, &se) && !se.Retryable() {
			return core.ToolResult{}, core.Permanent(err)
		}
		return core.ToolResult{}, err
	}

	hits := make([]hit, 0, len(results))
	var sources []attribution.SourceRecord
	for _, r := range results {
		link := helpers.SourceLink(r.URL)
		if link == "" || !t.policy.Permits(link) {
			continue
		}
		h := hit{
			Title:   helpers.HTMLToText(r.Title),
			Link:    link,
			Snippet: helpers.HTMLToText(r.Snippet),
		}
		hits = append(hits, h)
		if h.Snippet != "" {
			sources = append(sources, attribution.SourceRecord{Link: h.Link, Title: h.Title, Snippet: h.Snippet})
		}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(hits); err != nil {
		return core.ToolResult{}, fmt.Errorf("search: encode results: %w", err)
	}
	return core.ToolResult{
		Observation: strings.TrimRight(buf.String(), "\n"),
		Sources:     sources,
	}, nil
}
