package web_fetch

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/mohammad-safakhou/newsdesk/config"
	"github.com/mohammad-safakhou/newsdesk/internal/agent/core"
	"github.com/mohammad-safakhou/newsdesk/internal/attribution"
	"github.com/mohammad-safakhou/newsdesk/internal/helpers"
	"github.com/mohammad-safakhou/newsdesk/tools/web_fetch/models"
)

const ToolName = "fetch"

// Tool lets the model read the page behind a search hit.
type Tool struct {
	fetcher WebFetcher
	policy  config.SourcePolicyConfig
}

func NewTool(fetcher WebFetcher, policy config.SourcePolicyConfig) *Tool {
	return &Tool{fetcher: fetcher, policy: policy.Normalize()}
}

func (t *Tool) Name() string { return ToolName }

func (t *Tool) Description() string {
	return "Read the main text of a web page. Input is an absolute http(s) URL, usually a link returned by search."
}

// Invoke fetches the page and returns its readable text. The text is also
// recorded as a source so copied passages can be attributed.
func (t *Tool) Invoke(ctx context.Context, input string) (core.ToolResult, error) {
	raw := strings.Trim(strings.TrimSpace(input), `"'<>`)
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return core.ToolResult{}, core.Permanent(fmt.Errorf("fetch: %q is not an absolute http(s) url", raw))
	}
	if !t.policy.Permits(raw) {
		return core.ToolResult{}, core.Permanent(fmt.Errorf("fetch: %s is blocked by the source policy", u.Hostname()))
	}

	res, err := t.fetcher.Exec(ctx, raw)
	if err != nil {
		var se *models.StatusError
		if errors.As(err, &se) && !se.Retryable() {
			return core.ToolResult{}, core.Permanent(err)
		}
		return core.ToolResult{}, err
	}
	if res.Text == "" {
		return core.ToolResult{Observation: "The page has no readable text."}, nil
	}

	var b strings.Builder
	if res.Title != "" {
		b.WriteString("Title: ")
		b.WriteString(res.Title)
		b.WriteString("\n\n")
	}
	b.WriteString(res.Text)

	return core.ToolResult{
		Observation: b.String(),
		Sources: []attribution.SourceRecord{{
			Link:    helpers.SourceLink(raw),
			Title:   res.Title,
			Snippet: res.Text,
		}},
	}, nil
}
