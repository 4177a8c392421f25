package render

import (
	"strings"
	"testing"
	"time"

	"github.com/mohammad-safakhou/newsdesk/internal/agent/core"
	"github.com/mohammad-safakhou/newsdesk/internal/attribution"
	"github.com/stretchr/testify/require"
)

func sampleResult() attribution.Result {
	return attribution.Result{
		Mode: attribution.WordMode,
		Spans: []attribution.Span{
			{Text: "Go 1.22 adds", Source: 1, Tokens: 3},
			{Text: "<script>", Source: attribution.Unattributed, Tokens: 1},
			{Text: "range over ints", Source: 0, Tokens: 3},
		},
		SourcesUsed: []int{1, 0},
		Sources: []attribution.SourceRecord{
			{Link: "https://example.com/range", Title: "Range & ints", Snippet: "range over ints"},
			{Link: "javascript:alert(1)", Title: "", Snippet: "Go 1.22 adds\nthings"},
		},
	}
}

func TestStyleCyclesPalette(t *testing.T) {
	style := Style(sampleResult(), []string{"#000000"})
	require.True(t, strings.HasPrefix(style, "<style>"))
	require.True(t, strings.HasSuffix(style, "</style>"))
	require.Contains(t, style, ".c1 { color: #000000 !important; }")
	require.Contains(t, style, ".c0 { color: #000000 !important; }")
	require.Contains(t, style, ".c1-chip { background-color: #000000; color: #FFFFFF; }")

	require.Equal(t, "<style></style>", Style(attribution.Result{}, nil))
}

func TestArticleEscapesAndWraps(t *testing.T) {
	got := Article(sampleResult())
	require.Equal(t,
		`<span class="c1">Go 1.22 adds</span> &lt;script&gt; <span class="c0">range over ints</span>`,
		got)
}

func TestArticleCharacterMode(t *testing.T) {
	res := attribution.Result{
		Mode: attribution.CharacterMode,
		Spans: []attribution.Span{
			{Text: "東京", Source: 0, Tokens: 2},
			{Text: "\n", Source: attribution.Unattributed, Tokens: 1},
		},
	}
	require.Equal(t, `<span class="c0">東京</span><br/>`, Article(res))
}

func TestSourcesListsUsedInOrder(t *testing.T) {
	got := Sources(sampleResult())
	lines := strings.Split(got, "\n")
	require.Len(t, lines, 2)
	require.Contains(t, lines[0], `<span class="c1">Go 1.22 adds<br/>things</span>`)
	require.Contains(t, lines[0], `<a href="#"`)
	require.Contains(t, lines[0], `>javascript:alert(1)</a>`)
	require.Contains(t, lines[1], `<a href="https://example.com/range"`)
	require.Contains(t, lines[1], `>Range &amp; ints</a>`)
}

func TestPage(t *testing.T) {
	report := core.Report{
		Topic:       "Go <1.22>",
		Assistant:   "writing",
		Status:      "finished",
		Translation: `<p onclick="x()">翻訳</p><script>alert(1)</script>`,
		Attribution: sampleResult(),
		Coverage:    0.857,
		StartedAt:   time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC),
	}
	var b strings.Builder
	require.NoError(t, Page(&b, report, nil))
	out := b.String()

	require.Contains(t, out, "<title>Go &lt;1.22&gt;</title>")
	require.Contains(t, out, ".c1 { color: #FF5252 !important; }")
	require.Contains(t, out, `<span class="c0">range over ints</span>`)
	require.Contains(t, out, "<p>翻訳</p>")
	require.NotContains(t, out, "onclick")
	require.NotContains(t, out, "alert(1)</script>")
	require.Contains(t, out, "86% attributed")
}
