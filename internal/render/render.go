package render

import (
	"fmt"
	"html"
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/mohammad-safakhou/newsdesk/config"
	"github.com/mohammad-safakhou/newsdesk/internal/agent/core"
	"github.com/mohammad-safakhou/newsdesk/internal/attribution"
	"github.com/mohammad-safakhou/newsdesk/internal/helpers"
)

// Fragments are the three pieces a highlighted report is made of.
type Fragments struct {
	Style   template.HTML
	Article template.HTML
	Sources template.HTML
}

// Build renders all fragments for res. Colours cycle through palette in the
// order sources were first used.
func Build(res attribution.Result, palette []string) Fragments {
	return Fragments{
		Style:   template.HTML(Style(res, palette)),
		Article: template.HTML(Article(res)),
		Sources: template.HTML(Sources(res)),
	}
}

// Style assigns one colour class per used source.
func Style(res attribution.Result, palette []string) string {
	if len(palette) == 0 {
		palette = config.DefaultPalette
	}
	var b strings.Builder
	b.WriteString("<style>")
	for i, src := range res.SourcesUsed {
		colour := palette[i%len(palette)]
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, ".c%d { color: %s !important; }\n", src, colour)
		fmt.Fprintf(&b, ".c%d-chip { background-color: %s; color: %s; }", src, colour, helpers.ReadableTextColour(colour))
	}
	b.WriteString("</style>")
	return b.String()
}

// Article renders the output with each attributed span wrapped in its
// source's class. Text is escaped; newlines become <br/>.
func Article(res attribution.Result) string {
	sep := html.EscapeString(res.Mode.Separator())
	var b strings.Builder
	for i, span := range res.Spans {
		if i > 0 {
			b.WriteString(sep)
		}
		text := html.EscapeString(span.Text)
		if span.Attributed() {
			fmt.Fprintf(&b, `<span class="c%d">%s</span>`, span.Source, text)
		} else {
			b.WriteString(text)
		}
	}
	return strings.ReplaceAll(b.String(), "\n", "<br/>")
}

// Sources lists the used sources with their snippet highlighted in the
// source's colour, followed by a link.
func Sources(res attribution.Result) string {
	var lines []string
	for _, idx := range res.SourcesUsed {
		if idx < 0 || idx >= len(res.Sources) {
			continue
		}
		src := res.Sources[idx]
		title := src.Title
		if strings.TrimSpace(title) == "" {
			title = src.Link
		}
		lines = append(lines, fmt.Sprintf(
			`<div><span class="c%d-chip">[%d]</span> <span class="c%d">%s</span></div><a href="%s" target="_blank" rel="noopener noreferrer">%s</a>`,
			idx, idx, idx, strings.ReplaceAll(html.EscapeString(src.Snippet), "\n", "<br/>"),
			html.EscapeString(safeLink(src.Link)), html.EscapeString(title),
		))
	}
	return strings.Join(lines, "\n")
}

// safeLink drops links that are not http(s).
func safeLink(link string) string {
	l := strings.ToLower(strings.TrimSpace(link))
	if strings.HasPrefix(l, "http://") || strings.HasPrefix(l, "https://") {
		return strings.TrimSpace(link)
	}
	return "#"
}

var pageTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Topic}}</title>
{{.Fragments.Style}}
</head>
<body>
<header>
<h1>{{.Topic}}</h1>
<p class="meta">{{.Assistant}} assistant · {{.Status}} · {{.Started}} · {{.Coverage}} attributed</p>
</header>
<article>{{.Fragments.Article}}</article>
{{if .Translation}}<section class="translation" lang="ja">{{.Translation}}</section>{{end}}
{{if .Fragments.Sources}}<section class="sources"><h2>Sources</h2>
{{.Fragments.Sources}}
</section>{{end}}
{{if .Error}}<p class="error">{{.Error}}</p>{{end}}
</body>
</html>
`))

type pageData struct {
	Topic       string
	Assistant   string
	Status      string
	Started     string
	Coverage    string
	Error       string
	Translation template.HTML
	Fragments   Fragments
}

// Page writes a standalone HTML document for report. The translation is
// model produced HTML and is sanitised before use.
func Page(w io.Writer, report core.Report, palette []string) error {
	return pageTemplate.Execute(w, pageData{
		Topic:       report.Topic,
		Assistant:   report.Assistant,
		Status:      report.Status,
		Started:     report.StartedAt.UTC().Format(time.RFC1123),
		Coverage:    fmt.Sprintf("%.0f%%", report.Coverage*100),
		Error:       report.Error,
		Translation: template.HTML(helpers.SanitizeTranslation(report.Translation)),
		Fragments:   Build(report.Attribution, palette),
	})
}
