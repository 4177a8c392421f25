package readable

import (
	"crypto/sha1"
	"encoding/hex"
	"net/url"
	"strings"

	"github.com/go-shiori/go-readability"
	"github.com/mohammad-safakhou/newsdesk/internal/helpers"
	"github.com/mohammad-safakhou/newsdesk/tools/web_fetch/models"
)

// Extract pulls the main article out of a rendered page. Text is cut to
// maxChars runes when maxChars > 0.
func Extract(html, pageURL string, maxChars int) (models.Result, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		u = &url.URL{}
	}
	article, err := readability.FromReader(strings.NewReader(html), u)
	if err != nil {
		return models.Result{}, err
	}
	text := collapse(article.TextContent)
	if maxChars > 0 {
		text = helpers.Truncate(text, maxChars)
	}

	sum := sha1.Sum([]byte(html))
	return models.Result{
		URL:      pageURL,
		Title:    strings.TrimSpace(article.Title),
		Byline:   strings.TrimSpace(article.Byline),
		SiteName: strings.TrimSpace(article.SiteName),
		Excerpt:  strings.TrimSpace(article.Excerpt),
		Text:     text,
		HTMLHash: hex.EncodeToString(sum[:]),
		Status:   200,
	}, nil
}

// collapse trims each line and drops blank runs readability leaves behind.
func collapse(s string) string {
	lines := strings.Split(s, "\n")
	out := lines[:0]
	blank := false
	for _, l := range lines {
		l = strings.TrimSpace(l)
		if l == "" {
			if !blank && len(out) > 0 {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		out = append(out, l)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
