package helpers

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Policies are safe for concurrent use once built.
var (
	plainTextPolicy   = bluemonday.StrictPolicy()
	translationPolicy = newTranslationPolicy()
)

// newTranslationPolicy allows the block and inline markup models emit when
// asked for translated HTML. Links keep http(s) targets only.
func newTranslationPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("p", "br", "h1", "h2", "h3", "h4", "ul", "ol", "li", "blockquote", "em", "strong", "b", "i")
	p.AllowAttrs("href").OnElements("a")
	p.AllowURLSchemes("http", "https")
	p.RequireParseableURLs(true)
	p.RequireNoFollowOnLinks(true)
	p.AddTargetBlankToFullyQualifiedLinks(true)
	return p
}

// PlainText removes every element from s, dropping script and style bodies.
func PlainText(s string) string {
	return strings.TrimSpace(plainTextPolicy.Sanitize(s))
}

// SanitizeTranslation cleans model written HTML before it is embedded in a
// report page.
func SanitizeTranslation(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	return strings.TrimSpace(translationPolicy.Sanitize(s))
}
