package helpers

import (
	"html"
	"regexp"
	"strings"
)

var outputTagReplacer = strings.NewReplacer(
	"<output>", "",
	"</output>", "",
	"<Title>", "",
	"</Title>", "",
	"<Body>", "",
	"</Body>", "",
)

var (
	blockBreakRe = regexp.MustCompile(`(?i)<br\s*/?>|</(p|div|h[1-6]|li|ul|ol|section|article|header|footer|blockquote|tr)>`)
	blankRunRe   = regexp.MustCompile(`\n[ \t]*\n(?:[ \t]*\n)+`)
)

// CleanOutput strips the wrapper tags the models like to put around a final
// answer and trims the result.
func CleanOutput(s string) string {
	return strings.TrimSpace(outputTagReplacer.Replace(s))
}

// HTMLToText turns an HTML fragment into plain text. Block level closing tags
// become line breaks; everything else is dropped and entities are decoded.
func HTMLToText(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.TrimSpace(s)
	}
	s = blockBreakRe.ReplaceAllString(s, "\n")
	s = plainTextPolicy.Sanitize(s)
	s = html.UnescapeString(s)
	s = blankRunRe.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// Truncate cuts s to at most n runes, appending an ellipsis when it had to.
func Truncate(s string, n int) string {
	if n <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "…"
}
