package utils

import (
	"fmt"
	"strings"
)

// Str renders a loosely typed JSON value as a string.
func Str(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%v", v)
}

// SiteQuery restricts q to the given domains using the site: operator most
// search engines understand.
func SiteQuery(q string, sites []string) string {
	var clauses []string
	for _, s := range sites {
		if s = strings.TrimSpace(s); s != "" {
			clauses = append(clauses, "site:"+s)
		}
	}
	if len(clauses) == 0 {
		return q
	}
	return q + " (" + strings.Join(clauses, " OR ") + ")"
}
