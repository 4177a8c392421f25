package config

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// SourcePolicyConfig restricts which domains may back a research run.
// Allow is passed to the search provider as site restrictions; Deny drops
// matching results before they reach the model.
type SourcePolicyConfig struct {
	Allow []string `mapstructure:"allow" json:"allow"`
	Deny  []string `mapstructure:"deny" json:"deny"`
}

// Normalize cleans entries and removes duplicates.
func (c SourcePolicyConfig) Normalize() SourcePolicyConfig {
	norm := c
	norm.Allow = sanitizeDomainList(norm.Allow)
	norm.Deny = sanitizeDomainList(norm.Deny)
	return norm
}

// Validate ensures a domain is not both allowed and denied.
func (c SourcePolicyConfig) Validate() error {
	norm := c.Normalize()
	allow := make(map[string]struct{}, len(norm.Allow))
	for _, host := range norm.Allow {
		allow[host] = struct{}{}
	}
	for _, host := range norm.Deny {
		if _, ok := allow[host]; ok {
			return fmt.Errorf("source policy conflict: host %q present in both allow and deny lists", host)
		}
	}
	return nil
}

// Permits reports whether link may be used as a source. Subdomains of a
// listed host match it.
func (c SourcePolicyConfig) Permits(link string) bool {
	host := normalizeHost(link)
	if u, err := url.Parse(strings.TrimSpace(link)); err == nil && u.Host != "" {
		host = strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	}
	if host == "" {
		return false
	}
	for _, denied := range c.Deny {
		if hostMatches(host, denied) {
			return false
		}
	}
	if len(c.Allow) == 0 {
		return true
	}
	for _, allowed := range c.Allow {
		if hostMatches(host, allowed) {
			return true
		}
	}
	return false
}

func hostMatches(host, rule string) bool {
	return host == rule || strings.HasSuffix(host, "."+rule)
}

func sanitizeDomainList(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	for _, raw := range values {
		host := normalizeHost(raw)
		if host == "" {
			continue
		}
		seen[host] = struct{}{}
	}
	if len(seen) == 0 {
		return nil
	}
	out := make([]string, 0, len(seen))
	for host := range seen {
		out = append(out, host)
	}
	sort.Strings(out)
	return out
}

func normalizeHost(value string) string {
	value = strings.TrimSpace(strings.ToLower(value))
	if value == "" {
		return ""
	}
	if strings.HasPrefix(value, "http://") || strings.HasPrefix(value, "https://") {
		if u, err := url.Parse(value); err == nil && u.Host != "" {
			return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
		}
	}
	value = strings.TrimPrefix(value, "www.")
	return value
}
