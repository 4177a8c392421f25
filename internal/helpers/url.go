package helpers

import (
	"errors"
	"net"
	"net/url"
	"path"
	"strings"
)

func isTrackingParam(key string) bool {
	key = strings.ToLower(key)
	if strings.HasPrefix(key, "utm_") {
		return true
	}
	switch key {
	case "gclid", "dclid", "fbclid", "msclkid", "igshid":
		return true
	}
	return false
}

// SourceLink is the identity of a search hit or fetched page, so that the
// same article reached through different links merges into one source. Links
// that do not parse are returned trimmed.
func SourceLink(raw string) string {
	raw = strings.TrimSpace(raw)
	if link, err := canonicalLink(raw); err == nil {
		return link
	}
	return raw
}

// canonicalLink lowercases scheme and host, drops default ports, fragments
// and tracking parameters, cleans the path and sorts the query. Schemeless
// input is taken as https.
func canonicalLink(raw string) (string, error) {
	if raw == "" {
		return "", errors.New("empty url")
	}
	switch {
	case strings.HasPrefix(raw, "//"):
		raw = "https:" + raw
	case !strings.Contains(raw, "://"):
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	u.Scheme = strings.ToLower(u.Scheme)
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return "", errors.New("url missing host")
	}
	port := u.Port()
	switch {
	case port != "" && !(u.Scheme == "http" && port == "80") && !(u.Scheme == "https" && port == "443"):
		u.Host = net.JoinHostPort(host, port)
	case strings.Contains(host, ":"):
		u.Host = "[" + host + "]"
	default:
		u.Host = host
	}

	cleaned := path.Clean("/" + u.Path)
	if cleaned != "/" && strings.HasSuffix(u.Path, "/") {
		cleaned += "/"
	}
	u.Path, u.RawPath = cleaned, ""
	u.Fragment, u.RawFragment = "", ""

	q := u.Query()
	for key := range q {
		if isTrackingParam(key) {
			q.Del(key)
		}
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
