package urlindex

import (
	"strings"

	urlutil "github.com/projectdiscovery/utils/url"
)

// Normalize reduces a raw SERP URL to the canonical form used for overlap
// comparison: scheme, leading "www.", query string, fragment and trailing
// slash are stripped and the result is lowercased. Pure and idempotent.
func Normalize(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return ""
	}
	s = strings.TrimPrefix(s, "https://")
	s = strings.TrimPrefix(s, "http://")
	s = strings.TrimPrefix(s, "www.")
	if idx := strings.IndexAny(s, "?#"); idx >= 0 {
		s = s[:idx]
	}
	return strings.TrimSuffix(s, "/")
}

// usable reports whether a raw URL parses to something with a hostname.
// Anything else is counted as malformed and dropped from the id set.
func usable(raw string) bool {
	u, err := urlutil.Parse(raw)
	if err != nil {
		return false
	}
	return u.Hostname() != ""
}
