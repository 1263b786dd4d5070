// Package urlnorm canonicalizes article URLs so that the same article reached
// through different links maps to one record.
package urlnorm

import (
	"net/url"
	"strings"
)

// Normalize returns the dedup key for rawURL: scheme, host and path only,
// lowercased, with trailing slashes removed, so "https://x.com/" and
// "https://x.com" are the same key. Query string and fragment are dropped.
// Input that does not parse as an absolute URL gets the same treatment on
// the raw string. Normalize is idempotent.
func Normalize(rawURL string) string {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return ""
	}

	u, err := url.Parse(trimmed)
	if err != nil || u.Scheme == "" || u.Host == "" || u.Opaque != "" {
		return strings.ToLower(normalizeRaw(trimmed))
	}

	var b strings.Builder
	b.WriteString(u.Scheme)
	b.WriteString("://")
	b.WriteString(u.Host)
	b.WriteString(normalizePath(u.EscapedPath()))

	return strings.ToLower(b.String())
}

func normalizePath(p string) string {
	return strings.TrimRight(p, "/")
}

// normalizeRaw applies the same rules to input that is not an absolute URL.
func normalizeRaw(s string) string {
	if i := strings.IndexAny(s, "?#"); i >= 0 {
		s = s[:i]
	}
	if trimmed := strings.TrimRight(s, "/"); trimmed != "" {
		return trimmed
	}
	return s
}

// Host returns the lowercased hostname of rawURL without port and without a
// leading "www.". It returns an empty string when rawURL has no host.
func Host(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}

// IsAbsoluteHTTP reports whether rawURL is an absolute http or https URL.
func IsAbsoluteHTTP(rawURL string) bool {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Host == "" {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return scheme == "http" || scheme == "https"
}
