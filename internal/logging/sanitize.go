package logging

import (
	"net/url"
	"strings"
)

// SanitizeURL strips userinfo, query and fragment so tracking tokens and
// credentials in the URLs being cleaned never reach the logs.
func SanitizeURL(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" || strings.HasPrefix(s, "data:") {
		return truncate(s)
	}
	u, err := url.Parse(s)
	if err != nil {
		return truncate(s)
	}
	if u.Scheme == "" {
		// Relative or not a URL at all: keep the text as given, minus any
		// query or fragment.
		s, _, _ = strings.Cut(s, "?")
		s, _, _ = strings.Cut(s, "#")
		return truncate(s)
	}
	u.User = nil
	u.RawQuery = ""
	u.ForceQuery = false
	u.Fragment = ""
	u.RawFragment = ""
	return u.String()
}

const maxRawLen = 64

func truncate(s string) string {
	if len(s) <= maxRawLen {
		return s
	}
	return s[:maxRawLen] + "..."
}
