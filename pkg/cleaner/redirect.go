package cleaner

import (
	"strings"
	"unicode/utf8"

	"clearurls/pkg/rules"
)

// resolveRedirection looks for an embedded destination in url using p's
// redirection patterns in declared order. ok is false when no pattern matches.
func resolveRedirection(p *rules.Provider, url string) (target string, ok bool, err error) {
	for _, re := range p.Redirections() {
		loc := re.FindStringSubmatchIndex(url)
		if loc == nil {
			continue
		}
		// group 1 absent, not participating, or empty are one and the same failure
		if len(loc) < 4 || loc[2] < 0 || loc[2] == loc[3] {
			return "", false, &RedirectionMissingCaptureError{Pattern: re}
		}
		target, err := decodeRedirect(url[loc[2]:loc[3]])
		if err != nil {
			return "", false, err
		}
		return target, true, nil
	}
	return "", false, nil
}

// decodeRedirect percent-decodes s until decoding no longer changes it, so
// double and triple encoded targets come out readable. A target without an
// http(s) prefix is assumed to be http.
func decodeRedirect(s string) (string, error) {
	for {
		decoded, changed := percentDecode(s)
		if !changed {
			break
		}
		if i, incomplete := invalidUTF8(decoded); i >= 0 {
			return "", &InvalidPercentEncodingError{Index: i, Incomplete: incomplete}
		}
		s = decoded
	}
	if strings.HasPrefix(s, "http") {
		return s, nil
	}
	return "http://" + s, nil
}

// invalidUTF8 returns the byte offset of the first invalid sequence in s, or -1.
// incomplete is true when that sequence is a truncated multi-byte rune at the end.
func invalidUTF8(s string) (idx int, incomplete bool) {
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			return i, !utf8.FullRuneInString(s[i:])
		}
		i += size
	}
	return -1, false
}
