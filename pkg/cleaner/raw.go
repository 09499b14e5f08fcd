package cleaner

import "regexp"

// rewriteRaw deletes every match of each pattern, in order, from s. changed is
// false when no pattern matched, and s is returned as is.
func rewriteRaw(patterns []*regexp.Regexp, s string) (string, bool) {
	changed := false
	for _, re := range patterns {
		if !re.MatchString(s) {
			continue
		}
		s = re.ReplaceAllLiteralString(s, "")
		changed = true
	}
	return s, changed
}
