package cleaner

import (
	"regexp"
	"strings"
)

type param struct {
	key   string
	value string
}

// parseParams splits a form-urlencoded string into ordered pairs. Empty pieces
// between separators are skipped; duplicates are kept.
func parseParams(s string) []param {
	if s == "" {
		return nil
	}
	var out []param
	for _, piece := range strings.Split(s, "&") {
		if piece == "" {
			continue
		}
		k, v, _ := strings.Cut(piece, "=")
		out = append(out, param{key: formDecode(k), value: formDecode(v)})
	}
	return out
}

// filterParams drops every pair whose key is fully matched by one of the rule
// groups. The relative order of survivors is unchanged.
func filterParams(ps []param, groups ...[]*regexp.Regexp) []param {
	for _, g := range groups {
		for _, re := range g {
			kept := ps[:0]
			for _, p := range ps {
				if !fullMatch(re, p.key) {
					kept = append(kept, p)
				}
			}
			ps = kept
		}
	}
	return ps
}

// fullMatch reports whether the leftmost match of re spans all of s.
func fullMatch(re *regexp.Regexp, s string) bool {
	loc := re.FindStringIndex(s)
	return loc != nil && loc[1]-loc[0] == len(s)
}

// serializeParams renders the surviving pairs of one URL component. An empty
// result means the component is omitted. A lone pair with an empty value is
// written as its bare key (escaped for the component) so anchors such as
// #Key-bindings survive untouched.
func serializeParams(ps []param, escape func(string) string) string {
	switch {
	case len(ps) == 0:
		return ""
	case len(ps) == 1 && ps[0].value == "":
		return escape(ps[0].key)
	}
	var sb strings.Builder
	for i, p := range ps {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(formEncode(p.key))
		sb.WriteByte('=')
		sb.WriteString(formEncode(p.value))
	}
	return sb.String()
}
