package tui

import "strings"

type segment struct {
	text    string
	removed bool
}

// diffSegments splits in before each URL delimiter and marks every piece whose
// text does not survive into out. It is a display aid, not an exact diff: for a
// redirect everything except the embedded target shows as removed.
func diffSegments(in, out string) []segment {
	var segs []segment
	start := 0
	for i := 1; i <= len(in); i++ {
		if i < len(in) && !isDelim(in[i]) {
			continue
		}
		piece := in[start:i]
		body := piece
		if isDelim(body[0]) {
			body = body[1:]
		}
		segs = append(segs, segment{text: piece, removed: body != "" && !strings.Contains(out, body)})
		start = i
	}
	return merge(segs)
}

func isDelim(c byte) bool {
	return c == '?' || c == '&' || c == '#' || c == '/'
}

func merge(segs []segment) []segment {
	var out []segment
	for _, s := range segs {
		if n := len(out); n > 0 && out[n-1].removed == s.removed {
			out[n-1].text += s.text
			continue
		}
		out = append(out, s)
	}
	return out
}
