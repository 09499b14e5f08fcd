package cleaner

import "strings"

const upperhex = "0123456789ABCDEF"

// percentDecode decodes every %XX escape with two valid hex digits and leaves
// anything else, including malformed escapes, as literal text. changed is false
// when s held no decodable escape, in which case s itself is returned.
func percentDecode(s string) (string, bool) {
	i := strings.IndexByte(s, '%')
	if i < 0 {
		return s, false
	}
	var b []byte
	for ; i < len(s); i++ {
		c := s[i]
		if c == '%' && i+2 < len(s) && ishex(s[i+1]) && ishex(s[i+2]) {
			if b == nil {
				b = make([]byte, 0, len(s))
				b = append(b, s[:i]...)
			}
			b = append(b, unhex(s[i+1])<<4|unhex(s[i+2]))
			i += 2
			continue
		}
		if b != nil {
			b = append(b, c)
		}
	}
	if b == nil {
		return s, false
	}
	return string(b), true
}

func ishex(c byte) bool {
	switch {
	case '0' <= c && c <= '9':
		return true
	case 'a' <= c && c <= 'f':
		return true
	case 'A' <= c && c <= 'F':
		return true
	}
	return false
}

func unhex(c byte) byte {
	switch {
	case '0' <= c && c <= '9':
		return c - '0'
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10
	case 'A' <= c && c <= 'F':
		return c - 'A' + 10
	}
	return 0
}

// formDecode decodes one application/x-www-form-urlencoded name or value.
// Invalid UTF-8 is replaced rather than rejected.
func formDecode(s string) string {
	if strings.IndexByte(s, '+') >= 0 {
		s = strings.ReplaceAll(s, "+", " ")
	}
	s, _ = percentDecode(s)
	return strings.ToValidUTF8(s, "\uFFFD")
}

// formEncode is the form-urlencoded byte serializer: ASCII alphanumerics and
// *-._ pass through, space becomes +, everything else is %XX.
func formEncode(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9',
			c == '*', c == '-', c == '.', c == '_':
			sb.WriteByte(c)
		case c == ' ':
			sb.WriteByte('+')
		default:
			sb.WriteByte('%')
			sb.WriteByte(upperhex[c>>4])
			sb.WriteByte(upperhex[c&15])
		}
	}
	return sb.String()
}

// escapeQuery percent-encodes the bytes a URL query component may not carry as
// is. The single quote is only escaped for special schemes (http, https, ...).
func escapeQuery(s string, special bool) string {
	return escapeComponent(s, func(c byte) bool {
		return c == '"' || c == '#' || c == '<' || c == '>' || (special && c == '\'')
	})
}

// escapePath percent-encodes the bytes a URL path may not carry as is. '%' is
// left alone, so malformed escapes pass through.
func escapePath(s string) string {
	return escapeComponent(s, func(c byte) bool {
		return c == '"' || c == '<' || c == '>' || c == '`' || c == '{' || c == '}'
	})
}

// escapeFragment percent-encodes the bytes a URL fragment may not carry as is.
func escapeFragment(s string) string {
	return escapeComponent(s, func(c byte) bool {
		return c == '"' || c == '<' || c == '>' || c == '`'
	})
}

func escapeComponent(s string, extra func(byte) bool) string {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c <= ' ' || c >= 0x7f || extra(c) {
			if sb.Len() == 0 && i > 0 {
				sb.WriteString(s[:i])
			}
			sb.WriteByte('%')
			sb.WriteByte(upperhex[c>>4])
			sb.WriteByte(upperhex[c&15])
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte(c)
		}
	}
	if sb.Len() == 0 {
		return s
	}
	return sb.String()
}
