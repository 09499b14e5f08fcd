package cleaner

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/net/idna"
)

// hostProfile maps hosts the way browsers do: lowercase, punycode for
// non-ASCII labels, underscores and leading/trailing hyphens tolerated.
var hostProfile = idna.New(
	idna.MapForLookup(),
	idna.Transitional(false),
	idna.StrictDomainName(false),
	idna.CheckHyphens(false),
	idna.BidiRule(),
)

var specialSchemes = map[string]string{
	"http":  "80",
	"https": "443",
	"ws":    "80",
	"wss":   "443",
	"ftp":   "21",
	"file":  "",
}

// absURL is an absolute URL split into its serialized parts. The path is kept
// as written apart from dot-segment removal and escaping, so a stray '%'
// survives as it does in a browser.
type absURL struct {
	prefix   string // scheme ":" plus "//" authority when present
	special  bool
	path     string
	query    string
	fragment string
}

// parseAbsolute parses s and brings the authority and path into canonical form.
// Surrounding spaces and control characters are trimmed and tabs and newlines
// dropped first. Relative references are rejected.
func parseAbsolute(s string) (*absURL, error) {
	in := s
	s = strings.TrimFunc(s, func(r rune) bool { return r <= ' ' })
	if strings.ContainsAny(s, "\t\n\r") {
		s = strings.NewReplacer("\t", "", "\n", "", "\r", "").Replace(s)
	}

	rest, fragment, _ := strings.Cut(s, "#")
	rest, query, _ := strings.Cut(rest, "?")

	scheme, after, ok := splitScheme(rest)
	if !ok {
		return nil, &URLSyntaxError{URL: in, Err: errRelativeURL}
	}
	_, special := specialSchemes[scheme]
	u := &absURL{special: special, query: query, fragment: fragment}

	if !strings.HasPrefix(after, "//") {
		u.prefix = scheme + ":"
		u.path = after
		if strings.HasPrefix(after, "/") {
			u.path = escapePath(removeDotSegments(after))
		}
		return u, nil
	}

	authority, path := after[2:], ""
	if i := strings.IndexByte(authority, '/'); i >= 0 {
		authority, path = authority[:i], authority[i:]
	}
	host, err := canonicalAuthority(scheme, authority)
	if err != nil {
		return nil, &URLSyntaxError{URL: in, Err: err}
	}
	u.prefix = scheme + "://" + host
	if special && path == "" {
		path = "/"
	}
	u.path = escapePath(removeDotSegments(path))
	return u, nil
}

// splitScheme returns the lowercased scheme of s and what follows the colon.
func splitScheme(s string) (scheme, rest string, ok bool) {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z':
		case '0' <= c && c <= '9', c == '+', c == '-', c == '.':
			if i == 0 {
				return "", "", false
			}
		case c == ':':
			if i == 0 {
				return "", "", false
			}
			return strings.ToLower(s[:i]), s[i+1:], true
		default:
			return "", "", false
		}
	}
	return "", "", false
}

// canonicalAuthority validates userinfo@host:port and returns it with the host
// IDNA-mapped and a default port removed. Userinfo is kept as written.
func canonicalAuthority(scheme, authority string) (string, error) {
	u, err := url.Parse(scheme + "://" + authority)
	if err != nil {
		var ue *url.Error
		if errors.As(err, &ue) {
			err = ue.Err
		}
		return "", err
	}
	var userinfo string
	if i := strings.LastIndexByte(authority, '@'); i >= 0 {
		userinfo = authority[:i+1]
	}
	if u.Host == "" || strings.HasPrefix(u.Host, "[") {
		return userinfo + u.Host, nil
	}
	host, port := u.Hostname(), u.Port()
	ascii, err := hostProfile.ToASCII(host)
	if err != nil {
		return "", fmt.Errorf("invalid international domain name: %w", err)
	}
	if def, ok := specialSchemes[scheme]; ok && port == def {
		port = ""
	}
	if port != "" {
		ascii += ":" + port
	}
	return userinfo + ascii, nil
}

// removeDotSegments resolves "." and ".." segments of an absolute path.
// A trailing "." or ".." leaves a trailing slash.
func removeDotSegments(p string) string {
	if !strings.HasPrefix(p, "/") || !strings.Contains(p, ".") {
		return p
	}
	segs := strings.Split(p[1:], "/")
	out := make([]string, 0, len(segs))
	for i, seg := range segs {
		last := i == len(segs)-1
		switch seg {
		case "..":
			if len(out) > 0 {
				out = out[:len(out)-1]
			}
			if last {
				out = append(out, "")
			}
		case ".":
			if last {
				out = append(out, "")
			}
		default:
			out = append(out, seg)
		}
	}
	return "/" + strings.Join(out, "/")
}

// render serializes u with the given query and fragment, omitting either when empty.
func (u *absURL) render(query, fragment string) string {
	var sb strings.Builder
	sb.Grow(len(u.prefix) + len(u.path) + len(query) + len(fragment) + 2)
	sb.WriteString(u.prefix)
	sb.WriteString(u.path)
	if query != "" {
		sb.WriteByte('?')
		sb.WriteString(query)
	}
	if fragment != "" {
		sb.WriteByte('#')
		sb.WriteString(fragment)
	}
	return sb.String()
}

// escapeQuery escapes a bare query key for u's scheme.
func (u *absURL) escapeQuery(s string) string { return escapeQuery(s, u.special) }
