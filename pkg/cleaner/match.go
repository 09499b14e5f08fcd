package cleaner

import "clearurls/pkg/rules"

const javascriptVoid = "javascript:void(0)"

// Matches reports whether p governs url: its pattern matches, url is not the
// literal javascript:void(0), and none of its exceptions match.
func Matches(p *rules.Provider, url string) bool {
	if !p.Pattern().MatchString(url) {
		return false
	}
	if url == javascriptVoid {
		return false
	}
	return !p.Exceptions().MatchString(url)
}
