package cleaner

import (
	"strings"

	"go.uber.org/multierr"
	"mvdan.cc/xurls/v2"
)

// urlSpans finds URLs that carry an explicit scheme.
var urlSpans = xurls.Strict()

// CleanText cleans every URL found in free text and returns the text with each
// URL replaced by its cleaned form. URLs are cleaned independently: a failure
// on one does not stop the others. If any failed, the rewritten text is
// discarded and the combined error is returned; use multierr.Errors to list
// the individual failures.
func (c *Cleaner) CleanText(text string) (string, error) {
	locs := urlSpans.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return text, nil
	}
	var (
		sb    strings.Builder
		errs  error
		last  int
		dirty bool
	)
	sb.Grow(len(text))
	for _, loc := range locs {
		span := text[loc[0]:loc[1]]
		res, err := c.CleanURL(span)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		if !res.Changed {
			continue
		}
		sb.WriteString(text[last:loc[0]])
		sb.WriteString(res.URL)
		last = loc[1]
		dirty = true
	}
	if errs != nil {
		return "", errs
	}
	if !dirty {
		return text, nil
	}
	sb.WriteString(text[last:])
	return sb.String(), nil
}
