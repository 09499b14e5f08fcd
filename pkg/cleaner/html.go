package cleaner

import (
	"fmt"
	"io"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/multierr"
)

// linkTargets are the elements and attributes that hold link or image targets.
var linkTargets = []struct {
	selector string
	attr     string
}{
	{"a[href]", "href"},
	{"area[href]", "href"},
	{"link[href]", "href"},
	{"img[src]", "src"},
}

// CleanHTML parses an HTML document from r, cleans every link and image target
// in place and writes the document to w. Each attribute is cleaned on its own;
// failures are collected and, if there were any, returned together without
// writing anything to w.
//
// Targets are cleaned as absolute URLs. A relative target such as "/about" or
// "#top" is a URL syntax error when a provider matches it, and with a
// catch-all provider like globalRules that fails the whole document. Resolve
// relative links against the page URL before calling CleanHTML if that matters.
func (c *Cleaner) CleanHTML(r io.Reader, w io.Writer) error {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return fmt.Errorf("parse html: %w", err)
	}
	var errs error
	for _, t := range linkTargets {
		doc.Find(t.selector).Each(func(_ int, s *goquery.Selection) {
			v, _ := s.Attr(t.attr)
			res, err := c.CleanURL(v)
			if err != nil {
				errs = multierr.Append(errs, err)
				return
			}
			if res.Changed {
				s.SetAttr(t.attr, res.URL)
			}
		})
	}
	if errs != nil {
		return errs
	}
	out, err := doc.Html()
	if err != nil {
		return fmt.Errorf("render html: %w", err)
	}
	_, err = io.WriteString(w, out)
	return err
}
