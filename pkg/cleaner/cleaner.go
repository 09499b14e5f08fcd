// Package cleaner removes tracking parameters from URLs and unwraps redirect
// links, using the providers of a rules.Store.
//
//	store, err := rules.LoadEmbedded()
//	if err != nil { ... }
//	c := cleaner.New(store)
//	out, err := c.Clean("https://example.com/test?utm_source=abc")
//	// out == "https://example.com/test"
//
// A Cleaner is immutable and safe for concurrent use. Every call is a pure
// computation over the store and its input; nothing is fetched over the network.
package cleaner

import (
	"regexp"
	"strings"

	"clearurls/pkg/rules"
)

// Cleaner applies a rule store to URLs.
type Cleaner struct {
	store                  *rules.Store
	stripReferralMarketing bool
}

// Option configures a Cleaner in New.
type Option func(*Cleaner)

// WithStripReferralMarketing enables the providers' referral-marketing rules.
// Referral codes can be considered tracking but are sometimes wanted, so the
// default is to keep them.
func WithStripReferralMarketing(v bool) Option {
	return func(c *Cleaner) { c.stripReferralMarketing = v }
}

// New returns a Cleaner over store. A nil store cleans nothing.
func New(store *rules.Store, opts ...Option) *Cleaner {
	if store == nil {
		store = rules.NewStore()
	}
	c := &Cleaner{store: store}
	for _, o := range opts {
		o(c)
	}
	return c
}

// StripReferralMarketing returns a copy of c with referral-marketing stripping
// set to v. c itself is not modified.
func (c *Cleaner) StripReferralMarketing(v bool) *Cleaner {
	cp := *c
	cp.stripReferralMarketing = v
	return &cp
}

// StripsReferralMarketing reports whether referral-marketing rules are active.
func (c *Cleaner) StripsReferralMarketing() bool { return c.stripReferralMarketing }

// Store returns the rule store c applies.
func (c *Cleaner) Store() *rules.Store { return c.store }

// Result is the outcome of cleaning one URL. When Changed is false, URL is the
// caller's input string, not a copy.
type Result struct {
	URL     string
	Changed bool
}

// Clean returns url without tracking parameters, or the destination of a
// redirect link. data: URLs are returned untouched. Any failure aborts the call;
// there is no partially cleaned result.
func (c *Cleaner) Clean(url string) (string, error) {
	res, err := c.CleanURL(url)
	if err != nil {
		return "", err
	}
	return res.URL, nil
}

// CleanURL is Clean, also reporting whether the URL changed.
//
// Providers are consulted once each, in store order, against the URL as
// rewritten so far. An earlier provider is never revisited after a later one
// rewrites the URL.
func (c *Cleaner) CleanURL(url string) (Result, error) {
	if strings.HasPrefix(url, "data:") {
		return Result{URL: url}, nil
	}
	current := url
	for _, p := range c.store.Providers() {
		if !Matches(p, current) {
			continue
		}
		next, changed, err := c.apply(p, current)
		if err != nil {
			return Result{}, err
		}
		if changed {
			current = next
		}
	}
	if current == url {
		return Result{URL: url}, nil
	}
	return Result{URL: current, Changed: true}, nil
}

// apply runs one matching provider over url. changed is false when the
// provider left the text as it was, and url is returned as is.
func (c *Cleaner) apply(p *rules.Provider, url string) (string, bool, error) {
	target, redirected, err := resolveRedirection(p, url)
	if err != nil {
		return "", false, err
	}
	if redirected {
		return target, target != url, nil
	}

	raw, _ := rewriteRaw(p.RawRules(), url)
	u, err := parseAbsolute(raw)
	if err != nil {
		return "", false, err
	}
	active := [][]*regexp.Regexp{p.Rules()}
	if c.stripReferralMarketing {
		active = append(active, p.ReferralMarketing())
	}
	query := filterParams(parseParams(u.query), active...)
	fragment := filterParams(parseParams(u.fragment), active...)

	out := u.render(serializeParams(query, u.escapeQuery), serializeParams(fragment, escapeFragment))
	if out == url {
		return url, false, nil
	}
	return out, true, nil
}
