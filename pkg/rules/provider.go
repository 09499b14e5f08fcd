package rules

import (
	"fmt"
	"regexp"
)

// Spec is the uncompiled form of a provider as it appears in a rule document.
// Every field except URLPattern is optional.
type Spec struct {
	URLPattern        string   `yaml:"urlPattern" json:"urlPattern"`
	Rules             []string `yaml:"rules,omitempty" json:"rules,omitempty"`
	RawRules          []string `yaml:"rawRules,omitempty" json:"rawRules,omitempty"`
	ReferralMarketing []string `yaml:"referralMarketing,omitempty" json:"referralMarketing,omitempty"`
	Exceptions        []string `yaml:"exceptions,omitempty" json:"exceptions,omitempty"`
	Redirections      []string `yaml:"redirections,omitempty" json:"redirections,omitempty"`
}

// Provider holds the compiled patterns governing one site family.
// A Provider is never modified after NewProvider returns; the slices returned by
// its accessors must be treated as read-only.
type Provider struct {
	name              string
	pattern           *regexp.Regexp
	exceptions        PatternSet
	rules             []*regexp.Regexp
	rawRules          []*regexp.Regexp
	referralMarketing []*regexp.Regexp
	redirections      []*regexp.Regexp
}

// NewProvider compiles s into a Provider. All patterns are case-insensitive.
func NewProvider(name string, s Spec) (*Provider, error) {
	p := &Provider{name: name}
	var err error
	if p.pattern, err = compile(s.URLPattern); err != nil {
		return nil, fmt.Errorf("provider %q: urlPattern: %w", name, err)
	}
	if p.rules, err = compileAll(s.Rules); err != nil {
		return nil, fmt.Errorf("provider %q: rules: %w", name, err)
	}
	if p.rawRules, err = compileAll(s.RawRules); err != nil {
		return nil, fmt.Errorf("provider %q: rawRules: %w", name, err)
	}
	if p.referralMarketing, err = compileAll(s.ReferralMarketing); err != nil {
		return nil, fmt.Errorf("provider %q: referralMarketing: %w", name, err)
	}
	if p.exceptions, err = NewPatternSet(s.Exceptions); err != nil {
		return nil, fmt.Errorf("provider %q: exceptions: %w", name, err)
	}
	if p.redirections, err = compileAll(s.Redirections); err != nil {
		return nil, fmt.Errorf("provider %q: redirections: %w", name, err)
	}
	return p, nil
}

// MustProvider is like NewProvider but panics on error. Intended for tests and
// package-level tables.
func MustProvider(name string, s Spec) *Provider {
	p, err := NewProvider(name, s)
	if err != nil {
		panic(err)
	}
	return p
}

// Name is the key the provider was declared under. It is informational only.
func (p *Provider) Name() string { return p.name }

func (p *Provider) Pattern() *regexp.Regexp { return p.pattern }

func (p *Provider) Exceptions() PatternSet { return p.exceptions }

// Rules are the removal rules: a query or fragment key fully matched by one of
// them is dropped.
func (p *Provider) Rules() []*regexp.Regexp { return p.rules }

// RawRules are applied to the whole URL text before it is parsed.
func (p *Provider) RawRules() []*regexp.Regexp { return p.rawRules }

// ReferralMarketing rules behave like Rules but only apply when the caller opts in.
func (p *Provider) ReferralMarketing() []*regexp.Regexp { return p.referralMarketing }

// Redirections expose the embedded destination as capture group 1.
func (p *Provider) Redirections() []*regexp.Regexp { return p.redirections }

func compile(expr string) (*regexp.Regexp, error) {
	return regexp.Compile("(?i)" + expr)
}

func compileAll(exprs []string) ([]*regexp.Regexp, error) {
	if len(exprs) == 0 {
		return nil, nil
	}
	out := make([]*regexp.Regexp, 0, len(exprs))
	for i, e := range exprs {
		re, err := compile(e)
		if err != nil {
			return nil, fmt.Errorf("[%d]: %w", i, err)
		}
		out = append(out, re)
	}
	return out, nil
}
