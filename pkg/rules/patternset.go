package rules

import (
	"regexp"
	"strings"
)

// PatternSet answers "does any of these patterns match" with a single regexp
// evaluation. Patterns are joined into one alternation; if the joined form does
// not compile (duplicate group names, for instance) the set falls back to
// evaluating each pattern in turn.
type PatternSet struct {
	combined *regexp.Regexp
	each     []*regexp.Regexp
	n        int
}

// NewPatternSet compiles exprs case-insensitively. Each expression is validated on
// its own so errors point at the offending pattern.
func NewPatternSet(exprs []string) (PatternSet, error) {
	each, err := compileAll(exprs)
	if err != nil {
		return PatternSet{}, err
	}
	if len(each) == 0 {
		return PatternSet{}, nil
	}
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = "(?:" + e + ")"
	}
	if combined, err := compile(strings.Join(parts, "|")); err == nil {
		return PatternSet{combined: combined, n: len(exprs)}, nil
	}
	return PatternSet{each: each, n: len(exprs)}, nil
}

// MatchString reports whether any pattern in the set matches str.
func (s PatternSet) MatchString(str string) bool {
	if s.combined != nil {
		return s.combined.MatchString(str)
	}
	for _, re := range s.each {
		if re.MatchString(str) {
			return true
		}
	}
	return false
}

// Len returns the number of patterns in the set.
func (s PatternSet) Len() int { return s.n }
