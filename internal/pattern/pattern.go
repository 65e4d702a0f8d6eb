// Package pattern detects recognizable error signatures in free text.
//
// Detectors are stateless and order-independent. A Matcher aggregates any number of them:
// it matches when at least one detector matches and reports the highest confidence among
// the detectors that matched.
package pattern

import "regexp"

// Pattern is a single error-signature detector.
type Pattern interface {
	// Name identifies the detector in logs.
	Name() string
	// Matches reports whether text carries the signature.
	Matches(text string) bool
	// Confidence is the fixed score reported when the detector matches.
	Confidence() float64
}

// Regex is a Pattern backed by a compiled regular expression.
type Regex struct {
	name       string
	re         *regexp.Regexp
	confidence float64
}

// NewRegex compiles expr into a detector. Case sensitivity is controlled by expr itself
// (prefix with (?i) for case-insensitive matching).
func NewRegex(name, expr string, confidence float64) (*Regex, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, err
	}
	return &Regex{name: name, re: re, confidence: confidence}, nil
}

// MustRegex is like NewRegex but panics on an invalid expression.
func MustRegex(name, expr string, confidence float64) *Regex {
	p, err := NewRegex(name, expr, confidence)
	if err != nil {
		panic(err)
	}
	return p
}

func (p *Regex) Name() string             { return p.name }
func (p *Regex) Matches(text string) bool { return p.re.MatchString(text) }
func (p *Regex) Confidence() float64      { return p.confidence }

// Result summarizes a Matcher run over one text.
type Result struct {
	HasMatch      bool
	MaxConfidence float64
	Matched       []string
}

// Matcher aggregates detectors. It is safe for concurrent use once built.
type Matcher struct {
	patterns []Pattern
}

// NewMatcher returns a Matcher over the given detectors.
func NewMatcher(patterns ...Pattern) *Matcher {
	ps := make([]Pattern, len(patterns))
	copy(ps, patterns)
	return &Matcher{patterns: ps}
}

// With returns a new Matcher with extra detectors appended.
func (m *Matcher) With(patterns ...Pattern) *Matcher {
	return NewMatcher(append(append([]Pattern{}, m.patterns...), patterns...)...)
}

// Match runs every detector over text.
func (m *Matcher) Match(text string) Result {
	var res Result
	for _, p := range m.patterns {
		if !p.Matches(text) {
			continue
		}
		res.HasMatch = true
		res.Matched = append(res.Matched, p.Name())
		if c := p.Confidence(); c > res.MaxConfidence {
			res.MaxConfidence = c
		}
	}
	return res
}

// HasMatch reports whether any detector matches text.
func (m *Matcher) HasMatch(text string) bool {
	for _, p := range m.patterns {
		if p.Matches(text) {
			return true
		}
	}
	return false
}

// MaxConfidence returns the highest confidence among matching detectors, or 0.
func (m *Matcher) MaxConfidence(text string) float64 {
	return m.Match(text).MaxConfidence
}

// Len returns the number of detectors.
func (m *Matcher) Len() int { return len(m.patterns) }
