// Package validate decides whether a raw error description is specific enough to resolve.
package validate

import (
	"github.com/tinkerloft/errdoctor/internal/model"
	"github.com/tinkerloft/errdoctor/internal/pattern"
)

// Verdict is a ValidationResult together with the rule that decided it.
// Rule is empty when every rule accepted.
type Verdict struct {
	model.ValidationResult
	Rule string `json:"rule,omitempty"`
}

// Validator runs an ordered list of rules. The first rejecting rule wins.
type Validator struct {
	rules []Rule
}

// NewValidator returns a Validator running rules in the given order.
func NewValidator(rules ...Rule) *Validator {
	rs := make([]Rule, len(rules))
	copy(rs, rules)
	return &Validator{rules: rs}
}

// Default returns the standard rule chain over matcher.
func Default(matcher *pattern.Matcher) *Validator {
	return NewValidator(
		EmptyTextRule{},
		MinimumLengthRule{Min: DefaultMinimumLength},
		VaguePhraseRule{Matcher: matcher},
		PatternBasedRule{Matcher: matcher},
	)
}

// Validate returns the validation result for text.
func (v *Validator) Validate(text string) model.ValidationResult {
	return v.Evaluate(text).ValidationResult
}

// Evaluate is Validate plus the name of the rejecting rule.
func (v *Validator) Evaluate(text string) Verdict {
	out := model.Valid(1)
	for i, r := range v.rules {
		res := r.Validate(text)
		if !res.IsValid {
			return Verdict{ValidationResult: res, Rule: r.Name()}
		}
		if i == len(v.rules)-1 {
			if s, ok := r.(ScoringRule); ok && s.ScoresResult() {
				out = res
			}
		}
	}
	return Verdict{ValidationResult: out}
}

// Rules returns the rule names in execution order.
func (v *Validator) Rules() []string {
	names := make([]string, len(v.rules))
	for i, r := range v.rules {
		names[i] = r.Name()
	}
	return names
}
