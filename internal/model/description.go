// Package model defines the value types shared by the validator, the resolvers and the stores.
package model

import "strings"

// ErrorDescription is a free-text error report as received and its normalized form.
type ErrorDescription struct {
	Raw        string `json:"raw"`
	Normalized string `json:"normalized"`
}

// NewErrorDescription builds an ErrorDescription from raw text.
func NewErrorDescription(raw string) ErrorDescription {
	return ErrorDescription{Raw: raw, Normalized: Normalize(raw)}
}

// Normalize case-folds text, trims it, and collapses internal whitespace runs to one space.
// Normalize(Normalize(s)) == Normalize(s).
func Normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// ValidationResult is the outcome of validating an ErrorDescription.
// Reason is set only when IsValid is false. Score is advisory.
type ValidationResult struct {
	IsValid bool    `json:"is_valid"`
	Reason  string  `json:"reason,omitempty"`
	Score   float64 `json:"score"`
}

// Valid returns an accepting result with the given score.
func Valid(score float64) ValidationResult {
	return ValidationResult{IsValid: true, Score: clamp01(score)}
}

// Invalid returns a rejecting result.
func Invalid(reason string, score float64) ValidationResult {
	return ValidationResult{IsValid: false, Reason: reason, Score: clamp01(score)}
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
