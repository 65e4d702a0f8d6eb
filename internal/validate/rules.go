package validate

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/tinkerloft/errdoctor/internal/model"
	"github.com/tinkerloft/errdoctor/internal/pattern"
)

// Rule names, used as metric labels and in logs.
const (
	RuleEmptyText     = "empty_text"
	RuleMinimumLength = "minimum_length"
	RuleVaguePhrase   = "vague_phrase"
	RulePatternBased  = "pattern_based"
)

// Rule is a single validation step. Rules are stateless.
type Rule interface {
	Name() string
	Validate(text string) model.ValidationResult
}

// ScoringRule is a Rule whose accepting score replaces the validator's default of 1.0
// when it is the last rule in the chain.
type ScoringRule interface {
	Rule
	ScoresResult() bool
}

// EmptyTextRule rejects empty or whitespace-only text.
type EmptyTextRule struct{}

func (EmptyTextRule) Name() string { return RuleEmptyText }

func (EmptyTextRule) Validate(text string) model.ValidationResult {
	if strings.TrimSpace(text) == "" {
		return model.Invalid("error description is empty", 0)
	}
	return model.Valid(1)
}

// DefaultMinimumLength is the absolute floor, in characters, below which nothing is accepted.
const DefaultMinimumLength = 5

// MinimumLengthRule rejects text shorter than Min characters after trimming.
type MinimumLengthRule struct {
	Min int
}

func (r MinimumLengthRule) Name() string { return RuleMinimumLength }

func (r MinimumLengthRule) Validate(text string) model.ValidationResult {
	floor := r.Min
	if floor <= 0 {
		floor = DefaultMinimumLength
	}
	if utf8.RuneCountInString(strings.TrimSpace(text)) < floor {
		return model.Invalid("error description is too short, please include the error message", 0.1)
	}
	return model.Valid(1)
}

var vaguePhrases = []string{
	// English
	`my code (?:doesn'?t|does not|won'?t|will not) work`,
	`(?:it|this|that) (?:doesn'?t|does not|won'?t|isn'?t|is not) work(?:ing)?`,
	`(?:i have|i've got|i got|there is|there's) (?:a |an )?(?:bug|error|problem|issue)`,
	`something(?:'s| is)? (?:wrong|broken)`,
	`(?:it|my (?:code|program|script|app)) (?:crashed|crashes|broke|is broken)`,
	`(?:nothing|it) (?:works|happens)`,
	`(?:please )?help me`,
	// Spanish
	`mi c[oó]digo no funciona`,
	`no funciona`,
	`tengo un (?:error|bug|problema)`,
	`algo (?:est[aá] )?mal`,
	`ay[uú]dame`,
}

var vagueExact = map[string]bool{
	"error":     true,
	"an error":  true,
	"bug":       true,
	"a bug":     true,
	"help":      true,
	"problem":   true,
	"problema":  true,
	"ayuda":     true,
	"it failed": true,
	"crash":     true,
	"broken":    true,
}

var vagueRe = regexp.MustCompile(`(?i)\b(?:` + strings.Join(vaguePhrases, "|") + `)\b`)

// VaguePhraseRule rejects known-vague phrasings unless a technical pattern is also present.
type VaguePhraseRule struct {
	Matcher *pattern.Matcher
}

func (r VaguePhraseRule) Name() string { return RuleVaguePhrase }

func (r VaguePhraseRule) Validate(text string) model.ValidationResult {
	normalized := strings.Trim(model.Normalize(text), ".!?¡¿ ")
	if !vagueExact[normalized] && !vagueRe.MatchString(normalized) {
		return model.Valid(1)
	}
	if r.Matcher != nil && r.Matcher.HasMatch(text) {
		return model.Valid(1)
	}
	return model.Invalid("error description is too vague, please include the exact error message or error type", 0.1)
}

// PatternBasedRule is the final gate. It accepts text that carries a recognizable error
// signature or is long enough to describe one, and scores it by detector confidence.
type PatternBasedRule struct {
	Matcher *pattern.Matcher
}

func (r PatternBasedRule) Name() string { return RulePatternBased }

func (r PatternBasedRule) ScoresResult() bool { return true }

func (r PatternBasedRule) Validate(text string) model.ValidationResult {
	var res pattern.Result
	if r.Matcher != nil {
		res = r.Matcher.Match(text)
	}
	n := utf8.RuneCountInString(strings.TrimSpace(text))
	switch {
	case n < 10 && !res.HasMatch:
		return model.Invalid("error description lacks technical detail, please include the error type", 0.2)
	case res.HasMatch || n >= 15:
		return model.Valid(res.MaxConfidence)
	default:
		return model.Valid(0.5)
	}
}
