package validate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinkerloft/errdoctor/internal/model"
	"github.com/tinkerloft/errdoctor/internal/pattern"
	"github.com/tinkerloft/errdoctor/internal/validate"
)

type spyRule struct {
	name  string
	calls []string
}

func (s *spyRule) Name() string { return s.name }

func (s *spyRule) Validate(text string) model.ValidationResult {
	s.calls = append(s.calls, text)
	return model.Valid(0.9)
}

func TestValidator_Rejections(t *testing.T) {
	v := validate.Default(pattern.DefaultMatcher())

	tests := []struct {
		name  string
		text  string
		rule  string
		score float64
	}{
		{"empty", "", validate.RuleEmptyText, 0},
		{"whitespace", "   \t\n", validate.RuleEmptyText, 0},
		{"too short", "oops", validate.RuleMinimumLength, 0.1},
		{"vague english", "my code doesn't work", validate.RuleVaguePhrase, 0.1},
		{"vague bug", "I have a bug", validate.RuleVaguePhrase, 0.1},
		{"vague spanish", "mi código no funciona", validate.RuleVaguePhrase, 0.1},
		{"vague exact", "Error!", validate.RuleVaguePhrase, 0.1},
		{"short without pattern", "it hangs", validate.RulePatternBased, 0.2},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			verdict := v.Evaluate(tc.text)
			assert.False(t, verdict.IsValid)
			assert.NotEmpty(t, verdict.Reason)
			assert.Equal(t, tc.rule, verdict.Rule)
			assert.Equal(t, tc.score, verdict.Score)
		})
	}
}

func TestValidator_Accepts(t *testing.T) {
	v := validate.Default(pattern.DefaultMatcher())

	tests := []struct {
		name  string
		text  string
		score float64
	}{
		{"python exception", "ModuleNotFoundError numpy", 1.0},
		{"errno", "OSError errno 24 too many open files", 1.0},
		{"vague wording with pattern", "it doesn't work, ImportError on startup", 1.0},
		{"long without pattern", "the window freezes after login", 0},
		{"medium without pattern", "window freezes", 0.5},
		{"snake case only", "read_csv fails", 0.6},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			verdict := v.Evaluate(tc.text)
			require.True(t, verdict.IsValid, verdict.Reason)
			assert.Empty(t, verdict.Reason)
			assert.Empty(t, verdict.Rule)
			assert.Equal(t, tc.score, verdict.Score)
		})
	}
}

func TestValidator_ShortRejectionsNeverReachLaterRules(t *testing.T) {
	spy := &spyRule{name: "spy"}
	v := validate.NewValidator(validate.EmptyTextRule{}, validate.MinimumLengthRule{Min: 5}, spy)

	for _, text := range []string{"", "  ", "abc", "a b"} {
		res := v.Validate(text)
		assert.False(t, res.IsValid, text)
	}
	assert.Empty(t, spy.calls)

	res := v.Validate("KeyError: 'id'")
	assert.True(t, res.IsValid)
	assert.Len(t, spy.calls, 1)
	// spy is not a scoring rule, so the default score stands.
	assert.Equal(t, 1.0, res.Score)
}

func TestValidator_NoRulesAcceptsEverything(t *testing.T) {
	res := validate.NewValidator().Validate("")
	assert.True(t, res.IsValid)
	assert.Equal(t, 1.0, res.Score)
}

func TestValidator_Rules(t *testing.T) {
	v := validate.Default(pattern.DefaultMatcher())
	assert.Equal(t, []string{
		validate.RuleEmptyText,
		validate.RuleMinimumLength,
		validate.RuleVaguePhrase,
		validate.RulePatternBased,
	}, v.Rules())
}

func TestPatternBasedRule_CustomDetector(t *testing.T) {
	m := pattern.NewMatcher(pattern.MustRegex("gpu", `(?i)\bcuda\b`, 0.7))
	rule := validate.PatternBasedRule{Matcher: m}

	res := rule.Validate("cuda oom")
	assert.True(t, res.IsValid)
	assert.Equal(t, 0.7, res.Score)
}
