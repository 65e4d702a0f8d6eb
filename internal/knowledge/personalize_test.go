package knowledge_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinkerloft/errdoctor/internal/knowledge"
	"github.com/tinkerloft/errdoctor/internal/model"
)

func TestModuleName(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"ModuleNotFoundError numpy", "numpy"},
		{"ModuleNotFoundError: No module named 'sklearn.datasets'", "sklearn"},
		{`no module named "requests"`, "requests"},
		{"KeyError: 'id'", ""},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, knowledge.ModuleName(tc.text), tc.text)
	}
}

func TestSolutions_Personalized(t *testing.T) {
	b := loadBuiltin(t)
	tmpl, ok := b.ByID("module_not_found")
	require.True(t, ok)

	conda := model.UserProfile{OS: model.OSWindows, PackageManager: model.PackageManagerConda, Editor: model.EditorVSCode}
	solutions := knowledge.Solutions(tmpl, conda, "ModuleNotFoundError numpy")
	assert.Equal(t, "Install the missing package with: conda install numpy", solutions[0])
	assert.Contains(t, solutions[len(solutions)-1], "On Windows")

	pip := model.UserProfile{OS: model.OSLinux, PackageManager: model.PackageManagerPip, Editor: model.EditorPyCharm}
	solutions = knowledge.Solutions(tmpl, pip, "modulenotfounderror")
	assert.Equal(t, "Install the missing package with: pip install <package>", solutions[0])
	assert.Contains(t, solutions[2], "PyCharm")
	for _, s := range solutions {
		assert.NotContains(t, s, "{")
	}
}

func TestSolutions_UnknownPackageManagerFallsBackToPip(t *testing.T) {
	tmpl := model.Template{Solutions: []string{"{pm} install x on {os}"}}
	got := knowledge.Solutions(tmpl, model.UserProfile{}, "")
	assert.Equal(t, []string{"pip install x on your system"}, got)
}

func TestDiagnose(t *testing.T) {
	b := loadBuiltin(t)
	m, ok := b.Lookup("ModuleNotFoundError numpy", knowledge.DefaultThreshold)
	require.True(t, ok)

	d := knowledge.Diagnose(m, model.DefaultProfile, "ModuleNotFoundError numpy")
	assert.Equal(t, model.SourceKnowledgeBase, d.Source)
	assert.Equal(t, "ModuleNotFoundError", d.ErrorType)
	assert.Equal(t, m.Score, d.Confidence)
	assert.False(t, d.IsFailure())
	assert.True(t, strings.HasPrefix(d.VoiceText, "Detected a ModuleNotFoundError. Solution: Install the missing package with: pip install numpy."))
	assert.Contains(t, d.CardText, "**Solutions**:\n1. ")
	assert.LessOrEqual(t, len([]rune(d.VoiceText)), model.MaxVoiceTextLength)
	assert.LessOrEqual(t, len([]rune(d.CardText)), model.MaxCardTextLength)
}

func TestVoiceText(t *testing.T) {
	assert.Equal(t, "Detected a KeyError. I have no specific solutions for it yet.", knowledge.VoiceText("KeyError", nil))
	assert.Equal(t, "Detected a KeyError. Solution: Use get.", knowledge.VoiceText("KeyError", []string{"Use get."}))
	assert.Equal(t, "Detected a KeyError. Solution: a. I have 2 more solutions available.",
		knowledge.VoiceText("KeyError", []string{"a", "b", "c"}))

	long := knowledge.VoiceText("KeyError", []string{strings.Repeat("x", 400), "b"})
	assert.LessOrEqual(t, len([]rune(long)), model.MaxVoiceTextLength)
}

func TestCardText_Truncated(t *testing.T) {
	solutions := make([]string, 50)
	for i := range solutions {
		solutions[i] = strings.Repeat("s", 40)
	}
	text := knowledge.CardText("KeyError", solutions, "", nil)
	assert.Equal(t, model.MaxCardTextLength, len([]rune(text)))
	assert.True(t, strings.HasSuffix(text, "..."))
}
