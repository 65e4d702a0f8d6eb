package knowledge

import (
	"regexp"
	"strings"

	"github.com/tinkerloft/errdoctor/internal/model"
)

// DefaultModulePlaceholder fills {module} when the text names no module.
const DefaultModulePlaceholder = "<package>"

var moduleRes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)no module named\s+['"]?([A-Za-z_][\w.]*)`),
	regexp.MustCompile(`(?i)modulenotfounderror:?\s+['"]?([A-Za-z_][\w.]*)`),
}

// ModuleName extracts the top-level module named in text, or "".
func ModuleName(text string) string {
	for _, re := range moduleRes {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		name := strings.TrimRight(m[1], ".")
		if i := strings.IndexByte(name, '.'); i > 0 {
			name = name[:i]
		}
		if strings.EqualFold(name, "no") {
			continue
		}
		return name
	}
	return ""
}

// Solutions returns the template's solutions personalized for profile.
// A package-manager specific list replaces the base list, OS notes are appended, and
// {pm}, {os}, {editor} and {module} placeholders are filled.
func Solutions(t model.Template, profile model.UserProfile, text string) []string {
	base := t.Solutions
	if list := t.SolutionsByPackageManager[profile.PackageManager]; len(list) > 0 {
		base = list
	}
	out := make([]string, 0, len(base)+len(t.SolutionsByOS[profile.OS]))
	out = append(out, base...)
	out = append(out, t.SolutionsByOS[profile.OS]...)

	r := placeholders(profile, text)
	for i, s := range out {
		out[i] = r.Replace(s)
	}
	return out
}

func placeholders(profile model.UserProfile, text string) *strings.Replacer {
	pm := profile.PackageManager
	if pm == "" || pm == model.PackageManagerUnknown {
		pm = model.PackageManagerPip
	}
	module := ModuleName(text)
	if module == "" {
		module = DefaultModulePlaceholder
	}
	return strings.NewReplacer(
		"{pm}", string(pm),
		"{os}", displayOS(profile.OS),
		"{editor}", displayEditor(profile.Editor),
		"{module}", module,
	)
}

func displayOS(os model.OperatingSystem) string {
	switch os {
	case model.OSWindows:
		return "Windows"
	case model.OSMacOS:
		return "macOS"
	case model.OSLinux:
		return "Linux"
	default:
		return "your system"
	}
}

func displayEditor(e model.Editor) string {
	switch e {
	case model.EditorVSCode:
		return "VS Code"
	case model.EditorPyCharm:
		return "PyCharm"
	case model.EditorSublime:
		return "Sublime Text"
	case model.EditorVim:
		return "Vim"
	case model.EditorJupyter:
		return "Jupyter"
	default:
		return "your editor"
	}
}

// Diagnose renders a matched template as a knowledge-base diagnostic for profile.
func Diagnose(m Match, profile model.UserProfile, text string) model.DiagnosticRecord {
	t := m.Template
	solutions := Solutions(t, profile, text)
	causes := append([]string{}, t.Causes...)
	return model.DiagnosticRecord{
		ErrorType:   t.ErrorType,
		VoiceText:   VoiceText(t.ErrorType, solutions),
		CardTitle:   CardTitle(t.ErrorType),
		CardText:    CardText(t.ErrorType, solutions, t.Explanation, causes),
		Solutions:   solutions,
		Causes:      causes,
		Explanation: t.Explanation,
		Confidence:  m.Score,
		Source:      model.SourceKnowledgeBase,
	}.Clamp()
}
