package knowledge

import (
	"fmt"
	"strings"

	"github.com/tinkerloft/errdoctor/internal/model"
)

const maxSpokenSolution = 150

// VoiceText is the short spoken summary of a diagnosis.
func VoiceText(errorType string, solutions []string) string {
	if len(solutions) == 0 {
		return model.Truncate(fmt.Sprintf("Detected a %s. I have no specific solutions for it yet.", errorType), model.MaxVoiceTextLength)
	}
	first := strings.TrimRight(model.Truncate(solutions[0], maxSpokenSolution), ".")
	text := fmt.Sprintf("Detected a %s. Solution: %s.", errorType, first)
	switch more := len(solutions) - 1; more {
	case 0:
	case 1:
		text += " I have 1 more solution available."
	default:
		text += fmt.Sprintf(" I have %d more solutions available.", more)
	}
	return model.Truncate(text, model.MaxVoiceTextLength)
}

// CardTitle is the title of the visual card.
func CardTitle(errorType string) string {
	return "Diagnosis: " + errorType
}

// CardText renders the visual card as markdown.
func CardText(errorType string, solutions []string, explanation string, causes []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**Error**: %s\n", errorType)
	if len(solutions) > 0 {
		b.WriteString("\n**Solutions**:\n")
		for i, s := range solutions {
			fmt.Fprintf(&b, "%d. %s\n", i+1, s)
		}
	}
	if explanation != "" {
		fmt.Fprintf(&b, "\n**Explanation**: %s\n", explanation)
	}
	if len(causes) > 0 {
		b.WriteString("\n**Common causes**:\n")
		for _, c := range causes {
			fmt.Fprintf(&b, "- %s\n", c)
		}
	}
	return model.Truncate(strings.TrimRight(b.String(), "\n"), model.MaxCardTextLength)
}
