package provider

import (
	"fmt"
	"strings"
)

// SystemPrompt frames every request.
const SystemPrompt = `You are an assistant that diagnoses Python programming errors for beginners.
Answer with a single JSON object and nothing else.`

// BuildPrompt builds the diagnosis request for text and the user's context.
func BuildPrompt(text string, pc ProfileContext) string {
	var b strings.Builder
	b.WriteString("Diagnose this Python error description.\n\n")
	fmt.Fprintf(&b, "Error description: %s\n\n", strings.TrimSpace(text))
	b.WriteString("User environment:\n")
	fmt.Fprintf(&b, "- Operating system: %s\n", pc.Profile.OS)
	fmt.Fprintf(&b, "- Package manager: %s\n", pc.Profile.PackageManager)
	fmt.Fprintf(&b, "- Editor: %s\n", pc.Profile.Editor)
	fmt.Fprintf(&b, "- Description specificity: %.2f\n\n", pc.Specificity)
	b.WriteString(`Respond with JSON of this shape:
{
  "error_type": "the Python error type, for example ModuleNotFoundError",
  "voice_text": "one or two short sentences to be read aloud, under 300 characters",
  "solutions": ["up to 5 concrete steps, using commands for the user's package manager and operating system"],
  "explanation": "why the error happens, in plain words",
  "causes": ["likely causes"],
  "confidence": 0.0
}
`)
	if pc.Specificity < 0.5 {
		b.WriteString("\nThe description is not very specific: prefer general, safe steps and lower the confidence.\n")
	}
	return b.String()
}
