package provider

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/tinkerloft/errdoctor/internal/model"
)

//go:embed schema.json
var responseSchemaJSON string

var responseSchema = jsonschema.MustCompileString("schema.json", responseSchemaJSON)

type rawDiagnostic struct {
	ErrorType   string   `json:"error_type"`
	VoiceText   string   `json:"voice_text"`
	Solutions   []string `json:"solutions"`
	Explanation string   `json:"explanation"`
	Causes      []string `json:"causes"`
	Confidence  *float64 `json:"confidence"`
}

// ParseDiagnostic reads a provider response into a diagnostic. The outermost JSON object
// in raw is used, so markdown fences and surrounding prose are tolerated. Confidence
// falls back to defaultConfidence when absent or outside (0, 1]. The returned record has
// no source and no card text.
func ParseDiagnostic(raw string, defaultConfidence float64) (model.DiagnosticRecord, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return model.DiagnosticRecord{}, fmt.Errorf("%w: no JSON object found", ErrParse)
	}
	body := raw[start : end+1]

	var doc interface{}
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		return model.DiagnosticRecord{}, fmt.Errorf("%w: %v", ErrParse, err)
	}
	if err := responseSchema.Validate(doc); err != nil {
		return model.DiagnosticRecord{}, fmt.Errorf("%w: %s", ErrParse, strings.Join(SchemaErrors(err), "; "))
	}

	var r rawDiagnostic
	if err := json.Unmarshal([]byte(body), &r); err != nil {
		return model.DiagnosticRecord{}, fmt.Errorf("%w: %v", ErrParse, err)
	}

	confidence := defaultConfidence
	if r.Confidence != nil && *r.Confidence > 0 && *r.Confidence <= 1 {
		confidence = *r.Confidence
	}
	causes := r.Causes
	if causes == nil {
		causes = []string{}
	}
	return model.DiagnosticRecord{
		ErrorType:   strings.TrimSpace(r.ErrorType),
		VoiceText:   strings.TrimSpace(r.VoiceText),
		Solutions:   r.Solutions,
		Causes:      causes,
		Explanation: strings.TrimSpace(r.Explanation),
		Confidence:  confidence,
	}, nil
}

// SchemaErrors flattens a schema validation error into "path: message" lines.
func SchemaErrors(err error) []string {
	validationErr, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return []string{err.Error()}
	}
	var errs []string
	extractValidationErrors(validationErr, &errs)
	return errs
}

func extractValidationErrors(err *jsonschema.ValidationError, errs *[]string) {
	if err.Message != "" {
		path := err.InstanceLocation
		if path == "" {
			path = "/"
		}
		*errs = append(*errs, fmt.Sprintf("%s: %s", path, err.Message))
	}
	for _, cause := range err.Causes {
		extractValidationErrors(cause, errs)
	}
}
