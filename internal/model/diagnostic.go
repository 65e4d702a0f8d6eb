package model

import (
	"slices"
	"time"
)

// Text limits for rendered diagnostics.
const (
	MaxVoiceTextLength = 300
	MaxCardTextLength  = 1000
)

// Source identifies which resolution tier produced a diagnostic.
type Source string

const (
	SourceKnowledgeBase   Source = "knowledge_base"
	SourceAICache         Source = "ai_cache"
	SourceAILivePrimary   Source = "ai_live_primary"
	SourceAILiveSecondary Source = "ai_live_secondary"
	SourceUnknown         Source = "unknown"
)

// ErrorTypeUnknown and ErrorTypeGeneric label diagnostics that carry no real diagnosis.
const (
	ErrorTypeUnknown = "unknown"
	ErrorTypeGeneric = "generic_error"
)

// DiagnosticRecord is a structured diagnosis of an error description.
type DiagnosticRecord struct {
	ErrorType   string   `json:"error_type"`
	VoiceText   string   `json:"voice_text"`
	CardTitle   string   `json:"card_title,omitempty"`
	CardText    string   `json:"card_text"`
	Solutions   []string `json:"solutions"`
	Causes      []string `json:"causes"`
	Explanation string   `json:"explanation,omitempty"`
	Confidence  float64  `json:"confidence"`
	Source      Source   `json:"source"`
}

// IsFailure reports whether the record is the canonical failed-diagnosis marker.
// Such records are never cached.
func (d DiagnosticRecord) IsFailure() bool {
	return d.Confidence <= 0 || d.Source == SourceUnknown
}

// Clamp enforces the text limits and the confidence range.
func (d DiagnosticRecord) Clamp() DiagnosticRecord {
	d.VoiceText = Truncate(d.VoiceText, MaxVoiceTextLength)
	d.CardText = Truncate(d.CardText, MaxCardTextLength)
	d.Confidence = clamp01(d.Confidence)
	return d
}

// WithSource returns a copy tagged with src.
func (d DiagnosticRecord) WithSource(src Source) DiagnosticRecord {
	d.Source = src
	return d
}

// Clone returns a copy that shares no slices with d.
func (d DiagnosticRecord) Clone() DiagnosticRecord {
	d.Solutions = slices.Clone(d.Solutions)
	d.Causes = slices.Clone(d.Causes)
	return d
}

// Truncate shortens s to at most max runes, ending with "..." when cut.
func Truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	const suffix = "..."
	if max <= len(suffix) {
		return string(r[:max])
	}
	return string(r[:max-len(suffix)]) + suffix
}

// UnknownDiagnostic is returned when no tier could diagnose the description.
func UnknownDiagnostic(errorType string) DiagnosticRecord {
	if errorType == "" {
		errorType = ErrorTypeUnknown
	}
	return DiagnosticRecord{
		ErrorType: errorType,
		VoiceText: "Sorry, I couldn't diagnose that error right now. Please try again in a moment.",
		CardTitle: "Diagnosis unavailable",
		CardText:  "No diagnosis could be produced for this description.",
		Solutions: []string{
			"Describe the error differently, ideally with the exact message",
			"Check your internet connection",
			"Try again later",
		},
		Causes:     []string{},
		Confidence: 0,
		Source:     SourceUnknown,
	}
}

// CacheEntry is a persisted live diagnosis.
type CacheEntry struct {
	Fingerprint string           `json:"fingerprint"`
	Profile     ProfileSnapshot  `json:"profile"`
	Diagnostic  DiagnosticRecord `json:"diagnostic"`
	ExpiresAt   time.Time        `json:"expires_at"`
	HitCount    int64            `json:"hit_count"`
}

// Expired reports whether the entry is past its expiry at now.
func (e CacheEntry) Expired(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && !now.Before(e.ExpiresAt)
}

// HistoryEntry is one diagnosis appended to a user's history.
type HistoryEntry struct {
	ID             string    `json:"id"`
	ErrorType      string    `json:"error_type"`
	Source         Source    `json:"source"`
	Confidence     float64   `json:"confidence"`
	SolutionsCount int       `json:"solutions_count"`
	CreatedAt      time.Time `json:"created_at"`
}
