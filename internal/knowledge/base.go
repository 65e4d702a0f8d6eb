package knowledge

import (
	"embed"
	"fmt"
	"io/fs"
	"regexp"
	"sort"
	"strings"

	"github.com/tinkerloft/errdoctor/internal/model"
	"github.com/tinkerloft/errdoctor/internal/pattern"
)

//go:embed templates/*.yaml
var builtin embed.FS

// DefaultThreshold is the minimum score for a knowledge-base hit.
const DefaultThreshold = 0.75

// Score weights.
const (
	errorTypeWeight = 0.8
	patternWeight   = 1.4
	patternCap      = 1.0
	keywordWeight   = 0.4
	keywordCap      = 0.4
)

type entry struct {
	tmpl     model.Template
	patterns []pattern.Pattern
	// base is the error type without the word "error", matched as a whole word.
	base *regexp.Regexp
}

// Match is a scored template.
type Match struct {
	Template model.Template
	Score    float64
}

// Base is the loaded, immutable template set.
type Base struct {
	entries []entry
}

// Builtin returns the embedded templates.
func Builtin() ([]model.Template, error) {
	names, err := fs.Glob(builtin, "templates/*.yaml")
	if err != nil {
		return nil, err
	}
	sort.Strings(names)

	templates := make([]model.Template, 0, len(names))
	for _, name := range names {
		data, err := builtin.ReadFile(name)
		if err != nil {
			return nil, err
		}
		t, err := parseTemplate(name, data)
		if err != nil {
			return nil, fmt.Errorf("parsing builtin template %s: %w", name, err)
		}
		templates = append(templates, t)
	}
	return templates, nil
}

// Load builds a Base from the embedded templates, with templates from store replacing
// or extending them by ID. store may be nil.
func Load(store *Store) (*Base, error) {
	templates, err := Builtin()
	if err != nil {
		return nil, err
	}
	if store != nil {
		overrides, err := store.List()
		if err != nil {
			return nil, err
		}
		templates = merge(templates, overrides)
	}
	return New(templates...)
}

// New compiles templates into a Base. Template patterns are matched case-insensitively.
func New(templates ...model.Template) (*Base, error) {
	b := &Base{entries: make([]entry, 0, len(templates))}
	for _, t := range templates {
		e := entry{tmpl: t}
		for _, p := range t.Patterns {
			re, err := pattern.NewRegex(t.ID, "(?i)"+p, 1)
			if err != nil {
				return nil, fmt.Errorf("template %s: invalid pattern %q: %w", t.ID, p, err)
			}
			e.patterns = append(e.patterns, re)
		}
		if base := strings.TrimSpace(strings.ReplaceAll(strings.ToLower(t.ErrorType), "error", "")); base != "" {
			e.base = regexp.MustCompile(`\b` + regexp.QuoteMeta(base) + `\b`)
		}
		b.entries = append(b.entries, e)
	}
	return b, nil
}

func merge(base, overrides []model.Template) []model.Template {
	index := make(map[string]int, len(base))
	out := append([]model.Template{}, base...)
	for i, t := range out {
		index[t.ID] = i
	}
	for _, t := range overrides {
		if i, ok := index[t.ID]; ok {
			out[i] = t
			continue
		}
		index[t.ID] = len(out)
		out = append(out, t)
	}
	return out
}

// Len returns the number of templates.
func (b *Base) Len() int { return len(b.entries) }

// Templates returns a copy of all templates in load order.
func (b *Base) Templates() []model.Template {
	out := make([]model.Template, len(b.entries))
	for i, e := range b.entries {
		out[i] = e.tmpl
	}
	return out
}

// ByID returns the template with the given ID.
func (b *Base) ByID(id string) (model.Template, bool) {
	for _, e := range b.entries {
		if e.tmpl.ID == id {
			return e.tmpl, true
		}
	}
	return model.Template{}, false
}

// Categories returns the distinct template categories, sorted.
func (b *Base) Categories() []string {
	return distinct(b.entries, func(t model.Template) string { return t.Category })
}

// ErrorTypes returns the distinct error types, sorted.
func (b *Base) ErrorTypes() []string {
	return distinct(b.entries, func(t model.Template) string { return t.ErrorType })
}

// ByCategory returns the templates in category.
func (b *Base) ByCategory(category string) []model.Template {
	var out []model.Template
	for _, e := range b.entries {
		if e.tmpl.Category == category {
			out = append(out, e.tmpl)
		}
	}
	return out
}

func distinct(entries []entry, key func(model.Template) string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, e := range entries {
		k := key(e.tmpl)
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Best returns the highest-scoring template for text. Ties keep the template loaded
// first. ok is false when no template scores above zero.
func (b *Base) Best(text string) (m Match, ok bool) {
	lower := strings.ToLower(text)
	for _, e := range b.entries {
		s := e.score(lower)
		if s > m.Score {
			m = Match{Template: e.tmpl, Score: s}
			ok = true
		}
	}
	return m, ok
}

// Lookup returns the best template if its score meets threshold.
func (b *Base) Lookup(text string, threshold float64) (Match, bool) {
	m, ok := b.Best(text)
	if !ok || m.Score < threshold {
		return m, false
	}
	return m, true
}

// Score returns the score of the template with the given ID against text.
func (b *Base) Score(id, text string) float64 {
	lower := strings.ToLower(text)
	for _, e := range b.entries {
		if e.tmpl.ID == id {
			return e.score(lower)
		}
	}
	return 0
}

func (e entry) score(text string) float64 {
	var score float64

	if et := strings.ToLower(e.tmpl.ErrorType); et != "" {
		if strings.Contains(text, et) ||
			strings.Contains(compact(text), compact(et)) ||
			(e.base != nil && e.base.MatchString(text)) {
			score += errorTypeWeight
		}
	}

	if n := len(e.patterns); n > 0 {
		matched := 0
		for _, p := range e.patterns {
			if p.Matches(text) {
				matched++
			}
		}
		if matched > 0 {
			score += min(patternCap, float64(matched)/float64(n)*patternWeight)
		}
	}

	if n := len(e.tmpl.Keywords); n > 0 {
		matched := 0
		for _, k := range e.tmpl.Keywords {
			if strings.Contains(text, strings.ToLower(k)) {
				matched++
			}
		}
		if matched > 0 {
			score += min(keywordCap, float64(matched)/float64(n)*keywordWeight)
		}
	}

	score += e.tmpl.ConfidenceBoost
	return max(0, min(1, score))
}

func compact(s string) string {
	return strings.NewReplacer(" ", "", "_", "").Replace(s)
}
