// Package knowledge provides the static error-template knowledge base.
package knowledge

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/frontmatter"
	"gopkg.in/yaml.v3"

	"github.com/tinkerloft/errdoctor/internal/model"
)

// Store manages override templates on the local filesystem.
// Layout: {BaseDir}/{template-id}.yaml or {BaseDir}/{template-id}.md
//
// Markdown templates carry the template as YAML front matter; the body becomes the
// explanation when the front matter does not set one.
type Store struct {
	baseDir string
}

// NewStore creates a Store using the given base directory.
func NewStore(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

// DefaultStore creates a Store using ~/.errdoctor/templates.
func DefaultStore() *Store {
	home, _ := os.UserHomeDir()
	return NewStore(filepath.Join(home, ".errdoctor", "templates"))
}

// BaseDir returns the base directory for this store.
func (s *Store) BaseDir() string {
	return s.baseDir
}

// Write persists a template as {id}.yaml.
func (s *Store) Write(t model.Template) error {
	if t.ID == "" {
		return fmt.Errorf("template has no id")
	}
	if err := os.MkdirAll(s.baseDir, 0o755); err != nil {
		return fmt.Errorf("creating templates dir: %w", err)
	}
	data, err := yaml.Marshal(t)
	if err != nil {
		return fmt.Errorf("marshaling template: %w", err)
	}
	return os.WriteFile(filepath.Join(s.baseDir, t.ID+".yaml"), data, 0o644)
}

// List returns all templates in the store, in file name order.
func (s *Store) List() ([]model.Template, error) {
	if s.baseDir == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(s.baseDir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading templates dir: %w", err)
	}

	var templates []model.Template
	for _, e := range entries {
		if e.IsDir() || !isTemplateFile(e.Name()) {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.baseDir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("reading template %s: %w", e.Name(), err)
		}
		t, err := parseTemplate(e.Name(), data)
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", e.Name(), err)
		}
		templates = append(templates, t)
	}
	return templates, nil
}

// Delete removes a template by its ID.
func (s *Store) Delete(id string) error {
	for _, ext := range []string{".yaml", ".yml", ".md"} {
		if err := os.Remove(filepath.Join(s.baseDir, id+ext)); err == nil {
			return nil
		}
	}
	return fmt.Errorf("template %q not found", id)
}

func isTemplateFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml", ".md":
		return true
	}
	return false
}

func parseTemplate(name string, data []byte) (model.Template, error) {
	var t model.Template
	if strings.EqualFold(filepath.Ext(name), ".md") {
		yamlFormat := frontmatter.NewFormat("---", "---", yaml.Unmarshal)
		body, err := frontmatter.Parse(bytes.NewReader(data), &t, yamlFormat)
		if err != nil {
			return model.Template{}, err
		}
		if t.Explanation == "" {
			t.Explanation = strings.TrimSpace(string(body))
		}
	} else if err := yaml.Unmarshal(data, &t); err != nil {
		return model.Template{}, err
	}
	if t.ID == "" {
		t.ID = strings.TrimSuffix(name, filepath.Ext(name))
	}
	if t.ErrorType == "" {
		return model.Template{}, fmt.Errorf("error_type is required")
	}
	return t, nil
}

// ReadFile parses a single template file (.yaml, .yml or .md) and checks that its
// patterns compile.
func ReadFile(path string) (model.Template, error) {
	if !isTemplateFile(path) {
		return model.Template{}, fmt.Errorf("%s: not a template file", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Template{}, fmt.Errorf("reading template: %w", err)
	}
	t, err := parseTemplate(filepath.Base(path), data)
	if err != nil {
		return model.Template{}, fmt.Errorf("parsing template %s: %w", filepath.Base(path), err)
	}
	if _, err := New(t); err != nil {
		return model.Template{}, err
	}
	return t, nil
}
