package knowledge_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinkerloft/errdoctor/internal/knowledge"
	"github.com/tinkerloft/errdoctor/internal/model"
)

func TestStore_WriteAndList(t *testing.T) {
	dir := t.TempDir()
	store := knowledge.NewStore(dir)

	tmpl := model.Template{
		ID:        "tab_error",
		ErrorType: "TabError",
		Patterns:  []string{"taberror", "inconsistent use of tabs"},
		Solutions: []string{"Convert tabs to spaces"},
	}
	require.NoError(t, store.Write(tmpl))

	templates, err := store.List()
	require.NoError(t, err)
	require.Len(t, templates, 1)
	assert.Equal(t, tmpl.ID, templates[0].ID)
	assert.Equal(t, tmpl.Patterns, templates[0].Patterns)
}

func TestStore_List_MissingDir(t *testing.T) {
	store := knowledge.NewStore(filepath.Join(t.TempDir(), "nope"))

	templates, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, templates)
}

func TestStore_List_Markdown(t *testing.T) {
	dir := t.TempDir()
	content := `---
error_type: TabError
patterns: ["taberror"]
solutions: ["Convert tabs to spaces"]
---

Python found tabs and spaces mixed in one block.
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tab_error.md"), []byte(content), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.txt"), []byte("ignored"), 0o644))

	templates, err := knowledge.NewStore(dir).List()
	require.NoError(t, err)
	require.Len(t, templates, 1)
	assert.Equal(t, "tab_error", templates[0].ID)
	assert.Equal(t, "Python found tabs and spaces mixed in one block.", templates[0].Explanation)
}

func TestStore_List_RejectsTemplateWithoutType(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte("id: bad\n"), 0o644))

	_, err := knowledge.NewStore(dir).List()
	assert.Error(t, err)
}

func TestStore_Delete(t *testing.T) {
	dir := t.TempDir()
	store := knowledge.NewStore(dir)
	require.NoError(t, store.Write(model.Template{ID: "x", ErrorType: "XError"}))

	require.NoError(t, store.Delete("x"))
	templates, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, templates)

	assert.Error(t, store.Delete("x"))
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "timeout.yaml")
	require.NoError(t, os.WriteFile(good, []byte("error_type: TimeoutError\npatterns: [\"timed out\"]\nsolutions: [\"Retry\"]\n"), 0o644))
	tmpl, err := knowledge.ReadFile(good)
	require.NoError(t, err)
	assert.Equal(t, "timeout", tmpl.ID)
	assert.Equal(t, "TimeoutError", tmpl.ErrorType)

	badPattern := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(badPattern, []byte("error_type: X\npatterns: [\"(unclosed\"]\n"), 0o644))
	_, err = knowledge.ReadFile(badPattern)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid pattern")

	_, err = knowledge.ReadFile(filepath.Join(dir, "notes.txt"))
	assert.Error(t, err)
}
