package config

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinkerloft/errdoctor/internal/provider"
)

func TestCheck(t *testing.T) {
	t.Setenv("ERRDOCTOR_TEST_KEY", "")

	cfg := Default()
	cfg.Knowledge.Threshold = 1.5
	cfg.Live.Providers = []provider.Config{
		{Name: "claude", APIKeyEnv: "ERRDOCTOR_TEST_KEY"},
		{Name: "nope"},
		{Name: "static"},
	}

	issues := Check(cfg)
	names := make(map[string]Issue, len(issues))
	for _, i := range issues {
		names[i.Name] = i
	}
	require.Len(t, issues, 3)
	assert.True(t, names["knowledge.threshold"].Required)
	assert.True(t, names["live.providers.nope"].Required)
	assert.False(t, names["ERRDOCTOR_TEST_KEY"].Required)
}

func TestCheck_ZeroThreshold(t *testing.T) {
	cfg := Default()
	cfg.Knowledge.Threshold = 0
	cfg.Live.Providers = []provider.Config{{Name: "static"}}

	issues := Check(cfg)
	require.Len(t, issues, 1)
	assert.Equal(t, "knowledge.threshold", issues[0].Name)
	assert.True(t, issues[0].Required)
}

func TestCheck_KeyPresent(t *testing.T) {
	t.Setenv("ERRDOCTOR_TEST_KEY", "sk-test")
	cfg := Default()
	cfg.Live.Providers = []provider.Config{{Name: "anthropic", APIKeyEnv: "ERRDOCTOR_TEST_KEY"}}
	assert.Empty(t, Check(cfg))
}

func TestEnforce(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	issues := []Issue{
		{Name: "OPENAI_API_KEY", Description: "missing"},
		{Name: "knowledge.threshold", Description: "bad", Required: true},
	}

	assert.NoError(t, Enforce(ConfigModeWarn, issues, logger))
	assert.Contains(t, buf.String(), "OPENAI_API_KEY")

	err := Enforce(ConfigModeRequire, issues, logger)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "knowledge.threshold")
	assert.NotContains(t, err.Error(), "OPENAI_API_KEY")

	assert.NoError(t, Enforce(ConfigModeRequire, issues[:1], logger))
}
