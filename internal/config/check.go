package config

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/tinkerloft/errdoctor/internal/provider"
)

// ValidationMode controls how configuration issues are handled.
type ValidationMode int

const (
	// ConfigModeWarn logs warnings for configuration issues but allows startup.
	ConfigModeWarn ValidationMode = iota
	// ConfigModeRequire returns an error if any required issue is found.
	ConfigModeRequire
)

// Issue represents a configuration problem found during validation.
type Issue struct {
	Name        string // Environment variable or config key
	Description string
	Required    bool
}

var aliases = map[string]string{"claude": "anthropic", "gpt": "openai"}

// Check reports configuration problems that do not prevent loading.
func Check(c *Config) []Issue {
	var issues []Issue

	if !validThreshold(c.Knowledge.Threshold) {
		issues = append(issues, Issue{
			Name:        "knowledge.threshold",
			Description: fmt.Sprintf("threshold %.2f is outside (0,1]", c.Knowledge.Threshold),
			Required:    true,
		})
	}

	if len(c.Live.Providers) == 0 {
		issues = append(issues, Issue{
			Name:        "live.providers",
			Description: "no providers configured, descriptions missing from the knowledge base and cache will not resolve",
		})
	}

	registered := provider.Registered()
	for _, p := range c.Live.Providers {
		name := strings.ToLower(strings.TrimSpace(p.Name))
		if a, ok := aliases[name]; ok {
			name = a
		}
		if !slices.Contains(registered, name) {
			issues = append(issues, Issue{
				Name:        "live.providers." + p.Name,
				Description: fmt.Sprintf("unknown provider (registered: %s)", strings.Join(registered, ", ")),
				Required:    true,
			})
			continue
		}
		if p.APIKeyEnv != "" && p.APIKey() == "" {
			issues = append(issues, Issue{
				Name:        p.APIKeyEnv,
				Description: fmt.Sprintf("API key for provider %s is not set", p.Name),
			})
		}
	}
	return issues
}

// Enforce logs every issue. In ConfigModeRequire it returns an error if any issue is required.
func Enforce(mode ValidationMode, issues []Issue, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	var required []string
	for _, issue := range issues {
		if issue.Required {
			required = append(required, issue.Name)
		}
		logger.Warn("config warning", "name", issue.Name, "description", issue.Description, "required", issue.Required)
	}
	if mode == ConfigModeRequire && len(required) > 0 {
		return fmt.Errorf("required configuration invalid: %s", strings.Join(required, ", "))
	}
	return nil
}
