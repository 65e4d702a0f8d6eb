package provider

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
)

// Config contains configuration for provider construction.
type Config struct {
	Name        string  `yaml:"name" toml:"name"`
	Model       string  `yaml:"model,omitempty" toml:"model"`
	APIKeyEnv   string  `yaml:"api_key_env,omitempty" toml:"api_key_env"` // env var holding the API key
	BaseURL     string  `yaml:"base_url,omitempty" toml:"base_url"`
	MaxTokens   int     `yaml:"max_tokens,omitempty" toml:"max_tokens"`
	Temperature float64 `yaml:"temperature,omitempty" toml:"temperature"`
	Response    string  `yaml:"response,omitempty" toml:"response"` // static provider only
}

// APIKey resolves the configured API key from the environment.
func (c Config) APIKey() string {
	if c.APIKeyEnv == "" {
		return ""
	}
	return strings.TrimSpace(os.Getenv(c.APIKeyEnv))
}

// ErrUnknown is returned by New for names with no registered factory.
var ErrUnknown = errors.New("unknown provider")

// Factory creates a Provider.
type Factory func(cfg Config) (Provider, error)

var factories = map[string]Factory{}

// Register registers a provider factory by name.
func Register(name string, factory Factory) {
	factories[name] = factory
}

// Registered returns the registered provider names, sorted.
func Registered() []string {
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New creates a Provider based on cfg.Name.
// "claude" is an alias for "anthropic" and "gpt" for "openai".
func New(cfg Config) (Provider, error) {
	key := strings.ToLower(strings.TrimSpace(cfg.Name))
	switch key {
	case "claude":
		key = "anthropic"
	case "gpt":
		key = "openai"
	}

	factory, ok := factories[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknown, cfg.Name)
	}
	return factory(cfg)
}
