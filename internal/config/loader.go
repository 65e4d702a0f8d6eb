// Package config provides configuration loading utilities.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/tinkerloft/errdoctor/internal/provider"
)

// SupportedVersions lists all schema versions supported by this loader.
var SupportedVersions = []int{1}

// Format is a configuration file syntax.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// Storage drivers.
const (
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

// Config is the service configuration.
type Config struct {
	Version   int             `yaml:"version" toml:"version"`
	Server    ServerConfig    `yaml:"server" toml:"server"`
	Log       LogConfig       `yaml:"log" toml:"log"`
	Knowledge KnowledgeConfig `yaml:"knowledge" toml:"knowledge"`
	Cache     CacheConfig     `yaml:"cache" toml:"cache"`
	Storage   StorageConfig   `yaml:"storage" toml:"storage"`
	Live      LiveConfig      `yaml:"live" toml:"live"`
}

type ServerConfig struct {
	Addr        string   `yaml:"addr" toml:"addr"`
	CORSOrigins []string `yaml:"cors_origins,omitempty" toml:"cors_origins"`
}

type LogConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
}

type KnowledgeConfig struct {
	Threshold float64 `yaml:"threshold" toml:"threshold"`
	// TemplatesDir holds .yaml/.md templates that extend or override the built-in set.
	TemplatesDir string `yaml:"templates_dir,omitempty" toml:"templates_dir"`
}

type CacheConfig struct {
	Namespace string        `yaml:"namespace" toml:"namespace"`
	TTL       time.Duration `yaml:"ttl" toml:"ttl"`
}

type StorageConfig struct {
	Driver        string `yaml:"driver" toml:"driver"`
	Path          string `yaml:"path,omitempty" toml:"path"`
	PurgeSchedule string `yaml:"purge_schedule,omitempty" toml:"purge_schedule"`
	HistoryLimit  int    `yaml:"history_limit,omitempty" toml:"history_limit"`
}

type LiveConfig struct {
	Timeout           time.Duration     `yaml:"timeout" toml:"timeout"`
	DefaultConfidence float64           `yaml:"default_confidence" toml:"default_confidence"`
	RateLimit         int               `yaml:"rate_limit" toml:"rate_limit"` // calls per minute, 0 disables
	Providers         []provider.Config `yaml:"providers" toml:"providers"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Version: 1,
		Server:  ServerConfig{Addr: ":8080"},
		Log:     LogConfig{Level: "info", Format: "json"},
		Knowledge: KnowledgeConfig{
			Threshold: 0.75,
		},
		Cache: CacheConfig{Namespace: "cache", TTL: 30 * 24 * time.Hour},
		Storage: StorageConfig{
			Driver:        DriverSQLite,
			Path:          defaultStoragePath(),
			PurgeSchedule: "@hourly",
			HistoryLimit:  50,
		},
		Live: LiveConfig{
			Timeout:           10 * time.Second,
			DefaultConfidence: 0.85,
			RateLimit:         30,
			Providers: []provider.Config{
				{Name: "anthropic", APIKeyEnv: "ANTHROPIC_API_KEY"},
				{Name: "openai", APIKeyEnv: "OPENAI_API_KEY"},
			},
		},
	}
}

func defaultStoragePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "errdoctor.db"
	}
	return filepath.Join(home, ".errdoctor", "errdoctor.db")
}

// versionHeader is used to extract just the version from a document.
type versionHeader struct {
	Version *int `yaml:"version" toml:"version"`
}

// Load parses a configuration document over the defaults.
func Load(data []byte, format Format) (*Config, error) {
	var header versionHeader
	if err := unmarshal(data, format, &header); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if header.Version == nil {
		return nil, errors.New("version field is required")
	}

	switch *header.Version {
	case 1:
		return loadV1(data, format)
	default:
		return nil, fmt.Errorf("unsupported schema version: %d (supported: %v)", *header.Version, SupportedVersions)
	}
}

// LoadFile loads a configuration file. Files ending in .toml are parsed as TOML,
// everything else as YAML.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	format := FormatYAML
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		format = FormatTOML
	}
	return Load(data, format)
}

func unmarshal(data []byte, format Format, v any) error {
	switch format {
	case FormatTOML:
		_, err := toml.Decode(string(data), v)
		return err
	case FormatYAML, "":
		return yaml.Unmarshal(data, v)
	default:
		return fmt.Errorf("unknown config format %q", format)
	}
}

func loadV1(data []byte, format Format) (*Config, error) {
	cfg := Default()
	providers := cfg.Live.Providers
	cfg.Live.Providers = nil
	if err := unmarshal(data, format, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config v1: %w", err)
	}
	if cfg.Live.Providers == nil {
		cfg.Live.Providers = providers
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Storage.Driver {
	case DriverSQLite:
		if c.Storage.Path == "" {
			return errors.New("storage.path is required for the sqlite driver")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if !validThreshold(c.Knowledge.Threshold) {
		return fmt.Errorf("knowledge.threshold %v must be in (0,1]", c.Knowledge.Threshold)
	}
	if c.Cache.TTL < 0 {
		return errors.New("cache.ttl must not be negative")
	}
	if c.Live.Timeout < 0 {
		return errors.New("live.timeout must not be negative")
	}
	if c.Live.RateLimit < 0 {
		return errors.New("live.rate_limit must not be negative")
	}
	for i, p := range c.Live.Providers {
		if strings.TrimSpace(p.Name) == "" {
			return fmt.Errorf("live.providers[%d]: name is required", i)
		}
	}
	return nil
}

func validThreshold(t float64) bool { return t > 0 && t <= 1 }

// Environment overrides.
const (
	EnvAddr        = "ERRDOCTOR_ADDR"
	EnvLogLevel    = "ERRDOCTOR_LOG_LEVEL"
	EnvStoragePath = "ERRDOCTOR_STORAGE_PATH"
	EnvKBThreshold = "ERRDOCTOR_KB_THRESHOLD"
	EnvRateLimit   = "ERRDOCTOR_RATE_LIMIT"
)

// ApplyEnv overrides fields from environment variables read through getenv.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := getenv(EnvAddr); v != "" {
		c.Server.Addr = v
	}
	if v := getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
	if v := getenv(EnvStoragePath); v != "" {
		c.Storage.Path = v
	}
	if v := getenv(EnvKBThreshold); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvKBThreshold, err)
		}
		if !validThreshold(f) {
			return fmt.Errorf("%s: %v must be in (0,1]", EnvKBThreshold, f)
		}
		c.Knowledge.Threshold = f
	}
	if v := getenv(EnvRateLimit); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvRateLimit, err)
		}
		c.Live.RateLimit = n
	}
	return nil
}

// ExpandHome replaces a leading "~/" with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// Resolve loads path (or the defaults when path is empty) and applies environment overrides.
func Resolve(path string, getenv func(string) string) (*Config, error) {
	cfg := Default()
	if path != "" {
		var err error
		if cfg, err = LoadFile(ExpandHome(path)); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(getenv); err != nil {
		return nil, err
	}
	return cfg, nil
}
