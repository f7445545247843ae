// Package system loads the user-level configuration (~/.jessica/config.yaml).
package system

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	apperrors "github.com/jessica-dev/jessica/internal/application/errors"
	"github.com/jessica-dev/jessica/internal/domain/services"
)

const (
	// DirName is the per-user configuration directory below $HOME.
	DirName = ".jessica"
	// FileName is the configuration file inside DirName.
	FileName = "config.yaml"

	DefaultGracePeriod = 5 * time.Second
	DefaultEventBuffer = 256
	DefaultCacheSize   = 64
)

// Config represents the global configuration file.
type Config struct {
	Tool        ToolConfig       `yaml:"tool"`
	ProfilesDir string           `yaml:"profiles_dir"`
	Classifier  ClassifierConfig `yaml:"classifier"`
	Abort       AbortConfig      `yaml:"abort"`
	Events      EventsConfig     `yaml:"events"`
	Tileset     TilesetConfig    `yaml:"tileset"`
}

// ToolConfig describes how the external composer is invoked.
type ToolConfig struct {
	// Env holds extra environment variables for the composer process
	Env map[string]string `yaml:"env"`
	// Command is the argv prefix; profile arguments are appended to it
	Command []string `yaml:"command"`
	WorkDir string   `yaml:"work_dir"`
}

// EnvList returns Env as sorted KEY=value pairs.
func (t ToolConfig) EnvList() []string {
	out := make([]string, 0, len(t.Env))
	for k, v := range t.Env {
		out = append(out, k+"="+v)
	}
	sort.Strings(out)
	return out
}

// AbortConfig controls how aborted jobs are stopped.
type AbortConfig struct {
	// GracePeriod is how long a terminated composer may take to exit
	// before it is killed, e.g. "5s".
	GracePeriod string `yaml:"grace_period"`
}

// EventsConfig tunes event delivery.
type EventsConfig struct {
	Buffer int `yaml:"buffer"`
}

// TilesetConfig tunes tileset inspection.
type TilesetConfig struct {
	CacheSize int `yaml:"cache_size"`
}

// ClassifierConfig adds user rules to the built-in message table.
type ClassifierConfig struct {
	Rules []RuleConfig `yaml:"rules"`
}

// RuleConfig is the textual form of a classification rule.
type RuleConfig struct {
	Name     string `yaml:"name"`
	Pattern  string `yaml:"pattern"`
	Severity string `yaml:"severity"`
	Kind     string `yaml:"kind"`
	Note     string `yaml:"note"`
}

// DefaultDir returns ~/.jessica.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to find home directory: %w", err)
	}
	return filepath.Join(home, DirName), nil
}

// DefaultPath returns ~/.jessica/config.yaml.
func DefaultPath() (string, error) {
	dir, err := DefaultDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, FileName), nil
}

// DefaultConfig returns a Config with defaults for all fields.
// This is used when no config file exists.
func DefaultConfig() *Config {
	profilesDir := "profiles"
	if dir, err := DefaultDir(); err == nil {
		profilesDir = filepath.Join(dir, "profiles")
	}
	return &Config{
		Tool: ToolConfig{
			Command: []string{"python3", "compose.py"},
			Env:     map[string]string{"PYTHONUNBUFFERED": "1"},
		},
		ProfilesDir: profilesDir,
		Abort:       AbortConfig{GracePeriod: DefaultGracePeriod.String()},
		Events:      EventsConfig{Buffer: DefaultEventBuffer},
		Tileset:     TilesetConfig{CacheSize: DefaultCacheSize},
	}
}

// GracePeriodDuration parses Abort.GracePeriod.
func (c *Config) GracePeriodDuration() (time.Duration, error) {
	if c.Abort.GracePeriod == "" {
		return DefaultGracePeriod, nil
	}
	d, err := time.ParseDuration(c.Abort.GracePeriod)
	if err != nil {
		return 0, apperrors.NewConfigurationError("abort.grace_period", "invalid duration", err)
	}
	if d <= 0 {
		return 0, apperrors.NewConfigurationError("abort.grace_period",
			fmt.Sprintf("must be positive, got %s", d), nil)
	}
	return d, nil
}

// CompileRules compiles the user classification rules in file order.
func (c *Config) CompileRules() ([]services.ClassificationRule, error) {
	rules := make([]services.ClassificationRule, 0, len(c.Classifier.Rules))
	for i, rc := range c.Classifier.Rules {
		name := rc.Name
		if name == "" {
			name = fmt.Sprintf("user-%d", i+1)
		}
		r, err := services.CompileRule(name, rc.Pattern, rc.Severity, rc.Kind, rc.Note)
		if err != nil {
			return nil, apperrors.NewConfigurationError("classifier.rules", err.Error(), err)
		}
		rules = append(rules, r)
	}
	return rules, nil
}

// Validate checks the fields that cannot be defaulted.
func (c *Config) Validate() error {
	var errs []error
	if len(c.Tool.Command) == 0 || strings.TrimSpace(c.Tool.Command[0]) == "" {
		errs = append(errs, apperrors.NewConfigurationError("tool.command", "must name the compose program", nil))
	}
	if _, err := c.GracePeriodDuration(); err != nil {
		errs = append(errs, err)
	}
	if c.Events.Buffer < 0 {
		errs = append(errs, apperrors.NewConfigurationError("events.buffer", "must not be negative", nil))
	}
	if c.Tileset.CacheSize < 0 {
		errs = append(errs, apperrors.NewConfigurationError("tileset.cache_size", "must not be negative", nil))
	}
	if _, err := c.CompileRules(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// ConfigLoader loads system configuration from disk.
type ConfigLoader struct{}

// NewConfigLoader creates a new system config loader.
func NewConfigLoader() *ConfigLoader {
	return &ConfigLoader{}
}

// Load reads the configuration at path. Fields missing from the file keep
// their defaults; a missing file yields DefaultConfig().
func (l *ConfigLoader) Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	//nolint:gosec // G304: path is the user's own config file
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read system config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse system config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid system config %s: %w", path, err)
	}
	return cfg, nil
}
