// Package config handles configuration loading from YAML files and environment variables.
// Configuration precedence: CLI flags > environment variables > config file >
// embedded defaults > built-in defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Duration is a wrapper around time.Duration that supports YAML unmarshaling
// from human-readable strings like "10s", "30s", "1m".
type Duration struct {
	time.Duration
}

// UnmarshalYAML implements the yaml.Unmarshaler interface for Duration.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		parsed, err := time.ParseDuration(value.Value)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", value.Value, err)
		}
		d.Duration = parsed
		return nil
	default:
		return fmt.Errorf("unsupported duration format: %v", value.Kind)
	}
}

// MarshalYAML implements the yaml.Marshaler interface for Duration.
func (d Duration) MarshalYAML() (interface{}, error) {
	return d.Duration.String(), nil
}

// Config holds all barline configuration.
type Config struct {
	Collection CollectionConfig `yaml:"collection"`
	CPU        CPUConfig        `yaml:"cpu"`
	Power      PowerConfig      `yaml:"power"`
	Volume     VolumeConfig     `yaml:"volume"`
	Media      MediaConfig      `yaml:"media"`
	Accessory  AccessoryConfig  `yaml:"accessory"`
	Clock      ClockConfig      `yaml:"clock"`
	Publish    PublishConfig    `yaml:"publish"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// CollectionConfig holds cycle timing.
type CollectionConfig struct {
	Interval Duration `yaml:"interval"`
	// Warmup is the wait between priming the sources and the first cycle.
	Warmup Duration `yaml:"warmup"`
}

// CPUConfig points at the kernel's aggregate counters.
type CPUConfig struct {
	StatPath string `yaml:"stat_path"`
}

// PowerConfig names the power supply directory in sysfs.
type PowerConfig struct {
	SupplyDir string `yaml:"supply_dir"`
}

// VolumeConfig holds the mixer query command.
type VolumeConfig struct {
	Command string   `yaml:"command"`
	Args    []string `yaml:"args"`
}

// MediaConfig holds media player settings.
type MediaConfig struct {
	Match     string `yaml:"match"`
	TextLimit int    `yaml:"text_limit"`
}

// AccessoryConfig holds the background battery poller settings.
type AccessoryConfig struct {
	Enabled  bool     `yaml:"enabled"`
	Match    string   `yaml:"match"`
	Interval Duration `yaml:"interval"`
}

// ClockConfig holds the strftime layout of the clock block.
type ClockConfig struct {
	Format string `yaml:"format"`
}

// PublishConfig names the root window title setter.
type PublishConfig struct {
	Command string `yaml:"command"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Collection: CollectionConfig{
			Interval: Duration{10 * time.Second},
			Warmup:   Duration{1 * time.Second},
		},
		CPU: CPUConfig{
			StatPath: "/proc/stat",
		},
		Power: PowerConfig{
			SupplyDir: "/sys/class/power_supply/BAT0",
		},
		Volume: VolumeConfig{
			Command: "pamixer",
			Args:    []string{"--get-volume"},
		},
		Media: MediaConfig{
			Match:     "mpris",
			TextLimit: 40,
		},
		Accessory: AccessoryConfig{
			Enabled:  true,
			Match:    "headset",
			Interval: Duration{30 * time.Second},
		},
		Clock: ClockConfig{
			Format: "%B/%d %I:%M %p",
		},
		Publish: PublishConfig{
			Command: "xsetroot",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// CLIOverrides holds values from command-line flags.
// Zero values are treated as "not set" and skipped.
type CLIOverrides struct {
	LogLevel string
	Interval time.Duration
}

// Locate searches standard config file paths and returns the first one found.
// Returns empty string if no config file exists.
func Locate() string {
	for _, p := range configSearchPaths() {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// LoadLayered loads configuration with the full precedence chain:
// CLI flags > env vars > external YAML file > embedded bytes > defaults.
//
// An optional configPath argument controls external-file discovery:
//   - omitted: auto-discover via Locate()
//   - explicit value: use that path ("" means no external file)
//
// An explicitly named file that does not exist is an error; a discovered
// one is read if present.
func LoadLayered(cli CLIOverrides, embedded []byte, configPath ...string) (*Config, error) {
	cfg := DefaultConfig()

	// Layer 1: embedded config
	if len(embedded) > 0 {
		if err := yaml.Unmarshal(embedded, cfg); err != nil {
			return nil, fmt.Errorf("parsing embedded config: %w", err)
		}
	}

	// Layer 2: external YAML file
	filePath := Locate()
	explicit := len(configPath) > 0
	if explicit {
		filePath = configPath[0]
	}
	if filePath != "" {
		data, err := os.ReadFile(filePath)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config file %s: %w", filePath, err)
			}
		case explicit || !os.IsNotExist(err):
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	// Layer 3: environment variables
	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	// Layer 4: CLI flags
	if cli.LogLevel != "" {
		cfg.Logging.Level = cli.LogLevel
	}
	if cli.Interval > 0 {
		cfg.Collection.Interval = Duration{cli.Interval}
	}

	return cfg, nil
}

// WriteConfig serializes the config to a YAML file at the given path.
// Creates parent directories if needed.
func WriteConfig(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

func applyEnvOverrides(cfg *Config) error {
	if level := os.Getenv("BARLINE_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
	if raw := os.Getenv("BARLINE_INTERVAL"); raw != "" {
		interval, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("BARLINE_INTERVAL: %w", err)
		}
		cfg.Collection.Interval = Duration{interval}
	}
	return nil
}

// Validate checks that the configuration can drive the status loop.
func (c *Config) Validate() error {
	if c.Collection.Interval.Duration <= 0 {
		return fmt.Errorf("collection interval must be positive (got %s)", c.Collection.Interval)
	}
	if c.Collection.Warmup.Duration < 0 {
		return fmt.Errorf("collection warmup must not be negative (got %s)", c.Collection.Warmup)
	}
	if c.Media.TextLimit <= 0 {
		return fmt.Errorf("media text limit must be positive (got %d)", c.Media.TextLimit)
	}
	if c.Accessory.Enabled && c.Accessory.Interval.Duration <= 0 {
		return fmt.Errorf("accessory interval must be positive (got %s)", c.Accessory.Interval)
	}
	if c.Publish.Command == "" {
		return fmt.Errorf("publish command is required")
	}
	if _, err := zapcore.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging level: %w", err)
	}
	return nil
}
