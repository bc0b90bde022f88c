package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points discovery at an empty directory so a real config on the
// test machine never leaks in.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)
	t.Setenv("BARLINE_LOG_LEVEL", "")
	t.Setenv("BARLINE_INTERVAL", "")
	return dir
}

func TestLoadLayered_CLIOverridesEverything(t *testing.T) {
	isolate(t)
	embedded := []byte("logging:\n  level: warn\ncollection:\n  interval: 20s\n")
	t.Setenv("BARLINE_LOG_LEVEL", "error")
	t.Setenv("BARLINE_INTERVAL", "3s")
	cli := CLIOverrides{LogLevel: "debug", Interval: 5 * time.Second}

	cfg, err := LoadLayered(cli, embedded, "")
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 5*time.Second, cfg.Collection.Interval.Duration)
}

func TestLoadLayered_EnvOverridesEmbed(t *testing.T) {
	isolate(t)
	embedded := []byte("logging:\n  level: warn\nclock:\n  format: \"%H:%M\"\n")
	t.Setenv("BARLINE_LOG_LEVEL", "error")

	cfg, err := LoadLayered(CLIOverrides{}, embedded, "")
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.Logging.Level)
	assert.Equal(t, "%H:%M", cfg.Clock.Format)
}

func TestLoadLayered_InvalidEnvInterval(t *testing.T) {
	isolate(t)
	t.Setenv("BARLINE_INTERVAL", "often")

	_, err := LoadLayered(CLIOverrides{}, nil, "")
	require.Error(t, err)
}

func TestLoadLayered_FileOverridesEmbed(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("volume:\n  command: amixer\n  args: [get, Master]\n"), 0o644))
	embedded := []byte("volume:\n  command: wpctl\n")

	cfg, err := LoadLayered(CLIOverrides{}, embedded, path)
	require.NoError(t, err)
	assert.Equal(t, "amixer", cfg.Volume.Command)
	assert.Equal(t, []string{"get", "Master"}, cfg.Volume.Args)
}

func TestLoadLayered_DiscoversXDGConfig(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "barline", "config.yaml")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("power:\n  supply_dir: /sys/class/power_supply/BAT1\n"), 0o644))

	assert.Equal(t, path, Locate())

	cfg, err := LoadLayered(CLIOverrides{}, nil)
	require.NoError(t, err)
	assert.Equal(t, "/sys/class/power_supply/BAT1", cfg.Power.SupplyDir)
}

func TestLoadLayered_MissingExplicitFile(t *testing.T) {
	dir := isolate(t)

	_, err := LoadLayered(CLIOverrides{}, nil, filepath.Join(dir, "nope.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadLayered_BadYAML(t *testing.T) {
	isolate(t)

	_, err := LoadLayered(CLIOverrides{}, []byte("collection:\n  interval: [1, 2]\n"), "")
	require.Error(t, err)
}

func TestLoadLayered_DefaultsWhenEmpty(t *testing.T) {
	isolate(t)

	cfg, err := LoadLayered(CLIOverrides{}, nil, "")
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, cfg.Collection.Interval.Duration)
	assert.Equal(t, time.Second, cfg.Collection.Warmup.Duration)
	assert.Equal(t, 30*time.Second, cfg.Accessory.Interval.Duration)
	assert.Equal(t, 40, cfg.Media.TextLimit)
	assert.Equal(t, "xsetroot", cfg.Publish.Command)
	require.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero interval", func(c *Config) { c.Collection.Interval = Duration{} }},
		{"negative warmup", func(c *Config) { c.Collection.Warmup = Duration{-time.Second} }},
		{"zero text limit", func(c *Config) { c.Media.TextLimit = 0 }},
		{"zero accessory interval", func(c *Config) { c.Accessory.Interval = Duration{} }},
		{"no publish command", func(c *Config) { c.Publish.Command = "" }},
		{"unknown log level", func(c *Config) { c.Logging.Level = "chatty" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestValidate_DisabledAccessorySkipsChecks(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Accessory.Enabled = false
	cfg.Accessory.Interval = Duration{}

	assert.NoError(t, cfg.Validate())
}

func TestWriteConfig_RoundTrips(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "sub", "config.yaml")

	cfg := DefaultConfig()
	cfg.Collection.Interval = Duration{2 * time.Second}
	require.NoError(t, WriteConfig(cfg, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "interval: 2s")

	loaded, err := LoadLayered(CLIOverrides{}, nil, path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
