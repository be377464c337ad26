package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"codeberg.org/mutker/perfgov/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tempDir := t.TempDir()

	configContent := []byte(`
interval = 10
profile = "performance"
auto = false
monitor = true
log_level = "debug"
metrics = true
database = "/path/to/metrics.db"
listen = "127.0.0.1:9812"
`)
	configPath := filepath.Join(tempDir, "perfgov.toml")
	err := os.WriteFile(configPath, configContent, 0o600)
	require.NoError(t, err)

	t.Setenv("PERFGOV_CONFIG", configPath)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.Interval, "Expected Interval 10")
	assert.Equal(t, "performance", cfg.Profile, "Expected Profile performance")
	assert.False(t, cfg.Auto, "Expected Auto false")
	assert.True(t, cfg.AutoSet, "Expected AutoSet true when the config names auto")
	assert.True(t, cfg.Monitor, "Expected Monitor true")
	assert.Equal(t, "debug", cfg.LogLevel, "Expected LogLevel debug")
	assert.True(t, cfg.Metrics, "Expected Metrics true")
	assert.Equal(t, "/path/to/metrics.db", cfg.MetricsDB, "Expected MetricsDB /path/to/metrics.db")
	assert.Equal(t, "127.0.0.1:9812", cfg.Listen, "Expected Listen 127.0.0.1:9812")
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PERFGOV_CONFIG", "")

	cfg, err := config.Load()
	require.NoError(t, err, "Failed to load config")

	assert.Equal(t, config.DefaultInterval, cfg.Interval, "Expected default Interval 5")
	assert.Empty(t, cfg.Profile, "Expected no startup profile by default")
	assert.False(t, cfg.AutoSet, "Expected AutoSet false when nothing names auto")
	assert.False(t, cfg.Monitor, "Expected default Monitor false")
	assert.Equal(t, config.DefaultLogLevel, cfg.LogLevel, "Expected default LogLevel info")
	assert.False(t, cfg.Metrics, "Expected default Metrics false")
	assert.Empty(t, cfg.Listen, "Expected status server disabled by default")
}

func TestLoadConfigFileInvalidFormat(t *testing.T) {
	tempDir := t.TempDir()

	configContent := []byte(`
This is not a valid TOML file
`)
	configPath := filepath.Join(tempDir, "perfgov.toml")
	err := os.WriteFile(configPath, configContent, 0o600)
	require.NoError(t, err)

	t.Setenv("PERFGOV_CONFIG", configPath)

	_, err = config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Failed to read configuration")
}

func TestInvalidLogLevel(t *testing.T) {
	tempDir := t.TempDir()

	configContent := []byte(`
log_level = "invalid"
`)
	configPath := filepath.Join(tempDir, "perfgov.toml")
	err := os.WriteFile(configPath, configContent, 0o600)
	require.NoError(t, err)

	t.Setenv("PERFGOV_CONFIG", configPath)

	_, err = config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid log level")
}

func TestInvalidProfile(t *testing.T) {
	tempDir := t.TempDir()

	configContent := []byte(`
profile = "ludicrous"
`)
	configPath := filepath.Join(tempDir, "perfgov.toml")
	err := os.WriteFile(configPath, configContent, 0o600)
	require.NoError(t, err)

	t.Setenv("PERFGOV_CONFIG", configPath)

	_, err = config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid profile name")
}

func TestInvalidInterval(t *testing.T) {
	tempDir := t.TempDir()

	configContent := []byte(`
interval = 0
`)
	configPath := filepath.Join(tempDir, "perfgov.toml")
	err := os.WriteFile(configPath, configContent, 0o600)
	require.NoError(t, err)

	t.Setenv("PERFGOV_CONFIG", configPath)

	_, err = config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid interval value")
}
