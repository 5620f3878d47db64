package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "data/store.json", cfg.Store.Path)
	assert.Equal(t, 2112, cfg.Metrics.PrometheusPort)
	assert.False(t, cfg.Metrics.PrometheusEnabled)
	assert.Equal(t, 5, cfg.Sweep.IntervalMinutes)
	assert.Equal(t, 3, cfg.Sweep.Attempts)
	assert.Equal(t, 500, cfg.Sweep.BackoffMS)
	assert.Equal(t, "evpark/notifications", cfg.Notifier.Topic)
	assert.False(t, cfg.Notifier.Enabled)
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
store:
  path: /var/lib/evpark/store.json
metrics:
  prometheus_enabled: true
  prometheus_port: 9109
sweep:
  interval_minutes: 2
  retryable_patterns:
    - "flaky backend"
notifier:
  enabled: true
  broker: tcp://localhost:1883
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/evpark/store.json", cfg.Store.Path)
	assert.True(t, cfg.Metrics.PrometheusEnabled)
	assert.Equal(t, 9109, cfg.Metrics.PrometheusPort)
	assert.Equal(t, 2, cfg.Sweep.IntervalMinutes)
	assert.Equal(t, []string{"flaky backend"}, cfg.Sweep.RetryablePatterns)
	assert.Equal(t, "tcp://localhost:1883", cfg.Notifier.Broker)
}

func TestLoadJSON(t *testing.T) {
	path := writeConfig(t, "config.json", `{"store":{"path":"here.json"}}`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "here.json", cfg.Store.Path)
}

func TestLoadUnsupportedFormat(t *testing.T) {
	path := writeConfig(t, "config.toml", "x = 1")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported config format")
}

func TestEnvOverrides(t *testing.T) {
	path := writeConfig(t, "config.yaml", "store:\n  path: from-file.json\n")
	t.Setenv("EVPARK_STORE__PATH", "from-env.json")
	t.Setenv("EVPARK_SWEEP__INTERVAL_MINUTES", "9")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env.json", cfg.Store.Path)
	assert.Equal(t, 9, cfg.Sweep.IntervalMinutes)
}

func TestLoadRejectsInvalidSweep(t *testing.T) {
	path := writeConfig(t, "config.yaml", "sweep:\n  interval_minutes: -1\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "interval_minutes")
}

func TestLoadRejectsEnabledNotifierWithoutBroker(t *testing.T) {
	path := writeConfig(t, "config.yaml", "notifier:\n  enabled: true\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker is required")
}
