package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleYAML = `
symbol: "EURUSD"
use_simulation: true

normal_config:
  tick_interval_seconds: 5
  heartbeat_interval_minutes: 10
  log_directory: "logs"
  state_directory: "state"
  deviation_points: 5

logs:
  log_level: "info"
  max_size_mb: 10
  max_backups: 3
  max_age_days: 7
  compress: true

simulation:
  digits: 4
  point: 0.0001
  tick_size: 0.0001
  volume_min: 0.01
  volume_max: 100
  volume_step: 0.01
  filling_modes: ["fok", "ioc", "return"]
  bid: 1.1080
  ask: 1.1082
  positions:
    - side: "buy"
      volume: 1.0
      open_price: 1.1000

filter:
  days_allowed: ["Mon", "Tue", "Wed", "Thu", "Fri"]
  session_start: "08:00"
  session_end: "17:00"

price_lines:
  start: 1.0
  end: 2.0
  step: 0.1
  add: 0.02

order_maintenance:
  enabled: true
  remove_order_types: ["BUY_STOP"]
  use_price_lines: true
  band_margin_lines: 1

tasks:
  - name: "break_even"
    enabled: true
    config:
      activation_distance: 0.0050
      lock_in_offset: 0.0010
  - name: "break_even_stages"
    enabled: false
    config:
      stages:
        - trigger: 0.0050
          stop: 0.0010
  - name: "trailing_stop"
    enabled: true
    config:
      distance: 0.0020
`

func writeConfig(t *testing.T, yaml string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0644))
	return path
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, sampleYAML))
	require.NoError(t, err)

	require.Equal(t, "EURUSD", cfg.Symbol)
	require.True(t, cfg.UseSimulation)
	require.Equal(t, 5, cfg.Normal.TickIntervalSeconds)
	require.Equal(t, 5, cfg.Normal.DeviationPoints)
	require.Equal(t, "info", cfg.Logs.LogLevel)

	// Disabled tasks are skipped; yaml order is preserved for enabled ones.
	require.Equal(t, []string{"break_even", "trailing_stop"}, cfg.EnabledTasks)
	require.NotNil(t, cfg.BreakEven)
	require.InDelta(t, 0.0050, cfg.BreakEven.ActivationDistance, 1e-9)
	require.Nil(t, cfg.Stages)
	require.NotNil(t, cfg.Trailing)
	require.InDelta(t, 0.0020, cfg.Trailing.Distance, 1e-9)

	require.NotNil(t, cfg.PriceLines)
	require.InDelta(t, 0.1, cfg.PriceLines.Step, 1e-9)
	require.True(t, cfg.Maintenance.Enabled)
	require.Len(t, cfg.Simulation.Positions, 1)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "not found")
}

func TestValidateRejectsIncompleteConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(cfg *Config)
		wantMsg string
	}{
		{"missing symbol", func(c *Config) { c.Symbol = "" }, "'symbol'"},
		{"missing tick interval", func(c *Config) { c.Normal.TickIntervalSeconds = 0 }, "tick_interval_seconds"},
		{"missing log level", func(c *Config) { c.Logs.LogLevel = "" }, "log_level"},
		{"no tasks", func(c *Config) { c.EnabledTasks = nil }, "at least one enabled task"},
		{"bad break even", func(c *Config) { c.BreakEven.ActivationDistance = 0 }, "activation_distance"},
		{"bad trailing", func(c *Config) { c.Trailing.Distance = -1 }, "distance"},
		{"half session window", func(c *Config) { c.Filter.SessionEnd = "" }, "session_start"},
		{"bad price lines", func(c *Config) { c.PriceLines.Step = 0 }, "price_lines"},
		{"simulation without quote", func(c *Config) { c.Simulation.Bid = 0 }, "bid/ask"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadConfig(writeConfig(t, sampleYAML))
			require.NoError(t, err)
			tt.mutate(cfg)
			err = cfg.Validate()
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestLoadConfigUnknownTask(t *testing.T) {
	yaml := `
symbol: "EURUSD"
normal_config:
  tick_interval_seconds: 5
  heartbeat_interval_minutes: 10
  log_directory: "logs"
  state_directory: "state"
logs:
  log_level: "info"
  max_size_mb: 10
  max_backups: 3
  max_age_days: 7
tasks:
  - name: "martingale"
    enabled: true
    config: {}
`
	_, err := LoadConfig(writeConfig(t, yaml))
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown task name")
}
