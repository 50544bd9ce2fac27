// config/config.go
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"profit_guard_go/logs"
	"profit_guard_go/pricegrid"
	"profit_guard_go/task"
)

// BreakEvenConfig holds the parameters of the one-shot break-even task.
type BreakEvenConfig struct {
	ActivationDistance float64 `yaml:"activation_distance"`
	LockInOffset       float64 `yaml:"lock_in_offset"`
}

// BreakEvenStagesConfig holds the staged break-even table.
type BreakEvenStagesConfig struct {
	Stages []task.Stage `yaml:"stages"`
}

// TrailingStopConfig holds the trailing-stop distance.
type TrailingStopConfig struct {
	Distance float64 `yaml:"distance"`
}

// FilterConfig narrows which positions get tasks attached. All fields are
// optional; an empty block means every position is eligible.
type FilterConfig struct {
	DaysAllowed  []string `yaml:"days_allowed"`  // e.g. ["Mon", "Tue", ...]
	SessionStart string   `yaml:"session_start"` // "HH:MM", both or neither
	SessionEnd   string   `yaml:"session_end"`
	IDFile       string   `yaml:"id_file"` // CSV whitelist of position IDs
}

// MaintenanceConfig controls the pending-order sweep.
type MaintenanceConfig struct {
	Enabled          bool     `yaml:"enabled"`
	RemoveOrderTypes []string `yaml:"remove_order_types"`
	UsePriceLines    bool     `yaml:"use_price_lines"` // cancel orders outside the line band
	BandMarginLines  int      `yaml:"band_margin_lines"`
}

// SimPosition seeds one open position into the simulated venue.
type SimPosition struct {
	Side      string  `yaml:"side"` // "buy" or "sell"
	Volume    float64 `yaml:"volume"`
	OpenPrice float64 `yaml:"open_price"`
	StopLoss  float64 `yaml:"stop_loss"`
}

// SimulationConfig describes the simulated venue: the instrument rules and
// the starting book.
type SimulationConfig struct {
	Digits       int           `yaml:"digits"`
	Point        float64       `yaml:"point"`
	TickSize     float64       `yaml:"tick_size"`
	VolumeMin    float64       `yaml:"volume_min"`
	VolumeMax    float64       `yaml:"volume_max"`
	VolumeStep   float64       `yaml:"volume_step"`
	FillingModes []string      `yaml:"filling_modes"` // subset of fok/ioc/return
	Bid          float64       `yaml:"bid"`
	Ask          float64       `yaml:"ask"`
	Positions    []SimPosition `yaml:"positions"`
}

// NormalConfig holds all general, non-task-specific configuration.
type NormalConfig struct {
	TickIntervalSeconds      int    `yaml:"tick_interval_seconds"`
	HeartbeatIntervalMinutes int    `yaml:"heartbeat_interval_minutes"`
	LogDirectory             string `yaml:"log_directory"`
	StateDirectory           string `yaml:"state_directory"`
	DeviationPoints          int    `yaml:"deviation_points"`
}

// TaskConfig is a generic container for a single task's configuration.
// Config stays an interface{} so each task can define its own shape.
type TaskConfig struct {
	Name    string      `yaml:"name"`
	Enabled bool        `yaml:"enabled"`
	Config  interface{} `yaml:"config"`
}

// Config is the top-level configuration structure.
type Config struct {
	Symbol        string             `yaml:"symbol"`
	UseSimulation bool               `yaml:"use_simulation"`
	Normal        *NormalConfig      `yaml:"normal_config"`
	Logs          *logs.Config       `yaml:"logs"`
	Filter        *FilterConfig      `yaml:"filter"`
	PriceLines    *pricegrid.Setting `yaml:"price_lines"`
	Maintenance   *MaintenanceConfig `yaml:"order_maintenance"`
	Simulation    *SimulationConfig  `yaml:"simulation"`

	BreakEven *BreakEvenConfig       `yaml:"-"`
	Stages    *BreakEvenStagesConfig `yaml:"-"`
	Trailing  *TrailingStopConfig    `yaml:"-"`

	// EnabledTasks preserves the task order from the yaml file; tasks run
	// in this order every cycle.
	EnabledTasks []string `yaml:"-"`
}

// NewConfig allocates the nested blocks. All critical parameters MUST be
// provided in the config.yaml file; validation enforces it.
func NewConfig() *Config {
	return &Config{
		Logs:   &logs.Config{},
		Normal: &NormalConfig{},
	}
}

// LoadConfig loads configuration from a given path and validates it.
func LoadConfig(path string) (*Config, error) {
	cfg := NewConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("Error: Config file not found at %s. Program cannot run without a config file", path)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var rawCfg struct {
		Symbol        string             `yaml:"symbol"`
		UseSimulation bool               `yaml:"use_simulation"`
		Normal        *NormalConfig      `yaml:"normal_config"`
		Logs          *logs.Config       `yaml:"logs"`
		Filter        *FilterConfig      `yaml:"filter"`
		PriceLines    *pricegrid.Setting `yaml:"price_lines"`
		Maintenance   *MaintenanceConfig `yaml:"order_maintenance"`
		Simulation    *SimulationConfig  `yaml:"simulation"`
		Tasks         []TaskConfig       `yaml:"tasks"`
	}

	if err := yaml.Unmarshal(data, &rawCfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal yaml: %w", err)
	}

	if rawCfg.Symbol != "" {
		cfg.Symbol = rawCfg.Symbol
	}
	cfg.UseSimulation = rawCfg.UseSimulation
	if rawCfg.Normal != nil {
		cfg.Normal = rawCfg.Normal
	}
	if rawCfg.Logs != nil {
		cfg.Logs = rawCfg.Logs
	}
	cfg.Filter = rawCfg.Filter
	cfg.PriceLines = rawCfg.PriceLines
	cfg.Maintenance = rawCfg.Maintenance
	cfg.Simulation = rawCfg.Simulation

	// Unmarshal specific task configs based on their 'name'. Order in the
	// yaml file is the order tasks are evaluated in.
	for _, t := range rawCfg.Tasks {
		if !t.Enabled {
			continue
		}

		configBytes, err := yaml.Marshal(t.Config)
		if err != nil {
			return nil, fmt.Errorf("failed to re-marshal task config '%s': %w", t.Name, err)
		}

		switch t.Name {
		case "break_even":
			cfg.BreakEven = &BreakEvenConfig{}
			if err := yaml.Unmarshal(configBytes, cfg.BreakEven); err != nil {
				return nil, fmt.Errorf("failed to unmarshal break_even config: %w", err)
			}
		case "break_even_stages":
			cfg.Stages = &BreakEvenStagesConfig{}
			if err := yaml.Unmarshal(configBytes, cfg.Stages); err != nil {
				return nil, fmt.Errorf("failed to unmarshal break_even_stages config: %w", err)
			}
		case "trailing_stop":
			cfg.Trailing = &TrailingStopConfig{}
			if err := yaml.Unmarshal(configBytes, cfg.Trailing); err != nil {
				return nil, fmt.Errorf("failed to unmarshal trailing_stop config: %w", err)
			}
		default:
			return nil, fmt.Errorf("Config error: unknown task name '%s' (expected break_even, break_even_stages or trailing_stop)", t.Name)
		}
		cfg.EnabledTasks = append(cfg.EnabledTasks, t.Name)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks the logical consistency and completeness of the entire
// configuration.
func (c *Config) Validate() error {
	if c.Symbol == "" {
		return fmt.Errorf("Critical config missing: 'symbol' must be explicitly specified in config.yaml")
	}

	if c.Normal == nil {
		return fmt.Errorf("Critical config missing: 'normal_config' configuration block must be provided in config.yaml")
	}
	if c.Normal.TickIntervalSeconds <= 0 {
		return fmt.Errorf("Critical config missing: 'normal_config.tick_interval_seconds' must be explicitly specified in config.yaml and be positive")
	}
	if c.Normal.HeartbeatIntervalMinutes <= 0 {
		return fmt.Errorf("Critical config missing: 'normal_config.heartbeat_interval_minutes' must be explicitly specified in config.yaml and be positive")
	}
	if c.Normal.LogDirectory == "" {
		return fmt.Errorf("Critical config missing: 'normal_config.log_directory' must be explicitly specified in config.yaml (e.g., 'logs')")
	}
	if c.Normal.StateDirectory == "" {
		return fmt.Errorf("Critical config missing: 'normal_config.state_directory' must be explicitly specified in config.yaml (e.g., 'state')")
	}
	if c.Normal.DeviationPoints < 0 {
		return fmt.Errorf("Config error: normal_config.deviation_points cannot be negative")
	}

	if c.Logs == nil {
		return fmt.Errorf("Critical config missing: 'logs' configuration block must be provided in config.yaml")
	}
	if c.Logs.LogLevel == "" {
		return fmt.Errorf("Critical config missing: 'logs.log_level' must be explicitly specified in config.yaml (e.g., 'info', 'debug', 'warn', 'error')")
	}
	if c.Logs.MaxSizeMB <= 0 {
		return fmt.Errorf("Critical config missing: 'logs.max_size_mb' must be explicitly specified in config.yaml and be positive")
	}
	if c.Logs.MaxBackups <= 0 {
		return fmt.Errorf("Critical config missing: 'logs.max_backups' must be explicitly specified in config.yaml and be positive")
	}
	if c.Logs.MaxAgeDays <= 0 {
		return fmt.Errorf("Critical config missing: 'logs.max_age_days' must be explicitly specified in config.yaml and be positive")
	}

	if len(c.EnabledTasks) == 0 {
		return fmt.Errorf("Critical config missing: at least one enabled task must be listed under 'tasks' in config.yaml")
	}

	if c.BreakEven != nil {
		if c.BreakEven.ActivationDistance <= 0 {
			return fmt.Errorf("Critical config missing: 'activation_distance' must be specified in the break_even task section and be positive")
		}
		if c.BreakEven.LockInOffset < 0 {
			return fmt.Errorf("Config error: break_even lock_in_offset cannot be negative")
		}
	}
	if c.Stages != nil {
		if len(c.Stages.Stages) == 0 {
			return fmt.Errorf("Critical config missing: 'stages' must list at least one stage in the break_even_stages task section")
		}
		for i, s := range c.Stages.Stages {
			if s.Trigger <= 0 {
				return fmt.Errorf("Config error: break_even_stages stage %d trigger must be positive", i)
			}
			if i > 0 && s.Trigger <= c.Stages.Stages[i-1].Trigger {
				return fmt.Errorf("Config error: break_even_stages stage triggers must be strictly ascending")
			}
			if i > 0 && s.Stop < c.Stages.Stages[i-1].Stop {
				return fmt.Errorf("Config error: break_even_stages stage stops must be non-decreasing")
			}
		}
	}
	if c.Trailing != nil && c.Trailing.Distance <= 0 {
		return fmt.Errorf("Critical config missing: 'distance' must be specified in the trailing_stop task section and be positive")
	}

	if c.Filter != nil {
		if (c.Filter.SessionStart == "") != (c.Filter.SessionEnd == "") {
			return fmt.Errorf("Config error: filter session_start and session_end must be specified together")
		}
	}

	if c.PriceLines != nil {
		if check := pricegrid.CheckSetting(*c.PriceLines); check != pricegrid.CheckPassed {
			return fmt.Errorf("Config error: price_lines rejected: %s", check)
		}
	}

	if c.Maintenance != nil && c.Maintenance.Enabled {
		if len(c.Maintenance.RemoveOrderTypes) == 0 && !c.Maintenance.UsePriceLines {
			return fmt.Errorf("Config error: order_maintenance enabled but neither remove_order_types nor use_price_lines is set")
		}
		if c.Maintenance.UsePriceLines && c.PriceLines == nil {
			return fmt.Errorf("Config error: order_maintenance.use_price_lines requires a 'price_lines' block")
		}
		if c.Maintenance.BandMarginLines < 0 {
			return fmt.Errorf("Config error: order_maintenance.band_margin_lines cannot be negative")
		}
	}

	if c.UseSimulation {
		if c.Simulation == nil {
			return fmt.Errorf("Critical config missing: 'simulation' block must be provided when use_simulation is true")
		}
		s := c.Simulation
		if s.Point <= 0 || s.TickSize <= 0 {
			return fmt.Errorf("Critical config missing: 'simulation.point' and 'simulation.tick_size' must be positive")
		}
		if s.VolumeMin <= 0 || s.VolumeMax < s.VolumeMin || s.VolumeStep <= 0 {
			return fmt.Errorf("Config error: simulation volume limits are inconsistent")
		}
		if len(s.FillingModes) == 0 {
			return fmt.Errorf("Critical config missing: 'simulation.filling_modes' must list at least one mode (fok, ioc, return)")
		}
		if s.Bid <= 0 || s.Ask < s.Bid {
			return fmt.Errorf("Config error: simulation bid/ask quote is inconsistent")
		}
	}

	return nil
}

type EnvConfig struct {
	AccountLogin    string
	AccountPassword string
	ServerName      string
}

func LoadEnvConfig() *EnvConfig {
	return &EnvConfig{
		AccountLogin:    os.Getenv("VENUE_ACCOUNT_LOGIN"),
		AccountPassword: os.Getenv("VENUE_ACCOUNT_PASSWORD"),
		ServerName:      os.Getenv("VENUE_SERVER_NAME"),
	}
}
