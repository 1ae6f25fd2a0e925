// Package config holds the runtime configuration of the robofleet CLI:
// registry location, safety margin, selection weights and logging.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"robofleet/internal/feasibility"
	"robofleet/internal/selector"
)

// Config holds all robofleet configuration.
type Config struct {
	// RegistryPath points at the robot registry YAML file. Empty means
	// the builtin fleet.
	RegistryPath string `yaml:"registry_path"`

	// SafetyMargin is the usable fraction of every physical limit.
	SafetyMargin float64 `yaml:"safety_margin"`

	// Selection holds the criterion weights.
	Selection SelectionConfig `yaml:"selection"`

	// Logging configures the zap logger.
	Logging LoggingConfig `yaml:"logging"`
}

// SelectionConfig configures the robot selector weights.
type SelectionConfig struct {
	PayloadWeight float64 `yaml:"payload_weight"`
	ReachWeight   float64 `yaml:"reach_weight"`
	DoFWeight     float64 `yaml:"dof_weight"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		SafetyMargin: feasibility.DefaultSafetyMargin,
		Selection: SelectionConfig{
			PayloadWeight: 0.6,
			ReachWeight:   0.2,
			DoFWeight:     0.2,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load loads configuration from a YAML file, returning defaults when
// the file does not exist.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if path := os.Getenv("ROBOFLEET_REGISTRY"); path != "" {
		c.RegistryPath = path
	}
	if margin := os.Getenv("ROBOFLEET_SAFETY_MARGIN"); margin != "" {
		if v, err := strconv.ParseFloat(margin, 64); err == nil {
			c.SafetyMargin = v
		}
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.SafetyMargin <= 0 || c.SafetyMargin > 1 {
		return fmt.Errorf("safety margin must be in (0, 1], got %g", c.SafetyMargin)
	}
	w := c.Selection
	if w.PayloadWeight < 0 || w.ReachWeight < 0 || w.DoFWeight < 0 {
		return fmt.Errorf("selection weights must be non-negative")
	}
	if w.PayloadWeight+w.ReachWeight+w.DoFWeight <= 0 {
		return fmt.Errorf("selection weights must not all be zero")
	}
	return nil
}

// Weights returns the configured selection weights.
func (c *Config) Weights() selector.Weights {
	return selector.Weights{
		Payload: c.Selection.PayloadWeight,
		Reach:   c.Selection.ReachWeight,
		DoF:     c.Selection.DoFWeight,
	}
}
