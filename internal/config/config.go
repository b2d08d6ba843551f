// Package config loads bus settings from the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Prefix for all bus environment variables (ORDINAL_BUS_DIR etc).
const Prefix = "ORDINAL"

// Config holds the runtime settings for the ordinal bus. Every field is
// overridable via ORDINAL_* environment variables; zero-value fields fall
// back to the defaults below.
type Config struct {
	// BusDir is the root directory holding the three record sets.
	// Defaults to ~/.ordinal/bus.
	BusDir string `envconfig:"BUS_DIR"`

	// PollInterval is the correlator's pause between response checks.
	PollInterval time.Duration `envconfig:"POLL_INTERVAL" default:"500ms"`

	// DrainInterval is the monitor's pause between pending-set scans.
	DrainInterval time.Duration `envconfig:"DRAIN_INTERVAL" default:"2s"`

	// CallTimeout is the default caller wait when none is given.
	CallTimeout time.Duration `envconfig:"CALL_TIMEOUT" default:"5m"`

	// EngineCommand answers subagent (level 1) calls. Run with the request
	// as JSON on stdin; stdout is the answer.
	EngineCommand []string `envconfig:"ENGINE_COMMAND"`

	// RelayCommand notifies the oracle and waits for the answer for
	// orchestrator (level 2) calls. Same contract as EngineCommand.
	RelayCommand []string `envconfig:"RELAY_COMMAND"`

	// Debug enables debug-level logging.
	Debug bool `envconfig:"DEBUG" default:"false"`
}

// Load reads configuration from the environment and fills in defaults.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if cfg.BusDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		cfg.BusDir = filepath.Join(home, ".ordinal", "bus")
	}

	return &cfg, nil
}

// ActivityDBPath returns the location of the activity log database.
func (c *Config) ActivityDBPath() string {
	return filepath.Join(c.BusDir, "bus.db")
}
