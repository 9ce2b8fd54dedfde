// Package config loads CLI defaults from the environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v6"
)

// Config holds settings that flags may override.
type Config struct {
	LogLevel    string `env:"REDUX_LOG_LEVEL" envDefault:"warn"`
	LogFormat   string `env:"REDUX_LOG_FORMAT" envDefault:"text"`
	Format      string `env:"REDUX_FORMAT" envDefault:"text"`
	ScenarioDir string `env:"REDUX_SCENARIOS" envDefault:"scenarios"`
	Parallel    int    `env:"REDUX_PARALLEL" envDefault:"4"`
	ReplayRuns  int    `env:"REDUX_REPLAY_RUNS" envDefault:"2"`
}

// Load reads the process environment.
func Load() (Config, error) {
	return parse(env.Options{})
}

// LoadFrom reads the given variables instead of the process environment.
func LoadFrom(vars map[string]string) (Config, error) {
	return parse(env.Options{Environment: vars})
}

func parse(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges and enumerations.
func (c Config) Validate() error {
	switch c.Format {
	case "text", "json":
	default:
		return fmt.Errorf("REDUX_FORMAT: %q is not text or json", c.Format)
	}
	if c.Parallel < 1 {
		return fmt.Errorf("REDUX_PARALLEL: must be at least 1, got %d", c.Parallel)
	}
	if c.ReplayRuns < 2 {
		return fmt.Errorf("REDUX_REPLAY_RUNS: must be at least 2, got %d", c.ReplayRuns)
	}
	return nil
}
