// Package analytics computes sprint burndown and project velocity from task
// state. Every computation is a pure function of its inputs and a Config.
package analytics

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config tunes burndown and velocity computations. Use DefaultConfig and
// override fields rather than building one from scratch.
type Config struct {
	// Location decides which calendar day a timestamp falls on
	// (task updates and "today"). Default UTC.
	Location *time.Location

	// RecentWindow is the number of most recent sprints averaged into the
	// recent velocity and the forecast. Default 3.
	RecentWindow int

	// ProjectionHorizonDays caps the projected completion offset from the
	// sprint start. Default 3650.
	ProjectionHorizonDays int

	// Strategies is the ordered fallback chain deciding how many hours a
	// finished task retires. Default: estimate, then actual.
	Strategies []HoursStrategy
}

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() Config {
	return Config{
		Location:              time.UTC,
		RecentWindow:          3,
		ProjectionHorizonDays: 3650,
		Strategies:            []HoursStrategy{EstimateHours, ActualHours},
	}
}

// fileConfig is the YAML shape of an analytics configuration file.
type fileConfig struct {
	Timezone              string   `yaml:"timezone"`
	RecentWindow          *int     `yaml:"recent_window"`
	ProjectionHorizonDays *int     `yaml:"projection_horizon_days"`
	HoursStrategies       []string `yaml:"hours_strategies"`
}

// LoadConfig reads a YAML file and applies it on top of DefaultConfig.
// An empty path returns the defaults.
func LoadConfig(path string) (Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read analytics config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig applies YAML data on top of DefaultConfig.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return Config{}, fmt.Errorf("parse analytics config: %w", err)
	}

	if fc.Timezone != "" {
		loc, err := time.LoadLocation(fc.Timezone)
		if err != nil {
			return Config{}, fmt.Errorf("timezone: %w", err)
		}
		cfg.Location = loc
	}
	if fc.RecentWindow != nil {
		if *fc.RecentWindow < 1 {
			return Config{}, fmt.Errorf("recent_window must be >= 1, got %d", *fc.RecentWindow)
		}
		cfg.RecentWindow = *fc.RecentWindow
	}
	if fc.ProjectionHorizonDays != nil {
		if *fc.ProjectionHorizonDays < 1 {
			return Config{}, fmt.Errorf("projection_horizon_days must be >= 1, got %d", *fc.ProjectionHorizonDays)
		}
		cfg.ProjectionHorizonDays = *fc.ProjectionHorizonDays
	}
	if len(fc.HoursStrategies) > 0 {
		chain := make([]HoursStrategy, 0, len(fc.HoursStrategies))
		for _, name := range fc.HoursStrategies {
			s, ok := StrategyByName(name)
			if !ok {
				return Config{}, fmt.Errorf("unknown hours strategy %q", name)
			}
			chain = append(chain, s)
		}
		cfg.Strategies = chain
	}
	return cfg, nil
}

// normalized fills zero-valued fields with their defaults so a partially
// built Config is still usable.
func (c Config) normalized() Config {
	def := DefaultConfig()
	if c.Location == nil {
		c.Location = def.Location
	}
	if c.RecentWindow < 1 {
		c.RecentWindow = def.RecentWindow
	}
	if c.ProjectionHorizonDays < 1 {
		c.ProjectionHorizonDays = def.ProjectionHorizonDays
	}
	if len(c.Strategies) == 0 {
		c.Strategies = def.Strategies
	}
	return c
}
