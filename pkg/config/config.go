// Package config loads library configuration from a YAML file with
// environment-variable overrides.
//
// Precedence, highest to lowest: environment variables, YAML file,
// compiled-in defaults.
package config

import (
	"fmt"

	"github.com/fyrsmithlabs/consult/internal/logging"
	"github.com/fyrsmithlabs/consult/pkg/interview"
	"github.com/fyrsmithlabs/consult/pkg/nlu"
	"github.com/fyrsmithlabs/consult/pkg/temporal"
)

// Config is the complete library configuration.
type Config struct {
	Logging logging.Config `koanf:"logging"`
	NLU     nlu.Config     `koanf:"nlu"`
	Session SessionConfig  `koanf:"session"`
	Policy  PolicyConfig   `koanf:"policy"`
}

// SessionConfig holds state-machine policy.
type SessionConfig struct {
	HistoryCap    int     `koanf:"history_cap"`
	MaxCandidates int     `koanf:"max_candidates"`
	TrueSolarTime bool    `koanf:"true_solar_time"`
	LongitudeEast float64 `koanf:"longitude_east"`
	DataPath      string  `koanf:"data_path"`
}

// PolicyConfig overrides the built-in heuristic tables. Empty sections
// keep the compiled-in defaults.
type PolicyConfig struct {
	Periods    []temporal.Period    `koanf:"periods"`
	EventHints []temporal.EventHint `koanf:"event_hints"`
	Categories []CategoryConfig     `koanf:"categories"`
}

// CategoryConfig is one inquiry category and its trigger keywords.
// Table order fixes the digit-menu assignment.
type CategoryConfig struct {
	Name     string   `koanf:"name"`
	Keywords []string `koanf:"keywords"`
}

// Default returns the compiled-in configuration.
func Default() *Config {
	return &Config{
		Logging: *logging.NewDefaultConfig(),
		NLU:     nlu.DefaultConfig(),
		Session: SessionConfig{
			HistoryCap:    50,
			MaxCandidates: temporal.DefaultMaxCandidates,
			LongitudeEast: temporal.ReferenceLongitude,
			DataPath:      "./data",
		},
	}
}

// Validate checks configuration consistency.
func (c *Config) Validate() error {
	if c.Session.HistoryCap <= 0 {
		return fmt.Errorf("session.history_cap must be positive")
	}
	if c.Session.MaxCandidates <= 0 {
		return fmt.Errorf("session.max_candidates must be positive")
	}
	if c.Session.LongitudeEast < -180 || c.Session.LongitudeEast > 180 {
		return fmt.Errorf("session.longitude_east out of range: %v", c.Session.LongitudeEast)
	}
	for _, p := range c.Policy.Periods {
		if p.Name == "" || p.Start < 0 || p.Start > 23 || p.End < 0 || p.End > 23 {
			return fmt.Errorf("invalid period %q: hours must be in [0,23]", p.Name)
		}
	}
	for _, h := range c.Policy.EventHints {
		if h.Keyword == "" || len(h.Hours) == 0 {
			return fmt.Errorf("invalid event hint %q: keyword and hours are required", h.Keyword)
		}
		for _, hour := range h.Hours {
			if hour < 0 || hour > 23 {
				return fmt.Errorf("invalid event hint %q: hour %d out of range", h.Keyword, hour)
			}
		}
	}
	if c.NLU.Enabled {
		if _, ok := c.NLU.Providers[c.NLU.Provider]; !ok {
			return fmt.Errorf("nlu provider %q is enabled but not configured", c.NLU.Provider)
		}
	}
	return nil
}

// Periods returns the configured period table, or the built-in one.
func (c *Config) Periods() []temporal.Period {
	if len(c.Policy.Periods) > 0 {
		return c.Policy.Periods
	}
	return temporal.DefaultPeriods()
}

// EventHints returns the configured hint table, or the built-in one.
func (c *Config) EventHints() []temporal.EventHint {
	if len(c.Policy.EventHints) > 0 {
		return c.Policy.EventHints
	}
	return temporal.DefaultEventHints()
}

// Categories returns the configured category table, or the built-in
// one.
func (c *Config) Categories() interview.CategoryTable {
	if len(c.Policy.Categories) == 0 {
		return interview.DefaultCategories()
	}
	table := interview.CategoryTable{
		Keywords: make(map[string][]string, len(c.Policy.Categories)),
	}
	for _, cat := range c.Policy.Categories {
		table.Order = append(table.Order, cat.Name)
		table.Keywords[cat.Name] = cat.Keywords
	}
	return table
}
