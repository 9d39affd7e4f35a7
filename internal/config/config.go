// Package config loads the triage service configuration from YAML with
// environment variable and .env overrides.
package config

import (
	"errors"

	"github.com/jonesrussell/north-cloud/triage/internal/auth"
	"github.com/jonesrussell/north-cloud/triage/internal/domain"
	"github.com/jonesrussell/north-cloud/triage/internal/events"
	"github.com/jonesrussell/north-cloud/triage/internal/logger"
	"github.com/jonesrussell/north-cloud/triage/internal/processor"
	"github.com/jonesrussell/north-cloud/triage/internal/profiling"
	"github.com/jonesrussell/north-cloud/triage/internal/server"
	"github.com/jonesrussell/north-cloud/triage/internal/settings"
	"github.com/jonesrussell/north-cloud/triage/internal/toxicity"
	"github.com/jonesrussell/north-cloud/triage/internal/triage"
)

const (
	defaultServiceName    = "triage"
	defaultServiceVersion = "1.0.0"
)

// Config holds all configuration for the triage service.
type Config struct {
	Service   ServiceConfig    `yaml:"service"`
	Server    server.Config    `yaml:"server"`
	Logging   logger.Config    `yaml:"logging"`
	Toxicity  toxicity.Config  `yaml:"toxicity"`
	Triage    TriageConfig     `yaml:"triage"`
	Redis     events.Config    `yaml:"redis"`
	Auth      auth.Config      `yaml:"auth"`
	Profiling profiling.Config `yaml:"profiling"`
}

// ServiceConfig holds service-level configuration.
type ServiceConfig struct {
	Name    string `env:"SERVICE_NAME"    yaml:"name"`
	Version string `env:"SERVICE_VERSION" yaml:"version"`
}

// TriageConfig seeds the operator settings at startup. Omitted lists fall
// back to the built-in Utrecht defaults; an explicit empty list stays empty.
// Threshold and Weights are pointers so that explicit zeros are kept.
type TriageConfig struct {
	Threshold       *float64               `env:"TRIAGE_THRESHOLD"       yaml:"threshold"`
	IncludeThreats  bool                   `env:"TRIAGE_INCLUDE_THREATS" yaml:"include_threats"`
	UnknownCategory string                 `env:"TRIAGE_UNKNOWN"         yaml:"unknown_category"`
	HighPriority    []string               `env:"TRIAGE_HIGH_PRIORITY"   yaml:"high_priority"`
	UrgentTerms     []string               `env:"TRIAGE_URGENT_TERMS"    yaml:"urgent_terms"`
	Concurrency     int                    `env:"TRIAGE_CONCURRENCY"     yaml:"concurrency"`
	Categories      []domain.Category      `yaml:"categories"`
	Neighborhoods   []domain.Neighborhood  `yaml:"neighborhoods"`
	Weights         *triage.ScoringWeights `yaml:"weights"`
}

// SetDefaults fills every unset field.
func (c *Config) SetDefaults() {
	if c.Service.Name == "" {
		c.Service.Name = defaultServiceName
	}
	if c.Service.Version == "" {
		c.Service.Version = defaultServiceVersion
	}
	c.Server.ServiceName = c.Service.Name
	c.Server.ServiceVersion = c.Service.Version
	c.Server.SetDefaults()
	c.Logging.SetDefaults()
	c.Toxicity.SetDefaults()
	c.Triage.SetDefaults()
	c.Profiling.SetDefaults()
	if c.Redis.Stream == "" {
		c.Redis.Stream = events.DefaultStream
	}
}

// SetDefaults fills unset triage settings from triage.DefaultSettings.
func (t *TriageConfig) SetDefaults() {
	defaults := triage.DefaultSettings()
	if t.Threshold == nil {
		threshold := defaults.Threshold
		t.Threshold = &threshold
	}
	if t.UnknownCategory == "" {
		t.UnknownCategory = defaults.UnknownCategory
	}
	if t.HighPriority == nil {
		t.HighPriority = defaults.HighPriority
	}
	if t.UrgentTerms == nil {
		t.UrgentTerms = defaults.UrgentTerms
	}
	if t.Categories == nil {
		t.Categories = defaults.Categories
	}
	if t.Neighborhoods == nil {
		t.Neighborhoods = defaults.Neighborhoods
	}
	if t.Weights == nil {
		t.Weights = defaults.Weights
	}
	if t.Concurrency <= 0 {
		t.Concurrency = processor.DefaultConcurrency
	}
}

// Settings converts the triage section into core settings.
func (t TriageConfig) Settings() triage.Settings {
	s := triage.Settings{
		Categories:      t.Categories,
		UnknownCategory: t.UnknownCategory,
		HighPriority:    t.HighPriority,
		Neighborhoods:   t.Neighborhoods,
		Weights:         t.Weights,
		UrgentTerms:     t.UrgentTerms,
	}
	if t.Threshold != nil {
		s.Threshold = *t.Threshold
	}
	return s.Clone()
}

// State returns the initial settings store state.
func (c *Config) State() settings.State {
	return settings.State{Settings: c.Triage.Settings(), IncludeThreats: c.Triage.IncludeThreats}
}

// Validate checks the loaded configuration. Triage settings are compiled
// once so that a bad category list fails at startup, not on first use.
func (c *Config) Validate() error {
	if err := ValidatePort("server.port", c.Server.Port); err != nil {
		return err
	}
	if err := ValidateLogLevel(c.Logging.Level); err != nil {
		return err
	}
	if c.Toxicity.URL == "" {
		return &ValidationError{Field: "toxicity.url", Message: "is required"}
	}
	if c.Toxicity.RateLimit < 0 {
		return &ValidationError{Field: "toxicity.rate_limit", Message: "must not be negative"}
	}
	if err := ValidatePositive("triage.concurrency", c.Triage.Concurrency); err != nil {
		return err
	}
	if c.Redis.Enabled && c.Redis.Address == "" {
		return &ValidationError{Field: "redis.address", Message: "is required when redis is enabled"}
	}
	if c.Profiling.PprofEnabled {
		if err := ValidatePort("profiling.pprof_port", c.Profiling.PprofPort); err != nil {
			return err
		}
	}

	if _, err := triage.NewSnapshot(c.Triage.Settings(), nil); err != nil {
		var cfgErr *triage.ConfigError
		if errors.As(err, &cfgErr) {
			return &ValidationError{Field: "triage." + cfgErr.Field, Message: cfgErr.Message}
		}
		return err
	}
	return nil
}
