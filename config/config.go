package config

import (
	"fmt"

	"github.com/kbukum/wirekit/errors"
	"github.com/kbukum/wirekit/logger"
	"github.com/kbukum/wirekit/validation"
)

// ServiceName names the config and env files the loader searches for.
const ServiceName = "wirekit"

// Environments accepted by Config.Environment.
var Environments = []string{"development", "staging", "production"}

// Config is the wirekit CLI configuration.
type Config struct {
	Name        string        `yaml:"name" mapstructure:"name"`
	Environment string        `yaml:"environment" mapstructure:"environment"`
	Manifest    string        `yaml:"manifest" mapstructure:"manifest"`
	Logging     logger.Config `yaml:"logging" mapstructure:"logging"`
	Tracing     TracingConfig `yaml:"tracing" mapstructure:"tracing"`
}

// TracingConfig controls span export from the CLI.
type TracingConfig struct {
	Enabled    bool    `yaml:"enabled" mapstructure:"enabled"`
	SampleRate float64 `yaml:"sample_rate" mapstructure:"sample_rate"`
}

// ApplyDefaults applies default values.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = ServiceName
	}
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Manifest == "" {
		c.Manifest = "wiring.yml"
	}
	// Propagate the name into logging so the console tag matches.
	if c.Logging.ServiceName == "" {
		c.Logging.ServiceName = c.Name
	}
	c.Logging.ApplyDefaults()
	if c.Tracing.SampleRate == 0 {
		c.Tracing.SampleRate = 1.0
	}
}

// Validate reports every invalid field in one INVALID_INPUT error.
func (c *Config) Validate() error {
	v := validation.New().
		Required("name", c.Name).
		OneOf("environment", c.Environment, Environments).
		Custom(c.Tracing.SampleRate >= 0 && c.Tracing.SampleRate <= 1, "tracing.sample_rate",
			fmt.Sprintf("must be between 0 and 1 (got: %g)", c.Tracing.SampleRate))
	if err := c.Logging.Validate(); err != nil {
		v.Merge("logging", err)
	}
	if appErr := v.Validate(); appErr != nil {
		return appErr.WithDetail("config", c.Name)
	}
	return nil
}

// Invalid reports whether err came from Validate.
func Invalid(err error) bool {
	return errors.HasCode(err, errors.ErrCodeInvalidInput)
}
