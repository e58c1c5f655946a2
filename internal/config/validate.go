package config

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/admrender/ear"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateRender(); err != nil {
		return err
	}
	if err := c.validateGains(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateRender() error {
	if _, err := ear.GetLayout(c.Render.Layout); err != nil {
		return fmt.Errorf("render.layout: %w", err)
	}
	if c.Render.OutputDir == "" {
		return errors.New("render.output_dir must be set")
	}
	return nil
}

func (c *Config) validateGains() error {
	for id, db := range c.Gains {
		if id == "" {
			return errors.New("gains: empty element id")
		}
		if math.IsNaN(db) || math.IsInf(db, 0) {
			return fmt.Errorf("gains.%s: must be a finite dB value", id)
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
