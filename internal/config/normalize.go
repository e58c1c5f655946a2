package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizeRender(); err != nil {
		return err
	}
	c.normalizeGains()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizeRender() error {
	c.Render.Layout = strings.TrimSpace(c.Render.Layout)
	if c.Render.Layout == "" {
		c.Render.Layout = defaultLayout
	}
	c.Render.ElementID = strings.TrimSpace(c.Render.ElementID)

	if strings.TrimSpace(c.Render.OutputDir) == "" {
		c.Render.OutputDir = defaultOutputDir
	}
	var err error
	if c.Render.OutputDir, err = expandPath(c.Render.OutputDir); err != nil {
		return fmt.Errorf("render.output_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeGains() {
	if c.Gains == nil {
		c.Gains = map[string]float64{}
		return
	}
	for id, db := range c.Gains {
		trimmed := strings.TrimSpace(id)
		if trimmed == id {
			continue
		}
		delete(c.Gains, id)
		c.Gains[trimmed] = db
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
