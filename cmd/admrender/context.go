package main

import (
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/cwbudde/admrender/internal/config"
	"github.com/cwbudde/admrender/internal/logging"
)

type commandContext struct {
	configFlag    *string
	logLevelFlag  *string
	logFormatFlag *string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error
}

func newCommandContext(configFlag, logLevelFlag, logFormatFlag *string) *commandContext {
	return &commandContext{
		configFlag:    configFlag,
		logLevelFlag:  logLevelFlag,
		logFormatFlag: logFormatFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
	})
	return c.config, c.configErr
}

// logger builds the command's logger. Flags override the [logging] section.
func (c *commandContext) logger(w io.Writer) (*slog.Logger, error) {
	opts := logging.Options{Output: w}
	if cfg, err := c.ensureConfig(); err == nil {
		opts.Level = cfg.Logging.Level
		opts.Format = cfg.Logging.Format
	}
	if v := flagValue(c.logLevelFlag); v != "" {
		opts.Level = v
	}
	if v := flagValue(c.logFormatFlag); v != "" {
		opts.Format = v
	}
	return logging.New(opts)
}

func flagValue(p *string) string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(*p)
}
