package config

const (
	defaultLayout    = "0+5+0"
	defaultOutputDir = "."
	defaultLogFormat = "console"
	defaultLogLevel  = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Render: Render{
			Layout:    defaultLayout,
			OutputDir: defaultOutputDir,
		},
		Gains: map[string]float64{},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
