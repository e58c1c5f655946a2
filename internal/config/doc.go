// Package config loads admrender's TOML configuration, applies defaults and
// validates the values the render command depends on.
package config
