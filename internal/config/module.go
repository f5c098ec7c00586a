package config

import (
	"go.uber.org/fx"
)

// Module provides configuration dependencies.
var Module = fx.Module("config",
	fx.Provide(New),
)

// Source locates the configuration file and the overrides applied on top
// of it, typically from command line flags.
type Source struct {
	Path      string
	Overrides []func(*Config)
}

// New loads, overrides and validates the configuration.
func New(src Source) (*Config, error) {
	cfg, err := LoadConfig(src.Path)
	if err != nil {
		return nil, err
	}
	for _, o := range src.Overrides {
		o(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
