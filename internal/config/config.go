// Package config loads the command line tool's configuration.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// CodecConfig selects the stream parameters.
type CodecConfig struct {
	FrameDurationUS int  `yaml:"frame_duration_us"`
	SampleRateHz    int  `yaml:"sample_rate_hz"`
	HighResolution  bool `yaml:"high_resolution"`
	Channels        int  `yaml:"channels"`
	// Bitrate is per channel in bit/s. FrameBytes, when set, wins.
	Bitrate    int `yaml:"bitrate"`
	FrameBytes int `yaml:"frame_bytes"`
	// BitDepth is the raw PCM sample format: 16, 24, 32, or 0 for float32.
	BitDepth int `yaml:"bit_depth"`
}

// TraceConfig configures the per-frame trace database.
type TraceConfig struct {
	// DB is the SQLite path. Tracing is off when empty.
	DB        string `yaml:"db"`
	BatchSize int    `yaml:"batch_size"`
	Label     string `yaml:"label"`
}

// Config stores the application configuration.
type Config struct {
	Codec    CodecConfig `yaml:"codec"`
	Trace    TraceConfig `yaml:"trace"`
	LogLevel string      `yaml:"log_level"`
}

// Default returns the configuration used for missing fields.
func Default() *Config {
	return &Config{
		Codec: CodecConfig{
			FrameDurationUS: 10000,
			SampleRateHz:    48000,
			Channels:        1,
			Bitrate:         96000,
			BitDepth:        16,
		},
		Trace: TraceConfig{
			BatchSize: 256,
		},
		LogLevel: "info",
	}
}

// LoadConfig loads the configuration from the given file path on top of
// Default. An empty path yields the defaults. The result is not validated.
func LoadConfig(filePath string) (*Config, error) {
	cfg := Default()
	if filePath == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", filePath, err)
	}
	return cfg, nil
}

// Validate checks the fields that do not depend on the codec tables. Frame
// durations and sample rates are checked when the coders are created.
func (c *Config) Validate() error {
	var errs []error
	if c.Codec.Channels < 1 || c.Codec.Channels > 255 {
		errs = append(errs, fmt.Errorf("codec.channels: %d not in 1-255", c.Codec.Channels))
	}
	switch c.Codec.BitDepth {
	case 0, 16, 24, 32:
	default:
		errs = append(errs, fmt.Errorf("codec.bit_depth: %d not one of 0, 16, 24, 32", c.Codec.BitDepth))
	}
	if c.Codec.Bitrate < 0 {
		errs = append(errs, fmt.Errorf("codec.bitrate: negative"))
	}
	if c.Codec.FrameBytes < 0 {
		errs = append(errs, fmt.Errorf("codec.frame_bytes: negative"))
	}
	if c.Codec.Bitrate == 0 && c.Codec.FrameBytes == 0 {
		errs = append(errs, errors.New("codec: one of bitrate or frame_bytes is required"))
	}
	if c.Trace.BatchSize < 0 {
		errs = append(errs, fmt.Errorf("trace.batch_size: negative"))
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log_level: unknown level %q", c.LogLevel))
	}
	return errors.Join(errs...)
}
