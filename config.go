package lc3

import (
	"fmt"

	"github.com/thesyncim/lc3/internal/frame"
)

// Config describes a resolved frame configuration.
type Config struct {
	FrameDurationUS int
	SampleRateHz    int
	HighResolution  bool

	// FrameSamples is the number of samples per channel and frame.
	FrameSamples int
	// Bands is the number of energy bands.
	Bands int
	// MinFrameBytes and MaxFrameBytes bound the per-channel frame size.
	MinFrameBytes int
	MaxFrameBytes int
	// Delay is the algorithmic delay in samples.
	Delay int
}

func resolve(durationUS, sampleRateHz int, hr bool) (frame.Config, *frame.Shared, error) {
	cfg, err := frame.Resolve(durationUS, sampleRateHz, hr)
	if err != nil {
		return cfg, nil, publicError(err)
	}
	s, err := frame.Lookup(cfg)
	if err != nil {
		return cfg, nil, publicError(err)
	}
	return cfg, s, nil
}

func publicConfig(cfg frame.Config, s *frame.Shared) Config {
	lo, hi := cfg.ByteRange()
	return Config{
		FrameDurationUS: cfg.DurationMicros(),
		SampleRateHz:    cfg.SampleRateHz(),
		HighResolution:  cfg.HighResolution(),
		FrameSamples:    cfg.NS,
		Bands:           cfg.NB,
		MinFrameBytes:   lo,
		MaxFrameBytes:   hi,
		Delay:           s.MDCT.Delay(),
	}
}

// FrameBytes returns the per-channel frame size giving bitrate bits per
// second, clamped to the valid range.
func (c Config) FrameBytes(bitrate int) int {
	n := bitrate * c.FrameDurationUS / 8000000
	return max(c.MinFrameBytes, min(c.MaxFrameBytes, n))
}

// Bitrate returns the per-channel bitrate of nbytes frames.
func (c Config) Bitrate(nbytes int) int {
	return nbytes * 8000000 / c.FrameDurationUS
}

// String implements fmt.Stringer.
func (c Config) String() string {
	s := fmt.Sprintf("%gms/%dHz", float64(c.FrameDurationUS)/1000, c.SampleRateHz)
	if c.HighResolution {
		s += "/hr"
	}
	return s
}
