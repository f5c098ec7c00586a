// Package frame resolves and validates frame configurations.
//
// A Config is a pure function of the frame duration and sample rate. The
// per-configuration resources that are expensive to build (band limits,
// transform plans) are shared through Lookup.
package frame

import (
	"errors"
	"fmt"
)

// ErrUnsupported indicates a duration, rate or byte budget outside the
// supported set.
var ErrUnsupported = errors.New("frame: unsupported configuration")

// Duration enumerates the frame durations.
type Duration int

const (
	Duration2500us Duration = iota
	Duration5000us
	Duration7500us
	Duration10000us
)

var durationUS = [...]int{2500, 5000, 7500, 10000}

// Micros returns the duration in microseconds.
func (d Duration) Micros() int { return durationUS[d] }

// Rate enumerates the sample rates, high-resolution rates last.
type Rate int

const (
	Rate8k Rate = iota
	Rate16k
	Rate24k
	Rate32k
	Rate48k
	Rate48kHR
	Rate96kHR
)

var (
	rateHz   = [...]int{8000, 16000, 24000, 32000, 48000, 48000, 96000}
	rateTilt = [...]int{14, 18, 22, 26, 30, 30, 34}
)

// Hz returns the sample rate in Hz.
func (r Rate) Hz() int { return rateHz[r] }

// HighResolution reports whether r is a high-resolution rate.
func (r Rate) HighResolution() bool { return r >= Rate48kHR }

// Byte budget limits per frame.
const (
	MinBytes   = 20
	MaxBytes   = 400
	MaxBytesHR = 625
)

// highBands is the number of bands forming the attack detector's high group,
// indexed by Duration.
var highBands = [...]int{2, 3, 4, 2}

// Config is an immutable, resolved frame configuration.
type Config struct {
	Duration Duration
	Rate     Rate

	// NS is the number of samples, and of spectral coefficients, per frame.
	NS int

	// NB is the number of energy bands.
	NB int

	// HighBands is the number of top bands in the attack detector's high group.
	HighBands int
}

// Resolve validates a duration and sample rate and derives the frame
// configuration. 96 kHz requires high-resolution mode, which is limited to
// 48 and 96 kHz and excludes 7.5 ms frames.
func Resolve(durationMicros, sampleRateHz int, hr bool) (Config, error) {
	d := -1
	for i, us := range durationUS {
		if us == durationMicros {
			d = i
		}
	}
	if d < 0 {
		return Config{}, fmt.Errorf("%w: frame duration %dus", ErrUnsupported, durationMicros)
	}

	var r Rate
	switch sampleRateHz {
	case 8000:
		r = Rate8k
	case 16000:
		r = Rate16k
	case 24000:
		r = Rate24k
	case 32000:
		r = Rate32k
	case 48000:
		r = Rate48k
		if hr {
			r = Rate48kHR
		}
	case 96000:
		if !hr {
			return Config{}, fmt.Errorf("%w: 96000Hz without high resolution", ErrUnsupported)
		}
		r = Rate96kHR
	default:
		return Config{}, fmt.Errorf("%w: sample rate %dHz", ErrUnsupported, sampleRateHz)
	}
	if hr && !r.HighResolution() {
		return Config{}, fmt.Errorf("%w: high resolution at %dHz", ErrUnsupported, sampleRateHz)
	}
	if r.HighResolution() && Duration(d) == Duration7500us {
		return Config{}, fmt.Errorf("%w: high resolution with 7.5ms frames", ErrUnsupported)
	}
	return newConfig(Duration(d), r), nil
}

func newConfig(d Duration, r Rate) Config {
	ns := d.Micros() * r.Hz() / 1000000
	k := highBands[d]
	nb := 15*ns/16 + k
	if nb > 64 {
		nb = 64
	}
	return Config{Duration: d, Rate: r, NS: ns, NB: nb, HighBands: k}
}

// All returns every supported configuration.
func All() []Config {
	var out []Config
	for d := Duration2500us; d <= Duration10000us; d++ {
		for r := Rate8k; r <= Rate96kHR; r++ {
			if r.HighResolution() && d == Duration7500us {
				continue
			}
			out = append(out, newConfig(d, r))
		}
	}
	return out
}

// DurationMicros returns the frame duration in microseconds.
func (c Config) DurationMicros() int { return c.Duration.Micros() }

// SampleRateHz returns the sample rate in Hz.
func (c Config) SampleRateHz() int { return c.Rate.Hz() }

// HighResolution reports whether the configuration uses a high-resolution rate.
func (c Config) HighResolution() bool { return c.Rate.HighResolution() }

// SNSTilt returns the spectral tilt parameter of the sample rate.
func (c Config) SNSTilt() int { return rateTilt[c.Rate] }

// ByteRange returns the inclusive range of valid frame sizes in bytes.
func (c Config) ByteRange() (int, int) {
	if c.HighResolution() {
		return MinBytes, MaxBytesHR
	}
	return MinBytes, MaxBytes
}

// CheckBytes validates a frame size.
func (c Config) CheckBytes(n int) error {
	lo, hi := c.ByteRange()
	if n < lo || n > hi {
		return fmt.Errorf("%w: frame size %d bytes (must be %d-%d)", ErrUnsupported, n, lo, hi)
	}
	return nil
}

// FrameBytes returns the frame size giving the requested bitrate, clamped to
// the valid range.
func (c Config) FrameBytes(bitrate int) int {
	n := bitrate * c.DurationMicros() / 8000000
	lo, hi := c.ByteRange()
	return max(lo, min(hi, n))
}

// Bitrate returns the bitrate in bits per second of nbytes frames.
func (c Config) Bitrate(nbytes int) int {
	return nbytes * 8000000 / c.DurationMicros()
}

// String implements fmt.Stringer.
func (c Config) String() string {
	s := fmt.Sprintf("%gms/%dHz", float64(c.DurationMicros())/1000, c.SampleRateHz())
	if c.HighResolution() {
		s += "/hr"
	}
	return s
}

// Bin returns the index of the first spectral coefficient at or above
// freqHz, clamped to NS.
func (c Config) Bin(freqHz int) int {
	return min(c.NS, freqHz*2*c.NS/c.SampleRateHz())
}
