package frame

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/thesyncim/lc3/internal/mdct"
	"github.com/thesyncim/lc3/internal/tables"
)

// Shared holds the read-only resources of one configuration. A Shared is
// never mutated after Lookup returns it and may be used by any number of
// encoders and decoders concurrently.
type Shared struct {
	Config

	// Limits holds the NB+1 band limits.
	Limits []int

	// Tilt is the SNS spectral tilt per band.
	Tilt []float64

	// MDCT is the transform plan.
	MDCT *mdct.Transform
}

// registrySize exceeds the number of configurations.
const registrySize = 64

var (
	registry *lru.Cache[Config, *Shared]
	building singleflight.Group
)

func init() {
	var err error
	registry, err = lru.New[Config, *Shared](registrySize)
	if err != nil {
		panic(err)
	}
}

// Lookup returns the shared resources for c, building them on first use.
// Concurrent first lookups of the same configuration build it once.
func Lookup(c Config) (*Shared, error) {
	if s, ok := registry.Get(c); ok {
		return s, nil
	}
	v, err, _ := building.Do(c.String(), func() (any, error) {
		if s, ok := registry.Get(c); ok {
			return s, nil
		}
		s, err := build(c)
		if err != nil {
			return nil, err
		}
		registry.Add(c, s)
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Shared), nil
}

func build(c Config) (*Shared, error) {
	t, err := mdct.New(c.NS)
	if err != nil {
		return nil, fmt.Errorf("frame %s: %w", c, err)
	}
	return &Shared{
		Config: c,
		Limits: tables.BandLimits(c.NS, c.HighBands),
		Tilt:   tables.SNSTilt(c.SNSTilt()),
		MDCT:   t,
	}, nil
}

// Cached returns the number of configurations currently built.
func Cached() int {
	return registry.Len()
}
