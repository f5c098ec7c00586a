package attack

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thesyncim/lc3/internal/frame"
)

func mustResolve(t *testing.T, us, hz int) frame.Config {
	t.Helper()
	c, err := frame.Resolve(us, hz, false)
	require.NoError(t, err)
	return c
}

func TestActive(t *testing.T) {
	tests := map[string]struct {
		us, hz, nbytes int
		want           bool
	}{
		"10ms/48k high rate":  {10000, 48000, 120, true},
		"10ms/48k low rate":   {10000, 48000, 80, false},
		"7.5ms/32k threshold": {7500, 32000, 61, true},
		"7.5ms/32k below":     {7500, 32000, 60, false},
		"5ms/48k":             {5000, 48000, 200, false},
		"10ms/24k":            {10000, 24000, 200, false},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			d := New(mustResolve(t, tc.us, tc.hz))
			assert.Equal(t, tc.want, d.Active(tc.nbytes))
		})
	}
}

func TestDetectsOnset(t *testing.T) {
	c := mustResolve(t, 10000, 48000)
	d := New(c)
	assert.Equal(t, 4, d.nblk)

	quiet := make([]float64, c.NS)
	for i := range quiet {
		quiet[i] = 10 * math.Sin(2*math.Pi*440*float64(i)/48000)
	}
	// The first frame rises from silence.
	d.Run(quiet, 120)
	for i := 1; i < 5; i++ {
		assert.False(t, d.Run(quiet, 120), "frame %d", i)
	}

	burst := make([]float64, c.NS)
	copy(burst, quiet)
	for i := c.NS / 2; i < c.NS; i++ {
		burst[i] = 20000 * math.Sin(2*math.Pi*5000*float64(i)/48000)
	}
	assert.True(t, d.Run(burst, 120))

	// A late attack also marks the next frame.
	assert.True(t, d.Run(burst, 120))
}

func TestInactiveResets(t *testing.T) {
	c := mustResolve(t, 10000, 48000)
	d := New(c)
	x := make([]float64, c.NS)
	for i := range x {
		x[i] = float64(i % 7)
	}
	d.Run(x, 120)
	assert.False(t, d.Run(x, 40))
	assert.Equal(t, -1, d.pAtt)
	assert.Zero(t, d.en1)
}
