package tables

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTablesRegenerateIdentically(t *testing.T) {
	gens := map[string]func() []float64{
		"gain":       GainTable,
		"inv_gain":   InverseGainTable,
		"lag_window": TNSLagWindow,
		"thresholds": TNSQuantThresholds,
		"levels":     TNSQuantLevels,
		"inverse":    Inverse,
		"tilt":       func() []float64 { return SNSTilt(22) },
		"window":     func() []float64 { return Window(480) },
	}
	for name, gen := range gens {
		t.Run(name, func(t *testing.T) {
			a, b := gen(), gen()
			require.Equal(t, len(a), len(b))
			for i := range a {
				assert.Equal(t, math.Float64bits(a[i]), math.Float64bits(b[i]), "index %d", i)
			}
		})
	}

	for _, n := range []int{10, 15, 20, 30, 40, 45, 60, 80, 90, 120, 160, 180, 240, 320, 360, 480, 640, 720, 960} {
		assert.Equal(t, FFTTwiddles(n), FFTTwiddles(n))
		assert.Equal(t, MDCTPreTwiddle(n), MDCTPreTwiddle(n))
		assert.Equal(t, MDCTPostTwiddle(n), MDCTPostTwiddle(n))
	}
}

func TestGainTablesAreReciprocal(t *testing.T) {
	g, inv := GainTable(), InverseGainTable()
	require.Len(t, g, GainSteps)
	for i := range g {
		assert.InEpsilon(t, 1.0, g[i]*inv[i], 1e-12)
	}
	assert.InDelta(t, 1.0, g[GainOffset], 0)
	assert.InEpsilon(t, 10.0, g[GainOffset+28], 1e-12)
}

func TestTNSQuantizerTablesInterleave(t *testing.T) {
	th, lv := TNSQuantThresholds(), TNSQuantLevels()
	require.Len(t, th, TNSQuantSteps)
	require.Len(t, lv, TNSQuantSteps+1)
	for i := range th {
		assert.Less(t, lv[i], th[i])
		assert.Less(t, th[i], lv[i+1])
	}
}

func TestWindowPrincenBradley(t *testing.T) {
	for _, n := range []int{20, 60, 80, 180, 480, 960} {
		w := Window(n)
		require.Len(t, w, 2*n)
		for i := 0; i < n; i++ {
			assert.InDelta(t, 1.0, w[i]*w[i]+w[i+n]*w[i+n], 1e-12, "n=%d i=%d", n, i)
			assert.Equal(t, w[i], w[2*n-1-i])
		}
		for i := 0; i < n/4; i++ {
			assert.Zero(t, w[i])
		}
	}
}

func TestBandLimits(t *testing.T) {
	cases := []struct {
		ns, nHigh int
	}{
		{20, 2}, {40, 2}, {60, 2}, {80, 2}, {120, 2}, {240, 2},
		{40, 3}, {80, 3}, {120, 3}, {160, 3}, {240, 3}, {480, 3},
		{60, 4}, {120, 4}, {180, 4}, {240, 4}, {360, 4},
		{80, 2}, {160, 2}, {240, 2}, {320, 2}, {480, 2}, {960, 2},
	}
	for _, c := range cases {
		lim := BandLimits(c.ns, c.nHigh)
		nb := BandCount(c.ns, c.nHigh)
		require.Len(t, lim, nb+1)
		assert.LessOrEqual(t, nb, 64)
		assert.Equal(t, 0, lim[0])
		assert.Equal(t, c.ns, lim[nb])
		assert.Equal(t, 15*c.ns/16, lim[nb-c.nHigh])
		for b := 1; b <= nb; b++ {
			assert.Greater(t, lim[b], lim[b-1], "ns=%d band %d", c.ns, b)
		}
	}
}
