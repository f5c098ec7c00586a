package tns

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thesyncim/lc3/internal/frame"
)

func mustConfig(t *testing.T, us, hz int) frame.Config {
	t.Helper()
	c, err := frame.Resolve(us, hz, false)
	require.NoError(t, err)
	return c
}

func TestConfigure(t *testing.T) {
	c := mustConfig(t, 10000, 48000)
	s := Configure(c, 24000)
	assert.Equal(t, 2, s.NumFilters)
	assert.Equal(t, 8, s.MaxOrder)
	assert.Equal(t, [2]int{16, 240}, s.Start)
	assert.Equal(t, [2]int{240, 480}, s.Stop)

	s = Configure(c, 8000)
	assert.Equal(t, 1, s.NumFilters)
	assert.Equal(t, 12, s.Start[0])
	assert.Equal(t, 160, s.Stop[0])

	s = Configure(mustConfig(t, 2500, 48000), 24000)
	assert.Equal(t, 1, s.NumFilters)
	assert.Equal(t, 4, s.MaxOrder)
}

func TestReflectionLevels(t *testing.T) {
	assert.Zero(t, Reflection(ZeroIndex))
	for i := 1; i <= 8; i++ {
		assert.Equal(t, -Reflection(ZeroIndex+i), Reflection(ZeroIndex-i))
		assert.Greater(t, Reflection(ZeroIndex+i), Reflection(ZeroIndex+i-1))
	}
	assert.Equal(t, ZeroIndex, quantize(0.05))
	assert.Equal(t, ZeroIndex+8, quantize(0.999))
	assert.Equal(t, ZeroIndex-8, quantize(-0.999))
}

func TestWhitenColorInverse(t *testing.T) {
	c := mustConfig(t, 10000, 32000)
	s := Configure(c, 16000)
	rng := rand.New(rand.NewPCG(1, 3))

	var p Params
	for f := 0; f < s.NumFilters; f++ {
		p.Filters[f].Order = 1 + rng.IntN(MaxOrder)
		for i := 0; i < p.Filters[f].Order; i++ {
			p.Filters[f].Index[i] = 2 + rng.IntN(Levels-4)
		}
	}
	x := make([]float64, c.NS)
	for i := range x {
		x[i] = rng.NormFloat64() * 100
	}
	orig := append([]float64(nil), x...)
	Whiten(x, s, &p)
	assert.NotEqual(t, orig, x)
	Color(x, s, &p)
	assert.InDeltaSlice(t, orig, x, 1e-6)
}

func TestAnalyzePredictableSpectrum(t *testing.T) {
	c := mustConfig(t, 10000, 48000)
	s := Configure(c, 24000)
	x := make([]float64, c.NS)
	for k := range x {
		x[k] = 1000 * math.Cos(0.3*float64(k))
	}
	var an Analyzer
	var p Params
	an.Analyze(x, s, 8*100, c.DurationMicros(), &p)
	require.True(t, p.Active())
	for _, f := range p.Filters[:s.NumFilters] {
		require.Positive(t, f.Order)
		assert.NotEqual(t, ZeroIndex, f.Index[f.Order-1])
		for i := f.Order; i < MaxOrder; i++ {
			assert.Equal(t, ZeroIndex, f.Index[i])
		}
	}

	// Whitening a predictable spectrum lowers its energy.
	energy := func(v []float64) (e float64) {
		for _, x := range v[s.Start[0]:s.Stop[1]] {
			e += x * x
		}
		return e
	}
	before := energy(x)
	Whiten(x, s, &p)
	assert.Less(t, energy(x), before/2)
}

func TestAnalyzeNoiseAndSilence(t *testing.T) {
	c := mustConfig(t, 10000, 16000)
	s := Configure(c, 8000)
	var an Analyzer
	var p Params

	an.Analyze(make([]float64, c.NS), s, 400, c.DurationMicros(), &p)
	assert.False(t, p.Active())

	rng := rand.New(rand.NewPCG(8, 8))
	x := make([]float64, c.NS)
	for i := range x {
		x[i] = rng.NormFloat64()
	}
	an.Analyze(x, s, 400, c.DurationMicros(), &p)
	assert.False(t, p.Active())
}
