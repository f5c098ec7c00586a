package decoder

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thesyncim/lc3/internal/bitstream"
	"github.com/thesyncim/lc3/internal/encoder"
	"github.com/thesyncim/lc3/internal/frame"
	"github.com/thesyncim/lc3/internal/testsignal"
)

func signal(t *testing.T, kind testsignal.Kind, cfg frame.Config, frames int) []float64 {
	t.Helper()
	x, err := testsignal.Generate(kind, cfg.SampleRateHz(), frames*cfg.NS, 1)
	require.NoError(t, err)
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = float64(v) * 32768
	}
	return out
}

// codec encodes and decodes x frame by frame.
func codec(t *testing.T, cfg frame.Config, x []float64, nbytes int) []float64 {
	t.Helper()
	enc, err := encoder.New(cfg)
	require.NoError(t, err)
	dec, err := New(cfg)
	require.NoError(t, err)

	y := make([]float64, len(x))
	buf := make([]byte, nbytes)
	for off := 0; off < len(x); off += cfg.NS {
		_, err := enc.Encode(x[off:off+cfg.NS], buf)
		require.NoError(t, err)
		st, err := dec.Decode(buf, y[off:off+cfg.NS])
		require.NoError(t, err)
		require.False(t, st.Concealed)
	}
	return y
}

func correlation(a, b []float64) float64 {
	var ab, aa, bb float64
	for i := range a {
		ab += a[i] * b[i]
		aa += a[i] * a[i]
		bb += b[i] * b[i]
	}
	if aa == 0 || bb == 0 {
		return 0
	}
	return ab / math.Sqrt(aa*bb)
}

func TestRoundTripAllConfigurations(t *testing.T) {
	for _, cfg := range frame.All() {
		t.Run(cfg.String(), func(t *testing.T) {
			x := signal(t, testsignal.SpeechLike, cfg, 8)
			lo, hi := cfg.ByteRange()
			for _, n := range []int{lo, hi} {
				y := codec(t, cfg, x, n)
				require.Len(t, y, len(x))
				for _, v := range y {
					require.False(t, math.IsNaN(v) || math.IsInf(v, 0))
				}
			}
		})
	}
}

func TestRoundTripQuality(t *testing.T) {
	cfg, err := frame.Resolve(10000, 48000, false)
	require.NoError(t, err)
	x := signal(t, testsignal.Sine, cfg, 20)
	y := codec(t, cfg, x, 120)

	s, err := frame.Lookup(cfg)
	require.NoError(t, err)
	d := s.MDCT.Delay()
	start := 4 * cfg.NS
	assert.Greater(t, correlation(x[start-d:len(x)-d], y[start:]), 0.9)
}

func TestDecodeSilence(t *testing.T) {
	cfg, err := frame.Resolve(10000, 48000, false)
	require.NoError(t, err)
	y := codec(t, cfg, make([]float64, 4*cfg.NS), 120)
	for _, v := range y {
		assert.Less(t, math.Abs(v), 0.5)
	}
}

func TestConcealment(t *testing.T) {
	cfg, err := frame.Resolve(10000, 32000, false)
	require.NoError(t, err)
	x := signal(t, testsignal.Sine, cfg, 4)
	enc, err := encoder.New(cfg)
	require.NoError(t, err)
	dec, err := New(cfg)
	require.NoError(t, err)

	pcm := make([]float64, cfg.NS)
	buf := make([]byte, 80)
	for off := 0; off < len(x); off += cfg.NS {
		_, err := enc.Encode(x[off:off+cfg.NS], buf)
		require.NoError(t, err)
		_, err = dec.Decode(buf, pcm)
		require.NoError(t, err)
	}

	prevFade := 1.0
	for i := 1; i <= 6; i++ {
		st, err := dec.Decode(nil, pcm)
		require.NoError(t, err)
		assert.True(t, st.Concealed)
		assert.Equal(t, i, st.Lost)
		assert.LessOrEqual(t, st.Fade, prevFade)
		prevFade = st.Fade
		for _, v := range pcm {
			require.False(t, math.IsNaN(v))
		}
	}

	// A good frame ends the loss run.
	_, err = enc.Encode(x[:cfg.NS], buf)
	require.NoError(t, err)
	st, err := dec.Decode(buf, pcm)
	require.NoError(t, err)
	assert.False(t, st.Concealed)
}

func TestDecodeErrorsConceal(t *testing.T) {
	cfg, err := frame.Resolve(10000, 16000, false)
	require.NoError(t, err)
	dec, err := New(cfg)
	require.NoError(t, err)
	pcm := make([]float64, cfg.NS)

	corrupt := make([]byte, 40)
	for i := range corrupt {
		corrupt[i] = 0xff
	}
	st, err := dec.Decode(corrupt, pcm)
	assert.ErrorIs(t, err, bitstream.ErrCorrupt)
	assert.True(t, st.Concealed)

	st, err = dec.Decode(make([]byte, 10), pcm)
	assert.ErrorIs(t, err, bitstream.ErrTruncated)
	assert.True(t, st.Concealed)

	_, err = dec.Decode(make([]byte, 401), pcm)
	assert.ErrorIs(t, err, bitstream.ErrCorrupt)

	_, err = dec.Decode(make([]byte, 40), make([]float64, 3))
	assert.ErrorIs(t, err, frame.ErrUnsupported)
}
