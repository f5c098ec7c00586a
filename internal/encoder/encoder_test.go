package encoder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thesyncim/lc3/internal/frame"
	"github.com/thesyncim/lc3/internal/testsignal"
)

func pcmFrames(t *testing.T, kind testsignal.Kind, cfg frame.Config, frames int) [][]float64 {
	t.Helper()
	x, err := testsignal.Generate(kind, cfg.SampleRateHz(), frames*cfg.NS, 1)
	require.NoError(t, err)
	out := make([][]float64, frames)
	for f := range out {
		out[f] = make([]float64, cfg.NS)
		for i := range out[f] {
			out[f][i] = float64(x[f*cfg.NS+i]) * 32768
		}
	}
	return out
}

func TestEncodeAllConfigurations(t *testing.T) {
	for _, cfg := range frame.All() {
		t.Run(cfg.String(), func(t *testing.T) {
			enc, err := New(cfg)
			require.NoError(t, err)
			lo, hi := cfg.ByteRange()
			for i, pcm := range pcmFrames(t, testsignal.SpeechLike, cfg, 4) {
				for _, n := range []int{lo, (lo + hi) / 2, hi} {
					out := make([]byte, n)
					st, err := enc.Encode(pcm, out)
					require.NoError(t, err, "frame %d, %d bytes", i, n)
					assert.LessOrEqual(t, st.Bits, 8*n)
					assert.LessOrEqual(t, st.Residual, st.NonZero)
				}
			}
		})
	}
}

func TestEncodeDeterministic(t *testing.T) {
	cfg, err := frame.Resolve(10000, 48000, false)
	require.NoError(t, err)
	frames := pcmFrames(t, testsignal.AMMultisine, cfg, 6)

	run := func() []string {
		enc, err := New(cfg)
		require.NoError(t, err)
		var hashes []string
		for _, pcm := range frames {
			out := make([]byte, 120)
			_, err := enc.Encode(pcm, out)
			require.NoError(t, err)
			hashes = append(hashes, testsignal.Hash(out))
		}
		return hashes
	}
	assert.Equal(t, run(), run())
}

func TestEncodeSilence(t *testing.T) {
	cfg, err := frame.Resolve(10000, 48000, false)
	require.NoError(t, err)
	enc, err := New(cfg)
	require.NoError(t, err)

	out := make([]byte, 120)
	st, err := enc.Encode(make([]float64, cfg.NS), out)
	require.NoError(t, err)
	assert.Zero(t, st.NonZero)
	assert.False(t, st.Attack)
	assert.False(t, st.ZeroFrame)
	assert.Equal(t, 0, st.Bandwidth)
}

func TestEncodeRejects(t *testing.T) {
	cfg, err := frame.Resolve(5000, 16000, false)
	require.NoError(t, err)
	enc, err := New(cfg)
	require.NoError(t, err)

	_, err = enc.Encode(make([]float64, cfg.NS-1), make([]byte, 40))
	assert.ErrorIs(t, err, frame.ErrUnsupported)
	_, err = enc.Encode(make([]float64, cfg.NS), make([]byte, 19))
	assert.ErrorIs(t, err, frame.ErrUnsupported)
	_, err = enc.Encode(make([]float64, cfg.NS), make([]byte, 401))
	assert.ErrorIs(t, err, frame.ErrUnsupported)
}

func TestEncodeFlagsOnset(t *testing.T) {
	cfg, err := frame.Resolve(10000, 48000, false)
	require.NoError(t, err)
	enc, err := New(cfg)
	require.NoError(t, err)

	quiet := make([]float64, cfg.NS)
	for i := range quiet {
		quiet[i] = 10
	}
	_, err = enc.Encode(quiet, make([]byte, 100))
	require.NoError(t, err)

	loud := append([]float64(nil), quiet...)
	for i := cfg.NS - cfg.NS/16; i < cfg.NS; i++ {
		loud[i] *= 100
	}
	st, err := enc.Encode(loud, make([]byte, 100))
	require.NoError(t, err)
	assert.True(t, st.Attack)
}
