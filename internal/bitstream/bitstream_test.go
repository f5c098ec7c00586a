package bitstream

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thesyncim/lc3/internal/bandwidth"
	"github.com/thesyncim/lc3/internal/frame"
	"github.com/thesyncim/lc3/internal/sns"
	"github.com/thesyncim/lc3/internal/tns"
)

func mustConfig(t *testing.T, us, hz int) frame.Config {
	t.Helper()
	c, err := frame.Resolve(us, hz, hz == 96000)
	require.NoError(t, err)
	return c
}

func randomFrame(rng *rand.Rand, cfg frame.Config, active int) *Frame {
	f := NewFrame(cfg)
	f.Bandwidth = rng.IntN(len(bandwidth.Candidates(cfg)))
	f.Attack = rng.IntN(2) == 1

	shape := rng.IntN(len(sns.Shapes))
	sh := sns.Shapes[shape]
	f.SNS = sns.Index{
		LF:    rng.IntN(sns.Stage1Size),
		HF:    rng.IntN(sns.Stage1Size),
		Shape: shape,
		Gain:  rng.IntN(sh.Gains),
		A:     rng.Uint32N(sh.SizeA()),
	}
	if sh.NB > 0 {
		f.SNS.B = rng.Uint32N(sh.SizeB())
	}

	f.TNS.Reset()
	setup := TNSSetup(cfg, f.Bandwidth)
	for i := 0; i < setup.NumFilters; i++ {
		flt := &f.TNS.Filters[i]
		flt.Order = rng.IntN(setup.MaxOrder + 1)
		for k := 0; k < flt.Order; k++ {
			flt.Index[k] = rng.IntN(tns.Levels)
		}
	}

	f.Gain = rng.IntN(256)
	f.NoiseLevel = rng.IntN(8)
	for k := 0; k < active; k++ {
		f.Spectrum[k] = int32(rng.IntN(9) - 4)
	}
	for _, q := range f.Spectrum {
		if q != 0 {
			f.Residual = append(f.Residual, uint8(rng.IntN(2)))
		}
	}
	return f
}

func TestPackUnpack(t *testing.T) {
	rng := rand.New(rand.NewPCG(12, 34))
	for _, tc := range []struct {
		us, hz, nbytes, active int
	}{
		{10000, 48000, 400, 120},
		{10000, 48000, 120, 40},
		{2500, 8000, 40, 8},
		{5000, 32000, 100, 30},
		{7500, 24000, 200, 60},
		{10000, 96000, 625, 200},
	} {
		cfg := mustConfig(t, tc.us, tc.hz)
		for trial := 0; trial < 10; trial++ {
			in := randomFrame(rng, cfg, tc.active)

			w := NewWriter(cfg)
			w.Reset(make([]byte, tc.nbytes))
			require.True(t, w.WriteSide(&in.Side))
			require.True(t, w.WriteBody(in.Gain, in.Spectrum))
			data, n, err := w.Finish(in.NoiseLevel, in.Residual)
			require.NoError(t, err)
			require.Len(t, data, tc.nbytes)

			out := NewFrame(cfg)
			require.NoError(t, NewReader(cfg).Read(data, out))
			assert.Equal(t, in.Side, out.Side, "%s trial %d", cfg, trial)
			assert.Equal(t, in.Spectrum, out.Spectrum)
			assert.Equal(t, in.Residual[:n], out.Residual)
		}
	}
}

func TestPackExactSize(t *testing.T) {
	cfg := mustConfig(t, 10000, 48000)
	f := NewFrame(cfg)
	f.TNS.Reset()
	for _, n := range []int{20, 57, 120, 400} {
		data, err := Pack(cfg, f, n)
		require.NoError(t, err)
		assert.Len(t, data, n)

		out := NewFrame(cfg)
		require.NoError(t, NewReader(cfg).Read(data, out))
		assert.Equal(t, f.Side, out.Side)
	}
}

func TestPackOverflow(t *testing.T) {
	cfg := mustConfig(t, 10000, 48000)
	f := NewFrame(cfg)
	f.TNS.Reset()
	for k := range f.Spectrum {
		f.Spectrum[k] = 1000
	}
	_, err := Pack(cfg, f, 20)
	assert.ErrorIs(t, err, ErrOverflow)
}

func TestReadTruncated(t *testing.T) {
	cfg := mustConfig(t, 10000, 48000)
	err := NewReader(cfg).Read(make([]byte, 2), NewFrame(cfg))
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestReadCorrupt(t *testing.T) {
	cfg := mustConfig(t, 10000, 16000)
	data := make([]byte, 40)
	for i := range data {
		data[i] = 0xff
	}
	err := NewReader(cfg).Read(data, NewFrame(cfg))
	assert.ErrorIs(t, err, ErrCorrupt)
}
