package mdct

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Frame lengths of every supported duration/rate pair.
var frameLengths = []int{20, 40, 60, 80, 120, 160, 180, 240, 320, 360, 480, 960}

func naiveMDCT(window, x []float64, n int) []float64 {
	out := make([]float64, n)
	scale := math.Sqrt(2 / float64(n))
	for k := 0; k < n; k++ {
		var acc float64
		for i := 0; i < 2*n; i++ {
			acc += window[i] * x[i] * math.Cos(math.Pi/float64(n)*(float64(i)+0.5+float64(n)/2)*(float64(k)+0.5))
		}
		out[k] = scale * acc
	}
	return out
}

func TestAnalyzeMatchesDefinition(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for _, n := range []int{20, 60, 80, 180} {
		tr, err := New(n)
		require.NoError(t, err)
		a := NewAnalyzer(tr)

		prev := make([]float64, n)
		cur := make([]float64, n)
		for i := range prev {
			prev[i] = rng.Float64()*2 - 1
			cur[i] = rng.Float64()*2 - 1
		}
		out := make([]float64, n)
		a.Analyze(out, prev)
		a.Analyze(out, cur)

		want := naiveMDCT(tr.Window(), append(append([]float64{}, prev...), cur...), n)
		for k := range want {
			assert.InDelta(t, want[k], out[k], 1e-9, "n=%d k=%d", n, k)
		}
	}
}

func TestPerfectReconstruction(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for _, n := range frameLengths {
		tr, err := New(n)
		require.NoError(t, err)
		a := NewAnalyzer(tr)
		s := NewSynthesizer(tr)

		const frames = 6
		in := make([]float64, frames*n)
		for i := range in {
			in[i] = 1000 * (rng.Float64()*2 - 1)
		}
		outSig := make([]float64, frames*n)
		coeffs := make([]float64, n)
		for f := 0; f < frames; f++ {
			a.Analyze(coeffs, in[f*n:(f+1)*n])
			s.Synthesize(outSig[f*n:(f+1)*n], coeffs)
		}

		d := tr.Delay()
		for i := d; i < len(in); i++ {
			assert.InDelta(t, in[i-d], outSig[i], 1e-9, "n=%d i=%d", n, i)
		}
		for i := 0; i < d; i++ {
			assert.InDelta(t, 0, outSig[i], 1e-9)
		}
	}
}

func TestInvalidLength(t *testing.T) {
	for _, n := range []int{0, 6, 42, 28} {
		_, err := New(n)
		assert.Error(t, err, "n=%d", n)
	}
}
