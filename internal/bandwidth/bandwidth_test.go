package bandwidth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thesyncim/lc3/internal/frame"
)

func TestCandidates(t *testing.T) {
	tests := map[string]struct {
		us, hz int
		want   []int
	}{
		"10ms/8k":  {10000, 8000, []int{80}},
		"10ms/16k": {10000, 16000, []int{80, 160}},
		"10ms/48k": {10000, 48000, []int{80, 160, 240, 320, 400, 480}},
		"5ms/32k":  {5000, 32000, []int{40, 80, 120, 160}},
		"10ms/96k": {10000, 96000, []int{80, 160, 240, 320, 400, 960}},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			c, err := frame.Resolve(tc.us, tc.hz, tc.hz == 96000)
			require.NoError(t, err)
			assert.Equal(t, tc.want, Candidates(c))
		})
	}
}

func TestDetect(t *testing.T) {
	c, err := frame.Resolve(10000, 48000, false)
	require.NoError(t, err)
	s, err := frame.Lookup(c)
	require.NoError(t, err)
	stops := Candidates(c)

	energies := func(stop int) []float64 {
		e := make([]float64, c.NB)
		for b := range e {
			if s.Limits[b+1] <= stop {
				e[b] = 1e6
			}
		}
		return e
	}

	for i, stop := range stops {
		assert.Equal(t, i, Detect(energies(stop), s.Limits, stops), "stop %d", stop)
	}
	assert.Equal(t, 0, Detect(make([]float64, c.NB), s.Limits, stops))
	assert.Equal(t, 24000, CutoffHz(c, len(stops)-1))
	assert.Equal(t, 8000, CutoffHz(c, 1))
}
