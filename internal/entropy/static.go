package entropy

import (
	"math"

	"github.com/thesyncim/lc3/internal/rangecoding"
)

// staticScale is the frequency of the most probable symbol of a static model.
const staticScale = 1 << 10

// Static is a fixed frequency model for side information.
type Static struct {
	cum []uint32 // cum[s] is the cumulative frequency below symbol s
}

// NewStatic builds a model from per-symbol frequencies, all non-zero.
func NewStatic(freq []uint32) *Static {
	cum := make([]uint32, len(freq)+1)
	for s, f := range freq {
		cum[s+1] = cum[s] + max(1, f)
	}
	return &Static{cum: cum}
}

// Geometric returns a model of n symbols where symbol s has probability
// proportional to ratio^|s-center|.
func Geometric(n, center int, ratio float64) *Static {
	freq := make([]uint32, n)
	for s := range freq {
		d := s - center
		if d < 0 {
			d = -d
		}
		freq[s] = uint32(math.Round(staticScale * math.Pow(ratio, float64(d))))
	}
	return NewStatic(freq)
}

// Len returns the number of symbols.
func (m *Static) Len() int { return len(m.cum) - 1 }

func (m *Static) total() uint32 { return m.cum[len(m.cum)-1] }

// Encode codes symbol s.
func (m *Static) Encode(e *rangecoding.Encoder, s int) {
	e.Encode(m.cum[s], m.cum[s+1], m.total())
}

// Decode returns the next symbol.
func (m *Static) Decode(d *rangecoding.Decoder) int {
	ft := m.total()
	f := d.Decode(ft)
	s := 0
	for m.cum[s+1] <= f {
		s++
	}
	d.Update(m.cum[s], m.cum[s+1], ft)
	return s
}
