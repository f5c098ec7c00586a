// Package mdct implements the low-delay windowed MDCT used by the codec.
//
// A Transform of length n maps 2n windowed time samples to n coefficients
// through a fold and an n-point DCT-IV, the DCT-IV being computed with an
// n/2-point complex FFT between a pre and a post rotation. The transform is
// orthonormal, so the same Transform inverts itself.
package mdct

import (
	"fmt"

	"github.com/thesyncim/lc3/internal/fft"
	"github.com/thesyncim/lc3/internal/tables"
)

// Transform holds the immutable tables of an n-coefficient MDCT.
// It is safe for concurrent use; per-stream state lives in Analyzer and
// Synthesizer.
type Transform struct {
	n      int
	window []float64
	pre    []complex128
	post   []complex128
	scale  float64
	plan   *fft.Plan
}

// New builds a transform producing n coefficients per frame. n must be a
// multiple of 4 whose half factors into 2, 3 and 5.
func New(n int) (*Transform, error) {
	if n <= 0 || n%4 != 0 {
		return nil, fmt.Errorf("mdct: invalid length %d", n)
	}
	plan, err := fft.NewPlan(n / 2)
	if err != nil {
		return nil, fmt.Errorf("mdct: %w", err)
	}
	return &Transform{
		n:      n,
		window: tables.Window(n),
		pre:    tables.MDCTPreTwiddle(n),
		post:   tables.MDCTPostTwiddle(n),
		scale:  tables.MDCTScale(n),
		plan:   plan,
	}, nil
}

// Len returns the number of coefficients per frame.
func (t *Transform) Len() int {
	return t.n
}

// Delay returns the algorithmic delay in samples of an analysis/synthesis
// pair.
func (t *Transform) Delay() int {
	return 3 * t.n / 4
}

// Window returns the 2n-sample window. Callers must not modify it.
func (t *Transform) Window() []float64 {
	return t.window
}

// scratch is the per-stream working memory of a DCT-IV.
type scratch struct {
	fold []float64
	in   []complex128
	out  []complex128
}

func newScratch(n int) scratch {
	return scratch{
		fold: make([]float64, n),
		in:   make([]complex128, n/2),
		out:  make([]complex128, n/2),
	}
}

// dct4 computes the orthonormal DCT-IV of u into x (len n each).
func (t *Transform) dct4(x, u []float64, s *scratch) {
	n := t.n
	h := n / 2
	for k := 0; k < h; k++ {
		s.in[k] = complex(u[2*k], u[n-1-2*k]) * t.pre[k]
	}
	t.plan.Transform(s.out, s.in)
	for k := 0; k < h; k++ {
		y := s.out[k] * t.post[k]
		x[2*k] = t.scale * real(y)
		x[n-1-2*k] = -t.scale * imag(y)
	}
}

// Analyzer performs the forward transform of consecutive frames, keeping the
// previous frame's samples as the first half of each window.
type Analyzer struct {
	t    *Transform
	hist []float64
	win  []float64
	s    scratch
}

// NewAnalyzer returns an Analyzer with a silent history.
func NewAnalyzer(t *Transform) *Analyzer {
	return &Analyzer{
		t:    t,
		hist: make([]float64, t.n),
		win:  make([]float64, 2*t.n),
		s:    newScratch(t.n),
	}
}

// Reset clears the history.
func (a *Analyzer) Reset() {
	clear(a.hist)
}

// Analyze transforms the n new samples in x into n coefficients in out.
func (a *Analyzer) Analyze(out, x []float64) {
	n := a.t.n
	w := a.t.window
	z := a.win
	for i := 0; i < n; i++ {
		z[i] = w[i] * a.hist[i]
		z[n+i] = w[n+i] * x[i]
	}
	copy(a.hist, x[:n])

	u := a.s.fold
	h := n / 2
	for i := 0; i < h; i++ {
		u[i] = -z[3*h-1-i] - z[3*h+i]
	}
	for i := h; i < n; i++ {
		u[i] = z[i-h] - z[3*h-1-i]
	}
	a.t.dct4(out, u, &a.s)
}

// Synthesizer performs the inverse transform with windowed overlap-add.
type Synthesizer struct {
	t    *Transform
	tail []float64
	u    []float64
	z    []float64
	s    scratch
}

// NewSynthesizer returns a Synthesizer with a silent overlap.
func NewSynthesizer(t *Transform) *Synthesizer {
	return &Synthesizer{
		t:    t,
		tail: make([]float64, 3*t.n/4),
		u:    make([]float64, t.n),
		z:    make([]float64, 2*t.n),
		s:    newScratch(t.n),
	}
}

// Reset clears the overlap.
func (s *Synthesizer) Reset() {
	clear(s.tail)
}

// Synthesize inverts the n coefficients in x and writes n output samples,
// delayed by Delay samples relative to the analysis input.
func (s *Synthesizer) Synthesize(out, x []float64) {
	n := s.t.n
	h := n / 2
	s.t.dct4(s.u, x, &s.s)

	z := s.z
	w := s.t.window
	for m := 0; m < h; m++ {
		z[m] = s.u[m+h]
	}
	for m := h; m < 3*h; m++ {
		z[m] = -s.u[3*h-1-m]
	}
	for m := 3 * h; m < 2*n; m++ {
		z[m] = -s.u[m-3*h]
	}
	for m := range z {
		z[m] *= w[m]
	}

	q := n / 4
	nt := len(s.tail)
	for k := 0; k < n; k++ {
		v := z[q+k]
		if k < nt {
			v += s.tail[k]
		}
		out[k] = v
	}
	copy(s.tail, z[n+q:])
}
