// Package tables generates the constant tables consumed by the codec.
//
// Every table is a closed-form function of its size and a few fixed
// constants. Tables are built on first use and shared read-only afterwards.
package tables

import (
	"math"
	"math/cmplx"
	"sync"
)

// GainOffset is the index offset of the global gain table: gain index g maps
// to 10^((g-GainOffset)/28).
const GainOffset = 100

// GainSteps is the number of global gain indices.
const GainSteps = 256

// TNSQuantSteps is the number of positive reflection coefficient levels.
const TNSQuantSteps = 8

// TNSMaxLag is the highest autocorrelation lag used by TNS.
const TNSMaxLag = 8

// FFTTwiddles returns exp(-2πi k/n) for k < n.
func FFTTwiddles(n int) []complex128 {
	tw := make([]complex128, n)
	for k := range tw {
		tw[k] = cmplx.Exp(complex(0, -2*math.Pi*float64(k)/float64(n)))
	}
	return tw
}

// MDCTPreTwiddle returns the DCT-IV pre-rotation exp(-iπ k/n) for k < n/2.
func MDCTPreTwiddle(n int) []complex128 {
	tw := make([]complex128, n/2)
	for k := range tw {
		tw[k] = cmplx.Exp(complex(0, -math.Pi*float64(k)/float64(n)))
	}
	return tw
}

// MDCTPostTwiddle returns the DCT-IV post-rotation exp(-iπ(4k+1)/(4n)) for
// k < n/2.
func MDCTPostTwiddle(n int) []complex128 {
	tw := make([]complex128, n/2)
	for k := range tw {
		tw[k] = cmplx.Exp(complex(0, -math.Pi*float64(4*k+1)/float64(4*n)))
	}
	return tw
}

// MDCTScale returns the orthonormal scaling sqrt(2/n) of an n-point MDCT.
func MDCTScale(n int) float64 {
	return math.Sqrt(2 / float64(n))
}

// Window returns the low-overlap analysis/synthesis window of length 2n.
//
// The window is zero on its first and last n/4 samples, rises and falls as a
// sine over n/2 samples and is flat in between. It satisfies the
// Princen-Bradley condition w[i]^2 + w[i+n]^2 = 1.
func Window(n int) []float64 {
	w := make([]float64, 2*n)
	z := n / 4
	l := n / 2
	for i := 0; i < l; i++ {
		v := math.Sin(0.5 * math.Pi * (float64(i) + 0.5) / float64(l))
		w[z+i] = v
		w[2*n-1-z-i] = v
	}
	for i := z + l; i < 2*n-z-l; i++ {
		w[i] = 1
	}
	return w
}

// Inverse returns [0, 1/1, 1/2 ... 1/27].
func Inverse() []float64 {
	inv := make([]float64, 28)
	for i := 1; i < len(inv); i++ {
		inv[i] = 1 / float64(i)
	}
	return inv
}

// SNSTilt returns the spectral tilt 10^(k·tilt/630) for k < 64.
func SNSTilt(tilt int) []float64 {
	ge := make([]float64, 64)
	for k := range ge {
		ge[k] = math.Pow(10, float64(k*tilt)/630)
	}
	return ge
}

// TNSLagWindow returns exp(-0.5·(0.02πk)^2) for k <= TNSMaxLag.
func TNSLagWindow() []float64 {
	w := make([]float64, TNSMaxLag+1)
	for k := range w {
		v := 0.02 * math.Pi * float64(k)
		w[k] = math.Exp(-0.5 * v * v)
	}
	return w
}

// TNSQuantThresholds returns the arcsine-spaced decision thresholds
// sin((i+0.5)π/17) for i < TNSQuantSteps.
func TNSQuantThresholds() []float64 {
	t := make([]float64, TNSQuantSteps)
	for i := range t {
		t[i] = math.Sin((float64(i) + 0.5) * math.Pi / 17)
	}
	return t
}

// TNSQuantLevels returns the reconstruction levels sin(iπ/17) for
// i <= TNSQuantSteps.
func TNSQuantLevels() []float64 {
	q := make([]float64, TNSQuantSteps+1)
	for i := range q {
		q[i] = math.Sin(float64(i) * math.Pi / 17)
	}
	return q
}

// GainTable returns the global gain table 10^((g-GainOffset)/28).
func GainTable() []float64 {
	g := make([]float64, GainSteps)
	for i := range g {
		g[i] = math.Pow(10, float64(i-GainOffset)/28)
	}
	return g
}

// InverseGainTable returns 10^((GainOffset-g)/28), the reciprocal of
// GainTable computed directly.
func InverseGainTable() []float64 {
	g := make([]float64, GainSteps)
	for i := range g {
		g[i] = math.Pow(10, float64(GainOffset-i)/28)
	}
	return g
}

// bandWarp shapes the low band layout: narrow bands at low frequencies,
// wider towards the top.
const bandWarp = 2.5

// BandLimits returns nb+1 increasing band limits over ns coefficients.
//
// The last nHigh bands split [15·ns/16, ns) evenly, the remaining bands
// cover [0, 15·ns/16) with a warped layout and at least one coefficient each.
func BandLimits(ns, nHigh int) []int {
	s0 := 15 * ns / 16
	nb := BandCount(ns, nHigh)
	nLow := nb - nHigh

	lim := make([]int, nb+1)
	den := math.Exp(bandWarp) - 1
	for b := 1; b < nLow; b++ {
		u := float64(b) / float64(nLow)
		t := int(math.Round(float64(s0) * (math.Exp(bandWarp*u) - 1) / den))
		lo := lim[b-1] + 1
		hi := s0 - (nLow - b)
		if t < lo {
			t = lo
		}
		if t > hi {
			t = hi
		}
		lim[b] = t
	}
	for j := 0; j <= nHigh; j++ {
		lim[nLow+j] = s0 + j*(ns-s0)/nHigh
	}
	return lim
}

// BandCount returns the number of bands BandLimits produces.
func BandCount(ns, nHigh int) int {
	nb := 15*ns/16 + nHigh
	if nb > 64 {
		nb = 64
	}
	return nb
}

var (
	sharedOnce sync.Once
	shared     struct {
		gain, invGain        []float64
		lagWindow            []float64
		tnsThresh, tnsLevels []float64
		inv                  []float64
	}
)

func loadShared() {
	sharedOnce.Do(func() {
		shared.gain = GainTable()
		shared.invGain = InverseGainTable()
		shared.lagWindow = TNSLagWindow()
		shared.tnsThresh = TNSQuantThresholds()
		shared.tnsLevels = TNSQuantLevels()
		shared.inv = Inverse()
	})
}

// Gain returns the shared global gain table. Callers must not modify it.
func Gain() []float64 { loadShared(); return shared.gain }

// InverseGain returns the shared inverse gain table. Callers must not modify it.
func InverseGain() []float64 { loadShared(); return shared.invGain }

// LagWindow returns the shared TNS lag window. Callers must not modify it.
func LagWindow() []float64 { loadShared(); return shared.lagWindow }

// Thresholds returns the shared TNS quantization thresholds.
func Thresholds() []float64 { loadShared(); return shared.tnsThresh }

// Levels returns the shared TNS reconstruction levels.
func Levels() []float64 { loadShared(); return shared.tnsLevels }

// Reciprocals returns the shared [0, 1/1 ... 1/27] table.
func Reciprocals() []float64 { loadShared(); return shared.inv }
