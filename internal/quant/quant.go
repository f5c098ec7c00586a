// Package quant implements the global gain quantizer: scalar quantization
// at a table gain, the rate-constrained gain search, noise filling of
// zeroed coefficients and residual refinement bits.
package quant

import (
	"math"

	"github.com/thesyncim/lc3/internal/tables"
)

// MaxMagnitude is the largest quantized magnitude.
const MaxMagnitude = 32767

// Gain index range.
const (
	MinGain = 0
	MaxGain = tables.GainSteps - 1
)

const roundOffset = 0.375

// Quantize writes the quantized spectrum of x at gain index g into xq.
func Quantize(x []float64, g int, xq []int32) {
	inv := tables.InverseGain()[g]
	for k, v := range x {
		a := math.Floor(math.Abs(v)*inv + roundOffset)
		if a > MaxMagnitude {
			a = MaxMagnitude
		}
		q := int32(a)
		if v < 0 {
			q = -q
		}
		xq[k] = q
	}
}

// Dequantize writes xq scaled by gain index g into x.
func Dequantize(xq []int32, g int, x []float64) {
	gain := tables.Gain()[g]
	for k, q := range xq {
		x[k] = float64(q) * gain
	}
}

// Search returns the smallest gain index for which fits reports true. fits
// must be monotonic: once true, true for every larger index. ok is false
// when not even MaxGain fits.
func Search(fits func(g int) bool) (g int, ok bool) {
	if !fits(MaxGain) {
		return MaxGain, false
	}
	lo, hi := MinGain, MaxGain
	for lo < hi {
		mid := (lo + hi) / 2
		if fits(mid) {
			hi = mid
		} else {
			lo = mid + 1
		}
	}
	return hi, true
}

// MinimumGain returns the smallest gain index at which no coefficient of x
// saturates. Smaller indices only waste search steps.
func MinimumGain(x []float64) int {
	var peak float64
	for _, v := range x {
		peak = max(peak, math.Abs(v))
	}
	inv := tables.InverseGain()
	g := MinGain
	for g < MaxGain && peak*inv[g]+roundOffset >= MaxMagnitude {
		g++
	}
	return g
}
