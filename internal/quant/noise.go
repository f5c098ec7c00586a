package quant

import (
	"math"

	"github.com/thesyncim/lc3/internal/tables"
)

// Noise filling replaces coefficients quantized to zero with pseudo-random
// values of a transmitted level.
const (
	NoiseBits   = 3
	NoiseLevels = 1 << NoiseBits
)

// NoiseStart returns the first coefficient eligible for noise filling.
func NoiseStart(ns int) int {
	return ns / 16
}

// NoiseLevel estimates the level of the coefficients of x zeroed by xq in
// [start, stop) at gain index g.
func NoiseLevel(x []float64, xq []int32, g, start, stop int) int {
	inv := tables.InverseGain()[g]
	var sum float64
	n := 0
	for k := start; k < stop; k++ {
		if xq[k] == 0 {
			sum += math.Abs(x[k]) * inv
			n++
		}
	}
	if n == 0 {
		return NoiseLevels - 1
	}
	l := int(math.Round(NoiseLevels - 2*NoiseLevels*sum/float64(n)))
	return max(0, min(NoiseLevels-1, l))
}

// noiseSeed derives the fill seed from the decoded spectrum so that both
// sides draw the same sequence.
func noiseSeed(xq []int32) uint32 {
	var s uint32
	for k, q := range xq {
		if q < 0 {
			q = -q
		}
		s += uint32(k) * uint32(q)
	}
	return s & 0xffff
}

// FillNoise writes noise at level into the coefficients of x zeroed by xq
// in [start, stop), at gain index g.
func FillNoise(x []float64, xq []int32, g, level, start, stop int) {
	v := float64(NoiseLevels-level) / (2 * NoiseLevels) * tables.Gain()[g]
	seed := noiseSeed(xq)
	for k := start; k < stop; k++ {
		if xq[k] != 0 {
			continue
		}
		seed = (13849 + seed*31821) & 0xffff
		if seed&0x8000 != 0 {
			x[k] = -v
		} else {
			x[k] = v
		}
	}
}
