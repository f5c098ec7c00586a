package quant

import "github.com/thesyncim/lc3/internal/tables"

// Residual refinement: one bit per non-zero coefficient, in frequency
// order, telling on which side of the reconstruction point the
// unquantized value lies.

// ResidualBits writes up to len(bits) refinement bits of x against xq at
// gain index g and returns how many were written.
func ResidualBits(x []float64, xq []int32, g int, bits []uint8) int {
	inv := tables.InverseGain()[g]
	n := 0
	for k, q := range xq {
		if q == 0 {
			continue
		}
		if n == len(bits) {
			break
		}
		bits[n] = 0
		if x[k]*inv > float64(q) {
			bits[n] = 1
		}
		n++
	}
	return n
}

// ApplyResidual refines the dequantized spectrum x with bits.
func ApplyResidual(x []float64, xq []int32, g int, bits []uint8) {
	gain := tables.Gain()[g]
	n := 0
	for k, q := range xq {
		if q == 0 {
			continue
		}
		if n == len(bits) {
			return
		}
		var d float64
		switch {
		case q > 0 && bits[n] != 0:
			d = 0.3125
		case q > 0:
			d = -0.1875
		case bits[n] != 0:
			d = 0.1875
		default:
			d = -0.3125
		}
		x[k] += d * gain
		n++
	}
}
