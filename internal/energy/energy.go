// Package energy computes per-band energies and the band-energy attack flag.
package energy

// AttackRatio is the high-to-low energy ratio above which a frame is flagged.
const AttackRatio = 30

// Compute stores the mean square of x over each band [limits[b],
// limits[b+1]) into e, and reports whether the summed energy of the last
// nHigh bands exceeds AttackRatio times the summed energy of the others.
//
// len(e) must be len(limits)-1.
func Compute(x []float64, limits []int, nHigh int, e []float64) bool {
	nb := len(limits) - 1
	for b := 0; b < nb; b++ {
		lo, hi := limits[b], limits[b+1]
		var sx2 float64
		for _, v := range x[lo:hi] {
			sx2 += v * v
		}
		e[b] = sx2 / float64(hi-lo)
	}

	var low, high float64
	for b := 0; b < nb-nHigh; b++ {
		low += e[b]
	}
	for b := nb - nHigh; b < nb; b++ {
		high += e[b]
	}
	return high > AttackRatio*low
}
