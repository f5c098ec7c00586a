// Package sns implements spectral noise shaping: a 16 dimensional
// scale-factor envelope derived from band energies, quantized with a two
// stage vector quantizer and interpolated back to per-band gains.
package sns

import "math"

// Dims is the dimension of the scale-factor envelope.
const Dims = 16

const (
	extBands     = 64
	noiseFloor   = 1e-4
	minEnergy    = 1.0 / (1 << 32)
	shapeScale   = 0.85
	attackWeight = 0.5
)

var downsample = [6]float64{1.0 / 12, 2.0 / 12, 3.0 / 12, 3.0 / 12, 2.0 / 12, 1.0 / 12}

// Analyzer derives unquantized envelopes. It holds scratch space only.
type Analyzer struct {
	e64 [extBands]float64
	es  [extBands]float64
}

// Analyze computes the envelope of the band energies e into scf (len Dims).
// tilt holds the 64 pre-emphasis factors of the sample rate. Attack frames
// get a smoother, flatter envelope.
func (a *Analyzer) Analyze(e, tilt []float64, attack bool, scf []float64) {
	nb := len(e)
	for i := range a.e64 {
		a.e64[i] = e[i*nb/extBands]
	}

	x := a.e64[:]
	s := a.es[:]
	s[0] = 0.75*x[0] + 0.25*x[1]
	for i := 1; i < extBands-1; i++ {
		s[i] = 0.25*x[i-1] + 0.5*x[i] + 0.25*x[i+1]
	}
	s[extBands-1] = 0.25*x[extBands-2] + 0.75*x[extBands-1]

	var mean float64
	for i := range s {
		s[i] *= tilt[i]
		mean += s[i]
	}
	mean /= extBands
	floor := max(mean*noiseFloor, minEnergy)
	for i := range s {
		s[i] = math.Log2(max(s[i], floor)) / 2
	}

	for b := 0; b < Dims; b++ {
		var v float64
		for k, w := range downsample {
			j := min(extBands-1, max(0, 4*b+k-1))
			v += w * s[j]
		}
		scf[b] = v
	}
	removeMean(scf, shapeScale)

	if attack {
		var t [Dims]float64
		for b := range t {
			lo, hi := max(0, b-1), min(Dims-1, b+1)
			var v float64
			for j := lo; j <= hi; j++ {
				v += scf[j]
			}
			t[b] = v / float64(hi-lo+1)
		}
		copy(scf, t[:])
		removeMean(scf, attackWeight)
	}
}

func removeMean(v []float64, scale float64) {
	var mean float64
	for _, x := range v {
		mean += x
	}
	mean /= float64(len(v))
	for i := range v {
		v[i] = scale * (v[i] - mean)
	}
}

// Interpolate expands a quantized envelope to the per-band gains
// 2^-scf of nb bands.
func Interpolate(scfQ []float64, g []float64) {
	var s [extBands]float64
	s[0] = scfQ[0]
	s[1] = scfQ[0]
	for n := 0; n < Dims-1; n++ {
		d := scfQ[n+1] - scfQ[n]
		s[4*n+2] = scfQ[n] + d/8
		s[4*n+3] = scfQ[n] + 3*d/8
		s[4*n+4] = scfQ[n] + 5*d/8
		s[4*n+5] = scfQ[n] + 7*d/8
	}
	d := scfQ[Dims-1] - scfQ[Dims-2]
	s[62] = scfQ[Dims-1] + d/8
	s[63] = scfQ[Dims-1] + 3*d/8

	nb := len(g)
	for b := range g {
		j := b
		if nb < extBands {
			j = (2*b + 1) * extBands / (2 * nb)
		}
		g[b] = math.Exp2(-s[j])
	}
}

// Flatten divides the spectrum by the envelope: x[k] *= g[b] over each band.
func Flatten(x []float64, limits []int, g []float64) {
	for b, gb := range g {
		for k := limits[b]; k < limits[b+1]; k++ {
			x[k] *= gb
		}
	}
}

// Restore reapplies the envelope removed by Flatten.
func Restore(x []float64, limits []int, g []float64) {
	for b, gb := range g {
		inv := 1 / gb
		for k := limits[b]; k < limits[b+1]; k++ {
			x[k] *= inv
		}
	}
}
