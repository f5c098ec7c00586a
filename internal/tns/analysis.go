package tns

import "github.com/thesyncim/lc3/internal/tables"

// Analyzer derives filters from a spectrum. It holds scratch space only.
type Analyzer struct {
	r [MaxOrder + 1]float64
	a [MaxOrder + 1]float64
	t [MaxOrder + 1]float64
}

// Analyze fills p with the quantized filters for x under the layout s.
// nbits is the frame budget; small budgets soften weak filters. x is not
// modified.
func (an *Analyzer) Analyze(x []float64, s Setup, nbits, durationMicros int, p *Params) {
	p.Reset()
	lowRate := nbits < lowRateBits10ms*durationMicros/10000
	for f := 0; f < s.NumFilters; f++ {
		order := s.MaxOrder
		if !an.autocorrelate(x[s.Start[f]:s.Stop[f]], order) {
			continue
		}
		pg := an.levinson(order)
		if pg <= minPredGain {
			continue
		}
		if lowRate && pg < weightPredGain {
			gamma := 1 - maxWeightAtten*(weightPredGain-pg)/(weightPredGain-minPredGain)
			w := gamma
			for i := 1; i <= order; i++ {
				an.a[i] *= w
				w *= gamma
			}
		}
		an.reflection(order)

		flt := &p.Filters[f]
		for i := 0; i < order; i++ {
			flt.Index[i] = quantize(an.t[i+1])
			if flt.Index[i] != ZeroIndex {
				flt.Order = i + 1
			}
		}
		for i := flt.Order; i < MaxOrder; i++ {
			flt.Index[i] = ZeroIndex
		}
	}
}

// autocorrelate stores the lag-windowed, section-normalized
// autocorrelation of x into an.r. It reports false when a section holds
// no energy or x is too short to filter.
func (an *Analyzer) autocorrelate(x []float64, order int) bool {
	n := len(x)
	if n < sections*(order+1) {
		return false
	}
	clear(an.r[:])
	for s := 0; s < sections; s++ {
		lo, hi := s*n/sections, (s+1)*n/sections
		var e float64
		for _, v := range x[lo:hi] {
			e += v * v
		}
		if e == 0 {
			return false
		}
		for k := 0; k <= order; k++ {
			var c float64
			for i := lo; i+k < hi; i++ {
				c += x[i] * x[i+k]
			}
			an.r[k] += c / e
		}
	}
	lw := tables.LagWindow()
	for k := 0; k <= order; k++ {
		an.r[k] *= lw[k]
	}
	return true
}

// levinson solves the normal equations for an.r into an.a (a[0] = 1) and
// returns the prediction gain.
func (an *Analyzer) levinson(order int) float64 {
	clear(an.a[:])
	an.a[0] = 1
	err := an.r[0]
	for m := 1; m <= order; m++ {
		acc := an.r[m]
		for i := 1; i < m; i++ {
			acc += an.a[i] * an.r[m-i]
		}
		k := -acc / err
		copy(an.t[:m], an.a[:m])
		for i := 1; i < m; i++ {
			an.a[i] = an.t[i] + k*an.t[m-i]
		}
		an.a[m] = k
		err *= 1 - k*k
		if err <= 0 {
			return 0
		}
	}
	return an.r[0] / err
}

// reflection converts an.a to reflection coefficients in an.t[1..order].
func (an *Analyzer) reflection(order int) {
	var a [MaxOrder + 1]float64
	copy(a[:], an.a[:])
	for m := order; m >= 1; m-- {
		k := a[m]
		an.t[m] = k
		d := 1 - k*k
		var b [MaxOrder + 1]float64
		for i := 1; i < m; i++ {
			b[i] = (a[i] - k*a[m-i]) / d
		}
		copy(a[1:m], b[1:m])
	}
}
