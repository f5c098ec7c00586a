package tns

// Whiten runs the analysis lattice of each active filter over its range of
// x, in place.
func Whiten(x []float64, s Setup, p *Params) {
	var rc [MaxOrder]float64
	for f := 0; f < s.NumFilters; f++ {
		flt := &p.Filters[f]
		if flt.Order == 0 {
			continue
		}
		for i := 0; i < flt.Order; i++ {
			rc[i] = Reflection(flt.Index[i])
		}
		var st [MaxOrder]float64
		for n := s.Start[f]; n < s.Stop[f]; n++ {
			fw, bw := x[n], x[n]
			for m := 0; m < flt.Order; m++ {
				prev := st[m]
				st[m] = bw
				fw, bw = fw+rc[m]*prev, prev+rc[m]*fw
			}
			x[n] = fw
		}
	}
}

// Color runs the synthesis lattice, the exact inverse of Whiten, in place.
func Color(x []float64, s Setup, p *Params) {
	var rc [MaxOrder]float64
	for f := 0; f < s.NumFilters; f++ {
		flt := &p.Filters[f]
		if flt.Order == 0 {
			continue
		}
		for i := 0; i < flt.Order; i++ {
			rc[i] = Reflection(flt.Index[i])
		}
		var st [MaxOrder]float64
		for n := s.Start[f]; n < s.Stop[f]; n++ {
			fw := x[n]
			for m := flt.Order - 1; m >= 0; m-- {
				fw -= rc[m] * st[m]
				if m+1 < flt.Order {
					st[m+1] = st[m] + rc[m]*fw
				}
			}
			st[0] = fw
			x[n] = fw
		}
	}
}
