// Package bandwidth detects the audio bandwidth of a frame from its band
// energies.
package bandwidth

import "github.com/thesyncim/lc3/internal/frame"

// cutoffs are the band-limited candidates in Hz. The full band is always the
// last candidate.
var cutoffs = [...]int{4000, 8000, 12000, 16000, 20000}

// quietEnergy is the mean band energy under which a region counts as empty.
const quietEnergy = 100

// Candidates returns the coefficient stop of each bandwidth candidate of
// cfg in increasing order. The last stop is always NS.
func Candidates(cfg frame.Config) []int {
	var stops []int
	for _, f := range cutoffs {
		if 2*f < cfg.SampleRateHz() {
			stops = append(stops, cfg.Bin(f))
		}
	}
	return append(stops, cfg.NS)
}

// CutoffHz returns the upper frequency of candidate i.
func CutoffHz(cfg frame.Config, i int) int {
	n := len(Candidates(cfg))
	if i >= n-1 {
		return cfg.SampleRateHz() / 2
	}
	return cutoffs[i]
}

// Detect returns the index into stops of the narrowest candidate holding the
// frame's energy: the highest candidate whose top region is not quiet.
func Detect(e []float64, limits []int, stops []int) int {
	for i := len(stops) - 1; i > 0; i-- {
		lo, hi := stops[i-1], stops[i]
		var sum float64
		n := 0
		for b := 0; b < len(e); b++ {
			c := (limits[b] + limits[b+1]) / 2
			if c >= lo && c < hi {
				sum += e[b]
				n++
			}
		}
		if n == 0 || sum/float64(n) >= quietEnergy {
			return i
		}
	}
	return 0
}
