// Package attack implements the time-domain attack detector.
//
// The input is decimated to 16 kHz and high-passed, then split into short
// blocks. A block whose energy jumps above a slowly decaying running level
// marks the frame as an attack. Late attacks also mark the following frame.
package attack

import "github.com/thesyncim/lc3/internal/frame"

const (
	// decimatedRate is the analysis rate of the detector.
	decimatedRate = 16000

	// blockSamples is the block length at the analysis rate.
	blockSamples = 40

	// jumpRatio is the block energy increase flagging an attack.
	jumpRatio = 8.5

	// levelDecay is the running level decay per block.
	levelDecay = 0.25
)

// minBytes is the smallest frame size enabling the detector, per duration.
var minBytes = [...]int{0, 0, 61, 81}

// Detector carries the detector state across frames of one stream.
type Detector struct {
	cfg    frame.Config
	factor int
	nblk   int
	xs     []float64

	x1, x2 float64 // decimated history
	en1    float64 // energy of the previous block
	an1    float64 // running level
	pAtt   int     // attack block of the previous frame, -1 if none
}

// New returns a detector for cfg.
func New(cfg frame.Config) *Detector {
	d := &Detector{cfg: cfg, pAtt: -1}
	d.factor = cfg.SampleRateHz() / decimatedRate
	if d.factor < 1 {
		d.factor = 1
	}
	d.nblk = cfg.NS / d.factor / blockSamples
	d.xs = make([]float64, cfg.NS/d.factor)
	return d
}

// Active reports whether the detector runs for frames of nbytes.
func (d *Detector) Active(nbytes int) bool {
	if d.cfg.SampleRateHz() < 32000 {
		return false
	}
	if d.cfg.Duration != frame.Duration7500us && d.cfg.Duration != frame.Duration10000us {
		return false
	}
	return nbytes >= minBytes[d.cfg.Duration]
}

// Reset clears the carried state.
func (d *Detector) Reset() {
	d.x1, d.x2 = 0, 0
	d.en1, d.an1 = 0, 0
	d.pAtt = -1
}

// Run analyses one frame of NS samples and reports whether it is an attack.
// Inactive frames reset the state and are never attacks.
func (d *Detector) Run(x []float64, nbytes int) bool {
	if !d.Active(nbytes) {
		d.Reset()
		return false
	}

	for n := range d.xs {
		var s float64
		for _, v := range x[n*d.factor : (n+1)*d.factor] {
			s += v
		}
		d.xs[n] = s
	}

	pAtt := -1
	for j := 0; j < d.nblk; j++ {
		var e float64
		for _, v := range d.xs[j*blockSamples : (j+1)*blockSamples] {
			hp := 0.375*v - 0.5*d.x1 + 0.125*d.x2
			d.x2, d.x1 = d.x1, v
			e += hp * hp
		}
		a := max(levelDecay*d.an1, d.en1)
		if e > jumpRatio*a {
			pAtt = j
		}
		d.en1, d.an1 = e, a
	}

	flag := pAtt >= 0 || d.pAtt >= d.nblk/2
	d.pAtt = pAtt
	return flag
}
