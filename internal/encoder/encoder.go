// Package encoder runs the per-channel encoding pipeline: attack detection,
// MDCT, bandwidth detection, spectral and temporal noise shaping, the global
// gain search and frame packing.
package encoder

import (
	"errors"
	"fmt"

	"github.com/thesyncim/lc3/internal/attack"
	"github.com/thesyncim/lc3/internal/bandwidth"
	"github.com/thesyncim/lc3/internal/bitstream"
	"github.com/thesyncim/lc3/internal/energy"
	"github.com/thesyncim/lc3/internal/frame"
	"github.com/thesyncim/lc3/internal/mdct"
	"github.com/thesyncim/lc3/internal/quant"
	"github.com/thesyncim/lc3/internal/sns"
	"github.com/thesyncim/lc3/internal/tns"
)

// ErrSideInfo indicates a byte budget too small for the side information.
var ErrSideInfo = errors.New("encoder: side information does not fit")

// Stats describes one encoded frame.
type Stats struct {
	Bandwidth   int // bandwidth candidate index
	BandwidthHz int
	Attack      bool
	Gain        int
	SNSShape    int
	TNSOrders   [tns.MaxFilters]int
	TNSDropped  bool // filters were found but did not fit
	NonZero     int  // non-zero quantized coefficients
	ZeroFrame   bool // no gain fit, the spectrum was dropped
	NoiseLevel  int
	Residual    int // residual refinement bits
	Bits        int // bits used before the final flush
}

// Encoder encodes one channel. It is not safe for concurrent use.
type Encoder struct {
	cfg    frame.Config
	shared *frame.Shared
	stops  []int

	mdct   *mdct.Analyzer
	attack *attack.Detector
	snsA   sns.Analyzer
	snsQ   sns.Quantizer
	tnsA   tns.Analyzer
	w      *bitstream.Writer

	side  bitstream.Side
	x     []float64 // spectrum
	pre   []float64 // spectrum before TNS
	e     []float64 // band energies
	scf   []float64
	scfQ  []float64
	gains []float64
	xq    []int32
	resid []uint8
}

// New returns an Encoder for cfg.
func New(cfg frame.Config) (*Encoder, error) {
	s, err := frame.Lookup(cfg)
	if err != nil {
		return nil, err
	}
	return &Encoder{
		cfg:    cfg,
		shared: s,
		stops:  bandwidth.Candidates(cfg),
		mdct:   mdct.NewAnalyzer(s.MDCT),
		attack: attack.New(cfg),
		w:      bitstream.NewWriter(cfg),
		x:      make([]float64, cfg.NS),
		pre:    make([]float64, cfg.NS),
		e:      make([]float64, cfg.NB),
		scf:    make([]float64, sns.Dims),
		scfQ:   make([]float64, sns.Dims),
		gains:  make([]float64, cfg.NB),
		xq:     make([]int32, cfg.NS),
		resid:  make([]uint8, cfg.NS),
	}, nil
}

// Config returns the frame configuration.
func (enc *Encoder) Config() frame.Config { return enc.cfg }

// Reset clears the state carried between frames.
func (enc *Encoder) Reset() {
	enc.mdct.Reset()
	enc.attack.Reset()
}

// Encode encodes NS samples of pcm, on the 16-bit integer scale, into out,
// which is filled completely.
func (enc *Encoder) Encode(pcm []float64, out []byte) (Stats, error) {
	var st Stats
	cfg := enc.cfg
	if len(pcm) != cfg.NS {
		return st, fmt.Errorf("%w: %d samples, want %d", frame.ErrUnsupported, len(pcm), cfg.NS)
	}
	if err := cfg.CheckBytes(len(out)); err != nil {
		return st, err
	}
	nbits := 8 * len(out)
	limits := enc.shared.Limits

	// Time-domain band energies flag a late onset; the detector flags
	// onsets within the frame.
	att := energy.Compute(pcm, limits, cfg.HighBands, enc.e)
	att = enc.attack.Run(pcm, len(out)) || att

	x := enc.x
	enc.mdct.Analyze(x, pcm)
	energy.Compute(x, limits, cfg.HighBands, enc.e)

	bw := bandwidth.Detect(enc.e, limits, enc.stops)
	stop := enc.stops[bw]
	clear(x[stop:])

	side := &enc.side
	side.Bandwidth = bw
	side.Attack = att
	enc.snsA.Analyze(enc.e, enc.shared.Tilt, att, enc.scf)
	side.SNS = enc.snsQ.Quantize(enc.scf, enc.scfQ)
	sns.Interpolate(enc.scfQ, enc.gains)
	sns.Flatten(x, limits, enc.gains)

	setup := bitstream.TNSSetup(cfg, bw)
	copy(enc.pre, x)
	enc.tnsA.Analyze(x, setup, nbits, cfg.DurationMicros(), &side.TNS)
	tns.Whiten(x, setup, &side.TNS)

	enc.w.Reset(out)
	if !enc.w.WriteSide(side) {
		if !side.TNS.Active() {
			return st, ErrSideInfo
		}
		side.TNS.Reset()
		copy(x, enc.pre)
		st.TNSDropped = true
		enc.w.Reset(out)
		if !enc.w.WriteSide(side) {
			return st, ErrSideInfo
		}
	}

	gmin := quant.MinimumGain(x)
	g, ok := quant.Search(func(g int) bool {
		if g < gmin {
			return false
		}
		enc.w.Rewind()
		quant.Quantize(x, g, enc.xq)
		return enc.w.WriteBody(g, enc.xq)
	})

	enc.w.Rewind()
	if ok {
		quant.Quantize(x, g, enc.xq)
		enc.w.WriteBody(g, enc.xq)
	} else {
		clear(enc.xq)
		enc.w.WriteBody(g, nil)
	}
	side.Gain = g
	side.NoiseLevel = quant.NoiseLevel(x, enc.xq, g, quant.NoiseStart(cfg.NS), stop)

	n := quant.ResidualBits(x, enc.xq, g, enc.resid)
	st.Bits = enc.w.Bits()
	_, nres, err := enc.w.Finish(side.NoiseLevel, enc.resid[:n])
	if err != nil {
		return st, err
	}

	st.Bandwidth = bw
	st.BandwidthHz = bandwidth.CutoffHz(cfg, bw)
	st.Attack = att
	st.Gain = g
	st.SNSShape = side.SNS.Shape
	for i := range st.TNSOrders {
		st.TNSOrders[i] = side.TNS.Filters[i].Order
	}
	st.ZeroFrame = !ok
	for _, q := range enc.xq {
		if q != 0 {
			st.NonZero++
		}
	}
	st.NoiseLevel = side.NoiseLevel
	st.Residual = nres
	return st, nil
}
