// Package decoder runs the per-channel decoding pipeline: frame unpacking,
// dequantization with noise filling and residual refinement, temporal and
// spectral noise shaping synthesis and the inverse MDCT. Lost and corrupt
// frames are concealed.
package decoder

import (
	"fmt"

	"github.com/thesyncim/lc3/internal/bandwidth"
	"github.com/thesyncim/lc3/internal/bitstream"
	"github.com/thesyncim/lc3/internal/frame"
	"github.com/thesyncim/lc3/internal/mdct"
	"github.com/thesyncim/lc3/internal/plc"
	"github.com/thesyncim/lc3/internal/quant"
	"github.com/thesyncim/lc3/internal/sns"
	"github.com/thesyncim/lc3/internal/tns"
)

// Stats describes one decoded frame.
type Stats struct {
	Bandwidth   int
	BandwidthHz int
	Attack      bool
	Gain        int
	SNSShape    int
	TNSOrders   [tns.MaxFilters]int
	NonZero     int
	NoiseLevel  int
	Residual    int

	// Concealed is set when the output was synthesized from history.
	Concealed bool
	// Lost counts consecutive concealed frames.
	Lost int
	// Fade is the concealment attenuation, 1 outside concealment.
	Fade float64
}

// Decoder decodes one channel. It is not safe for concurrent use.
type Decoder struct {
	cfg    frame.Config
	shared *frame.Shared
	stops  []int

	r    *bitstream.Reader
	f    *bitstream.Frame
	syn  *mdct.Synthesizer
	plc  *plc.State
	x    []float64
	scfQ []float64
	g    []float64
}

// New returns a Decoder for cfg.
func New(cfg frame.Config) (*Decoder, error) {
	s, err := frame.Lookup(cfg)
	if err != nil {
		return nil, err
	}
	return &Decoder{
		cfg:    cfg,
		shared: s,
		stops:  bandwidth.Candidates(cfg),
		r:      bitstream.NewReader(cfg),
		f:      bitstream.NewFrame(cfg),
		syn:    mdct.NewSynthesizer(s.MDCT),
		plc:    plc.NewState(cfg.NS),
		x:      make([]float64, cfg.NS),
		scfQ:   make([]float64, sns.Dims),
		g:      make([]float64, cfg.NB),
	}, nil
}

// Config returns the frame configuration.
func (dec *Decoder) Config() frame.Config { return dec.cfg }

// Reset clears the overlap and concealment history.
func (dec *Decoder) Reset() {
	dec.syn.Reset()
	dec.plc.Reset()
}

// Decode decodes one frame into pcm (NS samples, 16-bit integer scale). A nil
// data is a lost frame and is concealed without error. Malformed frames are
// concealed as well, and the error is returned with the concealed output in
// pcm.
func (dec *Decoder) Decode(data []byte, pcm []float64) (Stats, error) {
	if len(pcm) != dec.cfg.NS {
		return Stats{}, fmt.Errorf("%w: %d samples, want %d", frame.ErrUnsupported, len(pcm), dec.cfg.NS)
	}
	if data == nil {
		return dec.conceal(pcm), nil
	}

	lo, hi := dec.cfg.ByteRange()
	var err error
	switch {
	case len(data) < lo:
		err = fmt.Errorf("%w: %d bytes, minimum %d", bitstream.ErrTruncated, len(data), lo)
	case len(data) > hi:
		err = fmt.Errorf("%w: %d bytes, maximum %d", bitstream.ErrCorrupt, len(data), hi)
	default:
		err = dec.r.Read(data, dec.f)
	}
	if err != nil {
		return dec.conceal(pcm), err
	}

	st := dec.synthesize()
	dec.syn.Synthesize(pcm, dec.x)
	return st, nil
}

func (dec *Decoder) synthesize() Stats {
	cfg := dec.cfg
	f := dec.f
	x := dec.x
	g := f.Gain
	stop := dec.stops[f.Bandwidth]

	quant.Dequantize(f.Spectrum, g, x)
	quant.ApplyResidual(x, f.Spectrum, g, f.Residual)
	quant.FillNoise(x, f.Spectrum, g, f.NoiseLevel, quant.NoiseStart(cfg.NS), stop)

	setup := bitstream.TNSSetup(cfg, f.Bandwidth)
	tns.Color(x, setup, &f.TNS)

	sns.Dequantize(f.SNS, dec.scfQ)
	sns.Interpolate(dec.scfQ, dec.g)
	sns.Restore(x, dec.shared.Limits, dec.g)

	dec.plc.RecordGood(x, f.Attack)

	st := Stats{
		Bandwidth:   f.Bandwidth,
		BandwidthHz: bandwidth.CutoffHz(cfg, f.Bandwidth),
		Attack:      f.Attack,
		Gain:        g,
		SNSShape:    f.SNS.Shape,
		NoiseLevel:  f.NoiseLevel,
		Residual:    len(f.Residual),
		Fade:        1,
	}
	for i := range st.TNSOrders {
		st.TNSOrders[i] = f.TNS.Filters[i].Order
	}
	for _, q := range f.Spectrum {
		if q != 0 {
			st.NonZero++
		}
	}
	return st
}

func (dec *Decoder) conceal(pcm []float64) Stats {
	fade := dec.plc.RecordLoss()
	dec.plc.Conceal(dec.x)
	dec.syn.Synthesize(pcm, dec.x)
	return Stats{Concealed: true, Lost: dec.plc.LostCount(), Fade: fade}
}
