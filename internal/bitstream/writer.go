package bitstream

import (
	"github.com/thesyncim/lc3/internal/entropy"
	"github.com/thesyncim/lc3/internal/frame"
	"github.com/thesyncim/lc3/internal/rangecoding"
)

// Writer packs one frame at a time. Side information is written once, then
// the body (gain and spectrum) may be written any number of times from a
// mark to search for the gain that fits.
type Writer struct {
	layout
	enc   rangecoding.Encoder
	coder entropy.Coder
	mark  rangecoding.EncoderState
	nbits int
	nnz   int
}

// NewWriter returns a Writer for cfg.
func NewWriter(cfg frame.Config) *Writer {
	return &Writer{layout: newLayout(cfg)}
}

// Reset starts a frame filling all of buf.
func (w *Writer) Reset(buf []byte) {
	w.enc.Init(buf)
	w.nbits = 8 * len(buf)
	w.nnz = 0
}

// WriteSide writes the side information up to, not including, the gain and
// marks the position. It reports whether the side information alone leaves
// room for a gain, an empty spectrum and the noise level.
func (w *Writer) WriteSide(s *Side) bool {
	e := &w.enc
	e.EncodeUniform(uint32(s.Bandwidth), uint32(w.candidates))
	attack := 0
	if s.Attack {
		attack = 1
	}
	e.EncodeBit(attack, 1)

	x := &s.SNS
	sh := snsShape(x.Shape)
	e.EncodeUniform(uint32(x.LF), stage1Size)
	e.EncodeUniform(uint32(x.HF), stage1Size)
	e.EncodeUniform(uint32(x.Shape), numShapes)
	e.EncodeUniform(uint32(x.Gain), uint32(sh.Gains))
	e.EncodeUniform(x.A, sh.SizeA())
	if sh.NB > 0 {
		e.EncodeUniform(x.B, sh.SizeB())
	}

	setup := TNSSetup(w.cfg, s.Bandwidth)
	om := orderModels[setup.MaxOrder]
	for f := 0; f < setup.NumFilters; f++ {
		flt := &s.TNS.Filters[f]
		om.Encode(e, flt.Order)
		for i := 0; i < flt.Order; i++ {
			coefModel.Encode(e, flt.Index[i])
		}
	}
	w.enc.SaveStateInto(&w.mark)

	w.WriteBody(gainLevels-1, nil)
	ok := w.fits()
	w.Rewind()
	return ok
}

// Rewind returns to the mark left by WriteSide.
func (w *Writer) Rewind() {
	w.enc.RestoreState(&w.mark)
	w.nnz = 0
}

// WriteBody writes the gain and the spectrum and reports whether the frame
// still has room for the noise level. A nil spectrum codes all zeros.
func (w *Writer) WriteBody(gain int, xq []int32) bool {
	w.enc.EncodeUniform(uint32(gain), gainLevels)
	if xq == nil {
		w.enc.EncodeUniform(0, uint32(w.cfg.NS/2+1))
		w.nnz = 0
	} else {
		w.nnz = w.coder.EncodeSpectrum(&w.enc, xq)
	}
	return w.fits()
}

func (w *Writer) fits() bool {
	return w.enc.Tell()+NoiseBits <= w.nbits
}

// Bits returns the bits used so far.
func (w *Writer) Bits() int {
	return w.enc.Tell()
}

// Finish writes the noise level and one residual bit per non-zero
// coefficient while room remains, zero when residual runs short. It returns
// the frame and the number of residual bits written.
func (w *Writer) Finish(noiseLevel int, residual []uint8) ([]byte, int, error) {
	w.enc.EncodeRawBits(uint32(noiseLevel), NoiseBits)
	n := max(0, min(w.nnz, w.nbits-w.enc.Tell()))
	for i := 0; i < n; i++ {
		var b uint8
		if i < len(residual) {
			b = residual[i]
		}
		w.enc.EncodeRawBits(uint32(b), 1)
	}
	out := w.enc.Done()
	if w.enc.Error() != 0 {
		return out, n, ErrOverflow
	}
	return out, n, nil
}

// Pack writes f into a frame of nbytes bytes. Residual bits beyond the
// budget are dropped.
func Pack(cfg frame.Config, f *Frame, nbytes int) ([]byte, error) {
	w := NewWriter(cfg)
	w.Reset(make([]byte, nbytes))
	if !w.WriteSide(&f.Side) {
		return nil, ErrOverflow
	}
	if !w.WriteBody(f.Gain, f.Spectrum) {
		return nil, ErrOverflow
	}
	out, _, err := w.Finish(f.NoiseLevel, f.Residual)
	return out, err
}
