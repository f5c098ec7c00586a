package bitstream

import (
	"errors"
	"fmt"

	"github.com/thesyncim/lc3/internal/entropy"
	"github.com/thesyncim/lc3/internal/frame"
	"github.com/thesyncim/lc3/internal/rangecoding"
	"github.com/thesyncim/lc3/internal/sns"
)

const (
	stage1Size = sns.Stage1Size
	numShapes  = uint32(len(sns.Shapes))
)

func snsShape(i int) sns.Shape { return sns.Shapes[i] }

// Reader unpacks frames.
type Reader struct {
	layout
	dec   rangecoding.Decoder
	coder entropy.Coder
}

// NewReader returns a Reader for cfg.
func NewReader(cfg frame.Config) *Reader {
	return &Reader{layout: newLayout(cfg)}
}

// Read decodes data into f, which must come from NewFrame for the same
// configuration. The frame is never read past its end.
func (r *Reader) Read(data []byte, f *Frame) error {
	d := &r.dec
	d.Init(data)
	nbits := 8 * len(data)

	s := &f.Side
	*s = Side{}
	s.Bandwidth = int(d.DecodeUniform(uint32(r.candidates)))
	s.Attack = d.DecodeBit(1) != 0

	x := &s.SNS
	x.LF = int(d.DecodeUniform(stage1Size))
	x.HF = int(d.DecodeUniform(stage1Size))
	x.Shape = int(d.DecodeUniform(numShapes))
	sh := snsShape(x.Shape)
	x.Gain = int(d.DecodeUniform(uint32(sh.Gains)))
	x.A = d.DecodeUniform(sh.SizeA())
	if sh.NB > 0 {
		x.B = d.DecodeUniform(sh.SizeB())
	}
	if d.Error() != 0 {
		return fmt.Errorf("%w: side information", ErrCorrupt)
	}

	setup := TNSSetup(r.cfg, s.Bandwidth)
	om := orderModels[setup.MaxOrder]
	s.TNS.Reset()
	for i := 0; i < setup.NumFilters; i++ {
		flt := &s.TNS.Filters[i]
		flt.Order = om.Decode(d)
		for k := 0; k < flt.Order; k++ {
			flt.Index[k] = coefModel.Decode(d)
		}
	}

	s.Gain = int(d.DecodeUniform(gainLevels))
	nnz, err := r.coder.DecodeSpectrum(d, f.Spectrum)
	if err != nil {
		if errors.Is(err, entropy.ErrCorrupt) && d.Tell() > nbits {
			return fmt.Errorf("%w: spectrum", ErrTruncated)
		}
		return fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	s.NoiseLevel = int(d.DecodeRawBits(NoiseBits))
	if d.Tell() > nbits {
		return fmt.Errorf("%w: %d bits used of %d", ErrTruncated, d.Tell(), nbits)
	}

	n := max(0, min(nnz, nbits-d.Tell()))
	f.Residual = f.Residual[:0]
	for i := 0; i < n; i++ {
		f.Residual = append(f.Residual, uint8(d.DecodeRawBits(1)))
	}
	return nil
}
