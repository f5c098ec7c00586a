// Package bitstream lays out a frame: side information, the coded spectrum,
// the noise level and residual refinement bits, in that order, in exactly
// the frame's byte budget.
//
// Field order:
//
//	bandwidth        uniform over the configuration's candidates
//	attack           1 bit
//	SNS              LF, HF, shape, gain, PVQ codewords
//	TNS              per filter: order, reflection indices
//	global gain      uniform over 256
//	spectrum         see package entropy
//	noise level      3 raw bits
//	residual         raw bits, one per non-zero coefficient while room remains
package bitstream

import (
	"errors"

	"github.com/thesyncim/lc3/internal/bandwidth"
	"github.com/thesyncim/lc3/internal/entropy"
	"github.com/thesyncim/lc3/internal/frame"
	"github.com/thesyncim/lc3/internal/sns"
	"github.com/thesyncim/lc3/internal/tables"
	"github.com/thesyncim/lc3/internal/tns"
)

var (
	// ErrCorrupt indicates a frame violating the layout.
	ErrCorrupt = errors.New("bitstream: corrupt frame")

	// ErrTruncated indicates a frame whose fields run past its end.
	ErrTruncated = errors.New("bitstream: truncated frame")

	// ErrOverflow indicates fields that do not fit the byte budget.
	ErrOverflow = errors.New("bitstream: frame overflow")
)

// NoiseBits is the width of the noise level field.
const NoiseBits = 3

// Side is the side information of a frame.
type Side struct {
	Bandwidth  int // index into bandwidth.Candidates
	Attack     bool
	SNS        sns.Index
	TNS        tns.Params
	Gain       int
	NoiseLevel int
}

// Frame is the full content of a frame.
type Frame struct {
	Side

	// Spectrum holds the NS quantized coefficients.
	Spectrum []int32

	// Residual holds the refinement bits, one per non-zero coefficient in
	// frequency order. It may be shorter than the number of non-zero
	// coefficients.
	Residual []uint8
}

// NewFrame allocates a frame for cfg.
func NewFrame(cfg frame.Config) *Frame {
	return &Frame{
		Spectrum: make([]int32, cfg.NS),
		Residual: make([]uint8, 0, cfg.NS),
	}
}

var (
	orderModels = map[int]*entropy.Static{
		4:            entropy.Geometric(4+1, 0, 0.55),
		tns.MaxOrder: entropy.Geometric(tns.MaxOrder+1, 0, 0.7),
	}
	coefModel = entropy.Geometric(tns.Levels, tns.ZeroIndex, 0.6)
)

// layout holds what both sides derive from the configuration.
type layout struct {
	cfg        frame.Config
	candidates int
}

func newLayout(cfg frame.Config) layout {
	return layout{cfg: cfg, candidates: len(bandwidth.Candidates(cfg))}
}

// TNSSetup returns the filter layout implied by a bandwidth index.
func TNSSetup(cfg frame.Config, bw int) tns.Setup {
	return tns.Configure(cfg, bandwidth.CutoffHz(cfg, bw))
}

const gainLevels = tables.GainSteps
