package sns

import (
	"fmt"
	"math"
)

// Stage 1 codebooks: each half of the envelope (8 low, 8 high dimensions)
// picks one of Stage1Size vectors, an amplitude times a DCT-II basis.
const (
	Stage1Size = 32
	half       = Dims / 2
)

var stage1Amps = [4]float64{-4, -1.5, 1.5, 4}

// Shape describes one stage 2 codebook: a main PVQ vector of NA dimensions
// and KA pulses, an optional extension of NB dimensions and KB pulses
// covering the remaining dimensions, and a geometric gain set.
type Shape struct {
	NA, KA int
	NB, KB int
	Gains  int

	gain0, gainStep float64
	sizeA, sizeB    uint32
}

// Shapes lists the stage 2 codebooks in index order.
var Shapes = [4]Shape{
	{NA: 10, KA: 10, NB: 6, KB: 1, Gains: 2, gain0: 2.0, gainStep: 1.35},
	{NA: 10, KA: 10, Gains: 4, gain0: 1.5, gainStep: 1.4},
	{NA: 16, KA: 8, Gains: 4, gain0: 1.75, gainStep: 1.3},
	{NA: 16, KA: 6, Gains: 8, gain0: 1.4, gainStep: 1.25},
}

// SizeA returns the number of main vector codewords.
func (s Shape) SizeA() uint32 { return s.sizeA }

// SizeB returns the number of extension codewords, 0 if there is none.
func (s Shape) SizeB() uint32 { return s.sizeB }

// Gain returns gain value g of the shape.
func (s Shape) Gain(g int) float64 {
	return s.gain0 * math.Pow(s.gainStep, float64(g))
}

var stage1 [Stage1Size][half]float64

func init() {
	for j := range stage1 {
		basis, amp := j/4, stage1Amps[j%4]
		for n := range stage1[j] {
			stage1[j][n] = amp * math.Cos(math.Pi*float64(basis)*(float64(n)+0.5)/half)
		}
	}
	for i := range Shapes {
		s := &Shapes[i]
		s.sizeA = codebookSize(s.NA, s.KA)
		if s.NB > 0 {
			s.sizeB = codebookSize(s.NB, s.KB)
		}
	}
}

// Index is the quantized envelope. It alone determines the envelope.
type Index struct {
	LF, HF int    // stage 1 vectors, < Stage1Size
	Shape  int    // stage 2 codebook, < len(Shapes)
	Gain   int    // < Shapes[Shape].Gains
	A, B   uint32 // main and extension PVQ codewords
}

// Validate checks the index ranges.
func (x Index) Validate() error {
	if x.LF < 0 || x.LF >= Stage1Size || x.HF < 0 || x.HF >= Stage1Size {
		return fmt.Errorf("sns: stage 1 index %d/%d out of range", x.LF, x.HF)
	}
	if x.Shape < 0 || x.Shape >= len(Shapes) {
		return fmt.Errorf("sns: shape %d out of range", x.Shape)
	}
	s := Shapes[x.Shape]
	if x.Gain < 0 || x.Gain >= s.Gains {
		return fmt.Errorf("sns: gain %d out of range", x.Gain)
	}
	if x.A >= s.SizeA() || (s.NB > 0 && x.B >= s.SizeB()) || (s.NB == 0 && x.B != 0) {
		return fmt.Errorf("sns: codeword %d/%d out of range", x.A, x.B)
	}
	return nil
}

// Quantizer searches envelope indices. It holds scratch space only.
type Quantizer struct {
	r    [Dims]float64
	y    [Dims]int
	best [Dims]int
}

func nearest(v []float64) int {
	best, bestD := 0, math.Inf(1)
	for j := range stage1 {
		var d float64
		for n, c := range stage1[j] {
			e := v[n] - c
			d += e * e
		}
		if d < bestD {
			best, bestD = j, d
		}
	}
	return best
}

// Quantize returns the index nearest to scf and writes the envelope it
// decodes to into scfQ.
func (q *Quantizer) Quantize(scf []float64, scfQ []float64) Index {
	var idx Index
	idx.LF = nearest(scf[:half])
	idx.HF = nearest(scf[half:])
	for n := 0; n < half; n++ {
		q.r[n] = scf[n] - stage1[idx.LF][n]
		q.r[half+n] = scf[half+n] - stage1[idx.HF][n]
	}

	var r2 float64
	for _, v := range q.r {
		r2 += v * v
	}

	bestD := math.Inf(1)
	for si, s := range Shapes {
		y := q.y[:]
		clear(y)
		pvqSearch(q.r[:s.NA], s.KA, y[:s.NA])
		if s.NB > 0 {
			pvqSearch(q.r[s.NA:s.NA+s.NB], s.KB, y[s.NA:s.NA+s.NB])
		}
		var yy, ry float64
		for n, v := range y {
			yy += float64(v * v)
			ry += q.r[n] * float64(v)
		}
		ry /= math.Sqrt(yy)
		for g := 0; g < s.Gains; g++ {
			gv := s.Gain(g)
			if d := r2 - 2*gv*ry + gv*gv; d < bestD {
				bestD = d
				idx.Shape, idx.Gain = si, g
				copy(q.best[:], y)
			}
		}
	}

	s := Shapes[idx.Shape]
	idx.A = pvqIndex(q.best[:s.NA], s.KA)
	if s.NB > 0 {
		idx.B = pvqIndex(q.best[s.NA:s.NA+s.NB], s.KB)
	}
	Dequantize(idx, scfQ)
	return idx
}

// Dequantize writes the envelope of a valid index into scfQ.
func Dequantize(idx Index, scfQ []float64) {
	s := Shapes[idx.Shape]
	var y [Dims]int
	pvqVector(idx.A, s.KA, y[:s.NA])
	if s.NB > 0 {
		pvqVector(idx.B, s.KB, y[s.NA:s.NA+s.NB])
	}
	var yy float64
	for _, v := range y {
		yy += float64(v * v)
	}
	gn := s.Gain(idx.Gain) / math.Sqrt(yy)
	for n := 0; n < half; n++ {
		scfQ[n] = stage1[idx.LF][n] + gn*float64(y[n])
		scfQ[half+n] = stage1[idx.HF][n] + gn*float64(y[half+n])
	}
}
