// Package entropy codes quantized spectra and side information on top of
// the range coder.
//
// Spectral coefficients are coded in pairs. The pair's saturated magnitudes
// form one of 16 symbols coded with an adaptive frequency model selected by
// the pair's position and the magnitude of the preceding coefficients.
// Magnitudes of 3 and above continue with an Exp-Golomb escape, and every
// non-zero coefficient is followed by an equiprobable sign bit. Coefficients
// past the last non-zero pair are not coded.
package entropy

import (
	"errors"
	"math/bits"

	"github.com/thesyncim/lc3/internal/rangecoding"
)

// ErrCorrupt indicates a coded spectrum that no encoder produces.
var ErrCorrupt = errors.New("entropy: corrupt spectrum")

// MaxMagnitude is the largest codable coefficient magnitude.
const MaxMagnitude = 32767

const (
	numSymbols = 16
	// NumContexts is the number of adaptive spectrum models: three position
	// classes by four neighbourhood magnitude classes.
	NumContexts = 12

	adaptStep  = 24
	adaptLimit = 1 << 15

	escapeBase = 3
	// maxEscapePrefix bounds the Exp-Golomb prefix length.
	maxEscapePrefix = 15
)

type model struct {
	freq  [numSymbols]uint32
	total uint32
}

// reset loads the prior, which favours small magnitudes.
func (m *model) reset() {
	m.total = 0
	for s := range m.freq {
		f := uint32(32) >> min(5, s>>2+s&3)
		m.freq[s] = max(1, f)
		m.total += m.freq[s]
	}
}

func (m *model) cum(s int) uint32 {
	var c uint32
	for i := 0; i < s; i++ {
		c += m.freq[i]
	}
	return c
}

func (m *model) update(s int) {
	m.freq[s] += adaptStep
	m.total += adaptStep
	if m.total > adaptLimit {
		m.total = 0
		for i := range m.freq {
			m.freq[i] = (m.freq[i] + 1) >> 1
			m.total += m.freq[i]
		}
	}
}

// Coder holds the adaptive spectrum models. Models restart on every frame,
// so a Coder carries no state from one frame to the next and encoding the
// same spectrum twice costs exactly the same number of bits.
type Coder struct {
	models [NumContexts]model
}

func (c *Coder) reset() {
	for i := range c.models {
		c.models[i].reset()
	}
}

// PairCount returns the number of coded pairs of xq: the index of the last
// pair holding a non-zero coefficient, plus one.
func PairCount(xq []int32) int {
	for i := len(xq) - 1; i >= 0; i-- {
		if xq[i] != 0 {
			return i/2 + 1
		}
	}
	return 0
}

func abs32(v int32) int {
	if v < 0 {
		return int(-v)
	}
	return int(v)
}

// context selects the model for the pair starting at i.
func context(xq []int32, i, n int) int {
	pos := 2
	switch {
	case i < n/4:
		pos = 0
	case i < n/2:
		pos = 1
	}
	at := func(k int) int {
		if k < 0 {
			return 0
		}
		return abs32(xq[k])
	}
	m := at(i-2) + at(i-1) + (at(i-4)+at(i-3)+1)/2
	return pos*4 + min(3, m)
}

func symbol(a, b int) int {
	return min(a, escapeBase)*4 + min(b, escapeBase)
}

// EncodeSpectrum codes xq. len(xq) must be even and every |xq[i]| at most
// MaxMagnitude. It returns the number of non-zero coefficients.
func (c *Coder) EncodeSpectrum(e *rangecoding.Encoder, xq []int32) int {
	c.reset()
	n := len(xq)
	np := PairCount(xq)
	e.EncodeUniform(uint32(np), uint32(n/2+1))

	nnz := 0
	for p := 0; p < np; p++ {
		i := 2 * p
		a, b := abs32(xq[i]), abs32(xq[i+1])
		m := &c.models[context(xq, i, n)]
		s := symbol(a, b)
		fl := m.cum(s)
		e.Encode(fl, fl+m.freq[s], m.total)
		m.update(s)

		if a >= escapeBase {
			encodeEscape(e, a-escapeBase)
		}
		if b >= escapeBase {
			encodeEscape(e, b-escapeBase)
		}
		for _, v := range xq[i : i+2] {
			if v != 0 {
				nnz++
				e.EncodeBit(signBit(v), 1)
			}
		}
	}
	return nnz
}

func signBit(v int32) int {
	if v < 0 {
		return 1
	}
	return 0
}

// encodeEscape writes v as an order-0 Exp-Golomb code: k one bits, a zero
// bit, then the k low bits of v+1.
func encodeEscape(e *rangecoding.Encoder, v int) {
	k := bits.Len(uint(v+1)) - 1
	for j := 0; j < k; j++ {
		e.EncodeBit(1, 1)
	}
	e.EncodeBit(0, 1)
	if k > 0 {
		e.EncodeRawBits(uint32(v+1)&(1<<k-1), uint(k))
	}
}

// DecodeSpectrum decodes a spectrum coded by EncodeSpectrum into xq, which
// must have the encoder's length. Uncoded coefficients are set to zero. It
// returns the number of non-zero coefficients.
func (c *Coder) DecodeSpectrum(d *rangecoding.Decoder, xq []int32) (int, error) {
	c.reset()
	clear(xq)
	n := len(xq)
	np := int(d.DecodeUniform(uint32(n/2 + 1)))
	if d.Error() != 0 {
		return 0, ErrCorrupt
	}

	nnz := 0
	for p := 0; p < np; p++ {
		i := 2 * p
		m := &c.models[context(xq, i, n)]
		f := d.Decode(m.total)
		s := 0
		fl := uint32(0)
		for fl+m.freq[s] <= f {
			fl += m.freq[s]
			s++
		}
		d.Update(fl, fl+m.freq[s], m.total)
		m.update(s)

		mag := [2]int{s >> 2, s & 3}
		for j := range mag {
			if mag[j] < escapeBase {
				continue
			}
			v, ok := decodeEscape(d)
			if !ok || v > MaxMagnitude-escapeBase {
				return nnz, ErrCorrupt
			}
			mag[j] += v
		}
		for j := range mag {
			if mag[j] == 0 {
				continue
			}
			nnz++
			v := int32(mag[j])
			if d.DecodeBit(1) != 0 {
				v = -v
			}
			xq[i+j] = v
		}
	}
	return nnz, nil
}

func decodeEscape(d *rangecoding.Decoder) (int, bool) {
	k := 0
	for d.DecodeBit(1) != 0 {
		k++
		if k > maxEscapePrefix {
			return 0, false
		}
	}
	if k == 0 {
		return 0, true
	}
	return int(1<<k|d.DecodeRawBits(uint(k))) - 1, true
}
