// Package fft implements a mixed-radix complex FFT for lengths that factor
// into 2, 3 and 5.
//
// The algorithm follows the recursive decimation-in-time structure of kiss
// FFT: the input is split by the first radix, each sub-transform is computed
// recursively, and a radix butterfly recombines them with twiddles from a
// single exp(-2πi k/n) table.
package fft

import (
	"errors"
	"fmt"

	"github.com/thesyncim/lc3/internal/tables"
)

// ErrUnsupportedLength is returned for lengths with a prime factor above 5.
var ErrUnsupportedLength = errors.New("fft: unsupported length")

// maxRadix bounds the generic butterfly scratch.
const maxRadix = 5

// Plan holds the factorization and twiddles of an n-point forward FFT.
// A Plan is immutable and safe for concurrent use.
type Plan struct {
	n       int
	factors []int // (radix, m) pairs, radix*m = previous m
	tw      []complex128
	k       *kernelSet
}

// NewPlan creates a plan for an n-point transform.
func NewPlan(n int) (*Plan, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedLength, n)
	}
	factors, ok := factorize(n)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedLength, n)
	}
	return &Plan{
		n:       n,
		factors: factors,
		tw:      tables.FFTTwiddles(n),
		k:       activeKernels,
	}, nil
}

// Len returns the transform length.
func (p *Plan) Len() int {
	return p.n
}

// Transform computes dst = DFT(src) without scaling. dst and src must both
// have length Len and must not overlap.
func (p *Plan) Transform(dst, src []complex128) {
	_ = dst[p.n-1]
	_ = src[p.n-1]
	if p.n == 1 {
		dst[0] = src[0]
		return
	}
	p.work(dst, src, 1, p.factors)
}

func (p *Plan) work(out, in []complex128, fstride int, factors []int) {
	radix, m := factors[0], factors[1]
	if m == 1 {
		for j := 0; j < radix; j++ {
			out[j] = in[j*fstride]
		}
	} else {
		for j := 0; j < radix; j++ {
			p.work(out[j*m:], in[j*fstride:], fstride*radix, factors[2:])
		}
	}

	switch radix {
	case 2:
		p.k.bfly2(out, p.tw, fstride, m)
	case 3:
		bfly3(out, p.tw, fstride, m)
	case 4:
		p.k.bfly4(out, p.tw, fstride, m)
	default:
		bflyGeneric(out, p.tw, fstride, m, radix, p.n)
	}
}

// factorize splits n into radix stages: fours first, then twos, threes and
// fives.
func factorize(n int) ([]int, bool) {
	var factors []int
	p := 4
	for n > 1 {
		for n%p != 0 {
			switch p {
			case 4:
				p = 2
			case 2:
				p = 3
			case 3:
				p = 5
			default:
				return nil, false
			}
		}
		n /= p
		factors = append(factors, p, n)
	}
	return factors, true
}

func bfly3(out, tw []complex128, fstride, m int) {
	epi3 := imag(tw[fstride*m])
	for u := 0; u < m; u++ {
		s1 := out[u+m] * tw[u*fstride]
		s2 := out[u+2*m] * tw[2*u*fstride]
		s3 := s1 + s2
		s0 := s1 - s2

		a := out[u]
		bm := complex(real(a)-0.5*real(s3), imag(a)-0.5*imag(s3))
		s0 = complex(real(s0)*epi3, imag(s0)*epi3)
		out[u] = a + s3
		out[u+2*m] = complex(real(bm)+imag(s0), imag(bm)-real(s0))
		out[u+m] = complex(real(bm)-imag(s0), imag(bm)+real(s0))
	}
}

func bflyGeneric(out, tw []complex128, fstride, m, radix, n int) {
	var scratch [maxRadix]complex128
	for u := 0; u < m; u++ {
		for q := 0; q < radix; q++ {
			scratch[q] = out[u+q*m]
		}
		for q1 := 0; q1 < radix; q1++ {
			k := u + q1*m
			idx := 0
			acc := scratch[0]
			for q := 1; q < radix; q++ {
				idx += fstride * k
				for idx >= n {
					idx -= n
				}
				acc += scratch[q] * tw[idx]
			}
			out[k] = acc
		}
	}
}
