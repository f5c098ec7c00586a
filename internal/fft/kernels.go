package fft

import "math"

// kernelSet holds the radix-2 and radix-4 butterflies.
//
// The fused set rounds each twiddle product once through math.FMA instead of
// twice, so its output differs from the plain set in the last bits. math.FMA
// is only fast where the CPU has a fused multiply-add instruction; elsewhere
// it runs in software, hence the selection at init.
type kernelSet struct {
	name  string
	bfly2 func(out, tw []complex128, fstride, m int)
	bfly4 func(out, tw []complex128, fstride, m int)
}

var plainKernels = &kernelSet{
	name:  "plain",
	bfly2: bfly2,
	bfly4: bfly4,
}

var fusedKernels = &kernelSet{
	name:  "fma",
	bfly2: bfly2FMA,
	bfly4: bfly4FMA,
}

// activeKernels is selected once at init from CPU features.
var activeKernels = plainKernels

// KernelName reports which butterfly set new plans use.
func KernelName() string {
	return activeKernels.name
}

func bfly2(out, tw []complex128, fstride, m int) {
	for u := 0; u < m; u++ {
		t := out[u+m] * tw[u*fstride]
		out[u+m] = out[u] - t
		out[u] += t
	}
}

func bfly4(out, tw []complex128, fstride, m int) {
	for u := 0; u < m; u++ {
		s0 := out[u+m] * tw[u*fstride]
		s1 := out[u+2*m] * tw[2*u*fstride]
		s2 := out[u+3*m] * tw[3*u*fstride]
		bfly4Combine(out, m, u, s0, s1, s2)
	}
}

func bfly4Combine(out []complex128, m, u int, s0, s1, s2 complex128) {
	s5 := out[u] - s1
	a := out[u] + s1
	s3 := s0 + s2
	s4 := s0 - s2
	out[u+2*m] = a - s3
	out[u] = a + s3
	out[u+m] = complex(real(s5)+imag(s4), imag(s5)-real(s4))
	out[u+3*m] = complex(real(s5)-imag(s4), imag(s5)+real(s4))
}

// cmulFMA returns a*b with one rounding per component.
func cmulFMA(a, b complex128) complex128 {
	ar, ai := real(a), imag(a)
	br, bi := real(b), imag(b)
	return complex(math.FMA(ar, br, -ai*bi), math.FMA(ar, bi, ai*br))
}

func bfly2FMA(out, tw []complex128, fstride, m int) {
	for u := 0; u < m; u++ {
		t := cmulFMA(out[u+m], tw[u*fstride])
		out[u+m] = out[u] - t
		out[u] += t
	}
}

func bfly4FMA(out, tw []complex128, fstride, m int) {
	for u := 0; u < m; u++ {
		s0 := cmulFMA(out[u+m], tw[u*fstride])
		s1 := cmulFMA(out[u+2*m], tw[2*u*fstride])
		s2 := cmulFMA(out[u+3*m], tw[3*u*fstride])
		bfly4Combine(out, m, u, s0, s1, s2)
	}
}
