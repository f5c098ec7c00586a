//go:build arm64 && !purego

package fft

// FMADD is part of the base arm64 floating-point ISA.
func init() {
	activeKernels = fusedKernels
}
