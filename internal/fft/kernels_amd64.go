//go:build amd64 && !purego

package fft

import "golang.org/x/sys/cpu"

func init() {
	// Without FMA3, math.FMA falls back to a software routine.
	if cpu.X86.HasFMA {
		activeKernels = fusedKernels
	}
}
