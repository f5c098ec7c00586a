package lc3

import (
	"encoding/binary"
	"math"
)

// PCM is a block of interleaved samples in one of the supported sample
// formats. The set of implementations is closed: Int16Samples,
// Int24Samples, Int32Samples and Float32Samples.
//
// Samples are normalized once at the API boundary to the 16-bit integer
// scale the codec works in.
type PCM interface {
	// Len returns the number of samples, all channels included.
	Len() int

	// load deinterleaves channel ch of a stride-channel block into dst,
	// zero padding past the end.
	load(dst []float64, ch, stride int)
	// store interleaves src into channel ch, saturating to the format.
	store(src []float64, ch, stride int)
	// appendLE appends the little-endian byte encoding of the samples.
	appendLE(b []byte) []byte
}

// Int16Samples holds signed 16-bit samples.
type Int16Samples []int16

// Int24Samples holds signed 24-bit samples in the low bits of int32.
type Int24Samples []int32

// Int32Samples holds signed 32-bit samples.
type Int32Samples []int32

// Float32Samples holds samples in [-1, 1].
type Float32Samples []float32

const (
	maxInt24 = 1<<23 - 1
	minInt24 = -1 << 23
)

func (p Int16Samples) Len() int { return len(p) }

func (p Int16Samples) load(dst []float64, ch, stride int) {
	for i := range dst {
		if j := i*stride + ch; j < len(p) {
			dst[i] = float64(p[j])
		} else {
			dst[i] = 0
		}
	}
}

func (p Int16Samples) store(src []float64, ch, stride int) {
	for i, v := range src {
		p[i*stride+ch] = int16(saturate(v, math.MinInt16, math.MaxInt16))
	}
}

func (p Int16Samples) appendLE(b []byte) []byte {
	for _, v := range p {
		b = binary.LittleEndian.AppendUint16(b, uint16(v))
	}
	return b
}

func (p Int24Samples) Len() int { return len(p) }

func (p Int24Samples) load(dst []float64, ch, stride int) {
	for i := range dst {
		if j := i*stride + ch; j < len(p) {
			dst[i] = float64(p[j]) / 256
		} else {
			dst[i] = 0
		}
	}
}

func (p Int24Samples) store(src []float64, ch, stride int) {
	for i, v := range src {
		p[i*stride+ch] = int32(saturate(v*256, minInt24, maxInt24))
	}
}

func (p Int24Samples) appendLE(b []byte) []byte {
	for _, v := range p {
		b = append(b, byte(v), byte(v>>8), byte(v>>16))
	}
	return b
}

func (p Int32Samples) Len() int { return len(p) }

func (p Int32Samples) load(dst []float64, ch, stride int) {
	for i := range dst {
		if j := i*stride + ch; j < len(p) {
			dst[i] = float64(p[j]) / 65536
		} else {
			dst[i] = 0
		}
	}
}

func (p Int32Samples) store(src []float64, ch, stride int) {
	for i, v := range src {
		p[i*stride+ch] = int32(saturate(v*65536, math.MinInt32, math.MaxInt32))
	}
}

func (p Int32Samples) appendLE(b []byte) []byte {
	for _, v := range p {
		b = binary.LittleEndian.AppendUint32(b, uint32(v))
	}
	return b
}

func (p Float32Samples) Len() int { return len(p) }

func (p Float32Samples) load(dst []float64, ch, stride int) {
	for i := range dst {
		if j := i*stride + ch; j < len(p) {
			dst[i] = float64(p[j]) * 32768
		} else {
			dst[i] = 0
		}
	}
}

func (p Float32Samples) store(src []float64, ch, stride int) {
	for i, v := range src {
		p[i*stride+ch] = float32(max(-1, min(1, v/32768)))
	}
}

func (p Float32Samples) appendLE(b []byte) []byte {
	for _, v := range p {
		b = binary.LittleEndian.AppendUint32(b, math.Float32bits(v))
	}
	return b
}

// saturate rounds v and clamps it to [lo, hi].
func saturate(v, lo, hi float64) float64 {
	return max(lo, min(hi, math.RoundToEven(v)))
}

// BitDepth selects the byte encoding of PCM passed as raw bytes.
type BitDepth int

const (
	// BitDepthFloat is 32-bit IEEE float in [-1, 1].
	BitDepthFloat BitDepth = 0
	// BitDepth16 is signed 16-bit integer.
	BitDepth16 BitDepth = 16
	// BitDepth24 is signed 24-bit integer packed in 3 bytes.
	BitDepth24 BitDepth = 24
	// BitDepth32 is signed 32-bit integer.
	BitDepth32 BitDepth = 32
)

// BytesPerSample returns the size of one sample, or 0 for an unsupported
// depth.
func (d BitDepth) BytesPerSample() int {
	switch d {
	case BitDepthFloat, BitDepth32:
		return 4
	case BitDepth16:
		return 2
	case BitDepth24:
		return 3
	}
	return 0
}

func (d BitDepth) check() error {
	if d.BytesPerSample() == 0 {
		return invalidf("bit depth %d (must be 16, 24, 32 or float)", int(d))
	}
	return nil
}

// newPCM allocates n samples in the format of depth.
func newPCM(depth BitDepth, n int) PCM {
	switch depth {
	case BitDepth16:
		return make(Int16Samples, n)
	case BitDepth24:
		return make(Int24Samples, n)
	case BitDepth32:
		return make(Int32Samples, n)
	}
	return make(Float32Samples, n)
}

// parsePCM reads little-endian samples of depth from b. A trailing partial
// sample is ignored.
func parsePCM(b []byte, depth BitDepth) PCM {
	size := depth.BytesPerSample()
	n := len(b) / size
	p := newPCM(depth, n)
	switch p := p.(type) {
	case Int16Samples:
		for i := range p {
			p[i] = int16(binary.LittleEndian.Uint16(b[2*i:]))
		}
	case Int24Samples:
		for i := range p {
			v := int32(b[3*i]) | int32(b[3*i+1])<<8 | int32(b[3*i+2])<<16
			p[i] = v << 8 >> 8
		}
	case Int32Samples:
		for i := range p {
			p[i] = int32(binary.LittleEndian.Uint32(b[4*i:]))
		}
	case Float32Samples:
		for i := range p {
			p[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[4*i:]))
		}
	}
	return p
}
