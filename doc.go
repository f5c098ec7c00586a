// Package lc3 implements a low-complexity, low-latency transform audio codec
// in pure Go.
//
// The codec compresses fixed-duration PCM frames into a hard per-frame byte
// budget. Frame durations are 2.5, 5, 7.5 and 10 ms; sample rates are 8, 16,
// 24, 32 and 48 kHz, plus 48 and 96 kHz in high-resolution mode. Frames are
// 20 to 400 bytes per channel (625 in high-resolution mode) and encoder
// output is bit-exact for a given build.
//
// # Pipeline
//
// Each channel frame goes through:
//   - attack detection on the time signal
//   - a low-delay MDCT with 3/4 frame of algorithmic delay
//   - bandwidth detection
//   - spectral noise shaping (SNS): a 16-dimensional envelope quantized with
//     a two-stage split and pyramid vector codebook
//   - temporal noise shaping (TNS): up to two lattice filters of order 8
//   - a bisection over 256 global gains for the finest quantization whose
//     exact range-coded size fits the budget
//   - context-adaptive arithmetic coding of the spectrum, noise filling and
//     residual refinement bits
//
// # Usage
//
//	enc, err := lc3.NewEncoder(10000, 48000)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	frame, err := enc.Encode(lc3.Int16Samples(pcm), 120) // 96 kbit/s
//
//	dec, err := lc3.NewDecoder(10000, 48000)
//	out, err := dec.Decode(frame) // nil conceals a lost frame
//
// Interleaved multichannel audio is handled by MultiEncoder and
// MultiDecoder, which code the channels in parallel. Writer and Reader
// adapt both to io.Writer and io.Reader.
//
// Encoders and decoders are not safe for concurrent use; the per
// configuration tables they share are immutable.
package lc3
