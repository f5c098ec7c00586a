package lc3

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/thesyncim/lc3/internal/frame"
	"github.com/thesyncim/lc3/internal/testsignal"
)

func sineInt16(t *testing.T, rate, n, channels int) Int16Samples {
	t.Helper()
	x, err := testsignal.Generate(testsignal.Sine, rate, n, channels)
	require.NoError(t, err)
	return Int16Samples(testsignal.Int16(x))
}

func correlation(a, b []float64) float64 {
	var ab, aa, bb float64
	for i := range a {
		ab += a[i] * b[i]
		aa += a[i] * a[i]
		bb += b[i] * b[i]
	}
	if aa == 0 || bb == 0 {
		return 0
	}
	return ab / math.Sqrt(aa*bb)
}

func TestBindingBehaviour(t *testing.T) {
	dec, err := NewDecoder(10000, 48000)
	require.NoError(t, err)

	for _, tc := range []struct {
		depth BitDepth
		size  int
	}{{BitDepth16, 960}, {BitDepth24, 1440}, {BitDepth32, 1920}, {BitDepthFloat, 1920}} {
		out, err := dec.DecodeBytes(make([]byte, 120), tc.depth)
		assert.NotErrorIs(t, err, ErrInvalidArgument)
		assert.Len(t, out, tc.size, "depth %d", tc.depth)
	}
	f, err := dec.Decode(make([]byte, 120))
	assert.NotErrorIs(t, err, ErrInvalidArgument)
	assert.Len(t, f, 480)

	enc, err := NewEncoder(10000, 48000)
	require.NoError(t, err)
	frame, err := enc.EncodeBytes(make([]byte, 240), BitDepth16, 120)
	require.NoError(t, err)
	assert.Len(t, frame, 120)
	frame, err = enc.EncodeBytes(make([]byte, 4000), BitDepth24, 60)
	require.NoError(t, err)
	assert.Len(t, frame, 60)

	_, err = enc.EncodeBytes(make([]byte, 960), 128, 120)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = dec.DecodeBytes(frame, 128)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestConfigurationErrors(t *testing.T) {
	tests := map[string]struct {
		us, hz int
		opts   []Option
		ok     bool
	}{
		"10ms/48k":       {10000, 48000, nil, true},
		"7.5ms/8k":       {7500, 8000, nil, true},
		"1ms":            {1000, 48000, nil, false},
		"44.1k":          {10000, 44100, nil, false},
		"96k without hr": {10000, 96000, nil, false},
		"96k hr":         {10000, 96000, []Option{WithHighResolution(true)}, true},
		"hr 7.5ms":       {7500, 48000, []Option{WithHighResolution(true)}, false},
		"hr 16k":         {10000, 16000, []Option{WithHighResolution(true)}, false},
		"2.5ms/48k hr":   {2500, 48000, []Option{WithHighResolution(true)}, true},
		"5ms/24k":        {5000, 24000, nil, true},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			enc, err := NewEncoder(tc.us, tc.hz, tc.opts...)
			_, derr := NewDecoder(tc.us, tc.hz, tc.opts...)
			if !tc.ok {
				assert.ErrorIs(t, err, ErrInvalidArgument)
				assert.ErrorIs(t, derr, ErrInvalidArgument)
				return
			}
			require.NoError(t, err)
			require.NoError(t, derr)
			cfg := enc.Config()
			assert.Equal(t, tc.us*tc.hz/1000000, enc.FrameSamples())
			assert.Equal(t, 3*cfg.FrameSamples/4, enc.Delay())
			assert.Equal(t, 20, cfg.MinFrameBytes)
		})
	}
}

func TestEncodeArguments(t *testing.T) {
	enc, err := NewEncoder(10000, 16000)
	require.NoError(t, err)

	_, err = enc.Encode(make(Int16Samples, 159), 40)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = enc.Encode(nil, 40)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = enc.Encode(make(Int16Samples, 160), 19)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = enc.Encode(make(Int16Samples, 160), 401)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	out, err := enc.Encode(make(Int16Samples, 160), 400)
	require.NoError(t, err)
	assert.Len(t, out, 400)

	hr, err := NewEncoder(10000, 96000, WithHighResolution(true))
	require.NoError(t, err)
	out, err = hr.Encode(make(Float32Samples, 960), 625)
	require.NoError(t, err)
	assert.Len(t, out, 625)
	assert.Equal(t, 625, hr.Config().MaxFrameBytes)
}

func TestSampleFormatsEncodeIdentically(t *testing.T) {
	pcm := sineInt16(t, 32000, 4*320, 1)
	formats := map[string]func(Int16Samples) PCM{
		"int24": func(p Int16Samples) PCM {
			out := make(Int24Samples, len(p))
			for i, v := range p {
				out[i] = int32(v) << 8
			}
			return out
		},
		"int32": func(p Int16Samples) PCM {
			out := make(Int32Samples, len(p))
			for i, v := range p {
				out[i] = int32(v) << 16
			}
			return out
		},
		"float32": func(p Int16Samples) PCM {
			out := make(Float32Samples, len(p))
			for i, v := range p {
				out[i] = float32(v) / 32768
			}
			return out
		},
	}

	ref, err := NewEncoder(10000, 32000)
	require.NoError(t, err)
	var want [][]byte
	for f := 0; f < 4; f++ {
		b, err := ref.Encode(pcm[f*320:(f+1)*320], 80)
		require.NoError(t, err)
		want = append(want, b)
	}

	for name, conv := range formats {
		t.Run(name, func(t *testing.T) {
			enc, err := NewEncoder(10000, 32000)
			require.NoError(t, err)
			for f := 0; f < 4; f++ {
				b, err := enc.Encode(conv(pcm[f*320:(f+1)*320]), 80)
				require.NoError(t, err)
				assert.Equal(t, want[f], b, "frame %d", f)
			}
		})
	}
}

func TestBytesRoundTrip(t *testing.T) {
	b := []byte{0x01, 0x80, 0xff, 0xff, 0x7f, 0xfe, 0x00, 0x00, 0x80}
	p := parsePCM(b, BitDepth24).(Int24Samples)
	assert.Equal(t, Int24Samples{-32767, -98305, -8388608}, p)
	assert.Equal(t, b, p.appendLE(nil))

	b16 := binary.LittleEndian.AppendUint16(nil, uint16(0x8001))
	assert.Equal(t, Int16Samples{-32767}, parsePCM(b16, BitDepth16))
	assert.Equal(t, Int16Samples{}, parsePCM([]byte{1}, BitDepth16))
}

func TestRoundTrip(t *testing.T) {
	enc, err := NewEncoder(10000, 48000, WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)
	dec, err := NewDecoder(10000, 48000, WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)

	ns := enc.FrameSamples()
	in := sineInt16(t, 48000, 20*ns, 1)
	out := make(Int16Samples, len(in))
	for f := 0; f < 20; f++ {
		frame, err := enc.Encode(in[f*ns:(f+1)*ns], 120)
		require.NoError(t, err)
		require.NoError(t, dec.DecodeTo(frame, out[f*ns:(f+1)*ns]))
	}

	d := dec.Delay()
	a := make([]float64, 0, len(in))
	b := make([]float64, 0, len(in))
	for i := 4 * ns; i < len(in); i++ {
		a = append(a, float64(in[i-d]))
		b = append(b, float64(out[i]))
	}
	assert.Greater(t, correlation(a, b), 0.9)
}

func TestEveryConfigurationDecodes(t *testing.T) {
	const frames = 6
	for _, cfg := range frame.All() {
		name := fmt.Sprintf("%dus/%dHz/hr=%t", cfg.DurationMicros(), cfg.SampleRateHz(), cfg.HighResolution())
		t.Run(name, func(t *testing.T) {
			lo, hi := cfg.ByteRange()
			for _, kind := range []testsignal.Kind{testsignal.SpeechLike, testsignal.ChirpSweep} {
				for _, nbytes := range []int{lo, hi} {
					opt := WithHighResolution(cfg.HighResolution())
					enc, err := NewEncoder(cfg.DurationMicros(), cfg.SampleRateHz(), opt)
					require.NoError(t, err)
					dec, err := NewDecoder(cfg.DurationMicros(), cfg.SampleRateHz(), opt)
					require.NoError(t, err)

					ns := enc.FrameSamples()
					x, err := testsignal.Generate(kind, cfg.SampleRateHz(), frames*ns, 1)
					require.NoError(t, err)
					in := Int16Samples(testsignal.Int16(x))
					out := make(Int16Samples, ns)
					for f := 0; f < frames; f++ {
						data, err := enc.Encode(in[f*ns:(f+1)*ns], nbytes)
						require.NoError(t, err, "%s %d bytes frame %d", kind, nbytes, f)
						require.Len(t, data, nbytes)
						require.NoError(t, dec.DecodeTo(data, out), "%s %d bytes frame %d", kind, nbytes, f)
					}
				}
			}
		})
	}
}

func TestDecodeLossAndCorruption(t *testing.T) {
	dec, err := NewDecoder(10000, 16000, WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)

	out, err := dec.Decode(nil)
	require.NoError(t, err)
	assert.Len(t, out, 160)

	bad := make([]byte, 40)
	for i := range bad {
		bad[i] = 0xff
	}
	out, err = dec.Decode(bad)
	assert.ErrorIs(t, err, ErrCorruptBitstream)
	assert.Len(t, out, 160)

	_, err = dec.Decode(make([]byte, 10))
	assert.ErrorIs(t, err, ErrTruncatedInput)

	err = dec.DecodeTo(make([]byte, 40), make(Int16Samples, 3))
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

type traceLog struct {
	mu     sync.Mutex
	traces []FrameTrace
}

func (l *traceLog) TraceFrame(t FrameTrace) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.traces = append(l.traces, t)
}

func TestTracer(t *testing.T) {
	var log traceLog
	enc, err := NewEncoder(5000, 24000, WithTracer(&log))
	require.NoError(t, err)
	dec, err := NewDecoder(5000, 24000, WithTracer(&log))
	require.NoError(t, err)

	pcm := sineInt16(t, 24000, 120, 1)
	frame, err := enc.Encode(pcm, 50)
	require.NoError(t, err)
	_, err = dec.Decode(frame)
	require.NoError(t, err)
	_, err = dec.Decode(nil)
	require.NoError(t, err)

	require.Len(t, log.traces, 3)
	assert.Equal(t, DirectionEncode, log.traces[0].Direction)
	assert.Equal(t, 50, log.traces[0].Bytes)
	assert.LessOrEqual(t, log.traces[0].Bits, 400)
	assert.Equal(t, DirectionDecode, log.traces[1].Direction)
	assert.Equal(t, log.traces[0].Gain, log.traces[1].Gain)
	assert.Equal(t, log.traces[0].NonZero, log.traces[1].NonZero)
	assert.False(t, log.traces[1].Concealed)
	assert.True(t, log.traces[2].Concealed)
	assert.Equal(t, uint64(1), log.traces[2].Frame)
	assert.Equal(t, 1, log.traces[2].Lost)
}

func TestMultiEncoderMatchesMono(t *testing.T) {
	const channels, frames = 3, 5
	m, err := NewMultiEncoder(7500, 16000, channels)
	require.NoError(t, err)
	ns := m.FrameSamples()

	x, err := testsignal.Generate(testsignal.SpeechLike, 16000, frames*ns, channels)
	require.NoError(t, err)
	pcm := Int16Samples(testsignal.Int16(x))

	mono := make([]*Encoder, channels)
	for ch := range mono {
		mono[ch], err = NewEncoder(7500, 16000)
		require.NoError(t, err)
	}

	md, err := NewMultiDecoder(7500, 16000, channels)
	require.NoError(t, err)
	monoDec := make([]*Decoder, channels)
	for ch := range monoDec {
		monoDec[ch], err = NewDecoder(7500, 16000)
		require.NoError(t, err)
	}

	for f := 0; f < frames; f++ {
		block := pcm[f*ns*channels : (f+1)*ns*channels]
		got, err := m.Encode(block, 45)
		require.NoError(t, err)
		require.Len(t, got, 45*channels)

		interleaved, err := md.Decode(got)
		require.NoError(t, err)

		for ch := 0; ch < channels; ch++ {
			in := make(Int16Samples, ns)
			for i := range in {
				in[i] = block[i*channels+ch]
			}
			want, err := mono[ch].Encode(in, 45)
			require.NoError(t, err)
			assert.Equal(t, want, got[ch*45:(ch+1)*45], "frame %d channel %d", f, ch)

			out, err := monoDec[ch].Decode(want)
			require.NoError(t, err)
			for i := range out {
				require.Equal(t, out[i], interleaved[i*channels+ch])
			}
		}
	}

	_, err = md.Decode(make([]byte, 100))
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = NewMultiEncoder(10000, 48000, 0)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	lost, err := md.Decode(nil)
	require.NoError(t, err)
	assert.Len(t, lost, ns*channels)
}

type packetQueue struct {
	packets [][]byte
	samples int
}

func (q *packetQueue) WritePacket(p []byte, samples int) error {
	q.packets = append(q.packets, append([]byte(nil), p...))
	q.samples += samples
	return nil
}

func (q *packetQueue) NextPacket() ([]byte, error) {
	if len(q.packets) == 0 {
		return nil, io.EOF
	}
	p := q.packets[0]
	q.packets = q.packets[1:]
	return p, nil
}

func TestStreamRoundTrip(t *testing.T) {
	const channels = 2
	enc, err := NewMultiEncoder(10000, 16000, channels)
	require.NoError(t, err)
	dec, err := NewMultiDecoder(10000, 16000, channels)
	require.NoError(t, err)

	const n = 1000 // not a whole number of frames
	in := sineInt16(t, 16000, n, channels)
	raw := in.appendLE(nil)

	var q packetQueue
	w, err := NewWriter(enc, &q, BitDepth16, 40)
	require.NoError(t, err)
	_, err = w.Write(raw[:333])
	require.NoError(t, err)
	_, err = w.Write(raw[333:])
	require.NoError(t, err)
	require.NoError(t, w.Close())
	assert.Equal(t, n, q.samples)
	// The 40 sample tail leaves exactly the codec delay in the last frame.
	assert.Len(t, q.packets, 7)

	r, err := NewReader(dec, &q, BitDepth16, dec.Delay())
	require.NoError(t, err)
	decoded, err := io.ReadAll(r)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(decoded), len(raw))

	out := parsePCM(decoded[:len(raw)], BitDepth16).(Int16Samples)
	a := make([]float64, 0, n)
	b := make([]float64, 0, n)
	for i := 320 * channels; i < len(in); i++ {
		a = append(a, float64(in[i]))
		b = append(b, float64(out[i]))
	}
	assert.Greater(t, correlation(a, b), 0.9)
}

type failingSink struct {
	packetQueue
	limit int
}

func (f *failingSink) WritePacket(p []byte, samples int) error {
	if len(f.packets) == f.limit {
		return errors.New("sink full")
	}
	return f.packetQueue.WritePacket(p, samples)
}

func TestWriterReportsConsumedBytes(t *testing.T) {
	enc, err := NewMultiEncoder(10000, 16000, 1)
	require.NoError(t, err)
	const fb = 160 * 2

	sink := &failingSink{limit: 2}
	w, err := NewWriter(enc, sink, BitDepth16, 40)
	require.NoError(t, err)

	n, err := w.Write(make([]byte, 100))
	require.NoError(t, err)
	assert.Equal(t, 100, n)

	// Two frames reach the sink; the third fails.
	n, err = w.Write(make([]byte, 3*fb))
	assert.EqualError(t, err, "sink full")
	assert.Equal(t, 2*fb-100, n)
	assert.Len(t, sink.packets, 2)
	assert.Empty(t, w.buf)

	sink.limit = len(sink.packets)
	n, err = w.Write(make([]byte, fb))
	assert.Error(t, err)
	assert.Zero(t, n)
}
