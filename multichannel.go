package lc3

import (
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/thesyncim/lc3/internal/frame"
)

// MaxChannels is the largest channel count of the multichannel coders.
const MaxChannels = 255

func checkChannels(n int) error {
	if n < 1 || n > MaxChannels {
		return invalidf("%d channels (must be 1-%d)", n, MaxChannels)
	}
	return nil
}

// MultiEncoder encodes interleaved multichannel PCM. Each channel is coded
// independently into its own frame; the frames are concatenated in channel
// order. Channels are encoded in parallel.
//
// A MultiEncoder is NOT safe for concurrent use.
type MultiEncoder struct {
	cfg   frame.Config
	pub   Config
	o     options
	chans []*channelEncoder
}

// NewMultiEncoder creates an encoder for channels interleaved channels.
func NewMultiEncoder(durationUS, sampleRateHz, channels int, opts ...Option) (*MultiEncoder, error) {
	if err := checkChannels(channels); err != nil {
		return nil, err
	}
	m := &MultiEncoder{o: newOptions(opts)}
	cfg, s, err := resolve(durationUS, sampleRateHz, m.o.hr)
	if err != nil {
		return nil, err
	}
	m.cfg = cfg
	m.pub = publicConfig(cfg, s)
	m.chans = make([]*channelEncoder, channels)
	for ch := range m.chans {
		if m.chans[ch], err = newChannelEncoder(cfg, &m.o, ch); err != nil {
			return nil, err
		}
	}
	m.o.logger.Debug("multichannel encoder created",
		zap.Stringer("config", cfg),
		zap.Int("channels", channels))
	return m, nil
}

// Encode encodes exactly FrameSamples samples per channel into channels
// frames of numBytes bytes each.
func (m *MultiEncoder) Encode(pcm PCM, numBytes int) ([]byte, error) {
	if err := m.cfg.CheckBytes(numBytes); err != nil {
		return nil, publicError(err)
	}
	out := make([]byte, numBytes*len(m.chans))
	if err := m.EncodeTo(pcm, out); err != nil {
		return nil, err
	}
	return out, nil
}

// EncodeTo encodes exactly FrameSamples samples per channel into out, split
// evenly between the channels.
func (m *MultiEncoder) EncodeTo(pcm PCM, out []byte) error {
	want := m.cfg.NS * len(m.chans)
	if pcm == nil || pcm.Len() != want {
		return invalidf("%d samples, want %d", pcmLen(pcm), want)
	}
	return m.encode(pcm, out)
}

// EncodeBytes encodes interleaved little-endian samples of the given depth.
// Input shorter than a frame is zero padded and excess input is ignored.
func (m *MultiEncoder) EncodeBytes(pcm []byte, depth BitDepth, numBytes int) ([]byte, error) {
	if err := depth.check(); err != nil {
		return nil, err
	}
	if err := m.cfg.CheckBytes(numBytes); err != nil {
		return nil, publicError(err)
	}
	out := make([]byte, numBytes*len(m.chans))
	if err := m.encode(parsePCM(pcm, depth), out); err != nil {
		return nil, err
	}
	return out, nil
}

func (m *MultiEncoder) encode(pcm PCM, out []byte) error {
	n := len(m.chans)
	if len(out)%n != 0 {
		return invalidf("%d bytes do not split into %d channels", len(out), n)
	}
	size := len(out) / n
	if err := m.cfg.CheckBytes(size); err != nil {
		return publicError(err)
	}
	if n == 1 {
		return m.chans[0].encode(pcm, 1, out)
	}
	var g errgroup.Group
	for ch, c := range m.chans {
		g.Go(func() error {
			return c.encode(pcm, n, out[ch*size:(ch+1)*size])
		})
	}
	return g.Wait()
}

// Channels returns the channel count.
func (m *MultiEncoder) Channels() int { return len(m.chans) }

// FrameSamples returns the number of samples per channel and frame.
func (m *MultiEncoder) FrameSamples() int { return m.cfg.NS }

// Delay returns the algorithmic delay in samples.
func (m *MultiEncoder) Delay() int { return m.pub.Delay }

// Config returns the resolved configuration.
func (m *MultiEncoder) Config() Config { return m.pub }

// Reset clears the state carried between frames.
func (m *MultiEncoder) Reset() {
	for _, c := range m.chans {
		c.reset()
	}
}

// MultiDecoder decodes concatenated per-channel frames into interleaved
// multichannel PCM. Channels are decoded in parallel.
//
// A MultiDecoder is NOT safe for concurrent use.
type MultiDecoder struct {
	cfg   frame.Config
	pub   Config
	o     options
	chans []*channelDecoder
}

// NewMultiDecoder creates a decoder for channels interleaved channels.
func NewMultiDecoder(durationUS, sampleRateHz, channels int, opts ...Option) (*MultiDecoder, error) {
	if err := checkChannels(channels); err != nil {
		return nil, err
	}
	m := &MultiDecoder{o: newOptions(opts)}
	cfg, s, err := resolve(durationUS, sampleRateHz, m.o.hr)
	if err != nil {
		return nil, err
	}
	m.cfg = cfg
	m.pub = publicConfig(cfg, s)
	m.chans = make([]*channelDecoder, channels)
	for ch := range m.chans {
		if m.chans[ch], err = newChannelDecoder(cfg, &m.o, ch); err != nil {
			return nil, err
		}
	}
	m.o.logger.Debug("multichannel decoder created",
		zap.Stringer("config", cfg),
		zap.Int("channels", channels))
	return m, nil
}

// Decode decodes one frame per channel into interleaved float samples. data
// is split evenly between the channels; nil or empty data conceals every
// channel. As with Decoder.Decode, malformed frames are concealed and the
// output is returned with the error.
func (m *MultiDecoder) Decode(data []byte) ([]float32, error) {
	out := make(Float32Samples, m.cfg.NS*len(m.chans))
	err := m.DecodeTo(data, out)
	if isInvalid(err) {
		return nil, err
	}
	return out, err
}

// DecodeTo decodes into dst, which must hold exactly FrameSamples samples
// per channel.
func (m *MultiDecoder) DecodeTo(data []byte, dst PCM) error {
	want := m.cfg.NS * len(m.chans)
	if dst == nil || dst.Len() != want {
		return invalidf("%d samples, want %d", pcmLen(dst), want)
	}
	return m.decode(data, dst)
}

// DecodeBytes decodes into interleaved little-endian samples of the given
// depth.
func (m *MultiDecoder) DecodeBytes(data []byte, depth BitDepth) ([]byte, error) {
	if err := depth.check(); err != nil {
		return nil, err
	}
	pcm := newPCM(depth, m.cfg.NS*len(m.chans))
	err := m.decode(data, pcm)
	if isInvalid(err) {
		return nil, err
	}
	return pcm.appendLE(nil), err
}

func (m *MultiDecoder) decode(data []byte, dst PCM) error {
	n := len(m.chans)
	if len(data)%n != 0 {
		return invalidf("%d bytes do not split into %d channels", len(data), n)
	}
	size := len(data) / n
	frameOf := func(ch int) []byte {
		if size == 0 {
			return nil
		}
		return data[ch*size : (ch+1)*size]
	}
	if n == 1 {
		return m.chans[0].decode(frameOf(0), dst, 1)
	}
	var g errgroup.Group
	for ch, c := range m.chans {
		g.Go(func() error {
			return c.decode(frameOf(ch), dst, n)
		})
	}
	return g.Wait()
}

// Channels returns the channel count.
func (m *MultiDecoder) Channels() int { return len(m.chans) }

// FrameSamples returns the number of samples per channel and frame.
func (m *MultiDecoder) FrameSamples() int { return m.cfg.NS }

// Delay returns the algorithmic delay in samples.
func (m *MultiDecoder) Delay() int { return m.pub.Delay }

// Config returns the resolved configuration.
func (m *MultiDecoder) Config() Config { return m.pub }

// Reset clears the overlap and concealment history.
func (m *MultiDecoder) Reset() {
	for _, c := range m.chans {
		c.reset()
	}
}
