// decoder.go implements the public Decoder API.

package lc3

import (
	"go.uber.org/zap"

	"github.com/thesyncim/lc3/internal/decoder"
	"github.com/thesyncim/lc3/internal/frame"
)

// channelDecoder decodes one channel into a possibly interleaved block.
type channelDecoder struct {
	dec    *decoder.Decoder
	o      *options
	ch     int
	frames uint64
	pcm    []float64
}

func newChannelDecoder(cfg frame.Config, o *options, ch int) (*channelDecoder, error) {
	dec, err := decoder.New(cfg)
	if err != nil {
		return nil, publicError(err)
	}
	return &channelDecoder{dec: dec, o: o, ch: ch, pcm: make([]float64, cfg.NS)}, nil
}

// decode decodes data, nil for a lost frame, into channel ch of dst. dst is
// written even when an error is returned.
func (c *channelDecoder) decode(data []byte, dst PCM, stride int) error {
	if len(data) == 0 {
		data = nil
	}
	st, err := c.dec.Decode(data, c.pcm)
	err = publicError(err)
	dst.store(c.pcm, c.ch, stride)

	c.o.tracer.TraceFrame(FrameTrace{
		Direction:   DirectionDecode,
		Channel:     c.ch,
		Frame:       c.frames,
		Bytes:       len(data),
		Bandwidth:   st.Bandwidth,
		BandwidthHz: st.BandwidthHz,
		Attack:      st.Attack,
		Gain:        st.Gain,
		SNSShape:    st.SNSShape,
		TNSOrders:   st.TNSOrders,
		NonZero:     st.NonZero,
		NoiseLevel:  st.NoiseLevel,
		Residual:    st.Residual,
		Concealed:   st.Concealed,
		Lost:        st.Lost,
		Fade:        st.Fade,
		Err:         err,
	})
	c.frames++

	switch {
	case err != nil:
		c.o.logger.Warn("frame concealed",
			zap.Int("channel", c.ch),
			zap.Uint64("frame", c.frames-1),
			zap.Int("bytes", len(data)),
			zap.Error(err))
	case st.Concealed:
		c.o.logger.Debug("frame lost",
			zap.Int("channel", c.ch),
			zap.Int("lost", st.Lost),
			zap.Float64("fade", st.Fade))
	}
	return err
}

func (c *channelDecoder) reset() {
	c.dec.Reset()
	c.frames = 0
}

// Decoder decodes frames into mono PCM.
//
// A Decoder carries overlap and concealment history from frame to frame and
// is NOT safe for concurrent use.
type Decoder struct {
	cfg frame.Config
	pub Config
	o   options
	c   *channelDecoder
}

// NewDecoder creates a decoder; see NewEncoder for the supported
// configurations.
func NewDecoder(durationUS, sampleRateHz int, opts ...Option) (*Decoder, error) {
	d := &Decoder{o: newOptions(opts)}
	cfg, s, err := resolve(durationUS, sampleRateHz, d.o.hr)
	if err != nil {
		return nil, err
	}
	d.cfg = cfg
	d.pub = publicConfig(cfg, s)
	if d.c, err = newChannelDecoder(cfg, &d.o, 0); err != nil {
		return nil, err
	}
	d.o.logger.Debug("decoder created",
		zap.Stringer("config", cfg),
		zap.Int("frame_samples", cfg.NS))
	return d, nil
}

// Decode decodes one frame into FrameSamples float samples in [-1, 1].
//
// A nil or empty data is a lost frame: the output is concealed and no error
// is returned. A malformed frame is concealed as well; the concealed output
// is returned together with ErrCorruptBitstream or ErrTruncatedInput.
func (d *Decoder) Decode(data []byte) ([]float32, error) {
	out := make(Float32Samples, d.cfg.NS)
	err := d.DecodeTo(data, out)
	return out, err
}

// DecodeTo decodes one frame into dst, which must hold exactly FrameSamples
// samples. Errors are reported as for Decode.
func (d *Decoder) DecodeTo(data []byte, dst PCM) error {
	if dst == nil || dst.Len() != d.cfg.NS {
		return invalidf("%d samples, want %d", pcmLen(dst), d.cfg.NS)
	}
	return d.c.decode(data, dst, 1)
}

// DecodeBytes decodes one frame into little-endian samples of the given
// depth. Errors are reported as for Decode.
func (d *Decoder) DecodeBytes(data []byte, depth BitDepth) ([]byte, error) {
	if err := depth.check(); err != nil {
		return nil, err
	}
	pcm := newPCM(depth, d.cfg.NS)
	err := d.c.decode(data, pcm, 1)
	return pcm.appendLE(make([]byte, 0, d.cfg.NS*depth.BytesPerSample())), err
}

// FrameSamples returns the number of samples per frame.
func (d *Decoder) FrameSamples() int { return d.cfg.NS }

// Delay returns the algorithmic delay in samples.
func (d *Decoder) Delay() int { return d.pub.Delay }

// Config returns the resolved configuration.
func (d *Decoder) Config() Config { return d.pub }

// Reset clears the overlap and concealment history.
func (d *Decoder) Reset() { d.c.reset() }
