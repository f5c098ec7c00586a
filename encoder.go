// encoder.go implements the public Encoder API.

package lc3

import (
	"go.uber.org/zap"

	"github.com/thesyncim/lc3/internal/encoder"
	"github.com/thesyncim/lc3/internal/frame"
)

// channelEncoder encodes one channel of a possibly interleaved block.
type channelEncoder struct {
	enc    *encoder.Encoder
	o      *options
	ch     int
	frames uint64
	pcm    []float64
}

func newChannelEncoder(cfg frame.Config, o *options, ch int) (*channelEncoder, error) {
	enc, err := encoder.New(cfg)
	if err != nil {
		return nil, publicError(err)
	}
	return &channelEncoder{enc: enc, o: o, ch: ch, pcm: make([]float64, cfg.NS)}, nil
}

func (c *channelEncoder) encode(pcm PCM, stride int, out []byte) error {
	pcm.load(c.pcm, c.ch, stride)
	st, err := c.enc.Encode(c.pcm, out)
	err = publicError(err)
	c.o.tracer.TraceFrame(FrameTrace{
		Direction:   DirectionEncode,
		Channel:     c.ch,
		Frame:       c.frames,
		Bytes:       len(out),
		Bandwidth:   st.Bandwidth,
		BandwidthHz: st.BandwidthHz,
		Attack:      st.Attack,
		Gain:        st.Gain,
		SNSShape:    st.SNSShape,
		TNSOrders:   st.TNSOrders,
		NonZero:     st.NonZero,
		NoiseLevel:  st.NoiseLevel,
		Residual:    st.Residual,
		TNSDropped:  st.TNSDropped,
		ZeroFrame:   st.ZeroFrame,
		Bits:        st.Bits,
		Err:         err,
	})
	c.frames++
	if st.ZeroFrame {
		c.o.logger.Debug("spectrum dropped", zap.Int("channel", c.ch), zap.Int("bytes", len(out)))
	}
	return err
}

func (c *channelEncoder) reset() {
	c.enc.Reset()
	c.frames = 0
}

// Encoder encodes frames of mono PCM.
//
// An Encoder carries transform and attack-detector state from frame to frame
// and is NOT safe for concurrent use.
type Encoder struct {
	cfg frame.Config
	pub Config
	o   options
	c   *channelEncoder
}

// NewEncoder creates an encoder for frames of durationUS microseconds (2500,
// 5000, 7500 or 10000) at sampleRateHz (8000, 16000, 24000, 32000 or 48000;
// 48000 or 96000 with WithHighResolution).
func NewEncoder(durationUS, sampleRateHz int, opts ...Option) (*Encoder, error) {
	e := &Encoder{o: newOptions(opts)}
	cfg, s, err := resolve(durationUS, sampleRateHz, e.o.hr)
	if err != nil {
		return nil, err
	}
	e.cfg = cfg
	e.pub = publicConfig(cfg, s)
	if e.c, err = newChannelEncoder(cfg, &e.o, 0); err != nil {
		return nil, err
	}
	e.o.logger.Debug("encoder created",
		zap.Stringer("config", cfg),
		zap.Int("frame_samples", cfg.NS),
		zap.Int("delay", e.pub.Delay))
	return e, nil
}

// Encode encodes exactly FrameSamples samples into a frame of numBytes
// bytes.
func (e *Encoder) Encode(pcm PCM, numBytes int) ([]byte, error) {
	if err := e.cfg.CheckBytes(numBytes); err != nil {
		return nil, publicError(err)
	}
	out := make([]byte, numBytes)
	if err := e.EncodeTo(pcm, out); err != nil {
		return nil, err
	}
	return out, nil
}

// EncodeTo encodes exactly FrameSamples samples into out, which is filled
// completely. len(out) is the frame size.
func (e *Encoder) EncodeTo(pcm PCM, out []byte) error {
	if pcm == nil || pcm.Len() != e.cfg.NS {
		return invalidf("%d samples, want %d", pcmLen(pcm), e.cfg.NS)
	}
	return e.c.encode(pcm, 1, out)
}

// EncodeBytes encodes little-endian samples of the given depth. Input
// shorter than a frame is zero padded and excess input is ignored.
func (e *Encoder) EncodeBytes(pcm []byte, depth BitDepth, numBytes int) ([]byte, error) {
	if err := depth.check(); err != nil {
		return nil, err
	}
	if err := e.cfg.CheckBytes(numBytes); err != nil {
		return nil, publicError(err)
	}
	out := make([]byte, numBytes)
	if err := e.c.encode(parsePCM(pcm, depth), 1, out); err != nil {
		return nil, err
	}
	return out, nil
}

// FrameSamples returns the number of samples per frame.
func (e *Encoder) FrameSamples() int { return e.cfg.NS }

// Delay returns the algorithmic delay in samples.
func (e *Encoder) Delay() int { return e.pub.Delay }

// Config returns the resolved configuration.
func (e *Encoder) Config() Config { return e.pub }

// Reset clears the state carried between frames.
func (e *Encoder) Reset() { e.c.reset() }

func pcmLen(p PCM) int {
	if p == nil {
		return 0
	}
	return p.Len()
}
