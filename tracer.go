package lc3

// Direction tells whether a FrameTrace comes from an encoder or a decoder.
type Direction int

const (
	DirectionEncode Direction = iota
	DirectionDecode
)

func (d Direction) String() string {
	if d == DirectionDecode {
		return "decode"
	}
	return "encode"
}

// FrameTrace describes one coded frame of one channel.
type FrameTrace struct {
	Direction Direction
	Channel   int
	Frame     uint64 // frame index since construction or Reset
	Bytes     int

	Bandwidth   int // bandwidth candidate index
	BandwidthHz int
	Attack      bool
	Gain        int // global gain index
	SNSShape    int
	TNSOrders   [2]int
	NonZero     int
	NoiseLevel  int
	Residual    int

	// Encoder only.
	TNSDropped bool
	ZeroFrame  bool
	Bits       int

	// Decoder only.
	Concealed bool
	Lost      int
	Fade      float64

	// Err is the error returned for the frame, if any.
	Err error
}

// Tracer receives a FrameTrace for every frame coded. Multichannel coders
// call it from several goroutines at once, so implementations must be safe
// for concurrent use.
type Tracer interface {
	TraceFrame(FrameTrace)
}

// NoopTracer discards traces.
type NoopTracer struct{}

// TraceFrame implements Tracer.
func (NoopTracer) TraceFrame(FrameTrace) {}

// TracerFunc adapts a function to a Tracer.
type TracerFunc func(FrameTrace)

// TraceFrame implements Tracer.
func (f TracerFunc) TraceFrame(t FrameTrace) { f(t) }
