// stream.go implements streaming io.Reader and io.Writer wrappers.

package lc3

import (
	"errors"
	"io"
)

// PacketSource provides encoded frames for streaming decode. Each packet
// holds one frame per channel, concatenated.
type PacketSource interface {
	// NextPacket returns the next packet, nil for a lost one, or io.EOF.
	NextPacket() ([]byte, error)
}

// PacketSink receives encoded packets from streaming encode.
type PacketSink interface {
	// WritePacket writes a packet carrying samples input samples per
	// channel. samples is below FrameSamples for the final packets.
	WritePacket(packet []byte, samples int) error
}

// Writer encodes interleaved PCM bytes, implementing io.Writer.
//
// Input is buffered until a complete frame is available. Close encodes the
// buffered remainder and flushes the codec delay.
type Writer struct {
	enc      *MultiEncoder
	sink     PacketSink
	depth    BitDepth
	numBytes int

	buf        []byte
	frameBytes int
	started    bool
	closed     bool
}

// NewWriter creates a streaming encoder writing frames of numBytes bytes
// per channel to sink.
func NewWriter(enc *MultiEncoder, sink PacketSink, depth BitDepth, numBytes int) (*Writer, error) {
	if err := depth.check(); err != nil {
		return nil, err
	}
	if err := enc.cfg.CheckBytes(numBytes); err != nil {
		return nil, publicError(err)
	}
	fb := enc.FrameSamples() * enc.Channels() * depth.BytesPerSample()
	return &Writer{
		enc:        enc,
		sink:       sink,
		depth:      depth,
		numBytes:   numBytes,
		buf:        make([]byte, 0, 2*fb),
		frameBytes: fb,
	}, nil
}

// Write implements io.Writer.
func (w *Writer) Write(p []byte) (int, error) {
	if w.closed {
		return 0, errors.New("lc3: write to closed Writer")
	}
	prev := len(w.buf)
	w.buf = append(w.buf, p...)
	sent := 0
	for len(w.buf)-sent >= w.frameBytes {
		if err := w.emit(w.buf[sent:sent+w.frameBytes], w.enc.FrameSamples()); err != nil {
			// Only bytes of p that reached the sink count as written; the
			// rest of p is dropped from the buffer.
			n := max(0, sent-prev)
			w.buf = w.buf[sent : prev+n]
			return n, err
		}
		sent += w.frameBytes
	}
	w.buf = w.buf[sent:]
	return len(p), nil
}

func (w *Writer) emit(pcm []byte, samples int) error {
	packet, err := w.enc.EncodeBytes(pcm, w.depth, w.numBytes)
	if err != nil {
		return err
	}
	w.started = true
	return w.sink.WritePacket(packet, samples)
}

// Close zero pads the buffered input into a final frame, then encodes
// silence until every input sample has cleared the codec delay.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	ns := w.enc.FrameSamples()
	tail := 0
	if len(w.buf) > 0 {
		tail = len(w.buf) / (w.enc.Channels() * w.depth.BytesPerSample())
		if err := w.emit(w.buf, tail); err != nil {
			return err
		}
		w.buf = w.buf[:0]
	} else if w.started {
		tail = ns
	}
	// The last tail samples come out Delay samples late.
	for flushed := ns - tail; flushed < w.enc.Delay(); flushed += ns {
		if err := w.emit(nil, 0); err != nil {
			return err
		}
	}
	return nil
}

// Reader decodes a packet stream into interleaved PCM bytes, implementing
// io.Reader. The first skip samples per channel, normally the codec delay,
// are dropped.
type Reader struct {
	dec    *MultiDecoder
	source PacketSource
	depth  BitDepth

	skip int // bytes still to drop
	buf  []byte
	off  int
	eof  bool
}

// NewReader creates a streaming decoder.
func NewReader(dec *MultiDecoder, source PacketSource, depth BitDepth, skip int) (*Reader, error) {
	if err := depth.check(); err != nil {
		return nil, err
	}
	if skip < 0 {
		return nil, invalidf("negative skip %d", skip)
	}
	return &Reader{
		dec:    dec,
		source: source,
		depth:  depth,
		skip:   skip * dec.Channels() * depth.BytesPerSample(),
	}, nil
}

// Read implements io.Reader. Malformed packets are concealed and their
// errors returned; reading may continue afterwards.
func (r *Reader) Read(p []byte) (int, error) {
	for r.off >= len(r.buf) {
		if r.eof {
			return 0, io.EOF
		}
		packet, err := r.source.NextPacket()
		if err == io.EOF {
			r.eof = true
			return 0, io.EOF
		}
		if err != nil {
			return 0, err
		}
		pcm, decErr := r.dec.DecodeBytes(packet, r.depth)
		if pcm == nil {
			return 0, decErr
		}
		drop := min(r.skip, len(pcm))
		r.skip -= drop
		r.buf = pcm[drop:]
		r.off = 0
		if decErr != nil {
			return 0, decErr
		}
	}
	n := copy(p, r.buf[r.off:])
	r.off += n
	return n, nil
}
