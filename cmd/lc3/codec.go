package main

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"go.uber.org/zap"

	"github.com/thesyncim/lc3"
	"github.com/thesyncim/lc3/container/ogg"
	"github.com/thesyncim/lc3/internal/tracestore"
)

func (c *cli) options(hr bool) []lc3.Option {
	opts := []lc3.Option{
		lc3.WithLogger(c.log.Named("lc3")),
		lc3.WithHighResolution(hr),
	}
	if c.traces != nil {
		opts = append(opts, lc3.WithTracer(c.traces))
	}
	return opts
}

func (c *cli) startSession(s tracestore.Session) error {
	if c.traces == nil {
		return nil
	}
	if err := c.traces.StartSession(&s); err != nil {
		return err
	}
	c.log.Info("trace session started", zap.Uint("session", s.ID), zap.String("label", s.Label))
	return nil
}

func (c *cli) flushTraces() error {
	if c.traces == nil {
		return nil
	}
	return c.traces.Flush()
}

// encode reads interleaved PCM and writes an Ogg lc3 stream.
func (c *cli) encode(in, out string) error {
	cc := c.cfg.Codec
	depth := lc3.BitDepth(cc.BitDepth)
	enc, err := lc3.NewMultiEncoder(cc.FrameDurationUS, cc.SampleRateHz, cc.Channels, c.options(cc.HighResolution)...)
	if err != nil {
		return err
	}
	numBytes := cc.FrameBytes
	if numBytes == 0 {
		numBytes = enc.Config().FrameBytes(cc.Bitrate)
	}
	label := c.label(in)
	if err := c.startSession(tracestore.Session{
		Label:        label,
		Direction:    lc3.DirectionEncode.String(),
		DurationUS:   cc.FrameDurationUS,
		SampleRateHz: cc.SampleRateHz,
		Channels:     cc.Channels,
		FrameBytes:   numBytes,
	}); err != nil {
		return err
	}

	r, err := c.openInput(in)
	if err != nil {
		return err
	}
	defer r.Close()
	w, err := c.openOutput(out)
	if err != nil {
		return err
	}

	tags := ogg.DefaultTags()
	tags.Comments["ENCODER"] = "lc3"
	tags.Comments["TITLE"] = label
	ow, err := ogg.NewWriter(w, ogg.Head{
		Channels:        uint8(cc.Channels),
		HighResolution:  cc.HighResolution,
		FrameDurationUS: uint16(cc.FrameDurationUS),
		SampleRate:      uint32(cc.SampleRateHz),
		FrameBytes:      uint16(numBytes),
		PreSkip:         uint16(enc.Delay()),
	}, tags)
	if err != nil {
		w.Close()
		return err
	}
	lw, err := lc3.NewWriter(enc, ow, depth, numBytes)
	if err != nil {
		w.Close()
		return err
	}
	n, err := io.Copy(lw, r)
	if err == nil {
		err = lw.Close()
	}
	if err == nil {
		err = ow.Close()
	}
	if err = errors.Join(err, w.Close()); err != nil {
		return err
	}

	c.log.Info("encoded",
		zap.Stringer("config", enc.Config()),
		zap.Int("channels", cc.Channels),
		zap.Int("frame_bytes", numBytes),
		zap.Int("bitrate", enc.Config().Bitrate(numBytes)*cc.Channels),
		zap.Int64("pcm_bytes", n),
		zap.Uint64("samples", ow.GranulePos()),
		zap.Uint32("pages", ow.PageCount()))
	return c.flushTraces()
}

// decode reads an Ogg lc3 stream and writes interleaved PCM, trimmed to the
// number of samples encoded.
func (c *cli) decode(in, out string) error {
	r, err := c.openInput(in)
	if err != nil {
		return err
	}
	defer r.Close()
	or, err := ogg.NewReader(r)
	if err != nil {
		return fmt.Errorf("read headers: %w", err)
	}
	h := or.Head
	dec, err := lc3.NewMultiDecoder(int(h.FrameDurationUS), int(h.SampleRate), int(h.Channels), c.options(h.HighResolution)...)
	if err != nil {
		return err
	}
	if err := c.startSession(tracestore.Session{
		Label:        c.label(in),
		Direction:    lc3.DirectionDecode.String(),
		DurationUS:   int(h.FrameDurationUS),
		SampleRateHz: int(h.SampleRate),
		Channels:     int(h.Channels),
		FrameBytes:   int(h.FrameBytes),
	}); err != nil {
		return err
	}

	depth := lc3.BitDepth(c.cfg.Codec.BitDepth)
	lr, err := lc3.NewReader(dec, or, depth, int(h.PreSkip))
	if err != nil {
		return err
	}
	w, err := c.openOutput(out)
	if err != nil {
		return err
	}
	sampleBytes := int(h.Channels) * depth.BytesPerSample()
	tw := &tailWriter{w: w, hold: 2 * dec.FrameSamples() * sampleBytes}

	concealed := 0
	buf := make([]byte, 32<<10)
	for {
		n, rerr := lr.Read(buf)
		if n > 0 {
			if _, err := tw.Write(buf[:n]); err != nil {
				w.Close()
				return err
			}
		}
		if rerr == io.EOF {
			break
		}
		if errors.Is(rerr, lc3.ErrCorruptBitstream) || errors.Is(rerr, lc3.ErrTruncatedInput) {
			concealed++
			c.log.Warn("frame concealed", zap.Error(rerr))
			continue
		}
		if rerr != nil {
			w.Close()
			return rerr
		}
	}
	if err := errors.Join(tw.finish(int64(or.GranulePos())*int64(sampleBytes)), w.Close()); err != nil {
		return err
	}

	c.log.Info("decoded",
		zap.Stringer("config", dec.Config()),
		zap.Int("channels", int(h.Channels)),
		zap.Uint64("samples", or.GranulePos()),
		zap.Int64("pcm_bytes", tw.written),
		zap.Int("concealed", concealed))
	return c.flushTraces()
}

// info prints the stream headers and totals.
func (c *cli) info(in, out string) error {
	r, err := c.openInput(in)
	if err != nil {
		return err
	}
	defer r.Close()
	or, err := ogg.NewReader(r)
	if err != nil {
		return fmt.Errorf("read headers: %w", err)
	}
	var packets, payload int
	for {
		p, err := or.NextPacket()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		packets++
		payload += len(p)
	}

	w, err := c.openOutput(out)
	if err != nil {
		return err
	}
	h := or.Head
	seconds := float64(or.GranulePos()) / float64(h.SampleRate)
	fmt.Fprintf(w, "serial:          %08x\n", or.Serial())
	fmt.Fprintf(w, "vendor:          %s\n", or.Tags.Vendor)
	keys := make([]string, 0, len(or.Tags.Comments))
	for k := range or.Tags.Comments {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "comment:         %s=%s\n", k, or.Tags.Comments[k])
	}
	fmt.Fprintf(w, "channels:        %d\n", h.Channels)
	fmt.Fprintf(w, "sample rate:     %d Hz\n", h.SampleRate)
	fmt.Fprintf(w, "high resolution: %t\n", h.HighResolution)
	fmt.Fprintf(w, "frame duration:  %d us\n", h.FrameDurationUS)
	fmt.Fprintf(w, "frame bytes:     %d per channel\n", h.FrameBytes)
	fmt.Fprintf(w, "pre-skip:        %d samples\n", h.PreSkip)
	fmt.Fprintf(w, "packets:         %d (%d bytes)\n", packets, payload)
	fmt.Fprintf(w, "samples:         %d per channel\n", or.GranulePos())
	fmt.Fprintf(w, "duration:        %.3f s\n", seconds)
	if seconds > 0 {
		fmt.Fprintf(w, "bitrate:         %.1f kbit/s\n", float64(payload)*8/seconds/1000)
	}
	return w.Close()
}
