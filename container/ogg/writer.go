package ogg

import (
	"io"
	"math/rand/v2"
)

// Writer writes lc3 packets to an Ogg stream.
type Writer struct {
	w          io.Writer
	head       Head
	serial     uint32
	pageSeq    uint32
	granulePos uint64
	closed     bool
}

// NewWriter writes the identification and comment headers for head and
// returns a Writer for the audio packets. tags may be nil.
func NewWriter(w io.Writer, head Head, tags *Tags) (*Writer, error) {
	if head.Version == 0 {
		head.Version = headVersion
	}
	if err := head.Validate(); err != nil {
		return nil, err
	}
	if tags == nil {
		tags = DefaultTags()
	}
	ow := &Writer{w: w, head: head, serial: rand.Uint32()}
	if err := ow.writePacket(head.Encode(), PageFlagBOS, 0); err != nil {
		return nil, err
	}
	if err := ow.writePacket(tags.Encode(), 0, 0); err != nil {
		return nil, err
	}
	return ow, nil
}

// writePacket writes packet on one or more pages. Pages on which no packet
// ends carry the granule position -1.
func (ow *Writer) writePacket(packet []byte, flags byte, granule uint64) error {
	segs := BuildSegmentTable(len(packet))
	for first := true; len(segs) > 0; first = false {
		n := min(len(segs), maxSegments)
		size := 0
		for _, s := range segs[:n] {
			size += int(s)
		}
		page := &Page{
			HeaderType:   flags,
			GranulePos:   granule,
			SerialNumber: ow.serial,
			PageSequence: ow.pageSeq,
			Segments:     segs[:n],
			Payload:      packet[:size],
		}
		if !first {
			page.HeaderType = flags&^PageFlagBOS | PageFlagContinuation
		}
		if !page.Complete() {
			page.GranulePos = ^uint64(0)
		}
		if _, err := ow.w.Write(page.Encode()); err != nil {
			return err
		}
		ow.pageSeq++
		segs = segs[n:]
		packet = packet[size:]
	}
	return nil
}

// WritePacket writes one packet carrying samples input samples per
// channel.
func (ow *Writer) WritePacket(packet []byte, samples int) error {
	if ow.closed {
		return ErrUnexpectedEOS
	}
	ow.granulePos += uint64(samples)
	return ow.writePacket(packet, 0, ow.granulePos)
}

// Close writes an empty end-of-stream page.
func (ow *Writer) Close() error {
	if ow.closed {
		return nil
	}
	ow.closed = true
	return ow.writePacket(nil, PageFlagEOS, ow.granulePos)
}

// Head returns the identification header written.
func (ow *Writer) Head() Head { return ow.head }

// Serial returns the bitstream serial number.
func (ow *Writer) Serial() uint32 { return ow.serial }

// GranulePos returns the samples per channel written so far.
func (ow *Writer) GranulePos() uint64 { return ow.granulePos }

// PageCount returns the number of pages written.
func (ow *Writer) PageCount() uint32 { return ow.pageSeq }
