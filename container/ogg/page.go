package ogg

import "encoding/binary"

// Page header flags.
const (
	// PageFlagContinuation marks a page whose first segment continues a
	// packet from the previous page.
	PageFlagContinuation = 0x01
	// PageFlagBOS marks the first page of a logical bitstream.
	PageFlagBOS = 0x02
	// PageFlagEOS marks the last page of a logical bitstream.
	PageFlagEOS = 0x04
)

const (
	pageHeaderSize = 27
	oggMagic       = "OggS"

	// maxSegments is the segment table capacity of one page.
	maxSegments = 255
)

// crcTable drives the Ogg CRC-32: polynomial 0x04C11DB7, unreflected, zero
// initial value. hash/crc32 only implements the reflected form.
var crcTable = func() (t [256]uint32) {
	const poly = 0x04C11DB7
	for i := range t {
		c := uint32(i) << 24
		for range 8 {
			if c&0x80000000 != 0 {
				c = c<<1 ^ poly
			} else {
				c <<= 1
			}
		}
		t[i] = c
	}
	return t
}()

func crc(data []byte) uint32 {
	var c uint32
	for _, b := range data {
		c = c<<8 ^ crcTable[byte(c>>24)^b]
	}
	return c
}

// Page is a single Ogg page.
type Page struct {
	HeaderType   byte
	GranulePos   uint64
	SerialNumber uint32
	PageSequence uint32

	// Segments is the lacing table, one entry of 0-255 per segment.
	Segments []byte
	Payload  []byte
}

// IsBOS reports whether p begins a stream.
func (p *Page) IsBOS() bool { return p.HeaderType&PageFlagBOS != 0 }

// IsEOS reports whether p ends a stream.
func (p *Page) IsEOS() bool { return p.HeaderType&PageFlagEOS != 0 }

// IsContinuation reports whether p starts inside a packet.
func (p *Page) IsContinuation() bool { return p.HeaderType&PageFlagContinuation != 0 }

// Complete reports whether the last packet on p ends on it.
func (p *Page) Complete() bool {
	return len(p.Segments) == 0 || p.Segments[len(p.Segments)-1] < 255
}

// BuildSegmentTable returns the lacing values of an n-byte packet. A packet
// whose length is a multiple of 255 ends with a zero-length segment.
func BuildSegmentTable(n int) []byte {
	segs := make([]byte, n/255+1)
	for i := range segs[:len(segs)-1] {
		segs[i] = 255
	}
	segs[len(segs)-1] = byte(n % 255)
	return segs
}

// ParseSegmentTable returns the lengths of the packets ending in segments.
// Bytes of a packet left open by a final 255 are not included.
func ParseSegmentTable(segments []byte) []int {
	var lengths []int
	n := 0
	for _, s := range segments {
		n += int(s)
		if s < 255 {
			lengths = append(lengths, n)
			n = 0
		}
	}
	return lengths
}

// Encode serializes the page with its checksum.
func (p *Page) Encode() []byte {
	hdr := pageHeaderSize + len(p.Segments)
	data := make([]byte, hdr+len(p.Payload))
	copy(data, oggMagic)
	data[5] = p.HeaderType
	binary.LittleEndian.PutUint64(data[6:], p.GranulePos)
	binary.LittleEndian.PutUint32(data[14:], p.SerialNumber)
	binary.LittleEndian.PutUint32(data[18:], p.PageSequence)
	data[26] = byte(len(p.Segments))
	copy(data[pageHeaderSize:], p.Segments)
	copy(data[hdr:], p.Payload)
	binary.LittleEndian.PutUint32(data[22:], crc(data))
	return data
}

// ParsePage parses the page at the start of data and returns it with the
// number of bytes it occupies.
func ParsePage(data []byte) (*Page, int, error) {
	if len(data) < pageHeaderSize || string(data[:4]) != oggMagic || data[4] != 0 {
		return nil, 0, ErrInvalidPage
	}
	hdr := pageHeaderSize + int(data[26])
	if len(data) < hdr {
		return nil, 0, ErrInvalidPage
	}
	size := hdr
	for _, s := range data[pageHeaderSize:hdr] {
		size += int(s)
	}
	if len(data) < size {
		return nil, 0, ErrInvalidPage
	}

	stored := binary.LittleEndian.Uint32(data[22:])
	c := crc(data[:22])
	for range 4 {
		c = c<<8 ^ crcTable[byte(c>>24)]
	}
	for _, b := range data[26:size] {
		c = c<<8 ^ crcTable[byte(c>>24)^b]
	}
	if c != stored {
		return nil, 0, ErrBadCRC
	}

	p := &Page{
		HeaderType:   data[5],
		GranulePos:   binary.LittleEndian.Uint64(data[6:]),
		SerialNumber: binary.LittleEndian.Uint32(data[14:]),
		PageSequence: binary.LittleEndian.Uint32(data[18:]),
		Segments:     append([]byte(nil), data[pageHeaderSize:hdr]...),
		Payload:      append([]byte(nil), data[hdr:size]...),
	}
	return p, size, nil
}
