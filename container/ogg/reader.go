package ogg

import (
	"bufio"
	"errors"
	"io"
)

// Reader reads lc3 packets from an Ogg stream. Pages of other logical
// streams are skipped.
type Reader struct {
	r    *bufio.Reader
	Head *Head
	Tags *Tags

	serial     uint32
	granulePos uint64
	eos        bool
	partial    []byte
	queue      [][]byte
	buf        []byte
}

// NewReader reads the identification and comment headers.
func NewReader(r io.Reader) (*Reader, error) {
	or := &Reader{r: bufio.NewReader(r)}

	page, err := or.readPage()
	if err != nil {
		return nil, err
	}
	if !page.IsBOS() {
		return nil, ErrInvalidPage
	}
	or.serial = page.SerialNumber
	or.collect(page)
	if len(or.queue) == 0 {
		return nil, ErrInvalidHeader
	}
	if or.Head, err = ParseHead(or.pop()); err != nil {
		return nil, err
	}

	tags, err := or.NextPacket()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrInvalidHeader
		}
		return nil, err
	}
	if or.Tags, err = ParseTags(tags); err != nil {
		return nil, err
	}
	return or, nil
}

// NextPacket returns the next audio packet, or io.EOF after the last one.
func (or *Reader) NextPacket() ([]byte, error) {
	for len(or.queue) == 0 {
		if or.eos {
			return nil, io.EOF
		}
		page, err := or.readPage()
		if errors.Is(err, io.EOF) {
			or.eos = true
			return nil, io.EOF
		}
		if err != nil {
			return nil, err
		}
		if page.SerialNumber != or.serial {
			continue
		}
		if page.IsEOS() {
			or.eos = true
		}
		if page.GranulePos != ^uint64(0) {
			or.granulePos = page.GranulePos
		}
		or.collect(page)
	}
	return or.pop(), nil
}

// collect queues the packets completed on page. A continuation page
// without a packet in progress, or a fresh page with one, drops the
// incomplete packet.
func (or *Reader) collect(page *Page) {
	if !page.IsContinuation() {
		or.partial = nil
	}
	off := 0
	skip := page.IsContinuation() && or.partial == nil
	for _, s := range page.Segments {
		or.partial = append(or.partial, page.Payload[off:off+int(s)]...)
		off += int(s)
		if s < 255 {
			if !skip && !(page.IsEOS() && len(or.partial) == 0) {
				or.queue = append(or.queue, or.partial)
			}
			or.partial = nil
			skip = false
		}
	}
}

func (or *Reader) pop() []byte {
	p := or.queue[0]
	or.queue = or.queue[1:]
	return p
}

// readPage reads and verifies one page.
func (or *Reader) readPage() (*Page, error) {
	hdr, err := or.r.Peek(pageHeaderSize)
	if err != nil {
		if errors.Is(err, io.EOF) && len(hdr) == 0 {
			return nil, io.EOF
		}
		return nil, ErrInvalidPage
	}
	nseg := int(hdr[26])
	segs, err := or.r.Peek(pageHeaderSize + nseg)
	if err != nil {
		return nil, ErrInvalidPage
	}
	size := pageHeaderSize + nseg
	for _, s := range segs[pageHeaderSize:] {
		size += int(s)
	}
	if cap(or.buf) < size {
		or.buf = make([]byte, size)
	}
	or.buf = or.buf[:size]
	if _, err := io.ReadFull(or.r, or.buf); err != nil {
		return nil, ErrInvalidPage
	}
	page, _, err := ParsePage(or.buf)
	return page, err
}

// GranulePos returns the granule position of the last page read.
func (or *Reader) GranulePos() uint64 { return or.granulePos }

// EOF reports whether the end of the stream was reached.
func (or *Reader) EOF() bool { return or.eos }

// Serial returns the stream serial number.
func (or *Reader) Serial() uint32 { return or.serial }
