package ogg

import (
	"encoding/binary"
	"strings"
)

const (
	headMagic   = "LC3Head"
	tagsMagic   = "LC3Tags"
	headSize    = 20
	headVersion = 1

	flagHighResolution = 0x01
)

// Head is the identification header of an lc3 stream.
type Head struct {
	Version         uint8
	Channels        uint8
	HighResolution  bool
	FrameDurationUS uint16
	SampleRate      uint32
	// FrameBytes is the frame size per channel; every packet holds
	// Channels*FrameBytes bytes.
	FrameBytes uint16
	// PreSkip is the number of decoded samples per channel to drop at the
	// start, normally the codec delay.
	PreSkip uint16
}

// Encode serializes the header.
func (h *Head) Encode() []byte {
	data := make([]byte, headSize)
	copy(data, headMagic)
	data[7] = h.Version
	data[8] = h.Channels
	if h.HighResolution {
		data[9] |= flagHighResolution
	}
	binary.LittleEndian.PutUint16(data[10:], h.FrameDurationUS)
	binary.LittleEndian.PutUint32(data[12:], h.SampleRate)
	binary.LittleEndian.PutUint16(data[16:], h.FrameBytes)
	binary.LittleEndian.PutUint16(data[18:], h.PreSkip)
	return data
}

// Validate checks the fields a stream cannot be decoded without.
func (h *Head) Validate() error {
	if h.Version != headVersion || h.Channels == 0 || h.FrameDurationUS == 0 ||
		h.SampleRate == 0 || h.FrameBytes == 0 {
		return ErrInvalidHeader
	}
	return nil
}

// ParseHead parses an identification header.
func ParseHead(data []byte) (*Head, error) {
	if len(data) < headSize || string(data[:7]) != headMagic {
		return nil, ErrInvalidHeader
	}
	h := &Head{
		Version:         data[7],
		Channels:        data[8],
		HighResolution:  data[9]&flagHighResolution != 0,
		FrameDurationUS: binary.LittleEndian.Uint16(data[10:]),
		SampleRate:      binary.LittleEndian.Uint32(data[12:]),
		FrameBytes:      binary.LittleEndian.Uint16(data[16:]),
		PreSkip:         binary.LittleEndian.Uint16(data[18:]),
	}
	if err := h.Validate(); err != nil {
		return nil, err
	}
	return h, nil
}

// Tags is the comment header of an lc3 stream.
type Tags struct {
	Vendor   string
	Comments map[string]string
}

// DefaultTags returns tags carrying the package vendor string.
func DefaultTags() *Tags {
	return &Tags{Vendor: "lc3-go", Comments: map[string]string{}}
}

// Encode serializes the tags. Comments are written in no particular order.
func (t *Tags) Encode() []byte {
	data := []byte(tagsMagic)
	data = binary.LittleEndian.AppendUint32(data, uint32(len(t.Vendor)))
	data = append(data, t.Vendor...)
	data = binary.LittleEndian.AppendUint32(data, uint32(len(t.Comments)))
	for k, v := range t.Comments {
		data = binary.LittleEndian.AppendUint32(data, uint32(len(k)+1+len(v)))
		data = append(data, k...)
		data = append(data, '=')
		data = append(data, v...)
	}
	return data
}

// ParseTags parses a comment header. Comments without '=' are skipped.
func ParseTags(data []byte) (*Tags, error) {
	if len(data) < len(tagsMagic) || string(data[:len(tagsMagic)]) != tagsMagic {
		return nil, ErrInvalidHeader
	}
	off := len(tagsMagic)
	next := func() (string, bool) {
		if off+4 > len(data) {
			return "", false
		}
		n := int(binary.LittleEndian.Uint32(data[off:]))
		off += 4
		if n < 0 || n > len(data)-off {
			return "", false
		}
		s := string(data[off : off+n])
		off += n
		return s, true
	}

	vendor, ok := next()
	if !ok || off+4 > len(data) {
		return nil, ErrInvalidHeader
	}
	t := &Tags{Vendor: vendor, Comments: map[string]string{}}
	count := binary.LittleEndian.Uint32(data[off:])
	off += 4
	for range count {
		c, ok := next()
		if !ok {
			return nil, ErrInvalidHeader
		}
		if k, v, found := strings.Cut(c, "="); found {
			t.Comments[k] = v
		}
	}
	return t, nil
}
