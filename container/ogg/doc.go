// Package ogg stores lc3 frames in an Ogg container (RFC 3533).
//
// An Ogg page is the atomic unit of the stream:
//
//	Bytes 0-3:   "OggS" capture pattern
//	Byte 4:      Stream structure version (always 0)
//	Byte 5:      Header type flags (continuation, BOS, EOS)
//	Bytes 6-13:  Granule position
//	Bytes 14-17: Bitstream serial number
//	Bytes 18-21: Page sequence number
//	Bytes 22-25: CRC checksum
//	Byte 26:     Number of segments
//	Bytes 27+:   Segment table, then the payload
//
// Packets are split into segments of up to 255 bytes; a segment shorter
// than 255 ends a packet. A packet longer than a page continues on the next
// page, which carries the continuation flag.
//
// The first page holds the identification header, the second the comment
// header:
//
//	LC3Head (20 bytes, little-endian):
//	  Bytes 0-6:   "LC3Head"
//	  Byte 7:      Version (1)
//	  Byte 8:      Channel count
//	  Byte 9:      Flags (bit 0: high resolution)
//	  Bytes 10-11: Frame duration in microseconds
//	  Bytes 12-15: Sample rate in Hz
//	  Bytes 16-17: Frame size in bytes per channel
//	  Bytes 18-19: Pre-skip: decoded samples to drop at the start
//
//	LC3Tags:
//	  Bytes 0-6:   "LC3Tags"
//	  Next 4:      Vendor string length, then the vendor string
//	  Next 4:      Comment count, then per comment its length and
//	               "FIELD=value" bytes
//
// Every audio packet holds one frame per channel, concatenated in channel
// order. The granule position of a page is the number of input samples per
// channel carried by the packets completed on it and before it.
package ogg
