package ogg

import "errors"

// Package-level errors for Ogg parsing and encoding.
var (
	// ErrInvalidPage indicates a malformed page: missing "OggS" magic,
	// unknown version or truncated data.
	ErrInvalidPage = errors.New("ogg: invalid page structure")

	// ErrInvalidHeader indicates a malformed LC3Head or LC3Tags header.
	ErrInvalidHeader = errors.New("ogg: invalid LC3 header")

	// ErrBadCRC indicates a page whose checksum does not match its content.
	ErrBadCRC = errors.New("ogg: CRC mismatch")

	// ErrUnexpectedEOS indicates a write after Close.
	ErrUnexpectedEOS = errors.New("ogg: unexpected end of stream")
)
