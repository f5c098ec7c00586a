// errors.go defines the public error taxonomy of the lc3 package.

package lc3

import (
	"errors"
	"fmt"

	"github.com/thesyncim/lc3/internal/bitstream"
	"github.com/thesyncim/lc3/internal/encoder"
	"github.com/thesyncim/lc3/internal/frame"
)

// Public error types for encoding and decoding operations. Returned errors
// wrap one of these with context; test with errors.Is.
var (
	// ErrInvalidArgument indicates an unsupported frame duration, sample
	// rate, byte budget, bit depth, channel count or sample count.
	ErrInvalidArgument = errors.New("lc3: invalid argument")

	// ErrCorruptBitstream indicates a frame whose fields violate the
	// bitstream structure. The decoder conceals the frame.
	ErrCorruptBitstream = errors.New("lc3: corrupt bitstream")

	// ErrTruncatedInput indicates a frame that ends before its fields do.
	// The decoder conceals the frame.
	ErrTruncatedInput = errors.New("lc3: truncated input")
)

// publicError maps an internal error onto the public taxonomy.
func publicError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrInvalidArgument),
		errors.Is(err, ErrCorruptBitstream),
		errors.Is(err, ErrTruncatedInput):
		return err
	case errors.Is(err, bitstream.ErrTruncated):
		return fmt.Errorf("%w: %v", ErrTruncatedInput, err)
	case errors.Is(err, bitstream.ErrCorrupt):
		return fmt.Errorf("%w: %v", ErrCorruptBitstream, err)
	case errors.Is(err, frame.ErrUnsupported),
		errors.Is(err, encoder.ErrSideInfo),
		errors.Is(err, bitstream.ErrOverflow):
		return fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	return err
}

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidArgument}, args...)...)
}

func isInvalid(err error) bool {
	return errors.Is(err, ErrInvalidArgument)
}
