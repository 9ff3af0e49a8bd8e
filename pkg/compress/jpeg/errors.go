package jpeg

import (
	"errors"
	"fmt"
)

// Decode errors. Every one of them is fatal to the decode that hit it.
var (
	ErrUnexpectedEndOfInput      = errors.New("unexpected end of input")
	ErrMisalignedRead            = errors.New("byte read while a bit sequence is pending")
	ErrUnexpectedMarker          = errors.New("unexpected marker")
	ErrInvalidQuantTableSize     = errors.New("invalid quantization table size")
	ErrInvalidTableID            = errors.New("invalid table id")
	ErrUnsupportedComponentCount = errors.New("unsupported component count")
	ErrUnknownComponent          = errors.New("unknown component")
	ErrDuplicateComponent        = errors.New("duplicate component")
	ErrHuffmanTableTooLarge      = errors.New("huffman table too large")
	ErrCorruptHuffmanCode        = errors.New("corrupt huffman code")
	ErrOutOfRangeBitField        = errors.New("bit field out of range")
	ErrInvalidHuffmanTable       = errors.New("invalid huffman table")
	ErrMissingTable              = errors.New("missing table")
	ErrInvalidDimensions         = errors.New("invalid image dimensions")
	ErrInvalidSamplingFactor     = errors.New("invalid sampling factor")
	ErrUnsupportedPrecision      = errors.New("unsupported sample precision")
	ErrUnsupported               = errors.New("unsupported JPEG feature")
	ErrImageTooLarge             = errors.New("image too large")
	ErrInvalidSegmentLength      = errors.New("invalid segment length")
)

// UnexpectedMarkerError reports a marker that does not fit the parser state.
// Expected is zero when no single marker was required.
type UnexpectedMarkerError struct {
	Expected Marker
	Actual   Marker
}

func (e *UnexpectedMarkerError) Error() string {
	if e.Expected == 0 {
		return fmt.Sprintf("%v: got %v", ErrUnexpectedMarker, e.Actual)
	}
	return fmt.Sprintf("%v: expected %v, got %v", ErrUnexpectedMarker, e.Expected, e.Actual)
}

func (e *UnexpectedMarkerError) Unwrap() error {
	return ErrUnexpectedMarker
}

// assertBit enforces a field that may only hold 0 or 1.
func assertBit(v byte, field string) error {
	if v&^1 != 0 {
		return fmt.Errorf("%w: %s=%d", ErrOutOfRangeBitField, field, v)
	}
	return nil
}
