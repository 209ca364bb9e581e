package mptree

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupported reports an extension-family marker. Extension types are
	// not modeled; failing loudly beats mis-decoding them.
	ErrUnsupported = errors.New("mptree: unsupported extension marker")

	// ErrReserved reports the reserved marker 0xC1, which no conforming
	// encoder emits. Hitting it means garbage input, not a decodable value.
	ErrReserved = errors.New("mptree: reserved marker")

	// ErrInvalidUTF8 reports a string payload that is not valid UTF-8.
	ErrInvalidUTF8 = errors.New("mptree: invalid UTF-8 in string payload")

	// ErrDepth reports input nested deeper than the decoder's MaxDepth.
	ErrDepth = errors.New("mptree: max nesting depth exceeded")
)

// DecodeError wraps a decode failure with the offset of the value being read
// and its marker byte. Truncation failures wrap io.ErrUnexpectedEOF.
type DecodeError struct {
	Offset int
	Marker byte
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("mptree: decode at offset %d (marker 0x%02X): %v", e.Offset, e.Marker, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// wrapDecode attaches position context once; errors bubbling up from child
// values keep their original, more precise context.
func wrapDecode(off int, marker byte, err error) error {
	var de *DecodeError
	if errors.As(err, &de) {
		return err
	}
	return &DecodeError{Offset: off, Marker: marker, Err: err}
}
