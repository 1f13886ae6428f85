package wire

import (
	"errors"
	"fmt"
)

// ErrTruncated is returned when a wire buffer ends before the value it
// announces is complete.
var ErrTruncated = errors.New("truncated wire value")

// UnrecognizedWireShapeError is returned when a decoded tag matches no
// supported value kind. The raw tag is kept for diagnostics; decoding
// never substitutes a default value.
type UnrecognizedWireShapeError struct {
	Tag uint8
}

func (e *UnrecognizedWireShapeError) Error() string {
	return fmt.Sprintf("unrecognized wire shape: tag 0x%02x", e.Tag)
}

// IsUnrecognizedShape reports whether err is (or wraps) an
// UnrecognizedWireShapeError.
func IsUnrecognizedShape(err error) bool {
	var e *UnrecognizedWireShapeError
	return errors.As(err, &e)
}
