package acquire

import (
	"errors"
	"fmt"
)

// ErrNoData is returned when the configured wait bound expires before the
// device sends its first byte.
var ErrNoData = errors.New("no data received from device")

// TransportError wraps a failure of the underlying serial channel. It is
// not recoverable within the acquisition cycle.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("serial transport: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// EncodingError reports a byte outside 7-bit ASCII in the received buffer.
// The transmission is considered corrupt; no partial result is produced.
type EncodingError struct {
	Offset int
	Byte   byte
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("non-ASCII byte 0x%02x at offset %d", e.Byte, e.Offset)
}
