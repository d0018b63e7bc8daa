package device

import (
	"errors"
	"fmt"
)

var (
	ErrPortUnavailable     = errors.New("port unavailable")
	ErrMalformedRecord     = errors.New("malformed record")
	ErrIO                  = errors.New("i/o error")
	ErrReadTimeout         = errors.New("read timeout")
	ErrUnsupportedBaudRate = errors.New("unsupported baud rate")
	ErrAlreadyConnected    = errors.New("already connected")
)

// RecordError describes a line that could not be parsed into two values.
type RecordError struct {
	Line   string
	Reason string
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("malformed record %q: %s", e.Line, e.Reason)
}

func (e *RecordError) Unwrap() error { return ErrMalformedRecord }
