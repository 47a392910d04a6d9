package hostfuncs

import (
	"errors"
	"fmt"
)

// DefaultMaxPayloadSize limits the size of host call payloads (1MB).
// This prevents guests from triggering OOM by claiming huge payload sizes.
const DefaultMaxPayloadSize = 1 * 1024 * 1024

// ErrNilHandler is returned when a nil handler is registered.
var ErrNilHandler = errors.New("handler cannot be nil")

// ValidationError reports a payload a handler could not decode.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	return "invalid payload: " + e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// PanicError is returned in place of a handler that panicked.
type PanicError struct {
	Value any
}

// NewPanicError creates a PanicError for a recovered value.
func NewPanicError(v any) *PanicError {
	return &PanicError{Value: v}
}

func (e *PanicError) Error() string {
	switch v := e.Value.(type) {
	case error:
		return "panic: " + v.Error()
	case string:
		return "panic: " + v
	default:
		return fmt.Sprintf("panic: %v", v)
	}
}

func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// PayloadTooLargeError reports a payload over a configured limit.
type PayloadTooLargeError struct {
	Size  int
	Limit int
}

func (e *PayloadTooLargeError) Error() string {
	return fmt.Sprintf("payload of %d bytes exceeds limit of %d bytes", e.Size, e.Limit)
}
