package host

import (
	"encoding/binary"
	"fmt"
	"unicode/utf8"

	"github.com/reglet-dev/wapc-host/domain/errors"
	"github.com/reglet-dev/wapc-host/domain/ports"
	"go.uber.org/zap"
)

// readBytes copies length bytes at ptr out of guest memory. The copy outlives the
// next guest execution, which the memory view does not.
func (e *Engine) readBytes(mem ports.Memory, importName, what string, ptr, length uint32) ([]byte, bool) {
	view, ok := mem.Read(ptr, length)
	if !ok {
		e.fault(importName, what, ptr, length)
		return nil, false
	}
	out := make([]byte, len(view))
	copy(out, view)
	return out, true
}

// readString reads a UTF-8 string out of guest memory.
func (e *Engine) readString(mem ports.Memory, importName, what string, ptr, length uint32) (string, bool) {
	view, ok := mem.Read(ptr, length)
	if !ok {
		e.fault(importName, what, ptr, length)
		return "", false
	}
	if !utf8.Valid(view) {
		e.recordFault(&errors.MarshallingError{Import: importName, Detail: what + " is not valid UTF-8"})
		return "", false
	}
	return string(view), true
}

// writeBytes copies b into guest memory at ptr.
func (e *Engine) writeBytes(mem ports.Memory, importName, what string, ptr uint32, b []byte) bool {
	if !mem.Write(ptr, b) {
		e.fault(importName, what, ptr, uint32(len(b))) //nolint:gosec // G115: guest lengths are 32-bit
		return false
	}
	return true
}

func (e *Engine) fault(importName, what string, ptr, length uint32) {
	e.recordFault(&errors.MarshallingError{
		Import: importName,
		Detail: what + " out of bounds",
		Err:    &outOfBoundsError{ptr: ptr, length: length},
	})
}

func (e *Engine) recordFault(err *errors.MarshallingError) {
	e.logger.Warn("marshalling failed", zap.Error(err))
	e.state.recordFault(err)
}

type outOfBoundsError struct {
	ptr, length uint32
}

func (e *outOfBoundsError) Error() string {
	return fmt.Sprintf("range %d+%d exceeds guest memory", e.ptr, e.length)
}

func readUint32LE(mem ports.Memory, ptr uint32) (uint32, bool) {
	b, ok := mem.Read(ptr, 4)
	if !ok {
		return 0, false
	}
	return binary.LittleEndian.Uint32(b), true
}

func writeUint32LE(mem ports.Memory, ptr, v uint32) bool {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	return mem.Write(ptr, b[:])
}
