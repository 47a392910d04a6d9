package host

import (
	"context"

	"github.com/reglet-dev/wapc-host/domain/ports"
	"go.uber.org/zap"
)

// WASI errno values returned by fd_write.
const (
	errnoSuccess = 0
	errnoBadf    = 8
	errnoFault   = 21
	errnoIO      = 29
)

const (
	fdStdout = 1
	iovecLen = 8
)

// fdWrite implements wasi_snapshot_preview1.fd_write for stdout only.
// Every iovec is written to the engine's stdout writer and the total byte count
// is stored at written_ptr.
func (e *Engine) fdWrite(_ context.Context, mem ports.Memory, params []uint64) []uint64 {
	fd, iovs, iovsLen, writtenPtr := u32(params[0]), u32(params[1]), u32(params[2]), u32(params[3])
	if fd != fdStdout {
		return []uint64{errnoBadf}
	}

	var written uint32
	for i := uint32(0); i < iovsLen; i++ {
		base := iovs + i*iovecLen
		ptr, ok := readUint32LE(mem, base)
		if !ok {
			return []uint64{errnoFault}
		}
		length, ok := readUint32LE(mem, base+4)
		if !ok {
			return []uint64{errnoFault}
		}
		buf, ok := mem.Read(ptr, length)
		if !ok {
			return []uint64{errnoFault}
		}
		if _, err := e.stdout.Write(buf); err != nil {
			e.logger.Warn("guest stdout write failed", zap.Error(err))
			return []uint64{errnoIO}
		}
		written += length
	}

	if !writeUint32LE(mem, writtenPtr, written) {
		return []uint64{errnoFault}
	}
	return []uint64{errnoSuccess}
}
