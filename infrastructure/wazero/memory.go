package wazero

import (
	"github.com/reglet-dev/wapc-host/domain/ports"
	"github.com/tetratelabs/wazero/api"
)

// memory adapts api.Memory to ports.Memory. Guests without a memory get a
// zero-sized one on which every access fails.
type memory struct {
	mem api.Memory
}

var _ ports.Memory = memory{}

func newMemory(mem api.Memory) memory {
	return memory{mem: mem}
}

func (m memory) Read(offset, length uint32) ([]byte, bool) {
	if m.mem == nil {
		return nil, length == 0
	}
	return m.mem.Read(offset, length)
}

func (m memory) Write(offset uint32, data []byte) bool {
	if m.mem == nil {
		return len(data) == 0
	}
	return m.mem.Write(offset, data)
}

func (m memory) Size() uint32 {
	if m.mem == nil {
		return 0
	}
	return m.mem.Size()
}
