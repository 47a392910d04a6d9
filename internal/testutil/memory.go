package testutil

// ByteMemory is a linear memory backed by a plain byte slice, for exercising
// import functions without a runtime.
type ByteMemory []byte

// NewByteMemory creates a zeroed memory of size bytes.
func NewByteMemory(size int) ByteMemory {
	return make(ByteMemory, size)
}

// Read implements ports.Memory.
func (m ByteMemory) Read(offset, length uint32) ([]byte, bool) {
	if uint64(offset)+uint64(length) > uint64(len(m)) {
		return nil, false
	}
	return m[offset : offset+length], true
}

// Write implements ports.Memory.
func (m ByteMemory) Write(offset uint32, data []byte) bool {
	if uint64(offset)+uint64(len(data)) > uint64(len(m)) {
		return false
	}
	copy(m[offset:], data)
	return true
}

// Size implements ports.Memory.
func (m ByteMemory) Size() uint32 {
	return uint32(len(m)) //nolint:gosec // test memories are small
}
