package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppendULEB(t *testing.T) {
	tests := []struct {
		in   uint64
		want []byte
	}{
		{0, []byte{0x00}},
		{127, []byte{0x7f}},
		{128, []byte{0x80, 0x01}},
		{624485, []byte{0xe5, 0x8e, 0x26}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, appendULEB(nil, tt.in), "uleb(%d)", tt.in)
	}
}

func TestAppendSLEB(t *testing.T) {
	tests := []struct {
		in   int64
		want []byte
	}{
		{0, []byte{0x00}},
		{63, []byte{0x3f}},
		{64, []byte{0xc0, 0x00}},
		{-1, []byte{0x7f}},
		{-64, []byte{0x40}},
		{-65, []byte{0xbf, 0x7f}},
		{-123456, []byte{0xc0, 0xbb, 0x78}},
		{4103, []byte{0x87, 0x20}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, appendSLEB(nil, tt.in), "sleb(%d)", tt.in)
	}
}

func TestModule_Empty(t *testing.T) {
	assert.Equal(t, []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}, NewModule().Bytes())
}

func TestModule_SingleFunction(t *testing.T) {
	m := NewModule()
	add := m.Func(Sig(2, 1), nil, LocalGet(0), LocalGet(1), I32Add())
	m.Export("add", add)

	want := []byte{
		0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00,
		0x01, 0x07, 0x01, 0x60, 0x02, 0x7f, 0x7f, 0x01, 0x7f, // type
		0x03, 0x02, 0x01, 0x00, // function
		0x07, 0x07, 0x01, 0x03, 'a', 'd', 'd', 0x00, 0x00, // export
		0x0a, 0x09, 0x01, 0x07, 0x00, 0x20, 0x00, 0x20, 0x01, 0x6a, 0x0b, // code
	}
	assert.Equal(t, want, m.Bytes())
}

func TestModule_TypesAreShared(t *testing.T) {
	m := NewModule()
	m.ImportFunc("wapc", "__guest_response", Sig(2, 0))
	m.ImportFunc("wapc", "__guest_error", Sig(2, 0))
	m.ImportFunc("wapc", "__host_response_len", Sig(0, 1))

	assert.Len(t, m.types, 2)
}

func TestModule_ImportIndexes(t *testing.T) {
	m := NewModule()
	assert.Equal(t, uint32(0), m.ImportFunc("a", "x", Sig(0, 0)))
	assert.Equal(t, uint32(1), m.ImportFunc("a", "y", Sig(0, 0)))
	assert.Equal(t, uint32(2), m.Func(Sig(0, 0), nil))

	assert.Panics(t, func() { m.ImportFunc("a", "z", Sig(0, 0)) })
}

func TestWapcGuest_Encodes(t *testing.T) {
	for _, opts := range []GuestOptions{
		{},
		FullGuest(),
		{ConsoleLog: true, HostCalls: true, WASI: true, Start: "log", Init: true},
		{NoWapcImports: true},
		{BadConsoleSig: true},
	} {
		bin := WapcGuest(opts)
		assert.Equal(t, []byte{0x00, 0x61, 0x73, 0x6d}, bin[:4])
	}
}

func TestByteMemory(t *testing.T) {
	mem := NewByteMemory(8)

	assert.Equal(t, uint32(8), mem.Size())
	assert.True(t, mem.Write(4, []byte{1, 2, 3, 4}))
	assert.False(t, mem.Write(5, []byte{1, 2, 3, 4}))

	b, ok := mem.Read(4, 4)
	assert.True(t, ok)
	assert.Equal(t, []byte{1, 2, 3, 4}, b)

	_, ok = mem.Read(0xFFFFFFFF, 2)
	assert.False(t, ok)
	_, ok = mem.Read(8, 0)
	assert.True(t, ok)
}
