package testutil

// Code concatenates instruction sequences.
func Code(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func op(b ...byte) []byte { return b }

func Unreachable() []byte { return op(0x00) }
func Block() []byte       { return op(0x02, 0x40) }
func Loop() []byte        { return op(0x03, 0x40) }
func If() []byte          { return op(0x04, 0x40) }
func Else() []byte        { return op(0x05) }
func End() []byte         { return op(0x0b) }
func Return() []byte      { return op(0x0f) }
func Drop() []byte        { return op(0x1a) }
func I32Eqz() []byte      { return op(0x45) }
func I32Eq() []byte       { return op(0x46) }
func I32Ne() []byte       { return op(0x47) }
func I32GeU() []byte      { return op(0x4f) }
func I32Add() []byte      { return op(0x6a) }
func I32Sub() []byte      { return op(0x6b) }

func Br(depth uint32) []byte       { return appendULEB(op(0x0c), uint64(depth)) }
func BrIf(depth uint32) []byte     { return appendULEB(op(0x0d), uint64(depth)) }
func Call(index uint32) []byte     { return appendULEB(op(0x10), uint64(index)) }
func LocalGet(index uint32) []byte { return appendULEB(op(0x20), uint64(index)) }
func LocalSet(index uint32) []byte { return appendULEB(op(0x21), uint64(index)) }
func LocalTee(index uint32) []byte { return appendULEB(op(0x22), uint64(index)) }
func I32Const(v int32) []byte      { return appendSLEB(op(0x41), int64(v)) }

// I32Load loads a 4-byte aligned i32 from the address on the stack plus offset.
func I32Load(offset uint32) []byte { return appendULEB(op(0x28, 0x02), uint64(offset)) }

// I32Load8U loads one byte, zero extended.
func I32Load8U(offset uint32) []byte { return appendULEB(op(0x2d, 0x00), uint64(offset)) }

// I32Store stores an i32 at the address on the stack plus offset.
func I32Store(offset uint32) []byte { return appendULEB(op(0x36, 0x02), uint64(offset)) }
