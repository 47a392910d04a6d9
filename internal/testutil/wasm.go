package testutil

import "bytes"

// Value types.
const (
	I32 byte = 0x7f
	I64 byte = 0x7e
)

// Section ids.
const (
	sectionType     = 1
	sectionImport   = 2
	sectionFunction = 3
	sectionMemory   = 5
	sectionExport   = 7
	sectionCode     = 10
	sectionData     = 11
)

const (
	exportKindFunc   = 0x00
	exportKindMemory = 0x02
)

// FuncType is a function signature made of value type bytes.
type FuncType struct {
	Params  []byte
	Results []byte
}

// Sig builds a FuncType with the given number of i32 params and results.
func Sig(params, results int) FuncType {
	return FuncType{
		Params:  bytes.Repeat([]byte{I32}, params),
		Results: bytes.Repeat([]byte{I32}, results),
	}
}

type importEntry struct {
	module string
	name   string
	typ    uint32
}

type funcEntry struct {
	typ    uint32
	locals []byte
	body   []byte
}

type exportEntry struct {
	name  string
	kind  byte
	index uint32
}

type dataEntry struct {
	offset uint32
	bytes  []byte
}

// Module assembles a WebAssembly binary module.
// All imports must be added before the first function.
type Module struct {
	types     []FuncType
	imports   []importEntry
	funcs     []funcEntry
	exports   []exportEntry
	data      []dataEntry
	memPages  uint32
	hasMemory bool
}

// NewModule creates an empty module.
func NewModule() *Module {
	return &Module{}
}

// Memory declares the module's linear memory with the given minimum page count,
// exported under name when name is not empty.
func (m *Module) Memory(pages uint32, name string) *Module {
	m.hasMemory = true
	m.memPages = pages
	if name != "" {
		m.exports = append(m.exports, exportEntry{name: name, kind: exportKindMemory})
	}
	return m
}

// ImportFunc declares an imported function and returns its function index.
func (m *Module) ImportFunc(module, name string, ft FuncType) uint32 {
	if len(m.funcs) > 0 {
		panic("testutil: imports must be declared before functions")
	}
	m.imports = append(m.imports, importEntry{module: module, name: name, typ: m.typeIndex(ft)})
	return uint32(len(m.imports) - 1) //nolint:gosec // test modules are tiny
}

// Func defines a function and returns its index. locals lists the type of each
// local beyond the params; body is the instruction sequence without the final end.
func (m *Module) Func(ft FuncType, locals []byte, body ...[]byte) uint32 {
	m.funcs = append(m.funcs, funcEntry{typ: m.typeIndex(ft), locals: locals, body: Code(body...)})
	return uint32(len(m.imports) + len(m.funcs) - 1) //nolint:gosec // test modules are tiny
}

// Export exports the function at index under name.
func (m *Module) Export(name string, index uint32) *Module {
	m.exports = append(m.exports, exportEntry{name: name, kind: exportKindFunc, index: index})
	return m
}

// Data adds an active data segment at offset in memory 0.
func (m *Module) Data(offset uint32, b []byte) *Module {
	m.data = append(m.data, dataEntry{offset: offset, bytes: b})
	return m
}

// Bytes encodes the module in the binary format.
func (m *Module) Bytes() []byte {
	out := []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}

	if len(m.types) > 0 {
		sec := appendULEB(nil, uint64(len(m.types)))
		for _, t := range m.types {
			sec = append(sec, 0x60)
			sec = appendVec(sec, t.Params)
			sec = appendVec(sec, t.Results)
		}
		out = appendSection(out, sectionType, sec)
	}

	if len(m.imports) > 0 {
		sec := appendULEB(nil, uint64(len(m.imports)))
		for _, imp := range m.imports {
			sec = appendName(sec, imp.module)
			sec = appendName(sec, imp.name)
			sec = append(sec, 0x00)
			sec = appendULEB(sec, uint64(imp.typ))
		}
		out = appendSection(out, sectionImport, sec)
	}

	if len(m.funcs) > 0 {
		sec := appendULEB(nil, uint64(len(m.funcs)))
		for _, f := range m.funcs {
			sec = appendULEB(sec, uint64(f.typ))
		}
		out = appendSection(out, sectionFunction, sec)
	}

	if m.hasMemory {
		sec := appendULEB(nil, 1)
		sec = append(sec, 0x00)
		sec = appendULEB(sec, uint64(m.memPages))
		out = appendSection(out, sectionMemory, sec)
	}

	if len(m.exports) > 0 {
		sec := appendULEB(nil, uint64(len(m.exports)))
		for _, e := range m.exports {
			sec = appendName(sec, e.name)
			sec = append(sec, e.kind)
			sec = appendULEB(sec, uint64(e.index))
		}
		out = appendSection(out, sectionExport, sec)
	}

	if len(m.funcs) > 0 {
		sec := appendULEB(nil, uint64(len(m.funcs)))
		for _, f := range m.funcs {
			body := appendULEB(nil, uint64(len(f.locals)))
			for _, l := range f.locals {
				body = append(body, 0x01, l)
			}
			body = append(body, f.body...)
			body = append(body, 0x0b)
			sec = appendULEB(sec, uint64(len(body)))
			sec = append(sec, body...)
		}
		out = appendSection(out, sectionCode, sec)
	}

	if len(m.data) > 0 {
		sec := appendULEB(nil, uint64(len(m.data)))
		for _, d := range m.data {
			sec = append(sec, 0x00, 0x41)
			sec = appendSLEB(sec, int64(int32(d.offset))) //nolint:gosec // offsets fit in i32
			sec = append(sec, 0x0b)
			sec = appendVec(sec, d.bytes)
		}
		out = appendSection(out, sectionData, sec)
	}

	return out
}

func (m *Module) typeIndex(ft FuncType) uint32 {
	for i, t := range m.types {
		if bytes.Equal(t.Params, ft.Params) && bytes.Equal(t.Results, ft.Results) {
			return uint32(i) //nolint:gosec // test modules are tiny
		}
	}
	m.types = append(m.types, ft)
	return uint32(len(m.types) - 1) //nolint:gosec // test modules are tiny
}

func appendSection(out []byte, id byte, contents []byte) []byte {
	out = append(out, id)
	out = appendULEB(out, uint64(len(contents)))
	return append(out, contents...)
}

func appendVec(out []byte, b []byte) []byte {
	out = appendULEB(out, uint64(len(b)))
	return append(out, b...)
}

func appendName(out []byte, s string) []byte {
	return appendVec(out, []byte(s))
}

func appendULEB(out []byte, v uint64) []byte {
	for {
		c := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			c |= 0x80
		}
		out = append(out, c)
		if v == 0 {
			return out
		}
	}
}

func appendSLEB(out []byte, v int64) []byte {
	for {
		c := byte(v & 0x7f)
		v >>= 7
		if (v == 0 && c&0x40 == 0) || (v == -1 && c&0x40 != 0) {
			return append(out, c)
		}
		out = append(out, c|0x80)
	}
}
