package ports

import (
	"context"
	"errors"
	"slices"
)

var (
	// ErrImportNotDeclared is returned by Module.RegisterImport when the guest does
	// not import the given function.
	ErrImportNotDeclared = errors.New("import not declared by guest")

	// ErrSignatureMismatch is returned by Module.RegisterImport when the guest imports
	// the function with a different signature.
	ErrSignatureMismatch = errors.New("import signature mismatch")

	// ErrExportNotFound is returned by Instance.CallExport for an unknown export.
	ErrExportNotFound = errors.New("export not found")
)

// ValueType is a WebAssembly value type, using its binary encoding.
type ValueType byte

const (
	ValueTypeI32 ValueType = 0x7f
	ValueTypeI64 ValueType = 0x7e
)

// Signature is a function type.
type Signature struct {
	Params  []ValueType
	Results []ValueType
}

// I32Signature returns a signature made only of i32 values.
func I32Signature(params, results int) Signature {
	sig := Signature{
		Params:  make([]ValueType, params),
		Results: make([]ValueType, results),
	}
	for i := range sig.Params {
		sig.Params[i] = ValueTypeI32
	}
	for i := range sig.Results {
		sig.Results[i] = ValueTypeI32
	}
	return sig
}

// Equal reports whether both signatures have identical params and results.
func (s Signature) Equal(other Signature) bool {
	return slices.Equal(s.Params, other.Params) && slices.Equal(s.Results, other.Results)
}

// ImportSpec describes a function the guest imports.
type ImportSpec struct {
	Namespace string
	Name      string
	Signature Signature
}

// Memory is a guest's linear memory.
// Read returns a view that is only valid until the next guest execution; callers
// that retain the bytes must copy them.
type Memory interface {
	Read(offset, length uint32) ([]byte, bool)
	Write(offset uint32, data []byte) bool
	Size() uint32
}

// ImportFunc implements a host-provided import. params holds the raw arguments and
// the returned slice holds the raw results, matching the registered Signature.
type ImportFunc func(ctx context.Context, mem Memory, params []uint64) []uint64

// Limits are the resource budgets applied when compiling a guest.
type Limits struct {
	// StackSize is the call stack budget in bytes.
	StackSize uint32

	// MemoryLimitPages caps linear memory growth (64 KiB pages). Zero means the runtime default.
	MemoryLimitPages uint32

	// CloseOnContextDone aborts guest execution when the call context is done.
	CloseOnContextDone bool
}

// Runtime compiles guest modules.
type Runtime interface {
	Compile(ctx context.Context, guest []byte, limits Limits) (Module, error)
}

// Module is a compiled guest awaiting its imports.
// Imports must be registered before Instantiate.
type Module interface {
	// Imports lists every function the guest imports.
	Imports() []ImportSpec

	// Exports lists the names of every function the guest exports.
	Exports() []string

	// RegisterImport provides the implementation of a guest import. It returns
	// ErrImportNotDeclared or ErrSignatureMismatch when the guest does not import
	// the function with that signature.
	RegisterImport(namespace, name string, sig Signature, fn ImportFunc) error

	// Instantiate links the registered imports and instantiates the guest without
	// running any start function.
	Instantiate(ctx context.Context) (Instance, error)

	// Close releases the module and everything instantiated from it.
	Close(ctx context.Context) error
}

// Instance is an instantiated guest. Its memory reaches the host only through
// the Memory passed to each ImportFunc.
type Instance interface {
	// CallExport calls an exported function. A missing export yields ErrExportNotFound.
	CallExport(ctx context.Context, name string, args ...uint64) ([]uint64, error)
	Close(ctx context.Context) error
}

// ExitCoder is implemented by errors reporting a guest exit (e.g. WASI proc_exit).
type ExitCoder interface {
	error
	ExitCode() uint32
}
