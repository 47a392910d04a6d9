// Package ports defines the interfaces the call engine needs from a WebAssembly runtime.
// The engine depends on these abstractions; infrastructure adapters (see
// infrastructure/wazero) implement them.
package ports
