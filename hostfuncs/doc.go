// Package hostfuncs holds the registry of host operations a waPC guest can call.
//
// Host operations are keyed by (binding, namespace, operation). Handlers have no
// WebAssembly runtime dependency; the engine reads the key and payload out of guest
// memory and hands them to HandlerRegistry.Dispatch.
package hostfuncs
