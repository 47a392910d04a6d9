// Package wazero implements the engine's runtime port on the wazero WebAssembly runtime.
//
// Every compiled guest owns its own wazero.Runtime so that the host modules
// providing its imports can be bound to that guest alone. Runtimes may share a
// wazero.CompilationCache to avoid recompiling the same binary.
//
// # Basic Usage
//
//	rt := wazero.NewRuntime(wazero.WithLogger(logger))
//
//	mod, err := rt.Compile(ctx, guest, ports.Limits{MemoryLimitPages: 256})
//	if err != nil {
//	    return err
//	}
//	defer mod.Close(ctx)
//
//	err = mod.RegisterImport("wapc", "__console_log", ports.I32Signature(2, 0), consoleLog)
//	...
//	inst, err := mod.Instantiate(ctx)
//
// Imports in the wasi_snapshot_preview1 namespace that the caller does not
// register are backfilled from wazero's WASI implementation.
package wazero
