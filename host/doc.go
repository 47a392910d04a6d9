// Package host runs WebAssembly guests that speak the waPC calling convention.
//
// An Engine owns one instantiated guest. The host invokes guest operations with
// GuestCall; the guest pulls the request out of the engine, reports a response or an
// error, and may call back into host operations registered in a
// hostfuncs.HandlerRegistry. Every exchange goes through linear-memory offsets and
// the imports of the reserved "wapc" namespace.
//
// An Engine runs one call at a time. Use a Pool to serve concurrent callers with
// independent engines built from the same module.
//
// # Basic Usage
//
//	registry, err := hostfuncs.NewRegistry(
//	    hostfuncs.WithMiddleware(hostfuncs.PanicRecoveryMiddleware()),
//	    hostfuncs.WithHandler("myBinding", "sample:namespace", "Ping", ping),
//	)
//	if err != nil {
//	    return err
//	}
//
//	engine, err := host.New(ctx, guest,
//	    host.WithRegistry(registry),
//	    host.WithLogger(logger),
//	)
//	if err != nil {
//	    return err
//	}
//	defer engine.Close(ctx)
//
//	resp, err := engine.Invoke(ctx, "wapc:sample!Hello", []byte("this is a test"))
package host
