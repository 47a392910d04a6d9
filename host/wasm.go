package host

import (
	"context"
	stdErrors "errors"
	"fmt"

	"github.com/reglet-dev/wapc-host/domain/entities"
	"github.com/reglet-dev/wapc-host/domain/errors"
	"github.com/reglet-dev/wapc-host/domain/ports"
	"github.com/reglet-dev/wapc-host/hostfuncs"
	hostlog "github.com/reglet-dev/wapc-host/log"
	"go.uber.org/zap"
)

// Namespaces of the imports the engine provides.
const (
	NamespaceWapc = "wapc"
	NamespaceWASI = "wasi_snapshot_preview1"
)

// Imports of the wapc namespace.
const (
	ImportGuestRequest    = "__guest_request"
	ImportGuestResponse   = "__guest_response"
	ImportGuestError      = "__guest_error"
	ImportHostCall        = "__host_call"
	ImportHostResponseLen = "__host_response_len"
	ImportHostResponse    = "__host_response"
	ImportHostErrorLen    = "__host_error_len"
	ImportHostError       = "__host_error"
	ImportConsoleLog      = "__console_log"
	ImportFdWrite         = "fd_write"
)

// Guest exports.
const (
	ExportGuestCall = "__guest_call"
	ExportStart     = "_start"
	ExportInit      = "wapc_init"
)

type importDef struct {
	namespace string
	name      string
	sig       ports.Signature
	required  bool
	fn        func(*Engine, context.Context, ports.Memory, []uint64) []uint64
}

var importTable = []importDef{
	{NamespaceWapc, ImportGuestRequest, ports.I32Signature(2, 0), true, (*Engine).guestRequest},
	{NamespaceWapc, ImportGuestResponse, ports.I32Signature(2, 0), true, (*Engine).guestResponse},
	{NamespaceWapc, ImportGuestError, ports.I32Signature(2, 0), true, (*Engine).guestError},
	{NamespaceWapc, ImportHostCall, ports.I32Signature(8, 1), false, (*Engine).hostCall},
	{NamespaceWapc, ImportHostResponseLen, ports.I32Signature(0, 1), false, (*Engine).hostResponseLen},
	{NamespaceWapc, ImportHostResponse, ports.I32Signature(1, 0), false, (*Engine).hostResponse},
	{NamespaceWapc, ImportHostErrorLen, ports.I32Signature(0, 1), false, (*Engine).hostErrorLen},
	{NamespaceWapc, ImportHostError, ports.I32Signature(1, 0), false, (*Engine).hostError},
	{NamespaceWapc, ImportConsoleLog, ports.I32Signature(2, 0), false, (*Engine).consoleLog},
	{NamespaceWASI, ImportFdWrite, ports.I32Signature(4, 1), false, (*Engine).fdWrite},
}

// registerImports provides every import of the table the guest declares.
// A guest importing anything else from the wapc namespace is rejected.
func (e *Engine) registerImports(mod ports.Module) error {
	for _, spec := range mod.Imports() {
		if spec.Namespace == NamespaceWapc && !knownImport(spec.Namespace, spec.Name) {
			return &errors.InstantiationError{
				Err:   fmt.Errorf("unknown import %s.%s", spec.Namespace, spec.Name),
				Phase: errors.PhaseImports,
			}
		}
	}

	for _, def := range importTable {
		fn := def.fn
		err := mod.RegisterImport(def.namespace, def.name, def.sig,
			func(ctx context.Context, mem ports.Memory, params []uint64) []uint64 {
				return fn(e, ctx, mem, params)
			})
		switch {
		case err == nil:
			e.caps.Set(def.name, true)
		case stdErrors.Is(err, ports.ErrImportNotDeclared) && !def.required:
			e.caps.Set(def.name, false)
			warning := &errors.ImportWarning{Namespace: def.namespace, Name: def.name}
			e.warnings = append(e.warnings, warning)
			if def.namespace == NamespaceWapc {
				e.logger.Warn("optional import not declared", zap.Error(warning))
			} else {
				e.logger.Debug("optional import not declared", zap.Error(warning))
			}
		default:
			return &errors.InstantiationError{Err: err, Phase: errors.PhaseImports}
		}
	}
	return nil
}

func knownImport(namespace, name string) bool {
	for _, def := range importTable {
		if def.namespace == namespace && def.name == name {
			return true
		}
	}
	return false
}

func u32(v uint64) uint32 {
	return uint32(v) //nolint:gosec // G115: i32 parameters
}

func (e *Engine) guestRequest(_ context.Context, mem ports.Memory, params []uint64) []uint64 {
	inv := e.state.invocation
	if inv == nil {
		e.logger.Warn("guest requested an invocation while none is pending")
		return nil
	}
	if e.writeBytes(mem, ImportGuestRequest, "operation", u32(params[0]), []byte(inv.Operation)) {
		e.writeBytes(mem, ImportGuestRequest, "payload", u32(params[1]), inv.Payload)
	}
	return nil
}

func (e *Engine) guestResponse(_ context.Context, mem ports.Memory, params []uint64) []uint64 {
	if b, ok := e.readBytes(mem, ImportGuestResponse, "response", u32(params[0]), u32(params[1])); ok {
		e.state.setResponse(b)
	}
	return nil
}

func (e *Engine) guestError(_ context.Context, mem ports.Memory, params []uint64) []uint64 {
	if msg, ok := e.readString(mem, ImportGuestError, "error", u32(params[0]), u32(params[1])); ok {
		e.state.setGuestError(msg)
	}
	return nil
}

func (e *Engine) hostCall(ctx context.Context, mem ports.Memory, params []uint64) []uint64 {
	e.state.hostCall.Reset()

	key, ok := e.readHostCallKey(mem, params)
	if !ok {
		e.state.hostCall.Fail("malformed host call")
		return []uint64{0}
	}
	e.state.hostCallKey = key

	ptr, length := u32(params[6]), u32(params[7])
	if length > e.cfg.MaxHostCallSize {
		err := &hostfuncs.PayloadTooLargeError{Size: int(length), Limit: int(e.cfg.MaxHostCallSize)}
		e.logger.Warn("host call rejected", append(hostlog.HostCall(key), zap.Error(err))...)
		e.metrics.ObserveHostCall(key, e.registry.Has(key), err)
		e.state.hostCall.Fail(err.Error())
		return []uint64{0}
	}
	payload, ok := e.readBytes(mem, ImportHostCall, "payload", ptr, length)
	if !ok {
		e.state.hostCall.Fail("malformed host call")
		return []uint64{0}
	}

	resp, err := e.registry.Dispatch(ctx, key, payload)
	e.metrics.ObserveHostCall(key, e.registry.Has(key), err)
	if err != nil {
		e.logger.Debug("host call failed", append(hostlog.HostCall(key), zap.Error(err))...)
		e.state.hostCall.Fail(err.Error())
		return []uint64{0}
	}
	e.state.hostCall.Succeed(resp)
	return []uint64{1}
}

func (e *Engine) readHostCallKey(mem ports.Memory, params []uint64) (entities.HostCallKey, bool) {
	binding, ok := e.readString(mem, ImportHostCall, "binding", u32(params[0]), u32(params[1]))
	if !ok {
		return entities.HostCallKey{}, false
	}
	namespace, ok := e.readString(mem, ImportHostCall, "namespace", u32(params[2]), u32(params[3]))
	if !ok {
		return entities.HostCallKey{}, false
	}
	operation, ok := e.readString(mem, ImportHostCall, "operation", u32(params[4]), u32(params[5]))
	if !ok {
		return entities.HostCallKey{}, false
	}
	return entities.NewHostCallKey(binding, namespace, operation), true
}

func (e *Engine) hostResponseLen(context.Context, ports.Memory, []uint64) []uint64 {
	return []uint64{uint64(len(e.state.hostCall.Response))}
}

func (e *Engine) hostResponse(_ context.Context, mem ports.Memory, params []uint64) []uint64 {
	if resp := e.state.hostCall.Response; resp != nil {
		e.writeBytes(mem, ImportHostResponse, "host response", u32(params[0]), resp)
	}
	return nil
}

func (e *Engine) hostErrorLen(context.Context, ports.Memory, []uint64) []uint64 {
	return []uint64{uint64(len(e.state.hostCall.Err))}
}

func (e *Engine) hostError(_ context.Context, mem ports.Memory, params []uint64) []uint64 {
	if e.state.hostCall.Failed {
		e.writeBytes(mem, ImportHostError, "host error", u32(params[0]), []byte(e.state.hostCall.Err))
	}
	return nil
}

func (e *Engine) consoleLog(_ context.Context, mem ports.Memory, params []uint64) []uint64 {
	if line, ok := e.readString(mem, ImportConsoleLog, "log line", u32(params[0]), u32(params[1])); ok {
		e.console(line)
	}
	return nil
}
