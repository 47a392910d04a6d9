package host

import (
	"context"
	stdErrors "errors"
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"time"

	"github.com/reglet-dev/wapc-host/domain/entities"
	"github.com/reglet-dev/wapc-host/domain/errors"
	"github.com/reglet-dev/wapc-host/domain/ports"
	"github.com/reglet-dev/wapc-host/hostfuncs"
	wzrt "github.com/reglet-dev/wapc-host/infrastructure/wazero"
	hostlog "github.com/reglet-dev/wapc-host/log"
	"github.com/reglet-dev/wapc-host/metrics"
	"go.uber.org/zap"
)

// Engine hosts one instantiated waPC guest.
type Engine struct {
	cfg      Config
	logger   *zap.Logger
	registry *hostfuncs.HandlerRegistry
	console  hostlog.ConsoleSink
	stdout   io.Writer
	lines    *hostlog.LineWriter
	metrics  *metrics.Collector

	module   ports.Module
	instance ports.Instance
	caps     *entities.Capabilities
	warnings []*errors.ImportWarning

	state  callState
	busy   atomic.Bool
	closed atomic.Bool
}

// New compiles and instantiates guest, wires the waPC imports and runs the
// guest's bootstrap exports.
func New(ctx context.Context, guest []byte, opts ...Option) (*Engine, error) {
	o := options{config: DefaultConfig()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.err != nil {
		return nil, o.err
	}
	if err := o.config.Validate(); err != nil {
		return nil, err
	}

	logger := hostlog.Named(o.logger, "wapc")
	if o.registry == nil {
		reg, err := hostfuncs.NewRegistry()
		if err != nil {
			return nil, fmt.Errorf("failed to create default registry: %w", err)
		}
		o.registry = reg
	}
	if o.runtime == nil {
		o.runtime = wzrt.NewRuntime(wzrt.WithLogger(o.logger))
	}
	if o.console == nil {
		o.console = hostlog.ZapSink(logger)
	}
	var lines *hostlog.LineWriter
	switch {
	case o.stdoutToConsole:
		lines = hostlog.NewLineWriter(o.console)
		o.stdout = lines
	case o.stdout == nil:
		o.stdout = os.Stdout
	}

	e := &Engine{
		cfg:      o.config,
		logger:   logger,
		registry: o.registry,
		console:  o.console,
		stdout:   o.stdout,
		lines:    lines,
		metrics:  o.metrics,
		caps:     entities.NewCapabilities(),
	}

	mod, err := o.runtime.Compile(ctx, guest, e.cfg.limits())
	if err != nil {
		return nil, &errors.InstantiationError{Err: err, Phase: errors.PhaseCompile}
	}
	if err := e.registerImports(mod); err != nil {
		_ = mod.Close(ctx)
		return nil, err
	}

	inst, err := mod.Instantiate(ctx)
	if err != nil {
		_ = mod.Close(ctx)
		return nil, &errors.InstantiationError{Err: err, Phase: errors.PhaseInstantiate}
	}
	e.module = mod
	e.instance = inst

	for _, name := range []string{ExportGuestCall, ExportStart, ExportInit} {
		e.caps.Set(name, false)
	}
	for _, name := range mod.Exports() {
		if name == ExportGuestCall || name == ExportStart || name == ExportInit {
			e.caps.Set(name, true)
		}
	}
	if !e.caps.Has(ExportGuestCall) {
		e.logger.Warn("guest does not export " + ExportGuestCall + ", every guest call will fail")
	}

	e.bootstrap(ctx)
	e.flushStdout()

	e.logger.Debug("engine ready", zap.Strings("capabilities", e.caps.Names()))
	return e, nil
}

// GuestCall invokes operation on the guest with payload.
// Failures of any kind are reported in the outcome; the engine stays usable.
// Only one call may run at a time: a concurrent or nested call fails with
// errors.ErrEngineBusy.
func (e *Engine) GuestCall(ctx context.Context, operation string, payload []byte) entities.CallOutcome {
	if !e.busy.CompareAndSwap(false, true) {
		return entities.Failure(errors.ErrEngineBusy)
	}
	defer e.busy.Store(false)

	start := time.Now()
	outcome := e.guestCall(ctx, operation, payload)
	elapsed := time.Since(start)

	e.metrics.ObserveGuestCall(operation, outcome.Err, elapsed)
	if ce := e.logger.Check(zap.DebugLevel, "guest call"); ce != nil {
		ce.Write(
			hostlog.Operation(operation),
			hostlog.PayloadSize(len(payload)),
			zap.String(hostlog.FieldOutcome, metrics.Outcome(outcome.Err)),
			zap.Duration("elapsed", elapsed),
		)
	}
	return outcome
}

func (e *Engine) guestCall(ctx context.Context, operation string, payload []byte) entities.CallOutcome {
	if e.closed.Load() {
		return entities.Failure(&errors.TrapError{Err: errors.ErrEngineClosed, Operation: operation})
	}

	e.state.begin(operation, payload)
	defer e.state.reset()

	if !e.caps.Has(ExportGuestCall) {
		return entities.Failure(&errors.TrapError{
			Err:       fmt.Errorf("%w: %s", ports.ErrExportNotFound, ExportGuestCall),
			Operation: operation,
		})
	}

	inv := e.state.invocation
	results, err := e.instance.CallExport(ctx, ExportGuestCall, uint64(inv.OperationLen()), uint64(inv.PayloadLen()))
	e.flushStdout()
	return e.state.outcome(operation, results, err)
}

// flushStdout hands a trailing partial stdout line to the console sink, so
// output never leaks from one call into the next.
func (e *Engine) flushStdout() {
	if e.lines != nil {
		e.lines.Flush()
	}
}

// Invoke is GuestCall in (value, error) form.
func (e *Engine) Invoke(ctx context.Context, operation string, payload []byte) ([]byte, error) {
	return e.GuestCall(ctx, operation, payload).Unpack()
}

// Capabilities reports which optional imports and exports the guest declared.
func (e *Engine) Capabilities() *entities.Capabilities {
	return e.caps
}

// Warnings returns the optional imports the guest did not declare.
func (e *Engine) Warnings() []*errors.ImportWarning {
	out := make([]*errors.ImportWarning, len(e.warnings))
	copy(out, e.warnings)
	return out
}

// Config returns the configuration the engine was built with.
func (e *Engine) Config() Config {
	return e.cfg
}

// Registry returns the registry host calls are dispatched through.
func (e *Engine) Registry() *hostfuncs.HandlerRegistry {
	return e.registry
}

// Close releases the guest and its runtime. Closing twice is a no-op.
func (e *Engine) Close(ctx context.Context) error {
	if !e.closed.CompareAndSwap(false, true) {
		return nil
	}
	e.flushStdout()
	return stdErrors.Join(e.instance.Close(ctx), e.module.Close(ctx))
}
