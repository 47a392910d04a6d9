package host

import (
	"io"

	"github.com/reglet-dev/wapc-host/domain/ports"
	"github.com/reglet-dev/wapc-host/hostfuncs"
	hostlog "github.com/reglet-dev/wapc-host/log"
	"github.com/reglet-dev/wapc-host/metrics"
	"go.uber.org/zap"
)

type options struct {
	config   Config
	registry *hostfuncs.HandlerRegistry
	runtime  ports.Runtime
	logger   *zap.Logger
	console  hostlog.ConsoleSink
	stdout   io.Writer
	metrics  *metrics.Collector
	err      error

	stdoutToConsole bool
}

// Option defines a functional option for configuring an Engine.
type Option func(*options)

// WithConfig replaces the whole configuration.
func WithConfig(cfg Config) Option {
	return func(o *options) {
		o.config = cfg
	}
}

// WithStackSize sets the call stack budget in bytes.
func WithStackSize(size uint32) Option {
	return func(o *options) {
		o.config.StackSize = size
	}
}

// WithMemoryLimitPages caps guest memory in 64 KiB pages.
func WithMemoryLimitPages(pages uint32) Option {
	return func(o *options) {
		o.config.MemoryLimitPages = pages
	}
}

// WithMaxHostCallSize sets the largest payload accepted from a guest host call.
func WithMaxHostCallSize(size uint32) Option {
	return func(o *options) {
		o.config.MaxHostCallSize = size
	}
}

// WithCloseOnContextDone aborts guest calls whose context is done.
func WithCloseOnContextDone(enabled bool) Option {
	return func(o *options) {
		o.config.CloseOnContextDone = enabled
	}
}

// WithRegistry sets the registry host calls are dispatched through.
// The registry may be shared between engines and updated while they run.
func WithRegistry(registry *hostfuncs.HandlerRegistry) Option {
	return func(o *options) {
		o.registry = registry
	}
}

// WithHostCallHandler routes every host call to a single handler.
// It replaces any registry set before it.
func WithHostCallHandler(handler hostfuncs.HostCallHandler) Option {
	return func(o *options) {
		o.registry, o.err = hostfuncs.NewRegistry(hostfuncs.WithFallback(handler))
	}
}

// WithRuntime sets the WebAssembly runtime. Defaults to wazero.
func WithRuntime(rt ports.Runtime) Option {
	return func(o *options) {
		o.runtime = rt
	}
}

// WithLogger sets the engine logger. Defaults to the log package logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithConsoleSink sets where guest console lines go. Defaults to the engine logger.
func WithConsoleSink(sink hostlog.ConsoleSink) Option {
	return func(o *options) {
		o.console = sink
	}
}

// WithStdout sets the writer behind the guest's WASI stdout. Defaults to os.Stdout.
func WithStdout(w io.Writer) Option {
	return func(o *options) {
		o.stdout = w
	}
}

// WithStdoutToConsole routes the guest's WASI stdout to the console sink, one
// sink call per line. It takes precedence over WithStdout.
func WithStdoutToConsole() Option {
	return func(o *options) {
		o.stdoutToConsole = true
	}
}

// WithMetrics records call metrics in collector.
func WithMetrics(collector *metrics.Collector) Option {
	return func(o *options) {
		o.metrics = collector
	}
}
