package wazero

import (
	"context"
	"crypto/rand"
	"fmt"
	"sort"

	"github.com/reglet-dev/wapc-host/domain/ports"
	hostlog "github.com/reglet-dev/wapc-host/log"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
	"go.uber.org/zap"
)

// RuntimeConfig holds configuration for the wazero runtime adapter.
type RuntimeConfig struct {
	// Cache is shared by every runtime created by Compile. Nil disables caching.
	Cache wazero.CompilationCache

	// Logger receives adapter diagnostics. Defaults to the log package logger.
	Logger *zap.Logger

	// Interpreter selects the interpreter engine instead of the compiler.
	Interpreter bool
}

// RuntimeOption configures the adapter.
type RuntimeOption func(*RuntimeConfig)

// WithCompilationCache shares a compilation cache between compiled guests.
func WithCompilationCache(cache wazero.CompilationCache) RuntimeOption {
	return func(c *RuntimeConfig) {
		c.Cache = cache
	}
}

// WithLogger sets the adapter logger.
func WithLogger(logger *zap.Logger) RuntimeOption {
	return func(c *RuntimeConfig) {
		c.Logger = logger
	}
}

// WithInterpreter forces the interpreter engine.
func WithInterpreter() RuntimeOption {
	return func(c *RuntimeConfig) {
		c.Interpreter = true
	}
}

// Runtime implements ports.Runtime.
type Runtime struct {
	cfg    RuntimeConfig
	logger *zap.Logger
}

var _ ports.Runtime = (*Runtime)(nil)

// NewRuntime creates a wazero-backed runtime.
func NewRuntime(opts ...RuntimeOption) *Runtime {
	var cfg RuntimeConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Runtime{
		cfg:    cfg,
		logger: hostlog.Named(cfg.Logger, "wazero"),
	}
}

// Compile compiles guest into a new wazero runtime configured with limits.
// wazero manages its own call stack, so limits.StackSize is not enforced.
func (r *Runtime) Compile(ctx context.Context, guest []byte, limits ports.Limits) (ports.Module, error) {
	rc := wazero.NewRuntimeConfig()
	if r.cfg.Interpreter {
		rc = wazero.NewRuntimeConfigInterpreter()
	}
	rc = rc.WithCloseOnContextDone(limits.CloseOnContextDone)
	if limits.MemoryLimitPages > 0 {
		rc = rc.WithMemoryLimitPages(limits.MemoryLimitPages)
	}
	if r.cfg.Cache != nil {
		rc = rc.WithCompilationCache(r.cfg.Cache)
	}
	if limits.StackSize > 0 {
		r.logger.Debug("stack size is advisory on wazero", zap.Uint32("stack_size", limits.StackSize))
	}

	rt := wazero.NewRuntimeWithConfig(ctx, rc)
	compiled, err := rt.CompileModule(ctx, guest)
	if err != nil {
		_ = rt.Close(ctx)
		return nil, err
	}

	m := &module{
		rt:       rt,
		compiled: compiled,
		logger:   r.logger,
		imports:  make(map[importName]ports.ImportSpec),
		funcs:    make(map[string]map[string]registration),
	}
	for _, def := range compiled.ImportedFunctions() {
		ns, name, _ := def.Import()
		spec := ports.ImportSpec{
			Namespace: ns,
			Name:      name,
			Signature: ports.Signature{
				Params:  toValueTypes(def.ParamTypes()),
				Results: toValueTypes(def.ResultTypes()),
			},
		}
		m.imports[importName{ns, name}] = spec
		m.order = append(m.order, spec)
	}
	return m, nil
}

type importName struct {
	namespace string
	name      string
}

type registration struct {
	sig ports.Signature
	fn  ports.ImportFunc
}

type module struct {
	rt       wazero.Runtime
	compiled wazero.CompiledModule
	logger   *zap.Logger

	imports map[importName]ports.ImportSpec
	order   []ports.ImportSpec
	funcs   map[string]map[string]registration
}

func (m *module) Imports() []ports.ImportSpec {
	out := make([]ports.ImportSpec, len(m.order))
	copy(out, m.order)
	return out
}

func (m *module) Exports() []string {
	defs := m.compiled.ExportedFunctions()
	names := make([]string, 0, len(defs))
	for name := range defs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (m *module) RegisterImport(namespace, name string, sig ports.Signature, fn ports.ImportFunc) error {
	spec, ok := m.imports[importName{namespace, name}]
	if !ok {
		return fmt.Errorf("%w: %s.%s", ports.ErrImportNotDeclared, namespace, name)
	}
	if !spec.Signature.Equal(sig) {
		return fmt.Errorf("%w: %s.%s", ports.ErrSignatureMismatch, namespace, name)
	}

	byName, ok := m.funcs[namespace]
	if !ok {
		byName = make(map[string]registration)
		m.funcs[namespace] = byName
	}
	byName[name] = registration{sig: sig, fn: fn}
	return nil
}

func (m *module) Instantiate(ctx context.Context) (ports.Instance, error) {
	namespaces := make([]string, 0, len(m.funcs))
	for ns := range m.funcs {
		namespaces = append(namespaces, ns)
	}
	sort.Strings(namespaces)

	for _, ns := range namespaces {
		builder := m.rt.NewHostModuleBuilder(ns)
		if ns == wasi_snapshot_preview1.ModuleName {
			// Registered functions replace their WASI counterparts.
			wasi_snapshot_preview1.NewFunctionExporter().ExportFunctions(builder)
		}

		names := make([]string, 0, len(m.funcs[ns]))
		for name := range m.funcs[ns] {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			reg := m.funcs[ns][name]
			builder.NewFunctionBuilder().
				WithGoModuleFunction(goModuleFunc(reg), toAPITypes(reg.sig.Params), toAPITypes(reg.sig.Results)).
				Export(name)
		}
		if _, err := builder.Instantiate(ctx); err != nil {
			return nil, fmt.Errorf("host module %q: %w", ns, err)
		}
	}

	if _, ok := m.funcs[wasi_snapshot_preview1.ModuleName]; !ok && m.importsNamespace(wasi_snapshot_preview1.ModuleName) {
		m.logger.Debug("backfilling WASI preview1")
		if _, err := wasi_snapshot_preview1.Instantiate(ctx, m.rt); err != nil {
			return nil, fmt.Errorf("wasi: %w", err)
		}
	}

	cfg := wazero.NewModuleConfig().
		WithStartFunctions().
		WithRandSource(rand.Reader).
		WithSysWalltime().
		WithSysNanotime()

	mod, err := m.rt.InstantiateModule(ctx, m.compiled, cfg)
	if err != nil {
		return nil, err
	}
	return &instance{mod: mod}, nil
}

func (m *module) Close(ctx context.Context) error {
	return m.rt.Close(ctx)
}

func (m *module) importsNamespace(ns string) bool {
	for _, spec := range m.order {
		if spec.Namespace == ns {
			return true
		}
	}
	return false
}

// goModuleFunc adapts an ImportFunc to wazero's stack-based calling convention.
func goModuleFunc(reg registration) api.GoModuleFunc {
	n := len(reg.sig.Params)
	return func(ctx context.Context, mod api.Module, stack []uint64) {
		results := reg.fn(ctx, newMemory(mod.Memory()), stack[:n])
		copy(stack, results)
	}
}

type instance struct {
	mod api.Module
}

func (i *instance) CallExport(ctx context.Context, name string, args ...uint64) ([]uint64, error) {
	fn := i.mod.ExportedFunction(name)
	if fn == nil {
		return nil, fmt.Errorf("%w: %s", ports.ErrExportNotFound, name)
	}
	return fn.Call(ctx, args...)
}

func (i *instance) Close(ctx context.Context) error {
	return i.mod.Close(ctx)
}

func toValueTypes(in []api.ValueType) []ports.ValueType {
	out := make([]ports.ValueType, len(in))
	for i, t := range in {
		out[i] = ports.ValueType(t)
	}
	return out
}

func toAPITypes(in []ports.ValueType) []api.ValueType {
	out := make([]api.ValueType, len(in))
	for i, t := range in {
		out[i] = api.ValueType(t)
	}
	return out
}
