package host

import (
	"context"
	stdErrors "errors"
	"fmt"
	"sync/atomic"

	"github.com/reglet-dev/wapc-host/domain/entities"
	"github.com/reglet-dev/wapc-host/domain/errors"
	wzrt "github.com/reglet-dev/wapc-host/infrastructure/wazero"
	"github.com/tetratelabs/wazero"
)

// Pool holds independent engines built from the same guest so that concurrent
// callers each get an engine of their own.
type Pool struct {
	engines []*Engine
	free    chan *Engine
	cache   wazero.CompilationCache
	closed  atomic.Bool
}

// NewPool builds size engines from guest. The engines share a compilation cache
// unless opts set their own runtime.
func NewPool(ctx context.Context, guest []byte, size int, opts ...Option) (*Pool, error) {
	if size < 1 {
		return nil, &errors.ConfigError{Err: fmt.Errorf("pool size must be at least 1, got %d", size), Field: "size"}
	}

	p := &Pool{
		engines: make([]*Engine, 0, size),
		free:    make(chan *Engine, size),
		cache:   wazero.NewCompilationCache(),
	}
	opts = append([]Option{WithRuntime(wzrt.NewRuntime(wzrt.WithCompilationCache(p.cache)))}, opts...)

	for i := 0; i < size; i++ {
		e, err := New(ctx, guest, opts...)
		if err != nil {
			_ = p.Close(ctx)
			return nil, err
		}
		p.engines = append(p.engines, e)
		p.free <- e
	}
	return p, nil
}

// Get borrows an engine, waiting until one is free or ctx is done.
// The engine must be returned with Put.
func (p *Pool) Get(ctx context.Context) (*Engine, error) {
	if p.closed.Load() {
		return nil, errors.ErrEngineClosed
	}
	select {
	case e := <-p.free:
		if p.closed.Load() {
			p.free <- e
			return nil, errors.ErrEngineClosed
		}
		return e, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Put returns a borrowed engine.
func (p *Pool) Put(e *Engine) {
	p.free <- e
}

// GuestCall runs one guest call on a borrowed engine.
func (p *Pool) GuestCall(ctx context.Context, operation string, payload []byte) entities.CallOutcome {
	e, err := p.Get(ctx)
	if err != nil {
		return entities.Failure(err)
	}
	defer p.Put(e)
	return e.GuestCall(ctx, operation, payload)
}

// Invoke is GuestCall in (value, error) form.
func (p *Pool) Invoke(ctx context.Context, operation string, payload []byte) ([]byte, error) {
	return p.GuestCall(ctx, operation, payload).Unpack()
}

// Size returns the number of engines in the pool.
func (p *Pool) Size() int {
	return len(p.engines)
}

// Close closes every engine. Calls already running on borrowed engines fail.
func (p *Pool) Close(ctx context.Context) error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	var errs []error
	for _, e := range p.engines {
		if err := e.Close(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if err := p.cache.Close(ctx); err != nil {
		errs = append(errs, err)
	}
	return stdErrors.Join(errs...)
}
