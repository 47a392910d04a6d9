package hostfuncs

import (
	"context"
	"sort"
	"sync"

	"github.com/reglet-dev/wapc-host/domain/entities"
	"github.com/reglet-dev/wapc-host/domain/errors"
)

// HandlerRegistry maps host call keys to handlers.
// Registration may happen at any time, including while engines are dispatching
// through the registry; the last registration of a key wins.
type HandlerRegistry struct {
	mu         sync.RWMutex
	handlers   map[entities.HostCallKey]ByteHandler
	fallback   ByteHandler
	middleware []Middleware
}

// registryBuilder accumulates configuration during registry construction.
type registryBuilder struct {
	handlers   map[entities.HostCallKey]ByteHandler
	fallback   ByteHandler
	middleware []Middleware
	errors     []error
}

// NewRegistry creates a HandlerRegistry with the given options.
// Returns an error if any handler is nil.
//
// Example usage:
//
//	registry, err := NewRegistry(
//	    WithMiddleware(PanicRecoveryMiddleware()),
//	    WithHandler("myBinding", "sample:namespace", "Ping", ping),
//	)
func NewRegistry(opts ...RegistryOption) (*HandlerRegistry, error) {
	b := &registryBuilder{
		handlers: make(map[entities.HostCallKey]ByteHandler),
	}

	for _, opt := range opts {
		opt(b)
	}

	if len(b.errors) > 0 {
		return nil, b.errors[0]
	}

	r := &HandlerRegistry{
		handlers:   make(map[entities.HostCallKey]ByteHandler, len(b.handlers)),
		middleware: b.middleware,
	}
	for key, handler := range b.handlers {
		r.handlers[key] = r.wrap(handler)
	}
	if b.fallback != nil {
		r.fallback = r.wrap(b.fallback)
	}
	return r, nil
}

// Register installs handler for the key, replacing any previous handler.
func (r *HandlerRegistry) Register(binding, namespace, operation string, handler HostCallHandler) error {
	if handler == nil {
		return ErrNilHandler
	}
	return r.RegisterByteHandler(entities.NewHostCallKey(binding, namespace, operation), handler.toByteHandler())
}

// RegisterByteHandler installs handler for key, replacing any previous handler.
func (r *HandlerRegistry) RegisterByteHandler(key entities.HostCallKey, handler ByteHandler) error {
	if handler == nil {
		return ErrNilHandler
	}
	wrapped := r.wrap(handler)

	r.mu.Lock()
	r.handlers[key] = wrapped
	r.mu.Unlock()
	return nil
}

// Unregister removes the handler for key and reports whether one was present.
func (r *HandlerRegistry) Unregister(key entities.HostCallKey) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.handlers[key]
	delete(r.handlers, key)
	return ok
}

// Dispatch invokes the handler registered for key exactly once.
// Without a matching handler the fallback is used; without a fallback the
// result is a *errors.DispatchMissError.
func (r *HandlerRegistry) Dispatch(ctx context.Context, key entities.HostCallKey, payload []byte) ([]byte, error) {
	r.mu.RLock()
	handler, ok := r.handlers[key]
	if !ok {
		handler = r.fallback
	}
	r.mu.RUnlock()

	if handler == nil {
		return nil, &errors.DispatchMissError{Key: key}
	}
	return handler(HostContextFrom(ctx, key), payload)
}

// Has returns true if a handler is registered for key. The fallback is not consulted.
func (r *HandlerRegistry) Has(key entities.HostCallKey) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.handlers[key]
	return ok
}

// Keys returns the sorted list of registered keys.
func (r *HandlerRegistry) Keys() []entities.HostCallKey {
	r.mu.RLock()
	keys := make([]entities.HostCallKey, 0, len(r.handlers))
	for key := range r.handlers {
		keys = append(keys, key)
	}
	r.mu.RUnlock()

	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
	return keys
}

// Len returns the number of registered keys.
func (r *HandlerRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handlers)
}

// wrap applies the middleware chain (FIFO order).
func (r *HandlerRegistry) wrap(handler ByteHandler) ByteHandler {
	wrapped := handler
	// Apply middleware in reverse order so first middleware wraps outermost
	for i := len(r.middleware) - 1; i >= 0; i-- {
		wrapped = r.middleware[i](wrapped)
	}
	return wrapped
}

func (b *registryBuilder) addHandler(key entities.HostCallKey, handler ByteHandler) {
	if handler == nil {
		b.errors = append(b.errors, ErrNilHandler)
		return
	}
	b.handlers[key] = handler
}

// WithHandler registers a HostCallHandler for the key.
func WithHandler(binding, namespace, operation string, handler HostCallHandler) RegistryOption {
	return func(b *registryBuilder) {
		if handler == nil {
			b.errors = append(b.errors, ErrNilHandler)
			return
		}
		b.addHandler(entities.NewHostCallKey(binding, namespace, operation), handler.toByteHandler())
	}
}

// WithByteHandler registers a ByteHandler for the key.
func WithByteHandler(binding, namespace, operation string, handler ByteHandler) RegistryOption {
	return func(b *registryBuilder) {
		b.addHandler(entities.NewHostCallKey(binding, namespace, operation), handler)
	}
}

// WithFallback sets the handler used for keys with no registered handler.
func WithFallback(handler HostCallHandler) RegistryOption {
	return func(b *registryBuilder) {
		if handler == nil {
			b.errors = append(b.errors, ErrNilHandler)
			return
		}
		b.fallback = handler.toByteHandler()
	}
}

// WithMiddleware adds middleware to the registry.
// Middleware executes in FIFO order (first added wraps first).
func WithMiddleware(mw ...Middleware) RegistryOption {
	return func(b *registryBuilder) {
		b.middleware = append(b.middleware, mw...)
	}
}
