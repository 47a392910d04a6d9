package hostfuncs

import (
	"context"

	"github.com/reglet-dev/wapc-host/domain/entities"
)

// HostContext wraps a standard context.Context with host-call-specific helpers.
// It provides access to the invoked key and allows middleware to store
// request-scoped values without polluting the standard context.
type HostContext interface {
	context.Context

	// Key returns the key of the host operation being invoked.
	Key() entities.HostCallKey

	// FunctionName returns the key rendered as binding/namespace/operation.
	FunctionName() string

	// SetValue stores a request-scoped value. Unlike context.WithValue,
	// this mutates the existing HostContext.
	SetValue(key, value any)

	// GetValue retrieves a request-scoped value set by SetValue.
	GetValue(key any) (value any, ok bool)
}

type hostCallKeyCtx struct{}

type hostContext struct {
	context.Context
	values map[any]any
	key    entities.HostCallKey
}

// NewHostContext creates a new HostContext wrapping the given context.
// The key is also stored as a context value so it survives contexts derived
// from the HostContext by middleware.
func NewHostContext(ctx context.Context, key entities.HostCallKey) HostContext {
	return &hostContext{
		Context: context.WithValue(ctx, hostCallKeyCtx{}, key),
		key:     key,
		values:  make(map[any]any),
	}
}

func (c *hostContext) Key() entities.HostCallKey {
	return c.key
}

func (c *hostContext) FunctionName() string {
	return c.key.String()
}

func (c *hostContext) SetValue(key, value any) {
	c.values[key] = value
}

func (c *hostContext) GetValue(key any) (any, bool) {
	v, ok := c.values[key]
	return v, ok
}

// HostContextFrom returns ctx if it is already a HostContext for key, and
// otherwise a new HostContext wrapping ctx.
func HostContextFrom(ctx context.Context, key entities.HostCallKey) HostContext {
	if hc, ok := ctx.(HostContext); ok && hc.Key() == key {
		return hc
	}
	return NewHostContext(ctx, key)
}

// HostCallKeyFrom returns the key of the host call ctx belongs to, including
// contexts derived from a HostContext.
func HostCallKeyFrom(ctx context.Context) (entities.HostCallKey, bool) {
	if hc, ok := ctx.(HostContext); ok {
		return hc.Key(), true
	}
	key, ok := ctx.Value(hostCallKeyCtx{}).(entities.HostCallKey)
	return key, ok
}

func keyFrom(ctx context.Context) entities.HostCallKey {
	key, _ := HostCallKeyFrom(ctx)
	return key
}
