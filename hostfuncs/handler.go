package hostfuncs

import (
	"context"
	"encoding/json"
	"fmt"
)

// HostCallHandler handles every host call routed to it, receiving the full key.
// It is the shape used for catch-all fallbacks.
type HostCallHandler func(ctx context.Context, binding, namespace, operation string, payload []byte) ([]byte, error)

// ByteHandler handles one host operation. The key is available through HostContext.
type ByteHandler func(context.Context, []byte) ([]byte, error)

// HostFunc is a typed host operation used with NewJSONHandler.
type HostFunc[Req any, Resp any] func(context.Context, Req) (Resp, error)

// NewJSONHandler wraps a typed HostFunc into a ByteHandler that decodes the
// payload as JSON and encodes the response as JSON. The payload format is a
// convention between host and guest; the engine itself treats payloads as opaque.
//
// Usage:
//
//	reg.RegisterByteHandler(key, hostfuncs.NewJSONHandler(func(ctx context.Context, req GreetRequest) (GreetResponse, error) {
//	    return GreetResponse{Message: "Hello, " + req.Name}, nil
//	}))
func NewJSONHandler[Req any, Resp any](fn HostFunc[Req, Resp]) ByteHandler {
	return func(ctx context.Context, payload []byte) ([]byte, error) {
		var req Req
		if err := json.Unmarshal(payload, &req); err != nil {
			return nil, &ValidationError{Err: fmt.Errorf("failed to unmarshal request: %w", err)}
		}

		resp, err := fn(ctx, req)
		if err != nil {
			return nil, err
		}

		respBytes, err := json.Marshal(resp)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response: %w", err)
		}

		return respBytes, nil
	}
}

// toByteHandler adapts a HostCallHandler, taking the key from the HostContext.
func (h HostCallHandler) toByteHandler() ByteHandler {
	return func(ctx context.Context, payload []byte) ([]byte, error) {
		key := keyFrom(ctx)
		return h(ctx, key.Binding, key.Namespace, key.Operation, payload)
	}
}
