package hostfuncs

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Middleware is a function that wraps a ByteHandler to add cross-cutting behavior.
// Middleware executes in FIFO order (first registered wraps first, onion model).
//
// Example usage:
//
//	tracing := func(next ByteHandler) ByteHandler {
//	    return func(ctx context.Context, payload []byte) ([]byte, error) {
//	        span := start(ctx)
//	        defer span.End()
//	        return next(ctx, payload)
//	    }
//	}
type Middleware func(next ByteHandler) ByteHandler

// RegistryOption is a functional option for configuring a HandlerRegistry.
type RegistryOption func(*registryBuilder)

// PanicRecoveryMiddleware returns a middleware that turns handler panics into a
// *PanicError, so a misbehaving handler fails the host call instead of the host.
func PanicRecoveryMiddleware() Middleware {
	return func(next ByteHandler) ByteHandler {
		return func(ctx context.Context, payload []byte) (resp []byte, err error) {
			defer func() {
				if r := recover(); r != nil {
					resp = nil
					err = NewPanicError(r)
				}
			}()
			return next(ctx, payload)
		}
	}
}

// LoggingMiddleware returns a middleware that logs host call invocations at debug
// level and failures at warn level.
func LoggingMiddleware(logger *zap.Logger) Middleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next ByteHandler) ByteHandler {
		return func(ctx context.Context, payload []byte) ([]byte, error) {
			key := keyFrom(ctx)
			fields := []zap.Field{
				zap.String("binding", key.Binding),
				zap.String("namespace", key.Namespace),
				zap.String("operation", key.Operation),
				zap.Int("payload_size", len(payload)),
			}
			logger.Debug("invoking host call", fields...)

			start := time.Now()
			resp, err := next(ctx, payload)
			fields = append(fields, zap.Duration("elapsed", time.Since(start)))
			if err != nil {
				logger.Warn("host call failed", append(fields, zap.Error(err))...)
			} else {
				logger.Debug("host call completed", append(fields, zap.Int("response_size", len(resp)))...)
			}
			return resp, err
		}
	}
}

// MaxPayloadMiddleware returns a middleware rejecting payloads larger than limit bytes.
func MaxPayloadMiddleware(limit int) Middleware {
	return func(next ByteHandler) ByteHandler {
		return func(ctx context.Context, payload []byte) ([]byte, error) {
			if len(payload) > limit {
				return nil, &ValidationError{Err: &PayloadTooLargeError{Size: len(payload), Limit: limit}}
			}
			return next(ctx, payload)
		}
	}
}
