package log

import (
	"github.com/reglet-dev/wapc-host/domain/entities"
	"go.uber.org/zap"
)

// Field keys used across the engine logs.
const (
	FieldOperation = "operation"
	FieldBinding   = "binding"
	FieldNamespace = "namespace"
	FieldOutcome   = "outcome"
	FieldImport    = "import"
)

// Operation returns the field naming a guest operation.
func Operation(name string) zap.Field {
	return zap.String(FieldOperation, name)
}

// HostCall returns the fields identifying a host call.
func HostCall(key entities.HostCallKey) []zap.Field {
	return []zap.Field{
		zap.String(FieldBinding, key.Binding),
		zap.String(FieldNamespace, key.Namespace),
		zap.String(FieldOperation, key.Operation),
	}
}

// PayloadSize returns the field holding a payload length.
func PayloadSize(n int) zap.Field {
	return zap.Int("payload_size", n)
}
