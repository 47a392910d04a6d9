package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/reglet-dev/wapc-host/domain/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstantiationError(t *testing.T) {
	baseErr := fmt.Errorf("invalid magic number")
	err := &InstantiationError{Phase: PhaseCompile, Err: baseErr}

	assert.Equal(t, "instantiation failed during compile: invalid magic number", err.Error())
	assert.True(t, errors.Is(err, baseErr))

	detail := err.ToErrorDetail()
	assert.Equal(t, "instantiation", detail.Type)
	assert.Equal(t, "compile", detail.Code)
}

func TestImportWarning(t *testing.T) {
	err := &ImportWarning{Namespace: "wapc", Name: "__console_log"}

	assert.Equal(t, "guest does not import wapc.__console_log, capability unavailable", err.Error())
	assert.Equal(t, "import", err.ToErrorDetail().Type)
}

func TestMarshallingError(t *testing.T) {
	err := &MarshallingError{Import: "__console_log", Detail: "invalid UTF-8 in log line"}
	assert.Equal(t, "__console_log: invalid UTF-8 in log line", err.Error())

	cause := errors.New("offset 70000 out of range")
	wrapped := &MarshallingError{Import: "__guest_request", Detail: "write payload", Err: cause}
	assert.Equal(t, "__guest_request: write payload: offset 70000 out of range", wrapped.Error())
	assert.ErrorIs(t, wrapped, cause)
}

func TestDispatchMissError(t *testing.T) {
	err := &DispatchMissError{Key: entities.NewHostCallKey("b", "ns", "op")}

	assert.Equal(t, `no handler registered for binding "b", namespace "ns", operation "op"`, err.Error())
	detail := err.ToErrorDetail()
	assert.True(t, detail.IsNotFound)
	assert.Equal(t, "b/ns/op", detail.Code)
}

func TestGuestError_Verbatim(t *testing.T) {
	err := &GuestError{Operation: "fail", Message: "boom"}

	assert.Equal(t, "boom", err.Error())
	assert.Equal(t, "guest", err.ToErrorDetail().Type)
}

func TestHostCallError_Verbatim(t *testing.T) {
	err := &HostCallError{Key: entities.NewHostCallKey("b", "ns", "op"), Message: "backend down"}

	assert.Equal(t, "backend down", err.Error())
	assert.Equal(t, "host_call", err.ToErrorDetail().Type)
}

func TestTrapError(t *testing.T) {
	cause := errors.New("wasm error: unreachable")
	err := &TrapError{Operation: "trap", Err: cause}
	assert.Equal(t, `guest call "trap" failed: wasm error: unreachable`, err.Error())
	assert.ErrorIs(t, err, cause)

	silent := &TrapError{Operation: "silent"}
	assert.Equal(t, `guest call "silent" failed without reporting an error`, silent.Error())
}

func TestConfigError(t *testing.T) {
	baseErr := fmt.Errorf("must be at least 1")
	err := &ConfigError{Field: "MaxHostCallSize", Err: baseErr}

	assert.Equal(t, "config validation failed for field 'MaxHostCallSize': must be at least 1", err.Error())
	assert.True(t, errors.Is(err, baseErr))

	noField := &ConfigError{Err: baseErr}
	assert.Equal(t, "config validation failed: must be at least 1", noField.Error())
}

func TestToErrorDetail(t *testing.T) {
	t.Run("nil", func(t *testing.T) {
		assert.Nil(t, ToErrorDetail(nil))
	})

	t.Run("detailed error through wrapping", func(t *testing.T) {
		err := fmt.Errorf("outer: %w", &GuestError{Operation: "op", Message: "inner"})
		detail := ToErrorDetail(err)
		require.NotNil(t, detail)
		assert.Equal(t, "guest", detail.Type)
		assert.Equal(t, "inner", detail.Message)
	})

	t.Run("entity passthrough", func(t *testing.T) {
		entity := entities.NewErrorDetail("trap", "x")
		assert.Same(t, entity, ToErrorDetail(entity))
	})

	t.Run("busy", func(t *testing.T) {
		assert.Equal(t, "busy", ToErrorDetail(ErrEngineBusy).Type)
	})

	t.Run("generic", func(t *testing.T) {
		detail := ToErrorDetail(errors.New("plain"))
		assert.Equal(t, "internal", detail.Type)
		assert.Equal(t, "plain", detail.Message)
	})
}
