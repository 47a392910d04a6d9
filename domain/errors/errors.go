// Package errors provides the error taxonomy of the waPC host engine.
// All error types support error unwrapping via errors.As() and errors.Is().
package errors

import (
	stdErrors "errors"
	"fmt"

	"github.com/reglet-dev/wapc-host/domain/entities"
)

// ErrorDetail is an alias to entities.ErrorDetail for convenience.
type ErrorDetail = entities.ErrorDetail

var (
	// ErrEngineBusy is returned when a guest call is attempted while another call
	// is in flight on the same engine.
	ErrEngineBusy = stdErrors.New("engine is busy with another guest call")

	// ErrEngineClosed is returned when a guest call is attempted on a closed engine.
	ErrEngineClosed = stdErrors.New("engine is closed")
)

// DetailedError is an interface for custom error types that can convert themselves
// to a structured ErrorDetail.
type DetailedError interface {
	error
	ToErrorDetail() *entities.ErrorDetail
}

// ToErrorDetail converts a Go error to our structured ErrorDetail.
// This function recognizes custom error types and categorizes them appropriately.
func ToErrorDetail(err error) *entities.ErrorDetail {
	if err == nil {
		return nil
	}

	var e *entities.ErrorDetail
	if stdErrors.As(err, &e) {
		return e
	}

	var de DetailedError
	if stdErrors.As(err, &de) {
		return de.ToErrorDetail()
	}

	if stdErrors.Is(err, ErrEngineBusy) {
		return entities.NewErrorDetail("busy", err.Error())
	}

	return entities.NewErrorDetail("internal", err.Error())
}

// Phases of engine construction reported by InstantiationError.
const (
	PhaseCompile     = "compile"
	PhaseImports     = "imports"
	PhaseInstantiate = "instantiate"
)

// InstantiationError represents a fatal failure while constructing an engine.
type InstantiationError struct {
	Err   error
	Phase string
}

func (e *InstantiationError) Error() string {
	return fmt.Sprintf("instantiation failed during %s: %v", e.Phase, e.Err)
}

func (e *InstantiationError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *InstantiationError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "instantiation", Code: e.Phase}
}

// ImportWarning reports an optional import the guest did not declare.
// It is logged, never returned.
type ImportWarning struct {
	Namespace string
	Name      string
}

func (e *ImportWarning) Error() string {
	return fmt.Sprintf("guest does not import %s.%s, capability unavailable", e.Namespace, e.Name)
}

// ToErrorDetail implements DetailedError.
func (e *ImportWarning) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "import", Code: e.Name}
}

// MarshallingError represents an invalid UTF-8 sequence or an out-of-bounds
// memory access while moving data across the host/guest boundary.
type MarshallingError struct {
	Err    error
	Import string // import function that was executing
	Detail string
}

func (e *MarshallingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Import, e.Detail, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Import, e.Detail)
}

func (e *MarshallingError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *MarshallingError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "marshalling", Code: e.Import}
}

// DispatchMissError is returned when the guest calls a host operation that has
// no registered handler.
type DispatchMissError struct {
	Key entities.HostCallKey
}

func (e *DispatchMissError) Error() string {
	return fmt.Sprintf("no handler registered for binding %q, namespace %q, operation %q",
		e.Key.Binding, e.Key.Namespace, e.Key.Operation)
}

// ToErrorDetail implements DetailedError.
func (e *DispatchMissError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "dispatch", Code: e.Key.String(), IsNotFound: true}
}

// GuestError carries the error a guest explicitly reported for the current call.
// Error returns the guest's message verbatim.
type GuestError struct {
	Operation string
	Message   string
}

func (e *GuestError) Error() string {
	return e.Message
}

// ToErrorDetail implements DetailedError.
func (e *GuestError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Message, Type: "guest", Code: e.Operation}
}

// HostCallError carries the error text of the last failed host call when the
// guest call failed without reporting an error of its own.
// Error returns the recorded message verbatim.
type HostCallError struct {
	Key     entities.HostCallKey
	Message string
}

func (e *HostCallError) Error() string {
	return e.Message
}

// ToErrorDetail implements DetailedError.
func (e *HostCallError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Message, Type: "host_call", Code: e.Key.String()}
}

// TrapError represents a guest call that trapped, returned a failure code without
// reporting an error, or could not be started.
type TrapError struct {
	Err       error
	Operation string
}

func (e *TrapError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("guest call %q failed: %v", e.Operation, e.Err)
	}
	return fmt.Sprintf("guest call %q failed without reporting an error", e.Operation)
}

func (e *TrapError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *TrapError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "trap", Code: e.Operation}
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Err   error
	Field string
}

func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("config validation failed for field '%s': %v", e.Field, e.Err)
	}
	return fmt.Sprintf("config validation failed: %v", e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *ConfigError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "config", Code: e.Field}
}
