package host

import (
	"github.com/reglet-dev/wapc-host/domain/entities"
	"github.com/reglet-dev/wapc-host/domain/errors"
)

// callState is the per-engine invocation state. It is only touched by the
// goroutine running the current guest call, which the busy flag makes unique.
type callState struct {
	invocation *entities.Invocation

	response   []byte
	guestErr   string
	guestErred bool

	hostCall    entities.HostCallRecord
	hostCallKey entities.HostCallKey

	// fault is the first marshalling error of the call.
	fault *errors.MarshallingError
}

func (s *callState) begin(operation string, payload []byte) {
	s.reset()
	s.invocation = entities.NewInvocation(operation, payload)
}

func (s *callState) reset() {
	*s = callState{}
}

func (s *callState) setResponse(b []byte) {
	s.response = b
}

func (s *callState) setGuestError(msg string) {
	s.guestErr = msg
	s.guestErred = true
}

func (s *callState) recordFault(err *errors.MarshallingError) {
	if s.fault == nil {
		s.fault = err
	}
}

// outcome resolves the result of __guest_call from its return value and the
// state the guest left behind.
func (s *callState) outcome(operation string, results []uint64, callErr error) entities.CallOutcome {
	if s.fault != nil {
		return entities.Failure(s.fault)
	}

	succeeded := callErr == nil && len(results) > 0 && uint32(results[0]) != 0 //nolint:gosec // i32 result
	if s.guestErred {
		return entities.Failure(&errors.GuestError{Operation: operation, Message: s.guestErr})
	}
	if succeeded {
		return entities.Success(s.response)
	}
	if s.hostCall.Failed {
		return entities.Failure(&errors.HostCallError{Key: s.hostCallKey, Message: s.hostCall.Err})
	}
	return entities.Failure(&errors.TrapError{Err: callErr, Operation: operation})
}
