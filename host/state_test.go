package host

import (
	stdErrors "errors"
	"testing"

	"github.com/reglet-dev/wapc-host/domain/entities"
	"github.com/reglet-dev/wapc-host/domain/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCallState_Outcome(t *testing.T) {
	trap := stdErrors.New("wasm error: unreachable")
	key := entities.NewHostCallKey("b", "ns", "op")
	fault := &errors.MarshallingError{Import: ImportConsoleLog, Detail: "log line is not valid UTF-8"}

	tests := []struct {
		name    string
		setup   func(s *callState)
		results []uint64
		callErr error
		check   func(t *testing.T, o entities.CallOutcome)
	}{
		{
			name:    "success with response",
			setup:   func(s *callState) { s.setResponse([]byte("ok")) },
			results: []uint64{1},
			check: func(t *testing.T, o entities.CallOutcome) {
				assert.Equal(t, entities.Success([]byte("ok")), o)
			},
		},
		{
			name:    "success without response",
			setup:   func(*callState) {},
			results: []uint64{1},
			check: func(t *testing.T, o entities.CallOutcome) {
				assert.Equal(t, []byte{}, o.Payload)
				assert.NoError(t, o.Err)
			},
		},
		{
			name: "guest error wins over success",
			setup: func(s *callState) {
				s.setResponse([]byte("ok"))
				s.setGuestError("bad")
			},
			results: []uint64{1},
			check: func(t *testing.T, o entities.CallOutcome) {
				var ge *errors.GuestError
				require.ErrorAs(t, o.Err, &ge)
				assert.Equal(t, "bad", ge.Message)
			},
		},
		{
			name: "guest error wins over host error",
			setup: func(s *callState) {
				s.hostCall.Fail("host")
				s.setGuestError("guest")
			},
			results: []uint64{0},
			check: func(t *testing.T, o entities.CallOutcome) {
				assert.Equal(t, "guest", o.Message())
			},
		},
		{
			name: "host error on zero return",
			setup: func(s *callState) {
				s.hostCallKey = key
				s.hostCall.Fail("host")
			},
			results: []uint64{0},
			check: func(t *testing.T, o entities.CallOutcome) {
				var he *errors.HostCallError
				require.ErrorAs(t, o.Err, &he)
				assert.Equal(t, key, he.Key)
				assert.Equal(t, "host", he.Message)
			},
		},
		{
			name: "host error on trap",
			setup: func(s *callState) {
				s.hostCall.Fail("host")
			},
			callErr: trap,
			check: func(t *testing.T, o entities.CallOutcome) {
				assert.Equal(t, "host", o.Message())
			},
		},
		{
			name:    "trap",
			setup:   func(*callState) {},
			callErr: trap,
			check: func(t *testing.T, o entities.CallOutcome) {
				var te *errors.TrapError
				require.ErrorAs(t, o.Err, &te)
				assert.ErrorIs(t, o.Err, trap)
			},
		},
		{
			name:    "zero return without errors",
			setup:   func(s *callState) { s.setResponse([]byte("ignored")) },
			results: []uint64{0},
			check: func(t *testing.T, o entities.CallOutcome) {
				var te *errors.TrapError
				require.ErrorAs(t, o.Err, &te)
				assert.Nil(t, te.Err)
				assert.Nil(t, o.Payload)
			},
		},
		{
			name: "marshalling fault wins",
			setup: func(s *callState) {
				s.setGuestError("guest")
				s.recordFault(fault)
				s.recordFault(&errors.MarshallingError{Import: "second"})
			},
			results: []uint64{1},
			check: func(t *testing.T, o entities.CallOutcome) {
				assert.Same(t, fault, o.Err)
			},
		},
		{
			name:    "nonzero upper bits ignored",
			setup:   func(*callState) {},
			results: []uint64{1 << 32},
			check: func(t *testing.T, o entities.CallOutcome) {
				assert.False(t, o.OK())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s callState
			s.begin("op", nil)
			tt.setup(&s)
			tt.check(t, s.outcome("op", tt.results, tt.callErr))
		})
	}
}

func TestCallState_BeginResets(t *testing.T) {
	var s callState
	s.begin("first", []byte("p"))
	s.setResponse([]byte("r"))
	s.setGuestError("e")
	s.hostCall.Succeed([]byte("h"))
	s.recordFault(&errors.MarshallingError{})

	s.begin("second", nil)

	assert.Equal(t, "second", s.invocation.Operation)
	assert.Nil(t, s.response)
	assert.False(t, s.guestErred)
	assert.Equal(t, entities.HostCallRecord{}, s.hostCall)
	assert.Nil(t, s.fault)

	s.reset()
	assert.Nil(t, s.invocation)
}
