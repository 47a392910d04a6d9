package testutil

import (
	"testing"

	"github.com/reglet-dev/wapc-host/domain/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RequireSuccess asserts that the outcome succeeded and returns its payload.
func RequireSuccess(t *testing.T, outcome entities.CallOutcome, msgAndArgs ...interface{}) []byte {
	t.Helper()
	require.NoError(t, outcome.Err, msgAndArgs...)
	return outcome.Payload
}

// AssertSuccessPayload asserts that the outcome succeeded with exactly the expected payload.
func AssertSuccessPayload(t *testing.T, expected []byte, outcome entities.CallOutcome, msgAndArgs ...interface{}) {
	t.Helper()
	if assert.NoError(t, outcome.Err, msgAndArgs...) {
		assert.Equal(t, expected, outcome.Payload, msgAndArgs...)
	}
}

// RequireFailureAs asserts that the outcome failed with an error assignable to target
// (a pointer to an error type, as for errors.As).
func RequireFailureAs(t *testing.T, outcome entities.CallOutcome, target interface{}, msgAndArgs ...interface{}) {
	t.Helper()
	require.Error(t, outcome.Err, msgAndArgs...)
	require.ErrorAs(t, outcome.Err, target, msgAndArgs...)
	assert.Nil(t, outcome.Payload, "a failed outcome carries no payload")
}

// AssertFailureMessage asserts that the outcome failed with exactly the given message.
func AssertFailureMessage(t *testing.T, expected string, outcome entities.CallOutcome, msgAndArgs ...interface{}) {
	t.Helper()
	if assert.False(t, outcome.OK(), msgAndArgs...) {
		assert.Equal(t, expected, outcome.Message(), msgAndArgs...)
	}
}
