package entities

// CallOutcome is the result of a completed guest call.
// Exactly one of Payload (success) or Err (failure) is meaningful.
type CallOutcome struct {
	// Err is non-nil when the call failed.
	Err error

	// Payload is the response the guest reported on success.
	Payload []byte
}

// Success creates a successful CallOutcome. A nil payload is normalized to an empty slice.
func Success(payload []byte) CallOutcome {
	if payload == nil {
		payload = []byte{}
	}
	return CallOutcome{Payload: payload}
}

// Failure creates a failed CallOutcome.
func Failure(err error) CallOutcome {
	return CallOutcome{Err: err}
}

// OK reports whether the call succeeded.
func (o CallOutcome) OK() bool {
	return o.Err == nil
}

// Message returns the failure text, or an empty string on success.
func (o CallOutcome) Message() string {
	if o.Err == nil {
		return ""
	}
	return o.Err.Error()
}

// Unpack returns the outcome in the conventional (value, error) form.
func (o CallOutcome) Unpack() ([]byte, error) {
	if o.Err != nil {
		return nil, o.Err
	}
	return o.Payload, nil
}
