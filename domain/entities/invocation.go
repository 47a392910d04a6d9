package entities

// Invocation is the single pending guest-call request of an engine.
// The guest pulls it back through the __guest_request import after being told
// the lengths of Operation and Payload.
type Invocation struct {
	// Operation is the name of the guest operation being invoked.
	Operation string

	// Payload is the opaque request body.
	Payload []byte
}

// NewInvocation creates an Invocation. The payload is referenced, not copied.
func NewInvocation(operation string, payload []byte) *Invocation {
	return &Invocation{
		Operation: operation,
		Payload:   payload,
	}
}

// OperationLen returns the byte length of the operation name.
func (i *Invocation) OperationLen() uint32 {
	return uint32(len(i.Operation)) //nolint:gosec // G115: guest lengths are 32-bit
}

// PayloadLen returns the byte length of the payload.
func (i *Invocation) PayloadLen() uint32 {
	return uint32(len(i.Payload)) //nolint:gosec // G115: guest lengths are 32-bit
}
