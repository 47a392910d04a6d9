package entities

// HostCallKey identifies a host-callable operation.
// Keys compare byte-wise on all three fields and are valid map keys.
type HostCallKey struct {
	Binding   string
	Namespace string
	Operation string
}

// NewHostCallKey creates a HostCallKey.
func NewHostCallKey(binding, namespace, operation string) HostCallKey {
	return HostCallKey{
		Binding:   binding,
		Namespace: namespace,
		Operation: operation,
	}
}

// String renders the key as binding/namespace/operation.
func (k HostCallKey) String() string {
	return k.Binding + "/" + k.Namespace + "/" + k.Operation
}

// Less orders keys by binding, then namespace, then operation.
func (k HostCallKey) Less(other HostCallKey) bool {
	if k.Binding != other.Binding {
		return k.Binding < other.Binding
	}
	if k.Namespace != other.Namespace {
		return k.Namespace < other.Namespace
	}
	return k.Operation < other.Operation
}

// HostCallRecord holds the result of the most recent guest-initiated host call
// until the guest pulls it back through __host_response or __host_error.
type HostCallRecord struct {
	// Response is the handler's payload when the call succeeded.
	Response []byte

	// Err is the failure message when the call failed.
	Err string

	// Failed is set when Err is meaningful (an empty message is still a failure).
	Failed bool
}

// Succeed stores a successful host call result, clearing any previous error.
func (r *HostCallRecord) Succeed(response []byte) {
	r.Response = response
	r.Err = ""
	r.Failed = false
}

// Fail stores a failed host call result, clearing any previous response.
func (r *HostCallRecord) Fail(message string) {
	r.Response = nil
	r.Err = message
	r.Failed = true
}

// Reset clears the record.
func (r *HostCallRecord) Reset() {
	*r = HostCallRecord{}
}
