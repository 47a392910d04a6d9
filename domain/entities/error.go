package entities

import "fmt"

// ErrorDetail is the flat, serializable form of an engine error.
// Types: "instantiation", "import", "marshalling", "dispatch", "guest", "host_call",
// "trap", "config", "busy", "internal".
type ErrorDetail struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	// Code narrows Type: the phase, import name, operation or host-call key involved.
	Code string `json:"code,omitempty"`
	// IsNotFound marks a host call for an unregistered key.
	IsNotFound bool `json:"is_not_found,omitempty"`
}

func (e *ErrorDetail) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Message
	if e.Type != "" && e.Type != "internal" {
		msg = fmt.Sprintf("%s: %s", e.Type, msg)
	}
	if e.Code != "" {
		msg = fmt.Sprintf("%s [%s]", msg, e.Code)
	}
	return msg
}

// NewErrorDetail creates an ErrorDetail with the given type and message.
func NewErrorDetail(errorType, message string) *ErrorDetail {
	return &ErrorDetail{Type: errorType, Message: message}
}

// WithCode sets the code and returns the receiver.
func (e *ErrorDetail) WithCode(code string) *ErrorDetail {
	e.Code = code
	return e
}
