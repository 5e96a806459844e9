package voice

import "fmt"

// AdapterError codes.
const (
	CodeNotConfigured = "not_configured"
	CodeAlreadyActive = "already_active"
	CodeProvider      = "provider_error"
)

// AdapterError is returned by StartCall/EndCall for configuration and
// sequencing failures. Runtime provider failures are never returned
// synchronously; they surface through ErrorEvent instead.
type AdapterError struct {
	Code    string
	Message string
}

func (e *AdapterError) Error() string {
	return fmt.Sprintf("voice adapter: %s (code: %s)", e.Message, e.Code)
}

func newNotConfiguredError(what string) *AdapterError {
	return &AdapterError{Code: CodeNotConfigured, Message: "missing " + what}
}

func newAlreadyActiveError() *AdapterError {
	return &AdapterError{Code: CodeAlreadyActive, Message: "a call is already active"}
}

// CallError records a provider-level failure on the call session.
type CallError struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

func (e *CallError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("call error: %s (code: %s)", e.Message, e.Code)
	}
	return "call error: " + e.Message
}
