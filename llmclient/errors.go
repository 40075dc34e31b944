package llmclient

import "fmt"

// AuthError indicates no credential was configured. The client
// short-circuits before issuing any network call.
type AuthError struct{}

func (e *AuthError) Error() string {
	return "no API credential configured"
}

// ServiceError indicates the completion service returned a non-2xx
// status. Message carries the response body.
type ServiceError struct {
	StatusCode int
	Message    string
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("completion service error [%d]: %s", e.StatusCode, e.Message)
}

// TransportError indicates a network-level failure before any status
// was received.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("completion service unreachable: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// MalformedResponseError indicates a 2xx response whose body did not
// contain the expected reply field.
type MalformedResponseError struct {
	Reason string
}

func (e *MalformedResponseError) Error() string {
	return "unexpected completion response: " + e.Reason
}
