package client

import "errors"

var (
	// ErrUnauthenticated is returned when the backend rejects the request
	// with HTTP 401. The session has been cleared by the time the caller
	// sees this error.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrForbidden is returned when the backend rejects the request with
	// HTTP 403.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound is returned when the backend responds with HTTP 404.
	ErrNotFound = errors.New("resource not found")
	// ErrServerError is returned when the backend responds with any 5xx
	// status.
	ErrServerError = errors.New("server error")
	// ErrTimeout is returned when no response arrives within the client's
	// configured deadline.
	ErrTimeout = errors.New("request timed out")
	// ErrNetworkUnreachable is returned when no response object was
	// received at all (connection refused, DNS failure, reset).
	ErrNetworkUnreachable = errors.New("network unreachable")
	// ErrEnvelopeInvalid is returned when a 2xx response body does not
	// carry a recognizable success indicator.
	ErrEnvelopeInvalid = errors.New("invalid response envelope")
)

// defaultBusinessMessage is used when the server omits the envelope message.
const defaultBusinessMessage = "request failed"

// BusinessError is a domain-level rejection: the transport succeeded but the
// envelope's success indicator denotes failure. Message carries the
// server-supplied reason unmodified for display.
type BusinessError struct {
	Message string
}

// Error returns the server-supplied message verbatim.
func (e *BusinessError) Error() string {
	if e == nil || e.Message == "" {
		return defaultBusinessMessage
	}
	return e.Message
}

// NewBusinessError creates a BusinessError, substituting the default message
// when the server supplied none.
func NewBusinessError(message string) *BusinessError {
	if message == "" {
		message = defaultBusinessMessage
	}
	return &BusinessError{Message: message}
}
