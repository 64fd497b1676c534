package api

import "errors"

var (
	// ErrNoCredential indicates no bearer token is available; raised
	// client-side before any network call is attempted.
	ErrNoCredential = errors.New("not signed in")

	// ErrUnauthorized indicates the backend rejected the bearer token.
	ErrUnauthorized = errors.New("session expired")

	// ErrBackendUnavailable indicates the backend is unreachable.
	ErrBackendUnavailable = errors.New("backend unavailable")

	// ErrTimeout indicates the request exceeded the configured timeout.
	ErrTimeout = errors.New("request timed out")

	// ErrRetryExhausted indicates all retry attempts have been exhausted.
	ErrRetryExhausted = errors.New("retry attempts exhausted")
)

// StatusError carries a non-2xx response with the server-provided
// message when the body parsed as {"message": …}.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return e.Message
}

// ServerMessage extracts the backend's own error message from err, or
// returns "" when err carries none.
func ServerMessage(err error) string {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Message
	}
	return ""
}
