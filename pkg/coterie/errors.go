package coterie

import (
	"errors"
	"fmt"
)

// ErrRequestFailed matches every RequestFailedError via errors.Is.
var ErrRequestFailed = errors.New("request failed")

// RequestFailedError covers transport failures, non-2xx statuses and
// undecodable bodies. Message is safe to show to visitors.
type RequestFailedError struct {
	Endpoint string
	Status   int
	Message  string
	Err      error
}

func (e *RequestFailedError) Error() string {
	return e.Message
}

func (e *RequestFailedError) Unwrap() error {
	return e.Err
}

func (e *RequestFailedError) Is(target error) bool {
	return target == ErrRequestFailed
}

func statusError(endpoint string, status int, message string) *RequestFailedError {
	if message == "" {
		message = fmt.Sprintf("HTTP %d", status)
	}
	return &RequestFailedError{Endpoint: endpoint, Status: status, Message: message}
}

// MessageOf returns the visitor-facing message of a RequestFailedError, or
// fallback for any other error.
func MessageOf(err error, fallback string) string {
	var rf *RequestFailedError
	if errors.As(err, &rf) && rf.Message != "" {
		return rf.Message
	}
	return fallback
}
