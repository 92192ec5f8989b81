package domain

import (
	"errors"
	"fmt"
)

// StatusConnectivity is the status code carried by failures where no server
// response was received.
const StatusConnectivity = 0

// Failure is a request failure as seen at the transport boundary.
type Failure struct {
	StatusCode   int    // 0 when no response was received
	Message      string // server-provided message, if any
	Connectivity bool   // true when the request never reached a server
	Cause        error
}

func (f *Failure) Error() string {
	if f == nil {
		return "<nil>"
	}
	if f.Connectivity {
		if f.Cause != nil {
			return fmt.Sprintf("connectivity failure: %v", f.Cause)
		}
		return "connectivity failure"
	}
	if f.Message != "" {
		return fmt.Sprintf("http %d: %s", f.StatusCode, f.Message)
	}
	return fmt.Sprintf("http %d", f.StatusCode)
}

func (f *Failure) Unwrap() error { return f.Cause }

// Retriable reports whether the failure is transient.
func (f *Failure) Retriable() bool {
	return IsRetriableStatus(f.StatusCode)
}

// IsRetriableStatus reports whether a status code is eligible for retry:
// network-level failures (0), 503 and 504.
func IsRetriableStatus(code int) bool {
	switch code {
	case StatusConnectivity, 503, 504:
		return true
	default:
		return false
	}
}

// AsFailure extracts a *Failure from an error chain.
func AsFailure(err error) (*Failure, bool) {
	var f *Failure
	if errors.As(err, &f) && f != nil {
		return f, true
	}
	return nil, false
}

// StatusOf returns the status code of err, or 0 for errors that carry none.
func StatusOf(err error) int {
	if f, ok := AsFailure(err); ok {
		return f.StatusCode
	}
	return StatusConnectivity
}
