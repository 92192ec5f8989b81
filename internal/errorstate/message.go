package errorstate

import "github.com/vietddude/httpguard/internal/core/domain"

// Message extracts the user-facing message for a failure.
//
// Connectivity failures, and errors that carry no status at all, read
// "Client Error: <cause>". Server failures use the server-provided message
// and fall back to a generic one.
func Message(err error) string {
	if err == nil {
		return fallbackMessage
	}

	f, ok := domain.AsFailure(err)
	if !ok {
		return clientErrorPrefix + err.Error()
	}
	if f.Connectivity {
		if f.Cause != nil {
			return clientErrorPrefix + f.Cause.Error()
		}
		return clientErrorPrefix + "network request failed"
	}
	if f.Message != "" {
		return f.Message
	}
	return fallbackMessage
}

// Severity is the display class of an error banner.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

// SeverityFor maps a status code to its display class.
func SeverityFor(status int) Severity {
	switch {
	case status >= 500:
		return SeverityCritical
	case status >= 400:
		return SeverityWarning
	default:
		return SeverityInfo
	}
}
