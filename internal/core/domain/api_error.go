package domain

import "time"

// TimestampLayout renders timestamps as ISO-8601 in UTC with millisecond
// precision, e.g. 2024-05-01T10:00:00.000Z.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// FormatTimestamp formats t with TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// APIError is the user-facing record of a terminal request failure.
type APIError struct {
	Message    string `json:"message"`
	StatusCode int    `json:"statusCode"`
	Timestamp  string `json:"timestamp"`
	Path       string `json:"path,omitempty"`
}

// Snapshot is a point-in-time copy of the shared error/loading state.
type Snapshot struct {
	Error      *APIError `json:"error"`
	Loading    bool      `json:"loading"`
	RetryCount int       `json:"retryCount"`
}
