package domain

import (
	"fmt"
	"strings"
)

type LogLevel string

const (
	LevelError LogLevel = "error"
	LevelWarn  LogLevel = "warn"
	LevelInfo  LogLevel = "info"
	LevelDebug LogLevel = "debug"
)

// Severity ranks levels; lower is more severe (error=0 ... debug=3).
// Unknown levels rank below debug.
func (l LogLevel) Severity() int {
	switch l {
	case LevelError:
		return 0
	case LevelWarn:
		return 1
	case LevelInfo:
		return 2
	case LevelDebug:
		return 3
	default:
		return 4
	}
}

func (l LogLevel) Valid() bool { return l.Severity() < 4 }

// ParseLogLevel accepts the level names case-insensitively, plus "warning".
func ParseLogLevel(s string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "error":
		return LevelError, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "info":
		return LevelInfo, nil
	case "debug":
		return LevelDebug, nil
	}
	return "", fmt.Errorf("unknown log level %q", s)
}

// LogEntry is a single structured record in the local log history.
type LogEntry struct {
	Level     LogLevel       `json:"level"`
	Message   string         `json:"message"`
	Timestamp string         `json:"timestamp"`
	Context   map[string]any `json:"context,omitempty"`
	UserID    string         `json:"userId,omitempty"`
	UserAgent string         `json:"userAgent,omitempty"`
	URL       string         `json:"url,omitempty"`
}
