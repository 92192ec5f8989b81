package cli

import (
	"strings"
	"testing"

	"github.com/vietddude/httpguard/internal/core/domain"
)

func TestRenderLogs(t *testing.T) {
	table, err := renderLogs([]domain.LogEntry{
		{
			Level:     domain.LevelError,
			Message:   "HTTP request failed: http 503",
			Timestamp: "2024-01-02T03:04:05.000Z",
			URL:       "http://api.local/users",
			Context:   map[string]any{"status": 503},
		},
		{Level: domain.LevelInfo, Message: "hello", Timestamp: "2024-01-02T03:04:06.000Z"},
	})
	if err != nil {
		t.Fatalf("renderLogs failed: %v", err)
	}

	for _, want := range []string{"TIMESTAMP", "LEVEL", "HTTP request failed: http 503", `{"status":503}`, "hello"} {
		if !strings.Contains(table, want) {
			t.Errorf("table missing %q:\n%s", want, table)
		}
	}
	if lines := strings.Count(strings.TrimSpace(table), "\n") + 1; lines != 4 {
		t.Errorf("expected header, separator and 2 rows, got %d lines:\n%s", lines, table)
	}
}
