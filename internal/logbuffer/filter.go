package logbuffer

import (
	"strings"

	"github.com/samber/lo"

	"github.com/vietddude/httpguard/internal/core/domain"
)

// Filter returns the entries whose level equals level. "all" or an empty
// level returns every entry; an unknown level matches nothing.
func Filter(entries []domain.LogEntry, level string) []domain.LogEntry {
	if level == "" || strings.EqualFold(level, "all") {
		return append([]domain.LogEntry{}, entries...)
	}
	want, err := domain.ParseLogLevel(level)
	if err != nil {
		return []domain.LogEntry{}
	}
	return lo.Filter(entries, func(e domain.LogEntry, _ int) bool {
		return e.Level == want
	})
}

// AtLeast returns the entries at least as severe as level.
func AtLeast(entries []domain.LogEntry, level domain.LogLevel) []domain.LogEntry {
	return lo.Filter(entries, func(e domain.LogEntry, _ int) bool {
		return e.Level.Valid() && e.Level.Severity() <= level.Severity()
	})
}
