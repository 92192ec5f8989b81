// Package worker holds background maintenance loops.
package worker

import (
	"context"
	"log/slog"
	"time"
)

// LogPruner drops persisted log entries older than a cutoff.
type LogPruner interface {
	PruneOlderThan(ctx context.Context, cutoff time.Time) int
}

// Pruner deletes old log history based on a retention period.
type Pruner struct {
	retention time.Duration
	logs      LogPruner
	now       func() time.Time
}

// NewPruner creates a new Pruner worker.
func NewPruner(retention time.Duration, logs LogPruner) *Pruner {
	return &Pruner{
		retention: retention,
		logs:      logs,
		now:       time.Now,
	}
}

// Interval is how often the pruner runs: a tenth of the retention period,
// clamped to [1m, 1h].
func (p *Pruner) Interval() time.Duration {
	interval := min(p.retention/10, 1*time.Hour)
	return max(interval, 1*time.Minute)
}

// Start runs the pruner loop until ctx is done.
func (p *Pruner) Start(ctx context.Context) {
	if p.retention <= 0 {
		return // Retention disabled
	}

	ticker := time.NewTicker(p.Interval())
	defer ticker.Stop()

	// Initial prune
	p.Prune(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Prune(ctx)
		}
	}
}

// Prune runs one pass and returns the number of dropped entries.
func (p *Pruner) Prune(ctx context.Context) int {
	cutoff := p.now().Add(-p.retention)
	n := p.logs.PruneOlderThan(ctx, cutoff)
	if n > 0 {
		slog.Debug("Pruned stored logs", "dropped", n, "cutoff", cutoff)
	}
	return n
}
