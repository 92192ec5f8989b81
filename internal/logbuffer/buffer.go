// Package logbuffer records structured log entries into a bounded,
// persisted history and forwards them to diagnostic and remote sinks.
package logbuffer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"

	"github.com/vietddude/httpguard/internal/core/domain"
	"github.com/vietddude/httpguard/internal/infra/kv"
	"github.com/vietddude/httpguard/internal/metrics"
)

const (
	// DefaultCapacity is the maximum number of persisted entries.
	DefaultCapacity = 100
	// DefaultKey is the storage key holding the persisted entries.
	DefaultKey = "app_logs"
	// DefaultSendTimeout bounds a single remote delivery.
	DefaultSendTimeout = 5 * time.Second
)

// Sink receives entries outside development mode.
type Sink interface {
	Send(ctx context.Context, entry domain.LogEntry) error
}

// Config tunes the buffer.
type Config struct {
	Capacity    int
	Key         string
	UserAgent   string
	Development bool
	SendTimeout time.Duration
}

func (c *Config) setDefaults() {
	if c.Capacity <= 0 {
		c.Capacity = DefaultCapacity
	}
	if c.Key == "" {
		c.Key = DefaultKey
	}
	if c.SendTimeout <= 0 {
		c.SendTimeout = DefaultSendTimeout
	}
}

// Buffer is the bounded log history.
type Buffer struct {
	cfg    Config
	store  kv.Store
	sink   Sink
	logger *slog.Logger
	now    func() time.Time

	// mu serializes the read-append-write cycle on the store.
	mu      sync.Mutex
	pending sync.WaitGroup
}

// New creates a buffer persisting to store. sink may be nil; logger defaults
// to slog.Default().
func New(store kv.Store, sink Sink, logger *slog.Logger, cfg Config) *Buffer {
	cfg.setDefaults()
	if logger == nil {
		logger = slog.Default()
	}
	return &Buffer{
		cfg:    cfg,
		store:  store,
		sink:   sink,
		logger: logger,
		now:    time.Now,
	}
}

func (b *Buffer) Error(ctx context.Context, message string, fields map[string]any) {
	b.Record(ctx, domain.LevelError, message, fields)
}

func (b *Buffer) Warn(ctx context.Context, message string, fields map[string]any) {
	b.Record(ctx, domain.LevelWarn, message, fields)
}

func (b *Buffer) Info(ctx context.Context, message string, fields map[string]any) {
	b.Record(ctx, domain.LevelInfo, message, fields)
}

func (b *Buffer) Debug(ctx context.Context, message string, fields map[string]any) {
	b.Record(ctx, domain.LevelDebug, message, fields)
}

// Record builds an entry and dispatches it to every sink. It never fails:
// storage and delivery problems are logged and absorbed.
func (b *Buffer) Record(ctx context.Context, level domain.LogLevel, message string, fields map[string]any) {
	entry := domain.LogEntry{
		Level:     level,
		Message:   message,
		Timestamp: domain.FormatTimestamp(b.now()),
		Context:   fields,
		UserID:    userIDFrom(ctx),
		UserAgent: b.cfg.UserAgent,
		URL:       urlFrom(ctx),
	}
	metrics.LogEntriesRecorded.WithLabelValues(string(level)).Inc()

	b.mirror(ctx, entry)
	if !b.cfg.Development && b.sink != nil {
		b.forward(ctx, entry)
	}
	b.persist(ctx, entry)
}

func (b *Buffer) mirror(ctx context.Context, entry domain.LogEntry) {
	msg := fmt.Sprintf("[%s] %s: %s", entry.Timestamp, strings.ToUpper(string(entry.Level)), entry.Message)
	attrs := make([]slog.Attr, 0, len(entry.Context))
	for k, v := range entry.Context {
		attrs = append(attrs, slog.Any(k, v))
	}
	b.logger.LogAttrs(ctx, slogLevel(entry.Level), msg, attrs...)
}

func (b *Buffer) forward(ctx context.Context, entry domain.LogEntry) {
	b.pending.Add(1)
	go func() {
		defer b.pending.Done()
		sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), b.cfg.SendTimeout)
		defer cancel()
		if err := b.sink.Send(sendCtx, entry); err != nil {
			metrics.RemoteSinkFailures.Inc()
			b.logger.Warn("Remote log delivery failed", "error", err)
		}
	}()
}

func (b *Buffer) persist(ctx context.Context, entry domain.LogEntry) {
	b.mu.Lock()
	defer b.mu.Unlock()

	entries := b.load(ctx)
	entries = append(entries, entry)
	if over := len(entries) - b.cfg.Capacity; over > 0 {
		entries = entries[over:]
	}

	data, err := json.Marshal(entries)
	if err != nil {
		metrics.LogStorageErrors.WithLabelValues("encode").Inc()
		b.logger.Error("Error encoding stored logs", "error", err)
		return
	}
	if err := b.store.Set(ctx, b.cfg.Key, string(data)); err != nil {
		metrics.LogStorageErrors.WithLabelValues("write").Inc()
		b.logger.Error("Error saving log to storage", "error", err)
		return
	}
	metrics.LogBufferSize.Set(float64(len(entries)))
}

// load reads the persisted entries; missing or unreadable state is empty.
func (b *Buffer) load(ctx context.Context) []domain.LogEntry {
	raw, err := b.store.Get(ctx, b.cfg.Key)
	if errors.Is(err, kv.ErrNotFound) {
		return nil
	}
	if err != nil {
		metrics.LogStorageErrors.WithLabelValues("read").Inc()
		b.logger.Error("Error reading stored logs", "error", err)
		return nil
	}

	var entries []domain.LogEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		metrics.LogStorageErrors.WithLabelValues("decode").Inc()
		b.logger.Warn("Discarding unreadable stored logs", "error", err)
		return nil
	}
	return entries
}

// GetStoredLogs returns the persisted entries, oldest first.
func (b *Buffer) GetStoredLogs(ctx context.Context) []domain.LogEntry {
	b.mu.Lock()
	defer b.mu.Unlock()
	entries := b.load(ctx)
	if entries == nil {
		return []domain.LogEntry{}
	}
	return entries
}

// ClearStoredLogs removes the persisted history.
func (b *Buffer) ClearStoredLogs(ctx context.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.store.Remove(ctx, b.cfg.Key); err != nil {
		metrics.LogStorageErrors.WithLabelValues("remove").Inc()
		b.logger.Error("Error clearing stored logs", "error", err)
		return
	}
	metrics.LogBufferSize.Set(0)
}

// PruneOlderThan drops persisted entries recorded before cutoff and returns
// how many were dropped. Entries with unparseable timestamps are kept.
func (b *Buffer) PruneOlderThan(ctx context.Context, cutoff time.Time) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	entries := b.load(ctx)
	kept := lo.Filter(entries, func(e domain.LogEntry, _ int) bool {
		ts, err := time.Parse(domain.TimestampLayout, e.Timestamp)
		return err != nil || !ts.Before(cutoff)
	})
	dropped := len(entries) - len(kept)
	if dropped == 0 {
		return 0
	}

	data, err := json.Marshal(kept)
	if err != nil {
		metrics.LogStorageErrors.WithLabelValues("encode").Inc()
		b.logger.Error("Error encoding stored logs", "error", err)
		return 0
	}
	if err := b.store.Set(ctx, b.cfg.Key, string(data)); err != nil {
		metrics.LogStorageErrors.WithLabelValues("write").Inc()
		b.logger.Error("Error pruning stored logs", "error", err)
		return 0
	}
	metrics.LogBufferSize.Set(float64(len(kept)))
	return dropped
}

// Close waits for in-flight remote deliveries.
func (b *Buffer) Close() {
	b.pending.Wait()
}

func slogLevel(l domain.LogLevel) slog.Level {
	switch l {
	case domain.LevelError:
		return slog.LevelError
	case domain.LevelWarn:
		return slog.LevelWarn
	case domain.LevelDebug:
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}
