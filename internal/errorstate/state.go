// Package errorstate tracks the process-wide error, loading flag and retry
// budget shared by the request interceptor and the presentation layer.
package errorstate

import (
	"sync"
	"time"

	"github.com/vietddude/httpguard/internal/core/domain"
	"github.com/vietddude/httpguard/internal/core/observe"
)

const (
	// MaxRetries is the default retry budget per request cycle.
	MaxRetries = 3
	// ErrorToastDuration is the lifetime of the toast raised for a terminal failure.
	ErrorToastDuration = 7 * time.Second

	clientErrorPrefix = "Client Error: "
	fallbackMessage   = "Server Error. Please try again later."
)

// Notifier enqueues a user-facing notification.
type Notifier interface {
	Show(message string, typ domain.ToastType, d time.Duration) int64
}

// Config tunes the state. Zero values take the defaults above.
type Config struct {
	MaxRetries    int
	ToastDuration time.Duration
}

func (c *Config) setDefaults() {
	if c.MaxRetries <= 0 {
		c.MaxRetries = MaxRetries
	}
	if c.ToastDuration <= 0 {
		c.ToastDuration = ErrorToastDuration
	}
}

// State is the shared error/loading/retry state machine.
type State struct {
	cfg      Config
	notifier Notifier
	now      func() time.Time

	mu         sync.Mutex
	err        *domain.APIError
	loading    bool
	retryCount int
	inFlight   int

	observers observe.Registry[domain.Snapshot]
}

// New creates a State that raises toasts through notifier.
func New(notifier Notifier, cfg Config) *State {
	cfg.setDefaults()
	return &State{
		cfg:      cfg,
		notifier: notifier,
		now:      time.Now,
	}
}

// MaxRetries returns the configured retry budget.
func (s *State) MaxRetries() int { return s.cfg.MaxRetries }

// Snapshot returns a copy of the current state.
func (s *State) Snapshot() domain.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Error returns the current error, or nil.
func (s *State) Error() *domain.APIError { return s.Snapshot().Error }

// Loading reports whether a request is in flight.
func (s *State) Loading() bool { return s.Snapshot().Loading }

// RetryCount returns the retries recorded since the last reset.
func (s *State) RetryCount() int { return s.Snapshot().RetryCount }

// IsRetrying reports whether a retry sequence is in progress and has budget left.
func (s *State) IsRetrying() bool {
	n := s.RetryCount()
	return n > 0 && n < s.cfg.MaxRetries
}

// Subscribe registers fn to receive a snapshot after every change.
func (s *State) Subscribe(fn func(domain.Snapshot)) (unsubscribe func()) {
	return s.observers.Subscribe(fn)
}

// BeginCycle starts a request cycle. The retry counter is reset only when no
// other cycle is in flight, so concurrent requests never refill each other's
// retries. Loading starts and the previous error is cleared.
func (s *State) BeginCycle() {
	s.update(func() {
		if s.inFlight == 0 {
			s.retryCount = 0
		}
		s.inFlight++
		s.loading = true
		s.err = nil
	})
}

// EndCycle settles a cycle started with BeginCycle. Loading stops once the
// last in-flight cycle ends.
func (s *State) EndCycle() {
	s.update(func() {
		if s.inFlight > 0 {
			s.inFlight--
		}
		if s.inFlight == 0 {
			s.loading = false
		}
	})
}

// InFlight returns the number of open request cycles.
func (s *State) InFlight() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inFlight
}

// StartLoading marks a request as in flight and clears the previous error.
func (s *State) StartLoading() {
	s.update(func() {
		s.loading = true
		s.err = nil
	})
}

// StopLoading clears the loading flag.
func (s *State) StopLoading() {
	s.update(func() { s.loading = false })
}

// HandleError records a terminal failure and raises a toast for it. Loading
// stays on while cycles other than the failing one are still in flight.
func (s *State) HandleError(err error, path string) {
	status := domain.StatusOf(err)
	apiErr := &domain.APIError{
		Message:    Message(err),
		StatusCode: status,
		Timestamp:  domain.FormatTimestamp(s.now()),
		Path:       path,
	}

	s.update(func() {
		s.err = apiErr
		s.loading = s.inFlight > 1
	})

	if s.notifier != nil {
		s.notifier.Show(apiErr.Message, domain.ToastTypeForStatus(status), s.cfg.ToastDuration)
	}
}

// IncrementRetry consumes one unit of retry budget. It returns false, leaving
// the counter unchanged, once the budget is exhausted.
func (s *State) IncrementRetry() bool {
	s.mu.Lock()
	if s.retryCount >= s.cfg.MaxRetries {
		s.mu.Unlock()
		return false
	}
	s.retryCount++
	s.mu.Unlock()

	s.observers.PublishLatest(s.Snapshot)
	return true
}

// ResetRetries restores the full retry budget.
func (s *State) ResetRetries() {
	s.update(func() { s.retryCount = 0 })
}

// ClearError drops the current error without touching loading or retries.
func (s *State) ClearError() {
	s.update(func() { s.err = nil })
}

// Retry prepares a manual restart of a failed flow.
func (s *State) Retry() {
	s.update(func() {
		s.retryCount = 0
		s.err = nil
	})
}

func (s *State) update(fn func()) {
	s.mu.Lock()
	fn()
	s.mu.Unlock()

	s.observers.PublishLatest(s.Snapshot)
}

func (s *State) snapshotLocked() domain.Snapshot {
	snap := domain.Snapshot{
		Loading:    s.loading,
		RetryCount: s.retryCount,
	}
	if s.err != nil {
		e := *s.err
		snap.Error = &e
	}
	return snap
}
