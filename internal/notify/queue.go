// Package notify implements the transient notification (toast) queue.
package notify

import (
	"slices"
	"sync"
	"time"

	"github.com/vietddude/httpguard/internal/core/domain"
	"github.com/vietddude/httpguard/internal/core/observe"
	"github.com/vietddude/httpguard/internal/metrics"
)

// DefaultDuration is the lifetime of a toast shown with Info.
const DefaultDuration = 5 * time.Second

// Queue holds the live toasts in display order and expires them on timers.
type Queue struct {
	mu     sync.Mutex
	nextID int64
	toasts []domain.Toast
	timers map[int64]*time.Timer
	closed bool

	observers observe.Registry[[]domain.Toast]
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{
		timers: make(map[int64]*time.Timer),
	}
}

// Show appends a toast and returns its id. When d > 0 the toast is removed
// automatically once d elapses; d <= 0 keeps it until Remove is called.
func (q *Queue) Show(message string, typ domain.ToastType, d time.Duration) int64 {
	if !typ.Valid() {
		typ = domain.ToastInfo
	}
	if d < 0 {
		d = 0
	}

	q.mu.Lock()
	q.nextID++
	id := q.nextID
	q.toasts = append(q.toasts, domain.Toast{
		ID:       id,
		Message:  message,
		Type:     typ,
		Duration: d,
	})
	if d > 0 && !q.closed {
		q.timers[id] = time.AfterFunc(d, func() { q.Remove(id) })
	}
	active := len(q.toasts)
	q.mu.Unlock()

	metrics.ToastsShown.WithLabelValues(string(typ)).Inc()
	metrics.ToastsActive.Set(float64(active))
	q.observers.PublishLatest(q.Active)
	return id
}

// Info shows an info toast with DefaultDuration.
func (q *Queue) Info(message string) int64 {
	return q.Show(message, domain.ToastInfo, DefaultDuration)
}

// Remove deletes the toast with the given id and cancels its timer.
// Removing an unknown or already removed id is a no-op.
func (q *Queue) Remove(id int64) {
	q.mu.Lock()
	idx := slices.IndexFunc(q.toasts, func(t domain.Toast) bool { return t.ID == id })
	if idx < 0 {
		q.mu.Unlock()
		return
	}
	q.toasts = slices.Delete(q.toasts, idx, idx+1)
	if timer, ok := q.timers[id]; ok {
		timer.Stop()
		delete(q.timers, id)
	}
	active := len(q.toasts)
	q.mu.Unlock()

	metrics.ToastsActive.Set(float64(active))
	q.observers.PublishLatest(q.Active)
}

// Active returns a copy of the live toasts in display order.
func (q *Queue) Active() []domain.Toast {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.snapshotLocked()
}

// Subscribe registers fn to receive the toast list after every change.
func (q *Queue) Subscribe(fn func([]domain.Toast)) (unsubscribe func()) {
	return q.observers.Subscribe(fn)
}

// Close stops every pending expiry timer. Toasts already shown stay in the
// queue; toasts shown afterwards never expire.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	for id, timer := range q.timers {
		timer.Stop()
		delete(q.timers, id)
	}
}

func (q *Queue) snapshotLocked() []domain.Toast {
	out := make([]domain.Toast, len(q.toasts))
	copy(out, q.toasts)
	return out
}
