package control

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/vietddude/httpguard/internal/core/domain"
)

type event struct {
	name string
	data any
}

// eventOrder is the write order of a batch of pending events.
var eventOrder = []string{"state", "toasts"}

// eventSlots keeps the newest undelivered value per event name. A newer value
// replaces an older one, so slow clients skip intermediate values but always
// receive the latest.
type eventSlots struct {
	mu      sync.Mutex
	pending map[string]any
	ready   chan struct{}
}

func newEventSlots() *eventSlots {
	return &eventSlots{
		pending: make(map[string]any),
		ready:   make(chan struct{}, 1),
	}
}

func (e *eventSlots) put(name string, data any) {
	e.mu.Lock()
	e.pending[name] = data
	e.mu.Unlock()

	select {
	case e.ready <- struct{}{}:
	default:
	}
}

// take empties the slots and returns their values in eventOrder.
func (e *eventSlots) take() []event {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]event, 0, len(e.pending))
	for _, name := range eventOrder {
		if data, ok := e.pending[name]; ok {
			out = append(out, event{name, data})
			delete(e.pending, name)
		}
	}
	return out
}

// handleEvents streams state and toast changes as Server-Sent Events.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	slots := newEventSlots()
	unsubState := s.state.Subscribe(func(snap domain.Snapshot) { slots.put("state", s.view(snap)) })
	defer unsubState()
	unsubToasts := s.toasts.Subscribe(func(toasts []domain.Toast) { slots.put("toasts", toasts) })
	defer unsubToasts()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	// initial state so clients need no separate GET
	slots.put("state", s.view(s.state.Snapshot()))
	slots.put("toasts", s.toasts.Active())

	for {
		select {
		case <-r.Context().Done():
			return
		case <-slots.ready:
			for _, e := range slots.take() {
				data, err := json.Marshal(e.data)
				if err != nil {
					s.log.Warn("Failed to encode event", "event", e.name, "error", err)
					continue
				}
				if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", e.name, data); err != nil {
					return
				}
			}
			flusher.Flush()
		}
	}
}
