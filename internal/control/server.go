package control

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vietddude/httpguard/internal/core/domain"
	"github.com/vietddude/httpguard/internal/errorstate"
	"github.com/vietddude/httpguard/internal/logbuffer"
	"github.com/vietddude/httpguard/internal/notify"
)

// Server exposes the shared state, toasts and log history over HTTP.
type Server struct {
	state        *errorstate.State
	toasts       *notify.Queue
	logs         *logbuffer.Buffer
	toastDefault time.Duration
	log          *slog.Logger
	server       *http.Server
}

// NewServer creates the status server listening on port.
func NewServer(state *errorstate.State, toasts *notify.Queue, logs *logbuffer.Buffer, toastDefault time.Duration, port int) *Server {
	if toastDefault <= 0 {
		toastDefault = notify.DefaultDuration
	}
	s := &Server{
		state:        state,
		toasts:       toasts,
		logs:         logs,
		toastDefault: toastDefault,
		log:          slog.Default().With("component", "status-server"),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /state", s.handleState)
	mux.HandleFunc("POST /state/clear-error", s.handleClearError)
	mux.HandleFunc("POST /state/reset-retries", s.handleResetRetries)
	mux.HandleFunc("POST /state/retry", s.handleRetry)
	mux.HandleFunc("GET /toasts", s.handleListToasts)
	mux.HandleFunc("POST /toasts", s.handleShowToast)
	mux.HandleFunc("DELETE /toasts/{id}", s.handleRemoveToast)
	mux.HandleFunc("GET /logs", s.handleListLogs)
	mux.HandleFunc("DELETE /logs", s.handleClearLogs)
	mux.HandleFunc("GET /events", s.handleEvents)

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the routing handler.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Stop stops the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// stateView is the JSON shape of GET /state.
type stateView struct {
	domain.Snapshot
	Retrying   bool                `json:"retrying"`
	MaxRetries int                 `json:"maxRetries"`
	Severity   errorstate.Severity `json:"severity,omitempty"`
}

func (s *Server) view(snap domain.Snapshot) stateView {
	v := stateView{
		Snapshot:   snap,
		Retrying:   snap.RetryCount > 0 && snap.RetryCount < s.state.MaxRetries(),
		MaxRetries: s.state.MaxRetries(),
	}
	if snap.Error != nil {
		v.Severity = errorstate.SeverityFor(snap.Error.StatusCode)
	}
	return v
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	code := http.StatusOK
	if err := s.state.Error(); err != nil && domain.IsRetriableStatus(err.StatusCode) {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]string{"status": status})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.view(s.state.Snapshot()))
}

func (s *Server) handleClearError(w http.ResponseWriter, r *http.Request) {
	s.state.ClearError()
	writeJSON(w, http.StatusOK, s.view(s.state.Snapshot()))
}

func (s *Server) handleResetRetries(w http.ResponseWriter, r *http.Request) {
	s.state.ResetRetries()
	writeJSON(w, http.StatusOK, s.view(s.state.Snapshot()))
}

func (s *Server) handleRetry(w http.ResponseWriter, r *http.Request) {
	s.state.Retry()
	writeJSON(w, http.StatusOK, s.view(s.state.Snapshot()))
}

func (s *Server) handleListToasts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.toasts.Active())
}

type showToastRequest struct {
	Message    string           `json:"message"`
	Type       domain.ToastType `json:"type"`
	DurationMS *int64           `json:"duration_ms"`
}

func (s *Server) handleShowToast(w http.ResponseWriter, r *http.Request) {
	var req showToastRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}
	if req.Type == "" {
		req.Type = domain.ToastInfo
	}
	if !req.Type.Valid() {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown toast type %q", req.Type))
		return
	}

	d := s.toastDefault
	if req.DurationMS != nil {
		d = time.Duration(*req.DurationMS) * time.Millisecond
	}
	id := s.toasts.Show(req.Message, req.Type, d)
	writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func (s *Server) handleRemoveToast(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid toast id")
		return
	}
	s.toasts.Remove(id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListLogs(w http.ResponseWriter, r *http.Request) {
	entries := s.logs.GetStoredLogs(r.Context())
	writeJSON(w, http.StatusOK, logbuffer.Filter(entries, r.URL.Query().Get("level")))
}

func (s *Server) handleClearLogs(w http.ResponseWriter, r *http.Request) {
	s.logs.ClearStoredLogs(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
