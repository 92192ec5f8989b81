// Package interceptor wraps an HTTP client with failure classification,
// bounded fixed-delay retries and terminal error reporting.
package interceptor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/vietddude/httpguard/internal/core/domain"
	"github.com/vietddude/httpguard/internal/metrics"
)

const (
	// DefaultRetryDelay is the pause between attempts of one request.
	DefaultRetryDelay = 2 * time.Second

	// RequestIDHeader carries the id shared by every attempt of a request.
	RequestIDHeader = "X-Request-ID"

	maxErrorBody = 64 << 10
)

// Doer sends an HTTP request. *http.Client satisfies it, and so does
// *Interceptor.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// StateTracker owns the retry budget and the surfaced error. MaxRetries bounds
// every call on its own; IncrementRetry publishes progress to the shared
// counter, which saturates at the budget.
type StateTracker interface {
	MaxRetries() int
	IncrementRetry() bool
	HandleError(err error, path string)
}

// Recorder receives a structured record of every terminal failure.
type Recorder interface {
	Record(ctx context.Context, level domain.LogLevel, message string, fields map[string]any)
}

// OnRetryHook is called before each retry delay. attempt is the 1-based
// number of the attempt that just failed.
type OnRetryHook func(req *http.Request, attempt int, delay time.Duration)

// Config tunes the interceptor.
type Config struct {
	RetryDelay time.Duration
	OnRetry    OnRetryHook
	Recorder   Recorder
	Logger     *slog.Logger
}

func (c *Config) setDefaults() {
	if c.RetryDelay <= 0 {
		c.RetryDelay = DefaultRetryDelay
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Interceptor retries transient failures of the wrapped Doer and reports
// terminal ones.
type Interceptor struct {
	next  Doer
	state StateTracker
	cfg   Config
}

// New wraps next.
func New(next Doer, state StateTracker, cfg Config) *Interceptor {
	cfg.setDefaults()
	return &Interceptor{next: next, state: state, cfg: cfg}
}

// Do sends req, retrying transient failures (no response, 503, 504) at most
// MaxRetries times for this call. A terminal failure is reported to the state and
// the recorder once, then returned as a *domain.Failure. Context cancellation
// is returned as-is and never reported.
func (i *Interceptor) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	start := time.Now()

	// Preserve request body for retries
	var bodyBytes []byte
	if req.Body != nil && req.Body != http.NoBody {
		var err error
		bodyBytes, err = io.ReadAll(req.Body)
		req.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read request body: %w", err)
		}
	}

	requestID := req.Header.Get(RequestIDHeader)
	if requestID == "" {
		requestID = uuid.NewString()
		req.Header.Set(RequestIDHeader, requestID)
	}

	budget := i.state.MaxRetries()
	retries := 0

	for attempt := 1; ; attempt++ {
		if bodyBytes != nil {
			req.Body = io.NopCloser(bytes.NewReader(bodyBytes))
			req.GetBody = func() (io.ReadCloser, error) {
				return io.NopCloser(bytes.NewReader(bodyBytes)), nil
			}
		}

		metrics.RequestAttempts.WithLabelValues(req.Method).Inc()
		resp, err := i.next.Do(req)
		if err != nil && ctx.Err() != nil {
			metrics.RequestLatency.WithLabelValues(req.Method, "canceled").Observe(time.Since(start).Seconds())
			return nil, err
		}

		failure := classify(resp, err)
		if failure == nil {
			metrics.RequestLatency.WithLabelValues(req.Method, "success").Observe(time.Since(start).Seconds())
			return resp, nil
		}

		if failure.Retriable() && retries < budget {
			retries++
			i.state.IncrementRetry()
			status := strconv.Itoa(failure.StatusCode)
			metrics.RequestRetries.WithLabelValues(status).Inc()
			i.cfg.Logger.Debug("Retrying request",
				"request_id", requestID,
				"url", req.URL.String(),
				"status", failure.StatusCode,
				"attempt", attempt,
				"delay", i.cfg.RetryDelay,
			)
			if i.cfg.OnRetry != nil {
				i.cfg.OnRetry(req, attempt, i.cfg.RetryDelay)
			}
			if err := sleep(ctx, i.cfg.RetryDelay); err != nil {
				metrics.RequestLatency.WithLabelValues(req.Method, "canceled").Observe(time.Since(start).Seconds())
				return nil, err
			}
			continue
		}

		i.reportTerminal(ctx, req, failure, requestID, attempt)
		metrics.RequestLatency.WithLabelValues(req.Method, "failure").Observe(time.Since(start).Seconds())
		return nil, failure
	}
}

func (i *Interceptor) reportTerminal(ctx context.Context, req *http.Request, failure *domain.Failure, requestID string, attempts int) {
	path := req.URL.String()
	metrics.TerminalFailures.WithLabelValues(strconv.Itoa(failure.StatusCode)).Inc()

	i.state.HandleError(failure, path)

	if i.cfg.Recorder != nil {
		fields := map[string]any{
			"request_id": requestID,
			"method":     req.Method,
			"url":        path,
			"status":     failure.StatusCode,
			"attempts":   attempts,
		}
		if failure.Message != "" {
			fields["server_message"] = failure.Message
		}
		if failure.Cause != nil {
			fields["cause"] = failure.Cause.Error()
		}
		i.cfg.Recorder.Record(ctx, domain.LevelError, "HTTP request failed: "+failure.Error(), fields)
	}
}

// classify turns a transport result into a Failure, or nil on success.
// Error responses are drained and closed.
func classify(resp *http.Response, err error) *domain.Failure {
	if err != nil {
		return &domain.Failure{
			StatusCode:   domain.StatusConnectivity,
			Connectivity: true,
			Cause:        err,
		}
	}
	if resp.StatusCode < http.StatusBadRequest {
		return nil
	}

	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &domain.Failure{
		StatusCode: resp.StatusCode,
		Message:    serverMessage(body),
	}
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// IsCanceled reports whether err stems from context cancellation or deadline.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
