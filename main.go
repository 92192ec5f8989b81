package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"sync/atomic"
	"time"

	"github.com/joho/godotenv"

	"github.com/vietddude/httpguard/internal/core/config"
	"github.com/vietddude/httpguard/internal/core/domain"
	"github.com/vietddude/httpguard/internal/control"
)

// Walks the guarded client through the common failure shapes against a
// local upstream, or against DEMO_UPSTREAM_URL when set.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	upstream := os.Getenv("DEMO_UPSTREAM_URL")
	if upstream == "" {
		url, stop, err := startDemoUpstream()
		if err != nil {
			log.Fatalf("failed to start demo upstream: %v", err)
		}
		defer stop()
		upstream = url
	}

	cfg := config.Default()
	cfg.Upstream.BaseURL = upstream
	cfg.Retry.Delay = 200 * time.Millisecond
	cfg.LogBuffer.Development = true

	ctx := context.Background()
	app, err := control.NewApp(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to init app: %v", err)
	}
	defer app.Close()

	unsubscribe := app.State().Subscribe(func(s domain.Snapshot) {
		if s.RetryCount > 0 && s.Error == nil {
			fmt.Printf("   ↻ retrying... attempt %d/%d\n", s.RetryCount, app.State().MaxRetries())
		}
	})
	defer unsubscribe()

	fmt.Println("=== Guarded requests ===")
	for _, path := range []string{"/users", "/flaky", "/test/404", "/test/500", "/test/outage"} {
		fmt.Printf("\nGET %s\n", path)
		var out any
		start := time.Now()
		err := app.Client().Get(ctx, path, &out)
		if err != nil {
			e := app.State().Error()
			fmt.Printf("   ✗ %d %s (after %s)\n", e.StatusCode, e.Message, time.Since(start).Round(time.Millisecond))
			continue
		}
		fmt.Printf("   ✓ %v (retries used: %d)\n", out, app.State().RetryCount())
	}

	fmt.Println("\n=== Active toasts ===")
	for _, t := range app.Toasts().Active() {
		fmt.Printf("#%d [%s] %s (%s)\n", t.ID, t.Type, t.Message, t.Duration)
	}

	fmt.Println("\n=== Stored logs ===")
	for _, e := range app.Logs().GetStoredLogs(ctx) {
		fmt.Printf("[%s] %s: %s\n", e.Timestamp, e.Level, e.Message)
	}
}

func startDemoUpstream() (string, func(), error) {
	var flaky atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/users", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":1,"name":"Ada"},{"id":2,"name":"Grace"}]`))
	})
	mux.HandleFunc("/flaky", func(w http.ResponseWriter, r *http.Request) {
		if flaky.Add(1) <= 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"status":"recovered"}`))
	})
	mux.HandleFunc("/test/404", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"Resource not found"}`))
	})
	mux.HandleFunc("/test/500", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	mux.HandleFunc("/test/outage", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusGatewayTimeout)
	})

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", nil, err
	}
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("demo upstream failed: %v", err)
		}
	}()

	stop := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
	return "http://" + lis.Addr().String(), stop, nil
}
