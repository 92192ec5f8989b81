// Package control wires the guarded HTTP client, its shared state and the
// status surfaces into one application.
package control

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/vietddude/httpguard/internal/core/config"
	"github.com/vietddude/httpguard/internal/core/worker"
	"github.com/vietddude/httpguard/internal/errorstate"
	"github.com/vietddude/httpguard/internal/infra/kv"
	redisstore "github.com/vietddude/httpguard/internal/infra/redis"
	"github.com/vietddude/httpguard/internal/infra/sink"
	"github.com/vietddude/httpguard/internal/infra/storage/sqlstore"
	"github.com/vietddude/httpguard/internal/interceptor"
	"github.com/vietddude/httpguard/internal/logbuffer"
	"github.com/vietddude/httpguard/internal/notify"
	"github.com/vietddude/httpguard/internal/service"
)

// App owns every component and their lifecycle.
type App struct {
	cfg    *config.AppConfig
	log    *slog.Logger
	toasts *notify.Queue
	state  *errorstate.State
	logs   *logbuffer.Buffer
	client *service.Client
	server *Server
	health *HealthService
	db     *sqlstore.DB
	redis  *redisstore.Store
}

// NewApp creates an App with all dependencies initialized.
func NewApp(ctx context.Context, cfg *config.AppConfig) (*App, error) {
	a := &App{
		cfg: cfg,
		log: slog.Default().With("component", "app"),
	}

	// 1. Initialize Storage
	store, err := a.openStore(ctx)
	if err != nil {
		return nil, err
	}

	// 2. Initialize Log Buffer
	var remote logbuffer.Sink
	if cfg.LogBuffer.RemoteURL != "" {
		remote = sink.NewHTTPSink(cfg.LogBuffer.RemoteURL, nil, logbuffer.DefaultSendTimeout)
	}
	a.logs = logbuffer.New(store, remote, slog.Default(), logbuffer.Config{
		Capacity:    cfg.LogBuffer.Capacity,
		Key:         cfg.LogBuffer.Key,
		UserAgent:   cfg.LogBuffer.UserAgent,
		Development: cfg.LogBuffer.Development,
	})

	// 3. Initialize Shared State
	a.toasts = notify.NewQueue()
	a.state = errorstate.New(a.toasts, errorstate.Config{
		MaxRetries:    cfg.Retry.MaxRetries,
		ToastDuration: cfg.Toast.ErrorDuration,
	})

	// 4. Initialize Guarded Client
	ic := interceptor.New(&http.Client{Timeout: cfg.Upstream.Timeout}, a.state, interceptor.Config{
		RetryDelay: cfg.Retry.Delay,
		Recorder:   a.logs,
		Logger:     slog.Default().With("component", "interceptor"),
		OnRetry: func(req *http.Request, attempt int, delay time.Duration) {
			a.log.Info("Retrying request", "url", req.URL.String(), "attempt", attempt, "delay", delay)
		},
	})
	a.client = service.NewClient(cfg.Upstream.BaseURL, ic, a.state)

	// 5. Initialize Status Surfaces
	a.server = NewServer(a.state, a.toasts, a.logs, cfg.Toast.DefaultDuration, cfg.Server.Port)
	if cfg.Server.GRPCPort > 0 {
		a.health = NewHealthService(a.state, cfg.Server.GRPCPort)
	}

	return a, nil
}

func (a *App) openStore(ctx context.Context) (kv.Store, error) {
	switch a.cfg.Storage.Backend {
	case config.BackendRedis:
		s, err := redisstore.NewStore(ctx, a.cfg.Storage.Redis)
		if err != nil {
			return nil, fmt.Errorf("failed to init redis: %w", err)
		}
		a.redis = s
		a.log.Info("Using Redis storage")
		return s, nil
	case config.BackendPostgres, config.BackendSQLite:
		db, err := sqlstore.Open(ctx, a.cfg.Storage.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to init db: %w", err)
		}
		a.db = db
		a.log.Info("Using SQL storage", "driver", a.cfg.Storage.Database.Driver)
		return sqlstore.NewStore(db), nil
	default:
		a.log.Info("Using Memory storage")
		return kv.NewMemoryStore(), nil
	}
}

func (a *App) State() *errorstate.State  { return a.state }
func (a *App) Toasts() *notify.Queue     { return a.toasts }
func (a *App) Logs() *logbuffer.Buffer   { return a.logs }
func (a *App) Client() *service.Client   { return a.client }
func (a *App) Server() *Server           { return a.server }
func (a *App) Health() *HealthService    { return a.health }
func (a *App) Config() *config.AppConfig { return a.cfg }

// Start starts the status servers in the background.
func (a *App) Start(ctx context.Context) error {
	go func() {
		if err := a.server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("Status server failed", "error", err)
		}
	}()

	if a.health != nil {
		go func() {
			if err := a.health.Start(); err != nil {
				a.log.Error("gRPC health server failed", "error", err)
			}
		}()
	}

	if a.db != nil {
		a.db.StartMetricsCollector(ctx)
	}

	if a.cfg.LogBuffer.Retention > 0 {
		go worker.NewPruner(a.cfg.LogBuffer.Retention, a.logs).Start(ctx)
	}

	a.log.Info("Status server started", "port", a.cfg.Server.Port, "grpc_port", a.cfg.Server.GRPCPort)
	return nil
}

// Stop shuts the servers down and releases storage.
func (a *App) Stop(ctx context.Context) error {
	a.log.Info("Stopping httpguard...")

	err := a.server.Stop(ctx)
	if a.health != nil {
		a.health.Stop()
	}
	a.Close()
	return err
}

// Close releases resources without touching the servers. Used by one-shot
// commands that never call Start.
func (a *App) Close() {
	a.toasts.Close()
	a.logs.Close()

	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.log.Warn("Failed to close Redis", "error", err)
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.log.Warn("Failed to close database", "error", err)
		}
	}
}
