package control

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vietddude/httpguard/internal/core/config"
)

func TestApp_Lifecycle(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/users" {
			_, _ = w.Write([]byte(`[{"id":1,"name":"Ada"}]`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer upstream.Close()

	cfg := config.Default()
	cfg.Server.Port = 0
	cfg.Upstream.BaseURL = upstream.URL + "/api"
	cfg.Retry.Delay = time.Millisecond
	cfg.LogBuffer.Development = true

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	app, err := NewApp(ctx, cfg)
	require.NoError(t, err)
	require.NoError(t, app.Start(ctx))

	var users []map[string]any
	require.NoError(t, app.Client().Get(ctx, "/users", &users))
	assert.Len(t, users, 1)

	err = app.Client().Get(ctx, "/missing", nil)
	require.Error(t, err)
	assert.Equal(t, 404, app.State().Error().StatusCode)
	assert.Len(t, app.Toasts().Active(), 1)
	assert.Len(t, app.Logs().GetStoredLogs(ctx), 1)
	assert.Nil(t, app.Health(), "gRPC health is off without a port")

	require.NoError(t, app.Stop(ctx))
}

func TestApp_SQLiteBackend(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.Backend = config.BackendSQLite
	cfg.Storage.Database.Driver = "sqlite3"
	cfg.Storage.Database.URL = filepath.Join(t.TempDir(), "logs.db")
	cfg.LogBuffer.Development = true

	ctx := context.Background()
	app, err := NewApp(ctx, cfg)
	require.NoError(t, err)

	app.Logs().Warn(ctx, "persisted", nil)
	app.Close()

	app, err = NewApp(ctx, cfg)
	require.NoError(t, err)
	defer app.Close()

	logs := app.Logs().GetStoredLogs(ctx)
	require.Len(t, logs, 1)
	assert.Equal(t, "persisted", logs[0].Message)
}

func TestApp_RedisBackendFailsFast(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.Backend = config.BackendRedis
	cfg.Storage.Redis.URL = "redis://127.0.0.1:1/0"

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_, err := NewApp(ctx, cfg)
	assert.Error(t, err)
}
