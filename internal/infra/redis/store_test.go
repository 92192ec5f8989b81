package redis

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/google/uuid"

	"github.com/vietddude/httpguard/internal/infra/kv"
)

func TestStoreLive(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("Skipping redis store test. Set REDIS_URL to run.")
	}

	ctx := context.Background()
	s, err := NewStore(ctx, Config{URL: url, KeyPrefix: "httpguard_test_" + uuid.NewString()})
	if err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	defer s.Close()

	if _, err := s.Get(ctx, "app_logs"); !errors.Is(err, kv.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := s.Set(ctx, "app_logs", `[{"level":"info"}]`); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := s.Get(ctx, "app_logs")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != `[{"level":"info"}]` {
		t.Errorf("unexpected value %q", got)
	}
	if err := s.Remove(ctx, "app_logs"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := s.Get(ctx, "app_logs"); !errors.Is(err, kv.ErrNotFound) {
		t.Errorf("expected ErrNotFound after remove, got %v", err)
	}
}

func TestNewStoreRejectsBadURL(t *testing.T) {
	if _, err := NewStore(context.Background(), Config{URL: "not-a-url"}); err == nil {
		t.Fatal("expected error for malformed URL")
	}
}
