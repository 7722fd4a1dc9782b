package storage

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"testing"
	"time"
)

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

func TestWatch_ReportsSlotChanges(t *testing.T) {
	s := tempStore(t)
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var events []string
	has := func(e string) func() bool {
		return func() bool {
			mu.Lock()
			defer mu.Unlock()
			return slices.Contains(events, e)
		}
	}

	go Watch(ctx, s, logger, func(kind, key string) {
		mu.Lock()
		events = append(events, kind+":"+key)
		mu.Unlock()
	})
	time.Sleep(100 * time.Millisecond)

	// Writes made through the store are reported like any other.
	_ = s.Set(ctx, KeyItinerary, []byte("{}"))
	eventually(t, 5*time.Second, 50*time.Millisecond, has("created:"+KeyItinerary), "create not reported")

	_ = os.WriteFile(filepath.Join(s.Root(), KeyItinerary+".json"), []byte(`{"a":1}`), 0o644)
	eventually(t, 5*time.Second, 50*time.Millisecond, has("updated:"+KeyItinerary), "update not reported")

	_ = s.Delete(ctx, KeyItinerary)
	eventually(t, 5*time.Second, 50*time.Millisecond, has("deleted:"+KeyItinerary), "delete not reported")

	mu.Lock()
	defer mu.Unlock()
	for _, e := range events {
		if filepath.Ext(e) != "" {
			t.Errorf("non-slot event leaked: %s", e)
		}
	}
}

func TestWatch_StopsOnCancel(t *testing.T) {
	s := tempStore(t)
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Watch(ctx, s, logger, nil) }()
	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Watch returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}
