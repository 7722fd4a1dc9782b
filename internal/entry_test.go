package internal

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/starford/itinera/internal/generator"
	"github.com/starford/itinera/internal/planner"
)

func TestOpenSlots(t *testing.T) {
	dir := t.TempDir()

	slots, fs, closeFn, err := openSlots(StorageConfig{Driver: StorageFS, FS: FSConfig{Path: filepath.Join(dir, "saved")}})
	if err != nil {
		t.Fatalf("fs: %v", err)
	}
	if fs == nil || slots == nil {
		t.Error("fs driver should return a watchable store")
	}
	closeFn()

	slots, fs, closeFn, err = openSlots(StorageConfig{Driver: StorageSQLite, SQLite: SQLiteConfig{Path: filepath.Join(dir, "test.db")}})
	if err != nil {
		t.Fatalf("sqlite: %v", err)
	}
	defer closeFn()
	if fs != nil {
		t.Error("sqlite driver has nothing to watch")
	}
	if err := slots.Set(context.Background(), "k", []byte("v")); err != nil {
		t.Errorf("Set: %v", err)
	}
}

func TestNewProvider(t *testing.T) {
	cfg := NewDefaultConfig().Generation
	p, places := newProvider(cfg)
	if _, ok := p.(*generator.Mock); !ok {
		t.Errorf("provider = %T, want mock", p)
	}
	if _, ok := places.(*generator.Mock); !ok {
		t.Errorf("places = %T, want mock", places)
	}

	if _, ok := p.(planner.Mirror); ok {
		t.Error("mock provider should not mirror saves")
	}

	cfg.Provider = ProviderHTTP
	p, _ = newProvider(cfg)
	if _, ok := p.(*generator.Client); !ok {
		t.Errorf("provider = %T, want client", p)
	}
	if _, ok := p.(planner.Mirror); !ok {
		t.Error("http provider should mirror saves to the backend")
	}
}

func TestReadyHandler(t *testing.T) {
	slots, _, closeFn, err := openSlots(StorageConfig{Driver: StorageSQLite, SQLite: SQLiteConfig{Path: filepath.Join(t.TempDir(), "ready.db")}})
	if err != nil {
		t.Fatal(err)
	}
	h := readyHandler(slots)

	w := httptest.NewRecorder()
	h(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if w.Code != http.StatusOK {
		t.Errorf("ready = %d, want 200", w.Code)
	}

	closeFn()
	w = httptest.NewRecorder()
	h(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("closed db ready = %d, want 503", w.Code)
	}
}

func TestRun_RequiresConfig(t *testing.T) {
	if err := Run(context.Background()); err == nil {
		t.Error("Run without config should fail")
	}
}

func TestRun_StorageFailureIsLogged(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := NewDefaultConfig()
	cfg.Storage.Driver = StorageFS
	cfg.Storage.FS.Path = filepath.Join(blocker, "saved")

	var logs bytes.Buffer
	if err := Run(context.Background(), WithConfig(cfg), WithLogOutput(&logs)); err == nil {
		t.Fatal("Run should fail when the storage dir cannot be created")
	}
	if !strings.Contains(logs.String(), `"storage_driver":"fs"`) {
		t.Errorf("startup log not written to the configured output: %q", logs.String())
	}
}
