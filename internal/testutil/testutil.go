// Package testutil provides shared test helpers for slot stores and
// planner services.
package testutil

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/starford/itinera/internal/generator"
	"github.com/starford/itinera/internal/planner"
	"github.com/starford/itinera/internal/storage"
)

// TestDB creates a temporary SQLite slot store that is closed on cleanup.
func TestDB(t *testing.T) *storage.SQLite {
	t.Helper()
	db, err := storage.OpenSQLite(filepath.Join(t.TempDir(), "itinera-test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestSlots creates a temporary slot directory.
func TestSlots(t *testing.T) (string, *storage.FS) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, store
}

// QuietLogger discards everything.
func QuietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// TestPlanner builds a fenced planner over a zero-delay mock and a fresh
// slot directory.
func TestPlanner(t *testing.T) (*planner.Service, *generator.Mock, *storage.FS) {
	t.Helper()
	_, slots := TestSlots(t)
	mock := generator.NewMock(0, 0)
	svc := planner.New(planner.Options{
		Provider: mock,
		Slots:    slots,
		Logger:   QuietLogger(),
		Fencing:  true,
	})
	return svc, mock, slots
}
