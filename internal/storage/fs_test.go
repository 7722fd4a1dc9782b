package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"testing"

	"github.com/starford/itinera/internal/apperr"
)

func tempStore(t *testing.T) *FS {
	t.Helper()
	dir := t.TempDir()
	fs, err := NewFS(dir)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return fs
}

func TestFS_SetAndGet(t *testing.T) {
	s := tempStore(t)
	ctx := context.Background()
	content := []byte(`{"destination":"Paris"}`)
	if err := s.Set(ctx, KeyItinerary, content); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := s.Get(ctx, KeyItinerary)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("content mismatch: got %q", got)
	}
	if _, err := os.Stat(filepath.Join(s.Root(), KeyItinerary+".json")); err != nil {
		t.Errorf("slot file missing: %v", err)
	}
}

func TestFS_GetMissing(t *testing.T) {
	s := tempStore(t)
	_, err := s.Get(context.Background(), KeySavedAt)
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestFS_Delete(t *testing.T) {
	s := tempStore(t)
	ctx := context.Background()
	_ = s.Set(ctx, "k", []byte("bye"))
	if err := s.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(ctx, "k"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := s.Delete(ctx, "k"); err != nil {
		t.Errorf("deleting a missing key should succeed: %v", err)
	}
}

func TestFS_Keys(t *testing.T) {
	s := tempStore(t)
	ctx := context.Background()
	_ = s.Set(ctx, KeyItinerary, []byte("a"))
	_ = s.Set(ctx, KeySavedAt, []byte("b"))
	_ = os.WriteFile(filepath.Join(s.Root(), "readme.txt"), []byte("x"), 0o644)
	_ = os.Mkdir(filepath.Join(s.Root(), "sub.json"), 0o755)

	keys, err := s.Keys()
	if err != nil {
		t.Fatalf("Keys: %v", err)
	}
	sort.Strings(keys)
	if !reflect.DeepEqual(keys, []string{KeyItinerary, KeySavedAt}) {
		t.Errorf("keys = %v", keys)
	}
}

func TestFS_InvalidKeys(t *testing.T) {
	s := tempStore(t)
	ctx := context.Background()
	for _, k := range []string{"", "../escape", "a/b", `a\b`, ".hidden", "/etc/passwd"} {
		if _, err := s.Get(ctx, k); err == nil || errors.Is(err, apperr.ErrNotFound) {
			t.Errorf("Get(%q): expected invalid key error, got %v", k, err)
		}
		if err := s.Set(ctx, k, []byte("x")); err == nil {
			t.Errorf("Set(%q): expected error", k)
		}
	}
}

func TestFS_AtomicWriteLeavesNoTemp(t *testing.T) {
	s := tempStore(t)
	ctx := context.Background()
	_ = s.Set(ctx, "atomic", []byte("original content"))
	if err := s.Set(ctx, "atomic", []byte("updated content")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, _ := s.Get(ctx, "atomic")
	if string(got) != "updated content" {
		t.Errorf("expected updated content, got %q", got)
	}
	matches, _ := filepath.Glob(filepath.Join(s.root, tmpPrefix+"*"))
	if len(matches) != 0 {
		t.Errorf("leftover temp files: %v", matches)
	}
}

func TestFS_KeyOf(t *testing.T) {
	s := tempStore(t)
	if k, ok := s.KeyOf(filepath.Join(s.Root(), "savedItinerary.json")); !ok || k != "savedItinerary" {
		t.Errorf("KeyOf = %q %v", k, ok)
	}
	for _, p := range []string{
		filepath.Join(s.Root(), tmpPrefix+"123"),
		filepath.Join(s.Root(), "notes.txt"),
		filepath.Join(s.Root(), "sub", "x.json"),
	} {
		if _, ok := s.KeyOf(p); ok {
			t.Errorf("KeyOf(%q) should be false", p)
		}
	}
}

func TestNewFS_NonExistentDir(t *testing.T) {
	_, err := NewFS(filepath.Join(t.TempDir(), "missing"))
	if err == nil {
		t.Error("expected error for non-existent dir")
	}
}

func TestNewFS_FileNotDir(t *testing.T) {
	f, _ := os.CreateTemp(t.TempDir(), "itinera-test-*")
	_ = f.Close()
	_, err := NewFS(f.Name())
	if err == nil {
		t.Error("expected error when root is a file")
	}
}
