// Package testutil provides shared helpers for tests.
package testutil

import (
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/Zarosk/mythril-core/internal/storage"
	"github.com/Zarosk/mythril-core/internal/store"
)

// TestDB opens a throwaway SQLite database in a temp directory and
// registers cleanup.
func TestDB(t *testing.T) *store.DB {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("close test db: %v", err)
		}
	})
	return db
}

// TestVault returns a filesystem provider rooted at a temp directory.
func TestVault(t *testing.T) (*storage.FS, string) {
	t.Helper()
	root := t.TempDir()
	fs, err := storage.NewFS(root)
	if err != nil {
		t.Fatalf("init vault: %v", err)
	}
	return fs, root
}

// SilentLogger returns a logger that discards everything.
func SilentLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(discard{}, &slog.HandlerOptions{Level: slog.Level(99)}))
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
