package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestFS(t *testing.T) (*FS, string) {
	t.Helper()
	root := t.TempDir()
	fs, err := NewFS(root)
	if err != nil {
		t.Fatalf("new fs: %v", err)
	}
	return fs, root
}

func TestNewFSRejectsMissingRoot(t *testing.T) {
	if _, err := NewFS(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("expected error for missing root")
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	fs, _ := newTestFS(t)

	if err := fs.Write("notes/a.md", []byte("hello")); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := fs.Read("notes/a.md")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != "hello" {
		t.Errorf("content = %q", got)
	}
}

func TestWriteLeavesNoTempFiles(t *testing.T) {
	fs, root := newTestFS(t)
	if err := fs.Write("tasks/t.md", []byte("x")); err != nil {
		t.Fatalf("write: %v", err)
	}

	entries, err := os.ReadDir(filepath.Join(root, "tasks"))
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".mythril-tmp-") {
			t.Errorf("leftover temp file %s", e.Name())
		}
	}
}

func TestTraversalRejected(t *testing.T) {
	fs, root := newTestFS(t)

	for _, p := range []string{"../escape.md", "a/../../escape.md", "/etc/passwd"} {
		if err := fs.Write(p, []byte("x")); err == nil {
			t.Errorf("write %q: expected rejection", p)
		}
		if _, err := fs.Read(p); err == nil {
			t.Errorf("read %q: expected rejection", p)
		}
		if err := fs.Delete(p); err == nil {
			t.Errorf("delete %q: expected rejection", p)
		}
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(root), "escape.md")); err == nil {
		t.Error("traversal write landed outside the root")
	}
}

func TestDelete(t *testing.T) {
	fs, _ := newTestFS(t)
	if err := fs.Write("a.md", []byte("x")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := fs.Delete("a.md"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := fs.Read("a.md"); err == nil {
		t.Error("read after delete succeeded")
	}
	if err := fs.Delete("a.md"); err == nil {
		t.Error("double delete succeeded")
	}
}

func TestListOnlyMarkdown(t *testing.T) {
	fs, _ := newTestFS(t)
	files := map[string]string{
		"notes/a.md":     "aaa",
		"notes/b.md":     "bbb",
		"tasks/c.md":     "ccc",
		"notes/skip.txt": "nope",
	}
	for p, content := range files {
		if err := fs.Write(p, []byte(content)); err != nil {
			t.Fatalf("write %s: %v", p, err)
		}
	}

	all, err := fs.List("")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("list = %d entries, want 3 (md only): %+v", len(all), all)
	}

	notes, err := fs.List("notes")
	if err != nil {
		t.Fatalf("list notes: %v", err)
	}
	if len(notes) != 2 {
		t.Errorf("notes list = %d entries, want 2", len(notes))
	}
	for _, fi := range notes {
		if fi.Checksum == "" || fi.ModTime.IsZero() {
			t.Errorf("incomplete file info: %+v", fi)
		}
		if filepath.IsAbs(fi.Path) {
			t.Errorf("path %q should be vault-relative", fi.Path)
		}
	}
}
