package capture

import (
	"errors"
	"strings"
	"testing"

	"github.com/Zarosk/mythril-core/internal/apperr"
	"github.com/Zarosk/mythril-core/internal/models"
	"github.com/Zarosk/mythril-core/internal/testutil"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	return NewService(testutil.TestDB(t), nil, testutil.SilentLogger())
}

func TestCreateNote(t *testing.T) {
	s := newTestService(t)

	n, err := s.CreateNote(NoteInput{
		Content: "  spaced content  ",
		Project: "My Project",
		Tags:    []string{"Idea", "idea", " later "},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if n.Content != "spaced content" {
		t.Errorf("content = %q, want trimmed", n.Content)
	}
	if n.Project != "my-project" {
		t.Errorf("project = %q, want sanitized slug", n.Project)
	}
	if len(n.Tags) != 2 || n.Tags[0] != "idea" || n.Tags[1] != "later" {
		t.Errorf("tags = %v, want normalized [idea later]", n.Tags)
	}
	if n.ID == "" || n.CreatedAt.IsZero() {
		t.Errorf("missing generated fields: %+v", n)
	}

	got, err := s.GetNote(n.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil || got.Content != n.Content {
		t.Errorf("persisted note = %+v", got)
	}
}

func TestCreateNoteValidation(t *testing.T) {
	s := newTestService(t)
	cases := []struct {
		name string
		in   NoteInput
	}{
		{"empty content", NoteInput{Content: "   "}},
		{"oversized content", NoteInput{Content: strings.Repeat("x", maxContentLen+1)}},
		{"unsanitizable project", NoteInput{Content: "ok", Project: "!!!"}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, err := s.CreateNote(c.in); !apperr.IsDomain(err) {
				t.Errorf("err = %v, want domain error", err)
			}
		})
	}
}

func TestCreateNoteWithoutProject(t *testing.T) {
	s := newTestService(t)
	n, err := s.CreateNote(NoteInput{Content: "global thought"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if n.Project != "" {
		t.Errorf("project = %q, want empty", n.Project)
	}
}

func TestUpdateNote(t *testing.T) {
	s := newTestService(t)
	n, err := s.CreateNote(NoteInput{Content: "v1", Tags: []string{"old"}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := s.UpdateNote(n.ID, NoteInput{Content: "v2", Tags: []string{"new"}})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Content != "v2" || len(updated.Tags) != 1 || updated.Tags[0] != "new" {
		t.Errorf("updated = %+v", updated)
	}
	if updated.UpdatedAt.Before(n.UpdatedAt) {
		t.Errorf("updated_at went backwards: %v -> %v", n.UpdatedAt, updated.UpdatedAt)
	}

	if _, err := s.UpdateNote("missing", NoteInput{Content: "x"}); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("update missing: err = %v, want ErrNotFound", err)
	}
}

func TestDeleteNote(t *testing.T) {
	s := newTestService(t)
	n, err := s.CreateNote(NoteInput{Content: "ephemeral"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	ok, err := s.DeleteNote(n.ID)
	if err != nil || !ok {
		t.Fatalf("delete: ok=%v err=%v", ok, err)
	}
	ok, err = s.DeleteNote(n.ID)
	if err != nil || ok {
		t.Errorf("second delete: ok=%v err=%v", ok, err)
	}
}

func TestCreateArtifact(t *testing.T) {
	s := newTestService(t)

	a, err := s.CreateArtifact(ArtifactInput{Title: "Runbook", Content: "step one"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if a.ContentType != "text/plain" {
		t.Errorf("content type = %q, want default", a.ContentType)
	}

	md, err := s.CreateArtifact(ArtifactInput{
		Title: "Guide", Content: "# hi", ContentType: "text/markdown", Project: "Docs Site",
	})
	if err != nil {
		t.Fatalf("create markdown: %v", err)
	}
	if md.ContentType != "text/markdown" || md.Project != "docs-site" {
		t.Errorf("artifact = %+v", md)
	}
}

func TestCreateArtifactValidation(t *testing.T) {
	s := newTestService(t)
	if _, err := s.CreateArtifact(ArtifactInput{Title: " ", Content: "x"}); !apperr.IsDomain(err) {
		t.Errorf("empty title: err = %v", err)
	}
	if _, err := s.CreateArtifact(ArtifactInput{Title: "t", Content: ""}); !apperr.IsDomain(err) {
		t.Errorf("empty content: err = %v", err)
	}
}

func TestDeleteArtifact(t *testing.T) {
	s := newTestService(t)
	a, err := s.CreateArtifact(ArtifactInput{Title: "t", Content: "c"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	ok, err := s.DeleteArtifact(a.ID)
	if err != nil || !ok {
		t.Fatalf("delete: ok=%v err=%v", ok, err)
	}
	ok, err = s.DeleteArtifact(a.ID)
	if err != nil || ok {
		t.Errorf("second delete: ok=%v err=%v", ok, err)
	}
}

func TestListScopedByProject(t *testing.T) {
	s := newTestService(t)
	for _, project := range []string{"alpha", "alpha", "beta"} {
		if _, err := s.CreateNote(NoteInput{Content: "n", Project: project}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	alpha, err := s.ListNotes("alpha", 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(alpha) != 2 {
		t.Errorf("alpha notes = %d, want 2", len(alpha))
	}
	all, err := s.ListNotes("", 0)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("all notes = %d, want 3", len(all))
	}
}

// brokenMirror fails every call; CRUD must succeed anyway.
type brokenMirror struct{ calls int }

func (m *brokenMirror) SyncNote(*models.Note) error         { m.calls++; return errors.New("down") }
func (m *brokenMirror) RemoveNote(*models.Note) error       { m.calls++; return errors.New("down") }
func (m *brokenMirror) SyncArtifact(*models.Artifact) error { m.calls++; return errors.New("down") }
func (m *brokenMirror) RemoveArtifact(*models.Artifact) error {
	m.calls++
	return errors.New("down")
}

func TestMirrorFailuresIsolated(t *testing.T) {
	m := &brokenMirror{}
	s := NewService(testutil.TestDB(t), m, testutil.SilentLogger())

	n, err := s.CreateNote(NoteInput{Content: "survives"})
	if err != nil {
		t.Fatalf("create note: %v", err)
	}
	if ok, err := s.DeleteNote(n.ID); err != nil || !ok {
		t.Fatalf("delete note: ok=%v err=%v", ok, err)
	}
	if _, err := s.CreateArtifact(ArtifactInput{Title: "t", Content: "c"}); err != nil {
		t.Fatalf("create artifact: %v", err)
	}
	if m.calls == 0 {
		t.Error("mirror never called")
	}
}

func TestEventsEmitted(t *testing.T) {
	s := newTestService(t)
	var got []string
	s.Events = func(kind, entityType, id string) {
		got = append(got, entityType+"."+kind)
	}

	n, err := s.CreateNote(NoteInput{Content: "x"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := s.UpdateNote(n.ID, NoteInput{Content: "y"}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if _, err := s.DeleteNote(n.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	want := []string{"note.created", "note.updated", "note.deleted"}
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("events[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}
