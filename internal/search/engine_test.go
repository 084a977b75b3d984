package search

import (
	"strings"
	"testing"
	"time"

	"github.com/Zarosk/mythril-core/internal/models"
	"github.com/Zarosk/mythril-core/internal/store"
	"github.com/Zarosk/mythril-core/internal/testutil"
)

func seedCorpus(t *testing.T, db *store.DB) {
	t.Helper()
	base := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)

	notes := []models.Note{
		{ID: "note-ts", Content: "Learned about TypeScript generics today", Project: "web",
			Tags: models.NewTags([]string{"typescript", "learning"})},
		{ID: "note-go", Content: "go modules make dependency management sane", Project: "backend",
			Tags: models.NewTags([]string{"golang", "go-tips"})},
		{ID: "note-misc", Content: "grocery list: eggs, flour", Project: ""},
	}
	for i := range notes {
		notes[i].CreatedAt = base.Add(time.Duration(i) * time.Minute)
		notes[i].UpdatedAt = notes[i].CreatedAt
		if err := db.InsertNote(&notes[i]); err != nil {
			t.Fatalf("insert note %s: %v", notes[i].ID, err)
		}
	}

	artifacts := []models.Artifact{
		{ID: "art-ts", Title: "TypeScript style guide", Content: "rules for the web team",
			ContentType: "text/markdown", Project: "web"},
		{ID: "art-deploy", Title: "Deploy runbook", Content: "steps mention typescript build output",
			ContentType: "text/markdown", Project: "web"},
	}
	for i := range artifacts {
		artifacts[i].CreatedAt = base.Add(time.Duration(i) * time.Minute)
		if err := db.InsertArtifact(&artifacts[i]); err != nil {
			t.Fatalf("insert artifact %s: %v", artifacts[i].ID, err)
		}
	}

	tasks := []models.Task{
		{ID: "WEB-001", Project: "web", Title: "Migrate build to TypeScript",
			Status: models.StatusQueued, TrustLevel: models.TrustPrototype, Priority: models.PriorityNormal},
		{ID: "BACKEND-001", Project: "backend", Title: "rotate credentials",
			Status: models.StatusQueued, TrustLevel: models.TrustPrototype, Priority: models.PriorityNormal},
	}
	for i := range tasks {
		tasks[i].CreatedAt = base.Add(time.Duration(i) * time.Minute)
		if err := db.InsertTask(&tasks[i]); err != nil {
			t.Fatalf("insert task %s: %v", tasks[i].ID, err)
		}
	}
}

func TestSearchAcrossCollections(t *testing.T) {
	db := testutil.TestDB(t)
	seedCorpus(t, db)
	e := NewEngine(db)

	results, err := e.Search("typescript", Options{})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	// note-ts, art-ts, art-deploy, WEB-001 all mention typescript.
	if len(results) != 4 {
		t.Fatalf("results = %d, want 4: %+v", len(results), results)
	}

	for _, r := range results {
		if r.Score <= 0 || r.Score > 1 {
			t.Errorf("%s/%s score %v outside (0, 1]", r.Type, r.ID, r.Score)
		}
		if !strings.Contains(strings.ToLower(r.Snippet), "typescript") {
			t.Errorf("%s snippet %q misses the query", r.ID, r.Snippet)
		}
	}
	for i := 1; i < len(results); i++ {
		if results[i].Score > results[i-1].Score {
			t.Errorf("results not sorted by score: %v then %v", results[i-1].Score, results[i].Score)
		}
	}
	// "TypeScript style guide" has the prefix bonus, so the artifact leads.
	if results[0].ID != "art-ts" {
		t.Errorf("top hit = %s (%v), want art-ts", results[0].ID, results[0].Score)
	}
}

func TestSearchShortContentSnippetUnmarked(t *testing.T) {
	db := testutil.TestDB(t)
	seedCorpus(t, db)
	e := NewEngine(db)

	results, err := e.Search("generics", Options{Types: []models.SearchResultType{models.ResultNote}})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("results = %d, want 1", len(results))
	}
	want := "Learned about TypeScript generics today"
	if results[0].Snippet != want {
		t.Errorf("snippet = %q, want full content without markers", results[0].Snippet)
	}
}

func TestSearchTypeFilter(t *testing.T) {
	db := testutil.TestDB(t)
	seedCorpus(t, db)
	e := NewEngine(db)

	results, err := e.Search("typescript", Options{Types: []models.SearchResultType{models.ResultTask}})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 1 || results[0].Type != models.ResultTask || results[0].ID != "WEB-001" {
		t.Errorf("results = %+v, want only WEB-001", results)
	}
}

func TestSearchProjectFilter(t *testing.T) {
	db := testutil.TestDB(t)
	seedCorpus(t, db)
	e := NewEngine(db)

	results, err := e.Search("go", Options{Project: "backend"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	for _, r := range results {
		if r.Project != "backend" {
			t.Errorf("result %s leaked from project %q", r.ID, r.Project)
		}
	}
	if len(results) == 0 {
		t.Error("expected at least the go modules note")
	}
}

func TestSearchEmptyQuery(t *testing.T) {
	db := testutil.TestDB(t)
	seedCorpus(t, db)
	e := NewEngine(db)

	for _, q := range []string{"", "   ", "\t"} {
		results, err := e.Search(q, Options{})
		if err != nil {
			t.Fatalf("search %q: %v", q, err)
		}
		if len(results) != 0 {
			t.Errorf("search %q returned %d results, want 0", q, len(results))
		}
	}
}

func TestSearchNoMatches(t *testing.T) {
	db := testutil.TestDB(t)
	seedCorpus(t, db)
	e := NewEngine(db)

	results, err := e.Search("xylophone", Options{})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if results == nil || len(results) != 0 {
		t.Errorf("results = %#v, want empty non-nil slice", results)
	}
}

func TestSearchLimit(t *testing.T) {
	db := testutil.TestDB(t)
	seedCorpus(t, db)
	e := NewEngine(db)

	results, err := e.Search("typescript", Options{Limit: 2})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("results = %d, want 2", len(results))
	}
}

func TestSuggestions(t *testing.T) {
	db := testutil.TestDB(t)
	seedCorpus(t, db)
	e := NewEngine(db)

	got, err := e.Suggestions("go", 10)
	if err != nil {
		t.Fatalf("suggestions: %v", err)
	}
	// Tags match case-insensitively; titles match case-sensitively, so
	// neither artifact title qualifies here.
	want := map[string]bool{"golang": true, "go-tips": true}
	if len(got) != len(want) {
		t.Fatalf("suggestions = %v, want %v", got, want)
	}
	for _, s := range got {
		if !want[s] {
			t.Errorf("unexpected suggestion %q", s)
		}
	}
}

func TestSuggestionsTitleCaseSensitive(t *testing.T) {
	db := testutil.TestDB(t)
	seedCorpus(t, db)
	e := NewEngine(db)

	upper, err := e.Suggestions("Type", 10)
	if err != nil {
		t.Fatalf("suggestions: %v", err)
	}
	found := false
	for _, s := range upper {
		if s == "TypeScript style guide" {
			found = true
		}
	}
	if !found {
		t.Errorf("suggestions %v missing matching-case title", upper)
	}

	lower, err := e.Suggestions("typesc", 10)
	if err != nil {
		t.Fatalf("suggestions: %v", err)
	}
	for _, s := range lower {
		if s == "TypeScript style guide" {
			t.Errorf("lowercase partial must not match capitalized title: %v", lower)
		}
	}
}

func TestSuggestionsMinLength(t *testing.T) {
	db := testutil.TestDB(t)
	seedCorpus(t, db)
	e := NewEngine(db)

	for _, partial := range []string{"", "g", " g "} {
		got, err := e.Suggestions(partial, 10)
		if err != nil {
			t.Fatalf("suggestions %q: %v", partial, err)
		}
		if len(got) != 0 {
			t.Errorf("suggestions(%q) = %v, want none", partial, got)
		}
	}
}

func TestSuggestionsLimit(t *testing.T) {
	db := testutil.TestDB(t)
	now := time.Now().UTC()
	for i, tag := range []string{"search-a", "search-b", "search-c", "search-d"} {
		err := db.InsertNote(&models.Note{
			ID: tag, Content: "x", Tags: models.NewTags([]string{tag}),
			CreatedAt: now.Add(time.Duration(i) * time.Second),
			UpdatedAt: now.Add(time.Duration(i) * time.Second),
		})
		if err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
	e := NewEngine(db)

	got, err := e.Suggestions("search", 2)
	if err != nil {
		t.Fatalf("suggestions: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("suggestions = %v, want 2", got)
	}
}
