// Package search implements substring search with relevance scoring and
// excerpting across notes, artifacts, and tasks. It never mutates the store.
package search

import (
	"sort"
	"strings"

	"github.com/Zarosk/mythril-core/internal/models"
	"github.com/Zarosk/mythril-core/internal/store"
)

const (
	// DefaultSnippetLen bounds excerpt length unless overridden.
	DefaultSnippetLen = 150

	defaultLimit           = 20
	defaultSuggestionLimit = 5
	minSuggestionLen       = 2
)

// Engine scores and excerpts matches over the three entity collections.
type Engine struct {
	db         *store.DB
	snippetLen int
}

// NewEngine creates a search engine with the default snippet length.
func NewEngine(db *store.DB) *Engine {
	return &Engine{db: db, snippetLen: DefaultSnippetLen}
}

// NewEngineWithSnippetLen creates a search engine with a custom excerpt bound.
func NewEngineWithSnippetLen(db *store.DB, snippetLen int) *Engine {
	if snippetLen <= 0 {
		snippetLen = DefaultSnippetLen
	}
	return &Engine{db: db, snippetLen: snippetLen}
}

// Options narrows a search query.
type Options struct {
	// Types restricts which collections are scanned; empty means all three.
	Types []models.SearchResultType
	// Project is an exact-match conjunction when non-empty.
	Project string
	// Limit applies per collection during scanning and again after merging.
	Limit int
}

// Search runs a case-insensitive substring query across the selected
// collections and returns results sorted by score descending. Ties keep
// scan order: notes, then artifacts, then tasks. An empty or
// whitespace-only query yields an empty result set without error.
func (e *Engine) Search(q string, opts Options) ([]models.SearchResult, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return []models.SearchResult{}, nil
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	types := typeSet(opts.Types)
	sc := newScorer(q)

	var out []models.SearchResult

	if types[models.ResultNote] {
		notes, err := e.db.SearchNotes(q, opts.Project, limit)
		if err != nil {
			return nil, err
		}
		for _, n := range notes {
			out = append(out, models.SearchResult{
				Type:    models.ResultNote,
				ID:      n.ID,
				Snippet: excerpt(n.Content, q, e.snippetLen),
				Score:   sc.score(n.Content),
				Project: n.Project,
			})
		}
	}

	if types[models.ResultArtifact] {
		artifacts, err := e.db.SearchArtifacts(q, opts.Project, limit)
		if err != nil {
			return nil, err
		}
		for _, a := range artifacts {
			text := matchedField(q, a.Title, a.Content)
			out = append(out, models.SearchResult{
				Type:    models.ResultArtifact,
				ID:      a.ID,
				Snippet: excerpt(text, q, e.snippetLen),
				Score:   sc.score(text),
				Project: a.Project,
			})
		}
	}

	if types[models.ResultTask] {
		tasks, err := e.db.SearchTasks(q, opts.Project, limit)
		if err != nil {
			return nil, err
		}
		for _, t := range tasks {
			text := matchedField(q, t.Title, t.Description)
			out = append(out, models.SearchResult{
				Type:    models.ResultTask,
				ID:      t.ID,
				Snippet: excerpt(text, q, e.snippetLen),
				Score:   sc.score(text),
				Project: t.Project,
			})
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if len(out) > limit {
		out = out[:limit]
	}
	if out == nil {
		out = []models.SearchResult{}
	}
	return out, nil
}

// Suggestions returns up to limit completion candidates for a partial
// query: note tags matched by case-insensitive prefix and artifact titles
// matched by case-sensitive prefix, deduplicated in insertion order.
// Partials shorter than two characters yield no suggestions.
func (e *Engine) Suggestions(partial string, limit int) ([]string, error) {
	partial = strings.TrimSpace(partial)
	if len([]rune(partial)) < minSuggestionLen {
		return []string{}, nil
	}
	if limit <= 0 {
		limit = defaultSuggestionLimit
	}

	seen := make(map[string]struct{})
	out := []string{}
	add := func(s string) {
		if _, ok := seen[s]; ok {
			return
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}

	lowerPartial := strings.ToLower(partial)
	tagRows, err := e.db.NoteTagRows()
	if err != nil {
		return nil, err
	}
	for _, tags := range tagRows {
		for _, tag := range tags {
			if strings.HasPrefix(strings.ToLower(tag), lowerPartial) {
				add(tag)
			}
		}
	}

	titles, err := e.db.ArtifactTitles(partial, limit*4)
	if err != nil {
		return nil, err
	}
	for _, title := range titles {
		// The DB prefix filter is ASCII case-insensitive; the title match
		// itself is case-sensitive.
		if strings.HasPrefix(title, partial) {
			add(title)
		}
	}

	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// matchedField picks the snippet/score source: the title when it contains
// the query case-insensitively, otherwise the body field.
func matchedField(q, title, body string) string {
	if strings.Contains(strings.ToLower(title), strings.ToLower(q)) {
		return title
	}
	return body
}

func typeSet(types []models.SearchResultType) map[models.SearchResultType]bool {
	if len(types) == 0 {
		return map[models.SearchResultType]bool{
			models.ResultNote:     true,
			models.ResultArtifact: true,
			models.ResultTask:     true,
		}
	}
	set := make(map[models.SearchResultType]bool, len(types))
	for _, t := range types {
		set[t] = true
	}
	return set
}
