package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/Zarosk/mythril-core/internal/models"
	"github.com/Zarosk/mythril-core/internal/search"
)

// Search handles GET /search. An empty or whitespace-only q answers an
// empty result set, not an error.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))

	var types []models.SearchResultType
	if raw := q.Get("types"); raw != "" {
		for _, t := range strings.Split(raw, ",") {
			switch models.SearchResultType(strings.TrimSpace(t)) {
			case models.ResultNote:
				types = append(types, models.ResultNote)
			case models.ResultArtifact:
				types = append(types, models.ResultArtifact)
			case models.ResultTask:
				types = append(types, models.ResultTask)
			default:
				writeJSON(w, http.StatusBadRequest, errorBody("unknown search type: "+t))
				return
			}
		}
	}

	results, err := h.search.Search(q.Get("q"), search.Options{
		Types:   types,
		Project: q.Get("project"),
		Limit:   limit,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}

// Suggest handles GET /suggest.
func (h *Handler) Suggest(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	suggestions, err := h.search.Suggestions(r.URL.Query().Get("q"), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SuggestionsResponse{Suggestions: suggestions})
}
