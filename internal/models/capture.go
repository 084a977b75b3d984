package models

import (
	"encoding/json"
	"strings"
	"time"
)

const maxTagLen = 64

// Tags is an ordered, deduplicated set of short lowercase strings.
// Construct via NewTags so read paths never need defensive parsing.
type Tags []string

// NewTags normalizes raw values: trims whitespace, lowercases, drops
// empties and entries longer than 64 runes, deduplicates preserving order.
func NewTags(raw []string) Tags {
	seen := make(map[string]struct{}, len(raw))
	out := make(Tags, 0, len(raw))
	for _, t := range raw {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || len([]rune(t)) > maxTagLen {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// DecodeTags parses the stored JSON array form. Malformed input yields an
// empty set rather than an error; rows with broken tags stay readable.
func DecodeTags(serialized string) Tags {
	var raw []string
	if err := json.Unmarshal([]byte(serialized), &raw); err != nil {
		return Tags{}
	}
	return NewTags(raw)
}

// Encode returns the JSON array form used by the store.
func (t Tags) Encode() string {
	if t == nil {
		t = Tags{}
	}
	b, _ := json.Marshal([]string(t))
	return string(b)
}

// Note is a free-text capture, optionally scoped to a project.
type Note struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Project   string    `json:"project,omitempty"`
	Tags      Tags      `json:"tags"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Artifact is a titled capture with an explicit content type.
type Artifact struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	ContentType string    `json:"content_type"`
	Project     string    `json:"project,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Feedback is an append-only submission from a user.
type Feedback struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	GuildName string    `json:"guild_name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// SearchResultType identifies which collection a search hit came from.
type SearchResultType string

const (
	ResultNote     SearchResultType = "note"
	ResultArtifact SearchResultType = "artifact"
	ResultTask     SearchResultType = "task"
)

// SearchResult is an ephemeral, per-query ranked hit.
type SearchResult struct {
	Type    SearchResultType `json:"type"`
	ID      string           `json:"id"`
	Snippet string           `json:"snippet"`
	Score   float64          `json:"score"`
	Project string           `json:"project,omitempty"`
}
