package api

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/Zarosk/mythril-core/internal/models"
)

// CreateTaskRequest is the request body for creating a task.
type CreateTaskRequest struct {
	Title       string `json:"title"`
	Project     string `json:"project"`
	Description string `json:"description,omitempty"`
	TrustLevel  string `json:"trust_level,omitempty"`
	Priority    string `json:"priority,omitempty"`
}

// Validate checks request-shape constraints. Domain rules (sanitization,
// sequencing) stay in the task engine.
func (r *CreateTaskRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Project, validation.Required),
		validation.Field(&r.Description, validation.Length(0, 10000)),
	)
}

// CreateNoteRequest is the request body for creating or updating a note.
type CreateNoteRequest struct {
	Content string   `json:"content"`
	Project string   `json:"project,omitempty"`
	Tags    []string `json:"tags,omitempty"`
}

// Validate checks request-shape constraints.
func (r *CreateNoteRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Content, validation.Required),
	)
}

// CreateArtifactRequest is the request body for creating an artifact.
type CreateArtifactRequest struct {
	Title       string `json:"title"`
	Content     string `json:"content"`
	ContentType string `json:"content_type,omitempty"`
	Project     string `json:"project,omitempty"`
}

// Validate checks request-shape constraints.
func (r *CreateArtifactRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Title, validation.Required),
		validation.Field(&r.Content, validation.Required),
	)
}

// FeedbackRequest is the request body for submitting feedback.
type FeedbackRequest struct {
	Message   string `json:"message"`
	UserID    string `json:"user_id"`
	Username  string `json:"username,omitempty"`
	GuildName string `json:"guild_name,omitempty"`
}

// Validate checks request-shape constraints.
func (r *FeedbackRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Message, validation.Required, validation.Length(1, 4000)),
		validation.Field(&r.UserID, validation.Required),
	)
}

// TaskResponse wraps a possibly-absent task.
type TaskResponse struct {
	Task *models.Task `json:"task"`
}

// TaskListResponse wraps an ordered task listing.
type TaskListResponse struct {
	Tasks []models.Task `json:"tasks"`
}

// SearchResponse wraps ranked search results.
type SearchResponse struct {
	Results []models.SearchResult `json:"results"`
}

// SuggestionsResponse wraps completion candidates.
type SuggestionsResponse struct {
	Suggestions []string `json:"suggestions"`
}
