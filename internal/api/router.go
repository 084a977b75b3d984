package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Zarosk/mythril-core/internal/capture"
	"github.com/Zarosk/mythril-core/internal/feedback"
	"github.com/Zarosk/mythril-core/internal/search"
	"github.com/Zarosk/mythril-core/internal/taskflow"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether API-key auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(tasks *taskflow.Engine, cap *capture.Service, se *search.Engine, fb *feedback.Service, authEnabled bool, apiKey string, sseHandler http.Handler) chi.Router {
	h := NewHandler(tasks, cap, se, fb)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, apiKey))

	// Tasks. Literal segments are registered before {id} so chi matches
	// /tasks/queue and /tasks/active first.
	r.Post("/tasks", h.CreateTask)
	r.Get("/tasks/queue", h.QueuedTasks)
	r.Get("/tasks/active", h.ActiveTask)
	r.Get("/tasks/{id}", h.GetTask)
	r.Post("/tasks/{id}/activate", h.ActivateTask)
	r.Post("/tasks/{id}/complete", h.CompleteTask)
	r.Post("/tasks/{id}/cancel", h.CancelTask)
	r.Delete("/tasks/{id}", h.DeleteTask)

	// Notes CRUD.
	r.Get("/notes", h.ListNotes)
	r.Post("/notes", h.CreateNote)
	r.Get("/notes/{id}", h.GetNote)
	r.Put("/notes/{id}", h.UpdateNote)
	r.Delete("/notes/{id}", h.DeleteNote)

	// Artifacts.
	r.Get("/artifacts", h.ListArtifacts)
	r.Post("/artifacts", h.CreateArtifact)
	r.Post("/artifacts/upload", h.UploadArtifact)
	r.Get("/artifacts/{id}", h.GetArtifact)
	r.Delete("/artifacts/{id}", h.DeleteArtifact)

	// Search.
	r.Get("/search", h.Search)
	r.Get("/suggest", h.Suggest)

	// Feedback.
	r.Post("/feedback", h.SubmitFeedback)
	r.Get("/feedback/limit", h.FeedbackLimit)

	// SSE endpoint (protected by the same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
