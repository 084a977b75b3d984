package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Zarosk/mythril-core/internal/apperr"
	"github.com/Zarosk/mythril-core/internal/capture"
	"github.com/Zarosk/mythril-core/internal/feedback"
	"github.com/Zarosk/mythril-core/internal/models"
	"github.com/Zarosk/mythril-core/internal/search"
	"github.com/Zarosk/mythril-core/internal/taskflow"
)

// Handler holds the API route handlers.
type Handler struct {
	tasks    *taskflow.Engine
	capture  *capture.Service
	search   *search.Engine
	feedback *feedback.Service
}

// NewHandler creates a new Handler.
func NewHandler(tasks *taskflow.Engine, cap *capture.Service, se *search.Engine, fb *feedback.Service) *Handler {
	return &Handler{tasks: tasks, capture: cap, search: se, feedback: fb}
}

// CreateTask handles POST /tasks.
func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	task, err := h.tasks.Create(taskflow.CreateInput{
		Title:       req.Title,
		Project:     req.Project,
		Description: req.Description,
		TrustLevel:  models.TrustLevel(req.TrustLevel),
		Priority:    models.Priority(req.Priority),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

// GetTask handles GET /tasks/{id}.
func (h *Handler) GetTask(w http.ResponseWriter, r *http.Request) {
	task, err := h.tasks.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if task == nil {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// ActivateTask handles POST /tasks/{id}/activate. Activating a terminal
// task answers 409.
func (h *Handler) ActivateTask(w http.ResponseWriter, r *http.Request) {
	task, err := h.tasks.Activate(chi.URLParam(r, "id"))
	if err != nil {
		if apperr.IsDomain(err) {
			writeJSON(w, http.StatusConflict, errorBody(err.Error()))
			return
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// CompleteTask handles POST /tasks/{id}/complete.
func (h *Handler) CompleteTask(w http.ResponseWriter, r *http.Request) {
	task, err := h.tasks.Complete(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// CancelTask handles POST /tasks/{id}/cancel.
func (h *Handler) CancelTask(w http.ResponseWriter, r *http.Request) {
	task, err := h.tasks.Cancel(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// DeleteTask handles DELETE /tasks/{id}.
func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.tasks.Delete(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if !deleted {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// QueuedTasks handles GET /tasks/queue.
func (h *Handler) QueuedTasks(w http.ResponseWriter, r *http.Request) {
	project := r.URL.Query().Get("project")
	if project == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'project' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	tasks, err := h.tasks.Queued(project, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	writeJSON(w, http.StatusOK, TaskListResponse{Tasks: tasks})
}

// ActiveTask handles GET /tasks/active. A project with no active task
// answers 200 with a null task.
func (h *Handler) ActiveTask(w http.ResponseWriter, r *http.Request) {
	project := r.URL.Query().Get("project")
	if project == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'project' is required"))
		return
	}
	task, err := h.tasks.Active(project)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, TaskResponse{Task: task})
}
