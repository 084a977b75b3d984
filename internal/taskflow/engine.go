// Package taskflow owns task identifier allocation and the task state
// machine. It is the only component that writes task status, started_at,
// or completed_at.
package taskflow

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/Zarosk/mythril-core/internal/apperr"
	"github.com/Zarosk/mythril-core/internal/events"
	"github.com/Zarosk/mythril-core/internal/models"
	"github.com/Zarosk/mythril-core/internal/store"
)

const (
	maxTitleLen       = 200
	maxDescriptionLen = 10000
	prefixLen         = 10
)

// Mirror is the best-effort export port. Failures are logged by the engine
// and never surfaced to callers.
type Mirror interface {
	SyncTask(t *models.Task) error
	RemoveTask(t *models.Task) error
}

// Engine coordinates task persistence, id allocation, and transitions.
type Engine struct {
	db     *store.DB
	mirror Mirror // may be nil
	logger *slog.Logger

	// Events, when set, is called after successful mutations.
	Events events.Callback

	// locks serializes allocate+insert per id prefix and
	// demote+activate per project.
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewEngine creates a task engine. mirror may be nil to disable exports.
func NewEngine(db *store.DB, mirror Mirror, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		db:     db,
		mirror: mirror,
		logger: logger,
		locks:  make(map[string]*sync.Mutex),
	}
}

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	slugRejectRe = regexp.MustCompile(`[^a-z0-9_-]`)
)

// SanitizeProject lowercases a project name, collapses whitespace runs to a
// hyphen, and strips everything outside [a-z0-9_-].
func SanitizeProject(project string) string {
	s := strings.ToLower(strings.TrimSpace(project))
	s = whitespaceRe.ReplaceAllString(s, "-")
	return slugRejectRe.ReplaceAllString(s, "")
}

// IDPrefix derives the task id prefix for a sanitized project slug:
// upper-cased, truncated to 10 characters.
func IDPrefix(project string) string {
	p := strings.ToUpper(project)
	if len(p) > prefixLen {
		p = p[:prefixLen]
	}
	return p
}

// lock returns the mutex for the given serialization key.
func (e *Engine) lock(key string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	m, ok := e.locks[key]
	if !ok {
		m = &sync.Mutex{}
		e.locks[key] = m
	}
	return m
}

// CreateInput carries the caller-supplied fields for a new task.
type CreateInput struct {
	Title       string
	Project     string
	Description string
	TrustLevel  models.TrustLevel // defaults to PROTOTYPE
	Priority    models.Priority   // defaults to NORMAL
}

// Create validates input, allocates the next id for the project prefix, and
// inserts the task in queued status. Allocation and insert are serialized
// per prefix so concurrent creates never reuse a sequence number.
func (e *Engine) Create(in CreateInput) (*models.Task, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, apperr.Domainf("title is required")
	}
	if len([]rune(title)) > maxTitleLen {
		return nil, apperr.Domainf("title exceeds %d characters", maxTitleLen)
	}
	if len([]rune(in.Description)) > maxDescriptionLen {
		return nil, apperr.Domainf("description exceeds %d characters", maxDescriptionLen)
	}

	project := SanitizeProject(in.Project)
	if project == "" {
		return nil, apperr.Domainf("project is empty after sanitization")
	}

	trust := in.TrustLevel
	if trust == "" {
		trust = models.TrustPrototype
	}
	if !trust.Valid() {
		return nil, apperr.Domainf("invalid trust level: %s", trust)
	}
	priority := in.Priority
	if priority == "" {
		priority = models.PriorityNormal
	}
	if !priority.Valid() {
		return nil, apperr.Domainf("invalid priority: %s", priority)
	}

	prefix := IDPrefix(project)
	lk := e.lock("alloc:" + prefix)
	lk.Lock()
	defer lk.Unlock()

	max, err := e.db.MaxTaskSuffix(prefix)
	if err != nil {
		return nil, err
	}

	t := &models.Task{
		ID:          fmt.Sprintf("%s-%03d", prefix, max+1),
		Project:     project,
		Title:       title,
		Description: in.Description,
		Status:      models.StatusQueued,
		TrustLevel:  trust,
		Priority:    priority,
		CreatedAt:   time.Now().UTC(),
	}
	if err := e.db.InsertTask(t); err != nil {
		return nil, err
	}
	e.syncMirror(t)
	e.emit("created", t.ID)
	return t, nil
}

// Get returns a task by id, or nil when it does not exist.
func (e *Engine) Get(id string) (*models.Task, error) {
	return e.db.GetTask(id)
}

// Activate transitions a task to active. Terminal tasks are rejected with a
// domain error. Any other active task in the same project is demoted to
// queued first; demotion and activation apply atomically. started_at is set
// only on the first activation.
func (e *Engine) Activate(id string) (*models.Task, error) {
	t, err := e.db.GetTask(id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, apperr.ErrNotFound
	}
	if t.Status.Terminal() {
		return nil, apperr.Domainf("cannot activate: status=%s", t.Status)
	}

	lk := e.lock("activate:" + t.Project)
	lk.Lock()
	err = e.db.ActivateTask(id, t.Project, time.Now().UTC())
	lk.Unlock()
	if err != nil {
		return nil, err
	}

	updated, err := e.db.GetTask(id)
	if err != nil {
		return nil, err
	}
	e.syncMirror(updated)
	e.emit("updated", id)
	return updated, nil
}

// Complete marks a task completed and stamps completed_at. The transition
// is unconditional: re-completing a terminal task is accepted.
func (e *Engine) Complete(id string) (*models.Task, error) {
	ok, err := e.db.CompleteTask(id, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.ErrNotFound
	}
	t, err := e.db.GetTask(id)
	if err != nil {
		return nil, err
	}
	e.syncMirror(t)
	e.emit("updated", id)
	return t, nil
}

// Cancel marks a task cancelled. Unconditional, like Complete.
func (e *Engine) Cancel(id string) (*models.Task, error) {
	ok, err := e.db.CancelTask(id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.ErrNotFound
	}
	t, err := e.db.GetTask(id)
	if err != nil {
		return nil, err
	}
	e.syncMirror(t)
	e.emit("updated", id)
	return t, nil
}

// Delete removes a task and reports whether a row existed. The mirror
// remove receives the pre-deletion entity.
func (e *Engine) Delete(id string) (bool, error) {
	t, err := e.db.GetTask(id)
	if err != nil {
		return false, err
	}
	if t == nil {
		return false, nil
	}
	deleted, err := e.db.DeleteTask(id)
	if err != nil {
		return false, err
	}
	if deleted {
		if e.mirror != nil {
			if rmErr := e.mirror.RemoveTask(t); rmErr != nil {
				e.logger.Warn("taskflow: mirror remove failed",
					slog.String("task", t.ID), slog.String("error", rmErr.Error()))
			}
		}
		e.emit("deleted", id)
	}
	return deleted, nil
}

// Active returns the single active task for a project, or nil.
func (e *Engine) Active(project string) (*models.Task, error) {
	return e.db.ActiveTask(project)
}

// Queued returns queued tasks ordered by priority rank then creation time.
func (e *Engine) Queued(project string, limit int) ([]models.Task, error) {
	return e.db.QueuedTasks(project, limit)
}

func (e *Engine) emit(kind, id string) {
	if e.Events != nil {
		e.Events(kind, "task", id)
	}
}

// syncMirror exports a task best-effort; failures never reach the caller.
func (e *Engine) syncMirror(t *models.Task) {
	if e.mirror == nil || t == nil {
		return
	}
	if err := e.mirror.SyncTask(t); err != nil {
		e.logger.Warn("taskflow: mirror sync failed",
			slog.String("task", t.ID), slog.String("error", err.Error()))
	}
}
