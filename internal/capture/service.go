// Package capture provides plain CRUD over notes and artifacts. The search
// engine reads these collections; capture never touches tasks.
package capture

import (
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Zarosk/mythril-core/internal/apperr"
	"github.com/Zarosk/mythril-core/internal/events"
	"github.com/Zarosk/mythril-core/internal/models"
	"github.com/Zarosk/mythril-core/internal/store"
	"github.com/Zarosk/mythril-core/internal/taskflow"
)

const (
	maxContentLen      = 100000
	defaultContentType = "text/plain"
)

// Mirror is the best-effort export port for captured entities.
type Mirror interface {
	SyncNote(n *models.Note) error
	RemoveNote(n *models.Note) error
	SyncArtifact(a *models.Artifact) error
	RemoveArtifact(a *models.Artifact) error
}

// Service coordinates note and artifact persistence, mirroring, and events.
type Service struct {
	db     *store.DB
	mirror Mirror // may be nil
	logger *slog.Logger

	// Events, when set, is called after successful mutations.
	Events events.Callback
}

// NewService creates a capture service. mirror may be nil.
func NewService(db *store.DB, mirror Mirror, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{db: db, mirror: mirror, logger: logger}
}

func (s *Service) emit(kind, entityType, id string) {
	if s.Events != nil {
		s.Events(kind, entityType, id)
	}
}

// NoteInput carries caller-supplied note fields.
type NoteInput struct {
	Content string
	Project string
	Tags    []string
}

func (s *Service) validateNote(in NoteInput) (string, string, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return "", "", apperr.Domainf("content is required")
	}
	if len([]rune(content)) > maxContentLen {
		return "", "", apperr.Domainf("content exceeds %d characters", maxContentLen)
	}
	project := ""
	if strings.TrimSpace(in.Project) != "" {
		project = taskflow.SanitizeProject(in.Project)
		if project == "" {
			return "", "", apperr.Domainf("project is empty after sanitization")
		}
	}
	return content, project, nil
}

// CreateNote persists a new note and mirrors it best-effort.
func (s *Service) CreateNote(in NoteInput) (*models.Note, error) {
	content, project, err := s.validateNote(in)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	n := &models.Note{
		ID:        uuid.NewString(),
		Content:   content,
		Project:   project,
		Tags:      models.NewTags(in.Tags),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.db.InsertNote(n); err != nil {
		return nil, err
	}
	s.syncNote(n)
	s.emit("created", "note", n.ID)
	return n, nil
}

// GetNote returns a note by id, or nil when absent.
func (s *Service) GetNote(id string) (*models.Note, error) {
	return s.db.GetNote(id)
}

// UpdateNote replaces a note's content, project, and tags.
func (s *Service) UpdateNote(id string, in NoteInput) (*models.Note, error) {
	content, project, err := s.validateNote(in)
	if err != nil {
		return nil, err
	}
	existing, err := s.db.GetNote(id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, apperr.ErrNotFound
	}
	existing.Content = content
	existing.Project = project
	existing.Tags = models.NewTags(in.Tags)
	existing.UpdatedAt = time.Now().UTC()
	if _, err := s.db.UpdateNote(existing); err != nil {
		return nil, err
	}
	s.syncNote(existing)
	s.emit("updated", "note", existing.ID)
	return existing, nil
}

// DeleteNote removes a note and reports whether it existed.
func (s *Service) DeleteNote(id string) (bool, error) {
	n, err := s.db.GetNote(id)
	if err != nil {
		return false, err
	}
	if n == nil {
		return false, nil
	}
	deleted, err := s.db.DeleteNote(id)
	if err != nil {
		return false, err
	}
	if deleted {
		if s.mirror != nil {
			if rmErr := s.mirror.RemoveNote(n); rmErr != nil {
				s.logger.Warn("capture: mirror remove failed",
					slog.String("note", n.ID), slog.String("error", rmErr.Error()))
			}
		}
		s.emit("deleted", "note", n.ID)
	}
	return deleted, nil
}

// ListNotes returns notes newest first, optionally filtered by project.
func (s *Service) ListNotes(project string, limit int) ([]models.Note, error) {
	return s.db.ListNotes(project, limit)
}

// ArtifactInput carries caller-supplied artifact fields.
type ArtifactInput struct {
	Title       string
	Content     string
	ContentType string
	Project     string
}

// CreateArtifact persists a new artifact and mirrors it best-effort.
func (s *Service) CreateArtifact(in ArtifactInput) (*models.Artifact, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, apperr.Domainf("title is required")
	}
	if in.Content == "" {
		return nil, apperr.Domainf("content is required")
	}
	contentType := strings.TrimSpace(in.ContentType)
	if contentType == "" {
		contentType = defaultContentType
	}
	project := ""
	if strings.TrimSpace(in.Project) != "" {
		project = taskflow.SanitizeProject(in.Project)
		if project == "" {
			return nil, apperr.Domainf("project is empty after sanitization")
		}
	}

	a := &models.Artifact{
		ID:          uuid.NewString(),
		Title:       title,
		Content:     in.Content,
		ContentType: contentType,
		Project:     project,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.db.InsertArtifact(a); err != nil {
		return nil, err
	}
	s.syncArtifact(a)
	s.emit("created", "artifact", a.ID)
	return a, nil
}

// GetArtifact returns an artifact by id, or nil when absent.
func (s *Service) GetArtifact(id string) (*models.Artifact, error) {
	return s.db.GetArtifact(id)
}

// DeleteArtifact removes an artifact and reports whether it existed.
func (s *Service) DeleteArtifact(id string) (bool, error) {
	a, err := s.db.GetArtifact(id)
	if err != nil {
		return false, err
	}
	if a == nil {
		return false, nil
	}
	deleted, err := s.db.DeleteArtifact(id)
	if err != nil {
		return false, err
	}
	if deleted {
		if s.mirror != nil {
			if rmErr := s.mirror.RemoveArtifact(a); rmErr != nil {
				s.logger.Warn("capture: mirror remove failed",
					slog.String("artifact", a.ID), slog.String("error", rmErr.Error()))
			}
		}
		s.emit("deleted", "artifact", a.ID)
	}
	return deleted, nil
}

// ListArtifacts returns artifacts newest first, optionally filtered by project.
func (s *Service) ListArtifacts(project string, limit int) ([]models.Artifact, error) {
	return s.db.ListArtifacts(project, limit)
}

func (s *Service) syncNote(n *models.Note) {
	if s.mirror == nil {
		return
	}
	if err := s.mirror.SyncNote(n); err != nil {
		s.logger.Warn("capture: mirror sync failed",
			slog.String("note", n.ID), slog.String("error", err.Error()))
	}
}

func (s *Service) syncArtifact(a *models.Artifact) {
	if s.mirror == nil {
		return
	}
	if err := s.mirror.SyncArtifact(a); err != nil {
		s.logger.Warn("capture: mirror sync failed",
			slog.String("artifact", a.ID), slog.String("error", err.Error()))
	}
}
