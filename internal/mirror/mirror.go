// Package mirror exports entities to a human-readable Markdown vault.
// Exports are best-effort: primary persistence never depends on them.
package mirror

import (
	"log/slog"
	"path"

	"github.com/Zarosk/mythril-core/internal/checksum"
	"github.com/Zarosk/mythril-core/internal/models"
	"github.com/Zarosk/mythril-core/internal/storage"
)

// Vault subdirectories, one per entity kind.
const (
	TasksDir     = "tasks"
	NotesDir     = "notes"
	ArtifactsDir = "artifacts"
)

// Exporter writes mirrored Markdown files keyed by entity id. It satisfies
// the taskflow.Mirror and capture.Mirror ports.
type Exporter struct {
	store  storage.Provider
	logger *slog.Logger
}

// NewExporter creates an exporter over the given vault provider.
func NewExporter(store storage.Provider, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{store: store, logger: logger}
}

// TaskPath returns the vault-relative path of a mirrored task.
func TaskPath(id string) string { return path.Join(TasksDir, id+".md") }

// NotePath returns the vault-relative path of a mirrored note.
func NotePath(id string) string { return path.Join(NotesDir, id+".md") }

// ArtifactPath returns the vault-relative path of a mirrored artifact.
func ArtifactPath(id string) string { return path.Join(ArtifactsDir, id+".md") }

// write stores data at rel unless the on-disk content already matches.
func (x *Exporter) write(rel string, data []byte) error {
	if existing, err := x.store.Read(rel); err == nil {
		if checksum.Sum(existing) == checksum.Sum(data) {
			x.logger.Debug("mirror: unchanged", slog.String("path", rel))
			return nil
		}
	}
	return x.store.Write(rel, data)
}

// SyncTask exports a task.
func (x *Exporter) SyncTask(t *models.Task) error {
	data, err := RenderTask(t)
	if err != nil {
		return err
	}
	return x.write(TaskPath(t.ID), data)
}

// RemoveTask deletes a task's mirror file.
func (x *Exporter) RemoveTask(t *models.Task) error {
	return x.store.Delete(TaskPath(t.ID))
}

// SyncNote exports a note.
func (x *Exporter) SyncNote(n *models.Note) error {
	data, err := RenderNote(n)
	if err != nil {
		return err
	}
	return x.write(NotePath(n.ID), data)
}

// RemoveNote deletes a note's mirror file.
func (x *Exporter) RemoveNote(n *models.Note) error {
	return x.store.Delete(NotePath(n.ID))
}

// SyncArtifact exports an artifact.
func (x *Exporter) SyncArtifact(a *models.Artifact) error {
	data, err := RenderArtifact(a)
	if err != nil {
		return err
	}
	return x.write(ArtifactPath(a.ID), data)
}

// RemoveArtifact deletes an artifact's mirror file.
func (x *Exporter) RemoveArtifact(a *models.Artifact) error {
	return x.store.Delete(ArtifactPath(a.ID))
}
