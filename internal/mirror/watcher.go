package mirror

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/Zarosk/mythril-core/internal/store"
	"github.com/Zarosk/mythril-core/internal/storage"
)

// Watch starts an fsnotify watcher on the vault root and repairs mirror
// files until ctx is cancelled: a mirrored file that is deleted or
// clobbered externally is re-exported from the store, and files with no
// backing entity are removed during reconciliation. Entities whose files
// were never written (mirror disabled at the time) are not discovered
// here; they re-appear on their next mutation.
//
// New directories created at runtime are added to the watch list. Rename
// events schedule a debounced reconciliation pass.
func Watch(ctx context.Context, db *store.DB, exp *Exporter, fsStore storage.Provider, vaultRoot string, logger *slog.Logger) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirsRecursive(w, vaultRoot); err != nil {
		return err
	}

	logger.Info("mirror watcher: started", slog.String("root", vaultRoot))

	var reconcileTimer *time.Timer
	var reconcileCh <-chan time.Time

	scheduleReconcile := func() {
		if reconcileTimer == nil {
			reconcileTimer = time.NewTimer(200 * time.Millisecond)
			reconcileCh = reconcileTimer.C
		} else {
			reconcileTimer.Reset(200 * time.Millisecond)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if reconcileTimer != nil {
				reconcileTimer.Stop()
			}
			logger.Info("mirror watcher: stopped")
			return nil

		case <-reconcileCh:
			reconcile(db, exp, fsStore, logger)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			if ev.Op&fsnotify.Create != 0 {
				if isDir(ev.Name) {
					if addErr := addDirsRecursive(w, ev.Name); addErr != nil {
						logger.Warn("mirror watcher: add new dir failed",
							slog.String("path", ev.Name),
							slog.String("error", addErr.Error()))
					}
					continue
				}
			}

			if !strings.HasSuffix(ev.Name, ".md") {
				continue
			}
			rel, relErr := filepath.Rel(vaultRoot, ev.Name)
			if relErr != nil {
				continue
			}
			rel = filepath.ToSlash(rel)

			switch {
			case ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove) != 0:
				repair(db, exp, rel, logger)

			case ev.Op&fsnotify.Rename != 0:
				// The old path is gone; re-export it now and catch the
				// stray new-name file in the reconcile pass.
				repair(db, exp, rel, logger)
				scheduleReconcile()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("mirror watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// repair re-exports the entity backing rel, if it still exists. Files with
// unknown ids or an unknown kind directory are left for reconcile.
func repair(db *store.DB, exp *Exporter, rel string, logger *slog.Logger) {
	kind, id, ok := splitEntityPath(rel)
	if !ok {
		return
	}

	var err error
	found := false
	switch kind {
	case TasksDir:
		t, getErr := db.GetTask(id)
		if getErr != nil {
			err = getErr
		} else if t != nil {
			found = true
			err = exp.SyncTask(t)
		}
	case NotesDir:
		n, getErr := db.GetNote(id)
		if getErr != nil {
			err = getErr
		} else if n != nil {
			found = true
			err = exp.SyncNote(n)
		}
	case ArtifactsDir:
		a, getErr := db.GetArtifact(id)
		if getErr != nil {
			err = getErr
		} else if a != nil {
			found = true
			err = exp.SyncArtifact(a)
		}
	default:
		return
	}

	if err != nil {
		logger.Warn("mirror watcher: repair failed",
			slog.String("path", rel), slog.String("error", err.Error()))
		return
	}
	if found {
		logger.Debug("mirror watcher: repaired", slog.String("path", rel))
	}
}

// reconcile walks the vault and removes mirror files whose entity no
// longer exists, re-exporting the rest (no-op when checksums match).
func reconcile(db *store.DB, exp *Exporter, fsStore storage.Provider, logger *slog.Logger) {
	infos, err := fsStore.List("")
	if err != nil {
		logger.Warn("mirror watcher: reconcile list failed", slog.String("error", err.Error()))
		return
	}
	for _, info := range infos {
		rel := filepath.ToSlash(info.Path)
		kind, id, ok := splitEntityPath(rel)
		if !ok {
			continue
		}
		exists, lookErr := entityExists(db, kind, id)
		if lookErr != nil {
			logger.Warn("mirror watcher: reconcile lookup failed",
				slog.String("path", rel), slog.String("error", lookErr.Error()))
			continue
		}
		if !exists {
			if delErr := fsStore.Delete(rel); delErr != nil {
				logger.Warn("mirror watcher: reconcile delete failed",
					slog.String("path", rel), slog.String("error", delErr.Error()))
			} else {
				logger.Debug("mirror watcher: removed stray", slog.String("path", rel))
			}
			continue
		}
		repair(db, exp, rel, logger)
	}
}

func entityExists(db *store.DB, kind, id string) (bool, error) {
	switch kind {
	case TasksDir:
		t, err := db.GetTask(id)
		return t != nil, err
	case NotesDir:
		n, err := db.GetNote(id)
		return n != nil, err
	case ArtifactsDir:
		a, err := db.GetArtifact(id)
		return a != nil, err
	}
	return false, nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// addDirsRecursive adds root and all its subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}

// splitEntityPath parses "<kind>/<id>.md" into its parts.
func splitEntityPath(rel string) (kind, id string, ok bool) {
	parts := strings.SplitN(rel, "/", 2)
	if len(parts) != 2 || !strings.HasSuffix(parts[1], ".md") || strings.Contains(parts[1], "/") {
		return "", "", false
	}
	id = strings.TrimSuffix(parts[1], ".md")
	if id == "" {
		return "", "", false
	}
	return parts[0], id, true
}
