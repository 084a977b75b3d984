package mcpserver

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/Zarosk/mythril-core/internal"
	"github.com/Zarosk/mythril-core/internal/capture"
	"github.com/Zarosk/mythril-core/internal/mirror"
	"github.com/Zarosk/mythril-core/internal/search"
	"github.com/Zarosk/mythril-core/internal/storage"
	"github.com/Zarosk/mythril-core/internal/store"
	"github.com/Zarosk/mythril-core/internal/taskflow"
)

// RunStdio wires the services against the configured store and serves MCP
// over stdin/stdout. Logs go to stderr so stdout stays a clean transport.
func RunStdio(cfg *internal.Config) error {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	db, err := store.Open(cfg.SQLite.Path)
	if err != nil {
		return fmt.Errorf("init store: %w", err)
	}
	defer db.Close()

	var taskMirror taskflow.Mirror
	var captureMirror capture.Mirror
	if cfg.Mirror.Enabled {
		if err := os.MkdirAll(cfg.Mirror.Path, 0o755); err != nil {
			return fmt.Errorf("create vault dir: %w", err)
		}
		vault, err := storage.NewFS(cfg.Mirror.Path)
		if err != nil {
			return fmt.Errorf("init vault storage: %w", err)
		}
		exporter := mirror.NewExporter(vault, logger)
		taskMirror = exporter
		captureMirror = exporter
	}

	srv := New(
		taskflow.NewEngine(db, taskMirror, logger),
		capture.NewService(db, captureMirror, logger),
		search.NewEngine(db),
	)
	return srv.ServeStdio()
}
