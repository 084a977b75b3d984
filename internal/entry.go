package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/Zarosk/mythril-core/internal/api"
	"github.com/Zarosk/mythril-core/internal/capture"
	"github.com/Zarosk/mythril-core/internal/events"
	"github.com/Zarosk/mythril-core/internal/feedback"
	"github.com/Zarosk/mythril-core/internal/mirror"
	"github.com/Zarosk/mythril-core/internal/search"
	"github.com/Zarosk/mythril-core/internal/storage"
	"github.com/Zarosk/mythril-core/internal/store"
	"github.com/Zarosk/mythril-core/internal/taskflow"
)

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.Bool("mirror_enabled", cfg.Mirror.Enabled),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Initialize SQLite store.
	db, err := store.Open(cfg.SQLite.Path)
	if err != nil {
		return fmt.Errorf("init store: %w", err)
	}
	defer db.Close()

	// Mirror vault (optional).
	var (
		exporter *mirror.Exporter
		vault    storage.Provider
	)
	if cfg.Mirror.Enabled {
		if err := os.MkdirAll(cfg.Mirror.Path, 0o755); err != nil {
			return fmt.Errorf("create vault dir: %w", err)
		}
		vault, err = storage.NewFS(cfg.Mirror.Path)
		if err != nil {
			return fmt.Errorf("init vault storage: %w", err)
		}
		exporter = mirror.NewExporter(vault, logger)
	}

	// SSE broker.
	broker := events.NewBroker()
	defer broker.Close()

	// Services. The exporter interfaces are nil-able, so pass typed nils
	// only when mirroring is on.
	var taskMirror taskflow.Mirror
	var captureMirror capture.Mirror
	if exporter != nil {
		taskMirror = exporter
		captureMirror = exporter
	}
	tasks := taskflow.NewEngine(db, taskMirror, logger)
	tasks.Events = broker.PublishEntityEvent
	captureSvc := capture.NewService(db, captureMirror, logger)
	captureSvc.Events = broker.PublishEntityEvent
	searchEngine := search.NewEngine(db)
	feedbackSvc := feedback.NewService(db)

	apiRouter := api.NewRouter(tasks, captureSvc, searchEngine, feedbackSvc,
		cfg.Auth.AuthEnabled(), cfg.Auth.Key, nil)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	// SSE endpoint.
	r.Get("/api/events", broker.ServeHTTP)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	g, gCtx := errgroup.WithContext(ctx)

	// Start the mirror repair watcher.
	if exporter != nil {
		g.Go(func() error {
			if err := mirror.Watch(gCtx, db, exporter, vault, cfg.Mirror.Path, logger); err != nil {
				logger.Warn("mirror watcher failed", slog.String("error", err.Error()))
			}
			return nil
		})
	}

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}
