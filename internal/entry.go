// Package internal provides the main application initialization and runtime logic.
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

	"github.com/starford/othala/internal/api"
	"github.com/starford/othala/internal/catalog"
	"github.com/starford/othala/internal/index"
	"github.com/starford/othala/internal/mcpserver"
	"github.com/starford/othala/internal/sse"
	"github.com/starford/othala/internal/storage"
	"github.com/starford/othala/internal/watcher"
)

// builderOptions maps the configured catalog projection onto builder options.
func builderOptions(cfg *Config) catalog.Options {
	return catalog.Options{
		Categories:       cfg.Corpus.Categories,
		EmitCategory:     cfg.Catalog.EmitCategory,
		QuoteDescription: cfg.Catalog.QuoteDescription,
		EmitGenerated:    cfg.Catalog.EmitGenerated,
		Enrich:           cfg.Catalog.Enrich,
	}
}

// searchAdapter adapts the SQLite index to the catalog service's Searcher.
type searchAdapter struct {
	db index.DocIndex
}

func (a searchAdapter) Search(query string, limit int) ([]catalog.SearchHit, error) {
	results, err := a.db.Search(query, limit)
	if err != nil {
		return nil, err
	}
	hits := make([]catalog.SearchHit, len(results))
	for i, r := range results {
		hits[i] = catalog.SearchHit{Link: r.Link, Title: r.Title, Snippet: r.Snippet}
	}
	return hits, nil
}

// Build runs the one-shot batch job: scan the corpus, build the catalog,
// write the output file, print a single summary line. Any unreadable file
// or unwritable output is fatal and leaves the previous output untouched.
func Build(ctx context.Context, cfg *Config) error {
	store, err := storage.NewFS(cfg.Corpus.Path)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}

	b := catalog.NewBuilder(store, builderOptions(cfg), nil)
	cat, _, err := b.Build()
	if err != nil {
		return err
	}
	raw, err := cat.Encode()
	if err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}
	if err := store.WriteFile(cfg.Catalog.Output, raw); err != nil {
		return err
	}

	fmt.Printf("Wrote %s: %d records across %d categories\n",
		cfg.Catalog.Output, cat.Count(), len(cat.Categories))
	return nil
}

// newService wires storage, builder, index, and the catalog service.
func newService(cfg *Config, nowFn func() time.Time, logger *slog.Logger) (*catalog.Service, storage.Provider, *index.DB, error) {
	store, err := storage.NewFS(cfg.Corpus.Path)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("init storage: %w", err)
	}

	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("init index: %w", err)
	}

	b := catalog.NewBuilder(store, builderOptions(cfg), nowFn)
	svc := catalog.NewService(b, store, searchAdapter{db: db}, cfg.Catalog.Output, logger)
	svc.OnRebuild(func(entries []catalog.Entry) {
		if err := index.Sync(db, entries, logger); err != nil {
			logger.Warn("index sync failed", slog.String("error", err.Error()))
		}
	})
	return svc, store, db, nil
}

// Run starts the serve mode: initial catalog build, then an HTTP API with
// SSE updates and a file watcher that regenerates the catalog on corpus
// changes.
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
		slog.String("corpus_path", cfg.Corpus.Path),
		slog.String("output", cfg.Catalog.Output),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	svc, _, db, err := newService(cfg, app.nowFn, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	// Initial build. Same fatality policy as the one-shot build: either the
	// full catalog is written or the process does not come up.
	if _, err := svc.Rebuild(ctx); err != nil {
		return fmt.Errorf("initial build: %w", err)
	}

	// SSE broker.
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	// Build API router.
	apiRouter := api.NewRouter(svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

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

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Start the corpus watcher with the SSE callback.
	g.Go(func() error {
		return watcher.Watch(gCtx, cfg.Corpus.Path, watcher.DefaultDebounce, logger, func() error {
			n, err := svc.Rebuild(gCtx)
			if err != nil {
				return err
			}
			broker.PublishCatalogUpdated(n)
			return nil
		})
	})

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

// RunMCP builds the catalog once and serves the MCP tools over stdio.
// Logs go to stderr so stdout stays clean for the MCP transport.
func RunMCP(ctx context.Context, cfg *Config) error {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))

	svc, store, db, err := newService(cfg, nil, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := svc.Rebuild(ctx); err != nil {
		return fmt.Errorf("initial build: %w", err)
	}

	return mcpserver.New(store, svc).ServeStdio()
}
