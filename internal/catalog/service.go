package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/starford/othala/internal/apperr"
	"github.com/starford/othala/internal/models"
	"github.com/starford/othala/internal/storage"
)

// Searcher is the slice of the index the service depends on.
type Searcher interface {
	Search(query string, limit int) ([]SearchHit, error)
}

// SearchHit is one full-text search result.
type SearchHit struct {
	Link    string `json:"link"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// CategorySummary describes one category of the latest build.
type CategorySummary struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Service owns the latest built catalog and coordinates rebuilds for the
// serve and MCP surfaces. Rebuild is the only mutator; readers get the
// result of the most recent successful build.
type Service struct {
	builder  *Builder
	store    storage.Provider
	searcher Searcher
	output   string
	logger   *slog.Logger

	// onRebuild, if set, runs after every successful rebuild with the
	// built entries (index sync hook).
	onRebuild func([]Entry)

	mu     sync.RWMutex
	latest *models.Catalog
	raw    []byte
}

// NewService creates a Service writing the catalog to output (relative to
// the corpus root).
func NewService(builder *Builder, store storage.Provider, searcher Searcher, output string, logger *slog.Logger) *Service {
	return &Service{
		builder:  builder,
		store:    store,
		searcher: searcher,
		output:   output,
		logger:   logger,
	}
}

// OnRebuild registers a hook invoked with the entries of every successful
// rebuild. Must be called before the service is shared across goroutines.
func (s *Service) OnRebuild(fn func([]Entry)) {
	s.onRebuild = fn
}

// Rebuild regenerates the catalog from scratch: scan, normalize, serialize,
// atomic write. Returns the total record count. On failure the previous
// catalog (in memory and on disk) is left untouched.
func (s *Service) Rebuild(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	cat, entries, err := s.builder.Build()
	if err != nil {
		return 0, err
	}
	raw, err := cat.Encode()
	if err != nil {
		return 0, fmt.Errorf("catalog: encode: %w", err)
	}
	if err := s.store.WriteFile(s.output, raw); err != nil {
		return 0, fmt.Errorf("catalog: write output: %w", err)
	}

	s.mu.Lock()
	s.latest = cat
	s.raw = raw
	s.mu.Unlock()

	if s.onRebuild != nil {
		s.onRebuild(entries)
	}

	count := cat.Count()
	s.logger.Info("catalog rebuilt",
		slog.String("output", s.output),
		slog.Int("records", count),
		slog.Int("categories", len(cat.Categories)))
	return count, nil
}

// CatalogJSON returns the serialized bytes of the latest build, exactly as
// written to the output file.
func (s *Service) CatalogJSON() []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.raw
}

// Count returns the total record count of the latest build.
func (s *Service) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.latest == nil {
		return 0
	}
	return s.latest.Count()
}

// Categories summarizes the latest build in declaration order.
func (s *Service) Categories() []CategorySummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.latest == nil {
		return []CategorySummary{}
	}
	out := make([]CategorySummary, 0, len(s.latest.Categories))
	for _, name := range s.latest.Categories {
		out = append(out, CategorySummary{Name: name, Count: len(s.latest.Records[name])})
	}
	return out
}

// Records returns the record sequence of one category from the latest
// build.
func (s *Service) Records(category string) ([]models.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.latest == nil {
		return nil, apperr.ErrUnknownCategory
	}
	recs, ok := s.latest.Records[category]
	if !ok {
		return nil, apperr.ErrUnknownCategory
	}
	return recs, nil
}

// Document returns the raw markdown of one cataloged document by link.
func (s *Service) Document(ctx context.Context, link string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := s.store.Read(link)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", apperr.ErrNotFound, link)
	}
	return data, nil
}

// Search delegates to the full-text index.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]SearchHit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.searcher.Search(query, limit)
}
