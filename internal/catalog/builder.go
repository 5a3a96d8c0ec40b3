// Package catalog builds the corpus catalog: it scans category directories,
// extracts front matter from each document, normalizes one record per file,
// and assembles the full catalog mapping.
package catalog

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/starford/othala/internal/checksum"
	"github.com/starford/othala/internal/frontmatter"
	"github.com/starford/othala/internal/models"
	"github.com/starford/othala/internal/storage"
)

// DefaultDescription is the placeholder used when a document carries no
// description in its front matter.
const DefaultDescription = "No description provided"

// DefaultAuthor is the placeholder used for the enriched author field.
const DefaultAuthor = "Unknown"

// Options parameterizes one catalog build. The two historical
// configurations of the tool are reproduced purely through these values;
// there is a single pipeline.
type Options struct {
	// Categories is the ordered set of category directory names to scan.
	Categories []string
	// EmitCategory includes the enclosing category name in each record.
	EmitCategory bool
	// QuoteDescription wraps the final description value (defaults
	// included) in an extra pair of literal quote characters.
	QuoteDescription bool
	// EmitGenerated adds a top-level RFC3339 build timestamp.
	EmitGenerated bool
	// Enrich projects the author/created/tags fields with their defaults.
	Enrich bool
}

// Entry pairs a built record with the data the search index needs.
type Entry struct {
	Category string
	Record   models.Record
	Body     string
	Checksum string
}

// Builder runs the scan → extract → normalize pipeline over a corpus.
type Builder struct {
	store storage.Provider
	opts  Options
	now   func() time.Time
}

// NewBuilder creates a Builder. nowFn supplies the build time used for the
// generated timestamp and the created-date default; pass nil for time.Now.
func NewBuilder(store storage.Provider, opts Options, nowFn func() time.Time) *Builder {
	if nowFn == nil {
		nowFn = time.Now
	}
	return &Builder{store: store, opts: opts, now: nowFn}
}

// Build scans every configured category and assembles the catalog. A
// missing category directory yields an empty sequence for that category; a
// document with absent or malformed front matter falls back to full
// defaults. An unreadable file or directory is fatal: no partial catalog is
// produced.
func (b *Builder) Build() (*models.Catalog, []Entry, error) {
	buildTime := b.now()
	cat := models.NewCatalog(b.opts.Categories)
	if b.opts.EmitGenerated {
		cat.Generated = buildTime.UTC().Format(time.RFC3339)
	}

	var entries []Entry
	for _, category := range b.opts.Categories {
		names, err := b.store.ListCategory(category)
		if err != nil {
			return nil, nil, fmt.Errorf("catalog: scan %s: %w", category, err)
		}
		for _, name := range names {
			data, err := b.store.Read(category + "/" + name)
			if err != nil {
				return nil, nil, fmt.Errorf("catalog: %w", err)
			}
			meta, body := frontmatter.Parse(data)
			rec := b.normalize(category, name, meta, buildTime)
			cat.Append(category, rec)
			entries = append(entries, Entry{
				Category: category,
				Record:   rec,
				Body:     body,
				Checksum: checksum.Sum(data),
			})
		}
	}
	return cat, entries, nil
}

// normalize builds one record from a (category, filename, metadata) triple.
// Filename and link are derived purely from disk; front matter link or
// category keys are never consulted for them.
func (b *Builder) normalize(category, filename string, meta frontmatter.Metadata, buildTime time.Time) models.Record {
	rec := models.Record{
		Filename: filename,
		Link:     category + "/" + filename,
	}

	if t, ok := meta.String("title"); ok && t != "" {
		rec.Title = t
	} else {
		rec.Title = strings.TrimSuffix(filename, filepath.Ext(filename))
	}

	desc := DefaultDescription
	if d, ok := meta.String("description"); ok && d != "" {
		desc = d
	}
	if b.opts.QuoteDescription {
		desc = `"` + desc + `"`
	}
	rec.Description = desc

	if b.opts.EmitCategory {
		rec.Category = category
	}

	if b.opts.Enrich {
		rec.Author = DefaultAuthor
		if a, ok := meta.String("author"); ok && a != "" {
			rec.Author = a
		}
		rec.Created = buildTime.Format("2006-01-02")
		if c, ok := meta.Date("created"); ok && c != "" {
			rec.Created = c
		}
		rec.Tags = []string{}
		if tags, ok := meta.StringList("tags"); ok && tags != nil {
			rec.Tags = tags
		}
	}

	return rec
}
