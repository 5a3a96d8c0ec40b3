package index

import (
	"log/slog"
	"time"

	"github.com/starford/othala/internal/catalog"
)

// Sync brings the index in line with the entries of one catalog build:
//   - new or changed records (by checksum) are upserted
//   - records no longer present in the catalog are deleted
func Sync(db DocIndex, entries []catalog.Entry, logger *slog.Logger) error {
	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	current := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		current[e.Record.Link] = struct{}{}

		if checksums[e.Record.Link] == e.Checksum {
			continue
		}

		row := DocRow{
			Link:        e.Record.Link,
			Category:    e.Category,
			Filename:    e.Record.Filename,
			Title:       e.Record.Title,
			Description: e.Record.Description,
			Tags:        e.Record.Tags,
			Checksum:    e.Checksum,
			UpdatedAt:   time.Now(),
		}
		if err := db.UpsertDoc(row, e.Body); err != nil {
			logger.Warn("sync: index failed", slog.String("link", e.Record.Link), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: indexed", slog.String("link", e.Record.Link))
		}
	}

	// Remove stale entries.
	for link := range checksums {
		if _, ok := current[link]; !ok {
			if err := db.DeleteDoc(link); err != nil {
				logger.Warn("sync: delete failed", slog.String("link", link), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.String("link", link))
			}
		}
	}

	return nil
}
