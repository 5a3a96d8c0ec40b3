package index

import (
	"encoding/json"
	"fmt"
	"time"
)

// DocRow represents a row in the docs table.
type DocRow struct {
	Link        string
	Category    string
	Filename    string
	Title       string
	Description string
	Tags        []string
	Checksum    string
	UpdatedAt   time.Time
}

// SearchResult represents one search hit.
type SearchResult struct {
	Link    string `json:"link"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// UpsertDoc inserts or replaces a catalog record and its FTS entry within a
// transaction.
func (db *DB) UpsertDoc(row DocRow, body string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	tagsJSON, _ := json.Marshal(row.Tags)

	// Upsert docs table (includes body for fallback search).
	_, err = tx.Exec(`
		INSERT INTO docs (link, category, filename, title, description, tags, body, checksum, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(link) DO UPDATE SET
			category    = excluded.category,
			filename    = excluded.filename,
			title       = excluded.title,
			description = excluded.description,
			tags        = excluded.tags,
			body        = excluded.body,
			checksum    = excluded.checksum,
			updated_at  = excluded.updated_at
	`, row.Link, row.Category, row.Filename, row.Title, row.Description, string(tagsJSON), body, row.Checksum, row.UpdatedAt)
	if err != nil {
		return fmt.Errorf("index: upsert doc: %w", err)
	}

	// FTS upsert (no-op when the FTS5 tag is absent).
	if err := ftsUpsert(tx, row, body); err != nil {
		return err
	}

	return tx.Commit()
}

// DeleteDoc removes a catalog record and its FTS entry.
func (db *DB) DeleteDoc(link string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, link)
	_, _ = tx.Exec(`DELETE FROM docs WHERE link = ?`, link)

	return tx.Commit()
}

// GetChecksum returns the stored checksum for a record, or empty string if
// not found.
func (db *DB) GetChecksum(link string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM docs WHERE link = ?`, link).Scan(&cs)
	if err != nil {
		return "", nil // not found is fine
	}
	return cs, nil
}

// AllChecksums returns the checksum of every indexed record keyed by link.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT link, checksum FROM docs`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var link, cs string
		if err := rows.Scan(&link, &cs); err != nil {
			return nil, err
		}
		out[link] = cs
	}
	return out, rows.Err()
}
