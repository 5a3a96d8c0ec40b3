//go:build sqlite_fts5

package index

import (
	"database/sql"
	"fmt"
	"strings"
)

func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS docs_fts USING fts5(
			link UNINDEXED,
			title,
			description,
			body,
			tags,
			tokenize = 'unicode61 remove_diacritics 2'
		);
	`)
	return err
}

func ftsUpsert(tx *sql.Tx, row DocRow, body string) error {
	_, _ = tx.Exec(`DELETE FROM docs_fts WHERE link = ?`, row.Link)
	_, err := tx.Exec(`INSERT INTO docs_fts (link, title, description, body, tags) VALUES (?, ?, ?, ?, ?)`,
		row.Link, row.Title, row.Description, body, strings.Join(row.Tags, " "))
	if err != nil {
		return fmt.Errorf("index: upsert fts: %w", err)
	}
	return nil
}

func ftsDelete(tx *sql.Tx, link string) {
	_, _ = tx.Exec(`DELETE FROM docs_fts WHERE link = ?`, link)
}

// Search performs an FTS5 full-text search and returns matching results with snippets.
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.conn.Query(`
		SELECT link,
		       title,
		       snippet(docs_fts, 3, '<b>', '</b>', '...', 64)
		FROM docs_fts
		WHERE docs_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}
	defer rows.Close()

	var out []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.Link, &r.Title, &r.Snippet); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
