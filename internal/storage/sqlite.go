// Package storage keeps a rebuildable SQLite index of a classified bibliography.
// The .bib file stays the source of truth; the database is a query cache keyed
// by the file's path and content fingerprint.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

// DroppedCategory is stored for records that matched no category.
const DroppedCategory = "dropped"

// Entry is one cached bibliography record with its classification and
// formatted citation.
type Entry struct {
	Key       string `json:"key"`
	EntryType string `json:"entry_type"`
	Category  string `json:"category"`
	Title     string `json:"title,omitempty"`
	Citation  string `json:"citation,omitempty"`
	Position  int    `json:"position"`
}

// DB wraps a SQLite database connection.
type DB struct {
	db *sql.DB
}

// OpenDB opens or creates a SQLite database at the given path, creating
// parent directories as needed.
func OpenDB(path string) (*DB, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating cache directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS records (
			key TEXT NOT NULL,
			entry_type TEXT NOT NULL,
			category TEXT NOT NULL,
			title TEXT,
			citation TEXT,
			position INTEGER PRIMARY KEY
		);

		CREATE INDEX IF NOT EXISTS idx_records_category ON records(category);

		CREATE VIRTUAL TABLE IF NOT EXISTS records_fts USING fts5(
			position UNINDEXED,
			title,
			citation
		);

		-- Source path and fingerprint of the last build
		CREATE TABLE IF NOT EXISTS _meta (
			key TEXT PRIMARY KEY,
			value TEXT
		);
	`

	_, err := db.Exec(schema)
	return err
}

// IsFresh reports whether the cache was last built from source with the
// given fingerprint.
func (d *DB) IsFresh(source, fingerprint string) (bool, error) {
	var gotSource, gotFingerprint string
	err := d.db.QueryRow(`SELECT value FROM _meta WHERE key = 'source'`).Scan(&gotSource)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("reading cache metadata: %w", err)
	}
	err = d.db.QueryRow(`SELECT value FROM _meta WHERE key = 'fingerprint'`).Scan(&gotFingerprint)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("reading cache metadata: %w", err)
	}
	return gotSource == source && gotFingerprint == fingerprint, nil
}

// Rebuild replaces all cached entries in one transaction and records the
// source path and fingerprint.
func (d *DB) Rebuild(source, fingerprint string, entries []Entry) error {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{"DELETE FROM records", "DELETE FROM records_fts", "DELETE FROM _meta"} {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("clearing cache: %w", err)
		}
	}

	recStmt, err := tx.Prepare(`
		INSERT INTO records (key, entry_type, category, title, citation, position)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing records insert: %w", err)
	}
	defer recStmt.Close()

	ftsStmt, err := tx.Prepare(`INSERT INTO records_fts (position, title, citation) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing fts insert: %w", err)
	}
	defer ftsStmt.Close()

	for _, e := range entries {
		if _, err := recStmt.Exec(e.Key, e.EntryType, e.Category, e.Title, e.Citation, e.Position); err != nil {
			return fmt.Errorf("inserting record %s: %w", e.Key, err)
		}
		if _, err := ftsStmt.Exec(e.Position, e.Title, e.Citation); err != nil {
			return fmt.Errorf("inserting fts for %s: %w", e.Key, err)
		}
	}

	if _, err := tx.Exec(`INSERT INTO _meta (key, value) VALUES ('source', ?), ('fingerprint', ?)`, source, fingerprint); err != nil {
		return fmt.Errorf("writing cache metadata: %w", err)
	}

	return tx.Commit()
}

const selectEntryFields = `key, entry_type, category, COALESCE(title, ''), COALESCE(citation, ''), position`

// List returns cached entries in source order. An empty category lists all
// entries; limit <= 0 means no limit.
func (d *DB) List(category string, limit int) ([]Entry, error) {
	query := `SELECT ` + selectEntryFields + ` FROM records`
	var args []interface{}
	if category != "" {
		query += ` WHERE category = ?`
		args = append(args, category)
	}
	query += ` ORDER BY position`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing records: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// Search performs a full-text search over titles and citations.
func (d *DB) Search(query string, limit int) ([]Entry, error) {
	ftsQuery := prepareFTSQuery(query)
	if ftsQuery == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}

	rows, err := d.db.Query(`
		SELECT `+selectEntryFields+`
		FROM records
		WHERE position IN (SELECT position FROM records_fts WHERE records_fts MATCH ?)
		ORDER BY position
		LIMIT ?`, ftsQuery, limit)
	if err != nil {
		return nil, fmt.Errorf("searching: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// Counts returns the number of cached entries per category.
func (d *DB) Counts() (map[string]int, error) {
	rows, err := d.db.Query(`SELECT category, COUNT(*) FROM records GROUP BY category`)
	if err != nil {
		return nil, fmt.Errorf("counting records: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var cat string
		var n int
		if err := rows.Scan(&cat, &n); err != nil {
			return nil, fmt.Errorf("scanning count: %w", err)
		}
		counts[cat] = n
	}
	return counts, rows.Err()
}

func scanEntries(rows *sql.Rows) ([]Entry, error) {
	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Key, &e.EntryType, &e.Category, &e.Title, &e.Citation, &e.Position); err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// prepareFTSQuery quotes queries containing FTS5 syntax characters.
func prepareFTSQuery(query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return query
	}

	if strings.ContainsAny(query, "\"*+-:(){}[]^~.,") {
		query = strings.ReplaceAll(query, "\"", "\"\"")
		return "\"" + query + "\""
	}

	return query
}
