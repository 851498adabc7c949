package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/hbnb/internal/models"
)

// Schema DDL for the sqlite snapshot table. position preserves insertion
// order across reloads.
const (
	createObjects = `CREATE TABLE IF NOT EXISTS objects (
    position INTEGER NOT NULL,
    key TEXT PRIMARY KEY,
    class TEXT NOT NULL,
    fields TEXT NOT NULL
);`

	createObjectsPositionIndex = `CREATE INDEX IF NOT EXISTS idx_objects_position ON objects(position);`
)

// SQLiteBackend keeps the snapshot as rows of a single sqlite table.
type SQLiteBackend struct {
	db   *sql.DB
	path string
}

// OpenSQLite opens (creating if needed) the sqlite database at path and
// ensures the schema exists.
func OpenSQLite(path string) (*SQLiteBackend, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite %s: %w", path, err)
	}
	// A single connection keeps every statement on the same database handle.
	db.SetMaxOpenConns(1)

	for _, ddl := range []string{createObjects, createObjectsPositionIndex} {
		if _, err := db.Exec(ddl); err != nil {
			db.Close()
			return nil, fmt.Errorf("creating schema: %w", err)
		}
	}

	return &SQLiteBackend{db: db, path: path}, nil
}

// Load reads every row in position order.
func (b *SQLiteBackend) Load() ([]Entry, error) {
	rows, err := b.db.Query(`SELECT key, fields FROM objects ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("querying objects: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var key, data string
		if err := rows.Scan(&key, &data); err != nil {
			return nil, fmt.Errorf("scanning object: %w", err)
		}
		f := models.NewFields()
		if err := f.UnmarshalJSON([]byte(data)); err != nil {
			return nil, fmt.Errorf("entry %q: %w", key, err)
		}
		entries = append(entries, Entry{Key: key, Fields: f})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating objects: %w", err)
	}
	return entries, nil
}

// Save replaces every row inside one transaction.
func (b *SQLiteBackend) Save(entries []Entry) error {
	tx, err := b.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning save transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM objects`); err != nil {
		return fmt.Errorf("clearing objects: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO objects (position, key, class, fields) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, entry := range entries {
		data, err := entry.Fields.MarshalJSON()
		if err != nil {
			return fmt.Errorf("encoding %s: %w", entry.Key, err)
		}
		class, _ := entry.Fields.Get(models.TypeTagField)
		if _, err := stmt.Exec(i, entry.Key, class.String(), string(data)); err != nil {
			return fmt.Errorf("inserting %s: %w", entry.Key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing save transaction: %w", err)
	}
	return nil
}

// Close closes the database. Idempotent.
func (b *SQLiteBackend) Close() error {
	if b.db == nil {
		return nil
	}
	err := b.db.Close()
	b.db = nil
	return err
}
