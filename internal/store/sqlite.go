package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // register sqlite driver
)

// SQLiteContainer stores records as blobs in a single SQLite database.
// WAL mode lets the rendering host read while this process writes; each
// write is one INSERT OR REPLACE, so per-key atomicity comes from the
// transaction.
type SQLiteContainer struct {
	db *sql.DB
}

// OpenSQLite opens or creates the container database at dbPath.
func OpenSQLite(dbPath string) (*SQLiteContainer, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating container dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=busy_timeout(2000)")
	if err != nil {
		return nil, fmt.Errorf("opening container db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &SQLiteContainer{db: db}, nil
}

// Close closes the container database.
func (c *SQLiteContainer) Close() error {
	return c.db.Close()
}

// Read returns the blob for key, or ErrNotFound.
func (c *SQLiteContainer) Read(key string) ([]byte, error) {
	var data []byte
	err := c.db.QueryRow("SELECT data FROM records WHERE key = ?", key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return data, nil
}

// Write replaces the blob for key.
func (c *SQLiteContainer) Write(key string, data []byte) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := c.db.Exec(
		"INSERT OR REPLACE INTO records (key, data, updated_at) VALUES (?, ?, ?)",
		key, data, now,
	)
	if err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

// Delete removes the blob for key. Missing keys are not an error.
func (c *SQLiteContainer) Delete(key string) error {
	if _, err := c.db.Exec("DELETE FROM records WHERE key = ?", key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}
