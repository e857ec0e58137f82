// Package sqlite keeps the ledger document in a SQLite database, for people
// who prefer one database file over a plain JSON file.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/etnz/bloodpressure"
	_ "modernc.org/sqlite" // pure go sqlite driver
)

// Storage persists the ledger document as a single row of the state table,
// keyed by bloodpressure.StorageKey.
type Storage struct {
	db   *sql.DB
	mu   sync.Mutex
	path string
}

var _ bloodpressure.Storage = (*Storage)(nil)

// Open opens, or creates, the database at path.
func Open(path string) (*Storage, error) {
	if path == "" {
		return nil, errors.New("empty sqlite database path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS state (
		bucket TEXT PRIMARY KEY,
		payload BLOB NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create state table: %w", err)
	}
	return &Storage{db: db, path: path}, nil
}

// Load returns the saved document, nil if there is none yet.
func (s *Storage) Load() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var payload []byte
	err := s.db.QueryRow(`SELECT payload FROM state WHERE bucket = ?`, bloodpressure.StorageKey).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", bloodpressure.StorageKey, err)
	}
	return payload, nil
}

// Save replaces the saved document.
func (s *Storage) Save(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.db.Exec(`INSERT INTO state(bucket,payload) VALUES(?,?) ON CONFLICT(bucket) DO UPDATE SET payload=excluded.payload`, bloodpressure.StorageKey, data); err != nil {
		return fmt.Errorf("upsert %s: %w", bloodpressure.StorageKey, err)
	}
	return nil
}

// Close closes the database.
func (s *Storage) Close() error { return s.db.Close() }

// Path returns the database path.
func (s *Storage) Path() string { return s.path }
