// Package credentials persists small key-value secrets (API keys) locally,
// the way the extension kept them in its local extension storage.
package credentials

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// KeyAnthropicAPIKey is the well-known key for the summarizer credential.
const KeyAnthropicAPIKey = "anthropic_api_key"

// Store wraps a SQLite database holding credential key-value pairs.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the credential database in dataDir. Pass ":memory:"
// as dataDir for an in-memory database (used by tests).
func Open(dataDir string) (*Store, error) {
	var dsn string
	if dataDir == ":memory:" {
		dsn = ":memory:"
	} else {
		if err := os.MkdirAll(dataDir, 0o700); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		dsn = filepath.Join(dataDir, "credentials.db")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening credential store: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging credential store: %w", err)
	}

	// Limit to single connection to avoid "database is locked" errors.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS credentials (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating credentials table: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the stored value for key, or fallback when absent.
func (s *Store) Get(key, fallback string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM credentials WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return fallback, nil
	}
	if err != nil {
		return "", fmt.Errorf("reading credential %s: %w", key, err)
	}
	return value, nil
}

// Set stores or replaces the value for key.
func (s *Store) Set(key, value string) error {
	_, err := s.db.Exec(`INSERT INTO credentials (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return fmt.Errorf("storing credential %s: %w", key, err)
	}
	return nil
}
