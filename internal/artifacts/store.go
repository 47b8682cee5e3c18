// Package artifacts provides persistent storage for pipeline outputs.
//
// Each run publishes two artifacts: the normalized metric snapshot (JSON)
// and the rendered report document. Artifacts are keyed by (kind, period)
// with overwrite semantics, so re-running a period replaces its artifacts
// rather than duplicating them. Overlapping runs for the same period are
// last-writer-wins by construction.
//
// Storage is backed by a SQLite database at
// ~/.config/usagereport/usagereport.db (or the platform-equivalent path
// returned by os.UserConfigDir).
package artifacts

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/trevmt/usagereport/internal/database"
)

// Kind distinguishes the artifact types persisted per period.
type Kind string

const (
	KindSnapshot Kind = "snapshot"
	KindReport   Kind = "report"
)

// ErrNotFound indicates no artifact exists for the requested key.
var ErrNotFound = errors.New("artifact not found")

// Store defines the persistence interface for pipeline artifacts.
type Store interface {
	// Put stores blob under (kind, periodKey), replacing any previous
	// content for the same key.
	Put(kind Kind, periodKey string, blob []byte) error

	// Get retrieves the blob stored under (kind, periodKey).
	// Returns ErrNotFound when the key has never been written.
	Get(kind Kind, periodKey string) ([]byte, error)

	// ListPeriods returns the most recent n period keys holding an
	// artifact of the given kind, newest first.
	ListPeriods(kind Kind, n int) ([]string, error)

	// Close releases database resources.
	Close() error
}

// SQLiteStore implements Store backed by a local SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// Open creates or opens the artifact store at the default path.
func Open() (*SQLiteStore, error) {
	path, err := database.DefaultPath()
	if err != nil {
		return nil, fmt.Errorf("artifacts: %w", err)
	}
	return OpenAt(path)
}

// OpenAt creates or opens a SQLite database at the given path.
func OpenAt(path string) (*SQLiteStore, error) {
	db, err := database.Open(path)
	if err != nil {
		return nil, fmt.Errorf("artifacts: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	const ddl = `
		CREATE TABLE IF NOT EXISTS artifacts (
			kind       TEXT NOT NULL,
			period     TEXT NOT NULL,
			content    BLOB NOT NULL,
			updated_at TEXT NOT NULL,
			PRIMARY KEY (kind, period)
		);
	`
	if _, err := s.db.Exec(ddl); err != nil {
		return fmt.Errorf("artifacts: migration failed: %w", err)
	}
	return nil
}

// Put stores blob under (kind, periodKey) with overwrite semantics.
func (s *SQLiteStore) Put(kind Kind, periodKey string, blob []byte) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.Exec(`
		INSERT INTO artifacts (kind, period, content, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (kind, period) DO UPDATE SET
			content = excluded.content,
			updated_at = excluded.updated_at`,
		string(kind), periodKey, blob, now,
	)
	if err != nil {
		return fmt.Errorf("artifacts: put %s/%s failed: %w", kind, periodKey, err)
	}
	return nil
}

// Get retrieves the blob stored under (kind, periodKey).
func (s *SQLiteStore) Get(kind Kind, periodKey string) ([]byte, error) {
	var blob []byte
	err := s.db.QueryRow(`
		SELECT content FROM artifacts WHERE kind = ? AND period = ?`,
		string(kind), periodKey,
	).Scan(&blob)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("artifacts: %s/%s: %w", kind, periodKey, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("artifacts: get %s/%s failed: %w", kind, periodKey, err)
	}
	return blob, nil
}

// ListPeriods returns the most recent n period keys for a kind.
func (s *SQLiteStore) ListPeriods(kind Kind, n int) ([]string, error) {
	rows, err := s.db.Query(`
		SELECT period FROM artifacts WHERE kind = ?
		ORDER BY updated_at DESC LIMIT ?`,
		string(kind), n,
	)
	if err != nil {
		return nil, fmt.Errorf("artifacts: query failed: %w", err)
	}
	defer rows.Close()

	var periods []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("artifacts: scan failed: %w", err)
		}
		periods = append(periods, p)
	}
	return periods, rows.Err()
}

// Close releases database resources.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
