package runlog

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/trevmt/usagereport/internal/database"
)

// Repository defines the persistence interface for run records.
type Repository interface {
	Save(record *RunRecord) error
	List(limit int) ([]RunRecord, error)
	ListByPeriod(periodKey string, limit int) ([]RunRecord, error)
	Prune(olderThan time.Duration) (int64, error)
	Close() error
}

// SQLiteRepository implements Repository backed by a local SQLite database.
type SQLiteRepository struct {
	db *sql.DB
}

// Open creates or opens the run log at the default path.
func Open() (*SQLiteRepository, error) {
	path, err := database.DefaultPath()
	if err != nil {
		return nil, fmt.Errorf("runlog: %w", err)
	}
	return OpenAt(path)
}

// OpenAt creates or opens a SQLite database at the given path.
func OpenAt(path string) (*SQLiteRepository, error) {
	db, err := database.Open(path)
	if err != nil {
		return nil, fmt.Errorf("runlog: %w", err)
	}

	r := &SQLiteRepository{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return r, nil
}

func (r *SQLiteRepository) migrate() error {
	const ddl = `
        CREATE TABLE IF NOT EXISTS run_log (
            id          INTEGER PRIMARY KEY AUTOINCREMENT,
            started_at  TEXT    NOT NULL,
            provider    TEXT    NOT NULL DEFAULT '',
            period_key  TEXT    NOT NULL,
            stage       TEXT    NOT NULL,
            outcome     TEXT    NOT NULL,
            detail      TEXT    NOT NULL DEFAULT '',
            entities    INTEGER NOT NULL DEFAULT 0,
            missing     INTEGER NOT NULL DEFAULT 0,
            datapoints  INTEGER NOT NULL DEFAULT 0,
            duration_ms INTEGER NOT NULL DEFAULT 0
        );
        CREATE INDEX IF NOT EXISTS idx_run_log_started_at ON run_log(started_at);
        CREATE INDEX IF NOT EXISTS idx_run_log_period ON run_log(period_key);
    `
	if _, err := r.db.Exec(ddl); err != nil {
		return fmt.Errorf("runlog: migration failed: %w", err)
	}
	return nil
}

// Save inserts a new run record and assigns its ID.
func (r *SQLiteRepository) Save(record *RunRecord) error {
	if record.StartedAt.IsZero() {
		record.StartedAt = time.Now().UTC()
	}

	result, err := r.db.Exec(`
        INSERT INTO run_log (started_at, provider, period_key, stage, outcome, detail, entities, missing, datapoints, duration_ms)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.StartedAt.Format(time.RFC3339Nano), record.Provider, record.PeriodKey,
		record.Stage, record.Outcome, record.Detail,
		record.Entities, record.Missing, record.Datapoints, record.DurationMs,
	)
	if err != nil {
		return fmt.Errorf("runlog: insert failed: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("runlog: failed to get last insert ID: %w", err)
	}
	record.ID = id
	return nil
}

// List returns the most recent n run records.
func (r *SQLiteRepository) List(limit int) ([]RunRecord, error) {
	rows, err := r.db.Query(`
        SELECT id, started_at, provider, period_key, stage, outcome, detail,
               entities, missing, datapoints, duration_ms
        FROM run_log ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("runlog: query failed: %w", err)
	}
	defer rows.Close()
	return scanRows(rows)
}

// ListByPeriod returns the most recent n run records for a period key.
func (r *SQLiteRepository) ListByPeriod(periodKey string, limit int) ([]RunRecord, error) {
	rows, err := r.db.Query(`
        SELECT id, started_at, provider, period_key, stage, outcome, detail,
               entities, missing, datapoints, duration_ms
        FROM run_log WHERE period_key = ? ORDER BY started_at DESC LIMIT ?`, periodKey, limit)
	if err != nil {
		return nil, fmt.Errorf("runlog: query failed: %w", err)
	}
	defer rows.Close()
	return scanRows(rows)
}

// Prune deletes records older than the given duration.
func (r *SQLiteRepository) Prune(olderThan time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-olderThan).Format(time.RFC3339Nano)
	result, err := r.db.Exec(`DELETE FROM run_log WHERE started_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("runlog: delete failed: %w", err)
	}
	return result.RowsAffected()
}

// Close releases database resources.
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func scanRows(rows *sql.Rows) ([]RunRecord, error) {
	var records []RunRecord
	for rows.Next() {
		var record RunRecord
		var startedStr string
		err := rows.Scan(
			&record.ID, &startedStr, &record.Provider, &record.PeriodKey,
			&record.Stage, &record.Outcome, &record.Detail,
			&record.Entities, &record.Missing, &record.Datapoints, &record.DurationMs,
		)
		if err != nil {
			return nil, fmt.Errorf("runlog: scan failed: %w", err)
		}
		record.StartedAt, _ = time.Parse(time.RFC3339Nano, startedStr)
		records = append(records, record)
	}
	return records, rows.Err()
}
