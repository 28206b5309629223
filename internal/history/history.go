// Package history is an optional SQLite-backed record of past
// evaluation decisions. It is a convenience layer for the demo: the
// evaluator itself is stateless and nothing here feeds back into a
// decision. Disabled by default.
package history

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/marcus/taskpilot/internal/agent"
)

// Store wraps the SQLite connection.
type Store struct {
	sql  *sql.DB
	path string
}

// Record is one persisted decision row.
type Record struct {
	ID        int64
	Time      time.Time
	Industry  string
	TaskType  string
	Location  string
	Approved  bool
	Resource  string
	Required  int
	Available int
	Reason    string
	Decision  agent.Decision
}

const schema = `
CREATE TABLE IF NOT EXISTS decisions (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    created_at  DATETIME NOT NULL,
    industry    TEXT NOT NULL DEFAULT '',
    task_type   TEXT NOT NULL,
    location    TEXT NOT NULL DEFAULT '',
    approved    INTEGER NOT NULL,
    resource    TEXT NOT NULL DEFAULT '',
    required    INTEGER NOT NULL DEFAULT 0,
    available   INTEGER NOT NULL DEFAULT 0,
    reason      TEXT NOT NULL DEFAULT '',
    payload     TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_decisions_created_at ON decisions(created_at);
`

// Open opens or creates the history database at path and ensures the
// schema exists.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating history dir: %w", err)
	}

	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening history db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping history db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, pragma := range pragmas {
		if _, err := sqlDB.Exec(pragma); err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("setting pragma %q: %w", pragma, err)
		}
	}

	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Store{sql: sqlDB, path: path}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.sql == nil {
		return nil
	}
	return s.sql.Close()
}

// Append stores one decision.
func (s *Store) Append(d agent.Decision) error {
	payload, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encoding decision: %w", err)
	}

	when := time.Now().UTC()
	if len(d.Log) > 0 {
		when = d.Log[0].Time.UTC()
	}

	_, err = s.sql.Exec(`
INSERT INTO decisions (created_at, industry, task_type, location, approved, resource, required, available, reason, payload)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		when, d.Request.Industry, d.Request.TaskType, d.Request.Location,
		d.Approved, d.ResourceID, d.RequiredCapacity, d.AvailableCapacity,
		d.Reason, string(payload))
	if err != nil {
		return fmt.Errorf("inserting decision: %w", err)
	}
	return nil
}

// Recent returns the newest n records, most recent first.
func (s *Store) Recent(n int) ([]Record, error) {
	if n <= 0 {
		n = 20
	}

	rows, err := s.sql.Query(`
SELECT id, created_at, industry, task_type, location, approved, resource, required, available, reason, payload
FROM decisions ORDER BY id DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("querying decisions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []Record
	for rows.Next() {
		var r Record
		var payload string
		if err := rows.Scan(&r.ID, &r.Time, &r.Industry, &r.TaskType, &r.Location,
			&r.Approved, &r.Resource, &r.Required, &r.Available, &r.Reason, &payload); err != nil {
			return nil, fmt.Errorf("scanning decision: %w", err)
		}
		if err := json.Unmarshal([]byte(payload), &r.Decision); err != nil {
			return nil, fmt.Errorf("decoding decision %d: %w", r.ID, err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// Count returns the total number of stored decisions.
func (s *Store) Count() (int, error) {
	var n int
	if err := s.sql.QueryRow(`SELECT COUNT(*) FROM decisions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting decisions: %w", err)
	}
	return n, nil
}
