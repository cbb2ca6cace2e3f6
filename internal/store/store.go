// Package store is the host-side durability layer. The engine itself
// performs no I/O; the store persists baseline blobs between runs and
// keeps a log of emitted documents and processing outcomes.
package store

// #region imports
import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/synheart/flux/go-engine/internal/hsi"
)

// #endregion imports

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS baseline_state (
	device_id   TEXT PRIMARY KEY,
	state       BLOB NOT NULL,
	updated_at  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS documents (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	device_id    TEXT NOT NULL,
	kind         TEXT NOT NULL,
	observed_at  TEXT NOT NULL,
	computed_at  TEXT NOT NULL,
	document     TEXT NOT NULL,
	created_at   TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_documents_device ON documents(device_id, id);

CREATE TABLE IF NOT EXISTS run_log (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	device_id   TEXT NOT NULL,
	operation   TEXT NOT NULL,
	outcome     TEXT NOT NULL,
	detail      TEXT,
	created_at  TEXT NOT NULL
);
`

// #endregion schema

// #region store-struct

// Store persists engine state and outputs in SQLite.
type Store struct {
	db *sql.DB
}

// StoredDocument is one persisted HSI document row.
type StoredDocument struct {
	ID         int64
	DeviceID   string
	Kind       string
	ObservedAt string
	ComputedAt string
	Document   string
	CreatedAt  time.Time
}

// RunEntry is one processing-outcome row.
type RunEntry struct {
	ID        int64
	DeviceID  string
	Operation string
	Outcome   string
	Detail    string
	CreatedAt time.Time
}

// #endregion store-struct

// #region constructor

// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for use by other packages.
func (s *Store) DB() *sql.DB {
	return s.db
}

// #endregion constructor

// #region baselines

// SaveBaselines upserts a device's serialized baseline state.
func (s *Store) SaveBaselines(deviceID string, blob []byte) error {
	_, err := s.db.Exec(
		`INSERT INTO baseline_state (device_id, state, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(device_id) DO UPDATE SET state = excluded.state, updated_at = excluded.updated_at`,
		deviceID, blob, now(),
	)
	if err != nil {
		return fmt.Errorf("save baselines: %w", err)
	}
	return nil
}

// LoadBaselines returns a device's serialized baseline state, or nil when
// the device has none yet.
func (s *Store) LoadBaselines(deviceID string) ([]byte, error) {
	row := s.db.QueryRow(`SELECT state FROM baseline_state WHERE device_id = ?`, deviceID)
	var blob []byte
	if err := row.Scan(&blob); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("load baselines: %w", err)
	}
	return blob, nil
}

// #endregion baselines

// #region documents

// SaveDocument appends an emitted HSI document under a device and kind
// ("wearable", "behavior" or "snapshot").
func (s *Store) SaveDocument(deviceID, kind string, doc *hsi.Document) error {
	rendered, err := doc.MarshalIndent()
	if err != nil {
		return fmt.Errorf("render document: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO documents (device_id, kind, observed_at, computed_at, document, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		deviceID, kind, doc.ObservedAtUTC, doc.ComputedAtUTC, string(rendered), now(),
	)
	if err != nil {
		return fmt.Errorf("save document: %w", err)
	}
	return nil
}

// RecentDocuments returns a device's most recent documents, newest first.
func (s *Store) RecentDocuments(deviceID string, limit int) ([]StoredDocument, error) {
	rows, err := s.db.Query(
		`SELECT id, device_id, kind, observed_at, computed_at, document, created_at
		 FROM documents WHERE device_id = ? ORDER BY id DESC LIMIT ?`,
		deviceID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	var out []StoredDocument
	for rows.Next() {
		var d StoredDocument
		var createdAt string
		if err := rows.Scan(&d.ID, &d.DeviceID, &d.Kind, &d.ObservedAt, &d.ComputedAt, &d.Document, &createdAt); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		d.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		out = append(out, d)
	}
	return out, rows.Err()
}

// #endregion documents

// #region run-log

// LogRun records one processing outcome for later inspection.
func (s *Store) LogRun(deviceID, operation, outcome, detail string) error {
	_, err := s.db.Exec(
		`INSERT INTO run_log (device_id, operation, outcome, detail, created_at) VALUES (?, ?, ?, ?, ?)`,
		deviceID, operation, outcome, detail, now(),
	)
	if err != nil {
		return fmt.Errorf("log run: %w", err)
	}
	return nil
}

// RecentRuns returns the most recent run entries, newest first.
func (s *Store) RecentRuns(limit int) ([]RunEntry, error) {
	rows, err := s.db.Query(
		`SELECT id, device_id, operation, outcome, COALESCE(detail, ''), created_at
		 FROM run_log ORDER BY id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query run log: %w", err)
	}
	defer rows.Close()

	var out []RunEntry
	for rows.Next() {
		var e RunEntry
		var createdAt string
		if err := rows.Scan(&e.ID, &e.DeviceID, &e.Operation, &e.Outcome, &e.Detail, &createdAt); err != nil {
			return nil, fmt.Errorf("scan run entry: %w", err)
		}
		e.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		out = append(out, e)
	}
	return out, rows.Err()
}

// #endregion run-log

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}
