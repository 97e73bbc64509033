package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/avolkov/gridmem/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// SQLiteStore is the structured, schema-versioned adapter. Records
// live in a table keyed by configuration fingerprint; the single
// settings envelope lives in its own table under a fixed id.
type SQLiteStore struct {
	path string
	db   *sql.DB
}

var _ Backend = (*SQLiteStore)(nil)

// NewSQLiteStore returns an unopened adapter for the given file path.
func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

// Init opens or creates the database and applies migrations. Repeated
// calls after the first succeed without effect.
func (s *SQLiteStore) Init(ctx context.Context) error {
	if s.db != nil {
		return nil
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}
	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	if err := migrate(ctx, db); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return err
	}
	s.db = db
	return nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// Kind implements Backend.
func (s *SQLiteStore) Kind() model.StorageKind {
	return model.StorageStructured
}

func migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS stats (
			fingerprint TEXT PRIMARY KEY,
			record TEXT NOT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS settings (
			id TEXT PRIMARY KEY,
			payload TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS schema_info (
			version INTEGER NOT NULL
		);`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to migrate: %w", err)
		}
	}

	var version int
	err := db.QueryRowContext(ctx, `SELECT version FROM schema_info LIMIT 1`).Scan(&version)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := db.ExecContext(ctx, `INSERT INTO schema_info (version) VALUES (?)`, schemaVersion); err != nil {
			return fmt.Errorf("failed to seed schema version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	return nil
}

// Get returns the record for a fingerprint, reporting whether one
// exists. Legacy payloads are normalized on the way out, not written
// back.
func (s *SQLiteStore) Get(ctx context.Context, fingerprint string) (model.StatsRecord, bool, error) {
	if s.db == nil {
		return model.StatsRecord{}, false, ErrNotInitialized
	}
	var data []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT record FROM stats WHERE fingerprint = ?`, fingerprint).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return model.StatsRecord{}, false, nil
	}
	if err != nil {
		return model.StatsRecord{}, false, fmt.Errorf("failed to read stats: %w", err)
	}
	rec, err := decodeRecord(schemaVersion, data)
	if err != nil {
		return model.StatsRecord{}, false, err
	}
	return rec, true, nil
}

// Put upserts the record for a fingerprint.
func (s *SQLiteStore) Put(ctx context.Context, fingerprint string, rec model.StatsRecord) error {
	if s.db == nil {
		return ErrNotInitialized
	}
	data, err := encodeRecord(rec)
	if err != nil {
		return err
	}
	now := time.Now().Format(time.RFC3339Nano)
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO stats (fingerprint, record, created_at, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(fingerprint) DO UPDATE SET record = excluded.record, updated_at = excluded.updated_at`,
		fingerprint, string(data), now, now)
	if err != nil {
		return fmt.Errorf("failed to write stats: %w", err)
	}
	return nil
}

// GetAll loads every stored record keyed by fingerprint.
func (s *SQLiteStore) GetAll(ctx context.Context) (model.StatsMap, error) {
	if s.db == nil {
		return nil, ErrNotInitialized
	}
	rows, err := s.db.QueryContext(ctx, `SELECT fingerprint, record FROM stats`)
	if err != nil {
		return nil, fmt.Errorf("failed to list stats: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	out := model.StatsMap{}
	for rows.Next() {
		var fingerprint string
		var data []byte
		if err := rows.Scan(&fingerprint, &data); err != nil {
			return nil, fmt.Errorf("failed to scan stats: %w", err)
		}
		rec, err := decodeRecord(schemaVersion, data)
		if err != nil {
			return nil, err
		}
		out[fingerprint] = rec
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list stats: %w", err)
	}
	return out, nil
}

// Delete removes one fingerprint's record. Missing rows are not an
// error.
func (s *SQLiteStore) Delete(ctx context.Context, fingerprint string) error {
	if s.db == nil {
		return ErrNotInitialized
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM stats WHERE fingerprint = ?`, fingerprint); err != nil {
		return fmt.Errorf("failed to delete stats: %w", err)
	}
	return nil
}

// Clear removes every stored record.
func (s *SQLiteStore) Clear(ctx context.Context) error {
	if s.db == nil {
		return ErrNotInitialized
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM stats`); err != nil {
		return fmt.Errorf("failed to clear stats: %w", err)
	}
	return nil
}

// Count returns the number of stored records.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	if s.db == nil {
		return 0, ErrNotInitialized
	}
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM stats`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count stats: %w", err)
	}
	return n, nil
}

// PutSettings stores the current settings envelope under its fixed id.
func (s *SQLiteStore) PutSettings(ctx context.Context, env model.SettingsEnvelope) error {
	if s.db == nil {
		return ErrNotInitialized
	}
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	now := time.Now().Format(time.RFC3339Nano)
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO settings (id, payload, updated_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		settingsKey, string(data), now)
	if err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	return nil
}

// GetSettings loads the current settings envelope, reporting whether
// one was ever stored.
func (s *SQLiteStore) GetSettings(ctx context.Context) (model.SettingsEnvelope, bool, error) {
	if s.db == nil {
		return model.SettingsEnvelope{}, false, ErrNotInitialized
	}
	var data []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM settings WHERE id = ?`, settingsKey).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return model.SettingsEnvelope{}, false, nil
	}
	if err != nil {
		return model.SettingsEnvelope{}, false, fmt.Errorf("failed to read settings: %w", err)
	}
	var env model.SettingsEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return model.SettingsEnvelope{}, false, fmt.Errorf("failed to decode settings: %w", err)
	}
	return env, true, nil
}
