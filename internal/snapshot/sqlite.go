package snapshot

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dotcommander/evalpanel/internal/cue"
	"github.com/dotcommander/evalpanel/internal/evaluation"

	_ "modernc.org/sqlite"
)

// DBFileName is the SQLite database written in the data directory.
const DBFileName = "snapshots.db"

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// SQLiteStore keeps one row per snapshot key.
type SQLiteStore struct {
	db        *sql.DB
	validator *cue.Validator
}

// NewSQLiteStore opens (or creates) the snapshot database under dataDir
// and runs migrations.
func NewSQLiteStore(dataDir string) (*SQLiteStore, error) {
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("snapshot: create data dir: %w", err)
	}

	validator, err := cue.NewLoadedValidator()
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}

	db, err := openDB("sqlite", filepath.Join(dataDir, DBFileName))
	if err != nil {
		return nil, fmt.Errorf("snapshot: open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("snapshot: pragma %q: %w", p, err)
		}
	}

	s := &SQLiteStore{db: db, validator: validator}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("snapshot: migration: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS snapshots (
			key      TEXT PRIMARY KEY,
			body     TEXT NOT NULL,
			saved_at TEXT NOT NULL DEFAULT (datetime('now'))
		);
	`)
	return err
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Save writes rec under key. Without overwrite an existing key fails with ErrExists.
func (s *SQLiteStore) Save(ctx context.Context, key string, rec evaluation.Record, overwrite bool) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	body, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("snapshot: marshal record: %w", err)
	}

	if overwrite {
		_, err = s.db.ExecContext(ctx,
			`INSERT INTO snapshots (key, body) VALUES (?, ?)
			 ON CONFLICT(key) DO UPDATE SET body = excluded.body, saved_at = datetime('now')`,
			key, string(body),
		)
		if err != nil {
			return fmt.Errorf("snapshot: save %q: %w", key, err)
		}
		return nil
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO snapshots (key, body) VALUES (?, ?) ON CONFLICT(key) DO NOTHING`,
		key, string(body),
	)
	if err != nil {
		return fmt.Errorf("snapshot: save %q: %w", key, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("snapshot: save %q: %w", key, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %q", ErrExists, key)
	}
	return nil
}

// Load returns the record stored under key.
func (s *SQLiteStore) Load(ctx context.Context, key string) (evaluation.Record, error) {
	var body string
	err := s.db.QueryRowContext(ctx, `SELECT body FROM snapshots WHERE key = ?`, key).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return evaluation.Record{}, fmt.Errorf("%w: %q", ErrNotFound, key)
	}
	if err != nil {
		return evaluation.Record{}, fmt.Errorf("snapshot: load %q: %w", key, err)
	}

	// Rows can be edited outside the tool; check them like the JSON document.
	var raw map[string]any
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		return evaluation.Record{}, fmt.Errorf("snapshot: decode %q: %w", key, err)
	}
	errs, err := s.validator.ValidateRecord(raw)
	if err != nil {
		return evaluation.Record{}, err
	}
	if err := cue.Join(errs); err != nil {
		return evaluation.Record{}, fmt.Errorf("snapshot: invalid record %q: %w", key, err)
	}

	var rec evaluation.Record
	if err := json.Unmarshal([]byte(body), &rec); err != nil {
		return evaluation.Record{}, fmt.Errorf("snapshot: decode %q: %w", key, err)
	}
	if rec.Groups == nil {
		rec.Groups = map[string][]evaluation.ItemRecord{}
	}
	return rec, nil
}

// Exists reports whether key is stored.
func (s *SQLiteStore) Exists(ctx context.Context, key string) (bool, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM snapshots WHERE key = ?`, key).Scan(&n); err != nil {
		return false, fmt.Errorf("snapshot: exists %q: %w", key, err)
	}
	return n > 0, nil
}

// List returns every key, sorted.
func (s *SQLiteStore) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key FROM snapshots ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("snapshot: list: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("snapshot: list: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}
