package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/dotcommander/evalpanel/internal/cue"
	"github.com/dotcommander/evalpanel/internal/evaluation"
)

// FileName is the snapshot document written in the data directory.
const FileName = "snapshots.json"

// FileStore keeps every snapshot in one JSON document mapping key to record.
type FileStore struct {
	path      string
	validator *cue.Validator
}

// NewFileStore creates a file-backed store under dataDir.
func NewFileStore(dataDir string) (*FileStore, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("snapshot: create data dir: %w", err)
	}
	validator, err := cue.NewLoadedValidator()
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	return &FileStore{path: filepath.Join(dataDir, FileName), validator: validator}, nil
}

// Save writes rec under key. Without overwrite an existing key fails with ErrExists.
func (s *FileStore) Save(_ context.Context, key string, rec evaluation.Record, overwrite bool) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	all, err := s.readAll()
	if err != nil {
		return err
	}
	if _, exists := all[key]; exists && !overwrite {
		return fmt.Errorf("%w: %q", ErrExists, key)
	}
	all[key] = rec.Clone()
	return s.writeAll(all)
}

// Load returns the record stored under key.
func (s *FileStore) Load(_ context.Context, key string) (evaluation.Record, error) {
	all, err := s.readAll()
	if err != nil {
		return evaluation.Record{}, err
	}
	rec, ok := all[key]
	if !ok {
		return evaluation.Record{}, fmt.Errorf("%w: %q", ErrNotFound, key)
	}
	if rec.Groups == nil {
		rec.Groups = map[string][]evaluation.ItemRecord{}
	}
	return rec, nil
}

// Exists reports whether key is stored.
func (s *FileStore) Exists(_ context.Context, key string) (bool, error) {
	all, err := s.readAll()
	if err != nil {
		return false, err
	}
	_, ok := all[key]
	return ok, nil
}

// List returns every key, sorted.
func (s *FileStore) List(_ context.Context) ([]string, error) {
	all, err := s.readAll()
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(all))
	for k := range all {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// Close is a no-op; the document is rewritten on every save.
func (s *FileStore) Close() error {
	return nil
}

func (s *FileStore) readAll() (map[string]evaluation.Record, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return make(map[string]evaluation.Record), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot file: %w", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot file: %w", err)
	}
	errs, err := s.validator.ValidateSnapshots(raw)
	if err != nil {
		return nil, err
	}
	if err := cue.Join(errs); err != nil {
		return nil, fmt.Errorf("invalid snapshot file %s: %w", s.path, err)
	}

	all := make(map[string]evaluation.Record)
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot file: %w", err)
	}
	return all, nil
}

// writeAll replaces the document atomically via a temp file and rename.
func (s *FileStore) writeAll(all map[string]evaluation.Record) error {
	data, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshots: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".snapshots-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write snapshot file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write snapshot file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace snapshot file: %w", err)
	}
	return nil
}
