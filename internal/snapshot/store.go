// Package snapshot persists evaluation records keyed by a "date time" key.
//
// Records are immutable once written: a save either creates a new key or,
// when the caller explicitly asks for it, overwrites the same key. Nothing
// guards against two sessions writing the same key; the last write wins.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dotcommander/evalpanel/internal/evaluation"
	"github.com/dotcommander/evalpanel/internal/types"
)

// DefaultKeyLayout renders keys such as "2024-05-01 14:30".
const DefaultKeyLayout = "2006-01-02 15:04"

var (
	// ErrNotFound is returned when no snapshot exists under a key.
	ErrNotFound = errors.New("snapshot not found")
	// ErrExists is returned when saving onto an existing key without
	// overwrite. Callers must get explicit confirmation before retrying.
	ErrExists = errors.New("snapshot already exists")
	// ErrInvalidKey is returned for an empty or padded key.
	ErrInvalidKey = errors.New("invalid snapshot key")
)

// Store defines the persistence interface for snapshots.
type Store interface {
	Save(ctx context.Context, key string, rec evaluation.Record, overwrite bool) error
	Load(ctx context.Context, key string) (evaluation.Record, error)
	Exists(ctx context.Context, key string) (bool, error)
	List(ctx context.Context) ([]string, error)
	Close() error
}

// NewKey renders the snapshot key for t. An empty layout uses DefaultKeyLayout.
func NewKey(t time.Time, layout string) string {
	if layout == "" {
		layout = DefaultKeyLayout
	}
	return t.Format(layout)
}

// ValidateKey rejects keys that cannot be stored or typed back reliably.
func ValidateKey(key string) error {
	if key == "" || strings.TrimSpace(key) != key {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}

// Open creates the store backend named by kind under dataDir.
func Open(kind, dataDir string) (Store, error) {
	switch kind {
	case types.StoreFile, "":
		return NewFileStore(dataDir)
	case types.StoreSQLite:
		return NewSQLiteStore(dataDir)
	default:
		return nil, fmt.Errorf("unknown snapshot store %q: must be 'file' or 'sqlite'", kind)
	}
}
