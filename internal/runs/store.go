// Package runs persists named extraction results ("runs") and reads them back.
package runs

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/runger/methodmap/internal/table"
)

var (
	// ErrNotFound is returned when no run exists under a name.
	ErrNotFound = errors.New("run not found")
	// ErrInvalidName is returned for names that are empty, hidden or contain
	// a path separator.
	ErrInvalidName = errors.New("invalid run name")
)

// Store defines the interface for run persistence.
// Saving under an existing name replaces the previous rows.
type Store interface {
	Save(ctx context.Context, name string, rows []table.Row) error
	Load(ctx context.Context, name string) ([]table.Row, error)
	List(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, name string) error
	Close() error
}

// ValidateName reports whether name can be used as a run name.
func ValidateName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return fmt.Errorf("%w: empty", ErrInvalidName)
	case strings.HasPrefix(name, "."):
		return fmt.Errorf("%w: %q starts with a dot", ErrInvalidName, name)
	case strings.ContainsAny(name, `/\`) || strings.ContainsRune(name, 0):
		return fmt.Errorf("%w: %q contains a path separator", ErrInvalidName, name)
	}
	return nil
}

// notFound wraps ErrNotFound with the run name.
func notFound(name string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, name)
}

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Open returns the store for backend: a FileStore in dir or a SQLiteStore at
// dbPath. An empty backend means BackendFile.
func Open(backend, dir, dbPath string) (Store, error) {
	switch backend {
	case "", BackendFile:
		return NewFileStore(dir)
	case BackendSQLite:
		return NewSQLiteStore(dbPath)
	default:
		return nil, fmt.Errorf("unknown run backend: %s", backend)
	}
}
