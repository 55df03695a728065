// Package store persists per-user settings documents, such as the painter
// options of all views of a user. Writers go through Update, which holds the
// store's lock for the read-modify-write and nothing else.
package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/rileyhilliard/lsview/internal/errors"
	"github.com/rileyhilliard/lsview/internal/registry"
)

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// UpdateFunc receives the current document (never nil) and returns the
// document to store.
type UpdateFunc func(doc map[string]any) (map[string]any, error)

// Store loads and saves documents keyed by user and key.
type Store interface {
	// Load returns the document, or nil when none was saved yet.
	Load(ctx context.Context, user, key string) (map[string]any, error)
	// Update replaces the document with the result of fn under the store's
	// lock. Concurrent updates of one document are serialized; the last
	// writer wins.
	Update(ctx context.Context, user, key string, fn UpdateFunc) error
	Close() error
}

// Open returns the store for a backend name, rooted at dir.
func Open(backend, dir string) (Store, error) {
	switch backend {
	case "", BackendFile:
		return NewFileStore(dir), nil
	case BackendSQLite:
		return OpenSQLite(dir)
	default:
		return nil, errors.New(errors.ErrConfig,
			fmt.Sprintf("Unknown options backend '%s'", backend),
			"Use 'file' or 'sqlite' for options.backend")
	}
}

// checkName rejects users and keys that cannot name a file.
func checkName(kind, name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return errors.New(errors.ErrStore,
			fmt.Sprintf("Invalid %s name '%s'", kind, name),
			"User and key names must not be empty or contain path separators")
	}
	return nil
}

// normalizeDoc gives decoded documents the value types of the rest of the
// program (int64 for integral numbers, []any for lists).
func normalizeDoc(doc map[string]any) map[string]any {
	if doc == nil {
		return nil
	}
	norm, _ := registry.Normalize(doc).(map[string]any)
	return norm
}
