// Package storage defines the directory-store abstraction used by the print
// pipeline for its three working areas: the template library, the
// intermediate spool and the artifact output directory.
package storage

import "os"

// Store is a single named directory the pipeline reads from or writes to.
// Implementations guard against paths escaping the base directory.
type Store interface {
	// Resolve returns the absolute path of name inside the store. The file
	// does not have to exist.
	Resolve(name string) (string, error)

	// Exists reports whether name is present in the store.
	Exists(name string) (bool, error)

	// CreateTemp creates a new temporary file inside the store using the
	// given name pattern. The caller owns the file and its cleanup.
	CreateTemp(pattern string) (*os.File, error)

	// Remove deletes name from the store. Removing an absent file is not an
	// error.
	Remove(name string) error

	// BaseDir returns the store's base directory.
	BaseDir() string

	// Name returns the connection name of this store.
	Name() string

	// Close releases resources held by the store.
	Close() error
}

// Provider resolves named Store connections from the application
// configuration.
type Provider interface {
	// GetConnection returns the Store registered under name, creating it on
	// first use.
	GetConnection(name string) (Store, error)

	// CloseAll closes every connection managed by this provider.
	CloseAll() error

	// Type returns the provider type identifier (e.g. "local").
	Type() string
}
