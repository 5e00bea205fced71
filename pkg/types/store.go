package types

import "errors"

// Store defines backend-agnostic access to a directory of flat-file tables.
// Callers attach to a data directory, access tables by name, and detach when
// done.
type Store interface {
	// GetTable returns the Table for the given name.
	// Returns ErrTableNotFound if no table file with that name exists.
	GetTable(name string) (Table, error)

	// Attach connects the Store to the data directory described by config.
	// Creates the DataDir if it does not exist. Idempotent on first call;
	// returns ErrAlreadyAttached if called while already attached.
	Attach(config Config) error

	// Detach releases backend resources. Idempotent: multiple calls succeed.
	// After Detach, operations on tables return ErrStoreDetached.
	Detach() error
}

// Store lifecycle errors.
var (
	ErrStoreDetached   = errors.New("store is detached")
	ErrAlreadyAttached = errors.New("store is already attached")
	ErrTableNotFound   = errors.New("table not found")
)
