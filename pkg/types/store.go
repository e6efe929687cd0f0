package types

import "errors"

// Store defines the lifecycle of the persistent inventory. Callers attach
// to a backend, work with the product table, and detach when done.
type Store interface {
	// Attach connects the Store to the backend described by config.
	// Creates the DataDir and the schema if they do not exist, so it is
	// safe to call on every startup. Returns ErrAlreadyAttached if called
	// while already attached.
	Attach(config Config) error

	// Detach releases backend resources. Idempotent: multiple calls succeed.
	// After Detach, Products returns ErrStoreDetached.
	Detach() error

	// Products returns the product table of an attached store.
	Products() (ProductTable, error)
}

// Store lifecycle errors.
var (
	ErrStoreDetached   = errors.New("store is detached")
	ErrAlreadyAttached = errors.New("store is already attached")
)
