package types

import "errors"

// Backend defines the interface for backend-agnostic persistence of a
// portfolio snapshot. Callers attach to a backend, load or save snapshots,
// and detach when done.
type Backend interface {
	// Attach connects the Backend to the storage described by config.
	// Creates the DataDir if it does not exist. Returns ErrAlreadyAttached
	// if called while already attached.
	Attach(config Config) error

	// Detach releases backend resources. Idempotent: multiple calls succeed.
	// After Detach, Load and Save return ErrBackendDetached.
	Detach() error

	// Load returns the persisted snapshot. An empty data directory yields an
	// empty snapshot.
	Load() (Snapshot, error)

	// Save replaces the persisted state with snap.
	Save(snap Snapshot) error
}

// Backend lifecycle errors.
var (
	ErrBackendDetached = errors.New("backend is detached")
	ErrAlreadyAttached = errors.New("backend is already attached")
)
