// Package common defines shared sentinel errors used across the tracker's
// layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// ErrValidation means a record attempt was rejected before any state
	// changed: zero elapsed time, or no project/work package selected.
	ErrValidation = errors.New("validation failed")

	// ErrNotConnected means the remote tracker was used without an
	// authenticated session. The operation is skipped, never retried.
	ErrNotConnected = errors.New("not connected to remote tracker")

	// ErrPersistence means a ledger write failed. It propagates to the
	// caller so the unsaved duration is not silently lost.
	ErrPersistence = errors.New("persistence failure")

	// ErrRemote means a remote tracker call failed during push or pull.
	// Remote failures are logged and the operation yields an empty result.
	ErrRemote = errors.New("remote operation failed")

	// ErrNotFound is returned by repositories for missing rows.
	ErrNotFound = errors.New("not found")
)
