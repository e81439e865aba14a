package storage

import "errors"

// Sentinel errors shared by every backend. Panel tables are append
// only: a rerun either skips already-persisted batches (the
// orchestrator treats ErrDuplicateKey that way) or fails loudly, it
// never updates in place.
var (
	// ErrNotFound is returned when no record matches the requested key.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateKey is returned when an insert would collide with an
	// existing natural key. The whole batch is rejected.
	ErrDuplicateKey = errors.New("duplicate key: append-only store does not allow updates")

	// ErrInvalidInput is returned when input validation fails.
	ErrInvalidInput = errors.New("invalid input")
)
