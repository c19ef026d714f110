package database

import (
	"errors"
	"fmt"
)

// ErrEOC signals an iterator reached the end of the chain.
var ErrEOC = errors.New("end of chain")

// ChainError reports a block that cannot extend the current chain.
type ChainError struct {
	Msg string
}

// Error implements the error interface.
func (e *ChainError) Error() string {
	return e.Msg
}

// =============================================================================

// PersistenceError reports a block that was applied in memory but could not
// be written to storage. The caller must roll the in-memory changes back.
type PersistenceError struct {
	Height uint64
	Err    error
}

// Error implements the error interface.
func (e *PersistenceError) Error() string {
	return fmt.Sprintf("unable to persist block %d: %s", e.Height, e.Err)
}

// Unwrap exposes the underlying storage error.
func (e *PersistenceError) Unwrap() error {
	return e.Err
}
