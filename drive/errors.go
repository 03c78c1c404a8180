// Package drive implements the tabular document engine: a spreadsheet-like
// store where a document owns a typed column schema and sparse, cell-level
// data, plus the algorithms operating on it (filter/search/sort pipeline,
// document cloning, pivot transform).
package drive

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a referenced document, column, row,
	// cell, sub-row or attachment does not exist. It propagates to the
	// caller; nothing in the engine retries.
	ErrNotFound = errors.New("not found")

	// ErrCellExists is returned when a create would produce a second cell
	// for the same (row, column) pair. Upsert discipline should make this
	// unreachable, but an observed duplicate is rejected, never silently
	// overwritten.
	ErrCellExists = errors.New("cell already exists for row/column pair")

	// ErrKindMismatch is returned when a value's kind does not match the
	// owning column (or sub-column) kind.
	ErrKindMismatch = errors.New("value kind does not match column kind")
)

// PartialCloneError reports a clone that failed after the new document was
// created and whose compensating cleanup also failed. It carries the new
// document's identity so the caller can delete the partial result.
type PartialCloneError struct {
	DocumentID string
	Err        error
}

func (e *PartialCloneError) Error() string {
	return fmt.Sprintf("clone left partial document %s: %v", e.DocumentID, e.Err)
}

func (e *PartialCloneError) Unwrap() error { return e.Err }
