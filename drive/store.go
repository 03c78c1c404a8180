package drive

import (
	"time"

	"github.com/antostif07/pyiurs-drive/types"
)

// Store defines the typed CRUD contract over the six entity collections.
// It holds no business logic beyond referential integrity (cascades and
// the one-cell-per-pair constraint); the pipeline, clone engine and pivot
// transform are built on top of it.
//
// Every create mints the entity's identity and returns the stored entity
// synchronously: the clone engine depends on a parent's new identity
// being known before its children are created.
type Store interface {
	// Documents
	CreateDocument(doc types.Document) (*types.Document, error)
	GetDocument(id string) (*types.Document, error)
	RenameDocument(id, name string) error
	SetDocumentActive(id string, active bool) error
	DeleteDocument(id string) error
	ListDocuments() ([]types.Document, error)

	// Columns. Add with a negative Position appends; an explicit position
	// inserts and shifts later siblings to keep positions unique.
	// Delete cascades to every cell, sub-row and attachment under the column.
	AddColumn(col types.Column) (*types.Column, error)
	GetColumn(id string) (*types.Column, error)
	UpdateColumn(col *types.Column) error
	MoveColumn(id string, position int) error
	DeleteColumn(id string) error
	ListColumns(documentID string) ([]types.Column, error)

	// Rows. Same position discipline as columns; delete cascades to the
	// row's cells and their children.
	AddRow(row types.Row) (*types.Row, error)
	GetRow(id string) (*types.Row, error)
	MoveRow(id string, position int) error
	DeleteRow(id string) error
	ListRows(documentID string) ([]types.Row, error)

	// Cells. CreateCell rejects a duplicate (row, column) pair with
	// ErrCellExists and a value whose kind differs from the column's with
	// ErrKindMismatch. UpdateCell is last-write-wins. SetCell is the
	// upsert the editor surfaces use: update when the pair has a cell,
	// create otherwise. GetCell returns ErrNotFound for an unset pair.
	CreateCell(cell types.Cell) (*types.Cell, error)
	UpdateCell(id string, value types.Value, actorID string) error
	SetCell(rowID, columnID string, value types.Value, actorID string) (*types.Cell, error)
	GetCell(rowID, columnID string) (*types.Cell, error)
	GetCellByID(id string) (*types.Cell, error)
	ListCells(documentID string) ([]types.Cell, error)

	// Sub-rows: the nested table under a multiline cell, ordered by
	// position within the cell.
	AddSubRow(sub types.SubRow) (*types.SubRow, error)
	UpdateSubRow(sub *types.SubRow) error
	DeleteSubRow(id string) error
	ListSubRows(cellID string) ([]types.SubRow, error)

	// Attachments: the files under a file cell, ordered by position.
	AddAttachment(att types.Attachment) (*types.Attachment, error)
	DeleteAttachment(id string) error
	ListAttachments(cellID string) ([]types.Attachment, error)

	// Close releases any resources held by the store.
	Close() error
}

// TestStore extends Store with hooks tests use for deterministic behavior.
type TestStore interface {
	Store

	// SetTimeFunc overrides the clock used for entity timestamps.
	SetTimeFunc(fn func() time.Time)
}

// Open creates or loads a file-backed store at path. The special path
// ":memory:" yields an in-process store with no file or lock, for tests
// and ephemeral use.
func Open(path string) (TestStore, error) {
	return newFileStore(path)
}
