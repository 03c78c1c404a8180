package types

import "time"

// Document is a named container holding a schema (columns) and data
// (rows). Duplicating a document produces a wholly independent copy; the
// source is never mutated by a clone.
type Document struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	OwnerID     string    `json:"owner_id"`
	Active      bool      `json:"active"`
	Permission  string    `json:"permission,omitempty"` // opaque descriptor, owned by the identity system
	Theme       Theme     `json:"theme"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Theme carries presentation hints for a document. The engine stores it
// verbatim; rendering is out of scope.
type Theme struct {
	Color      string `json:"color,omitempty"`
	Background string `json:"background,omitempty"`
}

// Column is a typed schema descriptor owned by exactly one document.
// Position is unique and total-ordered within the document; Kind is fixed
// at creation.
type Column struct {
	ID         string      `json:"id"`
	DocumentID string      `json:"document_id"`
	Label      string      `json:"label"`
	Kind       Kind        `json:"kind"`
	Position   int         `json:"position"`
	Width      int         `json:"width,omitempty"`
	Color      string      `json:"color,omitempty"`
	Background string      `json:"background,omitempty"`
	Permission string      `json:"permission,omitempty"`
	Options    []string    `json:"options,omitempty"`     // select kind: the option list
	SubColumns []SubColumn `json:"sub_columns,omitempty"` // multiline kind: nested-table schema
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// SubColumn describes one column of the nested table inside a multiline
// cell. It lives embedded in the owning column's configuration, so its
// identifier survives a document clone unchanged.
type SubColumn struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Kind  Kind   `json:"kind"` // scalar kinds only
}

// Row is an ordered record owned by exactly one document. Position is
// unique within the document.
type Row struct {
	ID         string    `json:"id"`
	DocumentID string    `json:"document_id"`
	Position   int       `json:"position"`
	CreatedBy  string    `json:"created_by,omitempty"`
	UpdatedBy  string    `json:"updated_by,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Cell is the polymorphic value at one (row, column) intersection. The
// matrix is sparse: a pair with no cell is "unset" and resolves to the
// column kind's default when read. At most one cell exists per pair.
type Cell struct {
	ID        string    `json:"id"`
	RowID     string    `json:"row_id"`
	ColumnID  string    `json:"column_id"`
	Value     Value     `json:"value"`
	CreatedBy string    `json:"created_by,omitempty"`
	UpdatedBy string    `json:"updated_by,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SubRow is one record of the nested table inside a multiline cell.
// Position is total-ordered within the owning cell.
type SubRow struct {
	ID          string    `json:"id"`
	CellID      string    `json:"cell_id"`
	SubColumnID string    `json:"sub_column_id"`
	Position    int       `json:"position"`
	Value       Value     `json:"value"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Attachment is a file reference inside a file-kind cell. ColumnID is a
// denormalized back-reference to the owning column, kept so column
// cascades can reap attachments without walking cells first.
type Attachment struct {
	ID         string    `json:"id"`
	CellID     string    `json:"cell_id"`
	ColumnID   string    `json:"column_id"`
	Path       string    `json:"path"`
	Name       string    `json:"name"`
	MediaType  string    `json:"media_type,omitempty"`
	Size       int64     `json:"size"`
	UploadedBy string    `json:"uploaded_by,omitempty"`
	Position   int       `json:"position"`
	CreatedAt  time.Time `json:"created_at"`
}
