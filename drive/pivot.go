package drive

import (
	"github.com/antostif07/pyiurs-drive/types"
)

// TableRow is the denormalized, editor-facing form of one row: display
// values keyed by column ID, with a parallel "<columnID>_id" key holding
// the backing cell's identity for every set pair. The cell-ID keys let an
// editor decide between update and create on edit without a second
// lookup. Row identity and position ride along under "id" and "position".
type TableRow map[string]any

// CellIDSuffix is appended to a column ID to form the key under which the
// backing cell's identity is stored in a TableRow.
const CellIDSuffix = "_id"

// ToTableRows pivots the sparse (row × column → cell) triples of the view
// into one object per row. Unset pairs carry the column kind's default
// display value and no cell-ID key.
func (v *View) ToTableRows() []TableRow {
	result := make([]TableRow, 0, len(v.Rows))
	for _, row := range v.Rows {
		result = append(result, v.tableRow(row))
	}
	return result
}

// PivotRows pivots an already filtered/sorted row subset of the view.
func (v *View) PivotRows(rows []types.Row) []TableRow {
	result := make([]TableRow, 0, len(rows))
	for _, row := range rows {
		result = append(result, v.tableRow(row))
	}
	return result
}

func (v *View) tableRow(row types.Row) TableRow {
	out := TableRow{
		"id":       row.ID,
		"position": row.Position,
	}
	for _, col := range v.Columns {
		if cell, ok := v.Cell(row.ID, col.ID); ok {
			out[col.ID] = cell.Value.Display()
			out[col.ID+CellIDSuffix] = cell.ID
		} else {
			out[col.ID] = col.Kind.Default().Display()
		}
	}
	return out
}

// WriteTableValue is the unpivot direction: it parses a display string
// into a typed value for the column's kind and upserts the (row, column)
// cell, creating it if the pair was unset.
func WriteTableValue(s Store, rowID, columnID, display, actorID string) (*types.Cell, error) {
	col, err := s.GetColumn(columnID)
	if err != nil {
		return nil, err
	}
	value, err := types.ParseValue(col.Kind, display)
	if err != nil {
		return nil, err
	}
	return s.SetCell(rowID, columnID, value, actorID)
}
