package drive

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/antostif07/pyiurs-drive/types"
)

// View is the materialized input of the pipeline: one document's schema
// and data, with cells indexed by (row, column). It is rebuilt from the
// store whenever any input changes; the pipeline itself keeps no state.
type View struct {
	Columns []types.Column
	Rows    []types.Row

	cells map[pairKey]types.Cell
}

type pairKey struct {
	rowID    string
	columnID string
}

// NewView indexes the given rows, columns and cells for querying. Cells
// whose pair falls outside rows × columns are ignored.
func NewView(rows []types.Row, columns []types.Column, cells []types.Cell) *View {
	v := &View{
		Columns: columns,
		Rows:    rows,
		cells:   make(map[pairKey]types.Cell, len(cells)),
	}
	for _, c := range cells {
		v.cells[pairKey{c.RowID, c.ColumnID}] = c
	}
	return v
}

// LoadView builds a View for the document straight from the store.
func LoadView(s Store, documentID string) (*View, error) {
	columns, err := s.ListColumns(documentID)
	if err != nil {
		return nil, err
	}
	rows, err := s.ListRows(documentID)
	if err != nil {
		return nil, err
	}
	cells, err := s.ListCells(documentID)
	if err != nil {
		return nil, err
	}
	return NewView(rows, columns, cells), nil
}

// Cell returns the cell at (rowID, columnID), or false for an unset pair.
func (v *View) Cell(rowID, columnID string) (types.Cell, bool) {
	c, ok := v.cells[pairKey{rowID, columnID}]
	return c, ok
}

// Value resolves the pair to its typed value, substituting the column
// kind's documented default when the pair is unset.
func (v *View) Value(rowID string, col types.Column) types.Value {
	if c, ok := v.cells[pairKey{rowID, col.ID}]; ok {
		return c.Value
	}
	return col.Kind.Default()
}

// Apply runs the pipeline over the view: free-text search, then per-column
// filters (AND across columns), then the single-column sort. The input
// row order is preserved through the first two stages and across sort ties.
func (v *View) Apply(q types.QueryState) []types.Row {
	result := make([]types.Row, 0, len(v.Rows))
	for _, row := range v.Rows {
		if q.Search != "" && !v.matchesSearch(row, q.Search) {
			continue
		}
		if !v.matchesFilters(row, q.Filters) {
			continue
		}
		result = append(result, row)
	}

	if q.Sort != nil {
		v.sortRows(result, *q.Sort)
	}
	return result
}

// matchesSearch reports whether some column's display value contains the
// query, case-folded.
func (v *View) matchesSearch(row types.Row, query string) bool {
	folded := strings.ToLower(query)
	for _, col := range v.Columns {
		display := strings.ToLower(v.Value(row.ID, col).Display())
		if strings.Contains(display, folded) {
			return true
		}
	}
	return false
}

// matchesFilters reports whether the row satisfies every active column
// filter. A nil filter, a filter for an unknown column, or a filter of an
// unrecognized shape excludes nothing.
func (v *View) matchesFilters(row types.Row, filters map[string]types.Filter) bool {
	if len(filters) == 0 {
		return true
	}
	for columnID, filter := range filters {
		col, ok := v.column(columnID)
		if !ok || filter == nil {
			continue
		}
		value := v.Value(row.ID, col)

		switch f := filter.(type) {
		case types.TextFilter:
			display := strings.ToLower(value.Display())
			if !strings.Contains(display, strings.ToLower(string(f))) {
				return false
			}
		case types.NumberRangeFilter:
			n, ok := numericValue(value)
			if !ok {
				// Not comparable as a number; the range excludes nothing.
				continue
			}
			if f.Min != nil && n < *f.Min {
				return false
			}
			if f.Max != nil && n > *f.Max {
				return false
			}
		case types.DateRangeFilter:
			d, ok := dateValue(value)
			if !ok {
				continue
			}
			// Inclusive bounds, compared as calendar dates.
			if f.Start != nil && d.Before(f.Start.Truncate(24*time.Hour)) {
				return false
			}
			if f.End != nil && d.After(f.End.Truncate(24*time.Hour)) {
				return false
			}
		default:
			// Unrecognized filter shape: no-op.
		}
	}
	return true
}

func (v *View) column(id string) (types.Column, bool) {
	for _, col := range v.Columns {
		if col.ID == id {
			return col, true
		}
	}
	return types.Column{}, false
}

// sortRows orders rows by the sort column's value using the column's
// native comparison: numeric for numbers, chronological for dates,
// false before true for booleans, plain string order otherwise. The sort
// is stable, so ties keep their pre-sort relative order.
func (v *View) sortRows(rows []types.Row, state types.SortState) {
	col, ok := v.column(state.ColumnID)
	if !ok {
		return
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if state.Descending {
			i, j = j, i
		}
		return v.lessByColumn(rows[i], rows[j], col)
	})
}

func (v *View) lessByColumn(a, b types.Row, col types.Column) bool {
	va := v.Value(a.ID, col)
	vb := v.Value(b.ID, col)

	switch col.Kind {
	case types.KindNumber:
		na, aok := numericValue(va)
		nb, bok := numericValue(vb)
		if aok && bok {
			return na < nb
		}
	case types.KindDate:
		da, aok := dateValue(va)
		db, bok := dateValue(vb)
		if aok && bok {
			return da.Before(db)
		}
	case types.KindBoolean:
		ba, aok := va.Bool()
		bb, bok := vb.Bool()
		if aok && bok {
			return !ba && bb
		}
	}
	return va.Display() < vb.Display()
}

// numericValue extracts a comparable float from a value: the number
// payload directly, or a parse of the display string for other kinds.
func numericValue(v types.Value) (float64, bool) {
	if n, ok := v.Number(); ok {
		return n, true
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(v.Display()), 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// dateValue extracts a comparable date from a value: the date payload, or
// a parse of the display string.
func dateValue(v types.Value) (time.Time, bool) {
	if d, ok := v.Date(); ok {
		return d, true
	}
	d, err := time.Parse(types.DateLayout, strings.TrimSpace(v.Display()))
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}
