package types

import "time"

// Filter narrows one column to rows whose display value satisfies it.
// The three concrete shapes are TextFilter, NumberRangeFilter and
// DateRangeFilter; the pipeline treats a nil filter, or any other
// implementation, as a no-op rather than an error.
type Filter interface {
	isFilter()
}

// TextFilter keeps rows whose display value for the column contains the
// filter text, case-folded.
type TextFilter string

func (TextFilter) isFilter() {}

// NumberRangeFilter keeps rows whose numeric value lies in [Min, Max].
// Either bound may be nil, leaving that end open; both bounds are
// inclusive.
type NumberRangeFilter struct {
	Min *float64
	Max *float64
}

func (NumberRangeFilter) isFilter() {}

// DateRangeFilter keeps rows whose date lies in [Start, End], compared as
// calendar dates. Either bound may be nil; both are inclusive.
type DateRangeFilter struct {
	Start *time.Time
	End   *time.Time
}

func (DateRangeFilter) isFilter() {}

// SortState selects at most one sort column and a direction.
type SortState struct {
	ColumnID   string
	Descending bool
}

// QueryState is the full input of the filter/search/sort pipeline beyond
// the document data itself. The zero value selects every row in its
// stored order.
type QueryState struct {
	// Search is a free-text query; a row matches when some column's
	// display value contains it, case-folded. Empty means no search.
	Search string

	// Filters maps column IDs to per-column filters. A row is kept only
	// when it satisfies every entry (AND across columns); a column holds
	// at most one filter at a time.
	Filters map[string]Filter

	// Sort orders the surviving rows; nil keeps stored row order.
	Sort *SortState
}

// NewQueryState returns a QueryState with an empty filter map.
func NewQueryState() QueryState {
	return QueryState{Filters: make(map[string]Filter)}
}
