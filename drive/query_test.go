package drive_test

import (
	"testing"
	"time"

	"github.com/antostif07/pyiurs-drive/drive"
	"github.com/antostif07/pyiurs-drive/testutil"
	"github.com/antostif07/pyiurs-drive/types"
)

func floatPtr(f float64) *float64 { return &f }

func columnByID(cols []types.Column, id string) types.Column {
	for _, c := range cols {
		if c.ID == id {
			return c
		}
	}
	return types.Column{}
}

func datePtr(t *testing.T, s string) *time.Time {
	t.Helper()
	d, err := time.Parse(types.DateLayout, s)
	if err != nil {
		t.Fatalf("bad date %q: %v", s, err)
	}
	return &d
}

func TestSearchIsCaseInsensitive(t *testing.T) {
	f := testutil.LoadInventory(t)

	// Mixed-case text forces the query to case-fold both sides.
	if _, err := f.Store.SetCell(f.WidgetRow.ID, f.NameCol.ID, types.TextValue("AbCdef"), "u"); err != nil {
		t.Fatalf("failed to set cell: %v", err)
	}
	view := f.View(t)

	q := types.NewQueryState()
	q.Search = "bcd"
	rows := view.Apply(q)
	if len(rows) != 1 || rows[0].ID != f.WidgetRow.ID {
		t.Fatalf("expected query %q to match only the AbCdef row, got %v", q.Search, testutil.RowIDs(rows))
	}
}

func TestSearchMatchesAnyColumn(t *testing.T) {
	f := testutil.LoadInventory(t)
	view := f.View(t)

	q := types.NewQueryState()
	q.Search = "widget"
	rows := view.Apply(q)
	if len(rows) != 1 || rows[0].ID != f.WidgetRow.ID {
		t.Fatalf("expected [widget row], got %v", testutil.RowIDs(rows))
	}

	// Status column values are display values too.
	q.Search = "LOW"
	rows = view.Apply(q)
	if len(rows) != 1 || rows[0].ID != f.GadgetRow.ID {
		t.Fatalf("expected [gadget row] for status search, got %v", testutil.RowIDs(rows))
	}
}

func TestFiltersAreANDedAcrossColumns(t *testing.T) {
	f := testutil.LoadInventory(t)
	view := f.View(t)

	only := func(filters map[string]types.Filter) []string {
		q := types.NewQueryState()
		q.Filters = filters
		return testutil.RowIDs(view.Apply(q))
	}

	f1 := map[string]types.Filter{f.StatusCol.ID: types.TextFilter("in_stock")}
	f2 := map[string]types.Filter{f.QtyCol.ID: types.NumberRangeFilter{Min: floatPtr(1)}}
	both := map[string]types.Filter{
		f.StatusCol.ID: types.TextFilter("in_stock"),
		f.QtyCol.ID:    types.NumberRangeFilter{Min: floatPtr(1)},
	}

	// filter(rows, {F1,F2}) == intersect(filter(rows,{F1}), filter(rows,{F2}))
	set1 := map[string]bool{}
	for _, id := range only(f1) {
		set1[id] = true
	}
	var intersection []string
	for _, id := range only(f2) {
		if set1[id] {
			intersection = append(intersection, id)
		}
	}

	combined := only(both)
	if len(combined) != len(intersection) {
		t.Fatalf("AND semantics broken: combined %v, intersection %v", combined, intersection)
	}
	for i := range combined {
		if combined[i] != intersection[i] {
			t.Fatalf("AND semantics broken: combined %v, intersection %v", combined, intersection)
		}
	}
}

func TestNumberRangeBoundsAreInclusive(t *testing.T) {
	store := testutil.NewMemoryStore(t)

	doc, err := store.CreateDocument(types.Document{Name: "Bounds", OwnerID: "u", Active: true})
	if err != nil {
		t.Fatalf("failed to create document: %v", err)
	}
	qty, err := store.AddColumn(types.Column{DocumentID: doc.ID, Label: "Qty", Kind: types.KindNumber, Position: -1})
	if err != nil {
		t.Fatalf("failed to add column: %v", err)
	}

	values := []float64{9, 10, 20, 21}
	rowByValue := make(map[float64]string, len(values))
	for _, v := range values {
		row, err := store.AddRow(types.Row{DocumentID: doc.ID, Position: -1})
		if err != nil {
			t.Fatalf("failed to add row: %v", err)
		}
		if _, err := store.SetCell(row.ID, qty.ID, types.NumberValue(v), "u"); err != nil {
			t.Fatalf("failed to set cell: %v", err)
		}
		rowByValue[v] = row.ID
	}

	view, err := drive.LoadView(store, doc.ID)
	if err != nil {
		t.Fatalf("failed to load view: %v", err)
	}

	q := types.NewQueryState()
	q.Filters[qty.ID] = types.NumberRangeFilter{Min: floatPtr(10), Max: floatPtr(20)}
	kept := map[string]bool{}
	for _, id := range testutil.RowIDs(view.Apply(q)) {
		kept[id] = true
	}

	if !kept[rowByValue[10]] || !kept[rowByValue[20]] {
		t.Error("expected inclusive bounds to keep 10 and 20")
	}
	if kept[rowByValue[9]] || kept[rowByValue[21]] {
		t.Error("expected 9 and 21 outside the range")
	}
}

func TestDateRangeFilter(t *testing.T) {
	f := testutil.LoadInventory(t)
	view := f.View(t)

	q := types.NewQueryState()
	q.Filters[f.RestockedCol.ID] = types.DateRangeFilter{
		Start: datePtr(t, "2026-01-10"),
		End:   datePtr(t, "2026-01-31"),
	}
	rows := view.Apply(q)
	// Widget restocked exactly on the inclusive start bound.
	if len(rows) != 1 || rows[0].ID != f.WidgetRow.ID {
		t.Fatalf("expected [widget row], got %v", testutil.RowIDs(rows))
	}
}

func TestUnsetCellsResolveToKindDefaults(t *testing.T) {
	f := testutil.LoadInventory(t)
	view := f.View(t)

	// Doohickey has no Qty cell; a missing number behaves as 0, so a
	// lower bound of 1 excludes it.
	q := types.NewQueryState()
	q.Filters[f.QtyCol.ID] = types.NumberRangeFilter{Min: floatPtr(1)}
	for _, row := range view.Apply(q) {
		if row.ID == f.DoohickeyRow.ID {
			t.Error("expected unset Qty to behave as 0 and be excluded by min:1")
		}
	}

	// An upper bound of 1 keeps only the unset (default 0) row.
	q = types.NewQueryState()
	q.Filters[f.QtyCol.ID] = types.NumberRangeFilter{Max: floatPtr(1)}
	rows := view.Apply(q)
	if len(rows) != 1 || rows[0].ID != f.DoohickeyRow.ID {
		t.Fatalf("expected only the unset row under max:1, got %v", testutil.RowIDs(rows))
	}
}

func TestFilterNoOps(t *testing.T) {
	f := testutil.LoadInventory(t)
	view := f.View(t)
	total := len(view.Rows)

	t.Run("nil filter excludes nothing", func(t *testing.T) {
		q := types.NewQueryState()
		q.Filters[f.QtyCol.ID] = nil
		if got := len(view.Apply(q)); got != total {
			t.Errorf("expected %d rows, got %d", total, got)
		}
	})

	t.Run("filter on unknown column excludes nothing", func(t *testing.T) {
		q := types.NewQueryState()
		q.Filters["no-such-column"] = types.TextFilter("widget")
		if got := len(view.Apply(q)); got != total {
			t.Errorf("expected %d rows, got %d", total, got)
		}
	})

	t.Run("number range on a text column excludes nothing", func(t *testing.T) {
		// The display values are not parseable as numbers, so the range
		// cannot apply and must not exclude rows.
		q := types.NewQueryState()
		q.Filters[f.NameCol.ID] = types.NumberRangeFilter{Min: floatPtr(1)}
		if got := len(view.Apply(q)); got != total {
			t.Errorf("expected %d rows, got %d", total, got)
		}
	})
}

func TestSortAscendingDescendingReversal(t *testing.T) {
	f := testutil.LoadInventory(t)
	view := f.View(t)

	asc := types.NewQueryState()
	asc.Sort = &types.SortState{ColumnID: f.NameCol.ID}
	ascRows := testutil.RowIDs(view.Apply(asc))

	desc := types.NewQueryState()
	desc.Sort = &types.SortState{ColumnID: f.NameCol.ID, Descending: true}
	descRows := testutil.RowIDs(view.Apply(desc))

	if len(ascRows) != len(descRows) {
		t.Fatalf("row counts differ: %d vs %d", len(ascRows), len(descRows))
	}
	for i := range ascRows {
		if ascRows[i] != descRows[len(descRows)-1-i] {
			t.Fatalf("descending is not the exact reverse: %v vs %v", ascRows, descRows)
		}
	}
}

func TestNumberSortIsNumericNotLexicographic(t *testing.T) {
	store := testutil.NewMemoryStore(t)

	doc, _ := store.CreateDocument(types.Document{Name: "Sort", OwnerID: "u", Active: true})
	qty, _ := store.AddColumn(types.Column{DocumentID: doc.ID, Label: "Qty", Kind: types.KindNumber, Position: -1})

	for _, v := range []float64{10, 2, 33} {
		row, err := store.AddRow(types.Row{DocumentID: doc.ID, Position: -1})
		if err != nil {
			t.Fatalf("failed to add row: %v", err)
		}
		if _, err := store.SetCell(row.ID, qty.ID, types.NumberValue(v), "u"); err != nil {
			t.Fatalf("failed to set cell: %v", err)
		}
	}

	view, err := drive.LoadView(store, doc.ID)
	if err != nil {
		t.Fatalf("failed to load view: %v", err)
	}

	q := types.NewQueryState()
	q.Sort = &types.SortState{ColumnID: qty.ID}
	rows := view.Apply(q)

	var got []float64
	for _, row := range rows {
		n, _ := view.Value(row.ID, columnByID(view.Columns, qty.ID)).Number()
		got = append(got, n)
	}
	want := []float64{2, 10, 33}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected numeric order %v, got %v", want, got)
		}
	}
}

func TestInventoryEndToEnd(t *testing.T) {
	f := testutil.LoadInventory(t)
	view := f.View(t)

	t.Run("query widget", func(t *testing.T) {
		q := types.NewQueryState()
		q.Search = "widget"
		rows := view.Apply(q)
		if len(rows) != 1 || rows[0].ID != f.WidgetRow.ID {
			t.Fatalf("expected [r1], got %v", testutil.RowIDs(rows))
		}
	})

	t.Run("filter qty min 3", func(t *testing.T) {
		q := types.NewQueryState()
		q.Filters[f.QtyCol.ID] = types.NumberRangeFilter{Min: floatPtr(3)}
		rows := view.Apply(q)
		if len(rows) != 1 || rows[0].ID != f.WidgetRow.ID {
			t.Fatalf("expected [r1], got %v", testutil.RowIDs(rows))
		}
	})

	t.Run("sort qty descending", func(t *testing.T) {
		q := types.NewQueryState()
		q.Filters[f.QtyCol.ID] = types.NumberRangeFilter{Min: floatPtr(1)}
		q.Sort = &types.SortState{ColumnID: f.QtyCol.ID, Descending: true}
		rows := view.Apply(q)
		want := []string{f.WidgetRow.ID, f.GadgetRow.ID}
		got := testutil.RowIDs(rows)
		if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
			t.Fatalf("expected [r1(5) r2(2)], got %v", got)
		}
	})
}
