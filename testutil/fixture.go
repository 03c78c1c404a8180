// Package testutil provides a shared test fixture for the drive engine.
//
// The fixture is a small inventory document with a known schema and data
// set, loaded into an in-memory store. Tests reference its entities by
// name instead of rebuilding ad-hoc documents, which keeps assertions
// about filtering, sorting and cloning readable.
package testutil

import (
	"testing"

	"github.com/antostif07/pyiurs-drive/drive"
	"github.com/antostif07/pyiurs-drive/types"
)

// Fixture holds the inventory document and its named entities.
//
// Layout:
//
//	Name (text)   Qty (number)   Restocked (date)   Status (select)
//	Widget        5              2026-01-10         in_stock
//	Gadget        2              2026-02-20         low
//	Doohickey     (unset)        (unset)            (unset)
type Fixture struct {
	Store drive.TestStore

	Doc *types.Document

	NameCol      *types.Column
	QtyCol       *types.Column
	RestockedCol *types.Column
	StatusCol    *types.Column

	WidgetRow    *types.Row
	GadgetRow    *types.Row
	DoohickeyRow *types.Row
}

// NewMemoryStore opens an in-memory store and registers its cleanup.
func NewMemoryStore(t *testing.T) drive.TestStore {
	t.Helper()
	store, err := drive.Open(":memory:")
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// LoadInventory builds the inventory fixture in a fresh in-memory store.
func LoadInventory(t *testing.T) *Fixture {
	t.Helper()
	store := NewMemoryStore(t)

	f := &Fixture{Store: store}

	var err error
	f.Doc, err = store.CreateDocument(types.Document{
		Name:    "Inventory",
		OwnerID: "user-admin",
		Active:  true,
	})
	if err != nil {
		t.Fatalf("failed to create document: %v", err)
	}

	f.NameCol = f.addColumn(t, types.Column{Label: "Name", Kind: types.KindText})
	f.QtyCol = f.addColumn(t, types.Column{Label: "Qty", Kind: types.KindNumber})
	f.RestockedCol = f.addColumn(t, types.Column{Label: "Restocked", Kind: types.KindDate})
	f.StatusCol = f.addColumn(t, types.Column{
		Label:   "Status",
		Kind:    types.KindSelect,
		Options: []string{"in_stock", "low", "out"},
	})

	f.WidgetRow = f.addRow(t)
	f.GadgetRow = f.addRow(t)
	f.DoohickeyRow = f.addRow(t)

	f.setCell(t, f.WidgetRow, f.NameCol, types.TextValue("Widget"))
	f.setCell(t, f.WidgetRow, f.QtyCol, types.NumberValue(5))
	f.setCell(t, f.WidgetRow, f.RestockedCol, mustDate(t, "2026-01-10"))
	f.setCell(t, f.WidgetRow, f.StatusCol, types.SelectValue("in_stock"))

	f.setCell(t, f.GadgetRow, f.NameCol, types.TextValue("Gadget"))
	f.setCell(t, f.GadgetRow, f.QtyCol, types.NumberValue(2))
	f.setCell(t, f.GadgetRow, f.RestockedCol, mustDate(t, "2026-02-20"))
	f.setCell(t, f.GadgetRow, f.StatusCol, types.SelectValue("low"))

	f.setCell(t, f.DoohickeyRow, f.NameCol, types.TextValue("Doohickey"))
	// Qty, Restocked and Status stay unset for Doohickey so tests can
	// exercise the sparse-matrix default behavior.

	return f
}

// View loads the document's current view from the store.
func (f *Fixture) View(t *testing.T) *drive.View {
	t.Helper()
	view, err := drive.LoadView(f.Store, f.Doc.ID)
	if err != nil {
		t.Fatalf("failed to load view: %v", err)
	}
	return view
}

func (f *Fixture) addColumn(t *testing.T, col types.Column) *types.Column {
	t.Helper()
	col.DocumentID = f.Doc.ID
	col.Position = -1
	created, err := f.Store.AddColumn(col)
	if err != nil {
		t.Fatalf("failed to add column %q: %v", col.Label, err)
	}
	return created
}

func (f *Fixture) addRow(t *testing.T) *types.Row {
	t.Helper()
	row, err := f.Store.AddRow(types.Row{
		DocumentID: f.Doc.ID,
		Position:   -1,
		CreatedBy:  "user-admin",
	})
	if err != nil {
		t.Fatalf("failed to add row: %v", err)
	}
	return row
}

func (f *Fixture) setCell(t *testing.T, row *types.Row, col *types.Column, value types.Value) {
	t.Helper()
	if _, err := f.Store.SetCell(row.ID, col.ID, value, "user-admin"); err != nil {
		t.Fatalf("failed to set cell (%s, %s): %v", row.ID, col.Label, err)
	}
}

func mustDate(t *testing.T, s string) types.Value {
	t.Helper()
	v, err := types.ParseValue(types.KindDate, s)
	if err != nil {
		t.Fatalf("bad date %q: %v", s, err)
	}
	return v
}

// RowIDs extracts the IDs of a row slice, in order.
func RowIDs(rows []types.Row) []string {
	ids := make([]string, len(rows))
	for i, r := range rows {
		ids[i] = r.ID
	}
	return ids
}
