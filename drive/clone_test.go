package drive_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/antostif07/pyiurs-drive/drive"
	"github.com/antostif07/pyiurs-drive/testutil"
	"github.com/antostif07/pyiurs-drive/types"
)

func TestDuplicateStructureOnly(t *testing.T) {
	f := testutil.LoadInventory(t)

	clone, err := drive.Duplicate(f.Store, drive.DuplicateRequest{
		SourceID: f.Doc.ID,
		Name:     "Inventory (copy)",
		ActorID:  "user-clone",
	})
	if err != nil {
		t.Fatalf("duplicate failed: %v", err)
	}

	if clone.ID == f.Doc.ID {
		t.Error("clone must have a fresh identity")
	}
	if clone.Name != "Inventory (copy)" {
		t.Errorf("unexpected clone name %q", clone.Name)
	}
	if clone.OwnerID != "user-clone" {
		t.Errorf("expected actor as owner, got %q", clone.OwnerID)
	}
	if !clone.Active {
		t.Error("expected clone to start active")
	}

	sourceCols, _ := f.Store.ListColumns(f.Doc.ID)
	cloneCols, err := f.Store.ListColumns(clone.ID)
	if err != nil {
		t.Fatalf("failed to list clone columns: %v", err)
	}
	if len(cloneCols) != len(sourceCols) {
		t.Fatalf("expected %d columns, got %d", len(sourceCols), len(cloneCols))
	}
	for i := range sourceCols {
		src, dst := sourceCols[i], cloneCols[i]
		if dst.Kind != src.Kind || dst.Label != src.Label || dst.Position != src.Position {
			t.Errorf("column %d differs: %+v vs %+v", i, src, dst)
		}
		if dst.ID == src.ID {
			t.Errorf("column %d kept the source identity", i)
		}
		if dst.DocumentID != clone.ID {
			t.Errorf("column %d points at the wrong document", i)
		}
		if len(dst.Options) != len(src.Options) {
			t.Errorf("column %d lost its options", i)
		}
	}

	rows, _ := f.Store.ListRows(clone.ID)
	if len(rows) != 0 {
		t.Errorf("structure-only clone must have zero rows, got %d", len(rows))
	}
}

func TestDuplicateWithDataIsFaithful(t *testing.T) {
	f := testutil.LoadInventory(t)

	clone, err := drive.Duplicate(f.Store, drive.DuplicateRequest{
		SourceID:    f.Doc.ID,
		Name:        "Inventory (full)",
		ActorID:     "user-clone",
		IncludeData: true,
	})
	if err != nil {
		t.Fatalf("duplicate failed: %v", err)
	}

	sourceRows, _ := f.Store.ListRows(f.Doc.ID)
	cloneRows, _ := f.Store.ListRows(clone.ID)
	if len(cloneRows) != len(sourceRows) {
		t.Fatalf("expected %d rows, got %d", len(sourceRows), len(cloneRows))
	}

	sourceView, _ := drive.LoadView(f.Store, f.Doc.ID)
	cloneView, _ := drive.LoadView(f.Store, clone.ID)

	// Under the correspondence induced by matching order indices, every
	// defined pair must carry an equal display value.
	for i, srcRow := range sourceRows {
		for j, srcCol := range sourceView.Columns {
			want := sourceView.Value(srcRow.ID, srcCol).Display()
			got := cloneView.Value(cloneRows[i].ID, cloneView.Columns[j]).Display()
			if got != want {
				t.Errorf("pair (%d, %s): expected %q, got %q", i, srcCol.Label, want, got)
			}
		}
	}
}

func TestDuplicateIdentityDisjointness(t *testing.T) {
	f := testutil.LoadInventory(t)

	sourceIDs := collectIDs(t, f.Store, f.Doc.ID)

	clone, err := drive.Duplicate(f.Store, drive.DuplicateRequest{
		SourceID:    f.Doc.ID,
		Name:        "Inventory (copy)",
		ActorID:     "user-clone",
		IncludeData: true,
	})
	if err != nil {
		t.Fatalf("duplicate failed: %v", err)
	}

	for id := range collectIDs(t, f.Store, clone.ID) {
		if sourceIDs[id] {
			t.Errorf("identity %s appears in both source and clone", id)
		}
	}
}

func TestDuplicateClonesCellChildren(t *testing.T) {
	f := testutil.LoadInventory(t)

	notesCol, err := f.Store.AddColumn(types.Column{
		DocumentID: f.Doc.ID,
		Label:      "Notes",
		Kind:       types.KindMultiline,
		Position:   -1,
		SubColumns: []types.SubColumn{{Label: "Note", Kind: types.KindText}},
	})
	if err != nil {
		t.Fatalf("failed to add multiline column: %v", err)
	}
	filesCol, err := f.Store.AddColumn(types.Column{
		DocumentID: f.Doc.ID,
		Label:      "Files",
		Kind:       types.KindFile,
		Position:   -1,
	})
	if err != nil {
		t.Fatalf("failed to add file column: %v", err)
	}

	notesCell, _ := f.Store.SetCell(f.WidgetRow.ID, notesCol.ID, types.MultilineValue("notes"), "u")
	if _, err := f.Store.AddSubRow(types.SubRow{
		CellID:      notesCell.ID,
		SubColumnID: notesCol.SubColumns[0].ID,
		Position:    -1,
		Value:       types.TextValue("check stock"),
	}); err != nil {
		t.Fatalf("failed to add sub-row: %v", err)
	}

	filesCell, _ := f.Store.SetCell(f.WidgetRow.ID, filesCol.ID, types.FileValue(), "u")
	if _, err := f.Store.AddAttachment(types.Attachment{
		CellID: filesCell.ID,
		Path:   "uploads/widget.pdf",
		Name:   "widget.pdf",
		Size:   2048,
	}); err != nil {
		t.Fatalf("failed to add attachment: %v", err)
	}

	clone, err := drive.Duplicate(f.Store, drive.DuplicateRequest{
		SourceID:    f.Doc.ID,
		Name:        "Inventory (copy)",
		ActorID:     "user-clone",
		IncludeData: true,
	})
	if err != nil {
		t.Fatalf("duplicate failed: %v", err)
	}

	cloneView, _ := drive.LoadView(f.Store, clone.ID)
	cloneRows, _ := f.Store.ListRows(clone.ID)
	cloneWidget := cloneRows[0]

	var cloneNotesCol, cloneFilesCol types.Column
	for _, col := range cloneView.Columns {
		switch col.Label {
		case "Notes":
			cloneNotesCol = col
		case "Files":
			cloneFilesCol = col
		}
	}

	notesClone, ok := cloneView.Cell(cloneWidget.ID, cloneNotesCol.ID)
	if !ok {
		t.Fatal("multiline cell was not cloned")
	}
	subs, err := f.Store.ListSubRows(notesClone.ID)
	if err != nil {
		t.Fatalf("failed to list cloned sub-rows: %v", err)
	}
	if len(subs) != 1 {
		t.Fatalf("expected 1 cloned sub-row, got %d", len(subs))
	}
	if subs[0].SubColumnID != cloneNotesCol.SubColumns[0].ID {
		t.Error("sub-row should reference the sub-column descriptor unchanged")
	}
	if got := subs[0].Value.Display(); got != "check stock" {
		t.Errorf("sub-row value lost in clone: %q", got)
	}

	filesClone, ok := cloneView.Cell(cloneWidget.ID, cloneFilesCol.ID)
	if !ok {
		t.Fatal("file cell was not cloned")
	}
	atts, err := f.Store.ListAttachments(filesClone.ID)
	if err != nil {
		t.Fatalf("failed to list cloned attachments: %v", err)
	}
	if len(atts) != 1 {
		t.Fatalf("expected 1 cloned attachment, got %d", len(atts))
	}
	if atts[0].ColumnID != cloneFilesCol.ID {
		t.Error("attachment back-reference must point at the mapped column")
	}
	if atts[0].Path != "uploads/widget.pdf" || atts[0].Size != 2048 {
		t.Errorf("attachment metadata lost in clone: %+v", atts[0])
	}
}

func TestDuplicateDoesNotMutateSource(t *testing.T) {
	f := testutil.LoadInventory(t)

	beforeCols, _ := f.Store.ListColumns(f.Doc.ID)
	beforeRows, _ := f.Store.ListRows(f.Doc.ID)
	beforeCells, _ := f.Store.ListCells(f.Doc.ID)

	if _, err := drive.Duplicate(f.Store, drive.DuplicateRequest{
		SourceID:    f.Doc.ID,
		Name:        "Copy",
		ActorID:     "u",
		IncludeData: true,
	}); err != nil {
		t.Fatalf("duplicate failed: %v", err)
	}

	afterCols, _ := f.Store.ListColumns(f.Doc.ID)
	afterRows, _ := f.Store.ListRows(f.Doc.ID)
	afterCells, _ := f.Store.ListCells(f.Doc.ID)

	if len(afterCols) != len(beforeCols) || len(afterRows) != len(beforeRows) || len(afterCells) != len(beforeCells) {
		t.Error("source document changed during clone")
	}
}

// failingStore wraps a Store and fails a chosen operation after a number
// of successful calls, to exercise the clone's abort path.
type failingStore struct {
	drive.Store
	failCellCreates  int
	failDocumentWipe bool
	cellCreates      int
}

func (s *failingStore) CreateCell(cell types.Cell) (*types.Cell, error) {
	s.cellCreates++
	if s.failCellCreates > 0 && s.cellCreates >= s.failCellCreates {
		return nil, fmt.Errorf("backing store unavailable")
	}
	return s.Store.CreateCell(cell)
}

func (s *failingStore) DeleteDocument(id string) error {
	if s.failDocumentWipe {
		return fmt.Errorf("backing store unavailable")
	}
	return s.Store.DeleteDocument(id)
}

func TestDuplicateCleansUpOnFailure(t *testing.T) {
	f := testutil.LoadInventory(t)
	wrapped := &failingStore{Store: f.Store, failCellCreates: 2}

	before, _ := f.Store.ListDocuments()

	_, err := drive.Duplicate(wrapped, drive.DuplicateRequest{
		SourceID:    f.Doc.ID,
		Name:        "Doomed",
		ActorID:     "u",
		IncludeData: true,
	})
	if err == nil {
		t.Fatal("expected duplicate to fail")
	}
	var partial *drive.PartialCloneError
	if errors.As(err, &partial) {
		t.Fatalf("cleanup succeeded, error must not be partial-clone: %v", err)
	}

	after, _ := f.Store.ListDocuments()
	if len(after) != len(before) {
		t.Errorf("partial document left behind: %d documents, expected %d", len(after), len(before))
	}
}

func TestDuplicateReportsPartialCloneWhenCleanupFails(t *testing.T) {
	f := testutil.LoadInventory(t)
	wrapped := &failingStore{Store: f.Store, failCellCreates: 2, failDocumentWipe: true}

	_, err := drive.Duplicate(wrapped, drive.DuplicateRequest{
		SourceID:    f.Doc.ID,
		Name:        "Doomed",
		ActorID:     "u",
		IncludeData: true,
	})
	var partial *drive.PartialCloneError
	if !errors.As(err, &partial) {
		t.Fatalf("expected PartialCloneError, got %v", err)
	}
	if partial.DocumentID == "" {
		t.Error("partial-clone error must carry the new document identity")
	}
	if _, getErr := f.Store.GetDocument(partial.DocumentID); getErr != nil {
		t.Errorf("carried identity should resolve to the partial document: %v", getErr)
	}
}

// collectIDs gathers every identity in a document's entity graph.
func collectIDs(t *testing.T, s drive.Store, documentID string) map[string]bool {
	t.Helper()
	ids := map[string]bool{documentID: true}

	cols, err := s.ListColumns(documentID)
	if err != nil {
		t.Fatalf("failed to list columns: %v", err)
	}
	for _, c := range cols {
		ids[c.ID] = true
	}
	rows, err := s.ListRows(documentID)
	if err != nil {
		t.Fatalf("failed to list rows: %v", err)
	}
	for _, r := range rows {
		ids[r.ID] = true
	}
	cells, err := s.ListCells(documentID)
	if err != nil {
		t.Fatalf("failed to list cells: %v", err)
	}
	for _, c := range cells {
		ids[c.ID] = true
		subs, _ := s.ListSubRows(c.ID)
		for _, sr := range subs {
			ids[sr.ID] = true
		}
		atts, _ := s.ListAttachments(c.ID)
		for _, a := range atts {
			ids[a.ID] = true
		}
	}
	return ids
}
