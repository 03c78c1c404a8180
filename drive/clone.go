package drive

import (
	"fmt"

	"github.com/antostif07/pyiurs-drive/types"
)

// DuplicateRequest describes a document clone.
type DuplicateRequest struct {
	// SourceID is the document to copy. It is never mutated.
	SourceID string

	// Name is the new document's name.
	Name string

	// ActorID becomes the new document's owner and the creator recorded
	// on cloned rows and cells.
	ActorID string

	// IncludeData clones rows, cells, sub-rows and attachments in
	// addition to the schema. When false the new document has zero rows.
	IncludeData bool
}

// Duplicate produces a structurally identical, identity-disjoint copy of
// the source document: same column labels, kinds, order, configuration and
// styling under entirely fresh identities.
//
// Cloning runs breadth-before-depth, level by level, holding an explicit
// old-to-new identity map at each level before descending: columns first,
// then rows, then cells one at a time. Each cell's children (sub-rows for
// multiline, attachments for file) are cloned only after the cell's create
// has returned its new identity. A cell whose row or column is missing
// from the maps is skipped rather than failing the whole clone.
//
// On failure the remaining work is aborted and the partial document is
// deleted; if that cleanup fails too, the error is a PartialCloneError
// carrying the new document's identity so the caller can reap it.
func Duplicate(s Store, req DuplicateRequest) (*types.Document, error) {
	source, err := s.GetDocument(req.SourceID)
	if err != nil {
		return nil, err
	}

	newDoc, err := s.CreateDocument(types.Document{
		Name:        req.Name,
		Description: source.Description,
		OwnerID:     req.ActorID,
		Active:      true,
		Permission:  source.Permission,
		Theme:       source.Theme,
	})
	if err != nil {
		return nil, err
	}

	if err := cloneInto(s, source.ID, newDoc, req); err != nil {
		// Compensating cleanup so partial clones are not observable.
		if delErr := s.DeleteDocument(newDoc.ID); delErr != nil {
			return nil, &PartialCloneError{DocumentID: newDoc.ID, Err: err}
		}
		return nil, err
	}
	return newDoc, nil
}

// cloneInto copies schema and (optionally) data from the source document
// into dst, which must be freshly created and empty.
func cloneInto(s Store, sourceID string, dst *types.Document, req DuplicateRequest) error {
	// Level 1: columns, in position order.
	sourceColumns, err := s.ListColumns(sourceID)
	if err != nil {
		return err
	}
	columnMap := make(map[string]string, len(sourceColumns))
	for _, col := range sourceColumns {
		clone := col
		clone.ID = ""
		clone.DocumentID = dst.ID
		clone.Options = append([]string(nil), col.Options...)
		// Sub-column descriptors keep their identifiers: sub-rows
		// reference them across the clone unchanged.
		clone.SubColumns = append([]types.SubColumn(nil), col.SubColumns...)
		created, err := s.AddColumn(clone)
		if err != nil {
			return fmt.Errorf("clone column %s: %w", col.ID, err)
		}
		columnMap[col.ID] = created.ID
	}

	if !req.IncludeData {
		return nil
	}

	// Level 2: rows, in position order.
	sourceRows, err := s.ListRows(sourceID)
	if err != nil {
		return err
	}
	rowMap := make(map[string]string, len(sourceRows))
	for _, row := range sourceRows {
		created, err := s.AddRow(types.Row{
			DocumentID: dst.ID,
			Position:   row.Position,
			CreatedBy:  req.ActorID,
			UpdatedBy:  req.ActorID,
		})
		if err != nil {
			return fmt.Errorf("clone row %s: %w", row.ID, err)
		}
		rowMap[row.ID] = created.ID
	}

	// Level 3: cells, one at a time; each clone's identity must be known
	// before its children are cloned.
	sourceCells, err := s.ListCells(sourceID)
	if err != nil {
		return err
	}
	for _, cell := range sourceCells {
		newRowID, okRow := rowMap[cell.RowID]
		newColumnID, okCol := columnMap[cell.ColumnID]
		if !okRow || !okCol {
			// Orphaned cell; skip it rather than failing the clone.
			continue
		}
		created, err := s.CreateCell(types.Cell{
			RowID:     newRowID,
			ColumnID:  newColumnID,
			Value:     cell.Value,
			CreatedBy: req.ActorID,
			UpdatedBy: req.ActorID,
		})
		if err != nil {
			return fmt.Errorf("clone cell %s: %w", cell.ID, err)
		}

		// Level 4: kind-conditional children, re-pointed at the new cell.
		switch cell.Value.Kind() {
		case types.KindMultiline:
			subRows, err := s.ListSubRows(cell.ID)
			if err != nil {
				return err
			}
			for _, sub := range subRows {
				if _, err := s.AddSubRow(types.SubRow{
					CellID:      created.ID,
					SubColumnID: sub.SubColumnID,
					Position:    sub.Position,
					Value:       sub.Value,
				}); err != nil {
					return fmt.Errorf("clone sub-row %s: %w", sub.ID, err)
				}
			}
		case types.KindFile:
			attachments, err := s.ListAttachments(cell.ID)
			if err != nil {
				return err
			}
			for _, att := range attachments {
				if _, err := s.AddAttachment(types.Attachment{
					CellID:     created.ID,
					ColumnID:   newColumnID,
					Path:       att.Path,
					Name:       att.Name,
					MediaType:  att.MediaType,
					Size:       att.Size,
					UploadedBy: att.UploadedBy,
					Position:   att.Position,
				}); err != nil {
					return fmt.Errorf("clone attachment %s: %w", att.ID, err)
				}
			}
		}
	}

	return nil
}
