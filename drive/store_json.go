package drive

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"github.com/antostif07/pyiurs-drive/types"
)

// memoryPath is the special path that selects an in-process store with no
// backing file and no cross-process lock.
const memoryPath = ":memory:"

// fileStore implements the Store interface with a JSON file backend. All
// six collections live in one file; every mutation rewrites it atomically
// (temp file + rename). In-process access is serialized by the
// lockManager, cross-process access by a flock on a sidecar lock file.
type fileStore struct {
	filePath    string
	inMemory    bool
	lockManager *lockManager
	fileLock    *flock.Flock
	data        *storeData
	// timeFunc is used to get the current time, defaults to time.Now.
	// Can be overridden for testing.
	timeFunc func() time.Time
}

// storeData represents the in-memory data structure.
type storeData struct {
	Documents   []types.Document   `json:"documents"`
	Columns     []types.Column     `json:"columns"`
	Rows        []types.Row        `json:"rows"`
	Cells       []types.Cell       `json:"cells"`
	SubRows     []types.SubRow     `json:"sub_rows"`
	Attachments []types.Attachment `json:"attachments"`
	Metadata    storeMetadata      `json:"metadata"`
}

// storeMetadata contains store metadata.
type storeMetadata struct {
	Version   string    `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// newFileStore creates a new JSON file store.
func newFileStore(filePath string) (*fileStore, error) {
	now := time.Now()
	s := &fileStore{
		filePath:    filePath,
		inMemory:    filePath == memoryPath,
		lockManager: newLockManager(),
		timeFunc:    time.Now,
		data: &storeData{
			Metadata: storeMetadata{
				Version:   "1.0",
				CreatedAt: now,
				UpdatedAt: now,
			},
		},
	}

	if !s.inMemory {
		// Use a separate lock file to avoid issues with file replacement
		// during save.
		s.fileLock = flock.New(filePath + ".lock")
		if err := s.loadWithLock(); err != nil {
			return nil, fmt.Errorf("failed to load data: %w", err)
		}
	}

	return s, nil
}

// SetTimeFunc sets a custom time function for testing.
func (s *fileStore) SetTimeFunc(fn func() time.Time) {
	_ = s.lockManager.execute(writeOperation, func() error {
		s.timeFunc = fn
		return nil
	})
}

// Close releases the cross-process lock, if held.
func (s *fileStore) Close() error {
	if s.fileLock != nil {
		return s.fileLock.Unlock()
	}
	return nil
}

// Constants for file locking.
const (
	lockTimeout    = 3 * time.Second
	lockMaxRetries = 3
	lockRetryDelay = 100 * time.Millisecond
)

// acquireLock attempts to acquire an exclusive file lock with retry logic.
func (s *fileStore) acquireLock(ctx context.Context) error {
	for i := 0; i < lockMaxRetries; i++ {
		locked, err := s.fileLock.TryLockContext(ctx, lockRetryDelay)
		if err != nil {
			return fmt.Errorf("failed to acquire lock: %w", err)
		}
		if locked {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(lockRetryDelay):
		}
	}

	return fmt.Errorf("failed to acquire lock after %d attempts", lockMaxRetries)
}

func (s *fileStore) releaseLock() error {
	return s.fileLock.Unlock()
}

// loadWithLock loads the data file while holding the file lock.
func (s *fileStore) loadWithLock() error {
	ctx, cancel := context.WithTimeout(context.Background(), lockTimeout)
	defer cancel()

	if err := s.acquireLock(ctx); err != nil {
		return err
	}
	defer func() { _ = s.releaseLock() }()

	return s.load()
}

// load reads the JSON file into memory. Caller must handle locking.
func (s *fileStore) load() error {
	if _, err := os.Stat(s.filePath); os.IsNotExist(err) {
		// File doesn't exist yet, that's OK.
		return nil
	}

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}
	if len(data) == 0 {
		return nil
	}

	var sd storeData
	if err := json.Unmarshal(data, &sd); err != nil {
		return fmt.Errorf("failed to parse JSON: %w", err)
	}

	s.data = &sd
	return nil
}

// save writes the in-memory data to the JSON file atomically. Caller must
// hold the write lock; no-op for in-memory stores.
func (s *fileStore) save() error {
	if s.inMemory {
		return nil
	}

	s.data.Metadata.UpdatedAt = s.timeFunc()

	data, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), lockTimeout)
	defer cancel()
	if err := s.acquireLock(ctx); err != nil {
		return err
	}
	defer func() { _ = s.releaseLock() }()

	tmpFile := s.filePath + ".tmp"
	if err := os.WriteFile(tmpFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	// Rename temp file to actual file (atomic on most filesystems).
	if err := os.Rename(tmpFile, s.filePath); err != nil {
		_ = os.Remove(tmpFile)
		return fmt.Errorf("failed to rename file: %w", err)
	}

	return nil
}

// =============================================================================
// Documents
// =============================================================================

func (s *fileStore) CreateDocument(doc types.Document) (*types.Document, error) {
	var created types.Document
	err := s.lockManager.execute(writeOperation, func() error {
		now := s.timeFunc()
		doc.ID = uuid.New().String()
		doc.CreatedAt = now
		doc.UpdatedAt = now
		s.data.Documents = append(s.data.Documents, doc)
		created = doc
		return s.save()
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *fileStore) GetDocument(id string) (*types.Document, error) {
	var found *types.Document
	err := s.lockManager.execute(readOperation, func() error {
		for i := range s.data.Documents {
			if s.data.Documents[i].ID == id {
				doc := s.data.Documents[i]
				found = &doc
				return nil
			}
		}
		return fmt.Errorf("document %s: %w", id, ErrNotFound)
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

func (s *fileStore) RenameDocument(id, name string) error {
	return s.lockManager.execute(writeOperation, func() error {
		for i := range s.data.Documents {
			if s.data.Documents[i].ID == id {
				s.data.Documents[i].Name = name
				s.data.Documents[i].UpdatedAt = s.timeFunc()
				return s.save()
			}
		}
		return fmt.Errorf("document %s: %w", id, ErrNotFound)
	})
}

func (s *fileStore) SetDocumentActive(id string, active bool) error {
	return s.lockManager.execute(writeOperation, func() error {
		for i := range s.data.Documents {
			if s.data.Documents[i].ID == id {
				s.data.Documents[i].Active = active
				s.data.Documents[i].UpdatedAt = s.timeFunc()
				return s.save()
			}
		}
		return fmt.Errorf("document %s: %w", id, ErrNotFound)
	})
}

// DeleteDocument removes the document and everything it owns: columns,
// rows, cells, sub-rows and attachments.
func (s *fileStore) DeleteDocument(id string) error {
	return s.lockManager.execute(writeOperation, func() error {
		idx := -1
		for i := range s.data.Documents {
			if s.data.Documents[i].ID == id {
				idx = i
				break
			}
		}
		if idx < 0 {
			return fmt.Errorf("document %s: %w", id, ErrNotFound)
		}

		s.data.Documents = append(s.data.Documents[:idx], s.data.Documents[idx+1:]...)

		kept := s.data.Columns[:0]
		for _, c := range s.data.Columns {
			if c.DocumentID != id {
				kept = append(kept, c)
			}
		}
		s.data.Columns = kept

		rowIDs := make(map[string]bool)
		keptRows := s.data.Rows[:0]
		for _, r := range s.data.Rows {
			if r.DocumentID == id {
				rowIDs[r.ID] = true
			} else {
				keptRows = append(keptRows, r)
			}
		}
		s.data.Rows = keptRows

		s.removeCells(func(c types.Cell) bool { return rowIDs[c.RowID] })
		return s.save()
	})
}

func (s *fileStore) ListDocuments() ([]types.Document, error) {
	var result []types.Document
	err := s.lockManager.execute(readOperation, func() error {
		result = make([]types.Document, len(s.data.Documents))
		copy(result, s.data.Documents)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

// =============================================================================
// Columns
// =============================================================================

func (s *fileStore) AddColumn(col types.Column) (*types.Column, error) {
	var created types.Column
	err := s.lockManager.execute(writeOperation, func() error {
		if err := col.Kind.Validate(); err != nil {
			return err
		}
		if !s.documentExists(col.DocumentID) {
			return fmt.Errorf("document %s: %w", col.DocumentID, ErrNotFound)
		}
		if err := normalizeSubColumns(col.SubColumns); err != nil {
			return err
		}

		now := s.timeFunc()
		col.ID = uuid.New().String()
		col.CreatedAt = now
		col.UpdatedAt = now
		col.Position = s.placeColumn(col.DocumentID, col.Position)
		s.data.Columns = append(s.data.Columns, col)
		created = col
		return s.save()
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// placeColumn resolves the insertion position for a new column: negative
// appends after the current maximum, an explicit position shifts later
// siblings up by one to keep positions unique.
func (s *fileStore) placeColumn(documentID string, position int) int {
	max := -1
	for _, c := range s.data.Columns {
		if c.DocumentID == documentID && c.Position > max {
			max = c.Position
		}
	}
	if position < 0 || position > max+1 {
		return max + 1
	}
	for i := range s.data.Columns {
		if s.data.Columns[i].DocumentID == documentID && s.data.Columns[i].Position >= position {
			s.data.Columns[i].Position++
		}
	}
	return position
}

func (s *fileStore) GetColumn(id string) (*types.Column, error) {
	var found *types.Column
	err := s.lockManager.execute(readOperation, func() error {
		for i := range s.data.Columns {
			if s.data.Columns[i].ID == id {
				col := s.data.Columns[i]
				found = &col
				return nil
			}
		}
		return fmt.Errorf("column %s: %w", id, ErrNotFound)
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

// UpdateColumn replaces the column's presentation and configuration
// fields. The kind, owning document and position are immutable here
// (reposition through MoveColumn).
func (s *fileStore) UpdateColumn(col *types.Column) error {
	return s.lockManager.execute(writeOperation, func() error {
		for i := range s.data.Columns {
			if s.data.Columns[i].ID != col.ID {
				continue
			}
			if s.data.Columns[i].Kind != col.Kind {
				return fmt.Errorf("column %s: kind is fixed at creation: %w", col.ID, ErrKindMismatch)
			}
			if err := normalizeSubColumns(col.SubColumns); err != nil {
				return err
			}
			existing := &s.data.Columns[i]
			existing.Label = col.Label
			existing.Width = col.Width
			existing.Color = col.Color
			existing.Background = col.Background
			existing.Permission = col.Permission
			existing.Options = col.Options
			existing.SubColumns = col.SubColumns
			existing.UpdatedAt = s.timeFunc()
			return s.save()
		}
		return fmt.Errorf("column %s: %w", col.ID, ErrNotFound)
	})
}

func (s *fileStore) MoveColumn(id string, position int) error {
	return s.lockManager.execute(writeOperation, func() error {
		var target *types.Column
		for i := range s.data.Columns {
			if s.data.Columns[i].ID == id {
				target = &s.data.Columns[i]
				break
			}
		}
		if target == nil {
			return fmt.Errorf("column %s: %w", id, ErrNotFound)
		}

		// Rebuild the document's column order with the target at the
		// requested index, then renumber sequentially.
		siblings := make([]*types.Column, 0)
		for i := range s.data.Columns {
			if s.data.Columns[i].DocumentID == target.DocumentID && s.data.Columns[i].ID != id {
				siblings = append(siblings, &s.data.Columns[i])
			}
		}
		sort.SliceStable(siblings, func(i, j int) bool { return siblings[i].Position < siblings[j].Position })

		if position < 0 {
			position = 0
		}
		if position > len(siblings) {
			position = len(siblings)
		}
		ordered := make([]*types.Column, 0, len(siblings)+1)
		ordered = append(ordered, siblings[:position]...)
		ordered = append(ordered, target)
		ordered = append(ordered, siblings[position:]...)
		for i, c := range ordered {
			c.Position = i
		}
		target.UpdatedAt = s.timeFunc()
		return s.save()
	})
}

// DeleteColumn removes the column and cascades to every cell under it,
// along with those cells' sub-rows and attachments.
func (s *fileStore) DeleteColumn(id string) error {
	return s.lockManager.execute(writeOperation, func() error {
		idx := -1
		for i := range s.data.Columns {
			if s.data.Columns[i].ID == id {
				idx = i
				break
			}
		}
		if idx < 0 {
			return fmt.Errorf("column %s: %w", id, ErrNotFound)
		}

		s.data.Columns = append(s.data.Columns[:idx], s.data.Columns[idx+1:]...)
		s.removeCells(func(c types.Cell) bool { return c.ColumnID == id })
		return s.save()
	})
}

func (s *fileStore) ListColumns(documentID string) ([]types.Column, error) {
	var result []types.Column
	err := s.lockManager.execute(readOperation, func() error {
		for _, c := range s.data.Columns {
			if c.DocumentID == documentID {
				result = append(result, c)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].Position < result[j].Position })
	return result, nil
}

// =============================================================================
// Rows
// =============================================================================

func (s *fileStore) AddRow(row types.Row) (*types.Row, error) {
	var created types.Row
	err := s.lockManager.execute(writeOperation, func() error {
		if !s.documentExists(row.DocumentID) {
			return fmt.Errorf("document %s: %w", row.DocumentID, ErrNotFound)
		}

		now := s.timeFunc()
		row.ID = uuid.New().String()
		row.CreatedAt = now
		row.UpdatedAt = now
		if row.UpdatedBy == "" {
			row.UpdatedBy = row.CreatedBy
		}
		row.Position = s.placeRow(row.DocumentID, row.Position)
		s.data.Rows = append(s.data.Rows, row)
		created = row
		return s.save()
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *fileStore) placeRow(documentID string, position int) int {
	max := -1
	for _, r := range s.data.Rows {
		if r.DocumentID == documentID && r.Position > max {
			max = r.Position
		}
	}
	if position < 0 || position > max+1 {
		return max + 1
	}
	for i := range s.data.Rows {
		if s.data.Rows[i].DocumentID == documentID && s.data.Rows[i].Position >= position {
			s.data.Rows[i].Position++
		}
	}
	return position
}

func (s *fileStore) GetRow(id string) (*types.Row, error) {
	var found *types.Row
	err := s.lockManager.execute(readOperation, func() error {
		for i := range s.data.Rows {
			if s.data.Rows[i].ID == id {
				row := s.data.Rows[i]
				found = &row
				return nil
			}
		}
		return fmt.Errorf("row %s: %w", id, ErrNotFound)
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

func (s *fileStore) MoveRow(id string, position int) error {
	return s.lockManager.execute(writeOperation, func() error {
		var target *types.Row
		for i := range s.data.Rows {
			if s.data.Rows[i].ID == id {
				target = &s.data.Rows[i]
				break
			}
		}
		if target == nil {
			return fmt.Errorf("row %s: %w", id, ErrNotFound)
		}

		siblings := make([]*types.Row, 0)
		for i := range s.data.Rows {
			if s.data.Rows[i].DocumentID == target.DocumentID && s.data.Rows[i].ID != id {
				siblings = append(siblings, &s.data.Rows[i])
			}
		}
		sort.SliceStable(siblings, func(i, j int) bool { return siblings[i].Position < siblings[j].Position })

		if position < 0 {
			position = 0
		}
		if position > len(siblings) {
			position = len(siblings)
		}
		ordered := make([]*types.Row, 0, len(siblings)+1)
		ordered = append(ordered, siblings[:position]...)
		ordered = append(ordered, target)
		ordered = append(ordered, siblings[position:]...)
		for i, r := range ordered {
			r.Position = i
		}
		target.UpdatedAt = s.timeFunc()
		return s.save()
	})
}

// DeleteRow removes the row and cascades to its cells and their children.
func (s *fileStore) DeleteRow(id string) error {
	return s.lockManager.execute(writeOperation, func() error {
		idx := -1
		for i := range s.data.Rows {
			if s.data.Rows[i].ID == id {
				idx = i
				break
			}
		}
		if idx < 0 {
			return fmt.Errorf("row %s: %w", id, ErrNotFound)
		}

		s.data.Rows = append(s.data.Rows[:idx], s.data.Rows[idx+1:]...)
		s.removeCells(func(c types.Cell) bool { return c.RowID == id })
		return s.save()
	})
}

func (s *fileStore) ListRows(documentID string) ([]types.Row, error) {
	var result []types.Row
	err := s.lockManager.execute(readOperation, func() error {
		for _, r := range s.data.Rows {
			if r.DocumentID == documentID {
				result = append(result, r)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].Position < result[j].Position })
	return result, nil
}

// =============================================================================
// Cells
// =============================================================================

func (s *fileStore) CreateCell(cell types.Cell) (*types.Cell, error) {
	var created types.Cell
	err := s.lockManager.execute(writeOperation, func() error {
		row := s.findRow(cell.RowID)
		if row == nil {
			return fmt.Errorf("row %s: %w", cell.RowID, ErrNotFound)
		}
		col := s.findColumn(cell.ColumnID)
		if col == nil {
			return fmt.Errorf("column %s: %w", cell.ColumnID, ErrNotFound)
		}
		if row.DocumentID != col.DocumentID {
			return fmt.Errorf("row %s and column %s belong to different documents", cell.RowID, cell.ColumnID)
		}
		if cell.Value.Kind() != col.Kind {
			return fmt.Errorf("column %s expects %s, got %s: %w", col.ID, col.Kind, cell.Value.Kind(), ErrKindMismatch)
		}
		for _, existing := range s.data.Cells {
			if existing.RowID == cell.RowID && existing.ColumnID == cell.ColumnID {
				return fmt.Errorf("row %s column %s: %w", cell.RowID, cell.ColumnID, ErrCellExists)
			}
		}

		now := s.timeFunc()
		cell.ID = uuid.New().String()
		cell.CreatedAt = now
		cell.UpdatedAt = now
		if cell.UpdatedBy == "" {
			cell.UpdatedBy = cell.CreatedBy
		}
		s.data.Cells = append(s.data.Cells, cell)
		created = cell
		return s.save()
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateCell replaces the cell's value in place. Last write wins: there is
// no version token, so two concurrent editors can lose one update.
func (s *fileStore) UpdateCell(id string, value types.Value, actorID string) error {
	return s.lockManager.execute(writeOperation, func() error {
		for i := range s.data.Cells {
			if s.data.Cells[i].ID != id {
				continue
			}
			col := s.findColumn(s.data.Cells[i].ColumnID)
			if col == nil {
				return fmt.Errorf("column %s: %w", s.data.Cells[i].ColumnID, ErrNotFound)
			}
			if value.Kind() != col.Kind {
				return fmt.Errorf("column %s expects %s, got %s: %w", col.ID, col.Kind, value.Kind(), ErrKindMismatch)
			}
			s.data.Cells[i].Value = value
			s.data.Cells[i].UpdatedBy = actorID
			s.data.Cells[i].UpdatedAt = s.timeFunc()
			return s.save()
		}
		return fmt.Errorf("cell %s: %w", id, ErrNotFound)
	})
}

// SetCell is the upsert keyed by (row, column): it updates the pair's cell
// when one exists and creates it lazily otherwise. The whole upsert runs
// under one write lock, so concurrent upserts on the same unset pair
// serialize into create-then-update instead of one caller observing a
// duplicate-pair rejection.
func (s *fileStore) SetCell(rowID, columnID string, value types.Value, actorID string) (*types.Cell, error) {
	var result types.Cell
	err := s.lockManager.execute(writeOperation, func() error {
		col := s.findColumn(columnID)
		if col == nil {
			return fmt.Errorf("column %s: %w", columnID, ErrNotFound)
		}
		if value.Kind() != col.Kind {
			return fmt.Errorf("column %s expects %s, got %s: %w", col.ID, col.Kind, value.Kind(), ErrKindMismatch)
		}

		for i := range s.data.Cells {
			if s.data.Cells[i].RowID == rowID && s.data.Cells[i].ColumnID == columnID {
				s.data.Cells[i].Value = value
				s.data.Cells[i].UpdatedBy = actorID
				s.data.Cells[i].UpdatedAt = s.timeFunc()
				result = s.data.Cells[i]
				return s.save()
			}
		}

		row := s.findRow(rowID)
		if row == nil {
			return fmt.Errorf("row %s: %w", rowID, ErrNotFound)
		}
		if row.DocumentID != col.DocumentID {
			return fmt.Errorf("row %s and column %s belong to different documents", rowID, columnID)
		}

		now := s.timeFunc()
		cell := types.Cell{
			ID:        uuid.New().String(),
			RowID:     rowID,
			ColumnID:  columnID,
			Value:     value,
			CreatedBy: actorID,
			UpdatedBy: actorID,
			CreatedAt: now,
			UpdatedAt: now,
		}
		s.data.Cells = append(s.data.Cells, cell)
		result = cell
		return s.save()
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *fileStore) GetCell(rowID, columnID string) (*types.Cell, error) {
	var found *types.Cell
	err := s.lockManager.execute(readOperation, func() error {
		for i := range s.data.Cells {
			if s.data.Cells[i].RowID == rowID && s.data.Cells[i].ColumnID == columnID {
				cell := s.data.Cells[i]
				found = &cell
				return nil
			}
		}
		return fmt.Errorf("cell for row %s column %s: %w", rowID, columnID, ErrNotFound)
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

func (s *fileStore) GetCellByID(id string) (*types.Cell, error) {
	var found *types.Cell
	err := s.lockManager.execute(readOperation, func() error {
		for i := range s.data.Cells {
			if s.data.Cells[i].ID == id {
				cell := s.data.Cells[i]
				found = &cell
				return nil
			}
		}
		return fmt.Errorf("cell %s: %w", id, ErrNotFound)
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

// ListCells returns every cell of the document, in no particular order.
func (s *fileStore) ListCells(documentID string) ([]types.Cell, error) {
	var result []types.Cell
	err := s.lockManager.execute(readOperation, func() error {
		rowIDs := make(map[string]bool)
		for _, r := range s.data.Rows {
			if r.DocumentID == documentID {
				rowIDs[r.ID] = true
			}
		}
		for _, c := range s.data.Cells {
			if rowIDs[c.RowID] {
				result = append(result, c)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// =============================================================================
// Sub-rows
// =============================================================================

func (s *fileStore) AddSubRow(sub types.SubRow) (*types.SubRow, error) {
	var created types.SubRow
	err := s.lockManager.execute(writeOperation, func() error {
		cell := s.findCell(sub.CellID)
		if cell == nil {
			return fmt.Errorf("cell %s: %w", sub.CellID, ErrNotFound)
		}
		if cell.Value.Kind() != types.KindMultiline {
			return fmt.Errorf("cell %s is %s, sub-rows require multiline", cell.ID, cell.Value.Kind())
		}
		col := s.findColumn(cell.ColumnID)
		if col == nil {
			return fmt.Errorf("column %s: %w", cell.ColumnID, ErrNotFound)
		}
		var subCol *types.SubColumn
		for i := range col.SubColumns {
			if col.SubColumns[i].ID == sub.SubColumnID {
				subCol = &col.SubColumns[i]
				break
			}
		}
		if subCol == nil {
			return fmt.Errorf("sub-column %s: %w", sub.SubColumnID, ErrNotFound)
		}
		if sub.Value.Kind() != subCol.Kind {
			return fmt.Errorf("sub-column %s expects %s, got %s: %w", subCol.ID, subCol.Kind, sub.Value.Kind(), ErrKindMismatch)
		}

		now := s.timeFunc()
		sub.ID = uuid.New().String()
		sub.CreatedAt = now
		sub.UpdatedAt = now
		sub.Position = s.placeSubRow(sub.CellID, sub.Position)
		s.data.SubRows = append(s.data.SubRows, sub)
		created = sub
		return s.save()
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *fileStore) placeSubRow(cellID string, position int) int {
	max := -1
	for _, sr := range s.data.SubRows {
		if sr.CellID == cellID && sr.Position > max {
			max = sr.Position
		}
	}
	if position < 0 || position > max+1 {
		return max + 1
	}
	for i := range s.data.SubRows {
		if s.data.SubRows[i].CellID == cellID && s.data.SubRows[i].Position >= position {
			s.data.SubRows[i].Position++
		}
	}
	return position
}

func (s *fileStore) UpdateSubRow(sub *types.SubRow) error {
	return s.lockManager.execute(writeOperation, func() error {
		for i := range s.data.SubRows {
			if s.data.SubRows[i].ID != sub.ID {
				continue
			}
			if s.data.SubRows[i].Value.Kind() != sub.Value.Kind() {
				return fmt.Errorf("sub-row %s: %w", sub.ID, ErrKindMismatch)
			}
			s.data.SubRows[i].Value = sub.Value
			s.data.SubRows[i].UpdatedAt = s.timeFunc()
			return s.save()
		}
		return fmt.Errorf("sub-row %s: %w", sub.ID, ErrNotFound)
	})
}

func (s *fileStore) DeleteSubRow(id string) error {
	return s.lockManager.execute(writeOperation, func() error {
		for i := range s.data.SubRows {
			if s.data.SubRows[i].ID == id {
				s.data.SubRows = append(s.data.SubRows[:i], s.data.SubRows[i+1:]...)
				return s.save()
			}
		}
		return fmt.Errorf("sub-row %s: %w", id, ErrNotFound)
	})
}

func (s *fileStore) ListSubRows(cellID string) ([]types.SubRow, error) {
	var result []types.SubRow
	err := s.lockManager.execute(readOperation, func() error {
		for _, sr := range s.data.SubRows {
			if sr.CellID == cellID {
				result = append(result, sr)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].Position < result[j].Position })
	return result, nil
}

// =============================================================================
// Attachments
// =============================================================================

func (s *fileStore) AddAttachment(att types.Attachment) (*types.Attachment, error) {
	var created types.Attachment
	err := s.lockManager.execute(writeOperation, func() error {
		cell := s.findCell(att.CellID)
		if cell == nil {
			return fmt.Errorf("cell %s: %w", att.CellID, ErrNotFound)
		}
		if cell.Value.Kind() != types.KindFile {
			return fmt.Errorf("cell %s is %s, attachments require file", cell.ID, cell.Value.Kind())
		}

		now := s.timeFunc()
		att.ID = uuid.New().String()
		// The column back-reference is derived, not caller-supplied.
		att.ColumnID = cell.ColumnID
		att.CreatedAt = now
		att.Position = s.placeAttachment(att.CellID, att.Position)
		s.data.Attachments = append(s.data.Attachments, att)
		created = att
		return s.save()
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *fileStore) placeAttachment(cellID string, position int) int {
	max := -1
	for _, a := range s.data.Attachments {
		if a.CellID == cellID && a.Position > max {
			max = a.Position
		}
	}
	if position < 0 || position > max+1 {
		return max + 1
	}
	for i := range s.data.Attachments {
		if s.data.Attachments[i].CellID == cellID && s.data.Attachments[i].Position >= position {
			s.data.Attachments[i].Position++
		}
	}
	return position
}

func (s *fileStore) DeleteAttachment(id string) error {
	return s.lockManager.execute(writeOperation, func() error {
		for i := range s.data.Attachments {
			if s.data.Attachments[i].ID == id {
				s.data.Attachments = append(s.data.Attachments[:i], s.data.Attachments[i+1:]...)
				return s.save()
			}
		}
		return fmt.Errorf("attachment %s: %w", id, ErrNotFound)
	})
}

func (s *fileStore) ListAttachments(cellID string) ([]types.Attachment, error) {
	var result []types.Attachment
	err := s.lockManager.execute(readOperation, func() error {
		for _, a := range s.data.Attachments {
			if a.CellID == cellID {
				result = append(result, a)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].Position < result[j].Position })
	return result, nil
}

// =============================================================================
// Helpers
// =============================================================================

// Lookup helpers assume the caller already holds the lock.

// normalizeSubColumns checks that every sub-column descriptor carries a
// scalar kind and mints identities for descriptors that lack one. Both
// AddColumn and UpdateColumn run new descriptors through it: sub-rows
// address their descriptor by SubColumnID, so an ID-less descriptor must
// never be stored.
func normalizeSubColumns(subs []types.SubColumn) error {
	for i := range subs {
		sub := &subs[i]
		if !sub.Kind.Scalar() {
			return fmt.Errorf("sub-column %q: kind %q is not scalar", sub.Label, sub.Kind)
		}
		if sub.ID == "" {
			sub.ID = uuid.New().String()
		}
	}
	return nil
}

func (s *fileStore) documentExists(id string) bool {
	for i := range s.data.Documents {
		if s.data.Documents[i].ID == id {
			return true
		}
	}
	return false
}

func (s *fileStore) findColumn(id string) *types.Column {
	for i := range s.data.Columns {
		if s.data.Columns[i].ID == id {
			return &s.data.Columns[i]
		}
	}
	return nil
}

func (s *fileStore) findRow(id string) *types.Row {
	for i := range s.data.Rows {
		if s.data.Rows[i].ID == id {
			return &s.data.Rows[i]
		}
	}
	return nil
}

func (s *fileStore) findCell(id string) *types.Cell {
	for i := range s.data.Cells {
		if s.data.Cells[i].ID == id {
			return &s.data.Cells[i]
		}
	}
	return nil
}

// removeCells drops every cell matching the predicate along with its
// sub-rows and attachments. Caller must hold the write lock.
func (s *fileStore) removeCells(match func(types.Cell) bool) {
	cellIDs := make(map[string]bool)
	kept := s.data.Cells[:0]
	for _, c := range s.data.Cells {
		if match(c) {
			cellIDs[c.ID] = true
		} else {
			kept = append(kept, c)
		}
	}
	s.data.Cells = kept

	keptSubs := s.data.SubRows[:0]
	for _, sr := range s.data.SubRows {
		if !cellIDs[sr.CellID] {
			keptSubs = append(keptSubs, sr)
		}
	}
	s.data.SubRows = keptSubs

	keptAtts := s.data.Attachments[:0]
	for _, a := range s.data.Attachments {
		if !cellIDs[a.CellID] {
			keptAtts = append(keptAtts, a)
		}
	}
	s.data.Attachments = keptAtts
}

// Compile-time interface check.
var _ TestStore = (*fileStore)(nil)
