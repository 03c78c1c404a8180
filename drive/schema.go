package drive

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/antostif07/pyiurs-drive/types"
)

// SchemaFile is the declarative YAML form of a document's column set,
// used by the CLI to apply a schema to a fresh document and to export an
// existing one.
type SchemaFile struct {
	Columns []ColumnSpec `yaml:"columns"`
}

// ColumnSpec describes one column in a schema file. Columns are applied
// in file order.
type ColumnSpec struct {
	Label      string          `yaml:"label"`
	Kind       types.Kind      `yaml:"kind"`
	Width      int             `yaml:"width,omitempty"`
	Color      string          `yaml:"color,omitempty"`
	Background string          `yaml:"background,omitempty"`
	Permission string          `yaml:"permission,omitempty"`
	Options    []string        `yaml:"options,omitempty"`
	SubColumns []SubColumnSpec `yaml:"sub_columns,omitempty"`
}

// SubColumnSpec describes one nested-table column of a multiline column.
type SubColumnSpec struct {
	Label string     `yaml:"label"`
	Kind  types.Kind `yaml:"kind"`
}

// LoadSchema parses and validates a schema file.
func LoadSchema(r io.Reader) (*SchemaFile, error) {
	var schema SchemaFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&schema); err != nil {
		return nil, fmt.Errorf("failed to parse schema: %w", err)
	}
	if err := schema.Validate(); err != nil {
		return nil, err
	}
	return &schema, nil
}

// Validate checks every column spec: known kind, options only and always
// for select, scalar sub-column kinds only and always for multiline.
func (s *SchemaFile) Validate() error {
	for i, col := range s.Columns {
		if col.Label == "" {
			return fmt.Errorf("column %d: label is required", i)
		}
		if err := col.Kind.Validate(); err != nil {
			return fmt.Errorf("column %q: %w", col.Label, err)
		}
		if col.Kind == types.KindSelect && len(col.Options) == 0 {
			return fmt.Errorf("column %q: select requires options", col.Label)
		}
		if col.Kind != types.KindSelect && len(col.Options) > 0 {
			return fmt.Errorf("column %q: options are only valid for select", col.Label)
		}
		if col.Kind != types.KindMultiline && len(col.SubColumns) > 0 {
			return fmt.Errorf("column %q: sub_columns are only valid for multiline", col.Label)
		}
		for _, sub := range col.SubColumns {
			if err := sub.Kind.Validate(); err != nil {
				return fmt.Errorf("column %q sub-column %q: %w", col.Label, sub.Label, err)
			}
			if !sub.Kind.Scalar() {
				return fmt.Errorf("column %q sub-column %q: kind %s is not scalar", col.Label, sub.Label, sub.Kind)
			}
		}
	}
	return nil
}

// ApplySchema appends the schema's columns to the document, in file order.
func ApplySchema(s Store, documentID string, schema *SchemaFile) ([]types.Column, error) {
	if err := schema.Validate(); err != nil {
		return nil, err
	}
	created := make([]types.Column, 0, len(schema.Columns))
	for _, spec := range schema.Columns {
		subColumns := make([]types.SubColumn, 0, len(spec.SubColumns))
		for _, sub := range spec.SubColumns {
			subColumns = append(subColumns, types.SubColumn{Label: sub.Label, Kind: sub.Kind})
		}
		col, err := s.AddColumn(types.Column{
			DocumentID: documentID,
			Label:      spec.Label,
			Kind:       spec.Kind,
			Position:   -1,
			Width:      spec.Width,
			Color:      spec.Color,
			Background: spec.Background,
			Permission: spec.Permission,
			Options:    spec.Options,
			SubColumns: subColumns,
		})
		if err != nil {
			return created, fmt.Errorf("apply column %q: %w", spec.Label, err)
		}
		created = append(created, *col)
	}
	return created, nil
}

// ExportSchema captures the document's current column set as a schema
// file, in position order.
func ExportSchema(s Store, documentID string) (*SchemaFile, error) {
	columns, err := s.ListColumns(documentID)
	if err != nil {
		return nil, err
	}
	schema := &SchemaFile{Columns: make([]ColumnSpec, 0, len(columns))}
	for _, col := range columns {
		spec := ColumnSpec{
			Label:      col.Label,
			Kind:       col.Kind,
			Width:      col.Width,
			Color:      col.Color,
			Background: col.Background,
			Permission: col.Permission,
			Options:    col.Options,
		}
		for _, sub := range col.SubColumns {
			spec.SubColumns = append(spec.SubColumns, SubColumnSpec{Label: sub.Label, Kind: sub.Kind})
		}
		schema.Columns = append(schema.Columns, spec)
	}
	return schema, nil
}

// Write serializes the schema file as YAML.
func (s *SchemaFile) Write(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	defer func() { _ = enc.Close() }()
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("failed to encode schema: %w", err)
	}
	return nil
}
