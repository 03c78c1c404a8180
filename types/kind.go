// Package types defines the core types used throughout the drive engine.
// This package exists to prevent circular dependencies between the public API
// and the engine packages while maintaining a single source of truth for all
// type definitions.
package types

import "fmt"

// Kind identifies the data kind of a column, and therefore the shape of
// every cell stored under it. A column's kind is fixed at creation.
type Kind string

const (
	KindText      Kind = "text"
	KindNumber    Kind = "number"
	KindDate      Kind = "date"
	KindBoolean   Kind = "boolean"
	KindMultiline Kind = "multiline"
	KindSelect    Kind = "select"
	KindFile      Kind = "file"
)

// Kinds lists every valid kind in declaration order.
func Kinds() []Kind {
	return []Kind{KindText, KindNumber, KindDate, KindBoolean, KindMultiline, KindSelect, KindFile}
}

// Validate returns an error if k is not a recognized kind.
func (k Kind) Validate() error {
	switch k {
	case KindText, KindNumber, KindDate, KindBoolean, KindMultiline, KindSelect, KindFile:
		return nil
	}
	return fmt.Errorf("unknown column kind %q", string(k))
}

// Scalar reports whether the kind carries its value inline on the cell.
// Multiline and file cells keep their payload in child collections
// (sub-rows and attachments respectively); multiline still carries an
// inline summary text. Scalar kinds are the only ones allowed for
// sub-column descriptors.
func (k Kind) Scalar() bool {
	switch k {
	case KindText, KindNumber, KindDate, KindBoolean:
		return true
	}
	return false
}

// Default returns the value an unset (row, column) pair resolves to when
// read. The policy is fixed here, once, because it feeds search, filters
// and the pivoted view alike: text-shaped kinds resolve to the empty
// string, number to 0, date to the zero time, boolean to false, and file
// to an empty file marker.
func (k Kind) Default() Value {
	switch k {
	case KindNumber:
		return NumberValue(0)
	case KindDate:
		return DateValue(zeroDate)
	case KindBoolean:
		return BoolValue(false)
	case KindSelect:
		return SelectValue("")
	case KindMultiline:
		return MultilineValue("")
	case KindFile:
		return FileValue()
	default:
		return TextValue("")
	}
}
