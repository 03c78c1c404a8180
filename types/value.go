package types

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the calendar-date layout used for display values and for
// parsing user input. Cells store dates without a time-of-day component.
const DateLayout = "2006-01-02"

var zeroDate time.Time

// Value is the polymorphic payload of a cell, represented as a tagged
// union: exactly one case per kind, constructed only through the
// kind-specific constructors below. This keeps "wrong field populated for
// this kind" unrepresentable, unlike a bag of independently-nullable
// fields.
//
// The zero Value is the unset text value; stores should never persist it
// directly, callers resolve unset pairs through Kind.Default instead.
type Value struct {
	kind    Kind
	text    string
	number  float64
	date    time.Time
	boolean bool
}

// TextValue returns a text-kind value.
func TextValue(s string) Value { return Value{kind: KindText, text: s} }

// NumberValue returns a number-kind value.
func NumberValue(f float64) Value { return Value{kind: KindNumber, number: f} }

// DateValue returns a date-kind value. The time-of-day component is
// truncated so two values on the same calendar day compare equal.
func DateValue(t time.Time) Value {
	if !t.IsZero() {
		t = t.Truncate(24 * time.Hour)
	}
	return Value{kind: KindDate, date: t}
}

// BoolValue returns a boolean-kind value.
func BoolValue(b bool) Value { return Value{kind: KindBoolean, boolean: b} }

// SelectValue returns a select-kind value holding the chosen option.
func SelectValue(option string) Value { return Value{kind: KindSelect, text: option} }

// MultilineValue returns a multiline-kind value holding the inline summary
// text; the nested table itself lives in the cell's sub-rows.
func MultilineValue(summary string) Value { return Value{kind: KindMultiline, text: summary} }

// FileValue returns a file-kind value. The payload lives in the cell's
// attachments; the value itself carries no scalar.
func FileValue() Value { return Value{kind: KindFile} }

// Kind returns the value's kind tag.
func (v Value) Kind() Kind { return v.kind }

// Text returns the text payload for text, select and multiline values.
func (v Value) Text() (string, bool) {
	switch v.kind {
	case KindText, KindSelect, KindMultiline:
		return v.text, true
	}
	return "", false
}

// Number returns the numeric payload for number values.
func (v Value) Number() (float64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	return v.number, true
}

// Date returns the date payload for date values.
func (v Value) Date() (time.Time, bool) {
	if v.kind != KindDate {
		return zeroDate, false
	}
	return v.date, true
}

// Bool returns the boolean payload for boolean values.
func (v Value) Bool() (bool, bool) {
	if v.kind != KindBoolean {
		return false, false
	}
	return v.boolean, true
}

// filePlaceholder is what a file cell displays in tabular views; the
// binary itself is never a display value.
const filePlaceholder = "[file]"

// Display extracts the display-comparable scalar from the value. This is
// the single dispatch point over the kind union; search, filters, sort and
// the pivoted view all call it rather than re-implementing per-kind logic.
func (v Value) Display() string {
	switch v.kind {
	case KindText, KindSelect, KindMultiline:
		return v.text
	case KindNumber:
		return strconv.FormatFloat(v.number, 'f', -1, 64)
	case KindDate:
		if v.date.IsZero() {
			return ""
		}
		return v.date.Format(DateLayout)
	case KindBoolean:
		return strconv.FormatBool(v.boolean)
	case KindFile:
		return filePlaceholder
	default:
		// The zero Value; treated as empty text.
		return v.text
	}
}

// ParseValue converts a display string back into a typed value for the
// given kind. It is the inverse of Display for every kind that carries an
// inline scalar; for file kind the input is ignored.
func ParseValue(kind Kind, s string) (Value, error) {
	switch kind {
	case KindText:
		return TextValue(s), nil
	case KindSelect:
		return SelectValue(s), nil
	case KindMultiline:
		return MultilineValue(s), nil
	case KindNumber:
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return Value{}, fmt.Errorf("invalid number %q: %w", s, err)
		}
		return NumberValue(f), nil
	case KindDate:
		if strings.TrimSpace(s) == "" {
			return DateValue(zeroDate), nil
		}
		t, err := time.Parse(DateLayout, strings.TrimSpace(s))
		if err != nil {
			return Value{}, fmt.Errorf("invalid date %q: %w", s, err)
		}
		return DateValue(t), nil
	case KindBoolean:
		b, err := strconv.ParseBool(strings.TrimSpace(s))
		if err != nil {
			return Value{}, fmt.Errorf("invalid boolean %q: %w", s, err)
		}
		return BoolValue(b), nil
	case KindFile:
		return FileValue(), nil
	default:
		return Value{}, fmt.Errorf("cannot parse value: %w", kind.Validate())
	}
}

// valueJSON is the flat wire form of a Value in the store file.
type valueJSON struct {
	Kind    Kind       `json:"kind"`
	Text    *string    `json:"text,omitempty"`
	Number  *float64   `json:"number,omitempty"`
	Date    *time.Time `json:"date,omitempty"`
	Boolean *bool      `json:"boolean,omitempty"`
}

// MarshalJSON encodes the value as its kind tag plus the one populated
// scalar field.
func (v Value) MarshalJSON() ([]byte, error) {
	out := valueJSON{Kind: v.kind}
	switch v.kind {
	case KindText, KindSelect, KindMultiline:
		out.Text = &v.text
	case KindNumber:
		out.Number = &v.number
	case KindDate:
		out.Date = &v.date
	case KindBoolean:
		out.Boolean = &v.boolean
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes the flat wire form, tolerating absent scalar
// fields by falling back to the kind's default payload.
func (v *Value) UnmarshalJSON(data []byte) error {
	var in valueJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	if err := in.Kind.Validate(); err != nil {
		return err
	}
	out := in.Kind.Default()
	switch in.Kind {
	case KindText, KindSelect, KindMultiline:
		if in.Text != nil {
			out.text = *in.Text
		}
	case KindNumber:
		if in.Number != nil {
			out.number = *in.Number
		}
	case KindDate:
		if in.Date != nil {
			out.date = *in.Date
		}
	case KindBoolean:
		if in.Boolean != nil {
			out.boolean = *in.Boolean
		}
	}
	*v = out
	return nil
}
