package types_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/antostif07/pyiurs-drive/types"
)

func TestDisplayDispatch(t *testing.T) {
	date := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name  string
		value types.Value
		want  string
	}{
		{"text", types.TextValue("Widget"), "Widget"},
		{"select", types.SelectValue("low"), "low"},
		{"multiline summary", types.MultilineValue("3 notes"), "3 notes"},
		{"whole number", types.NumberValue(5), "5"},
		{"fractional number", types.NumberValue(2.5), "2.5"},
		{"date", types.DateValue(date), "2026-01-10"},
		{"zero date", types.DateValue(time.Time{}), ""},
		{"bool true", types.BoolValue(true), "true"},
		{"bool false", types.BoolValue(false), "false"},
		{"file placeholder", types.FileValue(), "[file]"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.value.Display(); got != tc.want {
				t.Errorf("Display() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestAccessorsRejectWrongKind(t *testing.T) {
	v := types.TextValue("nope")
	if _, ok := v.Number(); ok {
		t.Error("Number() must fail on a text value")
	}
	if _, ok := v.Date(); ok {
		t.Error("Date() must fail on a text value")
	}
	if _, ok := v.Bool(); ok {
		t.Error("Bool() must fail on a text value")
	}
	if _, ok := types.NumberValue(1).Text(); ok {
		t.Error("Text() must fail on a number value")
	}
}

func TestKindDefaults(t *testing.T) {
	cases := map[types.Kind]string{
		types.KindText:      "",
		types.KindSelect:    "",
		types.KindMultiline: "",
		types.KindNumber:    "0",
		types.KindDate:      "",
		types.KindBoolean:   "false",
		types.KindFile:      "[file]",
	}
	for kind, want := range cases {
		if got := kind.Default().Display(); got != want {
			t.Errorf("%s default displays %q, want %q", kind, got, want)
		}
		if kind.Default().Kind() != kind {
			t.Errorf("%s default carries the wrong kind tag", kind)
		}
	}
}

func TestParseValueRoundTrip(t *testing.T) {
	for _, kind := range types.Kinds() {
		var input string
		switch kind {
		case types.KindNumber:
			input = "42.5"
		case types.KindDate:
			input = "2026-03-01"
		case types.KindBoolean:
			input = "true"
		default:
			input = "hello"
		}
		v, err := types.ParseValue(kind, input)
		if err != nil {
			t.Fatalf("ParseValue(%s, %q) failed: %v", kind, input, err)
		}
		if kind == types.KindFile {
			// File carries no scalar; parsing ignores the input.
			continue
		}
		if got := v.Display(); got != input {
			t.Errorf("ParseValue(%s) round trip: %q != %q", kind, got, input)
		}
	}
}

func TestParseValueErrors(t *testing.T) {
	if _, err := types.ParseValue(types.KindNumber, "five"); err == nil {
		t.Error("expected error parsing text as number")
	}
	if _, err := types.ParseValue(types.KindDate, "10/01/2026"); err == nil {
		t.Error("expected error on a non-ISO date")
	}
	if _, err := types.ParseValue(types.KindBoolean, "oui"); err == nil {
		t.Error("expected error on an unknown boolean literal")
	}
	if _, err := types.ParseValue(types.Kind("geometry"), "x"); err == nil {
		t.Error("expected error on an unknown kind")
	}
}

func TestValueJSONRoundTrip(t *testing.T) {
	date := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	values := []types.Value{
		types.TextValue("Widget"),
		types.SelectValue("low"),
		types.MultilineValue("summary"),
		types.NumberValue(2.5),
		types.DateValue(date),
		types.BoolValue(true),
		types.FileValue(),
	}
	for _, v := range values {
		data, err := json.Marshal(v)
		if err != nil {
			t.Fatalf("marshal %s: %v", v.Kind(), err)
		}
		var back types.Value
		if err := json.Unmarshal(data, &back); err != nil {
			t.Fatalf("unmarshal %s: %v", v.Kind(), err)
		}
		if back.Kind() != v.Kind() {
			t.Errorf("kind lost in round trip: %s != %s", back.Kind(), v.Kind())
		}
		if back.Display() != v.Display() {
			t.Errorf("%s payload lost in round trip: %q != %q", v.Kind(), back.Display(), v.Display())
		}
	}
}

func TestDateValueTruncatesTimeOfDay(t *testing.T) {
	morning := types.DateValue(time.Date(2026, 1, 10, 8, 30, 0, 0, time.UTC))
	evening := types.DateValue(time.Date(2026, 1, 10, 22, 0, 0, 0, time.UTC))
	a, _ := morning.Date()
	b, _ := evening.Date()
	if !a.Equal(b) {
		t.Error("same calendar day must compare equal regardless of time of day")
	}
}

func TestKindValidate(t *testing.T) {
	for _, kind := range types.Kinds() {
		if err := kind.Validate(); err != nil {
			t.Errorf("%s should be valid: %v", kind, err)
		}
	}
	if err := types.Kind("geometry").Validate(); err == nil {
		t.Error("expected unknown kind to be rejected")
	}
}
