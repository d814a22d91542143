package domain

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestColumnKeyRoundTrip(t *testing.T) {
	if got := ColumnKey(IntPtr(1), 3); got != "1;3" {
		t.Fatalf("ColumnKey(1, 3) = %q, want 1;3", got)
	}
	if got := ColumnKey(nil, 7); got != "null;7" {
		t.Fatalf("ColumnKey(nil, 7) = %q, want null;7", got)
	}

	state, code, err := ParseColumnKey("1;3")
	if err != nil {
		t.Fatalf("ParseColumnKey() error = %v", err)
	}
	if state == nil || *state != 1 || code != 3 {
		t.Fatalf("unexpected parse result state=%v code=%d", state, code)
	}
	state, code, err = ParseColumnKey("null;7")
	if err != nil {
		t.Fatalf("ParseColumnKey() error = %v", err)
	}
	if state != nil || code != 7 {
		t.Fatalf("unexpected parse result state=%v code=%d", state, code)
	}
	for _, bad := range []string{"", "7", "a;b", "1;x", UnassignedColumnKey} {
		if _, _, err := ParseColumnKey(bad); !errors.Is(err, ErrInvalidColumnKey) {
			t.Fatalf("ParseColumnKey(%q) error = %v, want ErrInvalidColumnKey", bad, err)
		}
	}
}

func TestNewAttributeValidation(t *testing.T) {
	if _, err := NewAttribute("  ", "x", false, nil); !errors.Is(err, ErrInvalidName) {
		t.Fatalf("expected ErrInvalidName, got %v", err)
	}
	if _, err := NewAttribute(StatusCodeField, "Status", true, []Option{{Label: "Open", Code: 1}}); !errors.Is(err, ErrInvalidOption) {
		t.Fatalf("expected ErrInvalidOption for missing state, got %v", err)
	}
	_, err := NewAttribute("prioritycode", "Priority", false, []Option{
		{Label: "High", Code: 1},
		{Label: "Also high", Code: 1},
	})
	if !errors.Is(err, ErrAmbiguousOption) {
		t.Fatalf("expected ErrAmbiguousOption, got %v", err)
	}
}

func TestNewAttributeNormalizesOptions(t *testing.T) {
	attr, err := NewAttribute("prioritycode", "", false, []Option{
		{Label: " High ", Code: 1, StateCode: IntPtr(9)},
		{Label: "Low", Code: 2},
	})
	if err != nil {
		t.Fatalf("NewAttribute() error = %v", err)
	}
	if attr.Label != "prioritycode" {
		t.Fatalf("expected label fallback to logical name, got %q", attr.Label)
	}
	if attr.Options[0].HasState() {
		t.Fatal("expected simple option state to be dropped")
	}
	if attr.Options[0].Label != "High" || attr.Options[0].Key() != "null;1" {
		t.Fatalf("unexpected first option %#v", attr.Options[0])
	}
	if _, ok := attr.Option("null;2"); !ok {
		t.Fatal("expected option lookup by key")
	}
}

func TestCompositeOptionsShareCodeAcrossStates(t *testing.T) {
	attr, err := NewAttribute(StatusCodeField, "Status", true, []Option{
		{Label: "Open", Code: 1, StateCode: IntPtr(0)},
		{Label: "Reopened", Code: 1, StateCode: IntPtr(2)},
	})
	if err != nil {
		t.Fatalf("NewAttribute() error = %v", err)
	}
	if len(attr.Options) != 2 {
		t.Fatalf("expected 2 options, got %d", len(attr.Options))
	}
	if !attr.Composite || attr.Options[1].Key() != "2;1" {
		t.Fatalf("unexpected composite attribute %#v", attr)
	}
}

func TestEmptyAttribute(t *testing.T) {
	attr := EmptyAttribute(StatusCodeField, "")
	if !attr.IsEmpty() || !attr.Composite || attr.Label != StatusCodeField {
		t.Fatalf("unexpected empty attribute %#v", attr)
	}
}

func TestVisibleColumns(t *testing.T) {
	got := VisibleColumns([]ViewColumn{
		{Name: "b", Order: 2},
		{Name: "hidden", Order: -1},
		{Name: "a", Order: 0},
		{Name: "", Order: 1},
		{Name: "c", Order: 2},
	})
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("VisibleColumns() len = %d, want %d", len(got), len(want))
	}
	for idx, name := range want {
		if got[idx].Name != name {
			t.Fatalf("VisibleColumns()[%d] = %q, want %q", idx, got[idx].Name, name)
		}
	}
	if !(ViewColumn{DataType: "optionset"}).IsOptionSet() {
		t.Fatal("expected case-insensitive option-set match")
	}
}

func TestRecordReference(t *testing.T) {
	rec := Record{ID: "r1"}
	if ref := rec.Reference("opportunity"); ref.EntityType != "opportunity" || ref.ID != "r1" {
		t.Fatalf("unexpected reference %#v", ref)
	}
	rec.EntityType = "lead"
	if ref := rec.Reference("opportunity"); ref.EntityType != "lead" {
		t.Fatalf("expected record entity type to win, got %#v", ref)
	}
	if rec.Value("x") != nil || rec.FormattedValue("x") != "" {
		t.Fatal("expected nil maps to read as empty")
	}
}

type wrappedCode int

func (w wrappedCode) NumericValue() (int64, bool) { return int64(w), true }

func TestNumericValue(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want int64
		ok   bool
	}{
		{name: "int", in: 3, want: 3, ok: true},
		{name: "int32", in: int32(3), want: 3, ok: true},
		{name: "float", in: 3.0, want: 3, ok: true},
		{name: "fraction", in: 3.5, ok: false},
		{name: "json number", in: json.Number("4"), want: 4, ok: true},
		{name: "string", in: " 5 ", want: 5, ok: true},
		{name: "float string", in: "6.0", want: 6, ok: true},
		{name: "garbage", in: "open", ok: false},
		{name: "nil", in: nil, ok: false},
		{name: "nil pointer", in: (*int)(nil), ok: false},
		{name: "pointer", in: IntPtr(8), want: 8, ok: true},
		{name: "wrapper map", in: map[string]any{"Value": 9}, want: 9, ok: true},
		{name: "valuer", in: wrappedCode(10), want: 10, ok: true},
		{name: "bool", in: true, ok: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := NumericValue(tc.in)
			if ok != tc.ok || (ok && got != tc.want) {
				t.Fatalf("NumericValue(%#v) = (%d, %t), want (%d, %t)", tc.in, got, ok, tc.want, tc.ok)
			}
		})
	}
}

func TestUpdateErrorUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := error(&UpdateError{Message: "Record is read-only", Err: cause})
	if err.Error() != "Record is read-only" {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if !errors.Is(err, ErrUpdateRejected) || !errors.Is(err, cause) {
		t.Fatalf("expected both sentinel and cause, got %v", err)
	}
	bare := &UpdateError{}
	if bare.Error() != ErrUpdateRejected.Error() {
		t.Fatalf("unexpected bare message %q", bare.Error())
	}
}
