package domain

import "testing"

func sampleLayout() ColumnLayout {
	open := Option{Label: "Open", Code: 1, StateCode: IntPtr(0)}
	won := Option{Label: "Won", Code: 3, StateCode: IntPtr(1)}
	return ColumnLayout{
		Attribute: StatusCodeField,
		Composite: true,
		Columns: []BoardColumn{
			{Key: UnassignedColumnKey, Label: "Unassigned", Unassigned: true, Cards: []Card{{RecordID: "r3", ColumnKey: UnassignedColumnKey}}},
			{Key: open.Key(), Label: open.Label, Option: &open, Cards: []Card{
				{RecordID: "r1", ColumnKey: open.Key(), Fields: []CardField{{Column: "name", Text: "Deal"}}},
			}},
			{Key: won.Key(), Label: won.Label, Option: &won, Cards: []Card{{RecordID: "r2", ColumnKey: won.Key()}}},
		},
	}
}

func TestColumnLayoutLookup(t *testing.T) {
	layout := sampleLayout()
	if layout.TotalCards() != 3 {
		t.Fatalf("TotalCards() = %d, want 3", layout.TotalCards())
	}
	if key, ok := layout.ColumnOf("r2"); !ok || key != "1;3" {
		t.Fatalf("ColumnOf(r2) = %q, %t", key, ok)
	}
	card, ok := layout.Card("r1")
	if !ok || card.Title() != "Deal" {
		t.Fatalf("Card(r1) = %#v, %t", card, ok)
	}
	if got := (Card{RecordID: "r9"}).Title(); got != "r9" {
		t.Fatalf("Title() fallback = %q", got)
	}
	col, idx, ok := layout.Column(UnassignedColumnKey)
	if !ok || idx != 0 || col.DropTarget() {
		t.Fatalf("unexpected unassigned column %#v idx=%d", col, idx)
	}
	if _, _, ok := layout.Column("9;9"); ok {
		t.Fatal("expected unknown column lookup to fail")
	}
}

func TestColumnLayoutMoveCollapsesUnassigned(t *testing.T) {
	layout := sampleLayout()
	if !layout.Move("r3", "0;1") {
		t.Fatal("expected move to succeed")
	}
	col, _, _ := layout.Column(UnassignedColumnKey)
	if len(col.Cards) != 0 || !col.Collapsed {
		t.Fatalf("expected empty collapsed unassigned column, got %#v", col)
	}
	open, _, _ := layout.Column("0;1")
	if len(open.Cards) != 2 || open.Cards[1].RecordID != "r3" || open.Cards[1].ColumnKey != "0;1" {
		t.Fatalf("unexpected open column %#v", open)
	}
	if layout.Move("missing", "0;1") {
		t.Fatal("expected unknown record move to fail")
	}
	if layout.Move("r1", "bogus") {
		t.Fatal("expected unknown column move to fail")
	}
}

func TestColumnLayoutCloneIsIndependent(t *testing.T) {
	layout := sampleLayout()
	clone := layout.Clone()
	clone.Move("r1", "1;3")
	if key, _ := layout.ColumnOf("r1"); key != "0;1" {
		t.Fatalf("expected original layout untouched, r1 in %q", key)
	}
	*clone.Columns[1].Option.StateCode = 5
	if *layout.Columns[1].Option.StateCode != 0 {
		t.Fatal("expected option state to be deep-copied")
	}
}
