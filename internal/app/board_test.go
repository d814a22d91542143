package app

import (
	"context"
	"reflect"
	"testing"

	"github.com/hylla/statusboard/internal/domain"
)

func loadTestAttribute(t *testing.T, field string) domain.Attribute {
	t.Helper()
	meta := newFakeMetadata()
	meta.sets["statuscode"] = statusMetadata()
	meta.sets["prioritycode"] = priorityMetadata()
	attr, err := NewMetadataLoader(meta, MetadataLoaderConfig{}).LoadAttribute(context.Background(), "opportunity", field)
	if err != nil {
		t.Fatalf("LoadAttribute() error = %v", err)
	}
	return attr
}

func TestBoardRendererCompositePlacement(t *testing.T) {
	attr := loadTestAttribute(t, "statuscode")
	snap := opportunitySnapshot()
	layout := BoardRenderer{EntityType: "opportunity"}.Render(attr, snap.Columns, snap.Records)

	if len(layout.Columns) != 4 {
		t.Fatalf("expected 3 option columns plus unassigned, got %d", len(layout.Columns))
	}
	if key, _ := layout.ColumnOf("r1"); key != "0;1" {
		t.Fatalf("r1 placed in %q, want 0;1", key)
	}
	if key, _ := layout.ColumnOf("r2"); key != "1;3" {
		t.Fatalf("r2 placed in %q, want 1;3", key)
	}
	if key, _ := layout.ColumnOf("r3"); key != domain.UnassignedColumnKey {
		t.Fatalf("r3 placed in %q, want unassigned", key)
	}
	unassigned := layout.Columns[len(layout.Columns)-1]
	if !unassigned.Unassigned || unassigned.Collapsed {
		t.Fatalf("unexpected unassigned column %#v", unassigned)
	}
	card, _ := layout.Card("r1")
	if card.EntityType != "opportunity" {
		t.Fatalf("expected default entity type, got %q", card.EntityType)
	}
	wantFields := []domain.CardField{
		{Column: "name", Label: "Topic", Text: "Deal A"},
		{Column: "prioritycode", Label: "Priority", Text: "High"},
		{Column: "estimatedvalue", Label: "Est. Revenue", Text: "$10.00"},
	}
	if !reflect.DeepEqual(card.Fields, wantFields) {
		t.Fatalf("card fields = %#v, want %#v", card.Fields, wantFields)
	}
}

func TestBoardRendererCompositeWithoutStateMatchesCode(t *testing.T) {
	attr := loadTestAttribute(t, "statuscode")
	records := []domain.Record{{ID: "r1", Values: map[string]any{"statuscode": int64(3)}}}
	layout := BoardRenderer{}.Render(attr, nil, records)
	if key, _ := layout.ColumnOf("r1"); key != "1;3" {
		t.Fatalf("r1 placed in %q, want 1;3", key)
	}
}

func TestBoardRendererCompositeStateMismatchIsUnassigned(t *testing.T) {
	attr := loadTestAttribute(t, "statuscode")
	records := []domain.Record{{ID: "r1", Values: map[string]any{"statuscode": 3, "statecode": 0}}}
	layout := BoardRenderer{}.Render(attr, nil, records)
	if key, _ := layout.ColumnOf("r1"); key != domain.UnassignedColumnKey {
		t.Fatalf("r1 placed in %q, want unassigned", key)
	}
}

func TestBoardRendererSimpleOptionSet(t *testing.T) {
	attr := loadTestAttribute(t, "prioritycode")
	snap := opportunitySnapshot()
	layout := BoardRenderer{EntityType: "opportunity"}.Render(attr, snap.Columns, snap.Records)

	if key, _ := layout.ColumnOf("r2"); key != "null;2" {
		t.Fatalf("r2 placed in %q, want null;2", key)
	}
	if key, _ := layout.ColumnOf("r3"); key != domain.UnassignedColumnKey {
		t.Fatalf("r3 placed in %q, want unassigned", key)
	}
	card, _ := layout.Card("r1")
	for _, field := range card.Fields {
		if field.Column == "prioritycode" {
			t.Fatal("expected the grouping column to be left off cards")
		}
	}
}

func TestBoardRendererCollapsesEmptyUnassigned(t *testing.T) {
	attr := loadTestAttribute(t, "prioritycode")
	records := []domain.Record{{ID: "r1", Values: map[string]any{"prioritycode": "1"}}}
	layout := BoardRenderer{}.Render(attr, nil, records)
	unassigned, _, _ := layout.Column(domain.UnassignedColumnKey)
	if !unassigned.Collapsed || len(unassigned.Cards) != 0 {
		t.Fatalf("expected collapsed unassigned column, got %#v", unassigned)
	}
	if unassigned.DropTarget() {
		t.Fatal("unassigned column must not be a drop target")
	}
}

func TestBoardRendererIsIdempotent(t *testing.T) {
	attr := loadTestAttribute(t, "statuscode")
	snap := opportunitySnapshot()
	renderer := BoardRenderer{EntityType: "opportunity"}
	first := renderer.Render(attr, snap.Columns, snap.Records)
	second := renderer.Render(attr, snap.Columns, snap.Records)
	if !reflect.DeepEqual(first, second) {
		t.Fatal("expected identical layouts for identical inputs")
	}
}

func TestBoardRendererEmptyAttribute(t *testing.T) {
	snap := opportunitySnapshot()
	layout := BoardRenderer{}.Render(domain.EmptyAttribute("statuscode", ""), snap.Columns, snap.Records)
	if len(layout.Columns) != 1 || len(layout.Columns[0].Cards) != 3 {
		t.Fatalf("expected every record unassigned, got %#v", layout.Columns)
	}
}
