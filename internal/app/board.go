package app

import (
	"strings"

	"github.com/hylla/statusboard/internal/domain"
)

// UnassignedColumnLabel is the header of the catch-all column.
const UnassignedColumnLabel = "Unassigned"

// BoardRenderer maps records onto the columns of one attribute.
type BoardRenderer struct {
	EntityType string
}

// Render builds the column layout. It is pure: equal inputs give equal layouts.
func (r BoardRenderer) Render(attr domain.Attribute, columns []domain.ViewColumn, records []domain.Record) domain.ColumnLayout {
	layout := domain.ColumnLayout{
		Attribute: attr.LogicalName,
		Composite: attr.Composite,
		Columns:   make([]domain.BoardColumn, 0, len(attr.Options)+1),
	}
	index := make(map[string]int, len(attr.Options))
	byCode := make(map[int64]int, len(attr.Options))
	for _, opt := range attr.Options {
		opt := opt
		key := opt.Key()
		index[key] = len(layout.Columns)
		if _, taken := byCode[int64(opt.Code)]; !taken {
			byCode[int64(opt.Code)] = len(layout.Columns)
		}
		layout.Columns = append(layout.Columns, domain.BoardColumn{
			Key:    key,
			Label:  opt.Label,
			Color:  opt.Color,
			Option: &opt,
			Cards:  []domain.Card{},
		})
	}
	unassigned := len(layout.Columns)
	layout.Columns = append(layout.Columns, domain.BoardColumn{
		Key:        domain.UnassignedColumnKey,
		Label:      UnassignedColumnLabel,
		Unassigned: true,
		Cards:      []domain.Card{},
	})

	fields := cardColumns(columns, attr.LogicalName)
	for _, rec := range records {
		target := unassigned
		if idx, ok := placeRecord(attr, rec, index, byCode); ok {
			target = idx
		}
		ref := rec.Reference(r.EntityType)
		layout.Columns[target].Cards = append(layout.Columns[target].Cards, domain.Card{
			RecordID:   ref.ID,
			EntityType: ref.EntityType,
			ColumnKey:  layout.Columns[target].Key,
			Fields:     cardFields(rec, fields),
		})
	}
	layout.Columns[unassigned].Collapsed = len(layout.Columns[unassigned].Cards) == 0
	return layout
}

func placeRecord(attr domain.Attribute, rec domain.Record, index map[string]int, byCode map[int64]int) (int, bool) {
	if attr.IsEmpty() {
		return 0, false
	}
	code, ok := domain.NumericValue(rec.Value(attr.LogicalName))
	if !ok {
		return 0, false
	}
	if !attr.Composite {
		idx, ok := index[domain.ColumnKey(nil, int(code))]
		return idx, ok
	}
	state, ok := domain.NumericValue(rec.Value(domain.StateCodeField))
	if !ok {
		idx, ok := byCode[code]
		return idx, ok
	}
	idx, ok := index[domain.ColumnKey(domain.IntPtr(int(state)), int(code))]
	return idx, ok
}

func cardColumns(columns []domain.ViewColumn, selected string) []domain.ViewColumn {
	visible := domain.VisibleColumns(columns)
	out := visible[:0]
	for _, column := range visible {
		if strings.EqualFold(column.Name, selected) {
			continue
		}
		out = append(out, column)
	}
	return out
}

func cardFields(rec domain.Record, columns []domain.ViewColumn) []domain.CardField {
	fields := make([]domain.CardField, 0, len(columns))
	for _, column := range columns {
		text := strings.TrimSpace(rec.FormattedValue(column.Name))
		if text == "" {
			continue
		}
		label := column.DisplayName
		if label == "" {
			label = column.Name
		}
		fields = append(fields, domain.CardField{Column: column.Name, Label: label, Text: text})
	}
	return fields
}
