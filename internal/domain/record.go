package domain

import (
	"slices"
	"strings"
)

// DataTypeOptionSet identifies option-typed view columns.
const DataTypeOptionSet = "OptionSet"

// EntityReference addresses one record.
type EntityReference struct {
	EntityType string `json:"entity_type"`
	ID         string `json:"id"`
}

// ViewColumn describes one column of the bound view. Columns with a negative
// order are hidden.
type ViewColumn struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	DataType    string `json:"data_type"`
	Order       int    `json:"order"`
}

// IsOptionSet reports whether the column is option-typed.
func (c ViewColumn) IsOptionSet() bool {
	return strings.EqualFold(c.DataType, DataTypeOptionSet)
}

// Record is one row of the bound view with raw and formatted values.
type Record struct {
	ID         string
	EntityType string
	Values     map[string]any
	Formatted  map[string]string
}

// Value returns the raw value for one column.
func (r Record) Value(column string) any {
	if r.Values == nil {
		return nil
	}
	return r.Values[column]
}

// FormattedValue returns the provider-formatted value for one column.
func (r Record) FormattedValue(column string) string {
	if r.Formatted == nil {
		return ""
	}
	return r.Formatted[column]
}

// Reference returns the record reference, defaulting the entity type.
func (r Record) Reference(defaultEntityType string) EntityReference {
	entityType := strings.TrimSpace(r.EntityType)
	if entityType == "" {
		entityType = defaultEntityType
	}
	return EntityReference{EntityType: entityType, ID: r.ID}
}

// VisibleColumns drops hidden columns and sorts the rest by order.
func VisibleColumns(columns []ViewColumn) []ViewColumn {
	out := make([]ViewColumn, 0, len(columns))
	for _, column := range columns {
		if column.Order < 0 || strings.TrimSpace(column.Name) == "" {
			continue
		}
		out = append(out, column)
	}
	slices.SortStableFunc(out, func(a, b ViewColumn) int {
		return a.Order - b.Order
	})
	return out
}

// Paging describes the provider's current page.
type Paging struct {
	Page             int  `json:"page"`
	PageSize         int  `json:"page_size"`
	TotalResultCount int  `json:"total_result_count"`
	HasNextPage      bool `json:"has_next_page"`
	HasPreviousPage  bool `json:"has_previous_page"`
}
