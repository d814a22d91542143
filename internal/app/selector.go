package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/hylla/statusboard/internal/domain"
)

// AttributeSelector lists the option-typed view columns a board can group by.
type AttributeSelector struct {
	loader   *MetadataLoader
	provider DataProvider
	logger   Logger
}

// NewAttributeSelector constructs a selector.
func NewAttributeSelector(loader *MetadataLoader, provider DataProvider, logger Logger) *AttributeSelector {
	return &AttributeSelector{loader: loader, provider: provider, logger: loggerOrNop(logger)}
}

// ListSelectable loads one attribute per option-set column in view order.
// Unavailable attributes surface as empty attributes.
func (s *AttributeSelector) ListSelectable(ctx context.Context, entity string, columns []domain.ViewColumn) []domain.Attribute {
	out := make([]domain.Attribute, 0, len(columns))
	seen := map[string]struct{}{}
	for _, column := range domain.VisibleColumns(columns) {
		if !column.IsOptionSet() {
			continue
		}
		name := strings.ToLower(column.Name)
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		attr, err := s.loader.LoadAttribute(ctx, entity, column.Name)
		if err != nil {
			s.logger.Warn("attribute metadata unavailable", "entity", entity, "field", column.Name, "err", err)
			attr = domain.EmptyAttribute(column.Name, column.DisplayName)
		}
		out = append(out, attr)
	}
	return out
}

// Select validates a choice and asks the provider for fresh records.
func (s *AttributeSelector) Select(ctx context.Context, attrs []domain.Attribute, logicalName string) (domain.Attribute, error) {
	attr, ok := findAttribute(attrs, logicalName)
	if !ok {
		return domain.Attribute{}, fmt.Errorf("select %q: %w", logicalName, ErrNotSelectable)
	}
	if err := s.provider.Refresh(ctx); err != nil {
		return domain.Attribute{}, fmt.Errorf("refresh after selecting %q: %w", logicalName, err)
	}
	return attr, nil
}

func findAttribute(attrs []domain.Attribute, logicalName string) (domain.Attribute, bool) {
	logicalName = strings.TrimSpace(logicalName)
	for _, attr := range attrs {
		if strings.EqualFold(attr.LogicalName, logicalName) {
			return attr, true
		}
	}
	return domain.Attribute{}, false
}
