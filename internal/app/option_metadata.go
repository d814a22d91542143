package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/hylla/statusboard/internal/domain"
)

// OptionSetMetadataModel is one option in the server action's output list.
type OptionSetMetadataModel struct {
	StatusCode int    `json:"StatusCode"`
	StateCode  *int   `json:"StateCode"`
	Label      string `json:"Label"`
	Color      string `json:"Color"`
}

// OptionMetadataService answers option metadata requests for any entity field.
type OptionMetadataService struct {
	loader *MetadataLoader
}

// NewOptionMetadataService constructs the service over one loader.
func NewOptionMetadataService(loader *MetadataLoader) *OptionMetadataService {
	return &OptionMetadataService{loader: loader}
}

// RetrieveOptionSetMetadata returns the ordered options of one field.
func (s *OptionMetadataService) RetrieveOptionSetMetadata(ctx context.Context, entity, field string) ([]OptionSetMetadataModel, error) {
	entity = strings.TrimSpace(entity)
	field = strings.TrimSpace(field)
	if entity == "" || field == "" {
		return nil, fmt.Errorf("entity and field are required: %w", ErrInvalidRequest)
	}
	attr, err := s.loader.LoadAttribute(ctx, entity, field)
	if err != nil {
		return nil, err
	}
	return OptionModels(attr), nil
}

// OptionModels converts an attribute into the action's output list.
func OptionModels(attr domain.Attribute) []OptionSetMetadataModel {
	out := make([]OptionSetMetadataModel, 0, len(attr.Options))
	for _, opt := range attr.Options {
		model := OptionSetMetadataModel{StatusCode: opt.Code, Label: opt.Label, Color: opt.Color}
		if opt.StateCode != nil {
			model.StateCode = domain.IntPtr(*opt.StateCode)
		}
		out = append(out, model)
	}
	return out
}
