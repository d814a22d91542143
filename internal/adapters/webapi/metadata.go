package webapi

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/hylla/statusboard/internal/app"
	"github.com/hylla/statusboard/internal/domain"
)

// MetadataClient reads option metadata from the entity definition endpoints.
type MetadataClient struct {
	client *Client
}

// NewMetadataClient constructs a metadata client.
func NewMetadataClient(client *Client) *MetadataClient {
	return &MetadataClient{client: client}
}

// QueryOptions fetches the status-reason or picklist definition of one field.
func (m *MetadataClient) QueryOptions(ctx context.Context, entity, field string) (app.OptionSetMetadata, error) {
	entity = strings.ToLower(strings.TrimSpace(entity))
	field = strings.ToLower(strings.TrimSpace(field))
	if entity == "" || field == "" {
		return app.OptionSetMetadata{}, fmt.Errorf("query options: %w", domain.ErrInvalidName)
	}

	query := url.Values{}
	query.Set("$select", "LogicalName")
	query.Set("$expand", "OptionSet")
	metadataType := "PicklistAttributeMetadata"
	if domain.IsCompositeField(field) {
		metadataType = "StatusAttributeMetadata"
	} else {
		query.Set("$filter", "LogicalName eq "+quoteLiteral(field))
	}
	path := fmt.Sprintf("EntityDefinitions(LogicalName=%s)/Attributes/Microsoft.Dynamics.CRM.%s?%s", quoteLiteral(entity), metadataType, query.Encode())

	raw, err := m.client.getJSON(ctx, path)
	if err != nil {
		return app.OptionSetMetadata{}, err
	}
	attr, ok := pickAttribute(gjson.GetBytes(raw, "value").Array(), field)
	if !ok {
		return app.OptionSetMetadata{}, fmt.Errorf("attribute %s.%s: %w", entity, field, app.ErrNotFound)
	}
	return parseOptionSet(field, attr)
}

// EntitySetName resolves the collection name used in record URLs.
func (m *MetadataClient) EntitySetName(ctx context.Context, entity string) (string, error) {
	entity = strings.ToLower(strings.TrimSpace(entity))
	raw, err := m.client.getJSON(ctx, fmt.Sprintf("EntityDefinitions(LogicalName=%s)?$select=EntitySetName", quoteLiteral(entity)))
	if err != nil {
		return "", err
	}
	name := strings.TrimSpace(gjson.GetBytes(raw, "EntitySetName").String())
	if name == "" {
		return "", fmt.Errorf("entity set for %s: %w", entity, app.ErrNotFound)
	}
	return name, nil
}

// pickAttribute prefers the entry whose LogicalName matches field. The status
// query is unfiltered, so it may list more than one attribute.
func pickAttribute(values []gjson.Result, field string) (gjson.Result, bool) {
	if len(values) == 0 {
		return gjson.Result{}, false
	}
	for _, value := range values {
		if strings.EqualFold(value.Get("LogicalName").String(), field) {
			return value, true
		}
	}
	return values[0], true
}

func parseOptionSet(field string, attr gjson.Result) (app.OptionSetMetadata, error) {
	logicalName := attr.Get("LogicalName").String()
	if logicalName == "" {
		logicalName = field
	}
	optionSet := attr.Get("OptionSet")
	set := app.OptionSetMetadata{
		LogicalName:   logicalName,
		DisplayLabels: parseLabels(optionSet.Get("DisplayName.LocalizedLabels")),
		UserLabel:     optionSet.Get("DisplayName.UserLocalizedLabel.Label").String(),
	}
	for idx, opt := range optionSet.Get("Options").Array() {
		value := opt.Get("Value")
		if value.Type != gjson.Number {
			return app.OptionSetMetadata{}, fmt.Errorf("%w: %s option %d has no numeric Value", domain.ErrMetadataUnavailable, logicalName, idx)
		}
		option := app.OptionMetadata{
			Value:     int(value.Int()),
			Color:     opt.Get("Color").String(),
			Labels:    parseLabels(opt.Get("Label.LocalizedLabels")),
			UserLabel: opt.Get("Label.UserLocalizedLabel.Label").String(),
		}
		if state := opt.Get("State"); state.Exists() && state.Type == gjson.Number {
			option.State = domain.IntPtr(int(state.Int()))
		}
		set.Options = append(set.Options, option)
	}
	return set, nil
}

func parseLabels(labels gjson.Result) []app.LocalizedLabel {
	out := make([]app.LocalizedLabel, 0)
	for _, label := range labels.Array() {
		out = append(out, app.LocalizedLabel{
			Label:        label.Get("Label").String(),
			LanguageCode: int(label.Get("LanguageCode").Int()),
		})
	}
	return out
}
