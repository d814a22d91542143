package webapi

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/hylla/statusboard/internal/app"
	"github.com/hylla/statusboard/internal/domain"
)

// DefaultProcedure is the server action that returns option metadata.
const DefaultProcedure = "RetrieveOptionSetMetadata"

// ProcedureClient reads option metadata through the server action.
type ProcedureClient struct {
	client    *Client
	procedure string
}

// NewProcedureClient constructs a procedure client.
func NewProcedureClient(client *Client) *ProcedureClient {
	procedure := strings.TrimSpace(client.cfg.Procedure)
	if procedure == "" {
		procedure = DefaultProcedure
	}
	return &ProcedureClient{client: client, procedure: procedure}
}

// QueryOptions invokes the action and decodes its OptionSetMetadata output.
// An empty output means the entity has no such field.
func (p *ProcedureClient) QueryOptions(ctx context.Context, entity, field string) (app.OptionSetMetadata, error) {
	entity = strings.ToLower(strings.TrimSpace(entity))
	field = strings.ToLower(strings.TrimSpace(field))
	if entity == "" || field == "" {
		return app.OptionSetMetadata{}, fmt.Errorf("query options: %w", domain.ErrInvalidName)
	}
	status, raw, err := p.client.do(ctx, http.MethodPost, p.procedure, map[string]string{
		"EntityLogicalName":    entity,
		"AttributeLogicalName": field,
	})
	if err != nil {
		return app.OptionSetMetadata{}, err
	}
	if status != http.StatusOK {
		return app.OptionSetMetadata{}, &StatusError{StatusCode: status, Message: errorMessage(raw)}
	}
	if !gjson.ValidBytes(raw) {
		return app.OptionSetMetadata{}, fmt.Errorf("%s: malformed JSON response", p.procedure)
	}
	output := strings.TrimSpace(gjson.GetBytes(raw, "OptionSetMetadata").String())
	if output == "" {
		return app.OptionSetMetadata{}, fmt.Errorf("option metadata %s.%s: %w", entity, field, app.ErrNotFound)
	}
	if !gjson.Valid(output) || !gjson.Parse(output).IsArray() {
		return app.OptionSetMetadata{}, fmt.Errorf("%s: %w: malformed OptionSetMetadata output", p.procedure, domain.ErrMetadataUnavailable)
	}
	return ParseOptionModels(field, output)
}

// ParseOptionModels decodes a [{StatusCode, StateCode, Label, Color}] list.
// Every entry must carry a numeric StatusCode.
func ParseOptionModels(field, output string) (app.OptionSetMetadata, error) {
	set := app.OptionSetMetadata{LogicalName: field}
	for idx, model := range gjson.Parse(output).Array() {
		code := model.Get("StatusCode")
		if code.Type != gjson.Number {
			return app.OptionSetMetadata{}, fmt.Errorf("%w: %s entry %d has no numeric StatusCode", domain.ErrMetadataUnavailable, field, idx)
		}
		opt := app.OptionMetadata{
			Value:     int(code.Int()),
			Color:     model.Get("Color").String(),
			UserLabel: model.Get("Label").String(),
		}
		if state := model.Get("StateCode"); state.Type == gjson.Number {
			opt.State = domain.IntPtr(int(state.Int()))
		}
		set.Options = append(set.Options, opt)
	}
	return set, nil
}
