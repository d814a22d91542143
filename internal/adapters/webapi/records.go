package webapi

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/hylla/statusboard/internal/domain"
)

// EntitySetResolver resolves an entity's collection name.
type EntitySetResolver interface {
	EntitySetName(ctx context.Context, entity string) (string, error)
}

// RecordClient writes record fields with PATCH requests.
type RecordClient struct {
	client   *Client
	resolver EntitySetResolver

	mu   sync.Mutex
	sets map[string]string
}

// NewRecordClient constructs a record client. A nil resolver always pluralizes.
func NewRecordClient(client *Client, resolver EntitySetResolver) *RecordClient {
	return &RecordClient{client: client, resolver: resolver, sets: map[string]string{}}
}

// UpdateRecord patches one record. Only 204 No Content counts as success.
func (r *RecordClient) UpdateRecord(ctx context.Context, ref domain.EntityReference, fields map[string]any) error {
	id := strings.Trim(strings.TrimSpace(ref.ID), "{}")
	if id == "" {
		return &domain.UpdateError{Message: "record id is required"}
	}
	entitySet := r.entitySet(ctx, ref.EntityType)
	status, raw, err := r.client.do(ctx, http.MethodPatch, fmt.Sprintf("%s(%s)", entitySet, id), fields)
	if err != nil {
		return &domain.UpdateError{Message: err.Error(), Err: err}
	}
	if status == http.StatusNoContent {
		return nil
	}
	statusErr := &StatusError{StatusCode: status, Message: errorMessage(raw)}
	message := statusErr.Message
	if message == "" {
		message = fmt.Sprintf("update failed with status %d", status)
	}
	return &domain.UpdateError{Message: message, Err: statusErr}
}

// entitySet resolves once per entity, falling back to pluralization when the
// lookup fails.
func (r *RecordClient) entitySet(ctx context.Context, entity string) string {
	entity = strings.ToLower(strings.TrimSpace(entity))
	r.mu.Lock()
	if name, ok := r.sets[entity]; ok {
		r.mu.Unlock()
		return name
	}
	r.mu.Unlock()

	name := ""
	if r.resolver != nil {
		if resolved, err := r.resolver.EntitySetName(ctx, entity); err == nil {
			name = resolved
		}
	}
	if name == "" {
		name = Pluralize(entity)
	}
	r.mu.Lock()
	r.sets[entity] = name
	r.mu.Unlock()
	return name
}

// Pluralize derives a fallback entity set name.
func Pluralize(entity string) string {
	if entity == "opportunity" {
		return "opportunities"
	}
	return entity + "s"
}
