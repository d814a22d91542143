package webapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/tidwall/gjson"

	"github.com/hylla/statusboard/internal/app"
	"github.com/hylla/statusboard/internal/domain"
)

const formattedValueSuffix = "@OData.Community.Display.V1.FormattedValue"

// RecordSetConfig describes the columns read from one entity collection.
type RecordSetConfig struct {
	EntityType string
	Columns    []domain.ViewColumn
}

// RecordSet exposes one entity collection as an app.DataProvider.
type RecordSet struct {
	client   *Client
	resolver *RecordClient
	entity   string
	columns  []domain.ViewColumn
	viewID   string

	mu       sync.Mutex
	pageSize int
	pages    []string
	next     string
	total    int
}

// NewRecordSet constructs a record set. The statecode column is always read so
// status-reason placement can match on the state.
func NewRecordSet(client *Client, records *RecordClient, cfg RecordSetConfig) (*RecordSet, error) {
	entity := strings.ToLower(strings.TrimSpace(cfg.EntityType))
	if entity == "" {
		return nil, fmt.Errorf("record set: %w", domain.ErrInvalidName)
	}
	columns := append([]domain.ViewColumn(nil), cfg.Columns...)
	names := make([]string, 0, len(columns))
	hasState := false
	for _, column := range columns {
		names = append(names, column.Name)
		if strings.EqualFold(column.Name, domain.StateCodeField) {
			hasState = true
		}
	}
	if !hasState {
		columns = append(columns, domain.ViewColumn{Name: domain.StateCodeField, DataType: "State", Order: -1})
	}
	return &RecordSet{
		client:   client,
		resolver: records,
		entity:   entity,
		columns:  columns,
		viewID:   entity + ":" + strings.Join(names, ","),
		pageSize: app.MaxPageSize,
		pages:    []string{""},
		total:    -1,
	}, nil
}

// TargetEntityType returns the bound entity type.
func (s *RecordSet) TargetEntityType() string {
	return s.entity
}

// SetPageSize sets the page size and rewinds to the first page.
func (s *RecordSet) SetPageSize(size int) {
	s.mu.Lock()
	s.pageSize = app.ClampPageSize(size)
	s.pages = []string{""}
	s.next = ""
	s.mu.Unlock()
}

// Snapshot fetches the current page.
func (s *RecordSet) Snapshot(ctx context.Context) (app.DataSnapshot, error) {
	s.mu.Lock()
	pageLink := s.pages[len(s.pages)-1]
	page := len(s.pages)
	pageSize := s.pageSize
	s.mu.Unlock()

	path := pageLink
	if path == "" {
		entitySet := s.resolver.entitySet(ctx, s.entity)
		query := url.Values{}
		query.Set("$select", strings.Join(s.selectColumns(), ","))
		query.Set("$count", "true")
		path = entitySet + "?" + query.Encode()
	}
	raw, err := s.fetch(ctx, path, pageSize)
	if err != nil {
		return app.DataSnapshot{}, err
	}

	records := make([]domain.Record, 0)
	idField := s.entity + "id"
	for _, item := range gjson.GetBytes(raw, "value").Array() {
		rec := domain.Record{
			ID:         item.Get(idField).String(),
			EntityType: s.entity,
			Values:     map[string]any{},
			Formatted:  map[string]string{},
		}
		for _, column := range s.columns {
			value := item.Get(gjsonEscape(column.Name))
			if !value.Exists() || value.Type == gjson.Null {
				continue
			}
			rec.Values[column.Name] = value.Value()
			if formatted := item.Get(gjsonEscape(column.Name + formattedValueSuffix)); formatted.Exists() {
				rec.Formatted[column.Name] = formatted.String()
			} else {
				rec.Formatted[column.Name] = value.String()
			}
		}
		records = append(records, rec)
	}

	next := gjson.GetBytes(raw, gjsonEscape("@odata.nextLink")).String()
	total := -1
	if count := gjson.GetBytes(raw, gjsonEscape("@odata.count")); count.Exists() {
		total = int(count.Int())
	}
	s.mu.Lock()
	s.next = strings.TrimPrefix(next, s.client.apiURL)
	if total >= 0 || page == 1 {
		s.total = total
	}
	total = s.total
	s.mu.Unlock()

	return app.DataSnapshot{
		ViewID:  s.viewID,
		Columns: s.columns,
		Records: records,
		Paging: domain.Paging{
			Page:             page,
			PageSize:         pageSize,
			TotalResultCount: total,
			HasNextPage:      next != "",
			HasPreviousPage:  page > 1,
		},
	}, nil
}

// OpenRecord returns the record's form URL.
func (s *RecordSet) OpenRecord(_ context.Context, ref domain.EntityReference) (string, error) {
	base := strings.TrimSuffix(s.client.apiURL, "/")
	if idx := strings.Index(base, "/api/data/"); idx >= 0 {
		base = base[:idx]
	}
	query := url.Values{}
	query.Set("pagetype", "entityrecord")
	query.Set("etn", ref.EntityType)
	query.Set("id", ref.ID)
	return base + "/main.aspx?" + query.Encode(), nil
}

// Refresh rewinds nothing: the next snapshot re-reads the current page.
func (s *RecordSet) Refresh(ctx context.Context) error {
	return ctx.Err()
}

// NextPage follows the last response's next link.
func (s *RecordSet) NextPage(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.next != "" {
		s.pages = append(s.pages, s.next)
		s.next = ""
	}
	return ctx.Err()
}

// PreviousPage returns to the prior page link.
func (s *RecordSet) PreviousPage(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.pages) > 1 {
		s.pages = s.pages[:len(s.pages)-1]
		s.next = ""
	}
	return ctx.Err()
}

func (s *RecordSet) selectColumns() []string {
	out := []string{s.entity + "id"}
	for _, column := range s.columns {
		out = append(out, column.Name)
	}
	return out
}

func (s *RecordSet) fetch(ctx context.Context, path string, pageSize int) ([]byte, error) {
	prefer := fmt.Sprintf(`odata.include-annotations="OData.Community.Display.V1.FormattedValue",odata.maxpagesize=%d`, pageSize)
	status, raw, err := s.client.doWithHeaders(ctx, http.MethodGet, path, nil, map[string]string{"Prefer": prefer})
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, &StatusError{StatusCode: status, Message: errorMessage(raw)}
	}
	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("GET %s: malformed JSON response", s.entity)
	}
	return raw, nil
}

// gjsonEscape escapes path characters that appear in OData annotation keys.
func gjsonEscape(key string) string {
	replacer := strings.NewReplacer(".", `\.`, "@", `\@`, "*", `\*`, "?", `\?`)
	return replacer.Replace(key)
}
