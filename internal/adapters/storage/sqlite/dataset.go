package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/hylla/statusboard/internal/app"
	"github.com/hylla/statusboard/internal/domain"
)

// DataSetOptions holds configuration for a stored view data set.
type DataSetOptions struct {
	LanguageID         int
	FallbackLanguageID int
}

// DataSet exposes one stored view as an app.DataProvider.
type DataSet struct {
	repo   *Repository
	viewID string
	entity string
	opts   DataSetOptions

	mu       sync.Mutex
	page     int
	pageSize int
	total    int
}

// NewDataSet binds a data set to one stored view.
func NewDataSet(ctx context.Context, repo *Repository, viewID string, opts DataSetOptions) (*DataSet, error) {
	view, err := repo.GetView(ctx, viewID)
	if err != nil {
		return nil, fmt.Errorf("view %q: %w", viewID, err)
	}
	if opts.FallbackLanguageID <= 0 {
		opts.FallbackLanguageID = app.DefaultFallbackLanguageID
	}
	if opts.LanguageID <= 0 {
		opts.LanguageID = opts.FallbackLanguageID
	}
	return &DataSet{
		repo:     repo,
		viewID:   view.ID,
		entity:   view.EntityType,
		opts:     opts,
		page:     1,
		pageSize: app.MaxPageSize,
	}, nil
}

// TargetEntityType returns the view's entity type.
func (d *DataSet) TargetEntityType() string {
	return d.entity
}

// SetPageSize sets the page size, capped at app.MaxPageSize.
func (d *DataSet) SetPageSize(size int) {
	d.mu.Lock()
	d.pageSize = app.ClampPageSize(size)
	d.page = 1
	d.mu.Unlock()
}

// Snapshot reads the current page with formatted values.
func (d *DataSet) Snapshot(ctx context.Context) (app.DataSnapshot, error) {
	view, err := d.repo.GetView(ctx, d.viewID)
	if err != nil {
		return app.DataSnapshot{}, fmt.Errorf("view %q: %w", d.viewID, err)
	}
	d.mu.Lock()
	page, pageSize := d.page, d.pageSize
	d.mu.Unlock()

	records, total, err := d.repo.ListRecords(ctx, view.EntityType, pageSize, (page-1)*pageSize)
	if err != nil {
		return app.DataSnapshot{}, err
	}
	formatters := d.optionFormatters(ctx, view)
	for idx := range records {
		records[idx].Formatted = formatValues(view.Columns, records[idx].Values, formatters)
	}

	d.mu.Lock()
	d.total = total
	d.mu.Unlock()
	return app.DataSnapshot{
		ViewID:  view.ID,
		Columns: view.Columns,
		Records: records,
		Paging: domain.Paging{
			Page:             page,
			PageSize:         pageSize,
			TotalResultCount: total,
			HasNextPage:      page*pageSize < total,
			HasPreviousPage:  page > 1,
		},
	}, nil
}

// OpenRecord returns the record location once the record is known to exist.
func (d *DataSet) OpenRecord(ctx context.Context, ref domain.EntityReference) (string, error) {
	if _, err := d.repo.GetRecord(ctx, ref); err != nil {
		return "", err
	}
	return fmt.Sprintf("statusboard://%s/%s", ref.EntityType, ref.ID), nil
}

// Refresh is a no-op: every snapshot reads the database.
func (d *DataSet) Refresh(ctx context.Context) error {
	return ctx.Err()
}

// NextPage advances one page when more records exist.
func (d *DataSet) NextPage(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.page*d.pageSize >= d.total {
		return nil
	}
	d.page++
	return ctx.Err()
}

// PreviousPage moves back one page.
func (d *DataSet) PreviousPage(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.page > 1 {
		d.page--
	}
	return ctx.Err()
}

// optionFormatters maps option codes to labels for each option-set column.
func (d *DataSet) optionFormatters(ctx context.Context, view View) map[string]map[string]string {
	out := map[string]map[string]string{}
	for _, column := range view.Columns {
		if !column.IsOptionSet() {
			continue
		}
		set, err := d.repo.QueryOptions(ctx, view.EntityType, column.Name)
		if err != nil {
			continue
		}
		labels := make(map[string]string, len(set.Options))
		for _, opt := range set.Options {
			labels[strconv.Itoa(opt.Value)] = d.optionLabel(opt)
		}
		out[strings.ToLower(column.Name)] = labels
	}
	return out
}

func (d *DataSet) optionLabel(opt app.OptionMetadata) string {
	for _, languageID := range []int{d.opts.LanguageID, d.opts.FallbackLanguageID} {
		for _, label := range opt.Labels {
			if label.LanguageCode == languageID {
				return label.Label
			}
		}
	}
	if opt.UserLabel != "" {
		return opt.UserLabel
	}
	return strconv.Itoa(opt.Value)
}

func formatValues(columns []domain.ViewColumn, values map[string]any, formatters map[string]map[string]string) map[string]string {
	out := make(map[string]string, len(columns))
	for _, column := range columns {
		raw, ok := values[strings.ToLower(column.Name)]
		if !ok || raw == nil {
			continue
		}
		if labels, isOption := formatters[strings.ToLower(column.Name)]; isOption {
			if code, ok := domain.NumericValue(raw); ok {
				if label, ok := labels[strconv.FormatInt(code, 10)]; ok {
					out[column.Name] = label
				}
			}
			continue
		}
		out[column.Name] = formatScalar(raw)
	}
	return out
}

func formatScalar(v any) string {
	switch value := v.(type) {
	case string:
		return value
	case json.Number:
		return value.String()
	case bool:
		if value {
			return "Yes"
		}
		return "No"
	default:
		return fmt.Sprint(value)
	}
}
