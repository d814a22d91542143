package app

import (
	"context"

	"github.com/hylla/statusboard/internal/domain"
)

// MaxPageSize caps the number of records requested per page.
const MaxPageSize = 250

// DataSnapshot is one consistent read of the bound view.
type DataSnapshot struct {
	ViewID  string
	Columns []domain.ViewColumn
	Records []domain.Record
	Paging  domain.Paging
	Loading bool
}

// DataProvider supplies the bound view's columns and records.
type DataProvider interface {
	TargetEntityType() string
	SetPageSize(int)
	Snapshot(context.Context) (DataSnapshot, error)
	OpenRecord(context.Context, domain.EntityReference) (string, error)
	Refresh(context.Context) error
	NextPage(context.Context) error
	PreviousPage(context.Context) error
}

// LocalizedLabel is one translation of a display label.
type LocalizedLabel struct {
	Label        string `json:"label"`
	LanguageCode int    `json:"language_code"`
}

// OptionMetadata is one raw option as returned by a metadata provider.
type OptionMetadata struct {
	Value     int
	State     *int
	Color     string
	Labels    []LocalizedLabel
	UserLabel string
}

// OptionSetMetadata is the raw schema payload for one option-typed field.
type OptionSetMetadata struct {
	LogicalName   string
	DisplayLabels []LocalizedLabel
	UserLabel     string
	Options       []OptionMetadata
}

// MetadataProvider answers schema queries for option-typed fields.
type MetadataProvider interface {
	QueryOptions(ctx context.Context, entity, field string) (OptionSetMetadata, error)
}

// RecordUpdater writes field values to one record.
type RecordUpdater interface {
	UpdateRecord(ctx context.Context, ref domain.EntityReference, fields map[string]any) error
}

// Logger receives structured diagnostics from the app layer.
type Logger interface {
	Debug(msg string, keyvals ...any)
	Info(msg string, keyvals ...any)
	Warn(msg string, keyvals ...any)
	Error(msg string, keyvals ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

func loggerOrNop(logger Logger) Logger {
	if logger == nil {
		return nopLogger{}
	}
	return logger
}

// ClampPageSize applies the provider page-size cap.
func ClampPageSize(size int) int {
	if size <= 0 || size > MaxPageSize {
		return MaxPageSize
	}
	return size
}
