package app

import (
	"context"
	"maps"
	"sync"

	"github.com/hylla/statusboard/internal/domain"
)

type fakeMetadata struct {
	mu      sync.Mutex
	calls   map[string]int
	sets    map[string]OptionSetMetadata
	err     error
	release chan struct{}
	started chan struct{}
}

func newFakeMetadata() *fakeMetadata {
	return &fakeMetadata{calls: map[string]int{}, sets: map[string]OptionSetMetadata{}}
}

func (f *fakeMetadata) QueryOptions(ctx context.Context, entity, field string) (OptionSetMetadata, error) {
	f.mu.Lock()
	f.calls[entity+"."+field]++
	release := f.release
	started := f.started
	set, ok := f.sets[field]
	err := f.err
	f.mu.Unlock()
	if started != nil {
		started <- struct{}{}
	}
	if release != nil {
		select {
		case <-release:
		case <-ctx.Done():
			return OptionSetMetadata{}, ctx.Err()
		}
	}
	if err != nil {
		return OptionSetMetadata{}, err
	}
	if !ok {
		return OptionSetMetadata{}, ErrNotFound
	}
	return set, nil
}

func (f *fakeMetadata) callCount(entity, field string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[entity+"."+field]
}

func statusMetadata() OptionSetMetadata {
	return OptionSetMetadata{
		LogicalName:   domain.StatusCodeField,
		DisplayLabels: []LocalizedLabel{{Label: "Status Reason", LanguageCode: 1033}, {Label: "Razão do Status", LanguageCode: 1046}},
		Options: []OptionMetadata{
			{Value: 1, State: domain.IntPtr(0), Color: "#0000ff", Labels: []LocalizedLabel{{Label: "In Progress", LanguageCode: 1033}, {Label: "Em Andamento", LanguageCode: 1046}}},
			{Value: 3, State: domain.IntPtr(1), Color: "#00ff00", Labels: []LocalizedLabel{{Label: "Won", LanguageCode: 1033}, {Label: "Ganha", LanguageCode: 1046}}},
			{Value: 4, State: domain.IntPtr(2), Labels: []LocalizedLabel{{Label: "Lost", LanguageCode: 1033}}},
		},
	}
}

func priorityMetadata() OptionSetMetadata {
	return OptionSetMetadata{
		LogicalName:   "prioritycode",
		DisplayLabels: []LocalizedLabel{{Label: "Priority", LanguageCode: 1033}},
		Options: []OptionMetadata{
			{Value: 1, Labels: []LocalizedLabel{{Label: "High", LanguageCode: 1033}}},
			{Value: 2, Labels: []LocalizedLabel{{Label: "Normal", LanguageCode: 1033}}},
		},
	}
}

type fakeProvider struct {
	mu        sync.Mutex
	entity    string
	pageSize  int
	snapshot  DataSnapshot
	refreshes int
	pages     []string
	opened    []domain.EntityReference
	err       error
}

func (f *fakeProvider) TargetEntityType() string { return f.entity }

func (f *fakeProvider) SetPageSize(size int) {
	f.mu.Lock()
	f.pageSize = size
	f.mu.Unlock()
}

func (f *fakeProvider) Snapshot(context.Context) (DataSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return DataSnapshot{}, f.err
	}
	out := f.snapshot
	out.Records = make([]domain.Record, 0, len(f.snapshot.Records))
	for _, rec := range f.snapshot.Records {
		rec.Values = maps.Clone(rec.Values)
		rec.Formatted = maps.Clone(rec.Formatted)
		out.Records = append(out.Records, rec)
	}
	return out, nil
}

func (f *fakeProvider) OpenRecord(_ context.Context, ref domain.EntityReference) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.opened = append(f.opened, ref)
	return ref.EntityType + "/" + ref.ID, nil
}

func (f *fakeProvider) Refresh(context.Context) error {
	f.mu.Lock()
	f.refreshes++
	f.mu.Unlock()
	return nil
}

func (f *fakeProvider) NextPage(context.Context) error {
	f.mu.Lock()
	f.pages = append(f.pages, "next")
	f.mu.Unlock()
	return nil
}

func (f *fakeProvider) PreviousPage(context.Context) error {
	f.mu.Lock()
	f.pages = append(f.pages, "previous")
	f.mu.Unlock()
	return nil
}

// setValue edits one record in place, the way a provider reflects a write.
func (f *fakeProvider) setValue(recordID, field string, value any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, rec := range f.snapshot.Records {
		if rec.ID == recordID {
			rec.Values[field] = value
		}
	}
}

type fakeUpdater struct {
	mu      sync.Mutex
	writes  []map[string]any
	refs    []domain.EntityReference
	err     error
	release chan struct{}
	started chan struct{}
	onWrite func(domain.EntityReference, map[string]any)
}

func (f *fakeUpdater) UpdateRecord(ctx context.Context, ref domain.EntityReference, fields map[string]any) error {
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.refs = append(f.refs, ref)
	f.writes = append(f.writes, fields)
	if f.onWrite != nil {
		f.onWrite(ref, fields)
	}
	return nil
}

type recordingLogger struct {
	mu    sync.Mutex
	warns []string
}

func (l *recordingLogger) Debug(string, ...any) {}
func (l *recordingLogger) Info(string, ...any)  {}
func (l *recordingLogger) Error(string, ...any) {}

func (l *recordingLogger) Warn(msg string, _ ...any) {
	l.mu.Lock()
	l.warns = append(l.warns, msg)
	l.mu.Unlock()
}

func opportunitySnapshot() DataSnapshot {
	return DataSnapshot{
		ViewID: "view-1",
		Columns: []domain.ViewColumn{
			{Name: "name", DisplayName: "Topic", DataType: "SingleLine.Text", Order: 0},
			{Name: "statuscode", DisplayName: "Status Reason", DataType: domain.DataTypeOptionSet, Order: 1},
			{Name: "prioritycode", DisplayName: "Priority", DataType: domain.DataTypeOptionSet, Order: 2},
			{Name: "estimatedvalue", DisplayName: "Est. Revenue", DataType: "Currency", Order: 3},
		},
		Records: []domain.Record{
			{
				ID:        "r1",
				Values:    map[string]any{"name": "Deal A", "statuscode": 1, "statecode": 0, "prioritycode": 1},
				Formatted: map[string]string{"name": "Deal A", "statuscode": "In Progress", "prioritycode": "High", "estimatedvalue": "$10.00"},
			},
			{
				ID:        "r2",
				Values:    map[string]any{"name": "Deal B", "statuscode": 3.0, "statecode": "1", "prioritycode": 2},
				Formatted: map[string]string{"name": "Deal B", "statuscode": "Won", "prioritycode": "Normal"},
			},
			{
				ID:        "r3",
				Values:    map[string]any{"name": "Deal C", "statuscode": 99, "statecode": 0},
				Formatted: map[string]string{"name": "Deal C"},
			},
		},
		Paging: domain.Paging{Page: 1, PageSize: 250, TotalResultCount: 3},
	}
}
