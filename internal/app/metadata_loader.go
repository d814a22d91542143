package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/hylla/statusboard/internal/domain"
)

// DefaultFallbackLanguageID is the language used when the user's language has no label.
const DefaultFallbackLanguageID = 1033

// DefaultMetadataTimeout bounds one shared metadata fetch.
const DefaultMetadataTimeout = 30 * time.Second

// MetadataLoaderConfig holds configuration for metadata loading.
type MetadataLoaderConfig struct {
	LanguageID         int
	FallbackLanguageID int
	FetchTimeout       time.Duration
}

type attributeKey struct {
	entity string
	field  string
}

// MetadataLoader fetches option metadata and caches normalized attributes per view.
type MetadataLoader struct {
	provider   MetadataProvider
	languageID int
	fallbackID int
	timeout    time.Duration

	mu     sync.Mutex
	viewID string
	cache  map[attributeKey]domain.Attribute
	group  singleflight.Group
}

// NewMetadataLoader constructs a loader over one provider.
func NewMetadataLoader(provider MetadataProvider, cfg MetadataLoaderConfig) *MetadataLoader {
	if cfg.FallbackLanguageID <= 0 {
		cfg.FallbackLanguageID = DefaultFallbackLanguageID
	}
	if cfg.LanguageID <= 0 {
		cfg.LanguageID = cfg.FallbackLanguageID
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = DefaultMetadataTimeout
	}
	return &MetadataLoader{
		provider:   provider,
		languageID: cfg.LanguageID,
		fallbackID: cfg.FallbackLanguageID,
		timeout:    cfg.FetchTimeout,
		cache:      map[attributeKey]domain.Attribute{},
	}
}

// LanguageID returns the active user language id.
func (l *MetadataLoader) LanguageID() int {
	return l.languageID
}

// SetView records the active view id. A change drops every cached attribute.
func (l *MetadataLoader) SetView(viewID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.viewID == viewID {
		return false
	}
	l.viewID = viewID
	l.cache = map[attributeKey]domain.Attribute{}
	return true
}

// LoadAttribute returns the attribute for one field, fetching it at most once per view.
func (l *MetadataLoader) LoadAttribute(ctx context.Context, entity, field string) (domain.Attribute, error) {
	entity = strings.TrimSpace(entity)
	field = strings.TrimSpace(field)
	if entity == "" || field == "" {
		return domain.Attribute{}, fmt.Errorf("load attribute %q.%q: %w", entity, field, domain.ErrInvalidName)
	}
	key := attributeKey{entity: strings.ToLower(entity), field: strings.ToLower(field)}

	l.mu.Lock()
	if attr, ok := l.cache[key]; ok {
		l.mu.Unlock()
		return attr, nil
	}
	viewID := l.viewID
	l.mu.Unlock()

	// The shared fetch outlives any one caller; each caller waits on its own ctx.
	flightKey := viewID + "\x00" + key.entity + "\x00" + key.field
	ch := l.group.DoChan(flightKey, func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), l.timeout)
		defer cancel()
		raw, err := l.provider.QueryOptions(fetchCtx, entity, field)
		if err != nil {
			return domain.Attribute{}, fmt.Errorf("query options %s.%s: %w", entity, field, errors.Join(domain.ErrMetadataUnavailable, err))
		}
		attr, err := l.normalize(field, raw)
		if err != nil {
			return domain.Attribute{}, err
		}
		l.mu.Lock()
		if l.viewID == viewID {
			l.cache[key] = attr
		}
		l.mu.Unlock()
		return attr, nil
	})
	select {
	case <-ctx.Done():
		return domain.Attribute{}, fmt.Errorf("load attribute %s.%s: %w", entity, field, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return domain.Attribute{}, res.Err
		}
		return res.Val.(domain.Attribute), nil
	}
}

// Cached reports whether one field is currently cached.
func (l *MetadataLoader) Cached(entity, field string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.cache[attributeKey{entity: strings.ToLower(strings.TrimSpace(entity)), field: strings.ToLower(strings.TrimSpace(field))}]
	return ok
}

func (l *MetadataLoader) normalize(field string, raw OptionSetMetadata) (domain.Attribute, error) {
	logicalName := strings.TrimSpace(raw.LogicalName)
	if logicalName == "" {
		logicalName = field
	}
	if len(raw.Options) == 0 {
		return domain.Attribute{}, fmt.Errorf("%w: %s has no options", domain.ErrMetadataUnavailable, logicalName)
	}
	composite := domain.IsCompositeField(logicalName)

	label, ok := l.resolveLabel(raw.DisplayLabels, raw.UserLabel)
	if !ok {
		// Server action payloads carry no attribute label.
		label = logicalName
	}

	options := make([]domain.Option, 0, len(raw.Options))
	for _, opt := range raw.Options {
		optLabel, ok := l.resolveLabel(opt.Labels, opt.UserLabel)
		if !ok {
			return domain.Attribute{}, fmt.Errorf("%w: %s option %d has no label for language %d", domain.ErrMetadataUnavailable, logicalName, opt.Value, l.languageID)
		}
		option := domain.Option{Label: optLabel, Code: opt.Value, Color: opt.Color}
		if composite {
			if opt.State == nil {
				return domain.Attribute{}, fmt.Errorf("%w: %s option %d has no state code", domain.ErrMetadataUnavailable, logicalName, opt.Value)
			}
			option.StateCode = domain.IntPtr(*opt.State)
		}
		options = append(options, option)
	}

	attr, err := domain.NewAttribute(logicalName, label, composite, options)
	if err != nil {
		if errors.Is(err, domain.ErrAmbiguousOption) {
			return domain.Attribute{}, err
		}
		return domain.Attribute{}, errors.Join(domain.ErrMetadataUnavailable, err)
	}
	return attr, nil
}

// resolveLabel picks the user language, then the fallback language, then the
// provider's user-localized label.
func (l *MetadataLoader) resolveLabel(labels []LocalizedLabel, userLabel string) (string, bool) {
	for _, languageID := range []int{l.languageID, l.fallbackID} {
		for _, candidate := range labels {
			if candidate.LanguageCode == languageID && strings.TrimSpace(candidate.Label) != "" {
				return strings.TrimSpace(candidate.Label), true
			}
		}
	}
	if userLabel = strings.TrimSpace(userLabel); userLabel != "" {
		return userLabel, true
	}
	return "", false
}
