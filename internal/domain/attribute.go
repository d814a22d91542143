package domain

import (
	"fmt"
	"strings"
)

// Attribute describes one selectable field and its ordered options.
type Attribute struct {
	LogicalName string   `json:"logical_name"`
	Label       string   `json:"label"`
	Composite   bool     `json:"composite"`
	Options     []Option `json:"options"`
}

// NewAttribute validates option keys and preserves the provider's option order.
func NewAttribute(logicalName, label string, composite bool, options []Option) (Attribute, error) {
	logicalName = strings.TrimSpace(logicalName)
	if logicalName == "" {
		return Attribute{}, ErrInvalidName
	}
	label = strings.TrimSpace(label)
	if label == "" {
		label = logicalName
	}

	out := make([]Option, 0, len(options))
	seen := make(map[string]int, len(options))
	for idx, opt := range options {
		if composite && opt.StateCode == nil {
			return Attribute{}, fmt.Errorf("%w: %s option %d has no state code", ErrInvalidOption, logicalName, opt.Code)
		}
		if !composite {
			opt.StateCode = nil
		} else {
			opt.StateCode = IntPtr(*opt.StateCode)
		}
		opt.Label = strings.TrimSpace(opt.Label)
		opt.Color = strings.TrimSpace(opt.Color)
		key := opt.Key()
		if prev, ok := seen[key]; ok {
			return Attribute{}, fmt.Errorf("%w: %s options %d and %d share column key %q", ErrAmbiguousOption, logicalName, prev, idx, key)
		}
		seen[key] = idx
		out = append(out, opt)
	}

	return Attribute{
		LogicalName: logicalName,
		Label:       label,
		Composite:   composite,
		Options:     out,
	}, nil
}

// EmptyAttribute returns the empty-state attribute used when metadata cannot be loaded.
func EmptyAttribute(logicalName, label string) Attribute {
	logicalName = strings.TrimSpace(logicalName)
	label = strings.TrimSpace(label)
	if label == "" {
		label = logicalName
	}
	return Attribute{
		LogicalName: logicalName,
		Label:       label,
		Composite:   IsCompositeField(logicalName),
	}
}

// IsEmpty reports whether the attribute has no options to render.
func (a Attribute) IsEmpty() bool {
	return len(a.Options) == 0
}

// Option returns the option identified by one column key.
func (a Attribute) Option(key string) (Option, bool) {
	for _, opt := range a.Options {
		if opt.Key() == key {
			return opt, true
		}
	}
	return Option{}, false
}
