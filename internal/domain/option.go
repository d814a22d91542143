package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Field names and column keys shared by composite status attributes.
const (
	StatusCodeField = "statuscode"
	StateCodeField  = "statecode"

	// UnassignedColumnKey identifies the catch-all column for unmatched records.
	UnassignedColumnKey = "undefined"

	// nullStateKey stands in for the state part of simple option keys.
	nullStateKey = "null"
	keySeparator = ";"
)

// Option describes one column: a value the selected field can take.
type Option struct {
	Label     string `json:"label"`
	Code      int    `json:"code"`
	StateCode *int   `json:"state_code,omitempty"`
	Color     string `json:"color,omitempty"`
}

// Key returns the column key used for placement and as the drop-target id.
func (o Option) Key() string {
	return ColumnKey(o.StateCode, o.Code)
}

// HasState reports whether the option belongs to a composite status field.
func (o Option) HasState() bool {
	return o.StateCode != nil
}

// ColumnKey formats a "<state>;<code>" key; a nil state renders as "null".
func ColumnKey(stateCode *int, code int) string {
	state := nullStateKey
	if stateCode != nil {
		state = strconv.Itoa(*stateCode)
	}
	return state + keySeparator + strconv.Itoa(code)
}

// ParseColumnKey reverses ColumnKey.
func ParseColumnKey(key string) (*int, int, error) {
	key = strings.TrimSpace(key)
	statePart, codePart, ok := strings.Cut(key, keySeparator)
	if !ok {
		return nil, 0, fmt.Errorf("%w: %q", ErrInvalidColumnKey, key)
	}
	code, err := strconv.Atoi(strings.TrimSpace(codePart))
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %q", ErrInvalidColumnKey, key)
	}
	statePart = strings.TrimSpace(statePart)
	if statePart == nullStateKey || statePart == "" {
		return nil, code, nil
	}
	state, err := strconv.Atoi(statePart)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %q", ErrInvalidColumnKey, key)
	}
	return &state, code, nil
}

// IntPtr returns a pointer to a copy of v.
func IntPtr(v int) *int {
	return &v
}

// IsCompositeField reports whether a logical name names the state/status-reason pair.
func IsCompositeField(logicalName string) bool {
	return strings.EqualFold(strings.TrimSpace(logicalName), StatusCodeField)
}
