package domain

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// NumericValuer is implemented by provider wrappers around numeric codes.
type NumericValuer interface {
	NumericValue() (int64, bool)
}

// NumericValue coerces a raw provider value to an integral code. Values compare
// by number, so 3, int32(3), 3.0, json.Number("3") and "3" are all equal.
func NumericValue(v any) (int64, bool) {
	switch n := v.(type) {
	case nil:
		return 0, false
	case NumericValuer:
		return n.NumericValue()
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		return uintValue(uint64(n))
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		return uintValue(n)
	case float32:
		return floatValue(float64(n))
	case float64:
		return floatValue(n)
	case json.Number:
		return stringValue(n.String())
	case string:
		return stringValue(n)
	case *int:
		if n == nil {
			return 0, false
		}
		return int64(*n), true
	case *int64:
		if n == nil {
			return 0, false
		}
		return *n, true
	case *float64:
		if n == nil {
			return 0, false
		}
		return floatValue(*n)
	case map[string]any:
		// OData lookups and option wrappers arrive as {"Value": n}.
		for _, key := range []string{"Value", "value"} {
			if inner, ok := n[key]; ok {
				return NumericValue(inner)
			}
		}
		return 0, false
	default:
		return 0, false
	}
}

func uintValue(n uint64) (int64, bool) {
	if n > math.MaxInt64 {
		return 0, false
	}
	return int64(n), true
}

func floatValue(f float64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f > math.MaxInt64 || f < math.MinInt64 {
		return 0, false
	}
	return int64(f), true
}

func stringValue(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return floatValue(f)
}
